// Package bench defines the configuration and result types for ETISS
// benchmark sweeps.
package bench

import (
	"encoding/json"
	"fmt"
	"strings"
)

// variantPrefix is the canonical prefix the build scripts expect on every
// engine variant identifier.
const variantPrefix = "etiss_"

// Variant holds an engine build variant name in both of its forms: the
// canonical prefixed form passed to the build and run scripts, and the
// unprefixed display form used in filenames and human output. The two always
// denormalize to the same canonical value.
type Variant struct {
	// Canonical is the prefixed form, e.g. "etiss_jit_stats".
	Canonical string

	// Display is the unprefixed form, e.g. "jit_stats".
	Display string
}

// NormalizeVariant resolves a variant name given in either form. It is
// idempotent: NormalizeVariant(v.Canonical) and NormalizeVariant(v.Display)
// produce the same Variant.
func NormalizeVariant(name string) Variant {
	if strings.HasPrefix(name, variantPrefix) {
		return Variant{
			Canonical: name,
			Display:   strings.TrimPrefix(name, variantPrefix),
		}
	}
	return Variant{
		Canonical: variantPrefix + name,
		Display:   name,
	}
}

// MarshalJSON serializes the canonical form only; the display form is
// derivable and kept out of artifacts.
func (v Variant) MarshalJSON() ([]byte, error) {
	return json.Marshal(v.Canonical)
}

// UnmarshalJSON re-normalizes whatever form was persisted.
func (v *Variant) UnmarshalJSON(data []byte) error {
	var name string
	if err := json.Unmarshal(data, &name); err != nil {
		return err
	}
	*v = NormalizeVariant(name)
	return nil
}

// String returns the display form.
func (v Variant) String() string {
	return v.Display
}

// Config identifies one sweep point: a single benchmark invocation of the
// simulator with a fully specified build and JIT configuration.
type Config struct {
	// Program is the benchmark program name, e.g. "hello_world".
	Program string `json:"program"`

	// Profile is the examples build profile name.
	Profile string `json:"profile"`

	// Variant is the engine build variant, stored in canonical prefixed form.
	Variant Variant `json:"etiss_variant"`

	// JIT is the primary JIT compiler kind (GCC, TCC, or LLVM).
	JIT string `json:"jit"`

	// FastJIT is the optional fast-tier JIT compiler kind.
	FastJIT OptionalString `json:"fast_jit"`

	// BlockSize is the translation block size. Always positive.
	BlockSize int `json:"block_size"`

	// OptimizationThreads is the optional background optimization thread count.
	OptimizationThreads OptionalInt `json:"optimization_threads"`

	// GCCOptLevel is the optimization level for the GCC-based JIT.
	GCCOptLevel string `json:"gcc_opt_level"`

	// LLVMOptLevel is the optimization level for the LLVM-based JIT.
	LLVMOptLevel string `json:"llvm_opt_level"`
}

// Summary returns a one-line human-readable description of the sweep point,
// used in progress output and failure diagnostics.
func (c Config) Summary() string {
	s := fmt.Sprintf("%s (JIT: %s", c.Program, c.JIT)
	if c.FastJIT.Valid {
		s += fmt.Sprintf(", fast: %s", c.FastJIT.Value)
	}
	if c.OptimizationThreads.Valid {
		s += fmt.Sprintf(", threads: %d", c.OptimizationThreads.Value)
	}
	return s + fmt.Sprintf(", block: %d)", c.BlockSize)
}
