// Package manifest loads experiment definitions from YAML files, so a sweep
// can be described in a file committed next to its results instead of a long
// flag invocation.
package manifest

import (
	"fmt"
	"os"

	"github.com/go-playground/validator/v10"
	"gopkg.in/yaml.v3"
)

// Manifest describes one full experiment: the sweep axes, build options, and
// output destination.
type Manifest struct {
	// Name namespaces the jit_stats output directory. Optional.
	Name string `yaml:"name"`

	Programs []string `yaml:"programs" validate:"required,min=1,dive,required"`
	Profiles []string `yaml:"profiles" validate:"required,min=1,dive,required"`
	Variants []string `yaml:"etiss_variants" validate:"required,min=1,dive,required"`

	JITs []string `yaml:"jits" validate:"required,min=1,dive,oneof=GCC TCC LLVM"`

	// FastJITs may include the literal "None" to sweep a no-fast-JIT point.
	FastJITs []string `yaml:"fast_jits" validate:"omitempty,dive,oneof=GCC TCC LLVM None"`

	BlockSizes          []int `yaml:"block_sizes" validate:"required,min=1,dive,gt=0"`
	OptimizationThreads []int `yaml:"optimization_threads" validate:"omitempty,dive,gt=0"`

	GCCOptLevel  string `yaml:"gcc_opt_level" validate:"oneof=0 1 2 3 s fast"`
	LLVMOptLevel string `yaml:"llvm_opt_level" validate:"oneof=0 1 2 3 s z fast"`

	Rebuild       bool `yaml:"rebuild"`
	RebuildEngine bool `yaml:"rebuild_etiss"`

	// Output is the result artifact path. Optional; empty means no artifact.
	Output string `yaml:"output"`
}

// Default returns a manifest with the same defaults the CLI flags use.
func Default() Manifest {
	return Manifest{
		Programs:     []string{"hello_world"},
		Profiles:     []string{"default"},
		Variants:     []string{"default"},
		JITs:         []string{"TCC"},
		BlockSizes:   []int{100},
		GCCOptLevel:  "3",
		LLVMOptLevel: "3",
	}
}

var validate = validator.New()

// Load reads and validates a manifest. Fields absent from the file keep
// their defaults.
func Load(path string) (Manifest, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return Manifest{}, fmt.Errorf("failed to read manifest: %w", err)
	}

	m := Default()
	if err := yaml.Unmarshal(data, &m); err != nil {
		return Manifest{}, fmt.Errorf("failed to parse manifest: %w", err)
	}

	if err := validate.Struct(m); err != nil {
		return Manifest{}, fmt.Errorf("invalid manifest %s: %w", path, err)
	}
	return m, nil
}
