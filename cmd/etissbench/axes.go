package main

import (
	"fmt"
	"io"
	"strings"

	"github.com/simtools/etissbench/bench"
	"github.com/simtools/etissbench/manifest"
	"github.com/simtools/etissbench/sweep"
)

// fastJITNone is the CLI sentinel for "run this sweep point without a fast
// JIT", so mixed sweeps like --fast-jits TCC None are expressible.
const fastJITNone = "None"

var (
	validJITs         = map[string]bool{"GCC": true, "TCC": true, "LLVM": true}
	validGCCOptLevels = map[string]bool{
		"0": true, "1": true, "2": true, "3": true, "s": true, "fast": true,
	}
	validLLVMOptLevels = map[string]bool{
		"0": true, "1": true, "2": true, "3": true, "s": true, "z": true, "fast": true,
	}
)

// parseFastJITs maps the CLI fast-JIT names onto optional values, turning
// the None sentinel into an unset element.
func parseFastJITs(names []string) []bench.OptionalString {
	out := make([]bench.OptionalString, 0, len(names))
	for _, name := range names {
		if name == fastJITNone {
			out = append(out, bench.OptionalString{})
			continue
		}
		out = append(out, bench.SomeString(name))
	}
	return out
}

// parseOptThreads wraps thread counts as set optional values.
func parseOptThreads(counts []int) []bench.OptionalInt {
	out := make([]bench.OptionalInt, 0, len(counts))
	for _, n := range counts {
		out = append(out, bench.SomeInt(n))
	}
	return out
}

// dedup drops repeated names while preserving first-seen order.
func dedup(names []string) []string {
	seen := make(map[string]bool, len(names))
	out := make([]string, 0, len(names))
	for _, name := range names {
		if seen[name] {
			continue
		}
		seen[name] = true
		out = append(out, name)
	}
	return out
}

// applyManifest overwrites the axis options with the manifest's values.
func (o *options) applyManifest(m manifest.Manifest) {
	o.programs = m.Programs
	o.profiles = m.Profiles
	o.variants = m.Variants
	o.jits = m.JITs
	o.fastJITs = m.FastJITs
	o.blockSizes = m.BlockSizes
	o.optThreads = m.OptimizationThreads
	o.gccOptLevel = m.GCCOptLevel
	o.llvmOptLevel = m.LLVMOptLevel
	o.rebuild = m.Rebuild
	o.rebuildEngine = m.RebuildEngine
	if m.Name != "" {
		o.experimentName = m.Name
	}
	if m.Output != "" {
		o.output = m.Output
	}
}

// validateAxes rejects values the collaborators would choke on.
func (o *options) validateAxes() error {
	for _, jit := range o.jits {
		if !validJITs[jit] {
			return fmt.Errorf("unknown JIT %q (choose from GCC, TCC, LLVM)", jit)
		}
	}
	for _, jit := range o.fastJITs {
		if jit != fastJITNone && !validJITs[jit] {
			return fmt.Errorf("unknown fast JIT %q (choose from GCC, TCC, LLVM, None)", jit)
		}
	}
	if !validGCCOptLevels[o.gccOptLevel] {
		return fmt.Errorf("invalid GCC opt level %q", o.gccOptLevel)
	}
	if !validLLVMOptLevels[o.llvmOptLevel] {
		return fmt.Errorf("invalid LLVM opt level %q", o.llvmOptLevel)
	}
	return nil
}

// printSummary reports the overall sweep outcome. The exit status reflects
// whether the invocation completed, so the completed-versus-attempted counts
// are how callers detect partial failure.
func printSummary(w io.Writer, opts *options, axes sweep.Axes, completed, failed int) {
	attempted := axes.Size() * len(opts.profiles) * len(opts.variants)

	fmt.Fprintln(w, strings.Repeat("=", 60))
	fmt.Fprintf(w, "Completed %d of %d benchmark runs", completed, attempted)
	if failed > 0 {
		fmt.Fprintf(w, " (%d failed)", failed)
	}
	fmt.Fprintln(w, "")
	fmt.Fprintf(w, "  Profiles tested: %s\n", strings.Join(opts.profiles, ", "))
	fmt.Fprintf(w, "  ETISS variants tested: %s\n", strings.Join(opts.variants, ", "))
	fmt.Fprintln(w, strings.Repeat("=", 60))
}
