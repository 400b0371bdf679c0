// Package sweep drives benchmark cross products: it enumerates every
// combination of the configured axes, invokes each run, and accumulates the
// successful results while isolating per-combination failures.
package sweep

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"github.com/simtools/etissbench/bench"
	"github.com/simtools/etissbench/extract"
	"github.com/simtools/etissbench/runner"
)

// Invoker runs benchmark configurations and builds programs. Satisfied by
// *runner.Invoker.
type Invoker interface {
	Run(ctx context.Context, cfg bench.Config) (runner.Payload, error)
	BuildProgram(ctx context.Context, profile, program string, clean bool) error
}

// Extractor converts raw payloads into results. Satisfied by
// *extract.Extractor.
type Extractor interface {
	Extract(payload runner.Payload, cfg bench.Config) (bench.Result, error)
}

// Failure records one combination that did not produce a result.
type Failure struct {
	Config bench.Config
	Err    error
}

// Driver runs sweeps for one profile and engine variant. Execution is
// strictly sequential; a run starts only after the previous external
// process has terminated.
type Driver struct {
	invoker      Invoker
	extractor    Extractor
	profile      string
	variant      bench.Variant
	gccOptLevel  string
	llvmOptLevel string
	logger       *slog.Logger
}

// DriverOption configures a Driver.
type DriverOption func(*Driver)

// WithLogger sets the logger. Default: slog.Default().
func WithLogger(logger *slog.Logger) DriverOption {
	return func(d *Driver) {
		d.logger = logger
	}
}

// WithOptLevels sets the GCC and LLVM JIT optimization levels stamped onto
// every configuration. Default: "3" for both.
func WithOptLevels(gcc, llvm string) DriverOption {
	return func(d *Driver) {
		d.gccOptLevel = gcc
		d.llvmOptLevel = llvm
	}
}

// New creates a Driver for one profile and variant. The variant may be given
// in either prefixed or display form.
func New(invoker Invoker, extractor Extractor, profile, variant string, opts ...DriverOption) *Driver {
	d := &Driver{
		invoker:      invoker,
		extractor:    extractor,
		profile:      profile,
		variant:      bench.NormalizeVariant(variant),
		gccOptLevel:  "3",
		llvmOptLevel: "3",
		logger:       slog.Default(),
	}
	for _, opt := range opts {
		opt(d)
	}
	return d
}

// Variant returns the driver's normalized engine variant.
func (d *Driver) Variant() bench.Variant {
	return d.variant
}

// Run enumerates the cross product of axes in lexicographic order over
// (program, jit, fast_jit, optimization_threads, block_size) and attempts
// every combination. Failed combinations are logged and recorded, never
// fatal; the returned results contain only successes, in iteration order,
// so len(results)+len(failures) always equals axes.Size().
//
// If rebuild is set, each program is rebuilt exactly once before any of its
// combinations run; a rebuild failure aborts the sweep since every
// subsequent run would measure a stale binary.
func (d *Driver) Run(ctx context.Context, axes Axes, rebuild bool) ([]bench.Result, []Failure, error) {
	axes = axes.withDefaults()
	if err := axes.validate(); err != nil {
		return nil, nil, err
	}

	if rebuild {
		for _, program := range axes.Programs {
			if err := d.invoker.BuildProgram(ctx, d.profile, program, true); err != nil {
				return nil, nil, fmt.Errorf("failed to rebuild %s: %w", program, err)
			}
		}
	}

	var (
		results  []bench.Result
		failures []Failure
	)

	for _, program := range axes.Programs {
		for _, jit := range axes.JITs {
			for _, fastJIT := range axes.FastJITs {
				for _, threads := range axes.OptimizationThreads {
					for _, blockSize := range axes.BlockSizes {
						cfg := bench.Config{
							Program:             program,
							Profile:             d.profile,
							Variant:             d.variant,
							JIT:                 jit,
							FastJIT:             fastJIT,
							OptimizationThreads: threads,
							BlockSize:           blockSize,
							GCCOptLevel:         d.gccOptLevel,
							LLVMOptLevel:        d.llvmOptLevel,
						}

						result, err := d.runOne(ctx, cfg)
						if err != nil {
							failures = append(failures, Failure{Config: cfg, Err: err})
							continue
						}
						results = append(results, result)
					}
				}
			}
		}
	}

	return results, failures, nil
}

// runOne executes and extracts a single combination.
func (d *Driver) runOne(ctx context.Context, cfg bench.Config) (bench.Result, error) {
	d.logger.Info("running benchmark", "config", cfg.Summary())

	payload, err := d.invoker.Run(ctx, cfg)
	if err != nil {
		d.logFailure(cfg, err)
		return bench.Result{}, err
	}

	result, err := d.extractor.Extract(payload, cfg)
	if err != nil {
		d.logFailure(cfg, err)
		return bench.Result{}, err
	}

	d.logger.Info("benchmark complete",
		"config", cfg.Summary(),
		"mips_estimated", result.MIPSEstimated,
		"mips_corrected", result.MIPSCorrected,
		"wall_time_s", result.WallTime)
	return result, nil
}

// logFailure prints the configuration and error detail for a skipped
// combination, including captured output when the run itself failed.
func (d *Driver) logFailure(cfg bench.Config, err error) {
	attrs := []any{"config", cfg.Summary(), "err", err}

	var runErr *runner.RunError
	var malformed *extract.MalformedStatsError
	switch {
	case errors.As(err, &runErr):
		if runErr.Stderr != "" {
			attrs = append(attrs, "stderr", runErr.Stderr)
		}
		if runErr.Stdout != "" {
			attrs = append(attrs, "stdout", runErr.Stdout)
		}
	case errors.As(err, &malformed):
		attrs = append(attrs, "stats_file", malformed.Path)
	}

	d.logger.Error("benchmark failed, continuing sweep", attrs...)
}
