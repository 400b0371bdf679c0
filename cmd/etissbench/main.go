// Command etissbench orchestrates ETISS benchmark sweeps.
//
// It enumerates the cross product of the configured axes (programs, JIT
// kinds, fast JIT kinds, optimization thread counts, block sizes) for every
// selected profile and engine variant, runs each combination through the
// external build/run scripts, and collects normalized performance,
// compilation, and cache statistics into a JSON artifact.
//
// Example:
//
//	# Sweep block sizes for two JITs and save the results
//	etissbench --programs hello_world dhrystone --jits TCC LLVM \
//	    --block-sizes 50 100 200 --output results/block-size-study.json
//
//	# Run a sweep described by a committed manifest
//	etissbench --manifest experiments/block-size-study.yaml
package main

import (
	"fmt"
	"log/slog"
	"os"

	"github.com/mattn/go-isatty"
	"github.com/spf13/cobra"

	"github.com/simtools/etissbench/bench"
	"github.com/simtools/etissbench/catalog"
	"github.com/simtools/etissbench/environ"
	"github.com/simtools/etissbench/extract"
	"github.com/simtools/etissbench/manifest"
	"github.com/simtools/etissbench/runner"
	"github.com/simtools/etissbench/store"
	"github.com/simtools/etissbench/sweep"
)

// options collects the full flag surface. Manifest values overwrite flag
// defaults before validation.
type options struct {
	programs       []string
	profiles       []string
	variants       []string
	jits           []string
	blockSizes     []int
	fastJITs       []string
	optThreads     []int
	gccOptLevel    string
	llvmOptLevel   string
	rebuild        bool
	rebuildEngine  bool
	output         string
	experimentName string
	manifestPath   string

	scriptsDir    string
	resultsDir    string
	envConfig     string
	exampleBuilds string
	etissBuilds   string
}

func main() {
	if err := newRootCmd().Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

func newRootCmd() *cobra.Command {
	opts := &options{}

	cmd := &cobra.Command{
		Use:           "etissbench",
		Short:         "Run ETISS benchmark sweeps and collect JIT statistics",
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return run(cmd, opts)
		},
	}

	flags := cmd.Flags()
	flags.StringSliceVar(&opts.programs, "programs", []string{"hello_world"},
		"Programs to run")
	flags.StringSliceVar(&opts.profiles, "profile", []string{"default"},
		"Examples build profile(s) to test")
	flags.StringSliceVar(&opts.variants, "etiss-variant", []string{"default"},
		"ETISS build variant(s) to test")
	flags.StringSliceVar(&opts.jits, "jits", []string{"TCC"},
		"JIT compilers to test (GCC, TCC, LLVM)")
	flags.IntSliceVar(&opts.blockSizes, "block-sizes", []int{100},
		"Block sizes to test")
	flags.StringSliceVar(&opts.fastJITs, "fast-jits", nil,
		`Fast JIT compiler(s) to test ("None" tests without a fast JIT)`)
	flags.IntSliceVar(&opts.optThreads, "optimization-threads", nil,
		"Background optimization thread counts to test")
	flags.StringVar(&opts.gccOptLevel, "gcc-opt-level", "3",
		"GCC JIT optimization level (0, 1, 2, 3, s, fast)")
	flags.StringVar(&opts.llvmOptLevel, "llvm-opt-level", "3",
		"LLVM JIT optimization level (0, 1, 2, 3, s, z, fast)")
	flags.BoolVar(&opts.rebuild, "rebuild", false,
		"Rebuild programs before running")
	flags.BoolVar(&opts.rebuildEngine, "rebuild-etiss", false,
		"Rebuild ETISS variants before running")
	flags.StringVar(&opts.output, "output", "",
		"Output file for results (JSON)")
	flags.StringVar(&opts.experimentName, "experiment-name", "",
		"Experiment name for organizing results into subdirectories")
	flags.StringVar(&opts.manifestPath, "manifest", "",
		"Experiment manifest file (YAML); overrides the axis flags")

	flags.StringVar(&opts.scriptsDir, "scripts-dir", "scripts",
		"Directory containing the build/run scripts")
	flags.StringVar(&opts.resultsDir, "results-dir", "results",
		"Directory for jit_stats output")
	flags.StringVar(&opts.envConfig, "env-config", "config/env.conf",
		"Shell config file sourced for root-path overrides")
	flags.StringVar(&opts.exampleBuilds, "example-builds", "config/example-builds.json",
		"Examples build catalog")
	flags.StringVar(&opts.etissBuilds, "etiss-builds", "config/etiss-builds.json",
		"ETISS build catalog")

	return cmd
}

func run(cmd *cobra.Command, opts *options) error {
	logger := newLogger()
	ctx := cmd.Context()

	if opts.manifestPath != "" {
		m, err := manifest.Load(opts.manifestPath)
		if err != nil {
			return err
		}
		opts.applyManifest(m)
	}

	if err := opts.validateAxes(); err != nil {
		return err
	}

	registry := catalog.NewRegistry(opts.exampleBuilds, opts.etissBuilds, logger)
	if err := checkCatalogNames(registry, catalog.Examples, opts.profiles); err != nil {
		return err
	}
	if err := checkCatalogNames(registry, catalog.Engine, opts.variants); err != nil {
		return err
	}

	env := environ.Resolve(opts.envConfig, logger)
	roots := env.Roots()
	logger.Info("resolved roots", "etiss", roots.ETISS, "examples", roots.Examples)

	invoker, err := runner.New(opts.scriptsDir, opts.resultsDir, opts.experimentName,
		runner.WithLogger(logger),
		runner.WithEnv(env.Slice()))
	if err != nil {
		return err
	}
	extractor := extract.NewExtractor(extract.WithLogger(logger))

	if opts.rebuildEngine {
		for _, name := range dedup(opts.variants) {
			if err := invoker.BuildEngine(ctx, bench.NormalizeVariant(name), true); err != nil {
				return fmt.Errorf("failed to rebuild variant %s: %w", name, err)
			}
		}
	}

	axes := sweep.Axes{
		Programs:            opts.programs,
		JITs:                opts.jits,
		FastJITs:            parseFastJITs(opts.fastJITs),
		OptimizationThreads: parseOptThreads(opts.optThreads),
		BlockSizes:          opts.blockSizes,
	}

	var (
		allResults []bench.Result
		failures   int
	)
	for _, variantName := range opts.variants {
		for _, profile := range opts.profiles {
			// Re-resolve both records at sweep start; a catalog edited
			// mid-invocation skips this combination instead of aborting.
			profileRecord, ok := registry.Profile(profile, catalog.Examples)
			if !ok {
				continue
			}
			variantRecord, ok := registry.Profile(variantName, catalog.Engine)
			if !ok {
				continue
			}

			logger.Info("starting sweep",
				"profile", profileRecord.Name(),
				"variant", variantRecord.Name())

			driver := sweep.New(invoker, extractor, profile, variantName,
				sweep.WithLogger(logger),
				sweep.WithOptLevels(opts.gccOptLevel, opts.llvmOptLevel))

			results, failed, err := driver.Run(ctx, axes, opts.rebuild)
			if err != nil {
				return err
			}
			allResults = append(allResults, results...)
			failures += len(failed)
		}
	}

	if opts.output != "" {
		doc := buildDocument(opts, allResults)
		if err := store.Save(opts.output, doc); err != nil {
			return err
		}
		logger.Info("results saved", "path", opts.output, "run_id", doc.RunID)
	}

	printSummary(cmd.OutOrStdout(), opts, axes, len(allResults), failures)
	return nil
}

// newLogger builds the process logger: human-readable when stderr is a
// terminal, JSON otherwise.
func newLogger() *slog.Logger {
	var handler slog.Handler
	if isatty.IsTerminal(os.Stderr.Fd()) || isatty.IsCygwinTerminal(os.Stderr.Fd()) {
		handler = slog.NewTextHandler(os.Stderr, nil)
	} else {
		handler = slog.NewJSONHandler(os.Stderr, nil)
	}
	logger := slog.New(handler)
	slog.SetDefault(logger)
	return logger
}

// checkCatalogNames verifies every selected name exists in the catalog,
// mirroring the choices the tool advertises.
func checkCatalogNames(registry *catalog.Registry, category catalog.Category, selected []string) error {
	available, err := registry.Names(category)
	if err != nil {
		return err
	}

	known := make(map[string]bool, len(available))
	for _, name := range available {
		known[name] = true
	}
	for _, name := range selected {
		if !known[name] {
			return fmt.Errorf("unknown %s profile %q (available: %v)",
				category, name, available)
		}
	}
	return nil
}

// buildDocument picks the single- or multi-sweep artifact form.
func buildDocument(opts *options, results []bench.Result) store.Document {
	if len(opts.profiles) == 1 && len(opts.variants) == 1 {
		return store.NewSingle(opts.profiles[0],
			bench.NormalizeVariant(opts.variants[0]), results)
	}
	return store.NewMulti(opts.profiles, opts.variants, results)
}
