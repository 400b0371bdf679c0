// Package extract converts raw benchmark run output into normalized results.
// It prefers the structured JSON stats export and falls back to pattern
// extraction from captured stdout when the export is absent.
package extract

import (
	"encoding/json"
	"fmt"
	"log/slog"
	"os"
	"regexp"
	"strconv"

	"github.com/simtools/etissbench/bench"
	"github.com/simtools/etissbench/runner"
)

// MalformedStatsError reports a stats file that exists but does not parse as
// JSON. Unlike a missing file, this indicates the run collaborator violated
// its contract, so it is surfaced rather than defaulted away.
type MalformedStatsError struct {
	Path string
	Err  error
}

func (e *MalformedStatsError) Error() string {
	return fmt.Sprintf("malformed stats file %s: %v", e.Path, e.Err)
}

func (e *MalformedStatsError) Unwrap() error {
	return e.Err
}

// Extractor builds bench.Result values from raw run payloads.
type Extractor struct {
	logger *slog.Logger
	lookup func(string) StatsLookup
}

// ExtractorOption configures an Extractor.
type ExtractorOption func(*Extractor)

// WithLogger sets the logger. Default: slog.Default().
func WithLogger(logger *slog.Logger) ExtractorOption {
	return func(x *Extractor) {
		x.logger = logger
	}
}

// WithLookup replaces the filesystem probe, for tests.
func WithLookup(lookup func(string) StatsLookup) ExtractorOption {
	return func(x *Extractor) {
		x.lookup = lookup
	}
}

// NewExtractor creates an Extractor.
func NewExtractor(opts ...ExtractorOption) *Extractor {
	x := &Extractor{
		logger: slog.Default(),
		lookup: LookupStats,
	}
	for _, opt := range opts {
		opt(x)
	}
	return x
}

// Extract converts a raw payload into a fully populated result for cfg.
// Missing data always degrades to zero values; the only error is a stats
// file that exists but cannot be parsed.
func (x *Extractor) Extract(payload runner.Payload, cfg bench.Config) (bench.Result, error) {
	if lookup := x.lookup(payload.StatsPath); lookup.Found {
		return x.fromStatsFile(lookup.Path, cfg)
	}

	x.logger.Warn("stats file not found, falling back to output parsing",
		"path", payload.StatsPath,
		"program", cfg.Program)
	return x.fromOutput(payload.Stdout, cfg), nil
}

// statsFile mirrors the structured export schema: six optional flat
// sections of metric name to numeric value.
type statsFile struct {
	Metadata     section `json:"metadata"`
	Performance  section `json:"performance"`
	Compilation  section `json:"compilation"`
	Execution    section `json:"execution"`
	Optimization section `json:"optimization"`
	Cache        section `json:"cache"`
}

// section is a flat metric mapping. Absent keys and non-numeric values both
// read as zero.
type section map[string]any

func (s section) float(key string) float64 {
	v, _ := s[key].(float64)
	return v
}

// integer truncates a count represented as a float in the export.
func (s section) integer(key string) int {
	return int(s.float(key))
}

func (s section) integer64(key string) int64 {
	return int64(s.float(key))
}

// fromStatsFile reads the structured export and maps every known key onto
// its result field.
func (x *Extractor) fromStatsFile(path string, cfg bench.Config) (bench.Result, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return bench.Result{}, &MalformedStatsError{Path: path, Err: err}
	}

	var stats statsFile
	if err := json.Unmarshal(data, &stats); err != nil {
		return bench.Result{}, &MalformedStatsError{Path: path, Err: err}
	}

	perf := stats.Performance
	comp := stats.Compilation
	exec := stats.Execution
	opt := stats.Optimization
	cache := stats.Cache

	return bench.Result{
		Config: cfg,

		MIPSEstimated:    perf.float("mips_estimated"),
		MIPSCorrected:    perf.float("mips_corrected"),
		SimTime:          perf.float("simulation_time_s"),
		WallTime:         perf.float("wall_time_s"),
		CPUCycles:        perf.integer64("cpu_cycles"),
		CPUTimeSimulated: perf.float("cpu_time_s"),

		UniqueBlocksCompiled:          comp.integer("unique_blocks"),
		FastJITBlocks:                 comp.integer("fast_jit_blocks"),
		OptimizingJITBlocks:           comp.integer("optimizing_jit_blocks"),
		TotalCompilationTimeS:         comp.float("total_time_s"),
		FastJITCompilationTimeS:       comp.float("fast_jit_time_s"),
		OptimizingJITCompilationTimeS: comp.float("optimizing_jit_time_s"),
		AvgFastJITTimeMS:              comp.float("avg_fast_jit_time_ms"),
		AvgOptJITTimeMS:               comp.float("avg_optimizing_jit_time_ms"),
		FastJITSpeedup:                comp.float("fast_jit_speedup"),
		CompilationPercentage:         comp.float("compilation_percentage"),
		ExecutionPercentage:           comp.float("execution_percentage"),

		TotalBlockExecutions:    exec.integer64("total_block_executions"),
		FastJITExecutions:       exec.integer64("fast_jit_executions"),
		OptimizedExecutions:     exec.integer64("optimized_executions"),
		FastJITExecPercentage:   exec.float("fast_jit_exec_percentage"),
		OptimizedExecPercentage: exec.float("optimized_exec_percentage"),
		BlockExecutionTimeMS:    exec.float("block_execution_time_ms"),

		BlocksOptimized:           opt.integer("blocks_optimized"),
		BlocksSwitched:            opt.integer("blocks_switched"),
		OptimizationSuccessRate:   opt.float("optimization_success_rate"),
		SwitchRate:                opt.float("switch_rate"),
		AvgExecutionsBeforeSwitch: opt.integer("avg_executions_before_switch"),

		TotalCacheLookups:   cache.integer64("total_lookups"),
		CacheSequentialHits: cache.integer64("sequential_hits"),
		CacheBranchHits:     cache.integer64("branch_hits"),
		CacheMisses:         cache.integer64("misses"),
		CacheHitRate:        cache.float("hit_rate"),
		CacheMissRate:       cache.float("miss_rate"),

		StatsJSONPath: path,
	}, nil
}

// Fallback patterns for the labeled metrics the simulator prints to stdout.
var (
	mipsEstimatedRE = regexp.MustCompile(`MIPS \(estimated\): ([\d.e+-]+)`)
	mipsCorrectedRE = regexp.MustCompile(`MIPS \(corrected\): ([\d.e+-]+)`)
	simTimeRE       = regexp.MustCompile(`Simulation Time: ([\d.e+-]+)s`)
	wallTimeRE      = regexp.MustCompile(`Wallclock Time: ([\d.e+-]+)s`)
	cpuCyclesRE     = regexp.MustCompile(`CPU Cycles \(estimated\): ([\d.e+-]+)`)
)

// fromOutput populates the subset of fields derivable from free-text output.
// Unmatched patterns leave their fields at zero.
func (x *Extractor) fromOutput(stdout string, cfg bench.Config) bench.Result {
	return bench.Result{
		Config:        cfg,
		MIPSEstimated: extractFloat(stdout, mipsEstimatedRE),
		MIPSCorrected: extractFloat(stdout, mipsCorrectedRE),
		SimTime:       extractFloat(stdout, simTimeRE),
		WallTime:      extractFloat(stdout, wallTimeRE),
		CPUCycles:     extractInt64(stdout, cpuCyclesRE),
	}
}

func extractFloat(text string, re *regexp.Regexp) float64 {
	m := re.FindStringSubmatch(text)
	if m == nil {
		return 0
	}
	v, err := strconv.ParseFloat(m[1], 64)
	if err != nil {
		return 0
	}
	return v
}

func extractInt64(text string, re *regexp.Regexp) int64 {
	return int64(extractFloat(text, re))
}
