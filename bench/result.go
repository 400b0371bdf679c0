package bench

// Result holds the normalized metrics for one completed benchmark run.
// Every numeric field has a meaningful zero value and is left at zero when
// its source metric is absent, so a Result is always fully populated and
// downstream aggregation never has to distinguish "missing" from "zero".
type Result struct {
	Config

	// Basic performance metrics.

	// MIPSEstimated is the simulator's own instructions-per-second estimate.
	MIPSEstimated float64 `json:"mips_estimated"`

	// MIPSCorrected is the estimate corrected for instrumentation overhead.
	MIPSCorrected float64 `json:"mips_corrected"`

	// SimTime is the simulated time in seconds.
	SimTime float64 `json:"sim_time"`

	// WallTime is the host wall-clock time in seconds.
	WallTime float64 `json:"wall_time"`

	// CPUCycles is the estimated guest cycle count.
	CPUCycles int64 `json:"cpu_cycles"`

	// CPUTimeSimulated is the simulated CPU time in seconds.
	CPUTimeSimulated float64 `json:"cpu_time_simulated"`

	// Compilation statistics.

	UniqueBlocksCompiled int `json:"unique_blocks_compiled"`
	FastJITBlocks        int `json:"fast_jit_blocks"`
	OptimizingJITBlocks  int `json:"optimizing_jit_blocks"`

	// Timing statistics (seconds unless noted).

	TotalCompilationTimeS         float64 `json:"total_compilation_time_s"`
	FastJITCompilationTimeS       float64 `json:"fast_jit_compilation_time_s"`
	OptimizingJITCompilationTimeS float64 `json:"optimizing_jit_compilation_time_s"`
	BlockExecutionTimeMS          float64 `json:"block_execution_time_ms"`

	// Per-block compilation timing (milliseconds).

	AvgFastJITTimeMS float64 `json:"avg_fast_jit_time_ms"`
	AvgOptJITTimeMS  float64 `json:"avg_opt_jit_time_ms"`
	FastJITSpeedup   float64 `json:"fast_jit_speedup"`

	// Time breakdown percentages.

	CompilationPercentage float64 `json:"compilation_percentage"`
	ExecutionPercentage   float64 `json:"execution_percentage"`

	// Background optimization.

	BlocksOptimized         int     `json:"blocks_optimized"`
	BlocksSwitched          int     `json:"blocks_switched"`
	OptimizationSuccessRate float64 `json:"optimization_success_rate"`
	SwitchRate              float64 `json:"switch_rate"`

	// Execution statistics.

	TotalBlockExecutions      int64   `json:"total_block_executions"`
	FastJITExecutions         int64   `json:"fast_jit_executions"`
	OptimizedExecutions       int64   `json:"optimized_executions"`
	FastJITExecPercentage     float64 `json:"fast_jit_exec_percentage"`
	OptimizedExecPercentage   float64 `json:"optimized_exec_percentage"`
	AvgExecutionsBeforeSwitch int     `json:"avg_executions_before_switch"`

	// Cache performance.

	TotalCacheLookups   int64   `json:"total_cache_lookups"`
	CacheSequentialHits int64   `json:"cache_sequential_hits"`
	CacheBranchHits     int64   `json:"cache_branch_hits"`
	CacheMisses         int64   `json:"cache_misses"`
	CacheHitRate        float64 `json:"cache_hit_rate"`
	CacheMissRate       float64 `json:"cache_miss_rate"`

	// On-disk artifact references. Always plain strings for portability;
	// empty means the artifact was not produced.

	ProfilingReportPath string `json:"profiling_report_path"`
	StatsJSONPath       string `json:"stats_json_path"`

	// CategoryBreakdown is an optional per-category metric breakdown.
	// Nil serializes as null.
	CategoryBreakdown map[string]float64 `json:"category_breakdown"`
}
