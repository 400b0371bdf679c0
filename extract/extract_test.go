package extract_test

import (
	"errors"
	"io"
	"log/slog"
	"os"
	"path/filepath"

	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"

	"github.com/simtools/etissbench/bench"
	"github.com/simtools/etissbench/extract"
	"github.com/simtools/etissbench/runner"
)

var _ = Describe("Extractor", func() {
	var (
		extractor *extract.Extractor
		cfg       bench.Config
		tempDir   string
	)

	newQuietExtractor := func() *extract.Extractor {
		logger := slog.New(slog.NewTextHandler(io.Discard, nil))
		return extract.NewExtractor(extract.WithLogger(logger))
	}

	writeStats := func(content string) string {
		path := filepath.Join(tempDir, "stats.json")
		Expect(os.WriteFile(path, []byte(content), 0644)).To(Succeed())
		return path
	}

	BeforeEach(func() {
		extractor = newQuietExtractor()

		var err error
		tempDir, err = os.MkdirTemp("", "extract-test-*")
		Expect(err).NotTo(HaveOccurred())
		DeferCleanup(func() {
			_ = os.RemoveAll(tempDir)
		})
		cfg = bench.Config{
			Program:   "hello_world",
			Profile:   "default",
			Variant:   bench.NormalizeVariant("default"),
			JIT:       "TCC",
			BlockSize: 100,
		}
	})

	Describe("structured extraction", func() {
		It("maps every section onto result fields", func() {
			path := writeStats(`{
				"metadata": {"version": 2},
				"performance": {
					"mips_estimated": 12.5,
					"mips_corrected": 11.0,
					"simulation_time_s": 0.8,
					"wall_time_s": 1.9,
					"cpu_cycles": 123456.0,
					"cpu_time_s": 0.75
				},
				"compilation": {
					"unique_blocks": 42.0,
					"fast_jit_blocks": 30.0,
					"optimizing_jit_blocks": 12.0,
					"total_time_s": 0.5,
					"fast_jit_time_s": 0.1,
					"optimizing_jit_time_s": 0.4,
					"avg_fast_jit_time_ms": 3.3,
					"avg_optimizing_jit_time_ms": 33.0,
					"fast_jit_speedup": 10.0,
					"compilation_percentage": 26.3,
					"execution_percentage": 73.7
				},
				"execution": {
					"total_block_executions": 9000.0,
					"fast_jit_executions": 6000.0,
					"optimized_executions": 3000.0,
					"fast_jit_exec_percentage": 66.7,
					"optimized_exec_percentage": 33.3,
					"block_execution_time_ms": 1400.0
				},
				"optimization": {
					"blocks_optimized": 12.0,
					"blocks_switched": 10.0,
					"optimization_success_rate": 0.83,
					"switch_rate": 0.71,
					"avg_executions_before_switch": 500.0
				},
				"cache": {
					"total_lookups": 9100.0,
					"sequential_hits": 8000.0,
					"branch_hits": 900.0,
					"misses": 200.0,
					"hit_rate": 0.978,
					"miss_rate": 0.022
				}
			}`)

			result, err := extractor.Extract(runner.Payload{StatsPath: path}, cfg)
			Expect(err).NotTo(HaveOccurred())

			Expect(result.Program).To(Equal("hello_world"))
			Expect(result.MIPSEstimated).To(Equal(12.5))
			Expect(result.MIPSCorrected).To(Equal(11.0))
			Expect(result.SimTime).To(Equal(0.8))
			Expect(result.WallTime).To(Equal(1.9))
			Expect(result.CPUCycles).To(Equal(int64(123456)))
			Expect(result.CPUTimeSimulated).To(Equal(0.75))

			Expect(result.UniqueBlocksCompiled).To(Equal(42))
			Expect(result.FastJITBlocks).To(Equal(30))
			Expect(result.OptimizingJITBlocks).To(Equal(12))
			Expect(result.TotalCompilationTimeS).To(Equal(0.5))
			Expect(result.FastJITSpeedup).To(Equal(10.0))

			Expect(result.TotalBlockExecutions).To(Equal(int64(9000)))
			Expect(result.BlockExecutionTimeMS).To(Equal(1400.0))

			Expect(result.BlocksOptimized).To(Equal(12))
			Expect(result.AvgExecutionsBeforeSwitch).To(Equal(500))

			Expect(result.TotalCacheLookups).To(Equal(int64(9100)))
			Expect(result.CacheHitRate).To(Equal(0.978))

			Expect(result.StatsJSONPath).To(Equal(path))
		})

		It("defaults absent keys and sections to zero", func() {
			path := writeStats(`{"performance": {"mips_estimated": 5.0}, "cache": {}}`)

			result, err := extractor.Extract(runner.Payload{StatsPath: path}, cfg)
			Expect(err).NotTo(HaveOccurred())

			Expect(result.MIPSEstimated).To(Equal(5.0))
			Expect(result.MIPSCorrected).To(BeZero())
			Expect(result.CacheHitRate).To(BeZero())
			Expect(result.UniqueBlocksCompiled).To(BeZero())
		})

		It("handles an empty document", func() {
			path := writeStats(`{}`)

			result, err := extractor.Extract(runner.Payload{StatsPath: path}, cfg)
			Expect(err).NotTo(HaveOccurred())
			Expect(result.CacheHitRate).To(BeZero())
			Expect(result.Config).To(Equal(cfg))
		})

		It("reports malformed JSON as a distinct error", func() {
			path := writeStats(`{not json`)

			_, err := extractor.Extract(runner.Payload{StatsPath: path}, cfg)
			Expect(err).To(HaveOccurred())

			var malformed *extract.MalformedStatsError
			Expect(errors.As(err, &malformed)).To(BeTrue())
			Expect(malformed.Path).To(Equal(path))
		})
	})

	Describe("fallback extraction", func() {
		It("extracts the labeled metrics from stdout", func() {
			payload := runner.Payload{
				Stdout: "=== Simulation done ===\n" +
					"MIPS (estimated): 12.5\n" +
					"MIPS (corrected): 11.25\n" +
					"Simulation Time: 0.8s\n" +
					"Wallclock Time: 1.9s\n" +
					"CPU Cycles (estimated): 1.5e+06\n",
				StatsPath: filepath.Join(tempDir, "never-written.json"),
			}

			result, err := extractor.Extract(payload, cfg)
			Expect(err).NotTo(HaveOccurred())

			Expect(result.MIPSEstimated).To(Equal(12.5))
			Expect(result.MIPSCorrected).To(Equal(11.25))
			Expect(result.SimTime).To(Equal(0.8))
			Expect(result.WallTime).To(Equal(1.9))
			Expect(result.CPUCycles).To(Equal(int64(1500000)))
			Expect(result.StatsJSONPath).To(BeEmpty())
		})

		It("defaults unmatched patterns to zero", func() {
			payload := runner.Payload{
				Stdout:    "no recognizable metrics here",
				StatsPath: filepath.Join(tempDir, "never-written.json"),
			}

			result, err := extractor.Extract(payload, cfg)
			Expect(err).NotTo(HaveOccurred())
			Expect(result.MIPSEstimated).To(BeZero())
			Expect(result.WallTime).To(BeZero())
			Expect(result.Config).To(Equal(cfg))
		})
	})

	Describe("lookup dispatch", func() {
		It("prefers the structured path when the file exists", func() {
			path := writeStats(`{"performance": {"mips_estimated": 99.0}}`)
			payload := runner.Payload{
				Stdout:    "MIPS (estimated): 1.0\n",
				StatsPath: path,
			}

			result, err := extractor.Extract(payload, cfg)
			Expect(err).NotTo(HaveOccurred())
			Expect(result.MIPSEstimated).To(Equal(99.0))
		})

		It("honors an injected lookup", func() {
			path := writeStats(`{"performance": {"mips_estimated": 99.0}}`)
			logger := slog.New(slog.NewTextHandler(io.Discard, nil))
			forcedMiss := extract.NewExtractor(
				extract.WithLogger(logger),
				extract.WithLookup(func(string) extract.StatsLookup {
					return extract.StatsLookup{Path: path}
				}),
			)

			result, err := forcedMiss.Extract(runner.Payload{
				Stdout:    "MIPS (estimated): 1.0\n",
				StatsPath: path,
			}, cfg)
			Expect(err).NotTo(HaveOccurred())
			Expect(result.MIPSEstimated).To(Equal(1.0))
		})
	})
})

var _ = Describe("LookupStats", func() {
	var tempDir string

	BeforeEach(func() {
		var err error
		tempDir, err = os.MkdirTemp("", "lookup-test-*")
		Expect(err).NotTo(HaveOccurred())
		DeferCleanup(func() {
			_ = os.RemoveAll(tempDir)
		})
	})

	It("reports missing files as not found", func() {
		lookup := extract.LookupStats(filepath.Join(tempDir, "absent.json"))
		Expect(lookup.Found).To(BeFalse())
	})

	It("reports existing files as found", func() {
		path := filepath.Join(tempDir, "present.json")
		Expect(os.WriteFile(path, []byte("{}"), 0644)).To(Succeed())

		lookup := extract.LookupStats(path)
		Expect(lookup.Found).To(BeTrue())
		Expect(lookup.Path).To(Equal(path))
	})

	It("treats an empty path as not found", func() {
		Expect(extract.LookupStats("").Found).To(BeFalse())
	})
})
