package sweep_test

import (
	"context"
	"fmt"
	"io"
	"log/slog"

	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"

	"github.com/simtools/etissbench/bench"
	"github.com/simtools/etissbench/runner"
	"github.com/simtools/etissbench/sweep"
)

// fakeInvoker records invocations and fails the configurations selected by
// failOn.
type fakeInvoker struct {
	runs   []bench.Config
	builds []string
	failOn func(bench.Config) bool
}

func (f *fakeInvoker) Run(_ context.Context, cfg bench.Config) (runner.Payload, error) {
	f.runs = append(f.runs, cfg)
	if f.failOn != nil && f.failOn(cfg) {
		return runner.Payload{}, &runner.RunError{
			Stdout: "partial",
			Stderr: "boom",
			Err:    fmt.Errorf("exit status 1"),
		}
	}
	return runner.Payload{Stdout: "MIPS (estimated): 1.0\n"}, nil
}

func (f *fakeInvoker) BuildProgram(_ context.Context, profile, program string, clean bool) error {
	f.builds = append(f.builds, program)
	return nil
}

// fakeExtractor echoes the configuration back as an empty result.
type fakeExtractor struct {
	failOn func(bench.Config) bool
}

func (f *fakeExtractor) Extract(_ runner.Payload, cfg bench.Config) (bench.Result, error) {
	if f.failOn != nil && f.failOn(cfg) {
		return bench.Result{}, fmt.Errorf("bad stats")
	}
	return bench.Result{Config: cfg, MIPSEstimated: 1.0}, nil
}

var _ = Describe("Driver", func() {
	var (
		invoker   *fakeInvoker
		extractor *fakeExtractor
		driver    *sweep.Driver
		ctx       context.Context
	)

	quiet := slog.New(slog.NewTextHandler(io.Discard, nil))

	BeforeEach(func() {
		ctx = context.Background()
		invoker = &fakeInvoker{}
		extractor = &fakeExtractor{}
		driver = sweep.New(invoker, extractor, "default", "default",
			sweep.WithLogger(quiet))
	})

	It("attempts the full cross product", func() {
		axes := sweep.Axes{
			Programs:            []string{"hello_world", "dhrystone"},
			JITs:                []string{"TCC", "GCC"},
			FastJITs:            []bench.OptionalString{bench.SomeString("TCC"), {}},
			OptimizationThreads: []bench.OptionalInt{bench.SomeInt(2)},
			BlockSizes:          []int{50, 100, 200},
		}

		results, failures, err := driver.Run(ctx, axes, false)
		Expect(err).NotTo(HaveOccurred())
		Expect(axes.Size()).To(Equal(2 * 2 * 2 * 1 * 3))
		Expect(len(results) + len(failures)).To(Equal(axes.Size()))
		Expect(failures).To(BeEmpty())
		Expect(invoker.runs).To(HaveLen(axes.Size()))
	})

	It("iterates in lexicographic axis order", func() {
		axes := sweep.Axes{
			Programs:   []string{"hello_world"},
			JITs:       []string{"TCC"},
			BlockSizes: []int{50, 100},
		}

		results, failures, err := driver.Run(ctx, axes, false)
		Expect(err).NotTo(HaveOccurred())
		Expect(failures).To(BeEmpty())
		Expect(results).To(HaveLen(2))

		Expect(axes.Size()).To(Equal(2))
		Expect(results[0].BlockSize).To(Equal(50))
		Expect(results[1].BlockSize).To(Equal(100))
		Expect(results[0].FastJIT.Valid).To(BeFalse())
		Expect(results[0].OptimizationThreads.Valid).To(BeFalse())

		// Block size is the innermost axis; program the outermost.
		axes.Programs = []string{"a", "b"}
		invoker.runs = nil
		_, _, err = driver.Run(ctx, axes, false)
		Expect(err).NotTo(HaveOccurred())
		order := make([]string, len(invoker.runs))
		for i, cfg := range invoker.runs {
			order[i] = fmt.Sprintf("%s/%d", cfg.Program, cfg.BlockSize)
		}
		Expect(order).To(Equal([]string{"a/50", "a/100", "b/50", "b/100"}))
	})

	It("isolates failing combinations and keeps going", func() {
		invoker.failOn = func(cfg bench.Config) bool {
			return cfg.BlockSize == 100
		}
		axes := sweep.Axes{
			Programs:   []string{"hello_world"},
			JITs:       []string{"TCC"},
			BlockSizes: []int{50, 100, 200},
		}

		results, failures, err := driver.Run(ctx, axes, false)
		Expect(err).NotTo(HaveOccurred())

		Expect(results).To(HaveLen(2))
		Expect(results[0].BlockSize).To(Equal(50))
		Expect(results[1].BlockSize).To(Equal(200))

		Expect(failures).To(HaveLen(1))
		Expect(failures[0].Config.BlockSize).To(Equal(100))
		Expect(len(results) + len(failures)).To(Equal(axes.Size()))
	})

	It("records extraction errors as failures", func() {
		extractor.failOn = func(cfg bench.Config) bool {
			return cfg.BlockSize == 50
		}
		axes := sweep.Axes{
			Programs:   []string{"hello_world"},
			JITs:       []string{"TCC"},
			BlockSizes: []int{50, 100},
		}

		results, failures, err := driver.Run(ctx, axes, false)
		Expect(err).NotTo(HaveOccurred())
		Expect(results).To(HaveLen(1))
		Expect(failures).To(HaveLen(1))
		Expect(failures[0].Err).To(MatchError(ContainSubstring("bad stats")))
	})

	It("rebuilds each program exactly once before running", func() {
		axes := sweep.Axes{
			Programs:   []string{"hello_world", "dhrystone"},
			JITs:       []string{"TCC", "GCC"},
			BlockSizes: []int{50, 100},
		}

		_, _, err := driver.Run(ctx, axes, true)
		Expect(err).NotTo(HaveOccurred())
		Expect(invoker.builds).To(Equal([]string{"hello_world", "dhrystone"}))
	})

	It("stamps driver identity onto every configuration", func() {
		driver = sweep.New(invoker, extractor, "release", "jit_stats",
			sweep.WithLogger(quiet),
			sweep.WithOptLevels("2", "fast"))
		axes := sweep.Axes{
			Programs:   []string{"hello_world"},
			JITs:       []string{"LLVM"},
			BlockSizes: []int{100},
		}

		results, _, err := driver.Run(ctx, axes, false)
		Expect(err).NotTo(HaveOccurred())
		Expect(results).To(HaveLen(1))

		cfg := results[0].Config
		Expect(cfg.Profile).To(Equal("release"))
		Expect(cfg.Variant.Canonical).To(Equal("etiss_jit_stats"))
		Expect(cfg.GCCOptLevel).To(Equal("2"))
		Expect(cfg.LLVMOptLevel).To(Equal("fast"))
	})

	It("rejects empty required axes", func() {
		_, _, err := driver.Run(ctx, sweep.Axes{}, false)
		Expect(err).To(HaveOccurred())

		_, _, err = driver.Run(ctx, sweep.Axes{
			Programs:   []string{"hello_world"},
			JITs:       []string{"TCC"},
			BlockSizes: []int{0},
		}, false)
		Expect(err).To(MatchError(ContainSubstring("positive")))
	})
})
