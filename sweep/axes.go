package sweep

import (
	"fmt"

	"github.com/simtools/etissbench/bench"
)

// Axes defines the configuration space one sweep explores. Programs, JITs,
// and BlockSizes are required; the optional axes default to a single unset
// element so the cross product always has a well-defined, non-empty shape.
type Axes struct {
	Programs            []string
	JITs                []string
	FastJITs            []bench.OptionalString
	OptimizationThreads []bench.OptionalInt
	BlockSizes          []int
}

// withDefaults returns a copy with absent optional axes replaced by a
// single-element unset axis.
func (a Axes) withDefaults() Axes {
	if len(a.FastJITs) == 0 {
		a.FastJITs = []bench.OptionalString{{}}
	}
	if len(a.OptimizationThreads) == 0 {
		a.OptimizationThreads = []bench.OptionalInt{{}}
	}
	return a
}

// validate checks the required axes. It assumes withDefaults has run.
func (a Axes) validate() error {
	if len(a.Programs) == 0 {
		return fmt.Errorf("sweep requires at least one program")
	}
	if len(a.JITs) == 0 {
		return fmt.Errorf("sweep requires at least one JIT kind")
	}
	if len(a.BlockSizes) == 0 {
		return fmt.Errorf("sweep requires at least one block size")
	}
	for _, size := range a.BlockSizes {
		if size <= 0 {
			return fmt.Errorf("block size must be positive, got %d", size)
		}
	}
	return nil
}

// Size is the number of combinations the sweep will attempt.
func (a Axes) Size() int {
	a = a.withDefaults()
	return len(a.Programs) * len(a.JITs) * len(a.FastJITs) *
		len(a.OptimizationThreads) * len(a.BlockSizes)
}
