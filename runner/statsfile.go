package runner

import (
	"strconv"
	"strings"

	"github.com/simtools/etissbench/bench"
)

// statsTimestampLayout is second-resolution; repeats within one second are
// disambiguated with a sequence suffix below.
const statsTimestampLayout = "20060102_150405"

// statsFileName composes the descriptive filename for a run's structured
// stats export. Token order: program, profile, variant display name, jit,
// optional fast jit, optional thread count, block size, timestamp.
func (inv *Invoker) statsFileName(cfg bench.Config) string {
	parts := []string{
		cfg.Program,
		"profile-" + cfg.Profile,
		"variant-" + cfg.Variant.Display,
		"jit-" + cfg.JIT,
	}

	if cfg.FastJIT.Valid {
		parts = append(parts, "fast-"+cfg.FastJIT.Value)
		if cfg.OptimizationThreads.Valid {
			parts = append(parts, "threads-"+strconv.Itoa(cfg.OptimizationThreads.Value))
		}
	}

	parts = append(parts, "block-"+strconv.Itoa(cfg.BlockSize))
	parts = append(parts, inv.now().Format(statsTimestampLayout))

	base := strings.Join(parts, "_")

	inv.mu.Lock()
	defer inv.mu.Unlock()
	if base == inv.lastBase {
		inv.lastSeq++
		return base + "_" + strconv.Itoa(inv.lastSeq) + ".json"
	}
	inv.lastBase = base
	inv.lastSeq = 1
	return base + ".json"
}
