package extract

import "os"

// StatsLookup is the tagged outcome of probing for a run's structured stats
// export. Carrying the outcome explicitly keeps the structured-versus-
// fallback decision in one dispatcher instead of scattering existence checks
// through the extraction logic.
type StatsLookup struct {
	Path  string
	Found bool
}

// LookupStats probes the filesystem for the stats file at path.
func LookupStats(path string) StatsLookup {
	if path == "" {
		return StatsLookup{}
	}
	info, err := os.Stat(path)
	if err != nil || info.IsDir() {
		return StatsLookup{Path: path}
	}
	return StatsLookup{Path: path, Found: true}
}
