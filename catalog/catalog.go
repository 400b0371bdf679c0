// Package catalog looks up named build configurations from the JSON build
// catalogs (example-builds.json for program profiles, etiss-builds.json for
// engine variants).
package catalog

import (
	"encoding/json"
	"fmt"
	"log/slog"
	"os"
	"sort"
)

// Category selects which catalog a lookup searches.
type Category string

const (
	// Examples is the execution-profile catalog for benchmark programs.
	Examples Category = "examples"

	// Engine is the build-variant catalog for the simulation engine.
	Engine Category = "etiss"
)

// Record is one build configuration from a catalog. The structure is opaque
// to the sweep engine beyond the injected "name" key.
type Record map[string]any

// Name returns the profile name injected at lookup time.
func (r Record) Name() string {
	name, _ := r["name"].(string)
	return name
}

// catalogFile mirrors the on-disk catalog layout: a top-level "builds"
// mapping of profile name to record.
type catalogFile struct {
	Builds map[string]Record `json:"builds"`
}

// Registry resolves profile names against the two build catalogs.
type Registry struct {
	examplesPath string
	enginePath   string
	logger       *slog.Logger
}

// NewRegistry creates a registry reading from the given catalog files.
// A nil logger falls back to slog.Default().
func NewRegistry(examplesPath, enginePath string, logger *slog.Logger) *Registry {
	if logger == nil {
		logger = slog.Default()
	}
	return &Registry{
		examplesPath: examplesPath,
		enginePath:   enginePath,
		logger:       logger,
	}
}

// Profile looks up a profile by name in the selected catalog. On success it
// returns a copy of the stored record with the "name" key added; callers can
// mutate the copy freely. A missing catalog file, malformed JSON, or absent
// key is logged and reported as ok=false rather than propagated, so one
// misconfigured profile cannot abort a sweep.
func (r *Registry) Profile(name string, category Category) (Record, bool) {
	file, err := r.load(category)
	if err != nil {
		r.logger.Error("profile lookup failed",
			"profile", name,
			"catalog", string(category),
			"err", err)
		return nil, false
	}

	stored, ok := file.Builds[name]
	if !ok {
		r.logger.Error("profile lookup failed",
			"profile", name,
			"catalog", string(category),
			"err", "no such profile")
		return nil, false
	}

	record := make(Record, len(stored)+1)
	for k, v := range stored {
		record[k] = v
	}
	record["name"] = name
	return record, true
}

// Names returns the sorted profile names available in the selected catalog.
func (r *Registry) Names(category Category) ([]string, error) {
	file, err := r.load(category)
	if err != nil {
		return nil, err
	}

	names := make([]string, 0, len(file.Builds))
	for name := range file.Builds {
		names = append(names, name)
	}
	sort.Strings(names)
	return names, nil
}

func (r *Registry) load(category Category) (*catalogFile, error) {
	path := r.examplesPath
	if category == Engine {
		path = r.enginePath
	}

	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read catalog %s: %w", path, err)
	}

	var file catalogFile
	if err := json.Unmarshal(data, &file); err != nil {
		return nil, fmt.Errorf("failed to parse catalog %s: %w", path, err)
	}
	if file.Builds == nil {
		return nil, fmt.Errorf("catalog %s has no builds section", path)
	}
	return &file, nil
}
