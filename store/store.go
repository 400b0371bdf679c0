// Package store persists sweep results as durable JSON artifacts.
package store

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/google/uuid"

	"github.com/simtools/etissbench/bench"
)

// Document is the persisted result artifact. A single-sweep document carries
// Profile and ETISSVariant; a multi-sweep document carries the plural forms.
// Results are always in sweep iteration order.
type Document struct {
	// RunID uniquely identifies the invocation that produced this artifact.
	RunID string `json:"run_id"`

	// CreatedAt is the artifact creation time in RFC 3339 form.
	CreatedAt string `json:"created_at"`

	Profile      string `json:"profile,omitempty"`
	ETISSVariant string `json:"etiss_variant,omitempty"`

	Profiles      []string `json:"profiles,omitempty"`
	ETISSVariants []string `json:"etiss_variants,omitempty"`

	Results []bench.Result `json:"results"`
}

// NewSingle builds a single-sweep document.
func NewSingle(profile string, variant bench.Variant, results []bench.Result) Document {
	return Document{
		RunID:        uuid.NewString(),
		CreatedAt:    time.Now().UTC().Format(time.RFC3339),
		Profile:      profile,
		ETISSVariant: variant.Canonical,
		Results:      results,
	}
}

// NewMulti builds a multi-sweep document covering every profile and variant
// an outer sweep visited. Variants are recorded as given on the command
// line, matching the metadata consumers expect.
func NewMulti(profiles, variants []string, results []bench.Result) Document {
	return Document{
		RunID:         uuid.NewString(),
		CreatedAt:     time.Now().UTC().Format(time.RFC3339),
		Profiles:      profiles,
		ETISSVariants: variants,
		Results:       results,
	}
}

// Save writes the document to path. The whole document is marshalled in
// memory and moved into place with a rename, so readers never observe a
// partially written artifact.
func Save(path string, doc Document) error {
	data, err := json.MarshalIndent(doc, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to serialize results: %w", err)
	}
	data = append(data, '\n')

	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, 0755); err != nil {
		return fmt.Errorf("failed to create output directory: %w", err)
	}

	tmp, err := os.CreateTemp(dir, filepath.Base(path)+".tmp-*")
	if err != nil {
		return fmt.Errorf("failed to create temp file: %w", err)
	}
	tmpName := tmp.Name()

	if _, err := tmp.Write(data); err != nil {
		_ = tmp.Close()
		_ = os.Remove(tmpName)
		return fmt.Errorf("failed to write results: %w", err)
	}
	if err := tmp.Close(); err != nil {
		_ = os.Remove(tmpName)
		return fmt.Errorf("failed to close temp file: %w", err)
	}

	if err := os.Rename(tmpName, path); err != nil {
		_ = os.Remove(tmpName)
		return fmt.Errorf("failed to move results into place: %w", err)
	}
	return nil
}

// Load reads a previously saved artifact.
func Load(path string) (Document, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return Document{}, fmt.Errorf("failed to read results file: %w", err)
	}

	var doc Document
	if err := json.Unmarshal(data, &doc); err != nil {
		return Document{}, fmt.Errorf("failed to parse results file: %w", err)
	}
	return doc, nil
}
