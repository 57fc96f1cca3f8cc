// Package report renders a summary of one cohesort run: how targets were
// bucketed by byte distribution, how much each bucket's tour length
// shrank under optimization, and how long each phase took.
package report

import (
	"encoding/json"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"time"

	"github.com/cohesort/cohesort/internal/diagnostics"
)

// BucketSummary describes one byte-distribution bucket's contribution to
// the final ordering.
type BucketSummary struct {
	Distribution     string `json:"distribution"` // uniform, ascii, non-ascii
	Count            int    `json:"count"`
	SubBatches       int    `json:"sub_batches"`
	TourLengthBefore uint64 `json:"tour_length_before,omitempty"`
	TourLengthAfter  uint64 `json:"tour_length_after,omitempty"`
}

// Improvement returns the fraction of tour length removed by
// optimization, 0 when there was nothing to optimize (e.g. the Uniform
// bucket, or ByteDistributions mode).
func (b BucketSummary) Improvement() float64 {
	if b.TourLengthBefore == 0 {
		return 0
	}
	return 1 - float64(b.TourLengthAfter)/float64(b.TourLengthBefore)
}

// PhaseTimings records wall-clock duration per pipeline phase, as
// measured by the orchestrator.
type PhaseTimings struct {
	Sketch   time.Duration `json:"sketch_ns"`
	Distance time.Duration `json:"distance_ns"`
	Optimize time.Duration `json:"optimize_ns"`
}

// MarshalJSON renders durations as human-readable strings rather than
// raw nanosecond integers.
func (p PhaseTimings) MarshalJSON() ([]byte, error) {
	return json.Marshal(struct {
		Sketch   string `json:"sketch"`
		Distance string `json:"distance"`
		Optimize string `json:"optimize"`
	}{
		Sketch:   p.Sketch.String(),
		Distance: p.Distance.String(),
		Optimize: p.Optimize.String(),
	})
}

// UnmarshalJSON parses the string form MarshalJSON produces, so a
// written JSON report can be loaded back for serving.
func (p *PhaseTimings) UnmarshalJSON(data []byte) error {
	var raw struct {
		Sketch   string `json:"sketch"`
		Distance string `json:"distance"`
		Optimize string `json:"optimize"`
	}
	if err := json.Unmarshal(data, &raw); err != nil {
		return err
	}
	var err error
	if raw.Sketch != "" {
		if p.Sketch, err = time.ParseDuration(raw.Sketch); err != nil {
			return err
		}
	}
	if raw.Distance != "" {
		if p.Distance, err = time.ParseDuration(raw.Distance); err != nil {
			return err
		}
	}
	if raw.Optimize != "" {
		if p.Optimize, err = time.ParseDuration(raw.Optimize); err != nil {
			return err
		}
	}
	return nil
}

// Total returns the sum of all phase durations.
func (p PhaseTimings) Total() time.Duration {
	return p.Sketch + p.Distance + p.Optimize
}

// Report is the outcome of one cohesort invocation, independent of how
// it gets rendered.
type Report struct {
	RunID       string    `json:"run_id"`
	GeneratedAt time.Time `json:"generated_at"`
	InputPath   string    `json:"input_path"`
	Algorithm   string    `json:"algorithm"`

	TotalTargets int             `json:"total_targets"`
	Unhashed     int             `json:"unhashed"`
	Buckets      []BucketSummary `json:"buckets"`
	Timings      PhaseTimings    `json:"timings"`

	// Adjacency holds the optional cross-check of adjacent pairs in the
	// final ordering, computed with hashes independent of the sketch
	// that produced it.
	Adjacency []diagnostics.Pair `json:"adjacency,omitempty"`
}

// NewReport creates a report shell for one run; callers fill in buckets
// and timings as the orchestrator completes each phase.
func NewReport(runID, inputPath, algorithm string) *Report {
	return &Report{
		RunID:       runID,
		GeneratedAt: time.Now(),
		InputPath:   inputPath,
		Algorithm:   algorithm,
	}
}

// AddBucket appends one bucket's summary and folds its count into the
// run total.
func (r *Report) AddBucket(b BucketSummary) {
	r.Buckets = append(r.Buckets, b)
	r.TotalTargets += b.Count
}

// BucketByDistribution returns the summary for the named bucket, or
// false if that distribution produced no targets this run.
func (r *Report) BucketByDistribution(dist string) (BucketSummary, bool) {
	for _, b := range r.Buckets {
		if b.Distribution == dist {
			return b, true
		}
	}
	return BucketSummary{}, false
}

// TotalTourLength sums tour length (before, after) across all buckets.
func (r *Report) TotalTourLength() (before, after uint64) {
	for _, b := range r.Buckets {
		before += b.TourLengthBefore
		after += b.TourLengthAfter
	}
	return
}

// Generator is the interface every report format implements.
type Generator interface {
	Generate(report *Report, w io.Writer) error
	Extension() string
}

// Manager dispatches report generation by format name and, optionally,
// writes the result to outputDir.
type Manager struct {
	generators map[string]Generator
	outputDir  string
}

// NewManager creates a Manager with the json, html, and markdown
// generators registered.
func NewManager(outputDir string) *Manager {
	m := &Manager{
		generators: make(map[string]Generator),
		outputDir:  outputDir,
	}

	m.RegisterGenerator("json", &JSONGenerator{Indent: true})
	m.RegisterGenerator("html", NewHTMLGenerator())
	m.RegisterGenerator("markdown", &MarkdownGenerator{})
	m.RegisterGenerator("md", &MarkdownGenerator{})

	return m
}

// RegisterGenerator registers (or overrides) a generator for a format
// name.
func (m *Manager) RegisterGenerator(format string, gen Generator) {
	m.generators[format] = gen
}

// GetGenerator returns the generator registered for format.
func (m *Manager) GetGenerator(format string) (Generator, bool) {
	gen, ok := m.generators[format]
	return gen, ok
}

// Generate renders report in format and writes it to a timestamped file
// under the Manager's output directory, returning the file path.
func (m *Manager) Generate(report *Report, format string) (string, error) {
	gen, ok := m.generators[format]
	if !ok {
		return "", fmt.Errorf("report: unknown format %q", format)
	}

	if err := os.MkdirAll(m.outputDir, 0755); err != nil {
		return "", fmt.Errorf("report: create output dir: %w", err)
	}

	timestamp := time.Now().Format("20060102_150405")
	filename := fmt.Sprintf("cohesort_%s.%s", timestamp, gen.Extension())
	path := filepath.Join(m.outputDir, filename)

	f, err := os.Create(path)
	if err != nil {
		return "", fmt.Errorf("report: create file: %w", err)
	}
	defer f.Close()

	if err := gen.Generate(report, f); err != nil {
		return "", fmt.Errorf("report: generate: %w", err)
	}

	return path, nil
}

// GenerateAll renders report in every registered format, skipping
// duplicate extensions (markdown and md both produce .md).
func (m *Manager) GenerateAll(report *Report) ([]string, error) {
	var paths []string
	seen := make(map[string]bool)

	for _, gen := range m.generators {
		ext := gen.Extension()
		if seen[ext] {
			continue
		}
		seen[ext] = true

		path, err := m.generateWith(report, gen)
		if err != nil {
			return paths, err
		}
		paths = append(paths, path)
	}

	return paths, nil
}

func (m *Manager) generateWith(report *Report, gen Generator) (string, error) {
	if err := os.MkdirAll(m.outputDir, 0755); err != nil {
		return "", fmt.Errorf("report: create output dir: %w", err)
	}
	timestamp := time.Now().Format("20060102_150405")
	filename := fmt.Sprintf("cohesort_%s.%s", timestamp, gen.Extension())
	path := filepath.Join(m.outputDir, filename)

	f, err := os.Create(path)
	if err != nil {
		return "", fmt.Errorf("report: create file: %w", err)
	}
	defer f.Close()

	if err := gen.Generate(report, f); err != nil {
		return "", fmt.Errorf("report: generate: %w", err)
	}
	return path, nil
}

// WriteToWriter renders report in format directly to w, without
// touching the filesystem — used by the report server to stream a
// response body.
func (m *Manager) WriteToWriter(report *Report, format string, w io.Writer) error {
	gen, ok := m.generators[format]
	if !ok {
		return fmt.Errorf("report: unknown format %q", format)
	}
	return gen.Generate(report, w)
}
