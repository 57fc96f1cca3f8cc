package report

import (
	"encoding/json"
	"io"
)

// JSONGenerator renders a Report as JSON, the machine-readable format
// the serve and query subcommands read back.
type JSONGenerator struct {
	// Indent pretty-prints with two-space indentation.
	Indent bool
}

// Generate writes report as JSON to w.
func (g *JSONGenerator) Generate(report *Report, w io.Writer) error {
	enc := json.NewEncoder(w)
	if g.Indent {
		enc.SetIndent("", "  ")
	}
	return enc.Encode(report)
}

// Extension returns the file extension.
func (g *JSONGenerator) Extension() string {
	return "json"
}
