package report

import (
	"fmt"
	"io"
)

// MarkdownGenerator renders a Report as GitHub-flavored Markdown, for
// pasting into a PR description or CI summary.
type MarkdownGenerator struct {
	// IncludeDetails adds a per-bucket improvement percentage row.
	IncludeDetails bool
}

// Generate writes report as Markdown to w.
func (g *MarkdownGenerator) Generate(report *Report, w io.Writer) error {
	fmt.Fprintf(w, "# cohesort run %s\n\n", report.RunID)
	fmt.Fprintf(w, "- input: `%s`\n", report.InputPath)
	fmt.Fprintf(w, "- algorithm: `%s`\n", report.Algorithm)
	fmt.Fprintf(w, "- generated: %s\n", report.GeneratedAt.Format("2006-01-02 15:04:05"))
	fmt.Fprintf(w, "- total targets: %d, unhashed: %d\n\n", report.TotalTargets, report.Unhashed)

	if len(report.Buckets) == 0 {
		fmt.Fprintln(w, "No buckets produced.")
		return nil
	}

	fmt.Fprintln(w, "## Buckets")
	fmt.Fprintln(w)
	if g.IncludeDetails {
		fmt.Fprintln(w, "| distribution | count | sub-batches | tour before | tour after | improvement |")
		fmt.Fprintln(w, "|---|---|---|---|---|---|")
		for _, b := range report.Buckets {
			fmt.Fprintf(w, "| %s | %d | %d | %d | %d | %.1f%% |\n",
				b.Distribution, b.Count, b.SubBatches, b.TourLengthBefore, b.TourLengthAfter, b.Improvement()*100)
		}
	} else {
		fmt.Fprintln(w, "| distribution | count | sub-batches | tour before | tour after |")
		fmt.Fprintln(w, "|---|---|---|---|---|")
		for _, b := range report.Buckets {
			fmt.Fprintf(w, "| %s | %d | %d | %d | %d |\n",
				b.Distribution, b.Count, b.SubBatches, b.TourLengthBefore, b.TourLengthAfter)
		}
	}

	fmt.Fprintln(w)
	fmt.Fprintln(w, "## Timings")
	fmt.Fprintln(w)
	fmt.Fprintf(w, "sketch %s, distance %s, optimize %s, total %s\n",
		report.Timings.Sketch, report.Timings.Distance, report.Timings.Optimize, report.Timings.Total())

	return nil
}

// Extension returns the file extension.
func (g *MarkdownGenerator) Extension() string {
	return "md"
}
