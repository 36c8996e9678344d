package models

import (
	"fmt"
	"strings"
	"time"

	"golang.org/x/text/language"
	"golang.org/x/text/message"
)

// numPrinter renders integers with thousands separators for readability in
// LLM-facing text (e.g. "12,345 builds").
var numPrinter = message.NewPrinter(language.English)

// LLMContext renders the analysis result as a fixed-structure Markdown block
// intended as context for a language model. The section order is always:
// summary, build status, duration, bottlenecks, projects at risk, top failing
// projects. Sections whose underlying data is empty are omitted entirely.
// Percentages carry one decimal place, durations zero.
func (r *BuildAnalysisResult) LLMContext() string {
	var b strings.Builder

	b.WriteString("# CI/CD Build Analysis Results\n\n")

	b.WriteString("## Summary\n")
	fmt.Fprintf(&b, "- Total builds analyzed: %s\n", numPrinter.Sprintf("%d", r.NBuilds))
	fmt.Fprintf(&b, "- Projects: %d\n", r.NProjects)
	if r.DateRangeStart != nil && r.DateRangeEnd != nil {
		fmt.Fprintf(&b, "- Date range: %s to %s\n",
			r.DateRangeStart.Format(time.RFC3339), r.DateRangeEnd.Format(time.RFC3339))
	}
	b.WriteString("\n")

	b.WriteString("## Build Status\n")
	fmt.Fprintf(&b, "- Success rate: %.1f%%\n", r.OverallSuccessRate*100)
	fmt.Fprintf(&b, "- Failure rate: %.1f%%\n", r.OverallFailureRate*100)
	fmt.Fprintf(&b, "- Error rate: %.1f%%\n", r.OverallErrorRate*100)
	b.WriteString("\n")

	b.WriteString("## Duration\n")
	fmt.Fprintf(&b, "- Median: %.0fs (%.1f min)\n", r.MedianDurationSeconds, r.MedianDurationSeconds/60)
	fmt.Fprintf(&b, "- P90: %.0fs (%.1f min)\n", r.P90DurationSeconds, r.P90DurationSeconds/60)
	fmt.Fprintf(&b, "- Max: %.0fs (%.1f min)\n", r.MaxDurationSeconds, r.MaxDurationSeconds/60)
	b.WriteString("\n")

	if len(r.Bottlenecks) > 0 {
		b.WriteString("## Bottlenecks\n")
		for i := range r.Bottlenecks {
			bn := &r.Bottlenecks[i]
			fmt.Fprintf(&b, "- %s: avg wait %.0fs (%d occurrences)\n",
				bn.Transition, bn.AvgWaitSeconds, bn.Frequency)
		}
		b.WriteString("\n")
	}

	if len(r.ProjectsAtRisk) > 0 {
		b.WriteString("## Projects at Risk\n")
		for _, p := range r.ProjectsAtRisk {
			fmt.Fprintf(&b, "- %s\n", p)
		}
		b.WriteString("\n")
	}

	if len(r.TopFailingProjects) > 0 {
		b.WriteString("## Top Failing Projects\n")
		for i := range r.TopFailingProjects {
			p := &r.TopFailingProjects[i]
			fmt.Fprintf(&b, "- %s: %.1f%% failure rate (%d builds)\n",
				p.Project, p.FailureRate*100, p.NBuilds)
		}
		b.WriteString("\n")
	}

	return b.String()
}
