// Package agents provides the insight agent and its query tools: read-only
// textual views over one BuildAnalysisResult, consumed by a tool-calling LLM
// loop and by the MCP server.
package agents

import (
	"fmt"
	"sort"
	"strings"

	"github.com/devflowhq/devflow/models"
)

// NoAnalysisMessage is returned by every query when no result is bound.
// The consumer is a language-model tool loop that cannot catch errors, so
// missing state is reported as text, never as a Go error.
const NoAnalysisMessage = "Error: No analysis data available."

// compareProjectsMaxRows caps the comparison table.
const compareProjectsMaxRows = 15

// Toolset binds one analysis result to the four query operations. Each
// analysis session constructs its own Toolset; there is no process-wide
// "current" result, so concurrent sessions cannot race on shared state.
type Toolset struct {
	result *models.BuildAnalysisResult
}

// NewToolset creates a Toolset over result. A nil result is allowed; every
// query then degrades to NoAnalysisMessage.
func NewToolset(result *models.BuildAnalysisResult) *Toolset {
	return &Toolset{result: result}
}

// SummaryStats returns the LLM-context rendering of the bound result.
func (t *Toolset) SummaryStats() string {
	if t.result == nil {
		return NoAnalysisMessage
	}
	return t.result.LLMContext()
}

// AnalyzeBottlenecks reports slow projects with their ratio to the overall
// median duration baseline.
func (t *Toolset) AnalyzeBottlenecks() string {
	if t.result == nil {
		return NoAnalysisMessage
	}
	r := t.result
	var lines []string
	lines = append(lines, "## Bottleneck Analysis\n")

	if len(r.Bottlenecks) == 0 {
		lines = append(lines, "No significant bottlenecks detected.")
		lines = append(lines, fmt.Sprintf("Median build duration: %.0fs", r.MedianDurationSeconds))
		lines = append(lines, fmt.Sprintf("P90 build duration: %.0fs", r.P90DurationSeconds))
		return strings.Join(lines, "\n")
	}

	lines = append(lines, fmt.Sprintf("Overall median duration: %.0fs (%.1f min)",
		r.MedianDurationSeconds, r.MedianDurationSeconds/60))
	lines = append(lines, fmt.Sprintf("Overall P90 duration: %.0fs (%.1f min)",
		r.P90DurationSeconds, r.P90DurationSeconds/60))
	lines = append(lines, fmt.Sprintf("\n### Slow Projects (>%.0fs median):\n", r.MedianDurationSeconds*2))

	for i := range r.Bottlenecks {
		b := &r.Bottlenecks[i]
		ratio := 0.0
		if r.MedianDurationSeconds > 0 {
			ratio = b.AvgWaitSeconds / r.MedianDurationSeconds
		}
		lines = append(lines, fmt.Sprintf("- **%s**: %.0fs avg (%.1fx baseline), %d builds",
			b.Transition, b.AvgWaitSeconds, ratio, b.Frequency))
	}

	return strings.Join(lines, "\n")
}

// AnalyzeFailures reports overall rates, the status distribution sorted by
// count descending, top-failing projects and projects at risk.
func (t *Toolset) AnalyzeFailures() string {
	if t.result == nil {
		return NoAnalysisMessage
	}
	r := t.result
	var lines []string
	lines = append(lines, "## Failure Pattern Analysis\n")

	lines = append(lines, fmt.Sprintf("Overall success rate: %.1f%%", r.OverallSuccessRate*100))
	lines = append(lines, fmt.Sprintf("Overall failure rate: %.1f%%", r.OverallFailureRate*100))
	lines = append(lines, fmt.Sprintf("Overall error rate: %.1f%%", r.OverallErrorRate*100))

	if len(r.StatusCounts) > 0 {
		lines = append(lines, "\n### Status Distribution:")
		for _, sc := range sortedStatusCounts(r.StatusCounts) {
			pct := 0.0
			if r.NBuilds > 0 {
				pct = float64(sc.count) / float64(r.NBuilds) * 100
			}
			lines = append(lines, fmt.Sprintf("- %s: %d (%.1f%%)", sc.status, sc.count, pct))
		}
	}

	if len(r.TopFailingProjects) > 0 {
		lines = append(lines, "\n### Top Failing Projects:")
		for i := range r.TopFailingProjects {
			p := &r.TopFailingProjects[i]
			lines = append(lines, fmt.Sprintf("- **%s**: %.1f%% failure rate, %.1f%% error rate (%d builds)",
				p.Project, p.FailureRate*100, p.ErrorRate*100, p.NBuilds))
		}
	}

	if len(r.ProjectsAtRisk) > 0 {
		lines = append(lines, "\n### Projects at Risk (>40% failure+error):")
		for _, p := range r.ProjectsAtRisk {
			lines = append(lines, fmt.Sprintf("- %s", p))
		}
	}

	return strings.Join(lines, "\n")
}

// CompareProjects renders a Markdown comparison table of all projects sorted
// by failure rate descending, capped with an explicit trailer row.
func (t *Toolset) CompareProjects() string {
	if t.result == nil {
		return NoAnalysisMessage
	}
	r := t.result
	var lines []string
	lines = append(lines, "## Project Comparison\n")

	if len(r.ProjectMetrics) == 0 {
		lines = append(lines, "No project-level metrics available.")
		return strings.Join(lines, "\n")
	}

	lines = append(lines, fmt.Sprintf("Total projects: %d", r.NProjects))
	lines = append(lines, fmt.Sprintf("Total builds: %d", r.NBuilds))
	lines = append(lines, "")

	sorted := make([]models.ProjectMetrics, len(r.ProjectMetrics))
	copy(sorted, r.ProjectMetrics)
	sort.SliceStable(sorted, func(i, j int) bool {
		return sorted[i].FailureRate > sorted[j].FailureRate
	})

	lines = append(lines, "| Project | Builds | Success | Failure | Median Duration |")
	lines = append(lines, "|---------|--------|---------|---------|-----------------|")

	shown := sorted
	if len(shown) > compareProjectsMaxRows {
		shown = shown[:compareProjectsMaxRows]
	}
	for i := range shown {
		p := &shown[i]
		lines = append(lines, fmt.Sprintf("| %s | %d | %.0f%% | %.0f%% | %.0fs |",
			truncate(p.Project, 30), p.NBuilds, p.SuccessRate*100, p.FailureRate*100, p.MedianDurationSeconds))
	}
	if len(sorted) > compareProjectsMaxRows {
		lines = append(lines, fmt.Sprintf("| ... and %d more projects | | | | |",
			len(sorted)-compareProjectsMaxRows))
	}

	return strings.Join(lines, "\n")
}

type statusCount struct {
	status string
	count  int
}

// sortedStatusCounts orders the frequency table by count descending; ties
// break alphabetically so the output is deterministic across runs.
func sortedStatusCounts(counts map[string]int) []statusCount {
	out := make([]statusCount, 0, len(counts))
	for s, c := range counts {
		out = append(out, statusCount{status: s, count: c})
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].count != out[j].count {
			return out[i].count > out[j].count
		}
		return out[i].status < out[j].status
	})
	return out
}

func truncate(s string, max int) string {
	if len(s) <= max {
		return s
	}
	return s[:max]
}
