package agents

import (
	"strings"
	"testing"

	"github.com/devflowhq/devflow/models"
)

func testResult() *models.BuildAnalysisResult {
	return &models.BuildAnalysisResult{
		NBuilds:               100,
		NProjects:             3,
		OverallSuccessRate:    0.80,
		OverallFailureRate:    0.15,
		OverallErrorRate:      0.05,
		MedianDurationSeconds: 120,
		P90DurationSeconds:    300,
		MaxDurationSeconds:    600,
		StatusCounts:          map[string]int{"passed": 80, "failed": 15, "errored": 5},
		Bottlenecks: []models.Bottleneck{
			{Transition: "builds in acme/slow", AvgWaitSeconds: 480, Frequency: 20},
		},
		ProjectsAtRisk: []string{"acme/flaky"},
		TopFailingProjects: []models.ProjectMetrics{
			{Project: "acme/flaky", NBuilds: 30, FailureRate: 0.5, ErrorRate: 0.1},
		},
		ProjectMetrics: []models.ProjectMetrics{
			{Project: "acme/ok", NBuilds: 50, SuccessRate: 0.95, FailureRate: 0.05, MedianDurationSeconds: 100},
			{Project: "acme/flaky", NBuilds: 30, SuccessRate: 0.4, FailureRate: 0.5, MedianDurationSeconds: 110},
			{Project: "acme/slow", NBuilds: 20, SuccessRate: 0.9, FailureRate: 0.1, MedianDurationSeconds: 480},
		},
	}
}

func TestToolset_NilResult(t *testing.T) {
	ts := NewToolset(nil)
	for name, fn := range map[string]func() string{
		"SummaryStats":       ts.SummaryStats,
		"AnalyzeBottlenecks": ts.AnalyzeBottlenecks,
		"AnalyzeFailures":    ts.AnalyzeFailures,
		"CompareProjects":    ts.CompareProjects,
	} {
		if got := fn(); got != NoAnalysisMessage {
			t.Errorf("%s with nil result = %q", name, got)
		}
	}
}

func TestSummaryStats_MatchesContext(t *testing.T) {
	r := testResult()
	if got := NewToolset(r).SummaryStats(); got != r.LLMContext() {
		t.Error("SummaryStats should return LLMContext verbatim")
	}
}

func TestAnalyzeBottlenecks(t *testing.T) {
	out := NewToolset(testResult()).AnalyzeBottlenecks()

	for _, want := range []string{
		"## Bottleneck Analysis",
		"Overall median duration: 120s (2.0 min)",
		"### Slow Projects (>240s median):",
		"- **builds in acme/slow**: 480s avg (4.0x baseline), 20 builds",
	} {
		if !strings.Contains(out, want) {
			t.Errorf("missing %q in:\n%s", want, out)
		}
	}
}

func TestAnalyzeBottlenecks_NoneDetected(t *testing.T) {
	r := testResult()
	r.Bottlenecks = nil
	out := NewToolset(r).AnalyzeBottlenecks()

	if !strings.Contains(out, "No significant bottlenecks detected.") {
		t.Errorf("missing no-bottleneck notice:\n%s", out)
	}
	if !strings.Contains(out, "Median build duration: 120s") {
		t.Errorf("missing duration baseline:\n%s", out)
	}
}

func TestAnalyzeFailures(t *testing.T) {
	out := NewToolset(testResult()).AnalyzeFailures()

	for _, want := range []string{
		"Overall failure rate: 15.0%",
		"### Status Distribution:",
		"- passed: 80 (80.0%)",
		"### Top Failing Projects:",
		"- **acme/flaky**: 50.0% failure rate, 10.0% error rate (30 builds)",
		"### Projects at Risk (>40% failure+error):",
		"- acme/flaky",
	} {
		if !strings.Contains(out, want) {
			t.Errorf("missing %q in:\n%s", want, out)
		}
	}

	// Status distribution sorts count-descending.
	if strings.Index(out, "- passed:") > strings.Index(out, "- failed:") {
		t.Error("passed (80) should precede failed (15)")
	}
	if strings.Index(out, "- failed:") > strings.Index(out, "- errored:") {
		t.Error("failed (15) should precede errored (5)")
	}
}

func TestCompareProjects(t *testing.T) {
	out := NewToolset(testResult()).CompareProjects()

	if !strings.Contains(out, "| Project | Builds | Success | Failure | Median Duration |") {
		t.Fatalf("missing table header:\n%s", out)
	}
	// Sorted by failure rate descending: flaky, slow, ok.
	flaky := strings.Index(out, "| acme/flaky |")
	slow := strings.Index(out, "| acme/slow |")
	ok := strings.Index(out, "| acme/ok |")
	if flaky < 0 || slow < 0 || ok < 0 {
		t.Fatalf("missing rows:\n%s", out)
	}
	if !(flaky < slow && slow < ok) {
		t.Error("rows not sorted by failure rate descending")
	}
	if strings.Contains(out, "more projects") {
		t.Error("no trailer expected under the row cap")
	}
}

func TestCompareProjects_RowCap(t *testing.T) {
	r := testResult()
	r.ProjectMetrics = nil
	for i := 0; i < 20; i++ {
		r.ProjectMetrics = append(r.ProjectMetrics, models.ProjectMetrics{
			Project: strings.Repeat("p", 40), NBuilds: 10, FailureRate: float64(i) / 100,
		})
	}
	out := NewToolset(r).CompareProjects()

	if !strings.Contains(out, "| ... and 5 more projects | | | | |") {
		t.Errorf("missing trailer row:\n%s", out)
	}
	// Names longer than 30 chars are cut.
	if strings.Contains(out, strings.Repeat("p", 31)) {
		t.Error("project name not truncated to 30 chars")
	}
}

func TestCompareProjects_NoMetrics(t *testing.T) {
	r := testResult()
	r.ProjectMetrics = nil
	out := NewToolset(r).CompareProjects()
	if !strings.Contains(out, "No project-level metrics available.") {
		t.Errorf("missing empty notice:\n%s", out)
	}
}
