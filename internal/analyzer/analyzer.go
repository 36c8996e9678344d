// Package analyzer converts tabular CI/CD build history into a
// BuildAnalysisResult: summary statistics, per-project metrics, bottleneck
// detection and risk classification. It is a single-pass group-by over the
// loaded table; no goroutines, no shared state between analyzer instances.
package analyzer

import (
	"errors"
	"sort"
	"time"

	"github.com/devflowhq/devflow/models"
	"github.com/spf13/afero"
)

var (
	// ErrNoDataPath is returned by Load when no input source is resolvable.
	ErrNoDataPath = errors.New("no data path provided")
	// ErrNoData is returned by Analyze when Load has not succeeded yet.
	ErrNoData = errors.New("no data loaded: call Load first")
)

// Policy constants for bottleneck and risk detection. The values mirror the
// behavior the dashboards were tuned against; change them deliberately, not
// as a side effect of refactoring.
const (
	// bottleneckFactor flags projects whose median duration exceeds this
	// multiple of the overall median.
	bottleneckFactor = 2.0
	// maxBottlenecks caps the bottleneck list.
	maxBottlenecks = 5
	// failureRateThreshold qualifies a project as top-failing.
	failureRateThreshold = 0.30
	// riskRateThreshold qualifies a project as at-risk on failure+error rate.
	riskRateThreshold = 0.40
	// minBuildsForSignal is the minimum sample size for failure and risk
	// classification; smaller projects are too noisy to flag.
	minBuildsForSignal = 10
	// maxTopFailing caps the top-failing list.
	maxTopFailing = 5
)

// Analyzer loads one build-history table and derives a BuildAnalysisResult
// from it. One instance serves one load+analyze sequence at a time;
// overlapping mutation of the same instance is not supported.
type Analyzer struct {
	fs       afero.Fs
	dataPath string
	columns  ColumnMap

	events []models.BuildEvent
	loaded bool

	hasStartedAt   bool
	hasLanguage    bool
	hasTestsRun    bool
	hasTestsFailed bool
}

// Option configures an Analyzer.
type Option func(*Analyzer)

// WithFs replaces the filesystem used by Load. Tests pass an in-memory fs.
func WithFs(fs afero.Fs) Option {
	return func(a *Analyzer) { a.fs = fs }
}

// WithColumns overrides individual source column names. Unset fields keep
// the TravisTorrent defaults.
func WithColumns(columns ColumnMap) Option {
	return func(a *Analyzer) { a.columns = columns.merge(DefaultColumnMap()) }
}

// New creates an Analyzer for the given data path. The path may be empty if
// Load will be called with an explicit one.
func New(dataPath string, opts ...Option) *Analyzer {
	a := &Analyzer{
		fs:       afero.NewOsFs(),
		dataPath: dataPath,
		columns:  DefaultColumnMap(),
	}
	for _, opt := range opts {
		opt(a)
	}
	return a
}

// Events returns the parsed build events. Only valid after Load.
func (a *Analyzer) Events() []models.BuildEvent {
	return a.events
}

// Analyze runs the full aggregation over the loaded table and returns a
// populated BuildAnalysisResult. It fails with ErrNoData when called before
// a successful Load; a failed Analyze yields no partial result.
func (a *Analyzer) Analyze() (*models.BuildAnalysisResult, error) {
	if !a.loaded {
		return nil, ErrNoData
	}

	nBuilds := len(a.events)

	statusCounts := make(map[string]int)
	languageCounts := make(map[string]int)
	durations := make([]float64, 0, nBuilds)
	var dateStart, dateEnd *time.Time

	for i := range a.events {
		ev := &a.events[i]
		statusCounts[string(ev.Status)]++
		if ev.Language != nil {
			languageCounts[*ev.Language]++
		}
		if ev.DurationSeconds != nil {
			durations = append(durations, *ev.DurationSeconds)
		}
		if ev.StartedAt != nil {
			if dateStart == nil || ev.StartedAt.Before(*dateStart) {
				dateStart = ev.StartedAt
			}
			if dateEnd == nil || ev.StartedAt.After(*dateEnd) {
				dateEnd = ev.StartedAt
			}
		}
	}

	projectMetrics := a.computeProjectMetrics()
	nProjects := len(projectMetrics)

	result := &models.BuildAnalysisResult{
		NBuilds:               nBuilds,
		NProjects:             nProjects,
		DateRangeStart:        dateStart,
		DateRangeEnd:          dateEnd,
		OverallSuccessRate:    rate(statusCounts[string(models.StatusPassed)], nBuilds),
		OverallFailureRate:    rate(statusCounts[string(models.StatusFailed)], nBuilds),
		OverallErrorRate:      rate(statusCounts[string(models.StatusErrored)], nBuilds),
		MedianDurationSeconds: median(durations),
		P90DurationSeconds:    percentile(durations, 0.9),
		MaxDurationSeconds:    maxOf(durations),
		StatusCounts:          statusCounts,
		LanguageCounts:        languageCounts,
		ProjectsAtRisk:        []string{},
		ProjectMetrics:        projectMetrics,
	}

	result.TopFailingProjects = topFailing(projectMetrics)
	for i := range projectMetrics {
		p := &projectMetrics[i]
		if p.FailureRate+p.ErrorRate > riskRateThreshold && p.NBuilds >= minBuildsForSignal {
			result.ProjectsAtRisk = append(result.ProjectsAtRisk, p.Project)
		}
	}
	result.Bottlenecks = a.identifyBottlenecks(result.MedianDurationSeconds, len(durations) > 0)

	return result, nil
}

// projectGroup accumulates per-project rows in first-appearance order.
type projectGroup struct {
	name        string
	n           int
	passed      int
	failed      int
	errored     int
	durations   []float64
	testsRun    []float64
	testsFailed []float64
}

// groupByProject buckets events by project name, preserving the order in
// which each project first appears. That order is part of the contract: it
// drives at-risk insertion order and tie-breaks in the top-failing sort.
func (a *Analyzer) groupByProject() []*projectGroup {
	byName := make(map[string]*projectGroup)
	var order []*projectGroup

	for i := range a.events {
		ev := &a.events[i]
		g, ok := byName[ev.Project]
		if !ok {
			g = &projectGroup{name: ev.Project}
			byName[ev.Project] = g
			order = append(order, g)
		}
		g.n++
		switch ev.Status {
		case models.StatusPassed:
			g.passed++
		case models.StatusFailed:
			g.failed++
		case models.StatusErrored:
			g.errored++
		}
		if ev.DurationSeconds != nil {
			g.durations = append(g.durations, *ev.DurationSeconds)
		}
		if ev.TestsRun != nil {
			g.testsRun = append(g.testsRun, *ev.TestsRun)
		}
		if ev.TestsFailed != nil {
			g.testsFailed = append(g.testsFailed, *ev.TestsFailed)
		}
	}
	return order
}

func (a *Analyzer) computeProjectMetrics() []models.ProjectMetrics {
	groups := a.groupByProject()
	metrics := make([]models.ProjectMetrics, 0, len(groups))

	for _, g := range groups {
		m := models.ProjectMetrics{
			Project:               g.name,
			NBuilds:               g.n,
			SuccessRate:           rate(g.passed, g.n),
			FailureRate:           rate(g.failed, g.n),
			ErrorRate:             rate(g.errored, g.n),
			MedianDurationSeconds: median(g.durations),
			P90DurationSeconds:    percentile(g.durations, 0.9),
		}
		if a.hasTestsRun && len(g.testsRun) > 0 {
			avg := mean(g.testsRun)
			m.AvgTestsRun = &avg
		}
		if a.hasTestsFailed && len(g.testsFailed) > 0 {
			avg := mean(g.testsFailed)
			m.AvgTestsFailed = &avg
		}
		metrics = append(metrics, m)
	}
	return metrics
}

// topFailing selects projects above the failure-rate threshold with enough
// builds to matter, ordered by failure rate descending. The sort is stable,
// so equal rates keep first-appearance order.
func topFailing(metrics []models.ProjectMetrics) []models.ProjectMetrics {
	selected := make([]models.ProjectMetrics, 0)
	for i := range metrics {
		if metrics[i].FailureRate > failureRateThreshold && metrics[i].NBuilds >= minBuildsForSignal {
			selected = append(selected, metrics[i])
		}
	}
	sort.SliceStable(selected, func(i, j int) bool {
		return selected[i].FailureRate > selected[j].FailureRate
	})
	if len(selected) > maxTopFailing {
		selected = selected[:maxTopFailing]
	}
	return selected
}

// identifyBottlenecks flags projects whose median build duration exceeds
// bottleneckFactor times the overall median, most severe first, capped at
// maxBottlenecks. Projects with no duration data are skipped, and the list
// is empty when the overall median is undefined.
func (a *Analyzer) identifyBottlenecks(overallMedian float64, haveDurations bool) []models.Bottleneck {
	if !haveDurations {
		return []models.Bottleneck{}
	}

	bottlenecks := make([]models.Bottleneck, 0)
	for _, g := range a.groupByProject() {
		if len(g.durations) == 0 {
			continue
		}
		projMedian := median(g.durations)
		if projMedian > overallMedian*bottleneckFactor {
			bottlenecks = append(bottlenecks, models.Bottleneck{
				Transition:     "builds in " + g.name,
				AvgWaitSeconds: projMedian,
				Frequency:      g.n,
			})
		}
	}

	sort.SliceStable(bottlenecks, func(i, j int) bool {
		return bottlenecks[i].AvgWaitSeconds > bottlenecks[j].AvgWaitSeconds
	})
	if len(bottlenecks) > maxBottlenecks {
		bottlenecks = bottlenecks[:maxBottlenecks]
	}
	return bottlenecks
}

// rate is count over total, defined as 0 when total is 0.
func rate(count, total int) float64 {
	if total == 0 {
		return 0
	}
	return float64(count) / float64(total)
}
