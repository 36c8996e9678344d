package models

import (
	"encoding/json"
	"time"
)

// BuildStatus represents the outcome of a single CI build.
type BuildStatus string

const (
	StatusPassed   BuildStatus = "passed"
	StatusFailed   BuildStatus = "failed"
	StatusErrored  BuildStatus = "errored"
	StatusCanceled BuildStatus = "canceled"
)

// BuildEvent is a single CI/CD build event. Instances are constructed once
// at load time and never mutated afterwards. Optional numeric and timestamp
// fields use pointers so that missing or malformed source cells stay out of
// the statistics instead of skewing them with sentinel values.
type BuildEvent struct {
	BuildID         string      `json:"build_id"`
	Project         string      `json:"project"`
	Status          BuildStatus `json:"status"`
	DurationSeconds *float64    `json:"duration_seconds"`
	StartedAt       *time.Time  `json:"started_at"`
	Language        *string     `json:"language,omitempty"`
	TestsRun        *float64    `json:"tests_run,omitempty"`
	TestsFailed     *float64    `json:"tests_failed,omitempty"`
}

// ToMap converts the event to a map with an ISO-8601 timestamp.
func (e *BuildEvent) ToMap() map[string]any {
	m := map[string]any{
		"build_id":         e.BuildID,
		"project":          e.Project,
		"status":           string(e.Status),
		"duration_seconds": floatOrNil(e.DurationSeconds),
		"started_at":       isoOrNil(e.StartedAt),
		"language":         stringOrNil(e.Language),
		"tests_run":        floatOrNil(e.TestsRun),
		"tests_failed":     floatOrNil(e.TestsFailed),
	}
	return m
}

// Bottleneck identifies a slow transition or project in the build process.
// Created by the analyzer during detection and read-only afterwards.
type Bottleneck struct {
	Transition     string  `json:"transition"`
	AvgWaitSeconds float64 `json:"avg_wait_seconds"`
	Frequency      int     `json:"frequency"`
}

// ToMap converts the bottleneck to a map for serialization.
func (b *Bottleneck) ToMap() map[string]any {
	return map[string]any{
		"transition":       b.Transition,
		"avg_wait_seconds": b.AvgWaitSeconds,
		"frequency":        b.Frequency,
	}
}

// ProjectMetrics is the per-project rollup for one analysis run.
// Rates are counts over NBuilds and each lies in [0,1]; their sum may be
// below 1 when other statuses (e.g. canceled) are present.
type ProjectMetrics struct {
	Project               string   `json:"project"`
	NBuilds               int      `json:"n_builds"`
	SuccessRate           float64  `json:"success_rate"`
	FailureRate           float64  `json:"failure_rate"`
	ErrorRate             float64  `json:"error_rate"`
	MedianDurationSeconds float64  `json:"median_duration_seconds"`
	P90DurationSeconds    float64  `json:"p90_duration_seconds"`
	AvgTestsRun           *float64 `json:"avg_tests_run"`
	AvgTestsFailed        *float64 `json:"avg_tests_failed"`
}

// ToMap converts the metrics to a map for serialization.
func (p *ProjectMetrics) ToMap() map[string]any {
	return map[string]any{
		"project":                 p.Project,
		"n_builds":                p.NBuilds,
		"success_rate":            p.SuccessRate,
		"failure_rate":            p.FailureRate,
		"error_rate":              p.ErrorRate,
		"median_duration_seconds": p.MedianDurationSeconds,
		"p90_duration_seconds":    p.P90DurationSeconds,
		"avg_tests_run":           floatOrNil(p.AvgTestsRun),
		"avg_tests_failed":        floatOrNil(p.AvgTestsFailed),
	}
}

// BuildAnalysisResult is the complete aggregate produced by one analysis run.
// It is constructed once by the analyzer and treated as immutable by every
// consumer (CLI rendering, MCP tools, the insight agent, the history store).
type BuildAnalysisResult struct {
	// Summary statistics
	NBuilds        int        `json:"n_builds"`
	NProjects      int        `json:"n_projects"`
	DateRangeStart *time.Time `json:"date_range_start"`
	DateRangeEnd   *time.Time `json:"date_range_end"`

	// Overall metrics
	OverallSuccessRate float64 `json:"overall_success_rate"`
	OverallFailureRate float64 `json:"overall_failure_rate"`
	OverallErrorRate   float64 `json:"overall_error_rate"`

	// Duration metrics, over non-null durations only
	MedianDurationSeconds float64 `json:"median_duration_seconds"`
	P90DurationSeconds    float64 `json:"p90_duration_seconds"`
	MaxDurationSeconds    float64 `json:"max_duration_seconds"`

	// Breakdowns
	StatusCounts   map[string]int `json:"status_counts"`
	LanguageCounts map[string]int `json:"language_counts"`

	// Bottlenecks and issues. Bottlenecks are ordered most severe first,
	// TopFailingProjects by failure rate descending.
	Bottlenecks        []Bottleneck     `json:"bottlenecks"`
	ProjectsAtRisk     []string         `json:"projects_at_risk"`
	TopFailingProjects []ProjectMetrics `json:"top_failing_projects"`

	// Full per-project metrics, in group-by (first appearance) order.
	ProjectMetrics []ProjectMetrics `json:"project_metrics"`
}

// ToMap converts the result to a nested map. Datetimes render as ISO-8601
// strings or nil; nested lists render as lists of their own map forms.
func (r *BuildAnalysisResult) ToMap() map[string]any {
	bottlenecks := make([]map[string]any, 0, len(r.Bottlenecks))
	for i := range r.Bottlenecks {
		bottlenecks = append(bottlenecks, r.Bottlenecks[i].ToMap())
	}
	topFailing := make([]map[string]any, 0, len(r.TopFailingProjects))
	for i := range r.TopFailingProjects {
		topFailing = append(topFailing, r.TopFailingProjects[i].ToMap())
	}
	projects := make([]map[string]any, 0, len(r.ProjectMetrics))
	for i := range r.ProjectMetrics {
		projects = append(projects, r.ProjectMetrics[i].ToMap())
	}

	return map[string]any{
		"n_builds":                r.NBuilds,
		"n_projects":              r.NProjects,
		"date_range_start":        isoOrNil(r.DateRangeStart),
		"date_range_end":          isoOrNil(r.DateRangeEnd),
		"overall_success_rate":    r.OverallSuccessRate,
		"overall_failure_rate":    r.OverallFailureRate,
		"overall_error_rate":      r.OverallErrorRate,
		"median_duration_seconds": r.MedianDurationSeconds,
		"p90_duration_seconds":    r.P90DurationSeconds,
		"max_duration_seconds":    r.MaxDurationSeconds,
		"status_counts":           r.StatusCounts,
		"language_counts":         r.LanguageCounts,
		"bottlenecks":             bottlenecks,
		"projects_at_risk":        r.ProjectsAtRisk,
		"top_failing_projects":    topFailing,
		"project_metrics":         projects,
	}
}

// ToJSON renders the result as indented JSON.
func (r *BuildAnalysisResult) ToJSON() (string, error) {
	data, err := json.MarshalIndent(r.ToMap(), "", "  ")
	if err != nil {
		return "", err
	}
	return string(data), nil
}

func isoOrNil(t *time.Time) any {
	if t == nil {
		return nil
	}
	return t.Format(time.RFC3339)
}

func floatOrNil(f *float64) any {
	if f == nil {
		return nil
	}
	return *f
}

func stringOrNil(s *string) any {
	if s == nil {
		return nil
	}
	return *s
}
