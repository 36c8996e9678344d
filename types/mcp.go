package types

// MCP tool parameter types

// AnalyzeBuildsParams for loading and analyzing a build dataset
type AnalyzeBuildsParams struct {
	DataPath string `json:"dataPath,omitempty" mcp:"Path to the build history CSV; defaults to the configured data path"`
}

// SummaryStatsParams for the summary statistics tool
type SummaryStatsParams struct{}

// AnalyzeBottlenecksParams for the bottleneck report tool
type AnalyzeBottlenecksParams struct{}

// AnalyzeFailuresParams for the failure pattern tool
type AnalyzeFailuresParams struct{}

// CompareProjectsParams for the project comparison table tool
type CompareProjectsParams struct{}

// SearchHistoryParams for searching stored past analyses
type SearchHistoryParams struct {
	Query string `json:"query" mcp:"Natural-language query over past analyses (required)"`
	Limit int    `json:"limit,omitempty" mcp:"Maximum number of results, default 3"`
}

// AskParams for one-shot insight agent questions
type AskParams struct {
	Question string `json:"question" mcp:"Question about the analyzed build data (required)"`
}

// MCP response types

// AnalyzeBuildsResponse summarizes a completed analysis
type AnalyzeBuildsResponse struct {
	NBuilds   int     `json:"n_builds"`
	NProjects int     `json:"n_projects"`
	PassRate  float64 `json:"pass_rate"`
	Summary   string  `json:"summary"`
}

// HistoryEntry is one stored analysis returned by history search
type HistoryEntry struct {
	ID         string            `json:"id"`
	Content    string            `json:"content"`
	Metadata   map[string]string `json:"metadata"`
	Similarity float32           `json:"similarity"`
}
