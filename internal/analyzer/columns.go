package analyzer

// ColumnMap maps BuildEvent fields to source column names in the input file.
// The defaults follow the TravisTorrent schema; deployments with other CI
// exports override individual names via configuration (data.columns.*).
// Aggregation logic only ever sees the mapped names, never literals.
type ColumnMap struct {
	BuildID     string `mapstructure:"buildId"`
	Project     string `mapstructure:"project"`
	Status      string `mapstructure:"status"`
	Duration    string `mapstructure:"duration"`
	StartedAt   string `mapstructure:"startedAt"`
	Language    string `mapstructure:"language"`
	TestsRun    string `mapstructure:"testsRun"`
	TestsFailed string `mapstructure:"testsFailed"`
}

// DefaultColumnMap returns the TravisTorrent column mapping.
func DefaultColumnMap() ColumnMap {
	return ColumnMap{
		BuildID:     "tr_build_id",
		Project:     "gh_project_name",
		Status:      "tr_status",
		Duration:    "tr_duration",
		StartedAt:   "gh_build_started_at",
		Language:    "gh_lang",
		TestsRun:    "tr_log_num_tests_run",
		TestsFailed: "tr_log_num_tests_failed",
	}
}

// merge fills unset fields from the defaults so partial overrides work.
func (c ColumnMap) merge(def ColumnMap) ColumnMap {
	if c.BuildID == "" {
		c.BuildID = def.BuildID
	}
	if c.Project == "" {
		c.Project = def.Project
	}
	if c.Status == "" {
		c.Status = def.Status
	}
	if c.Duration == "" {
		c.Duration = def.Duration
	}
	if c.StartedAt == "" {
		c.StartedAt = def.StartedAt
	}
	if c.Language == "" {
		c.Language = def.Language
	}
	if c.TestsRun == "" {
		c.TestsRun = def.TestsRun
	}
	if c.TestsFailed == "" {
		c.TestsFailed = def.TestsFailed
	}
	return c
}
