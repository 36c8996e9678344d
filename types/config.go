package types

// AppConfig represents the complete application configuration
type AppConfig struct {
	Verbose bool          `mapstructure:"verbose"`
	Config  string        `mapstructure:"config"`
	Data    DataConfig    `mapstructure:"data" validate:"omitempty"`
	LLM     LLMConfig     `mapstructure:"llm" validate:"omitempty"`
	History HistoryConfig `mapstructure:"history" validate:"omitempty"`
	Eval    EvalConfig    `mapstructure:"eval" validate:"omitempty"`
}

// DataConfig holds the build dataset location and column mapping
type DataConfig struct {
	Path string `mapstructure:"path" validate:"omitempty,min=1"`
	// Columns remaps CSV header names; keys are the logical fields
	// (build_id, project, status, duration, started_at, language,
	// tests_run, tests_failed), values the dataset's header names.
	Columns      map[string]string `mapstructure:"columns"`
	TemplatesDir string            `mapstructure:"templatesDir" validate:"omitempty,min=1"`
}

// LLMConfig holds configuration for LLM integration
type LLMConfig struct {
	Provider       string  `mapstructure:"provider" validate:"omitempty,oneof=openai anthropic ollama gemini"`
	Model          string  `mapstructure:"model" validate:"omitempty,min=1"`
	EmbeddingModel string  `mapstructure:"embeddingModel" validate:"omitempty,min=1"`
	APIKey         string  `mapstructure:"apiKey" validate:"omitempty,min=1"`
	BaseURL        string  `mapstructure:"baseUrl" validate:"omitempty,url"`
	Temperature    float64 `mapstructure:"temperature" validate:"omitempty,min=0,max=2"`
}

// HistoryConfig holds the analysis history store location
type HistoryConfig struct {
	Path string `mapstructure:"path" validate:"omitempty,min=1"`
}

// EvalConfig holds experiment tracking settings
type EvalConfig struct {
	TrackingPath string `mapstructure:"trackingPath" validate:"omitempty,min=1"`
}
