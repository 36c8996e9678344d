/*
Package eval provides the evaluation harness: latency/cost measurement,
ROUGE scoring against references, sqlite-backed experiment tracking, and
A/B comparison of models over the insight agent.
*/
package eval

import (
	"fmt"
	"os"
	"time"

	"gopkg.in/yaml.v3"
)

// EvaluationResult is the measured outcome of one agent invocation.
type EvaluationResult struct {
	ModelKey     string
	LatencyMS    float64
	InputTokens  int
	OutputTokens int
	CostUSD      float64
	OutputText   string
	Rouge        map[string]RougeScore // keyed rouge1/rouge2/rougeL
}

// Metrics flattens the result for experiment tracking.
func (r *EvaluationResult) Metrics() map[string]float64 {
	return map[string]float64{
		"latency_ms":    r.LatencyMS,
		"input_tokens":  float64(r.InputTokens),
		"output_tokens": float64(r.OutputTokens),
		"cost_usd":      r.CostUSD,
		"rouge_1_f":     r.Rouge["rouge1"].F1,
		"rouge_2_f":     r.Rouge["rouge2"].F1,
		"rouge_l_f":     r.Rouge["rougeL"].F1,
	}
}

// Task is one evaluation task loaded from the YAML config.
type Task struct {
	ID        string `yaml:"id"`
	Title     string `yaml:"title"`
	Prompt    string `yaml:"prompt"`
	Reference string `yaml:"reference,omitempty"` // optional ROUGE reference
}

// Config defines an evaluation run.
type Config struct {
	Version int    `yaml:"version"`
	Project string `yaml:"project"`
	Tasks   []Task `yaml:"tasks"`
}

// LoadConfig reads an evaluation config from a YAML file.
func LoadConfig(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read eval config %s: %w", path, err)
	}
	var cfg Config
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return nil, fmt.Errorf("parse eval config %s: %w", path, err)
	}
	if len(cfg.Tasks) == 0 {
		return nil, fmt.Errorf("eval config %s contains no tasks", path)
	}
	return &cfg, nil
}

// Timer measures wall-clock latency of one call.
type Timer struct {
	start time.Time
	end   time.Time
}

// Start begins timing.
func (t *Timer) Start() {
	t.start = time.Now()
}

// Stop ends timing.
func (t *Timer) Stop() {
	t.end = time.Now()
}

// ElapsedMS returns the elapsed time in milliseconds, 0 if never run.
func (t *Timer) ElapsedMS() float64 {
	if t.start.IsZero() || t.end.IsZero() {
		return 0
	}
	return float64(t.end.Sub(t.start)) / float64(time.Millisecond)
}

// EstimateTokens approximates token usage from text length. The harness has
// no access to provider-reported usage across all backends, so it uses the
// common four-characters-per-token heuristic consistently for every model,
// which keeps relative comparisons meaningful.
func EstimateTokens(text string) int {
	return len(text) / 4
}
