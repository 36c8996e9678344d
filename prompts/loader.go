package prompts

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"
)

// PromptKey is a type for identifying specific prompts.
type PromptKey string

const (
	// KeyBuildHealth is the key for the build health summary section.
	KeyBuildHealth PromptKey = "BuildHealth"
	// KeyBottleneckAnalysis is the key for the bottleneck analysis section.
	KeyBottleneckAnalysis PromptKey = "BottleneckAnalysis"
	// KeyFailurePatterns is the key for the failure patterns section.
	KeyFailurePatterns PromptKey = "FailurePatterns"
	// KeyRecommendations is the key for the recommendations section.
	KeyRecommendations PromptKey = "Recommendations"
)

// promptConfig defines the default content and override filename for a prompt.
type promptConfig struct {
	defaultContent string
	filename       string
}

// promptRegistry maps a PromptKey to its configuration.
var promptRegistry = map[PromptKey]promptConfig{
	KeyBuildHealth: {
		defaultContent: BuildHealthPrompt,
		filename:       "build_health_summary.txt",
	},
	KeyBottleneckAnalysis: {
		defaultContent: BottleneckAnalysisPrompt,
		filename:       "bottleneck_analysis.txt",
	},
	KeyFailurePatterns: {
		defaultContent: FailurePatternsPrompt,
		filename:       "failure_patterns.txt",
	},
	KeyRecommendations: {
		defaultContent: RecommendationsPrompt,
		filename:       "recommendations.txt",
	},
}

// GetPrompt looks for a user-provided prompt file in templatesDir. If found,
// its content replaces the built-in default for that key. An empty
// templatesDir always yields the default.
func GetPrompt(key PromptKey, templatesDir string) (string, error) {
	config, ok := promptRegistry[key]
	if !ok {
		return "", fmt.Errorf("unrecognized prompt key: %s", key)
	}

	if strings.TrimSpace(templatesDir) == "" {
		return config.defaultContent, nil
	}

	customPath := filepath.Join(templatesDir, config.filename)
	if _, err := os.Stat(customPath); err == nil {
		content, readErr := os.ReadFile(customPath)
		if readErr != nil {
			return "", fmt.Errorf("failed to read custom prompt file at %s: %w", customPath, readErr)
		}
		return string(content), nil
	} else if !os.IsNotExist(err) {
		return "", fmt.Errorf("failed to stat custom prompt file at %s: %w", customPath, err)
	}

	return config.defaultContent, nil
}
