package prompts

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
)

func TestGetPrompt_Defaults(t *testing.T) {
	tests := []struct {
		key  PromptKey
		want string
	}{
		{KeyBuildHealth, BuildHealthPrompt},
		{KeyBottleneckAnalysis, BottleneckAnalysisPrompt},
		{KeyFailurePatterns, FailurePatternsPrompt},
		{KeyRecommendations, RecommendationsPrompt},
	}
	for _, tc := range tests {
		t.Run(string(tc.key), func(t *testing.T) {
			got, err := GetPrompt(tc.key, "")
			if err != nil {
				t.Fatalf("GetPrompt: %v", err)
			}
			if got != tc.want {
				t.Error("expected built-in default")
			}
		})
	}
}

func TestGetPrompt_UnknownKey(t *testing.T) {
	if _, err := GetPrompt("Bogus", ""); err == nil {
		t.Error("expected error for unknown key")
	}
}

func TestGetPrompt_CustomOverride(t *testing.T) {
	dir := t.TempDir()
	custom := "Summarize builds in one sentence."
	path := filepath.Join(dir, "build_health_summary.txt")
	if err := os.WriteFile(path, []byte(custom), 0o644); err != nil {
		t.Fatal(err)
	}

	got, err := GetPrompt(KeyBuildHealth, dir)
	if err != nil {
		t.Fatalf("GetPrompt: %v", err)
	}
	if got != custom {
		t.Errorf("got %q, want override", got)
	}

	// Other keys in the same dir still fall back to defaults.
	got, err = GetPrompt(KeyRecommendations, dir)
	if err != nil {
		t.Fatalf("GetPrompt: %v", err)
	}
	if got != RecommendationsPrompt {
		t.Error("expected default when no override file exists")
	}
}

func TestGetPrompt_MissingDir(t *testing.T) {
	got, err := GetPrompt(KeyFailurePatterns, filepath.Join(t.TempDir(), "nope"))
	if err != nil {
		t.Fatalf("GetPrompt: %v", err)
	}
	if !strings.Contains(got, "failure patterns") {
		t.Error("expected default content")
	}
}
