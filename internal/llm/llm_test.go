package llm

import (
	"math"
	"net/http"
	"net/http/httptest"
	"sort"
	"testing"
)

func TestValidateProvider(t *testing.T) {
	tests := []struct {
		in      string
		want    Provider
		wantErr bool
	}{
		{"openai", ProviderOpenAI, false},
		{"anthropic", ProviderAnthropic, false},
		{"ollama", ProviderOllama, false},
		{"gemini", ProviderGemini, false},
		{"", "", true},
		{"azure", "", true},
	}
	for _, tc := range tests {
		got, err := ValidateProvider(tc.in)
		if (err != nil) != tc.wantErr {
			t.Errorf("ValidateProvider(%q) err = %v", tc.in, err)
		}
		if got != tc.want {
			t.Errorf("ValidateProvider(%q) = %q", tc.in, got)
		}
	}
}

func TestDefaultModelForProvider(t *testing.T) {
	if got := DefaultModelForProvider(ProviderOpenAI); got != DefaultOpenAIModel {
		t.Errorf("openai default = %q", got)
	}
	if got := DefaultModelForProvider("bogus"); got != "" {
		t.Errorf("unknown provider default = %q", got)
	}
}

func TestAvailableModels(t *testing.T) {
	keys := AvailableModels()
	if len(keys) != len(Registry) {
		t.Fatalf("expected %d keys, got %d", len(Registry), len(keys))
	}
	if !sort.StringsAreSorted(keys) {
		t.Error("keys should be sorted")
	}
}

func TestGetModelSpec(t *testing.T) {
	spec, err := GetModelSpec("claude-sonnet")
	if err != nil {
		t.Fatalf("GetModelSpec: %v", err)
	}
	if spec.Provider != ProviderAnthropic || spec.ModelID == "" {
		t.Errorf("spec = %+v", spec)
	}

	if _, err := GetModelSpec("nope"); err == nil {
		t.Error("expected error for unknown key")
	}
}

func TestCalculateCost(t *testing.T) {
	// gpt-4o-mini: $0.15 in, $0.60 out per 1M tokens.
	got := CalculateCost("gpt-4o-mini", 1_000_000, 500_000)
	want := 0.15 + 0.30
	if math.Abs(got-want) > 1e-9 {
		t.Errorf("cost = %v, want %v", got, want)
	}

	if got := CalculateCost("ollama-llama3", 1_000_000, 1_000_000); got != 0 {
		t.Errorf("local model cost = %v, want 0", got)
	}
	if got := CalculateCost("unknown-model", 1000, 1000); got != 0 {
		t.Errorf("unknown model cost = %v, want 0", got)
	}
}

func TestResolveAPIKey(t *testing.T) {
	t.Setenv("OPENAI_API_KEY", "sk-test")
	t.Setenv("GOOGLE_API_KEY", "")
	t.Setenv("GEMINI_API_KEY", "gm-test")

	if got := ResolveAPIKey(ProviderOpenAI); got != "sk-test" {
		t.Errorf("openai key = %q", got)
	}
	if got := ResolveAPIKey(ProviderGemini); got != "gm-test" {
		t.Errorf("gemini fallback key = %q", got)
	}
	if got := ResolveAPIKey(ProviderOllama); got != "" {
		t.Errorf("ollama key = %q", got)
	}
}

func TestConfigForModelKey(t *testing.T) {
	t.Setenv("ANTHROPIC_API_KEY", "ak-test")

	cfg, err := ConfigForModelKey("claude-haiku")
	if err != nil {
		t.Fatalf("ConfigForModelKey: %v", err)
	}
	if cfg.Provider != ProviderAnthropic || cfg.APIKey != "ak-test" {
		t.Errorf("cfg = %+v", cfg)
	}

	if _, err := ConfigForModelKey("bogus"); err == nil {
		t.Error("expected error for unknown key")
	}
}

func TestCheckProvider_APIKeys(t *testing.T) {
	t.Setenv("OPENAI_API_KEY", "")
	if ok, reason := CheckProvider(ProviderOpenAI); ok || reason != "OPENAI_API_KEY not set" {
		t.Errorf("openai without key: %v %q", ok, reason)
	}

	t.Setenv("OPENAI_API_KEY", "sk-test")
	if ok, _ := CheckProvider(ProviderOpenAI); !ok {
		t.Error("openai with key should be available")
	}

	if ok, reason := CheckProvider("bogus"); ok || reason != "unknown provider" {
		t.Errorf("unknown provider: %v %q", ok, reason)
	}
}

func TestCheckProvider_Ollama(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/api/tags" {
			w.WriteHeader(http.StatusNotFound)
			return
		}
		w.WriteHeader(http.StatusOK)
	}))
	defer srv.Close()

	t.Setenv("OLLAMA_BASE_URL", srv.URL)
	if ok, reason := CheckProvider(ProviderOllama); !ok {
		t.Errorf("ollama should be reachable: %q", reason)
	}

	srv.Close()
	if ok, _ := CheckProvider(ProviderOllama); ok {
		t.Error("closed server should report unreachable")
	}
}
