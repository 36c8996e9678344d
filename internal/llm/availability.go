package llm

import (
	"fmt"
	"net/http"
	"os"
	"time"
)

// ollamaPingTimeout bounds the local server probe.
const ollamaPingTimeout = 2 * time.Second

// CheckProvider reports whether a provider is usable right now, with a short
// human-readable reason. API-key providers check the environment; Ollama is
// probed over HTTP.
func CheckProvider(p Provider) (bool, string) {
	switch p {
	case ProviderOpenAI:
		if key := os.Getenv("OPENAI_API_KEY"); key != "" {
			return true, "API key configured"
		}
		return false, "OPENAI_API_KEY not set"

	case ProviderAnthropic:
		if key := os.Getenv("ANTHROPIC_API_KEY"); key != "" {
			return true, "API key configured"
		}
		return false, "ANTHROPIC_API_KEY not set"

	case ProviderGemini:
		if os.Getenv("GOOGLE_API_KEY") != "" || os.Getenv("GEMINI_API_KEY") != "" {
			return true, "API key configured"
		}
		return false, "GOOGLE_API_KEY not set"

	case ProviderOllama:
		baseURL := os.Getenv("OLLAMA_BASE_URL")
		if baseURL == "" {
			baseURL = DefaultOllamaURL
		}
		client := &http.Client{Timeout: ollamaPingTimeout}
		resp, err := client.Get(baseURL + "/api/tags")
		if err != nil {
			return false, fmt.Sprintf("Ollama not reachable: %v", err)
		}
		defer resp.Body.Close()
		if resp.StatusCode == http.StatusOK {
			return true, "Ollama running"
		}
		return false, fmt.Sprintf("Ollama returned status %d", resp.StatusCode)

	default:
		return false, "unknown provider"
	}
}

// ResolveAPIKey returns the environment API key for a provider, or "".
func ResolveAPIKey(p Provider) string {
	switch p {
	case ProviderOpenAI:
		return os.Getenv("OPENAI_API_KEY")
	case ProviderAnthropic:
		return os.Getenv("ANTHROPIC_API_KEY")
	case ProviderGemini:
		if key := os.Getenv("GOOGLE_API_KEY"); key != "" {
			return key
		}
		return os.Getenv("GEMINI_API_KEY")
	default:
		return ""
	}
}

// ConfigForModelKey builds a client Config from a registry key, resolving
// credentials from the environment.
func ConfigForModelKey(key string) (Config, error) {
	spec, err := GetModelSpec(key)
	if err != nil {
		return Config{}, err
	}
	cfg := Config{
		Provider: spec.Provider,
		Model:    spec.ModelID,
		APIKey:   ResolveAPIKey(spec.Provider),
	}
	if spec.Provider == ProviderOllama {
		cfg.BaseURL = os.Getenv("OLLAMA_BASE_URL")
	}
	return cfg, nil
}
