package llm

import (
	"fmt"
	"sort"
)

// ModelSpec describes a selectable chat model: which provider serves it,
// the provider-side model ID, and its price per 1M tokens in USD.
// Local Ollama models carry zero cost.
type ModelSpec struct {
	Key         string  // Registry key, e.g. "claude-sonnet"
	Provider    Provider
	ModelID     string // Provider-side model identifier
	DisplayName string
	InputPer1M  float64 // $ per 1M input tokens
	OutputPer1M float64 // $ per 1M output tokens
}

// Registry holds the selectable models, keyed by a short stable name.
// Prices last updated: 2025-08
var Registry = map[string]ModelSpec{
	// Anthropic
	"claude-sonnet": {
		Key: "claude-sonnet", Provider: ProviderAnthropic,
		ModelID: "claude-sonnet-4-20250514", DisplayName: "Claude Sonnet 4",
		InputPer1M: 3.00, OutputPer1M: 15.00,
	},
	"claude-haiku": {
		Key: "claude-haiku", Provider: ProviderAnthropic,
		ModelID: "claude-haiku-4-20250514", DisplayName: "Claude Haiku 4",
		InputPer1M: 0.25, OutputPer1M: 1.25,
	},
	// OpenAI
	"gpt-4o": {
		Key: "gpt-4o", Provider: ProviderOpenAI,
		ModelID: "gpt-4o", DisplayName: "GPT-4o",
		InputPer1M: 5.00, OutputPer1M: 15.00,
	},
	"gpt-4o-mini": {
		Key: "gpt-4o-mini", Provider: ProviderOpenAI,
		ModelID: "gpt-4o-mini", DisplayName: "GPT-4o Mini",
		InputPer1M: 0.15, OutputPer1M: 0.60,
	},
	// Google
	"gemini-flash": {
		Key: "gemini-flash", Provider: ProviderGemini,
		ModelID: "gemini-2.5-flash", DisplayName: "Gemini 2.5 Flash",
		InputPer1M: 0.07, OutputPer1M: 0.30,
	},
	// Ollama (local, no cost)
	"ollama-llama3": {
		Key: "ollama-llama3", Provider: ProviderOllama,
		ModelID: "llama3", DisplayName: "Llama 3 (Local)",
	},
	"ollama-mistral": {
		Key: "ollama-mistral", Provider: ProviderOllama,
		ModelID: "mistral", DisplayName: "Mistral (Local)",
	},
}

// AvailableModels returns the registry keys in sorted order.
func AvailableModels() []string {
	keys := make([]string, 0, len(Registry))
	for k := range Registry {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}

// GetModelSpec resolves a registry key.
func GetModelSpec(key string) (ModelSpec, error) {
	spec, ok := Registry[key]
	if !ok {
		return ModelSpec{}, fmt.Errorf("unknown model %q (available: %v)", key, AvailableModels())
	}
	return spec, nil
}

// CalculateCost returns the USD cost of a call against a registry key.
// Unknown keys cost 0.
func CalculateCost(key string, inputTokens, outputTokens int) float64 {
	spec, ok := Registry[key]
	if !ok {
		return 0
	}
	inputCost := float64(inputTokens) / 1_000_000 * spec.InputPer1M
	outputCost := float64(outputTokens) / 1_000_000 * spec.OutputPer1M
	return inputCost + outputCost
}
