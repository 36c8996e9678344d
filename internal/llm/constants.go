package llm

// Provider constants
const (
	// DefaultProvider is the default LLM provider
	DefaultProvider = ProviderOpenAI

	// ProviderOpenAI represents the OpenAI provider
	ProviderOpenAI = "openai"

	// ProviderAnthropic represents the Anthropic provider
	ProviderAnthropic = "anthropic"

	// ProviderOllama represents the Ollama provider
	ProviderOllama = "ollama"

	// ProviderGemini represents the Google Gemini provider
	ProviderGemini = "gemini"
)

// Default chat models per provider
const (
	DefaultOpenAIModel    = "gpt-4o-mini"
	DefaultAnthropicModel = "claude-sonnet-4-20250514"
	DefaultOllamaModel    = "llama3"
	DefaultGeminiModel    = "gemini-2.5-flash"
)

// Embedding model constants
const (
	// DefaultOpenAIEmbeddingModel is the default embedding model for OpenAI
	DefaultOpenAIEmbeddingModel = "text-embedding-3-small"

	// DefaultOllamaEmbeddingModel is the default embedding model for Ollama
	DefaultOllamaEmbeddingModel = "nomic-embed-text"
)

// DefaultOllamaURL is the default URL for the Ollama server
const DefaultOllamaURL = "http://localhost:11434"

// DefaultModelKey is the registry key used when none is configured.
const DefaultModelKey = "gpt-4o-mini"

// DefaultModelForProvider returns the default chat model for a provider.
func DefaultModelForProvider(provider Provider) string {
	switch provider {
	case ProviderOpenAI:
		return DefaultOpenAIModel
	case ProviderAnthropic:
		return DefaultAnthropicModel
	case ProviderOllama:
		return DefaultOllamaModel
	case ProviderGemini:
		return DefaultGeminiModel
	default:
		return ""
	}
}
