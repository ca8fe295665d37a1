package ai

import (
	"time"
)

// Provider tags
const (
	ProviderOllama    = "ollama"
	ProviderOpenAI    = "openai"
	ProviderTogether  = "together"
	ProviderAnthropic = "anthropic"
	ProviderGemini    = "gemini"
)

const (
	DefaultOllamaURL   = "http://localhost:11434"
	DefaultTogetherURL = "https://api.together.xyz/v1"
)

var defaultModels = map[string]string{
	ProviderOllama:    "llama3.2-vision:11b",
	ProviderOpenAI:    "gpt-4o",
	ProviderTogether:  "meta-llama/Llama-3.2-90B-Vision-Instruct-Turbo",
	ProviderAnthropic: "claude-3-5-sonnet-latest",
	ProviderGemini:    "gemini-1.5-flash",
}

// SupportedProviders lists the recognized provider tags.
func SupportedProviders() []string {
	return []string{ProviderOllama, ProviderOpenAI, ProviderTogether, ProviderAnthropic, ProviderGemini}
}

// ProviderConfig selects and configures a provider.
type ProviderConfig struct {
	Provider string
	BaseURL  string
	APIKey   string
	Model    string
	Timeout  time.Duration
}

// DefaultModel returns override when set, otherwise the tag's default model.
func DefaultModel(tag, override string) (string, error) {
	def, ok := defaultModels[tag]
	if !ok {
		return "", &UnsupportedProviderError{Provider: tag}
	}
	if override != "" {
		return override, nil
	}
	return def, nil
}

// NewProvider builds the provider for cfg.Provider. Construction does no
// network I/O.
func NewProvider(cfg ProviderConfig) (Provider, error) {
	model, err := DefaultModel(cfg.Provider, cfg.Model)
	if err != nil {
		return nil, err
	}

	switch cfg.Provider {
	case ProviderOllama:
		return NewOllamaProvider(cfg.BaseURL, model, cfg.Timeout), nil
	case ProviderOpenAI:
		return NewOpenAIProvider(ProviderOpenAI, cfg.APIKey, cfg.BaseURL, model), nil
	case ProviderTogether:
		baseURL := cfg.BaseURL
		if baseURL == "" {
			baseURL = DefaultTogetherURL
		}
		return NewOpenAIProvider(ProviderTogether, cfg.APIKey, baseURL, model), nil
	case ProviderAnthropic:
		return NewAnthropicProvider(cfg.APIKey, cfg.BaseURL, model), nil
	case ProviderGemini:
		return NewGeminiProvider(cfg.APIKey, model), nil
	}
	return nil, &UnsupportedProviderError{Provider: cfg.Provider}
}
