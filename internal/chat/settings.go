package chat

import (
	"time"

	"github.com/neboloop/runbook/internal/ai"
	"github.com/neboloop/runbook/internal/config"
)

// SettingsFromConfig derives session settings from the application config.
func SettingsFromConfig(c config.Config) Settings {
	gen := c.LLM.Generation
	return Settings{
		Provider: ai.ProviderConfig{
			Provider: c.LLM.Provider,
			BaseURL:  c.LLM.BaseURL,
			APIKey:   c.LLM.APIKey,
			Model:    c.LLM.Model,
			Timeout:  time.Duration(c.LLM.Timeout) * time.Second,
		},
		Stream:       c.IsStreaming(),
		SystemPrompt: c.LLM.SystemPrompt,
		Generation: ai.GenerationConfig{
			MaxTokens:         gen.MaxTokens,
			Temperature:       gen.Temperature,
			TopP:              gen.TopP,
			TopK:              gen.TopK,
			Stop:              gen.Stop,
			RepetitionPenalty: gen.RepetitionPenalty,
			FrequencyPenalty:  gen.FrequencyPenalty,
			Truncate:          gen.Truncate,
		},
		AssistantName: c.Chat.AssistantName,
		UseDocuments:  c.UsesDocuments(),
	}
}

// GuardConfigFromConfig derives the guard configuration from the application config.
func GuardConfigFromConfig(c config.Config) (GuardConfig, error) {
	window, err := c.GuardWindow()
	if err != nil {
		return GuardConfig{}, err
	}
	return GuardConfig{
		Scope:        Scope(c.Guard.Scope),
		RateLimit:    c.IsGuardRateLimitEnabled(),
		MaxQuestions: c.Guard.MaxQuestions,
		Window:       window,
	}, nil
}
