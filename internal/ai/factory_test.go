package ai

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDefaultModel(t *testing.T) {
	tests := []struct {
		tag  string
		want string
	}{
		{ProviderOllama, "llama3.2-vision:11b"},
		{ProviderOpenAI, "gpt-4o"},
		{ProviderTogether, "meta-llama/Llama-3.2-90B-Vision-Instruct-Turbo"},
		{ProviderAnthropic, "claude-3-5-sonnet-latest"},
		{ProviderGemini, "gemini-1.5-flash"},
	}
	for _, tt := range tests {
		got, err := DefaultModel(tt.tag, "")
		require.NoError(t, err, tt.tag)
		assert.Equal(t, tt.want, got, tt.tag)

		again, _ := DefaultModel(tt.tag, "")
		assert.Equal(t, got, again, "deterministic")
	}

	got, err := DefaultModel(ProviderOllama, "mistral")
	require.NoError(t, err)
	assert.Equal(t, "mistral", got)
}

func TestNewProviderKnownTags(t *testing.T) {
	for _, tag := range SupportedProviders() {
		p, err := NewProvider(ProviderConfig{Provider: tag, APIKey: "test"})
		require.NoError(t, err, tag)
		assert.Equal(t, tag, p.ID())

		want, _ := DefaultModel(tag, "")
		assert.Equal(t, want, p.Model())
	}

	p, err := NewProvider(ProviderConfig{Provider: ProviderOpenAI, Model: "gpt-4o-mini"})
	require.NoError(t, err)
	assert.Equal(t, "gpt-4o-mini", p.Model())
}

func TestNewProviderUnknownTag(t *testing.T) {
	p, err := NewProvider(ProviderConfig{Provider: "unknown"})
	assert.Nil(t, p)

	var upe *UnsupportedProviderError
	require.True(t, errors.As(err, &upe))
	assert.Equal(t, "unknown", upe.Provider)

	_, err = DefaultModel("unknown", "model")
	assert.True(t, errors.As(err, &upe))
}
