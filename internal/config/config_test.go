package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoadFromBytesDefaults(t *testing.T) {
	c, err := LoadFromBytes(nil)
	require.NoError(t, err)

	assert.Equal(t, 8080, c.Server.Port)
	assert.Equal(t, "ollama", c.LLM.Provider)
	assert.Equal(t, DefaultSQLitePath, c.Database.SQLitePath)
	assert.Equal(t, "runbook", c.Guard.Scope)
	assert.Equal(t, DefaultMaxQuestions, c.Guard.MaxQuestions)
	assert.Equal(t, "runbook", c.Chat.AssistantName)
	assert.Equal(t, "table", c.Documents.Storage)
	assert.True(t, c.IsStreaming())
	assert.True(t, c.IsGuardRateLimitEnabled())
	assert.False(t, c.UsesDocuments())

	w, err := c.GuardWindow()
	require.NoError(t, err)
	assert.Equal(t, 24*time.Hour, w)
}

func TestLoadFromBytesExpandsEnv(t *testing.T) {
	t.Setenv("AI_PROVIDER", "openai")
	t.Setenv("AI_MODEL", "gpt-4o-mini")
	t.Setenv("RUNBOOK_MAX_QUESTIONS", "3")

	c, err := LoadFromBytes([]byte(`
llm:
  provider: ${AI_PROVIDER}
  model: ${AI_MODEL}
  stream: "false"
  generation:
    max_tokens: 512
    temperature: 0.7
    stop: ["<|eot_id|>"]
guard:
  max_questions: ${RUNBOOK_MAX_QUESTIONS}
  window: "3600"
`))
	require.NoError(t, err)

	assert.Equal(t, "openai", c.LLM.Provider)
	assert.Equal(t, "gpt-4o-mini", c.LLM.Model)
	assert.False(t, c.IsStreaming())
	require.NotNil(t, c.LLM.Generation.MaxTokens)
	assert.Equal(t, 512, *c.LLM.Generation.MaxTokens)
	require.NotNil(t, c.LLM.Generation.Temperature)
	assert.InDelta(t, 0.7, *c.LLM.Generation.Temperature, 1e-9)
	assert.Nil(t, c.LLM.Generation.TopK)
	assert.Equal(t, []string{"<|eot_id|>"}, c.LLM.Generation.Stop)
	assert.Equal(t, 3, c.Guard.MaxQuestions)

	w, err := c.GuardWindow()
	require.NoError(t, err)
	assert.Equal(t, time.Hour, w)
}

func TestLoadFileOverlaysBase(t *testing.T) {
	base, err := LoadFromBytes([]byte("llm:\n  provider: ollama\n  model: llama3\n"))
	require.NoError(t, err)

	path := filepath.Join(t.TempDir(), "runbook.yaml")
	require.NoError(t, os.WriteFile(path, []byte("llm:\n  model: mistral\n"), 0o600))

	c, err := LoadFile(base, path)
	require.NoError(t, err)
	assert.Equal(t, "ollama", c.LLM.Provider)
	assert.Equal(t, "mistral", c.LLM.Model)

	_, err = LoadFile(base, filepath.Join(t.TempDir(), "missing.yaml"))
	assert.Error(t, err)
}

func TestValidate(t *testing.T) {
	c, err := LoadFromBytes([]byte("auth:\n  dev_mode: \"true\"\n"))
	require.NoError(t, err)
	assert.NoError(t, c.Validate())

	c.Auth.DevMode = ""
	assert.Error(t, c.Validate(), "secret required outside dev mode")
	c.Auth.AccessSecret = "s3cret"
	assert.NoError(t, c.Validate())

	c.Guard.Scope = "global"
	assert.Error(t, c.Validate())
	c.Guard.Scope = "user"

	c.Documents.Storage = "s3"
	assert.Error(t, c.Validate())
	c.Documents.Storage = "file"

	c.Guard.Window = "tomorrow"
	assert.Error(t, c.Validate())
}

func TestWatchReloadsOnWrite(t *testing.T) {
	base, err := LoadFromBytes([]byte("auth:\n  dev_mode: \"true\"\nllm:\n  model: llama3\n"))
	require.NoError(t, err)

	path := filepath.Join(t.TempDir(), "runbook.yaml")
	require.NoError(t, os.WriteFile(path, []byte("llm:\n  model: llama3\n"), 0o600))

	changes := make(chan Config, 4)
	w, err := Watch(base, path, func(c Config) { changes <- c })
	require.NoError(t, err)
	defer w.Close()

	require.NoError(t, os.WriteFile(path, []byte("llm:\n  model: mistral\n"), 0o600))

	select {
	case c := <-changes:
		assert.Equal(t, "mistral", c.LLM.Model)
	case <-time.After(5 * time.Second):
		t.Fatal("no reload after write")
	}

	require.NoError(t, w.Close())
	require.NoError(t, w.Close())
}
