package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"gopkg.in/yaml.v3"
)

// LoadFromBytes loads configuration from YAML bytes with environment variable expansion
func LoadFromBytes(data []byte) (Config, error) {
	var c Config
	if err := c.Overlay(data); err != nil {
		return c, err
	}
	c.applyDefaults()
	return c, nil
}

// LoadFile overlays the YAML file at path onto base.
func LoadFile(base Config, path string) (Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return base, fmt.Errorf("read config %s: %w", path, err)
	}
	c := base
	if err := c.Overlay(data); err != nil {
		return base, fmt.Errorf("parse config %s: %w", path, err)
	}
	c.applyDefaults()
	return c, nil
}

// Overlay decodes YAML into c. Keys absent from data keep their current value.
func (c *Config) Overlay(data []byte) error {
	expanded := os.ExpandEnv(string(data))
	if strings.TrimSpace(expanded) == "" {
		return nil
	}
	return yaml.Unmarshal([]byte(expanded), c)
}

// parseBool parses a string as boolean with a default value.
// Accepts: "true", "1", "yes" as true; empty or other values return default.
func parseBool(s string, defaultVal bool) bool {
	s = strings.TrimSpace(strings.ToLower(s))
	if s == "" {
		return defaultVal
	}
	return s == "true" || s == "1" || s == "yes"
}

type Config struct {
	Server struct {
		Host string `yaml:"host"`
		Port int    `yaml:"port"`
	} `yaml:"server"`
	Auth struct {
		AccessSecret string `yaml:"access_secret"`
		AccessExpire int64  `yaml:"access_expire"`
		// AppPassword is the shared secret for the login gate. AppPasswordHash,
		// when set, is a bcrypt hash that takes precedence.
		AppPassword     string `yaml:"app_password"`
		AppPasswordHash string `yaml:"app_password_hash"`
		DevMode         string `yaml:"dev_mode"`
	} `yaml:"auth"`
	Database struct {
		SQLitePath string `yaml:"sqlite_path"`
	} `yaml:"database"`
	LLM       LLM   `yaml:"llm"`
	Guard     Guard `yaml:"guard"`
	Chat      Chat  `yaml:"chat"`
	Documents struct {
		Storage      string `yaml:"storage"` // table or file
		Dir          string `yaml:"dir"`
		FetchTimeout int    `yaml:"fetch_timeout"` // seconds
		MaxBytes     int64  `yaml:"max_bytes"`
	} `yaml:"documents"`
	Export struct {
		Dir      string `yaml:"dir"`
		Schedule string `yaml:"schedule"` // cron spec, empty disables
	} `yaml:"export"`
	Security struct {
		RateLimitEnabled  string `yaml:"rate_limit_enabled"`
		RateLimitRequests int    `yaml:"rate_limit_requests"`
		RateLimitInterval int    `yaml:"rate_limit_interval"` // seconds
		RateLimitBurst    int    `yaml:"rate_limit_burst"`
		AllowedOrigins    string `yaml:"allowed_origins"`
	} `yaml:"security"`
}

// LLM selects the provider and generation settings.
type LLM struct {
	Provider     string     `yaml:"provider"`
	BaseURL      string     `yaml:"base_url"`
	APIKey       string     `yaml:"api_key"`
	Model        string     `yaml:"model"`
	Stream       string     `yaml:"stream"`
	SystemPrompt string     `yaml:"system_prompt"`
	Timeout      int        `yaml:"timeout"` // seconds
	Generation   Generation `yaml:"generation"`
}

// Generation holds sampling options. Nil pointers are unset.
type Generation struct {
	MaxTokens         *int     `yaml:"max_tokens"`
	Temperature       *float64 `yaml:"temperature"`
	TopP              *float64 `yaml:"top_p"`
	TopK              *int     `yaml:"top_k"`
	RepetitionPenalty *float64 `yaml:"repetition_penalty"`
	FrequencyPenalty  *float64 `yaml:"frequency_penalty"`
	Truncate          *int     `yaml:"truncate"`
	Stop              []string `yaml:"stop"`
}

// Guard configures duplicate and rate checks on submitted prompts.
type Guard struct {
	Scope            string `yaml:"scope"` // runbook or user
	RateLimitEnabled string `yaml:"rate_limit_enabled"`
	MaxQuestions     int    `yaml:"max_questions"`
	Window           string `yaml:"window"`
}

// Chat holds per-session defaults.
type Chat struct {
	Username      string `yaml:"username"`
	AssistantName string `yaml:"assistant_name"`
	UseDocuments  string `yaml:"use_documents"`
}

const (
	DefaultSQLitePath   = "./data/runbook.db"
	DefaultMaxQuestions = 10
	DefaultWindow       = 24 * time.Hour
	DefaultSystemPrompt = "You are a helpful assistant. Respond in markdown."
)

func (c *Config) applyDefaults() {
	if c.Server.Port == 0 {
		c.Server.Port = 8080
	}
	if c.Auth.AccessExpire == 0 {
		c.Auth.AccessExpire = 86400
	}
	if c.Database.SQLitePath == "" {
		c.Database.SQLitePath = DefaultSQLitePath
	}
	if c.LLM.Provider == "" {
		c.LLM.Provider = "ollama"
	}
	if c.LLM.SystemPrompt == "" {
		c.LLM.SystemPrompt = DefaultSystemPrompt
	}
	if c.LLM.Timeout == 0 {
		c.LLM.Timeout = 300
	}
	if c.Guard.Scope == "" {
		c.Guard.Scope = "runbook"
	}
	if c.Guard.MaxQuestions <= 0 {
		c.Guard.MaxQuestions = DefaultMaxQuestions
	}
	if c.Chat.Username == "" {
		c.Chat.Username = "user"
	}
	if c.Chat.AssistantName == "" {
		c.Chat.AssistantName = "runbook"
	}
	if c.Documents.Storage == "" {
		c.Documents.Storage = "table"
	}
	if c.Documents.Dir == "" {
		c.Documents.Dir = "./saved/rag"
	}
	if c.Documents.FetchTimeout == 0 {
		c.Documents.FetchTimeout = 30
	}
	if c.Documents.MaxBytes == 0 {
		c.Documents.MaxBytes = 10 << 20
	}
	if c.Export.Dir == "" {
		c.Export.Dir = "./saved/runbooks"
	}
	if c.Security.RateLimitRequests == 0 {
		c.Security.RateLimitRequests = 100
	}
	if c.Security.RateLimitInterval == 0 {
		c.Security.RateLimitInterval = 60
	}
	if c.Security.RateLimitBurst == 0 {
		c.Security.RateLimitBurst = 20
	}
}

// Validate reports configuration that cannot work at all.
func (c Config) Validate() error {
	switch c.Guard.Scope {
	case "runbook", "user":
	default:
		return fmt.Errorf("guard.scope must be runbook or user, got %q", c.Guard.Scope)
	}
	switch c.Documents.Storage {
	case "table", "file":
	default:
		return fmt.Errorf("documents.storage must be table or file, got %q", c.Documents.Storage)
	}
	if _, err := c.GuardWindow(); err != nil {
		return err
	}
	if !c.IsDevMode() && c.Auth.AccessSecret == "" {
		return fmt.Errorf("auth.access_secret is required unless auth.dev_mode is enabled")
	}
	return nil
}

func (c Config) IsDevMode() bool {
	return parseBool(c.Auth.DevMode, false)
}

func (c Config) IsStreaming() bool {
	return parseBool(c.LLM.Stream, true)
}

func (c Config) IsGuardRateLimitEnabled() bool {
	return parseBool(c.Guard.RateLimitEnabled, true)
}

func (c Config) IsRateLimitEnabled() bool {
	return parseBool(c.Security.RateLimitEnabled, true)
}

func (c Config) UsesDocuments() bool {
	return parseBool(c.Chat.UseDocuments, false)
}

// GuardWindow returns the rate window. Accepts Go durations ("24h") or a plain
// number of seconds.
func (c Config) GuardWindow() (time.Duration, error) {
	w := strings.TrimSpace(c.Guard.Window)
	if w == "" {
		return DefaultWindow, nil
	}
	if secs, err := strconv.Atoi(w); err == nil {
		return time.Duration(secs) * time.Second, nil
	}
	d, err := time.ParseDuration(w)
	if err != nil {
		return 0, fmt.Errorf("guard.window: %w", err)
	}
	return d, nil
}

// Addr returns the listen address for the HTTP server.
func (c Config) Addr() string {
	return fmt.Sprintf("%s:%d", c.Server.Host, c.Server.Port)
}
