// Package local keeps machine-local state that must not live in the
// embedded config, such as the generated token signing secret.
package local

import (
	"crypto/rand"
	"encoding/hex"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"runtime"

	"github.com/neboloop/runbook/internal/config"
)

// DataDir returns the platform data directory.
//
//	macOS:   ~/Library/Application Support/Runbook/
//	Windows: %AppData%\Runbook\
//	Linux:   ~/.config/runbook/
//
// Set RUNBOOK_DATA_DIR to override.
func DataDir() (string, error) {
	if dir := os.Getenv("RUNBOOK_DATA_DIR"); dir != "" {
		return dir, nil
	}
	configDir, err := os.UserConfigDir()
	if err != nil {
		return "", fmt.Errorf("cannot determine config directory: %w", err)
	}
	if runtime.GOOS == "linux" {
		return filepath.Join(configDir, "runbook"), nil
	}
	return filepath.Join(configDir, "Runbook"), nil
}

// Settings holds local configuration that can't be in the embedded yaml
type Settings struct {
	AccessSecret string `json:"accessSecret"`
}

// LoadSettings reads dir/settings.json, generating and saving a secret on
// first use.
func LoadSettings(dir string) (*Settings, error) {
	if err := os.MkdirAll(dir, 0o700); err != nil {
		return nil, fmt.Errorf("failed to create settings directory: %w", err)
	}
	path := filepath.Join(dir, "settings.json")

	var settings Settings
	data, err := os.ReadFile(path)
	switch {
	case err == nil:
		if err := json.Unmarshal(data, &settings); err != nil {
			return nil, fmt.Errorf("parse %s: %w", path, err)
		}
	case !os.IsNotExist(err):
		return nil, err
	}

	if settings.AccessSecret != "" {
		return &settings, nil
	}
	secret, err := generateSecret()
	if err != nil {
		return nil, err
	}
	settings.AccessSecret = secret
	if err := SaveSettings(dir, &settings); err != nil {
		return nil, err
	}
	return &settings, nil
}

// SaveSettings persists settings to dir/settings.json.
func SaveSettings(dir string, settings *Settings) error {
	data, err := json.MarshalIndent(settings, "", "  ")
	if err != nil {
		return err
	}
	return os.WriteFile(filepath.Join(dir, "settings.json"), data, 0o600)
}

// Apply fills configuration the user left empty: the token secret and a
// database under dir.
func (s *Settings) Apply(c *config.Config, dir string) {
	if c.Auth.AccessSecret == "" {
		c.Auth.AccessSecret = s.AccessSecret
	}
	if c.Database.SQLitePath == config.DefaultSQLitePath {
		c.Database.SQLitePath = filepath.Join(dir, "data", "runbook.db")
	}
}

func generateSecret() (string, error) {
	b := make([]byte, 32)
	if _, err := rand.Read(b); err != nil {
		return "", fmt.Errorf("generate secret: %w", err)
	}
	return hex.EncodeToString(b), nil
}
