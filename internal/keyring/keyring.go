// Package keyring keeps provider API keys in the OS keychain so they need not
// appear in config files or the environment.
package keyring

import (
	"errors"
	"fmt"
	"os"
	"strings"

	zkr "github.com/zalando/go-keyring"
)

const serviceName = "runbook"

// ErrNotFound is returned when no key is stored for a provider.
var ErrNotFound = zkr.ErrNotFound

func account(provider string) string {
	return "api-key:" + strings.ToLower(strings.TrimSpace(provider))
}

// Get returns the API key stored for provider.
func Get(provider string) (string, error) {
	key, err := zkr.Get(serviceName, account(provider))
	if err != nil {
		if errors.Is(err, zkr.ErrNotFound) {
			return "", ErrNotFound
		}
		return "", fmt.Errorf("keychain get: %w", err)
	}
	return key, nil
}

// Set stores the API key for provider, replacing any previous one.
func Set(provider, key string) error {
	if strings.TrimSpace(key) == "" {
		return fmt.Errorf("empty api key")
	}
	return zkr.Set(serviceName, account(provider), key)
}

// Delete removes the API key for provider.
func Delete(provider string) error {
	err := zkr.Delete(serviceName, account(provider))
	if errors.Is(err, zkr.ErrNotFound) {
		return ErrNotFound
	}
	return err
}

// Resolve returns configured when set, otherwise the stored key for provider.
// A missing or unusable keychain yields "".
func Resolve(provider, configured string) string {
	if configured != "" || !Available() {
		return configured
	}
	key, err := Get(provider)
	if err != nil {
		return ""
	}
	return key
}

// Available returns true if the OS keychain is functional.
// Returns false if RUNBOOK_KEYRING_DISABLED=1 is set (headless/CI/Docker).
// Otherwise probes the keychain with a test write/read/delete cycle.
func Available() bool {
	if os.Getenv("RUNBOOK_KEYRING_DISABLED") == "1" {
		return false
	}
	const probe = "runbook-keyring-probe"
	if err := zkr.Set(probe, "probe", "ok"); err != nil {
		return false
	}
	_ = zkr.Delete(probe, "probe")
	return true
}
