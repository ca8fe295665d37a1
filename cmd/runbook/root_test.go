package cli

import (
	"bytes"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/neboloop/runbook/internal/config"
)

func execute(t *testing.T, args ...string) (string, error) {
	t.Helper()
	base, err := config.LoadFromBytes([]byte("auth:\n  dev_mode: \"true\"\n"))
	require.NoError(t, err)

	cfgFile, verbose, userFlag = "", false, ""
	cmd := SetupRootCmd(&base)
	var out bytes.Buffer
	cmd.SetOut(&out)
	cmd.SetErr(&out)
	cmd.SetArgs(args)
	err = cmd.Execute()
	return out.String(), err
}

func testEnv(t *testing.T) string {
	t.Helper()
	dir := t.TempDir()
	t.Setenv("RUNBOOK_DATA_DIR", dir)
	t.Setenv("RUNBOOK_KEYRING_DISABLED", "1")

	cfg := filepath.Join(dir, "runbook.yaml")
	require.NoError(t, os.WriteFile(cfg, []byte(fmt.Sprintf("export:\n  dir: %s\n", filepath.Join(dir, "out"))), 0o600))
	return cfg
}

func TestVersion(t *testing.T) {
	Version = "1.2.3"
	t.Cleanup(func() { Version = "dev" })

	out, err := execute(t, "version")
	require.NoError(t, err)
	assert.Equal(t, "1.2.3\n", out)
}

func TestRunbooksNewAndList(t *testing.T) {
	cfg := testEnv(t)

	out, err := execute(t, "--config", cfg, "runbooks", "new", "--user", "alice")
	require.NoError(t, err)
	assert.Contains(t, out, "created runbook")

	out, err = execute(t, "--config", cfg, "runbooks", "list", "--user", "alice")
	require.NoError(t, err)
	lines := strings.Split(strings.TrimSpace(out), "\n")
	// the session creates one runbook on load, "new" adds the second
	assert.Len(t, lines, 3)
	assert.Contains(t, lines[0], "STATUS")
}

func TestExportNothing(t *testing.T) {
	cfg := testEnv(t)

	out, err := execute(t, "--config", cfg, "export")
	require.NoError(t, err)
	assert.Contains(t, out, "nothing to export")
}

func TestMigrateStatus(t *testing.T) {
	cfg := testEnv(t)

	_, err := execute(t, "--config", cfg, "migrate", "up")
	require.NoError(t, err)
	out, err := execute(t, "--config", cfg, "migrate", "status")
	require.NoError(t, err)
	assert.Contains(t, out, "schema version")
	assert.NotContains(t, out, "schema version 0")
}

func TestKeySetWithoutKeychain(t *testing.T) {
	testEnv(t)

	_, err := execute(t, "key", "set", "openai", "sk-test")
	assert.Error(t, err)
}
