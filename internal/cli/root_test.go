package cli

import (
	"bytes"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// writeTestConfig writes a config pointing at a fresh database path and
// returns the config path alongside the database path.
func writeTestConfig(t *testing.T) (configPath, dbPath string) {
	t.Helper()
	dir := t.TempDir()
	dbPath = filepath.Join(dir, "test.db")
	configPath = filepath.Join(dir, "config.yaml")
	content := fmt.Sprintf("database: %s\n", dbPath)
	require.NoError(t, os.WriteFile(configPath, []byte(content), 0o644))
	return configPath, dbPath
}

// runCommand executes the CLI with args and returns combined output.
func runCommand(t *testing.T, args ...string) (string, error) {
	t.Helper()
	buf := &bytes.Buffer{}
	cmd := NewRootCommand()
	cmd.SetOut(buf)
	cmd.SetErr(buf)
	cmd.SetArgs(args)
	err := cmd.Execute()
	return buf.String(), err
}

func TestRootCommand_InvalidFormat(t *testing.T) {
	_, err := runCommand(t, "--format", "xml", "migrate")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "invalid format")
}

func TestMigrateCommand_CreatesDatabase(t *testing.T) {
	configPath, dbPath := writeTestConfig(t)

	out, err := runCommand(t, "--config", configPath, "migrate")
	require.NoError(t, err)
	assert.Contains(t, out, "database ready")

	_, statErr := os.Stat(dbPath)
	assert.NoError(t, statErr)
}

func TestMigrateCommand_Repeatable(t *testing.T) {
	configPath, _ := writeTestConfig(t)

	for i := 0; i < 2; i++ {
		_, err := runCommand(t, "--config", configPath, "migrate")
		require.NoError(t, err, "run %d", i)
	}
}

func TestAddUserCommand(t *testing.T) {
	configPath, _ := writeTestConfig(t)

	out, err := runCommand(t, "--config", configPath, "--format", "json", "adduser",
		"--name", "Ada", "--email", "ada@example.com", "--password", "hunter2")
	require.NoError(t, err)

	var resp CLIResponse
	require.NoError(t, json.Unmarshal([]byte(out), &resp))
	assert.Equal(t, "ok", resp.Status)

	data, ok := resp.Data.(map[string]interface{})
	require.True(t, ok)
	assert.Equal(t, "ada@example.com", data["email"])
	assert.NotEmpty(t, data["id"])
}

func TestAddUserCommand_DuplicateEmailFails(t *testing.T) {
	configPath, _ := writeTestConfig(t)

	_, err := runCommand(t, "--config", configPath, "adduser",
		"--name", "Ada", "--email", "ada@example.com", "--password", "hunter2")
	require.NoError(t, err)

	out, err := runCommand(t, "--config", configPath, "adduser",
		"--name", "Impostor", "--email", "ada@example.com", "--password", "hunter2")
	require.Error(t, err)
	assert.Equal(t, ExitFailure, GetExitCode(err))
	assert.Contains(t, out, "exists already")
}

func TestStatsCommand(t *testing.T) {
	configPath, _ := writeTestConfig(t)

	_, err := runCommand(t, "--config", configPath, "adduser",
		"--name", "Ada", "--email", "ada@example.com", "--password", "hunter2")
	require.NoError(t, err)

	out, err := runCommand(t, "--config", configPath, "stats")
	require.NoError(t, err)
	assert.Contains(t, out, "users=1")
	assert.Contains(t, out, "posts=0")
}

func TestReconcileCommand_EmptyDatabase(t *testing.T) {
	configPath, _ := writeTestConfig(t)

	out, err := runCommand(t, "--config", configPath, "reconcile")
	require.NoError(t, err)
	assert.Contains(t, out, "0 created, 0 removed")
}

func TestRootCommand_BadConfigPath(t *testing.T) {
	_, err := runCommand(t, "--config", filepath.Join(t.TempDir(), "absent.yaml"), "migrate")
	require.Error(t, err)
	assert.Equal(t, ExitCommandError, GetExitCode(err))
}
