package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeConfig(t *testing.T, yaml string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "config.yaml")
	require.NoError(t, os.WriteFile(path, []byte(yaml), 0o644))
	return path
}

func TestDefault(t *testing.T) {
	cfg := Default()

	assert.Equal(t, "quandary.db", cfg.Database)
	assert.Equal(t, "uploads", cfg.UploadDir)
	assert.Equal(t, 24*time.Hour, cfg.TokenTTL.Std())
	assert.Equal(t, 12, cfg.BcryptCost)
	assert.True(t, cfg.RequireAnswerOwnership)
}

func TestLoad_OverridesDefaults(t *testing.T) {
	path := writeConfig(t, `
database: /var/lib/quandary/data.db
jwt_secret: sekrit
token_ttl: 30m
bcrypt_cost: 10
require_answer_ownership: false
`)

	cfg, err := Load(path)
	require.NoError(t, err)

	assert.Equal(t, "/var/lib/quandary/data.db", cfg.Database)
	assert.Equal(t, "sekrit", cfg.JWTSecret)
	assert.Equal(t, 30*time.Minute, cfg.TokenTTL.Std())
	assert.Equal(t, 10, cfg.BcryptCost)
	assert.False(t, cfg.RequireAnswerOwnership)

	// Unset fields keep their defaults.
	assert.Equal(t, "uploads", cfg.UploadDir)
}

func TestLoad_InvalidDuration(t *testing.T) {
	path := writeConfig(t, "token_ttl: not-a-duration\n")

	_, err := Load(path)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "invalid duration")
}

func TestLoad_Validation(t *testing.T) {
	cases := []struct {
		name string
		yaml string
		want string
	}{
		{"empty database", `database: ""`, "database path"},
		{"bcrypt cost too low", "bcrypt_cost: 3", "out of range"},
		{"bcrypt cost too high", "bcrypt_cost: 32", "out of range"},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			_, err := Load(writeConfig(t, tc.yaml))
			require.Error(t, err)
			assert.Contains(t, err.Error(), tc.want)
		})
	}
}

func TestLoad_MissingFile(t *testing.T) {
	_, err := Load(filepath.Join(t.TempDir(), "absent.yaml"))
	require.Error(t, err)
}
