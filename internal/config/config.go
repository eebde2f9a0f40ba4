// Package config loads the backend configuration from YAML.
package config

import (
	"fmt"
	"os"
	"time"

	"gopkg.in/yaml.v3"
)

// Duration wraps time.Duration so it can be written as "24h" in YAML.
type Duration time.Duration

// UnmarshalYAML parses a Go duration string.
func (d *Duration) UnmarshalYAML(value *yaml.Node) error {
	var s string
	if err := value.Decode(&s); err != nil {
		return err
	}
	parsed, err := time.ParseDuration(s)
	if err != nil {
		return fmt.Errorf("invalid duration %q: %w", s, err)
	}
	*d = Duration(parsed)
	return nil
}

// MarshalYAML renders the duration string form.
func (d Duration) MarshalYAML() (any, error) {
	return time.Duration(d).String(), nil
}

// Std returns the wrapped time.Duration.
func (d Duration) Std() time.Duration {
	return time.Duration(d)
}

// Config holds the backend settings.
type Config struct {
	// Database is the path to the SQLite database file.
	Database string `yaml:"database"`

	// UploadDir is the root directory for stored image files.
	UploadDir string `yaml:"upload_dir"`

	// JWTSecret signs issued tokens. Required for signup/login.
	JWTSecret string `yaml:"jwt_secret"`

	// TokenTTL is how long issued tokens stay valid.
	TokenTTL Duration `yaml:"token_ttl"`

	// BcryptCost is the password hashing cost factor.
	BcryptCost int `yaml:"bcrypt_cost"`

	// RequireAnswerOwnership restricts answer update/delete to the
	// answer's creator. Disable only to reproduce legacy behavior.
	RequireAnswerOwnership bool `yaml:"require_answer_ownership"`
}

// Default returns the configuration used when no file is provided.
func Default() Config {
	return Config{
		Database:               "quandary.db",
		UploadDir:              "uploads",
		TokenTTL:               Duration(24 * time.Hour),
		BcryptCost:             12,
		RequireAnswerOwnership: true,
	}
}

// Load reads a YAML config file, filling unset fields from Default.
func Load(path string) (Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return Config{}, fmt.Errorf("read config: %w", err)
	}

	cfg := Default()
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return Config{}, fmt.Errorf("parse config: %w", err)
	}

	if cfg.Database == "" {
		return Config{}, fmt.Errorf("config: database path must not be empty")
	}
	if cfg.BcryptCost < 4 || cfg.BcryptCost > 31 {
		return Config{}, fmt.Errorf("config: bcrypt_cost %d out of range [4,31]", cfg.BcryptCost)
	}
	if cfg.TokenTTL <= 0 {
		return Config{}, fmt.Errorf("config: token_ttl must be positive")
	}

	return cfg, nil
}
