package app

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"go.uber.org/zap/zapcore"
	"gopkg.in/yaml.v3"

	"edkey/internal/keystore"
	"edkey/internal/pkcs8"
	"edkey/internal/services/keyring"
)

// ConfigFile is the name of the config file inside the home directory.
const ConfigFile = "config.yaml"

// Config holds runtime options for building the app.
type Config struct {
	Home string `yaml:"-"` // keyring directory, e.g. $HOME/.edkey

	LogLevel         string       `yaml:"log_level"`
	Keystore         KDFConfig    `yaml:"keystore"`
	PEM              KDFConfig    `yaml:"pem"`
	PassphrasePolicy PolicyConfig `yaml:"passphrase_policy"`
}

// KDFConfig sets the PBKDF2 cost of one export format.
type KDFConfig struct {
	Iterations int `yaml:"iterations"`
}

type PolicyConfig struct {
	MinLength int `yaml:"min_length"`
}

// DefaultConfig returns the configuration used when home has no config file.
func DefaultConfig(home string) Config {
	return Config{
		Home:             home,
		LogLevel:         "info",
		Keystore:         KDFConfig{Iterations: keystore.DefaultIterations},
		PEM:              KDFConfig{Iterations: pkcs8.DefaultIterations},
		PassphrasePolicy: PolicyConfig{MinLength: keyring.DefaultMinPassphraseLength},
	}
}

// LoadConfig reads <home>/config.yaml over the defaults. Environment
// variables in the file are expanded. A missing file yields the defaults.
func LoadConfig(home string) (Config, error) {
	cfg := DefaultConfig(home)

	raw, err := os.ReadFile(filepath.Join(home, ConfigFile))
	if errors.Is(err, os.ErrNotExist) {
		return cfg, nil
	}
	if err != nil {
		return Config{}, err
	}

	expanded := os.ExpandEnv(string(raw))
	expanded = strings.ReplaceAll(expanded, "\r\n", "\n")
	if err := yaml.Unmarshal([]byte(expanded), &cfg); err != nil {
		return Config{}, fmt.Errorf("parse %s: %w", ConfigFile, err)
	}
	cfg.Home = home
	return cfg, cfg.Validate()
}

func (c Config) Validate() error {
	if c.Home == "" {
		return fmt.Errorf("home is required")
	}
	if _, err := zapcore.ParseLevel(c.LogLevel); err != nil {
		return fmt.Errorf("log_level: %w", err)
	}
	if n := c.Keystore.Iterations; n < 1 || n > keystore.MaxIterations {
		return fmt.Errorf("keystore.iterations must be in [1, %d], got %d", keystore.MaxIterations, n)
	}
	if n := c.PEM.Iterations; n < 1 || n > pkcs8.MaxIterations {
		return fmt.Errorf("pem.iterations must be in [1, %d], got %d", pkcs8.MaxIterations, n)
	}
	if c.PassphrasePolicy.MinLength < 8 {
		return fmt.Errorf("passphrase_policy.min_length must be at least 8, got %d", c.PassphrasePolicy.MinLength)
	}
	return nil
}
