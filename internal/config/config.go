// Package config loads rtdb settings from a JSON-with-comments file.
package config

import (
	"encoding/json"
	"fmt"
	"os"
	"strings"

	"github.com/tailscale/hujson"

	"github.com/leengari/rtdb/internal/domain/errors"
	"github.com/leengari/rtdb/internal/logging"
)

// FileName is the config file looked up in the working directory.
const FileName = "rtdb.json"

// Config holds all configuration options.
type Config struct {
	Dir          string `json:"dir"`       // directory holding the .rtdb files
	LogLevel     string `json:"log_level"` // debug, info, warn, error
	SeqURL       string `json:"seq_url,omitempty"`
	AtomicWrites bool   `json:"atomic_writes"`
}

// fileConfig distinguishes a missing key from a zero value.
type fileConfig struct {
	Dir          *string `json:"dir"`
	LogLevel     *string `json:"log_level"`
	SeqURL       *string `json:"seq_url"`
	AtomicWrites *bool   `json:"atomic_writes"`
}

// Default returns the default configuration.
func Default() Config {
	return Config{
		Dir:      "data",
		LogLevel: "info",
	}
}

// Load returns the defaults overlaid with the file at path, then overrides.
// A missing file is an error only when mustExist is set.
func Load(path string, mustExist bool, overrides ...func(*Config)) (Config, error) {
	cfg := Default()

	raw, err := os.ReadFile(path)
	switch {
	case err == nil:
		fc, err := parse(raw)
		if err != nil {
			return Config{}, &errors.ConfigurationError{Reason: fmt.Sprintf("invalid config %s: %v", path, err)}
		}
		cfg = merge(cfg, fc)
	case os.IsNotExist(err) && !mustExist:
	default:
		return Config{}, &errors.ConfigurationError{Reason: fmt.Sprintf("cannot read config %s: %v", path, err)}
	}

	for _, o := range overrides {
		o(&cfg)
	}

	if err := cfg.Validate(); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

func parse(raw []byte) (fileConfig, error) {
	// Standardize JSONC to JSON
	standardized, err := hujson.Standardize(raw)
	if err != nil {
		return fileConfig{}, fmt.Errorf("invalid JSONC: %w", err)
	}

	var fc fileConfig
	dec := json.NewDecoder(strings.NewReader(string(standardized)))
	dec.DisallowUnknownFields()
	if err := dec.Decode(&fc); err != nil {
		return fileConfig{}, err
	}
	return fc, nil
}

func merge(cfg Config, fc fileConfig) Config {
	if fc.Dir != nil {
		cfg.Dir = *fc.Dir
	}
	if fc.LogLevel != nil {
		cfg.LogLevel = *fc.LogLevel
	}
	if fc.SeqURL != nil {
		cfg.SeqURL = *fc.SeqURL
	}
	if fc.AtomicWrites != nil {
		cfg.AtomicWrites = *fc.AtomicWrites
	}
	return cfg
}

// Validate checks the merged configuration.
func (c Config) Validate() error {
	if strings.TrimSpace(c.Dir) == "" {
		return &errors.ConfigurationError{Reason: "dir cannot be empty"}
	}
	if _, err := logging.ParseLevel(c.LogLevel); err != nil {
		return &errors.ConfigurationError{Reason: err.Error()}
	}
	if c.SeqURL != "" && !strings.HasPrefix(c.SeqURL, "http://") && !strings.HasPrefix(c.SeqURL, "https://") {
		return &errors.ConfigurationError{Reason: fmt.Sprintf("seq_url must be an http(s) URL, got %q", c.SeqURL)}
	}
	return nil
}
