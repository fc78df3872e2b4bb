package config

import (
	"bytes"
	"errors"
	"fmt"
	"io"
	"os"

	"gopkg.in/yaml.v3"
)

// StdinPath makes Load read the configuration from standard input.
const StdinPath = "-"

// stdin is swapped in tests.
var stdin io.Reader = os.Stdin

// Load reads, defaults and validates the configuration at path.
func Load(path string) (*Config, error) {
	cfg, err := LoadWithoutValidation(path)
	if err != nil {
		return nil, err
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	return cfg, nil
}

// LoadWithoutValidation reads and defaults the configuration at path.
// Callers that apply flag overrides validate afterwards themselves.
func LoadWithoutValidation(path string) (*Config, error) {
	var (
		data []byte
		err  error
	)
	if path == StdinPath {
		data, err = io.ReadAll(stdin)
	} else {
		// #nosec G304
		data, err = os.ReadFile(path)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to read config file: %w", err)
	}

	return parseConfig(data)
}

// LoadFromBytes parses, defaults and validates YAML data.
func LoadFromBytes(data []byte) (*Config, error) {
	cfg, err := parseConfig(data)
	if err != nil {
		return nil, err
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	return cfg, nil
}

// parseConfig decodes YAML strictly and applies defaults.
func parseConfig(data []byte) (*Config, error) {
	var cfg Config

	dec := yaml.NewDecoder(bytes.NewReader(data))
	dec.KnownFields(true)
	if err := dec.Decode(&cfg); err != nil && !errors.Is(err, io.EOF) {
		return nil, fmt.Errorf("failed to parse YAML: %w", err)
	}

	if err := cfg.ApplyDefaults(); err != nil {
		return nil, err
	}

	return &cfg, nil
}
