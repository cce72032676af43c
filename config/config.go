// Package config owns the on-disk configuration: paths, the YAML config
// file, and a watcher that reloads it on change.
package config

import (
	"fmt"
	"os"

	"gopkg.in/yaml.v3"
)

// Config is the user-editable configuration.
type Config struct {
	// Model is the chat model identifier sent to the API.
	Model string `yaml:"model"`
	// BaseURL points at an OpenAI-compatible chat completions endpoint.
	BaseURL string `yaml:"base_url"`
	// SkipPermissions approves every tool call without asking.
	SkipPermissions bool `yaml:"skip_permissions"`
	// AllowedTools are glob patterns over "tool:action" keys that never
	// prompt, e.g. "read_*" or "run_terminal:launch".
	AllowedTools []string `yaml:"allowed_tools"`
	// RecorderCommand overrides the autodetected voice capture program.
	RecorderCommand string `yaml:"recorder_command"`
	// Debug enables file logging of API traffic.
	Debug bool `yaml:"debug"`
}

// Default returns the configuration used when no file exists yet.
func Default() Config {
	return Config{
		Model:   "gpt-4o",
		BaseURL: "https://api.openai.com/v1",
	}
}

// Load reads the config file, creating it with defaults on first run.
func Load() (Config, error) {
	path, err := File()
	if err != nil {
		return Config{}, err
	}

	data, err := os.ReadFile(path)
	if os.IsNotExist(err) {
		cfg := Default()
		if err := Save(cfg); err != nil {
			return Config{}, err
		}
		return cfg, nil
	}
	if err != nil {
		return Config{}, err
	}

	cfg := Default()
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return Config{}, fmt.Errorf("parse %s: %w", path, err)
	}
	return cfg, nil
}

// Save writes cfg to the config file.
func Save(cfg Config) error {
	path, err := File()
	if err != nil {
		return err
	}
	data, err := yaml.Marshal(cfg)
	if err != nil {
		return err
	}
	return os.WriteFile(path, data, 0o644)
}
