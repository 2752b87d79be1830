// Package config loads butler configuration from TOML.
package config

import (
	"fmt"
	"os"

	"github.com/BurntSushi/toml"
)

// Config is the top-level configuration.
type Config struct {
	Agent    AgentConfig    `toml:"agent"`
	LLM      LLMConfig      `toml:"llm"`
	Storage  StorageConfig  `toml:"storage"`
	NATS     NATSConfig     `toml:"nats"`
	FastPath FastPathConfig `toml:"fast_path"`
	Logging  LoggingConfig  `toml:"logging"`
}

// AgentConfig identifies this butler instance.
type AgentConfig struct {
	ID string `toml:"id"`
}

// LLMConfig selects the planning model.
type LLMConfig struct {
	Provider  string `toml:"provider"`
	Model     string `toml:"model"`
	APIKeyEnv string `toml:"api_key_env"`
	BaseURL   string `toml:"base_url"`
}

// APIKey reads the planner API key from the configured environment
// variable.
func (c LLMConfig) APIKey() string {
	return os.Getenv(c.APIKeyEnv)
}

// StorageConfig selects where session records are persisted.
type StorageConfig struct {
	// Backend is "file" (one JSONL file per session) or "sqlite".
	Backend string `toml:"backend"`
	Path    string `toml:"path"`
}

// NATSConfig configures the message bus. An empty URL disables NATS
// entirely: no event sink, no serve loop.
type NATSConfig struct {
	URL           string `toml:"url"`
	SubjectPrefix string `toml:"subject_prefix"`
}

// FastPathConfig points at the YAML rule file. An empty path means no
// fast-path rules beyond those registered in code.
type FastPathConfig struct {
	Rules string `toml:"rules"`
}

// LoggingConfig controls log verbosity.
type LoggingConfig struct {
	Level string `toml:"level"`
}

// New returns a config with usable defaults.
func New() *Config {
	return &Config{
		Agent: AgentConfig{ID: "butler"},
		LLM: LLMConfig{
			Provider:  "openai",
			Model:     "gpt-4o-mini",
			APIKeyEnv: "OPENAI_API_KEY",
		},
		Storage: StorageConfig{
			Backend: "file",
			Path:    defaultStoragePath(),
		},
		NATS: NATSConfig{
			SubjectPrefix: "butler",
		},
		Logging: LoggingConfig{Level: "INFO"},
	}
}

// Load reads a TOML config file over the defaults. A missing file is not
// an error; defaults apply.
func Load(path string) (*Config, error) {
	cfg := New()
	if path == "" {
		return cfg, nil
	}
	if _, err := os.Stat(path); os.IsNotExist(err) {
		return cfg, nil
	}
	if _, err := toml.DecodeFile(path, cfg); err != nil {
		return nil, fmt.Errorf("failed to parse config %s: %w", path, err)
	}
	if err := cfg.validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

func (c *Config) validate() error {
	switch c.Storage.Backend {
	case "file", "sqlite":
	default:
		return fmt.Errorf("unknown storage backend: %s", c.Storage.Backend)
	}
	return nil
}

func defaultStoragePath() string {
	home, err := os.UserHomeDir()
	if err != nil {
		return ".butler/sessions"
	}
	return home + "/.butler/sessions"
}
