package config

import (
	"os"
	"path/filepath"
	"testing"
)

func TestNew_Defaults(t *testing.T) {
	cfg := New()
	if cfg.Agent.ID != "butler" {
		t.Errorf("unexpected agent id: %s", cfg.Agent.ID)
	}
	if cfg.Storage.Backend != "file" {
		t.Errorf("default backend should be file, got %s", cfg.Storage.Backend)
	}
	if cfg.NATS.SubjectPrefix != "butler" {
		t.Errorf("unexpected subject prefix: %s", cfg.NATS.SubjectPrefix)
	}
	if cfg.LLM.APIKeyEnv != "OPENAI_API_KEY" {
		t.Errorf("unexpected api key env: %s", cfg.LLM.APIKeyEnv)
	}
}

func TestLoad_MissingFileUsesDefaults(t *testing.T) {
	cfg, err := Load(filepath.Join(t.TempDir(), "nope.toml"))
	if err != nil {
		t.Fatalf("missing file should not error: %v", err)
	}
	if cfg.Agent.ID != "butler" {
		t.Error("defaults not applied")
	}
}

func TestLoad_File(t *testing.T) {
	path := filepath.Join(t.TempDir(), "butler.toml")
	content := `
[agent]
id = "home-butler"

[llm]
model = "gpt-4o"
api_key_env = "MY_KEY"

[storage]
backend = "sqlite"
path = "/tmp/butler"

[nats]
url = "nats://localhost:4222"
subject_prefix = "home"

[fast_path]
rules = "rules.yaml"
`
	if err := os.WriteFile(path, []byte(content), 0644); err != nil {
		t.Fatal(err)
	}

	cfg, err := Load(path)
	if err != nil {
		t.Fatalf("load error: %v", err)
	}
	if cfg.Agent.ID != "home-butler" {
		t.Errorf("unexpected agent id: %s", cfg.Agent.ID)
	}
	if cfg.Storage.Backend != "sqlite" {
		t.Errorf("unexpected backend: %s", cfg.Storage.Backend)
	}
	if cfg.NATS.URL != "nats://localhost:4222" || cfg.NATS.SubjectPrefix != "home" {
		t.Errorf("nats config lost: %+v", cfg.NATS)
	}
	if cfg.FastPath.Rules != "rules.yaml" {
		t.Errorf("fast path rules lost: %s", cfg.FastPath.Rules)
	}
	// Unset sections keep defaults.
	if cfg.LLM.Provider != "openai" {
		t.Errorf("unset field should keep default, got %s", cfg.LLM.Provider)
	}
}

func TestLoad_InvalidBackend(t *testing.T) {
	path := filepath.Join(t.TempDir(), "butler.toml")
	if err := os.WriteFile(path, []byte("[storage]\nbackend = \"redis\"\n"), 0644); err != nil {
		t.Fatal(err)
	}
	if _, err := Load(path); err == nil {
		t.Error("expected error for unknown backend")
	}
}

func TestLLMConfig_APIKey(t *testing.T) {
	t.Setenv("BUTLER_TEST_KEY", "sk-test")
	c := LLMConfig{APIKeyEnv: "BUTLER_TEST_KEY"}
	if c.APIKey() != "sk-test" {
		t.Errorf("unexpected key: %s", c.APIKey())
	}
}
