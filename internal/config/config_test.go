package config

import (
	"os"
	"path/filepath"
	"testing"
)

func TestParseDefaultConfig(t *testing.T) {
	cfg, err := parse(DefaultConfigYAML)
	if err != nil {
		t.Fatalf("failed to parse default config: %v", err)
	}

	if cfg.AI.Primary != "mock" {
		t.Errorf("expected primary 'mock', got %q", cfg.AI.Primary)
	}

	if cfg.AI.Ollama.Model != "llama3.1:8b" {
		t.Errorf("expected model 'llama3.1:8b', got %q", cfg.AI.Ollama.Model)
	}

	if cfg.Server.Port != 8000 {
		t.Errorf("expected port 8000, got %d", cfg.Server.Port)
	}
}

func TestParseMinimalConfig(t *testing.T) {
	data := []byte(`
ai:
  primary: gemini
  fallback: ollama
server:
  port: 9000
`)
	cfg, err := parse(data)
	if err != nil {
		t.Fatalf("failed to parse minimal config: %v", err)
	}

	if cfg.AI.Primary != "gemini" {
		t.Errorf("expected primary 'gemini', got %q", cfg.AI.Primary)
	}
	if cfg.AI.Fallback != "ollama" {
		t.Errorf("expected fallback 'ollama', got %q", cfg.AI.Fallback)
	}
	if cfg.Server.Port != 9000 {
		t.Errorf("expected port 9000, got %d", cfg.Server.Port)
	}
	// Defaults should still be set for unspecified fields
	if cfg.AI.Ollama.Host != "http://localhost:11434" {
		t.Errorf("expected default ollama host, got %q", cfg.AI.Ollama.Host)
	}
	if cfg.AI.Gemini.APIKeyEnv != "GEMINI_API_KEY" {
		t.Errorf("expected default gemini api_key_env, got %q", cfg.AI.Gemini.APIKeyEnv)
	}
}

func TestLoadConfigFile(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "config.yaml")
	if err := os.WriteFile(path, DefaultConfigYAML, 0o644); err != nil {
		t.Fatalf("failed to write temp config: %v", err)
	}

	cfg, err := Load(path)
	if err != nil {
		t.Fatalf("failed to load config: %v", err)
	}
	if cfg.AI.Primary != "mock" {
		t.Errorf("expected primary 'mock' from file, got %q", cfg.AI.Primary)
	}
}

func TestGetDataDir(t *testing.T) {
	cfg := &Config{}
	defaultDir := cfg.GetDataDir()
	if defaultDir == "" {
		t.Error("expected non-empty default data dir")
	}

	cfg.Output.DataDir = "/custom/path"
	if cfg.GetDataDir() != "/custom/path" {
		t.Errorf("expected '/custom/path', got %q", cfg.GetDataDir())
	}
}

func TestGeminiAPIKey(t *testing.T) {
	cfg := &Config{}
	cfg.AI.Gemini.APIKeyEnv = "CONTENTFORGE_TEST_KEY"
	t.Setenv("CONTENTFORGE_TEST_KEY", "secret")
	if cfg.GeminiAPIKey() != "secret" {
		t.Errorf("expected key from env, got %q", cfg.GeminiAPIKey())
	}

	cfg.AI.Gemini.APIKeyEnv = ""
	if cfg.GeminiAPIKey() != "" {
		t.Error("expected empty key when env var name unset")
	}
}
