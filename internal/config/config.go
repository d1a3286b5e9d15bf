// Package config loads the YAML configuration for contentforge, following
// XDG paths with an embedded default for first-run setup.
package config

import (
	_ "embed"
	"fmt"
	"os"
	"path/filepath"

	"gopkg.in/yaml.v3"
)

//go:embed default.yaml
var DefaultConfigYAML []byte

type Config struct {
	AI      AI      `yaml:"ai"`
	Ingest  Ingest  `yaml:"ingest"`
	Output  Output  `yaml:"output"`
	Server  Server  `yaml:"server"`
	Logging Logging `yaml:"logging"`
}

// AI selects the generation providers and their connection details.
type AI struct {
	Primary  string `yaml:"primary"`
	Fallback string `yaml:"fallback"`
	Ollama   Ollama `yaml:"ollama"`
	Gemini   Gemini `yaml:"gemini"`
}

type Ollama struct {
	Host  string `yaml:"host"`
	Model string `yaml:"model"`
}

type Gemini struct {
	APIKeyEnv string `yaml:"api_key_env"`
	Model     string `yaml:"model"`
}

// Ingest configures the RSS/Atom feeds idea import pulls from.
type Ingest struct {
	Feeds           []Feed `yaml:"feeds"`
	FetchFullText   bool   `yaml:"fetch_full_text"`
	DefaultCategory string `yaml:"default_category"`
}

type Feed struct {
	URL      string `yaml:"url"`
	Name     string `yaml:"name"`
	Category string `yaml:"category"`
}

type Output struct {
	DataDir string `yaml:"data_dir"`
}

type Server struct {
	Port int `yaml:"port"`
}

type Logging struct {
	Level string `yaml:"level"`
}

// ConfigDir returns the XDG config directory for contentforge.
func ConfigDir() string {
	return filepath.Join(homeDir(), ".config", "contentforge")
}

// DataDir returns the XDG data directory for contentforge.
func DataDir() string {
	return filepath.Join(homeDir(), ".local", "share", "contentforge")
}

// ResolveConfigPath finds the config file following priority:
// explicit path > ~/.config/contentforge/config.yaml > ./config.yaml
func ResolveConfigPath(explicit string) (string, error) {
	if explicit != "" {
		if _, err := os.Stat(explicit); err != nil {
			return "", fmt.Errorf("config file not found: %s", explicit)
		}
		return explicit, nil
	}

	xdgConfig := filepath.Join(ConfigDir(), "config.yaml")
	if _, err := os.Stat(xdgConfig); err == nil {
		return xdgConfig, nil
	}

	cwdConfig := "config.yaml"
	if _, err := os.Stat(cwdConfig); err == nil {
		return cwdConfig, nil
	}

	return "", fmt.Errorf(
		"no config file found; searched:\n  %s\n  ./config.yaml\n\nRun 'contentforge init' to create a default config",
		xdgConfig,
	)
}

// Load reads and parses a config YAML file.
func Load(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading config: %w", err)
	}
	return parse(data)
}

// parse parses YAML bytes into a Config, applying defaults.
func parse(data []byte) (*Config, error) {
	cfg := &Config{
		AI: AI{
			Primary:  "mock",
			Fallback: "",
			Ollama: Ollama{
				Host:  "http://localhost:11434",
				Model: "llama3.1:8b",
			},
			Gemini: Gemini{
				APIKeyEnv: "GEMINI_API_KEY",
				Model:     "gemini-1.5-flash-8b",
			},
		},
		Ingest: Ingest{
			FetchFullText:   false,
			DefaultCategory: "Industry",
		},
		Server:  Server{Port: 8000},
		Logging: Logging{Level: "INFO"},
	}

	if err := yaml.Unmarshal(data, cfg); err != nil {
		return nil, fmt.Errorf("parsing config: %w", err)
	}

	return cfg, nil
}

// GetDataDir returns the effective data directory from config or XDG default.
func (c *Config) GetDataDir() string {
	if c.Output.DataDir != "" {
		return c.Output.DataDir
	}
	return DataDir()
}

// GeminiAPIKey reads the Gemini key from the configured environment variable.
func (c *Config) GeminiAPIKey() string {
	if c.AI.Gemini.APIKeyEnv == "" {
		return ""
	}
	return os.Getenv(c.AI.Gemini.APIKeyEnv)
}

func homeDir() string {
	home, err := os.UserHomeDir()
	if err != nil {
		return "."
	}
	return home
}
