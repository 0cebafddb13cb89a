// Package config provides configuration loading and structs for the kotae server.
package config

import (
	"fmt"
	"os"
	"path/filepath"
	"regexp"
	"strings"

	"gopkg.in/yaml.v3"
)

// Config holds all configuration for the application.
type Config struct {
	Debug         bool                `yaml:"debug"`
	Server        ServerConfig        `yaml:"server"`
	KnowledgeBase KnowledgeBaseConfig `yaml:"knowledge_base"`
	Index         IndexConfig         `yaml:"index"`
	Search        SearchConfig        `yaml:"search"`
	Gateway       GatewayConfig       `yaml:"gateway"`
	History       HistoryConfig       `yaml:"history"`
	Cache         CacheConfig         `yaml:"cache"`
}

// ServerConfig holds HTTP server settings.
type ServerConfig struct {
	Host string `yaml:"host"`
	Port int    `yaml:"port"`
}

// KnowledgeBaseConfig holds the knowledge-base source settings.
type KnowledgeBaseConfig struct {
	Path  string `yaml:"path"`
	Watch *bool  `yaml:"watch"`
}

// WatchOrDefault returns whether to rebuild the index when the knowledge
// base file changes; defaults to true when unset.
func (k *KnowledgeBaseConfig) WatchOrDefault() bool {
	if k.Watch != nil {
		return *k.Watch
	}
	return true
}

// IndexConfig declares the index schema.
type IndexConfig struct {
	TextFields    []string `yaml:"text_fields"`
	KeywordFields []string `yaml:"keyword_fields"`
}

// SearchConfig holds retrieval settings used when a request does not
// override them.
type SearchConfig struct {
	DefaultLimit int                `yaml:"default_limit"`
	Boosts       map[string]float64 `yaml:"boosts"`
}

// GatewayConfig holds the chat completion API settings.
type GatewayConfig struct {
	APIKey         string `yaml:"api_key"`
	BaseURL        string `yaml:"base_url"`
	Model          string `yaml:"model"`
	TimeoutSeconds int    `yaml:"timeout_seconds"`
}

// HistoryConfig holds ask-history persistence settings.
type HistoryConfig struct {
	Enabled      *bool  `yaml:"enabled"`
	DatabasePath string `yaml:"database_path"`
}

// EnabledOrDefault returns whether exchanges are persisted; defaults to true
// when unset.
func (h *HistoryConfig) EnabledOrDefault() bool {
	if h.Enabled != nil {
		return *h.Enabled
	}
	return true
}

// CacheConfig holds answer cache settings.
type CacheConfig struct {
	Enabled    *bool `yaml:"enabled"`
	TTLMinutes int   `yaml:"ttl_minutes"`
}

// EnabledOrDefault returns whether identical questions are answered from
// cache; defaults to true when unset.
func (c *CacheConfig) EnabledOrDefault() bool {
	if c.Enabled != nil {
		return *c.Enabled
	}
	return true
}

// Load reads and parses the config file at path, expands environment
// variables and paths, and applies defaults.
func Load(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read config: %w", err)
	}

	data = expandEnvVars(data)

	var cfg Config
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return nil, fmt.Errorf("failed to parse config: %w", err)
	}

	ApplyDefaults(&cfg)

	configDir := filepath.Dir(path)
	cfg.KnowledgeBase.Path = expandPath(cfg.KnowledgeBase.Path, configDir)
	cfg.History.DatabasePath = expandPath(cfg.History.DatabasePath, configDir)

	return &cfg, nil
}

var envVarRegex = regexp.MustCompile(`\$\{([^}]+)\}`)

// expandEnvVars replaces ${VAR} and ${VAR:-default} references in the raw
// config with environment values.
func expandEnvVars(data []byte) []byte {
	return envVarRegex.ReplaceAllFunc(data, func(match []byte) []byte {
		expr := string(match[2 : len(match)-1])
		if idx := strings.Index(expr, ":-"); idx != -1 {
			name, def := expr[:idx], expr[idx+2:]
			if val, ok := os.LookupEnv(name); ok && val != "" {
				return []byte(val)
			}
			return []byte(def)
		}
		return []byte(os.Getenv(expr))
	})
}

// expandPath converts a path to absolute. Paths starting with "./" are
// relative to configDir; other relative paths are relative to the home
// directory.
func expandPath(path string, configDir string) string {
	if filepath.IsAbs(path) {
		return path
	}
	if strings.HasPrefix(path, "./") || path == "." {
		return filepath.Join(configDir, path)
	}
	if home, err := os.UserHomeDir(); err == nil {
		return filepath.Join(home, path)
	}
	return path
}
