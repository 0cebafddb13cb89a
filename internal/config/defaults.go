package config

import "os"

// ApplyDefaults sets default values for any zero values in cfg.
func ApplyDefaults(cfg *Config) {
	if cfg.Server.Host == "" {
		cfg.Server.Host = "localhost"
	}
	if cfg.Server.Port == 0 {
		cfg.Server.Port = 8080
	}
	if cfg.KnowledgeBase.Path == "" {
		cfg.KnowledgeBase.Path = "/usr/local/var/kotae/data/knowledge_base.json"
	}
	if cfg.Index.TextFields == nil {
		cfg.Index.TextFields = []string{"question", "text", "section"}
	}
	if cfg.Index.KeywordFields == nil {
		cfg.Index.KeywordFields = []string{"group_id"}
	}
	if cfg.Search.DefaultLimit == 0 {
		cfg.Search.DefaultLimit = 5
	}
	if cfg.Gateway.Model == "" {
		cfg.Gateway.Model = "gpt-4o"
	}
	if cfg.Gateway.TimeoutSeconds == 0 {
		cfg.Gateway.TimeoutSeconds = 60
	}
	// The key usually comes from the environment rather than the file.
	if cfg.Gateway.APIKey == "" {
		cfg.Gateway.APIKey = os.Getenv("OPENAI_API_KEY")
	}
	if cfg.History.DatabasePath == "" {
		cfg.History.DatabasePath = "/usr/local/var/kotae/data/db/history.db"
	}
	if cfg.Cache.TTLMinutes == 0 {
		cfg.Cache.TTLMinutes = 60
	}
}
