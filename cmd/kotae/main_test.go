package main

import (
	"errors"
	"os"
	"path/filepath"
	"reflect"
	"testing"

	"go.uber.org/zap"

	"github.com/hyperjump/kotae/internal/cli"
	"github.com/hyperjump/kotae/internal/config"
	"github.com/hyperjump/kotae/internal/models"
	"github.com/hyperjump/kotae/internal/rag"
)

func TestReorderArgs(t *testing.T) {
	tests := []struct {
		name     string
		args     []string
		expected []string
	}{
		{
			name:     "flags after query are moved first",
			args:     []string{"how do I install kafka", "-limit", "3"},
			expected: []string{"-limit", "3", "how do I install kafka"},
		},
		{
			name:     "flags first returns unchanged",
			args:     []string{"-limit", "3", "how do I install kafka"},
			expected: []string{"-limit", "3", "how do I install kafka"},
		},
		{
			name:     "query only returns unchanged",
			args:     []string{"how do I install kafka"},
			expected: []string{"how do I install kafka"},
		},
		{
			name:     "empty args returns unchanged",
			args:     []string{},
			expected: []string{},
		},
		{
			name:     "multiple positionals then flags",
			args:     []string{"one", "two", "-output", "json"},
			expected: []string{"-output", "json", "one", "two"},
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := reorderArgs(tt.args)
			if !reflect.DeepEqual(got, tt.expected) {
				t.Errorf("reorderArgs() = %v, want %v", got, tt.expected)
			}
		})
	}
}

func TestBuildQuery(t *testing.T) {
	tests := []struct {
		name     string
		args     []string
		expected string
	}{
		{"single word", []string{"kafka"}, "kafka"},
		{"multiple words", []string{"docker", "compose"}, "docker compose"},
		{"single quoted phrase", []string{"docker compose"}, "docker compose"},
		{"three words", []string{"course", "start", "date"}, "course start date"},
		{"empty args", []string{}, ""},
		{"blank args", []string{"  ", "  "}, ""},
		{"one space", []string{" "}, ""},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := buildQuery(tt.args)
			if got != tt.expected {
				t.Errorf("buildQuery(%v) = %q, want %q", tt.args, got, tt.expected)
			}
		})
	}
}

func TestParseOutputFormat(t *testing.T) {
	tests := []struct {
		in     string
		want   cli.OutputFormat
		wantOK bool
	}{
		{"text", cli.OutputText, true},
		{"json", cli.OutputJSON, true},
		{"yaml", "", false},
		{"", "", false},
	}
	for _, tt := range tests {
		got, ok := parseOutputFormat(tt.in)
		if got != tt.want || ok != tt.wantOK {
			t.Errorf("parseOutputFormat(%q) = %q, %t; want %q, %t", tt.in, got, ok, tt.want, tt.wantOK)
		}
	}
}

func TestSchemaFromConfig(t *testing.T) {
	cfg := &config.Config{}
	config.ApplyDefaults(cfg)
	s := schemaFromConfig(cfg)
	if !reflect.DeepEqual(s.TextFields, []string{"question", "text", "section"}) {
		t.Errorf("TextFields = %v", s.TextFields)
	}
	if !reflect.DeepEqual(s.KeywordFields, []string{"group_id"}) {
		t.Errorf("KeywordFields = %v", s.KeywordFields)
	}
}

func TestReloadKnowledgeBase(t *testing.T) {
	dir := t.TempDir()
	kbPath := filepath.Join(dir, "kb.json")
	kb := `[{"group_id": "faq", "documents": [
		{"question": "How do I enroll?", "text": "Fill in the registration form.", "section": "General"},
		{"question": "Where are the videos?", "text": "On the playlist.", "section": "General"}
	]}]`
	if err := os.WriteFile(kbPath, []byte(kb), 0600); err != nil {
		t.Fatal(err)
	}
	cfg := &config.Config{}
	config.ApplyDefaults(cfg)
	cfg.KnowledgeBase.Path = kbPath

	engine := rag.NewEngine(nil, nil, &cfg.Search)
	t.Cleanup(func() { _ = engine.Close() })

	if engine.Ready() {
		t.Fatal("engine should not be ready before the first load")
	}
	if err := reloadKnowledgeBase(engine, cfg, zap.NewNop()); err != nil {
		t.Fatalf("reloadKnowledgeBase() error = %v", err)
	}
	if !engine.Ready() {
		t.Error("engine should be ready after loading")
	}
	if got := engine.DocCount(); got != 2 {
		t.Errorf("DocCount() = %d, want 2", got)
	}

	// A failed reload keeps the previous index active.
	cfg.KnowledgeBase.Path = filepath.Join(dir, "missing.json")
	if err := reloadKnowledgeBase(engine, cfg, zap.NewNop()); !errors.Is(err, models.ErrNotFound) {
		t.Errorf("reloadKnowledgeBase(missing) error = %v, want ErrNotFound", err)
	}
	if got := engine.DocCount(); got != 2 {
		t.Errorf("DocCount() after failed reload = %d, want 2", got)
	}
}

func TestLoadConfig_prefersCwdConfigWhenDefaultPath(t *testing.T) {
	dir := t.TempDir()
	configPath := filepath.Join(dir, "config.yaml")
	content := `
debug: true
server:
  host: "localhost"
  port: 8080
knowledge_base:
  path: "./kb.json"
`
	if err := os.WriteFile(configPath, []byte(content), 0600); err != nil {
		t.Fatal(err)
	}
	origWd, err := os.Getwd()
	if err != nil {
		t.Fatal(err)
	}
	defer func() { _ = os.Chdir(origWd) }()
	if err := os.Chdir(dir); err != nil {
		t.Fatal(err)
	}

	cfg, resolved, err := loadConfig(defaultConfigPath)
	if err != nil {
		t.Fatal(err)
	}
	// On macOS, cwd can be /private/var/... while configPath from t.TempDir() is /var/...; compare canonical paths.
	resolvedCanon, _ := filepath.EvalSymlinks(resolved)
	configPathCanon, _ := filepath.EvalSymlinks(configPath)
	if resolvedCanon != configPathCanon {
		t.Errorf("resolved path = %s (canon %s), want %s (canon %s)", resolved, resolvedCanon, configPath, configPathCanon)
	}
	if !cfg.Debug {
		t.Error("debug should be true from cwd config.yaml")
	}
}

func TestLoadConfig_usesExplicitPath(t *testing.T) {
	dir := t.TempDir()
	configPath := filepath.Join(dir, "config.yaml")
	content := `
server:
  host: "127.0.0.1"
  port: 9000
`
	if err := os.WriteFile(configPath, []byte(content), 0600); err != nil {
		t.Fatal(err)
	}

	cfg, resolved, err := loadConfig(configPath)
	if err != nil {
		t.Fatal(err)
	}
	if resolved != configPath {
		t.Errorf("resolved path = %s, want %s", resolved, configPath)
	}
	if cfg.Server.Host != "127.0.0.1" || cfg.Server.Port != 9000 {
		t.Errorf("unexpected server config: %+v", cfg.Server)
	}
}
