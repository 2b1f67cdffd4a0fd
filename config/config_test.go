package config

import (
	"os"
	"path/filepath"
	"testing"
)

func TestLoadConfigDefaults(t *testing.T) {
	t.Setenv("HOME", t.TempDir())
	t.Chdir(t.TempDir())

	cfg, err := LoadConfig()
	if err != nil {
		t.Fatalf("LoadConfig failed: %v", err)
	}
	if cfg.LLMClient != "" {
		t.Errorf("Expected no LLM client by default, got '%s'", cfg.LLMClient)
	}
	if cfg.Bridge.DataDir != ".modumentor" {
		t.Errorf("Expected default data dir '.modumentor', got '%s'", cfg.Bridge.DataDir)
	}
	if cfg.Bridge.TimeoutSeconds != 0 {
		t.Errorf("Expected no timeout by default, got %d", cfg.Bridge.TimeoutSeconds)
	}

	// The bridge's own state directory is hidden from the agent's tools.
	found := false
	for _, pattern := range cfg.FilesystemAccess.Hidden {
		if pattern == ".modumentor" {
			found = true
		}
	}
	if !found {
		t.Errorf("Data directory not hidden by default: %v", cfg.FilesystemAccess.Hidden)
	}
}

func writeConfig(t *testing.T, dir, content string) {
	t.Helper()
	cfgDir := filepath.Join(dir, ".modumentor")
	if err := os.MkdirAll(cfgDir, 0755); err != nil {
		t.Fatalf("mkdir failed: %v", err)
	}
	if err := os.WriteFile(filepath.Join(cfgDir, "config.yaml"), []byte(content), 0644); err != nil {
		t.Fatalf("write failed: %v", err)
	}
}

func TestLoadConfigProjectOverridesUser(t *testing.T) {
	home := t.TempDir()
	project := t.TempDir()
	t.Setenv("HOME", home)
	t.Chdir(project)

	writeConfig(t, home, "llm: openai\nmodel: gpt-4o\n")
	writeConfig(t, project, "llm: anthropic\nbridge:\n  timeout_seconds: 30\n")

	cfg, err := LoadConfig()
	if err != nil {
		t.Fatalf("LoadConfig failed: %v", err)
	}
	if cfg.LLMClient != "anthropic" {
		t.Errorf("Project config should override user config, got '%s'", cfg.LLMClient)
	}
	if cfg.Model != "gpt-4o" {
		t.Errorf("User-level fields absent from project config should survive, got '%s'", cfg.Model)
	}
	if cfg.Bridge.TimeoutSeconds != 30 {
		t.Errorf("Expected timeout 30, got %d", cfg.Bridge.TimeoutSeconds)
	}
}

func TestLoadConfigBadYAML(t *testing.T) {
	project := t.TempDir()
	t.Setenv("HOME", t.TempDir())
	t.Chdir(project)

	writeConfig(t, project, "llm: [unclosed\n")
	if _, err := LoadConfig(); err == nil {
		t.Error("Malformed YAML should fail loading")
	}
}

func TestGetToolset(t *testing.T) {
	cfg := &Config{
		Toolsets: []Toolset{
			{Name: "default", Tools: []string{"read_file"}},
			{Name: "web", Tools: []string{"web_search", "weather"}},
		},
	}

	ts, err := cfg.GetToolset("web")
	if err != nil {
		t.Fatalf("GetToolset failed: %v", err)
	}
	if len(ts.Tools) != 2 {
		t.Errorf("Unexpected toolset: %+v", ts)
	}

	// Unknown names fall back to the default toolset.
	ts, err = cfg.GetToolset("missing")
	if err != nil {
		t.Fatalf("GetToolset fallback failed: %v", err)
	}
	if ts.Name != "default" {
		t.Errorf("Expected fallback to 'default', got '%s'", ts.Name)
	}

	ts, err = cfg.GetToolset("")
	if err != nil {
		t.Fatalf("GetToolset with empty name failed: %v", err)
	}
	if ts.Name != "default" {
		t.Errorf("Empty name should resolve to 'default', got '%s'", ts.Name)
	}
}

func TestGetToolsetNoToolsetsConfigured(t *testing.T) {
	cfg := &Config{}
	ts, err := cfg.GetToolset("default")
	if err != nil {
		t.Fatalf("GetToolset failed: %v", err)
	}
	if ts.Name != "default" || len(ts.Tools) != 0 {
		t.Errorf("Expected an empty default toolset, got %+v", ts)
	}
}

func TestGetToolsetDefaultMissing(t *testing.T) {
	cfg := &Config{Toolsets: []Toolset{{Name: "web"}}}
	if _, err := cfg.GetToolset("default"); err == nil {
		t.Error("Configured toolsets without a 'default' should be an error")
	}
}
