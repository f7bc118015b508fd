package config

import (
	"os"
	"path/filepath"
	"testing"
)

func TestLoad_Defaults(t *testing.T) {
	cfg, err := Load("")
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if cfg.Server.Port != 8000 {
		t.Errorf("port = %d, want 8000", cfg.Server.Port)
	}
	if cfg.LLM.ChatModel != "gpt-4.1-mini" {
		t.Errorf("chat model = %q", cfg.LLM.ChatModel)
	}
	if cfg.LLM.EmbedModel != "text-embedding-3-small" {
		t.Errorf("embed model = %q", cfg.LLM.EmbedModel)
	}
	if cfg.Pipeline.RetrievalLimit != 10 {
		t.Errorf("retrieval limit = %d, want 10", cfg.Pipeline.RetrievalLimit)
	}
	if cfg.Search.MaxResults != 5 {
		t.Errorf("search max results = %d, want 5", cfg.Search.MaxResults)
	}
}

func TestLoad_YAMLFile(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "config.yaml")
	content := `
server:
  port: 9100
llm:
  chat_model: local-model
log:
  level: debug
`
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatalf("writing config: %v", err)
	}

	cfg, err := Load(path)
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if cfg.Server.Port != 9100 {
		t.Errorf("port = %d, want 9100", cfg.Server.Port)
	}
	if cfg.LLM.ChatModel != "local-model" {
		t.Errorf("chat model = %q", cfg.LLM.ChatModel)
	}
	if cfg.Log.Level != "debug" {
		t.Errorf("log level = %q", cfg.Log.Level)
	}
	// Untouched fields keep their defaults.
	if cfg.LLM.EmbedModel != "text-embedding-3-small" {
		t.Errorf("embed model = %q", cfg.LLM.EmbedModel)
	}
}

func TestLoad_EnvOverridesFile(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "config.yaml")
	if err := os.WriteFile(path, []byte("server:\n  port: 9100\n"), 0o644); err != nil {
		t.Fatalf("writing config: %v", err)
	}

	t.Setenv("ASKDOCS_PORT", "9200")
	t.Setenv("OPENAI_API_KEY", "sk-test")
	t.Setenv("ASKDOCS_TAVILY_API_KEY", "tvly-test")

	cfg, err := Load(path)
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if cfg.Server.Port != 9200 {
		t.Errorf("port = %d, want 9200 (env wins over file)", cfg.Server.Port)
	}
	if cfg.LLM.APIKey != "sk-test" {
		t.Errorf("api key = %q", cfg.LLM.APIKey)
	}
	if cfg.Search.TavilyAPIKey != "tvly-test" {
		t.Errorf("tavily key = %q", cfg.Search.TavilyAPIKey)
	}
}

func TestLoad_MissingFileIgnored(t *testing.T) {
	if _, err := Load(filepath.Join(t.TempDir(), "absent.yaml")); err != nil {
		t.Fatalf("Load with missing file: %v", err)
	}
}

func TestLoad_MissingAPIKeyIsNotFatal(t *testing.T) {
	cfg, err := Load("")
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	// The key may legitimately be empty; startup degrades instead of failing.
	_ = cfg.LLM.APIKey
}

func TestLoad_InvalidPort(t *testing.T) {
	t.Setenv("ASKDOCS_PORT", "99999")
	if _, err := Load(""); err == nil {
		t.Error("expected error for out-of-range port")
	}
}
