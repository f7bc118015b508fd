// Package config loads service configuration from an optional YAML file,
// a .env file, and environment variables, in increasing order of precedence.
package config

import (
	"fmt"
	"os"
	"path/filepath"
	"strconv"

	"github.com/joho/godotenv"
	"gopkg.in/yaml.v3"
)

type Config struct {
	Server   ServerConfig   `yaml:"server"`
	LLM      LLMConfig      `yaml:"llm"`
	Storage  StorageConfig  `yaml:"storage"`
	Search   SearchConfig   `yaml:"search"`
	Pipeline PipelineConfig `yaml:"pipeline"`
	Log      LogConfig      `yaml:"log"`
}

type ServerConfig struct {
	Port int `yaml:"port"`
	// APIToken, when non-empty, enables bearer auth on document-management
	// endpoints. The ask endpoint stays open.
	APIToken string `yaml:"api_token"`
}

type LLMConfig struct {
	BaseURL    string `yaml:"base_url"`
	APIKey     string `yaml:"api_key"`
	ChatModel  string `yaml:"chat_model"`
	EmbedModel string `yaml:"embed_model"`
}

type StorageConfig struct {
	DataDir string `yaml:"data_dir"`
}

type SearchConfig struct {
	TavilyAPIKey string `yaml:"tavily_api_key"`
	MaxResults   int    `yaml:"max_results"`
}

type PipelineConfig struct {
	RetrievalLimit int `yaml:"retrieval_limit"`
	HistoryTurns   int `yaml:"history_turns"`
}

type LogConfig struct {
	Level string `yaml:"level"`
}

func defaults() Config {
	return Config{
		Server: ServerConfig{
			Port: 8000,
		},
		LLM: LLMConfig{
			BaseURL:    "https://api.openai.com/v1",
			ChatModel:  "gpt-4.1-mini",
			EmbedModel: "text-embedding-3-small",
		},
		Storage: StorageConfig{
			DataDir: defaultDataDir(),
		},
		Search: SearchConfig{
			MaxResults: 5,
		},
		Pipeline: PipelineConfig{
			RetrievalLimit: 10,
			HistoryTurns:   5,
		},
		Log: LogConfig{
			Level: "info",
		},
	}
}

func defaultDataDir() string {
	home, err := os.UserHomeDir()
	if err != nil {
		return ".askdocs"
	}
	return filepath.Join(home, ".askdocs")
}

// Load reads configuration: defaults, then the YAML file at path (skipped if
// path is empty or the file does not exist), then .env, then ASKDOCS_* /
// OPENAI_API_KEY / TAVILY_API_KEY environment variables.
//
// A missing LLM API key is not an error here: the server starts in a
// degraded no-retrieval mode and the component constructors decide what
// they can run without.
func Load(path string) (Config, error) {
	cfg := defaults()

	if path != "" {
		data, err := os.ReadFile(path)
		if err != nil && !os.IsNotExist(err) {
			return Config{}, fmt.Errorf("reading config file: %w", err)
		}
		if err == nil {
			if err := yaml.Unmarshal(data, &cfg); err != nil {
				return Config{}, fmt.Errorf("parsing config file %s: %w", path, err)
			}
		}
	}

	// .env is a developer convenience; absence is not an error.
	_ = godotenv.Load()

	applyEnvOverrides(&cfg)

	if cfg.Server.Port <= 0 || cfg.Server.Port > 65535 {
		return Config{}, fmt.Errorf("invalid server port %d", cfg.Server.Port)
	}

	return cfg, nil
}

func applyEnvOverrides(cfg *Config) {
	setString := func(dst *string, keys ...string) {
		for _, key := range keys {
			if v := os.Getenv(key); v != "" {
				*dst = v
				return
			}
		}
	}

	if v := os.Getenv("ASKDOCS_PORT"); v != "" {
		if port, err := strconv.Atoi(v); err == nil {
			cfg.Server.Port = port
		}
	}
	setString(&cfg.Server.APIToken, "ASKDOCS_API_TOKEN")
	setString(&cfg.Storage.DataDir, "ASKDOCS_DATA_DIR")
	setString(&cfg.LLM.BaseURL, "ASKDOCS_LLM_BASE_URL")
	setString(&cfg.LLM.APIKey, "ASKDOCS_OPENAI_API_KEY", "OPENAI_API_KEY")
	setString(&cfg.LLM.ChatModel, "ASKDOCS_CHAT_MODEL")
	setString(&cfg.LLM.EmbedModel, "ASKDOCS_EMBED_MODEL")
	setString(&cfg.Search.TavilyAPIKey, "ASKDOCS_TAVILY_API_KEY", "TAVILY_API_KEY")
	setString(&cfg.Log.Level, "ASKDOCS_LOG_LEVEL")
}
