package config

import (
	"errors"
	"os"
	"path/filepath"

	"gopkg.in/yaml.v3"
)

// DocumentConfig locates the source document and tunes chunking.
type DocumentConfig struct {
	Path          string `yaml:"path"`
	ChunkSize     int    `yaml:"chunk_size"`
	MinChunkChars int    `yaml:"min_chunk_chars"`
}

// IndexConfig locates the persisted embedding index artifacts.
type IndexConfig struct {
	Dir string `yaml:"dir"`
}

// OpenAIEmbedderConfig holds configuration for the OpenAI-compatible embedder.
type OpenAIEmbedderConfig struct {
	BaseURL     string `yaml:"base_url"`
	APIKeyEnv   string `yaml:"api_key_env"`
	Model       string `yaml:"model"`
	TimeoutSecs int    `yaml:"timeout_secs"`
	BatchSize   int    `yaml:"batch_size"`
}

// EmbedderConfig selects and configures the text embedder implementation.
type EmbedderConfig struct {
	Type   string                `yaml:"type"`
	OpenAI *OpenAIEmbedderConfig `yaml:"openai,omitempty"`
}

// RetrieverConfig tunes context selection.
type RetrieverConfig struct {
	TopK            int `yaml:"top_k"`
	MaxContextChars int `yaml:"max_context_chars"`
}

// TopicsConfig optionally overrides the built-in topic rule table.
type TopicsConfig struct {
	RulesPath string `yaml:"rules_path,omitempty"`
}

// CompletionConfig configures the chat completion service client.
type CompletionConfig struct {
	BaseURL       string `yaml:"base_url"`
	APIKeyEnv     string `yaml:"api_key_env"`
	Model         string `yaml:"model"`
	TimeoutSecs   int    `yaml:"timeout_secs"`
	MaxToolRounds int    `yaml:"max_tool_rounds"`
}

// NotifyConfig configures the push notification client used by tools.
type NotifyConfig struct {
	URL         string `yaml:"url"`
	UserEnv     string `yaml:"user_env"`
	TokenEnv    string `yaml:"token_env"`
	TimeoutSecs int    `yaml:"timeout_secs"`
}

// LeadsConfig locates the SQLite database for recorded leads and questions.
type LeadsConfig struct {
	DBPath string `yaml:"db_path"`
}

// ServerConfig configures the HTTP chat boundary.
type ServerConfig struct {
	Addr string `yaml:"addr"`
}

// AppConfig is the root application configuration structure.
type AppConfig struct {
	Document   DocumentConfig   `yaml:"document"`
	Index      IndexConfig      `yaml:"index"`
	Embedder   EmbedderConfig   `yaml:"embedder"`
	Retriever  RetrieverConfig  `yaml:"retriever"`
	Topics     TopicsConfig     `yaml:"topics"`
	Completion CompletionConfig `yaml:"completion"`
	Notify     NotifyConfig     `yaml:"notify"`
	Leads      LeadsConfig      `yaml:"leads"`
	Server     ServerConfig     `yaml:"server"`
}

// Load reads a config from a specified path. If the file does not exist, returns defaults.
func Load(path string) (*AppConfig, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			cfg := defaultConfig()
			return cfg, nil
		}
		return nil, err
	}
	var cfg AppConfig
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return nil, err
	}
	applyConfigDefaults(&cfg)
	return &cfg, nil
}

// LoadDefault tries ./config.yaml first, then ~/.config/presia/config.yaml.
// If neither exists, it writes defaults to ~/.config/presia/config.yaml and returns them.
func LoadDefault() (*AppConfig, string, error) {
	cwdPath := "config.yaml"
	if _, err := os.Stat(cwdPath); err == nil {
		cfg, err := Load(cwdPath)
		return cfg, cwdPath, err
	}
	userPath, err := defaultUserConfigPath()
	if err != nil {
		return nil, "", err
	}
	if _, err := os.Stat(userPath); err == nil {
		cfg, err := Load(userPath)
		return cfg, userPath, err
	}
	cfg := defaultConfig()
	if err := Save(userPath, cfg); err != nil {
		return nil, "", err
	}
	return cfg, userPath, nil
}

// Save writes the config to the given path, creating directories as needed.
func Save(path string, cfg *AppConfig) error {
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return err
	}
	data, err := yaml.Marshal(cfg)
	if err != nil {
		return err
	}
	return os.WriteFile(path, data, 0o644)
}

func defaultUserConfigPath() (string, error) {
	home, err := os.UserHomeDir()
	if err != nil {
		return "", err
	}
	return filepath.Join(home, ".config", "presia", "config.yaml"), nil
}

func defaultConfig() *AppConfig {
	cfg := &AppConfig{
		Document:  DocumentConfig{Path: "static/document/source.txt", ChunkSize: 400, MinChunkChars: 50},
		Index:     IndexConfig{Dir: "data/index"},
		Embedder:  EmbedderConfig{Type: "tfidf"},
		Retriever: RetrieverConfig{TopK: 8, MaxContextChars: 10000},
		Completion: CompletionConfig{
			BaseURL:       "https://api.openai.com/v1",
			APIKeyEnv:     "OPENAI_API_KEY",
			Model:         "gpt-4o-mini",
			TimeoutSecs:   60,
			MaxToolRounds: 5,
		},
		Notify: NotifyConfig{
			URL:         "https://api.pushover.net/1/messages.json",
			UserEnv:     "PUSHOVER_USER",
			TokenEnv:    "PUSHOVER_TOKEN",
			TimeoutSecs: 5,
		},
		Leads:  LeadsConfig{DBPath: "data/leads.db"},
		Server: ServerConfig{Addr: ":8080"},
	}
	return cfg
}

func applyConfigDefaults(cfg *AppConfig) {
	if cfg.Document.ChunkSize == 0 {
		cfg.Document.ChunkSize = 400
	}
	if cfg.Document.MinChunkChars == 0 {
		cfg.Document.MinChunkChars = 50
	}
	if cfg.Index.Dir == "" {
		cfg.Index.Dir = "data/index"
	}
	if cfg.Retriever.TopK == 0 {
		cfg.Retriever.TopK = 8
	}
	if cfg.Retriever.MaxContextChars == 0 {
		cfg.Retriever.MaxContextChars = 10000
	}
	if cfg.Embedder.Type == "openai" && cfg.Embedder.OpenAI != nil {
		if cfg.Embedder.OpenAI.BaseURL == "" {
			cfg.Embedder.OpenAI.BaseURL = "https://api.openai.com/v1"
		}
		if cfg.Embedder.OpenAI.APIKeyEnv == "" {
			cfg.Embedder.OpenAI.APIKeyEnv = "OPENAI_API_KEY"
		}
		if cfg.Embedder.OpenAI.Model == "" {
			cfg.Embedder.OpenAI.Model = "text-embedding-3-small"
		}
		if cfg.Embedder.OpenAI.TimeoutSecs == 0 {
			cfg.Embedder.OpenAI.TimeoutSecs = 30
		}
		if cfg.Embedder.OpenAI.BatchSize == 0 {
			cfg.Embedder.OpenAI.BatchSize = 32
		}
	}
	if cfg.Completion.BaseURL == "" {
		cfg.Completion.BaseURL = "https://api.openai.com/v1"
	}
	if cfg.Completion.APIKeyEnv == "" {
		cfg.Completion.APIKeyEnv = "OPENAI_API_KEY"
	}
	if cfg.Completion.Model == "" {
		cfg.Completion.Model = "gpt-4o-mini"
	}
	if cfg.Completion.TimeoutSecs == 0 {
		cfg.Completion.TimeoutSecs = 60
	}
	if cfg.Completion.MaxToolRounds == 0 {
		cfg.Completion.MaxToolRounds = 5
	}
	if cfg.Notify.URL == "" {
		cfg.Notify.URL = "https://api.pushover.net/1/messages.json"
	}
	if cfg.Notify.UserEnv == "" {
		cfg.Notify.UserEnv = "PUSHOVER_USER"
	}
	if cfg.Notify.TokenEnv == "" {
		cfg.Notify.TokenEnv = "PUSHOVER_TOKEN"
	}
	if cfg.Notify.TimeoutSecs == 0 {
		cfg.Notify.TimeoutSecs = 5
	}
	if cfg.Leads.DBPath == "" {
		cfg.Leads.DBPath = "data/leads.db"
	}
	if cfg.Server.Addr == "" {
		cfg.Server.Addr = ":8080"
	}
}
