package config

import (
	"os"

	"gopkg.in/yaml.v3"
)

type ServerConfig struct {
	Addr        string `yaml:"addr"`
	MaxUploadMB int    `yaml:"max_upload_mb"`
}

// LLMConfig points at an OpenAI-compatible or Ollama endpoint.
type LLMConfig struct {
	Provider string `yaml:"provider"`
	BaseURL  string `yaml:"base_url"`
	Key      string `yaml:"key"`
	Model    string `yaml:"model"`
}

type IndexConfig struct {
	Backend    string `yaml:"backend"` // memory | postgres
	Collection string `yaml:"collection"`
	Path       string `yaml:"path"` // optional on-disk location for the memory backend
	DSN        string `yaml:"dsn"`
	Password   string `yaml:"password"`
	Debug      bool   `yaml:"debug"`
}

type RAGConfig struct {
	ChunkSize    int `yaml:"chunk_size"`
	ChunkOverlap int `yaml:"chunk_overlap"`
	SimpleK      int `yaml:"simple_k"`
	ComparativeK int `yaml:"comparative_k"`
	MinPerSource int `yaml:"min_per_source"`
}

type MonitorConfig struct {
	LogFile string `yaml:"log_file"`
}

type Config struct {
	Server   ServerConfig  `yaml:"server"`
	EmbedLLM LLMConfig     `yaml:"embed_llm"`
	ChatLLM  LLMConfig     `yaml:"chat_llm"`
	Index    IndexConfig   `yaml:"index"`
	RAG      RAGConfig     `yaml:"rag"`
	Monitor  MonitorConfig `yaml:"monitor"`
}

// LoadConfig reads a yaml config, expanding ${VAR} references from the
// environment before parsing so keys can live in .env files.
func LoadConfig(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	var cfg Config
	if err := yaml.Unmarshal([]byte(os.ExpandEnv(string(data))), &cfg); err != nil {
		return nil, err
	}
	applyDefaults(&cfg)
	return &cfg, nil
}

func applyDefaults(cfg *Config) {
	if cfg.Server.Addr == "" {
		cfg.Server.Addr = ":5000"
	}
	if cfg.Server.MaxUploadMB == 0 {
		cfg.Server.MaxUploadMB = 16
	}
	if cfg.Index.Backend == "" {
		cfg.Index.Backend = "memory"
	}
	if cfg.Index.Collection == "" {
		cfg.Index.Collection = "documents"
	}
	if cfg.RAG.ChunkSize == 0 {
		cfg.RAG.ChunkSize = 500
	}
	if cfg.RAG.ChunkOverlap == 0 {
		cfg.RAG.ChunkOverlap = 50
	}
	if cfg.RAG.SimpleK == 0 {
		cfg.RAG.SimpleK = 8
	}
	if cfg.RAG.ComparativeK == 0 {
		cfg.RAG.ComparativeK = 20
	}
	if cfg.RAG.MinPerSource == 0 {
		cfg.RAG.MinPerSource = 4
	}
	if cfg.Monitor.LogFile == "" {
		cfg.Monitor.LogFile = "logs/rag_requests.jsonl"
	}
}
