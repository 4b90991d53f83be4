package config

import (
	"os"
	"path/filepath"

	"gopkg.in/yaml.v3"
)

// Config holds all configuration for the skillmatch engine.
type Config struct {
	Catalogue CatalogueConfig `yaml:"catalogue"`
	Embedding EmbeddingConfig `yaml:"embedding"`
	Engine    EngineConfig    `yaml:"engine"`
	Explain   ExplainConfig   `yaml:"explain"`
	Cache     CacheConfig     `yaml:"cache"`
	Server    ServerConfig    `yaml:"server"`
	Logging   LoggingConfig   `yaml:"logging"`
}

// CatalogueConfig holds catalogue source configuration.
type CatalogueConfig struct {
	// Path to the catalogue CSV. Doublestar globs are allowed so a catalogue
	// split across shard files can be merged in lexical order.
	Path string `yaml:"path"`
}

// EmbeddingConfig holds encoder configuration.
type EmbeddingConfig struct {
	Provider  string `yaml:"provider"`    // "openai", "ollama", "mock"
	Model     string `yaml:"model"`       // e.g., "text-embedding-3-small"
	BaseURL   string `yaml:"base_url"`    // override for OpenAI-compatible endpoints
	APIKeyEnv string `yaml:"api_key_env"` // Environment variable for API key
	Dimension int    `yaml:"dimension"`
	BatchSize int    `yaml:"batch_size"`
}

// EngineConfig holds recommendation engine configuration.
type EngineConfig struct {
	TopK          int `yaml:"top_k"`           // default shortlist size
	MaxTopK       int `yaml:"max_top_k"`       // upper bound on requested k
	OverfetchCap  int `yaml:"overfetch_cap"`   // candidate pool never exceeds this
	MinQueryChars int `yaml:"min_query_chars"` // trimmed query must be at least this long
}

// ExplainConfig holds explanation generator configuration.
type ExplainConfig struct {
	Enabled        bool   `yaml:"enabled"`
	Model          string `yaml:"model"` // e.g., "gemini-2.5-flash"
	APIKeyEnv      string `yaml:"api_key_env"`
	BaseURL        string `yaml:"base_url"`
	TimeoutSeconds int    `yaml:"timeout_seconds"`
	BreakerFails   int    `yaml:"breaker_fails"` // consecutive failures before the breaker opens
}

// CacheConfig holds result cache configuration.
type CacheConfig struct {
	MaxEntries int `yaml:"max_entries"`
	TTLSeconds int `yaml:"ttl_seconds"`
}

// ServerConfig holds HTTP server configuration.
type ServerConfig struct {
	Addr string `yaml:"addr"`
}

// LoggingConfig holds logging configuration.
type LoggingConfig struct {
	Level string `yaml:"level"`
}

// DefaultConfig returns the default configuration.
func DefaultConfig() *Config {
	return &Config{
		Catalogue: CatalogueConfig{
			Path: "data/catalogue.csv",
		},
		Embedding: EmbeddingConfig{
			Provider:  "openai",
			Model:     "text-embedding-3-small",
			APIKeyEnv: "OPENAI_API_KEY",
			Dimension: 1536,
			BatchSize: 100,
		},
		Engine: EngineConfig{
			TopK:          10,
			MaxTopK:       10,
			OverfetchCap:  30,
			MinQueryChars: 10,
		},
		Explain: ExplainConfig{
			Enabled:        false,
			Model:          "gemini-2.5-flash",
			APIKeyEnv:      "GEMINI_API_KEY",
			TimeoutSeconds: 20,
			BreakerFails:   3,
		},
		Cache: CacheConfig{
			MaxEntries: 100,
			TTLSeconds: 300,
		},
		Server: ServerConfig{
			Addr: ":8000",
		},
		Logging: LoggingConfig{
			Level: "info",
		},
	}
}

// Load loads configuration from a YAML file.
func Load(path string) (*Config, error) {
	cfg := DefaultConfig()

	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return cfg, nil // Return defaults if no config file
		}
		return nil, err
	}

	if err := yaml.Unmarshal(data, cfg); err != nil {
		return nil, err
	}

	return cfg, nil
}

// LoadFromDir loads configuration from a directory (looks for skillmatch.yaml).
func LoadFromDir(dir string) (*Config, error) {
	path := filepath.Join(dir, "skillmatch.yaml")
	if _, err := os.Stat(path); err == nil {
		return Load(path)
	}

	path = filepath.Join(dir, ".skillmatch", "config.yaml")
	if _, err := os.Stat(path); err == nil {
		return Load(path)
	}

	return DefaultConfig(), nil
}

// Save saves configuration to a YAML file.
func (c *Config) Save(path string) error {
	data, err := yaml.Marshal(c)
	if err != nil {
		return err
	}
	return os.WriteFile(path, data, 0644)
}

// IndexDBPath returns the path to the vector index database.
func IndexDBPath(dir string) string {
	return filepath.Join(dir, ".skillmatch", "index.db")
}

// EnsureDataDir ensures the .skillmatch directory exists.
func EnsureDataDir(dir string) error {
	return os.MkdirAll(filepath.Join(dir, ".skillmatch"), 0755)
}
