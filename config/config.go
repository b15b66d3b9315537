package config

import (
	"os"
	"path/filepath"

	"gopkg.in/yaml.v3"
)

// Config holds all configuration for the QA agent.
type Config struct {
	Ingest     IngestConfig     `yaml:"ingest"`
	Index      IndexConfig      `yaml:"index"`
	Generation GenerationConfig `yaml:"generation"`
	Embedding  EmbeddingConfig  `yaml:"embedding"`
}

// IngestConfig holds document ingestion configuration.
type IngestConfig struct {
	Includes     []string `yaml:"includes"`
	Excludes     []string `yaml:"excludes"`
	ChunkSize    int      `yaml:"chunk_size"`
	ChunkOverlap int      `yaml:"chunk_overlap"`
	CheckoutPage string   `yaml:"checkout_page"` // filename routed to the DOM catalog
}

// IndexConfig holds similarity-index configuration.
type IndexConfig struct {
	Strategy   string `yaml:"strategy"` // "lexical" or "dense"
	PersistDir string `yaml:"persist_dir"`
	Collection string `yaml:"collection"`
	TopK       int    `yaml:"top_k"`
}

// GenerationConfig holds the optional generative-model configuration. An
// empty provider means template-only operation.
type GenerationConfig struct {
	Provider       string `yaml:"provider"` // "openai", "ollama", "" for none
	Model          string `yaml:"model"`
	BaseURL        string `yaml:"base_url"`
	APIKeyEnv      string `yaml:"api_key_env"`
	MaxTokens      int    `yaml:"max_tokens"`
	TimeoutSeconds int    `yaml:"timeout_seconds"`
}

// EmbeddingConfig holds embedding configuration for the dense strategy.
type EmbeddingConfig struct {
	Provider  string `yaml:"provider"`
	Model     string `yaml:"model"`
	BaseURL   string `yaml:"base_url"`
	APIKeyEnv string `yaml:"api_key_env"`
	Dimension int    `yaml:"dimension"`
	BatchSize int    `yaml:"batch_size"`
}

// DefaultConfig returns the default configuration.
func DefaultConfig() *Config {
	return &Config{
		Ingest: IngestConfig{
			Includes:     []string{"**/*.md", "**/*.txt", "**/*.pdf", "**/*.json", "**/*.html"},
			Excludes:     []string{"**/node_modules/**", "**/.git/**", "**/vendor/**"},
			ChunkSize:    1000,
			ChunkOverlap: 200,
			CheckoutPage: "checkout.html",
		},
		Index: IndexConfig{
			Strategy:   "lexical",
			PersistDir: "./vectordb",
			Collection: "qa_documents",
			TopK:       5,
		},
		Generation: GenerationConfig{
			Provider:       "",
			Model:          "gpt-4o-mini",
			BaseURL:        "https://api.openai.com/v1",
			APIKeyEnv:      "OPENAI_API_KEY",
			MaxTokens:      2000,
			TimeoutSeconds: 60,
		},
		Embedding: EmbeddingConfig{
			Provider:  "openai",
			Model:     "text-embedding-3-small",
			BaseURL:   "https://api.openai.com/v1",
			APIKeyEnv: "OPENAI_API_KEY",
			Dimension: 1536,
			BatchSize: 100,
		},
	}
}

// Load loads configuration from a YAML file, applying defaults for missing
// fields. A missing file yields the defaults.
func Load(path string) (*Config, error) {
	cfg := DefaultConfig()

	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return cfg, nil
		}
		return nil, err
	}

	if err := yaml.Unmarshal(data, cfg); err != nil {
		return nil, err
	}

	return cfg, nil
}

// LoadFromDir loads configuration from a directory (looks for qaforge.yaml,
// then .qaforge/config.yaml).
func LoadFromDir(dir string) (*Config, error) {
	path := filepath.Join(dir, "qaforge.yaml")
	if _, err := os.Stat(path); err == nil {
		return Load(path)
	}

	path = filepath.Join(dir, ".qaforge", "config.yaml")
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

// CollectionPath returns the JSON file backing the named lexical collection.
func (c *Config) CollectionPath() string {
	return filepath.Join(c.Index.PersistDir, c.Index.Collection+".json")
}

// VectorDBPath returns the bbolt file backing the dense strategy.
func (c *Config) VectorDBPath() string {
	return filepath.Join(c.Index.PersistDir, c.Index.Collection+".db")
}

// EnsurePersistDir ensures the persistence directory exists.
func (c *Config) EnsurePersistDir() error {
	return os.MkdirAll(c.Index.PersistDir, 0755)
}
