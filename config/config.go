package config

import (
	"fmt"
	"os"
	"path/filepath"
	"time"

	"gopkg.in/yaml.v3"
)

// DataDir is the per-corpus directory holding the saved corpus and config.
const DataDir = ".corpus"

// Config holds all configuration for the corpus tool.
type Config struct {
	Corpus   CorpusConfig   `yaml:"corpus"`
	Storage  StorageConfig  `yaml:"storage"`
	Ingest   IngestConfig   `yaml:"ingest"`
	Index    IndexConfig    `yaml:"index"`
	Retrieve RetrieveConfig `yaml:"retrieve"`
	Explore  ExploreConfig  `yaml:"explore"`
	Server   ServerConfig   `yaml:"server"`
	Logging  LoggingConfig  `yaml:"logging"`
}

type CorpusConfig struct {
	Name string `yaml:"name"`
}

// StorageConfig selects where the corpus is persisted between commands.
type StorageConfig struct {
	Format string `yaml:"format"` // "tsv", "csv", "json", "bolt", "sqlite", "postgres"
	Path   string `yaml:"path"`   // relative to the corpus root unless absolute
	DSN    string `yaml:"dsn"`
	DSNEnv string `yaml:"dsn_env"` // environment variable holding the postgres DSN
}

// IngestConfig holds file ingestion configuration.
type IngestConfig struct {
	Includes       []string `yaml:"includes"`
	Excludes       []string `yaml:"excludes"`
	DefaultAuthor  string   `yaml:"default_author"`
	Workers        int      `yaml:"workers"`
	SplitSentences bool     `yaml:"split_sentences"`
	MaxFileBytes   int64    `yaml:"max_file_bytes"`
}

// IndexConfig holds term index configuration.
type IndexConfig struct {
	Stopwords   bool `yaml:"stopwords"`
	AutoRebuild bool `yaml:"auto_rebuild"`
}

// RetrieveConfig holds retrieval configuration.
type RetrieveConfig struct {
	TopN      int           `yaml:"top_n"`
	UseTFIDF  bool          `yaml:"use_tfidf"`
	CacheSize int           `yaml:"cache_size"` // 0 disables the query cache
	CacheTTL  time.Duration `yaml:"cache_ttl"`
}

// ExploreConfig holds defaults of the exploration commands.
type ExploreConfig struct {
	SnippetContext     int `yaml:"snippet_context"`
	ConcordanceContext int `yaml:"concordance_context"`
	StatsTop           int `yaml:"stats_top"`
}

type ServerConfig struct {
	Addr string `yaml:"addr"`
}

// LoggingConfig holds logging configuration.
type LoggingConfig struct {
	Level  string `yaml:"level"`
	Format string `yaml:"format"` // "text" or "json"
}

// DefaultConfig returns the default configuration.
func DefaultConfig() *Config {
	return &Config{
		Corpus: CorpusConfig{
			Name: "corpus",
		},
		Storage: StorageConfig{
			Format: "bolt",
			DSNEnv: "CORPUS_POSTGRES_DSN",
		},
		Ingest: IngestConfig{
			Includes:      []string{"**/*.txt", "**/*.md", "**/*.html", "**/*.htm"},
			Excludes:      []string{"**/node_modules/**", "**/vendor/**", "**/.git/**"},
			DefaultAuthor: "unknown",
			Workers:       4,
			MaxFileBytes:  10 << 20,
		},
		Index: IndexConfig{
			Stopwords:   false,
			AutoRebuild: true,
		},
		Retrieve: RetrieveConfig{
			TopN:      5,
			UseTFIDF:  true,
			CacheSize: 256,
			CacheTTL:  5 * time.Minute,
		},
		Explore: ExploreConfig{
			SnippetContext:     30,
			ConcordanceContext: 30,
			StatsTop:           20,
		},
		Server: ServerConfig{
			Addr: ":8080",
		},
		Logging: LoggingConfig{
			Level:  "info",
			Format: "text",
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
		return nil, fmt.Errorf("parsing %s: %w", path, err)
	}

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	return cfg, nil
}

// LoadFromDir loads configuration from a directory (looks for corpus.yaml).
func LoadFromDir(dir string) (*Config, error) {
	path := filepath.Join(dir, "corpus.yaml")
	if _, err := os.Stat(path); err == nil {
		return Load(path)
	}

	path = filepath.Join(dir, DataDir, "config.yaml")
	if _, err := os.Stat(path); err == nil {
		return Load(path)
	}

	return DefaultConfig(), nil
}

// Validate rejects values no command can work with.
func (c *Config) Validate() error {
	if c.Retrieve.TopN < 0 {
		return fmt.Errorf("retrieve.top_n must be >= 0, got %d", c.Retrieve.TopN)
	}
	if c.Retrieve.CacheSize < 0 {
		return fmt.Errorf("retrieve.cache_size must be >= 0, got %d", c.Retrieve.CacheSize)
	}
	if c.Ingest.Workers < 0 {
		return fmt.Errorf("ingest.workers must be >= 0, got %d", c.Ingest.Workers)
	}
	if c.Explore.ConcordanceContext < 0 || c.Explore.SnippetContext < 0 {
		return fmt.Errorf("explore context sizes must be >= 0")
	}
	switch c.Logging.Format {
	case "", "text", "json":
	default:
		return fmt.Errorf("logging.format must be text or json, got %q", c.Logging.Format)
	}
	return nil
}

// Save saves configuration to a YAML file.
func (c *Config) Save(path string) error {
	data, err := yaml.Marshal(c)
	if err != nil {
		return err
	}
	return os.WriteFile(path, data, 0644)
}

var defaultFileNames = map[string]string{
	"tsv":    "corpus.tsv",
	"csv":    "corpus.csv",
	"json":   "corpus.json",
	"bolt":   "corpus.db",
	"sqlite": "corpus.sqlite",
}

// StorageLocation resolves where the corpus of root is persisted: a file
// path, or the connection string for postgres.
func (c *Config) StorageLocation(root string) string {
	if c.Storage.Format == "postgres" {
		if c.Storage.DSN != "" {
			return c.Storage.DSN
		}
		return os.Getenv(c.Storage.DSNEnv)
	}

	path := c.Storage.Path
	if path == "" {
		name, ok := defaultFileNames[c.Storage.Format]
		if !ok {
			name = "corpus." + c.Storage.Format
		}
		return filepath.Join(root, DataDir, name)
	}
	if filepath.IsAbs(path) {
		return path
	}
	return filepath.Join(root, path)
}

// EnsureDataDir ensures the .corpus directory exists.
func EnsureDataDir(dir string) error {
	return os.MkdirAll(filepath.Join(dir, DataDir), 0755)
}
