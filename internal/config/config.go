package config

import (
	"fmt"
	"math"
	"os"
	"path/filepath"
	"regexp"
	"runtime"
	"strings"

	"gopkg.in/yaml.v3"
)

// Config holds the searchd API configuration.
type Config struct {
	HTTP      HTTPConfig      `yaml:"http"`
	Database  DatabaseConfig  `yaml:"database"`
	Embedding EmbeddingConfig `yaml:"embedding"`
	Auth      AuthConfig      `yaml:"auth"`
	Index     IndexConfig     `yaml:"index"`
	Search    SearchConfig    `yaml:"search"`
	Logging   LoggingConfig   `yaml:"logging"`
}

// LoggingConfig holds logging settings.
type LoggingConfig struct {
	Level string `yaml:"level"` // debug, info, warn, error (default: determined by env)
}

// AuthConfig maps API bearer tokens to identity subjects. The subject is what
// permission filtering and cache keys are scoped by.
type AuthConfig struct {
	APIKeys map[string]string `yaml:"api_keys"` // token -> subject
}

// HTTPConfig holds HTTP server settings.
type HTTPConfig struct {
	Port            int `yaml:"port"`
	ReadTimeoutSec  int `yaml:"read_timeout_sec"`
	WriteTimeoutSec int `yaml:"write_timeout_sec"`
	ShutdownSec     int `yaml:"shutdown_timeout_sec"`
}

// DatabaseConfig holds database connection settings.
type DatabaseConfig struct {
	Addrs            []string `yaml:"addrs"`
	Password         string   `yaml:"password"`
	ReadinessTimeout int      `yaml:"readiness_timeout_sec"`
}

// IndexConfig holds the document index settings.
type IndexConfig struct {
	HNSWM           int    `yaml:"hnsw_m"`
	HNSWEFConstruct int    `yaml:"hnsw_ef_construction"`
	TitleWeight     float64 `yaml:"title_weight"` // BM25 TEXT weight for the title field
}

// EmbeddingConfig holds embedding provider settings.
type EmbeddingConfig struct {
	Provider         string `yaml:"provider"`
	APIKey           string `yaml:"api_key"`
	BaseURL          string `yaml:"base_url"`
	Model            string `yaml:"model"`
	Dimensions       int    `yaml:"dimensions"`
	QueryInstruction string `yaml:"query_instruction"`
}

// RecencyBoost is one age bucket of the recency multiplier. Buckets are
// evaluated in order; the first bucket whose MaxAgeDays covers the document
// age wins.
type RecencyBoost struct {
	MaxAgeDays int     `yaml:"max_age_days"`
	Factor     float64 `yaml:"factor"`
}

// SearchConfig holds fusion weights, recency boosts, and the latency budget.
type SearchConfig struct {
	SemanticWeight    float64        `yaml:"semantic_weight"`
	KeywordWeight     float64        `yaml:"keyword_weight"`
	RecencyBoosts     []RecencyBoost `yaml:"recency_boosts"`
	OverfetchFactor   int            `yaml:"overfetch_factor"`
	TotalTimeoutMS    int            `yaml:"total_timeout_ms"`
	SemanticTimeoutMS int            `yaml:"semantic_timeout_ms"`
	KeywordTimeoutMS  int            `yaml:"keyword_timeout_ms"`
	EmbedTimeoutMS    int            `yaml:"embed_timeout_ms"`
	CacheTTLSec       int            `yaml:"cache_ttl_sec"`
}

// Load reads configuration from a YAML file by environment name (local, dev, prod).
func Load(env string) (Config, error) {
	configPath := findConfigPath(env)

	data, err := os.ReadFile(filepath.Clean(configPath))
	if err != nil {
		return Config{}, fmt.Errorf("failed to read config %s: %w", configPath, err)
	}

	// Substitute env variables of the form ${VAR}
	data = expandEnvVars(data)

	var cfg Config
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return Config{}, fmt.Errorf("failed to parse config: %w", err)
	}

	cfg.ApplyDefaults()

	if err := cfg.Validate(); err != nil {
		return Config{}, fmt.Errorf("invalid config: %w", err)
	}

	return cfg, nil
}

// MustLoad loads configuration or panics.
func MustLoad(env string) Config {
	cfg, err := Load(env)
	if err != nil {
		panic(err)
	}
	return cfg
}

// GetEnv returns the current environment from the ENV variable, defaulting to "local".
func GetEnv() string {
	if env := os.Getenv("ENV"); env != "" {
		return env
	}
	return "local"
}

// ApplyDefaults fills empty fields with default values.
func (c *Config) ApplyDefaults() {
	if c.HTTP.ReadTimeoutSec <= 0 {
		c.HTTP.ReadTimeoutSec = 10
	}
	if c.HTTP.WriteTimeoutSec <= 0 {
		c.HTTP.WriteTimeoutSec = 10
	}
	if c.HTTP.ShutdownSec <= 0 {
		c.HTTP.ShutdownSec = 10
	}
	if c.Database.ReadinessTimeout <= 0 {
		c.Database.ReadinessTimeout = 10
	}
	if c.Index.HNSWM <= 0 {
		c.Index.HNSWM = 32
	}
	if c.Index.HNSWEFConstruct <= 0 {
		c.Index.HNSWEFConstruct = 400
	}
	if c.Index.TitleWeight <= 0 {
		c.Index.TitleWeight = 2.0
	}
	if c.Search.SemanticWeight == 0 && c.Search.KeywordWeight == 0 {
		c.Search.SemanticWeight = 0.7
		c.Search.KeywordWeight = 0.3
	}
	if len(c.Search.RecencyBoosts) == 0 {
		c.Search.RecencyBoosts = []RecencyBoost{
			{MaxAgeDays: 7, Factor: 1.10},
			{MaxAgeDays: 30, Factor: 1.05},
		}
	}
	if c.Search.OverfetchFactor <= 0 {
		c.Search.OverfetchFactor = 2
	}
	if c.Search.TotalTimeoutMS <= 0 {
		c.Search.TotalTimeoutMS = 200
	}
	if c.Search.SemanticTimeoutMS <= 0 {
		c.Search.SemanticTimeoutMS = 100
	}
	if c.Search.KeywordTimeoutMS <= 0 {
		c.Search.KeywordTimeoutMS = 50
	}
	if c.Search.EmbedTimeoutMS <= 0 {
		c.Search.EmbedTimeoutMS = 80
	}
	if c.Search.CacheTTLSec <= 0 {
		c.Search.CacheTTLSec = 300
	}
}

// Validate checks the configuration for correctness.
func (c *Config) Validate() error {
	if c.HTTP.Port <= 0 || c.HTTP.Port > 65535 {
		return fmt.Errorf("http.port must be between 1 and 65535, got %d", c.HTTP.Port)
	}
	if len(c.Database.Addrs) == 0 {
		return fmt.Errorf("database.addrs is required")
	}
	if c.Embedding.Dimensions <= 0 {
		return fmt.Errorf("embedding.dimensions is required (single constant shared with the vector index)")
	}
	if c.Search.SemanticWeight < 0 || c.Search.KeywordWeight < 0 {
		return fmt.Errorf("search weights must be non-negative")
	}
	if sum := c.Search.SemanticWeight + c.Search.KeywordWeight; math.Abs(sum-1.0) > 1e-9 {
		return fmt.Errorf("search.semantic_weight + search.keyword_weight must equal 1, got %g", sum)
	}
	prevAge := 0
	for i, b := range c.Search.RecencyBoosts {
		if b.MaxAgeDays <= prevAge {
			return fmt.Errorf("search.recency_boosts[%d].max_age_days must grow strictly, got %d", i, b.MaxAgeDays)
		}
		if b.Factor < 1.0 {
			return fmt.Errorf("search.recency_boosts[%d].factor must be >= 1, got %g", i, b.Factor)
		}
		prevAge = b.MaxAgeDays
	}
	if c.Search.SemanticTimeoutMS >= c.Search.TotalTimeoutMS {
		return fmt.Errorf("search.semantic_timeout_ms must be below search.total_timeout_ms")
	}
	if c.Search.KeywordTimeoutMS >= c.Search.TotalTimeoutMS {
		return fmt.Errorf("search.keyword_timeout_ms must be below search.total_timeout_ms")
	}
	return nil
}

// findConfigPath locates the config file.
func findConfigPath(env string) string {
	filename := fmt.Sprintf("%s.yaml", env)

	// 1. Check ./config/
	if path := filepath.Join("config", filename); fileExists(path) {
		return path
	}

	// 2. Check relative to the source file
	_, b, _, _ := runtime.Caller(0)
	projectRoot := filepath.Dir(filepath.Dir(filepath.Dir(b))) // internal/config -> project root
	if path := filepath.Join(projectRoot, "config", filename); fileExists(path) {
		return path
	}

	// 3. Fallback to ./config/
	return filepath.Join("config", filename)
}

func fileExists(path string) bool {
	_, err := os.Stat(path)
	return err == nil
}

// expandEnvVars replaces ${VAR} and ${VAR:-default} with environment variable values.
var envVarRegex = regexp.MustCompile(`\$\{([^}]+)\}`)

func expandEnvVars(data []byte) []byte {
	return envVarRegex.ReplaceAllFunc(data, func(match []byte) []byte {
		expr := string(match[2 : len(match)-1]) // strip ${ and }
		varName, defaultVal, hasDefault := strings.Cut(expr, ":-")
		val := os.Getenv(varName)
		if val == "" && hasDefault {
			val = defaultVal
		}
		return []byte(val)
	})
}
