package config

import (
	"fmt"
	"os"
	"path/filepath"
	"regexp"
	"runtime"
	"slices"
	"strings"

	"gopkg.in/yaml.v3"

	"github.com/madcourses/skillmatch/internal/domain"
	dommatch "github.com/madcourses/skillmatch/internal/domain/match"
)

// Catalog store names.
const (
	StoreRedis    = "redis"
	StorePostgres = "postgres"
	StoreFile     = "file"
)

// Embedding provider names.
const (
	ProviderHuggingFace = "huggingface"
	ProviderOpenAI      = "openai"
	ProviderOllama      = "ollama"
)

// Config holds the skillmatch configuration.
type Config struct {
	HTTP      HTTPConfig      `yaml:"http"`
	Auth      AuthConfig      `yaml:"auth"`
	Logging   LoggingConfig   `yaml:"logging"`
	Redis     RedisConfig     `yaml:"redis"`
	Postgres  PostgresConfig  `yaml:"postgres"`
	Catalog   CatalogConfig   `yaml:"catalog"`
	Embedding EmbeddingConfig `yaml:"embedding"`
	Match     MatchConfig     `yaml:"match"`
}

// LoggingConfig holds logging settings.
type LoggingConfig struct {
	Level string `yaml:"level"` // debug, info, warn, error (default: determined by env)
}

// AuthConfig holds API authentication settings.
type AuthConfig struct {
	APIKeys []string `yaml:"api_keys"`
}

// HTTPConfig holds HTTP server settings.
type HTTPConfig struct {
	Port            int `yaml:"port"`
	ReadTimeoutSec  int `yaml:"read_timeout_sec"`
	WriteTimeoutSec int `yaml:"write_timeout_sec"`
	ShutdownSec     int `yaml:"shutdown_timeout_sec"`
	// CORSOrigins lists browser origins allowed to call the API. Empty disables CORS.
	CORSOrigins []string `yaml:"cors_origins"`
}

// RedisConfig holds Redis connection settings. Empty Addrs disables Redis.
type RedisConfig struct {
	Addrs            []string `yaml:"addrs"`
	Username         string   `yaml:"username"`
	Password         string   `yaml:"password"`
	DB               int      `yaml:"db"`
	ReadinessTimeout int      `yaml:"readiness_timeout_sec"`
}

// Enabled reports whether a Redis server is configured.
func (r RedisConfig) Enabled() bool { return len(r.Addrs) > 0 }

// PostgresConfig holds the course database connection.
type PostgresConfig struct {
	DSN string `yaml:"dsn"`
}

// CatalogConfig selects the catalog stores.
type CatalogConfig struct {
	Primary        string `yaml:"primary"`  // redis, postgres, file
	Fallback       string `yaml:"fallback"` // optional
	RedisKey       string `yaml:"redis_key"`
	FilePath       string `yaml:"file_path"`
	Dimensions     int    `yaml:"dimensions"` // 0 = accept whatever the store holds
	LoadTimeoutSec int    `yaml:"load_timeout_sec"`
	Preload        bool   `yaml:"preload"`
}

// EmbeddingConfig holds the query embedding provider settings.
type EmbeddingConfig struct {
	Provider         string      `yaml:"provider"` // huggingface, openai, ollama
	Model            string      `yaml:"model"`
	APIKey           string      `yaml:"api_key"`
	BaseURL          string      `yaml:"base_url"`
	Dimensions       int         `yaml:"dimensions"` // openai only; 0 = model default
	QueryInstruction string      `yaml:"query_instruction"`
	TimeoutSec       int         `yaml:"timeout_sec"`
	Cache            CacheConfig `yaml:"cache"`
}

// CacheConfig controls the Redis embedding cache.
type CacheConfig struct {
	Enabled bool `yaml:"enabled"`
	TTLSec  int  `yaml:"ttl_sec"` // 0 = no expiry
}

// MatchConfig bounds match requests.
type MatchConfig struct {
	DefaultK       int `yaml:"default_k"`
	MaxK           int `yaml:"max_k"`
	MaxSkills      int `yaml:"max_skills"`
	MaxConcurrency int `yaml:"max_concurrency"`
}

// Limits converts the section to request limits.
func (m MatchConfig) Limits() dommatch.Limits {
	return dommatch.Limits{DefaultK: m.DefaultK, MaxK: m.MaxK, MaxSkills: m.MaxSkills}
}

// Load reads configuration from a YAML file by environment name (local, prod).
func Load(env string) (Config, error) {
	return LoadFile(findConfigPath(env))
}

// LoadFile reads configuration from an explicit path.
func LoadFile(configPath string) (Config, error) {
	data, err := os.ReadFile(filepath.Clean(configPath))
	if err != nil {
		return Config{}, fmt.Errorf("failed to read config %s: %w", configPath, err)
	}
	return Parse(data)
}

// Parse decodes YAML, expands ${VAR} references, applies defaults and validates.
func Parse(data []byte) (Config, error) {
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

// GetEnv returns the current environment from the ENV variable, defaulting to "local".
func GetEnv() string {
	if env := os.Getenv("ENV"); env != "" {
		return env
	}
	return "local"
}

// ApplyDefaults fills empty fields with default values.
func (c *Config) ApplyDefaults() {
	if c.HTTP.Port == 0 {
		c.HTTP.Port = 8080
	}
	if c.HTTP.ReadTimeoutSec <= 0 {
		c.HTTP.ReadTimeoutSec = 10
	}
	if c.HTTP.WriteTimeoutSec <= 0 {
		c.HTTP.WriteTimeoutSec = 60
	}
	if c.HTTP.ShutdownSec <= 0 {
		c.HTTP.ShutdownSec = 10
	}
	if c.Redis.ReadinessTimeout <= 0 {
		c.Redis.ReadinessTimeout = 10
	}

	if c.Catalog.Primary == "" {
		c.Catalog.Primary = StoreRedis
	}
	if c.Catalog.RedisKey == "" {
		c.Catalog.RedisKey = domain.KeyPrefix + "catalog"
	}
	if c.Catalog.LoadTimeoutSec <= 0 {
		c.Catalog.LoadTimeoutSec = 30
	}

	vc := domain.DefaultVectorConfig()
	if c.Embedding.Provider == "" {
		c.Embedding.Provider = ProviderHuggingFace
	}
	if c.Embedding.Model == "" {
		c.Embedding.Model = vc.Model
	}
	if c.Embedding.TimeoutSec <= 0 {
		c.Embedding.TimeoutSec = defaultEmbeddingTimeout(c.Embedding.Provider)
	}

	if c.Match.DefaultK <= 0 {
		c.Match.DefaultK = dommatch.DefaultK
	}
	if c.Match.MaxK <= 0 {
		c.Match.MaxK = dommatch.DefaultMaxK
	}
	if c.Match.MaxSkills <= 0 {
		c.Match.MaxSkills = dommatch.DefaultMaxSkills
	}
	if c.Match.MaxConcurrency <= 0 {
		c.Match.MaxConcurrency = 4
	}
}

// defaultEmbeddingTimeout covers a hosted Hugging Face cold start, which
// blocks while the model loads.
func defaultEmbeddingTimeout(provider string) int {
	if provider == ProviderHuggingFace {
		return 30
	}
	return 10
}

// Validate checks the configuration for correctness.
func (c *Config) Validate() error {
	if c.HTTP.Port <= 0 || c.HTTP.Port > 65535 {
		return fmt.Errorf("http.port must be between 1 and 65535, got %d", c.HTTP.Port)
	}

	stores := []string{StoreRedis, StorePostgres, StoreFile}
	if !slices.Contains(stores, c.Catalog.Primary) {
		return fmt.Errorf("catalog.primary must be one of %v, got %q", stores, c.Catalog.Primary)
	}
	if c.Catalog.Fallback != "" {
		if !slices.Contains(stores, c.Catalog.Fallback) {
			return fmt.Errorf("catalog.fallback must be one of %v, got %q", stores, c.Catalog.Fallback)
		}
		if c.Catalog.Fallback == c.Catalog.Primary {
			return fmt.Errorf("catalog.fallback must differ from catalog.primary")
		}
	}
	for _, s := range []string{c.Catalog.Primary, c.Catalog.Fallback} {
		if err := c.checkStore(s); err != nil {
			return err
		}
	}
	if c.Catalog.Dimensions < 0 {
		return fmt.Errorf("catalog.dimensions must be >= 0, got %d", c.Catalog.Dimensions)
	}

	providers := []string{ProviderHuggingFace, ProviderOpenAI, ProviderOllama}
	if !slices.Contains(providers, c.Embedding.Provider) {
		return fmt.Errorf("embedding.provider must be one of %v, got %q", providers, c.Embedding.Provider)
	}
	if c.Embedding.Provider == ProviderOllama && c.Embedding.BaseURL == "" {
		return fmt.Errorf("embedding.base_url is required for the ollama provider")
	}
	if c.Embedding.Cache.Enabled && !c.Redis.Enabled() {
		return fmt.Errorf("embedding.cache requires redis.addrs")
	}

	if c.Match.DefaultK > c.Match.MaxK {
		return fmt.Errorf("match.default_k (%d) must not exceed match.max_k (%d)", c.Match.DefaultK, c.Match.MaxK)
	}
	return nil
}

func (c *Config) checkStore(name string) error {
	switch name {
	case StoreRedis:
		if !c.Redis.Enabled() {
			return fmt.Errorf("catalog store %q requires redis.addrs", name)
		}
	case StorePostgres:
		if strings.TrimSpace(c.Postgres.DSN) == "" {
			return fmt.Errorf("catalog store %q requires postgres.dsn", name)
		}
	case StoreFile:
		if c.Catalog.FilePath == "" {
			return fmt.Errorf("catalog store %q requires catalog.file_path", name)
		}
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
		expr := string(match[2 : len(match)-1])
		varName, defaultVal, hasDefault := strings.Cut(expr, ":-")
		val := os.Getenv(varName)
		if val == "" && hasDefault {
			val = defaultVal
		}
		return []byte(val)
	})
}
