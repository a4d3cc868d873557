package config

import (
	"fmt"
	"os"
	"path/filepath"
	"regexp"
	"runtime"
	"strings"

	"gopkg.in/yaml.v3"
)

// Config holds the ghibligroceries API configuration.
type Config struct {
	HTTP     HTTPConfig     `yaml:"http"`
	Database DatabaseConfig `yaml:"database"`
	Cache    CacheConfig    `yaml:"cache"`
	AI       AIConfig       `yaml:"ai"`
	Search   SearchConfig   `yaml:"search"`
	Logging  LoggingConfig  `yaml:"logging"`
}

// LoggingConfig holds logging settings.
type LoggingConfig struct {
	Level string `yaml:"level"` // debug, info, warn, error (default: determined by env)
}

// HTTPConfig holds HTTP server settings.
type HTTPConfig struct {
	Port            int `yaml:"port"`
	ReadTimeoutSec  int `yaml:"read_timeout_sec"`
	WriteTimeoutSec int `yaml:"write_timeout_sec"`
	ShutdownSec     int `yaml:"shutdown_timeout_sec"`
}

// DatabaseConfig holds the product catalog connection settings.
type DatabaseConfig struct {
	DSN string `yaml:"dsn"`
}

// CacheConfig holds the read-through catalog cache settings.
// The cache is optional: with Enabled false the catalog is queried directly.
type CacheConfig struct {
	Enabled        bool     `yaml:"enabled"`
	Addrs          []string `yaml:"addrs"`
	Password       string   `yaml:"password"`
	CategoryTTLSec int      `yaml:"category_ttl_sec"`
	ProductTTLSec  int      `yaml:"product_ttl_sec"`
}

// AIConfig holds the query-enhancement provider settings.
type AIConfig struct {
	Provider        string       `yaml:"provider"` // gemini, openai (default: gemini)
	Gemini          GeminiConfig `yaml:"gemini"`
	OpenAI          OpenAIConfig `yaml:"openai"`
	Temperature     float64      `yaml:"temperature"`
	TimeoutSec      int          `yaml:"timeout_sec"`
	FallbackEnabled *bool        `yaml:"fallback_enabled"` // nil = true
}

// GeminiConfig holds Gemini API settings.
type GeminiConfig struct {
	APIKey   string `yaml:"api_key"`
	Endpoint string `yaml:"endpoint"`
}

// OpenAIConfig holds OpenAI-compatible API settings.
type OpenAIConfig struct {
	APIKey  string `yaml:"api_key"`
	BaseURL string `yaml:"base_url"`
	Model   string `yaml:"model"`
}

// SearchConfig holds result sizing settings.
type SearchConfig struct {
	DefaultLimit     int `yaml:"default_limit"`
	FeaturedCount    int `yaml:"featured_count"`
	MaxFeaturedCount int `yaml:"max_featured_count"`
}

const defaultGeminiEndpoint = "https://generativelanguage.googleapis.com/v1beta/models/gemini-2.5-pro-preview-05-06:generateContent"

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
		c.HTTP.WriteTimeoutSec = 30
	}
	if c.HTTP.ShutdownSec <= 0 {
		c.HTTP.ShutdownSec = 10
	}
	if c.AI.Provider == "" {
		c.AI.Provider = "gemini"
	}
	if c.AI.Gemini.Endpoint == "" {
		c.AI.Gemini.Endpoint = defaultGeminiEndpoint
	}
	if c.AI.Temperature <= 0 {
		c.AI.Temperature = 0.7
	}
	if c.AI.TimeoutSec <= 0 {
		c.AI.TimeoutSec = 10
	}
	if c.Cache.CategoryTTLSec <= 0 {
		c.Cache.CategoryTTLSec = 300
	}
	if c.Cache.ProductTTLSec <= 0 {
		c.Cache.ProductTTLSec = 60
	}
	if c.Search.DefaultLimit <= 0 {
		c.Search.DefaultLimit = 20
	}
	if c.Search.FeaturedCount <= 0 {
		c.Search.FeaturedCount = 2
	}
	if c.Search.MaxFeaturedCount <= 0 {
		c.Search.MaxFeaturedCount = 12
	}
}

// FallbackEnabled reports whether fallback text search is enabled.
// Defaults to true when unset, matching the safe degradation path.
func (c *Config) FallbackEnabled() bool {
	if c.AI.FallbackEnabled == nil {
		return true
	}
	return *c.AI.FallbackEnabled
}

// Validate checks the configuration for correctness.
func (c *Config) Validate() error {
	if c.HTTP.Port <= 0 || c.HTTP.Port > 65535 {
		return fmt.Errorf("http.port must be between 1 and 65535, got %d", c.HTTP.Port)
	}
	if c.Database.DSN == "" {
		return fmt.Errorf("database.dsn is required")
	}
	switch c.AI.Provider {
	case "gemini", "openai":
		// ok
	default:
		return fmt.Errorf("ai.provider must be \"gemini\" or \"openai\", got %q", c.AI.Provider)
	}
	if c.AI.Temperature < 0 || c.AI.Temperature > 1 {
		return fmt.Errorf("ai.temperature must be between 0.0 and 1.0, got %g", c.AI.Temperature)
	}
	if c.Cache.Enabled && len(c.Cache.Addrs) == 0 {
		return fmt.Errorf("cache.addrs is required when cache.enabled is true")
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
