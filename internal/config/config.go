package config

import (
	"fmt"
	"os"
	"path/filepath"
	"regexp"
	"strconv"
	"strings"
	"time"

	"gopkg.in/yaml.v3"
)

// Config holds the oracle service configuration.
type Config struct {
	Env         string            `yaml:"env"`
	HTTP        HTTPConfig        `yaml:"http"`
	Database    DatabaseConfig    `yaml:"database"`
	LLM         LLMConfig         `yaml:"llm"`
	Translation TranslationConfig `yaml:"translation"`
	Cache       CacheConfig       `yaml:"cache"`
	Scryfall    ScryfallConfig    `yaml:"scryfall"`
	Session     SessionConfig     `yaml:"session"`
	Classifier  ClassifierConfig  `yaml:"classifier"`
	Deck        DeckConfig        `yaml:"deck"`
	Logging     LoggingConfig     `yaml:"logging"`
}

// HTTPConfig holds HTTP server settings.
type HTTPConfig struct {
	Port               int      `yaml:"port"`
	ReadTimeoutSec     int      `yaml:"read_timeout_sec"`
	WriteTimeoutSec    int      `yaml:"write_timeout_sec"`
	ShutdownSec        int      `yaml:"shutdown_timeout_sec"`
	CORSAllowedOrigins []string `yaml:"cors_allowed_origins"`
	FrontendDistPath   string   `yaml:"frontend_dist_path"`
}

// DatabaseConfig holds the sqlite location.
type DatabaseConfig struct {
	Path string `yaml:"path"`
}

// LLMConfig selects and configures the language model provider.
type LLMConfig struct {
	Provider string         `yaml:"provider"` // openai, gemini, none
	OpenAI   ProviderConfig `yaml:"openai"`
	Gemini   ProviderConfig `yaml:"gemini"`
}

// ProviderConfig holds one provider's credentials and model.
type ProviderConfig struct {
	APIKey  string `yaml:"api_key"`
	BaseURL string `yaml:"base_url"`
	Model   string `yaml:"model"`
}

// TranslationConfig controls the descriptive-query translation call.
type TranslationConfig struct {
	TimeoutMs int `yaml:"timeout_ms"`
}

// CacheConfig controls the translation cache.
type CacheConfig struct {
	Enabled  bool        `yaml:"enabled"`
	Driver   string      `yaml:"driver"` // sqlite, redis
	LRUSize  int         `yaml:"lru_size"`
	TTLHours int         `yaml:"ttl_hours"`
	Redis    RedisConfig `yaml:"redis"`
	// How often expired sqlite rows are pruned.
	JanitorIntervalMin int `yaml:"janitor_interval_min"`
}

// RedisConfig holds redis connection settings for the cache.
type RedisConfig struct {
	Addrs    []string `yaml:"addrs"`
	Password string   `yaml:"password"`
	DB       int      `yaml:"db"`
}

// ScryfallConfig holds card search API settings.
type ScryfallConfig struct {
	BaseURL           string  `yaml:"base_url"`
	TimeoutSec        int     `yaml:"timeout_sec"`
	RequestsPerSecond float64 `yaml:"requests_per_second"`
}

// SessionConfig controls last-request-wins sequencing.
type SessionConfig struct {
	DebounceMs  int `yaml:"debounce_ms"`
	MaxSessions int `yaml:"max_sessions"`
	IdleMinutes int `yaml:"idle_minutes"`
}

// ClassifierConfig extends the built-in keyword vocabulary.
type ClassifierConfig struct {
	ExtraKeywords []string `yaml:"extra_keywords"`
}

// DeckConfig controls deck generation.
type DeckConfig struct {
	PromptFile string `yaml:"prompt_file"`
}

// LoggingConfig holds logging settings.
type LoggingConfig struct {
	Level string `yaml:"level"` // debug, info, warn, error
}

// Load reads configuration from path. An empty path yields defaults. Env
// overrides are applied after the file, then defaults and validation.
func Load(path string) (Config, error) {
	var cfg Config
	cfg.Cache.Enabled = true

	if path != "" {
		data, err := os.ReadFile(filepath.Clean(path))
		if err != nil {
			return Config{}, fmt.Errorf("failed to read config %s: %w", path, err)
		}

		// Substitute env variables of the form ${VAR}
		data = expandEnvVars(data)

		if err := yaml.Unmarshal(data, &cfg); err != nil {
			return Config{}, fmt.Errorf("failed to parse config: %w", err)
		}
	}

	cfg.ApplyEnv(os.Getenv)
	cfg.ApplyDefaults()

	if err := cfg.Validate(); err != nil {
		return Config{}, fmt.Errorf("invalid config: %w", err)
	}
	return cfg, nil
}

// ApplyEnv overlays the environment variables the service has always honored.
func (c *Config) ApplyEnv(getenv func(string) string) {
	if v := getenv("ENV"); v != "" {
		c.Env = v
	}
	if v := getenv("PORT"); v != "" {
		if port, err := strconv.Atoi(v); err == nil {
			c.HTTP.Port = port
		}
	}
	if v := getenv("DB_PATH"); v != "" {
		c.Database.Path = v
	}
	if v := getenv("CORS_ALLOWED_ORIGINS"); v != "" {
		c.HTTP.CORSAllowedOrigins = splitList(v)
	}
	if v := getenv("FRONTEND_DIST_PATH"); v != "" {
		c.HTTP.FrontendDistPath = v
	}
	if v := getenv("LLM_PROVIDER"); v != "" {
		c.LLM.Provider = strings.ToLower(v)
	}
	if v := getenv("OPENAI_API_KEY"); v != "" {
		c.LLM.OpenAI.APIKey = v
	}
	if v := getenv("GOOGLE_API_KEY"); v != "" {
		c.LLM.Gemini.APIKey = v
	} else if keyPath := getenv("GOOGLE_API_KEY_FILE"); keyPath != "" && c.LLM.Gemini.APIKey == "" {
		// Try reading from file as fallback (for local dev)
		if data, err := os.ReadFile(filepath.Clean(keyPath)); err == nil {
			c.LLM.Gemini.APIKey = strings.TrimSpace(string(data))
		}
	}
	if v := getenv("REDIS_ADDR"); v != "" {
		c.Cache.Redis.Addrs = splitList(v)
		c.Cache.Driver = "redis"
	}
	if v := getenv("LOG_LEVEL"); v != "" {
		c.Logging.Level = v
	}
}

// ApplyDefaults fills empty fields with default values.
func (c *Config) ApplyDefaults() {
	if c.Env == "" {
		c.Env = "local"
	}
	if c.HTTP.Port <= 0 {
		c.HTTP.Port = 8080
	}
	if c.HTTP.ReadTimeoutSec <= 0 {
		c.HTTP.ReadTimeoutSec = 15
	}
	if c.HTTP.WriteTimeoutSec <= 0 {
		// Deck generation can take a while.
		c.HTTP.WriteTimeoutSec = 90
	}
	if c.HTTP.ShutdownSec <= 0 {
		c.HTTP.ShutdownSec = 30
	}
	if len(c.HTTP.CORSAllowedOrigins) == 0 {
		c.HTTP.CORSAllowedOrigins = []string{"http://localhost:5173", "http://localhost:3000"}
	}
	if c.Database.Path == "" {
		c.Database.Path = "./oracle.db"
	}
	if c.LLM.Provider == "" {
		switch {
		case c.LLM.OpenAI.APIKey != "":
			c.LLM.Provider = "openai"
		case c.LLM.Gemini.APIKey != "":
			c.LLM.Provider = "gemini"
		default:
			c.LLM.Provider = "none"
		}
	}
	if c.LLM.OpenAI.Model == "" {
		c.LLM.OpenAI.Model = "gpt-3.5-turbo"
	}
	if c.LLM.Gemini.Model == "" {
		c.LLM.Gemini.Model = "gemini-2.0-flash"
	}
	if c.Translation.TimeoutMs <= 0 {
		c.Translation.TimeoutMs = 5000
	}
	if c.Cache.Driver == "" {
		c.Cache.Driver = "sqlite"
	}
	if c.Cache.LRUSize <= 0 {
		c.Cache.LRUSize = 1024
	}
	if c.Cache.TTLHours <= 0 {
		c.Cache.TTLHours = 24 * 7
	}
	if c.Cache.JanitorIntervalMin <= 0 {
		c.Cache.JanitorIntervalMin = 60
	}
	if c.Scryfall.BaseURL == "" {
		c.Scryfall.BaseURL = "https://api.scryfall.com"
	}
	if c.Scryfall.TimeoutSec <= 0 {
		c.Scryfall.TimeoutSec = 10
	}
	if c.Scryfall.RequestsPerSecond <= 0 {
		c.Scryfall.RequestsPerSecond = 10
	}
	if c.Session.DebounceMs <= 0 {
		c.Session.DebounceMs = 400
	}
	if c.Session.MaxSessions <= 0 {
		c.Session.MaxSessions = 10000
	}
	if c.Session.IdleMinutes <= 0 {
		c.Session.IdleMinutes = 30
	}
}

// Validate checks semantic correctness of the configuration.
func (c *Config) Validate() error {
	switch c.Env {
	case "local", "dev", "docker", "prod":
	default:
		return fmt.Errorf("env must be one of local, dev, docker, prod, got %q", c.Env)
	}
	if c.HTTP.Port > 65535 {
		return fmt.Errorf("http.port out of range: %d", c.HTTP.Port)
	}
	switch c.LLM.Provider {
	case "openai":
		if c.LLM.OpenAI.APIKey == "" {
			return fmt.Errorf("llm.openai.api_key is required for provider openai")
		}
	case "gemini":
		if c.LLM.Gemini.APIKey == "" {
			return fmt.Errorf("llm.gemini.api_key is required for provider gemini")
		}
	case "none":
	default:
		return fmt.Errorf("llm.provider must be openai, gemini or none, got %q", c.LLM.Provider)
	}
	switch c.Cache.Driver {
	case "sqlite":
	case "redis":
		if c.Cache.Enabled && len(c.Cache.Redis.Addrs) == 0 {
			return fmt.Errorf("cache.redis.addrs is required for driver redis")
		}
	default:
		return fmt.Errorf("cache.driver must be sqlite or redis, got %q", c.Cache.Driver)
	}
	return nil
}

// TranslationTimeout returns the translation call deadline.
func (c *Config) TranslationTimeout() time.Duration {
	return time.Duration(c.Translation.TimeoutMs) * time.Millisecond
}

// CacheTTL returns how long cached translations stay valid.
func (c *Config) CacheTTL() time.Duration {
	return time.Duration(c.Cache.TTLHours) * time.Hour
}

// Debounce returns the quiet period before a descriptive query is translated.
func (c *Config) Debounce() time.Duration {
	return time.Duration(c.Session.DebounceMs) * time.Millisecond
}

// SessionIdle returns how long an idle search session is remembered.
func (c *Config) SessionIdle() time.Duration {
	return time.Duration(c.Session.IdleMinutes) * time.Minute
}

var envVarPattern = regexp.MustCompile(`\$\{([^}]+)\}`)

func expandEnvVars(data []byte) []byte {
	return envVarPattern.ReplaceAllFunc(data, func(match []byte) []byte {
		varName := string(match[2 : len(match)-1])
		if val := os.Getenv(varName); val != "" {
			return []byte(val)
		}
		return match
	})
}

func splitList(s string) []string {
	var out []string
	for _, part := range strings.Split(s, ",") {
		if part = strings.TrimSpace(part); part != "" {
			out = append(out, part)
		}
	}
	return out
}
