package config

import (
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/spf13/viper"
)

// Config holds all configuration for the research service
type Config struct {
	General   GeneralConfig   `mapstructure:"general"`
	Server    ServerConfig    `mapstructure:"server"`
	LLM       LLMConfig       `mapstructure:"llm"`
	Search    SearchConfig    `mapstructure:"search"`
	Tools     ToolsConfig     `mapstructure:"tools"`
	Storage   StorageConfig   `mapstructure:"storage"`
	Telemetry TelemetryConfig `mapstructure:"telemetry"`
}

// GeneralConfig contains general application settings
type GeneralConfig struct {
	Debug          bool          `mapstructure:"debug"`
	LogLevel       string        `mapstructure:"log_level"`
	DefaultTimeout time.Duration `mapstructure:"default_timeout"`
}

// ServerConfig contains HTTP server settings
type ServerConfig struct {
	Address string `mapstructure:"address"`
}

// LLMConfig contains LLM provider configurations
type LLMConfig struct {
	Providers map[string]LLMProvider `mapstructure:"providers"`
	Routing   LLMRoutingConfig       `mapstructure:"routing"`
}

// LLMProvider represents a single LLM provider configuration
type LLMProvider struct {
	Type      string        `mapstructure:"type"` // openai, anthropic, gemini, ollama
	APIKey    string        `mapstructure:"api_key"`
	BaseURL   string        `mapstructure:"base_url"`
	Models    []string      `mapstructure:"models"`
	MaxTokens int           `mapstructure:"max_tokens"`
	Timeout   time.Duration `mapstructure:"timeout"`
}

// LLMRoutingConfig picks the default provider/model when a turn omits them
type LLMRoutingConfig struct {
	Provider string `mapstructure:"provider"`
	Model    string `mapstructure:"model"`
}

// SearchConfig contains web search settings
type SearchConfig struct {
	Provider     string `mapstructure:"provider"` // duckduckgo, serper, brave
	SerperAPIKey string `mapstructure:"serper_api_key"`
	BraveAPIKey  string `mapstructure:"brave_api_key"`
	MaxResults   int    `mapstructure:"max_results"`
	MaxImages    int    `mapstructure:"max_images"`
	FetchContent bool   `mapstructure:"fetch_content"` // readability enrichment of top hits
}

// ToolsConfig points at an optional MCP registry/proxy for tool augmentation
type ToolsConfig struct {
	RegistryURL string        `mapstructure:"registry_url"`
	ProxyURL    string        `mapstructure:"proxy_url"`
	APIKey      string        `mapstructure:"api_key"`
	Timeout     time.Duration `mapstructure:"timeout"`
}

// StorageConfig selects the timeline archive backend
type StorageConfig struct {
	Backend string      `mapstructure:"backend"` // inmemory, redis
	Redis   RedisConfig `mapstructure:"redis"`
}

// RedisConfig contains redis connection settings
type RedisConfig struct {
	Host     string `mapstructure:"host"`
	Port     string `mapstructure:"port"`
	Password string `mapstructure:"password"`
	DB       int    `mapstructure:"db"`
}

// TelemetryConfig contains observability settings
type TelemetryConfig struct {
	MetricsEnabled bool `mapstructure:"metrics_enabled"`
}

// LoadConfig loads configuration from file and environment.
// An empty path falls back to ./config.{yaml,json,toml}; a missing file is not
// an error because every key has a default or an env override.
func LoadConfig(path string) (*Config, error) {
	v := viper.New()

	v.SetDefault("general.debug", false)
	v.SetDefault("general.log_level", "info")
	v.SetDefault("general.default_timeout", "60s")
	v.SetDefault("server.address", ":8080")
	v.SetDefault("llm.routing.provider", "openai")
	v.SetDefault("llm.routing.model", "gpt-4o-mini")
	v.SetDefault("search.provider", "duckduckgo")
	v.SetDefault("search.max_results", 5)
	v.SetDefault("search.max_images", 6)
	v.SetDefault("search.fetch_content", false)
	v.SetDefault("tools.timeout", "30s")
	v.SetDefault("storage.backend", "inmemory")
	v.SetDefault("storage.redis.host", "localhost")
	v.SetDefault("storage.redis.port", "6379")
	v.SetDefault("telemetry.metrics_enabled", true)

	if path != "" {
		v.SetConfigFile(path)
	} else {
		v.SetConfigName("config")
		v.AddConfigPath(".")
	}
	v.SetEnvPrefix("SCOUT")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	if err := v.ReadInConfig(); err != nil {
		if _, ok := err.(viper.ConfigFileNotFoundError); !ok && path != "" {
			return nil, fmt.Errorf("reading config: %w", err)
		}
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("unmarshaling config: %w", err)
	}
	applyEnvOverrides(&cfg)
	return &cfg, nil
}

// applyEnvOverrides wires the conventional provider key variables so the
// service works without a config file at all.
func applyEnvOverrides(cfg *Config) {
	if cfg.LLM.Providers == nil {
		cfg.LLM.Providers = map[string]LLMProvider{}
	}
	ensure := func(name, typ, envKey string) {
		if _, ok := cfg.LLM.Providers[name]; ok {
			return
		}
		if key := os.Getenv(envKey); key != "" {
			cfg.LLM.Providers[name] = LLMProvider{Type: typ, APIKey: key}
		}
	}
	ensure("openai", "openai", "OPENAI_API_KEY")
	ensure("anthropic", "anthropic", "ANTHROPIC_API_KEY")
	ensure("gemini", "gemini", "GEMINI_API_KEY")
	if _, ok := cfg.LLM.Providers["ollama"]; !ok {
		base := os.Getenv("OLLAMA_BASE_URL")
		if base == "" {
			base = "http://localhost:11434"
		}
		cfg.LLM.Providers["ollama"] = LLMProvider{Type: "ollama", BaseURL: base}
	}
	if cfg.Search.SerperAPIKey == "" {
		cfg.Search.SerperAPIKey = os.Getenv("SERPER_API_KEY")
	}
	if cfg.Search.BraveAPIKey == "" {
		cfg.Search.BraveAPIKey = os.Getenv("BRAVE_API_KEY")
	}
	if cfg.Tools.APIKey == "" {
		cfg.Tools.APIKey = os.Getenv("SMITHERY_API_KEY")
	}
}
