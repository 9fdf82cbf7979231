// Package config loads process configuration from the environment, with an
// optional YAML overrides file for settings that are awkward as env vars.
package config

import (
	"fmt"
	"os"
	"time"

	"github.com/caarlos0/env/v11"
	"gopkg.in/yaml.v3"
)

const configPathEnv = "VAXSCREEN_CONFIG"

// Config holds all settings required across the application.
type Config struct {
	Server    ServerConfig    `yaml:"server"`
	Database  DatabaseConfig  `yaml:"database"`
	Redis     RedisConfig     `yaml:"redis"`
	UniProt   UniProtConfig   `yaml:"uniprot"`
	Advisor   AdvisorConfig   `yaml:"advisor"`
	Screening ScreeningConfig `yaml:"screening"`
}

// ServerConfig captures HTTP server level configuration.
type ServerConfig struct {
	Addr            string        `env:"VAXSCREEN_ADDR" envDefault:":8080" yaml:"addr"`
	LogLevel        string        `env:"VAXSCREEN_LOG_LEVEL" envDefault:"info" yaml:"logLevel"`
	ShutdownTimeout time.Duration `env:"VAXSCREEN_SHUTDOWN_TIMEOUT" envDefault:"10s" yaml:"shutdownTimeout"`
}

// DatabaseConfig describes Postgres connection details. An empty DSN selects
// the in-memory store.
type DatabaseConfig struct {
	DSN string `env:"DATABASE_DSN" yaml:"dsn"`
}

// RedisConfig describes the optional protein-record cache. An empty URL
// disables caching.
type RedisConfig struct {
	URL          string        `env:"REDIS_URL" yaml:"url"`
	CacheTTL     time.Duration `env:"REDIS_CACHE_TTL" envDefault:"24h" yaml:"cacheTtl"`
	PoolSize     int           `env:"REDIS_POOL_SIZE" envDefault:"10" yaml:"poolSize"`
	MinIdleConns int           `env:"REDIS_MIN_IDLE_CONNS" envDefault:"2" yaml:"minIdleConns"`
	DialTimeout  time.Duration `env:"REDIS_DIAL_TIMEOUT" envDefault:"5s" yaml:"dialTimeout"`
	ReadTimeout  time.Duration `env:"REDIS_READ_TIMEOUT" envDefault:"3s" yaml:"readTimeout"`
	WriteTimeout time.Duration `env:"REDIS_WRITE_TIMEOUT" envDefault:"3s" yaml:"writeTimeout"`
}

// UniProtConfig describes the sequence database endpoint.
type UniProtConfig struct {
	BaseURL string        `env:"UNIPROT_BASE_URL" envDefault:"https://rest.uniprot.org" yaml:"baseUrl"`
	Timeout time.Duration `env:"UNIPROT_TIMEOUT" envDefault:"30s" yaml:"timeout"`
}

// AdvisorConfig defines how to contact the advisory classifier. A missing API
// key means the advisor is absent and every decision takes the fallback path.
type AdvisorConfig struct {
	Endpoint  string        `env:"ADVISOR_ENDPOINT" envDefault:"https://api.anthropic.com/v1/messages" yaml:"endpoint"`
	Model     string        `env:"ADVISOR_MODEL" envDefault:"claude-opus-4-1" yaml:"model"`
	APIKey    string        `env:"ANTHROPIC_API_KEY" yaml:"apiKey"`
	MaxTokens int           `env:"ADVISOR_MAX_TOKENS" envDefault:"256" yaml:"maxTokens"`
	Timeout   time.Duration `env:"ADVISOR_TIMEOUT" envDefault:"30s" yaml:"timeout"`
}

// ScreeningConfig sets the organism assumptions used by the analyzers.
type ScreeningConfig struct {
	Organism string `env:"SCREENING_ORGANISM" envDefault:"gram_negative" yaml:"organism"`
	Category string `env:"SCREENING_CATEGORY" envDefault:"virus" yaml:"category"`
}

// Load parses the environment, then applies the YAML overrides file named by
// VAXSCREEN_CONFIG when present. It keeps main lean.
func Load() (Config, error) {
	var cfg Config
	if err := env.Parse(&cfg); err != nil {
		return cfg, fmt.Errorf("parse env: %w", err)
	}

	if path := os.Getenv(configPathEnv); path != "" {
		raw, err := os.ReadFile(path)
		if err != nil {
			return cfg, fmt.Errorf("read config %s: %w", path, err)
		}
		if err := yaml.Unmarshal(raw, &cfg); err != nil {
			return cfg, fmt.Errorf("parse config %s: %w", path, err)
		}
	}

	return cfg, nil
}
