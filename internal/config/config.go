package config

import (
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/kelseyhightower/envconfig"
	"gopkg.in/yaml.v2"
)

// Config represents the complete application configuration.
type Config struct {
	Server  ServerConfig  `yaml:"server" envconfig:"SERVER"`
	Store   StoreConfig   `yaml:"store" envconfig:"STORE"`
	Auth    AuthConfig    `yaml:"auth" envconfig:"AUTH"`
	Logging LoggingConfig `yaml:"logging" envconfig:"LOGGING"`
	Cache   CacheConfig   `yaml:"cache" envconfig:"CACHE"`
}

// ServerConfig contains HTTP server configuration.
type ServerConfig struct {
	Port            int           `yaml:"port" envconfig:"PORT" default:"8080"`
	ReadTimeout     time.Duration `yaml:"read_timeout" envconfig:"READ_TIMEOUT" default:"15s"`
	WriteTimeout    time.Duration `yaml:"write_timeout" envconfig:"WRITE_TIMEOUT" default:"60s"`
	IdleTimeout     time.Duration `yaml:"idle_timeout" envconfig:"IDLE_TIMEOUT" default:"60s"`
	ShutdownTimeout time.Duration `yaml:"shutdown_timeout" envconfig:"SHUTDOWN_TIMEOUT" default:"30s"`
	RateLimitRPS    float64       `yaml:"rate_limit_rps" envconfig:"RATE_LIMIT_RPS" default:"50"`
	RateLimitBurst  int           `yaml:"rate_limit_burst" envconfig:"RATE_LIMIT_BURST" default:"25"`
}

// StoreConfig describes the remote object store holding per-participant
// metric CSVs. When Enabled is false (or Endpoint is empty) the data
// layer uses the synthetic sample source exclusively; the toggle is
// explicit configuration, never ambient state.
type StoreConfig struct {
	Enabled  bool          `yaml:"enabled" envconfig:"ENABLED" default:"true"`
	Endpoint string        `yaml:"endpoint" envconfig:"ENDPOINT"`
	Bucket   string        `yaml:"bucket" envconfig:"BUCKET" default:"cohort-metrics"`
	Region   string        `yaml:"region" envconfig:"REGION" default:"us-west-2"`
	Timeout  time.Duration `yaml:"timeout" envconfig:"TIMEOUT" default:"30s"`
}

// AuthConfig controls access to the dashboard. Google sign-in is
// restricted to the allow-listed email domains; PasswordHash is a
// bcrypt hash enabling the lab-password fallback. With neither
// configured the API is open (development mode).
type AuthConfig struct {
	Enabled        bool          `yaml:"enabled" envconfig:"ENABLED" default:"false"`
	GoogleClientID string        `yaml:"google_client_id" envconfig:"GOOGLE_CLIENT_ID"`
	AllowedDomains []string      `yaml:"allowed_domains" envconfig:"ALLOWED_DOMAINS" default:"usc.edu,med.usc.edu"`
	PasswordHash   string        `yaml:"password_hash" envconfig:"PASSWORD_HASH"`
	SessionTTL     time.Duration `yaml:"session_ttl" envconfig:"SESSION_TTL" default:"12h"`
}

// LoggingConfig contains logging configuration.
type LoggingConfig struct {
	Level    string `yaml:"level" envconfig:"LEVEL" default:"info"`
	Output   string `yaml:"output" envconfig:"OUTPUT" default:"console"`
	FilePath string `yaml:"file_path" envconfig:"FILE_PATH" default:"logs/app.log"`
}

// CacheConfig bounds staleness of remote reads.
type CacheConfig struct {
	TTL     time.Duration `yaml:"ttl" envconfig:"TTL" default:"1h"`
	MaxSize int           `yaml:"max_size" envconfig:"MAX_SIZE" default:"256"`
}

// Load reads configuration from environment variables, overlaid on an
// optional YAML file named by COHORTPULSE_CONFIG (default config.yaml).
func Load() (*Config, error) {
	var cfg Config

	configFile := os.Getenv("COHORTPULSE_CONFIG")
	if configFile == "" {
		configFile = "config.yaml"
	}
	if _, err := os.Stat(configFile); err == nil {
		data, err := os.ReadFile(configFile)
		if err != nil {
			return nil, fmt.Errorf("failed to read config file: %w", err)
		}
		if err := yaml.Unmarshal(data, &cfg); err != nil {
			return nil, fmt.Errorf("failed to parse config file: %w", err)
		}
	}

	// Environment variables take precedence over the file.
	if err := envconfig.Process("COHORTPULSE", &cfg); err != nil {
		return nil, fmt.Errorf("failed to load config from env: %w", err)
	}

	if err := cfg.validate(); err != nil {
		return nil, fmt.Errorf("config validation failed: %w", err)
	}

	return &cfg, nil
}

// Default returns a configuration suitable for tests and the one-shot
// report command: sample data only, auth disabled.
func Default() *Config {
	return &Config{
		Server: ServerConfig{
			Port:            8080,
			ReadTimeout:     15 * time.Second,
			WriteTimeout:    60 * time.Second,
			IdleTimeout:     60 * time.Second,
			ShutdownTimeout: 30 * time.Second,
			RateLimitRPS:    50,
			RateLimitBurst:  25,
		},
		Store: StoreConfig{
			Enabled: false,
			Bucket:  "cohort-metrics",
			Region:  "us-west-2",
			Timeout: 30 * time.Second,
		},
		Auth: AuthConfig{
			Enabled:    false,
			SessionTTL: 12 * time.Hour,
		},
		Logging: LoggingConfig{
			Level:    "info",
			Output:   "console",
			FilePath: "logs/app.log",
		},
		Cache: CacheConfig{
			TTL:     time.Hour,
			MaxSize: 256,
		},
	}
}

func (c *Config) validate() error {
	if c.Server.Port <= 0 || c.Server.Port > 65535 {
		return fmt.Errorf("invalid server port: %d", c.Server.Port)
	}
	if c.Store.Enabled && c.Store.Endpoint != "" &&
		!strings.HasPrefix(c.Store.Endpoint, "http://") && !strings.HasPrefix(c.Store.Endpoint, "https://") {
		return fmt.Errorf("store endpoint must be an http(s) URL: %s", c.Store.Endpoint)
	}
	if c.Cache.TTL < 0 {
		return fmt.Errorf("cache ttl must not be negative")
	}
	return nil
}

// StoreURL returns the base URL of the configured bucket.
func (c *Config) StoreURL() string {
	return strings.TrimSuffix(c.Store.Endpoint, "/") + "/" + c.Store.Bucket
}
