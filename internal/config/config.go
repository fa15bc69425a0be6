package config

import (
	"fmt"
	"os"
	"time"

	"github.com/caarlos0/env/v11"
	"gopkg.in/yaml.v3"

	"github.com/mcoot/gamedb-go/internal/api"
	"github.com/mcoot/gamedb-go/internal/content"
	"github.com/mcoot/gamedb-go/internal/storeconn"
	"github.com/mcoot/gamedb-go/internal/worker"
)

// EnvPrefix is prepended to every environment override
const EnvPrefix = "GAMEDB_"

// Config represents the application configuration
type Config struct {
	LogLevel  string `yaml:"log_level" env:"LOG_LEVEL"`
	LogFormat string `yaml:"log_format" env:"LOG_FORMAT"`

	// BcryptCost is the work factor for new password hashes
	BcryptCost int `yaml:"bcrypt_cost" env:"BCRYPT_COST"`

	Server  api.ServerConfig `yaml:"server" envPrefix:"SERVER_"`
	Store   storeconn.Config `yaml:"store" envPrefix:"STORE_"`
	Sweep   worker.Config    `yaml:"sweep" envPrefix:"SWEEP_"`
	Content content.Content  `yaml:"content"`
}

// Load reads configuration from a YAML file, then applies environment
// overrides. An empty path skips the file.
func Load(path string) (*Config, error) {
	var cfg Config

	if path != "" {
		data, err := os.ReadFile(path)
		if err != nil {
			return nil, fmt.Errorf("reading config file: %w", err)
		}

		// Expand environment variables
		data = []byte(os.ExpandEnv(string(data)))

		if err := yaml.Unmarshal(data, &cfg); err != nil {
			return nil, fmt.Errorf("parsing config file: %w", err)
		}
	}

	if err := ParseEnv(&cfg); err != nil {
		return nil, err
	}

	cfg.applyDefaults()

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

// ParseEnv overlays GAMEDB_-prefixed environment variables onto target
func ParseEnv(target any) error {
	if err := env.ParseWithOptions(target, env.Options{Prefix: EnvPrefix}); err != nil {
		return fmt.Errorf("parse env: %w", err)
	}
	return nil
}

// Validate checks the configuration can start the application
func (c *Config) Validate() error {
	switch c.Store.Backend {
	case storeconn.BackendMemory, storeconn.BackendRedis, storeconn.BackendPostgres:
	default:
		return fmt.Errorf("invalid store backend %q: must be memory, redis or postgres", c.Store.Backend)
	}
	if c.Sweep.Enabled && c.Sweep.Interval <= 0 {
		return fmt.Errorf("sweep interval must be positive, got %s", c.Sweep.Interval)
	}
	if err := c.Content.Validate(); err != nil {
		return fmt.Errorf("content: %w", err)
	}
	return nil
}

// applyDefaults sets default values for missing configuration
func (c *Config) applyDefaults() {
	if c.LogLevel == "" {
		c.LogLevel = "info"
	}
	if c.LogFormat == "" {
		c.LogFormat = "text"
	}

	// Server defaults
	server := api.DefaultServerConfig()
	if c.Server.Port == 0 {
		c.Server.Port = server.Port
	}
	if c.Server.ReadTimeout == 0 {
		c.Server.ReadTimeout = server.ReadTimeout
	}
	if c.Server.WriteTimeout == 0 {
		c.Server.WriteTimeout = server.WriteTimeout
	}
	if c.Server.ShutdownTimeout == 0 {
		c.Server.ShutdownTimeout = server.ShutdownTimeout
	}

	// Store defaults
	store := storeconn.DefaultConfig()
	if c.Store.Backend == "" {
		c.Store.Backend = store.Backend
	}
	if c.Store.Host == "" {
		c.Store.Host = store.Host
	}
	if c.Store.ConnectTimeout == 0 {
		c.Store.ConnectTimeout = store.ConnectTimeout
	}
	if c.Store.SelectionTimeout == 0 {
		c.Store.SelectionTimeout = store.SelectionTimeout
	}
	if c.Store.WriteTimeout == 0 {
		c.Store.WriteTimeout = store.WriteTimeout
	}

	// Sweep defaults
	if c.Sweep.Interval == 0 {
		c.Sweep.Interval = time.Hour
	}

	// Content defaults; an explicit empty denylist is kept
	defaults := content.Default()
	if c.Content.TutorialQuest.Key == "" {
		c.Content.TutorialQuest.Key = defaults.TutorialQuest.Key
	}
	if len(c.Content.TutorialQuest.Stages) == 0 {
		c.Content.TutorialQuest.Stages = defaults.TutorialQuest.Stages
	}
	if c.Content.DefaultSpawn == "" {
		c.Content.DefaultSpawn = defaults.DefaultSpawn
	}
	if c.Content.TutorialSpawn == "" {
		c.Content.TutorialSpawn = defaults.TutorialSpawn
	}
	if c.Content.Denylist == nil {
		c.Content.Denylist = defaults.Denylist
	}
}

// DefaultConfig returns a configuration with all defaults
func DefaultConfig() *Config {
	cfg := &Config{}
	cfg.applyDefaults()
	return cfg
}
