// internal/config/config.go
package config

import (
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/caarlos0/env/v11"
	"github.com/joho/godotenv"
	"github.com/robfig/cron/v3"
	"gopkg.in/yaml.v3"
)

type DatabaseConfig struct {
	Driver      string        `yaml:"driver"`
	Filename    string        `yaml:"filename" env:"DATABASE_FILENAME"`
	BusyTimeout time.Duration `yaml:"busy_timeout"`
}

// RulesConfig holds the tunable bounds of the result pipeline.
// Sets per result are bounded inclusively by MinSets and MaxSets.
type RulesConfig struct {
	MinSets int `yaml:"min_sets"`
	MaxSets int `yaml:"max_sets"`
}

type AuthConfig struct {
	Issuer   string        `yaml:"issuer"`
	TokenTTL time.Duration `yaml:"token_ttl"`
}

type SchedulerConfig struct {
	Enabled         bool          `yaml:"enabled"`
	StreamExpiryJob string        `yaml:"stream_expiry_cron"`
	StreamMaxAge    time.Duration `yaml:"stream_max_age"`
}

type RateLimitConfig struct {
	JoinMaxFailures  int           `yaml:"join_max_failures"`
	JoinLockout      time.Duration `yaml:"join_lockout"`
	JoinMaxIPPerHour int           `yaml:"join_max_ip_per_hour"`

	// TrustProxy reads client addresses from X-Forwarded-For.
	TrustProxy bool `yaml:"trust_proxy" env:"TRUST_PROXY"`
}

type Config struct {
	App struct {
		Name            string        `yaml:"name"`
		Environment     string        `yaml:"environment" env:"ENVIRONMENT"`
		Port            int           `yaml:"port" env:"PORT"`
		BaseURL         string        `yaml:"base_url"`
		AllowedOrigins  []string      `yaml:"allowed_origins"`
		ShutdownTimeout time.Duration `yaml:"shutdown_timeout"`
		SecretKey       string        `yaml:"-" env:"APP_SECRET_KEY"`
	} `yaml:"app"`

	Database  DatabaseConfig  `yaml:"database"`
	Rules     RulesConfig     `yaml:"rules"`
	Auth      AuthConfig      `yaml:"auth"`
	Scheduler SchedulerConfig `yaml:"scheduler"`
	RateLimit RateLimitConfig `yaml:"ratelimit"`
}

// DefaultRules returns the set bounds used when the config file leaves them unset.
func DefaultRules() RulesConfig {
	return RulesConfig{MinSets: 3, MaxSets: 5}
}

// Load loads .env, the yaml file at configPath and environment overrides, in that order.
func Load(configPath string) (*Config, error) {
	envPath := filepath.Join(filepath.Dir(configPath), ".env")
	if err := godotenv.Load(envPath); err != nil && !os.IsNotExist(err) {
		return nil, fmt.Errorf("error loading .env file: %w", err)
	}

	data, err := os.ReadFile(configPath)
	if err != nil {
		return nil, fmt.Errorf("error reading config file: %w", err)
	}

	var cfg Config
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return nil, fmt.Errorf("error parsing config file: %w", err)
	}

	if err := env.Parse(&cfg); err != nil {
		return nil, fmt.Errorf("error reading environment overrides: %w", err)
	}

	cfg.applyDefaults()

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}

	return &cfg, nil
}

func (c *Config) applyDefaults() {
	if c.App.Environment == "" {
		c.App.Environment = "development"
	}
	if c.App.ShutdownTimeout == 0 {
		c.App.ShutdownTimeout = 30 * time.Second
	}
	if c.Database.BusyTimeout == 0 {
		c.Database.BusyTimeout = 5 * time.Second
	}
	if c.Rules.MinSets == 0 && c.Rules.MaxSets == 0 {
		c.Rules = DefaultRules()
	}
	if c.Auth.Issuer == "" {
		c.Auth.Issuer = c.App.Name
	}
	if c.Auth.TokenTTL == 0 {
		c.Auth.TokenTTL = 8 * time.Hour
	}
	if c.Scheduler.StreamExpiryJob == "" {
		c.Scheduler.StreamExpiryJob = "*/10 * * * *"
	}
	if c.Scheduler.StreamMaxAge == 0 {
		c.Scheduler.StreamMaxAge = 6 * time.Hour
	}
	if c.RateLimit.JoinMaxFailures == 0 {
		c.RateLimit.JoinMaxFailures = 5
	}
	if c.RateLimit.JoinLockout == 0 {
		c.RateLimit.JoinLockout = 15 * time.Minute
	}
	if c.RateLimit.JoinMaxIPPerHour == 0 {
		c.RateLimit.JoinMaxIPPerHour = 60
	}
}

func (c *Config) Validate() error {
	if c.App.Name == "" {
		return fmt.Errorf("app name is required")
	}
	if c.App.Port == 0 {
		return fmt.Errorf("app port is required")
	}
	if c.App.SecretKey == "" && c.App.Environment != "development" {
		return fmt.Errorf("APP_SECRET_KEY is required outside development")
	}
	if c.Database.Driver == "" {
		return fmt.Errorf("database driver is required")
	}

	switch c.Database.Driver {
	case "sqlite":
		if c.Database.Filename == "" {
			return fmt.Errorf("database filename is required for sqlite")
		}
	default:
		return fmt.Errorf("unsupported database driver: %s", c.Database.Driver)
	}

	if err := c.Rules.Validate(); err != nil {
		return err
	}

	if _, err := cron.ParseStandard(c.Scheduler.StreamExpiryJob); err != nil {
		return fmt.Errorf("invalid stream_expiry_cron %q: %w", c.Scheduler.StreamExpiryJob, err)
	}
	if c.Scheduler.StreamMaxAge < 0 {
		return fmt.Errorf("stream_max_age must not be negative")
	}

	return nil
}

func (r RulesConfig) Validate() error {
	if r.MinSets < 1 {
		return fmt.Errorf("rules.min_sets must be at least 1")
	}
	if r.MaxSets < r.MinSets {
		return fmt.Errorf("rules.max_sets must be greater than or equal to rules.min_sets")
	}
	return nil
}
