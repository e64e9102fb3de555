package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"studentportal/pkg/config"
)

const (
	StoreDriverPostgres = "postgres"
	StoreDriverMemory   = "memory"

	PasswordSchemePlaintext = "plaintext"
	PasswordSchemeBcrypt    = "bcrypt"
)

type StoreConfig struct {
	// Driver is "postgres" or "memory".
	Driver string `yaml:"driver"`
}

type AuthConfig struct {
	// PasswordScheme is "plaintext" or "bcrypt".
	PasswordScheme string `yaml:"password_scheme"`
}

type SeedConfig struct {
	// OnStart drops every table and reseeds fixtures when the server starts.
	OnStart        bool `yaml:"on_start"`
	LogCredentials bool `yaml:"log_credentials"`
}

type CompletionConfig struct {
	APIKey  string        `yaml:"api_key"`
	Model   string        `yaml:"model"`
	BaseURL string        `yaml:"base_url"`
	Timeout time.Duration `yaml:"timeout"`
}

type RateLimitConfig struct {
	// DoubtSolverPerMinute requests per client per minute; 0 disables limiting.
	DoubtSolverPerMinute int `yaml:"doubt_solver_per_minute"`
}

type WorkerConfig struct {
	// MaxRetries redeliveries per event before it is dead-lettered.
	MaxRetries int64         `yaml:"max_retries"`
	DedupTTL   time.Duration `yaml:"dedup_ttl"`
	// FeedSize entries kept in the forum activity feed.
	FeedSize int `yaml:"feed_size"`
}

// OutboxConfig tunes the relay from the outbox table to the broker.
type OutboxConfig struct {
	MaxRetries   int           `yaml:"max_retries"`
	PollInterval time.Duration `yaml:"poll_interval"`
	BatchSize    int           `yaml:"batch_size"`
}

type Config struct {
	Server     config.ServerConfig `yaml:"server"`
	Store      StoreConfig         `yaml:"store"`
	DB         config.DBConfig     `yaml:"db"`
	Redis      config.RedisConfig  `yaml:"redis"`
	MQ         config.MQConfig     `yaml:"mq"`
	JWT        config.JWTConfig    `yaml:"jwt"`
	Auth       AuthConfig          `yaml:"auth"`
	Seed       SeedConfig          `yaml:"seed"`
	Completion CompletionConfig    `yaml:"completion"`
	RateLimit  RateLimitConfig     `yaml:"ratelimit"`
	Worker     WorkerConfig        `yaml:"worker"`
	Outbox     OutboxConfig        `yaml:"outbox"`
	OTel       config.OTelConfig   `yaml:"otel"`
	Log        config.LogConfig    `yaml:"log"`
}

// Default returns the configuration used when a key is absent from every file.
func Default() *Config {
	return &Config{
		Server: config.ServerConfig{Port: ":5000"},
		Store:  StoreConfig{Driver: StoreDriverPostgres},
		DB: config.DBConfig{
			Host:               "localhost",
			Port:               5432,
			User:               "portal",
			Password:           "portal",
			Name:               "user_portal",
			SlowQueryThreshold: 100 * time.Millisecond,
		},
		JWT:  config.JWTConfig{Secret: "change-me", TTL: 24 * time.Hour},
		Auth: AuthConfig{PasswordScheme: PasswordSchemePlaintext},
		Seed: SeedConfig{OnStart: true, LogCredentials: true},
		Completion: CompletionConfig{
			Model:   "gpt-3.5-turbo",
			Timeout: 30 * time.Second,
		},
		Worker: WorkerConfig{
			MaxRetries: 3,
			DedupTTL:   24 * time.Hour,
			FeedSize:   100,
		},
		Outbox: OutboxConfig{
			MaxRetries:   5,
			PollInterval: time.Second,
			BatchSize:    100,
		},
		Log: config.LogConfig{Level: "info"},
	}
}

// Load reads configDir for the CONFIG_ENV environment and applies env overrides.
func Load(configDir string) (*Config, error) {
	cfg := Default()
	if err := config.LoadInto(config.GetConfigEnv(), configDir, cfg); err != nil {
		return nil, err
	}

	overrideFromEnv(cfg)

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

func overrideFromEnv(cfg *Config) {
	config.OverrideDBFromEnv(&cfg.DB)
	config.OverrideRedisFromEnv(&cfg.Redis)
	config.OverrideMQFromEnv(&cfg.MQ)
	config.OverrideJWTFromEnv(&cfg.JWT)
	config.OverrideServerFromEnv(&cfg.Server)
	config.OverrideLogFromEnv(&cfg.Log)

	if driver := os.Getenv("STORE_DRIVER"); driver != "" {
		cfg.Store.Driver = driver
	}
	if key := os.Getenv("OPENAI_API_KEY"); key != "" {
		cfg.Completion.APIKey = key
	}
	if model := os.Getenv("OPENAI_MODEL"); model != "" {
		cfg.Completion.Model = model
	}
	if scheme := os.Getenv("PASSWORD_SCHEME"); scheme != "" {
		cfg.Auth.PasswordScheme = scheme
	}
	if onStart := os.Getenv("SEED_ON_START"); onStart != "" {
		if b, err := strconv.ParseBool(onStart); err == nil {
			cfg.Seed.OnStart = b
		}
	}
}

// Validate rejects unknown enum values.
func (c *Config) Validate() error {
	c.Store.Driver = strings.ToLower(strings.TrimSpace(c.Store.Driver))
	switch c.Store.Driver {
	case StoreDriverPostgres, StoreDriverMemory:
	default:
		return fmt.Errorf("unknown store.driver %q", c.Store.Driver)
	}

	c.Auth.PasswordScheme = strings.ToLower(strings.TrimSpace(c.Auth.PasswordScheme))
	switch c.Auth.PasswordScheme {
	case PasswordSchemePlaintext, PasswordSchemeBcrypt:
	default:
		return fmt.Errorf("unknown auth.password_scheme %q", c.Auth.PasswordScheme)
	}

	if c.JWT.TTL <= 0 {
		c.JWT.TTL = 24 * time.Hour
	}
	return nil
}
