// Package config loads service settings from a .env file, the environment and defaults.
package config

import (
	"bidding-room/utils"
	"fmt"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/spf13/viper"
)

type Config struct {
	App           AppConfig           `mapstructure:"app"`
	Log           LogConfig           `mapstructure:"log"`
	Redis         RedisConfig         `mapstructure:"redis"`
	MySQL         MySQLConfig         `mapstructure:"mysql"`
	Kafka         KafkaConfig         `mapstructure:"kafka"`
	Bidding       BiddingConfig       `mapstructure:"bidding"`
	Collaborators CollaboratorsConfig `mapstructure:"collaborators"`
	Auth          AuthConfig          `mapstructure:"auth"`
}

type AppConfig struct {
	Port string `mapstructure:"port"`
	Env  string `mapstructure:"env"` // local, prod
}

type LogConfig struct {
	Level string `mapstructure:"level"`
}

type RedisConfig struct {
	Enabled  bool          `mapstructure:"enabled"`
	Addr     string        `mapstructure:"addr"`
	Password string        `mapstructure:"password"`
	DB       int           `mapstructure:"db"`
	KeyTTL   time.Duration `mapstructure:"key_ttl"`
}

// MySQLConfig selects the gorm ledger when DSN is set, the in-memory one otherwise
type MySQLConfig struct {
	DSN string `mapstructure:"dsn"`
}

// KafkaConfig enables accepted-bid events when Brokers is not empty
type KafkaConfig struct {
	Brokers []string `mapstructure:"brokers"`
	Topic   string   `mapstructure:"topic"`
}

type BiddingConfig struct {
	TopN           int           `mapstructure:"top_n"`
	CheckTimeout   time.Duration `mapstructure:"check_timeout"`
	CommitAttempts int           `mapstructure:"commit_attempts"`
	CommitBackoff  time.Duration `mapstructure:"commit_backoff"`
	EventTimeout   time.Duration `mapstructure:"event_timeout"`
}

// CollaboratorsConfig points at the user and deposit services. An empty
// BaseURL uses permissive in-process answers.
type CollaboratorsConfig struct {
	BaseURL string        `mapstructure:"base_url"`
	Timeout time.Duration `mapstructure:"timeout"`
}

type AuthConfig struct {
	JWTSecret           string `mapstructure:"jwt_secret"`
	AllowHeaderIdentity bool   `mapstructure:"allow_header_identity"`
}

var keys = []string{
	"app.port", "app.env",
	"log.level",
	"redis.enabled", "redis.addr", "redis.password", "redis.db", "redis.key_ttl",
	"mysql.dsn",
	"kafka.brokers", "kafka.topic",
	"bidding.top_n", "bidding.check_timeout", "bidding.commit_attempts", "bidding.commit_backoff",
	"bidding.event_timeout",
	"collaborators.base_url", "collaborators.timeout",
	"auth.jwt_secret", "auth.allow_header_identity",
}

// LoadConfig reads the .env file if present, then environment variables
// (app.port -> APP_PORT), on top of defaults.
func LoadConfig() (*Config, error) {
	if err := godotenv.Load(); err != nil {
		utils.Debug("no .env file found, using environment", nil)
	}
	return load(viper.New())
}

func load(v *viper.Viper) (*Config, error) {
	setDefaults(v)

	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()
	bindEnv(v, keys...)

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("unable to decode config into struct: %w", err)
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("app.port", ":8080")
	v.SetDefault("app.env", "local")

	v.SetDefault("log.level", "info")

	v.SetDefault("redis.enabled", true)
	v.SetDefault("redis.addr", "localhost:6379")
	v.SetDefault("redis.password", "")
	v.SetDefault("redis.db", 0)
	v.SetDefault("redis.key_ttl", 0)

	v.SetDefault("mysql.dsn", "")

	v.SetDefault("kafka.brokers", []string{})
	v.SetDefault("kafka.topic", "auction.bids.accepted")

	v.SetDefault("bidding.top_n", 10)
	v.SetDefault("bidding.check_timeout", "3s")
	v.SetDefault("bidding.commit_attempts", 3)
	v.SetDefault("bidding.commit_backoff", "50ms")
	v.SetDefault("bidding.event_timeout", "2s")

	v.SetDefault("collaborators.base_url", "")
	v.SetDefault("collaborators.timeout", "2s")

	v.SetDefault("auth.jwt_secret", "")
	v.SetDefault("auth.allow_header_identity", false)
}

// Validate rejects settings the service can't run with
func (c *Config) Validate() error {
	if c.App.Port == "" {
		return fmt.Errorf("app port cannot be empty")
	}
	if c.Bidding.TopN <= 0 {
		return fmt.Errorf("bidding top_n must be positive, got %d", c.Bidding.TopN)
	}
	if c.Bidding.CommitAttempts < 1 {
		return fmt.Errorf("bidding commit_attempts must be at least 1, got %d", c.Bidding.CommitAttempts)
	}
	if c.Bidding.CheckTimeout <= 0 {
		return fmt.Errorf("bidding check_timeout must be positive")
	}
	if c.Bidding.EventTimeout <= 0 {
		return fmt.Errorf("bidding event_timeout must be positive")
	}
	if len(c.Kafka.Brokers) > 0 && c.Kafka.Topic == "" {
		return fmt.Errorf("kafka topic cannot be empty when brokers are set")
	}
	if c.Auth.JWTSecret == "" && !c.Auth.AllowHeaderIdentity && c.App.Env == "prod" {
		return fmt.Errorf("auth jwt_secret is required in prod")
	}
	return nil
}

func bindEnv(v *viper.Viper, keys ...string) {
	for _, key := range keys {
		if err := v.BindEnv(key); err != nil {
			utils.Warn("could not bind env var", map[string]any{"key": key, "error": err.Error()})
		}
	}
}
