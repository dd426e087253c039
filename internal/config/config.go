package config

import (
	"errors"
	"fmt"

	"github.com/spf13/viper"
)

type Config struct {
	Server   ServerConfig   `mapstructure:"server"`
	Database DatabaseConfig `mapstructure:"database"`
	Spec     SpecConfig     `mapstructure:"spec"`
	Query    QueryConfig    `mapstructure:"query"`
	Chaos    ChaosConfig    `mapstructure:"chaos"`
	CORS     CORSConfig     `mapstructure:"cors"`
	Auth     AuthConfig     `mapstructure:"auth"`
}

type ServerConfig struct {
	Port int `mapstructure:"port"`
}

type DatabaseConfig struct {
	// Path is the JSON database file. Empty keeps the store in-memory only.
	Path string `mapstructure:"path"`
	// Autosave flushes the database file after every successful mutation.
	Autosave bool `mapstructure:"autosave"`
}

type SpecConfig struct {
	// Path is the resource spec file (JSON).
	Path string `mapstructure:"path"`
}

type QueryConfig struct {
	// ProjectPrimaryKey forces the primary key into fields projections.
	ProjectPrimaryKey bool `mapstructure:"project_primary_key"`
	// SkipUniqueness disables cross-record uniqueness validation.
	SkipUniqueness bool `mapstructure:"skip_uniqueness"`
}

// ChaosConfig injects artificial latency and failures into collection routes.
type ChaosConfig struct {
	LatencyMs int     `mapstructure:"latency_ms"`
	ErrorRate float64 `mapstructure:"error_rate"` // 0.0 - 1.0
}

type CORSConfig struct {
	Enabled      bool   `mapstructure:"enabled"`
	AllowOrigins string `mapstructure:"allow_origins"`
}

type AuthConfig struct {
	Enabled   bool       `mapstructure:"enabled"`
	JWTSecret string     `mapstructure:"jwt_secret"`
	Users     []UserSpec `mapstructure:"users"`
}

type UserSpec struct {
	Username     string   `mapstructure:"username"`
	PasswordHash string   `mapstructure:"password_hash"` // bcrypt
	Roles        []string `mapstructure:"roles"`
}

func Load() (*Config, error) {
	viper.SetConfigName("app")
	viper.SetConfigType("yaml")
	viper.AddConfigPath(".")
	viper.AddConfigPath("../..")

	setDefaults()

	viper.AutomaticEnv()

	if err := viper.ReadInConfig(); err != nil {
		// A config file is optional; defaults plus flags are a full config.
		var notFound viper.ConfigFileNotFoundError
		if !errors.As(err, &notFound) {
			return nil, fmt.Errorf("read config: %w", err)
		}
	}

	var cfg Config
	if err := viper.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("unmarshal config: %w", err)
	}

	return &cfg, nil
}

func setDefaults() {
	viper.SetDefault("server.port", 8080)
	viper.SetDefault("database.path", "./data/db.json")
	viper.SetDefault("database.autosave", true)
	viper.SetDefault("spec.path", "./resources.json")
	viper.SetDefault("query.project_primary_key", false)
	viper.SetDefault("query.skip_uniqueness", false)
	viper.SetDefault("chaos.latency_ms", 0)
	viper.SetDefault("chaos.error_rate", 0.0)
	viper.SetDefault("cors.enabled", true)
	viper.SetDefault("cors.allow_origins", "*")
	viper.SetDefault("auth.enabled", false)
	viper.SetDefault("auth.jwt_secret", "changeme-secret")
}
