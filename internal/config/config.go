package config

import (
	"fmt"
	"net/url"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/spf13/viper"
)

// Config holds the application configuration loaded from files and environment variables.
type Config struct {
	AppName  string `mapstructure:"app_name"`
	Env      string `mapstructure:"app_env"`
	LogLevel string `mapstructure:"log_level"`

	BaseURL               string        `mapstructure:"base_url"`
	RequestTimeoutSeconds int64         `mapstructure:"request_timeout_seconds"`
	RequestTimeout        time.Duration `mapstructure:"-"`

	ValidEmail      string `mapstructure:"valid_email"`
	ValidPassword   string `mapstructure:"valid_password"`
	InvalidEmail    string `mapstructure:"invalid_email"`
	InvalidPassword string `mapstructure:"invalid_password"`

	FixturesFile  string `mapstructure:"fixtures_file"`
	PhotosDir     string `mapstructure:"photos_dir"`
	ReportersFile string `mapstructure:"reporters_file"`
	StrictDefects bool   `mapstructure:"strict_defects"`

	StorageType            string        `mapstructure:"storage_type"`
	BBoltPath              string        `mapstructure:"bbolt_path"`
	HistoryTTLSeconds      int64         `mapstructure:"history_ttl_seconds"`
	HistoryCleanupSeconds  int64         `mapstructure:"history_cleanup_interval_seconds"`
	HistoryTTL             time.Duration `mapstructure:"-"`
	HistoryCleanupInterval time.Duration `mapstructure:"-"`
}

// Load reads configuration from environment variables and config files.
func Load() (*Config, error) {
	_ = godotenv.Load("configs/.env")

	v := viper.New()

	v.SetDefault("app_name", "petfriends-verifier")
	v.SetDefault("app_env", "development")
	v.SetDefault("log_level", "info")
	v.SetDefault("base_url", "https://petfriends.skillfactory.ru")
	v.SetDefault("request_timeout_seconds", 30)
	v.SetDefault("valid_email", "")
	v.SetDefault("valid_password", "")
	v.SetDefault("invalid_email", "nobody@example.invalid")
	v.SetDefault("invalid_password", "not-the-password")
	v.SetDefault("fixtures_file", "")
	v.SetDefault("photos_dir", "./images")
	v.SetDefault("reporters_file", "")
	v.SetDefault("strict_defects", false)
	v.SetDefault("storage_type", "bbolt")
	v.SetDefault("bbolt_path", "./data/history.db")
	v.SetDefault("history_ttl_seconds", int64((30*24*time.Hour)/time.Second))
	v.SetDefault("history_cleanup_interval_seconds", int64((24*time.Hour)/time.Second))

	v.AutomaticEnv()

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("unmarshal config: %w", err)
	}

	if err := cfg.normalize(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

func (cfg *Config) normalize() error {
	cfg.BaseURL = strings.TrimRight(strings.TrimSpace(cfg.BaseURL), "/")
	if cfg.BaseURL == "" {
		return fmt.Errorf("base_url is required")
	}
	u, err := url.Parse(cfg.BaseURL)
	if err != nil || u.Scheme == "" || u.Host == "" {
		return fmt.Errorf("invalid base_url %q (must be an absolute URL)", cfg.BaseURL)
	}

	if cfg.RequestTimeoutSeconds <= 0 {
		return fmt.Errorf("invalid request_timeout_seconds (must be positive seconds)")
	}
	cfg.RequestTimeout = time.Duration(cfg.RequestTimeoutSeconds) * time.Second

	if cfg.HistoryTTLSeconds <= 0 {
		return fmt.Errorf("invalid history_ttl_seconds (must be positive seconds)")
	}
	if cfg.HistoryCleanupSeconds <= 0 {
		return fmt.Errorf("invalid history_cleanup_interval_seconds (must be positive seconds)")
	}
	cfg.HistoryTTL = time.Duration(cfg.HistoryTTLSeconds) * time.Second
	cfg.HistoryCleanupInterval = time.Duration(cfg.HistoryCleanupSeconds) * time.Second

	return nil
}

// HasValidCredentials reports whether a login pair for the happy-path scenarios is configured.
func (cfg *Config) HasValidCredentials() bool {
	return cfg.ValidEmail != "" && cfg.ValidPassword != ""
}
