package config

import (
	"errors"
	"fmt"
	"log"
	"time"

	"github.com/spf13/viper"
)

// Config holds the application configuration.
type Config struct {
	DatabaseDriver     string        `mapstructure:"DATABASE_DRIVER"`
	DatabaseURL        string        `mapstructure:"DATABASE_URL"`
	MaxOpenConns       int           `mapstructure:"DB_MAX_OPEN_CONNS"`
	MaxIdleConns       int           `mapstructure:"DB_MAX_IDLE_CONNS"`
	ConnMaxLifetime    time.Duration `mapstructure:"DB_CONN_MAX_LIFETIME"`
	LogLevel           string        `mapstructure:"DB_LOG_LEVEL"`
	SlowThreshold      time.Duration `mapstructure:"DB_SLOW_THRESHOLD"`
	SessionPoll        time.Duration `mapstructure:"SESSION_POLL_INTERVAL"`
	SessionPollAttempt int           `mapstructure:"SESSION_POLL_ATTEMPTS"`
	SessionHoldDelay   time.Duration `mapstructure:"SESSION_HOLD_DELAY"`
}

const (
	DriverPostgres = "postgres"
	DriverSQLite   = "sqlite"
)

var defaults = map[string]any{
	"DATABASE_DRIVER":       DriverPostgres,
	"DATABASE_URL":          "",
	"DB_MAX_OPEN_CONNS":     10,
	"DB_MAX_IDLE_CONNS":     5,
	"DB_CONN_MAX_LIFETIME":  time.Hour,
	"DB_LOG_LEVEL":          "warn",
	"DB_SLOW_THRESHOLD":     200 * time.Millisecond,
	"SESSION_POLL_INTERVAL": 50 * time.Millisecond,
	"SESSION_POLL_ATTEMPTS": 20,
	"SESSION_HOLD_DELAY":    time.Duration(0),
}

// LoadConfig loads the configuration from a .env file, searched in paths
// (default "."), and environment variables. Environment wins.
func LoadConfig(paths ...string) (*Config, error) {
	v := viper.New()
	if len(paths) == 0 {
		paths = []string{"."}
	}
	for _, p := range paths {
		v.AddConfigPath(p)
	}
	v.SetConfigName(".env")
	v.SetConfigType("env")

	for key, value := range defaults {
		v.SetDefault(key, value)
	}
	v.AutomaticEnv()

	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if !errors.As(err, &notFound) {
			return nil, fmt.Errorf("read config: %w", err)
		}
		log.Println("Warning: .env file not found, loading from environment variables")
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("unable to decode into struct: %w", err)
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

// Validate rejects configurations the database layer cannot open.
func (c *Config) Validate() error {
	switch c.DatabaseDriver {
	case DriverPostgres, DriverSQLite:
	default:
		return fmt.Errorf("unsupported DATABASE_DRIVER %q", c.DatabaseDriver)
	}
	if c.DatabaseURL == "" {
		return errors.New("DATABASE_URL is required")
	}
	if c.MaxOpenConns < 1 {
		return fmt.Errorf("DB_MAX_OPEN_CONNS must be positive, got %d", c.MaxOpenConns)
	}
	if c.SessionPollAttempt < 1 || c.SessionPoll <= 0 {
		return errors.New("SESSION_POLL_INTERVAL and SESSION_POLL_ATTEMPTS must be positive")
	}
	return nil
}
