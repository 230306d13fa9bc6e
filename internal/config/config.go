// Package config loads the settings shared by the command line tools.
//
// Values are layered: built-in defaults, then an optional YAML file, then
// a .env file, then IGC_* environment variables.
package config

import (
	"errors"
	"fmt"
	"log/slog"
	"os"
	"strconv"
	"time"

	"github.com/joho/godotenv"
	"go.yaml.in/yaml/v3"

	"igc_parser/internal/flight"
	"igc_parser/internal/logging"
	"igc_parser/internal/publish"
	"igc_parser/internal/storage"
)

// Parse holds the parse options that can be set from configuration.
type Parse struct {
	MaxSpeed        float64 `yaml:"max_speed"`
	TurnpointRadius float64 `yaml:"turnpoint_radius"`
	FallbackDate    string  `yaml:"fallback_date"` // YYYY-MM-DD
	Locale          string  `yaml:"locale"`
	WithRaw         bool    `yaml:"with_raw"`
}

// Batch controls directory processing.
type Batch struct {
	Workers int `yaml:"workers"`
}

// Config holds the application configuration
type Config struct {
	Parse   Parse          `yaml:"parse"`
	Log     logging.Config `yaml:"log"`
	Storage storage.Config `yaml:"storage"`
	NATS    publish.Config `yaml:"nats"`
	Batch   Batch          `yaml:"batch"`
}

// Default returns the built-in configuration.
func Default() Config {
	return Config{
		Parse: Parse{
			MaxSpeed:        flight.DefaultMaxSpeed,
			TurnpointRadius: flight.DefaultTurnpointRadius,
			Locale:          "en",
		},
		Log:     logging.Config{Level: "info", MaxSizeMB: 32, MaxBackups: 3},
		Storage: storage.DefaultConfig(),
		NATS: publish.Config{
			URL:     "nats://localhost:4222",
			Subject: publish.DefaultSubject,
			Stream:  publish.DefaultStream,
		},
		Batch: Batch{Workers: 4},
	}
}

// Load reads path (skipped when empty) and the given env files, defaulting
// to .env in the working directory. Missing env files are not an error.
func Load(path string, envFiles ...string) (*Config, error) {
	cfg := Default()

	if path != "" {
		data, err := os.ReadFile(path)
		if err != nil {
			return nil, fmt.Errorf("read config: %w", err)
		}
		if err := yaml.Unmarshal(data, &cfg); err != nil {
			return nil, fmt.Errorf("parse config %s: %w", path, err)
		}
	}

	// Try to load .env file, but don't fail if it doesn't exist
	_ = godotenv.Load(envFiles...)

	if err := cfg.applyEnv(); err != nil {
		return nil, err
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

func (c *Config) applyEnv() error {
	var errs []error
	str := func(key string, dst *string) {
		if v, ok := os.LookupEnv(key); ok {
			*dst = v
		}
	}
	num := func(key string, dst *int) {
		if v, ok := os.LookupEnv(key); ok {
			n, err := strconv.Atoi(v)
			if err != nil {
				errs = append(errs, fmt.Errorf("%s: %w", key, err))
				return
			}
			*dst = n
		}
	}
	float := func(key string, dst *float64) {
		if v, ok := os.LookupEnv(key); ok {
			f, err := strconv.ParseFloat(v, 64)
			if err != nil {
				errs = append(errs, fmt.Errorf("%s: %w", key, err))
				return
			}
			*dst = f
		}
	}

	float("IGC_MAX_SPEED", &c.Parse.MaxSpeed)
	float("IGC_TURNPOINT_RADIUS", &c.Parse.TurnpointRadius)
	str("IGC_FALLBACK_DATE", &c.Parse.FallbackDate)
	str("IGC_LOCALE", &c.Parse.Locale)
	if v, ok := os.LookupEnv("IGC_WITH_RAW"); ok {
		b, err := strconv.ParseBool(v)
		if err != nil {
			errs = append(errs, fmt.Errorf("IGC_WITH_RAW: %w", err))
		}
		c.Parse.WithRaw = b
	}

	str("IGC_LOG_LEVEL", &c.Log.Level)
	str("IGC_LOG_FILE", &c.Log.File)

	str("IGC_SQLITE_PATH", &c.Storage.SQLitePath)
	str("IGC_POSTGRES_HOST", &c.Storage.Postgres.Host)
	num("IGC_POSTGRES_PORT", &c.Storage.Postgres.Port)
	str("IGC_POSTGRES_DATABASE", &c.Storage.Postgres.Database)
	str("IGC_POSTGRES_USER", &c.Storage.Postgres.User)
	str("IGC_POSTGRES_PASSWORD", &c.Storage.Postgres.Password)
	str("IGC_CLICKHOUSE_HOST", &c.Storage.ClickHouse.Host)
	num("IGC_CLICKHOUSE_PORT", &c.Storage.ClickHouse.Port)
	str("IGC_CLICKHOUSE_DATABASE", &c.Storage.ClickHouse.Database)
	str("IGC_CLICKHOUSE_USER", &c.Storage.ClickHouse.User)
	str("IGC_CLICKHOUSE_PASSWORD", &c.Storage.ClickHouse.Password)

	str("IGC_NATS_URL", &c.NATS.URL)
	str("IGC_NATS_SUBJECT", &c.NATS.Subject)
	str("IGC_NATS_STREAM", &c.NATS.Stream)

	num("IGC_WORKERS", &c.Batch.Workers)

	return errors.Join(errs...)
}

// Validate checks the values that have no usable fallback.
func (c *Config) Validate() error {
	if _, err := logging.ParseLevel(c.Log.Level); err != nil {
		return err
	}
	if _, err := c.fallbackDate(); err != nil {
		return err
	}
	if c.Parse.MaxSpeed < 0 {
		return fmt.Errorf("max_speed must not be negative, got %v", c.Parse.MaxSpeed)
	}
	if c.Batch.Workers < 1 {
		return fmt.Errorf("batch workers must be at least 1, got %d", c.Batch.Workers)
	}
	return nil
}

func (c *Config) fallbackDate() (time.Time, error) {
	if c.Parse.FallbackDate == "" {
		return time.Time{}, nil
	}
	t, err := time.Parse(time.DateOnly, c.Parse.FallbackDate)
	if err != nil {
		return time.Time{}, fmt.Errorf("fallback_date: %w", err)
	}
	return t, nil
}

// ParseOptions converts the parse section into flight.Options.
func (c *Config) ParseOptions(logger *slog.Logger) (flight.Options, error) {
	date, err := c.fallbackDate()
	if err != nil {
		return flight.Options{}, err
	}
	return flight.Options{
		MaxSpeed:        c.Parse.MaxSpeed,
		TurnpointRadius: c.Parse.TurnpointRadius,
		FallbackDate:    date,
		WithRaw:         c.Parse.WithRaw,
		Locale:          c.Parse.Locale,
		Logger:          logger,
	}, nil
}
