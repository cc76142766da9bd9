// Package config loads hopbench's process settings from the environment and
// the benchmark definitions from YAML documents.
package config

import (
	"time"

	"github.com/caarlos0/env/v10"
)

// Config holds the process settings.
type Config struct {
	Environment string `env:"ENV" envDefault:"development"`

	// ConfigDir holds general.yaml, problems.yaml and optimizers.yaml.
	ConfigDir string `env:"CONFIG_DIR" envDefault:"config"`
	// ResultsDir is the report root; every execution writes into a
	// timestamped sub-directory.
	ResultsDir string `env:"RESULTS_DIR" envDefault:"results"`

	// Seed is the base random seed, 0 for a time based one.
	Seed int64 `env:"SEED" envDefault:"0"`
	// Workers is the number of jobs executed in parallel.
	Workers int `env:"WORKERS" envDefault:"1"`

	HTTP struct {
		// Addr enables the status server when set.
		Addr            string        `env:"HTTP_ADDR"`
		Linger          bool          `env:"HTTP_LINGER" envDefault:"false"`
		ReadTimeout     time.Duration `env:"HTTP_READ_TIMEOUT" envDefault:"30s"`
		WriteTimeout    time.Duration `env:"HTTP_WRITE_TIMEOUT" envDefault:"30s"`
		IdleTimeout     time.Duration `env:"HTTP_IDLE_TIMEOUT" envDefault:"120s"`
		ShutdownTimeout time.Duration `env:"HTTP_SHUTDOWN_TIMEOUT" envDefault:"30s"`
	}
	Logging struct {
		// Level defaults to debug in development and info elsewhere.
		Level  string `env:"LOG_LEVEL"`
		Format string `env:"LOG_FORMAT" envDefault:"json"`
		Output string `env:"LOG_OUTPUT" envDefault:"stderr"`
	}
}

// Load parses the process settings from the environment.
func Load() (*Config, error) {
	cfg := &Config{}

	if err := env.Parse(cfg); err != nil {
		return nil, err
	}

	if cfg.Logging.Level == "" {
		cfg.Logging.Level = "info"
		if cfg.Environment == "development" {
			cfg.Logging.Level = "debug"
		}
	}
	if cfg.Workers < 1 {
		cfg.Workers = 1
	}

	return cfg, nil
}
