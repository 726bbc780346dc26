// Package config loads server settings from the environment.
package config

import (
	"fmt"
	"time"

	"github.com/caarlos0/env/v11"
)

// Config is the runtime configuration for the togore server.
type Config struct {
	Addr     string `env:"TOGORE_ADDR" envDefault:":8081"`
	SaveID   string `env:"TOGORE_SAVE_ID" envDefault:"togore_tuna_hunt_v2"`
	Store    string `env:"TOGORE_STORE" envDefault:"file"`
	DataDir  string `env:"TOGORE_DATA_DIR" envDefault:"data"`
	LogLevel string `env:"TOGORE_LOG_LEVEL" envDefault:"info"`

	// Catalog is a yaml path; empty selects the embedded catalog.
	Catalog      string `env:"TOGORE_CATALOG"`
	WatchCatalog bool   `env:"TOGORE_WATCH_CATALOG" envDefault:"true"`

	GeminiAPIKey     string        `env:"GEMINI_API_KEY"`
	GeminiModel      string        `env:"TOGORE_GEMINI_MODEL" envDefault:"gemini-2.5-flash"`
	AppraisalTimeout time.Duration `env:"TOGORE_APPRAISAL_TIMEOUT" envDefault:"8s"`
	AppraisalRPS     float64       `env:"TOGORE_APPRAISAL_RPS" envDefault:"1"`

	IncomeInterval time.Duration `env:"TOGORE_INCOME_INTERVAL" envDefault:"1s"`
	AllowedOrigin  string        `env:"TOGORE_ALLOWED_ORIGIN" envDefault:"*"`
}

// Load parses the environment and validates the result.
func Load() (Config, error) {
	var cfg Config
	if err := env.Parse(&cfg); err != nil {
		return Config{}, fmt.Errorf("parse env: %w", err)
	}
	if err := cfg.Validate(); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

// Validate rejects settings the server cannot run with.
func (c Config) Validate() error {
	switch c.Store {
	case "file", "sqlite", "memory":
	default:
		return fmt.Errorf("unknown store driver %q", c.Store)
	}
	if c.SaveID == "" {
		return fmt.Errorf("save id is required")
	}
	if c.IncomeInterval <= 0 {
		return fmt.Errorf("income interval must be positive, got %s", c.IncomeInterval)
	}
	if c.AppraisalTimeout <= 0 {
		return fmt.Errorf("appraisal timeout must be positive, got %s", c.AppraisalTimeout)
	}
	if c.AppraisalRPS <= 0 {
		return fmt.Errorf("appraisal rate must be positive, got %v", c.AppraisalRPS)
	}
	return nil
}
