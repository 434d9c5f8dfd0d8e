// internal/config/config.go
//
// Environment-driven configuration for the server and the CLI.
// A .env file in the working directory is loaded first (development), then
// variables are parsed into Config with their defaults.

package config

import (
	"fmt"
	"time"

	"github.com/caarlos0/env/v11"
	"github.com/joho/godotenv"

	"github.com/robalobadob/memory/internal/game"
)

// Config holds every tunable of the server.
type Config struct {
	Port           string        `env:"PORT"                envDefault:"5175"`
	LogLevel       string        `env:"LOG_LEVEL"           envDefault:"info"`
	LogPretty      bool          `env:"LOG_PRETTY"`
	ClientOrigin   string        `env:"CLIENT_ORIGIN"       envDefault:"http://localhost:5173"`
	SymbolsFile    string        `env:"MEMORY_SYMBOLS_FILE"`
	DailySalt      string        `env:"DAILY_SALT"          envDefault:"local_dev_salt"`
	RequestTimeout time.Duration `env:"REQUEST_TIMEOUT"     envDefault:"10s"`
	SessionTTL     time.Duration `env:"SESSION_TTL"         envDefault:"30m"`
	SweepInterval  time.Duration `env:"SWEEP_INTERVAL"      envDefault:"1m"`

	SettleDelay     time.Duration `env:"SETTLE_DELAY"     envDefault:"600ms"`
	MismatchDelay   time.Duration `env:"MISMATCH_DELAY"   envDefault:"1s"`
	CompletionDelay time.Duration `env:"COMPLETION_DELAY" envDefault:"800ms"`
	TickInterval    time.Duration `env:"TICK_INTERVAL"    envDefault:"1s"`
}

// Load reads .env (if present) and the process environment.
func Load() (Config, error) {
	_ = godotenv.Load()
	return Parse()
}

// Parse reads the process environment only.
func Parse() (Config, error) {
	var cfg Config
	if err := env.Parse(&cfg); err != nil {
		return Config{}, fmt.Errorf("parse env: %w", err)
	}
	if cfg.TickInterval <= 0 {
		return Config{}, fmt.Errorf("parse env: TICK_INTERVAL must be positive, got %s", cfg.TickInterval)
	}
	return cfg, nil
}

// Timing converts the delay settings for the engine.
func (c Config) Timing() game.Timing {
	return game.Timing{
		Settle:     c.SettleDelay,
		Mismatch:   c.MismatchDelay,
		Completion: c.CompletionDelay,
		Tick:       c.TickInterval,
	}
}
