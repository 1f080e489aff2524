// Package config loads the process's configuration from environment
// variables, with command-line flags able to override them.
package config

import (
	"time"

	"github.com/caarlos0/env/v6"
	"github.com/spf13/pflag"
)

// Config is the process-level configuration for the flowcached server.
// CACHE_LISTEN_ADDR and CACHE_SWEEP_BATCH_SIZE are ambient additions beyond
// the core engine's own configuration knobs.
type Config struct {
	MaxSize        int           `env:"CACHE_MAX_SIZE" envDefault:"1000"`
	DefaultTTL     time.Duration `env:"CACHE_DEFAULT_TTL" envDefault:"0s"`
	SweepInterval  time.Duration `env:"CACHE_SWEEP_INTERVAL" envDefault:"5s"`
	SweepBatchSize int           `env:"CACHE_SWEEP_BATCH_SIZE" envDefault:"1024"`
	ListenAddr     string        `env:"CACHE_LISTEN_ADDR" envDefault:":8080"`
	Dev            bool          `env:"CACHE_DEV_LOGGING" envDefault:"false"`
}

// Load reads Config from the environment and then applies any flags the
// caller passed on the command line, in that precedence order — flags
// beat env vars, env vars beat the envDefault tags above.
func Load(args []string) (Config, error) {
	var cfg Config
	if err := env.Parse(&cfg); err != nil {
		return Config{}, err
	}

	fs := pflag.NewFlagSet("flowcached", pflag.ContinueOnError)
	fs.IntVar(&cfg.MaxSize, "max-size", cfg.MaxSize, "maximum number of entries the cache may hold")
	fs.DurationVar(&cfg.DefaultTTL, "default-ttl", cfg.DefaultTTL, "default TTL applied to Put when none is given (0 = never expires)")
	fs.DurationVar(&cfg.SweepInterval, "sweep-interval", cfg.SweepInterval, "interval between background sweeps (0 disables the sweeper)")
	fs.IntVar(&cfg.SweepBatchSize, "sweep-batch-size", cfg.SweepBatchSize, "maximum entries inspected per sweeper lock acquisition")
	fs.StringVar(&cfg.ListenAddr, "listen-addr", cfg.ListenAddr, "HTTP listen address")
	fs.BoolVar(&cfg.Dev, "dev", cfg.Dev, "use a human-readable development logger instead of JSON")

	if err := fs.Parse(args); err != nil {
		return Config{}, err
	}
	return cfg, nil
}
