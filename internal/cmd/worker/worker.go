// Package worker parses worker command flags and launches the digest worker.
package worker

import (
	"context"
	"flag"
	"fmt"
	"time"

	workerapp "github.com/wavezly/wavezly/internal/app/worker"
	entrypoint "github.com/wavezly/wavezly/internal/platform/cmd"
	"github.com/wavezly/wavezly/internal/storage/sqlite"
)

// Config holds worker command configuration.
type Config struct {
	DBPath       string        `env:"WAVEZLY_DB_PATH" envDefault:"data/wavezly.db"`
	PollInterval time.Duration `env:"WAVEZLY_WORKER_POLL_INTERVAL" envDefault:"15m"`
	LookbackDays int           `env:"WAVEZLY_WORKER_LOOKBACK_DAYS" envDefault:"3"`
	Consumer     string        `env:"WAVEZLY_WORKER_CONSUMER" envDefault:"digest-worker"`
}

// ParseConfig parses environment and flags into a Config.
func ParseConfig(fs *flag.FlagSet, args []string) (Config, error) {
	var cfg Config
	if err := entrypoint.ParseConfig(&cfg); err != nil {
		return Config{}, err
	}
	fs.StringVar(&cfg.DBPath, "db-path", cfg.DBPath, "The SQLite database path")
	fs.DurationVar(&cfg.PollInterval, "poll-interval", cfg.PollInterval, "Digest generation poll interval")
	fs.IntVar(&cfg.LookbackDays, "lookback-days", cfg.LookbackDays, "How many days, ending today, each pass covers")
	fs.StringVar(&cfg.Consumer, "consumer", cfg.Consumer, "Worker instance name used in logs")
	if err := entrypoint.ParseArgs(fs, args); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

// Run starts the worker runtime.
func Run(ctx context.Context, cfg Config) error {
	return entrypoint.RunWithTelemetry(ctx, entrypoint.ServiceWorker, func(ctx context.Context) error {
		store, err := sqlite.Open(cfg.DBPath)
		if err != nil {
			return fmt.Errorf("open store: %w", err)
		}
		defer store.Close()
		return workerapp.New(store, workerapp.Options{
			PollInterval: cfg.PollInterval,
			LookbackDays: cfg.LookbackDays,
			Consumer:     cfg.Consumer,
		}).Run(ctx)
	})
}
