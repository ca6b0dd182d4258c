// Package api parses API command flags and launches the HTTP server.
package api

import (
	"context"
	"flag"

	serverapp "github.com/wavezly/wavezly/internal/app/server"
	entrypoint "github.com/wavezly/wavezly/internal/platform/cmd"
)

// ParseConfig parses environment and flags into a server config.
func ParseConfig(fs *flag.FlagSet, args []string) (serverapp.Config, error) {
	var cfg serverapp.Config
	if err := entrypoint.ParseConfig(&cfg); err != nil {
		return serverapp.Config{}, err
	}
	fs.StringVar(&cfg.Addr, "addr", cfg.Addr, "The HTTP listen address")
	fs.StringVar(&cfg.DBPath, "db-path", cfg.DBPath, "The SQLite database path")
	if err := entrypoint.ParseArgs(fs, args); err != nil {
		return serverapp.Config{}, err
	}
	return cfg, nil
}

// Run starts the API runtime.
func Run(ctx context.Context, cfg serverapp.Config) error {
	return entrypoint.RunWithTelemetry(ctx, entrypoint.ServiceAPI, func(ctx context.Context) error {
		return serverapp.Run(ctx, cfg)
	})
}
