// Package bootstrap parses bootstrap command flags and seeds the first
// agency owner.
package bootstrap

import (
	"context"
	"flag"
	"fmt"
	"log"
	"time"

	bootstrapapp "github.com/wavezly/wavezly/internal/app/bootstrap"
	entrypoint "github.com/wavezly/wavezly/internal/platform/cmd"
	"github.com/wavezly/wavezly/internal/storage/sqlite"
)

// Config holds bootstrap command configuration. The PIN is env-only so it
// never shows up in process listings.
type Config struct {
	DBPath      string `env:"WAVEZLY_DB_PATH" envDefault:"data/wavezly.db"`
	AgencyName  string `env:"WAVEZLY_BOOTSTRAP_AGENCY"`
	Email       string `env:"WAVEZLY_BOOTSTRAP_EMAIL"`
	DisplayName string `env:"WAVEZLY_BOOTSTRAP_NAME"`
	PIN         string `env:"WAVEZLY_BOOTSTRAP_PIN"`
}

// ParseConfig parses environment and flags into a Config.
func ParseConfig(fs *flag.FlagSet, args []string) (Config, error) {
	var cfg Config
	if err := entrypoint.ParseConfig(&cfg); err != nil {
		return Config{}, err
	}
	fs.StringVar(&cfg.DBPath, "db-path", cfg.DBPath, "The SQLite database path")
	fs.StringVar(&cfg.AgencyName, "agency", cfg.AgencyName, "Name of the agency to create")
	fs.StringVar(&cfg.Email, "email", cfg.Email, "Owner login email")
	fs.StringVar(&cfg.DisplayName, "name", cfg.DisplayName, "Owner display name")
	if err := entrypoint.ParseArgs(fs, args); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

// Run seeds the agency and owner and logs the created identifiers.
func Run(ctx context.Context, cfg Config) error {
	store, err := sqlite.Open(cfg.DBPath)
	if err != nil {
		return fmt.Errorf("open store: %w", err)
	}
	defer store.Close()

	result, err := bootstrapapp.Run(ctx, store, bootstrapapp.Input{
		AgencyName:  cfg.AgencyName,
		Email:       cfg.Email,
		DisplayName: cfg.DisplayName,
		PIN:         cfg.PIN,
	}, time.Now())
	if err != nil {
		return err
	}

	log.Printf("created agency %s with owner %s", result.AgencyID, result.UserID)
	return nil
}
