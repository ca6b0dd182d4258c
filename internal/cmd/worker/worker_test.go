package worker

import (
	"flag"
	"testing"
	"time"
)

func TestParseConfig_ParsesDefaultsAndFlags(t *testing.T) {
	fs := flag.NewFlagSet("worker", flag.ContinueOnError)
	t.Setenv("WAVEZLY_DB_PATH", "env.db")

	cfg, err := ParseConfig(fs, []string{"-poll-interval", "1m", "-consumer", "digest-worker-2"})
	if err != nil {
		t.Fatalf("parse config: %v", err)
	}
	if cfg.DBPath != "env.db" {
		t.Fatalf("db path = %q, want %q", cfg.DBPath, "env.db")
	}
	if cfg.PollInterval != time.Minute {
		t.Fatalf("poll interval = %v, want 1m", cfg.PollInterval)
	}
	if cfg.Consumer != "digest-worker-2" {
		t.Fatalf("consumer = %q", cfg.Consumer)
	}
}

func TestParseConfig_Defaults(t *testing.T) {
	fs := flag.NewFlagSet("worker", flag.ContinueOnError)

	cfg, err := ParseConfig(fs, nil)
	if err != nil {
		t.Fatalf("parse config: %v", err)
	}
	if cfg.DBPath != "data/wavezly.db" {
		t.Fatalf("db path = %q", cfg.DBPath)
	}
	if cfg.PollInterval != 15*time.Minute {
		t.Fatalf("poll interval = %v", cfg.PollInterval)
	}
	if cfg.LookbackDays != 3 {
		t.Fatalf("lookback days = %d, want 3", cfg.LookbackDays)
	}
	if cfg.Consumer != "digest-worker" {
		t.Fatalf("consumer = %q", cfg.Consumer)
	}
}
