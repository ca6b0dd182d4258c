// Package worker generates daily digests for every agency on a schedule.
package worker

import (
	"context"
	"errors"
	"fmt"
	"log"
	"time"

	"github.com/wavezly/wavezly/internal/activity"
	"github.com/wavezly/wavezly/internal/digest"
	"github.com/wavezly/wavezly/internal/platform/id"
	"github.com/wavezly/wavezly/internal/storage"
)

const (
	// defaultPollInterval bounds how often the worker looks for missing digests.
	defaultPollInterval = 15 * time.Minute
	// defaultLookbackDays covers today plus enough history to backfill days
	// the worker was down for.
	defaultLookbackDays = 3
	// defaultConsumer names the worker in logs when none is configured.
	defaultConsumer = "digest-worker"
)

// Options tunes the digest loop.
type Options struct {
	// PollInterval is how often the worker checks for missing digests.
	PollInterval time.Duration
	// LookbackDays is how many days, ending today, each pass covers.
	LookbackDays int
	// Consumer names this worker instance in logs.
	Consumer string
}

// Worker composes one digest per agency per day.
type Worker struct {
	store        storage.Store
	pollInterval time.Duration
	lookbackDays int
	consumer     string
	now          func() time.Time
}

// New builds a worker over the given store.
func New(store storage.Store, opts Options) *Worker {
	if opts.PollInterval <= 0 {
		opts.PollInterval = defaultPollInterval
	}
	if opts.LookbackDays <= 0 {
		opts.LookbackDays = defaultLookbackDays
	}
	if opts.Consumer == "" {
		opts.Consumer = defaultConsumer
	}
	return &Worker{
		store:        store,
		pollInterval: opts.PollInterval,
		lookbackDays: opts.LookbackDays,
		consumer:     opts.Consumer,
		now:          time.Now,
	}
}

// Run generates digests immediately and then on every tick until the
// context ends.
func (w *Worker) Run(ctx context.Context) error {
	if w == nil || w.store == nil {
		return errors.New("worker store is required")
	}
	if generated, err := w.RunOnce(ctx); err != nil {
		log.Printf("%s: generate digests: %v", w.consumer, err)
	} else if generated > 0 {
		log.Printf("%s: generated %d digests", w.consumer, generated)
	}

	ticker := time.NewTicker(w.pollInterval)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			return nil
		case <-ticker.C:
			generated, err := w.RunOnce(ctx)
			if err != nil {
				log.Printf("%s: generate digests: %v", w.consumer, err)
				continue
			}
			if generated > 0 {
				log.Printf("%s: generated %d digests", w.consumer, generated)
			}
		}
	}
}

// RunOnce composes the digest for every agency and every date in the
// lookback window that lacks one, so a worker that was down across
// midnight still backfills the missed days. Returns how many were written.
func (w *Worker) RunOnce(ctx context.Context) (int, error) {
	now := w.now().UTC()

	agencyIDs, err := w.store.ListAgencyIDs(ctx)
	if err != nil {
		return 0, fmt.Errorf("list agencies: %w", err)
	}

	generated := 0
	for offset := w.lookbackDays - 1; offset >= 0; offset-- {
		asOf := now.AddDate(0, 0, -offset)
		date := asOf.Format(digest.DateFormat)
		for _, agencyID := range agencyIDs {
			wrote, err := w.generateFor(ctx, agencyID, date, asOf)
			if err != nil {
				log.Printf("%s: digest for agency %s on %s: %v", w.consumer, agencyID, date, err)
				continue
			}
			if wrote {
				generated++
			}
		}
	}
	return generated, nil
}

// generateFor writes the digest for one agency unless it already exists.
func (w *Worker) generateFor(ctx context.Context, agencyID string, date string, now time.Time) (bool, error) {
	if _, err := w.store.GetDigest(ctx, agencyID, date); err == nil {
		return false, nil
	} else if !errors.Is(err, storage.ErrNotFound) {
		return false, fmt.Errorf("check digest: %w", err)
	}

	tasks, err := w.store.ListTasks(ctx, agencyID, storage.TaskFilter{})
	if err != nil {
		return false, fmt.Errorf("list tasks: %w", err)
	}

	digestID, err := id.NewID()
	if err != nil {
		return false, err
	}
	record := digest.Compose(digestID, agencyID, tasks, now)
	if err := w.store.UpsertDigest(ctx, record); err != nil {
		return false, fmt.Errorf("upsert digest: %w", err)
	}

	// The audit trail marks digest generation with no actor.
	entryID, err := id.NewID()
	if err != nil {
		return true, err
	}
	entry, err := activity.New(entryID, agencyID, "", activity.EntityDigest, record.ID, activity.ActionDigested, date, now)
	if err != nil {
		return true, fmt.Errorf("build digest activity: %w", err)
	}
	if err := w.store.AppendActivity(ctx, entry); err != nil {
		log.Printf("%s: append digest activity: %v", w.consumer, err)
	}
	return true, nil
}
