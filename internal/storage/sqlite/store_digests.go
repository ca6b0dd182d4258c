package sqlite

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"

	"github.com/wavezly/wavezly/internal/digest"
	"github.com/wavezly/wavezly/internal/storage"
)

// defaultDigestLimit bounds recent-digest listing.
const defaultDigestLimit = 30

// UpsertDigest writes the digest for (agency, date). Regenerating the same
// day replaces the counts in place so at most one row exists per date.
func (s *Store) UpsertDigest(ctx context.Context, record digest.DailyDigest) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	if s == nil || s.sqlDB == nil {
		return fmt.Errorf("storage is not configured")
	}
	if strings.TrimSpace(record.ID) == "" {
		return fmt.Errorf("digest id is required")
	}
	if strings.TrimSpace(record.AgencyID) == "" {
		return fmt.Errorf("agency id is required")
	}
	if _, err := digest.ParseDate(record.Date); err != nil {
		return err
	}

	titles, err := encodeTitles(record.OverdueTitles)
	if err != nil {
		return err
	}

	_, err = s.sqlDB.ExecContext(ctx, `
INSERT INTO daily_digests (
	id, agency_id, date, open_count, overdue_count, due_today_count, completed_yesterday, overdue_titles, generated_at
) VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)
ON CONFLICT(agency_id, date) DO UPDATE SET
	open_count = excluded.open_count,
	overdue_count = excluded.overdue_count,
	due_today_count = excluded.due_today_count,
	completed_yesterday = excluded.completed_yesterday,
	overdue_titles = excluded.overdue_titles,
	generated_at = excluded.generated_at
`,
		record.ID,
		record.AgencyID,
		record.Date,
		record.OpenCount,
		record.OverdueCount,
		record.DueTodayCount,
		record.CompletedYesterday,
		titles,
		toMillis(record.GeneratedAt),
	)
	if err != nil {
		return fmt.Errorf("upsert digest: %w", err)
	}
	return nil
}

// GetDigest fetches the digest for one date inside the agency scope.
func (s *Store) GetDigest(ctx context.Context, agencyID string, date string) (digest.DailyDigest, error) {
	if err := ctx.Err(); err != nil {
		return digest.DailyDigest{}, err
	}
	if s == nil || s.sqlDB == nil {
		return digest.DailyDigest{}, fmt.Errorf("storage is not configured")
	}
	agencyID = strings.TrimSpace(agencyID)
	if agencyID == "" {
		return digest.DailyDigest{}, fmt.Errorf("agency id is required")
	}
	date, err := digest.ParseDate(date)
	if err != nil {
		return digest.DailyDigest{}, err
	}

	row := s.sqlDB.QueryRowContext(ctx, `
SELECT id, agency_id, date, open_count, overdue_count, due_today_count, completed_yesterday, overdue_titles, generated_at
FROM daily_digests
WHERE agency_id = ? AND date = ?
`, agencyID, date)

	record, err := scanDigest(row.Scan)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return digest.DailyDigest{}, storage.ErrNotFound
		}
		return digest.DailyDigest{}, fmt.Errorf("get digest: %w", err)
	}
	return record, nil
}

// ListDigests returns the agency's most recent digests, newest first.
func (s *Store) ListDigests(ctx context.Context, agencyID string, limit int) ([]digest.DailyDigest, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	if s == nil || s.sqlDB == nil {
		return nil, fmt.Errorf("storage is not configured")
	}
	agencyID = strings.TrimSpace(agencyID)
	if agencyID == "" {
		return nil, fmt.Errorf("agency id is required")
	}
	if limit <= 0 {
		limit = defaultDigestLimit
	}

	rows, err := s.sqlDB.QueryContext(ctx, `
SELECT id, agency_id, date, open_count, overdue_count, due_today_count, completed_yesterday, overdue_titles, generated_at
FROM daily_digests
WHERE agency_id = ?
ORDER BY date DESC
LIMIT ?
`, agencyID, limit)
	if err != nil {
		return nil, fmt.Errorf("list digests: %w", err)
	}
	defer rows.Close()

	var records []digest.DailyDigest
	for rows.Next() {
		record, err := scanDigest(rows.Scan)
		if err != nil {
			return nil, fmt.Errorf("scan digest row: %w", err)
		}
		records = append(records, record)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate digest rows: %w", err)
	}
	return records, nil
}

func scanDigest(scan func(dest ...any) error) (digest.DailyDigest, error) {
	var (
		record      digest.DailyDigest
		titlesRaw   string
		generatedAt int64
	)
	if err := scan(
		&record.ID,
		&record.AgencyID,
		&record.Date,
		&record.OpenCount,
		&record.OverdueCount,
		&record.DueTodayCount,
		&record.CompletedYesterday,
		&titlesRaw,
		&generatedAt,
	); err != nil {
		return digest.DailyDigest{}, err
	}
	titles, err := decodeTitles(titlesRaw)
	if err != nil {
		return digest.DailyDigest{}, err
	}
	record.OverdueTitles = titles
	record.GeneratedAt = fromMillis(generatedAt)
	return record, nil
}
