package sqlite

import (
	"context"
	"fmt"
	"strings"

	"github.com/wavezly/wavezly/internal/activity"
	"github.com/wavezly/wavezly/internal/storage"
)

// defaultActivityLimit bounds listing when the caller does not set one.
const defaultActivityLimit = 50

// maxActivityLimit caps how many entries a single listing returns.
const maxActivityLimit = 200

// AppendActivity inserts one audit-trail entry. Entries are never updated.
func (s *Store) AppendActivity(ctx context.Context, record activity.Entry) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	if s == nil || s.sqlDB == nil {
		return fmt.Errorf("storage is not configured")
	}
	if strings.TrimSpace(record.ID) == "" {
		return fmt.Errorf("activity id is required")
	}
	if strings.TrimSpace(record.AgencyID) == "" {
		return fmt.Errorf("agency id is required")
	}

	_, err := s.sqlDB.ExecContext(ctx, `
INSERT INTO activity_entries (
	id, agency_id, actor_id, entity, entity_id, action, detail, created_at
) VALUES (?, ?, ?, ?, ?, ?, ?, ?)
`,
		record.ID,
		record.AgencyID,
		record.ActorID,
		string(record.Entity),
		record.EntityID,
		string(record.Action),
		record.Detail,
		toMillis(record.CreatedAt),
	)
	if err != nil {
		return fmt.Errorf("append activity: %w", err)
	}
	return nil
}

// ListActivity returns the agency's newest entries first.
func (s *Store) ListActivity(ctx context.Context, agencyID string, filter storage.ActivityFilter) ([]activity.Entry, error) {
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

	limit := filter.Limit
	if limit <= 0 {
		limit = defaultActivityLimit
	}
	if limit > maxActivityLimit {
		limit = maxActivityLimit
	}

	query := `
SELECT id, agency_id, actor_id, entity, entity_id, action, detail, created_at
FROM activity_entries
WHERE agency_id = ?`
	args := []any{agencyID}

	if filter.Entity != "" {
		query += " AND entity = ?"
		args = append(args, string(filter.Entity))
	}
	if strings.TrimSpace(filter.EntityID) != "" {
		query += " AND entity_id = ?"
		args = append(args, strings.TrimSpace(filter.EntityID))
	}

	query += `
ORDER BY created_at DESC, id DESC
LIMIT ?`
	args = append(args, limit)

	rows, err := s.sqlDB.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("list activity: %w", err)
	}
	defer rows.Close()

	var records []activity.Entry
	for rows.Next() {
		var (
			record    activity.Entry
			entity    string
			action    string
			createdAt int64
		)
		if err := rows.Scan(
			&record.ID,
			&record.AgencyID,
			&record.ActorID,
			&entity,
			&record.EntityID,
			&action,
			&record.Detail,
			&createdAt,
		); err != nil {
			return nil, fmt.Errorf("scan activity row: %w", err)
		}
		record.Entity = activity.EntityKind(entity)
		record.Action = activity.Action(action)
		record.CreatedAt = fromMillis(createdAt)
		records = append(records, record)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate activity rows: %w", err)
	}
	return records, nil
}
