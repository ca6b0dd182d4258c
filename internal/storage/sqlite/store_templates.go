package sqlite

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"

	"github.com/wavezly/wavezly/internal/storage"
	"github.com/wavezly/wavezly/internal/task"
	"github.com/wavezly/wavezly/internal/template"
)

const templateColumns = `id, agency_id, name, title, notes, category, priority, due_in_days, created_at, updated_at`

// PutTemplate inserts or updates a template row.
func (s *Store) PutTemplate(ctx context.Context, record template.Template) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	if s == nil || s.sqlDB == nil {
		return fmt.Errorf("storage is not configured")
	}
	if strings.TrimSpace(record.ID) == "" {
		return fmt.Errorf("template id is required")
	}
	if strings.TrimSpace(record.AgencyID) == "" {
		return fmt.Errorf("agency id is required")
	}

	_, err := s.sqlDB.ExecContext(ctx, `
INSERT INTO task_templates (
	`+templateColumns+`
) VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
ON CONFLICT(id) DO UPDATE SET
	name = excluded.name,
	title = excluded.title,
	notes = excluded.notes,
	category = excluded.category,
	priority = excluded.priority,
	due_in_days = excluded.due_in_days,
	updated_at = excluded.updated_at
WHERE task_templates.agency_id = excluded.agency_id
`,
		record.ID,
		record.AgencyID,
		record.Name,
		record.Title,
		record.Notes,
		string(record.Category),
		string(record.Priority),
		record.DueInDays,
		toMillis(record.CreatedAt),
		toMillis(record.UpdatedAt),
	)
	if err != nil {
		return fmt.Errorf("put template: %w", err)
	}
	return nil
}

// GetTemplate fetches one template inside the agency scope.
func (s *Store) GetTemplate(ctx context.Context, agencyID string, templateID string) (template.Template, error) {
	if err := ctx.Err(); err != nil {
		return template.Template{}, err
	}
	if s == nil || s.sqlDB == nil {
		return template.Template{}, fmt.Errorf("storage is not configured")
	}
	agencyID = strings.TrimSpace(agencyID)
	templateID = strings.TrimSpace(templateID)
	if agencyID == "" {
		return template.Template{}, fmt.Errorf("agency id is required")
	}
	if templateID == "" {
		return template.Template{}, fmt.Errorf("template id is required")
	}

	row := s.sqlDB.QueryRowContext(ctx, `
SELECT `+templateColumns+`
FROM task_templates
WHERE agency_id = ? AND id = ?
`, agencyID, templateID)

	record, err := scanTemplate(row.Scan)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return template.Template{}, storage.ErrNotFound
		}
		return template.Template{}, fmt.Errorf("get template: %w", err)
	}
	return record, nil
}

// ListTemplates returns the agency's templates ordered by name.
func (s *Store) ListTemplates(ctx context.Context, agencyID string) ([]template.Template, error) {
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

	rows, err := s.sqlDB.QueryContext(ctx, `
SELECT `+templateColumns+`
FROM task_templates
WHERE agency_id = ?
ORDER BY name, id
`, agencyID)
	if err != nil {
		return nil, fmt.Errorf("list templates: %w", err)
	}
	defer rows.Close()

	var records []template.Template
	for rows.Next() {
		record, err := scanTemplate(rows.Scan)
		if err != nil {
			return nil, fmt.Errorf("scan template row: %w", err)
		}
		records = append(records, record)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate template rows: %w", err)
	}
	return records, nil
}

// DeleteTemplate removes one template inside the agency scope.
func (s *Store) DeleteTemplate(ctx context.Context, agencyID string, templateID string) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	if s == nil || s.sqlDB == nil {
		return fmt.Errorf("storage is not configured")
	}
	agencyID = strings.TrimSpace(agencyID)
	templateID = strings.TrimSpace(templateID)
	if agencyID == "" {
		return fmt.Errorf("agency id is required")
	}
	if templateID == "" {
		return fmt.Errorf("template id is required")
	}

	res, err := s.sqlDB.ExecContext(ctx, `
DELETE FROM task_templates
WHERE agency_id = ? AND id = ?
`, agencyID, templateID)
	if err != nil {
		return fmt.Errorf("delete template: %w", err)
	}
	affected, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("delete template rows affected: %w", err)
	}
	if affected == 0 {
		return storage.ErrNotFound
	}
	return nil
}

func scanTemplate(scan func(dest ...any) error) (template.Template, error) {
	var (
		record    template.Template
		category  string
		priority  string
		createdAt int64
		updatedAt int64
	)
	if err := scan(
		&record.ID,
		&record.AgencyID,
		&record.Name,
		&record.Title,
		&record.Notes,
		&category,
		&priority,
		&record.DueInDays,
		&createdAt,
		&updatedAt,
	); err != nil {
		return template.Template{}, err
	}
	record.Category = task.Category(category)
	record.Priority = task.Priority(priority)
	record.CreatedAt = fromMillis(createdAt)
	record.UpdatedAt = fromMillis(updatedAt)
	return record, nil
}
