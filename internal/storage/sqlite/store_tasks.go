package sqlite

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"

	"github.com/wavezly/wavezly/internal/storage"
	"github.com/wavezly/wavezly/internal/task"
)

const taskColumns = `id, agency_id, title, notes, assignee_id, client_name, category, priority, status, due_at, completed_at, template_id, created_at, updated_at`

// PutTask inserts or updates a task row.
func (s *Store) PutTask(ctx context.Context, record task.Task) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	if s == nil || s.sqlDB == nil {
		return fmt.Errorf("storage is not configured")
	}
	if strings.TrimSpace(record.ID) == "" {
		return fmt.Errorf("task id is required")
	}
	if strings.TrimSpace(record.AgencyID) == "" {
		return fmt.Errorf("agency id is required")
	}

	_, err := s.sqlDB.ExecContext(ctx, `
INSERT INTO tasks (
	`+taskColumns+`
) VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
ON CONFLICT(id) DO UPDATE SET
	title = excluded.title,
	notes = excluded.notes,
	assignee_id = excluded.assignee_id,
	client_name = excluded.client_name,
	category = excluded.category,
	priority = excluded.priority,
	status = excluded.status,
	due_at = excluded.due_at,
	completed_at = excluded.completed_at,
	template_id = excluded.template_id,
	updated_at = excluded.updated_at
WHERE tasks.agency_id = excluded.agency_id
`,
		record.ID,
		record.AgencyID,
		record.Title,
		record.Notes,
		record.AssigneeID,
		record.ClientName,
		string(record.Category),
		string(record.Priority),
		string(record.Status),
		nullableMillis(record.DueAt),
		nullableMillis(record.CompletedAt),
		record.TemplateID,
		toMillis(record.CreatedAt),
		toMillis(record.UpdatedAt),
	)
	if err != nil {
		return fmt.Errorf("put task: %w", err)
	}
	return nil
}

// GetTask fetches one task inside the agency scope.
func (s *Store) GetTask(ctx context.Context, agencyID string, taskID string) (task.Task, error) {
	if err := ctx.Err(); err != nil {
		return task.Task{}, err
	}
	if s == nil || s.sqlDB == nil {
		return task.Task{}, fmt.Errorf("storage is not configured")
	}
	agencyID = strings.TrimSpace(agencyID)
	taskID = strings.TrimSpace(taskID)
	if agencyID == "" {
		return task.Task{}, fmt.Errorf("agency id is required")
	}
	if taskID == "" {
		return task.Task{}, fmt.Errorf("task id is required")
	}

	row := s.sqlDB.QueryRowContext(ctx, `
SELECT `+taskColumns+`
FROM tasks
WHERE agency_id = ? AND id = ?
`, agencyID, taskID)

	record, err := scanTask(row.Scan)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return task.Task{}, storage.ErrNotFound
		}
		return task.Task{}, fmt.Errorf("get task: %w", err)
	}
	return record, nil
}

// ListTasks returns the agency's tasks matching the filter, ordered by due
// date (tasks without one last) then priority.
func (s *Store) ListTasks(ctx context.Context, agencyID string, filter storage.TaskFilter) ([]task.Task, error) {
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

	query := `
SELECT ` + taskColumns + `
FROM tasks
WHERE agency_id = ?`
	args := []any{agencyID}

	if filter.Status != "" {
		query += " AND status = ?"
		args = append(args, string(filter.Status))
	}
	if filter.Category != "" {
		query += " AND category = ?"
		args = append(args, string(filter.Category))
	}
	if strings.TrimSpace(filter.AssigneeID) != "" {
		query += " AND assignee_id = ?"
		args = append(args, strings.TrimSpace(filter.AssigneeID))
	}
	if filter.DueBefore != nil {
		query += " AND due_at IS NOT NULL AND due_at < ?"
		args = append(args, toMillis(*filter.DueBefore))
	}
	if filter.OverdueAt != nil {
		query += " AND due_at IS NOT NULL AND due_at < ? AND status IN ('open', 'in_progress')"
		args = append(args, toMillis(*filter.OverdueAt))
	}
	if q := strings.TrimSpace(filter.Query); q != "" {
		query += " AND title LIKE ? ESCAPE '\\'"
		args = append(args, "%"+escapeLike(q)+"%")
	}

	query += `
ORDER BY due_at IS NULL, due_at,
	CASE priority WHEN 'urgent' THEN 0 WHEN 'high' THEN 1 WHEN 'normal' THEN 2 ELSE 3 END,
	created_at`

	rows, err := s.sqlDB.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("list tasks: %w", err)
	}
	defer rows.Close()

	var records []task.Task
	for rows.Next() {
		record, err := scanTask(rows.Scan)
		if err != nil {
			return nil, fmt.Errorf("scan task row: %w", err)
		}
		records = append(records, record)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate task rows: %w", err)
	}
	return records, nil
}

// DeleteTask removes one task inside the agency scope.
func (s *Store) DeleteTask(ctx context.Context, agencyID string, taskID string) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	if s == nil || s.sqlDB == nil {
		return fmt.Errorf("storage is not configured")
	}
	agencyID = strings.TrimSpace(agencyID)
	taskID = strings.TrimSpace(taskID)
	if agencyID == "" {
		return fmt.Errorf("agency id is required")
	}
	if taskID == "" {
		return fmt.Errorf("task id is required")
	}

	res, err := s.sqlDB.ExecContext(ctx, `
DELETE FROM tasks
WHERE agency_id = ? AND id = ?
`, agencyID, taskID)
	if err != nil {
		return fmt.Errorf("delete task: %w", err)
	}
	affected, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("delete task rows affected: %w", err)
	}
	if affected == 0 {
		return storage.ErrNotFound
	}
	return nil
}

func scanTask(scan func(dest ...any) error) (task.Task, error) {
	var (
		record      task.Task
		category    string
		priority    string
		status      string
		dueAt       sql.NullInt64
		completedAt sql.NullInt64
		createdAt   int64
		updatedAt   int64
	)
	if err := scan(
		&record.ID,
		&record.AgencyID,
		&record.Title,
		&record.Notes,
		&record.AssigneeID,
		&record.ClientName,
		&category,
		&priority,
		&status,
		&dueAt,
		&completedAt,
		&record.TemplateID,
		&createdAt,
		&updatedAt,
	); err != nil {
		return task.Task{}, err
	}
	record.Category = task.Category(category)
	record.Priority = task.Priority(priority)
	record.Status = task.Status(status)
	record.DueAt = fromNullableMillis(dueAt)
	record.CompletedAt = fromNullableMillis(completedAt)
	record.CreatedAt = fromMillis(createdAt)
	record.UpdatedAt = fromMillis(updatedAt)
	return record, nil
}

// escapeLike escapes LIKE metacharacters in user-supplied search text.
func escapeLike(value string) string {
	value = strings.ReplaceAll(value, `\`, `\\`)
	value = strings.ReplaceAll(value, "%", `\%`)
	value = strings.ReplaceAll(value, "_", `\_`)
	return value
}
