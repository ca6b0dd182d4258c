package sqlite

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"

	"github.com/wavezly/wavezly/internal/auth"
	"github.com/wavezly/wavezly/internal/storage"
)

// PutUser inserts or updates a user row. Emails are unique across the
// system; inserting a duplicate returns storage.ErrConflict.
func (s *Store) PutUser(ctx context.Context, record auth.User) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	if s == nil || s.sqlDB == nil {
		return fmt.Errorf("storage is not configured")
	}
	if strings.TrimSpace(record.ID) == "" {
		return fmt.Errorf("user id is required")
	}
	if strings.TrimSpace(record.Email) == "" {
		return fmt.Errorf("email is required")
	}

	_, err := s.sqlDB.ExecContext(ctx, `
INSERT INTO users (id, email, display_name, pin_hash, created_at, updated_at)
VALUES (?, ?, ?, ?, ?, ?)
ON CONFLICT(id) DO UPDATE SET
	email = excluded.email,
	display_name = excluded.display_name,
	pin_hash = excluded.pin_hash,
	updated_at = excluded.updated_at
`,
		record.ID,
		record.Email,
		record.DisplayName,
		record.PINHash,
		toMillis(record.CreatedAt),
		toMillis(record.UpdatedAt),
	)
	if err != nil {
		if isUniqueConstraintError(err) {
			return storage.ErrConflict
		}
		return fmt.Errorf("put user: %w", err)
	}
	return nil
}

// GetUser fetches one user by ID.
func (s *Store) GetUser(ctx context.Context, userID string) (auth.User, error) {
	if err := ctx.Err(); err != nil {
		return auth.User{}, err
	}
	if s == nil || s.sqlDB == nil {
		return auth.User{}, fmt.Errorf("storage is not configured")
	}
	userID = strings.TrimSpace(userID)
	if userID == "" {
		return auth.User{}, fmt.Errorf("user id is required")
	}

	row := s.sqlDB.QueryRowContext(ctx, `
SELECT id, email, display_name, pin_hash, created_at, updated_at
FROM users
WHERE id = ?
`, userID)
	return scanUser(row.Scan)
}

// GetUserByEmail fetches one user by normalized email.
func (s *Store) GetUserByEmail(ctx context.Context, email string) (auth.User, error) {
	if err := ctx.Err(); err != nil {
		return auth.User{}, err
	}
	if s == nil || s.sqlDB == nil {
		return auth.User{}, fmt.Errorf("storage is not configured")
	}
	email = strings.TrimSpace(email)
	if email == "" {
		return auth.User{}, fmt.Errorf("email is required")
	}

	row := s.sqlDB.QueryRowContext(ctx, `
SELECT id, email, display_name, pin_hash, created_at, updated_at
FROM users
WHERE email = ?
`, email)
	return scanUser(row.Scan)
}

// PutResetRequest stores a pending PIN reset keyed by token digest.
func (s *Store) PutResetRequest(ctx context.Context, record auth.ResetRequest) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	if s == nil || s.sqlDB == nil {
		return fmt.Errorf("storage is not configured")
	}
	if strings.TrimSpace(record.UserID) == "" {
		return fmt.Errorf("user id is required")
	}
	if strings.TrimSpace(record.TokenDigest) == "" {
		return fmt.Errorf("token digest is required")
	}

	_, err := s.sqlDB.ExecContext(ctx, `
INSERT INTO pin_reset_requests (token_digest, user_id, expires_at, created_at)
VALUES (?, ?, ?, ?)
ON CONFLICT(token_digest) DO UPDATE SET
	expires_at = excluded.expires_at
`,
		record.TokenDigest,
		record.UserID,
		toMillis(record.ExpiresAt),
		toMillis(record.CreatedAt),
	)
	if err != nil {
		return fmt.Errorf("put reset request: %w", err)
	}
	return nil
}

// GetResetRequestByDigest fetches a pending reset by token digest.
func (s *Store) GetResetRequestByDigest(ctx context.Context, tokenDigest string) (auth.ResetRequest, error) {
	if err := ctx.Err(); err != nil {
		return auth.ResetRequest{}, err
	}
	if s == nil || s.sqlDB == nil {
		return auth.ResetRequest{}, fmt.Errorf("storage is not configured")
	}
	tokenDigest = strings.TrimSpace(tokenDigest)
	if tokenDigest == "" {
		return auth.ResetRequest{}, fmt.Errorf("token digest is required")
	}

	row := s.sqlDB.QueryRowContext(ctx, `
SELECT token_digest, user_id, expires_at, created_at
FROM pin_reset_requests
WHERE token_digest = ?
`, tokenDigest)

	var record auth.ResetRequest
	var expiresAt, createdAt int64
	if err := row.Scan(&record.TokenDigest, &record.UserID, &expiresAt, &createdAt); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return auth.ResetRequest{}, storage.ErrNotFound
		}
		return auth.ResetRequest{}, fmt.Errorf("get reset request: %w", err)
	}
	record.ExpiresAt = fromMillis(expiresAt)
	record.CreatedAt = fromMillis(createdAt)
	return record, nil
}

// DeleteResetRequest consumes a reset request after use.
func (s *Store) DeleteResetRequest(ctx context.Context, tokenDigest string) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	if s == nil || s.sqlDB == nil {
		return fmt.Errorf("storage is not configured")
	}
	tokenDigest = strings.TrimSpace(tokenDigest)
	if tokenDigest == "" {
		return fmt.Errorf("token digest is required")
	}

	if _, err := s.sqlDB.ExecContext(ctx, `
DELETE FROM pin_reset_requests
WHERE token_digest = ?
`, tokenDigest); err != nil {
		return fmt.Errorf("delete reset request: %w", err)
	}
	return nil
}

func scanUser(scan func(dest ...any) error) (auth.User, error) {
	var record auth.User
	var createdAt, updatedAt int64
	if err := scan(
		&record.ID,
		&record.Email,
		&record.DisplayName,
		&record.PINHash,
		&createdAt,
		&updatedAt,
	); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return auth.User{}, storage.ErrNotFound
		}
		return auth.User{}, fmt.Errorf("get user: %w", err)
	}
	record.CreatedAt = fromMillis(createdAt)
	record.UpdatedAt = fromMillis(updatedAt)
	return record, nil
}
