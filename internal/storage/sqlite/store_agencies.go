package sqlite

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"

	"github.com/wavezly/wavezly/internal/agency"
	"github.com/wavezly/wavezly/internal/storage"
)

// PutAgency inserts or updates an agency row.
func (s *Store) PutAgency(ctx context.Context, record agency.Agency) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	if s == nil || s.sqlDB == nil {
		return fmt.Errorf("storage is not configured")
	}
	if strings.TrimSpace(record.ID) == "" {
		return fmt.Errorf("agency id is required")
	}
	if strings.TrimSpace(record.Name) == "" {
		return fmt.Errorf("agency name is required")
	}

	_, err := s.sqlDB.ExecContext(ctx, `
INSERT INTO agencies (id, name, created_at, updated_at)
VALUES (?, ?, ?, ?)
ON CONFLICT(id) DO UPDATE SET
	name = excluded.name,
	updated_at = excluded.updated_at
`,
		record.ID,
		record.Name,
		toMillis(record.CreatedAt),
		toMillis(record.UpdatedAt),
	)
	if err != nil {
		return fmt.Errorf("put agency: %w", err)
	}
	return nil
}

// GetAgency fetches one agency by ID.
func (s *Store) GetAgency(ctx context.Context, agencyID string) (agency.Agency, error) {
	if err := ctx.Err(); err != nil {
		return agency.Agency{}, err
	}
	if s == nil || s.sqlDB == nil {
		return agency.Agency{}, fmt.Errorf("storage is not configured")
	}
	agencyID = strings.TrimSpace(agencyID)
	if agencyID == "" {
		return agency.Agency{}, fmt.Errorf("agency id is required")
	}

	row := s.sqlDB.QueryRowContext(ctx, `
SELECT id, name, created_at, updated_at
FROM agencies
WHERE id = ?
`, agencyID)

	var record agency.Agency
	var createdAt, updatedAt int64
	if err := row.Scan(&record.ID, &record.Name, &createdAt, &updatedAt); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return agency.Agency{}, storage.ErrNotFound
		}
		return agency.Agency{}, fmt.Errorf("get agency: %w", err)
	}
	record.CreatedAt = fromMillis(createdAt)
	record.UpdatedAt = fromMillis(updatedAt)
	return record, nil
}

// ListAgencyIDs returns every agency ID. The digest worker iterates this to
// generate one digest per agency.
func (s *Store) ListAgencyIDs(ctx context.Context) ([]string, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	if s == nil || s.sqlDB == nil {
		return nil, fmt.Errorf("storage is not configured")
	}

	rows, err := s.sqlDB.QueryContext(ctx, `SELECT id FROM agencies ORDER BY id`)
	if err != nil {
		return nil, fmt.Errorf("list agency ids: %w", err)
	}
	defer rows.Close()

	var ids []string
	for rows.Next() {
		var id string
		if err := rows.Scan(&id); err != nil {
			return nil, fmt.Errorf("scan agency id: %w", err)
		}
		ids = append(ids, id)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate agency ids: %w", err)
	}
	return ids, nil
}

// PutMember inserts or updates a membership row. A user belongs to at most
// one agency; inserting a second membership for the same user conflicts.
func (s *Store) PutMember(ctx context.Context, record agency.Member) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	if s == nil || s.sqlDB == nil {
		return fmt.Errorf("storage is not configured")
	}
	if strings.TrimSpace(record.AgencyID) == "" {
		return fmt.Errorf("agency id is required")
	}
	if strings.TrimSpace(record.UserID) == "" {
		return fmt.Errorf("user id is required")
	}

	_, err := s.sqlDB.ExecContext(ctx, `
INSERT INTO members (agency_id, user_id, role, created_at)
VALUES (?, ?, ?, ?)
ON CONFLICT(agency_id, user_id) DO UPDATE SET
	role = excluded.role
`,
		record.AgencyID,
		record.UserID,
		string(record.Role),
		toMillis(record.CreatedAt),
	)
	if err != nil {
		if isUniqueConstraintError(err) {
			return storage.ErrConflict
		}
		return fmt.Errorf("put member: %w", err)
	}
	return nil
}

// GetMemberByUser fetches the membership row for a user.
func (s *Store) GetMemberByUser(ctx context.Context, userID string) (agency.Member, error) {
	if err := ctx.Err(); err != nil {
		return agency.Member{}, err
	}
	if s == nil || s.sqlDB == nil {
		return agency.Member{}, fmt.Errorf("storage is not configured")
	}
	userID = strings.TrimSpace(userID)
	if userID == "" {
		return agency.Member{}, fmt.Errorf("user id is required")
	}

	row := s.sqlDB.QueryRowContext(ctx, `
SELECT agency_id, user_id, role, created_at
FROM members
WHERE user_id = ?
`, userID)

	record, err := scanMember(row.Scan)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return agency.Member{}, storage.ErrNotFound
		}
		return agency.Member{}, fmt.Errorf("get member: %w", err)
	}
	return record, nil
}

// ListMembers returns the agency's members ordered by join time.
func (s *Store) ListMembers(ctx context.Context, agencyID string) ([]agency.Member, error) {
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
SELECT agency_id, user_id, role, created_at
FROM members
WHERE agency_id = ?
ORDER BY created_at, user_id
`, agencyID)
	if err != nil {
		return nil, fmt.Errorf("list members: %w", err)
	}
	defer rows.Close()

	var records []agency.Member
	for rows.Next() {
		record, err := scanMember(rows.Scan)
		if err != nil {
			return nil, fmt.Errorf("scan member row: %w", err)
		}
		records = append(records, record)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate member rows: %w", err)
	}
	return records, nil
}

// PutInvitation inserts or updates an invitation row.
func (s *Store) PutInvitation(ctx context.Context, record agency.Invitation) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	if s == nil || s.sqlDB == nil {
		return fmt.Errorf("storage is not configured")
	}
	if strings.TrimSpace(record.ID) == "" {
		return fmt.Errorf("invitation id is required")
	}
	if strings.TrimSpace(record.AgencyID) == "" {
		return fmt.Errorf("agency id is required")
	}

	_, err := s.sqlDB.ExecContext(ctx, `
INSERT INTO invitations (id, agency_id, email, role, status, expires_at, created_at, updated_at)
VALUES (?, ?, ?, ?, ?, ?, ?, ?)
ON CONFLICT(id) DO UPDATE SET
	status = excluded.status,
	updated_at = excluded.updated_at
WHERE invitations.agency_id = excluded.agency_id
`,
		record.ID,
		record.AgencyID,
		record.Email,
		string(record.Role),
		string(record.Status),
		toMillis(record.ExpiresAt),
		toMillis(record.CreatedAt),
		toMillis(record.UpdatedAt),
	)
	if err != nil {
		return fmt.Errorf("put invitation: %w", err)
	}
	return nil
}

// GetInvitation fetches one invitation inside the agency scope.
func (s *Store) GetInvitation(ctx context.Context, agencyID string, invitationID string) (agency.Invitation, error) {
	if err := ctx.Err(); err != nil {
		return agency.Invitation{}, err
	}
	if s == nil || s.sqlDB == nil {
		return agency.Invitation{}, fmt.Errorf("storage is not configured")
	}
	agencyID = strings.TrimSpace(agencyID)
	invitationID = strings.TrimSpace(invitationID)
	if agencyID == "" {
		return agency.Invitation{}, fmt.Errorf("agency id is required")
	}
	if invitationID == "" {
		return agency.Invitation{}, fmt.Errorf("invitation id is required")
	}

	row := s.sqlDB.QueryRowContext(ctx, `
SELECT id, agency_id, email, role, status, expires_at, created_at, updated_at
FROM invitations
WHERE agency_id = ? AND id = ?
`, agencyID, invitationID)

	record, err := scanInvitation(row.Scan)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return agency.Invitation{}, storage.ErrNotFound
		}
		return agency.Invitation{}, fmt.Errorf("get invitation: %w", err)
	}
	return record, nil
}

// ListInvitations returns the agency's invitations, newest first.
func (s *Store) ListInvitations(ctx context.Context, agencyID string) ([]agency.Invitation, error) {
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
SELECT id, agency_id, email, role, status, expires_at, created_at, updated_at
FROM invitations
WHERE agency_id = ?
ORDER BY created_at DESC, id
`, agencyID)
	if err != nil {
		return nil, fmt.Errorf("list invitations: %w", err)
	}
	defer rows.Close()

	var records []agency.Invitation
	for rows.Next() {
		record, err := scanInvitation(rows.Scan)
		if err != nil {
			return nil, fmt.Errorf("scan invitation row: %w", err)
		}
		records = append(records, record)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate invitation rows: %w", err)
	}
	return records, nil
}

func scanMember(scan func(dest ...any) error) (agency.Member, error) {
	var (
		record    agency.Member
		role      string
		createdAt int64
	)
	if err := scan(&record.AgencyID, &record.UserID, &role, &createdAt); err != nil {
		return agency.Member{}, err
	}
	record.Role = agency.Role(role)
	record.CreatedAt = fromMillis(createdAt)
	return record, nil
}

func scanInvitation(scan func(dest ...any) error) (agency.Invitation, error) {
	var (
		record    agency.Invitation
		role      string
		status    string
		expiresAt int64
		createdAt int64
		updatedAt int64
	)
	if err := scan(
		&record.ID,
		&record.AgencyID,
		&record.Email,
		&role,
		&status,
		&expiresAt,
		&createdAt,
		&updatedAt,
	); err != nil {
		return agency.Invitation{}, err
	}
	record.Role = agency.Role(role)
	record.Status = agency.InviteStatus(status)
	record.ExpiresAt = fromMillis(expiresAt)
	record.CreatedAt = fromMillis(createdAt)
	record.UpdatedAt = fromMillis(updatedAt)
	return record, nil
}

// isUniqueConstraintError reports whether an insert hit a UNIQUE index.
func isUniqueConstraintError(err error) bool {
	if err == nil {
		return false
	}
	return strings.Contains(strings.ToLower(err.Error()), "unique constraint failed")
}
