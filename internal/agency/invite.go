package agency

import (
	"net/mail"
	"strings"
	"time"

	apperrors "github.com/wavezly/wavezly/internal/platform/errors"
)

// DefaultInviteTTL bounds how long an invitation stays acceptable.
const DefaultInviteTTL = 7 * 24 * time.Hour

// InviteStatus tracks the invitation lifecycle.
type InviteStatus string

const (
	// InviteStatusPending means the invitation can still be accepted.
	InviteStatusPending InviteStatus = "pending"
	// InviteStatusAccepted means a user joined through the invitation.
	InviteStatusAccepted InviteStatus = "accepted"
	// InviteStatusRevoked means an admin withdrew the invitation.
	InviteStatusRevoked InviteStatus = "revoked"
	// InviteStatusExpired means the invitation lapsed unaccepted.
	InviteStatusExpired InviteStatus = "expired"
)

// Invitation is a pending offer to join an agency with a given role.
type Invitation struct {
	ID        string
	AgencyID  string
	Email     string
	Role      Role
	Status    InviteStatus
	ExpiresAt time.Time
	CreatedAt time.Time
	UpdatedAt time.Time
}

// NormalizeEmail lowercases and validates an invitation email address.
func NormalizeEmail(value string) (string, error) {
	value = strings.ToLower(strings.TrimSpace(value))
	if value == "" {
		return "", apperrors.New(apperrors.CodeInviteEmailInvalid, "email is required")
	}
	parsed, err := mail.ParseAddress(value)
	if err != nil || parsed.Address != value {
		return "", apperrors.New(apperrors.CodeInviteEmailInvalid, "email is invalid")
	}
	return value, nil
}

// NewInvitation builds a pending invitation.
func NewInvitation(id string, agencyID string, email string, role Role, now time.Time, ttl time.Duration) (Invitation, error) {
	agencyID = strings.TrimSpace(agencyID)
	if agencyID == "" {
		return Invitation{}, apperrors.New(apperrors.CodeAgencyNameEmpty, "agency id is required")
	}
	normalizedEmail, err := NormalizeEmail(email)
	if err != nil {
		return Invitation{}, err
	}
	parsedRole, err := ParseRole(string(role))
	if err != nil {
		return Invitation{}, err
	}
	if parsedRole == RoleOwner {
		return Invitation{}, apperrors.New(apperrors.CodeMemberInvalidRole, "owner role cannot be granted by invitation")
	}
	if ttl <= 0 {
		ttl = DefaultInviteTTL
	}
	now = now.UTC()
	return Invitation{
		ID:        id,
		AgencyID:  agencyID,
		Email:     normalizedEmail,
		Role:      parsedRole,
		Status:    InviteStatusPending,
		ExpiresAt: now.Add(ttl),
		CreatedAt: now,
		UpdatedAt: now,
	}, nil
}

// Acceptable reports whether the invitation can still be accepted at the
// given time, returning a coded error otherwise.
func (i Invitation) Acceptable(now time.Time) error {
	if i.Status != InviteStatusPending {
		return apperrors.WithMetadata(
			apperrors.CodeInviteNotPending,
			"invitation is not pending",
			map[string]string{"Status": string(i.Status)},
		)
	}
	if !i.ExpiresAt.After(now.UTC()) {
		return apperrors.New(apperrors.CodeInviteGrantExpired, "invitation is expired")
	}
	return nil
}
