// Package agency models tenants, membership, and invitations.
//
// Every other record in the system hangs off an agency; membership role
// decides which API operations a user may perform inside that scope.
package agency

import (
	"strings"
	"time"

	apperrors "github.com/wavezly/wavezly/internal/platform/errors"
)

// Role is a member's permission level inside an agency.
type Role string

const (
	// RoleOwner is the agency creator with full control.
	RoleOwner Role = "owner"
	// RoleAdmin manages members, invitations, and templates.
	RoleAdmin Role = "admin"
	// RoleAgent works tasks but cannot manage membership.
	RoleAgent Role = "agent"
)

// Agency is the tenant record all rows are scoped to.
type Agency struct {
	ID        string
	Name      string
	CreatedAt time.Time
	UpdatedAt time.Time
}

// Member links a user to an agency with a role.
type Member struct {
	AgencyID  string
	UserID    string
	Role      Role
	CreatedAt time.Time
}

// ParseRole canonicalizes a role value. Empty input defaults to agent.
func ParseRole(value string) (Role, error) {
	switch Role(strings.ToLower(strings.TrimSpace(value))) {
	case RoleOwner:
		return RoleOwner, nil
	case RoleAdmin:
		return RoleAdmin, nil
	case RoleAgent, "":
		return RoleAgent, nil
	}
	return "", apperrors.New(apperrors.CodeMemberInvalidRole, "role is invalid")
}

// CanManage reports whether the role may manage members and invitations.
func (r Role) CanManage() bool {
	return r == RoleOwner || r == RoleAdmin
}

// New builds a validated agency.
func New(id string, name string, now time.Time) (Agency, error) {
	name = strings.TrimSpace(name)
	if name == "" {
		return Agency{}, apperrors.New(apperrors.CodeAgencyNameEmpty, "agency name is required")
	}
	now = now.UTC()
	return Agency{ID: id, Name: name, CreatedAt: now, UpdatedAt: now}, nil
}
