// Package activity models the append-only per-agency audit trail.
package activity

import (
	"strings"
	"time"

	apperrors "github.com/wavezly/wavezly/internal/platform/errors"
)

// Action identifies what happened to an entity.
type Action string

const (
	// ActionCreated records entity creation.
	ActionCreated Action = "created"
	// ActionUpdated records field changes.
	ActionUpdated Action = "updated"
	// ActionCompleted records task completion.
	ActionCompleted Action = "completed"
	// ActionDeleted records entity deletion.
	ActionDeleted Action = "deleted"
	// ActionInvited records an invitation being issued.
	ActionInvited Action = "invited"
	// ActionAccepted records an invitation being accepted.
	ActionAccepted Action = "accepted"
	// ActionDigested records a daily digest being generated.
	ActionDigested Action = "digested"
)

// EntityKind identifies the record type an entry refers to.
type EntityKind string

const (
	// EntityTask refers to a task row.
	EntityTask EntityKind = "task"
	// EntityTemplate refers to a task template row.
	EntityTemplate EntityKind = "template"
	// EntityInvitation refers to an agency invitation row.
	EntityInvitation EntityKind = "invitation"
	// EntityDigest refers to a daily digest row.
	EntityDigest EntityKind = "digest"
)

// Entry is a single audit-trail record.
type Entry struct {
	ID        string
	AgencyID  string
	ActorID   string // empty for system actors such as the digest worker
	Entity    EntityKind
	EntityID  string
	Action    Action
	Detail    string
	CreatedAt time.Time
}

// ParseAction canonicalizes an action value.
func ParseAction(value string) (Action, error) {
	switch Action(strings.ToLower(strings.TrimSpace(value))) {
	case ActionCreated:
		return ActionCreated, nil
	case ActionUpdated:
		return ActionUpdated, nil
	case ActionCompleted:
		return ActionCompleted, nil
	case ActionDeleted:
		return ActionDeleted, nil
	case ActionInvited:
		return ActionInvited, nil
	case ActionAccepted:
		return ActionAccepted, nil
	case ActionDigested:
		return ActionDigested, nil
	}
	return "", apperrors.New(apperrors.CodeActivityInvalidAction, "action is invalid")
}

// New builds a validated activity entry.
func New(id string, agencyID string, actorID string, entity EntityKind, entityID string, action Action, detail string, now time.Time) (Entry, error) {
	agencyID = strings.TrimSpace(agencyID)
	entityID = strings.TrimSpace(entityID)
	if agencyID == "" || strings.TrimSpace(string(entity)) == "" || entityID == "" {
		return Entry{}, apperrors.New(apperrors.CodeActivityEmptyEntity, "agency, entity kind, and entity id are required")
	}
	parsed, err := ParseAction(string(action))
	if err != nil {
		return Entry{}, err
	}
	return Entry{
		ID:        id,
		AgencyID:  agencyID,
		ActorID:   strings.TrimSpace(actorID),
		Entity:    entity,
		EntityID:  entityID,
		Action:    parsed,
		Detail:    strings.TrimSpace(detail),
		CreatedAt: now.UTC(),
	}, nil
}
