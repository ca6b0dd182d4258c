// Package storage defines the persistence contracts for the service.
//
// Every read and write on agency-owned records takes the agency ID and
// filters on it. Handlers resolve the agency once per request; stores must
// never widen a query beyond that scope.
package storage

import (
	"context"
	"errors"
	"time"

	"github.com/wavezly/wavezly/internal/activity"
	"github.com/wavezly/wavezly/internal/agency"
	"github.com/wavezly/wavezly/internal/auth"
	"github.com/wavezly/wavezly/internal/digest"
	"github.com/wavezly/wavezly/internal/task"
	"github.com/wavezly/wavezly/internal/template"
)

// ErrNotFound indicates a requested record is missing. Cross-agency lookups
// surface the same error so record existence does not leak across tenants.
var ErrNotFound = errors.New("record not found")

// ErrConflict indicates a uniqueness constraint was violated.
var ErrConflict = errors.New("record conflict")

// TaskFilter narrows agency-scoped task listing. Agency scope is mandatory
// and enforced separately; filter fields only reduce visibility.
type TaskFilter struct {
	Status     task.Status
	Category   task.Category
	AssigneeID string
	DueBefore  *time.Time
	OverdueAt  *time.Time // only tasks past due and still actionable at this time
	Query      string     // case-insensitive title substring
}

// ActivityFilter narrows agency-scoped activity listing.
type ActivityFilter struct {
	Entity   activity.EntityKind
	EntityID string
	Limit    int
}

// TaskStore persists tasks.
type TaskStore interface {
	PutTask(ctx context.Context, record task.Task) error
	GetTask(ctx context.Context, agencyID string, taskID string) (task.Task, error)
	ListTasks(ctx context.Context, agencyID string, filter TaskFilter) ([]task.Task, error)
	DeleteTask(ctx context.Context, agencyID string, taskID string) error
}

// TemplateStore persists task templates.
type TemplateStore interface {
	PutTemplate(ctx context.Context, record template.Template) error
	GetTemplate(ctx context.Context, agencyID string, templateID string) (template.Template, error)
	ListTemplates(ctx context.Context, agencyID string) ([]template.Template, error)
	DeleteTemplate(ctx context.Context, agencyID string, templateID string) error
}

// ActivityStore persists the append-only audit trail.
type ActivityStore interface {
	AppendActivity(ctx context.Context, record activity.Entry) error
	ListActivity(ctx context.Context, agencyID string, filter ActivityFilter) ([]activity.Entry, error)
}

// AgencyStore persists agencies, membership, and invitations.
type AgencyStore interface {
	PutAgency(ctx context.Context, record agency.Agency) error
	GetAgency(ctx context.Context, agencyID string) (agency.Agency, error)
	ListAgencyIDs(ctx context.Context) ([]string, error)

	PutMember(ctx context.Context, record agency.Member) error
	GetMemberByUser(ctx context.Context, userID string) (agency.Member, error)
	ListMembers(ctx context.Context, agencyID string) ([]agency.Member, error)

	PutInvitation(ctx context.Context, record agency.Invitation) error
	GetInvitation(ctx context.Context, agencyID string, invitationID string) (agency.Invitation, error)
	ListInvitations(ctx context.Context, agencyID string) ([]agency.Invitation, error)
}

// UserStore persists users and pending PIN resets.
type UserStore interface {
	PutUser(ctx context.Context, record auth.User) error
	GetUser(ctx context.Context, userID string) (auth.User, error)
	GetUserByEmail(ctx context.Context, email string) (auth.User, error)

	PutResetRequest(ctx context.Context, record auth.ResetRequest) error
	GetResetRequestByDigest(ctx context.Context, tokenDigest string) (auth.ResetRequest, error)
	DeleteResetRequest(ctx context.Context, tokenDigest string) error
}

// DigestStore persists daily digests, unique per (agency, date).
type DigestStore interface {
	UpsertDigest(ctx context.Context, record digest.DailyDigest) error
	GetDigest(ctx context.Context, agencyID string, date string) (digest.DailyDigest, error)
	ListDigests(ctx context.Context, agencyID string, limit int) ([]digest.DailyDigest, error)
}

// Store is the full persistence surface the service composes over.
type Store interface {
	TaskStore
	TemplateStore
	ActivityStore
	AgencyStore
	UserStore
	DigestStore

	Ping(ctx context.Context) error
	Close() error
}
