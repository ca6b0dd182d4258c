// Package bootstrap seeds the first agency and its owner account so a
// fresh deployment has someone who can log in and invite the rest.
package bootstrap

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/wavezly/wavezly/internal/agency"
	"github.com/wavezly/wavezly/internal/auth"
	"github.com/wavezly/wavezly/internal/platform/id"
	"github.com/wavezly/wavezly/internal/storage"

	apperrors "github.com/wavezly/wavezly/internal/platform/errors"
)

// Input describes the agency and owner to create.
type Input struct {
	AgencyName  string
	Email       string
	DisplayName string
	PIN         string
}

// Result reports the created records.
type Result struct {
	AgencyID string
	UserID   string
}

// Run creates the agency, the owner user, and the owner membership. It
// refuses to run twice for the same email so re-invoking the command
// cannot clobber an existing account.
func Run(ctx context.Context, store storage.Store, input Input, now time.Time) (Result, error) {
	if store == nil {
		return Result{}, errors.New("bootstrap store is required")
	}

	email, err := auth.NormalizeEmail(input.Email)
	if err != nil {
		return Result{}, err
	}
	if _, err := store.GetUserByEmail(ctx, email); err == nil {
		return Result{}, apperrors.New(apperrors.CodeUserEmailTaken, "email is already registered")
	} else if !errors.Is(err, storage.ErrNotFound) {
		return Result{}, fmt.Errorf("check existing user: %w", err)
	}

	agencyID, err := id.NewID()
	if err != nil {
		return Result{}, err
	}
	userID, err := id.NewID()
	if err != nil {
		return Result{}, err
	}

	tenant, err := agency.New(agencyID, input.AgencyName, now)
	if err != nil {
		return Result{}, err
	}
	owner, err := auth.NewUser(userID, email, input.DisplayName, input.PIN, now)
	if err != nil {
		return Result{}, err
	}

	if err := store.PutAgency(ctx, tenant); err != nil {
		return Result{}, fmt.Errorf("put agency: %w", err)
	}
	if err := store.PutUser(ctx, owner); err != nil {
		if errors.Is(err, storage.ErrConflict) {
			return Result{}, apperrors.New(apperrors.CodeUserEmailTaken, "email is already registered")
		}
		return Result{}, fmt.Errorf("put user: %w", err)
	}
	member := agency.Member{
		AgencyID:  tenant.ID,
		UserID:    owner.ID,
		Role:      agency.RoleOwner,
		CreatedAt: now.UTC(),
	}
	if err := store.PutMember(ctx, member); err != nil {
		return Result{}, fmt.Errorf("put member: %w", err)
	}

	return Result{AgencyID: tenant.ID, UserID: owner.ID}, nil
}
