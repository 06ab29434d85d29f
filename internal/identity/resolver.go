// Package identity resolves the current user's display name. Sessions are
// owned by the external identity service; this backend only consumes a
// user ID and looks up the matching profile row.
package identity

import (
	"context"
	"errors"
	"log/slog"

	"github.com/google/uuid"

	"github.com/patimap/backend/internal/domain"
	"github.com/patimap/backend/internal/repo"
)

// GuestName is the display name recorded for anonymous or unresolvable
// users. Recording flows never block on identity.
const GuestName = "Misafir"

// Resolver turns a raw user ID into a display name.
type Resolver struct {
	profiles repo.ProfileRepo
	logger   *slog.Logger
}

// NewResolver constructs a Resolver backed by the profile store.
func NewResolver(profiles repo.ProfileRepo, logger *slog.Logger) *Resolver {
	return &Resolver{profiles: profiles, logger: logger}
}

// DisplayName resolves userID to "Name Surname". An empty or malformed ID,
// a missing profile, or a store failure all yield GuestName — identity
// problems must never fail the calling operation.
func (r *Resolver) DisplayName(ctx context.Context, userID string) string {
	if userID == "" {
		return GuestName
	}

	id, err := uuid.Parse(userID)
	if err != nil {
		return GuestName
	}

	name, err := r.profiles.DisplayName(ctx, id)
	if err != nil {
		if !errors.Is(err, domain.ErrNotFound) {
			r.logger.Warn("profile lookup failed", "user_id", userID, "error", err)
		}
		return GuestName
	}
	return name
}
