package repo

import (
	"context"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"

	"github.com/patimap/backend/internal/domain"
)

// ProfileRepo reads user display information. Profiles are written by the
// identity service; this backend only ever reads them.
type ProfileRepo interface {
	// DisplayName returns "Name Surname" for the given user ID.
	// Returns domain.ErrNotFound if no profile exists.
	DisplayName(ctx context.Context, userID uuid.UUID) (string, error)
}

// pgProfileRepo is the Postgres implementation of ProfileRepo.
type pgProfileRepo struct {
	db db
}

// NewProfileRepo constructs a ProfileRepo backed by the provided db connection.
func NewProfileRepo(db db) ProfileRepo {
	return &pgProfileRepo{db: db}
}

// DisplayName looks up a profile and joins name and surname.
func (r *pgProfileRepo) DisplayName(ctx context.Context, userID uuid.UUID) (string, error) {
	const q = `SELECT name, surname FROM profiles WHERE id = @id`

	var name, surname string
	err := r.db.QueryRow(ctx, q, pgx.NamedArgs{"id": userID}).Scan(&name, &surname)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return "", fmt.Errorf("repo.ProfileRepo.DisplayName: %w", domain.ErrNotFound)
		}
		return "", fmt.Errorf("repo.ProfileRepo.DisplayName: %w", err)
	}
	return name + " " + surname, nil
}
