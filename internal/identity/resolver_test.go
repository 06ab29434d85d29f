package identity_test

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"

	"github.com/patimap/backend/internal/domain"
	"github.com/patimap/backend/internal/identity"
	"github.com/patimap/backend/internal/repo"
)

// mockProfileRepo is a function-field test double for repo.ProfileRepo.
type mockProfileRepo struct {
	displayName func(ctx context.Context, userID uuid.UUID) (string, error)
}

func (m *mockProfileRepo) DisplayName(ctx context.Context, userID uuid.UUID) (string, error) {
	return m.displayName(ctx, userID)
}

var _ repo.ProfileRepo = (*mockProfileRepo)(nil)

func newResolver(profiles repo.ProfileRepo) *identity.Resolver {
	return identity.NewResolver(profiles, slog.New(slog.NewTextHandler(io.Discard, nil)))
}

func TestResolver_DisplayName(t *testing.T) {
	userID := uuid.New()
	profiles := &mockProfileRepo{
		displayName: func(_ context.Context, id uuid.UUID) (string, error) {
			assert.Equal(t, userID, id)
			return "Ayşe Yılmaz", nil
		},
	}

	got := newResolver(profiles).DisplayName(context.Background(), userID.String())

	assert.Equal(t, "Ayşe Yılmaz", got)
}

func TestResolver_DisplayName_EmptyID(t *testing.T) {
	got := newResolver(&mockProfileRepo{}).DisplayName(context.Background(), "")

	assert.Equal(t, identity.GuestName, got)
}

func TestResolver_DisplayName_MalformedID(t *testing.T) {
	got := newResolver(&mockProfileRepo{}).DisplayName(context.Background(), "not-a-uuid")

	assert.Equal(t, identity.GuestName, got)
}

func TestResolver_DisplayName_ProfileMissing(t *testing.T) {
	profiles := &mockProfileRepo{
		displayName: func(context.Context, uuid.UUID) (string, error) {
			return "", domain.ErrNotFound
		},
	}

	got := newResolver(profiles).DisplayName(context.Background(), uuid.NewString())

	assert.Equal(t, identity.GuestName, got)
}

func TestResolver_DisplayName_StoreFailure(t *testing.T) {
	profiles := &mockProfileRepo{
		displayName: func(context.Context, uuid.UUID) (string, error) {
			return "", errors.New("connection refused")
		},
	}

	got := newResolver(profiles).DisplayName(context.Background(), uuid.NewString())

	assert.Equal(t, identity.GuestName, got, "store failures degrade to guest, never error")
}
