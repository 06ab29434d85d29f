package repo_test

import (
	"context"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/patimap/backend/internal/domain"
	"github.com/patimap/backend/internal/repo"
)

// notificationFixture returns a water_help feed entry with a fixed timestamp.
func notificationFixture() domain.Notification {
	return domain.Notification{
		Kind:        domain.NotifyWaterHelp,
		Title:       "Su Yardımı",
		StationName: "Park Girişi",
		ActorName:   "Ayşe Y.",
		Message:     "Ayşe Y. adlı kullanıcı Park Girişi istasyonuna yardım yaptı.",
		CreatedAt:   time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC),
	}
}

func TestNotificationRepo_Create(t *testing.T) {
	r := repo.NewNotificationRepo(newTestTx(t))
	ctx := context.Background()

	input := notificationFixture()
	got, err := r.Create(ctx, input)

	require.NoError(t, err)
	assert.NotEqual(t, [16]byte{}, got.ID)
	assert.Equal(t, domain.NotifyWaterHelp, got.Kind)
	assert.Equal(t, input.Title, got.Title)
	assert.Equal(t, input.StationName, got.StationName)
	assert.Equal(t, input.ActorName, got.ActorName)
	assert.Equal(t, input.Message, got.Message)
	assert.True(t, got.CreatedAt.Equal(input.CreatedAt))
	assert.Positive(t, got.Seq)
}

func TestNotificationRepo_List_OrderedNewestFirst(t *testing.T) {
	r := repo.NewNotificationRepo(newTestTx(t))
	ctx := context.Background()

	base := time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)
	for i, offset := range []time.Duration{time.Minute, 0, 2 * time.Minute} {
		n := notificationFixture()
		n.CreatedAt = base.Add(offset)
		n.ActorName = []string{"A", "B", "C"}[i]
		_, err := r.Create(ctx, n)
		require.NoError(t, err)
	}

	got, err := r.List(ctx)

	require.NoError(t, err)
	require.GreaterOrEqual(t, len(got), 3)
	for i := 1; i < len(got); i++ {
		assert.False(t, got[i-1].CreatedAt.Before(got[i].CreatedAt),
			"list must be created_at descending at index %d", i)
	}
}

// TestNotificationRepo_List_TiesBrokenByInsertion verifies that entries
// sharing a created_at come back in reverse insertion order, so every
// viewer sees the same total order.
func TestNotificationRepo_List_TiesBrokenByInsertion(t *testing.T) {
	r := repo.NewNotificationRepo(newTestTx(t))
	ctx := context.Background()

	first := notificationFixture()
	first.ActorName = "first"
	second := notificationFixture()
	second.ActorName = "second"

	_, err := r.Create(ctx, first)
	require.NoError(t, err)
	_, err = r.Create(ctx, second)
	require.NoError(t, err)

	got, err := r.List(ctx)

	require.NoError(t, err)
	require.GreaterOrEqual(t, len(got), 2)
	assert.Equal(t, "second", got[0].ActorName)
	assert.Equal(t, "first", got[1].ActorName)
}

func TestProfileRepo_DisplayName(t *testing.T) {
	tx := newTestTx(t)
	ctx := context.Background()

	id := uuid.New()
	_, err := tx.Exec(ctx,
		`INSERT INTO profiles (id, name, surname) VALUES ($1, $2, $3)`,
		id, "Ayşe", "Yılmaz")
	require.NoError(t, err)

	r := repo.NewProfileRepo(tx)
	name, err := r.DisplayName(ctx, id)

	require.NoError(t, err)
	assert.Equal(t, "Ayşe Yılmaz", name)
}

func TestProfileRepo_DisplayName_NotFound(t *testing.T) {
	r := repo.NewProfileRepo(newTestTx(t))

	_, err := r.DisplayName(context.Background(), uuid.New())

	assert.ErrorIs(t, err, domain.ErrNotFound)
}
