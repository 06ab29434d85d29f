package repo_test

import (
	"context"
	"testing"

	"github.com/jackc/pgx/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/patimap/backend/internal/domain"
	"github.com/patimap/backend/internal/repo"
	"github.com/patimap/backend/testutil"
)

// newTestTx opens a transaction against the test database. The transaction
// is automatically rolled back when the test finishes, giving free per-test
// isolation.
//
// Requires TEST_DATABASE_URL to be set and all migrations to be applied
// (TestMain in this package takes care of the latter).
func newTestTx(t *testing.T) pgx.Tx {
	t.Helper()
	pool := testutil.NewPool(t)

	tx, err := pool.Begin(context.Background())
	require.NoError(t, err, "begin transaction")

	t.Cleanup(func() {
		// Rollback discards all changes made during the test — no cleanup SQL needed.
		_ = tx.Rollback(context.Background())
	})

	return tx
}

// stationFixture returns a domain.Station with sensible defaults for use in
// tests. Callers can override individual fields after calling this function.
func stationFixture() domain.Station {
	return domain.Station{
		Name:      "Park Girişi",
		Latitude:  41.0,
		Longitude: 26.5,
		Area:      "Kaleiçi",
		Status:    "dolu",
	}
}

func TestStationRepo_Create(t *testing.T) {
	r := repo.NewStationRepo(newTestTx(t))
	ctx := context.Background()

	input := stationFixture()
	got, err := r.Create(ctx, input)

	require.NoError(t, err)
	assert.NotEqual(t, [16]byte{}, got.ID, "ID should be DB-generated UUID")
	assert.Equal(t, input.Name, got.Name)
	assert.Equal(t, input.Latitude, got.Latitude)
	assert.Equal(t, input.Longitude, got.Longitude)
	assert.Equal(t, input.Area, got.Area)
	assert.Equal(t, input.Status, got.Status)
	assert.False(t, got.CreatedAt.IsZero(), "CreatedAt should be set by DB")
}

func TestStationRepo_GetByID(t *testing.T) {
	r := repo.NewStationRepo(newTestTx(t))
	ctx := context.Background()

	created, err := r.Create(ctx, stationFixture())
	require.NoError(t, err)

	got, err := r.GetByID(ctx, created.ID)

	require.NoError(t, err)
	assert.Equal(t, created.ID, got.ID)
	assert.Equal(t, created.Name, got.Name)
}

func TestStationRepo_GetByID_NotFound(t *testing.T) {
	r := repo.NewStationRepo(newTestTx(t))
	ctx := context.Background()

	// Use a random UUID that was never inserted.
	id := [16]byte{0xff, 0xff, 0xff, 0xff, 0xff, 0xff, 0xff, 0xff,
		0xff, 0xff, 0xff, 0xff, 0xff, 0xff, 0xff, 0xff}

	_, err := r.GetByID(ctx, id)

	assert.ErrorIs(t, err, domain.ErrNotFound)
}

func TestStationRepo_List(t *testing.T) {
	r := repo.NewStationRepo(newTestTx(t))
	ctx := context.Background()

	s1 := stationFixture()
	s1.Name = "Park Girişi"

	s2 := stationFixture()
	s2.Name = "Sahil Yolu"

	_, err := r.Create(ctx, s1)
	require.NoError(t, err)
	_, err = r.Create(ctx, s2)
	require.NoError(t, err)

	stations, err := r.List(ctx)

	require.NoError(t, err)
	require.GreaterOrEqual(t, len(stations), 2, "should return at least the two created stations")

	var names []string
	for _, s := range stations {
		names = append(names, s.Name)
	}
	assert.Contains(t, names, "Park Girişi")
	assert.Contains(t, names, "Sahil Yolu")
}

func TestStationRepo_Delete(t *testing.T) {
	r := repo.NewStationRepo(newTestTx(t))
	ctx := context.Background()

	created, err := r.Create(ctx, stationFixture())
	require.NoError(t, err)

	err = r.Delete(ctx, created.ID)
	require.NoError(t, err)

	_, err = r.GetByID(ctx, created.ID)
	assert.ErrorIs(t, err, domain.ErrNotFound, "station should be gone after delete")
}

func TestStationRepo_Delete_NotFound(t *testing.T) {
	r := repo.NewStationRepo(newTestTx(t))
	ctx := context.Background()

	id := [16]byte{0xca, 0xfe, 0xba, 0xbe, 0xca, 0xfe, 0xba, 0xbe,
		0xca, 0xfe, 0xba, 0xbe, 0xca, 0xfe, 0xba, 0xbe}

	err := r.Delete(ctx, id)

	assert.ErrorIs(t, err, domain.ErrNotFound)
}

// TestStationRepo_Delete_LeavesHelpEvents verifies the anti-cascade design:
// deleting a station must not touch the help events recorded against it.
func TestStationRepo_Delete_LeavesHelpEvents(t *testing.T) {
	tx := newTestTx(t)
	stations := repo.NewStationRepo(tx)
	events := repo.NewHelpEventRepo(tx)
	ctx := context.Background()

	station, err := stations.Create(ctx, stationFixture())
	require.NoError(t, err)

	_, err = events.Create(ctx, helpEventFixture(station))
	require.NoError(t, err)

	require.NoError(t, stations.Delete(ctx, station.ID))

	remaining, err := events.ListByStation(ctx, station.ID)
	require.NoError(t, err)
	require.Len(t, remaining, 1)
	assert.Equal(t, station.Name, remaining[0].StationName,
		"event keeps its station name snapshot after the station is gone")
}
