package service_test

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/patimap/backend/internal/domain"
	"github.com/patimap/backend/internal/observability"
	"github.com/patimap/backend/internal/repo"
	"github.com/patimap/backend/internal/service"
)

// mockStationRepo is a hand-written test double for repo.StationRepo.
// Each method is a function field — set only the ones your test needs.
type mockStationRepo struct {
	create  func(ctx context.Context, station domain.Station) (domain.Station, error)
	getByID func(ctx context.Context, id uuid.UUID) (domain.Station, error)
	list    func(ctx context.Context) ([]domain.Station, error)
	delete  func(ctx context.Context, id uuid.UUID) error
}

func (m *mockStationRepo) Create(ctx context.Context, s domain.Station) (domain.Station, error) {
	return m.create(ctx, s)
}
func (m *mockStationRepo) GetByID(ctx context.Context, id uuid.UUID) (domain.Station, error) {
	return m.getByID(ctx, id)
}
func (m *mockStationRepo) List(ctx context.Context) ([]domain.Station, error) {
	return m.list(ctx)
}
func (m *mockStationRepo) Delete(ctx context.Context, id uuid.UUID) error {
	return m.delete(ctx, id)
}

// mockNotificationRepo is a test double for repo.NotificationRepo.
type mockNotificationRepo struct {
	create func(ctx context.Context, n domain.Notification) (domain.Notification, error)
	list   func(ctx context.Context) ([]domain.Notification, error)
}

func (m *mockNotificationRepo) Create(ctx context.Context, n domain.Notification) (domain.Notification, error) {
	return m.create(ctx, n)
}
func (m *mockNotificationRepo) List(ctx context.Context) ([]domain.Notification, error) {
	return m.list(ctx)
}

// compile-time checks: the mocks must satisfy the repo interfaces.
var (
	_ repo.StationRepo      = (*mockStationRepo)(nil)
	_ repo.NotificationRepo = (*mockNotificationRepo)(nil)
)

// staticResolver is an AreaResolver that always returns the same label.
type staticResolver struct {
	area string
}

func (r staticResolver) ResolveArea(context.Context, float64, float64) string {
	return r.area
}

// ---- helpers ---------------------------------------------------------------

func discardLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

// echoStationRepo returns a repo whose Create assigns an ID and echoes the
// rest back — useful for tests that only care about validation and caching.
func echoStationRepo() *mockStationRepo {
	return &mockStationRepo{
		create: func(_ context.Context, s domain.Station) (domain.Station, error) {
			s.ID = uuid.New()
			return s, nil
		},
	}
}

// sinkNotificationRepo accepts every entry and records them.
func sinkNotificationRepo(written *[]domain.Notification) *mockNotificationRepo {
	return &mockNotificationRepo{
		create: func(_ context.Context, n domain.Notification) (domain.Notification, error) {
			*written = append(*written, n)
			return n, nil
		},
	}
}

func newRegistry(stations repo.StationRepo, notifications repo.NotificationRepo, area string) *service.StationRegistry {
	return service.NewStationRegistry(stations, notifications, staticResolver{area: area},
		observability.NewMetricsForTesting(), discardLogger())
}

// ---- Create tests ----------------------------------------------------------

func TestStationRegistry_Create_Valid(t *testing.T) {
	var written []domain.Notification
	reg := newRegistry(echoStationRepo(), sinkNotificationRepo(&written), "Kaleiçi")

	got, err := reg.Create(context.Background(), "Park Girişi", "dolu", 41.0, 26.5, "Ayşe Y.")

	require.NoError(t, err)
	assert.Equal(t, "Park Girişi", got.Name)
	assert.Equal(t, "Kaleiçi", got.Area, "area comes from the resolver")
	assert.NotEmpty(t, got.Area)
}

func TestStationRegistry_Create_OptimisticAppend(t *testing.T) {
	var written []domain.Notification
	reg := newRegistry(echoStationRepo(), sinkNotificationRepo(&written), "Kaleiçi")

	got, err := reg.Create(context.Background(), "Park Girişi", "dolu", 41.0, 26.5, "Ayşe Y.")
	require.NoError(t, err)

	// The station must be findable immediately, without any List call.
	cached, ok := reg.FindByID(got.ID)
	require.True(t, ok, "created station should be in the marker cache")
	assert.Equal(t, got, cached)
}

func TestStationRegistry_Create_AnnouncesNewStation(t *testing.T) {
	var written []domain.Notification
	reg := newRegistry(echoStationRepo(), sinkNotificationRepo(&written), "Kaleiçi")

	_, err := reg.Create(context.Background(), "Park Girişi", "dolu", 41.0, 26.5, "Ayşe Y.")

	require.NoError(t, err)
	require.Len(t, written, 1)
	assert.Equal(t, domain.NotifyNewStation, written[0].Kind)
	assert.Equal(t, "Park Girişi", written[0].StationName)
	assert.Contains(t, written[0].Message, "Ayşe Y.")
}

func TestStationRegistry_Create_MissingName(t *testing.T) {
	reg := newRegistry(&mockStationRepo{}, &mockNotificationRepo{}, "Kaleiçi")

	_, err := reg.Create(context.Background(), "   ", "dolu", 41.0, 26.5, "Ayşe Y.")

	assert.ErrorIs(t, err, domain.ErrValidation)
}

func TestStationRegistry_Create_MissingStatus(t *testing.T) {
	reg := newRegistry(&mockStationRepo{}, &mockNotificationRepo{}, "Kaleiçi")

	_, err := reg.Create(context.Background(), "Park Girişi", "", 41.0, 26.5, "Ayşe Y.")

	assert.ErrorIs(t, err, domain.ErrValidation)
}

func TestStationRegistry_Create_LatitudeOutOfRange(t *testing.T) {
	reg := newRegistry(&mockStationRepo{}, &mockNotificationRepo{}, "Kaleiçi")

	_, err := reg.Create(context.Background(), "Park Girişi", "dolu", 91.0, 26.5, "Ayşe Y.")

	assert.ErrorIs(t, err, domain.ErrValidation)
}

func TestStationRegistry_Create_PersistFailure_NoCacheMutation(t *testing.T) {
	boom := errors.New("connection refused")
	stations := &mockStationRepo{
		create: func(context.Context, domain.Station) (domain.Station, error) {
			return domain.Station{}, boom
		},
	}
	notified := false
	notifications := &mockNotificationRepo{
		create: func(context.Context, domain.Notification) (domain.Notification, error) {
			notified = true
			return domain.Notification{}, nil
		},
	}
	reg := newRegistry(stations, notifications, "Kaleiçi")

	_, err := reg.Create(context.Background(), "Park Girişi", "dolu", 41.0, 26.5, "Ayşe Y.")

	assert.ErrorIs(t, err, boom)
	assert.False(t, notified, "no feed entry for a station that was never persisted")
}

func TestStationRegistry_Create_NotificationFailure_StillSucceeds(t *testing.T) {
	notifications := &mockNotificationRepo{
		create: func(context.Context, domain.Notification) (domain.Notification, error) {
			return domain.Notification{}, errors.New("insert failed")
		},
	}
	reg := newRegistry(echoStationRepo(), notifications, "Kaleiçi")

	got, err := reg.Create(context.Background(), "Park Girişi", "dolu", 41.0, 26.5, "Ayşe Y.")

	require.NoError(t, err, "the station write succeeded; the announcement is best-effort")
	_, ok := reg.FindByID(got.ID)
	assert.True(t, ok)
}

// ---- List tests ------------------------------------------------------------

func TestStationRegistry_List_RefreshesCache(t *testing.T) {
	s1 := domain.Station{ID: uuid.New(), Name: "Park Girişi", Area: "Kaleiçi", Status: "dolu"}
	s2 := domain.Station{ID: uuid.New(), Name: "Sahil Yolu", Area: "Yıldırım", Status: "az"}
	stations := &mockStationRepo{
		list: func(context.Context) ([]domain.Station, error) {
			return []domain.Station{s1, s2}, nil
		},
	}
	reg := newRegistry(stations, &mockNotificationRepo{}, "")

	got, err := reg.List(context.Background())

	require.NoError(t, err)
	assert.Len(t, got, 2)

	cached, ok := reg.FindByID(s2.ID)
	require.True(t, ok)
	assert.Equal(t, s2, cached)
}

func TestStationRegistry_List_Empty_ReturnsNonNil(t *testing.T) {
	stations := &mockStationRepo{
		list: func(context.Context) ([]domain.Station, error) { return nil, nil },
	}
	reg := newRegistry(stations, &mockNotificationRepo{}, "")

	got, err := reg.List(context.Background())

	require.NoError(t, err)
	assert.NotNil(t, got)
	assert.Empty(t, got)
}

// ---- Delete tests ----------------------------------------------------------

func TestStationRegistry_Delete_RemovesFromCacheAfterConfirm(t *testing.T) {
	var written []domain.Notification
	stations := echoStationRepo()
	stations.delete = func(context.Context, uuid.UUID) error { return nil }
	reg := newRegistry(stations, sinkNotificationRepo(&written), "Kaleiçi")

	created, err := reg.Create(context.Background(), "Park Girişi", "dolu", 41.0, 26.5, "Ayşe Y.")
	require.NoError(t, err)

	require.NoError(t, reg.Delete(context.Background(), created.ID))

	_, ok := reg.FindByID(created.ID)
	assert.False(t, ok, "confirmed delete must remove the marker")
}

func TestStationRegistry_Delete_StoreFailure_CacheUntouched(t *testing.T) {
	var written []domain.Notification
	stations := echoStationRepo()
	stations.delete = func(context.Context, uuid.UUID) error { return errors.New("timeout") }
	reg := newRegistry(stations, sinkNotificationRepo(&written), "Kaleiçi")

	created, err := reg.Create(context.Background(), "Park Girişi", "dolu", 41.0, 26.5, "Ayşe Y.")
	require.NoError(t, err)

	err = reg.Delete(context.Background(), created.ID)

	require.Error(t, err)
	_, ok := reg.FindByID(created.ID)
	assert.True(t, ok, "failed delete must leave the marker visible")
}

func TestStationRegistry_Delete_NotFound(t *testing.T) {
	stations := &mockStationRepo{
		delete: func(context.Context, uuid.UUID) error {
			return domain.ErrNotFound
		},
	}
	reg := newRegistry(stations, &mockNotificationRepo{}, "")

	err := reg.Delete(context.Background(), uuid.New())

	assert.ErrorIs(t, err, domain.ErrNotFound)
}

func TestStationRegistry_FindByID_Miss(t *testing.T) {
	reg := newRegistry(&mockStationRepo{}, &mockNotificationRepo{}, "")

	_, ok := reg.FindByID(uuid.New())

	assert.False(t, ok)
}
