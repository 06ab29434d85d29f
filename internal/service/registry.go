// Package service contains the business logic for the PatiMap backend.
// Services validate inputs, enforce business rules, and orchestrate repo
// calls. No SQL lives here — services depend on repo interfaces, not
// implementations.
package service

import (
	"context"
	"fmt"
	"log/slog"
	"strings"
	"sync"

	"github.com/google/uuid"

	"github.com/patimap/backend/internal/domain"
	"github.com/patimap/backend/internal/observability"
	"github.com/patimap/backend/internal/repo"
)

// AreaResolver converts a coordinate into a neighborhood label.
// Implementations never fail: unresolvable coordinates yield a sentinel
// label, so station creation cannot be blocked by the geocoder.
type AreaResolver interface {
	ResolveArea(ctx context.Context, lat, lon float64) string
}

// StationRegistry owns the set of feeding stations and the in-memory
// marker cache derived from them. The cache is a derived copy, not a
// source of truth: List replaces it wholesale from the store, Create
// appends optimistically after a confirmed insert, and Delete removes
// only after the store confirms.
type StationRegistry struct {
	stations      repo.StationRepo
	notifications repo.NotificationRepo
	resolver      AreaResolver
	metrics       *observability.Metrics
	logger        *slog.Logger

	mu    sync.RWMutex
	cache map[uuid.UUID]domain.Station
}

// NewStationRegistry constructs a StationRegistry backed by the provided
// repos and resolver.
func NewStationRegistry(
	stations repo.StationRepo,
	notifications repo.NotificationRepo,
	resolver AreaResolver,
	metrics *observability.Metrics,
	logger *slog.Logger,
) *StationRegistry {
	return &StationRegistry{
		stations:      stations,
		notifications: notifications,
		resolver:      resolver,
		metrics:       metrics,
		logger:        logger,
		cache:         make(map[uuid.UUID]domain.Station),
	}
}

// List returns all stations from the store and refreshes the marker cache.
// Always returns a non-nil slice so callers can safely range over it.
func (s *StationRegistry) List(ctx context.Context) ([]domain.Station, error) {
	stations, err := s.stations.List(ctx)
	if err != nil {
		return nil, fmt.Errorf("service.StationRegistry.List: %w", err)
	}

	s.mu.Lock()
	s.cache = make(map[uuid.UUID]domain.Station, len(stations))
	for _, st := range stations {
		s.cache[st.ID] = st
	}
	s.mu.Unlock()

	if stations == nil {
		return []domain.Station{}, nil
	}
	return stations, nil
}

// Create validates input, resolves the area label, and persists a new
// station. On success the station is appended to the marker cache without
// a full re-list, and a best-effort new_station feed entry is written.
// Returns domain.ErrValidation before any network call when a required
// field is missing or the coordinate is out of range.
func (s *StationRegistry) Create(ctx context.Context, name, status string, lat, lon float64, actorName string) (domain.Station, error) {
	if err := validateStation(name, status, lat, lon); err != nil {
		return domain.Station{}, err
	}

	// Synchronous by contract: the area label is resolved exactly once,
	// at creation, and never re-resolved.
	area := s.resolver.ResolveArea(ctx, lat, lon)

	station := domain.Station{
		Name:      strings.TrimSpace(name),
		Latitude:  lat,
		Longitude: lon,
		Area:      area,
		Status:    strings.TrimSpace(status),
	}

	created, err := s.stations.Create(ctx, station)
	if err != nil {
		return domain.Station{}, fmt.Errorf("service.StationRegistry.Create: %w", err)
	}

	s.mu.Lock()
	s.cache[created.ID] = created
	s.mu.Unlock()
	s.metrics.StationsCreated.Inc()

	s.announceStation(ctx, created, actorName)

	return created, nil
}

// Delete removes a station. The marker cache is touched only after the
// store confirms the delete, so a failed delete leaves the marker visible.
// Help events and notifications referencing the station are left intact.
func (s *StationRegistry) Delete(ctx context.Context, id uuid.UUID) error {
	if err := s.stations.Delete(ctx, id); err != nil {
		return fmt.Errorf("service.StationRegistry.Delete: %w", err)
	}

	s.mu.Lock()
	delete(s.cache, id)
	s.mu.Unlock()
	s.metrics.StationsDeleted.Inc()

	return nil
}

// FindByID looks a station up in the marker cache. It never hits the
// store; a station created through another instance is only visible after
// the next List.
func (s *StationRegistry) FindByID(id uuid.UUID) (domain.Station, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	station, ok := s.cache[id]
	return station, ok
}

// announceStation writes the new_station feed entry. The station itself is
// already persisted, so a failed announcement is logged and dropped rather
// than failing the create.
func (s *StationRegistry) announceStation(ctx context.Context, station domain.Station, actorName string) {
	entry := domain.Notification{
		Kind:        domain.NotifyNewStation,
		Title:       "Yeni İstasyon",
		StationName: station.Name,
		ActorName:   actorName,
		Message:     domain.NewStationMessage(actorName),
		CreatedAt:   domain.Clock().Now().UTC(),
	}

	if _, err := s.notifications.Create(ctx, entry); err != nil {
		s.metrics.PartialFailures.Inc()
		s.logger.Error("station created but feed entry failed",
			"station_id", station.ID, "error", err)
		return
	}
	s.metrics.NotificationsWritten.WithLabelValues(string(domain.NotifyNewStation)).Inc()
}

// validateStation enforces the creation preconditions.
//   - Name and status must be non-empty (whitespace-only is rejected).
//   - The coordinate must be a plausible (lat, lon) pair.
func validateStation(name, status string, lat, lon float64) error {
	if strings.TrimSpace(name) == "" {
		return fmt.Errorf("%w: name is required", domain.ErrValidation)
	}
	if strings.TrimSpace(status) == "" {
		return fmt.Errorf("%w: status is required", domain.ErrValidation)
	}
	if lat < -90 || lat > 90 {
		return fmt.Errorf("%w: latitude must be between -90 and 90", domain.ErrValidation)
	}
	if lon < -180 || lon > 180 {
		return fmt.Errorf("%w: longitude must be between -180 and 180", domain.ErrValidation)
	}
	return nil
}
