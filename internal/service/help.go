package service

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"github.com/google/uuid"

	"github.com/patimap/backend/internal/domain"
	"github.com/patimap/backend/internal/observability"
	"github.com/patimap/backend/internal/repo"
)

// StationFinder is the slice of the registry the help recorder needs:
// a cache-only station lookup.
type StationFinder interface {
	FindByID(id uuid.UUID) (domain.Station, bool)
}

// HelpRecorder records help deliveries and derives feed entries from them.
// The two writes are deliberately not transactional: a help event whose
// feed entry failed is an accepted inconsistency. The delivery happened;
// losing one feed line is preferable to rolling back the record of it.
type HelpRecorder struct {
	finder        StationFinder
	stations      repo.StationRepo
	events        repo.HelpEventRepo
	notifications repo.NotificationRepo
	metrics       *observability.Metrics
	logger        *slog.Logger
}

// NewHelpRecorder constructs a HelpRecorder.
func NewHelpRecorder(
	finder StationFinder,
	stations repo.StationRepo,
	events repo.HelpEventRepo,
	notifications repo.NotificationRepo,
	metrics *observability.Metrics,
	logger *slog.Logger,
) *HelpRecorder {
	return &HelpRecorder{
		finder:        finder,
		stations:      stations,
		events:        events,
		notifications: notifications,
		metrics:       metrics,
		logger:        logger,
	}
}

// RecordHelp persists a help delivery against a station and, on success,
// a matching feed entry.
//
// The station name is resolved best-effort: marker cache first, then a
// direct store read (the station may exist but not be cached yet), and
// finally an empty string — a nameless notification is still meaningful,
// so name resolution never fails the operation.
//
// If the help event write fails, no feed entry is written and the error
// is returned. If the feed entry write fails afterwards, the delivery
// stands: the failure is logged and counted, and RecordHelp still
// succeeds.
func (h *HelpRecorder) RecordHelp(ctx context.Context, stationID uuid.UUID, kind domain.HelpKind, actorName string) (domain.HelpEvent, error) {
	if !kind.Valid() {
		return domain.HelpEvent{}, fmt.Errorf("%w: kind must be water or food", domain.ErrValidation)
	}

	stationName := h.stationName(ctx, stationID)
	now := domain.Clock().Now().UTC()

	event := domain.HelpEvent{
		StationID:   stationID,
		StationName: stationName,
		Kind:        kind,
		ActorName:   actorName,
		CreatedAt:   now,
	}

	recorded, err := h.events.Create(ctx, event)
	if err != nil {
		return domain.HelpEvent{}, fmt.Errorf("service.HelpRecorder.RecordHelp: %w", err)
	}
	h.metrics.HelpEventsRecorded.WithLabelValues(string(kind)).Inc()

	entry := domain.Notification{
		Kind:        domain.NotificationKindFor(kind),
		Title:       domain.HelpTitle(kind),
		StationName: stationName,
		ActorName:   actorName,
		Message:     domain.HelpMessage(actorName, stationName),
		CreatedAt:   now,
	}

	if _, err := h.notifications.Create(ctx, entry); err != nil {
		h.metrics.PartialFailures.Inc()
		h.logger.Error("help recorded but feed entry failed",
			"help_event_id", recorded.ID, "station_id", stationID, "error", err)
		return recorded, nil
	}
	h.metrics.NotificationsWritten.WithLabelValues(string(entry.Kind)).Inc()

	return recorded, nil
}

// ListByStation returns the help history of a station, newest first.
// Always returns a non-nil slice so callers can safely range over it.
func (h *HelpRecorder) ListByStation(ctx context.Context, stationID uuid.UUID) ([]domain.HelpEvent, error) {
	events, err := h.events.ListByStation(ctx, stationID)
	if err != nil {
		return nil, fmt.Errorf("service.HelpRecorder.ListByStation: %w", err)
	}
	if events == nil {
		return []domain.HelpEvent{}, nil
	}
	return events, nil
}

// stationName resolves the display name for a station: cache, then store,
// then empty string.
func (h *HelpRecorder) stationName(ctx context.Context, stationID uuid.UUID) string {
	if station, ok := h.finder.FindByID(stationID); ok {
		return station.Name
	}

	station, err := h.stations.GetByID(ctx, stationID)
	if err != nil {
		if !errors.Is(err, domain.ErrNotFound) {
			h.logger.Warn("station name lookup failed", "station_id", stationID, "error", err)
		}
		return ""
	}
	return station.Name
}
