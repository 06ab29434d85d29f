// Package handler implements the HTTP handlers for the PatiMap backend.
// All handlers are methods on Server. Methods are split into
// resource-specific files (health.go, station.go, etc.) but all share the
// same Server struct so they can access its dependencies.
package handler

import (
	"context"
	"encoding/json"
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"

	"github.com/patimap/backend/internal/domain"
	"github.com/patimap/backend/internal/feed"
)

// StationServicer defines the business operations the station handlers
// depend on. Defining the interface here (in the consumer package) follows
// the Go convention: "accept interfaces, return concrete types". It lets
// handler tests inject a mock without touching the database or service
// layer.
type StationServicer interface {
	List(ctx context.Context) ([]domain.Station, error)
	Create(ctx context.Context, name, status string, lat, lon float64, actorName string) (domain.Station, error)
	Delete(ctx context.Context, id uuid.UUID) error
}

// HelpServicer defines the business operations the help handlers depend on.
type HelpServicer interface {
	RecordHelp(ctx context.Context, stationID uuid.UUID, kind domain.HelpKind, actorName string) (domain.HelpEvent, error)
	ListByStation(ctx context.Context, stationID uuid.UUID) ([]domain.HelpEvent, error)
}

// FeedServicer defines the notification feed operations the handlers
// depend on. Subscriptions returned by Subscribe must be released via
// Unsubscribe on every teardown path.
type FeedServicer interface {
	List(ctx context.Context) ([]domain.Notification, error)
	Subscribe(onChange func([]domain.Notification)) *feed.Subscription
	Unsubscribe(sub *feed.Subscription)
}

// NameResolver resolves the current user's display name. Anonymous or
// unresolvable users get the guest name; resolution never fails.
type NameResolver interface {
	DisplayName(ctx context.Context, userID string) string
}

// Server holds the handler dependencies for all API endpoints.
// Methods are in resource-specific files but all operate on this struct.
type Server struct {
	stations StationServicer
	help     HelpServicer
	feed     FeedServicer
	names    NameResolver
	logger   *slog.Logger
}

// NewServer constructs the Server with all its dependencies.
func NewServer(stations StationServicer, help HelpServicer, fd FeedServicer, names NameResolver, logger *slog.Logger) *Server {
	return &Server{stations: stations, help: help, feed: fd, names: names, logger: logger}
}

// Routes registers all API endpoints on the given router.
func (s *Server) Routes(r chi.Router) {
	r.Get("/healthz", s.GetHealth)

	r.Route("/api", func(r chi.Router) {
		r.Get("/stations", s.ListStations)
		r.Post("/stations", s.CreateStation)
		r.Delete("/stations/{id}", s.DeleteStation)
		r.Get("/stations/{id}/help-events", s.ListHelpEvents)
		r.Post("/stations/{id}/help", s.RecordHelp)

		r.Get("/notifications", s.ListNotifications)
		r.Get("/notifications/stream", s.StreamNotifications)
	})
}

// userIDHeader carries the authenticated user's ID, set by the identity
// service's edge proxy. Absent for anonymous requests.
const userIDHeader = "X-User-Id"

// actorName resolves the display name of the user behind the request.
func (s *Server) actorName(r *http.Request) string {
	return s.names.DisplayName(r.Context(), r.Header.Get(userIDHeader))
}

// respondJSON writes v as a JSON response with the given status code.
func (s *Server) respondJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		s.logger.Error("response encode failed", "error", err)
	}
}

// pathID parses the {id} URL parameter as a UUID.
func pathID(r *http.Request) (uuid.UUID, error) {
	return uuid.Parse(chi.URLParam(r, "id"))
}
