package handler

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/patimap/backend/internal/domain"
)

// CreateStationRequest is the body of POST /api/stations.
// Latitude and longitude are pointers so a missing coordinate is
// distinguishable from a legitimate zero value.
type CreateStationRequest struct {
	Name      string   `json:"name"`
	Status    string   `json:"status"`
	Latitude  *float64 `json:"latitude"`
	Longitude *float64 `json:"longitude"`
}

// ListStations handles GET /api/stations.
// Every call is an explicit full refresh from the store; station markers
// have no live subscription, only the notification feed does.
func (s *Server) ListStations(w http.ResponseWriter, r *http.Request) {
	stations, err := s.stations.List(r.Context())
	if err != nil {
		s.internalError(w, "list stations", err)
		return
	}
	s.respondJSON(w, http.StatusOK, stations)
}

// CreateStation handles POST /api/stations.
func (s *Server) CreateStation(w http.ResponseWriter, r *http.Request) {
	var req CreateStationRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		s.respondJSON(w, http.StatusUnprocessableEntity, requestBody("request body is required"))
		return
	}
	if req.Latitude == nil || req.Longitude == nil {
		s.respondJSON(w, http.StatusUnprocessableEntity, requestBody("latitude and longitude are required"))
		return
	}

	created, err := s.stations.Create(r.Context(), req.Name, req.Status,
		*req.Latitude, *req.Longitude, s.actorName(r))
	if err != nil {
		if errors.Is(err, domain.ErrValidation) {
			s.respondJSON(w, http.StatusUnprocessableEntity, validationBody(err))
			return
		}
		s.internalError(w, "create station", err)
		return
	}

	s.respondJSON(w, http.StatusCreated, created)
}

// DeleteStation handles DELETE /api/stations/{id}.
// The client is expected to have confirmed the action with the user; an
// explicit DELETE is the second step of that contract.
func (s *Server) DeleteStation(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r)
	if err != nil {
		s.respondJSON(w, http.StatusNotFound, notFoundBody("station not found"))
		return
	}

	if err := s.stations.Delete(r.Context(), id); err != nil {
		if errors.Is(err, domain.ErrNotFound) {
			s.respondJSON(w, http.StatusNotFound, notFoundBody("station not found"))
			return
		}
		s.internalError(w, "delete station", err)
		return
	}

	w.WriteHeader(http.StatusNoContent)
}

// internalError logs err and responds with a generic 500 body.
func (s *Server) internalError(w http.ResponseWriter, op string, err error) {
	s.logger.Error(op+" failed", "error", err)
	s.respondJSON(w, http.StatusInternalServerError, internalBody())
}
