package handler

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/patimap/backend/internal/domain"
)

// RecordHelpRequest is the body of POST /api/stations/{id}/help.
type RecordHelpRequest struct {
	Kind domain.HelpKind `json:"kind"`
}

// RecordHelp handles POST /api/stations/{id}/help.
// The actor is resolved from the request identity; anonymous users are
// recorded under the guest name rather than rejected.
func (s *Server) RecordHelp(w http.ResponseWriter, r *http.Request) {
	stationID, err := pathID(r)
	if err != nil {
		s.respondJSON(w, http.StatusNotFound, notFoundBody("station not found"))
		return
	}

	var req RecordHelpRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		s.respondJSON(w, http.StatusUnprocessableEntity, requestBody("request body is required"))
		return
	}

	event, err := s.help.RecordHelp(r.Context(), stationID, req.Kind, s.actorName(r))
	if err != nil {
		if errors.Is(err, domain.ErrValidation) {
			s.respondJSON(w, http.StatusUnprocessableEntity, validationBody(err))
			return
		}
		s.internalError(w, "record help", err)
		return
	}

	s.respondJSON(w, http.StatusCreated, event)
}

// ListHelpEvents handles GET /api/stations/{id}/help-events.
// History is served even for stations that no longer exist — events carry
// their own station name snapshot.
func (s *Server) ListHelpEvents(w http.ResponseWriter, r *http.Request) {
	stationID, err := pathID(r)
	if err != nil {
		s.respondJSON(w, http.StatusNotFound, notFoundBody("station not found"))
		return
	}

	events, err := s.help.ListByStation(r.Context(), stationID)
	if err != nil {
		s.internalError(w, "list help events", err)
		return
	}

	s.respondJSON(w, http.StatusOK, events)
}
