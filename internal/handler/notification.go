package handler

import (
	"encoding/json"
	"fmt"
	"net/http"
	"time"

	"github.com/patimap/backend/internal/domain"
)

// ListNotifications handles GET /api/notifications.
func (s *Server) ListNotifications(w http.ResponseWriter, r *http.Request) {
	entries, err := s.feed.List(r.Context())
	if err != nil {
		s.internalError(w, "list notifications", err)
		return
	}
	s.respondJSON(w, http.StatusOK, entries)
}

// StreamNotifications handles GET /api/notifications/stream as a
// Server-Sent Events stream. The client receives the full ordered feed on
// connect and again after every change to the notifications table. The
// subscription is released when the client disconnects.
func (s *Server) StreamNotifications(w http.ResponseWriter, r *http.Request) {
	flusher, ok := w.(http.Flusher)
	if !ok {
		http.Error(w, "streaming not supported", http.StatusInternalServerError)
		return
	}

	w.Header().Set("Content-Type", "text/event-stream")
	w.Header().Set("Cache-Control", "no-cache")
	w.Header().Set("Connection", "keep-alive")
	w.Header().Set("X-Accel-Buffering", "no")

	// Bridge the feed callback onto a latest-wins channel the write loop
	// consumes, so a slow client never blocks feed dispatch.
	updates := make(chan []domain.Notification, 1)
	sub := s.feed.Subscribe(func(entries []domain.Notification) {
		for {
			select {
			case updates <- entries:
				return
			default:
				select {
				case <-updates:
				default:
				}
			}
		}
	})
	defer s.feed.Unsubscribe(sub)

	// Initial snapshot so the viewer does not wait for the first change.
	entries, err := s.feed.List(r.Context())
	if err != nil {
		s.logger.Error("feed snapshot failed", "error", err)
		return
	}
	if err := writeFeedEvent(w, entries); err != nil {
		return
	}
	flusher.Flush()

	keepalive := time.NewTicker(30 * time.Second)
	defer keepalive.Stop()

	for {
		select {
		case <-r.Context().Done():
			return
		case entries := <-updates:
			if err := writeFeedEvent(w, entries); err != nil {
				return
			}
			flusher.Flush()
		case <-keepalive.C:
			if _, err := fmt.Fprint(w, ": keepalive\n\n"); err != nil {
				return
			}
			flusher.Flush()
		}
	}
}

// writeFeedEvent writes one SSE event carrying the full ordered feed.
func writeFeedEvent(w http.ResponseWriter, entries []domain.Notification) error {
	data, err := json.Marshal(entries)
	if err != nil {
		return err
	}
	_, err = fmt.Fprintf(w, "event: notifications\ndata: %s\n\n", data)
	return err
}
