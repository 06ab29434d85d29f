// Package domain contains the core data types for the PatiMap backend.
// This package has zero heavyweight dependencies and is imported by every
// other internal package (repo, service, feed, handler).
package domain

import (
	"time"

	"github.com/google/uuid"
)

// Station is a physical feeding point placed on the map by a volunteer.
// Name, the coordinate, and Area are immutable after creation; stations
// are never updated in place, only created and deleted.
type Station struct {
	ID        uuid.UUID `json:"id"`
	Name      string    `json:"name"`
	Latitude  float64   `json:"latitude"`
	Longitude float64   `json:"longitude"`

	// Area is the neighborhood label resolved from the coordinate at
	// creation time and never re-resolved. It is always non-empty: when
	// geocoding fails a sentinel fallback label is stored instead.
	Area string `json:"area"`

	// Status is a free-text supply level ("dolu", "az kaldı", ...).
	Status string `json:"status"`

	CreatedAt time.Time `json:"created_at"`
}
