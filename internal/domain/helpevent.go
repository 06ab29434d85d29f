package domain

import (
	"time"

	"github.com/google/uuid"
)

// HelpKind is the kind of supply a volunteer delivered to a station.
type HelpKind string

const (
	HelpWater HelpKind = "water"
	HelpFood  HelpKind = "food"
)

// Valid reports whether k is one of the known help kinds.
func (k HelpKind) Valid() bool {
	return k == HelpWater || k == HelpFood
}

// HelpEvent records that a volunteer delivered food or water to a station.
// StationID is a weak reference: no foreign key, so the event survives the
// station's deletion. StationName and ActorName are snapshots captured at
// write time for the same reason — history must keep rendering after the
// station or the user profile is gone.
type HelpEvent struct {
	ID          uuid.UUID `json:"id"`
	StationID   uuid.UUID `json:"station_id"`
	StationName string    `json:"station_name"`
	Kind        HelpKind  `json:"kind"`
	ActorName   string    `json:"actor_name"`
	CreatedAt   time.Time `json:"created_at"`

	// Seq is the store-assigned insertion order, used only as a sort
	// tiebreak when two events share a created_at.
	Seq int64 `json:"-"`
}
