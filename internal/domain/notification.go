package domain

import (
	"fmt"
	"time"

	"github.com/google/uuid"
)

// NotificationKind tags a feed entry. The set is closed; this backend
// produces new_station, water_help, and food_help — refill_needed and
// thank_you are reserved for future event producers.
type NotificationKind string

const (
	NotifyNewStation   NotificationKind = "new_station"
	NotifyRefillNeeded NotificationKind = "refill_needed"
	NotifyThankYou     NotificationKind = "thank_you"
	NotifyWaterHelp    NotificationKind = "water_help"
	NotifyFoodHelp     NotificationKind = "food_help"
)

// Notification is a user-facing feed entry derived from a help event or a
// station creation. Entries are append-only: the feed never edits or
// removes one. StationName and ActorName are write-time snapshots, never
// re-derived from live rows.
type Notification struct {
	ID          uuid.UUID        `json:"id"`
	Kind        NotificationKind `json:"kind"`
	Title       string           `json:"title"`
	StationName string           `json:"station_name"`
	ActorName   string           `json:"actor_name"`
	Message     string           `json:"message"`
	CreatedAt   time.Time        `json:"created_at"`

	// Seq is the store-assigned insertion order; the feed sorts by
	// created_at descending with Seq breaking ties.
	Seq int64 `json:"-"`
}

// NotificationKindFor maps a help kind to its feed entry kind.
func NotificationKindFor(k HelpKind) NotificationKind {
	if k == HelpWater {
		return NotifyWaterHelp
	}
	return NotifyFoodHelp
}

// HelpTitle returns the feed headline for a help kind.
func HelpTitle(k HelpKind) string {
	if k == HelpWater {
		return "Su Yardımı"
	}
	return "Mama Yardımı"
}

// HelpMessage formats the feed body for a delivery.
func HelpMessage(actorName, stationName string) string {
	return fmt.Sprintf("%s adlı kullanıcı %s istasyonuna yardım yaptı.", actorName, stationName)
}

// NewStationMessage formats the feed body for a freshly placed station.
func NewStationMessage(actorName string) string {
	return fmt.Sprintf("%s yeni bir istasyon ekledi.", actorName)
}
