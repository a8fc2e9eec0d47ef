package domain

import (
	"time"

	"github.com/google/uuid"
)

// Route holds the computed path for a trip: encoded polyline geometry plus
// totals from the routing provider. One-to-one with Trip and immutable
// after creation — replanning means a new trip.
type Route struct {
	ID                uuid.UUID `json:"id"`
	TripID            uuid.UUID `json:"trip_id"`
	Polyline          string    `json:"polyline"`
	TotalDistance     float64   `json:"total_distance"`     // miles
	EstimatedDuration float64   `json:"estimated_duration"` // hours
	CreatedAt         time.Time `json:"created_at"`
}
