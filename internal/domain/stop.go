package domain

import (
	"time"

	"github.com/google/uuid"
)

// StopType classifies a stop along a route.
type StopType string

// Known stop types. The planning pipeline currently emits only START,
// PICKUP, and DROPOFF; REST and FUEL are reserved for inserted breaks.
const (
	StopTypeStart   StopType = "START"
	StopTypePickup  StopType = "PICKUP"
	StopTypeDropoff StopType = "DROPOFF"
	StopTypeRest    StopType = "REST"
	StopTypeFuel    StopType = "FUEL"
)

// Stop is a single ordered waypoint on a route. Sequence values are
// 1-based and contiguous within a route; DistanceFromPrevious and
// DurationFromPrevious describe the leg arriving at this stop and are
// zero for the first stop.
type Stop struct {
	ID                   uuid.UUID `json:"id"`
	RouteID              uuid.UUID `json:"route_id"`
	Type                 StopType  `json:"type"`
	Location             Location  `json:"location"`
	DurationMinutes      int       `json:"duration_minutes"`
	Sequence             int       `json:"sequence"`
	DistanceFromPrevious float64   `json:"distance_from_previous"`
	DurationFromPrevious float64   `json:"duration_from_previous"`
	CreatedAt            time.Time `json:"created_at"`
	UpdatedAt            time.Time `json:"updated_at"`
}
