// Package domain contains the core data types for the trip planner.
// This package has no dependencies on other internal packages and is
// imported by every other one (repo, service, handler).
package domain

import (
	"time"

	"github.com/google/uuid"
)

// TripStatus is the lifecycle state of a trip.
type TripStatus string

// Valid trip statuses. At most one trip per user may be IN_PROGRESS at a
// time; the rule is enforced by a partial unique index in the database,
// not only by the application-level check.
const (
	TripStatusPlanned    TripStatus = "PLANNED"
	TripStatusInProgress TripStatus = "IN_PROGRESS"
	TripStatusCompleted  TripStatus = "COMPLETED"
	TripStatusCancelled  TripStatus = "CANCELLED"
)

// Valid reports whether s is one of the four known trip statuses.
func (s TripStatus) Valid() bool {
	switch s {
	case TripStatusPlanned, TripStatusInProgress, TripStatusCompleted, TripStatusCancelled:
		return true
	}
	return false
}

// Trip is the top-level aggregate: one planned haul from start through
// pickup to dropoff. Its route, stops, and driver logs hang off it.
type Trip struct {
	ID              uuid.UUID        `json:"id"`
	UserID          uuid.UUID        `json:"user_id"`
	StartLocation   Location         `json:"start_location"`
	PickupLocation  Location         `json:"pickup_location"`
	DropoffLocation Location         `json:"dropoff_location"`
	Status          TripStatus       `json:"status"`
	CycleHoursUsed  float64          `json:"cycle_hours_used"`
	TotalMiles      float64          `json:"total_miles"`
	TotalHours      float64          `json:"total_hours"`
	Summary         ItinerarySummary `json:"itinerary_summary"`

	// Carrier paperwork fields printed on the daily log sheet.
	TractorNumber       string   `json:"tractor_number,omitempty"`
	TrailerNumbers      []string `json:"trailer_numbers,omitempty"`
	CarrierNames        []string `json:"carrier_names,omitempty"`
	MainOfficeAddress   string   `json:"main_office_address,omitempty"`
	HomeTerminalAddress string   `json:"home_terminal_address,omitempty"`
	CoDriverName        string   `json:"co_driver_name,omitempty"`
	ShipperName         string   `json:"shipper_name,omitempty"`
	Commodity           string   `json:"commodity,omitempty"`

	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

// TripRequest is the ephemeral input to trip planning. It is consumed to
// create a Trip (synchronously) or serialized as a background job payload;
// it is never persisted as its own entity.
type TripRequest struct {
	StartLocation   Location `json:"start_location" validate:"required"`
	PickupLocation  Location `json:"pickup_location" validate:"required"`
	DropoffLocation Location `json:"dropoff_location" validate:"required"`
	CycleHoursUsed  float64  `json:"cycle_hours_used" validate:"gte=0"`

	TractorNumber       string   `json:"tractor_number,omitempty"`
	TrailerNumbers      []string `json:"trailer_numbers,omitempty"`
	CarrierNames        []string `json:"carrier_names,omitempty"`
	MainOfficeAddress   string   `json:"main_office_address,omitempty"`
	HomeTerminalAddress string   `json:"home_terminal_address,omitempty"`
	CoDriverName        string   `json:"co_driver_name,omitempty"`
	ShipperName         string   `json:"shipper_name,omitempty"`
	Commodity           string   `json:"commodity,omitempty"`
}

// ItinerarySummary is the derived, denormalized record of a planned trip:
// its legs, totals, and HOS compliance data. Stored as JSONB on the trip
// row so clients get the whole picture in one read.
type ItinerarySummary struct {
	Legs               []Leg       `json:"legs"`
	TotalDistanceMiles float64     `json:"total_distance_miles"`
	TotalDurationHours float64     `json:"total_duration_hours"`
	HOSDays            []DailyPlan `json:"hos_days"`
	HOSAlerts          []Alert     `json:"hos_alerts"`
}

// Leg is one hop of the itinerary, from one stop to the next.
type Leg struct {
	Sequence      int      `json:"sequence"`
	FromStopType  StopType `json:"from_stop_type"`
	ToStopType    StopType `json:"to_stop_type"`
	FromLocation  Location `json:"from_location"`
	ToLocation    Location `json:"to_location"`
	DistanceMiles float64  `json:"distance_miles"`
	DurationHours float64  `json:"duration_hours"`
}
