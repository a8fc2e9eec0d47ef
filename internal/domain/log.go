package domain

import (
	"time"

	"github.com/google/uuid"
)

// DriverLog is one day of a driver's record of duty status for a trip.
// DayNumber is 1-based and unique within a trip. The four minute totals
// always equal the per-status sums of the log's segments — both are
// rewritten together on every upsert.
type DriverLog struct {
	ID                  uuid.UUID `json:"id"`
	TripID              uuid.UUID `json:"trip_id"`
	DayNumber           int       `json:"day_number"`
	LogDate             time.Time `json:"log_date"`
	TotalOffDutyMinutes int       `json:"total_off_duty_minutes"`
	TotalSleeperMinutes int       `json:"total_sleeper_minutes"`
	TotalDrivingMinutes int       `json:"total_driving_minutes"`
	TotalOnDutyMinutes  int       `json:"total_on_duty_minutes"`
	TotalDistanceMiles  float64   `json:"total_distance_miles"`
	Notes               string    `json:"notes,omitempty"`
	CreatedAt           time.Time `json:"created_at"`
	UpdatedAt           time.Time `json:"updated_at"`

	// Segments is populated on reads that join the segment table,
	// ordered by start time.
	Segments []DutyStatusSegment `json:"segments,omitempty"`
}

// DutyStatusSegment is a contiguous time-of-day interval during which the
// driver held one duty status. Segments within a log are non-overlapping,
// ordered by start time, and sized in 15-minute increments.
type DutyStatusSegment struct {
	ID        uuid.UUID   `json:"id"`
	LogID     uuid.UUID   `json:"log_id"`
	Status    DutyStatus  `json:"status"`
	StartTime MinuteOfDay `json:"start_time"`
	EndTime   MinuteOfDay `json:"end_time"`
	Location  string      `json:"location,omitempty"`
	Activity  string      `json:"activity,omitempty"`
	Remarks   string      `json:"remarks,omitempty"`
	CreatedAt time.Time   `json:"created_at"`
	UpdatedAt time.Time   `json:"updated_at"`
}

// DurationMinutes returns the segment length in minutes.
func (s DutyStatusSegment) DurationMinutes() int {
	return int(s.EndTime - s.StartTime)
}

// LogInput carries everything needed to create or replace one day's
// driver log.
type LogInput struct {
	TripID    uuid.UUID
	DayNumber int
	// LogDate defaults to today when zero.
	LogDate time.Time
	Notes   string
	// TotalDistanceMiles, when nil, preserves the existing log's value
	// (zero for a new log).
	TotalDistanceMiles *float64
	Segments           []SegmentInput
}

// SegmentInput is the raw, unvalidated form of a duty segment as supplied
// by the caller. Times are "HH:MM" strings; the validator parses and
// normalizes them before anything touches the database.
type SegmentInput struct {
	Status    string `json:"status"`
	StartTime string `json:"start_time"`
	EndTime   string `json:"end_time"`
	Location  string `json:"location,omitempty"`
	Activity  string `json:"activity,omitempty"`
	Remarks   string `json:"remarks,omitempty"`
}
