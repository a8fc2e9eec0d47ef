package domain

// ExportRow is a single row in the driver-log export.
// It is a flat, denormalized view: one row per driver log, with trip
// fields repeated for every log on that trip. Trips with no logs yield
// one row with zero values for all log fields. The external report
// renderer (PDF/CSV) consumes these rows as-is.
type ExportRow struct {
	// Trip fields — repeated for every log on the trip.
	TripID         string  `json:"trip_id"`
	TripStatus     string  `json:"trip_status"`
	StartAddress   string  `json:"start_address"`
	DropoffAddress string  `json:"dropoff_address"`
	TotalMiles     float64 `json:"total_miles"`
	TotalHours     float64 `json:"total_hours"`

	// Log fields — zero values when the trip has no logs.
	DayNumber           int     `json:"day_number"`
	LogDate             string  `json:"log_date"` // "2006-01-02", empty when no log
	TotalOffDutyMinutes int     `json:"total_off_duty_minutes"`
	TotalSleeperMinutes int     `json:"total_sleeper_minutes"`
	TotalDrivingMinutes int     `json:"total_driving_minutes"`
	TotalOnDutyMinutes  int     `json:"total_on_duty_minutes"`
	TotalDistanceMiles  float64 `json:"total_distance_miles"`
	Notes               string  `json:"notes"`
}
