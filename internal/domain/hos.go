package domain

// DutyStatus is one of the four FMCSA duty statuses a driver can hold
// during a segment of the day.
type DutyStatus string

const (
	DutyStatusOffDuty DutyStatus = "OFF_DUTY"
	DutyStatusSleeper DutyStatus = "SLEEPER_BERTH"
	DutyStatusDriving DutyStatus = "DRIVING"
	DutyStatusOnDuty  DutyStatus = "ON_DUTY"
)

// Valid reports whether s is one of the four known duty statuses.
func (s DutyStatus) Valid() bool {
	switch s {
	case DutyStatusOffDuty, DutyStatusSleeper, DutyStatusDriving, DutyStatusOnDuty:
		return true
	}
	return false
}

// DailyPlan is one day of the HOS scheduler's output: planned minute totals
// per duty status, the cycle hours left after the day, and the duty-segment
// breakdown the totals were built from.
//
// Hour math stays in floating point inside the scheduler; minute totals are
// rounded once, here at the output boundary.
type DailyPlan struct {
	DayNumber           int           `json:"day_number"`
	TotalDrivingMinutes int           `json:"total_driving_minutes"`
	TotalOnDutyMinutes  int           `json:"total_on_duty_minutes"`
	TotalOffDutyMinutes int           `json:"total_off_duty_minutes"`
	TotalSleeperMinutes int           `json:"total_sleeper_minutes"`
	RemainingCycleHours float64       `json:"remaining_cycle_hours"`
	Segments            []PlanSegment `json:"segments"`
	Notes               []string      `json:"notes"`
}

// PlanSegment is one duty block inside a DailyPlan.
type PlanSegment struct {
	Status  DutyStatus `json:"status"`
	Minutes int        `json:"minutes"`
	Remarks string     `json:"remarks"`
}

// AlertLevel is the severity of a compliance alert.
type AlertLevel string

const (
	AlertLevelWarning AlertLevel = "warning"
	AlertLevelDanger  AlertLevel = "danger"
)

// Alert flags a near-limit or over-limit HOS condition in a trip plan.
// DayNumber is nil for trip-level alerts (the projected-cycle check).
// Alerts are derived data only — they never mutate state.
type Alert struct {
	Level     AlertLevel `json:"level"`
	Rule      string     `json:"rule"`
	Message   string     `json:"message"`
	DayNumber *int       `json:"day_number"`
}
