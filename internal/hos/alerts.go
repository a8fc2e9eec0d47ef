package hos

import (
	"fmt"

	"github.com/openhaul/planner/backend/internal/domain"
)

// epsilon guards all floating comparisons against rounding noise in the
// hour arithmetic.
const epsilon = 1e-6

// nearLimitFraction is the share of a regulatory ceiling at which a
// near-limit warning fires. A day at exactly the ceiling is legal and
// expected output of the scheduler, so it raises nothing; the warning
// band is strictly inside (0.95·limit, limit).
const nearLimitFraction = 0.95

const (
	ruleDriving = "11-hour driving limit"
	ruleOnDuty  = "14-hour on-duty window"
	ruleCycle   = "70-hour/8-day cycle"
)

// cycleWarnRemainingHours is the remaining-cycle level at or below which a
// day earns a low-cycle warning.
const cycleWarnRemainingHours = 8.0

// EvaluateAlerts derives rule-violation and near-violation alerts from a
// set of daily plans plus the cycle hours already used before the trip.
// Day-level alerts come first in day order, then the single trip-level
// projected-cycle check. Alerts are pure derived data.
func EvaluateAlerts(days []domain.DailyPlan, cycleHoursUsed float64) []domain.Alert {
	alerts := []domain.Alert{}

	add := func(level domain.AlertLevel, rule, message string, dayNumber *int) {
		alerts = append(alerts, domain.Alert{Level: level, Rule: rule, Message: message, DayNumber: dayNumber})
	}

	for _, day := range days {
		n := day.DayNumber
		dayNumber := &n

		driving := float64(day.TotalDrivingMinutes) / 60.0
		onDuty := float64(day.TotalOnDutyMinutes) / 60.0

		switch {
		case driving > DrivingLimitPerDay+epsilon:
			add(domain.AlertLevelDanger, ruleDriving,
				fmt.Sprintf("Day %d: planned driving of %.1f hrs exceeds FMCSA 11-hour limit.", day.DayNumber, driving),
				dayNumber)
		case driving >= DrivingLimitPerDay*nearLimitFraction && driving < DrivingLimitPerDay-epsilon:
			add(domain.AlertLevelWarning, ruleDriving,
				fmt.Sprintf("Day %d: driving scheduled for %.1f hrs is near the 11-hour limit.", day.DayNumber, driving),
				dayNumber)
		}

		switch {
		case onDuty > OnDutyLimitPerDay+epsilon:
			add(domain.AlertLevelDanger, ruleOnDuty,
				fmt.Sprintf("Day %d: on-duty time of %.1f hrs exceeds FMCSA 14-hour limit.", day.DayNumber, onDuty),
				dayNumber)
		case onDuty >= OnDutyLimitPerDay*nearLimitFraction && onDuty < OnDutyLimitPerDay-epsilon:
			add(domain.AlertLevelWarning, ruleOnDuty,
				fmt.Sprintf("Day %d: on-duty plan %.1f hrs is near the 14-hour limit.", day.DayNumber, onDuty),
				dayNumber)
		}

		switch remaining := day.RemainingCycleHours; {
		case remaining < -epsilon:
			add(domain.AlertLevelDanger, ruleCycle,
				"Cycle hours exceeded. Schedule requires reset before completion.",
				dayNumber)
		case remaining <= cycleWarnRemainingHours:
			add(domain.AlertLevelWarning, ruleCycle,
				fmt.Sprintf("Cycle hours low: %.1f hrs remain after day %d.", remaining, day.DayNumber),
				dayNumber)
		}
	}

	projected := cycleHoursUsed
	for _, day := range days {
		projected += float64(day.TotalOnDutyMinutes) / 60.0
	}

	switch {
	case projected >= CycleLimitHours:
		add(domain.AlertLevelDanger, ruleCycle,
			"Trip plan consumes entire 70-hour cycle. Driver must reset before additional duty.", nil)
	case projected >= CycleLimitHours*0.9:
		add(domain.AlertLevelWarning, ruleCycle,
			"Trip plan uses over 90% of the 70-hour cycle. Monitor remaining hours closely.", nil)
	}

	return alerts
}
