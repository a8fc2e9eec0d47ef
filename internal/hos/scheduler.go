// Package hos implements the Hours-of-Service compliance engine: the
// day-by-day duty scheduler and the alert evaluator for the FMCSA
// property-carrying ruleset (11-hour driving, 14-hour on-duty window,
// 70-hour/8-day cycle, 10-hour mandatory rest).
package hos

import (
	"errors"
	"fmt"
	"math"

	"github.com/openhaul/planner/backend/internal/domain"
)

// FMCSA property-carrying driver limits (49 CFR Part 395).
const (
	DrivingLimitPerDay    = 11.0
	OnDutyLimitPerDay     = 14.0
	CycleLimitHours       = 70.0 // 8-day cycle
	MandatoryOffDutyHours = 10.0

	// OnDutyBufferHours is a fixed allowance per day for pre/post-trip
	// duties: inspections, fueling, loading paperwork.
	OnDutyBufferHours = 2.0
)

// ErrComputation is returned when a trip cannot be scheduled under the
// cycle limits: negative trip hours, an exhausted 70-hour cycle, or no
// schedulable hours remaining. The orchestration pipeline surfaces it as
// a planning failure.
var ErrComputation = errors.New("hos computation error")

// planNotes is attached to every generated day. The greedy
// drive-the-legal-maximum policy is deliberately conservative and the
// output is a reviewable draft, not a dispatchable schedule.
var planNotes = []string{
	"Automatic HOS plan generated. Review before dispatch.",
	"Adjustments required for real-world constraints (traffic, loading).",
}

// Schedule allocates totalTripHours of driving across calendar days under
// the three ceilings, given cycleHoursUsed already consumed in the
// driver's 70-hour/8-day cycle.
//
// Each day drives as much as legally possible: driving is capped by the
// 11-hour limit, the hours left to schedule, and the remaining cycle; on
// duty adds the fixed 2-hour buffer, capped by the 14-hour window and the
// remaining cycle. Every day closes with the mandatory 10-hour rest.
//
// All hour math stays in floating point; minute totals are rounded once
// per day at the output boundary so rounding error never compounds
// across days.
func Schedule(totalTripHours, cycleHoursUsed float64) ([]domain.DailyPlan, error) {
	if totalTripHours < 0 {
		return nil, fmt.Errorf("%w: trip duration must be non-negative", ErrComputation)
	}

	cycleRemaining := math.Max(CycleLimitHours-cycleHoursUsed, 0)
	if cycleRemaining <= 0 {
		return nil, fmt.Errorf("%w: driver has exhausted the 70-hour cycle; trip cannot be scheduled", ErrComputation)
	}

	hoursToSchedule := math.Min(totalTripHours, cycleRemaining)
	if hoursToSchedule <= 0 {
		return nil, fmt.Errorf("%w: no remaining hours available to schedule this trip", ErrComputation)
	}

	var days []domain.DailyPlan
	dayNumber := 1
	remainingHours := hoursToSchedule
	remainingCycle := cycleRemaining

	for remainingHours > 0 && remainingCycle > 0 {
		driving := math.Min(DrivingLimitPerDay, math.Min(remainingHours, remainingCycle))
		onDuty := math.Min(driving+OnDutyBufferHours, math.Min(OnDutyLimitPerDay, remainingCycle))

		drivingMinutes := int(math.Round(driving * 60))
		onDutyMinutes := int(math.Round(onDuty * 60))
		offDutyMinutes := int(math.Round(MandatoryOffDutyHours * 60))

		remainingHours -= driving
		remainingCycle -= onDuty

		days = append(days, domain.DailyPlan{
			DayNumber:           dayNumber,
			TotalDrivingMinutes: drivingMinutes,
			TotalOnDutyMinutes:  onDutyMinutes,
			TotalOffDutyMinutes: offDutyMinutes,
			TotalSleeperMinutes: 0,
			RemainingCycleHours: math.Max(remainingCycle, 0),
			Segments: []domain.PlanSegment{
				{Status: domain.DutyStatusOnDuty, Minutes: onDutyMinutes - drivingMinutes, Remarks: "Pre/post-trip activities"},
				{Status: domain.DutyStatusDriving, Minutes: drivingMinutes, Remarks: "Planned driving"},
				{Status: domain.DutyStatusOffDuty, Minutes: offDutyMinutes, Remarks: "Rest"},
			},
			Notes: planNotes,
		})
		dayNumber++
	}

	return days, nil
}
