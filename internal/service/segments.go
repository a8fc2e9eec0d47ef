package service

import (
	"fmt"

	"github.com/openhaul/planner/backend/internal/domain"
)

// segmentIncrementMinutes is the granularity duty segments must land on.
const segmentIncrementMinutes = 15

// freeTextLimit caps the location and activity fields; remarks stay
// unbounded.
const freeTextLimit = 255

// segmentTotals aggregates validated segment durations per duty status,
// in minutes. These become the four totals on the driver log row.
type segmentTotals struct {
	offDuty int
	sleeper int
	driving int
	onDuty  int
}

// add accumulates minutes under the given status.
func (t *segmentTotals) add(status domain.DutyStatus, minutes int) {
	switch status {
	case domain.DutyStatusOffDuty:
		t.offDuty += minutes
	case domain.DutyStatusSleeper:
		t.sleeper += minutes
	case domain.DutyStatusDriving:
		t.driving += minutes
	case domain.DutyStatusOnDuty:
		t.onDuty += minutes
	}
}

// sum returns the total minutes across all statuses.
func (t segmentTotals) sum() int {
	return t.offDuty + t.sleeper + t.driving + t.onDuty
}

// normalizeSegments validates the raw segment inputs and converts them to
// persistable segments, aggregating per-status minute totals as it goes.
//
// Enforced rules, all before anything touches the database:
//   - at least one segment
//   - status is one of the four known duty statuses
//   - times parse as HH:MM and end is strictly after start
//   - durations are positive multiples of 15 minutes
//   - segments arrive ordered and non-overlapping (each start must be at
//     or after the previous end)
//   - the day's total does not exceed 1440 minutes
//
// Location and activity are clipped to 255 characters; remarks pass
// through untouched.
func normalizeSegments(inputs []domain.SegmentInput) ([]domain.DutyStatusSegment, segmentTotals, error) {
	var totals segmentTotals

	if len(inputs) == 0 {
		return nil, totals, fmt.Errorf("%w: at least one duty segment is required", domain.ErrValidation)
	}

	segments := make([]domain.DutyStatusSegment, 0, len(inputs))
	var previousEnd domain.MinuteOfDay
	havePrevious := false

	for _, in := range inputs {
		status := domain.DutyStatus(in.Status)
		if !status.Valid() {
			return nil, totals, fmt.Errorf("%w: unsupported duty status %q", domain.ErrValidation, in.Status)
		}

		start, err := domain.ParseClock(in.StartTime)
		if err != nil {
			return nil, totals, fmt.Errorf("%w: invalid start_time format; expected HH:MM", domain.ErrValidation)
		}
		end, err := domain.ParseClock(in.EndTime)
		if err != nil {
			return nil, totals, fmt.Errorf("%w: invalid end_time format; expected HH:MM", domain.ErrValidation)
		}

		if end <= start {
			return nil, totals, fmt.Errorf("%w: segment end_time must be after start_time", domain.ErrValidation)
		}
		minutes := int(end - start)
		if minutes%segmentIncrementMinutes != 0 {
			return nil, totals, fmt.Errorf("%w: duty segments must be in 15-minute increments", domain.ErrValidation)
		}

		if havePrevious && start < previousEnd {
			return nil, totals, fmt.Errorf("%w: duty segments may not overlap", domain.ErrValidation)
		}
		previousEnd = end
		havePrevious = true

		totals.add(status, minutes)

		segments = append(segments, domain.DutyStatusSegment{
			Status:    status,
			StartTime: start,
			EndTime:   end,
			Location:  clip(in.Location, freeTextLimit),
			Activity:  clip(in.Activity, freeTextLimit),
			Remarks:   in.Remarks,
		})
	}

	if totals.sum() > domain.MinutesPerDay {
		return nil, totals, fmt.Errorf("%w: daily duty segments exceed 24 hours", domain.ErrValidation)
	}

	return segments, totals, nil
}

// clip truncates s to at most limit characters.
func clip(s string, limit int) string {
	if len(s) <= limit {
		return s
	}
	return s[:limit]
}
