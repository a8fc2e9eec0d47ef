package service

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/openhaul/planner/backend/internal/domain"
)

func TestNormalizeSegments(t *testing.T) {
	segments, totals, err := normalizeSegments([]domain.SegmentInput{
		{Status: "OFF_DUTY", StartTime: "00:00", EndTime: "07:00"},
		{Status: "ON_DUTY", StartTime: "07:00", EndTime: "08:00", Activity: "Fueling"},
		{Status: "DRIVING", StartTime: "08:00", EndTime: "13:30", Location: "US-50 E"},
		{Status: "SLEEPER_BERTH", StartTime: "13:30", EndTime: "15:00"},
	})

	require.NoError(t, err)
	require.Len(t, segments, 4)

	assert.Equal(t, 420, totals.offDuty)
	assert.Equal(t, 60, totals.onDuty)
	assert.Equal(t, 330, totals.driving)
	assert.Equal(t, 90, totals.sleeper)
	assert.Equal(t, 900, totals.sum())

	assert.Equal(t, domain.DutyStatusDriving, segments[2].Status)
	assert.Equal(t, domain.MinuteOfDay(480), segments[2].StartTime)
	assert.Equal(t, domain.MinuteOfDay(810), segments[2].EndTime)
	assert.Equal(t, "US-50 E", segments[2].Location)
}

func TestNormalizeSegments_Rejections(t *testing.T) {
	cases := []struct {
		name    string
		inputs  []domain.SegmentInput
		wantMsg string
	}{
		{
			name:    "empty input",
			inputs:  nil,
			wantMsg: "at least one duty segment is required",
		},
		{
			name: "unknown status",
			inputs: []domain.SegmentInput{
				{Status: "NAPPING", StartTime: "00:00", EndTime: "01:00"},
			},
			wantMsg: `unsupported duty status "NAPPING"`,
		},
		{
			name: "malformed start time",
			inputs: []domain.SegmentInput{
				{Status: "OFF_DUTY", StartTime: "7am", EndTime: "08:00"},
			},
			wantMsg: "invalid start_time format",
		},
		{
			name: "malformed end time",
			inputs: []domain.SegmentInput{
				{Status: "OFF_DUTY", StartTime: "07:00", EndTime: "25:61"},
			},
			wantMsg: "invalid end_time format",
		},
		{
			name: "end before start",
			inputs: []domain.SegmentInput{
				{Status: "DRIVING", StartTime: "09:00", EndTime: "08:00"},
			},
			wantMsg: "end_time must be after start_time",
		},
		{
			name: "zero-length segment",
			inputs: []domain.SegmentInput{
				{Status: "DRIVING", StartTime: "09:00", EndTime: "09:00"},
			},
			wantMsg: "end_time must be after start_time",
		},
		{
			name: "off-grid duration",
			inputs: []domain.SegmentInput{
				{Status: "DRIVING", StartTime: "09:00", EndTime: "09:20"},
			},
			wantMsg: "15-minute increments",
		},
		{
			name: "overlapping segments",
			inputs: []domain.SegmentInput{
				{Status: "DRIVING", StartTime: "08:00", EndTime: "12:00"},
				{Status: "ON_DUTY", StartTime: "11:00", EndTime: "13:00"},
			},
			wantMsg: "may not overlap",
		},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			_, _, err := normalizeSegments(tc.inputs)

			require.Error(t, err)
			assert.ErrorIs(t, err, domain.ErrValidation)
			assert.ErrorContains(t, err, tc.wantMsg)
		})
	}
}

func TestNormalizeSegments_GapsBetweenSegmentsAreFine(t *testing.T) {
	_, totals, err := normalizeSegments([]domain.SegmentInput{
		{Status: "DRIVING", StartTime: "06:00", EndTime: "10:00"},
		{Status: "DRIVING", StartTime: "14:00", EndTime: "18:00"},
	})

	require.NoError(t, err)
	assert.Equal(t, 480, totals.driving)
}

func TestNormalizeSegments_NearlyFullDayIsAllowed(t *testing.T) {
	// 23:45 is the latest end the HH:MM grid can express.
	_, totals, err := normalizeSegments([]domain.SegmentInput{
		{Status: "SLEEPER_BERTH", StartTime: "00:00", EndTime: "10:00"},
		{Status: "DRIVING", StartTime: "10:00", EndTime: "23:45"},
	})

	require.NoError(t, err)
	assert.Equal(t, domain.MinutesPerDay-15, totals.sum())
}

func TestNormalizeSegments_ClipsFreeText(t *testing.T) {
	long := strings.Repeat("a", freeTextLimit+40)

	segments, _, err := normalizeSegments([]domain.SegmentInput{
		{
			Status:    "ON_DUTY",
			StartTime: "08:00",
			EndTime:   "09:00",
			Location:  long,
			Activity:  long,
			Remarks:   long,
		},
	})

	require.NoError(t, err)
	assert.Len(t, segments[0].Location, freeTextLimit)
	assert.Len(t, segments[0].Activity, freeTextLimit)
	assert.Len(t, segments[0].Remarks, freeTextLimit+40, "remarks are stored unclipped")
}
