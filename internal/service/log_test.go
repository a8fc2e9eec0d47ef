package service_test

import (
	"context"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/openhaul/planner/backend/internal/domain"
	"github.com/openhaul/planner/backend/internal/repo"
	"github.com/openhaul/planner/backend/internal/service"
)

func segmentInputsFixture() []domain.SegmentInput {
	return []domain.SegmentInput{
		{Status: "OFF_DUTY", StartTime: "00:00", EndTime: "06:00"},
		{Status: "ON_DUTY", StartTime: "06:00", EndTime: "07:00", Activity: "Pre-trip inspection"},
		{Status: "DRIVING", StartTime: "07:00", EndTime: "12:30", Location: "I-80 W"},
	}
}

func TestLogService_Upsert(t *testing.T) {
	userID := uuid.New()
	tripID := uuid.New()
	logID := uuid.New()

	var savedLog domain.DriverLog
	var replacedSegments []domain.DutyStatusSegment

	trips := &mockTripRepo{
		GetByIDFn: func(_ context.Context, uID, tID uuid.UUID) (domain.Trip, error) {
			assert.Equal(t, userID, uID)
			assert.Equal(t, tripID, tID)
			return domain.Trip{ID: tripID, UserID: userID}, nil
		},
	}
	logs := &mockLogRepo{
		UpsertFn: func(_ context.Context, log domain.DriverLog) (domain.DriverLog, error) {
			savedLog = log
			log.ID = logID
			return log, nil
		},
		ReplaceSegmentsFn: func(_ context.Context, id uuid.UUID, segments []domain.DutyStatusSegment) ([]domain.DutyStatusSegment, error) {
			assert.Equal(t, logID, id)
			replacedSegments = segments
			return segments, nil
		},
	}

	repos := repo.Repos{Trips: trips, Logs: logs}
	svc := service.NewLogService(repos, &fakeTransactor{repos: repos})

	distance := 312.5
	got, err := svc.Upsert(context.Background(), userID, domain.LogInput{
		TripID:             tripID,
		DayNumber:          1,
		LogDate:            time.Date(2026, 3, 9, 0, 0, 0, 0, time.UTC),
		Notes:              "first day",
		TotalDistanceMiles: &distance,
		Segments:           segmentInputsFixture(),
	})

	require.NoError(t, err)
	assert.Equal(t, logID, got.ID)

	// Totals derive from the validated segments, per status.
	assert.Equal(t, 360, savedLog.TotalOffDutyMinutes)
	assert.Equal(t, 60, savedLog.TotalOnDutyMinutes)
	assert.Equal(t, 330, savedLog.TotalDrivingMinutes)
	assert.Equal(t, 0, savedLog.TotalSleeperMinutes)
	assert.Equal(t, 312.5, savedLog.TotalDistanceMiles)

	require.Len(t, replacedSegments, 3)
	assert.Equal(t, domain.MinuteOfDay(420), replacedSegments[2].StartTime)
	assert.Equal(t, domain.MinuteOfDay(750), replacedSegments[2].EndTime)
	require.Len(t, got.Segments, 3)
}

func TestLogService_Upsert_PreservesExistingDistance(t *testing.T) {
	tripID := uuid.New()

	trips := &mockTripRepo{
		GetByIDFn: func(_ context.Context, _, _ uuid.UUID) (domain.Trip, error) {
			return domain.Trip{ID: tripID}, nil
		},
	}

	var savedLog domain.DriverLog
	logs := &mockLogRepo{
		GetByTripDayFn: func(_ context.Context, _ uuid.UUID, _ int) (domain.DriverLog, error) {
			return domain.DriverLog{TotalDistanceMiles: 540.0}, nil
		},
		UpsertFn: func(_ context.Context, log domain.DriverLog) (domain.DriverLog, error) {
			savedLog = log
			return log, nil
		},
		ReplaceSegmentsFn: func(_ context.Context, _ uuid.UUID, segments []domain.DutyStatusSegment) ([]domain.DutyStatusSegment, error) {
			return segments, nil
		},
	}

	repos := repo.Repos{Trips: trips, Logs: logs}
	svc := service.NewLogService(repos, &fakeTransactor{repos: repos})

	_, err := svc.Upsert(context.Background(), uuid.New(), domain.LogInput{
		TripID:    tripID,
		DayNumber: 1,
		Segments:  segmentInputsFixture(),
	})

	require.NoError(t, err)
	assert.Equal(t, 540.0, savedLog.TotalDistanceMiles,
		"omitting the distance must keep the stored value")
}

func TestLogService_Upsert_NewLogWithoutDistanceDefaultsToZero(t *testing.T) {
	trips := &mockTripRepo{
		GetByIDFn: func(_ context.Context, _, _ uuid.UUID) (domain.Trip, error) {
			return domain.Trip{}, nil
		},
	}

	var savedLog domain.DriverLog
	logs := &mockLogRepo{
		GetByTripDayFn: func(_ context.Context, _ uuid.UUID, _ int) (domain.DriverLog, error) {
			return domain.DriverLog{}, domain.ErrNotFound
		},
		UpsertFn: func(_ context.Context, log domain.DriverLog) (domain.DriverLog, error) {
			savedLog = log
			return log, nil
		},
		ReplaceSegmentsFn: func(_ context.Context, _ uuid.UUID, segments []domain.DutyStatusSegment) ([]domain.DutyStatusSegment, error) {
			return segments, nil
		},
	}

	repos := repo.Repos{Trips: trips, Logs: logs}
	svc := service.NewLogService(repos, &fakeTransactor{repos: repos})

	_, err := svc.Upsert(context.Background(), uuid.New(), domain.LogInput{
		TripID:    uuid.New(),
		DayNumber: 2,
		Segments:  segmentInputsFixture(),
	})

	require.NoError(t, err)
	assert.Zero(t, savedLog.TotalDistanceMiles)
}

func TestLogService_Upsert_InvalidDayNumber(t *testing.T) {
	svc := service.NewLogService(repo.Repos{}, &fakeTransactor{})

	_, err := svc.Upsert(context.Background(), uuid.New(), domain.LogInput{
		TripID:    uuid.New(),
		DayNumber: 0,
		Segments:  segmentInputsFixture(),
	})

	require.Error(t, err)
	assert.ErrorIs(t, err, domain.ErrValidation)
	assert.ErrorContains(t, err, "day_number must be 1 or greater")
}

func TestLogService_Upsert_TripNotOwned(t *testing.T) {
	trips := &mockTripRepo{
		GetByIDFn: func(_ context.Context, _, _ uuid.UUID) (domain.Trip, error) {
			return domain.Trip{}, domain.ErrNotFound
		},
	}

	repos := repo.Repos{Trips: trips}
	svc := service.NewLogService(repos, &fakeTransactor{repos: repos})

	_, err := svc.Upsert(context.Background(), uuid.New(), domain.LogInput{
		TripID:    uuid.New(),
		DayNumber: 1,
		Segments:  segmentInputsFixture(),
	})

	assert.ErrorIs(t, err, domain.ErrNotFound)
}

func TestLogService_Delete(t *testing.T) {
	userID := uuid.New()
	logID := uuid.New()

	deleteCalled := false
	logs := &mockLogRepo{
		OwnerByIDFn: func(_ context.Context, _ uuid.UUID) (uuid.UUID, error) {
			return userID, nil
		},
		DeleteFn: func(_ context.Context, id uuid.UUID) error {
			assert.Equal(t, logID, id)
			deleteCalled = true
			return nil
		},
	}

	repos := repo.Repos{Logs: logs}
	svc := service.NewLogService(repos, &fakeTransactor{repos: repos})

	deleted, err := svc.Delete(context.Background(), userID, logID)

	require.NoError(t, err)
	assert.True(t, deleted)
	assert.True(t, deleteCalled)
}

func TestLogService_Delete_MissingLogIsFalseNotError(t *testing.T) {
	logs := &mockLogRepo{
		OwnerByIDFn: func(_ context.Context, _ uuid.UUID) (uuid.UUID, error) {
			return uuid.Nil, domain.ErrNotFound
		},
	}

	repos := repo.Repos{Logs: logs}
	svc := service.NewLogService(repos, &fakeTransactor{repos: repos})

	deleted, err := svc.Delete(context.Background(), uuid.New(), uuid.New())

	require.NoError(t, err)
	assert.False(t, deleted)
}

func TestLogService_Delete_ForeignLogIsForbidden(t *testing.T) {
	logs := &mockLogRepo{
		OwnerByIDFn: func(_ context.Context, _ uuid.UUID) (uuid.UUID, error) {
			return uuid.New(), nil // someone else's trip
		},
	}

	repos := repo.Repos{Logs: logs}
	svc := service.NewLogService(repos, &fakeTransactor{repos: repos})

	_, err := svc.Delete(context.Background(), uuid.New(), uuid.New())

	require.Error(t, err)
	assert.ErrorIs(t, err, domain.ErrPermission)
	assert.ErrorContains(t, err, "not allowed to modify this log")
}

func TestLogService_ListByTrip(t *testing.T) {
	tripID := uuid.New()

	trips := &mockTripRepo{
		GetByIDFn: func(_ context.Context, _, _ uuid.UUID) (domain.Trip, error) {
			return domain.Trip{ID: tripID}, nil
		},
	}
	logs := &mockLogRepo{
		ListByTripIDFn: func(_ context.Context, _ uuid.UUID) ([]domain.DriverLog, error) {
			return []domain.DriverLog{{DayNumber: 1}, {DayNumber: 2}}, nil
		},
	}

	svc := service.NewLogService(repo.Repos{Trips: trips, Logs: logs}, &fakeTransactor{})

	got, err := svc.ListByTrip(context.Background(), uuid.New(), tripID)

	require.NoError(t, err)
	require.Len(t, got, 2)
	assert.Equal(t, 1, got[0].DayNumber)
}
