package handler_test

import (
	"context"
	"fmt"
	"net/http"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/openhaul/planner/backend/internal/domain"
)

const logBody = `{
	"log_date": "2026-03-09",
	"notes": "first day",
	"total_distance_miles": 540,
	"segments": [
		{"status": "OFF_DUTY", "start_time": "00:00", "end_time": "06:00"},
		{"status": "DRIVING", "start_time": "06:00", "end_time": "17:00", "location": "I-80 W"}
	]
}`

func TestUpsertLog(t *testing.T) {
	userID := uuid.New()
	tripID := uuid.New()

	var gotInput domain.LogInput
	logs := &mockLogServicer{
		UpsertFn: func(_ context.Context, uID uuid.UUID, in domain.LogInput) (domain.DriverLog, error) {
			assert.Equal(t, userID, uID)
			gotInput = in
			return domain.DriverLog{ID: uuid.New(), TripID: in.TripID, DayNumber: in.DayNumber}, nil
		},
	}
	router := newRouter(deps{logs: logs})

	rec := doRequest(t, router, userID, http.MethodPut,
		"/trips/"+tripID.String()+"/logs/2", logBody)

	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, tripID, gotInput.TripID)
	assert.Equal(t, 2, gotInput.DayNumber)
	assert.Equal(t, time.Date(2026, 3, 9, 0, 0, 0, 0, time.UTC), gotInput.LogDate)
	assert.Equal(t, "first day", gotInput.Notes)
	require.NotNil(t, gotInput.TotalDistanceMiles)
	assert.Equal(t, 540.0, *gotInput.TotalDistanceMiles)
	require.Len(t, gotInput.Segments, 2)
	assert.Equal(t, "DRIVING", gotInput.Segments[1].Status)
}

func TestUpsertLog_NonNumericDayNumber(t *testing.T) {
	router := newRouter(deps{logs: &mockLogServicer{}})

	rec := doRequest(t, router, uuid.New(), http.MethodPut,
		"/trips/"+uuid.NewString()+"/logs/two", logBody)

	require.Equal(t, http.StatusUnprocessableEntity, rec.Code)
	assert.Contains(t, rec.Body.String(), "day_number must be 1 or greater")
}

func TestUpsertLog_EmptySegments(t *testing.T) {
	router := newRouter(deps{logs: &mockLogServicer{}})

	rec := doRequest(t, router, uuid.New(), http.MethodPut,
		"/trips/"+uuid.NewString()+"/logs/1", `{"segments": []}`)

	require.Equal(t, http.StatusUnprocessableEntity, rec.Code)
	assert.Equal(t, "validation_error", errorCode(t, rec))
}

func TestUpsertLog_BadDate(t *testing.T) {
	router := newRouter(deps{logs: &mockLogServicer{}})

	body := `{
		"log_date": "03/09/2026",
		"segments": [{"status": "OFF_DUTY", "start_time": "00:00", "end_time": "06:00"}]
	}`
	rec := doRequest(t, router, uuid.New(), http.MethodPut,
		"/trips/"+uuid.NewString()+"/logs/1", body)

	require.Equal(t, http.StatusUnprocessableEntity, rec.Code)
	assert.Contains(t, rec.Body.String(), "YYYY-MM-DD")
}

func TestUpsertLog_SegmentValidationFromService(t *testing.T) {
	logs := &mockLogServicer{
		UpsertFn: func(_ context.Context, _ uuid.UUID, _ domain.LogInput) (domain.DriverLog, error) {
			return domain.DriverLog{}, fmt.Errorf("%w: duty segments may not overlap", domain.ErrValidation)
		},
	}
	router := newRouter(deps{logs: logs})

	rec := doRequest(t, router, uuid.New(), http.MethodPut,
		"/trips/"+uuid.NewString()+"/logs/1", logBody)

	require.Equal(t, http.StatusUnprocessableEntity, rec.Code)
	assert.Contains(t, rec.Body.String(), "duty segments may not overlap")
}

func TestListLogs(t *testing.T) {
	tripID := uuid.New()
	logs := &mockLogServicer{
		ListByTripFn: func(_ context.Context, _, tID uuid.UUID) ([]domain.DriverLog, error) {
			assert.Equal(t, tripID, tID)
			return []domain.DriverLog{{DayNumber: 1}, {DayNumber: 2}}, nil
		},
	}
	router := newRouter(deps{logs: logs})

	rec := doRequest(t, router, uuid.New(), http.MethodGet,
		"/trips/"+tripID.String()+"/logs", "")

	require.Equal(t, http.StatusOK, rec.Code)
	var body struct {
		Data []domain.DriverLog `json:"data"`
	}
	decodeBody(t, rec, &body)
	assert.Len(t, body.Data, 2)
}

func TestDeleteLog(t *testing.T) {
	logID := uuid.New()
	logs := &mockLogServicer{
		DeleteFn: func(_ context.Context, _, lID uuid.UUID) (bool, error) {
			assert.Equal(t, logID, lID)
			return true, nil
		},
	}
	router := newRouter(deps{logs: logs})

	rec := doRequest(t, router, uuid.New(), http.MethodDelete, "/logs/"+logID.String(), "")

	require.Equal(t, http.StatusNoContent, rec.Code)
}

func TestDeleteLog_Missing(t *testing.T) {
	logs := &mockLogServicer{
		DeleteFn: func(_ context.Context, _, _ uuid.UUID) (bool, error) {
			return false, nil
		},
	}
	router := newRouter(deps{logs: logs})

	rec := doRequest(t, router, uuid.New(), http.MethodDelete, "/logs/"+uuid.NewString(), "")

	require.Equal(t, http.StatusNotFound, rec.Code)
	assert.Equal(t, "not_found", errorCode(t, rec))
}

func TestDeleteLog_Foreign(t *testing.T) {
	logs := &mockLogServicer{
		DeleteFn: func(_ context.Context, _, _ uuid.UUID) (bool, error) {
			return false, fmt.Errorf("%w: not allowed to modify this log", domain.ErrPermission)
		},
	}
	router := newRouter(deps{logs: logs})

	rec := doRequest(t, router, uuid.New(), http.MethodDelete, "/logs/"+uuid.NewString(), "")

	require.Equal(t, http.StatusForbidden, rec.Code)
	assert.Equal(t, "permission_denied", errorCode(t, rec))
}
