package handler_test

import (
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"
	"github.com/stretchr/testify/require"

	"github.com/openhaul/planner/backend/internal/domain"
	"github.com/openhaul/planner/backend/internal/handler"
	"github.com/openhaul/planner/backend/internal/middleware"
	"github.com/openhaul/planner/backend/internal/routing"
)

// The routing client must keep satisfying the handler's consumer-side
// interface; main wires it in directly.
var _ handler.LocationSearcher = (*routing.Client)(nil)

// Function-field mocks for the handler's service interfaces. Tests wire
// only what they expect to be called.

type mockTripServicer struct {
	PlanTripFn     func(ctx context.Context, userID uuid.UUID, req domain.TripRequest) (domain.Trip, error)
	GetByIDFn      func(ctx context.Context, userID, tripID uuid.UUID) (domain.Trip, error)
	ListFn         func(ctx context.Context, userID uuid.UUID, p domain.PaginationParams) ([]domain.Trip, error)
	UpdateStatusFn func(ctx context.Context, userID, tripID uuid.UUID, status string) (domain.Trip, error)
	DeleteFn       func(ctx context.Context, userID, tripID uuid.UUID) error
}

func (m *mockTripServicer) PlanTrip(ctx context.Context, userID uuid.UUID, req domain.TripRequest) (domain.Trip, error) {
	return m.PlanTripFn(ctx, userID, req)
}

func (m *mockTripServicer) GetByID(ctx context.Context, userID, tripID uuid.UUID) (domain.Trip, error) {
	return m.GetByIDFn(ctx, userID, tripID)
}

func (m *mockTripServicer) List(ctx context.Context, userID uuid.UUID, p domain.PaginationParams) ([]domain.Trip, error) {
	return m.ListFn(ctx, userID, p)
}

func (m *mockTripServicer) UpdateStatus(ctx context.Context, userID, tripID uuid.UUID, status string) (domain.Trip, error) {
	return m.UpdateStatusFn(ctx, userID, tripID, status)
}

func (m *mockTripServicer) Delete(ctx context.Context, userID, tripID uuid.UUID) error {
	return m.DeleteFn(ctx, userID, tripID)
}

type mockLogServicer struct {
	UpsertFn     func(ctx context.Context, userID uuid.UUID, in domain.LogInput) (domain.DriverLog, error)
	ListByTripFn func(ctx context.Context, userID, tripID uuid.UUID) ([]domain.DriverLog, error)
	DeleteFn     func(ctx context.Context, userID, logID uuid.UUID) (bool, error)
}

func (m *mockLogServicer) Upsert(ctx context.Context, userID uuid.UUID, in domain.LogInput) (domain.DriverLog, error) {
	return m.UpsertFn(ctx, userID, in)
}

func (m *mockLogServicer) ListByTrip(ctx context.Context, userID, tripID uuid.UUID) ([]domain.DriverLog, error) {
	return m.ListByTripFn(ctx, userID, tripID)
}

func (m *mockLogServicer) Delete(ctx context.Context, userID, logID uuid.UUID) (bool, error) {
	return m.DeleteFn(ctx, userID, logID)
}

type mockJobServicer struct {
	EnqueueFn func(ctx context.Context, userID uuid.UUID, req domain.TripRequest) (domain.BackgroundJob, error)
	GetByIDFn func(ctx context.Context, userID, id uuid.UUID) (domain.BackgroundJob, error)
}

func (m *mockJobServicer) Enqueue(ctx context.Context, userID uuid.UUID, req domain.TripRequest) (domain.BackgroundJob, error) {
	return m.EnqueueFn(ctx, userID, req)
}

func (m *mockJobServicer) GetByID(ctx context.Context, userID, id uuid.UUID) (domain.BackgroundJob, error) {
	return m.GetByIDFn(ctx, userID, id)
}

type mockLocationSearcher struct {
	SearchLocationsFn func(ctx context.Context, query string, limit int) ([]routing.SearchResult, error)
}

func (m *mockLocationSearcher) SearchLocations(ctx context.Context, query string, limit int) ([]routing.SearchResult, error) {
	return m.SearchLocationsFn(ctx, query, limit)
}

type mockExporter struct {
	ExportFn func(ctx context.Context, userID uuid.UUID) ([]domain.ExportRow, error)
}

func (m *mockExporter) Export(ctx context.Context, userID uuid.UUID) ([]domain.ExportRow, error) {
	return m.ExportFn(ctx, userID)
}

// deps bundles the mocks a test hands to newRouter; nil fields stay nil
// so an unexpected call panics.
type deps struct {
	trips     *mockTripServicer
	logs      *mockLogServicer
	jobs      *mockJobServicer
	locations *mockLocationSearcher
	export    *mockExporter
}

// newRouter builds the real routing tree, identity middleware included,
// around the given mocks.
func newRouter(d deps) http.Handler {
	srv := handler.NewServer(d.trips, d.logs, d.jobs, d.locations, d.export)
	r := chi.NewRouter()
	r.Group(func(r chi.Router) {
		r.Use(middleware.RequireUser)
		srv.Routes(r)
	})
	return r
}

// doRequest performs an authenticated request against the router and
// returns the recorded response.
func doRequest(t *testing.T, h http.Handler, userID uuid.UUID, method, target, body string) *httptest.ResponseRecorder {
	t.Helper()
	var reader io.Reader
	if body != "" {
		reader = strings.NewReader(body)
	}
	req := httptest.NewRequest(method, target, reader)
	if userID != uuid.Nil {
		req.Header.Set("X-User-ID", userID.String())
	}
	if body != "" {
		req.Header.Set("Content-Type", "application/json")
	}
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, req)
	return rec
}

// decodeBody unmarshals the recorded JSON body into v.
func decodeBody(t *testing.T, rec *httptest.ResponseRecorder, v any) {
	t.Helper()
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), v))
}

// errorCode pulls the machine-readable code out of an error body.
func errorCode(t *testing.T, rec *httptest.ResponseRecorder) string {
	t.Helper()
	var body handler.ErrorResponse
	decodeBody(t, rec, &body)
	return body.Error.Code
}

// planBody is a minimal valid planning payload.
const planBody = `{
	"start_location": {"lat": 41.8781, "lng": -87.6298, "address": "Chicago, IL"},
	"pickup_location": {"lat": 39.0997, "lng": -94.5786, "address": "Kansas City, MO"},
	"dropoff_location": {"lat": 39.7392, "lng": -104.9903, "address": "Denver, CO"},
	"cycle_hours_used": 12.5
}`
