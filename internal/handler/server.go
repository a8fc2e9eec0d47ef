// Package handler implements the HTTP layer of the trip planner API.
// Handlers are methods on Server, split into domain-specific files
// (trip.go, log.go, job.go, ...) that all share the same struct and its
// dependencies. Handlers decode and validate requests, call the service
// interfaces, and translate domain errors to HTTP; no business rules
// live here.
package handler

import (
	"context"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/go-playground/validator/v10"
	"github.com/google/uuid"

	"github.com/openhaul/planner/backend/internal/domain"
	"github.com/openhaul/planner/backend/internal/routing"
)

// TripServicer defines the trip operations the handlers depend on.
// Defining the interfaces here, in the consumer package, lets handler
// tests inject mocks without touching the database or service layer.
type TripServicer interface {
	PlanTrip(ctx context.Context, userID uuid.UUID, req domain.TripRequest) (domain.Trip, error)
	GetByID(ctx context.Context, userID, tripID uuid.UUID) (domain.Trip, error)
	List(ctx context.Context, userID uuid.UUID, p domain.PaginationParams) ([]domain.Trip, error)
	UpdateStatus(ctx context.Context, userID, tripID uuid.UUID, status string) (domain.Trip, error)
	Delete(ctx context.Context, userID, tripID uuid.UUID) error
}

// LogServicer defines the driver-log operations the handlers depend on.
type LogServicer interface {
	Upsert(ctx context.Context, userID uuid.UUID, in domain.LogInput) (domain.DriverLog, error)
	ListByTrip(ctx context.Context, userID, tripID uuid.UUID) ([]domain.DriverLog, error)
	Delete(ctx context.Context, userID, logID uuid.UUID) (bool, error)
}

// JobServicer defines the background-job operations the handlers depend on.
type JobServicer interface {
	Enqueue(ctx context.Context, userID uuid.UUID, req domain.TripRequest) (domain.BackgroundJob, error)
	GetByID(ctx context.Context, userID, id uuid.UUID) (domain.BackgroundJob, error)
}

// LocationSearcher defines the geocoding lookup the handlers depend on.
type LocationSearcher interface {
	SearchLocations(ctx context.Context, query string, limit int) ([]routing.SearchResult, error)
}

// Exporter defines the flat-export operation the handlers depend on.
type Exporter interface {
	Export(ctx context.Context, userID uuid.UUID) ([]domain.ExportRow, error)
}

// Server holds the handler dependencies for all API endpoints.
type Server struct {
	trips     TripServicer
	logs      LogServicer
	jobs      JobServicer
	locations LocationSearcher
	export    Exporter
	validate  *validator.Validate
}

// NewServer constructs the Server with all its dependencies.
func NewServer(trips TripServicer, logs LogServicer, jobs JobServicer, locations LocationSearcher, export Exporter) *Server {
	return &Server{
		trips:     trips,
		logs:      logs,
		jobs:      jobs,
		locations: locations,
		export:    export,
		validate:  validator.New(validator.WithRequiredStructEnabled()),
	}
}

// Routes registers every API endpoint on r. The caller mounts this under
// the authenticated subtree; health and the OpenAPI document are wired
// separately in main because they need no identity.
func (s *Server) Routes(r chi.Router) {
	r.Route("/trips", func(r chi.Router) {
		r.Post("/", s.PlanTrip)
		r.Get("/", s.ListTrips)
		r.Route("/{tripID}", func(r chi.Router) {
			r.Get("/", s.GetTrip)
			r.Patch("/status", s.UpdateTripStatus)
			r.Delete("/", s.DeleteTrip)
			r.Put("/logs/{dayNumber}", s.UpsertLog)
			r.Get("/logs", s.ListLogs)
		})
	})
	r.Delete("/logs/{logID}", s.DeleteLog)
	r.Post("/jobs", s.EnqueueJob)
	r.Get("/jobs/{jobID}", s.GetJob)
	r.Get("/locations/search", s.SearchLocations)
	r.Get("/export", s.GetExport)
}

// pathUUID parses a UUID path parameter. The bool reports whether the
// value parsed; on failure a 404 has already been written, since a
// malformed ID can never name an existing resource.
func pathUUID(w http.ResponseWriter, r *http.Request, name string) (uuid.UUID, bool) {
	id, err := uuid.Parse(chi.URLParam(r, name))
	if err != nil {
		writeError(w, http.StatusNotFound, "not_found", "resource not found")
		return uuid.Nil, false
	}
	return id, true
}
