// Package service contains the business logic for the trip planner.
// Services validate inputs, enforce business rules, and orchestrate repo
// calls. No SQL lives here — services depend on repo interfaces and the
// Transactor, not on concrete implementations.
package service

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"math"
	"strings"

	"github.com/google/uuid"

	"github.com/openhaul/planner/backend/internal/domain"
	"github.com/openhaul/planner/backend/internal/hos"
	"github.com/openhaul/planner/backend/internal/repo"
	"github.com/openhaul/planner/backend/internal/routing"
)

// Router is the slice of the routing collaborator the trip service needs.
// Defining it here (in the consumer package) lets tests inject a fake
// without a network.
type Router interface {
	PlanRoute(ctx context.Context, locations []domain.Location, profile string) (routing.Route, error)
}

// TripService implements trip planning and lifecycle operations.
type TripService struct {
	repos  repo.Repos
	tx     repo.Transactor
	router Router
}

// NewTripService constructs a TripService. repos is pool-backed for
// single-statement operations; tx wraps multi-write units of work.
func NewTripService(repos repo.Repos, tx repo.Transactor, router Router) *TripService {
	return &TripService{repos: repos, tx: tx, router: router}
}

// PlanTrip runs the full orchestration pipeline as one atomic unit of
// work: create the trip, route it, generate the HOS day plans and alerts,
// persist the route and stops, and store the itinerary summary. Any
// failure — routing provider, HOS computation, persistence — rolls the
// whole transaction back and surfaces as domain.ErrTripPlanning; a failed
// plan never leaves a partial trip behind.
func (s *TripService) PlanTrip(ctx context.Context, userID uuid.UUID, req domain.TripRequest) (domain.Trip, error) {
	if userID == uuid.Nil {
		return domain.Trip{}, fmt.Errorf("%w: a valid user is required to plan a trip", domain.ErrTripPlanning)
	}
	if req.CycleHoursUsed < 0 {
		return domain.Trip{}, fmt.Errorf("%w: cycle_hours_used must be non-negative", domain.ErrValidation)
	}

	var planned domain.Trip
	err := s.tx.WithinTx(ctx, func(r repo.Repos) error {
		// Create the trip first so a stable identity exists before any
		// external call.
		trip, err := r.Trips.Create(ctx, domain.Trip{
			UserID:              userID,
			StartLocation:       req.StartLocation,
			PickupLocation:      req.PickupLocation,
			DropoffLocation:     req.DropoffLocation,
			Status:              domain.TripStatusPlanned,
			CycleHoursUsed:      req.CycleHoursUsed,
			TractorNumber:       req.TractorNumber,
			TrailerNumbers:      orEmpty(req.TrailerNumbers),
			CarrierNames:        orEmpty(req.CarrierNames),
			MainOfficeAddress:   req.MainOfficeAddress,
			HomeTerminalAddress: req.HomeTerminalAddress,
			CoDriverName:        req.CoDriverName,
			ShipperName:         req.ShipperName,
			Commodity:           req.Commodity,
		})
		if err != nil {
			return fmt.Errorf("service.TripService.PlanTrip: %w", err)
		}

		waypoints := []domain.Location{req.StartLocation, req.PickupLocation, req.DropoffLocation}
		routeData, err := s.router.PlanRoute(ctx, waypoints, routing.ProfileDrivingHGV)
		if err != nil {
			return fmt.Errorf("%w: %s", domain.ErrTripPlanning, err.Error())
		}

		days, err := hos.Schedule(routeData.TotalDurationHours, req.CycleHoursUsed)
		if err != nil {
			return fmt.Errorf("%w: %s", domain.ErrTripPlanning, err.Error())
		}
		alerts := hos.EvaluateAlerts(days, req.CycleHoursUsed)

		route, err := r.Routes.Create(ctx, domain.Route{
			TripID:            trip.ID,
			Polyline:          routeData.Polyline,
			TotalDistance:     routeData.TotalDistanceMiles,
			EstimatedDuration: routeData.TotalDurationHours,
		})
		if err != nil {
			return fmt.Errorf("service.TripService.PlanTrip: %w", err)
		}

		stops, legs := buildStopsAndLegs(route.ID, waypoints, routeData.Segments)
		if _, err := r.Stops.CreateBatch(ctx, stops); err != nil {
			return fmt.Errorf("service.TripService.PlanTrip: %w", err)
		}

		trip.TotalMiles = route.TotalDistance
		trip.TotalHours = route.EstimatedDuration
		trip.Summary = domain.ItinerarySummary{
			Legs:               legs,
			TotalDistanceMiles: route.TotalDistance,
			TotalDurationHours: route.EstimatedDuration,
			HOSDays:            roundPlans(days),
			HOSAlerts:          alerts,
		}

		planned, err = r.Trips.UpdatePlan(ctx, trip)
		if err != nil {
			return fmt.Errorf("service.TripService.PlanTrip: %w", err)
		}
		return nil
	})
	if err != nil {
		return domain.Trip{}, err
	}

	slog.InfoContext(ctx, "trip planned",
		"trip_id", planned.ID,
		"user_id", userID,
		"total_miles", planned.TotalMiles,
		"total_hours", planned.TotalHours,
		"hos_days", len(planned.Summary.HOSDays),
		"hos_alerts", len(planned.Summary.HOSAlerts),
	)
	return planned, nil
}

// GetByID returns a single trip owned by userID.
func (s *TripService) GetByID(ctx context.Context, userID, tripID uuid.UUID) (domain.Trip, error) {
	trip, err := s.repos.Trips.GetByID(ctx, userID, tripID)
	if err != nil {
		return domain.Trip{}, fmt.Errorf("service.TripService.GetByID: %w", err)
	}
	return trip, nil
}

// List returns one page of the user's trips, most recent first.
// Always returns a non-nil slice so callers can safely range over it.
func (s *TripService) List(ctx context.Context, userID uuid.UUID, p domain.PaginationParams) ([]domain.Trip, error) {
	trips, err := s.repos.Trips.List(ctx, userID, p)
	if err != nil {
		return nil, fmt.Errorf("service.TripService.List: %w", err)
	}
	if trips == nil {
		return []domain.Trip{}, nil
	}
	return trips, nil
}

// UpdateStatus moves a trip through its restricted status state machine:
//   - only a PLANNED trip may (re-)enter PLANNED
//   - an IN_PROGRESS trip may only stay IN_PROGRESS or become COMPLETED
//   - entering IN_PROGRESS requires no other active trip for the user;
//     the database's partial unique index backs the check against races
func (s *TripService) UpdateStatus(ctx context.Context, userID, tripID uuid.UUID, status string) (domain.Trip, error) {
	target := domain.TripStatus(strings.ToUpper(strings.TrimSpace(status)))
	if !target.Valid() {
		return domain.Trip{}, fmt.Errorf("%w: invalid status value", domain.ErrValidation)
	}

	trip, err := s.repos.Trips.GetByID(ctx, userID, tripID)
	if err != nil {
		return domain.Trip{}, fmt.Errorf("service.TripService.UpdateStatus: %w", err)
	}

	if target == domain.TripStatusInProgress {
		active, err := s.repos.Trips.CountActive(ctx, userID, tripID)
		if err != nil {
			return domain.Trip{}, fmt.Errorf("service.TripService.UpdateStatus: %w", err)
		}
		if active > 0 {
			return domain.Trip{}, fmt.Errorf("%w: Another trip is already in progress", domain.ErrValidation)
		}
	}

	if trip.Status == domain.TripStatusInProgress &&
		target != domain.TripStatusInProgress && target != domain.TripStatusCompleted {
		return domain.Trip{}, fmt.Errorf("%w: trips already in progress can only be marked as completed", domain.ErrValidation)
	}
	if trip.Status != domain.TripStatusPlanned && target == domain.TripStatusPlanned {
		return domain.Trip{}, fmt.Errorf("%w: only trips still in planning can be marked as planned", domain.ErrValidation)
	}

	updated, err := s.repos.Trips.UpdateStatus(ctx, userID, tripID, target)
	if err != nil {
		// Lost the race past the pre-check: the unique index is authoritative.
		if errors.Is(err, domain.ErrActiveTrip) {
			return domain.Trip{}, fmt.Errorf("%w: Another trip is already in progress", domain.ErrValidation)
		}
		return domain.Trip{}, fmt.Errorf("service.TripService.UpdateStatus: %w", err)
	}
	return updated, nil
}

// Delete removes a trip. Only PLANNED trips can be deleted; the route,
// stops, and logs cascade in the database.
func (s *TripService) Delete(ctx context.Context, userID, tripID uuid.UUID) error {
	trip, err := s.repos.Trips.GetByID(ctx, userID, tripID)
	if err != nil {
		return fmt.Errorf("service.TripService.Delete: %w", err)
	}
	if trip.Status != domain.TripStatusPlanned {
		return fmt.Errorf("%w: only planned trips can be deleted", domain.ErrValidation)
	}
	if err := s.repos.Trips.Delete(ctx, userID, tripID); err != nil {
		return fmt.Errorf("service.TripService.Delete: %w", err)
	}
	return nil
}

// buildStopsAndLegs turns the ordered waypoints plus the provider's
// per-leg segments into persistable stops (sequence 1..n) and itinerary
// legs. Missing trailing segments degrade to zero distance/duration
// rather than failing the plan.
func buildStopsAndLegs(routeID uuid.UUID, waypoints []domain.Location, segments []routing.Leg) ([]domain.Stop, []domain.Leg) {
	stopTypes := []domain.StopType{domain.StopTypeStart, domain.StopTypePickup, domain.StopTypeDropoff}

	stops := make([]domain.Stop, len(waypoints))
	for i, loc := range waypoints {
		stops[i] = domain.Stop{
			RouteID:  routeID,
			Type:     stopTypes[i],
			Location: loc,
			Sequence: i + 1,
		}
	}

	legs := make([]domain.Leg, 0, len(waypoints)-1)
	for i := 1; i < len(stops); i++ {
		var distance, duration float64
		if i-1 < len(segments) {
			distance = segments[i-1].DistanceMiles
			duration = segments[i-1].DurationHours
		}
		stops[i].DistanceFromPrevious = distance
		stops[i].DurationFromPrevious = duration

		legs = append(legs, domain.Leg{
			Sequence:      i,
			FromStopType:  stops[i-1].Type,
			ToStopType:    stops[i].Type,
			FromLocation:  stops[i-1].Location,
			ToLocation:    stops[i].Location,
			DistanceMiles: distance,
			DurationHours: duration,
		})
	}
	return stops, legs
}

// roundPlans copies the daily plans with remaining cycle hours rounded to
// two decimals for persistence. Rounding happens only here, at the
// storage boundary — the evaluator sees raw values.
func roundPlans(days []domain.DailyPlan) []domain.DailyPlan {
	out := make([]domain.DailyPlan, len(days))
	for i, day := range days {
		day.RemainingCycleHours = math.Round(day.RemainingCycleHours*100) / 100
		out[i] = day
	}
	return out
}

// orEmpty normalizes a nil slice to an empty one so text[] columns never
// receive NULL.
func orEmpty(s []string) []string {
	if s == nil {
		return []string{}
	}
	return s
}
