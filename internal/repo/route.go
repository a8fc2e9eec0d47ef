package repo

import (
	"context"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgtype"

	"github.com/openhaul/planner/backend/internal/domain"
)

// RouteRepo defines the persistence operations for Routes.
// Routes are immutable after creation — there is deliberately no update.
type RouteRepo interface {
	// Create inserts the route for a trip and returns the persisted record.
	Create(ctx context.Context, route domain.Route) (domain.Route, error)

	// GetByTripID retrieves the route belonging to a trip.
	// Returns domain.ErrNotFound if the trip has no route.
	GetByTripID(ctx context.Context, tripID uuid.UUID) (domain.Route, error)
}

// pgRouteRepo is the Postgres implementation of RouteRepo.
type pgRouteRepo struct {
	db db
}

// NewRouteRepo constructs a RouteRepo backed by the provided db connection.
func NewRouteRepo(db db) RouteRepo {
	return &pgRouteRepo{db: db}
}

func (r *pgRouteRepo) Create(ctx context.Context, route domain.Route) (domain.Route, error) {
	const q = `
		INSERT INTO routes (trip_id, polyline, total_distance, estimated_duration)
		VALUES (@trip_id, @polyline, @total_distance, @estimated_duration)
		RETURNING id, trip_id, polyline, total_distance, estimated_duration, created_at`

	args := pgx.NamedArgs{
		"trip_id":            route.TripID,
		"polyline":           route.Polyline,
		"total_distance":     route.TotalDistance,
		"estimated_duration": route.EstimatedDuration,
	}

	result, err := scanRoute(r.db.QueryRow(ctx, q, args))
	if err != nil {
		return domain.Route{}, fmt.Errorf("repo.RouteRepo.Create: %w", err)
	}
	return result, nil
}

func (r *pgRouteRepo) GetByTripID(ctx context.Context, tripID uuid.UUID) (domain.Route, error) {
	const q = `
		SELECT id, trip_id, polyline, total_distance, estimated_duration, created_at
		FROM routes
		WHERE trip_id = @trip_id`

	result, err := scanRoute(r.db.QueryRow(ctx, q, pgx.NamedArgs{"trip_id": tripID}))
	if err != nil {
		return domain.Route{}, fmt.Errorf("repo.RouteRepo.GetByTripID: %w", err)
	}
	return result, nil
}

func scanRoute(s scanner) (domain.Route, error) {
	var (
		rt     domain.Route
		id     pgtype.UUID
		tripID pgtype.UUID
	)

	err := s.Scan(&id, &tripID, &rt.Polyline, &rt.TotalDistance, &rt.EstimatedDuration, &rt.CreatedAt)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return domain.Route{}, domain.ErrNotFound
		}
		return domain.Route{}, err
	}

	rt.ID = uuid.UUID(id.Bytes)
	rt.TripID = uuid.UUID(tripID.Bytes)
	return rt, nil
}
