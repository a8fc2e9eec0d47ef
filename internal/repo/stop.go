package repo

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgtype"

	"github.com/openhaul/planner/backend/internal/domain"
)

// StopRepo defines the persistence operations for Stops.
// Stops belong to a route and are ordered by their 1-based sequence.
type StopRepo interface {
	// CreateBatch inserts a set of stops for a route and returns the
	// persisted records in sequence order. Sequence uniqueness per route
	// is enforced by the database.
	CreateBatch(ctx context.Context, stops []domain.Stop) ([]domain.Stop, error)

	// ListByRouteID returns all stops for a route ordered by sequence.
	ListByRouteID(ctx context.Context, routeID uuid.UUID) ([]domain.Stop, error)
}

// pgStopRepo is the Postgres implementation of StopRepo.
type pgStopRepo struct {
	db db
}

// NewStopRepo constructs a StopRepo backed by the provided db connection.
// In production pass *pgxpool.Pool; in tests pass a pgx.Tx for rollback isolation.
func NewStopRepo(db db) StopRepo {
	return &pgStopRepo{db: db}
}

func (r *pgStopRepo) CreateBatch(ctx context.Context, stops []domain.Stop) ([]domain.Stop, error) {
	const q = `
		INSERT INTO stops (route_id, stop_type, location, duration_minutes,
			sequence, distance_from_previous, duration_from_previous)
		VALUES (@route_id, @stop_type, @location, @duration_minutes,
			@sequence, @distance_from_previous, @duration_from_previous)
		RETURNING id, route_id, stop_type, location, duration_minutes,
			sequence, distance_from_previous, duration_from_previous,
			created_at, updated_at`

	created := make([]domain.Stop, 0, len(stops))
	for _, stop := range stops {
		location, err := json.Marshal(stop.Location)
		if err != nil {
			return nil, fmt.Errorf("repo.StopRepo.CreateBatch: marshal location: %w", err)
		}

		row := r.db.QueryRow(ctx, q, pgx.NamedArgs{
			"route_id":               stop.RouteID,
			"stop_type":              stop.Type,
			"location":               location,
			"duration_minutes":       stop.DurationMinutes,
			"sequence":               stop.Sequence,
			"distance_from_previous": stop.DistanceFromPrevious,
			"duration_from_previous": stop.DurationFromPrevious,
		})
		s, err := scanStop(row)
		if err != nil {
			return nil, fmt.Errorf("repo.StopRepo.CreateBatch: %w", err)
		}
		created = append(created, s)
	}
	return created, nil
}

func (r *pgStopRepo) ListByRouteID(ctx context.Context, routeID uuid.UUID) ([]domain.Stop, error) {
	const q = `
		SELECT id, route_id, stop_type, location, duration_minutes,
			sequence, distance_from_previous, duration_from_previous,
			created_at, updated_at
		FROM stops
		WHERE route_id = @route_id
		ORDER BY sequence`

	rows, err := r.db.Query(ctx, q, pgx.NamedArgs{"route_id": routeID})
	if err != nil {
		return nil, fmt.Errorf("repo.StopRepo.ListByRouteID: %w", err)
	}
	defer rows.Close()

	stops := []domain.Stop{}
	for rows.Next() {
		s, err := scanStop(rows)
		if err != nil {
			return nil, fmt.Errorf("repo.StopRepo.ListByRouteID: scan: %w", err)
		}
		stops = append(stops, s)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("repo.StopRepo.ListByRouteID: rows: %w", err)
	}
	return stops, nil
}

func scanStop(s scanner) (domain.Stop, error) {
	var (
		stop     domain.Stop
		id       pgtype.UUID
		routeID  pgtype.UUID
		location []byte
	)

	err := s.Scan(&id, &routeID, &stop.Type, &location, &stop.DurationMinutes,
		&stop.Sequence, &stop.DistanceFromPrevious, &stop.DurationFromPrevious,
		&stop.CreatedAt, &stop.UpdatedAt)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return domain.Stop{}, domain.ErrNotFound
		}
		return domain.Stop{}, err
	}

	stop.ID = uuid.UUID(id.Bytes)
	stop.RouteID = uuid.UUID(routeID.Bytes)
	if len(location) > 0 {
		if err := json.Unmarshal(location, &stop.Location); err != nil {
			return domain.Stop{}, fmt.Errorf("unmarshal location: %w", err)
		}
	}
	return stop, nil
}
