package repo

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgtype"

	"github.com/openhaul/planner/backend/internal/domain"
)

// uniqueActiveTripConstraint is the partial unique index enforcing at most
// one IN_PROGRESS trip per user. Violations are mapped to
// domain.ErrActiveTrip so the service layer can surface a clean message
// even when two requests race past its pre-check.
const uniqueActiveTripConstraint = "unique_active_trip_per_user"

// TripRepo defines the persistence operations for Trips.
// All reads and writes are scoped by userID: an ownership miss is
// indistinguishable from a missing row and returns domain.ErrNotFound.
type TripRepo interface {
	// Create inserts a new trip and returns the persisted record with
	// DB-generated id and timestamps populated.
	Create(ctx context.Context, trip domain.Trip) (domain.Trip, error)

	// GetByID retrieves a single trip owned by userID.
	// Returns domain.ErrNotFound if no such trip exists under that user.
	GetByID(ctx context.Context, userID, tripID uuid.UUID) (domain.Trip, error)

	// List returns one page of the user's trips ordered by created_at
	// descending (most recent first).
	List(ctx context.Context, userID uuid.UUID, p domain.PaginationParams) ([]domain.Trip, error)

	// UpdatePlan overwrites the planning outputs of a trip: total miles,
	// total hours, and the itinerary summary.
	UpdatePlan(ctx context.Context, trip domain.Trip) (domain.Trip, error)

	// UpdateStatus sets the trip's status. Returns domain.ErrActiveTrip
	// when the one-active-trip-per-user index rejects the write, and
	// domain.ErrNotFound when the trip does not exist under that user.
	UpdateStatus(ctx context.Context, userID, tripID uuid.UUID, status domain.TripStatus) (domain.Trip, error)

	// CountActive returns the number of IN_PROGRESS trips the user has,
	// excluding excludeTripID.
	CountActive(ctx context.Context, userID, excludeTripID uuid.UUID) (int64, error)

	// Delete removes a trip by ID, scoped to userID. Routes, stops, and
	// logs cascade in the database. Returns domain.ErrNotFound if the
	// trip does not exist under that user.
	Delete(ctx context.Context, userID, tripID uuid.UUID) error
}

// pgTripRepo is the Postgres implementation of TripRepo.
type pgTripRepo struct {
	db db
}

// NewTripRepo constructs a TripRepo backed by the provided db connection.
// In production pass *pgxpool.Pool; in tests pass a pgx.Tx for rollback isolation.
func NewTripRepo(db db) TripRepo {
	return &pgTripRepo{db: db}
}

const tripColumns = `id, user_id, start_location, pickup_location, dropoff_location,
		status, cycle_hours_used, total_miles, total_hours, itinerary_summary,
		tractor_number, trailer_numbers, carrier_names, main_office_address,
		home_terminal_address, co_driver_name, shipper_name, commodity,
		created_at, updated_at`

// Create inserts a new trip row and returns the full persisted record.
func (r *pgTripRepo) Create(ctx context.Context, trip domain.Trip) (domain.Trip, error) {
	const q = `
		INSERT INTO trips (
			user_id, start_location, pickup_location, dropoff_location,
			status, cycle_hours_used, total_miles, total_hours, itinerary_summary,
			tractor_number, trailer_numbers, carrier_names, main_office_address,
			home_terminal_address, co_driver_name, shipper_name, commodity)
		VALUES (
			@user_id, @start_location, @pickup_location, @dropoff_location,
			@status, @cycle_hours_used, @total_miles, @total_hours, @itinerary_summary,
			@tractor_number, @trailer_numbers, @carrier_names, @main_office_address,
			@home_terminal_address, @co_driver_name, @shipper_name, @commodity)
		RETURNING ` + tripColumns

	args, err := tripArgs(trip)
	if err != nil {
		return domain.Trip{}, fmt.Errorf("repo.TripRepo.Create: %w", err)
	}

	result, err := scanTrip(r.db.QueryRow(ctx, q, args))
	if err != nil {
		return domain.Trip{}, fmt.Errorf("repo.TripRepo.Create: %w", err)
	}
	return result, nil
}

// GetByID retrieves a trip by primary key, scoped to its owner.
func (r *pgTripRepo) GetByID(ctx context.Context, userID, tripID uuid.UUID) (domain.Trip, error) {
	const q = `
		SELECT ` + tripColumns + `
		FROM trips
		WHERE id = @id AND user_id = @user_id`

	result, err := scanTrip(r.db.QueryRow(ctx, q, pgx.NamedArgs{"id": tripID, "user_id": userID}))
	if err != nil {
		return domain.Trip{}, fmt.Errorf("repo.TripRepo.GetByID: %w", err)
	}
	return result, nil
}

// List returns one page of the user's trips, most recent first.
func (r *pgTripRepo) List(ctx context.Context, userID uuid.UUID, p domain.PaginationParams) ([]domain.Trip, error) {
	const q = `
		SELECT ` + tripColumns + `
		FROM trips
		WHERE user_id = @user_id
		ORDER BY created_at DESC
		LIMIT @limit OFFSET @offset`

	rows, err := r.db.Query(ctx, q, pgx.NamedArgs{
		"user_id": userID,
		"limit":   p.Limit,
		"offset":  p.Offset(),
	})
	if err != nil {
		return nil, fmt.Errorf("repo.TripRepo.List: %w", err)
	}
	defer rows.Close()

	trips := []domain.Trip{}
	for rows.Next() {
		t, err := scanTrip(rows)
		if err != nil {
			return nil, fmt.Errorf("repo.TripRepo.List: scan: %w", err)
		}
		trips = append(trips, t)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("repo.TripRepo.List: rows: %w", err)
	}
	return trips, nil
}

// UpdatePlan overwrites a trip's planning outputs and returns the updated record.
func (r *pgTripRepo) UpdatePlan(ctx context.Context, trip domain.Trip) (domain.Trip, error) {
	const q = `
		UPDATE trips
		SET total_miles       = @total_miles,
		    total_hours       = @total_hours,
		    itinerary_summary = @itinerary_summary,
		    updated_at        = now()
		WHERE id = @id AND user_id = @user_id
		RETURNING ` + tripColumns

	summary, err := json.Marshal(trip.Summary)
	if err != nil {
		return domain.Trip{}, fmt.Errorf("repo.TripRepo.UpdatePlan: marshal summary: %w", err)
	}

	result, err := scanTrip(r.db.QueryRow(ctx, q, pgx.NamedArgs{
		"id":                trip.ID,
		"user_id":           trip.UserID,
		"total_miles":       trip.TotalMiles,
		"total_hours":       trip.TotalHours,
		"itinerary_summary": summary,
	}))
	if err != nil {
		return domain.Trip{}, fmt.Errorf("repo.TripRepo.UpdatePlan: %w", err)
	}
	return result, nil
}

// UpdateStatus sets the trip's status, relying on the partial unique index
// as the authoritative one-active-trip guard.
func (r *pgTripRepo) UpdateStatus(ctx context.Context, userID, tripID uuid.UUID, status domain.TripStatus) (domain.Trip, error) {
	const q = `
		UPDATE trips
		SET status = @status, updated_at = now()
		WHERE id = @id AND user_id = @user_id
		RETURNING ` + tripColumns

	result, err := scanTrip(r.db.QueryRow(ctx, q, pgx.NamedArgs{
		"id":      tripID,
		"user_id": userID,
		"status":  status,
	}))
	if err != nil {
		var pgErr *pgconn.PgError
		if errors.As(err, &pgErr) && pgErr.Code == "23505" && pgErr.ConstraintName == uniqueActiveTripConstraint {
			return domain.Trip{}, fmt.Errorf("repo.TripRepo.UpdateStatus: %w", domain.ErrActiveTrip)
		}
		return domain.Trip{}, fmt.Errorf("repo.TripRepo.UpdateStatus: %w", err)
	}
	return result, nil
}

// CountActive counts the user's IN_PROGRESS trips other than excludeTripID.
func (r *pgTripRepo) CountActive(ctx context.Context, userID, excludeTripID uuid.UUID) (int64, error) {
	const q = `
		SELECT count(*)
		FROM trips
		WHERE user_id = @user_id AND status = @status AND id <> @exclude_id`

	var count int64
	err := r.db.QueryRow(ctx, q, pgx.NamedArgs{
		"user_id":    userID,
		"status":     domain.TripStatusInProgress,
		"exclude_id": excludeTripID,
	}).Scan(&count)
	if err != nil {
		return 0, fmt.Errorf("repo.TripRepo.CountActive: %w", err)
	}
	return count, nil
}

// Delete removes a trip by primary key, scoped to its owner.
func (r *pgTripRepo) Delete(ctx context.Context, userID, tripID uuid.UUID) error {
	const q = `DELETE FROM trips WHERE id = @id AND user_id = @user_id`

	tag, err := r.db.Exec(ctx, q, pgx.NamedArgs{"id": tripID, "user_id": userID})
	if err != nil {
		return fmt.Errorf("repo.TripRepo.Delete: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return fmt.Errorf("repo.TripRepo.Delete: %w", domain.ErrNotFound)
	}
	return nil
}

// tripArgs builds the NamedArgs for inserting a trip, marshalling the
// JSONB columns.
func tripArgs(trip domain.Trip) (pgx.NamedArgs, error) {
	start, err := json.Marshal(trip.StartLocation)
	if err != nil {
		return nil, fmt.Errorf("marshal start_location: %w", err)
	}
	pickup, err := json.Marshal(trip.PickupLocation)
	if err != nil {
		return nil, fmt.Errorf("marshal pickup_location: %w", err)
	}
	dropoff, err := json.Marshal(trip.DropoffLocation)
	if err != nil {
		return nil, fmt.Errorf("marshal dropoff_location: %w", err)
	}
	summary, err := json.Marshal(trip.Summary)
	if err != nil {
		return nil, fmt.Errorf("marshal itinerary_summary: %w", err)
	}

	return pgx.NamedArgs{
		"user_id":               trip.UserID,
		"start_location":        start,
		"pickup_location":       pickup,
		"dropoff_location":      dropoff,
		"status":                trip.Status,
		"cycle_hours_used":      trip.CycleHoursUsed,
		"total_miles":           trip.TotalMiles,
		"total_hours":           trip.TotalHours,
		"itinerary_summary":     summary,
		"tractor_number":        trip.TractorNumber,
		"trailer_numbers":       trip.TrailerNumbers,
		"carrier_names":         trip.CarrierNames,
		"main_office_address":   trip.MainOfficeAddress,
		"home_terminal_address": trip.HomeTerminalAddress,
		"co_driver_name":        trip.CoDriverName,
		"shipper_name":          trip.ShipperName,
		"commodity":             trip.Commodity,
	}, nil
}

// scanTrip maps a single database row into a domain.Trip, unmarshalling
// the JSONB location and summary columns.
func scanTrip(s scanner) (domain.Trip, error) {
	var (
		t       domain.Trip
		id      pgtype.UUID
		userID  pgtype.UUID
		start   []byte
		pickup  []byte
		dropoff []byte
		summary []byte
	)

	err := s.Scan(
		&id, &userID, &start, &pickup, &dropoff,
		&t.Status, &t.CycleHoursUsed, &t.TotalMiles, &t.TotalHours, &summary,
		&t.TractorNumber, &t.TrailerNumbers, &t.CarrierNames, &t.MainOfficeAddress,
		&t.HomeTerminalAddress, &t.CoDriverName, &t.ShipperName, &t.Commodity,
		&t.CreatedAt, &t.UpdatedAt,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return domain.Trip{}, domain.ErrNotFound
		}
		return domain.Trip{}, err
	}

	t.ID = uuid.UUID(id.Bytes)
	t.UserID = uuid.UUID(userID.Bytes)
	for _, pair := range []struct {
		raw  []byte
		dest *domain.Location
	}{
		{start, &t.StartLocation},
		{pickup, &t.PickupLocation},
		{dropoff, &t.DropoffLocation},
	} {
		if len(pair.raw) > 0 {
			if err := json.Unmarshal(pair.raw, pair.dest); err != nil {
				return domain.Trip{}, fmt.Errorf("unmarshal location: %w", err)
			}
		}
	}
	if len(summary) > 0 {
		if err := json.Unmarshal(summary, &t.Summary); err != nil {
			return domain.Trip{}, fmt.Errorf("unmarshal itinerary_summary: %w", err)
		}
	}
	return t, nil
}
