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

// microsecondsPerMinute converts between domain.MinuteOfDay and the
// microseconds-since-midnight representation pgtype.Time uses for TIME
// columns.
const microsecondsPerMinute = int64(60) * 1_000_000

// LogRepo defines the persistence operations for DriverLogs and their
// DutyStatusSegments. Segments are always replaced wholesale alongside
// their log's totals — never patched — so the two stay consistent.
type LogRepo interface {
	// Upsert inserts a log for (trip, day_number) or overwrites the
	// mutable fields of the existing one, returning the persisted record.
	Upsert(ctx context.Context, log domain.DriverLog) (domain.DriverLog, error)

	// ReplaceSegments deletes all segments of the log and inserts the
	// given set, returning the persisted segments in insertion order.
	ReplaceSegments(ctx context.Context, logID uuid.UUID, segments []domain.DutyStatusSegment) ([]domain.DutyStatusSegment, error)

	// GetByID retrieves a log by primary key with its segments loaded.
	// Not user-scoped; callers resolve ownership via OwnerByID.
	GetByID(ctx context.Context, logID uuid.UUID) (domain.DriverLog, error)

	// GetByTripDay retrieves the log for (trip, day_number) without its
	// segments. Returns domain.ErrNotFound when no log exists yet.
	GetByTripDay(ctx context.Context, tripID uuid.UUID, dayNumber int) (domain.DriverLog, error)

	// OwnerByID returns the user who owns the trip the log belongs to.
	// Returns domain.ErrNotFound when the log does not exist.
	OwnerByID(ctx context.Context, logID uuid.UUID) (uuid.UUID, error)

	// ListByTripID returns the trip's logs ordered by day_number, each
	// with its segments loaded in start-time order.
	ListByTripID(ctx context.Context, tripID uuid.UUID) ([]domain.DriverLog, error)

	// Delete removes a log by primary key; segments cascade.
	// Returns domain.ErrNotFound if the log does not exist.
	Delete(ctx context.Context, logID uuid.UUID) error
}

// pgLogRepo is the Postgres implementation of LogRepo.
type pgLogRepo struct {
	db db
}

// NewLogRepo constructs a LogRepo backed by the provided db connection.
// In production pass *pgxpool.Pool; in tests pass a pgx.Tx for rollback isolation.
func NewLogRepo(db db) LogRepo {
	return &pgLogRepo{db: db}
}

const logColumns = `id, trip_id, day_number, log_date,
		total_off_duty_minutes, total_sleeper_minutes, total_driving_minutes,
		total_on_duty_minutes, total_distance_miles, notes, created_at, updated_at`

// Upsert inserts or overwrites the log row for (trip_id, day_number).
// The ON CONFLICT DO UPDATE ensures the RETURNING clause fires on both
// paths.
func (r *pgLogRepo) Upsert(ctx context.Context, log domain.DriverLog) (domain.DriverLog, error) {
	const q = `
		INSERT INTO driver_logs (trip_id, day_number, log_date,
			total_off_duty_minutes, total_sleeper_minutes, total_driving_minutes,
			total_on_duty_minutes, total_distance_miles, notes)
		VALUES (@trip_id, @day_number, @log_date,
			@total_off_duty_minutes, @total_sleeper_minutes, @total_driving_minutes,
			@total_on_duty_minutes, @total_distance_miles, @notes)
		ON CONFLICT (trip_id, day_number) DO UPDATE SET
			log_date               = EXCLUDED.log_date,
			total_off_duty_minutes = EXCLUDED.total_off_duty_minutes,
			total_sleeper_minutes  = EXCLUDED.total_sleeper_minutes,
			total_driving_minutes  = EXCLUDED.total_driving_minutes,
			total_on_duty_minutes  = EXCLUDED.total_on_duty_minutes,
			total_distance_miles   = EXCLUDED.total_distance_miles,
			notes                  = EXCLUDED.notes,
			updated_at             = now()
		RETURNING ` + logColumns

	args := pgx.NamedArgs{
		"trip_id":                log.TripID,
		"day_number":             log.DayNumber,
		"log_date":               log.LogDate,
		"total_off_duty_minutes": log.TotalOffDutyMinutes,
		"total_sleeper_minutes":  log.TotalSleeperMinutes,
		"total_driving_minutes":  log.TotalDrivingMinutes,
		"total_on_duty_minutes":  log.TotalOnDutyMinutes,
		"total_distance_miles":   log.TotalDistanceMiles,
		"notes":                  log.Notes,
	}

	result, err := scanLog(r.db.QueryRow(ctx, q, args))
	if err != nil {
		return domain.DriverLog{}, fmt.Errorf("repo.LogRepo.Upsert: %w", err)
	}
	return result, nil
}

// ReplaceSegments swaps the log's segment set atomically with respect to
// the surrounding transaction: delete all, then insert all.
func (r *pgLogRepo) ReplaceSegments(ctx context.Context, logID uuid.UUID, segments []domain.DutyStatusSegment) ([]domain.DutyStatusSegment, error) {
	const del = `DELETE FROM duty_status_segments WHERE log_id = @log_id`
	if _, err := r.db.Exec(ctx, del, pgx.NamedArgs{"log_id": logID}); err != nil {
		return nil, fmt.Errorf("repo.LogRepo.ReplaceSegments: delete: %w", err)
	}

	const ins = `
		INSERT INTO duty_status_segments (log_id, status, start_time, end_time,
			location, activity, remarks)
		VALUES (@log_id, @status, @start_time, @end_time,
			@location, @activity, @remarks)
		RETURNING id, log_id, status, start_time, end_time,
			location, activity, remarks, created_at, updated_at`

	created := make([]domain.DutyStatusSegment, 0, len(segments))
	for _, seg := range segments {
		row := r.db.QueryRow(ctx, ins, pgx.NamedArgs{
			"log_id":     logID,
			"status":     seg.Status,
			"start_time": minuteToPgTime(seg.StartTime),
			"end_time":   minuteToPgTime(seg.EndTime),
			"location":   seg.Location,
			"activity":   seg.Activity,
			"remarks":    seg.Remarks,
		})
		s, err := scanSegment(row)
		if err != nil {
			return nil, fmt.Errorf("repo.LogRepo.ReplaceSegments: insert: %w", err)
		}
		created = append(created, s)
	}
	return created, nil
}

func (r *pgLogRepo) GetByID(ctx context.Context, logID uuid.UUID) (domain.DriverLog, error) {
	const q = `
		SELECT ` + logColumns + `
		FROM driver_logs
		WHERE id = @id`

	log, err := scanLog(r.db.QueryRow(ctx, q, pgx.NamedArgs{"id": logID}))
	if err != nil {
		return domain.DriverLog{}, fmt.Errorf("repo.LogRepo.GetByID: %w", err)
	}

	segments, err := r.listSegments(ctx, log.ID)
	if err != nil {
		return domain.DriverLog{}, fmt.Errorf("repo.LogRepo.GetByID: %w", err)
	}
	log.Segments = segments
	return log, nil
}

func (r *pgLogRepo) GetByTripDay(ctx context.Context, tripID uuid.UUID, dayNumber int) (domain.DriverLog, error) {
	const q = `
		SELECT ` + logColumns + `
		FROM driver_logs
		WHERE trip_id = @trip_id AND day_number = @day_number`

	log, err := scanLog(r.db.QueryRow(ctx, q, pgx.NamedArgs{"trip_id": tripID, "day_number": dayNumber}))
	if err != nil {
		return domain.DriverLog{}, fmt.Errorf("repo.LogRepo.GetByTripDay: %w", err)
	}
	return log, nil
}

func (r *pgLogRepo) OwnerByID(ctx context.Context, logID uuid.UUID) (uuid.UUID, error) {
	const q = `
		SELECT t.user_id
		FROM driver_logs l
		JOIN trips t ON t.id = l.trip_id
		WHERE l.id = @id`

	var owner pgtype.UUID
	err := r.db.QueryRow(ctx, q, pgx.NamedArgs{"id": logID}).Scan(&owner)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return uuid.Nil, fmt.Errorf("repo.LogRepo.OwnerByID: %w", domain.ErrNotFound)
		}
		return uuid.Nil, fmt.Errorf("repo.LogRepo.OwnerByID: %w", err)
	}
	return uuid.UUID(owner.Bytes), nil
}

func (r *pgLogRepo) ListByTripID(ctx context.Context, tripID uuid.UUID) ([]domain.DriverLog, error) {
	const q = `
		SELECT ` + logColumns + `
		FROM driver_logs
		WHERE trip_id = @trip_id
		ORDER BY day_number`

	rows, err := r.db.Query(ctx, q, pgx.NamedArgs{"trip_id": tripID})
	if err != nil {
		return nil, fmt.Errorf("repo.LogRepo.ListByTripID: %w", err)
	}
	defer rows.Close()

	logs := []domain.DriverLog{}
	for rows.Next() {
		log, err := scanLog(rows)
		if err != nil {
			return nil, fmt.Errorf("repo.LogRepo.ListByTripID: scan: %w", err)
		}
		logs = append(logs, log)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("repo.LogRepo.ListByTripID: rows: %w", err)
	}

	for i := range logs {
		segments, err := r.listSegments(ctx, logs[i].ID)
		if err != nil {
			return nil, fmt.Errorf("repo.LogRepo.ListByTripID: %w", err)
		}
		logs[i].Segments = segments
	}
	return logs, nil
}

func (r *pgLogRepo) Delete(ctx context.Context, logID uuid.UUID) error {
	const q = `DELETE FROM driver_logs WHERE id = @id`

	tag, err := r.db.Exec(ctx, q, pgx.NamedArgs{"id": logID})
	if err != nil {
		return fmt.Errorf("repo.LogRepo.Delete: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return fmt.Errorf("repo.LogRepo.Delete: %w", domain.ErrNotFound)
	}
	return nil
}

func (r *pgLogRepo) listSegments(ctx context.Context, logID uuid.UUID) ([]domain.DutyStatusSegment, error) {
	const q = `
		SELECT id, log_id, status, start_time, end_time,
			location, activity, remarks, created_at, updated_at
		FROM duty_status_segments
		WHERE log_id = @log_id
		ORDER BY start_time`

	rows, err := r.db.Query(ctx, q, pgx.NamedArgs{"log_id": logID})
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	segments := []domain.DutyStatusSegment{}
	for rows.Next() {
		s, err := scanSegment(rows)
		if err != nil {
			return nil, fmt.Errorf("scan segment: %w", err)
		}
		segments = append(segments, s)
	}
	return segments, rows.Err()
}

func scanLog(s scanner) (domain.DriverLog, error) {
	var (
		log     domain.DriverLog
		id      pgtype.UUID
		tripID  pgtype.UUID
		logDate pgtype.Date
	)

	err := s.Scan(&id, &tripID, &log.DayNumber, &logDate,
		&log.TotalOffDutyMinutes, &log.TotalSleeperMinutes, &log.TotalDrivingMinutes,
		&log.TotalOnDutyMinutes, &log.TotalDistanceMiles, &log.Notes,
		&log.CreatedAt, &log.UpdatedAt)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return domain.DriverLog{}, domain.ErrNotFound
		}
		return domain.DriverLog{}, err
	}

	log.ID = uuid.UUID(id.Bytes)
	log.TripID = uuid.UUID(tripID.Bytes)
	log.LogDate = logDate.Time
	return log, nil
}

func scanSegment(s scanner) (domain.DutyStatusSegment, error) {
	var (
		seg   domain.DutyStatusSegment
		id    pgtype.UUID
		logID pgtype.UUID
		start pgtype.Time
		end   pgtype.Time
	)

	err := s.Scan(&id, &logID, &seg.Status, &start, &end,
		&seg.Location, &seg.Activity, &seg.Remarks, &seg.CreatedAt, &seg.UpdatedAt)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return domain.DutyStatusSegment{}, domain.ErrNotFound
		}
		return domain.DutyStatusSegment{}, err
	}

	seg.ID = uuid.UUID(id.Bytes)
	seg.LogID = uuid.UUID(logID.Bytes)
	seg.StartTime = domain.MinuteOfDay(start.Microseconds / microsecondsPerMinute)
	seg.EndTime = domain.MinuteOfDay(end.Microseconds / microsecondsPerMinute)
	return seg, nil
}

// minuteToPgTime converts a minute-of-day into pgtype.Time for a TIME column.
func minuteToPgTime(m domain.MinuteOfDay) pgtype.Time {
	return pgtype.Time{Microseconds: int64(m) * microsecondsPerMinute, Valid: true}
}
