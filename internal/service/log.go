package service

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/openhaul/planner/backend/internal/domain"
	"github.com/openhaul/planner/backend/internal/repo"
)

// LogService implements driver-log operations: validated upserts with
// whole-segment replacement, listing, and deletion.
type LogService struct {
	repos repo.Repos
	tx    repo.Transactor
}

// NewLogService constructs a LogService.
func NewLogService(repos repo.Repos, tx repo.Transactor) *LogService {
	return &LogService{repos: repos, tx: tx}
}

// Upsert validates the segments and writes the log row plus its full
// segment set in one transaction. Existing segments are deleted and
// replaced wholesale — never patched — so the stored totals always equal
// the per-status sums of the stored segments.
//
// Returns domain.ErrNotFound when the trip does not exist under userID
// (ownership misses are not distinguished from absence).
func (s *LogService) Upsert(ctx context.Context, userID uuid.UUID, in domain.LogInput) (domain.DriverLog, error) {
	if in.DayNumber <= 0 {
		return domain.DriverLog{}, fmt.Errorf("%w: day_number must be 1 or greater", domain.ErrValidation)
	}

	segments, totals, err := normalizeSegments(in.Segments)
	if err != nil {
		return domain.DriverLog{}, err
	}

	logDate := in.LogDate
	if logDate.IsZero() {
		logDate = time.Now().UTC().Truncate(24 * time.Hour)
	}

	var saved domain.DriverLog
	err = s.tx.WithinTx(ctx, func(r repo.Repos) error {
		if _, err := r.Trips.GetByID(ctx, userID, in.TripID); err != nil {
			return fmt.Errorf("service.LogService.Upsert: %w", err)
		}

		distance := 0.0
		if in.TotalDistanceMiles != nil {
			distance = *in.TotalDistanceMiles
		} else if existing, err := r.Logs.GetByTripDay(ctx, in.TripID, in.DayNumber); err == nil {
			distance = existing.TotalDistanceMiles
		} else if !errors.Is(err, domain.ErrNotFound) {
			return fmt.Errorf("service.LogService.Upsert: %w", err)
		}

		log, err := r.Logs.Upsert(ctx, domain.DriverLog{
			TripID:              in.TripID,
			DayNumber:           in.DayNumber,
			LogDate:             logDate,
			TotalOffDutyMinutes: totals.offDuty,
			TotalSleeperMinutes: totals.sleeper,
			TotalDrivingMinutes: totals.driving,
			TotalOnDutyMinutes:  totals.onDuty,
			TotalDistanceMiles:  distance,
			Notes:               in.Notes,
		})
		if err != nil {
			return fmt.Errorf("service.LogService.Upsert: %w", err)
		}

		created, err := r.Logs.ReplaceSegments(ctx, log.ID, segments)
		if err != nil {
			return fmt.Errorf("service.LogService.Upsert: %w", err)
		}
		log.Segments = created
		saved = log
		return nil
	})
	if err != nil {
		return domain.DriverLog{}, err
	}
	return saved, nil
}

// ListByTrip returns the trip's logs with segments, ordered by day number.
// Returns domain.ErrNotFound when the trip does not exist under userID.
// Always returns a non-nil slice so callers can safely range over it.
func (s *LogService) ListByTrip(ctx context.Context, userID, tripID uuid.UUID) ([]domain.DriverLog, error) {
	if _, err := s.repos.Trips.GetByID(ctx, userID, tripID); err != nil {
		return nil, fmt.Errorf("service.LogService.ListByTrip: %w", err)
	}
	logs, err := s.repos.Logs.ListByTripID(ctx, tripID)
	if err != nil {
		return nil, fmt.Errorf("service.LogService.ListByTrip: %w", err)
	}
	if logs == nil {
		return []domain.DriverLog{}, nil
	}
	return logs, nil
}

// Delete removes a driver log. Returns false (with no error) when the log
// does not exist, and domain.ErrPermission when it exists but belongs to
// a different user's trip. Segments cascade in the database.
func (s *LogService) Delete(ctx context.Context, userID, logID uuid.UUID) (bool, error) {
	deleted := false
	err := s.tx.WithinTx(ctx, func(r repo.Repos) error {
		owner, err := r.Logs.OwnerByID(ctx, logID)
		if err != nil {
			if errors.Is(err, domain.ErrNotFound) {
				return nil
			}
			return fmt.Errorf("service.LogService.Delete: %w", err)
		}
		if owner != userID {
			return fmt.Errorf("%w: not allowed to modify this log", domain.ErrPermission)
		}
		if err := r.Logs.Delete(ctx, logID); err != nil {
			return fmt.Errorf("service.LogService.Delete: %w", err)
		}
		deleted = true
		return nil
	})
	if err != nil {
		return false, err
	}
	return deleted, nil
}
