package repo

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"sort"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgtype"

	"github.com/openhaul/planner/backend/internal/domain"
)

// JobRepo defines the persistence operations for BackgroundJobs.
// The claim operations flip PENDING→RUNNING inside a single statement so
// concurrent workers can never pick up the same job twice.
type JobRepo interface {
	// Create inserts a new PENDING job and returns the persisted record.
	Create(ctx context.Context, job domain.BackgroundJob) (domain.BackgroundJob, error)

	// GetByID retrieves a job by primary key.
	// Returns domain.ErrNotFound if no job with that ID exists.
	GetByID(ctx context.Context, id uuid.UUID) (domain.BackgroundJob, error)

	// ClaimPending atomically marks up to limit PENDING jobs of jobType as
	// RUNNING and returns them in creation-time order (FIFO). Rows locked
	// by a concurrent claim are skipped, not waited on.
	ClaimPending(ctx context.Context, jobType domain.JobType, limit int) ([]domain.BackgroundJob, error)

	// Claim atomically marks one job RUNNING if it is PENDING or RUNNING.
	// The second return is false when the job was already terminal (the
	// returned job then reflects its current state, unchanged).
	Claim(ctx context.Context, id uuid.UUID) (domain.BackgroundJob, bool, error)

	// MarkSuccess records a terminal SUCCESS with the given result.
	MarkSuccess(ctx context.Context, id uuid.UUID, result json.RawMessage) (domain.BackgroundJob, error)

	// MarkFailed records a terminal FAILED with the error message,
	// truncated to domain.ErrorMessageLimit characters.
	MarkFailed(ctx context.Context, id uuid.UUID, message string) (domain.BackgroundJob, error)
}

// pgJobRepo is the Postgres implementation of JobRepo.
type pgJobRepo struct {
	db db
}

// NewJobRepo constructs a JobRepo backed by the provided db connection.
// In production pass *pgxpool.Pool; in tests pass a pgx.Tx for rollback isolation.
func NewJobRepo(db db) JobRepo {
	return &pgJobRepo{db: db}
}

const jobColumns = `id, user_id, job_type, status, payload, result,
		error_message, created_at, updated_at, started_at, completed_at`

func (r *pgJobRepo) Create(ctx context.Context, job domain.BackgroundJob) (domain.BackgroundJob, error) {
	const q = `
		INSERT INTO background_jobs (user_id, job_type, status, payload)
		VALUES (@user_id, @job_type, @status, @payload)
		RETURNING ` + jobColumns

	args := pgx.NamedArgs{
		"user_id":  job.UserID,
		"job_type": job.JobType,
		"status":   domain.JobStatusPending,
		"payload":  []byte(job.Payload),
	}

	result, err := scanJob(r.db.QueryRow(ctx, q, args))
	if err != nil {
		return domain.BackgroundJob{}, fmt.Errorf("repo.JobRepo.Create: %w", err)
	}
	return result, nil
}

func (r *pgJobRepo) GetByID(ctx context.Context, id uuid.UUID) (domain.BackgroundJob, error) {
	const q = `
		SELECT ` + jobColumns + `
		FROM background_jobs
		WHERE id = @id`

	result, err := scanJob(r.db.QueryRow(ctx, q, pgx.NamedArgs{"id": id}))
	if err != nil {
		return domain.BackgroundJob{}, fmt.Errorf("repo.JobRepo.GetByID: %w", err)
	}
	return result, nil
}

// ClaimPending selects and flips PENDING jobs in one statement.
// FOR UPDATE SKIP LOCKED makes overlapping worker invocations partition
// the queue instead of double-processing it. RETURNING does not guarantee
// row order, so the FIFO sort happens on the way out.
func (r *pgJobRepo) ClaimPending(ctx context.Context, jobType domain.JobType, limit int) ([]domain.BackgroundJob, error) {
	const q = `
		WITH claimed AS (
			SELECT id
			FROM background_jobs
			WHERE job_type = @job_type AND status = @pending
			ORDER BY created_at ASC
			LIMIT @limit
			FOR UPDATE SKIP LOCKED
		)
		UPDATE background_jobs j
		SET status = @running, started_at = now(), updated_at = now()
		FROM claimed
		WHERE j.id = claimed.id
		RETURNING j.id, j.user_id, j.job_type, j.status, j.payload, j.result,
			j.error_message, j.created_at, j.updated_at, j.started_at, j.completed_at`

	rows, err := r.db.Query(ctx, q, pgx.NamedArgs{
		"job_type": jobType,
		"pending":  domain.JobStatusPending,
		"running":  domain.JobStatusRunning,
		"limit":    limit,
	})
	if err != nil {
		return nil, fmt.Errorf("repo.JobRepo.ClaimPending: %w", err)
	}
	defer rows.Close()

	jobs := []domain.BackgroundJob{}
	for rows.Next() {
		job, err := scanJob(rows)
		if err != nil {
			return nil, fmt.Errorf("repo.JobRepo.ClaimPending: scan: %w", err)
		}
		jobs = append(jobs, job)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("repo.JobRepo.ClaimPending: rows: %w", err)
	}

	sort.Slice(jobs, func(i, j int) bool { return jobs[i].CreatedAt.Before(jobs[j].CreatedAt) })
	return jobs, nil
}

// Claim conditionally flips a single job to RUNNING. A RUNNING job may be
// re-claimed: that is the recovery path for jobs stranded by a crashed
// worker.
func (r *pgJobRepo) Claim(ctx context.Context, id uuid.UUID) (domain.BackgroundJob, bool, error) {
	const q = `
		UPDATE background_jobs
		SET status = @running, started_at = now(), updated_at = now()
		WHERE id = @id AND status IN (@pending, @running_in)
		RETURNING ` + jobColumns

	job, err := scanJob(r.db.QueryRow(ctx, q, pgx.NamedArgs{
		"id":         id,
		"running":    domain.JobStatusRunning,
		"pending":    domain.JobStatusPending,
		"running_in": domain.JobStatusRunning,
	}))
	if err == nil {
		return job, true, nil
	}
	if !errors.Is(err, domain.ErrNotFound) {
		return domain.BackgroundJob{}, false, fmt.Errorf("repo.JobRepo.Claim: %w", err)
	}

	// Not claimable: either terminal or missing. Report its actual state.
	job, err = r.GetByID(ctx, id)
	if err != nil {
		return domain.BackgroundJob{}, false, fmt.Errorf("repo.JobRepo.Claim: %w", err)
	}
	return job, false, nil
}

func (r *pgJobRepo) MarkSuccess(ctx context.Context, id uuid.UUID, result json.RawMessage) (domain.BackgroundJob, error) {
	const q = `
		UPDATE background_jobs
		SET status = @status, result = @result, completed_at = now(), updated_at = now()
		WHERE id = @id
		RETURNING ` + jobColumns

	job, err := scanJob(r.db.QueryRow(ctx, q, pgx.NamedArgs{
		"id":     id,
		"status": domain.JobStatusSuccess,
		"result": []byte(result),
	}))
	if err != nil {
		return domain.BackgroundJob{}, fmt.Errorf("repo.JobRepo.MarkSuccess: %w", err)
	}
	return job, nil
}

func (r *pgJobRepo) MarkFailed(ctx context.Context, id uuid.UUID, message string) (domain.BackgroundJob, error) {
	if len(message) > domain.ErrorMessageLimit {
		message = message[:domain.ErrorMessageLimit]
	}

	const q = `
		UPDATE background_jobs
		SET status = @status, error_message = @error_message, completed_at = now(), updated_at = now()
		WHERE id = @id
		RETURNING ` + jobColumns

	job, err := scanJob(r.db.QueryRow(ctx, q, pgx.NamedArgs{
		"id":            id,
		"status":        domain.JobStatusFailed,
		"error_message": message,
	}))
	if err != nil {
		return domain.BackgroundJob{}, fmt.Errorf("repo.JobRepo.MarkFailed: %w", err)
	}
	return job, nil
}

func scanJob(s scanner) (domain.BackgroundJob, error) {
	var (
		j       domain.BackgroundJob
		id      pgtype.UUID
		userID  pgtype.UUID
		payload []byte
		result  []byte
	)

	err := s.Scan(&id, &userID, &j.JobType, &j.Status, &payload, &result,
		&j.ErrorMessage, &j.CreatedAt, &j.UpdatedAt, &j.StartedAt, &j.CompletedAt)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return domain.BackgroundJob{}, domain.ErrNotFound
		}
		return domain.BackgroundJob{}, err
	}

	j.ID = uuid.UUID(id.Bytes)
	if userID.Valid {
		owner := uuid.UUID(userID.Bytes)
		j.UserID = &owner
	}
	j.Payload = json.RawMessage(payload)
	j.Result = json.RawMessage(result)
	return j, nil
}
