package service

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"

	"github.com/google/uuid"

	"github.com/openhaul/planner/backend/internal/domain"
	"github.com/openhaul/planner/backend/internal/repo"
)

// TripPlanner is the slice of the trip service the job worker needs.
type TripPlanner interface {
	PlanTrip(ctx context.Context, userID uuid.UUID, req domain.TripRequest) (domain.Trip, error)
}

// JobService enqueues and executes asynchronous trip-planning jobs.
// Enqueue is called from the API; ProcessPending and RunOne are called
// from the worker binary.
type JobService struct {
	repos   repo.Repos
	planner TripPlanner
}

// NewJobService constructs a JobService.
func NewJobService(repos repo.Repos, planner TripPlanner) *JobService {
	return &JobService{repos: repos, planner: planner}
}

// Enqueue records a PENDING PLAN_TRIP job carrying the request as its
// payload. The request is validated only when the worker executes it.
func (s *JobService) Enqueue(ctx context.Context, userID uuid.UUID, req domain.TripRequest) (domain.BackgroundJob, error) {
	payload, err := json.Marshal(req)
	if err != nil {
		return domain.BackgroundJob{}, fmt.Errorf("service.JobService.Enqueue: %w", err)
	}

	job, err := s.repos.Jobs.Create(ctx, domain.BackgroundJob{
		UserID:  &userID,
		JobType: domain.JobTypePlanTrip,
		Payload: payload,
	})
	if err != nil {
		return domain.BackgroundJob{}, fmt.Errorf("service.JobService.Enqueue: %w", err)
	}

	slog.InfoContext(ctx, "job enqueued", "job_id", job.ID, "job_type", job.JobType, "user_id", userID)
	return job, nil
}

// GetByID returns a job's current state. Reads are owner-scoped: a job
// belonging to another user (or orphaned by account deletion) is
// indistinguishable from a missing one, so payloads never leak across
// accounts.
func (s *JobService) GetByID(ctx context.Context, userID, id uuid.UUID) (domain.BackgroundJob, error) {
	job, err := s.repos.Jobs.GetByID(ctx, id)
	if err != nil {
		return domain.BackgroundJob{}, fmt.Errorf("service.JobService.GetByID: %w", err)
	}
	if job.UserID == nil || *job.UserID != userID {
		return domain.BackgroundJob{}, fmt.Errorf("service.JobService.GetByID: %w", domain.ErrNotFound)
	}
	return job, nil
}

// ProcessPending claims up to limit PENDING PLAN_TRIP jobs in FIFO order
// and executes each one to a terminal state. One job's failure never
// stops the batch. Returns the processed jobs with their terminal
// status, result, and error message populated.
func (s *JobService) ProcessPending(ctx context.Context, limit int) ([]domain.BackgroundJob, error) {
	jobs, err := s.repos.Jobs.ClaimPending(ctx, domain.JobTypePlanTrip, limit)
	if err != nil {
		return nil, fmt.Errorf("service.JobService.ProcessPending: %w", err)
	}

	processed := make([]domain.BackgroundJob, 0, len(jobs))
	for _, job := range jobs {
		processed = append(processed, s.execute(ctx, job))
	}
	return processed, nil
}

// RunOne claims and executes a single job by ID. Terminal jobs are left
// untouched and returned as-is, so retrying a finished job is a no-op.
func (s *JobService) RunOne(ctx context.Context, id uuid.UUID) (domain.BackgroundJob, error) {
	job, claimed, err := s.repos.Jobs.Claim(ctx, id)
	if err != nil {
		return domain.BackgroundJob{}, fmt.Errorf("service.JobService.RunOne: %w", err)
	}
	if !claimed {
		return job, nil
	}
	return s.execute(ctx, job), nil
}

// execute runs one claimed job to SUCCESS or FAILED and returns the
// terminal record. Every failure mode lands in MarkFailed with a stored
// message; execute itself never returns an error because a job with no
// terminal state would be stranded in RUNNING. If recording the outcome
// itself fails, the returned job still carries the terminal state so
// callers see what was decided.
func (s *JobService) execute(ctx context.Context, job domain.BackgroundJob) domain.BackgroundJob {
	fail := func(message string) domain.BackgroundJob {
		failed, err := s.repos.Jobs.MarkFailed(ctx, job.ID, message)
		if err != nil {
			slog.ErrorContext(ctx, "job result not recorded", "job_id", job.ID, "error", err)
			failed = job
			failed.Status = domain.JobStatusFailed
			failed.ErrorMessage = message
		}
		slog.WarnContext(ctx, "job failed", "job_id", job.ID, "job_type", job.JobType, "error", message)
		return failed
	}

	if job.UserID == nil {
		return fail(fmt.Sprintf("%s: associated user no longer exists for this job", domain.ErrTripPlanning))
	}

	var req domain.TripRequest
	if err := json.Unmarshal(job.Payload, &req); err != nil {
		return fail(fmt.Sprintf("%s: invalid job payload: %s", domain.ErrTripPlanning, err))
	}

	trip, err := s.planner.PlanTrip(ctx, *job.UserID, req)
	if err != nil {
		return fail(err.Error())
	}

	result, err := json.Marshal(map[string]string{"trip_id": trip.ID.String()})
	if err != nil {
		return fail(fmt.Sprintf("encoding job result: %s", err))
	}
	done, err := s.repos.Jobs.MarkSuccess(ctx, job.ID, result)
	if err != nil {
		slog.ErrorContext(ctx, "job result not recorded", "job_id", job.ID, "error", err)
		done = job
		done.Status = domain.JobStatusSuccess
		done.Result = result
	}
	slog.InfoContext(ctx, "job succeeded", "job_id", job.ID, "job_type", job.JobType, "trip_id", trip.ID)
	return done
}
