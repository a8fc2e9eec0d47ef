package domain

import (
	"encoding/json"
	"time"

	"github.com/google/uuid"
)

// JobType identifies what a background job does.
type JobType string

// JobTypePlanTrip is currently the only job type: plan a trip from a
// serialized TripRequest payload.
const JobTypePlanTrip JobType = "PLAN_TRIP"

// JobStatus is the lifecycle state of a background job.
// Transitions are one-directional: PENDING → RUNNING → SUCCESS | FAILED.
// Terminal states are never re-processed.
type JobStatus string

const (
	JobStatusPending JobStatus = "PENDING"
	JobStatusRunning JobStatus = "RUNNING"
	JobStatusSuccess JobStatus = "SUCCESS"
	JobStatusFailed  JobStatus = "FAILED"
)

// Terminal reports whether the status is SUCCESS or FAILED.
func (s JobStatus) Terminal() bool {
	return s == JobStatusSuccess || s == JobStatusFailed
}

// ErrorMessageLimit caps the stored error_message of a failed job.
const ErrorMessageLimit = 2048

// BackgroundJob is one asynchronous unit of work processed by the polling
// worker. UserID is nil when the owning account has since been deleted;
// running such a job records a planning failure rather than crashing.
type BackgroundJob struct {
	ID           uuid.UUID       `json:"id"`
	UserID       *uuid.UUID      `json:"user_id"`
	JobType      JobType         `json:"job_type"`
	Status       JobStatus       `json:"status"`
	Payload      json.RawMessage `json:"payload"`
	Result       json.RawMessage `json:"result,omitempty"`
	ErrorMessage string          `json:"error_message,omitempty"`
	CreatedAt    time.Time       `json:"created_at"`
	UpdatedAt    time.Time       `json:"updated_at"`
	StartedAt    *time.Time      `json:"started_at,omitempty"`
	CompletedAt  *time.Time      `json:"completed_at,omitempty"`
}
