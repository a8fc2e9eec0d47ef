package domain

import "errors"

// ErrNotFound is returned by repo and service functions when the requested
// resource does not exist — or exists but belongs to a different user.
// Ownership misses deliberately read as "not found" so the API never leaks
// whether a resource exists. Handlers should map this to HTTP 404.
var ErrNotFound = errors.New("not found")

// ErrValidation is returned by service functions when input fails business
// rule validation (e.g. overlapping duty segments, invalid status transition).
// Handlers should map this to HTTP 422 Unprocessable Entity.
var ErrValidation = errors.New("validation error")

// ErrPermission is returned when a resource exists but the caller is not
// allowed to act on it. Handlers should map this to HTTP 403 with a generic
// message that does not reveal resource details.
var ErrPermission = errors.New("not permitted")

// ErrActiveTrip is returned when moving a trip to IN_PROGRESS would
// violate the one-active-trip-per-user rule. The database's partial
// unique index is the authoritative guard; the repo maps its violation
// to this sentinel so races lost at the application-level check still
// surface as the same error.
var ErrActiveTrip = errors.New("another trip is already in progress")

// ErrTripPlanning is the unifying wrapper the orchestration pipeline raises
// when any step of planning a trip fails: routing provider errors, HOS
// computation errors, or persistence failures. The wrapped message is what
// background jobs record in error_message on FAILED.
var ErrTripPlanning = errors.New("trip planning failed")
