package service_test

import (
	"context"
	"encoding/json"

	"github.com/google/uuid"

	"github.com/openhaul/planner/backend/internal/domain"
	"github.com/openhaul/planner/backend/internal/repo"
	"github.com/openhaul/planner/backend/internal/routing"
)

// The mocks below use function fields so each test wires up only the
// methods it expects to be called. An unexpected call panics with a nil
// function error, which is exactly the signal we want.

type mockTripRepo struct {
	CreateFn       func(ctx context.Context, trip domain.Trip) (domain.Trip, error)
	GetByIDFn      func(ctx context.Context, userID, tripID uuid.UUID) (domain.Trip, error)
	ListFn         func(ctx context.Context, userID uuid.UUID, p domain.PaginationParams) ([]domain.Trip, error)
	UpdatePlanFn   func(ctx context.Context, trip domain.Trip) (domain.Trip, error)
	UpdateStatusFn func(ctx context.Context, userID, tripID uuid.UUID, status domain.TripStatus) (domain.Trip, error)
	CountActiveFn  func(ctx context.Context, userID, excludeTripID uuid.UUID) (int64, error)
	DeleteFn       func(ctx context.Context, userID, tripID uuid.UUID) error
}

func (m *mockTripRepo) Create(ctx context.Context, trip domain.Trip) (domain.Trip, error) {
	return m.CreateFn(ctx, trip)
}

func (m *mockTripRepo) GetByID(ctx context.Context, userID, tripID uuid.UUID) (domain.Trip, error) {
	return m.GetByIDFn(ctx, userID, tripID)
}

func (m *mockTripRepo) List(ctx context.Context, userID uuid.UUID, p domain.PaginationParams) ([]domain.Trip, error) {
	return m.ListFn(ctx, userID, p)
}

func (m *mockTripRepo) UpdatePlan(ctx context.Context, trip domain.Trip) (domain.Trip, error) {
	return m.UpdatePlanFn(ctx, trip)
}

func (m *mockTripRepo) UpdateStatus(ctx context.Context, userID, tripID uuid.UUID, status domain.TripStatus) (domain.Trip, error) {
	return m.UpdateStatusFn(ctx, userID, tripID, status)
}

func (m *mockTripRepo) CountActive(ctx context.Context, userID, excludeTripID uuid.UUID) (int64, error) {
	return m.CountActiveFn(ctx, userID, excludeTripID)
}

func (m *mockTripRepo) Delete(ctx context.Context, userID, tripID uuid.UUID) error {
	return m.DeleteFn(ctx, userID, tripID)
}

type mockRouteRepo struct {
	CreateFn      func(ctx context.Context, route domain.Route) (domain.Route, error)
	GetByTripIDFn func(ctx context.Context, tripID uuid.UUID) (domain.Route, error)
}

func (m *mockRouteRepo) Create(ctx context.Context, route domain.Route) (domain.Route, error) {
	return m.CreateFn(ctx, route)
}

func (m *mockRouteRepo) GetByTripID(ctx context.Context, tripID uuid.UUID) (domain.Route, error) {
	return m.GetByTripIDFn(ctx, tripID)
}

type mockStopRepo struct {
	CreateBatchFn   func(ctx context.Context, stops []domain.Stop) ([]domain.Stop, error)
	ListByRouteIDFn func(ctx context.Context, routeID uuid.UUID) ([]domain.Stop, error)
}

func (m *mockStopRepo) CreateBatch(ctx context.Context, stops []domain.Stop) ([]domain.Stop, error) {
	return m.CreateBatchFn(ctx, stops)
}

func (m *mockStopRepo) ListByRouteID(ctx context.Context, routeID uuid.UUID) ([]domain.Stop, error) {
	return m.ListByRouteIDFn(ctx, routeID)
}

type mockLogRepo struct {
	UpsertFn          func(ctx context.Context, log domain.DriverLog) (domain.DriverLog, error)
	ReplaceSegmentsFn func(ctx context.Context, logID uuid.UUID, segments []domain.DutyStatusSegment) ([]domain.DutyStatusSegment, error)
	GetByIDFn         func(ctx context.Context, logID uuid.UUID) (domain.DriverLog, error)
	GetByTripDayFn    func(ctx context.Context, tripID uuid.UUID, dayNumber int) (domain.DriverLog, error)
	OwnerByIDFn       func(ctx context.Context, logID uuid.UUID) (uuid.UUID, error)
	ListByTripIDFn    func(ctx context.Context, tripID uuid.UUID) ([]domain.DriverLog, error)
	DeleteFn          func(ctx context.Context, logID uuid.UUID) error
}

func (m *mockLogRepo) Upsert(ctx context.Context, log domain.DriverLog) (domain.DriverLog, error) {
	return m.UpsertFn(ctx, log)
}

func (m *mockLogRepo) ReplaceSegments(ctx context.Context, logID uuid.UUID, segments []domain.DutyStatusSegment) ([]domain.DutyStatusSegment, error) {
	return m.ReplaceSegmentsFn(ctx, logID, segments)
}

func (m *mockLogRepo) GetByID(ctx context.Context, logID uuid.UUID) (domain.DriverLog, error) {
	return m.GetByIDFn(ctx, logID)
}

func (m *mockLogRepo) GetByTripDay(ctx context.Context, tripID uuid.UUID, dayNumber int) (domain.DriverLog, error) {
	return m.GetByTripDayFn(ctx, tripID, dayNumber)
}

func (m *mockLogRepo) OwnerByID(ctx context.Context, logID uuid.UUID) (uuid.UUID, error) {
	return m.OwnerByIDFn(ctx, logID)
}

func (m *mockLogRepo) ListByTripID(ctx context.Context, tripID uuid.UUID) ([]domain.DriverLog, error) {
	return m.ListByTripIDFn(ctx, tripID)
}

func (m *mockLogRepo) Delete(ctx context.Context, logID uuid.UUID) error {
	return m.DeleteFn(ctx, logID)
}

type mockJobRepo struct {
	CreateFn       func(ctx context.Context, job domain.BackgroundJob) (domain.BackgroundJob, error)
	GetByIDFn      func(ctx context.Context, id uuid.UUID) (domain.BackgroundJob, error)
	ClaimPendingFn func(ctx context.Context, jobType domain.JobType, limit int) ([]domain.BackgroundJob, error)
	ClaimFn        func(ctx context.Context, id uuid.UUID) (domain.BackgroundJob, bool, error)
	MarkSuccessFn  func(ctx context.Context, id uuid.UUID, result json.RawMessage) (domain.BackgroundJob, error)
	MarkFailedFn   func(ctx context.Context, id uuid.UUID, message string) (domain.BackgroundJob, error)
}

func (m *mockJobRepo) Create(ctx context.Context, job domain.BackgroundJob) (domain.BackgroundJob, error) {
	return m.CreateFn(ctx, job)
}

func (m *mockJobRepo) GetByID(ctx context.Context, id uuid.UUID) (domain.BackgroundJob, error) {
	return m.GetByIDFn(ctx, id)
}

func (m *mockJobRepo) ClaimPending(ctx context.Context, jobType domain.JobType, limit int) ([]domain.BackgroundJob, error) {
	return m.ClaimPendingFn(ctx, jobType, limit)
}

func (m *mockJobRepo) Claim(ctx context.Context, id uuid.UUID) (domain.BackgroundJob, bool, error) {
	return m.ClaimFn(ctx, id)
}

func (m *mockJobRepo) MarkSuccess(ctx context.Context, id uuid.UUID, result json.RawMessage) (domain.BackgroundJob, error) {
	return m.MarkSuccessFn(ctx, id, result)
}

func (m *mockJobRepo) MarkFailed(ctx context.Context, id uuid.UUID, message string) (domain.BackgroundJob, error) {
	return m.MarkFailedFn(ctx, id, message)
}

// fakeTransactor hands the callback the same repo bundle it was built
// with. Rollback semantics are the database's job; at this layer an error
// from the callback simply propagates.
type fakeTransactor struct {
	repos repo.Repos
}

func (f *fakeTransactor) WithinTx(_ context.Context, fn func(r repo.Repos) error) error {
	return fn(f.repos)
}

// fakeRouter returns a canned route or error.
type fakeRouter struct {
	route routing.Route
	err   error
}

func (f *fakeRouter) PlanRoute(_ context.Context, _ []domain.Location, _ string) (routing.Route, error) {
	if f.err != nil {
		return routing.Route{}, f.err
	}
	return f.route, nil
}
