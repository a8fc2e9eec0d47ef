// Package repo contains all database access logic for the trip planner.
// Each resource has its own file with an interface and a Postgres
// implementation. No business logic lives here — only SQL and type mapping.
package repo

import (
	"context"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
)

// db is the minimal interface satisfied by *pgxpool.Pool, *pgx.Conn, and
// pgx.Tx. Accepting this interface instead of *pgxpool.Pool directly
// allows integration tests to pass a transaction that is rolled back after
// each test, giving free per-test isolation without any manual cleanup.
type db interface {
	Exec(ctx context.Context, sql string, args ...any) (pgconn.CommandTag, error)
	Query(ctx context.Context, sql string, args ...any) (pgx.Rows, error)
	QueryRow(ctx context.Context, sql string, args ...any) pgx.Row
}

// scanner is satisfied by both pgx.Row and pgx.Rows, allowing the scan
// helpers to be reused for QueryRow and Query calls alike.
type scanner interface {
	Scan(dest ...any) error
}

// Repos bundles one repo per resource, all bound to the same db handle.
// Inside WithinTx that handle is the open transaction, so a multi-repo
// unit of work commits or rolls back as one.
type Repos struct {
	Users  UserRepo
	Trips  TripRepo
	Routes RouteRepo
	Stops  StopRepo
	Logs   LogRepo
	Jobs   JobRepo
}

// NewRepos binds all repos to the given db handle.
// In production pass *pgxpool.Pool; in tests pass a pgx.Tx.
func NewRepos(db db) Repos {
	return Repos{
		Users:  NewUserRepo(db),
		Trips:  NewTripRepo(db),
		Routes: NewRouteRepo(db),
		Stops:  NewStopRepo(db),
		Logs:   NewLogRepo(db),
		Jobs:   NewJobRepo(db),
	}
}

// Transactor runs a function against a repo bundle inside one database
// transaction. The service layer depends on this interface so unit tests
// can substitute a fake that hands the function mock repos.
type Transactor interface {
	// WithinTx begins a transaction, calls fn with repos bound to it, and
	// commits if fn returns nil or rolls back if it returns an error.
	WithinTx(ctx context.Context, fn func(r Repos) error) error
}

// txBeginner is satisfied by *pgxpool.Pool and *pgx.Conn.
type txBeginner interface {
	Begin(ctx context.Context) (pgx.Tx, error)
}

type pgTransactor struct {
	db txBeginner
}

// NewTransactor constructs a Transactor over the given pool or connection.
func NewTransactor(db txBeginner) Transactor {
	return &pgTransactor{db: db}
}

func (t *pgTransactor) WithinTx(ctx context.Context, fn func(r Repos) error) error {
	return pgx.BeginFunc(ctx, t.db, func(tx pgx.Tx) error {
		return fn(NewRepos(tx))
	})
}
