// Package main is the entry point for the background job worker.
// It polls the background_jobs table for PENDING PLAN_TRIP jobs and runs
// each one to a terminal state. Multiple workers can run concurrently:
// the claim query uses row locks to partition the queue between them.
package main

import (
	"context"
	"log/slog"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/joho/godotenv"
	"github.com/spf13/pflag"

	"github.com/openhaul/planner/backend/internal/config"
	"github.com/openhaul/planner/backend/internal/repo"
	"github.com/openhaul/planner/backend/internal/routing"
	"github.com/openhaul/planner/backend/internal/service"
)

func main() {
	limit := pflag.Int("limit", 10, "maximum jobs to claim per polling cycle")
	interval := pflag.Duration("interval", 5*time.Second, "delay between polling cycles")
	once := pflag.Bool("once", false, "process one batch and exit")
	pflag.Parse()

	_ = godotenv.Load()

	cfg, err := config.Load()
	if err != nil {
		slog.Error("configuration error", "error", err)
		os.Exit(1)
	}

	var logLevel slog.Level
	if err := logLevel.UnmarshalText([]byte(cfg.LogLevel)); err != nil {
		logLevel = slog.LevelInfo
	}
	logger := slog.New(slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{
		Level: logLevel,
	}))
	slog.SetDefault(logger)

	pool, err := pgxpool.New(context.Background(), cfg.DatabaseURL)
	if err != nil {
		slog.Error("failed to create database pool", "error", err)
		os.Exit(1)
	}
	defer pool.Close()

	if err := pool.Ping(context.Background()); err != nil {
		slog.Error("failed to connect to database", "error", err)
		os.Exit(1)
	}

	repos := repo.NewRepos(pool)
	tx := repo.NewTransactor(pool)

	var routerOpts []routing.Option
	if cfg.RoutingBaseURL != "" {
		routerOpts = append(routerOpts, routing.WithBaseURL(cfg.RoutingBaseURL))
	}
	orsClient := routing.NewClient(cfg.RoutingAPIKey, routerOpts...)

	tripSvc := service.NewTripService(repos, tx, orsClient)
	jobSvc := service.NewJobService(repos, tripSvc)

	ctx, cancel := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer cancel()

	slog.Info("worker starting", "limit", *limit, "interval", interval.String(), "once", *once)

	if *once {
		processed, err := jobSvc.ProcessPending(ctx, *limit)
		if err != nil {
			slog.Error("processing cycle failed", "error", err)
			os.Exit(1)
		}
		slog.Info("worker done", "processed", len(processed))
		return
	}

	ticker := time.NewTicker(*interval)
	defer ticker.Stop()

	for {
		processed, err := jobSvc.ProcessPending(ctx, *limit)
		if err != nil {
			// Transient DB errors should not kill the worker; the next
			// cycle retries.
			slog.Error("processing cycle failed", "error", err)
		} else if len(processed) > 0 {
			slog.Info("processed batch", "count", len(processed))
		}

		select {
		case <-ctx.Done():
			slog.Info("worker stopping")
			return
		case <-ticker.C:
		}
	}
}
