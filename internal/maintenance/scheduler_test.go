package maintenance_test

import (
	"io"
	"log/slog"
	"testing"

	"github.com/adcraft-ai/adcraft/internal/config"
	"github.com/adcraft-ai/adcraft/internal/database"
	"github.com/adcraft-ai/adcraft/internal/maintenance"
)

func newStore(t *testing.T) database.Store {
	t.Helper()
	db, err := database.NewDB(":memory:")
	if err != nil {
		t.Fatal(err)
	}
	t.Cleanup(func() { database.CloseDB(db) })
	return database.NewStore(db, slog.New(slog.NewTextHandler(io.Discard, nil)))
}

func TestSchedulerLifecycle(t *testing.T) {
	t.Parallel()

	sched, err := maintenance.NewScheduler(newStore(t), config.TasksConfig{
		MaintenanceEnabled:  true,
		MaintenanceSchedule: "0 4 * * *",
	}, slog.New(slog.NewTextHandler(io.Discard, nil)))
	if err != nil {
		t.Fatalf("NewScheduler: %v", err)
	}

	if err := sched.Start(); err != nil {
		t.Fatalf("Start: %v", err)
	}
	if err := sched.Start(); err == nil {
		t.Error("double start must fail")
	}
	if err := sched.Stop(); err != nil {
		t.Fatalf("Stop: %v", err)
	}
	if err := sched.Stop(); err != nil {
		t.Errorf("idempotent stop: %v", err)
	}
}

func TestSchedulerRejectsBadCron(t *testing.T) {
	t.Parallel()

	sched, err := maintenance.NewScheduler(newStore(t), config.TasksConfig{
		MaintenanceEnabled:  true,
		MaintenanceSchedule: "not a cron expression",
	}, slog.New(slog.NewTextHandler(io.Discard, nil)))
	if err != nil {
		t.Fatalf("NewScheduler: %v", err)
	}
	if err := sched.Start(); err == nil {
		t.Error("invalid schedule must fail to start")
	}
}
