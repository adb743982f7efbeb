// Package storage provides durable persistence for programs, clients,
// in-progress snapshots, and the workout history. Records are stored as
// JSON documents with a few promoted columns for addressing and ordering,
// mirroring the key-value shape the rest of the system expects.
//
// Two backends exist: SQLite (default, local single-trainer deployments)
// and Postgres (hosted deployments). Both satisfy Store.
package storage

import (
	"context"
	"errors"
	"fmt"

	"github.com/golang-migrate/migrate/v4"
	_ "github.com/golang-migrate/migrate/v4/database/postgres"
	_ "github.com/golang-migrate/migrate/v4/database/sqlite"
	"github.com/golang-migrate/migrate/v4/source/iofs"
	"github.com/google/uuid"
	"github.com/lostmarbl3/f-ai/internal/models"
	"github.com/lostmarbl3/f-ai/migrations"
)

// ErrNotFound is returned when a record addressed by id does not exist.
// Snapshot lookups are an exception: a missing snapshot is (nil, nil).
var ErrNotFound = errors.New("record not found")

// Store is the full persistence surface. It embeds the session tracker's
// snapshot and history contracts and adds the program/client catalog and
// history queries.
type Store interface {
	// Snapshots (auto-save bridge).
	SaveSnapshot(ctx context.Context, snap models.InProgressWorkout) error
	GetSnapshot(ctx context.Context, clientID, programID string) (*models.InProgressWorkout, error)
	DeleteSnapshot(ctx context.Context, clientID, programID string) error

	// Workout history (append-only except for the post-hoc feeling).
	AppendWorkout(ctx context.Context, w models.LoggedWorkout) error
	ListWorkouts(ctx context.Context, clientID string) ([]models.LoggedWorkout, error)
	GetWorkout(ctx context.Context, id uuid.UUID) (*models.LoggedWorkout, error)
	UpdateWorkoutFeeling(ctx context.Context, id uuid.UUID, feeling models.Feeling) error

	// Program catalog.
	SaveProgram(ctx context.Context, p models.Program) error
	GetProgram(ctx context.Context, id string) (*models.Program, error)
	ListPrograms(ctx context.Context) ([]models.Program, error)
	DeleteProgram(ctx context.Context, id string) error

	// Client roster.
	SaveClient(ctx context.Context, c models.Client) error
	GetClient(ctx context.Context, id string) (*models.Client, error)
	ListClients(ctx context.Context) ([]models.Client, error)

	Close() error
}

// RunMigrations applies all pending migrations for the given driver
// ("sqlite" or "postgres") against the DSN. Migration files are embedded
// per driver.
func RunMigrations(driver, dsn string) error {
	src, err := iofs.New(migrations.FS, driver)
	if err != nil {
		return fmt.Errorf("loading migrations for %s: %w", driver, err)
	}
	m, err := migrate.NewWithSourceInstance("iofs", src, dsn)
	if err != nil {
		return fmt.Errorf("creating migrator: %w", err)
	}
	defer m.Close()

	if err := m.Up(); err != nil && err != migrate.ErrNoChange {
		return fmt.Errorf("running migrations: %w", err)
	}
	return nil
}
