package mcp

import (
	"context"

	"github.com/google/uuid"
	"github.com/lostmarbl3/f-ai/internal/models"
	"github.com/lostmarbl3/f-ai/internal/storage"
)

// DataSource abstracts the data layer for MCP tools. The local storage
// backends and HTTPClient (remote via REST API) all satisfy this
// interface. Derived views (records, volume) are computed here from the
// raw history so both modes behave identically.
type DataSource interface {
	ListWorkouts(ctx context.Context, clientID string) ([]models.LoggedWorkout, error)
	GetWorkout(ctx context.Context, id uuid.UUID) (*models.LoggedWorkout, error)
	GetSnapshot(ctx context.Context, clientID, programID string) (*models.InProgressWorkout, error)
}

// Compile-time checks: both storage backends satisfy DataSource.
var (
	_ DataSource = (*storage.SQLite)(nil)
	_ DataSource = (*storage.Postgres)(nil)
)
