package mcp

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"testing"

	"github.com/google/uuid"
	"github.com/lostmarbl3/f-ai/internal/models"
	"github.com/mark3labs/mcp-go/mcp"
)

type fakeSource struct {
	workouts []models.LoggedWorkout
	snapshot *models.InProgressWorkout
	err      error
}

func (f *fakeSource) ListWorkouts(ctx context.Context, clientID string) ([]models.LoggedWorkout, error) {
	if f.err != nil {
		return nil, f.err
	}
	if clientID == "" {
		return f.workouts, nil
	}
	var out []models.LoggedWorkout
	for _, w := range f.workouts {
		if w.ClientID == clientID {
			out = append(out, w)
		}
	}
	return out, nil
}

func (f *fakeSource) GetWorkout(ctx context.Context, id uuid.UUID) (*models.LoggedWorkout, error) {
	for _, w := range f.workouts {
		if w.ID == id {
			return &w, nil
		}
	}
	return nil, errors.New("record not found")
}

func (f *fakeSource) GetSnapshot(ctx context.Context, clientID, programID string) (*models.InProgressWorkout, error) {
	return f.snapshot, f.err
}

func testHandlers(ds DataSource) *handlers {
	return &handlers{ds: ds, log: slog.New(slog.NewTextHandler(io.Discard, nil))}
}

func toolRequest(args map[string]any) mcp.CallToolRequest {
	req := mcp.CallToolRequest{}
	req.Params.Arguments = args
	return req
}

// TestGetWorkoutHistoryLimit verifies the history tool applies its limit
// and returns JSON content.
func TestGetWorkoutHistoryLimit(t *testing.T) {
	ds := &fakeSource{}
	for i := 0; i < 5; i++ {
		ds.workouts = append(ds.workouts, models.LoggedWorkout{ID: uuid.New(), ClientID: "client-1"})
	}
	h := testHandlers(ds)

	res, err := h.getWorkoutHistory(context.Background(), toolRequest(map[string]any{"limit": 2}))
	if err != nil {
		t.Fatalf("handler error = %v", err)
	}
	if res.IsError {
		t.Fatalf("tool result is error: %+v", res.Content)
	}
}

// TestGetWorkoutInvalidID verifies a malformed id is a tool error, not a
// transport error.
func TestGetWorkoutInvalidID(t *testing.T) {
	h := testHandlers(&fakeSource{})

	res, err := h.getWorkout(context.Background(), toolRequest(map[string]any{"id": "nope"}))
	if err != nil {
		t.Fatalf("handler error = %v", err)
	}
	if !res.IsError {
		t.Error("expected tool error for malformed id")
	}
}

// TestGetInProgressWorkoutAbsent verifies the no-snapshot case returns a
// text result instead of an error.
func TestGetInProgressWorkoutAbsent(t *testing.T) {
	h := testHandlers(&fakeSource{})

	res, err := h.getInProgressWorkout(context.Background(), toolRequest(map[string]any{
		"client_id": "client-1", "program_id": "prog-1",
	}))
	if err != nil {
		t.Fatalf("handler error = %v", err)
	}
	if res.IsError {
		t.Fatalf("tool result is error: %+v", res.Content)
	}
}

// TestGetInProgressWorkoutMissingParams verifies required-parameter
// enforcement.
func TestGetInProgressWorkoutMissingParams(t *testing.T) {
	h := testHandlers(&fakeSource{})

	res, err := h.getInProgressWorkout(context.Background(), toolRequest(map[string]any{"client_id": "client-1"}))
	if err != nil {
		t.Fatalf("handler error = %v", err)
	}
	if !res.IsError {
		t.Error("expected tool error when program_id is missing")
	}
}

// TestGetPersonalRecordsSourceError verifies data source failures map to
// tool errors.
func TestGetPersonalRecordsSourceError(t *testing.T) {
	h := testHandlers(&fakeSource{err: errors.New("db down")})

	res, err := h.getPersonalRecords(context.Background(), toolRequest(nil))
	if err != nil {
		t.Fatalf("handler error = %v", err)
	}
	if !res.IsError {
		t.Error("expected tool error when the data source fails")
	}
}
