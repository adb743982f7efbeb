package session

import (
	"context"
	"errors"
	"testing"

	"github.com/google/uuid"
	"github.com/lostmarbl3/f-ai/internal/models"
)

func newTestManager(store Store) *Manager {
	return NewManager(ManagerOptions{Store: store})
}

// TestStartFreshWhenNoSnapshot verifies a clean start builds fresh state
// and registers the handle.
func TestStartFreshWhenNoSnapshot(t *testing.T) {
	m := newTestManager(newFakeStore())
	s, err := m.Start(context.Background(), testProgram(), testClient(), StartOptions{})
	if err != nil {
		t.Fatalf("start: %v", err)
	}
	if _, err := m.Get(s.ID()); err != nil {
		t.Errorf("registered session not found: %v", err)
	}
}

// TestStartGateRequiresChoice verifies starting with an existing snapshot
// and no resume/discard choice returns ErrSnapshotExists.
func TestStartGateRequiresChoice(t *testing.T) {
	store := newFakeStore()
	ctx := context.Background()
	m := newTestManager(store)

	s, err := m.Start(ctx, testProgram(), testClient(), StartOptions{})
	if err != nil {
		t.Fatalf("start: %v", err)
	}
	s.Apply(ctx, SetReps{Section: models.SectionMain, Exercise: 0, Set: 0, Value: "5"})
	if err := m.Abandon(s.ID()); err != nil {
		t.Fatalf("abandon: %v", err)
	}

	if _, err := m.Start(ctx, testProgram(), testClient(), StartOptions{}); !errors.Is(err, ErrSnapshotExists) {
		t.Errorf("start with snapshot = %v, want ErrSnapshotExists", err)
	}
}

// TestStartResume verifies the resume choice rehydrates logged values.
func TestStartResume(t *testing.T) {
	store := newFakeStore()
	ctx := context.Background()
	m := newTestManager(store)

	s, _ := m.Start(ctx, testProgram(), testClient(), StartOptions{})
	s.Apply(ctx, SetWeight{Section: models.SectionMain, Exercise: 0, Set: 0, Value: "72.5", Unit: models.UnitKg})
	if err := m.Abandon(s.ID()); err != nil {
		t.Fatalf("abandon: %v", err)
	}

	resumed, err := m.Start(ctx, testProgram(), testClient(), StartOptions{Resume: true})
	if err != nil {
		t.Fatalf("resume start: %v", err)
	}
	if got := resumed.Snapshot().LoggedExercises[1].Sets[0].Weight; got != 72.5 {
		t.Errorf("resumed weight = %v, want 72.5", got)
	}
}

// TestStartDiscard verifies the discard choice deletes the snapshot and
// builds fresh state.
func TestStartDiscard(t *testing.T) {
	store := newFakeStore()
	ctx := context.Background()
	m := newTestManager(store)

	s, _ := m.Start(ctx, testProgram(), testClient(), StartOptions{})
	s.Apply(ctx, SetWeight{Section: models.SectionMain, Exercise: 0, Set: 0, Value: "72.5", Unit: models.UnitKg})
	if err := m.Abandon(s.ID()); err != nil {
		t.Fatalf("abandon: %v", err)
	}

	fresh, err := m.Start(ctx, testProgram(), testClient(), StartOptions{Discard: true})
	if err != nil {
		t.Fatalf("discard start: %v", err)
	}
	if got := fresh.Snapshot().LoggedExercises[1].Sets[0].Weight; got != 0 {
		t.Errorf("weight after discard = %v, want 0", got)
	}
	if snap, _ := store.GetSnapshot(ctx, "client-1", "prog-1"); snap != nil {
		t.Error("snapshot survived discard")
	}
}

// TestOneActiveSessionPerPair verifies the manager refuses a second live
// session for the same (client, program) pair.
func TestOneActiveSessionPerPair(t *testing.T) {
	m := newTestManager(newFakeStore())
	ctx := context.Background()

	if _, err := m.Start(ctx, testProgram(), testClient(), StartOptions{}); err != nil {
		t.Fatalf("start: %v", err)
	}
	if _, err := m.Start(ctx, testProgram(), testClient(), StartOptions{}); !errors.Is(err, ErrActiveSession) {
		t.Errorf("second start = %v, want ErrActiveSession", err)
	}

	// A different program for the same client is fine.
	other := testProgram()
	other.ID = "prog-2"
	if _, err := m.Start(ctx, other, testClient(), StartOptions{}); err != nil {
		t.Errorf("start for second program: %v", err)
	}
}

// TestFinishRetiresHandle verifies finishing removes the session and
// frees the pair for a new start.
func TestFinishRetiresHandle(t *testing.T) {
	store := newFakeStore()
	ctx := context.Background()
	m := newTestManager(store)

	s, _ := m.Start(ctx, testProgram(), testClient(), StartOptions{})
	if _, err := m.Finish(ctx, s.ID()); err != nil {
		t.Fatalf("finish: %v", err)
	}
	if _, err := m.Get(s.ID()); !errors.Is(err, ErrNotFound) {
		t.Errorf("get after finish = %v, want ErrNotFound", err)
	}
	if _, err := m.Start(ctx, testProgram(), testClient(), StartOptions{}); err != nil {
		t.Errorf("start after finish: %v", err)
	}
}

// TestFinishUnknownHandle verifies ErrNotFound for unknown session ids.
func TestFinishUnknownHandle(t *testing.T) {
	m := newTestManager(newFakeStore())
	if _, err := m.Finish(context.Background(), uuid.New()); !errors.Is(err, ErrNotFound) {
		t.Errorf("finish unknown = %v, want ErrNotFound", err)
	}
}

// TestAbandonKeepsSnapshot verifies abandoning a session leaves the
// in-progress snapshot for a later resume.
func TestAbandonKeepsSnapshot(t *testing.T) {
	store := newFakeStore()
	ctx := context.Background()
	m := newTestManager(store)

	s, _ := m.Start(ctx, testProgram(), testClient(), StartOptions{})
	s.Apply(ctx, SetReps{Section: models.SectionMain, Exercise: 0, Set: 0, Value: "5"})
	if err := m.Abandon(s.ID()); err != nil {
		t.Fatalf("abandon: %v", err)
	}

	snap, err := m.InProgress(ctx, "client-1", "prog-1")
	if err != nil || snap == nil {
		t.Fatalf("snapshot gone after abandon: %v", err)
	}
	if snap.LoggedExercises[1].Sets[0].Reps != 5 {
		t.Errorf("snapshot reps = %d, want 5", snap.LoggedExercises[1].Sets[0].Reps)
	}
}
