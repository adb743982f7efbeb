package storage

import (
	"context"
	"errors"
	"path/filepath"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/lostmarbl3/f-ai/internal/models"
)

func openTestStore(t *testing.T) *SQLite {
	t.Helper()
	path := filepath.Join(t.TempDir(), "fittrack.db")
	if err := RunMigrations("sqlite", "sqlite://"+path); err != nil {
		t.Fatalf("RunMigrations() error = %v", err)
	}
	s, err := OpenSQLite(path)
	if err != nil {
		t.Fatalf("OpenSQLite() error = %v", err)
	}
	t.Cleanup(func() { s.Close() })
	return s
}

func sampleWorkout(clientID string, date time.Time) models.LoggedWorkout {
	return models.LoggedWorkout{
		ID:          uuid.New(),
		ProgramID:   "prog-1",
		ProgramName: "Push Day",
		ClientID:    clientID,
		Date:        date.UTC().Format(time.RFC3339),
		LoggedExercises: []models.LoggedExercise{
			{
				ExerciseID:   "ex-1",
				ExerciseName: "Bench Press",
				Sets: []models.LoggedSet{
					{SetNumber: 1, Weight: 60, Reps: 8, Completed: true},
					{SetNumber: 2, Weight: 62.5, Reps: 6, Completed: true},
				},
			},
		},
		DurationSeconds: 1800,
		TotalVolume:     855,
		Feeling:         models.FeelingNone,
		PRsAchieved:     []string{},
	}
}

// TestSnapshotRoundTrip verifies that a saved snapshot comes back intact
// and that a missing snapshot is (nil, nil) rather than an error.
func TestSnapshotRoundTrip(t *testing.T) {
	s := openTestStore(t)
	ctx := context.Background()

	got, err := s.GetSnapshot(ctx, "client-1", "prog-1")
	if err != nil {
		t.Fatalf("GetSnapshot() error = %v", err)
	}
	if got != nil {
		t.Fatalf("GetSnapshot() on empty store = %+v, want nil", got)
	}

	snap := models.InProgressWorkout{
		ClientID:  "client-1",
		ProgramID: "prog-1",
		LoggedExercises: []models.LoggedExercise{
			{ExerciseID: "ex-1", ExerciseName: "Bench Press", Sets: []models.LoggedSet{
				{SetNumber: 1, Weight: 45.36, Reps: 8, Completed: true},
				{SetNumber: 2},
			}},
		},
		LastUpdated: "2025-03-10T17:30:00Z",
	}
	if err := s.SaveSnapshot(ctx, snap); err != nil {
		t.Fatalf("SaveSnapshot() error = %v", err)
	}

	got, err = s.GetSnapshot(ctx, "client-1", "prog-1")
	if err != nil {
		t.Fatalf("GetSnapshot() error = %v", err)
	}
	if got == nil {
		t.Fatal("GetSnapshot() = nil, want snapshot")
	}
	if got.LastUpdated != snap.LastUpdated {
		t.Errorf("LastUpdated = %q, want %q", got.LastUpdated, snap.LastUpdated)
	}
	if len(got.LoggedExercises) != 1 || len(got.LoggedExercises[0].Sets) != 2 {
		t.Fatalf("snapshot shape mismatch: %+v", got.LoggedExercises)
	}
	if got.LoggedExercises[0].Sets[0].Weight != 45.36 {
		t.Errorf("set weight = %v, want 45.36", got.LoggedExercises[0].Sets[0].Weight)
	}
}

// TestSnapshotUpsert verifies that saving a second snapshot for the same
// (client, program) pair replaces the first one rather than erroring.
func TestSnapshotUpsert(t *testing.T) {
	s := openTestStore(t)
	ctx := context.Background()

	snap := models.InProgressWorkout{ClientID: "c", ProgramID: "p", LastUpdated: "2025-03-10T17:00:00Z"}
	if err := s.SaveSnapshot(ctx, snap); err != nil {
		t.Fatalf("SaveSnapshot() error = %v", err)
	}

	snap.LastUpdated = "2025-03-10T17:05:00Z"
	if err := s.SaveSnapshot(ctx, snap); err != nil {
		t.Fatalf("SaveSnapshot() second save error = %v", err)
	}

	got, err := s.GetSnapshot(ctx, "c", "p")
	if err != nil {
		t.Fatalf("GetSnapshot() error = %v", err)
	}
	if got.LastUpdated != "2025-03-10T17:05:00Z" {
		t.Errorf("LastUpdated = %q, want the newer stamp", got.LastUpdated)
	}
}

// TestDeleteSnapshotIdempotent verifies that deleting a snapshot that does
// not exist succeeds, so repeated discards are safe.
func TestDeleteSnapshotIdempotent(t *testing.T) {
	s := openTestStore(t)
	ctx := context.Background()

	if err := s.DeleteSnapshot(ctx, "c", "p"); err != nil {
		t.Fatalf("DeleteSnapshot() on missing row error = %v", err)
	}

	snap := models.InProgressWorkout{ClientID: "c", ProgramID: "p", LastUpdated: "2025-03-10T17:00:00Z"}
	if err := s.SaveSnapshot(ctx, snap); err != nil {
		t.Fatalf("SaveSnapshot() error = %v", err)
	}
	if err := s.DeleteSnapshot(ctx, "c", "p"); err != nil {
		t.Fatalf("DeleteSnapshot() error = %v", err)
	}
	if err := s.DeleteSnapshot(ctx, "c", "p"); err != nil {
		t.Fatalf("DeleteSnapshot() repeat error = %v", err)
	}

	got, err := s.GetSnapshot(ctx, "c", "p")
	if err != nil {
		t.Fatalf("GetSnapshot() error = %v", err)
	}
	if got != nil {
		t.Errorf("GetSnapshot() after delete = %+v, want nil", got)
	}
}

// TestWorkoutHistory verifies append, newest-first listing scoped by
// client, and lookup by id.
func TestWorkoutHistory(t *testing.T) {
	s := openTestStore(t)
	ctx := context.Background()

	base := time.Date(2025, 3, 10, 17, 0, 0, 0, time.UTC)
	older := sampleWorkout("client-1", base)
	newer := sampleWorkout("client-1", base.Add(48*time.Hour))
	other := sampleWorkout("client-2", base.Add(24*time.Hour))

	for _, w := range []models.LoggedWorkout{older, newer, other} {
		if err := s.AppendWorkout(ctx, w); err != nil {
			t.Fatalf("AppendWorkout() error = %v", err)
		}
	}

	list, err := s.ListWorkouts(ctx, "client-1")
	if err != nil {
		t.Fatalf("ListWorkouts() error = %v", err)
	}
	if len(list) != 2 {
		t.Fatalf("ListWorkouts() returned %d workouts, want 2", len(list))
	}
	if list[0].ID != newer.ID || list[1].ID != older.ID {
		t.Errorf("ListWorkouts() order = [%s %s], want newest first", list[0].ID, list[1].ID)
	}

	all, err := s.ListWorkouts(ctx, "")
	if err != nil {
		t.Fatalf("ListWorkouts(all) error = %v", err)
	}
	if len(all) != 3 {
		t.Errorf("ListWorkouts(all) returned %d workouts, want 3", len(all))
	}

	got, err := s.GetWorkout(ctx, older.ID)
	if err != nil {
		t.Fatalf("GetWorkout() error = %v", err)
	}
	if got.TotalVolume != older.TotalVolume {
		t.Errorf("TotalVolume = %v, want %v", got.TotalVolume, older.TotalVolume)
	}

	if _, err := s.GetWorkout(ctx, uuid.New()); !errors.Is(err, ErrNotFound) {
		t.Errorf("GetWorkout(unknown) error = %v, want ErrNotFound", err)
	}
}

// TestUpdateWorkoutFeeling verifies the single allowed history mutation
// and that unknown ids report ErrNotFound.
func TestUpdateWorkoutFeeling(t *testing.T) {
	s := openTestStore(t)
	ctx := context.Background()

	w := sampleWorkout("client-1", time.Date(2025, 3, 10, 17, 0, 0, 0, time.UTC))
	if err := s.AppendWorkout(ctx, w); err != nil {
		t.Fatalf("AppendWorkout() error = %v", err)
	}

	if err := s.UpdateWorkoutFeeling(ctx, w.ID, models.FeelingGreat); err != nil {
		t.Fatalf("UpdateWorkoutFeeling() error = %v", err)
	}

	got, err := s.GetWorkout(ctx, w.ID)
	if err != nil {
		t.Fatalf("GetWorkout() error = %v", err)
	}
	if got.Feeling != models.FeelingGreat {
		t.Errorf("Feeling = %q, want %q", got.Feeling, models.FeelingGreat)
	}
	if got.TotalVolume != w.TotalVolume {
		t.Errorf("TotalVolume changed to %v during feeling update", got.TotalVolume)
	}

	if err := s.UpdateWorkoutFeeling(ctx, uuid.New(), models.FeelingOkay); !errors.Is(err, ErrNotFound) {
		t.Errorf("UpdateWorkoutFeeling(unknown) error = %v, want ErrNotFound", err)
	}
}

// TestProgramCatalog verifies program upsert, listing, and deletion.
func TestProgramCatalog(t *testing.T) {
	s := openTestStore(t)
	ctx := context.Background()

	p := models.Program{
		ID:   "prog-1",
		Name: "Push Day",
		Exercises: []models.Exercise{
			{ID: "ex-1", Name: "Bench Press", Sets: 3, Reps: "8-12", Rest: "90s"},
		},
	}
	if err := s.SaveProgram(ctx, p); err != nil {
		t.Fatalf("SaveProgram() error = %v", err)
	}

	p.Name = "Push Day v2"
	if err := s.SaveProgram(ctx, p); err != nil {
		t.Fatalf("SaveProgram() upsert error = %v", err)
	}

	got, err := s.GetProgram(ctx, "prog-1")
	if err != nil {
		t.Fatalf("GetProgram() error = %v", err)
	}
	if got.Name != "Push Day v2" {
		t.Errorf("Name = %q, want upserted name", got.Name)
	}
	if len(got.Exercises) != 1 || got.Exercises[0].Rest != "90s" {
		t.Errorf("Exercises = %+v, want prescription intact", got.Exercises)
	}

	list, err := s.ListPrograms(ctx)
	if err != nil {
		t.Fatalf("ListPrograms() error = %v", err)
	}
	if len(list) != 1 {
		t.Fatalf("ListPrograms() returned %d programs, want 1", len(list))
	}

	if err := s.DeleteProgram(ctx, "prog-1"); err != nil {
		t.Fatalf("DeleteProgram() error = %v", err)
	}
	if _, err := s.GetProgram(ctx, "prog-1"); !errors.Is(err, ErrNotFound) {
		t.Errorf("GetProgram(deleted) error = %v, want ErrNotFound", err)
	}
}

// TestClientRoster verifies client upsert and listing.
func TestClientRoster(t *testing.T) {
	s := openTestStore(t)
	ctx := context.Background()

	c := models.Client{ID: "client-1", Name: "Alex", AssignedProgramIDs: []string{"prog-1"}, Status: "active"}
	if err := s.SaveClient(ctx, c); err != nil {
		t.Fatalf("SaveClient() error = %v", err)
	}

	got, err := s.GetClient(ctx, "client-1")
	if err != nil {
		t.Fatalf("GetClient() error = %v", err)
	}
	if got.Name != "Alex" || len(got.AssignedProgramIDs) != 1 {
		t.Errorf("GetClient() = %+v, want saved client", got)
	}

	if _, err := s.GetClient(ctx, "nobody"); !errors.Is(err, ErrNotFound) {
		t.Errorf("GetClient(unknown) error = %v, want ErrNotFound", err)
	}

	list, err := s.ListClients(ctx)
	if err != nil {
		t.Fatalf("ListClients() error = %v", err)
	}
	if len(list) != 1 {
		t.Errorf("ListClients() returned %d clients, want 1", len(list))
	}
}

// TestMigrationsIdempotent verifies that running migrations twice against
// the same database is a no-op, not an error.
func TestMigrationsIdempotent(t *testing.T) {
	path := filepath.Join(t.TempDir(), "fittrack.db")
	dsn := "sqlite://" + path
	if err := RunMigrations("sqlite", dsn); err != nil {
		t.Fatalf("RunMigrations() first run error = %v", err)
	}
	if err := RunMigrations("sqlite", dsn); err != nil {
		t.Fatalf("RunMigrations() second run error = %v", err)
	}
}
