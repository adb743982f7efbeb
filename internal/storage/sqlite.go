package storage

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"

	"github.com/google/uuid"
	"github.com/lostmarbl3/f-ai/internal/models"
	_ "modernc.org/sqlite"
)

// SQLite is the embedded local backend.
type SQLite struct {
	db *sql.DB
}

// Compile-time check: *SQLite satisfies Store.
var _ Store = (*SQLite)(nil)

// OpenSQLite opens (or creates) the SQLite database at path and applies
// the pragmas the service depends on. Run migrations before first use.
func OpenSQLite(path string) (*SQLite, error) {
	if dir := filepath.Dir(path); dir != "." {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return nil, fmt.Errorf("creating data dir %s: %w", dir, err)
		}
	}

	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, fmt.Errorf("opening sqlite db: %w", err)
	}

	for _, pragma := range []string{
		"PRAGMA journal_mode=WAL",
		"PRAGMA foreign_keys=ON",
		"PRAGMA busy_timeout=5000",
	} {
		if _, err := db.Exec(pragma); err != nil {
			db.Close()
			return nil, fmt.Errorf("applying %s: %w", pragma, err)
		}
	}

	return &SQLite{db: db}, nil
}

// Close closes the database.
func (s *SQLite) Close() error {
	return s.db.Close()
}

// SaveSnapshot upserts the in-progress snapshot for its (client, program)
// pair, replacing any prior one.
func (s *SQLite) SaveSnapshot(ctx context.Context, snap models.InProgressWorkout) error {
	doc, err := json.Marshal(snap)
	if err != nil {
		return fmt.Errorf("encoding snapshot: %w", err)
	}
	_, err = s.db.ExecContext(ctx,
		`INSERT INTO in_progress_workouts (client_id, program_id, doc, last_updated)
		 VALUES (?, ?, ?, ?)
		 ON CONFLICT(client_id, program_id)
		 DO UPDATE SET doc = excluded.doc, last_updated = excluded.last_updated`,
		snap.ClientID, snap.ProgramID, string(doc), snap.LastUpdated)
	if err != nil {
		return fmt.Errorf("saving snapshot: %w", err)
	}
	return nil
}

// GetSnapshot returns the snapshot for the pair, or (nil, nil) when none
// exists.
func (s *SQLite) GetSnapshot(ctx context.Context, clientID, programID string) (*models.InProgressWorkout, error) {
	var doc string
	err := s.db.QueryRowContext(ctx,
		`SELECT doc FROM in_progress_workouts WHERE client_id = ? AND program_id = ?`,
		clientID, programID).Scan(&doc)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("loading snapshot: %w", err)
	}

	var snap models.InProgressWorkout
	if err := json.Unmarshal([]byte(doc), &snap); err != nil {
		return nil, fmt.Errorf("decoding snapshot: %w", err)
	}
	return &snap, nil
}

// DeleteSnapshot removes the snapshot for the pair. Deleting a missing
// snapshot is not an error.
func (s *SQLite) DeleteSnapshot(ctx context.Context, clientID, programID string) error {
	_, err := s.db.ExecContext(ctx,
		`DELETE FROM in_progress_workouts WHERE client_id = ? AND program_id = ?`,
		clientID, programID)
	if err != nil {
		return fmt.Errorf("deleting snapshot: %w", err)
	}
	return nil
}

// AppendWorkout appends a finalized workout to the history.
func (s *SQLite) AppendWorkout(ctx context.Context, w models.LoggedWorkout) error {
	doc, err := json.Marshal(w)
	if err != nil {
		return fmt.Errorf("encoding workout: %w", err)
	}
	_, err = s.db.ExecContext(ctx,
		`INSERT INTO logged_workouts (id, client_id, program_id, date, total_volume, doc)
		 VALUES (?, ?, ?, ?, ?, ?)`,
		w.ID.String(), w.ClientID, w.ProgramID, w.Date, w.TotalVolume, string(doc))
	if err != nil {
		return fmt.Errorf("appending workout: %w", err)
	}
	return nil
}

// ListWorkouts returns a client's workout history, newest first. An empty
// clientID returns the full history.
func (s *SQLite) ListWorkouts(ctx context.Context, clientID string) ([]models.LoggedWorkout, error) {
	query := `SELECT doc FROM logged_workouts ORDER BY date DESC`
	args := []any{}
	if clientID != "" {
		query = `SELECT doc FROM logged_workouts WHERE client_id = ? ORDER BY date DESC`
		args = append(args, clientID)
	}

	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("querying workouts: %w", err)
	}
	defer rows.Close()

	var result []models.LoggedWorkout
	for rows.Next() {
		var doc string
		if err := rows.Scan(&doc); err != nil {
			return nil, fmt.Errorf("scanning workout: %w", err)
		}
		var w models.LoggedWorkout
		if err := json.Unmarshal([]byte(doc), &w); err != nil {
			return nil, fmt.Errorf("decoding workout: %w", err)
		}
		result = append(result, w)
	}
	return result, rows.Err()
}

// GetWorkout returns one finalized workout by id.
func (s *SQLite) GetWorkout(ctx context.Context, id uuid.UUID) (*models.LoggedWorkout, error) {
	var doc string
	err := s.db.QueryRowContext(ctx,
		`SELECT doc FROM logged_workouts WHERE id = ?`, id.String()).Scan(&doc)
	if err == sql.ErrNoRows {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("loading workout: %w", err)
	}

	var w models.LoggedWorkout
	if err := json.Unmarshal([]byte(doc), &w); err != nil {
		return nil, fmt.Errorf("decoding workout: %w", err)
	}
	return &w, nil
}

// UpdateWorkoutFeeling sets the post-hoc feeling on a finalized workout,
// the only mutation history records allow.
func (s *SQLite) UpdateWorkoutFeeling(ctx context.Context, id uuid.UUID, feeling models.Feeling) error {
	w, err := s.GetWorkout(ctx, id)
	if err != nil {
		return err
	}
	w.Feeling = feeling
	doc, err := json.Marshal(w)
	if err != nil {
		return fmt.Errorf("encoding workout: %w", err)
	}
	_, err = s.db.ExecContext(ctx,
		`UPDATE logged_workouts SET doc = ? WHERE id = ?`, string(doc), id.String())
	if err != nil {
		return fmt.Errorf("updating workout feeling: %w", err)
	}
	return nil
}

// SaveProgram upserts a program.
func (s *SQLite) SaveProgram(ctx context.Context, p models.Program) error {
	doc, err := json.Marshal(p)
	if err != nil {
		return fmt.Errorf("encoding program: %w", err)
	}
	_, err = s.db.ExecContext(ctx,
		`INSERT INTO programs (id, owner_id, doc) VALUES (?, ?, ?)
		 ON CONFLICT(id) DO UPDATE SET owner_id = excluded.owner_id, doc = excluded.doc`,
		p.ID, p.OwnerID, string(doc))
	if err != nil {
		return fmt.Errorf("saving program: %w", err)
	}
	return nil
}

// GetProgram returns a program by id.
func (s *SQLite) GetProgram(ctx context.Context, id string) (*models.Program, error) {
	var doc string
	err := s.db.QueryRowContext(ctx, `SELECT doc FROM programs WHERE id = ?`, id).Scan(&doc)
	if err == sql.ErrNoRows {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("loading program: %w", err)
	}

	var p models.Program
	if err := json.Unmarshal([]byte(doc), &p); err != nil {
		return nil, fmt.Errorf("decoding program: %w", err)
	}
	return &p, nil
}

// ListPrograms returns all programs ordered by id.
func (s *SQLite) ListPrograms(ctx context.Context) ([]models.Program, error) {
	rows, err := s.db.QueryContext(ctx, `SELECT doc FROM programs ORDER BY id`)
	if err != nil {
		return nil, fmt.Errorf("querying programs: %w", err)
	}
	defer rows.Close()

	var result []models.Program
	for rows.Next() {
		var doc string
		if err := rows.Scan(&doc); err != nil {
			return nil, fmt.Errorf("scanning program: %w", err)
		}
		var p models.Program
		if err := json.Unmarshal([]byte(doc), &p); err != nil {
			return nil, fmt.Errorf("decoding program: %w", err)
		}
		result = append(result, p)
	}
	return result, rows.Err()
}

// DeleteProgram removes a program.
func (s *SQLite) DeleteProgram(ctx context.Context, id string) error {
	_, err := s.db.ExecContext(ctx, `DELETE FROM programs WHERE id = ?`, id)
	if err != nil {
		return fmt.Errorf("deleting program: %w", err)
	}
	return nil
}

// SaveClient upserts a client.
func (s *SQLite) SaveClient(ctx context.Context, c models.Client) error {
	doc, err := json.Marshal(c)
	if err != nil {
		return fmt.Errorf("encoding client: %w", err)
	}
	_, err = s.db.ExecContext(ctx,
		`INSERT INTO clients (id, doc) VALUES (?, ?)
		 ON CONFLICT(id) DO UPDATE SET doc = excluded.doc`,
		c.ID, string(doc))
	if err != nil {
		return fmt.Errorf("saving client: %w", err)
	}
	return nil
}

// GetClient returns a client by id.
func (s *SQLite) GetClient(ctx context.Context, id string) (*models.Client, error) {
	var doc string
	err := s.db.QueryRowContext(ctx, `SELECT doc FROM clients WHERE id = ?`, id).Scan(&doc)
	if err == sql.ErrNoRows {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("loading client: %w", err)
	}

	var c models.Client
	if err := json.Unmarshal([]byte(doc), &c); err != nil {
		return nil, fmt.Errorf("decoding client: %w", err)
	}
	return &c, nil
}

// ListClients returns all clients ordered by id.
func (s *SQLite) ListClients(ctx context.Context) ([]models.Client, error) {
	rows, err := s.db.QueryContext(ctx, `SELECT doc FROM clients ORDER BY id`)
	if err != nil {
		return nil, fmt.Errorf("querying clients: %w", err)
	}
	defer rows.Close()

	var result []models.Client
	for rows.Next() {
		var doc string
		if err := rows.Scan(&doc); err != nil {
			return nil, fmt.Errorf("scanning client: %w", err)
		}
		var c models.Client
		if err := json.Unmarshal([]byte(doc), &c); err != nil {
			return nil, fmt.Errorf("decoding client: %w", err)
		}
		result = append(result, c)
	}
	return result, rows.Err()
}
