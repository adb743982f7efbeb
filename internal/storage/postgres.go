package storage

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/lostmarbl3/f-ai/internal/models"
)

// Postgres is the hosted backend, backed by a pgx connection pool.
type Postgres struct {
	pool *pgxpool.Pool
}

var _ Store = (*Postgres)(nil)

// OpenPostgres connects to the database at dsn and verifies the
// connection. Run migrations before first use.
func OpenPostgres(ctx context.Context, dsn string) (*Postgres, error) {
	pool, err := pgxpool.New(ctx, dsn)
	if err != nil {
		return nil, fmt.Errorf("creating connection pool: %w", err)
	}
	if err := pool.Ping(ctx); err != nil {
		pool.Close()
		return nil, fmt.Errorf("pinging database: %w", err)
	}
	return &Postgres{pool: pool}, nil
}

// Close releases the connection pool.
func (p *Postgres) Close() error {
	p.pool.Close()
	return nil
}

// parseStamp accepts the RFC 3339 timestamps the session layer writes.
// A blank or malformed stamp falls back to now so a row is never lost
// over a bad date.
func parseStamp(s string) time.Time {
	t, err := time.Parse(time.RFC3339, s)
	if err != nil {
		return time.Now().UTC()
	}
	return t
}

func (p *Postgres) SaveSnapshot(ctx context.Context, snap models.InProgressWorkout) error {
	doc, err := json.Marshal(snap)
	if err != nil {
		return fmt.Errorf("encoding snapshot: %w", err)
	}
	_, err = p.pool.Exec(ctx,
		`INSERT INTO in_progress_workouts (client_id, program_id, doc, last_updated)
		 VALUES ($1, $2, $3, $4)
		 ON CONFLICT (client_id, program_id)
		 DO UPDATE SET doc = EXCLUDED.doc, last_updated = EXCLUDED.last_updated`,
		snap.ClientID, snap.ProgramID, doc, parseStamp(snap.LastUpdated))
	if err != nil {
		return fmt.Errorf("saving snapshot: %w", err)
	}
	return nil
}

func (p *Postgres) GetSnapshot(ctx context.Context, clientID, programID string) (*models.InProgressWorkout, error) {
	var doc []byte
	err := p.pool.QueryRow(ctx,
		`SELECT doc FROM in_progress_workouts WHERE client_id = $1 AND program_id = $2`,
		clientID, programID).Scan(&doc)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("loading snapshot: %w", err)
	}

	var snap models.InProgressWorkout
	if err := json.Unmarshal(doc, &snap); err != nil {
		return nil, fmt.Errorf("decoding snapshot: %w", err)
	}
	return &snap, nil
}

func (p *Postgres) DeleteSnapshot(ctx context.Context, clientID, programID string) error {
	_, err := p.pool.Exec(ctx,
		`DELETE FROM in_progress_workouts WHERE client_id = $1 AND program_id = $2`,
		clientID, programID)
	if err != nil {
		return fmt.Errorf("deleting snapshot: %w", err)
	}
	return nil
}

func (p *Postgres) AppendWorkout(ctx context.Context, w models.LoggedWorkout) error {
	doc, err := json.Marshal(w)
	if err != nil {
		return fmt.Errorf("encoding workout: %w", err)
	}
	_, err = p.pool.Exec(ctx,
		`INSERT INTO logged_workouts (id, client_id, program_id, date, total_volume, doc)
		 VALUES ($1, $2, $3, $4, $5, $6)`,
		w.ID, w.ClientID, w.ProgramID, parseStamp(w.Date), w.TotalVolume, doc)
	if err != nil {
		return fmt.Errorf("appending workout: %w", err)
	}
	return nil
}

func (p *Postgres) ListWorkouts(ctx context.Context, clientID string) ([]models.LoggedWorkout, error) {
	query := `SELECT doc FROM logged_workouts ORDER BY date DESC`
	args := []any{}
	if clientID != "" {
		query = `SELECT doc FROM logged_workouts WHERE client_id = $1 ORDER BY date DESC`
		args = append(args, clientID)
	}

	rows, err := p.pool.Query(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("querying workouts: %w", err)
	}
	defer rows.Close()

	var result []models.LoggedWorkout
	for rows.Next() {
		var doc []byte
		if err := rows.Scan(&doc); err != nil {
			return nil, fmt.Errorf("scanning workout: %w", err)
		}
		var w models.LoggedWorkout
		if err := json.Unmarshal(doc, &w); err != nil {
			return nil, fmt.Errorf("decoding workout: %w", err)
		}
		result = append(result, w)
	}
	return result, rows.Err()
}

func (p *Postgres) GetWorkout(ctx context.Context, id uuid.UUID) (*models.LoggedWorkout, error) {
	var doc []byte
	err := p.pool.QueryRow(ctx,
		`SELECT doc FROM logged_workouts WHERE id = $1`, id).Scan(&doc)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("loading workout: %w", err)
	}

	var w models.LoggedWorkout
	if err := json.Unmarshal(doc, &w); err != nil {
		return nil, fmt.Errorf("decoding workout: %w", err)
	}
	return &w, nil
}

func (p *Postgres) UpdateWorkoutFeeling(ctx context.Context, id uuid.UUID, feeling models.Feeling) error {
	tag, err := p.pool.Exec(ctx,
		`UPDATE logged_workouts
		 SET doc = jsonb_set(doc, '{feeling}', to_jsonb($1::text))
		 WHERE id = $2`,
		string(feeling), id)
	if err != nil {
		return fmt.Errorf("updating workout feeling: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return ErrNotFound
	}
	return nil
}

func (p *Postgres) SaveProgram(ctx context.Context, prog models.Program) error {
	doc, err := json.Marshal(prog)
	if err != nil {
		return fmt.Errorf("encoding program: %w", err)
	}
	_, err = p.pool.Exec(ctx,
		`INSERT INTO programs (id, owner_id, doc) VALUES ($1, $2, $3)
		 ON CONFLICT (id) DO UPDATE SET owner_id = EXCLUDED.owner_id, doc = EXCLUDED.doc`,
		prog.ID, prog.OwnerID, doc)
	if err != nil {
		return fmt.Errorf("saving program: %w", err)
	}
	return nil
}

func (p *Postgres) GetProgram(ctx context.Context, id string) (*models.Program, error) {
	var doc []byte
	err := p.pool.QueryRow(ctx, `SELECT doc FROM programs WHERE id = $1`, id).Scan(&doc)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("loading program: %w", err)
	}

	var prog models.Program
	if err := json.Unmarshal(doc, &prog); err != nil {
		return nil, fmt.Errorf("decoding program: %w", err)
	}
	return &prog, nil
}

func (p *Postgres) ListPrograms(ctx context.Context) ([]models.Program, error) {
	rows, err := p.pool.Query(ctx, `SELECT doc FROM programs ORDER BY id`)
	if err != nil {
		return nil, fmt.Errorf("querying programs: %w", err)
	}
	defer rows.Close()

	var result []models.Program
	for rows.Next() {
		var doc []byte
		if err := rows.Scan(&doc); err != nil {
			return nil, fmt.Errorf("scanning program: %w", err)
		}
		var prog models.Program
		if err := json.Unmarshal(doc, &prog); err != nil {
			return nil, fmt.Errorf("decoding program: %w", err)
		}
		result = append(result, prog)
	}
	return result, rows.Err()
}

func (p *Postgres) DeleteProgram(ctx context.Context, id string) error {
	_, err := p.pool.Exec(ctx, `DELETE FROM programs WHERE id = $1`, id)
	if err != nil {
		return fmt.Errorf("deleting program: %w", err)
	}
	return nil
}

func (p *Postgres) SaveClient(ctx context.Context, c models.Client) error {
	doc, err := json.Marshal(c)
	if err != nil {
		return fmt.Errorf("encoding client: %w", err)
	}
	_, err = p.pool.Exec(ctx,
		`INSERT INTO clients (id, doc) VALUES ($1, $2)
		 ON CONFLICT (id) DO UPDATE SET doc = EXCLUDED.doc`,
		c.ID, doc)
	if err != nil {
		return fmt.Errorf("saving client: %w", err)
	}
	return nil
}

func (p *Postgres) GetClient(ctx context.Context, id string) (*models.Client, error) {
	var doc []byte
	err := p.pool.QueryRow(ctx, `SELECT doc FROM clients WHERE id = $1`, id).Scan(&doc)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("loading client: %w", err)
	}

	var c models.Client
	if err := json.Unmarshal(doc, &c); err != nil {
		return nil, fmt.Errorf("decoding client: %w", err)
	}
	return &c, nil
}

func (p *Postgres) ListClients(ctx context.Context) ([]models.Client, error) {
	rows, err := p.pool.Query(ctx, `SELECT doc FROM clients ORDER BY id`)
	if err != nil {
		return nil, fmt.Errorf("querying clients: %w", err)
	}
	defer rows.Close()

	var result []models.Client
	for rows.Next() {
		var doc []byte
		if err := rows.Scan(&doc); err != nil {
			return nil, fmt.Errorf("scanning client: %w", err)
		}
		var c models.Client
		if err := json.Unmarshal(doc, &c); err != nil {
			return nil, fmt.Errorf("decoding client: %w", err)
		}
		result = append(result, c)
	}
	return result, rows.Err()
}
