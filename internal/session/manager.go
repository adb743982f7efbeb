package session

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/lostmarbl3/f-ai/internal/models"
)

var (
	// ErrSnapshotExists is returned when starting a session while a prior
	// in-progress snapshot exists and the caller chose neither resume nor
	// discard. The caller is expected to offer the choice and retry.
	ErrSnapshotExists = errors.New("in-progress workout exists for this client and program")

	// ErrActiveSession is returned when a live session already exists for
	// the (client, program) pair.
	ErrActiveSession = errors.New("session already active for this client and program")

	// ErrNotFound is returned for an unknown session handle.
	ErrNotFound = errors.New("session not found")
)

type pairKey struct {
	clientID  string
	programID string
}

// Manager owns the live sessions of the process, at most one per
// (client, program) pair, and gates session start on the resume-or-discard
// choice when a prior snapshot exists.
type Manager struct {
	store Store
	log   *slog.Logger

	mu       sync.Mutex
	sessions map[uuid.UUID]*Session
	active   map[pairKey]uuid.UUID

	volumePolicy VolumePolicy
	defaultRest  int
	now          func() time.Time
}

// ManagerOptions configures a Manager.
type ManagerOptions struct {
	Store              Store
	Log                *slog.Logger
	VolumePolicy       VolumePolicy
	DefaultRestSeconds int
	Now                func() time.Time
}

// NewManager creates a session manager backed by the given store.
func NewManager(opts ManagerOptions) *Manager {
	if opts.Log == nil {
		opts.Log = slog.Default()
	}
	return &Manager{
		store:        opts.Store,
		log:          opts.Log,
		sessions:     make(map[uuid.UUID]*Session),
		active:       make(map[pairKey]uuid.UUID),
		volumePolicy: opts.VolumePolicy,
		defaultRest:  opts.DefaultRestSeconds,
		now:          opts.Now,
	}
}

// StartOptions controls snapshot handling at session start.
type StartOptions struct {
	// Resume rehydrates from an existing snapshot.
	Resume bool
	// Discard deletes an existing snapshot and starts fresh.
	Discard bool
}

// Start creates a session for the program and client. When a prior
// snapshot exists the caller must have chosen Resume or Discard;
// otherwise ErrSnapshotExists is returned along with no session.
func (m *Manager) Start(ctx context.Context, program models.Program, client models.Client, opt StartOptions) (*Session, error) {
	key := pairKey{clientID: client.ID, programID: program.ID}

	m.mu.Lock()
	defer m.mu.Unlock()

	if _, ok := m.active[key]; ok {
		return nil, ErrActiveSession
	}

	snap, err := m.store.GetSnapshot(ctx, client.ID, program.ID)
	if err != nil {
		return nil, fmt.Errorf("loading in-progress snapshot: %w", err)
	}
	if snap != nil {
		switch {
		case opt.Discard:
			if err := m.store.DeleteSnapshot(ctx, client.ID, program.ID); err != nil {
				return nil, fmt.Errorf("discarding in-progress snapshot: %w", err)
			}
			snap = nil
		case opt.Resume:
			// keep snap as initial state
		default:
			return nil, ErrSnapshotExists
		}
	}

	s := New(Options{
		Program:            program,
		Client:             client,
		Resume:             snap,
		Store:              m.store,
		Log:                m.log,
		Now:                m.now,
		VolumePolicy:       m.volumePolicy,
		DefaultRestSeconds: m.defaultRest,
	})
	m.sessions[s.ID()] = s
	m.active[key] = s.ID()

	m.log.Info("session started",
		"session_id", s.ID(),
		"client_id", client.ID,
		"program_id", program.ID,
		"resumed", snap != nil,
	)
	return s, nil
}

// Get returns the live session for a handle.
func (m *Manager) Get(id uuid.UUID) (*Session, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	s, ok := m.sessions[id]
	if !ok {
		return nil, ErrNotFound
	}
	return s, nil
}

// Finish finalizes a session and retires its handle. The handle survives
// a failed history write so the caller can retry.
func (m *Manager) Finish(ctx context.Context, id uuid.UUID) (models.LoggedWorkout, error) {
	s, err := m.Get(id)
	if err != nil {
		return models.LoggedWorkout{}, err
	}

	w, err := s.Finish(ctx)
	if err != nil {
		return models.LoggedWorkout{}, err
	}

	m.remove(s)
	m.log.Info("session finished",
		"session_id", id,
		"workout_id", w.ID,
		"duration_seconds", w.DurationSeconds,
		"total_volume_kg", w.TotalVolume,
	)
	return w, nil
}

// Abandon drops a live session handle without finalizing. The in-progress
// snapshot stays in storage for a later resume.
func (m *Manager) Abandon(id uuid.UUID) error {
	s, err := m.Get(id)
	if err != nil {
		return err
	}
	s.CancelRest()
	m.remove(s)
	m.log.Info("session abandoned", "session_id", id, "client_id", s.ClientID(), "program_id", s.ProgramID())
	return nil
}

// InProgress reports whether a resumable snapshot exists for the pair.
func (m *Manager) InProgress(ctx context.Context, clientID, programID string) (*models.InProgressWorkout, error) {
	return m.store.GetSnapshot(ctx, clientID, programID)
}

func (m *Manager) remove(s *Session) {
	m.mu.Lock()
	defer m.mu.Unlock()
	delete(m.sessions, s.ID())
	delete(m.active, pairKey{clientID: s.ClientID(), programID: s.ProgramID()})
}
