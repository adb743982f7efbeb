// Package session implements the workout session tracker: the mutable
// per-set log of a workout in progress, its rest timer, the auto-save
// bridge to durable storage, and finalization into an immutable
// LoggedWorkout record.
package session

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"math"
	"strconv"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/lostmarbl3/f-ai/internal/models"
	"github.com/lostmarbl3/f-ai/internal/units"
)

// SnapshotStore persists resumable in-progress snapshots keyed by
// (clientID, programID). GetSnapshot returns (nil, nil) when absent;
// DeleteSnapshot is idempotent.
type SnapshotStore interface {
	SaveSnapshot(ctx context.Context, snap models.InProgressWorkout) error
	GetSnapshot(ctx context.Context, clientID, programID string) (*models.InProgressWorkout, error)
	DeleteSnapshot(ctx context.Context, clientID, programID string) error
}

// HistoryStore appends finalized workouts to the workout history.
type HistoryStore interface {
	AppendWorkout(ctx context.Context, w models.LoggedWorkout) error
}

// Store is the durable storage the session tracker depends on.
type Store interface {
	SnapshotStore
	HistoryStore
}

// VolumePolicy selects which sets count toward total volume.
type VolumePolicy int

const (
	// VolumeAllSets sums weight*reps over every set present at
	// finalization, completed or not. This is the default.
	VolumeAllSets VolumePolicy = iota
	// VolumeCompletedOnly sums only sets marked complete.
	VolumeCompletedOnly
)

// ErrFinished is returned when operating on a session that has already
// been finalized.
var ErrFinished = errors.New("session already finished")

// Options configures a new Session. Store and Program are required;
// everything else has working defaults.
type Options struct {
	Program models.Program
	Client  models.Client

	// Resume, when non-nil, rehydrates the session from a prior
	// in-progress snapshot instead of building fresh state.
	Resume *models.InProgressWorkout

	Store        Store
	Log          *slog.Logger
	Now          func() time.Time
	VolumePolicy VolumePolicy

	// DefaultRestSeconds is used when an exercise's rest field fails to
	// parse. Zero means 60.
	DefaultRestSeconds int
}

// Session holds the mutable log for one active workout. All state is
// owned by the session and guarded by one mutex; the only concurrent
// actor is the rest timer's once-per-second tick.
type Session struct {
	id        uuid.UUID
	program   models.Program
	clientID  string
	startTime time.Time

	mu        sync.Mutex
	exercises []models.LoggedExercise
	cardio    []models.LoggedCardio
	finished  bool

	timer       *RestTimer
	store       Store
	log         *slog.Logger
	now         func() time.Time
	volume      VolumePolicy
	defaultRest int
}

// New creates a session for the given program and client. With a resume
// snapshot the prior logs become the initial state; otherwise every
// program exercise maps to zeroed sets and every cardio activity to an
// empty log.
func New(opts Options) *Session {
	if opts.Now == nil {
		opts.Now = time.Now
	}
	if opts.Log == nil {
		opts.Log = slog.Default()
	}
	if opts.DefaultRestSeconds <= 0 {
		opts.DefaultRestSeconds = 60
	}

	s := &Session{
		id:          uuid.New(),
		program:     opts.Program,
		clientID:    opts.Client.ID,
		timer:       NewRestTimer(),
		store:       opts.Store,
		log:         opts.Log,
		now:         opts.Now,
		volume:      opts.VolumePolicy,
		defaultRest: opts.DefaultRestSeconds,
	}
	s.startTime = s.now()

	if opts.Resume != nil {
		s.exercises = copyExercises(opts.Resume.LoggedExercises)
		s.cardio = copyCardio(opts.Resume.LoggedCardio)
		return s
	}

	for _, section := range []models.Section{models.SectionWarmup, models.SectionMain, models.SectionCooldown} {
		for _, ex := range s.program.SectionExercises(section) {
			sets := make([]models.LoggedSet, ex.Sets)
			for i := range sets {
				sets[i] = models.LoggedSet{SetNumber: i + 1}
			}
			s.exercises = append(s.exercises, models.LoggedExercise{
				ExerciseID:   ex.ID,
				ExerciseName: ex.Name,
				Sets:         sets,
			})
		}
	}
	for _, c := range s.program.Cardio {
		unit := c.DistanceUnit
		if unit == "" {
			unit = models.DistMi
		}
		s.cardio = append(s.cardio, models.LoggedCardio{
			CardioID:     c.ID,
			Activity:     c.Activity,
			GoalType:     c.GoalType,
			GoalValue:    c.GoalValue,
			DistanceUnit: unit,
		})
	}
	return s
}

// ID returns the session handle identifier.
func (s *Session) ID() uuid.UUID { return s.id }

// ClientID returns the client the session belongs to.
func (s *Session) ClientID() string { return s.clientID }

// ProgramID returns the program being performed.
func (s *Session) ProgramID() string { return s.program.ID }

// Apply executes one mutation against the session log. Applied mutations
// trigger a best-effort auto-save of the full snapshot; mutations
// addressing a missing index are dropped and reported in the Result.
func (s *Session) Apply(ctx context.Context, m Mutation) Result {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.finished {
		return dropped("session finished")
	}

	var res Result
	switch m := m.(type) {
	case SetWeight:
		res = s.setField(m.Section, m.Exercise, m.Set, func(set *models.LoggedSet) {
			v := parseNum(m.Value)
			if m.Unit == models.UnitLbs {
				v = units.LbsToKg(v)
			}
			if v < 0 {
				v = 0
			}
			set.Weight = v
		})
	case SetReps:
		res = s.setField(m.Section, m.Exercise, m.Set, func(set *models.LoggedSet) {
			set.Reps = int(math.Round(parseNum(m.Value)))
		})
	case SetRPE:
		res = s.setField(m.Section, m.Exercise, m.Set, func(set *models.LoggedSet) {
			set.RPE = parseNum(m.Value)
		})
	case SetNote:
		le, ok := s.findExercise(m.Section, m.Exercise)
		if !ok {
			res = dropped(missingExercise(m.Section, m.Exercise))
			break
		}
		le.Notes = m.Text
		res = applied()
	case ToggleComplete:
		res = s.toggleComplete(m)
	case SetCardioTime:
		res = s.setCardio(m.Cardio, func(lc *models.LoggedCardio) {
			lc.ActualTime = parseNum(m.Value)
		})
	case SetCardioDistance:
		res = s.setCardio(m.Cardio, func(lc *models.LoggedCardio) {
			lc.ActualDistance = parseNum(m.Value)
		})
	case SetCardioUnit:
		res = s.setCardio(m.Cardio, func(lc *models.LoggedCardio) {
			lc.DistanceUnit = m.Unit
		})
	default:
		res = dropped(fmt.Sprintf("unknown mutation %T", m))
	}

	if res.Applied {
		s.persistLocked(ctx)
	}
	return res
}

func (s *Session) toggleComplete(m ToggleComplete) Result {
	le, ok := s.findExercise(m.Section, m.Exercise)
	if !ok {
		return dropped(missingExercise(m.Section, m.Exercise))
	}
	if m.Set < 0 || m.Set >= len(le.Sets) {
		return dropped(missingSet(m.Section, m.Exercise, m.Set))
	}
	set := &le.Sets[m.Set]
	set.Completed = !set.Completed
	if set.Completed {
		s.startRestLocked(m.Section, m.Exercise, m.Set)
	}
	return applied()
}

// StartRest starts the rest countdown for the given set, replacing any
// running countdown. The duration comes from the exercise's rest field.
func (s *Session) StartRest(section models.Section, exercise, set int) Result {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.finished {
		return dropped("session finished")
	}
	exList := s.program.SectionExercises(section)
	if exercise < 0 || exercise >= len(exList) {
		return dropped(missingExercise(section, exercise))
	}
	s.startRestLocked(section, exercise, set)
	return applied()
}

func (s *Session) startRestLocked(section models.Section, exercise, set int) {
	ex := s.program.SectionExercises(section)[exercise]
	seconds := ParseRestSeconds(ex.Rest, s.defaultRest)
	s.timer.Start(TimerKey{Section: string(section), Exercise: exercise, Set: set}, seconds)
}

// CancelRest clears the rest countdown.
func (s *Session) CancelRest() {
	s.timer.Cancel()
}

// RestState returns the current countdown state, or nil when idle.
func (s *Session) RestState() *RestState {
	return s.timer.State()
}

// Snapshot returns an in-progress view of the session suitable for
// rendering or persistence.
func (s *Session) Snapshot() models.InProgressWorkout {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.snapshotLocked()
}

func (s *Session) snapshotLocked() models.InProgressWorkout {
	return models.InProgressWorkout{
		ClientID:        s.clientID,
		ProgramID:       s.program.ID,
		LoggedExercises: copyExercises(s.exercises),
		LoggedCardio:    copyCardio(s.cardio),
		LastUpdated:     s.now().UTC().Format(time.RFC3339),
	}
}

// persistLocked writes the current snapshot to the snapshot store. This
// is the auto-save bridge: failures only degrade resumability, so they
// are logged and dropped rather than propagated.
func (s *Session) persistLocked(ctx context.Context) {
	if err := s.store.SaveSnapshot(ctx, s.snapshotLocked()); err != nil {
		s.log.Warn("auto-save failed",
			"client_id", s.clientID,
			"program_id", s.program.ID,
			"error", err,
		)
	}
}

// Finish finalizes the session into an immutable LoggedWorkout: computes
// duration and total volume, appends the record to the workout history,
// and removes the in-progress snapshot. The history write is the one
// persistence step that must not be lost, so its error is returned and
// the session stays live for a retry.
func (s *Session) Finish(ctx context.Context) (models.LoggedWorkout, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.finished {
		return models.LoggedWorkout{}, ErrFinished
	}

	now := s.now()
	duration := int(math.Round(now.Sub(s.startTime).Seconds()))
	if duration < 0 {
		duration = 0
	}

	w := models.LoggedWorkout{
		ID:              uuid.New(),
		ProgramID:       s.program.ID,
		ProgramName:     s.program.Name,
		ClientID:        s.clientID,
		Date:            now.UTC().Format(time.RFC3339),
		LoggedExercises: copyExercises(s.exercises),
		LoggedCardio:    copyCardio(s.cardio),
		DurationSeconds: duration,
		TotalVolume:     s.totalVolumeLocked(),
		Feeling:         models.FeelingNone,
		PRsAchieved:     []string{},
	}

	if err := s.store.AppendWorkout(ctx, w); err != nil {
		return models.LoggedWorkout{}, fmt.Errorf("appending workout history: %w", err)
	}

	s.finished = true
	s.timer.Cancel()
	if err := s.store.DeleteSnapshot(ctx, s.clientID, s.program.ID); err != nil {
		s.log.Warn("clearing in-progress snapshot failed",
			"client_id", s.clientID,
			"program_id", s.program.ID,
			"error", err,
		)
	}
	return w, nil
}

func (s *Session) totalVolumeLocked() float64 {
	var total float64
	for _, le := range s.exercises {
		for _, set := range le.Sets {
			if s.volume == VolumeCompletedOnly && !set.Completed {
				continue
			}
			total += set.Weight * float64(set.Reps)
		}
	}
	return total
}

func (s *Session) setField(section models.Section, exercise, set int, fn func(*models.LoggedSet)) Result {
	le, ok := s.findExercise(section, exercise)
	if !ok {
		return dropped(missingExercise(section, exercise))
	}
	if set < 0 || set >= len(le.Sets) {
		return dropped(missingSet(section, exercise, set))
	}
	fn(&le.Sets[set])
	return applied()
}

func (s *Session) setCardio(index int, fn func(*models.LoggedCardio)) Result {
	if index < 0 || index >= len(s.program.Cardio) {
		return dropped(fmt.Sprintf("no cardio activity at index %d", index))
	}
	id := s.program.Cardio[index].ID
	for i := range s.cardio {
		if s.cardio[i].CardioID == id {
			fn(&s.cardio[i])
			return applied()
		}
	}
	return dropped(fmt.Sprintf("no cardio log for activity %s", id))
}

// findExercise resolves a (section, index) address to the logged exercise
// for that program slot.
func (s *Session) findExercise(section models.Section, index int) (*models.LoggedExercise, bool) {
	exList := s.program.SectionExercises(section)
	if index < 0 || index >= len(exList) {
		return nil, false
	}
	id := exList[index].ID
	for i := range s.exercises {
		if s.exercises[i].ExerciseID == id {
			return &s.exercises[i], true
		}
	}
	return nil, false
}

func missingExercise(section models.Section, index int) string {
	return fmt.Sprintf("no exercise at %s[%d]", section, index)
}

func missingSet(section models.Section, exercise, set int) string {
	return fmt.Sprintf("no set %d at %s[%d]", set, section, exercise)
}

// parseNum parses a numeric input string, defaulting to 0 on failure.
// Malformed input is never an error at this layer.
func parseNum(s string) float64 {
	v, err := strconv.ParseFloat(strings.TrimSpace(s), 64)
	if err != nil || math.IsNaN(v) || math.IsInf(v, 0) {
		return 0
	}
	return v
}

func copyExercises(src []models.LoggedExercise) []models.LoggedExercise {
	out := make([]models.LoggedExercise, len(src))
	for i, le := range src {
		out[i] = le
		out[i].Sets = append([]models.LoggedSet(nil), le.Sets...)
	}
	return out
}

func copyCardio(src []models.LoggedCardio) []models.LoggedCardio {
	return append([]models.LoggedCardio(nil), src...)
}
