package session

import (
	"strconv"
	"strings"
	"sync"
	"time"
)

// TimerKey addresses the set a rest countdown belongs to.
type TimerKey struct {
	Section  string `json:"section"`
	Exercise int    `json:"exerciseIndex"`
	Set      int    `json:"setIndex"`
}

// RestState is the observable state of a running countdown.
type RestState struct {
	TimerKey
	Remaining int `json:"secondsRemaining"`
}

// RestTimer is a single countdown owned by one session. Starting a new
// countdown atomically cancels the previous one; a tick from a replaced
// countdown can never touch the new state. Expiry is silent: the state
// clears at zero and callers observe it via State.
type RestTimer struct {
	mu       sync.Mutex
	state    *RestState
	gen      uint64
	pending  *time.Timer
	interval time.Duration
}

// NewRestTimer creates a timer ticking once per second.
func NewRestTimer() *RestTimer {
	return &RestTimer{interval: time.Second}
}

// Start begins a countdown of seconds for the given set, replacing any
// running countdown. Non-positive durations clear the timer.
func (t *RestTimer) Start(key TimerKey, seconds int) {
	t.mu.Lock()
	defer t.mu.Unlock()

	t.gen++
	if t.pending != nil {
		t.pending.Stop()
		t.pending = nil
	}
	if seconds <= 0 {
		t.state = nil
		return
	}
	t.state = &RestState{TimerKey: key, Remaining: seconds}
	t.scheduleLocked(t.gen)
}

// Cancel clears the countdown immediately.
func (t *RestTimer) Cancel() {
	t.mu.Lock()
	defer t.mu.Unlock()

	t.gen++
	if t.pending != nil {
		t.pending.Stop()
		t.pending = nil
	}
	t.state = nil
}

// State returns a copy of the current countdown state, or nil when idle.
func (t *RestTimer) State() *RestState {
	t.mu.Lock()
	defer t.mu.Unlock()

	if t.state == nil {
		return nil
	}
	st := *t.state
	return &st
}

func (t *RestTimer) scheduleLocked(gen uint64) {
	t.pending = time.AfterFunc(t.interval, func() { t.tick(gen) })
}

// tick decrements the countdown by one second. Ticks carry the generation
// they were scheduled under, so a tick outliving its countdown is a no-op.
func (t *RestTimer) tick(gen uint64) {
	t.mu.Lock()
	defer t.mu.Unlock()

	if gen != t.gen || t.state == nil {
		return
	}
	t.state.Remaining--
	if t.state.Remaining <= 0 {
		t.state = nil
		t.pending = nil
		return
	}
	t.scheduleLocked(gen)
}

// ParseRestSeconds parses the leading integer of an exercise rest field
// like "90s". Missing or non-positive values fall back to the default.
func ParseRestSeconds(rest string, fallback int) int {
	s := strings.TrimSpace(rest)
	i := 0
	for i < len(s) && s[i] >= '0' && s[i] <= '9' {
		i++
	}
	if i == 0 {
		return fallback
	}
	n, err := strconv.Atoi(s[:i])
	if err != nil || n <= 0 {
		return fallback
	}
	return n
}
