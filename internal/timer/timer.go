// Package timer implements the single study stopwatch. At most one entry is
// active at a time; elapsed wall-clock time is credited in whole minutes
// only when the timer is paused or stopped.
package timer

import (
	"errors"
	"time"
)

// ErrTimerBusy is returned by Start when a timer is already running or paused.
var ErrTimerBusy = errors.New("another timer is active; stop or pause it first")

// State is the timer's position in the Idle/Running/Paused cycle.
type State int

const (
	Idle State = iota
	Running
	Paused
)

func (s State) String() string {
	switch s {
	case Running:
		return "running"
	case Paused:
		return "paused"
	default:
		return "idle"
	}
}

// IsRunning is the projection watched by the keep-awake reconciler.
func IsRunning(s State) bool {
	return s == Running
}

// Timer holds the active entry id and, while running, the start of the
// currently open time window.
type Timer struct {
	now func() time.Time

	activeID  string
	startedAt time.Time
	running   bool
}

// New returns an idle timer. A nil clock means time.Now.
func New(now func() time.Time) *Timer {
	if now == nil {
		now = time.Now
	}
	return &Timer{now: now}
}

func (t *Timer) State() State {
	switch {
	case t.activeID == "":
		return Idle
	case t.running:
		return Running
	default:
		return Paused
	}
}

// ActiveID returns the entry the timer is attached to, if any.
func (t *Timer) ActiveID() (string, bool) {
	return t.activeID, t.activeID != ""
}

// StartedAt returns the start of the open window; ok is false unless running.
func (t *Timer) StartedAt() (time.Time, bool) {
	if !t.running {
		return time.Time{}, false
	}
	return t.startedAt, true
}

// Start attaches the timer to id and opens a window. It only succeeds from
// Idle. An empty id is ignored.
func (t *Timer) Start(id string) error {
	if id == "" {
		return nil
	}
	if t.activeID != "" {
		return ErrTimerBusy
	}
	t.activeID = id
	t.startedAt = t.now()
	t.running = true
	return nil
}

// Pause closes the open window and returns the whole minutes to credit to
// id. ok is false, and nothing changes, unless id is running.
func (t *Timer) Pause(id string) (minutes int, ok bool) {
	if t.activeID != id || !t.running {
		return 0, false
	}
	minutes = ElapsedMinutes(t.startedAt, t.now())
	t.running = false
	t.startedAt = time.Time{}
	return minutes, true
}

// Resume opens a new window for a paused id.
func (t *Timer) Resume(id string) bool {
	if t.activeID != id || t.activeID == "" || t.running {
		return false
	}
	t.startedAt = t.now()
	t.running = true
	return true
}

// Stop detaches the timer from id. When running, the open window is closed
// and its minutes returned for crediting.
func (t *Timer) Stop(id string) (minutes int, ok bool) {
	if t.activeID != id || t.activeID == "" {
		return 0, false
	}
	if t.running {
		minutes = ElapsedMinutes(t.startedAt, t.now())
	}
	t.Reset()
	return minutes, true
}

// Reset returns to Idle without crediting anything.
func (t *Timer) Reset() {
	t.activeID = ""
	t.startedAt = time.Time{}
	t.running = false
}

// Elapsed is the length of the open window, zero unless running.
func (t *Timer) Elapsed() time.Duration {
	if !t.running {
		return 0
	}
	d := t.now().Sub(t.startedAt)
	if d < 0 {
		return 0
	}
	return d
}

// LiveMinutes is the display total for the active entry: base plus the
// whole minutes of the open window. It is never committed.
func (t *Timer) LiveMinutes(base int) int {
	if !t.running {
		return base
	}
	return base + ElapsedMinutes(t.startedAt, t.now())
}

// ElapsedMinutes floors end-start to whole minutes, clamping clock skew to zero.
func ElapsedMinutes(start, end time.Time) int {
	d := end.Sub(start)
	if d <= 0 {
		return 0
	}
	return int(d / time.Minute)
}
