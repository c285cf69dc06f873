// Package awake keeps the display from sleeping while a study timer runs.
package awake

import (
	"log/slog"
)

// Lock is a held keep-awake request.
type Lock interface {
	Release() error
	// Held reports false once the lock was released or revoked by the system.
	Held() bool
}

// Inhibitor acquires keep-awake locks from the platform.
type Inhibitor interface {
	Acquire() (Lock, error)
}

// Reconciler holds a lock exactly while the timer is running. It is driven
// by state edges from the caller and by visibility-restore signals.
type Reconciler struct {
	inhibitor Inhibitor
	log       *slog.Logger

	running bool
	lock    Lock
}

// NewReconciler returns a reconciler that never holds a lock when
// inhibitor is nil.
func NewReconciler(inhibitor Inhibitor, log *slog.Logger) *Reconciler {
	if log == nil {
		log = slog.Default()
	}
	return &Reconciler{inhibitor: inhibitor, log: log}
}

// Sync applies the current running projection. Only edges act.
func (r *Reconciler) Sync(running bool) {
	if running == r.running {
		return
	}
	r.running = running
	if running {
		r.acquire()
	} else {
		r.release()
	}
}

// Visible re-acquires a lock the system dropped while the app was hidden.
func (r *Reconciler) Visible() {
	if !r.running {
		return
	}
	if r.lock != nil && r.lock.Held() {
		return
	}
	r.log.Debug("re-acquiring keep-awake lock")
	r.acquire()
}

// Held reports whether a live lock is currently held.
func (r *Reconciler) Held() bool {
	return r.lock != nil && r.lock.Held()
}

// Close releases any held lock.
func (r *Reconciler) Close() {
	r.running = false
	r.release()
}

func (r *Reconciler) acquire() {
	if r.inhibitor == nil {
		return
	}
	r.release()
	lock, err := r.inhibitor.Acquire()
	if err != nil {
		r.log.Warn("keep-awake unavailable", "err", err)
		return
	}
	r.lock = lock
}

func (r *Reconciler) release() {
	if r.lock == nil {
		return
	}
	if err := r.lock.Release(); err != nil {
		r.log.Warn("release keep-awake lock", "err", err)
	}
	r.lock = nil
}
