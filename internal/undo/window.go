// Package undo implements time-boxed reversible mutations. A destructive
// action (delete, bulk delete, or an accidental add) is applied immediately;
// a pending window keeps the inverse action around until a grace deadline
// passes, after which the mutation is final.
package undo

import (
	"context"
	"log/slog"
	"sync"
	"time"
)

// State tracks a window through its lifecycle.
type State string

const (
	Pending   State = "pending"
	Committed State = "committed"
	Reverted  State = "reverted"
)

// RevertFunc re-applies the inverse of the original mutation. It runs at most
// once, only while the window is still pending.
type RevertFunc func(ctx context.Context) error

type window struct {
	deadline time.Time
	revert   RevertFunc
}

// Manager holds the currently pending windows. Windows are independent: each
// carries its own deadline and several may be pending at once (e.g. multiple
// swiped-away rows). A shared periodic tick sweeps expired ones.
type Manager struct {
	mu      sync.Mutex
	windows map[string]*window

	stopSweep    chan struct{}
	shutdownOnce sync.Once
}

func NewManager() *Manager {
	return &Manager{
		windows:   make(map[string]*window),
		stopSweep: make(chan struct{}),
	}
}

// Begin registers a pending window for an already-applied mutation. The
// mutation itself is not delayed; the window only governs reversibility.
// Beginning a new window under an existing key replaces the old one, which is
// committed silently.
func (m *Manager) Begin(key string, grace time.Duration, now time.Time, revert RevertFunc) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.windows[key] = &window{
		deadline: now.Add(grace),
		revert:   revert,
	}
}

// Tick commits every pending window whose deadline has passed, discarding its
// snapshot. Safe to call on windows already resolved; those are no-ops.
func (m *Manager) Tick(now time.Time) {
	m.mu.Lock()
	defer m.mu.Unlock()
	for key, w := range m.windows {
		if !now.Before(w.deadline) {
			delete(m.windows, key)
			slog.Debug("Undo window expired", "key", key)
		}
	}
}

// Undo reverses the mutation behind a still-pending window. Returns false if
// no window is pending under the key (expired, already undone, or never
// begun); a stale undo is a silent no-op, never an error. A failing revert
// is logged and absorbed: the target may have vanished through another path.
func (m *Manager) Undo(ctx context.Context, key string) bool {
	m.mu.Lock()
	w, ok := m.windows[key]
	if ok {
		delete(m.windows, key)
	}
	m.mu.Unlock()

	if !ok {
		return false
	}
	if err := w.revert(ctx); err != nil {
		slog.WarnContext(ctx, "Undo revert failed, discarding window", "key", key, "error", err)
	}
	return true
}

// ForceCommit finalizes a pending window early, discarding the snapshot
// without reapplying anything (the mutation is already applied). Returns
// false if nothing was pending.
func (m *Manager) ForceCommit(key string) bool {
	m.mu.Lock()
	defer m.mu.Unlock()
	if _, ok := m.windows[key]; !ok {
		return false
	}
	delete(m.windows, key)
	return true
}

// StateOf reports the window's state. Resolved windows are not retained, so
// anything unknown reads as Committed: from the caller's perspective the
// mutation is final either way.
func (m *Manager) StateOf(key string) State {
	m.mu.Lock()
	defer m.mu.Unlock()
	if _, ok := m.windows[key]; ok {
		return Pending
	}
	return Committed
}

// Remaining returns how long a pending window has left, for countdown
// display. ok is false when nothing is pending under the key.
func (m *Manager) Remaining(key string, now time.Time) (time.Duration, bool) {
	m.mu.Lock()
	defer m.mu.Unlock()
	w, ok := m.windows[key]
	if !ok {
		return 0, false
	}
	left := w.deadline.Sub(now)
	if left < 0 {
		left = 0
	}
	return left, true
}

// PendingCount returns the number of open windows.
func (m *Manager) PendingCount() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.windows)
}

// StartSweeper runs the shared 1-second tick until Stop is called.
func (m *Manager) StartSweeper() {
	go func() {
		ticker := time.NewTicker(time.Second)
		defer ticker.Stop()
		for {
			select {
			case <-ticker.C:
				m.Tick(time.Now())
			case <-m.stopSweep:
				return
			}
		}
	}()
}

// Stop shuts down the sweeper goroutine.
func (m *Manager) Stop() {
	m.shutdownOnce.Do(func() {
		close(m.stopSweep)
	})
}
