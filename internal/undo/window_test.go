package undo

import (
	"context"
	"errors"
	"testing"
	"time"
)

func TestManager_UndoRoundTrip(t *testing.T) {
	m := NewManager()
	t0 := time.Date(2024, 3, 10, 12, 0, 0, 0, time.UTC)

	reverted := false
	m.Begin("entry-1", 4*time.Second, t0, func(context.Context) error {
		reverted = true
		return nil
	})

	if got := m.StateOf("entry-1"); got != Pending {
		t.Fatalf("state = %v, want pending", got)
	}

	// Undo at t+1s restores the entry.
	if ok := m.Undo(context.Background(), "entry-1"); !ok {
		t.Fatal("Undo() = false, want true while pending")
	}
	if !reverted {
		t.Error("revert callback did not run")
	}

	// A later tick past the original deadline is a no-op.
	m.Tick(t0.Add(5 * time.Second))
	if ok := m.Undo(context.Background(), "entry-1"); ok {
		t.Error("second Undo() should be a no-op")
	}
}

func TestManager_ExpiryCommits(t *testing.T) {
	m := NewManager()
	t0 := time.Date(2024, 3, 10, 12, 0, 0, 0, time.UTC)

	reverted := false
	m.Begin("entry-1", 4*time.Second, t0, func(context.Context) error {
		reverted = true
		return nil
	})

	// Before the deadline the window stays pending.
	m.Tick(t0.Add(3 * time.Second))
	if got := m.StateOf("entry-1"); got != Pending {
		t.Fatalf("state after early tick = %v, want pending", got)
	}

	// Past the deadline it commits and the snapshot is gone.
	m.Tick(t0.Add(5 * time.Second))
	if got := m.StateOf("entry-1"); got != Committed {
		t.Fatalf("state after expiry = %v, want committed", got)
	}
	if ok := m.Undo(context.Background(), "entry-1"); ok {
		t.Error("Undo() after expiry should be rejected")
	}
	if reverted {
		t.Error("revert must not run on expiry")
	}
}

func TestManager_DeadlineBoundaryInclusive(t *testing.T) {
	m := NewManager()
	t0 := time.Date(2024, 3, 10, 12, 0, 0, 0, time.UTC)
	m.Begin("e", 4*time.Second, t0, func(context.Context) error { return nil })

	// now == deadline commits.
	m.Tick(t0.Add(4 * time.Second))
	if got := m.StateOf("e"); got != Committed {
		t.Errorf("state at exact deadline = %v, want committed", got)
	}
}

func TestManager_ForceCommit(t *testing.T) {
	m := NewManager()
	t0 := time.Date(2024, 3, 10, 12, 0, 0, 0, time.UTC)

	reverted := false
	m.Begin("e", 7*time.Second, t0, func(context.Context) error {
		reverted = true
		return nil
	})

	if ok := m.ForceCommit("e"); !ok {
		t.Fatal("ForceCommit() = false, want true while pending")
	}
	if reverted {
		t.Error("ForceCommit must not revert")
	}
	if ok := m.Undo(context.Background(), "e"); ok {
		t.Error("Undo() after ForceCommit should be rejected")
	}
	if ok := m.ForceCommit("e"); ok {
		t.Error("second ForceCommit() should be a no-op")
	}
}

func TestManager_IndependentWindows(t *testing.T) {
	m := NewManager()
	t0 := time.Date(2024, 3, 10, 12, 0, 0, 0, time.UTC)

	m.Begin("swipe", 4*time.Second, t0, func(context.Context) error { return nil })
	m.Begin("bulk", 7*time.Second, t0, func(context.Context) error { return nil })

	if got := m.PendingCount(); got != 2 {
		t.Fatalf("PendingCount = %d, want 2", got)
	}

	// A tick between the two deadlines commits only the shorter window.
	m.Tick(t0.Add(5 * time.Second))
	if got := m.StateOf("swipe"); got != Committed {
		t.Errorf("swipe state = %v, want committed", got)
	}
	if got := m.StateOf("bulk"); got != Pending {
		t.Errorf("bulk state = %v, want pending", got)
	}
}

func TestManager_RevertErrorAbsorbed(t *testing.T) {
	m := NewManager()
	t0 := time.Date(2024, 3, 10, 12, 0, 0, 0, time.UTC)

	m.Begin("gone", 4*time.Second, t0, func(context.Context) error {
		return errors.New("entry no longer exists")
	})

	// The failure is swallowed; the window is still consumed.
	if ok := m.Undo(context.Background(), "gone"); !ok {
		t.Fatal("Undo() = false, want true")
	}
	if got := m.StateOf("gone"); got != Committed {
		t.Errorf("state = %v, want committed after consumed window", got)
	}
}

func TestManager_Remaining(t *testing.T) {
	m := NewManager()
	t0 := time.Date(2024, 3, 10, 12, 0, 0, 0, time.UTC)
	m.Begin("e", 6*time.Second, t0, func(context.Context) error { return nil })

	left, ok := m.Remaining("e", t0.Add(2*time.Second))
	if !ok || left != 4*time.Second {
		t.Errorf("Remaining = %v, %v; want 4s, true", left, ok)
	}
	if _, ok := m.Remaining("missing", t0); ok {
		t.Error("Remaining for unknown key should report false")
	}
}

func TestManager_BeginReplacesExisting(t *testing.T) {
	m := NewManager()
	t0 := time.Date(2024, 3, 10, 12, 0, 0, 0, time.UTC)

	firstReverted := false
	m.Begin("e", 4*time.Second, t0, func(context.Context) error {
		firstReverted = true
		return nil
	})
	m.Begin("e", 4*time.Second, t0.Add(time.Second), func(context.Context) error { return nil })

	m.Undo(context.Background(), "e")
	if firstReverted {
		t.Error("replaced window's revert must not run")
	}
}
