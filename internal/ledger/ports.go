// Package ledger defines the outbound ports the spend ledger is stored
// behind. The aggregation core never touches a store directly; callers read a
// snapshot and pass it into the pure functions in internal/core.
package ledger

import (
	"context"
	"errors"

	"github.com/google/uuid"

	"mochi/internal/core"
)

// ErrNotFound is returned when an entry or method id resolves to nothing.
var ErrNotFound = errors.New("not found")

// Ports for outbound adapters.
type (
	EntryWriter interface {
		// Append persists a new entry and returns it as stored.
		Append(ctx context.Context, e core.SpendEntry) (core.SpendEntry, error)
	}

	EntryDeleter interface {
		// Delete removes an entry permanently. Deleting a missing id is an
		// error (ErrNotFound) so callers can distinguish stale references.
		Delete(ctx context.Context, id uuid.UUID) error
	}

	// EntryLister provides read access to the full entry snapshot.
	EntryLister interface {
		// ListEntries returns every stored entry, newest first.
		ListEntries(ctx context.Context) ([]core.SpendEntry, error)
		// GetEntry returns a single entry by id.
		GetEntry(ctx context.Context, id uuid.UUID) (core.SpendEntry, error)
	}

	NoteUpdater interface {
		// UpdateNote sets or clears the free-text note. Notes are the only
		// mutable field of an entry.
		UpdateNote(ctx context.Context, id uuid.UUID, note string) error
	}

	// MethodStore manages the user's payment methods and tracks which one is
	// currently selected.
	MethodStore interface {
		ListMethods(ctx context.Context) ([]core.PaymentMethod, error)
		GetMethod(ctx context.Context, id uuid.UUID) (core.PaymentMethod, error)
		SaveMethod(ctx context.Context, m core.PaymentMethod) error
		// DeleteMethod removes a method. Implementations fall the selection
		// back to the default when the selected method is deleted.
		DeleteMethod(ctx context.Context, id uuid.UUID) error
		SelectedMethodID(ctx context.Context) (uuid.UUID, error)
		SetSelectedMethod(ctx context.Context, id uuid.UUID) error
	}

	// SettingsStore persists the ritual day boundary.
	SettingsStore interface {
		DayStart(ctx context.Context) (core.DayStartConfig, error)
		SetDayStart(ctx context.Context, cfg core.DayStartConfig) error
	}

	// Store is the full ledger surface a backend provides.
	Store interface {
		EntryWriter
		EntryDeleter
		EntryLister
		NoteUpdater
		MethodStore
		SettingsStore
	}
)
