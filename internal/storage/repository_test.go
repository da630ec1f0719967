package storage

import (
	"context"
	"errors"
	"path/filepath"
	"testing"
	"time"

	"github.com/google/uuid"

	"mochi/internal/core"
	"mochi/internal/ledger"
)

func newTestRepo(t *testing.T) *SQLiteRepository {
	t.Helper()
	repo, err := NewSQLiteRepository(filepath.Join(t.TempDir(), "mochi.db"))
	if err != nil {
		t.Fatalf("NewSQLiteRepository() error = %v", err)
	}
	t.Cleanup(func() { repo.Close() })
	return repo
}

func TestSQLiteRepository_EntryRoundTrip(t *testing.T) {
	repo := newTestRepo(t)
	ctx := context.Background()

	stamp := time.Date(2024, 3, 10, 9, 30, 0, 0, time.UTC)
	entry := core.NewSpendEntry(stamp, core.Money{Cents: 1250}, "groceries", core.DefaultCashID)

	stored, err := repo.Append(ctx, entry)
	if err != nil {
		t.Fatalf("Append() error = %v", err)
	}

	got, err := repo.GetEntry(ctx, stored.ID)
	if err != nil {
		t.Fatalf("GetEntry() error = %v", err)
	}
	if got.Amount.Cents != 1250 || got.Note != "groceries" {
		t.Errorf("got %+v", got)
	}
	if !got.Timestamp.Equal(stamp) {
		t.Errorf("timestamp = %v, want %v", got.Timestamp, stamp)
	}
	if got.PaymentMethodID != core.DefaultCashID {
		t.Errorf("payment method = %v, want default cash", got.PaymentMethodID)
	}
}

func TestSQLiteRepository_AppendRejectsInvalid(t *testing.T) {
	repo := newTestRepo(t)
	if _, err := repo.Append(context.Background(), core.SpendEntry{}); err == nil {
		t.Error("Append() should reject an invalid entry")
	}
}

func TestSQLiteRepository_ListEntriesNewestFirst(t *testing.T) {
	repo := newTestRepo(t)
	ctx := context.Background()

	older := core.NewSpendEntry(time.Date(2024, 3, 9, 10, 0, 0, 0, time.UTC), core.Money{Cents: 100}, "", uuid.Nil)
	newer := core.NewSpendEntry(time.Date(2024, 3, 10, 10, 0, 0, 0, time.UTC), core.Money{Cents: 200}, "", uuid.Nil)
	for _, e := range []core.SpendEntry{older, newer} {
		if _, err := repo.Append(ctx, e); err != nil {
			t.Fatalf("Append() error = %v", err)
		}
	}

	entries, err := repo.ListEntries(ctx)
	if err != nil {
		t.Fatalf("ListEntries() error = %v", err)
	}
	if len(entries) != 2 {
		t.Fatalf("got %d entries, want 2", len(entries))
	}
	if entries[0].Amount.Cents != 200 {
		t.Error("entries should be listed newest first")
	}
}

func TestSQLiteRepository_DeleteEntry(t *testing.T) {
	repo := newTestRepo(t)
	ctx := context.Background()

	stored, _ := repo.Append(ctx, core.NewSpendEntry(time.Now().UTC(), core.Money{Cents: 100}, "", uuid.Nil))
	if err := repo.Delete(ctx, stored.ID); err != nil {
		t.Fatalf("Delete() error = %v", err)
	}
	if err := repo.Delete(ctx, stored.ID); !errors.Is(err, ledger.ErrNotFound) {
		t.Errorf("second Delete() = %v, want ErrNotFound", err)
	}
	if _, err := repo.GetEntry(ctx, stored.ID); !errors.Is(err, ledger.ErrNotFound) {
		t.Errorf("GetEntry() after delete = %v, want ErrNotFound", err)
	}
}

func TestSQLiteRepository_UpdateNote(t *testing.T) {
	repo := newTestRepo(t)
	ctx := context.Background()

	stored, _ := repo.Append(ctx, core.NewSpendEntry(time.Now().UTC(), core.Money{Cents: 100}, "", uuid.Nil))
	if err := repo.UpdateNote(ctx, stored.ID, "coffee"); err != nil {
		t.Fatalf("UpdateNote() error = %v", err)
	}
	got, _ := repo.GetEntry(ctx, stored.ID)
	if got.Note != "coffee" {
		t.Errorf("note = %q", got.Note)
	}
	if err := repo.UpdateNote(ctx, uuid.New(), "x"); !errors.Is(err, ledger.ErrNotFound) {
		t.Errorf("UpdateNote(unknown) = %v, want ErrNotFound", err)
	}
}

func TestSQLiteRepository_SeedsDefaultCash(t *testing.T) {
	repo := newTestRepo(t)
	ctx := context.Background()

	selected, err := repo.SelectedMethodID(ctx)
	if err != nil {
		t.Fatalf("SelectedMethodID() error = %v", err)
	}
	if selected != core.DefaultCashID {
		t.Errorf("selected = %v, want default cash", selected)
	}

	cash, err := repo.GetMethod(ctx, core.DefaultCashID)
	if err != nil {
		t.Fatalf("GetMethod() error = %v", err)
	}
	if cash.Name != "Cash" || !cash.IsDefault || cash.Type != core.Cash {
		t.Errorf("default cash = %+v", cash)
	}
}

func TestSQLiteRepository_MethodLifecycle(t *testing.T) {
	repo := newTestRepo(t)
	ctx := context.Background()

	card := core.PaymentMethod{ID: uuid.New(), Name: "Visa", ColorHex: "#4A90A4", Type: core.Card}
	if err := repo.SaveMethod(ctx, card); err != nil {
		t.Fatalf("SaveMethod() error = %v", err)
	}
	if err := repo.SetSelectedMethod(ctx, card.ID); err != nil {
		t.Fatalf("SetSelectedMethod() error = %v", err)
	}

	card.Name = "Visa Debit"
	if err := repo.SaveMethod(ctx, card); err != nil {
		t.Fatalf("SaveMethod(update) error = %v", err)
	}
	got, _ := repo.GetMethod(ctx, card.ID)
	if got.Name != "Visa Debit" {
		t.Errorf("name after update = %q", got.Name)
	}

	if err := repo.DeleteMethod(ctx, card.ID); err != nil {
		t.Fatalf("DeleteMethod() error = %v", err)
	}
	selected, _ := repo.SelectedMethodID(ctx)
	if selected != core.DefaultCashID {
		t.Errorf("selection after delete = %v, want default cash", selected)
	}

	if err := repo.DeleteMethod(ctx, core.DefaultCashID); err == nil {
		t.Error("deleting the default cash method must fail")
	}
}

func TestSQLiteRepository_DayStartRoundTrip(t *testing.T) {
	repo := newTestRepo(t)
	ctx := context.Background()

	got, err := repo.DayStart(ctx)
	if err != nil {
		t.Fatalf("DayStart() error = %v", err)
	}
	if got != (core.DayStartConfig{}) {
		t.Errorf("initial day start = %+v, want midnight", got)
	}

	if err := repo.SetDayStart(ctx, core.DayStartConfig{Hour: 30, Minute: -2}); err != nil {
		t.Fatalf("SetDayStart() error = %v", err)
	}
	got, _ = repo.DayStart(ctx)
	if got != (core.DayStartConfig{Hour: 23, Minute: 0}) {
		t.Errorf("day start = %+v, want clamped {23 0}", got)
	}
}
