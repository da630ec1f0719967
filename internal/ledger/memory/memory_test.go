package memory

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/google/uuid"

	"mochi/internal/core"
	"mochi/internal/ledger"
)

func TestStore_AppendAndList(t *testing.T) {
	s := New()
	ctx := context.Background()

	older := core.NewSpendEntry(time.Date(2024, 3, 9, 10, 0, 0, 0, time.UTC), core.Money{Cents: 100}, "", core.DefaultCashID)
	newer := core.NewSpendEntry(time.Date(2024, 3, 10, 10, 0, 0, 0, time.UTC), core.Money{Cents: 200}, "lunch", core.DefaultCashID)

	for _, e := range []core.SpendEntry{older, newer} {
		if _, err := s.Append(ctx, e); err != nil {
			t.Fatalf("Append() error = %v", err)
		}
	}

	entries, err := s.ListEntries(ctx)
	if err != nil {
		t.Fatalf("ListEntries() error = %v", err)
	}
	if len(entries) != 2 {
		t.Fatalf("got %d entries, want 2", len(entries))
	}
	if entries[0].ID != newer.ID {
		t.Error("entries should be listed newest first")
	}
}

func TestStore_AppendRejectsInvalid(t *testing.T) {
	s := New()
	_, err := s.Append(context.Background(), core.SpendEntry{})
	if err == nil {
		t.Fatal("Append() should reject an invalid entry")
	}
}

func TestStore_DeleteAndNotFound(t *testing.T) {
	s := New()
	ctx := context.Background()

	e, _ := s.Append(ctx, core.NewSpendEntry(time.Now(), core.Money{Cents: 100}, "", core.DefaultCashID))
	if err := s.Delete(ctx, e.ID); err != nil {
		t.Fatalf("Delete() error = %v", err)
	}
	if err := s.Delete(ctx, e.ID); !errors.Is(err, ledger.ErrNotFound) {
		t.Errorf("second Delete() = %v, want ErrNotFound", err)
	}
	if _, err := s.GetEntry(ctx, e.ID); !errors.Is(err, ledger.ErrNotFound) {
		t.Errorf("GetEntry() after delete = %v, want ErrNotFound", err)
	}
}

func TestStore_UpdateNote(t *testing.T) {
	s := New()
	ctx := context.Background()

	e, _ := s.Append(ctx, core.NewSpendEntry(time.Now(), core.Money{Cents: 100}, "", core.DefaultCashID))
	if err := s.UpdateNote(ctx, e.ID, "coffee"); err != nil {
		t.Fatalf("UpdateNote() error = %v", err)
	}
	got, _ := s.GetEntry(ctx, e.ID)
	if got.Note != "coffee" {
		t.Errorf("note = %q, want %q", got.Note, "coffee")
	}
	if err := s.UpdateNote(ctx, uuid.New(), "x"); !errors.Is(err, ledger.ErrNotFound) {
		t.Errorf("UpdateNote(unknown) = %v, want ErrNotFound", err)
	}
}

func TestStore_SeedsDefaultCash(t *testing.T) {
	s := New()
	ctx := context.Background()

	selected, err := s.SelectedMethodID(ctx)
	if err != nil {
		t.Fatalf("SelectedMethodID() error = %v", err)
	}
	if selected != core.DefaultCashID {
		t.Errorf("selected = %v, want default cash", selected)
	}
	if _, err := s.GetMethod(ctx, core.DefaultCashID); err != nil {
		t.Errorf("default cash method missing: %v", err)
	}
}

func TestStore_DeleteSelectedMethodFallsBack(t *testing.T) {
	s := New()
	ctx := context.Background()

	card := core.PaymentMethod{ID: uuid.New(), Name: "Visa", ColorHex: "#4A90A4", Type: core.Card}
	if err := s.SaveMethod(ctx, card); err != nil {
		t.Fatalf("SaveMethod() error = %v", err)
	}
	if err := s.SetSelectedMethod(ctx, card.ID); err != nil {
		t.Fatalf("SetSelectedMethod() error = %v", err)
	}

	if err := s.DeleteMethod(ctx, card.ID); err != nil {
		t.Fatalf("DeleteMethod() error = %v", err)
	}
	selected, _ := s.SelectedMethodID(ctx)
	if selected != core.DefaultCashID {
		t.Errorf("selection after delete = %v, want default cash", selected)
	}
}

func TestStore_DefaultCashCannotBeDeleted(t *testing.T) {
	s := New()
	if err := s.DeleteMethod(context.Background(), core.DefaultCashID); err == nil {
		t.Error("deleting the default cash method must fail")
	}
}

func TestStore_DayStartClamped(t *testing.T) {
	s := New()
	ctx := context.Background()

	if err := s.SetDayStart(ctx, core.DayStartConfig{Hour: 30, Minute: -2}); err != nil {
		t.Fatalf("SetDayStart() error = %v", err)
	}
	got, _ := s.DayStart(ctx)
	want := core.DayStartConfig{Hour: 23, Minute: 0}
	if got != want {
		t.Errorf("DayStart() = %+v, want %+v", got, want)
	}
}
