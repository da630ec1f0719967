// Package memory provides an in-memory ledger store: the default backend for
// local development and the double used in service and handler tests.
package memory

import (
	"context"
	"sort"
	"sync"

	"github.com/google/uuid"

	"mochi/internal/core"
	"mochi/internal/ledger"
)

type Store struct {
	mu       sync.Mutex
	entries  []core.SpendEntry
	methods  map[uuid.UUID]core.PaymentMethod
	selected uuid.UUID
	dayStart core.DayStartConfig
}

func New() *Store {
	cash := core.DefaultCash()
	return &Store{
		methods:  map[uuid.UUID]core.PaymentMethod{cash.ID: cash},
		selected: cash.ID,
	}
}

// Append stores the entry, assigning an id if the caller left it zero.
func (s *Store) Append(_ context.Context, e core.SpendEntry) (core.SpendEntry, error) {
	if err := e.Validate(); err != nil {
		return core.SpendEntry{}, err
	}
	if e.ID == uuid.Nil {
		e.ID = uuid.New()
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	s.entries = append(s.entries, e)
	return e, nil
}

func (s *Store) Delete(_ context.Context, id uuid.UUID) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	for i, e := range s.entries {
		if e.ID == id {
			s.entries = append(s.entries[:i], s.entries[i+1:]...)
			return nil
		}
	}
	return ledger.ErrNotFound
}

// ListEntries returns a copy of the snapshot, newest first.
func (s *Store) ListEntries(_ context.Context) ([]core.SpendEntry, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := append([]core.SpendEntry(nil), s.entries...)
	sort.SliceStable(out, func(i, j int) bool {
		return out[j].Timestamp.Before(out[i].Timestamp)
	})
	return out, nil
}

func (s *Store) GetEntry(_ context.Context, id uuid.UUID) (core.SpendEntry, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, e := range s.entries {
		if e.ID == id {
			return e, nil
		}
	}
	return core.SpendEntry{}, ledger.ErrNotFound
}

func (s *Store) UpdateNote(_ context.Context, id uuid.UUID, note string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	for i, e := range s.entries {
		if e.ID == id {
			s.entries[i].Note = note
			return nil
		}
	}
	return ledger.ErrNotFound
}

func (s *Store) ListMethods(_ context.Context) ([]core.PaymentMethod, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make([]core.PaymentMethod, 0, len(s.methods))
	for _, m := range s.methods {
		out = append(out, m)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Name < out[j].Name })
	return out, nil
}

func (s *Store) GetMethod(_ context.Context, id uuid.UUID) (core.PaymentMethod, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	m, ok := s.methods[id]
	if !ok {
		return core.PaymentMethod{}, ledger.ErrNotFound
	}
	return m, nil
}

func (s *Store) SaveMethod(_ context.Context, m core.PaymentMethod) error {
	if err := m.Validate(); err != nil {
		return err
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	s.methods[m.ID] = m
	return nil
}

// DeleteMethod removes a method. The built-in default cannot be deleted, and
// deleting the selected method falls the selection back to the default.
func (s *Store) DeleteMethod(_ context.Context, id uuid.UUID) error {
	if id == core.DefaultCashID {
		return ledger.ErrNotFound
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.methods[id]; !ok {
		return ledger.ErrNotFound
	}
	delete(s.methods, id)
	if s.selected == id {
		s.selected = core.DefaultCashID
	}
	return nil
}

func (s *Store) SelectedMethodID(_ context.Context) (uuid.UUID, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.selected, nil
}

func (s *Store) SetSelectedMethod(_ context.Context, id uuid.UUID) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.methods[id]; !ok {
		return ledger.ErrNotFound
	}
	s.selected = id
	return nil
}

func (s *Store) DayStart(_ context.Context) (core.DayStartConfig, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.dayStart, nil
}

func (s *Store) SetDayStart(_ context.Context, cfg core.DayStartConfig) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.dayStart = cfg.Normalize()
	return nil
}
