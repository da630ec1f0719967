// Package services orchestrates ledger mutations across the store, the undo
// manager and AMQP. Mutations apply immediately; destructive ones open a
// grace window holding the inverse action.
package services

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/google/uuid"

	"mochi/internal/amqp"
	"mochi/internal/core"
	"mochi/internal/ledger"
	"mochi/internal/undo"
)

// undoLastAddKey is the shared window key for accidental adds. Beginning a
// new window replaces the old one, so only the most recent add stays
// reversible.
const undoLastAddKey = "last_add"

// GracePeriods are the undo window durations per mutation kind.
type GracePeriods struct {
	SingleDelete time.Duration
	BulkDelete   time.Duration
	UndoLastAdd  time.Duration
}

// DefaultGracePeriods returns the stock durations.
func DefaultGracePeriods() GracePeriods {
	return GracePeriods{
		SingleDelete: 4 * time.Second,
		BulkDelete:   7 * time.Second,
		UndoLastAdd:  6 * time.Second,
	}
}

// LedgerService orchestrates entry and payment method operations across the
// store, undo windows and AMQP triggers.
type LedgerService struct {
	store      ledger.Store
	undoMgr    *undo.Manager
	amqpClient *amqp.Client
	grace      GracePeriods
	now        func() time.Time
}

func NewLedgerService(store ledger.Store, undoMgr *undo.Manager, amqpClient *amqp.Client, grace GracePeriods) *LedgerService {
	return &LedgerService{
		store:      store,
		undoMgr:    undoMgr,
		amqpClient: amqpClient,
		grace:      grace,
		now:        time.Now,
	}
}

// CreateEntry validates and stores a new entry, opening the undo-last-add
// window so an accidental keypad tap can be taken back.
func (s *LedgerService) CreateEntry(ctx context.Context, timestamp time.Time, amount core.Money, note string, methodID uuid.UUID) (core.SpendEntry, error) {
	entry := core.NewSpendEntry(timestamp, amount, note, methodID)
	stored, err := s.store.Append(ctx, entry)
	if err != nil {
		return core.SpendEntry{}, fmt.Errorf("append entry: %w", err)
	}

	id := stored.ID
	s.undoMgr.Begin(undoLastAddKey, s.grace.UndoLastAdd, s.now(), func(ctx context.Context) error {
		return s.store.Delete(ctx, id)
	})

	s.publishWidgetRefresh(ctx)
	return stored, nil
}

// UndoLastAdd removes the most recently added entry while its window is
// still open. Returns false once the window has expired.
func (s *LedgerService) UndoLastAdd(ctx context.Context) bool {
	undone := s.undoMgr.Undo(ctx, undoLastAddKey)
	if undone {
		s.publishWidgetRefresh(ctx)
	}
	return undone
}

// DeleteEntry removes an entry immediately and opens a grace window holding
// a snapshot for reinsertion. The window key is the entry id, so the caller
// can address the undo without extra bookkeeping.
func (s *LedgerService) DeleteEntry(ctx context.Context, id uuid.UUID) error {
	snapshot, err := s.store.GetEntry(ctx, id)
	if err != nil {
		return err
	}
	if err := s.store.Delete(ctx, id); err != nil {
		return err
	}

	s.undoMgr.Begin(id.String(), s.grace.SingleDelete, s.now(), s.reinsert(snapshot))
	s.publishWidgetRefresh(ctx)
	return nil
}

// BulkDeleteResult reports a bulk delete: how many entries went away and the
// token addressing the single undo window covering all of them.
type BulkDeleteResult struct {
	Deleted   int
	UndoToken string
}

// BulkDelete removes a set of entries under one shared grace window; undoing
// restores all of them together. Ids that resolve to nothing are skipped.
func (s *LedgerService) BulkDelete(ctx context.Context, ids []uuid.UUID) (BulkDeleteResult, error) {
	var snapshots []core.SpendEntry
	for _, id := range ids {
		snapshot, err := s.store.GetEntry(ctx, id)
		if err != nil {
			continue
		}
		if err := s.store.Delete(ctx, id); err != nil {
			continue
		}
		snapshots = append(snapshots, snapshot)
	}

	result := BulkDeleteResult{Deleted: len(snapshots)}
	if len(snapshots) == 0 {
		return result, nil
	}

	result.UndoToken = "bulk_" + uuid.NewString()
	s.undoMgr.Begin(result.UndoToken, s.grace.BulkDelete, s.now(), func(ctx context.Context) error {
		var firstErr error
		for _, snapshot := range snapshots {
			if err := s.reinsert(snapshot)(ctx); err != nil && firstErr == nil {
				firstErr = err
			}
		}
		return firstErr
	})

	s.publishWidgetRefresh(ctx)
	return result, nil
}

// Undo reverses the mutation behind a pending window (single delete keyed by
// entry id, bulk delete keyed by token). A stale key is a silent no-op.
func (s *LedgerService) Undo(ctx context.Context, key string) bool {
	undone := s.undoMgr.Undo(ctx, key)
	if undone {
		s.publishWidgetRefresh(ctx)
	}
	return undone
}

// Commit finalizes a pending window early, making the mutation permanent
// before the grace deadline.
func (s *LedgerService) Commit(key string) bool {
	return s.undoMgr.ForceCommit(key)
}

// UndoRemaining reports the countdown left on a pending window.
func (s *LedgerService) UndoRemaining(key string) (time.Duration, bool) {
	return s.undoMgr.Remaining(key, s.now())
}

// UpdateNote sets or clears the free-text note on an entry.
func (s *LedgerService) UpdateNote(ctx context.Context, id uuid.UUID, note string) error {
	if len(note) > 200 {
		return core.ErrNoteTooLong
	}
	if err := s.store.UpdateNote(ctx, id, note); err != nil {
		return err
	}
	s.publishWidgetRefresh(ctx)
	return nil
}

// ListEntries returns every entry, newest first.
func (s *LedgerService) ListEntries(ctx context.Context) ([]core.SpendEntry, error) {
	return s.store.ListEntries(ctx)
}

// GetEntry returns a single entry by id.
func (s *LedgerService) GetEntry(ctx context.Context, id uuid.UUID) (core.SpendEntry, error) {
	return s.store.GetEntry(ctx, id)
}

// DayGroup is one ritual day's slice of the history view.
type DayGroup struct {
	Day     core.Day
	Total   core.Money
	Entries []core.SpendEntry
}

// History returns the ledger grouped by ritual day, most recent day first.
func (s *LedgerService) History(ctx context.Context) ([]DayGroup, error) {
	entries, err := s.store.ListEntries(ctx)
	if err != nil {
		return nil, err
	}
	cfg, err := s.store.DayStart(ctx)
	if err != nil {
		return nil, err
	}

	groups := core.GroupByRitualDay(entries, cfg)
	days := core.RitualDaysDescending(entries, cfg)

	out := make([]DayGroup, 0, len(days))
	for _, day := range days {
		out = append(out, DayGroup{
			Day:     day,
			Total:   core.TotalForRitualDay(entries, day, cfg),
			Entries: groups[day],
		})
	}
	return out, nil
}

// Summary is the aggregate snapshot behind the summary screen and the daily
// notification.
type Summary struct {
	TodayTotal     core.Money
	RollingAverage core.Money
	Band           core.TrendBand
	Week           core.WeekSummary
	PeakWeekday    core.WeekdayTotal
	HasPeak        bool
}

// Summarize computes today's figures against the rolling average plus the
// current calendar week.
func (s *LedgerService) Summarize(ctx context.Context, now time.Time, weekStart time.Weekday, windowDays int) (Summary, error) {
	entries, err := s.store.ListEntries(ctx)
	if err != nil {
		return Summary{}, err
	}
	cfg, err := s.store.DayStart(ctx)
	if err != nil {
		return Summary{}, err
	}

	today := core.DailyTotal(entries, now, cfg)
	average := core.RollingAverage(entries, cfg, windowDays)
	peak, hasPeak := core.PeakWeekday(entries, now, weekStart)

	return Summary{
		TodayTotal:     today,
		RollingAverage: average,
		Band:           core.CompareToAverage(today, average),
		Week:           core.WeeklyTotal(entries, now, weekStart),
		PeakWeekday:    peak,
		HasPeak:        hasPeak,
	}, nil
}

// ListMethods returns the configured payment methods.
func (s *LedgerService) ListMethods(ctx context.Context) ([]core.PaymentMethod, error) {
	return s.store.ListMethods(ctx)
}

// CreateMethod adds a payment method with a fresh identity.
func (s *LedgerService) CreateMethod(ctx context.Context, name, colorHex string, methodType core.PaymentType) (core.PaymentMethod, error) {
	m := core.PaymentMethod{
		ID:       uuid.New(),
		Name:     name,
		ColorHex: colorHex,
		Type:     methodType,
	}
	if err := s.store.SaveMethod(ctx, m); err != nil {
		return core.PaymentMethod{}, err
	}
	return m, nil
}

// UpdateMethod replaces an existing method's mutable fields.
func (s *LedgerService) UpdateMethod(ctx context.Context, m core.PaymentMethod) error {
	existing, err := s.store.GetMethod(ctx, m.ID)
	if err != nil {
		return err
	}
	m.IsDefault = existing.IsDefault
	return s.store.SaveMethod(ctx, m)
}

// DeleteMethod removes a method; the store falls the selection back to the
// default when the selected one goes away.
func (s *LedgerService) DeleteMethod(ctx context.Context, id uuid.UUID) error {
	return s.store.DeleteMethod(ctx, id)
}

// SelectedMethod returns the currently selected payment method.
func (s *LedgerService) SelectedMethod(ctx context.Context) (core.PaymentMethod, error) {
	id, err := s.store.SelectedMethodID(ctx)
	if err != nil {
		return core.PaymentMethod{}, err
	}
	return s.store.GetMethod(ctx, id)
}

// SelectMethod marks a method as the one new entries default to.
func (s *LedgerService) SelectMethod(ctx context.Context, id uuid.UUID) error {
	return s.store.SetSelectedMethod(ctx, id)
}

// DayStart returns the configured ritual day boundary.
func (s *LedgerService) DayStart(ctx context.Context) (core.DayStartConfig, error) {
	return s.store.DayStart(ctx)
}

// SetDayStart stores a new day boundary, clamped into valid bounds.
func (s *LedgerService) SetDayStart(ctx context.Context, cfg core.DayStartConfig) error {
	if err := s.store.SetDayStart(ctx, cfg); err != nil {
		return err
	}
	s.publishWidgetRefresh(ctx)
	return nil
}

// TriggerSummary publishes a summary trigger for the worker to pick up.
func (s *LedgerService) TriggerSummary(ctx context.Context, summaryType string) error {
	if s.amqpClient == nil {
		slog.WarnContext(ctx, "AMQP client not available, skipping summary trigger")
		return nil
	}
	return s.amqpClient.PublishSummaryTrigger(ctx, summaryType)
}

// publishWidgetRefresh asks the worker to rebuild the widget payload. The
// ledger mutation already succeeded, so a broker failure is logged and
// swallowed.
func (s *LedgerService) publishWidgetRefresh(ctx context.Context) {
	if s.amqpClient == nil {
		slog.DebugContext(ctx, "AMQP client not available, skipping widget refresh")
		return
	}
	if err := s.amqpClient.PublishWidgetRefresh(ctx); err != nil {
		slog.ErrorContext(ctx, "Failed to publish widget refresh", "error", err)
	}
}

// reinsert builds the revert callback restoring a deleted entry. The
// reinserted row gets a fresh id; amount, timestamp, note and payment method
// come back from the snapshot.
func (s *LedgerService) reinsert(snapshot core.SpendEntry) undo.RevertFunc {
	return func(ctx context.Context) error {
		snapshot.ID = uuid.Nil
		_, err := s.store.Append(ctx, snapshot)
		return err
	}
}

// Close releases the undo sweeper and the AMQP connection.
func (s *LedgerService) Close() error {
	s.undoMgr.Stop()
	if s.amqpClient != nil {
		if err := s.amqpClient.Close(); err != nil {
			return fmt.Errorf("close amqp: %w", err)
		}
	}
	return nil
}
