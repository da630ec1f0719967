// Package worker runs the background side of the ledger: it consumes summary
// triggers and widget refresh requests from AMQP, recomputes aggregates from
// the stored entries and hands off the results.
package worker

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"mochi/internal/amqp"
	"mochi/internal/ledger"
	"mochi/internal/log"
	"mochi/internal/notify"
	"mochi/internal/widget"
)

// Notifier delivers a rendered notification to the user.
type Notifier interface {
	Deliver(ctx context.Context, n notify.Notification) error
}

// LogNotifier writes notifications to the log. It stands in for a real push
// transport in local and test setups.
type LogNotifier struct{}

func (LogNotifier) Deliver(ctx context.Context, n notify.Notification) error {
	slog.InfoContext(ctx, "Notification delivered",
		"type", n.Type,
		"title", n.Title,
		"body", n.Body)
	return nil
}

// SummaryWorker recomputes aggregates on demand and keeps the shared widget
// payload current.
type SummaryWorker struct {
	store      ledger.Store
	renderer   *notify.Renderer
	notifier   Notifier
	writer     *widget.Writer
	appearance widget.Appearance

	now func() time.Time
}

func NewSummaryWorker(store ledger.Store, renderer *notify.Renderer, notifier Notifier, writer *widget.Writer, appearance widget.Appearance) *SummaryWorker {
	if notifier == nil {
		notifier = LogNotifier{}
	}
	return &SummaryWorker{
		store:      store,
		renderer:   renderer,
		notifier:   notifier,
		writer:     writer,
		appearance: appearance,
		now:        time.Now,
	}
}

// HandleSummaryMessage processes a single summary trigger: it reads the
// ledger snapshot, renders the notification for the requested type and
// delivers it.
func (w *SummaryWorker) HandleSummaryMessage(ctx context.Context, msg *amqp.SummaryMessage) error {
	slog.InfoContext(ctx, "Processing summary trigger",
		log.FieldComponent, log.ComponentWorker,
		log.FieldSummaryType, msg.Type,
		"triggered_at", msg.Timestamp)

	entries, err := w.store.ListEntries(ctx)
	if err != nil {
		return fmt.Errorf("list entries: %w", err)
	}
	cfg, err := w.store.DayStart(ctx)
	if err != nil {
		return fmt.Errorf("load day start: %w", err)
	}

	notification, err := w.renderer.Render(msg.Type, entries, w.now(), cfg)
	if err != nil {
		return fmt.Errorf("render summary: %w", err)
	}

	if err := w.notifier.Deliver(ctx, notification); err != nil {
		return fmt.Errorf("deliver notification: %w", err)
	}

	slog.InfoContext(ctx, "Summary delivered",
		log.FieldComponent, log.ComponentWorker,
		log.FieldSummaryType, msg.Type)
	return nil
}

// HandleWidgetRefresh processes a widget refresh request from the queue.
func (w *SummaryWorker) HandleWidgetRefresh(ctx context.Context, msg *amqp.WidgetRefreshMessage) error {
	slog.InfoContext(ctx, "Processing widget refresh", "triggered_at", msg.Timestamp)
	return w.RefreshWidget(ctx)
}

// RefreshWidget rebuilds the widget payload from the current ledger snapshot
// and writes it to the shared file. It also runs on a timer as a backup in
// case refresh messages are lost.
func (w *SummaryWorker) RefreshWidget(ctx context.Context) error {
	entries, err := w.store.ListEntries(ctx)
	if err != nil {
		return fmt.Errorf("list entries: %w", err)
	}
	cfg, err := w.store.DayStart(ctx)
	if err != nil {
		return fmt.Errorf("load day start: %w", err)
	}

	payload := widget.Build(entries, w.now(), cfg, w.appearance)
	if err := w.writer.Write(payload); err != nil {
		return fmt.Errorf("write widget payload: %w", err)
	}

	slog.DebugContext(ctx, "Widget payload refreshed",
		log.FieldComponent, log.ComponentWidget,
		log.FieldCount, len(entries))
	return nil
}
