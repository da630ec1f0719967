// Package storage is the sqlite backend of the spend ledger. Schema changes
// go through embedded golang-migrate migrations; SQL lives in the Queries
// layer and the repository enforces domain rules over it.
package storage

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"strconv"

	"github.com/google/uuid"

	"mochi/internal/core"
	"mochi/internal/ledger"

	_ "modernc.org/sqlite"
)

// Settings keys.
const (
	settingSelectedMethod = "selected_method"
	settingDayStartHour   = "day_start_hour"
	settingDayStartMinute = "day_start_minute"
)

type SQLiteRepository struct {
	db      *sql.DB
	queries *Queries
}

func NewSQLiteRepository(dbPath string) (*SQLiteRepository, error) {
	if err := os.MkdirAll(filepath.Dir(dbPath), 0755); err != nil {
		return nil, fmt.Errorf("create db directory: %w", err)
	}

	db, err := sql.Open("sqlite", dbPath)
	if err != nil {
		return nil, fmt.Errorf("open sqlite database: %w", err)
	}

	if err := db.Ping(); err != nil {
		db.Close()
		return nil, fmt.Errorf("ping database: %w", err)
	}

	if err := RunMigrations(dbPath); err != nil {
		db.Close()
		return nil, fmt.Errorf("run migrations: %w", err)
	}

	return &SQLiteRepository{
		db:      db,
		queries: New(db),
	}, nil
}

func (r *SQLiteRepository) Close() error {
	if r.db != nil {
		return r.db.Close()
	}
	return nil
}

// Ping reports whether the database is reachable, for readiness checks.
func (r *SQLiteRepository) Ping(ctx context.Context) error {
	return r.db.PingContext(ctx)
}

// Append implements ledger.EntryWriter.
func (r *SQLiteRepository) Append(ctx context.Context, e core.SpendEntry) (core.SpendEntry, error) {
	if err := e.Validate(); err != nil {
		return core.SpendEntry{}, err
	}
	if e.ID == uuid.Nil {
		e.ID = uuid.New()
	}
	if err := r.queries.CreateEntry(ctx, e); err != nil {
		return core.SpendEntry{}, fmt.Errorf("create entry: %w", err)
	}

	slog.InfoContext(ctx, "Entry saved to SQLite",
		"entry_id", e.ID,
		"amount_cents", e.Amount.Cents,
		"timestamp", e.Timestamp)
	return e, nil
}

// Delete implements ledger.EntryDeleter.
func (r *SQLiteRepository) Delete(ctx context.Context, id uuid.UUID) error {
	affected, err := r.queries.DeleteEntry(ctx, id.String())
	if err != nil {
		return fmt.Errorf("delete entry: %w", err)
	}
	if affected == 0 {
		return ledger.ErrNotFound
	}
	return nil
}

// ListEntries implements ledger.EntryLister.
func (r *SQLiteRepository) ListEntries(ctx context.Context) ([]core.SpendEntry, error) {
	entries, err := r.queries.ListEntries(ctx)
	if err != nil {
		return nil, fmt.Errorf("list entries: %w", err)
	}
	return entries, nil
}

// GetEntry implements ledger.EntryLister.
func (r *SQLiteRepository) GetEntry(ctx context.Context, id uuid.UUID) (core.SpendEntry, error) {
	e, err := r.queries.GetEntry(ctx, id.String())
	if errors.Is(err, sql.ErrNoRows) {
		return core.SpendEntry{}, ledger.ErrNotFound
	}
	if err != nil {
		return core.SpendEntry{}, fmt.Errorf("get entry: %w", err)
	}
	return e, nil
}

// UpdateNote implements ledger.NoteUpdater.
func (r *SQLiteRepository) UpdateNote(ctx context.Context, id uuid.UUID, note string) error {
	affected, err := r.queries.UpdateEntryNote(ctx, id.String(), note)
	if err != nil {
		return fmt.Errorf("update note: %w", err)
	}
	if affected == 0 {
		return ledger.ErrNotFound
	}
	return nil
}

func (r *SQLiteRepository) ListMethods(ctx context.Context) ([]core.PaymentMethod, error) {
	methods, err := r.queries.ListMethods(ctx)
	if err != nil {
		return nil, fmt.Errorf("list methods: %w", err)
	}
	return methods, nil
}

func (r *SQLiteRepository) GetMethod(ctx context.Context, id uuid.UUID) (core.PaymentMethod, error) {
	m, err := r.queries.GetMethod(ctx, id.String())
	if errors.Is(err, sql.ErrNoRows) {
		return core.PaymentMethod{}, ledger.ErrNotFound
	}
	if err != nil {
		return core.PaymentMethod{}, fmt.Errorf("get method: %w", err)
	}
	return m, nil
}

func (r *SQLiteRepository) SaveMethod(ctx context.Context, m core.PaymentMethod) error {
	if err := m.Validate(); err != nil {
		return err
	}
	if err := r.queries.UpsertMethod(ctx, m); err != nil {
		return fmt.Errorf("save method: %w", err)
	}
	return nil
}

// DeleteMethod removes a method, refusing the built-in default and falling
// the selection back to it when the selected method goes away.
func (r *SQLiteRepository) DeleteMethod(ctx context.Context, id uuid.UUID) error {
	if id == core.DefaultCashID {
		return ledger.ErrNotFound
	}

	selected, err := r.SelectedMethodID(ctx)
	if err != nil {
		return err
	}

	affected, err := r.queries.DeleteMethod(ctx, id.String())
	if err != nil {
		return fmt.Errorf("delete method: %w", err)
	}
	if affected == 0 {
		return ledger.ErrNotFound
	}

	if selected == id {
		if err := r.queries.SetSetting(ctx, settingSelectedMethod, core.DefaultCashID.String()); err != nil {
			return fmt.Errorf("reset selected method: %w", err)
		}
		slog.InfoContext(ctx, "Selected method deleted, falling back to default cash",
			"payment_method_id", id)
	}
	return nil
}

func (r *SQLiteRepository) SelectedMethodID(ctx context.Context) (uuid.UUID, error) {
	value, err := r.queries.GetSetting(ctx, settingSelectedMethod)
	if errors.Is(err, sql.ErrNoRows) {
		return core.DefaultCashID, nil
	}
	if err != nil {
		return uuid.Nil, fmt.Errorf("get selected method: %w", err)
	}
	id, err := uuid.Parse(value)
	if err != nil {
		return uuid.Nil, fmt.Errorf("parse selected method id: %w", err)
	}
	return id, nil
}

func (r *SQLiteRepository) SetSelectedMethod(ctx context.Context, id uuid.UUID) error {
	if _, err := r.GetMethod(ctx, id); err != nil {
		return err
	}
	return r.queries.SetSetting(ctx, settingSelectedMethod, id.String())
}

func (r *SQLiteRepository) DayStart(ctx context.Context) (core.DayStartConfig, error) {
	hour, err := r.settingInt(ctx, settingDayStartHour)
	if err != nil {
		return core.DayStartConfig{}, err
	}
	minute, err := r.settingInt(ctx, settingDayStartMinute)
	if err != nil {
		return core.DayStartConfig{}, err
	}
	return core.DayStartConfig{Hour: hour, Minute: minute}.Normalize(), nil
}

func (r *SQLiteRepository) SetDayStart(ctx context.Context, cfg core.DayStartConfig) error {
	cfg = cfg.Normalize()
	if err := r.queries.SetSetting(ctx, settingDayStartHour, strconv.Itoa(cfg.Hour)); err != nil {
		return fmt.Errorf("set day start hour: %w", err)
	}
	if err := r.queries.SetSetting(ctx, settingDayStartMinute, strconv.Itoa(cfg.Minute)); err != nil {
		return fmt.Errorf("set day start minute: %w", err)
	}
	return nil
}

func (r *SQLiteRepository) settingInt(ctx context.Context, key string) (int, error) {
	value, err := r.queries.GetSetting(ctx, key)
	if errors.Is(err, sql.ErrNoRows) {
		return 0, nil
	}
	if err != nil {
		return 0, fmt.Errorf("get setting %s: %w", key, err)
	}
	n, err := strconv.Atoi(value)
	if err != nil {
		return 0, fmt.Errorf("parse setting %s: %w", key, err)
	}
	return n, nil
}
