package storage

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/google/uuid"

	"mochi/internal/core"
)

// Queries is the hand-written SQL layer under the repository. Rows are
// converted to core types here; the repository adds domain rules on top.
type Queries struct {
	db *sql.DB
}

func New(db *sql.DB) *Queries {
	return &Queries{db: db}
}

const timestampLayout = time.RFC3339Nano

func (q *Queries) CreateEntry(ctx context.Context, e core.SpendEntry) error {
	_, err := q.db.ExecContext(ctx,
		`INSERT INTO entries (id, timestamp, amount_cents, note, payment_method_id)
		 VALUES (?, ?, ?, ?, ?)`,
		e.ID.String(),
		e.Timestamp.Format(timestampLayout),
		e.Amount.Cents,
		e.Note,
		e.MethodID().String(),
	)
	return err
}

func (q *Queries) DeleteEntry(ctx context.Context, id string) (int64, error) {
	res, err := q.db.ExecContext(ctx, `DELETE FROM entries WHERE id = ?`, id)
	if err != nil {
		return 0, err
	}
	return res.RowsAffected()
}

func (q *Queries) GetEntry(ctx context.Context, id string) (core.SpendEntry, error) {
	row := q.db.QueryRowContext(ctx,
		`SELECT id, timestamp, amount_cents, note, payment_method_id
		 FROM entries WHERE id = ?`, id)
	return scanEntry(row)
}

func (q *Queries) ListEntries(ctx context.Context) ([]core.SpendEntry, error) {
	rows, err := q.db.QueryContext(ctx,
		`SELECT id, timestamp, amount_cents, note, payment_method_id
		 FROM entries ORDER BY timestamp DESC`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var entries []core.SpendEntry
	for rows.Next() {
		e, err := scanEntry(rows)
		if err != nil {
			return nil, err
		}
		entries = append(entries, e)
	}
	return entries, rows.Err()
}

func (q *Queries) UpdateEntryNote(ctx context.Context, id, note string) (int64, error) {
	res, err := q.db.ExecContext(ctx, `UPDATE entries SET note = ? WHERE id = ?`, note, id)
	if err != nil {
		return 0, err
	}
	return res.RowsAffected()
}

func (q *Queries) ListMethods(ctx context.Context) ([]core.PaymentMethod, error) {
	rows, err := q.db.QueryContext(ctx,
		`SELECT id, name, color_hex, type, is_default
		 FROM payment_methods ORDER BY name`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var methods []core.PaymentMethod
	for rows.Next() {
		m, err := scanMethod(rows)
		if err != nil {
			return nil, err
		}
		methods = append(methods, m)
	}
	return methods, rows.Err()
}

func (q *Queries) GetMethod(ctx context.Context, id string) (core.PaymentMethod, error) {
	row := q.db.QueryRowContext(ctx,
		`SELECT id, name, color_hex, type, is_default
		 FROM payment_methods WHERE id = ?`, id)
	return scanMethod(row)
}

func (q *Queries) UpsertMethod(ctx context.Context, m core.PaymentMethod) error {
	_, err := q.db.ExecContext(ctx,
		`INSERT INTO payment_methods (id, name, color_hex, type, is_default)
		 VALUES (?, ?, ?, ?, ?)
		 ON CONFLICT (id) DO UPDATE SET
		   name = excluded.name,
		   color_hex = excluded.color_hex,
		   type = excluded.type`,
		m.ID.String(), m.Name, m.ColorHex, string(m.Type), boolToInt(m.IsDefault),
	)
	return err
}

func (q *Queries) DeleteMethod(ctx context.Context, id string) (int64, error) {
	res, err := q.db.ExecContext(ctx, `DELETE FROM payment_methods WHERE id = ?`, id)
	if err != nil {
		return 0, err
	}
	return res.RowsAffected()
}

func (q *Queries) GetSetting(ctx context.Context, key string) (string, error) {
	var value string
	err := q.db.QueryRowContext(ctx,
		`SELECT value FROM settings WHERE key = ?`, key).Scan(&value)
	return value, err
}

func (q *Queries) SetSetting(ctx context.Context, key, value string) error {
	_, err := q.db.ExecContext(ctx,
		`INSERT INTO settings (key, value) VALUES (?, ?)
		 ON CONFLICT (key) DO UPDATE SET value = excluded.value`,
		key, value)
	return err
}

type scanner interface {
	Scan(dest ...any) error
}

func scanEntry(row scanner) (core.SpendEntry, error) {
	var (
		e                core.SpendEntry
		id, ts, methodID string
	)
	if err := row.Scan(&id, &ts, &e.Amount.Cents, &e.Note, &methodID); err != nil {
		return core.SpendEntry{}, err
	}

	var err error
	if e.ID, err = uuid.Parse(id); err != nil {
		return core.SpendEntry{}, fmt.Errorf("entry id: %w", err)
	}
	if e.PaymentMethodID, err = uuid.Parse(methodID); err != nil {
		return core.SpendEntry{}, fmt.Errorf("entry payment method id: %w", err)
	}
	if e.Timestamp, err = time.Parse(timestampLayout, ts); err != nil {
		return core.SpendEntry{}, fmt.Errorf("entry timestamp: %w", err)
	}
	return e, nil
}

func scanMethod(row scanner) (core.PaymentMethod, error) {
	var (
		m         core.PaymentMethod
		id, mtype string
		isDefault int
	)
	if err := row.Scan(&id, &m.Name, &m.ColorHex, &mtype, &isDefault); err != nil {
		return core.PaymentMethod{}, err
	}

	var err error
	if m.ID, err = uuid.Parse(id); err != nil {
		return core.PaymentMethod{}, fmt.Errorf("method id: %w", err)
	}
	m.Type = core.PaymentType(mtype)
	m.IsDefault = isDefault != 0
	return m, nil
}

func boolToInt(b bool) int {
	if b {
		return 1
	}
	return 0
}
