// Package widget builds the payload the home-screen widget reads. The keys
// are a fixed contract with the widget process: renaming one silently blanks
// the corresponding slot on screen.
package widget

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"mochi/internal/core"
)

// Payload keys shared with the widget process.
const (
	KeyTodayTotal          = "widget_today_total"
	KeyYesterdayTotal      = "widget_yesterday_total"
	KeyLastTransaction     = "widget_last_transaction"
	KeyLastTransactionNote = "widget_last_transaction_note"
	KeyLastUpdate          = "widget_last_update"
	KeyCurrencySymbol      = "widget_currency_symbol"
	KeyColorTheme          = "widget_color_theme"
	KeyThemeMode           = "widget_theme_mode"
)

// Payload is the flat key/value document written for the widget.
type Payload map[string]string

// Appearance carries the display settings stamped into every payload.
type Appearance struct {
	CurrencySymbol string
	ColorTheme     string
	ThemeMode      string
}

// Build assembles a payload from the ledger snapshot. Entries are expected
// newest first; the first one supplies the last-transaction slots.
func Build(entries []core.SpendEntry, now time.Time, cfg core.DayStartConfig, app Appearance) Payload {
	today := core.RitualDayOf(now, cfg)
	yesterday := today.AddDays(-1)

	p := Payload{
		KeyTodayTotal:          core.TotalForRitualDay(entries, today, cfg).Format(app.CurrencySymbol),
		KeyYesterdayTotal:      core.TotalForRitualDay(entries, yesterday, cfg).Format(app.CurrencySymbol),
		KeyLastTransaction:     "",
		KeyLastTransactionNote: "",
		KeyLastUpdate:          now.Format(time.RFC3339),
		KeyCurrencySymbol:      app.CurrencySymbol,
		KeyColorTheme:          app.ColorTheme,
		KeyThemeMode:           app.ThemeMode,
	}

	if len(entries) > 0 {
		last := entries[0]
		p[KeyLastTransaction] = last.Amount.Format(app.CurrencySymbol)
		p[KeyLastTransactionNote] = last.Note
	}
	return p
}

// Writer persists payloads to the shared file the widget polls.
type Writer struct {
	path string
}

func NewWriter(path string) *Writer {
	return &Writer{path: path}
}

// Write replaces the payload file atomically so the widget never observes a
// half-written document.
func (w *Writer) Write(p Payload) error {
	data, err := json.MarshalIndent(p, "", "  ")
	if err != nil {
		return fmt.Errorf("marshal widget payload: %w", err)
	}

	dir := filepath.Dir(w.path)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return fmt.Errorf("create widget payload directory: %w", err)
	}

	tmp, err := os.CreateTemp(dir, "widget-*.json")
	if err != nil {
		return fmt.Errorf("create temp payload file: %w", err)
	}
	tmpName := tmp.Name()

	if _, err := tmp.Write(data); err != nil {
		tmp.Close()
		os.Remove(tmpName)
		return fmt.Errorf("write widget payload: %w", err)
	}
	if err := tmp.Close(); err != nil {
		os.Remove(tmpName)
		return fmt.Errorf("close temp payload file: %w", err)
	}
	if err := os.Rename(tmpName, w.path); err != nil {
		os.Remove(tmpName)
		return fmt.Errorf("replace widget payload: %w", err)
	}
	return nil
}

// Read loads the current payload, mostly for serving it over HTTP.
func (w *Writer) Read() (Payload, error) {
	data, err := os.ReadFile(w.path)
	if err != nil {
		return nil, err
	}
	var p Payload
	if err := json.Unmarshal(data, &p); err != nil {
		return nil, fmt.Errorf("unmarshal widget payload: %w", err)
	}
	return p, nil
}
