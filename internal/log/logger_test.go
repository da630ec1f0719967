package log

import (
	"bytes"
	"context"
	"log/slog"
	"strings"
	"testing"
)

func newBufferLogger(component string) (*Logger, *bytes.Buffer) {
	var buf bytes.Buffer
	logger := New(Config{
		Level:     slog.LevelDebug,
		Component: component,
		Handler:   slog.NewTextHandler(&buf, &slog.HandlerOptions{Level: slog.LevelDebug}),
	})
	return logger, &buf
}

func TestLogger_ComponentAttached(t *testing.T) {
	logger, buf := newBufferLogger(ComponentLedger)

	logger.Info("entry appended", FieldEntryID, "abc")

	out := buf.String()
	if !strings.Contains(out, "component=ledger") {
		t.Errorf("output missing component: %q", out)
	}
	if !strings.Contains(out, "entry_id=abc") {
		t.Errorf("output missing entry id: %q", out)
	}
}

func TestLogger_WithComponent(t *testing.T) {
	logger, _ := newBufferLogger(ComponentApp)

	derived := logger.WithComponent(ComponentWidget)
	if derived.Component() != ComponentWidget {
		t.Errorf("component = %q, want %q", derived.Component(), ComponentWidget)
	}
	if logger.Component() != ComponentApp {
		t.Errorf("original component changed to %q", logger.Component())
	}
}

func TestFromContext_Fallback(t *testing.T) {
	logger := FromContext(context.Background())
	if logger == nil {
		t.Fatal("FromContext() returned nil without a logger in context")
	}
	if logger.Component() != "unknown" {
		t.Errorf("fallback component = %q, want unknown", logger.Component())
	}
}

func TestFromContext_RoundTrip(t *testing.T) {
	logger, _ := newBufferLogger(ComponentHTTP)
	ctx := context.WithValue(context.Background(), LoggerContextKey, logger)

	got := FromContext(ctx)
	if got.Component() != ComponentHTTP {
		t.Errorf("component = %q, want %q", got.Component(), ComponentHTTP)
	}
}

func TestLogFields_ToSlice(t *testing.T) {
	fields := NewFields().
		WithComponent(ComponentUndo).
		WithOperation(OpUndo).
		WithEntry("id-1", 1250)

	slice := fields.ToSlice()
	if len(slice) != 8 {
		t.Fatalf("len = %d, want 8", len(slice))
	}

	seen := map[string]any{}
	for i := 0; i < len(slice); i += 2 {
		seen[slice[i].(string)] = slice[i+1]
	}
	if seen[FieldComponent] != ComponentUndo {
		t.Errorf("component = %v", seen[FieldComponent])
	}
	if seen[FieldAmountCents] != int64(1250) {
		t.Errorf("amount = %v", seen[FieldAmountCents])
	}
}
