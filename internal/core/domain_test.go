package core

import (
	"errors"
	"strings"
	"testing"
	"time"

	"github.com/google/uuid"
)

func TestSpendEntry_Validate(t *testing.T) {
	ts := time.Date(2024, 3, 10, 12, 0, 0, 0, time.UTC)

	tests := []struct {
		name    string
		entry   SpendEntry
		wantErr error
	}{
		{
			name:  "valid entry",
			entry: SpendEntry{ID: uuid.New(), Timestamp: ts, Amount: Money{Cents: 100}},
		},
		{
			name:    "zero timestamp",
			entry:   SpendEntry{ID: uuid.New(), Amount: Money{Cents: 100}},
			wantErr: ErrZeroTimestamp,
		},
		{
			name:    "zero amount",
			entry:   SpendEntry{ID: uuid.New(), Timestamp: ts},
			wantErr: ErrInvalidAmount,
		},
		{
			name:    "negative amount",
			entry:   SpendEntry{ID: uuid.New(), Timestamp: ts, Amount: Money{Cents: -5}},
			wantErr: ErrInvalidAmount,
		},
		{
			name:    "note too long",
			entry:   SpendEntry{ID: uuid.New(), Timestamp: ts, Amount: Money{Cents: 100}, Note: strings.Repeat("x", 201)},
			wantErr: ErrNoteTooLong,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := tt.entry.Validate()
			if !errors.Is(err, tt.wantErr) {
				t.Errorf("Validate() = %v, want %v", err, tt.wantErr)
			}
		})
	}
}

func TestSpendEntry_MethodID(t *testing.T) {
	e := SpendEntry{}
	if got := e.MethodID(); got != DefaultCashID {
		t.Errorf("MethodID() on zero reference = %v, want default cash", got)
	}

	id := uuid.New()
	e.PaymentMethodID = id
	if got := e.MethodID(); got != id {
		t.Errorf("MethodID() = %v, want %v", got, id)
	}
}

func TestPaymentMethod_Validate(t *testing.T) {
	tests := []struct {
		name    string
		method  PaymentMethod
		wantErr bool
	}{
		{"valid card", PaymentMethod{ID: uuid.New(), Name: "Visa", ColorHex: "#4A90A4", Type: Card}, false},
		{"default cash", DefaultCash(), false},
		{"empty name", PaymentMethod{ID: uuid.New(), Name: "  ", Type: Cash}, true},
		{"name too long", PaymentMethod{ID: uuid.New(), Name: strings.Repeat("a", 51), Type: Cash}, true},
		{"invalid type", PaymentMethod{ID: uuid.New(), Name: "Crypto", Type: PaymentType("crypto")}, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if err := tt.method.Validate(); (err != nil) != tt.wantErr {
				t.Errorf("Validate() error = %v, wantErr %v", err, tt.wantErr)
			}
		})
	}
}

func TestNewSpendEntry_AssignsIdentity(t *testing.T) {
	ts := time.Date(2024, 3, 10, 12, 0, 0, 0, time.UTC)
	a := NewSpendEntry(ts, Money{Cents: 100}, "coffee", DefaultCashID)
	b := NewSpendEntry(ts, Money{Cents: 100}, "coffee", DefaultCashID)

	if a.ID == uuid.Nil || b.ID == uuid.Nil {
		t.Fatal("entries must get a non-nil id")
	}
	if a.ID == b.ID {
		t.Error("two entries must not share an id")
	}
}
