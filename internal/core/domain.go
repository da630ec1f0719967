package core

import (
	"errors"
	"strings"
	"time"

	"github.com/google/uuid"
)

const (
	Cash PaymentType = "cash"
	Card PaymentType = "card"
)

// DefaultCashID is the well-known identity of the built-in Cash method.
// Entries without a payment method reference implicitly belong to it.
var DefaultCashID = uuid.MustParse("00000000-0000-0000-0000-000000000001")

type (
	PaymentType string

	Money struct {
		Cents int64
	}

	// SpendEntry is one logged expense. Amount and Timestamp are fixed at
	// creation; only Note may change afterwards.
	SpendEntry struct {
		ID              uuid.UUID
		Timestamp       time.Time
		Amount          Money
		Note            string
		PaymentMethodID uuid.UUID // zero value means the default Cash method
	}

	// PaymentMethod is a named spending channel (cash or card).
	PaymentMethod struct {
		ID        uuid.UUID
		Name      string
		ColorHex  string
		Type      PaymentType
		IsDefault bool
	}

	// DayStartConfig defines when a ritual day begins. The zero value is
	// midnight, which degenerates to plain calendar-day bucketing.
	DayStartConfig struct {
		Hour   int
		Minute int
	}
)

var (
	ErrInvalidAmount   = errors.New("invalid amount")
	ErrZeroTimestamp   = errors.New("timestamp cannot be zero")
	ErrEmptyMethodName = errors.New("empty payment method name")
	ErrInvalidType     = errors.New("invalid payment method type")
	ErrNoteTooLong     = errors.New("note too long (max 200 characters)")
)

// PresetColors are the selectable payment method colors.
var PresetColors = []string{
	"#4A90A4", // Teal
	"#7B68EE", // Soft Purple
	"#F5A623", // Warm Orange
	"#50C878", // Emerald
	"#E8B4B8", // Blush Pink
	"#6B8E23", // Olive
	"#87CEEB", // Sky Blue
	"#DDA0DD", // Plum
	"#F0E68C", // Khaki
	"#20B2AA", // Light Sea Green
	"#CD853F", // Peru
	"#708090", // Slate Gray
}

// DefaultCash returns the built-in Cash method.
func DefaultCash() PaymentMethod {
	return PaymentMethod{
		ID:        DefaultCashID,
		Name:      "Cash",
		ColorHex:  "#50C878",
		Type:      Cash,
		IsDefault: true,
	}
}

// NewSpendEntry assigns a fresh identity and stamps the entry.
func NewSpendEntry(timestamp time.Time, amount Money, note string, methodID uuid.UUID) SpendEntry {
	return SpendEntry{
		ID:              uuid.New(),
		Timestamp:       timestamp,
		Amount:          amount,
		Note:            note,
		PaymentMethodID: methodID,
	}
}

func (m Money) Validate() error {
	if m.Cents <= 0 {
		return ErrInvalidAmount
	}
	return nil
}

func (e SpendEntry) Validate() error {
	if e.Timestamp.IsZero() {
		return ErrZeroTimestamp
	}
	if err := e.Amount.Validate(); err != nil {
		return err
	}
	if len(e.Note) > 200 {
		return ErrNoteTooLong
	}
	return nil
}

// MethodID resolves the effective payment method, falling back to Cash.
func (e SpendEntry) MethodID() uuid.UUID {
	if e.PaymentMethodID == uuid.Nil {
		return DefaultCashID
	}
	return e.PaymentMethodID
}

func (t PaymentType) Valid() bool {
	return t == Cash || t == Card
}

func (p PaymentMethod) Validate() error {
	if len(strings.TrimSpace(p.Name)) == 0 {
		return ErrEmptyMethodName
	}
	if len(p.Name) > 50 {
		return errors.New("payment method name too long (max 50 characters)")
	}
	if !p.Type.Valid() {
		return ErrInvalidType
	}
	return nil
}

// Normalize clamps the day start into valid bounds. Callers at the
// configuration boundary use this; the calendar functions assume valid input.
func (c DayStartConfig) Normalize() DayStartConfig {
	if c.Hour < 0 {
		c.Hour = 0
	}
	if c.Hour > 23 {
		c.Hour = 23
	}
	if c.Minute < 0 {
		c.Minute = 0
	}
	if c.Minute > 59 {
		c.Minute = 59
	}
	return c
}

// ThresholdMinutes is the day boundary expressed as minutes from midnight.
func (c DayStartConfig) ThresholdMinutes() int {
	return c.Hour*60 + c.Minute
}
