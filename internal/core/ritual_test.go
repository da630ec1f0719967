package core

import (
	"testing"
	"time"
)

func TestRitualDayOf_MidnightConfig(t *testing.T) {
	cfg := DayStartConfig{} // midnight: plain calendar-day bucketing

	tests := []struct {
		name string
		ts   time.Time
		want Day
	}{
		{
			name: "start of day",
			ts:   time.Date(2024, 3, 10, 0, 0, 0, 0, time.UTC),
			want: NewDay(2024, time.March, 10),
		},
		{
			name: "midday",
			ts:   time.Date(2024, 3, 10, 12, 30, 0, 0, time.UTC),
			want: NewDay(2024, time.March, 10),
		},
		{
			name: "last minute of day",
			ts:   time.Date(2024, 3, 10, 23, 59, 59, 0, time.UTC),
			want: NewDay(2024, time.March, 10),
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := RitualDayOf(tt.ts, cfg)
			if got != tt.want {
				t.Errorf("RitualDayOf(%v) = %v, want %v", tt.ts, got, tt.want)
			}
		})
	}
}

func TestRitualDayOf_OffsetConfig(t *testing.T) {
	cfg := DayStartConfig{Hour: 6} // day starts at 6 AM

	tests := []struct {
		name string
		ts   time.Time
		want Day
	}{
		{
			name: "just before boundary belongs to previous day",
			ts:   time.Date(2024, 3, 10, 5, 59, 0, 0, time.UTC),
			want: NewDay(2024, time.March, 9),
		},
		{
			name: "exactly at boundary opens the new day",
			ts:   time.Date(2024, 3, 10, 6, 0, 0, 0, time.UTC),
			want: NewDay(2024, time.March, 10),
		},
		{
			name: "late evening stays on same day",
			ts:   time.Date(2024, 3, 10, 23, 0, 0, 0, time.UTC),
			want: NewDay(2024, time.March, 10),
		},
		{
			name: "boundary crossing a month edge",
			ts:   time.Date(2024, 3, 1, 2, 0, 0, 0, time.UTC),
			want: NewDay(2024, time.February, 29),
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := RitualDayOf(tt.ts, cfg)
			if got != tt.want {
				t.Errorf("RitualDayOf(%v) = %v, want %v", tt.ts, got, tt.want)
			}
		})
	}
}

func TestRitualDayOf_MinuteGranularity(t *testing.T) {
	cfg := DayStartConfig{Hour: 4, Minute: 30}

	before := time.Date(2024, 5, 2, 4, 29, 59, 0, time.UTC)
	if got := RitualDayOf(before, cfg); got != NewDay(2024, time.May, 1) {
		t.Errorf("04:29:59 = %v, want previous day", got)
	}
	at := time.Date(2024, 5, 2, 4, 30, 0, 0, time.UTC)
	if got := RitualDayOf(at, cfg); got != NewDay(2024, time.May, 2) {
		t.Errorf("04:30:00 = %v, want same day", got)
	}
}

func TestDayStartConfig_Normalize(t *testing.T) {
	tests := []struct {
		name string
		in   DayStartConfig
		want DayStartConfig
	}{
		{"valid unchanged", DayStartConfig{Hour: 6, Minute: 30}, DayStartConfig{Hour: 6, Minute: 30}},
		{"hour too high", DayStartConfig{Hour: 24}, DayStartConfig{Hour: 23}},
		{"negative hour", DayStartConfig{Hour: -1}, DayStartConfig{}},
		{"minute too high", DayStartConfig{Minute: 75}, DayStartConfig{Minute: 59}},
		{"negative minute", DayStartConfig{Minute: -5}, DayStartConfig{}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := tt.in.Normalize(); got != tt.want {
				t.Errorf("Normalize() = %+v, want %+v", got, tt.want)
			}
		})
	}
}

func TestStartOfWeek(t *testing.T) {
	// Wednesday March 13, 2024
	wed := time.Date(2024, 3, 13, 15, 0, 0, 0, time.UTC)

	tests := []struct {
		name      string
		weekStart time.Weekday
		want      time.Time
	}{
		{"monday start", time.Monday, time.Date(2024, 3, 11, 0, 0, 0, 0, time.UTC)},
		{"sunday start", time.Sunday, time.Date(2024, 3, 10, 0, 0, 0, 0, time.UTC)},
		{"same weekday truncates to midnight", time.Wednesday, time.Date(2024, 3, 13, 0, 0, 0, 0, time.UTC)},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := StartOfWeek(wed, tt.weekStart); !got.Equal(tt.want) {
				t.Errorf("StartOfWeek() = %v, want %v", got, tt.want)
			}
		})
	}
}

func TestDay_Ordering(t *testing.T) {
	a := NewDay(2024, time.March, 9)
	b := NewDay(2024, time.March, 10)
	if !a.Before(b) {
		t.Error("March 9 should be before March 10")
	}
	if b.Before(a) {
		t.Error("March 10 should not be before March 9")
	}
	if a.Before(a) {
		t.Error("a day is not before itself")
	}
	if got := b.AddDays(-1); got != a {
		t.Errorf("AddDays(-1) = %v, want %v", got, a)
	}
}
