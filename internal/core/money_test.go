package core

import "testing"

func TestParseDecimalToCents(t *testing.T) {
	tests := []struct {
		name    string
		input   string
		want    int64
		wantErr bool
	}{
		{"simple dot", "12.34", 1234, false},
		{"simple comma", "12,34", 1234, false},
		{"integer", "5", 500, false},
		{"single fractional digit", "3.5", 350, false},
		{"third digit rounds down", "12.344", 1234, false},
		{"third digit rounds up", "12.346", 1235, false},
		{"leading dot", ".5", 50, false},
		{"whitespace trimmed", " 7.25 ", 725, false},
		{"empty", "", 0, true},
		{"zero rejected", "0", 0, true},
		{"zero decimal rejected", "0.00", 0, true},
		{"negative rejected", "-1.00", 0, true},
		{"plus sign rejected", "+1.00", 0, true},
		{"letters rejected", "abc", 0, true},
		{"two separators rejected", "1.2.3", 0, true},
		{"mixed garbage rejected", "12.3a", 0, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := ParseDecimalToCents(tt.input)
			if (err != nil) != tt.wantErr {
				t.Fatalf("ParseDecimalToCents(%q) error = %v, wantErr %v", tt.input, err, tt.wantErr)
			}
			if got != tt.want {
				t.Errorf("ParseDecimalToCents(%q) = %d, want %d", tt.input, got, tt.want)
			}
		})
	}
}

func TestMoney_Format(t *testing.T) {
	tests := []struct {
		name   string
		cents  int64
		symbol string
		want   string
	}{
		{"round amount", 1200, "$", "$12.00"},
		{"with remainder", 1234, "$", "$12.34"},
		{"single cent digit", 1205, "€", "€12.05"},
		{"zero", 0, "$", "$0.00"},
		{"negative", -350, "$", "-$3.50"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := (Money{Cents: tt.cents}).Format(tt.symbol); got != tt.want {
				t.Errorf("Format() = %q, want %q", got, tt.want)
			}
		})
	}
}

func TestMoney_Amount(t *testing.T) {
	if got := (Money{Cents: 1234}).Amount(); got != 12.34 {
		t.Errorf("Amount() = %v, want 12.34", got)
	}
}
