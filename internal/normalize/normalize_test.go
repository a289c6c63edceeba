package normalize

import (
	"errors"
	"strings"
	"testing"

	"github.com/nboulle/meterflow/internal/mapping"
	"github.com/nboulle/meterflow/internal/source"
)

var frenchMapping = mapping.Mapping{
	MeterID:      "Compteur",
	CustomerID:   "Client",
	ReadingValue: "Valeur",
	ReadingDate:  "Date",
	Unit:         "Unite",
	SourceSystem: "Systeme",
	DateFormat:   "%d/%m/%Y",
}

func TestNormalize_FrenchExport(t *testing.T) {
	row := source.Row{
		"Compteur": "M-1",
		"Client":   "C-1",
		"Valeur":   "100.5",
		"Date":     "01/01/2026",
		"Unite":    "kWh",
		"Systeme":  "SYS_A",
	}

	got, err := Normalize(row, frenchMapping, "fallback")
	if err != nil {
		t.Fatalf("Normalize() error = %v", err)
	}

	if got.MeterID != "M-1" {
		t.Errorf("MeterID = %q, want %q", got.MeterID, "M-1")
	}
	if got.ReadingValue != "100.500" {
		t.Errorf("ReadingValue = %q, want %q", got.ReadingValue, "100.500")
	}
	if got.ReadingDate != "2026-01-01" {
		t.Errorf("ReadingDate = %q, want %q", got.ReadingDate, "2026-01-01")
	}
	if got.Unit != "kWh" {
		t.Errorf("Unit = %q, want %q", got.Unit, "kWh")
	}
	if got.SourceSystem != "SYS_A" {
		t.Errorf("SourceSystem = %q, want %q", got.SourceSystem, "SYS_A")
	}
}

func TestNormalize_ValueFormatting(t *testing.T) {
	tests := []struct {
		raw  string
		want string
	}{
		{"100.5", "100.500"},
		{"0", "0.000"},
		{"-3.14159", "-3.142"},
		{"  42 ", "42.000"},
		{"1e3", "1000.000"},
	}

	m := mapping.Mapping{
		MeterID: "m", CustomerID: "c", ReadingValue: "v", ReadingDate: "d",
		DateFormat: "%Y-%m-%d",
	}
	for _, tt := range tests {
		row := source.Row{"m": "M-1", "c": "C-1", "v": tt.raw, "d": "2026-01-01"}
		got, err := Normalize(row, m, "src")
		if err != nil {
			t.Errorf("Normalize(value=%q) error = %v", tt.raw, err)
			continue
		}
		if got.ReadingValue != tt.want {
			t.Errorf("ReadingValue for %q = %q, want %q", tt.raw, got.ReadingValue, tt.want)
		}
	}
}

func TestNormalize_DateFallbacks(t *testing.T) {
	// Declared pattern fails for all of these; each must be caught by a
	// fallback layout and still come out as ISO-8601.
	tests := []struct {
		raw  string
		want string
	}{
		{"2026-03-15", "2026-03-15"},
		{"15/03/2026", "2026-03-15"},
		{"15-03-2026", "2026-03-15"},
	}

	m := mapping.Mapping{
		MeterID: "m", CustomerID: "c", ReadingValue: "v", ReadingDate: "d",
		DateFormat: "%Y%m%d",
	}
	for _, tt := range tests {
		row := source.Row{"m": "M-1", "c": "C-1", "v": "1", "d": tt.raw}
		got, err := Normalize(row, m, "src")
		if err != nil {
			t.Errorf("Normalize(date=%q) error = %v", tt.raw, err)
			continue
		}
		if got.ReadingDate != tt.want {
			t.Errorf("ReadingDate for %q = %q, want %q", tt.raw, got.ReadingDate, tt.want)
		}
	}
}

func TestNormalize_Defaults(t *testing.T) {
	m := mapping.Mapping{
		MeterID: "m", CustomerID: "c", ReadingValue: "v", ReadingDate: "d",
		Unit: "u", SourceSystem: "s", DateFormat: "%Y-%m-%d",
	}

	// Mapped columns exist but their cells are empty.
	row := source.Row{"m": "M-1", "c": "C-1", "v": "1", "d": "2026-01-01", "u": " ", "s": ""}
	got, err := Normalize(row, m, "SYS_DEFAULT")
	if err != nil {
		t.Fatalf("Normalize() error = %v", err)
	}
	if got.Unit != DefaultUnit {
		t.Errorf("Unit = %q, want %q", got.Unit, DefaultUnit)
	}
	if got.SourceSystem != "SYS_DEFAULT" {
		t.Errorf("SourceSystem = %q, want %q", got.SourceSystem, "SYS_DEFAULT")
	}

	// Unmapped unit and source_system columns behave the same.
	m.Unit, m.SourceSystem = "", ""
	got, err = Normalize(row, m, "SYS_DEFAULT")
	if err != nil {
		t.Fatalf("Normalize() error = %v", err)
	}
	if got.Unit != DefaultUnit || got.SourceSystem != "SYS_DEFAULT" {
		t.Errorf("unmapped defaults = (%q, %q), want (%q, %q)",
			got.Unit, got.SourceSystem, DefaultUnit, "SYS_DEFAULT")
	}
}

func TestNormalize_Failures(t *testing.T) {
	m := mapping.Mapping{
		MeterID: "m", CustomerID: "c", ReadingValue: "v", ReadingDate: "d",
		DateFormat: "%Y-%m-%d",
	}
	valid := source.Row{"m": "M-1", "c": "C-1", "v": "1", "d": "2026-01-01"}

	tests := []struct {
		name      string
		mutate    func(source.Row)
		wantField string
		wantText  string // substring the error message must carry
	}{
		{"empty meter_id", func(r source.Row) { r["m"] = " " }, "meter_id", ""},
		{"empty customer_id", func(r source.Row) { r["c"] = "" }, "customer_id", ""},
		{"non-numeric value", func(r source.Row) { r["v"] = "abc" }, "reading_value", "abc"},
		{"empty value", func(r source.Row) { r["v"] = "" }, "reading_value", ""},
		{"unparseable date", func(r source.Row) { r["d"] = "first of june" }, "reading_date", "first of june"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			row := source.Row{}
			for k, v := range valid {
				row[k] = v
			}
			tt.mutate(row)

			_, err := Normalize(row, m, "src")
			var vErr *ValidationError
			if !errors.As(err, &vErr) {
				t.Fatalf("Normalize() error = %v, want *ValidationError", err)
			}
			if vErr.Field != tt.wantField {
				t.Errorf("Field = %q, want %q", vErr.Field, tt.wantField)
			}
			if tt.wantText != "" && !strings.Contains(vErr.Error(), tt.wantText) {
				t.Errorf("error %q does not name offending value %q", vErr.Error(), tt.wantText)
			}
		})
	}
}
