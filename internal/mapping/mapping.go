// Package mapping resolves which source column supplies each universal
// meter-reading field, either from an explicit declaration or by inference
// from observed column headers.
package mapping

import (
	"encoding/json"
	"fmt"
	"os"
	"strings"
)

// DefaultDateFormat is assumed when an explicit mapping does not declare a
// date pattern. Patterns use strftime syntax, matching the mapping files
// produced by upstream metering systems.
const DefaultDateFormat = "%Y-%m-%d"

// InferredDateFormat is assumed for mappings inferred from column headers.
// Field exports overwhelmingly use day-first dates.
const InferredDateFormat = "%d/%m/%Y"

// Mapping declares which source column supplies each universal field.
// MeterID, CustomerID, ReadingValue and ReadingDate must be non-empty once
// resolved. Unit and SourceSystem may stay empty, which triggers a default
// substitution at normalization time. A Mapping is constructed once per job
// and read-only thereafter.
type Mapping struct {
	MeterID      string `json:"meter_id"`
	CustomerID   string `json:"customer_id"`
	ReadingValue string `json:"reading_value"`
	ReadingDate  string `json:"reading_date"`
	Unit         string `json:"unit,omitempty"`
	SourceSystem string `json:"source_system,omitempty"`
	DateFormat   string `json:"date_format,omitempty"`
}

// Error reports a universal field whose mapping is missing from an explicit
// declaration or cannot be inferred from the observed headers.
type Error struct {
	Field  string
	Reason string
}

func (e *Error) Error() string {
	return fmt.Sprintf("mapping: %s: %s", e.Field, e.Reason)
}

// requiredFields pairs each required universal field with its column getter.
var requiredFields = []struct {
	name string
	col  func(Mapping) string
}{
	{"meter_id", func(m Mapping) string { return m.MeterID }},
	{"customer_id", func(m Mapping) string { return m.CustomerID }},
	{"reading_value", func(m Mapping) string { return m.ReadingValue }},
	{"reading_date", func(m Mapping) string { return m.ReadingDate }},
}

// Load reads an explicit mapping declaration from a JSON file.
func Load(path string) (Mapping, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return Mapping{}, fmt.Errorf("reading mapping file: %w", err)
	}
	return Parse(data)
}

// Parse decodes an explicit mapping declaration from a JSON payload.
// The four required column names must be present; date_format defaults to
// ISO-8601 when omitted.
func Parse(data []byte) (Mapping, error) {
	var m Mapping
	if err := json.Unmarshal(data, &m); err != nil {
		return Mapping{}, fmt.Errorf("parsing mapping: %w", err)
	}
	if m.DateFormat == "" {
		m.DateFormat = DefaultDateFormat
	}
	if err := m.validate(); err != nil {
		return Mapping{}, err
	}
	return m, nil
}

// Empty reports whether the declaration carries no required column at all,
// meaning inference should run instead.
func (m Mapping) Empty() bool {
	return m.MeterID == "" && m.CustomerID == "" && m.ReadingValue == "" && m.ReadingDate == ""
}

func (m Mapping) validate() error {
	for _, f := range requiredFields {
		if strings.TrimSpace(f.col(m)) == "" {
			return &Error{Field: f.name, Reason: "missing from mapping"}
		}
	}
	return nil
}

// Resolve returns the explicit mapping when one is usable, otherwise infers
// a mapping from the observed column headers.
func Resolve(explicit *Mapping, headers []string) (Mapping, error) {
	if explicit != nil && !explicit.Empty() {
		m := *explicit
		if m.DateFormat == "" {
			m.DateFormat = DefaultDateFormat
		}
		if err := m.validate(); err != nil {
			return Mapping{}, err
		}
		return m, nil
	}
	return Infer(headers)
}
