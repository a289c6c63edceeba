// Package normalize turns raw source rows into universal readings by
// applying a resolved field mapping with per-row validation and coercion.
package normalize

import (
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/nboulle/meterflow/internal/mapping"
	"github.com/nboulle/meterflow/internal/source"
	"github.com/nboulle/meterflow/internal/universal"
	"github.com/ncruces/go-strftime"
)

// DefaultUnit is substituted when the unit column is unmapped or its cell
// is empty.
const DefaultUnit = "kWh"

// fallbackLayouts are retried in order when the mapping's declared date
// pattern does not parse a value. An ambiguous day-first value accepted by
// the wrong fallback is tolerated here; tightening that is a data-quality
// policy choice, not a parser concern.
var fallbackLayouts = []string{"2006-01-02", "02/01/2006", "02-01-2006"}

// ValidationError reports a row that cannot be normalized.
type ValidationError struct {
	Field   string
	Value   string
	Message string
}

func (e *ValidationError) Error() string {
	if e.Value != "" {
		return fmt.Sprintf("%s: %s: %q", e.Field, e.Message, e.Value)
	}
	return fmt.Sprintf("%s: %s", e.Field, e.Message)
}

// Normalize applies a resolved mapping to one raw row, producing a
// validated universal reading. defaultSource labels the reading's
// source_system when the mapped column is absent or empty.
func Normalize(row source.Row, m mapping.Mapping, defaultSource string) (universal.Reading, error) {
	pick := func(col string) string {
		if col == "" {
			return ""
		}
		return strings.TrimSpace(row[col])
	}

	meterID := pick(m.MeterID)
	if meterID == "" {
		return universal.Reading{}, &ValidationError{Field: "meter_id", Message: "empty"}
	}

	customerID := pick(m.CustomerID)
	if customerID == "" {
		return universal.Reading{}, &ValidationError{Field: "customer_id", Message: "empty"}
	}

	rawValue := pick(m.ReadingValue)
	value, err := strconv.ParseFloat(rawValue, 64)
	if err != nil {
		return universal.Reading{}, &ValidationError{
			Field: "reading_value", Value: rawValue, Message: "not a number",
		}
	}

	rawDate := pick(m.ReadingDate)
	date, err := parseDate(rawDate, m.DateFormat)
	if err != nil {
		return universal.Reading{}, &ValidationError{
			Field: "reading_date", Value: rawDate, Message: "unparseable date",
		}
	}

	unit := pick(m.Unit)
	if unit == "" {
		unit = DefaultUnit
	}
	sourceSystem := pick(m.SourceSystem)
	if sourceSystem == "" {
		sourceSystem = defaultSource
	}

	return universal.Reading{
		MeterID:      meterID,
		CustomerID:   customerID,
		ReadingValue: strconv.FormatFloat(value, 'f', 3, 64),
		ReadingDate:  date.Format("2006-01-02"),
		Unit:         unit,
		SourceSystem: sourceSystem,
	}, nil
}

// parseDate tries the declared strftime pattern first, then the fixed
// fallback layouts in order. First success wins.
func parseDate(raw, pattern string) (time.Time, error) {
	if raw == "" {
		return time.Time{}, fmt.Errorf("empty date")
	}
	if pattern != "" {
		if t, err := strftime.Parse(pattern, raw); err == nil {
			return t, nil
		}
	}
	for _, layout := range fallbackLayouts {
		if t, err := time.Parse(layout, raw); err == nil {
			return t, nil
		}
	}
	return time.Time{}, fmt.Errorf("no date pattern matched %q", raw)
}
