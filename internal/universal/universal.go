// Package universal defines the canonical meter-reading record and
// serializes sequences of records to delimited text or spreadsheet output.
package universal

import (
	"bytes"
	"encoding/csv"
	"strings"

	"github.com/nboulle/meterflow/internal/source"
	"github.com/nboulle/meterflow/internal/xlsx"
)

// Fields is the fixed column order of the universal schema.
var Fields = []string{
	"meter_id", "customer_id", "reading_value", "reading_date", "unit", "source_system",
}

// Reading is one normalized meter reading. Every field is non-empty once
// constructed: ReadingValue carries exactly three decimal digits and
// ReadingDate is an ISO-8601 date (YYYY-MM-DD).
type Reading struct {
	MeterID      string `json:"meter_id"`
	CustomerID   string `json:"customer_id"`
	ReadingValue string `json:"reading_value"`
	ReadingDate  string `json:"reading_date"`
	Unit         string `json:"unit"`
	SourceSystem string `json:"source_system"`
}

// Values returns the reading's fields in the fixed universal column order.
func (r Reading) Values() []string {
	return []string{r.MeterID, r.CustomerID, r.ReadingValue, r.ReadingDate, r.Unit, r.SourceSystem}
}

// Matrix lays readings out as a row-major matrix under the universal
// header. An empty reading set produces the header row alone.
func Matrix(readings []Reading) [][]string {
	matrix := make([][]string, 0, len(readings)+1)
	matrix = append(matrix, append([]string(nil), Fields...))
	for _, r := range readings {
		matrix = append(matrix, r.Values())
	}
	return matrix
}

// WriteCSV serializes readings as comma-delimited text, header row first.
// encoding/csv handles quoting of embedded delimiters, quotes and newlines.
func WriteCSV(readings []Reading) ([]byte, error) {
	var buf bytes.Buffer
	w := csv.NewWriter(&buf)
	if err := w.WriteAll(Matrix(readings)); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

// Write serializes readings in the requested target format: "csv"/"txt"
// for delimited text, "xlsx"/"exl" for a spreadsheet archive.
func Write(readings []Reading, format string) ([]byte, error) {
	switch strings.ToLower(format) {
	case "csv", "txt":
		return WriteCSV(readings)
	case "xlsx", "exl":
		return xlsx.Encode(Matrix(readings))
	default:
		return nil, &source.FormatError{Format: format, Reason: "unsupported output format"}
	}
}
