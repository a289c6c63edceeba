// Package source reads raw meter-reading rows out of delimited text, JSON
// and spreadsheet-archive payloads.
//
// All readers take the full payload as a byte slice and return it decoded
// in one pass; re-invoke to re-read. Values stay untyped strings here;
// validation and coercion happen in the normalize package.
package source

import (
	"bytes"
	"encoding/csv"
	"encoding/json"
	"fmt"
	"path/filepath"
	"sort"
	"strings"

	"github.com/nboulle/meterflow/internal/xlsx"
)

// Row is one untyped source record, keyed by source column name.
type Row map[string]string

// FormatError indicates an unsupported format tag or a payload that does
// not match its declared format.
type FormatError struct {
	Format string
	Reason string
}

func (e *FormatError) Error() string {
	if e.Reason == "" {
		return fmt.Sprintf("unsupported format: %q", e.Format)
	}
	return fmt.Sprintf("%s: %s", e.Format, e.Reason)
}

// ShapeError indicates a JSON payload whose structure cannot hold rows.
type ShapeError struct {
	Reason string
}

func (e *ShapeError) Error() string { return "json payload: " + e.Reason }

var utf8BOM = []byte{0xef, 0xbb, 0xbf}

// ReadAll decodes a payload into its column headers (in source order) and
// raw rows, dispatching on the format tag.
func ReadAll(data []byte, format string) ([]string, []Row, error) {
	switch strings.ToLower(format) {
	case "csv", "txt":
		return readDelimited(data, detectDelimiter(data))
	case "tsv":
		return readDelimited(data, '\t')
	case "json":
		return readJSON(data)
	case "xlsx", "exl":
		return readArchive(data)
	default:
		return nil, nil, &FormatError{Format: format}
	}
}

// FormatForFilename maps a file name's extension to a source format tag.
func FormatForFilename(name string) (string, error) {
	ext := strings.ToLower(strings.TrimPrefix(filepath.Ext(name), "."))
	switch ext {
	case "csv", "txt", "tsv", "json", "xlsx", "exl":
		return ext, nil
	default:
		return "", &FormatError{Format: ext}
	}
}

// delimiterCandidates is the fixed set sampled during delimiter detection.
var delimiterCandidates = []rune{',', ';', '\t', '|'}

// detectDelimiter samples the first 4KB and picks the candidate occurring
// most often in the first line, falling back to comma when inconclusive.
func detectDelimiter(data []byte) rune {
	sample := data
	if len(sample) > 4096 {
		sample = sample[:4096]
	}
	line := string(sample)
	if i := strings.IndexByte(line, '\n'); i >= 0 {
		line = line[:i]
	}

	best := ','
	bestCount := 0
	for _, cand := range delimiterCandidates {
		if n := strings.Count(line, string(cand)); n > bestCount {
			best, bestCount = cand, n
		}
	}
	return best
}

func readDelimited(data []byte, delim rune) ([]string, []Row, error) {
	data = bytes.TrimPrefix(data, utf8BOM)

	r := csv.NewReader(bytes.NewReader(data))
	r.Comma = delim
	r.FieldsPerRecord = -1

	records, err := r.ReadAll()
	if err != nil {
		return nil, nil, &FormatError{Format: "csv", Reason: err.Error()}
	}
	if len(records) == 0 {
		return nil, nil, nil
	}

	headers := make([]string, len(records[0]))
	for i, h := range records[0] {
		headers[i] = strings.TrimSpace(h)
	}
	return headers, zipRows(headers, records[1:]), nil
}

func readJSON(data []byte) ([]string, []Row, error) {
	dec := json.NewDecoder(bytes.NewReader(data))
	dec.UseNumber()

	var payload any
	if err := dec.Decode(&payload); err != nil {
		return nil, nil, &FormatError{Format: "json", Reason: err.Error()}
	}

	var items []any
	switch v := payload.(type) {
	case []any:
		items = v
	case map[string]any:
		inner, ok := v["readings"]
		if !ok {
			break // object without readings holds zero rows
		}
		arr, ok := inner.([]any)
		if !ok {
			return nil, nil, &ShapeError{Reason: `"readings" must be an array`}
		}
		items = arr
	default:
		return nil, nil, &ShapeError{Reason: "payload must be an array of objects"}
	}

	rows := make([]Row, 0, len(items))
	for i, item := range items {
		obj, ok := item.(map[string]any)
		if !ok {
			return nil, nil, &ShapeError{Reason: fmt.Sprintf("element %d is not an object", i)}
		}
		row := make(Row, len(obj))
		for k, v := range obj {
			row[k] = stringify(v)
		}
		rows = append(rows, row)
	}

	// JSON objects are unordered; sort the first row's keys so header-based
	// mapping inference is deterministic.
	var headers []string
	if len(rows) > 0 {
		for k := range rows[0] {
			headers = append(headers, k)
		}
		sort.Strings(headers)
	}
	return headers, rows, nil
}

func readArchive(data []byte) ([]string, []Row, error) {
	matrix, err := xlsx.Decode(data)
	if err != nil {
		return nil, nil, &FormatError{Format: "xlsx", Reason: err.Error()}
	}
	if len(matrix) == 0 {
		return nil, nil, nil
	}

	headers := make([]string, len(matrix[0]))
	for i, h := range matrix[0] {
		headers[i] = strings.TrimSpace(h)
	}
	return headers, zipRows(headers, matrix[1:]), nil
}

// zipRows keys each record by header position. Missing trailing cells
// default to the empty string.
func zipRows(headers []string, records [][]string) []Row {
	rows := make([]Row, 0, len(records))
	for _, rec := range records {
		row := make(Row, len(headers))
		for i, h := range headers {
			if i < len(rec) {
				row[h] = rec[i]
			} else {
				row[h] = ""
			}
		}
		rows = append(rows, row)
	}
	return rows
}

// stringify renders a decoded JSON value the way a cell would carry it.
// Numbers keep their source text via json.Number; null becomes empty.
func stringify(v any) string {
	switch t := v.(type) {
	case nil:
		return ""
	case string:
		return t
	case json.Number:
		return t.String()
	case bool:
		if t {
			return "true"
		}
		return "false"
	default:
		b, _ := json.Marshal(t)
		return string(b)
	}
}
