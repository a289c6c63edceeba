// Package xlsx implements a minimal reader and writer for single-sheet
// spreadsheet archives (the Office Open XML package format), built directly
// on archive/zip and encoding/xml rather than a spreadsheet library.
//
// The reader understands just enough of the format to recover a tabular
// matrix: the shared-string table, the first worksheet part, and the three
// cell encodings that occur in practice (inline string, shared-string
// index, literal value). The writer emits every cell as an inline string
// together with the minimal fixed set of companion parts required for the
// container to be recognized as a valid workbook.
package xlsx

import (
	"archive/zip"
	"bytes"
	"encoding/xml"
	"errors"
	"fmt"
	"sort"
	"strconv"
	"strings"
)

// ErrBadArchive indicates a payload that is not a readable spreadsheet
// archive. Wrapped errors carry the underlying cause.
var ErrBadArchive = errors.New("malformed spreadsheet archive")

// sharedStrings models xl/sharedStrings.xml: an ordered pool of strings
// referenced by index from worksheet cells.
type sharedStrings struct {
	Items []richText `xml:"si"`
}

// richText is a string entry that may be split into formatting runs.
// Its value is the concatenation of all text runs, not just the first.
type richText struct {
	Text []string `xml:"t"`
	Runs []struct {
		Text string `xml:"t"`
	} `xml:"r"`
}

func (rt richText) value() string {
	if len(rt.Runs) > 0 {
		var b strings.Builder
		for _, run := range rt.Runs {
			b.WriteString(run.Text)
		}
		return b.String()
	}
	return strings.Join(rt.Text, "")
}

// worksheet models the subset of a worksheet part we care about.
type worksheet struct {
	Rows []struct {
		Cells []cell `xml:"c"`
	} `xml:"sheetData>row"`
}

type cell struct {
	Ref    string    `xml:"r,attr"`
	Type   string    `xml:"t,attr"`
	Value  string    `xml:"v"`
	Inline *richText `xml:"is"`
}

// Decode reads a spreadsheet archive into a dense row-major string matrix.
// Rows are independent: column counts may vary row to row, and columns with
// no cell are filled with the empty string.
func Decode(data []byte) ([][]string, error) {
	zr, err := zip.NewReader(bytes.NewReader(data), int64(len(data)))
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrBadArchive, err)
	}

	shared, err := readSharedStrings(zr)
	if err != nil {
		return nil, err
	}

	sheet, err := findWorksheet(zr)
	if err != nil {
		return nil, err
	}

	var ws worksheet
	if err := decodePart(sheet, &ws); err != nil {
		return nil, fmt.Errorf("%w: worksheet: %v", ErrBadArchive, err)
	}

	matrix := make([][]string, 0, len(ws.Rows))
	for _, row := range ws.Rows {
		width := 0
		for _, c := range row.Cells {
			if idx := ColumnIndex(columnPrefix(c.Ref)); idx > width {
				width = idx
			}
		}
		line := make([]string, width)
		for _, c := range row.Cells {
			idx := ColumnIndex(columnPrefix(c.Ref))
			if idx < 1 {
				continue
			}
			line[idx-1] = cellValue(c, shared)
		}
		matrix = append(matrix, line)
	}
	return matrix, nil
}

// cellValue resolves one cell according to its type tag. Malformed or
// out-of-range shared-string indexes yield the empty string rather than
// failing the whole decode.
func cellValue(c cell, shared []string) string {
	switch c.Type {
	case "inlineStr":
		if c.Inline == nil {
			return ""
		}
		return c.Inline.value()
	case "s":
		idx, err := strconv.Atoi(strings.TrimSpace(c.Value))
		if err != nil || idx < 0 || idx >= len(shared) {
			return ""
		}
		return shared[idx]
	default:
		return c.Value
	}
}

func readSharedStrings(zr *zip.Reader) ([]string, error) {
	var part *zip.File
	for _, f := range zr.File {
		if f.Name == "xl/sharedStrings.xml" {
			part = f
			break
		}
	}
	if part == nil {
		return nil, nil
	}

	var sst sharedStrings
	if err := decodePart(part, &sst); err != nil {
		return nil, fmt.Errorf("%w: shared strings: %v", ErrBadArchive, err)
	}
	out := make([]string, len(sst.Items))
	for i, item := range sst.Items {
		out[i] = item.value()
	}
	return out, nil
}

// findWorksheet returns the first worksheet part in name order.
func findWorksheet(zr *zip.Reader) (*zip.File, error) {
	var names []string
	byName := make(map[string]*zip.File)
	for _, f := range zr.File {
		if strings.HasPrefix(f.Name, "xl/worksheets/") && strings.HasSuffix(f.Name, ".xml") {
			names = append(names, f.Name)
			byName[f.Name] = f
		}
	}
	if len(names) == 0 {
		return nil, fmt.Errorf("%w: no worksheet part", ErrBadArchive)
	}
	sort.Strings(names)
	return byName[names[0]], nil
}

func decodePart(f *zip.File, v any) error {
	rc, err := f.Open()
	if err != nil {
		return err
	}
	defer rc.Close()
	return xml.NewDecoder(rc).Decode(v)
}
