// Package pipeline composes the source reader, mapping resolver, row
// normalizer and universal writer into one-shot conversion jobs.
//
// Two job shapes exist: RunFile for the CLI (file paths in and out) and
// Convert/Export for the HTTP front end (in-memory payloads, no file
// access). Jobs are pure functions of their inputs with no state shared
// between invocations, so concurrent HTTP requests need no locking.
package pipeline

import (
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"strings"

	"github.com/google/uuid"
	"github.com/nboulle/meterflow/internal/mapping"
	"github.com/nboulle/meterflow/internal/normalize"
	"github.com/nboulle/meterflow/internal/source"
	"github.com/nboulle/meterflow/internal/universal"
)

// Result reports how many rows a file job read and wrote. The two counts
// are equal on success: the job aborts on the first invalid row.
type Result struct {
	Read    int
	Written int
}

// RunFile converts a source file into a universal output file. The job is
// all-or-nothing: no output is written if any row fails validation. The
// output format follows the output path's extension; an empty source
// format is autodetected from the input path's extension.
func RunFile(inputPath, outputPath, format, mappingPath, sourceName string) (Result, error) {
	log := slog.With("job_id", uuid.NewString(), "input", inputPath)

	if format == "" {
		detected, err := source.FormatForFilename(inputPath)
		if err != nil {
			return Result{}, err
		}
		format = detected
	}

	m, err := mapping.Load(mappingPath)
	if err != nil {
		return Result{}, err
	}

	data, err := os.ReadFile(inputPath)
	if err != nil {
		return Result{}, fmt.Errorf("reading input: %w", err)
	}

	_, rows, err := source.ReadAll(data, format)
	if err != nil {
		return Result{}, err
	}

	readings, err := normalizeAll(rows, m, sourceName)
	if err != nil {
		return Result{}, err
	}

	out, err := universal.Write(readings, outputFormat(outputPath))
	if err != nil {
		return Result{}, err
	}
	if err := os.WriteFile(outputPath, out, 0o644); err != nil {
		return Result{}, fmt.Errorf("writing output: %w", err)
	}

	log.Info("file job complete", "format", format, "output", outputPath, "rows", len(readings))
	return Result{Read: len(rows), Written: len(readings)}, nil
}

// Convert runs the in-memory job serving the HTTP front end: payload in,
// normalized rows plus the resolved mapping out. The format follows the
// file name's extension; an explicit mapping wins when usable, otherwise
// one is inferred from the first row's headers.
func Convert(filename string, content []byte, explicit *mapping.Mapping, sourceName string) ([]universal.Reading, mapping.Mapping, error) {
	format, err := source.FormatForFilename(filename)
	if err != nil {
		return nil, mapping.Mapping{}, err
	}

	headers, rows, err := source.ReadAll(content, format)
	if err != nil {
		return nil, mapping.Mapping{}, err
	}

	m, err := mapping.Resolve(explicit, headers)
	if err != nil {
		return nil, mapping.Mapping{}, err
	}

	readings, err := normalizeAll(rows, m, sourceName)
	if err != nil {
		return nil, mapping.Mapping{}, err
	}
	return readings, m, nil
}

// Export encodes readings for download and suggests a file name.
func Export(readings []universal.Reading, format string) (string, []byte, error) {
	out, err := universal.Write(readings, format)
	if err != nil {
		return "", nil, err
	}

	ext := "csv"
	if f := strings.ToLower(format); f == "xlsx" || f == "exl" {
		ext = f
	}
	return "releves_universels." + ext, out, nil
}

func normalizeAll(rows []source.Row, m mapping.Mapping, sourceName string) ([]universal.Reading, error) {
	readings := make([]universal.Reading, 0, len(rows))
	for i, row := range rows {
		reading, err := normalize.Normalize(row, m, sourceName)
		if err != nil {
			return nil, fmt.Errorf("row %d: %w", i+1, err)
		}
		readings = append(readings, reading)
	}
	return readings, nil
}

// outputFormat selects the target format from the output path's extension.
// Anything that is not a spreadsheet extension writes delimited text.
func outputFormat(path string) string {
	switch strings.ToLower(filepath.Ext(path)) {
	case ".xlsx":
		return "xlsx"
	case ".exl":
		return "exl"
	default:
		return "csv"
	}
}
