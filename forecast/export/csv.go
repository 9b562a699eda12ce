// Package export writes forecast results as row-oriented tables and records
// sweep runs in a manifest.
package export

import (
	"encoding/csv"
	"fmt"
	"io"
	"os"

	"github.com/outbreak-sim/outbreak-sim/forecast"
)

// Format selects the table writer.
type Format string

const (
	FormatCSV  Format = "csv"
	FormatXLSX Format = "xlsx"
)

// validFormats maps accepted format strings.
var validFormats = map[Format]bool{
	FormatCSV:  true,
	FormatXLSX: true,
}

// IsValidFormat returns true if the given format string is a recognized table format.
func IsValidFormat(format string) bool {
	return validFormats[Format(format)]
}

// Extension returns the file extension for the format, including the dot.
func (f Format) Extension() string {
	return "." + string(f)
}

// WriteFile writes the result table to path in the given format.
func WriteFile(path string, format Format, result *forecast.Result) error {
	switch format {
	case FormatCSV:
		return WriteCSVFile(path, result)
	case FormatXLSX:
		return WriteXLSXFile(path, result)
	default:
		return fmt.Errorf("unknown table format %q", format)
	}
}

// WriteCSV writes the header and one record per row.
func WriteCSV(w io.Writer, result *forecast.Result) error {
	writer := csv.NewWriter(w)

	if err := writer.Write(forecast.Columns); err != nil {
		return fmt.Errorf("writing CSV header: %w", err)
	}
	for i, row := range result.Rows {
		if err := writer.Write(row.Record()); err != nil {
			return fmt.Errorf("writing CSV row %d: %w", i, err)
		}
	}
	writer.Flush()
	return writer.Error()
}

// WriteCSVFile creates (or truncates) path and writes the table to it.
func WriteCSVFile(path string, result *forecast.Result) error {
	file, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("creating results file: %w", err)
	}
	if err := WriteCSV(file, result); err != nil {
		_ = file.Close()
		return err
	}
	return file.Close()
}
