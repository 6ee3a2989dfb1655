// Package export writes table contents to timestamped CSV and JSON files.
package export

import (
	"encoding/csv"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/nextgenfitness/backend/internal/store"
)

// Format selects the export encoding.
type Format string

const (
	FormatCSV  Format = "csv"
	FormatJSON Format = "json"
)

// ParseFormat validates a format name from user input.
func ParseFormat(s string) (Format, error) {
	switch strings.ToLower(s) {
	case "csv":
		return FormatCSV, nil
	case "json":
		return FormatJSON, nil
	}
	return "", fmt.Errorf("unsupported export format %q (want csv or json)", s)
}

// Ext returns the file extension for the format.
func (f Format) Ext() string {
	return "." + string(f)
}

// Export writes the result set into dir as <table>_<timestamp>.<ext> and
// returns the path of the written file.
func Export(dir, table string, rs *store.ResultSet, format Format) (string, error) {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return "", fmt.Errorf("failed to create export directory: %w", err)
	}

	name := fmt.Sprintf("%s_%s%s", table, time.Now().Format("20060102_150405"), format.Ext())
	path := filepath.Join(dir, name)

	var err error
	switch format {
	case FormatCSV:
		err = writeCSV(path, rs)
	case FormatJSON:
		err = writeJSON(path, rs)
	default:
		err = fmt.Errorf("unsupported export format %q", format)
	}
	if err != nil {
		return "", err
	}

	return path, nil
}

func writeCSV(path string, rs *store.ResultSet) error {
	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("failed to create export file: %w", err)
	}
	defer f.Close()

	w := csv.NewWriter(f)
	if err := w.Write(rs.Columns); err != nil {
		return fmt.Errorf("failed to write csv header: %w", err)
	}

	record := make([]string, len(rs.Columns))
	for _, row := range rs.Rows {
		for i, v := range row {
			record[i] = formatValue(v)
		}
		if err := w.Write(record); err != nil {
			return fmt.Errorf("failed to write csv row: %w", err)
		}
	}

	w.Flush()
	if err := w.Error(); err != nil {
		return fmt.Errorf("failed to flush csv: %w", err)
	}
	return f.Close()
}

func writeJSON(path string, rs *store.ResultSet) error {
	data, err := json.MarshalIndent(rs.Maps(), "", "  ")
	if err != nil {
		return fmt.Errorf("failed to encode rows: %w", err)
	}
	data = append(data, '\n')

	if err := os.WriteFile(path, data, 0o644); err != nil {
		return fmt.Errorf("failed to write export file: %w", err)
	}
	return nil
}

// formatValue renders a cell for CSV output. NULL becomes the empty string.
func formatValue(v any) string {
	if v == nil {
		return ""
	}
	return fmt.Sprintf("%v", v)
}
