package store

import (
	"context"
	"database/sql"
	"fmt"
	"strings"
)

// ColumnStats summarizes one column of an analyzed table. Min/Max/Avg are
// populated only for numeric columns.
type ColumnStats struct {
	Name     string
	Type     string
	Nulls    int64
	Distinct int64
	Numeric  bool
	Min      sql.NullFloat64
	Max      sql.NullFloat64
	Avg      sql.NullFloat64
}

// TableStats is the result of analyzing a table. SizeBytes estimates the
// whole database file (page count times page size), not the single table;
// SQLite does not track per-table sizes.
type TableStats struct {
	Table     string
	RowCount  int64
	SizeBytes int64
	Columns   []ColumnStats
}

// Analyze computes row count, database size, and per-column null/distinct
// counts, plus min/max/avg for numeric columns. Read-only.
func (s *Store) Analyze(ctx context.Context, table string) (*TableStats, error) {
	if err := s.ready(); err != nil {
		return nil, err
	}
	t, err := s.Describe(ctx, table)
	if err != nil {
		return nil, err
	}

	stats := &TableStats{Table: table}

	if err := s.db.QueryRowContext(ctx,
		fmt.Sprintf("SELECT COUNT(*) FROM %s", table)).Scan(&stats.RowCount); err != nil {
		return nil, fmt.Errorf("failed to count rows in %s: %w", table, err)
	}

	if err := s.db.QueryRowContext(ctx,
		"SELECT page_count * page_size FROM pragma_page_count(), pragma_page_size()").Scan(&stats.SizeBytes); err != nil {
		return nil, fmt.Errorf("failed to read database size: %w", err)
	}

	for _, c := range t.Columns {
		cs := ColumnStats{Name: c.Name, Type: c.Type, Numeric: numericType(c.Type)}

		if err := s.db.QueryRowContext(ctx,
			fmt.Sprintf("SELECT COUNT(*) FROM %s WHERE %s IS NULL", table, c.Name)).Scan(&cs.Nulls); err != nil {
			return nil, fmt.Errorf("failed to count nulls in %s.%s: %w", table, c.Name, err)
		}

		if err := s.db.QueryRowContext(ctx,
			fmt.Sprintf("SELECT COUNT(DISTINCT %s) FROM %s", c.Name, table)).Scan(&cs.Distinct); err != nil {
			return nil, fmt.Errorf("failed to count distinct values in %s.%s: %w", table, c.Name, err)
		}

		if cs.Numeric {
			if err := s.db.QueryRowContext(ctx,
				fmt.Sprintf("SELECT MIN(%s), MAX(%s), AVG(%s) FROM %s", c.Name, c.Name, c.Name, table)).
				Scan(&cs.Min, &cs.Max, &cs.Avg); err != nil {
				return nil, fmt.Errorf("failed to compute numeric stats for %s.%s: %w", table, c.Name, err)
			}
		}

		stats.Columns = append(stats.Columns, cs)
	}

	return stats, nil
}

func numericType(typ string) bool {
	up := strings.ToUpper(typ)
	for _, marker := range []string{"INT", "REAL", "FLOA", "DOUB", "NUMERIC", "DECIMAL"} {
		if strings.Contains(up, marker) {
			return true
		}
	}
	return false
}
