package store

import (
	"context"
	"database/sql"
	"fmt"
	"strconv"
	"strings"
)

// ResultSet holds tabular query output. Rows keep the column order of
// Columns; []byte values are converted to string on collection.
type ResultSet struct {
	Columns []string
	Rows    [][]any
}

// Len returns the number of rows.
func (rs *ResultSet) Len() int { return len(rs.Rows) }

// Maps converts the rows to maps keyed by column name.
func (rs *ResultSet) Maps() []map[string]any {
	out := make([]map[string]any, len(rs.Rows))
	for i, row := range rs.Rows {
		m := make(map[string]any, len(rs.Columns))
		for j, col := range rs.Columns {
			m[col] = row[j]
		}
		out[i] = m
	}
	return out
}

// CollectRows drains rows into a ResultSet and closes them.
func CollectRows(rows *sql.Rows) (*ResultSet, error) {
	defer rows.Close()

	cols, err := rows.Columns()
	if err != nil {
		return nil, fmt.Errorf("failed to read columns: %w", err)
	}

	rs := &ResultSet{Columns: cols}
	for rows.Next() {
		vals := make([]any, len(cols))
		ptrs := make([]any, len(cols))
		for i := range vals {
			ptrs[i] = &vals[i]
		}
		if err := rows.Scan(ptrs...); err != nil {
			return nil, fmt.Errorf("failed to scan row: %w", err)
		}
		for i, v := range vals {
			if b, ok := v.([]byte); ok {
				vals[i] = string(b)
			}
		}
		rs.Rows = append(rs.Rows, vals)
	}

	return rs, rows.Err()
}

// Rows returns every row of a table in storage order, columns as declared.
func (s *Store) Rows(ctx context.Context, table string) (*ResultSet, error) {
	if err := s.ready(); err != nil {
		return nil, err
	}
	t, err := s.Describe(ctx, table)
	if err != nil {
		return nil, err
	}

	rows, err := s.db.QueryContext(ctx,
		fmt.Sprintf("SELECT %s FROM %s", strings.Join(t.ColumnNames(), ", "), table))
	if err != nil {
		return nil, fmt.Errorf("failed to read rows from %s: %w", table, err)
	}
	return CollectRows(rows)
}

// Insert adds one record. Values are raw strings, one per column in declared
// order; empty strings become NULL, everything else is converted to the
// column's declared type. A blank value for an INTEGER primary key lets the
// engine assign the next id.
func (s *Store) Insert(ctx context.Context, table string, values []string) error {
	if err := s.ready(); err != nil {
		return err
	}
	t, err := s.Describe(ctx, table)
	if err != nil {
		return err
	}
	if len(values) != len(t.Columns) {
		return fmt.Errorf("table %s has %d columns, got %d values", table, len(t.Columns), len(values))
	}

	var cols []string
	var args []any
	for i, c := range t.Columns {
		v, err := coerceValue(c, values[i])
		if err != nil {
			return err
		}
		cols = append(cols, c.Name)
		args = append(args, v)
	}

	placeholders := strings.TrimSuffix(strings.Repeat("?, ", len(cols)), ", ")
	stmt := fmt.Sprintf("INSERT INTO %s (%s) VALUES (%s)", table, strings.Join(cols, ", "), placeholders)
	if _, err := s.db.ExecContext(ctx, stmt, args...); err != nil {
		return fmt.Errorf("failed to insert into %s: %w", table, err)
	}
	return nil
}

// Update patches the record whose primary key equals pkValue. Only the
// columns named in changes are touched; the primary key itself cannot be
// changed this way.
func (s *Store) Update(ctx context.Context, table, pkValue string, changes map[string]string) error {
	if err := s.ready(); err != nil {
		return err
	}
	t, err := s.Describe(ctx, table)
	if err != nil {
		return err
	}
	pk, ok := t.PrimaryKey()
	if !ok {
		return fmt.Errorf("%w: %s", ErrNoPrimaryKey, table)
	}
	if len(changes) == 0 {
		return nil
	}

	var sets []string
	var args []any
	for _, c := range t.Columns {
		raw, present := changes[c.Name]
		if !present {
			continue
		}
		if c.Name == pk.Name {
			return fmt.Errorf("cannot update primary key column %q", pk.Name)
		}
		v, err := coerceValue(c, raw)
		if err != nil {
			return err
		}
		sets = append(sets, c.Name+" = ?")
		args = append(args, v)
	}
	if len(sets) != len(changes) {
		for name := range changes {
			if _, ok := t.Column(name); !ok {
				return fmt.Errorf("%w: %s.%s", ErrColumnNotFound, table, name)
			}
		}
	}

	key, err := coerceValue(pk, pkValue)
	if err != nil {
		return err
	}
	args = append(args, key)

	stmt := fmt.Sprintf("UPDATE %s SET %s WHERE %s = ?", table, strings.Join(sets, ", "), pk.Name)
	res, err := s.db.ExecContext(ctx, stmt, args...)
	if err != nil {
		return fmt.Errorf("failed to update %s: %w", table, err)
	}

	affected, _ := res.RowsAffected()
	if affected == 0 {
		return fmt.Errorf("%w: %s with %s = %s", ErrRecordNotFound, table, pk.Name, pkValue)
	}
	return nil
}

// Delete removes the record whose primary key equals pkValue. Confirmation
// is the caller's responsibility.
func (s *Store) Delete(ctx context.Context, table, pkValue string) error {
	if err := s.ready(); err != nil {
		return err
	}
	t, err := s.Describe(ctx, table)
	if err != nil {
		return err
	}
	pk, ok := t.PrimaryKey()
	if !ok {
		return fmt.Errorf("%w: %s", ErrNoPrimaryKey, table)
	}

	key, err := coerceValue(pk, pkValue)
	if err != nil {
		return err
	}

	res, err := s.db.ExecContext(ctx,
		fmt.Sprintf("DELETE FROM %s WHERE %s = ?", table, pk.Name), key)
	if err != nil {
		return fmt.Errorf("failed to delete from %s: %w", table, err)
	}

	affected, _ := res.RowsAffected()
	if affected == 0 {
		return fmt.Errorf("%w: %s with %s = %s", ErrRecordNotFound, table, pk.Name, pkValue)
	}
	return nil
}

// coerceValue converts raw input to a bind value for the column's declared
// type. Empty input means NULL.
func coerceValue(c Column, raw string) (any, error) {
	if raw == "" {
		return nil, nil
	}

	typ := strings.ToUpper(c.Type)
	switch {
	case strings.Contains(typ, "BOOL"):
		switch strings.ToLower(raw) {
		case "true", "1", "yes", "y":
			return int64(1), nil
		case "false", "0", "no", "n":
			return int64(0), nil
		}
		return nil, fmt.Errorf("%w: column %q expects BOOLEAN, got %q", ErrTypeMismatch, c.Name, raw)
	case strings.Contains(typ, "INT"):
		n, err := strconv.ParseInt(raw, 10, 64)
		if err != nil {
			return nil, fmt.Errorf("%w: column %q expects INTEGER, got %q", ErrTypeMismatch, c.Name, raw)
		}
		return n, nil
	case strings.Contains(typ, "REAL"), strings.Contains(typ, "FLOA"),
		strings.Contains(typ, "DOUB"), strings.Contains(typ, "NUMERIC"),
		strings.Contains(typ, "DECIMAL"):
		f, err := strconv.ParseFloat(raw, 64)
		if err != nil {
			return nil, fmt.Errorf("%w: column %q expects REAL, got %q", ErrTypeMismatch, c.Name, raw)
		}
		return f, nil
	default:
		return raw, nil
	}
}
