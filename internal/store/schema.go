package store

import (
	"context"
	"database/sql"
	"fmt"
	"regexp"
)

// identPattern is the allow-list for table and column names. Identifiers are
// embedded in SQL text, so anything outside this set is rejected before a
// statement is built. Values never take this path; they are always bound as
// parameters.
var identPattern = regexp.MustCompile(`^[A-Za-z0-9_]+$`)

// ValidIdent reports whether s is acceptable as a table or column name.
func ValidIdent(s string) bool {
	return identPattern.MatchString(s)
}

// Column describes one column of a table as read from the catalog.
type Column struct {
	Name       string
	Type       string
	NotNull    bool
	Default    string
	PrimaryKey bool
	Position   int
}

// Table is a point-in-time descriptor of a table. Descriptors are recomputed
// from the catalog on every operation, never cached, so concurrent mutations
// are picked up.
type Table struct {
	Name    string
	Columns []Column
}

// PrimaryKey returns the table's primary key column and whether one exists.
func (t *Table) PrimaryKey() (Column, bool) {
	for _, c := range t.Columns {
		if c.PrimaryKey {
			return c, true
		}
	}
	return Column{}, false
}

// Column returns the named column and whether it exists.
func (t *Table) Column(name string) (Column, bool) {
	for _, c := range t.Columns {
		if c.Name == name {
			return c, true
		}
	}
	return Column{}, false
}

// DataColumns returns the non-key columns in declared order.
func (t *Table) DataColumns() []Column {
	var cols []Column
	for _, c := range t.Columns {
		if !c.PrimaryKey {
			cols = append(cols, c)
		}
	}
	return cols
}

// ColumnNames returns all column names in declared order.
func (t *Table) ColumnNames() []string {
	names := make([]string, len(t.Columns))
	for i, c := range t.Columns {
		names[i] = c.Name
	}
	return names
}

// querier is satisfied by *sql.DB and *sql.Tx, so descriptors can be read
// both standalone and from inside a rebuild transaction.
type querier interface {
	QueryContext(ctx context.Context, query string, args ...any) (*sql.Rows, error)
}

// Tables lists user tables in the database, excluding SQLite internals and
// migration bookkeeping.
func (s *Store) Tables(ctx context.Context) ([]string, error) {
	if err := s.ready(); err != nil {
		return nil, err
	}

	rows, err := s.db.QueryContext(ctx,
		`SELECT name FROM sqlite_master
		 WHERE type = 'table'
		   AND name NOT LIKE 'sqlite_%'
		   AND name NOT LIKE 'goose_%'
		 ORDER BY name`,
	)
	if err != nil {
		return nil, fmt.Errorf("failed to list tables: %w", err)
	}
	defer rows.Close()

	var tables []string
	for rows.Next() {
		var name string
		if err := rows.Scan(&name); err != nil {
			return nil, fmt.Errorf("failed to scan table name: %w", err)
		}
		tables = append(tables, name)
	}

	return tables, rows.Err()
}

// Describe reads the current descriptor for a table.
func (s *Store) Describe(ctx context.Context, table string) (*Table, error) {
	if err := s.ready(); err != nil {
		return nil, err
	}
	return describeWith(ctx, s.db, table)
}

func describeWith(ctx context.Context, q querier, table string) (*Table, error) {
	if !ValidIdent(table) {
		return nil, fmt.Errorf("%w: %q", ErrInvalidName, table)
	}

	rows, err := q.QueryContext(ctx, fmt.Sprintf("PRAGMA table_info(%s)", table))
	if err != nil {
		return nil, fmt.Errorf("failed to read table info: %w", err)
	}
	defer rows.Close()

	t := &Table{Name: table}
	for rows.Next() {
		var (
			cid     int
			name    string
			typ     string
			notNull int
			dflt    sql.NullString
			pk      int
		)
		if err := rows.Scan(&cid, &name, &typ, &notNull, &dflt, &pk); err != nil {
			return nil, fmt.Errorf("failed to scan column info: %w", err)
		}
		t.Columns = append(t.Columns, Column{
			Name:       name,
			Type:       typ,
			NotNull:    notNull != 0,
			Default:    dflt.String,
			PrimaryKey: pk > 0,
			Position:   cid,
		})
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to read table info: %w", err)
	}

	// PRAGMA table_info returns no rows for a missing table.
	if len(t.Columns) == 0 {
		return nil, fmt.Errorf("%w: %s", ErrNoSuchTable, table)
	}

	return t, nil
}
