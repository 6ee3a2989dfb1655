package store

import (
	"context"
	"database/sql"
	"fmt"
	"strconv"
	"strings"
)

// ColumnTypes lists the declared types accepted when creating columns.
var ColumnTypes = []string{"TEXT", "INTEGER", "REAL", "BOOLEAN", "TIMESTAMP", "BLOB"}

// ValidColumnType reports whether t is one of the accepted declared types.
func ValidColumnType(t string) bool {
	up := strings.ToUpper(t)
	for _, ct := range ColumnTypes {
		if up == ct {
			return true
		}
	}
	return false
}

// ColumnDef describes a column for table creation.
type ColumnDef struct {
	Name       string
	Type       string
	PrimaryKey bool
	NotNull    bool
	Unique     bool
	Default    string
}

func (c ColumnDef) render() string {
	var b strings.Builder
	b.WriteString(c.Name)
	b.WriteByte(' ')
	b.WriteString(strings.ToUpper(c.Type))
	if c.PrimaryKey {
		b.WriteString(" PRIMARY KEY")
	}
	if c.NotNull {
		b.WriteString(" NOT NULL")
	}
	if c.Unique {
		b.WriteString(" UNIQUE")
	}
	if c.Default != "" {
		b.WriteString(" DEFAULT ")
		b.WriteString(defaultLiteral(c.Type, c.Default))
	}
	return b.String()
}

// defaultLiteral renders a DEFAULT clause value. Numeric defaults and the
// CURRENT_* keywords pass through; everything else becomes a quoted string.
func defaultLiteral(typ, val string) string {
	up := strings.ToUpper(val)
	if up == "CURRENT_TIMESTAMP" || up == "CURRENT_DATE" || up == "CURRENT_TIME" {
		return up
	}
	if _, err := strconv.ParseFloat(val, 64); err == nil {
		return val
	}
	return "'" + strings.ReplaceAll(val, "'", "''") + "'"
}

// CreateTable creates a new table. The definition must name exactly one
// primary key column and at least one data column; names are checked against
// the identifier allow-list and types against ColumnTypes before any SQL is
// built.
func (s *Store) CreateTable(ctx context.Context, name string, cols []ColumnDef) error {
	if err := s.ready(); err != nil {
		return err
	}
	if !ValidIdent(name) {
		return fmt.Errorf("%w: %q", ErrInvalidName, name)
	}

	var pkCount, dataCount int
	for _, c := range cols {
		if !ValidIdent(c.Name) {
			return fmt.Errorf("%w: %q", ErrInvalidName, c.Name)
		}
		if !ValidColumnType(c.Type) {
			return fmt.Errorf("%w: unsupported type %q for column %q", ErrTypeMismatch, c.Type, c.Name)
		}
		if c.PrimaryKey {
			pkCount++
		} else {
			dataCount++
		}
	}
	if pkCount == 0 {
		return fmt.Errorf("%w: table %q declares no primary key", ErrNoPrimaryKey, name)
	}
	if pkCount > 1 {
		return fmt.Errorf("%w: table %q declares %d primary keys", ErrInsufficientColumns, name, pkCount)
	}
	if dataCount == 0 {
		return fmt.Errorf("%w: table %q needs at least one data column", ErrInsufficientColumns, name)
	}

	defs := make([]string, len(cols))
	for i, c := range cols {
		defs[i] = c.render()
	}

	stmt := fmt.Sprintf("CREATE TABLE %s (%s)", name, strings.Join(defs, ", "))
	if _, err := s.db.ExecContext(ctx, stmt); err != nil {
		return fmt.Errorf("failed to create table %s: %w", name, err)
	}
	return nil
}

// DropTable removes a table and everything in it. Confirmation is the
// caller's responsibility.
func (s *Store) DropTable(ctx context.Context, table string) error {
	if err := s.ready(); err != nil {
		return err
	}
	if _, err := s.Describe(ctx, table); err != nil {
		return err
	}

	if _, err := s.db.ExecContext(ctx, fmt.Sprintf("DROP TABLE %s", table)); err != nil {
		return fmt.Errorf("failed to drop table %s: %w", table, err)
	}
	return nil
}

// AddColumn appends a nullable column to an existing table. Existing rows
// carry NULL for the new column.
func (s *Store) AddColumn(ctx context.Context, table, column, typ string) error {
	if err := s.ready(); err != nil {
		return err
	}
	if !ValidIdent(column) {
		return fmt.Errorf("%w: %q", ErrInvalidName, column)
	}
	if !ValidColumnType(typ) {
		return fmt.Errorf("%w: unsupported type %q for column %q", ErrTypeMismatch, typ, column)
	}
	if _, err := s.Describe(ctx, table); err != nil {
		return err
	}

	stmt := fmt.Sprintf("ALTER TABLE %s ADD COLUMN %s %s", table, column, strings.ToUpper(typ))
	if _, err := s.db.ExecContext(ctx, stmt); err != nil {
		return fmt.Errorf("failed to add column %s to %s: %w", column, table, err)
	}
	return nil
}

// RenameColumn renames a column by rebuilding the table: the current rows are
// copied into a shadow table under a projection that aliases the old name to
// the new one, the original is dropped, and the shadow takes its name. All
// steps share one transaction, so a failure anywhere leaves the original
// untouched.
func (s *Store) RenameColumn(ctx context.Context, table, oldName, newName string) error {
	if err := s.ready(); err != nil {
		return err
	}
	if !ValidIdent(newName) {
		return fmt.Errorf("%w: %q", ErrInvalidName, newName)
	}

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback()

	t, err := describeWith(ctx, tx, table)
	if err != nil {
		return err
	}
	if _, ok := t.Column(oldName); !ok {
		return fmt.Errorf("%w: %s.%s", ErrColumnNotFound, table, oldName)
	}
	if _, ok := t.Column(newName); ok {
		return fmt.Errorf("column %q already exists in %s", newName, table)
	}

	projection := make([]string, len(t.Columns))
	for i, c := range t.Columns {
		if c.Name == oldName {
			projection[i] = fmt.Sprintf("%s AS %s", oldName, newName)
		} else {
			projection[i] = c.Name
		}
	}

	if err := rebuildTable(ctx, tx, table, projection); err != nil {
		return err
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("failed to commit transaction: %w", err)
	}
	return nil
}

// DropColumn removes a column by rebuilding the table without it. The last
// data column of a table cannot be dropped.
func (s *Store) DropColumn(ctx context.Context, table, column string) error {
	if err := s.ready(); err != nil {
		return err
	}

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback()

	t, err := describeWith(ctx, tx, table)
	if err != nil {
		return err
	}
	dropped, ok := t.Column(column)
	if !ok {
		return fmt.Errorf("%w: %s.%s", ErrColumnNotFound, table, column)
	}

	var projection []string
	var dataLeft int
	for _, c := range t.Columns {
		if c.Name == column {
			continue
		}
		projection = append(projection, c.Name)
		if !c.PrimaryKey {
			dataLeft++
		}
	}
	if len(projection) == 0 || (!dropped.PrimaryKey && dataLeft == 0) {
		return fmt.Errorf("%w: %s.%s", ErrLastColumn, table, column)
	}

	if err := rebuildTable(ctx, tx, table, projection); err != nil {
		return err
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("failed to commit transaction: %w", err)
	}
	return nil
}

// rebuildTable runs the shadow-copy sequence inside tx: create <table>_new
// from the projection, drop the original, rename the shadow into place.
func rebuildTable(ctx context.Context, tx *sql.Tx, table string, projection []string) error {
	shadow := table + "_new"

	stmt := fmt.Sprintf("CREATE TABLE %s AS SELECT %s FROM %s", shadow, strings.Join(projection, ", "), table)
	if _, err := tx.ExecContext(ctx, stmt); err != nil {
		return fmt.Errorf("failed to build shadow table for %s: %w", table, err)
	}

	if _, err := tx.ExecContext(ctx, fmt.Sprintf("DROP TABLE %s", table)); err != nil {
		return fmt.Errorf("failed to drop original table %s: %w", table, err)
	}

	if _, err := tx.ExecContext(ctx, fmt.Sprintf("ALTER TABLE %s RENAME TO %s", shadow, table)); err != nil {
		return fmt.Errorf("failed to rename shadow table to %s: %w", table, err)
	}

	return nil
}
