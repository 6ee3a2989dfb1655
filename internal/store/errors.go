package store

import "errors"

var (
	// ErrNoSuchTable is returned when an operation names a table that does
	// not exist in the database.
	ErrNoSuchTable = errors.New("no such table")

	// ErrNoPrimaryKey is returned when a record operation requires a primary
	// key and the table does not declare one.
	ErrNoPrimaryKey = errors.New("table has no primary key")

	// ErrInvalidName is returned when a table or column name contains
	// characters outside the allowed set (letters, digits, underscore).
	ErrInvalidName = errors.New("invalid identifier")

	// ErrInsufficientColumns is returned when a table definition would leave
	// fewer than one non-key column, or declares more than one primary key.
	ErrInsufficientColumns = errors.New("insufficient column definitions")

	// ErrColumnNotFound is returned when a column operation names a column
	// the table does not have.
	ErrColumnNotFound = errors.New("column not found")

	// ErrLastColumn is returned when dropping a column would leave the table
	// without any non-key columns.
	ErrLastColumn = errors.New("cannot drop last data column")

	// ErrTypeMismatch is returned when a supplied value cannot be converted
	// to the column's declared type.
	ErrTypeMismatch = errors.New("value does not match column type")

	// ErrRecordNotFound is returned when no row matches the given key.
	ErrRecordNotFound = errors.New("record not found")

	// ErrDuplicateUsername is returned when a signup reuses a taken username.
	ErrDuplicateUsername = errors.New("username already exists")

	// ErrDuplicateEmail is returned when a signup reuses a taken email.
	ErrDuplicateEmail = errors.New("email already exists")
)
