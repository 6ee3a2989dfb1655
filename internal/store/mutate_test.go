package store

import (
	"context"
	"errors"
	"testing"

	"github.com/DATA-DOG/go-sqlmock"
)

func TestCreateTableValidation(t *testing.T) {
	s := setupTestStore(t)
	ctx := context.Background()

	tests := []struct {
		name    string
		table   string
		cols    []ColumnDef
		wantErr error
	}{
		{
			name:    "bad table name",
			table:   "bad name",
			cols:    []ColumnDef{{Name: "id", Type: "INTEGER", PrimaryKey: true}, {Name: "x", Type: "TEXT"}},
			wantErr: ErrInvalidName,
		},
		{
			name:    "bad column name",
			table:   "t",
			cols:    []ColumnDef{{Name: "id", Type: "INTEGER", PrimaryKey: true}, {Name: "bad col", Type: "TEXT"}},
			wantErr: ErrInvalidName,
		},
		{
			name:    "no primary key",
			table:   "t",
			cols:    []ColumnDef{{Name: "x", Type: "TEXT"}},
			wantErr: ErrNoPrimaryKey,
		},
		{
			name: "two primary keys",
			table: "t",
			cols: []ColumnDef{
				{Name: "a", Type: "INTEGER", PrimaryKey: true},
				{Name: "b", Type: "INTEGER", PrimaryKey: true},
				{Name: "x", Type: "TEXT"},
			},
			wantErr: ErrInsufficientColumns,
		},
		{
			name:    "only a primary key",
			table:   "t",
			cols:    []ColumnDef{{Name: "id", Type: "INTEGER", PrimaryKey: true}},
			wantErr: ErrInsufficientColumns,
		},
		{
			name:    "unsupported type",
			table:   "t",
			cols:    []ColumnDef{{Name: "id", Type: "INTEGER", PrimaryKey: true}, {Name: "x", Type: "VARCHAR(9000)"}},
			wantErr: ErrTypeMismatch,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := s.CreateTable(ctx, tt.table, tt.cols)
			if !errors.Is(err, tt.wantErr) {
				t.Errorf("expected %v, got %v", tt.wantErr, err)
			}
			// Validation failures must not leave a table behind.
			if _, err := s.Describe(ctx, "t"); !errors.Is(err, ErrNoSuchTable) {
				t.Errorf("table t should not exist after failed creation")
			}
		})
	}
}

func TestCreateTableWithConstraints(t *testing.T) {
	s := setupTestStore(t)
	ctx := context.Background()

	err := s.CreateTable(ctx, "members", []ColumnDef{
		{Name: "id", Type: "INTEGER", PrimaryKey: true},
		{Name: "handle", Type: "TEXT", NotNull: true, Unique: true},
		{Name: "active", Type: "BOOLEAN", Default: "true"},
		{Name: "joined", Type: "TIMESTAMP", Default: "CURRENT_TIMESTAMP"},
	})
	if err != nil {
		t.Fatalf("failed to create table: %v", err)
	}

	tbl, err := s.Describe(ctx, "members")
	if err != nil {
		t.Fatalf("failed to describe: %v", err)
	}
	if len(tbl.Columns) != 4 {
		t.Fatalf("expected 4 columns, got %d", len(tbl.Columns))
	}

	handle, _ := tbl.Column("handle")
	if !handle.NotNull {
		t.Error("expected handle NOT NULL")
	}
}

func TestDropTable(t *testing.T) {
	s := setupTestStore(t)
	createWorkoutTable(t, s)
	ctx := context.Background()

	if err := s.DropTable(ctx, "workouts"); err != nil {
		t.Fatalf("failed to drop table: %v", err)
	}
	if _, err := s.Describe(ctx, "workouts"); !errors.Is(err, ErrNoSuchTable) {
		t.Errorf("expected table to be gone, got %v", err)
	}

	if err := s.DropTable(ctx, "workouts"); !errors.Is(err, ErrNoSuchTable) {
		t.Errorf("expected ErrNoSuchTable on second drop, got %v", err)
	}
}

func TestAddColumn(t *testing.T) {
	s := setupTestStore(t)
	createWorkoutTable(t, s)
	ctx := context.Background()

	if err := s.AddColumn(ctx, "workouts", "notes", "TEXT"); err != nil {
		t.Fatalf("failed to add column: %v", err)
	}

	rs, err := s.Rows(ctx, "workouts")
	if err != nil {
		t.Fatalf("failed to read rows: %v", err)
	}
	// Existing rows carry NULL in the new column.
	for _, row := range rs.Rows {
		if row[3] != nil {
			t.Errorf("expected NULL in new column, got %v", row[3])
		}
	}
}

func TestRenameColumnPreservesData(t *testing.T) {
	s := setupTestStore(t)
	createWorkoutTable(t, s)
	ctx := context.Background()

	before, err := s.Rows(ctx, "workouts")
	if err != nil {
		t.Fatalf("failed to read rows: %v", err)
	}

	if err := s.RenameColumn(ctx, "workouts", "title", "name"); err != nil {
		t.Fatalf("failed to rename column: %v", err)
	}

	after, err := s.Rows(ctx, "workouts")
	if err != nil {
		t.Fatalf("failed to read rows after rename: %v", err)
	}

	if after.Len() != before.Len() {
		t.Fatalf("row count changed: %d -> %d", before.Len(), after.Len())
	}
	if after.Columns[1] != "name" {
		t.Errorf("expected renamed column name, got %s", after.Columns[1])
	}
	for i := range before.Rows {
		for j := range before.Rows[i] {
			if before.Rows[i][j] != after.Rows[i][j] {
				t.Errorf("row %d col %d changed: %v -> %v", i, j, before.Rows[i][j], after.Rows[i][j])
			}
		}
	}
}

func TestRenameColumnErrors(t *testing.T) {
	s := setupTestStore(t)
	createWorkoutTable(t, s)
	ctx := context.Background()

	if err := s.RenameColumn(ctx, "workouts", "missing", "x"); !errors.Is(err, ErrColumnNotFound) {
		t.Errorf("expected ErrColumnNotFound, got %v", err)
	}
	if err := s.RenameColumn(ctx, "workouts", "title", "bad name"); !errors.Is(err, ErrInvalidName) {
		t.Errorf("expected ErrInvalidName, got %v", err)
	}
	// Renaming onto an existing column must fail before any rebuild.
	if err := s.RenameColumn(ctx, "workouts", "title", "duration"); err == nil {
		t.Error("expected error renaming onto existing column")
	}

	rs, err := s.Rows(ctx, "workouts")
	if err != nil {
		t.Fatalf("failed to read rows: %v", err)
	}
	if rs.Len() != 2 {
		t.Errorf("failed renames must not change data, got %d rows", rs.Len())
	}
}

func TestDropColumn(t *testing.T) {
	s := setupTestStore(t)
	createWorkoutTable(t, s)
	ctx := context.Background()

	if err := s.DropColumn(ctx, "workouts", "duration"); err != nil {
		t.Fatalf("failed to drop column: %v", err)
	}

	tbl, err := s.Describe(ctx, "workouts")
	if err != nil {
		t.Fatalf("failed to describe: %v", err)
	}
	if _, ok := tbl.Column("duration"); ok {
		t.Error("duration should be gone")
	}

	rs, err := s.Rows(ctx, "workouts")
	if err != nil {
		t.Fatalf("failed to read rows: %v", err)
	}
	if rs.Len() != 2 {
		t.Errorf("expected 2 rows after drop, got %d", rs.Len())
	}
}

func TestDropColumnThenReAddStartsNull(t *testing.T) {
	s := setupTestStore(t)
	createWorkoutTable(t, s)
	ctx := context.Background()

	if err := s.DropColumn(ctx, "workouts", "duration"); err != nil {
		t.Fatalf("failed to drop column: %v", err)
	}
	if err := s.AddColumn(ctx, "workouts", "duration", "INTEGER"); err != nil {
		t.Fatalf("failed to re-add column: %v", err)
	}

	rs, err := s.Rows(ctx, "workouts")
	if err != nil {
		t.Fatalf("failed to read rows: %v", err)
	}
	idx := -1
	for i, c := range rs.Columns {
		if c == "duration" {
			idx = i
		}
	}
	if idx < 0 {
		t.Fatal("duration column missing")
	}
	for _, row := range rs.Rows {
		if row[idx] != nil {
			t.Errorf("re-added column must not resurrect old values, got %v", row[idx])
		}
	}
}

func TestDropColumnErrors(t *testing.T) {
	s := setupTestStore(t)
	ctx := context.Background()

	err := s.CreateTable(ctx, "tiny", []ColumnDef{
		{Name: "id", Type: "INTEGER", PrimaryKey: true},
		{Name: "only", Type: "TEXT"},
	})
	if err != nil {
		t.Fatalf("failed to create table: %v", err)
	}

	if err := s.DropColumn(ctx, "tiny", "missing"); !errors.Is(err, ErrColumnNotFound) {
		t.Errorf("expected ErrColumnNotFound, got %v", err)
	}
	if err := s.DropColumn(ctx, "tiny", "only"); !errors.Is(err, ErrLastColumn) {
		t.Errorf("expected ErrLastColumn, got %v", err)
	}
}

// TestRebuildRollsBackOnFailure injects a failure between shadow-table
// creation and the original drop and verifies the whole transaction rolls
// back.
func TestRebuildRollsBackOnFailure(t *testing.T) {
	db, mock, err := sqlmock.New()
	if err != nil {
		t.Fatalf("failed to create sqlmock: %v", err)
	}
	defer db.Close()

	s := &Store{db: db, path: "mock"}
	ctx := context.Background()

	mock.ExpectBegin()
	mock.ExpectQuery("PRAGMA table_info").WillReturnRows(
		sqlmock.NewRows([]string{"cid", "name", "type", "notnull", "dflt_value", "pk"}).
			AddRow(0, "id", "INTEGER", 0, nil, 1).
			AddRow(1, "title", "TEXT", 1, nil, 0).
			AddRow(2, "duration", "INTEGER", 0, nil, 0))
	mock.ExpectExec("CREATE TABLE workouts_new AS SELECT").
		WillReturnResult(sqlmock.NewResult(0, 2))
	mock.ExpectExec("DROP TABLE workouts").
		WillReturnError(errors.New("disk I/O error"))
	mock.ExpectRollback()

	err = s.RenameColumn(ctx, "workouts", "title", "name")
	if err == nil {
		t.Fatal("expected rename to fail")
	}

	if err := mock.ExpectationsWereMet(); err != nil {
		t.Errorf("unmet expectations: %v", err)
	}
}
