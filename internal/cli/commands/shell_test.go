package commands

import (
	"bytes"
	"context"
	"io"
	"os"
	"testing"

	"github.com/spf13/cobra"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/nextgenfitness/backend/internal/cli/output"
	"github.com/nextgenfitness/backend/internal/config"
	"github.com/nextgenfitness/backend/internal/store"
	"github.com/nextgenfitness/backend/internal/testutil"
)

// scriptReader feeds a fixed sequence of lines to the shell and then EOF.
type scriptReader struct {
	lines []string
	pos   int
}

func (r *scriptReader) ReadLine(string) (string, error) {
	if r.pos >= len(r.lines) {
		return "", io.EOF
	}
	line := r.lines[r.pos]
	r.pos++
	return line, nil
}

func (r *scriptReader) Close() error { return nil }

// newTestShell builds a shell over a fresh migrated database, scripted with
// the given input lines.
func newTestShell(t *testing.T, cfg *config.Config, lines ...string) (*shell, *store.Store, *bytes.Buffer) {
	t.Helper()

	st, err := store.Open(cfg.Database)
	require.NoError(t, err)
	t.Cleanup(func() { _ = st.Close() })
	require.NoError(t, st.Migrate())

	var buf bytes.Buffer
	cmd := &cobra.Command{}
	cmd.SetOut(&buf)
	cmd.SetErr(&buf)
	cmd.SetContext(context.Background())

	cmdCtx := &CommandContext{
		Cfg:      cfg,
		Logger:   testutil.NewTestLogger(t),
		Store:    st,
		Renderer: output.NewRenderer(&buf, &buf, output.ModeText),
	}
	sh := &shell{cmdCtx: cmdCtx, cmd: cmd, in: &scriptReader{lines: lines}}
	return sh, st, &buf
}

func seedShellWorkouts(t *testing.T, st *store.Store) {
	t.Helper()
	ctx := context.Background()
	require.NoError(t, st.CreateTable(ctx, "workouts", []store.ColumnDef{
		{Name: "id", Type: "INTEGER", PrimaryKey: true},
		{Name: "title", Type: "TEXT", NotNull: true},
		{Name: "duration", Type: "INTEGER"},
	}))
	require.NoError(t, st.Insert(ctx, "workouts", []string{"", "Leg Day", "45"}))
	require.NoError(t, st.Insert(ctx, "workouts", []string{"", "Push Day", "60"}))
}

func TestShellExitsOnEOF(t *testing.T) {
	sh, _, _ := newTestShell(t, testConfig(t))
	require.NoError(t, sh.run())
}

func TestShellInvalidChoice(t *testing.T) {
	sh, _, buf := newTestShell(t, testConfig(t), "99", "4")
	require.NoError(t, sh.run())
	assert.Contains(t, buf.String(), "Invalid choice")
	assert.Contains(t, buf.String(), "Goodbye!")
}

func TestShellCreateTableAndInsert(t *testing.T) {
	sh, st, buf := newTestShell(t, testConfig(t),
		// Create table: routines(id INTEGER PK, title TEXT NOT NULL)
		"2",
		"routines",
		"", // default primary key name
		"title",
		"1", // TEXT
		"y", // required
		"n", // unique
		"n", // default value
		"done",
		"y", // confirm
		// Insert a record through table management.
		"1",
		"3",
		"routines",
		"", // blank id, auto-assigned
		"Leg Day",
		"11",
		"4",
	)
	require.NoError(t, sh.run())

	out := buf.String()
	assert.Contains(t, out, "Table routines created")
	assert.Contains(t, out, "Record inserted")

	ctx := context.Background()
	desc, err := st.Describe(ctx, "routines")
	require.NoError(t, err)
	require.Len(t, desc.Columns, 2)
	assert.Equal(t, "id", desc.Columns[0].Name)
	assert.True(t, desc.Columns[0].PrimaryKey)
	title, ok := desc.Column("title")
	require.True(t, ok)
	assert.True(t, title.NotNull)

	rs, err := st.Rows(ctx, "routines")
	require.NoError(t, err)
	require.Equal(t, 1, rs.Len())
	assert.Equal(t, int64(1), rs.Rows[0][0])
	assert.Equal(t, "Leg Day", rs.Rows[0][1])
}

func TestShellCreateTableCancelled(t *testing.T) {
	sh, st, buf := newTestShell(t, testConfig(t),
		"2",
		"routines",
		"",
		"title",
		"1",
		"n",
		"n",
		"n",
		"done",
		"n", // do not create
		"4",
	)
	require.NoError(t, sh.run())
	assert.Contains(t, buf.String(), "Cancelled")

	_, err := st.Describe(context.Background(), "routines")
	assert.ErrorIs(t, err, store.ErrNoSuchTable)
}

func TestShellUpdateAndDeleteRecord(t *testing.T) {
	sh, st, buf := newTestShell(t, testConfig(t),
		"1",
		// Update record 1: new title, keep duration.
		"4",
		"workouts",
		"1",
		"Heavy Legs",
		"",
		// Delete record 2 after confirming.
		"5",
		"workouts",
		"2",
		"y",
		"11",
		"4",
	)
	seedShellWorkouts(t, st)
	require.NoError(t, sh.run())

	out := buf.String()
	assert.Contains(t, out, "Record updated")
	assert.Contains(t, out, "Record deleted")

	rs, err := st.Rows(context.Background(), "workouts")
	require.NoError(t, err)
	require.Equal(t, 1, rs.Len())
	assert.Equal(t, "Heavy Legs", rs.Rows[0][1])
	assert.Equal(t, int64(45), rs.Rows[0][2])
}

func TestShellDeleteRecordDeclined(t *testing.T) {
	sh, st, buf := newTestShell(t, testConfig(t),
		"1",
		"5",
		"workouts",
		"1",
		"n",
		"11",
		"4",
	)
	seedShellWorkouts(t, st)
	require.NoError(t, sh.run())
	assert.Contains(t, buf.String(), "Cancelled")

	rs, err := st.Rows(context.Background(), "workouts")
	require.NoError(t, err)
	assert.Equal(t, 2, rs.Len())
}

func TestShellDropTableRequiresTypedYes(t *testing.T) {
	sh, st, buf := newTestShell(t, testConfig(t),
		"1",
		"6",
		"workouts",
		"y", // a bare "y" is not enough
		"6",
		"workouts",
		"yes",
		"11",
		"4",
	)
	seedShellWorkouts(t, st)
	require.NoError(t, sh.run())

	out := buf.String()
	assert.Contains(t, out, "Cancelled")
	assert.Contains(t, out, "Table workouts dropped")

	_, err := st.Describe(context.Background(), "workouts")
	assert.ErrorIs(t, err, store.ErrNoSuchTable)
}

func TestShellModifyTableRenameColumn(t *testing.T) {
	sh, st, _ := newTestShell(t, testConfig(t),
		"1",
		"9",
		"workouts",
		"2",
		"duration",
		"minutes",
		"11",
		"4",
	)
	seedShellWorkouts(t, st)
	require.NoError(t, sh.run())

	desc, err := st.Describe(context.Background(), "workouts")
	require.NoError(t, err)
	_, ok := desc.Column("minutes")
	assert.True(t, ok)
	_, ok = desc.Column("duration")
	assert.False(t, ok)
}

func TestShellModifyTableDropColumn(t *testing.T) {
	sh, st, _ := newTestShell(t, testConfig(t),
		"1",
		"9",
		"workouts",
		"3",
		"duration",
		"y",
		"11",
		"4",
	)
	seedShellWorkouts(t, st)
	require.NoError(t, sh.run())

	desc, err := st.Describe(context.Background(), "workouts")
	require.NoError(t, err)
	_, ok := desc.Column("duration")
	assert.False(t, ok)

	// Rows survive the rebuild.
	rs, err := st.Rows(context.Background(), "workouts")
	require.NoError(t, err)
	assert.Equal(t, 2, rs.Len())
}

func TestShellExportTable(t *testing.T) {
	cfg := testConfig(t)
	sh, st, buf := newTestShell(t, cfg,
		"1",
		"7",
		"workouts",
		"1", // CSV
		"11",
		"4",
	)
	seedShellWorkouts(t, st)
	require.NoError(t, sh.run())
	assert.Contains(t, buf.String(), "Exported 2 rows")

	entries, err := os.ReadDir(cfg.ExportsDir)
	require.NoError(t, err)
	require.Len(t, entries, 1)
}

func TestShellInvalidTableName(t *testing.T) {
	sh, _, buf := newTestShell(t, testConfig(t),
		"1",
		"2",
		"workouts; DROP TABLE users",
		"11",
		"4",
	)
	require.NoError(t, sh.run())
	assert.Contains(t, buf.String(), "Error:")
}

func TestShellSQLPrompt(t *testing.T) {
	sh, st, buf := newTestShell(t, testConfig(t),
		"1",
		"10",
		"DELETE FROM workouts",
		"WHERE id = 1;",
		"exit",
		"11",
		"4",
	)
	seedShellWorkouts(t, st)
	require.NoError(t, sh.run())
	assert.Contains(t, buf.String(), "Rows affected: 1")

	rs, err := st.Rows(context.Background(), "workouts")
	require.NoError(t, err)
	assert.Equal(t, 1, rs.Len())
}

func TestShellBackup(t *testing.T) {
	cfg := testConfig(t)
	sh, st, buf := newTestShell(t, cfg,
		"3",
		"4",
	)
	seedShellWorkouts(t, st)
	require.NoError(t, sh.run())
	assert.Contains(t, buf.String(), "Backup written to")

	entries, err := os.ReadDir(cfg.BackupsDir)
	require.NoError(t, err)
	require.Len(t, entries, 1)
}

func TestShellMutationsAreLogged(t *testing.T) {
	sh, st, _ := newTestShell(t, testConfig(t),
		"1",
		"5",
		"workouts",
		"1",
		"y",
		"11",
		"4",
	)
	seedShellWorkouts(t, st)
	require.NoError(t, sh.run())

	ops, err := st.RecentOperations(context.Background(), 10)
	require.NoError(t, err)
	require.NotEmpty(t, ops)
	assert.Equal(t, "delete", ops[0].Name)
	assert.Equal(t, "workouts", ops[0].TargetTable)
	assert.Equal(t, store.OperationSuccess, ops[0].Status)
}
