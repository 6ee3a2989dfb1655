package commands

import (
	"errors"
	"fmt"
	"io"
	"strings"

	"github.com/chzyer/readline"
	"github.com/spf13/cobra"

	"github.com/nextgenfitness/backend/internal/export"
	"github.com/nextgenfitness/backend/internal/store"
)

// lineReader supplies the shell's input. The production implementation wraps
// readline; tests inject a scripted reader.
type lineReader interface {
	ReadLine(prompt string) (string, error)
	Close() error
}

type readlineReader struct {
	rl *readline.Instance
}

func newReadlineReader() (*readlineReader, error) {
	rl, err := readline.New("")
	if err != nil {
		return nil, fmt.Errorf("failed to initialize input: %w", err)
	}
	return &readlineReader{rl: rl}, nil
}

func (r *readlineReader) ReadLine(prompt string) (string, error) {
	r.rl.SetPrompt(prompt)
	line, err := r.rl.Readline()
	if errors.Is(err, readline.ErrInterrupt) {
		return "", io.EOF
	}
	return line, err
}

func (r *readlineReader) Close() error {
	return r.rl.Close()
}

// shell is the interactive numbered-menu dispatcher. It is single-threaded:
// every selected operation runs to completion before the menu reappears, and
// store errors print and return to the menu instead of terminating.
type shell struct {
	cmdCtx *CommandContext
	cmd    *cobra.Command
	in     lineReader
}

// RunShell starts the interactive admin shell on the command's context.
func RunShell(cmd *cobra.Command, cmdCtx *CommandContext) error {
	in, err := newReadlineReader()
	if err != nil {
		return err
	}
	defer func() { _ = in.Close() }()

	sh := &shell{cmdCtx: cmdCtx, cmd: cmd, in: in}
	return sh.run()
}

func (s *shell) printf(format string, a ...any) {
	_, _ = fmt.Fprintf(s.cmd.OutOrStdout(), format, a...)
}

func (s *shell) println(a ...any) {
	_, _ = fmt.Fprintln(s.cmd.OutOrStdout(), a...)
}

func (s *shell) fail(err error) {
	_, _ = fmt.Fprintf(s.cmd.ErrOrStderr(), "Error: %v\n", err)
}

// prompt reads one trimmed line. io.EOF propagates so ^D leaves the shell.
func (s *shell) prompt(p string) (string, error) {
	line, err := s.in.ReadLine(p)
	if err != nil {
		return "", err
	}
	return strings.TrimSpace(line), nil
}

// confirm asks a y/n question.
func (s *shell) confirm(p string) (bool, error) {
	answer, err := s.prompt(p + " (y/n): ")
	if err != nil {
		return false, err
	}
	answer = strings.ToLower(answer)
	return answer == "y" || answer == "yes", nil
}

func (s *shell) run() error {
	for {
		s.println()
		s.println("=== NextGenFitness Database Manager ===")
		s.println("1. Manage tables")
		s.println("2. Create table")
		s.println("3. Backup database")
		s.println("4. Exit")

		choice, err := s.prompt("\nEnter your choice (1-4): ")
		if errors.Is(err, io.EOF) {
			return nil
		}
		if err != nil {
			return err
		}

		switch choice {
		case "1":
			if err := s.manageTables(); errors.Is(err, io.EOF) {
				return nil
			}
		case "2":
			s.runOp(s.createTable)
		case "3":
			s.runOp(s.backup)
		case "4":
			s.println("Goodbye!")
			return nil
		default:
			s.println("Invalid choice. Please try again.")
		}
	}
}

// runOp executes a menu operation; io.EOF ends the shell, any other error
// prints and the menu loop continues.
func (s *shell) runOp(fn func() error) {
	if err := fn(); err != nil && !errors.Is(err, io.EOF) {
		s.fail(err)
	}
}

func (s *shell) manageTables() error {
	for {
		s.println()
		s.println("=== Table Management ===")
		s.println("1. List tables")
		s.println("2. View table data")
		s.println("3. Insert record")
		s.println("4. Update record")
		s.println("5. Delete record")
		s.println("6. Drop table")
		s.println("7. Export table")
		s.println("8. Analyze table")
		s.println("9. Modify table")
		s.println("10. SQL prompt")
		s.println("11. Return to main menu")

		choice, err := s.prompt("\nEnter your choice (1-11): ")
		if err != nil {
			return err
		}

		switch choice {
		case "1":
			s.runOp(s.listTables)
		case "2":
			s.runOp(func() error { return s.withTable(s.viewTable) })
		case "3":
			s.runOp(func() error { return s.withTable(s.insertRecord) })
		case "4":
			s.runOp(func() error { return s.withTable(s.updateRecord) })
		case "5":
			s.runOp(func() error { return s.withTable(s.deleteRecord) })
		case "6":
			s.runOp(func() error { return s.withTable(s.dropTable) })
		case "7":
			s.runOp(func() error { return s.withTable(s.exportTable) })
		case "8":
			s.runOp(func() error { return s.withTable(s.analyzeTable) })
		case "9":
			s.runOp(func() error { return s.withTable(s.modifyTable) })
		case "10":
			s.runOp(s.sqlPrompt)
		case "11":
			return nil
		default:
			s.println("Invalid choice. Please try again.")
		}
	}
}

// withTable prompts for a table name, validates it, and passes it to fn.
func (s *shell) withTable(fn func(table string) error) error {
	name, err := s.prompt("Enter table name: ")
	if err != nil {
		return err
	}
	if !store.ValidIdent(name) {
		return fmt.Errorf("%w: %q", store.ErrInvalidName, name)
	}
	return fn(name)
}

func (s *shell) listTables() error {
	tables, err := s.cmdCtx.Store.Tables(s.cmd.Context())
	if err != nil {
		return err
	}
	if len(tables) == 0 {
		s.println("No tables found")
		return nil
	}
	s.println()
	for _, name := range tables {
		s.println("  " + name)
	}
	return nil
}

func (s *shell) viewTable(table string) error {
	rs, err := s.cmdCtx.Store.Rows(s.cmd.Context(), table)
	if err != nil {
		return err
	}
	renderTable(s.cmdCtx.Renderer, rs)
	return nil
}

func (s *shell) insertRecord(table string) error {
	ctx := s.cmd.Context()
	st := s.cmdCtx.Store

	t, err := st.Describe(ctx, table)
	if err != nil {
		return err
	}

	values := make([]string, len(t.Columns))
	for i, c := range t.Columns {
		hint := c.Type
		if c.PrimaryKey {
			hint += ", primary key; leave blank to auto-assign"
		}
		v, err := s.prompt(fmt.Sprintf("Enter %s (%s): ", c.Name, hint))
		if err != nil {
			return err
		}
		values[i] = v
	}

	return logged(ctx, st, "insert", table, "", func() error {
		if err := st.Insert(ctx, table, values); err != nil {
			return err
		}
		s.println("Record inserted")
		return nil
	})
}

func (s *shell) updateRecord(table string) error {
	ctx := s.cmd.Context()
	st := s.cmdCtx.Store

	t, err := st.Describe(ctx, table)
	if err != nil {
		return err
	}
	pk, ok := t.PrimaryKey()
	if !ok {
		return fmt.Errorf("%w: %s", store.ErrNoPrimaryKey, table)
	}

	pkValue, err := s.prompt(fmt.Sprintf("Enter the %s of the record to update: ", pk.Name))
	if err != nil {
		return err
	}

	// Sparse patch: pressing enter keeps the current value.
	changes := make(map[string]string)
	s.println("Press enter to keep the current value, or type a new one.")
	for _, c := range t.Columns {
		if c.PrimaryKey {
			continue
		}
		v, err := s.in.ReadLine(fmt.Sprintf("New %s (%s): ", c.Name, c.Type))
		if err != nil {
			return err
		}
		if v == "" {
			continue
		}
		changes[c.Name] = strings.TrimSpace(v)
	}
	if len(changes) == 0 {
		s.println("Nothing to update")
		return nil
	}

	return logged(ctx, st, "update", table, pk.Name+"="+pkValue, func() error {
		if err := st.Update(ctx, table, pkValue, changes); err != nil {
			return err
		}
		s.println("Record updated")
		return nil
	})
}

func (s *shell) deleteRecord(table string) error {
	ctx := s.cmd.Context()
	st := s.cmdCtx.Store

	t, err := st.Describe(ctx, table)
	if err != nil {
		return err
	}
	pk, ok := t.PrimaryKey()
	if !ok {
		return fmt.Errorf("%w: %s", store.ErrNoPrimaryKey, table)
	}

	pkValue, err := s.prompt(fmt.Sprintf("Enter the %s of the record to delete: ", pk.Name))
	if err != nil {
		return err
	}

	ok, err = s.confirm(fmt.Sprintf("Are you sure you want to delete record %s?", pkValue))
	if err != nil {
		return err
	}
	if !ok {
		s.println("Cancelled")
		return nil
	}

	return logged(ctx, st, "delete", table, pk.Name+"="+pkValue, func() error {
		if err := st.Delete(ctx, table, pkValue); err != nil {
			return err
		}
		s.println("Record deleted")
		return nil
	})
}

func (s *shell) dropTable(table string) error {
	ctx := s.cmd.Context()

	answer, err := s.prompt(fmt.Sprintf(
		"Are you sure you want to drop the table %q? This cannot be undone! (yes/no): ", table))
	if err != nil {
		return err
	}
	if strings.ToLower(answer) != "yes" {
		s.println("Cancelled")
		return nil
	}

	return logged(ctx, s.cmdCtx.Store, "drop_table", table, "", func() error {
		if err := s.cmdCtx.Store.DropTable(ctx, table); err != nil {
			return err
		}
		s.printf("Table %s dropped\n", table)
		return nil
	})
}

func (s *shell) exportTable(table string) error {
	ctx := s.cmd.Context()
	st := s.cmdCtx.Store

	s.println("1. CSV")
	s.println("2. JSON")
	choice, err := s.prompt("Choose export format (1-2): ")
	if err != nil {
		return err
	}

	var format export.Format
	switch choice {
	case "1":
		format = export.FormatCSV
	case "2":
		format = export.FormatJSON
	default:
		return fmt.Errorf("invalid format choice %q", choice)
	}

	rs, err := st.Rows(ctx, table)
	if err != nil {
		return err
	}

	return logged(ctx, st, "export", table, string(format), func() error {
		path, err := export.Export(s.cmdCtx.Cfg.ExportsDir, table, rs, format)
		if err != nil {
			return err
		}
		s.printf("Exported %d rows to %s\n", rs.Len(), path)
		return nil
	})
}

func (s *shell) analyzeTable(table string) error {
	stats, err := s.cmdCtx.Store.Analyze(s.cmd.Context(), table)
	if err != nil {
		return err
	}
	renderStats(s.cmdCtx.Renderer, stats)
	return nil
}

func (s *shell) backup() error {
	ctx := s.cmd.Context()
	st := s.cmdCtx.Store

	return logged(ctx, st, "backup", "", s.cmdCtx.Cfg.BackupsDir, func() error {
		path, size, err := st.Backup(ctx, s.cmdCtx.Cfg.BackupsDir)
		if err != nil {
			return err
		}
		s.printf("Backup written to %s (%s)\n", path, humanBytes(size))
		return nil
	})
}

// sqlPrompt is a minimal SQL loop inside the shell. Statements accumulate
// until a semicolon; "exit" returns to the menu.
func (s *shell) sqlPrompt() error {
	s.println("Enter SQL statements ending with ';'. Type 'exit' to return.")

	var buffer strings.Builder
	for {
		p := "sql> "
		if buffer.Len() > 0 {
			p = " ...> "
		}
		line, err := s.prompt(p)
		if err != nil {
			return err
		}
		if buffer.Len() == 0 && strings.EqualFold(line, "exit") {
			return nil
		}
		if line == "" {
			continue
		}

		buffer.WriteString(line)
		if !strings.HasSuffix(line, ";") {
			buffer.WriteString(" ")
			continue
		}

		query := buffer.String()
		buffer.Reset()

		if err := executeSQL(s.cmd.Context(), s.cmdCtx.Renderer, s.cmdCtx.Store, query, "table"); err != nil {
			s.fail(err)
		}
	}
}
