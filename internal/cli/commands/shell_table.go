package commands

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/nextgenfitness/backend/internal/store"
)

// promptColumnType presents the fixed type menu and returns the selection.
func (s *shell) promptColumnType(types []string) (string, error) {
	for i, t := range types {
		s.printf("%d. %s\n", i+1, t)
	}
	choice, err := s.prompt(fmt.Sprintf("Enter your choice (1-%d): ", len(types)))
	if err != nil {
		return "", err
	}
	n, err := strconv.Atoi(choice)
	if err != nil || n < 1 || n > len(types) {
		return "", fmt.Errorf("invalid type choice %q", choice)
	}
	return types[n-1], nil
}

// createTable walks through the table-creation wizard: primary key first,
// then data columns until "done", then a summary and confirmation. Nothing
// touches the store until the user confirms.
func (s *shell) createTable() error {
	ctx := s.cmd.Context()
	st := s.cmdCtx.Store

	name, err := s.prompt("\nEnter the name for the new table: ")
	if err != nil {
		return err
	}
	if !store.ValidIdent(name) {
		return fmt.Errorf("%w: %q (letters, digits, and underscore only)", store.ErrInvalidName, name)
	}

	pkName, err := s.prompt("Enter primary key name (default: id): ")
	if err != nil {
		return err
	}
	if pkName == "" {
		pkName = "id"
	}
	if !store.ValidIdent(pkName) {
		return fmt.Errorf("%w: %q", store.ErrInvalidName, pkName)
	}

	cols := []store.ColumnDef{{Name: pkName, Type: "INTEGER", PrimaryKey: true}}

	for {
		colName, err := s.prompt("\nEnter column name (or 'done' to finish): ")
		if err != nil {
			return err
		}
		if strings.EqualFold(colName, "done") {
			break
		}
		if !store.ValidIdent(colName) {
			s.println("Invalid column name, use letters, digits, and underscore only")
			continue
		}

		typ, err := s.promptColumnType(store.ColumnTypes)
		if err != nil {
			s.fail(err)
			continue
		}

		def := store.ColumnDef{Name: colName, Type: typ}

		if def.NotNull, err = s.confirm("Should this column be required?"); err != nil {
			return err
		}
		if def.Unique, err = s.confirm("Should this column have unique values?"); err != nil {
			return err
		}

		wantDefault, err := s.confirm("Should this column have a default value?")
		if err != nil {
			return err
		}
		if wantDefault {
			if def.Default, err = s.prompt(fmt.Sprintf("Enter default %s value: ", strings.ToLower(typ))); err != nil {
				return err
			}
		}

		cols = append(cols, def)
	}

	if len(cols) < 2 {
		return fmt.Errorf("%w: at least one data column is required", store.ErrInsufficientColumns)
	}

	s.println("\nTable to create:")
	s.printf("  %s\n", name)
	for _, c := range cols {
		s.printf("    %s %s", c.Name, c.Type)
		if c.PrimaryKey {
			s.printf(" PRIMARY KEY")
		}
		if c.NotNull {
			s.printf(" NOT NULL")
		}
		if c.Unique {
			s.printf(" UNIQUE")
		}
		if c.Default != "" {
			s.printf(" DEFAULT %s", c.Default)
		}
		s.println()
	}

	ok, err := s.confirm("\nDo you want to create this table?")
	if err != nil {
		return err
	}
	if !ok {
		s.println("Cancelled")
		return nil
	}

	return logged(ctx, st, "create_table", name, "", func() error {
		if err := st.CreateTable(ctx, name, cols); err != nil {
			return err
		}
		s.printf("Table %s created\n", name)
		return nil
	})
}

// modifyTable routes the structural-change submenu: add, rename, or drop a
// column.
func (s *shell) modifyTable(table string) error {
	ctx := s.cmd.Context()
	st := s.cmdCtx.Store

	t, err := st.Describe(ctx, table)
	if err != nil {
		return err
	}
	s.println("\nCurrent columns:")
	renderDescriptor(s.cmdCtx.Renderer, t)

	s.println("1. Add column")
	s.println("2. Rename column")
	s.println("3. Drop column")
	s.println("4. Back")

	choice, err := s.prompt("\nEnter your choice (1-4): ")
	if err != nil {
		return err
	}

	switch choice {
	case "1":
		name, err := s.prompt("\nEnter new column name: ")
		if err != nil {
			return err
		}
		typ, err := s.promptColumnType(store.ColumnTypes)
		if err != nil {
			return err
		}
		return logged(ctx, st, "add_column", table, name+" "+typ, func() error {
			if err := st.AddColumn(ctx, table, name, typ); err != nil {
				return err
			}
			s.printf("Column %s added\n", name)
			return nil
		})

	case "2":
		oldName, err := s.prompt("\nEnter column name to rename: ")
		if err != nil {
			return err
		}
		newName, err := s.prompt("Enter new column name: ")
		if err != nil {
			return err
		}
		return logged(ctx, st, "rename_column", table, oldName+" -> "+newName, func() error {
			if err := st.RenameColumn(ctx, table, oldName, newName); err != nil {
				return err
			}
			s.printf("Column %s renamed to %s\n", oldName, newName)
			return nil
		})

	case "3":
		name, err := s.prompt("\nEnter column name to drop: ")
		if err != nil {
			return err
		}
		ok, err := s.confirm(fmt.Sprintf("Drop column %q and its data?", name))
		if err != nil {
			return err
		}
		if !ok {
			s.println("Cancelled")
			return nil
		}
		return logged(ctx, st, "drop_column", table, name, func() error {
			if err := st.DropColumn(ctx, table, name); err != nil {
				return err
			}
			s.printf("Column %s dropped\n", name)
			return nil
		})

	case "4":
		return nil

	default:
		s.println("Invalid choice. Please try again.")
		return nil
	}
}
