package commands

import (
	"context"
	"errors"
	"fmt"
	"io"
	"path/filepath"
	"strings"

	"github.com/chzyer/readline"
	"github.com/spf13/cobra"

	"github.com/nextgenfitness/backend/internal/store"
)

func runQueryREPL(cmd *cobra.Command, cmdCtx *CommandContext, opts *QueryOptions) error {
	ctx := cmd.Context()
	st := cmdCtx.Store

	historyFile := filepath.Join(filepath.Dir(st.Path()), ".nextgen_query_history")

	rl, err := readline.NewEx(&readline.Config{
		Prompt:          "nextgen> ",
		HistoryFile:     historyFile,
		AutoComplete:    newTableCompleter(ctx, st),
		InterruptPrompt: "^C",
		EOFPrompt:       ".quit",
	})
	if err != nil {
		return fmt.Errorf("failed to initialize REPL: %w", err)
	}
	defer func() { _ = rl.Close() }()

	out := cmd.OutOrStdout()
	_, _ = fmt.Fprintf(out, "NextGenFitness SQL REPL (database: %s)\n", st.Path())
	_, _ = fmt.Fprintln(out, "Type .help for commands, .quit to exit")
	_, _ = fmt.Fprintln(out)

	var buffer strings.Builder
	for {
		line, err := rl.Readline()
		if errors.Is(err, readline.ErrInterrupt) {
			buffer.Reset()
			rl.SetPrompt("nextgen> ")
			continue
		}
		if errors.Is(err, io.EOF) {
			break
		}

		line = strings.TrimSpace(line)
		if line == "" {
			continue
		}

		if strings.HasPrefix(line, ".") {
			if handleDotCommand(ctx, cmd, cmdCtx, line, opts.Format) {
				if line == ".quit" || line == ".exit" {
					break
				}
				continue
			}
		}

		// Accumulate multi-line SQL until a terminating semicolon.
		buffer.WriteString(line)
		if !strings.HasSuffix(line, ";") {
			buffer.WriteString(" ")
			rl.SetPrompt("    ...> ")
			continue
		}
		rl.SetPrompt("nextgen> ")

		query := buffer.String()
		buffer.Reset()

		if err := executeSQL(ctx, cmdCtx.Renderer, st, query, opts.Format); err != nil {
			_, _ = fmt.Fprintf(cmd.ErrOrStderr(), "Error: %v\n", err)
		}
		_, _ = fmt.Fprintln(out)
	}

	return nil
}

func handleDotCommand(ctx context.Context, cmd *cobra.Command, cmdCtx *CommandContext, line, format string) bool {
	parts := strings.Fields(line)
	command := strings.ToLower(parts[0])
	out := cmd.OutOrStdout()
	errOut := cmd.ErrOrStderr()

	switch command {
	case ".quit", ".exit":
		return true

	case ".help":
		printREPLHelp(out)
		return true

	case ".tables":
		tables, err := cmdCtx.Store.Tables(ctx)
		if err != nil {
			_, _ = fmt.Fprintf(errOut, "Error: %v\n", err)
			return true
		}
		for _, name := range tables {
			_, _ = fmt.Fprintln(out, name)
		}
		return true

	case ".schema":
		if len(parts) < 2 {
			_, _ = fmt.Fprintln(errOut, "Usage: .schema <table>")
			return true
		}
		t, err := cmdCtx.Store.Describe(ctx, parts[1])
		if err != nil {
			_, _ = fmt.Fprintf(errOut, "Error: %v\n", err)
			return true
		}
		renderDescriptor(cmdCtx.Renderer, t)
		return true

	case ".clear":
		fmt.Print("\033[H\033[2J")
		return true

	default:
		_, _ = fmt.Fprintf(errOut, "Unknown command: %s (type .help for commands)\n", command)
		return true
	}
}

func printREPLHelp(w io.Writer) {
	help := `
Commands:
  .help           Show this help message
  .tables         List all tables
  .schema <name>  Show the column layout of a table
  .clear          Clear the screen
  .quit / .exit   Exit the REPL

Tips:
  - SQL statements must end with a semicolon (;)
  - Use arrow keys to navigate history
  - Tab completion works for table names
`
	_, _ = fmt.Fprintln(w, help)
}

// newTableCompleter creates a readline completer for table names.
func newTableCompleter(ctx context.Context, st *store.Store) *readline.PrefixCompleter {
	var items []readline.PrefixCompleterInterface

	tables, err := st.Tables(ctx)
	if err == nil {
		for _, name := range tables {
			items = append(items, readline.PcItem(name))
		}
	}

	items = append(items,
		readline.PcItem(".help"),
		readline.PcItem(".tables"),
		readline.PcItem(".schema"),
		readline.PcItem(".clear"),
		readline.PcItem(".quit"),
		readline.PcItem(".exit"),
	)

	return readline.NewPrefixCompleter(items...)
}
