// Package output renders CLI results as styled text or machine-readable
// JSON. The mode is selected by flag or resolved automatically: a TTY gets
// styled text, a pipe gets plain text.
package output

import (
	"encoding/json"
	"fmt"
	"io"
	"os"

	"github.com/jedib0t/go-pretty/v6/table"
	"golang.org/x/term"
	"golang.org/x/text/language"
	"golang.org/x/text/message"
)

// Mode selects the rendering mode.
type Mode string

const (
	ModeAuto Mode = "auto"
	ModeText Mode = "text"
	ModeJSON Mode = "json"
)

// Renderer writes command output in the selected mode.
type Renderer struct {
	out     io.Writer
	errOut  io.Writer
	mode    Mode
	styles  Styles
	printer *message.Printer
}

// NewRenderer creates a renderer for the given writers and mode.
func NewRenderer(out, errOut io.Writer, mode Mode) *Renderer {
	if mode == "" {
		mode = ModeAuto
	}
	return &Renderer{
		out:     out,
		errOut:  errOut,
		mode:    mode,
		styles:  DefaultStyles(),
		printer: message.NewPrinter(language.English),
	}
}

// EffectiveMode resolves ModeAuto against the environment: text on a TTY,
// text without styling otherwise. JSON is only ever explicit.
func (r *Renderer) EffectiveMode() Mode {
	if r.mode != ModeAuto {
		return r.mode
	}
	return ModeText
}

// IsTTY reports whether stdout is a terminal.
func (r *Renderer) IsTTY() bool {
	if f, ok := r.out.(*os.File); ok {
		return term.IsTerminal(int(f.Fd()))
	}
	return false
}

// Styles returns the renderer's style set, degraded to no-ops when the
// output is not a terminal.
func (r *Renderer) Styles() Styles {
	if r.mode == ModeAuto && !r.IsTTY() {
		return PlainStyles()
	}
	return r.styles
}

// Writer returns the underlying output writer.
func (r *Renderer) Writer() io.Writer {
	return r.out
}

// Println writes a line to the output.
func (r *Renderer) Println(a ...any) {
	_, _ = fmt.Fprintln(r.out, a...)
}

// Printf writes formatted text to the output.
func (r *Renderer) Printf(format string, a ...any) {
	_, _ = fmt.Fprintf(r.out, format, a...)
}

// Success prints a success line.
func (r *Renderer) Success(msg string) {
	r.Println(r.Styles().Success.Render(msg))
}

// Warning prints a warning line.
func (r *Renderer) Warning(msg string) {
	r.Println(r.Styles().Warning.Render("Warning: " + msg))
}

// Error prints an error line to the error writer.
func (r *Renderer) Error(msg string) {
	_, _ = fmt.Fprintln(r.errOut, r.Styles().Error.Render("Error: "+msg))
}

// Header prints a section header.
func (r *Renderer) Header(msg string) {
	r.Println(r.Styles().Header.Render(msg))
}

// Muted prints a de-emphasized line.
func (r *Renderer) Muted(msg string) {
	r.Println(r.Styles().Muted.Render(msg))
}

// JSON writes v as indented JSON.
func (r *Renderer) JSON(v any) error {
	enc := json.NewEncoder(r.out)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}

// Table renders a header and rows as a bordered table followed by a grouped
// row count ("1,234 rows").
func (r *Renderer) Table(header []string, rows [][]any) {
	t := table.NewWriter()
	t.SetOutputMirror(r.out)
	t.SetStyle(table.StyleLight)

	headerRow := make(table.Row, len(header))
	for i, h := range header {
		headerRow[i] = h
	}
	t.AppendHeader(headerRow)

	for _, row := range rows {
		tr := make(table.Row, len(row))
		copy(tr, row)
		t.AppendRow(tr)
	}

	t.Render()
	r.Println(r.Styles().Muted.Render(r.Count(len(rows), "row")))
}

// Count formats "n things" with grouped digits: 1,234 rows.
func (r *Renderer) Count(n int, noun string) string {
	if n == 1 {
		return r.printer.Sprintf("%d %s", n, noun)
	}
	return r.printer.Sprintf("%d %ss", n, noun)
}
