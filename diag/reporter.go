package diag

import (
	"fmt"
	"io"
	"strings"

	"github.com/pterm/pterm"

	"github.com/loxrt/lox/token"
)

// Reporter accumulates and prints source-anchored diagnostics against one
// source text. Scanning, parsing, and evaluation all share a Reporter so a
// single error count decides whether execution proceeds.
type Reporter struct {
	source string
	sm     *token.SourceMap
	out    io.Writer
	errors int
}

// NewReporter returns a Reporter over source, writing formatted
// diagnostics to out.
func NewReporter(source string, sm *token.SourceMap, out io.Writer) *Reporter {
	return &Reporter{source: source, sm: sm, out: out}
}

// Errors reports how many diagnostics have been emitted so far.
func (r *Reporter) Errors() int {
	return r.errors
}

// HasErrors reports whether any diagnostic has been emitted.
func (r *Reporter) HasErrors() bool {
	return r.errors > 0
}

// Report emits a diagnostic anchored at tok: "[line:col] Error: message",
// followed by the offending source line and a caret pointing at tok.
func (r *Reporter) Report(tok token.Token, message string) {
	line, col := r.sm.Locate(tok.Offset)
	r.errors++
	header := fmt.Sprintf("[%d:%d] Error: %s", line, col, message)
	tracer().Errorf(header)
	fmt.Fprintln(r.out, pterm.Error.Sprint(header))
	r.printCaret(line, col)
}

// ReportLine emits a diagnostic anchored only at a line, with no column:
// "[line] Error: message", for errors with no single offending token. The
// scanner does not use it: an unterminated string is reported through
// Report, anchored at its opening quote.
func (r *Reporter) ReportLine(line int, message string) {
	r.errors++
	header := fmt.Sprintf("[%d] Error: %s", line, message)
	tracer().Errorf(header)
	fmt.Fprintln(r.out, pterm.Error.Sprint(header))
	r.printCaret(line, 0)
}

func (r *Reporter) printCaret(line, col int) {
	text := r.sm.LineText(line)
	fmt.Fprintln(r.out, text)
	caret := strings.Repeat(" ", max(col-1, 0)) + "^--- Here."
	fmt.Fprintln(r.out, pterm.NewStyle(pterm.FgRed).Sprint(caret))
}
