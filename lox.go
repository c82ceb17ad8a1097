package lox

import (
	"fmt"
	"io"
	"os"

	"github.com/loxrt/lox/ast"
	"github.com/loxrt/lox/bumparena"
	"github.com/loxrt/lox/diag"
	"github.com/loxrt/lox/gcheap"
	"github.com/loxrt/lox/interp"
	"github.com/loxrt/lox/parser"
	"github.com/loxrt/lox/scanner"
	"github.com/loxrt/lox/token"
)

// ScannerBackend selects which tokenizer an Interpreter runs source
// through.
type ScannerBackend int

const (
	// HandWritten is the direct character-class scanner.
	HandWritten ScannerBackend = iota
	// Lexmachine is the DFA-table-driven scanner built on
	// github.com/timtadh/lexmachine.
	Lexmachine
)

// DefaultHeapSize is the capacity handed to gcheap.New when a caller does
// not supply one, generous enough for REPL sessions and small scripts
// alike without forcing every CLI invocation to size a heap by hand.
const DefaultHeapSize = 1 << 20

// Interpreter wires a scanner, parser, and GC-backed evaluator into a
// single long-lived session: one heap and one globals frame, reused
// across every Run/RunFile call, so REPL fragments accumulate state the
// way a file's top-level statements do.
type Interpreter struct {
	heap     *gcheap.Heap
	arena    *bumparena.Arena
	eval     *interp.Evaluator
	errOut   io.Writer
	backend  ScannerBackend
	debugAST bool
}

// New builds an Interpreter that writes print-statement output to out
// and scan/parse/runtime diagnostics to errOut, backed by a heap of
// heapSize bytes.
func New(out, errOut io.Writer, heapSize int) (*Interpreter, error) {
	if heapSize <= 0 {
		heapSize = DefaultHeapSize
	}
	heap := gcheap.New(heapSize)
	ev, err := interp.New(heap, "", out, nil)
	if err != nil {
		return nil, fmt.Errorf("lox: building evaluator: %w", err)
	}
	return &Interpreter{heap: heap, arena: bumparena.New(), eval: ev, errOut: errOut}, nil
}

// UseScanner switches which tokenizer subsequent Run/RunFile calls use.
func (it *Interpreter) UseScanner(backend ScannerBackend) {
	it.backend = backend
}

// SetDebugAST turns on or off printing a fingerprint of each successfully
// parsed fragment's AST to errOut, for the REPL's -debug-ast flag.
func (it *Interpreter) SetDebugAST(on bool) {
	it.debugAST = on
}

// Heap exposes the session's GC heap, for introspection commands like a
// REPL's ":heap".
func (it *Interpreter) Heap() *gcheap.Heap { return it.heap }

// Evaluator exposes the session's evaluator, for introspection commands
// like a REPL's ":env".
func (it *Interpreter) Evaluator() *interp.Evaluator { return it.eval }

// Run scans, parses, and evaluates one fragment of source text against
// this session's persistent heap and globals. It reports whether any
// scan, parse, or runtime diagnostic was emitted; diagnostics themselves
// are already written to errOut by the time Run returns.
func (it *Interpreter) Run(source string) (bool, error) {
	sm := token.NewSourceMap(source)
	rep := diag.NewReporter(source, sm, it.errOut)

	var res scanner.Result
	var nums scanner.Numbers
	var err error
	switch it.backend {
	case Lexmachine:
		res, nums, err = scanner.ScanWithLexmachine(source, rep)
		if err != nil {
			return rep.HasErrors(), fmt.Errorf("lox: lexmachine scan: %w", err)
		}
	default:
		res, nums = scanner.Scan(source, rep)
	}

	mark := it.arena.Mark()
	program := parser.Parse(res, nums, it.arena, rep)
	if rep.HasErrors() {
		it.arena.Reset(mark)
		return true, nil
	}

	if it.debugAST {
		sum, err := ast.Fingerprint(program, source)
		if err != nil {
			return true, fmt.Errorf("lox: fingerprinting AST: %w", err)
		}
		fmt.Fprintf(it.errOut, "ast: %s\n%s", sum, ast.Unparse(program, source))
	}

	it.eval.Reset(source, rep)
	it.eval.Run(program)
	return rep.HasErrors(), nil
}

// RunFile reads path and evaluates it as a single program. A read
// failure (missing file, permission error, …) is returned directly;
// scan/parse/runtime diagnostics are reported and surfaced through the
// bool return the same way Run reports them.
func (it *Interpreter) RunFile(path string) (bool, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return false, fmt.Errorf("lox: reading %s: %w", path, err)
	}
	return it.Run(string(data))
}

// Close releases the session's globals root and its backing heap. It
// reports (without panicking) if anything is still reachable afterward —
// a live block at this point means some part of the session leaked a
// root reference rather than releasing it.
func (it *Interpreter) Close() error {
	globals := it.eval.Globals()
	gcheap.Release(&globals)
	return it.heap.Close()
}
