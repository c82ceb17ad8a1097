/*
Command lox is the file/REPL driver: zero arguments opens an interactive
session, one argument runs that file, and two or more print a usage
line and exit cleanly.
*/
package main

import (
	"flag"
	"fmt"
	"os"
	"strings"

	"github.com/chzyer/readline"
	"github.com/npillmayer/schuko/gtrace"
	"github.com/npillmayer/schuko/tracing"
	"github.com/npillmayer/schuko/tracing/gologadapter"
	"github.com/pterm/pterm"
	"golang.org/x/exp/slices"

	"github.com/loxrt/lox"
	"github.com/loxrt/lox/object"
)

func main() {
	initDisplay()
	gtrace.SyntaxTracer = gologadapter.New()

	tlevel := flag.String("trace", "Error", "Trace level [Debug|Info|Error]")
	scannerFlag := flag.String("scanner", "handwritten", "Tokenizer backend [handwritten|lexmachine]")
	heapSize := flag.Int("heap", lox.DefaultHeapSize, "GC heap capacity, in bytes")
	debugAST := flag.Bool("debug-ast", false, "Print a content-hash fingerprint and reprinted source form of each parsed program")
	flag.Parse()
	tracer().SetTraceLevel(tracing.TraceLevelFromString(*tlevel))

	it, err := lox.New(os.Stdout, os.Stderr, *heapSize)
	if err != nil {
		tracer().Errorf(err.Error())
		os.Exit(3)
	}
	if strings.EqualFold(*scannerFlag, "lexmachine") {
		it.UseScanner(lox.Lexmachine)
	}
	it.SetDebugAST(*debugAST)
	defer func() {
		if err := it.Close(); err != nil {
			tracer().Errorf(err.Error())
		}
	}()

	switch flag.NArg() {
	case 0:
		repl(it)
	case 1:
		// Scan/parse/runtime diagnostics are already written to stderr by
		// the time RunFile returns; only a failure to read the file itself
		// is a nonzero exit, matching this interpreter's original CLI.
		if _, err := it.RunFile(flag.Arg(0)); err != nil {
			tracer().Errorf(err.Error())
			os.Exit(1)
		}
	default:
		fmt.Println("usage: lox [script]")
	}
}

func initDisplay() {
	pterm.Info.Prefix = pterm.Prefix{
		Text:  "  >>",
		Style: pterm.NewStyle(pterm.BgCyan, pterm.FgBlack),
	}
	pterm.Error.Prefix = pterm.Prefix{
		Text:  "  Error",
		Style: pterm.NewStyle(pterm.BgRed, pterm.FgBlack),
	}
}

// repl drives an interactive session: one gcheap.Heap and one globals
// frame shared across every line read, so a variable or function defined
// on one line stays visible on the next — exactly like a file's
// top-level statements, just entered one at a time.
func repl(it *lox.Interpreter) {
	rl, err := readline.New("> ")
	if err != nil {
		tracer().Errorf(err.Error())
		os.Exit(3)
	}
	defer rl.Close()

	pterm.Info.Println("Welcome to lox")
	tracer().Infof("Quit with <ctrl>D")

	for {
		line, err := rl.Readline()
		if err != nil { // io.EOF on Ctrl-D
			break
		}
		if line = strings.TrimSpace(line); line == "" {
			continue
		}
		if handled := metaCommand(it, line); handled {
			continue
		}
		if _, err := it.Run(line); err != nil {
			tracer().Errorf(err.Error())
		}
	}
	pterm.Info.Println("Good bye!")
}

// metaCommand recognizes the REPL-only introspection commands ":heap"
// and ":env"; it reports whether line was one of them.
func metaCommand(it *lox.Interpreter, line string) bool {
	switch line {
	case ":heap":
		stats := it.Heap().Stats()
		pterm.Info.Printf("capacity=%d free=%d live_blocks=%d collections=%d\n",
			stats.Capacity, stats.FreeBytes, stats.LiveBlocks, stats.Collections)
		return true
	case ":env":
		env := object.Handle(it.Heap(), it.Evaluator().Active()).Names()
		slices.Sort(env)
		pterm.Info.Println(strings.Join(env, ", "))
		return true
	default:
		return false
	}
}
