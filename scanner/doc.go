/*
Package scanner turns Lox source text into a token stream, a token.SourceMap,
and an error count, reporting through a diag.Reporter as it goes.

Two independent tokenizers are available: the hand-written Scan (a direct
character-class scanner) and ScanWithLexmachine (built on a data-driven DFA
via github.com/timtadh/lexmachine, and additionally returning an error when
the DFA cannot be built or run), selectable from the command line. Both produce identical token.Token streams for valid
input; they differ only in how a handful of malformed-input corners are
detected, which is unavoidable given lexmachine's longest-match DFA model
versus this package's manual lookahead.

License

Governed by a 3-Clause BSD license. License file may be found in the root
folder of this module.

Copyright © 2024 The Lox Contributors
*/
package scanner

import "github.com/npillmayer/schuko/tracing"

// tracer traces with key 'lox.scanner'.
func tracer() tracing.Trace {
	return tracing.Select("lox.scanner")
}
