/*
Package diag renders source-anchored diagnostics: scanning errors, parse
errors, and runtime errors all funnel through a single Reporter so the
scanner, parser, and evaluator produce identically formatted output.

License

Governed by a 3-Clause BSD license. License file may be found in the root
folder of this module.

Copyright © 2024 The Lox Contributors
*/
package diag

import "github.com/npillmayer/schuko/tracing"

// tracer traces with key 'lox.diag'.
func tracer() tracing.Trace {
	return tracing.Select("lox.diag")
}
