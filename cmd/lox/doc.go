package main

import "github.com/npillmayer/schuko/tracing"

// tracer traces with key 'lox.cmd'.
func tracer() tracing.Trace {
	return tracing.Select("lox.cmd")
}
