// Package color writes colored diagnostics and tables to a terminal.
//
// Colors are chosen by name: one of the sixteen terminal colors (see
// [Color]) or a synonym such as "warn" or "sep". Whether escape sequences
// are emitted depends on the TERM environment variable, not on whether the
// output is a terminal, and can be switched off with [Output.DisableColor].
//
// Messages follow the shape
//
//	prefix: file:line: Warning: message
//
// where file and line are omitted when unknown.
package color
