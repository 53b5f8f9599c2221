// Package atat substitutes variables into text templates.
//
// A template is plain text containing tags of the form
//
//	@NAME@
//	@NAME:FORMAT@
//
// where NAME is an identifier ([A-Za-z_][A-Za-z0-9_]*) and FORMAT is a
// [fmt] format string that does not contain '@' or a newline. Each tag is
// replaced by the rendered value of the variable NAME (see [Value.Render]).
// Tags naming no variable are left in place and reported to the engine's
// [Sink]; they never fail the rendering.
//
// Variables live in an [Env]. The engine owns the built-ins THIS_YEAR,
// THIS_DATE (YYYY.MM.DD), THIS_TIME (HH:MM:SS), COPYRIGHT_SPAN, TEMPLATE and
// FILENAME; callers supply working variables with [Engine.Merge] and
// [Engine.Set]. A working variable never shadows a built-in.
//
// Templates are either loaded and parsed in memory ([Engine.Load],
// [Engine.Parse]) or streamed to a file ([Engine.Rewrite]).
//
// A '@' inside a format ends the tag, and tags do not nest.
package atat
