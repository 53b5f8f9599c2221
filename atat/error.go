package atat

import (
	"errors"
	"io/fs"
	"log/slog"
	"strconv"
	"strings"
)

// Predefined errors (sentinel values). Test with [errors.Is].
var (
	// ErrIO reports a failure to open, read, write, stat, chmod or rename a
	// template or its output.
	ErrIO = NewError("i/o error")
	// ErrState reports an operation that requires a loaded template.
	ErrState = NewError("no template loaded")
	// ErrGenerate reports a generator variable that returned an error.
	ErrGenerate = NewError("generator failed")
)

// Error is the error type returned by the engine. It carries an optional
// file name and line number of the input that caused it, a wrapped cause,
// and attributes for structured logging.
type Error struct {
	msg   string
	err   error
	file  string
	line  int
	attrs []slog.Attr
}

// NewError creates a new Error with a message.
func NewError(msg string) *Error {
	return &Error{msg: msg}
}

// Error formats the error as "file[line]: msg: cause", omitting the parts
// that are not set.
func (e *Error) Error() string {
	var sb strings.Builder

	if e.file != "" {
		sb.WriteString(e.file)

		if e.line > 0 {
			sb.WriteByte('[')
			sb.WriteString(strconv.Itoa(e.line))
			sb.WriteByte(']')
		}

		sb.WriteString(": ")
	}

	part := make([]string, 0, 2)

	if e.msg != "" {
		part = append(part, e.msg)
	}

	if e.err != nil {
		part = append(part, e.err.Error())
	}

	sb.WriteString(strings.Join(part, ": "))

	return sb.String()
}

// Unwrap implements error unwrapping for errors.Is/As.
func (e *Error) Unwrap() error { return e.err }

// Is reports whether target is a sentinel Error with the same message, so
// decorated copies of [ErrIO], [ErrState] and [ErrGenerate] still match.
func (e *Error) Is(target error) bool {
	t, ok := target.(*Error)
	if !ok || t.err != nil || t.file != "" {
		return false
	}

	return t.msg == e.msg
}

// File returns the name of the file the error refers to, if any.
func (e *Error) File() string { return e.file }

// Line returns the 1-based line number the error refers to, or 0.
func (e *Error) Line() int { return e.line }

// LogValue implements slog.LogValuer.
func (e *Error) LogValue() slog.Value {
	attrs := make([]slog.Attr, 0, len(e.attrs)+4)

	if e.msg != "" {
		attrs = append(attrs, slog.String("error", e.msg))
	}

	if e.file != "" {
		attrs = append(attrs, slog.String("file", e.file))
	}

	if e.line > 0 {
		attrs = append(attrs, slog.Int("line", e.line))
	}

	if e.err != nil {
		attrs = append(attrs, slog.String("cause", e.err.Error()))
	}

	return slog.GroupValue(append(attrs, e.attrs...)...)
}

// Wrap returns a copy of e wrapping err.
func (e *Error) Wrap(err error) *Error {
	c := *e
	c.err = err

	return &c
}

// At returns a copy of e that refers to the given file and line.
// A line of 0 means the error is not attributable to a single line.
func (e *Error) At(file string, line int) *Error {
	c := *e
	c.file = file
	c.line = line

	return &c
}

// With returns a copy of e with attrs appended for structured logging.
func (e *Error) With(attrs ...slog.Attr) *Error {
	c := *e
	c.attrs = append(append(make([]slog.Attr, 0, len(e.attrs)+len(attrs)), e.attrs...), attrs...)

	return &c
}

// ioError wraps an I/O failure on file. The path reported by an
// [fs.PathError] names the file when it differs from the one being
// processed (for example the temporary output file).
func ioError(file string, line int, err error) *Error {
	var pe *fs.PathError
	if errors.As(err, &pe) && pe.Path != "" {
		file = pe.Path
	}

	return ErrIO.At(file, line).Wrap(err)
}
