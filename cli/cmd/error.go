package cmd

import (
	"errors"
	"log/slog"
	"slices"
)

// Error is a command failure: a sentinel message, the underlying cause and
// attributes naming the files or arguments involved. Errors derived from a
// sentinel with [Error.With] or [Error.Wrap] match it with [errors.Is].
type Error struct {
	msg   string
	err   error
	attrs []slog.Attr
}

// NewError returns a sentinel Error with message msg.
func NewError(msg string) *Error {
	return &Error{msg: msg}
}

// Error returns "msg: cause", omitting whichever part is empty.
func (e *Error) Error() string {
	switch {
	case e.err == nil:
		return e.msg
	case e.msg == "":
		return e.err.Error()
	default:
		return e.msg + ": " + e.err.Error()
	}
}

func (e *Error) Unwrap() error { return e.err }

// Is reports whether target is the sentinel e was derived from.
func (e *Error) Is(target error) bool {
	var t *Error
	if !errors.As(target, &t) || t.err != nil {
		return false
	}

	return t.msg == e.msg
}

// LogValue groups the message, cause and attributes of e.
func (e *Error) LogValue() slog.Value {
	attrs := make([]slog.Attr, 0, len(e.attrs)+2)

	if e.msg != "" {
		attrs = append(attrs, slog.String("error", e.msg))
	}

	if e.err != nil {
		attrs = append(attrs, slog.Any("cause", e.err))
	}

	return slog.GroupValue(append(attrs, e.attrs...)...)
}

// Wrap returns a copy of e caused by err.
func (e *Error) Wrap(err error) *Error {
	return &Error{msg: e.msg, err: err, attrs: e.attrs}
}

// With returns a copy of e with attrs appended.
func (e *Error) With(attrs ...slog.Attr) *Error {
	return &Error{msg: e.msg, err: e.err, attrs: slices.Concat(e.attrs, attrs)}
}

var (
	ErrUsage       = NewError("invalid arguments")
	ErrTemplate    = NewError("render template")
	ErrDocRoot     = NewError("document root does not exist")
	ErrVarsFile    = NewError("read variables file")
	ErrSetup       = NewError("query setup script")
	ErrPydoc       = NewError("generate python documentation")
	ErrPublish     = NewError("publish output")
	ErrWatch       = NewError("watch files")
	ErrYAMLMarshal = NewError("marshal YAML")
	ErrWriteConfig = NewError("write configuration file")
	ErrFileExists  = NewError("file exists (use --force to overwrite)")
)
