package atat

import (
	"fmt"
	"io"
	"reflect"
	"strings"
)

// Kind identifies the variant held by a [Value].
type Kind uint8

// Value kinds.
const (
	KindNone Kind = iota // renders nothing
	KindAtom             // scalar
	KindSeq              // ordered sequence of values
	KindGen              // generator writing directly to the output
)

var kindNames = [...]string{
	KindNone: "none",
	KindAtom: "atom",
	KindSeq:  "seq",
	KindGen:  "gen",
}

func (k Kind) String() string {
	if int(k) < len(kindNames) {
		return kindNames[k]
	}

	return fmt.Sprintf("Kind(%d)", k)
}

// Generator writes the rendered form of the variable name to w using the
// tag's format string (empty when the tag has none).
//
// Generators are invoked once per tag occurrence, while the line containing
// the tag is being written.
type Generator func(w io.Writer, name, format string) error

// Value is a variable value: nothing, a scalar, a sequence or a generator.
// The zero Value is [None].
type Value struct {
	kind  Kind
	atom  any
	seq   []Value
	gen   Generator
	label string
}

// None is the value that renders as nothing.
var None = Value{}

// Atom returns a scalar value.
func Atom(v any) Value { return Value{kind: KindAtom, atom: v} }

// Seq returns a sequence of values.
func Seq(items ...Value) Value { return Value{kind: KindSeq, seq: items} }

// Strings returns a sequence of string scalars.
func Strings(ss ...string) Value {
	items := make([]Value, len(ss))
	for i, s := range ss {
		items[i] = Atom(s)
	}

	return Seq(items...)
}

// Gen returns a generator value.
func Gen(g Generator) Value {
	if g == nil {
		return None
	}

	return Value{kind: KindGen, gen: g}
}

// ValueOf converts a native Go value into a Value.
//
// nil converts to [None]; a Value is returned as is; a [Generator] or a
// function with the same signature converts to a generator; slices and
// arrays (other than []byte) convert element-wise to a sequence; anything
// else is a scalar.
func ValueOf(v any) Value {
	switch x := v.(type) {
	case nil:
		return None
	case Value:
		return x
	case Generator:
		return Gen(x)
	case func(io.Writer, string, string) error:
		return Gen(x)
	case []Value:
		return Seq(x...)
	case []string:
		return Strings(x...)
	case []byte:
		return Atom(string(x))
	case []any:
		items := make([]Value, len(x))
		for i, e := range x {
			items[i] = ValueOf(e)
		}

		return Seq(items...)
	}

	rv := reflect.ValueOf(v)
	switch rv.Kind() {
	case reflect.Slice, reflect.Array:
		items := make([]Value, rv.Len())
		for i := range items {
			items[i] = ValueOf(rv.Index(i).Interface())
		}

		return Seq(items...)

	case reflect.Pointer, reflect.Interface:
		if rv.IsNil() {
			return None
		}
	}

	return Atom(v)
}

// Named returns a copy of v labelled with name, used when a generator is
// displayed.
func (v Value) Named(name string) Value {
	v.label = name

	return v
}

// Kind returns the variant held by v.
func (v Value) Kind() Kind { return v.kind }

// Scalar returns the scalar held by a [KindAtom] value, or nil.
func (v Value) Scalar() any { return v.atom }

// Items returns the elements of a [KindSeq] value, or nil.
func (v Value) Items() []Value { return v.seq }

// Generator returns the generator of a [KindGen] value, or nil.
func (v Value) Generator() Generator { return v.gen }

// IsNone reports whether v renders nothing.
func (v Value) IsNone() bool { return v.kind == KindNone }

// String returns a display form of v: scalars in their default format,
// sequences as "[a, b, c]" and generators as "name()".
func (v Value) String() string {
	switch v.kind {
	case KindAtom:
		return fmt.Sprint(v.atom)

	case KindSeq:
		part := make([]string, len(v.seq))
		for i, item := range v.seq {
			part[i] = item.String()
		}

		return "[" + strings.Join(part, ", ") + "]"

	case KindGen:
		if v.label != "" {
			return v.label + "()"
		}

		return "<generator>"
	}

	return ""
}

// MarshalText implements encoding.TextMarshaler with the display form.
func (v Value) MarshalText() ([]byte, error) {
	return []byte(v.String()), nil
}

// Render writes v to w as it replaces a tag @name:format@.
//
// A scalar is written with fmt.Sprintf(format, v) or fmt.Sprint(v) when
// format is empty. Sequence elements are rendered in order, each with the
// same format, and separated by a single space when format is empty.
// A generator is called with w, name and format.
func (v Value) Render(w io.Writer, name, format string) error {
	switch v.kind {
	case KindAtom:
		var s string
		if format != "" {
			s = fmt.Sprintf(format, v.atom)
		} else {
			s = fmt.Sprint(v.atom)
		}

		_, err := io.WriteString(w, s)

		return err

	case KindSeq:
		for i, item := range v.seq {
			if i > 0 && format == "" {
				if _, err := io.WriteString(w, " "); err != nil {
					return err
				}
			}

			if err := item.Render(w, name, format); err != nil {
				return err
			}
		}

	case KindGen:
		return v.gen(w, name, format)
	}

	return nil
}

// text returns the unformatted string of a scalar.
func (v Value) text() (string, bool) {
	if v.kind != KindAtom {
		return "", false
	}

	return fmt.Sprint(v.atom), true
}
