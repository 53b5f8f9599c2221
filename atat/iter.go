package atat

import (
	"fmt"
	"io"
)

// Each returns a generator that writes one line per value, formatted with
// the tag's format (one verb). With no format each value is written in its
// default form.
func Each[T any](vals ...T) Generator {
	return func(w io.Writer, _, format string) error {
		for _, v := range vals {
			if err := writeLine(w, format, v); err != nil {
				return err
			}
		}

		return nil
	}
}

// Pair is an item of [EachPair].
type Pair[A, B any] struct {
	First  A
	Second B
}

// EachPair returns a generator that writes one line per pair, formatted with
// the tag's format (two verbs).
func EachPair[A, B any](pairs ...Pair[A, B]) Generator {
	return func(w io.Writer, _, format string) error {
		for _, p := range pairs {
			if err := writeLine(w, format, p.First, p.Second); err != nil {
				return err
			}
		}

		return nil
	}
}

// Triple is an item of [EachTriple].
type Triple[A, B, C any] struct {
	First  A
	Second B
	Third  C
}

// EachTriple returns a generator that writes one line per triple, formatted
// with the tag's format (three verbs).
func EachTriple[A, B, C any](triples ...Triple[A, B, C]) Generator {
	return func(w io.Writer, _, format string) error {
		for _, t := range triples {
			if err := writeLine(w, format, t.First, t.Second, t.Third); err != nil {
				return err
			}
		}

		return nil
	}
}

func writeLine(w io.Writer, format string, args ...any) error {
	var err error
	if format == "" {
		_, err = fmt.Fprintln(w, args...)
	} else {
		_, err = fmt.Fprintf(w, format+"\n", args...)
	}

	return err
}
