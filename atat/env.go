package atat

import (
	"fmt"
	"io"
	"maps"
	"path/filepath"
	"slices"
	"strconv"
	"strings"
	"time"
)

// Built-in variable names.
const (
	ThisYear      = "THIS_YEAR"
	ThisDate      = "THIS_DATE"
	ThisTime      = "THIS_TIME"
	CopyrightSpan = "COPYRIGHT_SPAN"
	Template      = "TEMPLATE"
	Filename      = "FILENAME"
)

// CopyrightInitial is the working variable holding the first year of a
// copyright span.
const CopyrightInitial = "COPYRIGHT_INITIAL"

// Env is the variable environment of an [Engine]: engine-owned built-in
// variables and caller-supplied working variables.
//
// Built-ins always take precedence. [Env.Merge] overlays them onto the
// working variables and [Env.Set] refuses their names, so no working
// variable can shadow a built-in.
type Env struct {
	builtin map[string]Value
	working map[string]Value
}

func newEnv(now time.Time) *Env {
	e := &Env{working: make(map[string]Value)}

	e.builtin = map[string]Value{
		ThisYear:      Atom(strconv.Itoa(now.Year())),
		ThisDate:      Atom(fmt.Sprintf("%d.%02d.%02d", now.Year(), now.Month(), now.Day())),
		ThisTime:      Atom(fmt.Sprintf("%02d:%02d:%02d", now.Hour(), now.Minute(), now.Second())),
		CopyrightSpan: Gen(e.CopyrightSpan).Named("copyright_span"),
		Template:      None,
		Filename:      None,
	}

	return e
}

// IsBuiltin reports whether name is a built-in variable.
func (e *Env) IsBuiltin(name string) bool {
	_, ok := e.builtin[name]

	return ok
}

// Merge converts each value with [ValueOf], stores it as a working variable,
// then re-applies the built-ins.
func (e *Env) Merge(vars map[string]any) {
	for name, v := range vars {
		e.working[name] = ValueOf(v)
	}

	maps.Copy(e.working, e.builtin)
}

// Set stores one working variable. Setting a built-in name has no effect.
func (e *Env) Set(name string, v any) {
	if e.IsBuiltin(name) {
		return
	}

	e.working[name] = ValueOf(v)
}

// Get returns the working variable name.
func (e *Env) Get(name string) (Value, bool) {
	v, ok := e.working[name]

	return v, ok
}

// Lookup resolves name for rendering: working variables first, then
// built-ins.
func (e *Env) Lookup(name string) (Value, bool) {
	if v, ok := e.working[name]; ok {
		return v, true
	}

	v, ok := e.builtin[name]

	return v, ok
}

// Builtins returns a copy of the built-in variables.
func (e *Env) Builtins() map[string]Value { return maps.Clone(e.builtin) }

// Working returns a copy of the working variables.
func (e *Env) Working() map[string]Value { return maps.Clone(e.working) }

// Names returns the sorted names resolvable by [Env.Lookup].
func (e *Env) Names() []string {
	names := slices.Collect(maps.Keys(e.working))
	for name := range e.builtin {
		if _, ok := e.working[name]; !ok {
			names = append(names, name)
		}
	}

	slices.Sort(names)

	return names
}

// point re-points the runtime built-ins at a template and its output file.
// Working copies left by an earlier merge are updated with them.
func (e *Env) point(template, output string) {
	rt := map[string]Value{
		Template: Atom(template),
		Filename: Atom(filepath.Base(output)),
	}

	for name, v := range rt {
		e.builtin[name] = v
		if _, ok := e.working[name]; ok {
			e.working[name] = v
		}
	}
}

// CopyrightSpan is the generator bound to COPYRIGHT_SPAN. It writes
// "start-end" when the working variable COPYRIGHT_INITIAL holds a year
// before THIS_YEAR, and THIS_YEAR alone otherwise. The format is ignored.
func (e *Env) CopyrightSpan(w io.Writer, _, _ string) error {
	cur, _ := e.builtin[ThisYear].text()

	span := cur

	end, err := strconv.Atoi(cur)
	if init, ok := e.Get(CopyrightInitial); ok && err == nil {
		if s, ok := init.text(); ok {
			if start, err := strconv.Atoi(strings.TrimSpace(s)); err == nil {
				if start < end {
					span = strconv.Itoa(start) + "-" + strconv.Itoa(end)
				} else {
					span = strconv.Itoa(end)
				}
			}
		}
	}

	_, err = io.WriteString(w, span)

	return err
}
