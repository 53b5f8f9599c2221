package atat

import (
	"bufio"
	"errors"
	"io"
	"log/slog"
	"os"
	"slices"
	"strings"
	"time"
)

// Engine loads, inspects and renders AtAt templates against one variable
// environment.
//
// An Engine holds at most one template at a time and moves through the
// states empty, loaded and parsed. [Engine.Load] always returns it to
// loaded. It is not safe for concurrent use.
type Engine struct {
	env  *Env
	sink Sink

	template string
	in       []string
	out      []string
	loaded   bool
	parsed   bool
}

// Option configures an Engine.
type Option func(*engineConfig)

type engineConfig struct {
	sink  Sink
	clock func() time.Time
	vars  map[string]any
}

// WithSink sets the receiver of diagnostics. The default forwards to the
// package logger.
func WithSink(s Sink) Option {
	return func(c *engineConfig) {
		if s != nil {
			c.sink = s
		}
	}
}

// WithClock sets the clock used for THIS_YEAR, THIS_DATE and THIS_TIME.
func WithClock(now func() time.Time) Option {
	return func(c *engineConfig) {
		if now != nil {
			c.clock = now
		}
	}
}

// WithVars merges vars into the working variables.
func WithVars(vars map[string]any) Option {
	return func(c *engineConfig) {
		if c.vars == nil {
			c.vars = make(map[string]any, len(vars))
		}

		for k, v := range vars {
			c.vars[k] = v
		}
	}
}

// New returns an empty Engine. The built-in date and time variables are
// fixed at construction.
func New(opts ...Option) *Engine {
	c := engineConfig{sink: defaultSink{}, clock: time.Now}
	for _, opt := range opts {
		opt(&c)
	}

	e := &Engine{env: newEnv(c.clock()), sink: c.sink}
	if c.vars != nil {
		e.env.Merge(c.vars)
	}

	return e
}

// Env returns the variable environment.
func (e *Engine) Env() *Env { return e.env }

// Merge merges vars into the working variables. See [Env.Merge].
func (e *Engine) Merge(vars map[string]any) { e.env.Merge(vars) }

// Set sets one working variable. See [Env.Set].
func (e *Engine) Set(name string, v any) { e.env.Set(name, v) }

// Get returns one working variable. See [Env.Get].
func (e *Engine) Get(name string) (Value, bool) { return e.env.Get(name) }

// Template returns the path of the current template.
func (e *Engine) Template() string { return e.template }

// IsLoaded reports whether a template is loaded.
func (e *Engine) IsLoaded() bool { return e.loaded }

// IsParsed reports whether the loaded template has been parsed.
func (e *Engine) IsParsed() bool { return e.parsed }

// Preparsed returns the lines of the loaded template.
func (e *Engine) Preparsed() []string { return slices.Clone(e.in) }

// Postparsed returns the lines produced by the last [Engine.Parse].
func (e *Engine) Postparsed() []string { return slices.Clone(e.out) }

// reset forgets the current template and points the runtime built-ins at
// path.
func (e *Engine) reset(path string) {
	e.template = path
	e.in, e.out = nil, nil
	e.loaded, e.parsed = false, false
	e.env.point(path, path)
}

// Load reads the template at path, replacing any template and output held
// by the engine.
func (e *Engine) Load(path string) error {
	e.reset(path)

	f, err := os.Open(path)
	if err != nil {
		return ioError(path, 0, err)
	}
	defer f.Close()

	in, err := readLines(bufio.NewReader(f))
	if err != nil {
		return ioError(path, len(in)+1, err)
	}

	e.in, e.loaded = in, true

	return nil
}

// Characterize returns the tags of the loaded template in file order.
func (e *Engine) Characterize() ([]Tag, error) {
	if !e.loaded {
		return nil, ErrState
	}

	var tags []Tag

	for i, line := range e.in {
		for t := range scanLine(line, i+1) {
			tags = append(tags, t)
		}
	}

	return tags, nil
}

// References is an alias of [Engine.Characterize].
func (e *Engine) References() ([]Tag, error) { return e.Characterize() }

// Parse renders the loaded template in memory. The output is available from
// [Engine.Postparsed]; one trailing whitespace-only line is dropped.
func (e *Engine) Parse() error {
	if !e.loaded {
		return ErrState
	}

	var sb strings.Builder

	for i, line := range e.in {
		if err := e.renderLine(&sb, line, i+1); err != nil {
			return err
		}
	}

	out := splitLines(sb.String())
	if n := len(out); n > 0 && strings.TrimSpace(out[n-1]) == "" {
		out = out[:n-1]
	}

	e.out, e.parsed = out, true

	return nil
}

// String returns the parsed output joined, or the empty string before
// [Engine.Parse].
func (e *Engine) String() string { return strings.Join(e.out, "") }

// renderLine writes line to w with every tag replaced by the rendered value
// of its variable. Tags naming no variable are written verbatim and
// reported to the sink.
func (e *Engine) renderLine(w io.Writer, line string, lineNum int) error {
	sw := &stickyWriter{w: w}
	mark := 0

	for t := range scanLine(line, lineNum) {
		io.WriteString(sw, line[mark:t.ColStart-1])

		mark = t.ColEnd

		v, ok := e.env.Lookup(t.Name)
		if !ok {
			e.undefined(t)
			io.WriteString(sw, t.Raw)

			continue
		}

		if err := v.Render(sw, t.Name, t.Format); err != nil && sw.err == nil {
			return ErrGenerate.At(e.template, lineNum).Wrap(err).With(slog.String(AttrVariable, t.Name))
		}

		if sw.err != nil {
			return ioError(e.template, lineNum, sw.err)
		}
	}

	io.WriteString(sw, line[mark:])

	if sw.err != nil {
		return ioError(e.template, lineNum, sw.err)
	}

	return nil
}

// stickyWriter remembers the first write error so failures of the output
// can be told apart from failures of a generator.
type stickyWriter struct {
	w   io.Writer
	err error
}

func (s *stickyWriter) Write(p []byte) (int, error) {
	if s.err != nil {
		return 0, s.err
	}

	n, err := s.w.Write(p)
	s.err = err

	return n, err
}

// readLines reads r into lines that keep their newline terminators.
func readLines(r *bufio.Reader) ([]string, error) {
	var lines []string

	for {
		line, err := r.ReadString('\n')
		if line != "" {
			lines = append(lines, line)
		}

		if errors.Is(err, io.EOF) {
			return lines, nil
		}

		if err != nil {
			return lines, err
		}
	}
}

// splitLines splits s after each newline.
func splitLines(s string) []string {
	var lines []string

	for s != "" {
		i := strings.IndexByte(s, '\n')
		if i < 0 {
			lines = append(lines, s)

			break
		}

		lines = append(lines, s[:i+1])
		s = s[i+1:]
	}

	return lines
}
