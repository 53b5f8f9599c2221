package color

import (
	"fmt"
	"io"
	"log/slog"
	"os"
	"strings"
	"sync"

	"github.com/charmbracelet/lipgloss"
	"github.com/muesli/termenv"
)

// Segment is text printed in one color (a color name or synonym).
type Segment struct {
	Color string
	Text  string
}

// S returns a Segment.
func S(color, text string) Segment { return Segment{Color: color, Text: text} }

// Output writes colored text. Regular output goes to one writer and
// diagnostics to another; both share one color profile.
//
// Output is safe for concurrent use.
type Output struct {
	mu        sync.Mutex
	out, err  io.Writer
	prefix    string
	renderer  *lipgloss.Renderer
	profile   termenv.Profile
	palette   Palette
	available bool
	coloring  bool
}

// Option configures an Output.
type Option func(*outputConfig)

type outputConfig struct {
	out, err io.Writer
	prefix   string
	profile  termenv.Profile
	synonyms Synonyms
	color    bool
}

// WithWriter sets the writer of regular output. The default is os.Stdout.
func WithWriter(w io.Writer) Option {
	return func(c *outputConfig) {
		if w != nil {
			c.out = w
		}
	}
}

// WithErrWriter sets the writer of diagnostics. The default is os.Stderr.
func WithErrWriter(w io.Writer) Option {
	return func(c *outputConfig) {
		if w != nil {
			c.err = w
		}
	}
}

// WithPrefix sets the notifier prefix of diagnostics, usually the program
// name.
func WithPrefix(prefix string) Option {
	return func(c *outputConfig) { c.prefix = prefix }
}

// WithTerm selects the color profile for the terminal type term instead of
// the TERM environment variable.
func WithTerm(term string) Option {
	return func(c *outputConfig) { c.profile = Profile(term) }
}

// WithSynonym adds or replaces a color synonym.
func WithSynonym(name string, color Color) Option {
	return func(c *outputConfig) { c.synonyms[name] = color }
}

// WithColor starts the Output with color enabled or disabled. Enabling has
// no effect when the terminal has no colors.
func WithColor(enable bool) Option {
	return func(c *outputConfig) { c.color = enable }
}

// New returns an Output.
func New(opts ...Option) *Output {
	c := outputConfig{
		out:      os.Stdout,
		err:      os.Stderr,
		profile:  envProfile(),
		synonyms: DefaultSynonyms(),
		color:    true,
	}

	for _, opt := range opts {
		opt(&c)
	}

	r := lipgloss.NewRenderer(c.out)

	o := &Output{
		out:       c.out,
		err:       c.err,
		prefix:    c.prefix,
		renderer:  r,
		profile:   c.profile,
		palette:   makePalette(r, c.synonyms),
		available: c.profile != termenv.Ascii,
	}

	o.setColoring(c.color && o.available)

	return o
}

func (o *Output) setColoring(enable bool) {
	o.coloring = enable
	if enable {
		o.renderer.SetColorProfile(o.profile)
	} else {
		o.renderer.SetColorProfile(termenv.Ascii)
	}
}

// EnableColor turns color on if the terminal has colors.
func (o *Output) EnableColor() {
	o.mu.Lock()
	defer o.mu.Unlock()

	if o.available {
		o.setColoring(true)
	}
}

// DisableColor turns color off.
func (o *Output) DisableColor() {
	o.mu.Lock()
	defer o.mu.Unlock()

	o.setColoring(false)
}

// IsColorAvailable reports whether the terminal has colors.
func (o *Output) IsColorAvailable() bool { return o.available }

// IsColoring reports whether color is on.
func (o *Output) IsColoring() bool {
	o.mu.Lock()
	defer o.mu.Unlock()

	return o.coloring
}

// SetPrefix sets the notifier prefix of diagnostics.
func (o *Output) SetPrefix(prefix string) {
	o.mu.Lock()
	defer o.mu.Unlock()

	o.prefix = prefix
}

// Writer returns the writer of regular output.
func (o *Output) Writer() io.Writer { return o.out }

// Palette returns the styles of o.
func (o *Output) Palette() Palette { return o.palette }

// Renderer returns the renderer of o, for building styles of its own.
func (o *Output) Renderer() *lipgloss.Renderer { return o.renderer }

// Paint returns text in the named color. Lines are styled one at a time so
// multi-line text is not padded.
func (o *Output) Paint(name, text string) string {
	style := o.palette.Style(name)

	lines := strings.Split(text, "\n")
	for i, line := range lines {
		if line != "" {
			lines[i] = style.Render(line)
		}
	}

	return strings.Join(lines, "\n")
}

// Sprint returns the concatenated, colored segments.
func (o *Output) Sprint(segs ...Segment) string {
	var sb strings.Builder
	for _, s := range segs {
		sb.WriteString(o.Paint(s.Color, s.Text))
	}

	return sb.String()
}

// CPrint writes the segments followed by a newline to the regular output.
func (o *Output) CPrint(segs ...Segment) {
	o.write(o.out, o.Sprint(segs...)+"\n")
}

// CWrite writes the segments to the regular output.
func (o *Output) CWrite(segs ...Segment) {
	o.write(o.out, o.Sprint(segs...))
}

func (o *Output) write(w io.Writer, s string) {
	o.mu.Lock()
	defer o.mu.Unlock()

	io.WriteString(w, s)
}

// Debug writes what followed by each obj in its %+v form.
func (o *Output) Debug(what string, objs ...any) {
	var sb strings.Builder

	sb.WriteString(o.Sprint(S("lightgray", "DBG: "), S("lightgray", what)))
	sb.WriteByte('\n')

	for _, obj := range objs {
		sb.WriteString(o.Paint("debug", fmt.Sprintf("%+v", obj)))
		sb.WriteByte('\n')
	}

	o.write(o.err, sb.String())
}

// Info writes args separated by spaces to the regular output.
func (o *Output) Info(args ...any) {
	o.CPrint(S("info", join(" ", args)))
}

// Warning writes a warning without file position.
func (o *Output) Warning(args ...any) { o.IOWarning("", 0, args...) }

// Error writes an error without file position.
func (o *Output) Error(args ...any) { o.IOError("", 0, args...) }

// Fatal writes a fatal error without file position. The caller decides
// whether to exit.
func (o *Output) Fatal(args ...any) { o.IOFatal("", 0, args...) }

// IOWarning writes a warning about line of file. An empty file or a
// non-positive line is omitted.
func (o *Output) IOWarning(file string, line int, args ...any) {
	o.ioprint("warn", "Warning", file, line, args)
}

// IOError writes an error about line of file.
func (o *Output) IOError(file string, line int, args ...any) {
	o.ioprint("error", "Error", file, line, args)
}

// IOFatal writes a fatal error about line of file.
func (o *Output) IOFatal(file string, line int, args ...any) {
	o.ioprint("fatal", "Fatal", file, line, args)
}

func (o *Output) ioprint(tag, level, file string, line int, args []any) {
	o.mu.Lock()
	prefix := o.prefix
	o.mu.Unlock()

	segs := []Segment{S("premsg", prefix), S("sep", ": ")}

	if file != "" {
		segs = append(segs, S("premsg", file))

		if line > 0 {
			segs = append(segs, S("sep", ":"), S("num", fmt.Sprint(line)))
		}

		segs = append(segs, S("sep", ": "))
	}

	segs = append(segs, S(tag, level), S("sep", ": "), S(tag, join(": ", args)))

	o.write(o.err, o.Sprint(segs...)+"\n")
}

// Warn writes a diagnostic record as an I/O warning. The attributes
// "template" (or "file") and "line" give the position, "variable" leads
// the message and "suggest" lists alternatives.
func (o *Output) Warn(msg string, attrs ...slog.Attr) {
	var (
		file    string
		line    int
		args    []any
		suggest []string
	)

	for _, a := range attrs {
		v := a.Value.Resolve()

		switch a.Key {
		case "template", "file":
			file = v.String()
		case "line":
			if v.Kind() == slog.KindInt64 {
				line = int(v.Int64())
			}
		case "variable":
			args = append(args, v.String())
		case "suggest":
			if ss, ok := v.Any().([]string); ok {
				suggest = ss
			}
		}
	}

	args = append(args, msg)
	if len(suggest) > 0 {
		args = append(args, "did you mean "+strings.Join(suggest, ", ")+"?")
	}

	o.IOWarning(file, line, args...)
}

// HR writes a horizontal rule of n box-drawing characters.
func (o *Output) HR(n int, double bool, color string) {
	o.CPrint(S(color, Rule(n, double)))
}

// Rule returns a horizontal rule of n box-drawing characters.
func Rule(n int, double bool) string {
	if double {
		return strings.Repeat("\u2550", max(n, 0))
	}

	return strings.Repeat("\u2500", max(n, 0))
}

// Underline returns s with a combining low line after every rune.
func Underline(s string) string {
	var sb strings.Builder
	for _, r := range s {
		sb.WriteRune(r)
		sb.WriteRune('\u0332')
	}

	return sb.String()
}

func join(sep string, args []any) string {
	part := make([]string, len(args))
	for i, a := range args {
		part[i] = fmt.Sprint(a)
	}

	return strings.Join(part, sep)
}
