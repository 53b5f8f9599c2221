package log

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"log/slog"
	"strconv"
	"strings"
	"sync"

	"github.com/charmbracelet/lipgloss"
)

// prettyStyles are the lipgloss styles used by prettyHandler. They are bound
// to a renderer for the handler's writer, so output written to a file or
// buffer carries no escape sequences.
type prettyStyles struct {
	key, str, num, time lipgloss.Style
	on, off             lipgloss.Style
	debug, info         lipgloss.Style
	warn, err           lipgloss.Style
}

func makePrettyStyles(w io.Writer) prettyStyles {
	r := lipgloss.NewRenderer(w)
	fg := func(c string) lipgloss.Style {
		return r.NewStyle().Foreground(lipgloss.Color(c))
	}

	return prettyStyles{
		key:   fg("8"),
		str:   fg("6"),
		num:   fg("3"),
		time:  fg("4"),
		on:    fg("2"),
		off:   fg("1"),
		debug: fg("4"),
		info:  fg("2").Bold(true),
		warn:  fg("3").Bold(true),
		err:   fg("1").Bold(true),
	}
}

// prettyHandler is a colorized, human-oriented text handler. Records are
// written on one line as "time LEVEL message key=value ...".
type prettyHandler struct {
	opts       slog.HandlerOptions
	formatTime FormatTime
	styles     prettyStyles
	mu         *sync.Mutex
	w          io.Writer
	group      string // dotted prefix applied to attribute keys
	attrs      []byte // pre-rendered attributes from WithAttrs
}

func newPrettyHandler(
	w io.Writer,
	opts *slog.HandlerOptions,
	formatTime FormatTime,
) *prettyHandler {
	return &prettyHandler{
		opts:       *opts,
		formatTime: formatTime,
		styles:     makePrettyStyles(w),
		mu:         &sync.Mutex{},
		w:          w,
	}
}

func (h *prettyHandler) Enabled(_ context.Context, level slog.Level) bool {
	minLevel := slog.LevelInfo
	if h.opts.Level != nil {
		minLevel = h.opts.Level.Level()
	}

	return level >= minLevel
}

func (h *prettyHandler) Handle(_ context.Context, r slog.Record) error {
	buf := new(bytes.Buffer)

	if !r.Time.IsZero() && h.formatTime != nil {
		if ts := h.formatTime(r.Time); ts != "" {
			buf.WriteString(h.styles.time.Render(ts))
			buf.WriteByte(' ')
		}
	}

	buf.WriteString(h.levelStyle(r.Level).Render(fmt.Sprintf("%-5s", r.Level.String())))

	if h.opts.AddSource && r.PC != 0 {
		if src := r.Source(); src != nil {
			buf.WriteByte(' ')
			buf.WriteString(h.styles.key.Render(src.File + ":" + strconv.Itoa(src.Line)))
		}
	}

	buf.WriteByte(' ')
	buf.WriteString(r.Message)

	buf.Write(h.attrs)

	r.Attrs(func(a slog.Attr) bool {
		h.writeAttr(buf, h.group, a)

		return true
	})

	buf.WriteByte('\n')

	h.mu.Lock()
	defer h.mu.Unlock()

	_, err := h.w.Write(buf.Bytes())

	return err
}

func (h *prettyHandler) WithAttrs(attrs []slog.Attr) slog.Handler {
	h2 := *h
	buf := bytes.NewBuffer(append([]byte(nil), h.attrs...))

	for _, a := range attrs {
		h2.writeAttr(buf, h.group, a)
	}

	h2.attrs = buf.Bytes()

	return &h2
}

func (h *prettyHandler) WithGroup(name string) slog.Handler {
	if name == "" {
		return h
	}

	h2 := *h
	h2.group = h.group + name + "."

	return &h2
}

func (h *prettyHandler) levelStyle(level slog.Level) lipgloss.Style {
	switch {
	case level >= slog.LevelError:
		return h.styles.err
	case level >= slog.LevelWarn:
		return h.styles.warn
	case level >= slog.LevelInfo:
		return h.styles.info
	default:
		return h.styles.debug
	}
}

// writeAttr renders a as " key=value", flattening groups into dotted keys.
func (h *prettyHandler) writeAttr(buf *bytes.Buffer, group string, a slog.Attr) {
	a.Value = a.Value.Resolve()
	if a.Equal(slog.Attr{}) {
		return
	}

	if a.Value.Kind() == slog.KindGroup {
		prefix := group
		if a.Key != "" {
			prefix += a.Key + "."
		}

		for _, ga := range a.Value.Group() {
			h.writeAttr(buf, prefix, ga)
		}

		return
	}

	buf.WriteByte(' ')
	buf.WriteString(h.styles.key.Render(group + a.Key + "="))
	buf.WriteString(h.renderValue(a.Value))
}

func (h *prettyHandler) renderValue(v slog.Value) string {
	switch v.Kind() {
	case slog.KindString:
		s := v.String()
		if s == "" || strings.ContainsAny(s, " \t\n\"=") {
			s = strconv.Quote(s)
		}

		return h.styles.str.Render(s)

	case slog.KindInt64, slog.KindUint64, slog.KindFloat64:
		return h.styles.num.Render(v.String())

	case slog.KindBool:
		if v.Bool() {
			return h.styles.on.Render("true")
		}

		return h.styles.off.Render("false")

	case slog.KindDuration, slog.KindTime:
		return h.styles.time.Render(v.String())

	default:
		return h.styles.str.Render(v.String())
	}
}
