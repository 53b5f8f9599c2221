package atat

import (
	"log/slog"

	"github.com/sahilm/fuzzy"

	"github.com/roadnarrows/rnmake/log"
)

// Sink receives the diagnostics of an [Engine].
//
// [log.Logger] satisfies Sink, as does the terminal writer of the color
// package.
type Sink interface {
	Warn(msg string, attrs ...slog.Attr)
}

// Diagnostic attribute keys.
const (
	AttrTemplate = "template"
	AttrLine     = "line"
	AttrVariable = "variable"
	AttrFormat   = "format"
	AttrSuggest  = "suggest"
)

// MsgUndefined is the diagnostic message of an unresolved tag.
const MsgUndefined = "undefined variable"

// maxSuggestions bounds the "did you mean" candidates of one diagnostic.
const maxSuggestions = 3

// defaultSink forwards to the package logger at the time of the call.
type defaultSink struct{}

func (defaultSink) Warn(msg string, attrs ...slog.Attr) { log.Warn(msg, attrs...) }

// Suggest returns up to three names from candidates that fuzzily match
// name, best match first.
func Suggest(name string, candidates []string) []string {
	matches := fuzzy.Find(name, candidates)

	out := make([]string, 0, min(len(matches), maxSuggestions))
	for _, m := range matches {
		if len(out) == maxSuggestions {
			break
		}

		if m.Str != name {
			out = append(out, m.Str)
		}
	}

	return out
}

func (e *Engine) undefined(t Tag) {
	attrs := []slog.Attr{
		slog.String(AttrTemplate, e.template),
		slog.Int(AttrLine, t.Line),
		slog.String(AttrVariable, t.Name),
	}

	if t.Format != "" {
		attrs = append(attrs, slog.String(AttrFormat, t.Format))
	}

	if s := Suggest(t.Name, e.env.Names()); len(s) > 0 {
		attrs = append(attrs, slog.Any(AttrSuggest, s))
	}

	e.sink.Warn(MsgUndefined, attrs...)
}
