package atat

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"strings"

	"github.com/goccy/go-yaml"
)

// Output formats of [FormatReferences] and [FormatVars].
const (
	FormatText = "text"
	FormatJSON = "json"
	FormatYAML = "yaml"
)

// ErrFormat reports an unknown output format.
var ErrFormat = NewError("unknown output format")

// Formats returns the supported output formats.
func Formats() []string { return []string{FormatText, FormatJSON, FormatYAML} }

// FormatReferences writes tags to w in the given output format. An indent
// of 0 selects the compact form of json and the flow style of yaml.
func FormatReferences(ctx context.Context, w io.Writer, tags []Tag, format string, indent int) error {
	if tags == nil {
		tags = []Tag{}
	}

	switch format {
	case FormatText:
		for _, t := range tags {
			_, err := fmt.Fprintf(w, "%d\t%d-%d\t%s\t%s\n",
				t.Line, t.ColStart, t.ColEnd, t.Name, t.Format)
			if err != nil {
				return err
			}
		}

		return nil

	case FormatJSON:
		return writeJSON(w, tags, indent)

	case FormatYAML:
		return writeYAML(ctx, w, tags, indent)
	}

	return ErrFormat.Wrap(fmt.Errorf("%q", format))
}

// FormatVars writes the variables resolvable in env, sorted by name, with
// their display form (see [Value.String]).
func FormatVars(ctx context.Context, w io.Writer, env *Env, format string, indent int) error {
	names := env.Names()

	switch format {
	case FormatText:
		width := 0
		for _, name := range names {
			width = max(width, len(name))
		}

		for _, name := range names {
			v, _ := env.Lookup(name)
			if _, err := fmt.Fprintf(w, "%-*s = %s\n", width, name, v); err != nil {
				return err
			}
		}

		return nil

	case FormatJSON:
		m := make(map[string]string, len(names))
		for _, name := range names {
			v, _ := env.Lookup(name)
			m[name] = v.String()
		}

		return writeJSON(w, m, indent)

	case FormatYAML:
		ms := make(yaml.MapSlice, 0, len(names))
		for _, name := range names {
			v, _ := env.Lookup(name)
			ms = append(ms, yaml.MapItem{Key: name, Value: v.String()})
		}

		return writeYAML(ctx, w, ms, indent)
	}

	return ErrFormat.Wrap(fmt.Errorf("%q", format))
}

func writeJSON(w io.Writer, v any, indent int) error {
	var (
		data []byte
		err  error
	)

	if indent > 0 {
		data, err = json.MarshalIndent(v, "", strings.Repeat(" ", indent))
	} else {
		data, err = json.Marshal(v)
	}

	if err != nil {
		return err
	}

	_, err = fmt.Fprintln(w, string(data))

	return err
}

func writeYAML(ctx context.Context, w io.Writer, v any, indent int) error {
	var opts []yaml.EncodeOption
	if indent > 0 {
		opts = append(opts, yaml.Indent(indent))
	} else {
		opts = append(opts, yaml.Flow(true))
	}

	data, err := yaml.MarshalContext(ctx, v, opts...)
	if err != nil {
		return err
	}

	_, err = fmt.Fprint(w, string(data))

	return err
}
