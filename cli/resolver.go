package cli

import (
	"io"
	"strconv"
	"strings"

	"github.com/alecthomas/kong"
	"github.com/goccy/go-yaml"
)

// resolve is a [kong.ConfigurationLoader] for YAML configuration files.
//
// It can be used with [kong.Configuration] like this:
//
//	kong.Configuration(resolve, "/path/to/config.yaml")
//
// Top-level scalar and list keys apply to flags of any command. A top-level
// mapping named after a command applies only to flags of that command and
// wins over a top-level key of the same name:
//
//	log-level: debug
//	color: false
//	home:
//	  images-path: img:assets
//	render:
//	  format: yaml
//
// Keys may spell flag names with hyphens or underscores ("log_level").
// Command-line flags override configuration values. An empty file is an
// empty configuration; a malformed one is an error.
func resolve(r io.Reader) (kong.Resolver, error) {
	data, err := io.ReadAll(r)
	if err != nil {
		return nil, err
	}

	var raw map[string]any
	if err := yaml.Unmarshal(data, &raw); err != nil {
		return nil, err
	}

	return makeConfig(raw), nil
}

// config implements [kong.Resolver] over a decoded YAML mapping.
type config struct {
	global  map[string]any
	command map[string]map[string]any
}

func makeConfig(raw map[string]any) config {
	c := config{
		global:  make(map[string]any),
		command: make(map[string]map[string]any),
	}

	for key, val := range raw {
		key = normalize(key)

		if sub, ok := val.(map[string]any); ok {
			m := make(map[string]any, len(sub))
			for k, v := range sub {
				m[normalize(k)] = scalar(v)
			}

			c.command[key] = m

			continue
		}

		c.global[key] = scalar(val)
	}

	return c
}

// Validate implements [kong.Resolver].
func (config) Validate(*kong.Application) error { return nil }

// Resolve implements [kong.Resolver].
func (c config) Resolve(
	_ *kong.Context,
	parent *kong.Path,
	flag *kong.Flag,
) (any, error) {
	name := normalize(flag.Name)

	if parent != nil && parent.Command != nil {
		if v, ok := c.command[normalize(parent.Command.Name)][name]; ok {
			return v, nil
		}
	}

	if v, ok := c.global[name]; ok {
		return v, nil
	}

	// Not found: kong keeps the default.
	return nil, nil
}

// normalize maps a flag or key name to its hyphenated form.
func normalize(name string) string {
	return strings.ReplaceAll(name, "_", "-")
}

// scalar converts numbers to strings, which kong requires for parsing.
// Lists are converted element-wise.
func scalar(v any) any {
	switch v := v.(type) {
	case int:
		return strconv.Itoa(v)
	case int64:
		return strconv.FormatInt(v, 10)
	case uint64:
		return strconv.FormatUint(v, 10)
	case float64:
		return strconv.FormatFloat(v, 'f', -1, 64)
	case []any:
		out := make([]any, len(v))
		for i, e := range v {
			out[i] = scalar(e)
		}

		return out
	default:
		return v
	}
}
