package cmd

import (
	"bytes"
	"context"
	"log/slog"
	"os"
	"reflect"
	"slices"
	"strings"

	"github.com/alecthomas/kong"
	"github.com/goccy/go-yaml"
	"github.com/natefinch/atomic"

	"github.com/roadnarrows/rnmake/log"
	"github.com/roadnarrows/rnmake/profile"
)

// defaultConfigIndent is the number of spaces to use for indentation
// when generating the default configuration file.
const defaultConfigIndent = 2

// Init generates a configuration file with current flag values.
//
// Global flags are written as top-level keys and the flags of each command
// as a mapping named after the command. Unset strings and empty lists are
// left out.
type Init struct {
	Force bool `help:"Overwrite existing configuration file." short:"f"`
}

// Run executes the init command.
func (i *Init) Run(ctx context.Context) (err error) {
	ctx, cancel := context.WithCancelCause(ctx)

	defer func(err *error) { cancel(*err) }(&err)

	ktx := kongContextFrom(ctx)

	confPath, ok := ktx.Model.Vars()[ConfigIdentifier]
	if !ok {
		panic("internal error: configuration path undefined")
	}

	// Check if file exists and force not set
	_, err = os.Stat(confPath)
	if err == nil && !i.Force {
		return ErrWriteConfig.
			With(slog.String("file", confPath)).
			With(slog.Bool("exists", true)).
			Wrap(ErrFileExists)
	}

	data, err := yaml.MarshalContext(ctx, i.buildConfig(ktx), yaml.Indent(defaultConfigIndent))
	if err != nil {
		return ErrYAMLMarshal.Wrap(err)
	}

	err = atomic.WriteFile(confPath, bytes.NewReader(data))
	if err != nil {
		return ErrWriteConfig.
			With(slog.String("file", confPath)).
			Wrap(err)
	}

	log.DebugContext(
		ctx,
		"initialized configuration file",
		slog.String("path", confPath),
	)

	return nil
}

// buildConfig collects the configuration mapping from the flags of ktx.
func (i *Init) buildConfig(ktx *kong.Context) yaml.MapSlice {
	conf := flagItems(ktx, ktx.Model.Flags)

	for _, node := range ktx.Model.Children {
		if node.Type != kong.CommandNode || node.Hidden {
			continue
		}

		if items := flagItems(ktx, node.Flags); len(items) > 0 {
			conf = append(conf, yaml.MapItem{Key: node.Name, Value: items})
		}
	}

	return conf
}

// flagItems returns the configurable flags of flags with their values.
func flagItems(ktx *kong.Context, flags []*kong.Flag) yaml.MapSlice {
	prefixIgnore := []string{"help", profile.Tag}

	var items yaml.MapSlice

	for _, flag := range flags {
		if flag.Hidden || slices.ContainsFunc(prefixIgnore, func(s string) bool {
			return strings.HasPrefix(flag.Name, s)
		}) {
			continue
		}

		if val := configValue(ktx.FlagValue(flag)); val != nil {
			items = append(items, yaml.MapItem{Key: flag.Name, Value: val})
		}
	}

	return items
}

// configValue returns v as written to the configuration file, or nil if v
// is unset.
func configValue(v any) any {
	switch v := v.(type) {
	case nil:
		return nil

	case string:
		if v == "" {
			return nil
		}

		return v

	case []string:
		if len(v) == 0 {
			return nil
		}

		return v

	case bool, int, int8, int16, int32, int64,
		uint, uint8, uint16, uint32, uint64, float32, float64:
		return v

	default:
		// Named string types, such as the log flags.
		if rv := reflect.ValueOf(v); rv.Kind() == reflect.String {
			return configValue(rv.String())
		}

		return nil
	}
}
