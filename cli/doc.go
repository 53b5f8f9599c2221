// Package cli contains the command line interface for rnmake.
//
// # Commands
//
//	rnmake home TEMPLATE DOC_ROOT [VAR=VAL...]
//	rnmake pydoc PYDOC_ROOT SETUP_PY [VAR=VAL...]
//	rnmake render TEMPLATE [VAR=VAL...]
//	rnmake init [--force]
//	rnmake version
//
// Template variables come from the command itself, then from each
// --vars-file in order, then from VAR=VAL arguments. Later sources win.
//
// # Configuration
//
// Flag defaults are read from config.yaml in the user configuration
// directory ($XDG_CONFIG_HOME/rnmake on Linux). See [resolve] for the layout.
// "rnmake init" writes the current flag values there.
//
// # Logging Options
//
//   - --log-level: minimum log level (debug, info, warn, error)
//   - --log-format: log output format (text, json)
//   - --log-time: timestamp layout (RFC3339, Kitchen, none, or a Go layout)
//   - --log-caller: include caller information
//   - --log-pretty: colorize text logs
//
// # Profiling Options
//
// Profiling is only available when built with the pprof build tag:
//
//	go build -tags pprof .
//
//   - --pprof-mode: profiling mode (allocs, block, clock, cpu, goroutine,
//     heap, mem, mutex, thread, trace)
//   - --pprof-dir: profile output directory
package cli
