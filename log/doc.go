// Package log provides a simplified structured logging interface based on
// [log/slog].
//
// Configuration (level, output format, timestamp layout, caller info and
// colorized text) is applied at logger creation time using functional
// options.
//
// # Basic Usage
//
//	logger := log.Make(os.Stderr)
//	logger.Info("rendered template", slog.String("path", path))
//	logger.Warn("undefined variable", slog.String("variable", name))
//
// # Configuration
//
//	logger := log.Make(os.Stderr,
//		log.WithLevel(log.LevelDebug),
//		log.WithTimeLayout("Kitchen"),
//		log.WithFormat(log.FormatJSON))
//
// # Default Logger
//
// Package-level functions ([Debug], [Info], [Warn], [Error] and their
// Context variants) log through a process-wide default logger that writes
// to standard error. [Config] reconfigures it; the CLI does so from its
// --log-* flags.
//
// [Logger] satisfies the diagnostic sink interface of the atat package, so
// undefined template variables can be reported through any logger.
//
// # Output Formats
//
// [FormatText] (default) and [FormatJSON]. Text output is colorized with
// lipgloss when [WithPretty] is enabled and the output is a terminal.
package log
