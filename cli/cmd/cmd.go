package cmd

import (
	"context"
	"io"
	"iter"
	"log/slog"
	"os"
	"path/filepath"
	"syscall"

	"github.com/alecthomas/kong"
	"github.com/goccy/go-yaml"

	"github.com/roadnarrows/rnmake/color"
	"github.com/roadnarrows/rnmake/pkg"
)

// ContextKey is used to store a [kong.Context] value in [context.Context].
type contextKey struct{}

// WithContext returns a new context.Context containing the given kong.Context.
func WithContext(ctx context.Context, ktx *kong.Context) context.Context {
	return context.WithValue(ctx, contextKey{}, ktx)
}

func kongContextFrom(ctx context.Context) *kong.Context {
	ktx, ok := ctx.Value(contextKey{}).(*kong.Context)
	if !ok || ktx == nil {
		return nil
	}

	return ktx
}

type outputKey struct{}

// WithOutput returns a new context.Context carrying the terminal output used
// by commands for reports and template diagnostics.
func WithOutput(ctx context.Context, out *color.Output) context.Context {
	return context.WithValue(ctx, outputKey{}, out)
}

// outputFrom returns the output stored by WithOutput, or a default output
// on the standard streams.
func outputFrom(ctx context.Context) *color.Output {
	if out, ok := ctx.Value(outputKey{}).(*color.Output); ok && out != nil {
		return out
	}

	return color.New(color.WithPrefix(pkg.Prefix()))
}

type varsFilesKey struct{}

// varsFiles is an ordered, duplicate-free list of YAML variable files.
type varsFiles struct {
	paths    []string
	hasStdin bool
}

// fileKey uniquely identifies a file by its device and inode numbers.
// This handles deduplication across symlinks, absolute/relative paths, and
// special device files.
type fileKey struct {
	dev uint64
	ino uint64
}

// stdinSource is the special source indicator for reading from stdin.
const stdinSource = "-"

// WithVarsFiles returns a new context.Context listing the variable files
// named by sources.
//
// Files are deduplicated by device and inode, so a file named twice (by
// symlink, relative or absolute path) is read once at its first position.
// Every "-" collapses into a single read of stdin, placed last so that it
// wins over regular files. Files that cannot be opened are skipped.
func WithVarsFiles(ctx context.Context, sources []string) context.Context {
	return context.WithValue(ctx, varsFilesKey{}, buildVarsFiles(sources))
}

func buildVarsFiles(sources []string) *varsFiles {
	if len(sources) == 0 {
		return nil
	}

	var files varsFiles

	seen := make(map[fileKey]struct{})

	stdinInfo, _ := os.Stdin.Stat()
	stdinKey, _ := makeFileKey(stdinInfo)

	for _, src := range sources {
		if src == stdinSource {
			seen[stdinKey] = struct{}{}

			continue
		}

		path, ok := uniqueFile(src, seen)
		if !ok {
			continue
		}

		files.paths = append(files.paths, path)
	}

	// Stdin may have been included via "-" or as a named file.
	// Both of which will be represented by stdinKey in seen.
	_, files.hasStdin = seen[stdinKey]

	if len(files.paths) == 0 && !files.hasStdin {
		return nil
	}

	return &files
}

// uniqueFile resolves path and reports whether it names a regular file not
// seen before.
func uniqueFile(path string, seen map[fileKey]struct{}) (string, bool) {
	absPath, err := filepath.Abs(path)
	if err != nil {
		return "", false
	}

	resolved, err := filepath.EvalSymlinks(absPath)
	if err != nil {
		return "", false
	}

	info, err := os.Stat(resolved)
	if err != nil {
		return "", false
	}

	key, ok := makeFileKey(info)
	if !ok {
		return "", false
	}

	if _, exists := seen[key]; exists {
		return "", false
	}

	seen[key] = struct{}{}

	return resolved, true
}

// makeFileKey creates a fileKey from os.FileInfo.
// Returns false if the underlying Sys() data is not of type *syscall.Stat_t.
func makeFileKey(info os.FileInfo) (key fileKey, ok bool) {
	if info == nil {
		return key, false
	}

	stat, ok := info.Sys().(*syscall.Stat_t)
	if !ok {
		return key, false
	}

	return fileKey{dev: uint64(stat.Dev), ino: stat.Ino}, true
}

func varsFilesFrom(ctx context.Context) *varsFiles {
	f, _ := ctx.Value(varsFilesKey{}).(*varsFiles)

	return f
}

// IsZero reports whether there are no variable files.
func (f *varsFiles) IsZero() bool {
	return f == nil || (len(f.paths) == 0 && !f.hasStdin)
}

// sources yields the name and content reader of each file in order. The
// caller closes each reader.
func (f *varsFiles) sources() iter.Seq2[string, func() (io.ReadCloser, error)] {
	return func(yield func(string, func() (io.ReadCloser, error)) bool) {
		if f == nil {
			return
		}

		for _, path := range f.paths {
			if !yield(path, func() (io.ReadCloser, error) { return os.Open(path) }) {
				return
			}
		}

		if f.hasStdin {
			yield("<stdin>", func() (io.ReadCloser, error) { return io.NopCloser(os.Stdin), nil })
		}
	}
}

// load decodes every file as a YAML mapping and merges them in order.
func (f *varsFiles) load(ctx context.Context) (map[string]any, error) {
	vars := make(map[string]any)

	for name, open := range f.sources() {
		if err := decodeVars(ctx, name, open, vars); err != nil {
			return nil, err
		}
	}

	return vars, nil
}

func decodeVars(
	ctx context.Context,
	name string,
	open func() (io.ReadCloser, error),
	into map[string]any,
) error {
	r, err := open()
	if err != nil {
		return ErrVarsFile.With(slog.String("file", name)).Wrap(err)
	}
	defer r.Close()

	data, err := io.ReadAll(r)
	if err != nil {
		return ErrVarsFile.With(slog.String("file", name)).Wrap(err)
	}

	var m map[string]any
	if err := yaml.UnmarshalContext(ctx, data, &m); err != nil {
		return ErrVarsFile.With(slog.String("file", name)).Wrap(err)
	}

	for k, v := range m {
		into[k] = v
	}

	return nil
}
