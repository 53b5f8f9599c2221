package cmd

import (
	"context"
	"errors"
	"log/slog"
	"os"
	"path/filepath"
	"sync"
	"time"

	"github.com/fsnotify/fsnotify"

	"github.com/roadnarrows/rnmake/log"
)

// debounceInterval is the quiet time after a file event before a watched
// template is rendered again.
const debounceInterval = 100 * time.Millisecond

// Render renders an AtAt template with variables from variable files and
// VAR=VAL assignments. Variable names are case sensitive.
//
// By default the result is left in TEMPLATE.tmp.
type Render struct {
	View viewConfig `embed:""`

	Output  string `help:"Move the result to FILE."            placeholder:"FILE" short:"o" type:"path" xor:"dest"`
	InPlace bool   `help:"Replace TEMPLATE with the result."                      short:"i"             xor:"dest"`
	Watch   bool   `help:"Render again whenever TEMPLATE or a variables file changes." short:"w"`

	Args []string `arg:"" help:"TEMPLATE and any VAR=VAL assignments." name:"arg"`

	mu       sync.Mutex
	debounce time.Duration
}

// Run executes the render command.
func (r *Render) Run(ctx context.Context) error {
	args, assigns := SplitAssignments(r.Args)

	switch len(args) {
	case 0:
		return ErrUsage.Wrap(errors.New("no TEMPLATE specified"))
	case 1:
	default:
		return ErrUsage.With(slog.Any("args", args[1:])).
			Wrap(errors.New("unexpected arguments"))
	}

	template := args[0]

	if r.Watch && r.InPlace {
		return ErrUsage.Wrap(errors.New("--watch cannot be combined with --in-place"))
	}

	if r.Watch && r.Output != "" && sameFile(r.Output, template) {
		return ErrUsage.Wrap(errors.New("--output must differ from TEMPLATE with --watch"))
	}

	render := func() error { return r.render(ctx, template, assigns) }

	if err := render(); err != nil {
		if !r.Watch {
			return err
		}

		log.ErrorContext(ctx, "render failed", slog.Any("error", err))
	}

	if !r.Watch {
		return nil
	}

	return r.watch(ctx, template, render)
}

// render makes one complete pass: variables are read again, so changes to
// variable files take effect.
func (r *Render) render(ctx context.Context, template string, assigns map[string]any) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	vars, err := userVars(ctx, assigns)
	if err != nil {
		return err
	}

	e := newEngine(outputFrom(ctx), vars)

	if r.View.enabled() {
		return r.View.show(ctx, e, template)
	}

	path, err := e.Rewrite(template, r.InPlace)
	if err != nil {
		return ErrTemplate.Wrap(err)
	}

	if r.Output != "" {
		if err := publish(path, r.Output); err != nil {
			return err
		}

		path = r.Output
	}

	log.InfoContext(ctx, "rendered",
		slog.String("template", template),
		slog.String("file", path),
	)

	return nil
}

// watch calls render after changes to template or a variables file until
// ctx is done. Bursts of events within the debounce interval cause one
// render.
//
// Directories are watched rather than files, so editors that save by
// renaming a new file over the old one are seen.
func (r *Render) watch(ctx context.Context, template string, render func() error) error {
	w, err := fsnotify.NewWatcher()
	if err != nil {
		return ErrWatch.Wrap(err)
	}
	defer w.Close()

	targets := make(map[string]struct{})
	dirs := make(map[string]struct{})

	for _, path := range append([]string{template}, varsFilesFrom(ctx).watchPaths()...) {
		abs, err := filepath.Abs(path)
		if err != nil {
			return ErrWatch.With(slog.String("file", path)).Wrap(err)
		}

		targets[abs] = struct{}{}
		dirs[filepath.Dir(abs)] = struct{}{}
	}

	for dir := range dirs {
		if err := w.Add(dir); err != nil {
			return ErrWatch.With(slog.String("dir", dir)).Wrap(err)
		}
	}

	interval := r.debounce
	if interval <= 0 {
		interval = debounceInterval
	}

	timer := time.NewTimer(interval)
	timer.Stop()

	log.InfoContext(ctx, "watching", slog.String("template", template))

	for {
		select {
		case <-ctx.Done():
			log.DebugContext(ctx, "watch stopped")

			return nil

		case event, ok := <-w.Events:
			if !ok {
				return ErrWatch.Wrap(errors.New("event channel closed"))
			}

			if _, ok := targets[filepath.Clean(event.Name)]; !ok ||
				!event.Has(fsnotify.Write|fsnotify.Create|fsnotify.Rename) {
				continue
			}

			log.DebugContext(ctx, "file event",
				slog.String("file", event.Name),
				slog.String("op", event.Op.String()),
			)

			timer.Reset(interval)

		case err, ok := <-w.Errors:
			if !ok {
				return ErrWatch.Wrap(errors.New("error channel closed"))
			}

			log.WarnContext(ctx, "watch error", slog.Any("error", err))

		case <-timer.C:
			if err := render(); err != nil {
				log.ErrorContext(ctx, "render failed", slog.Any("error", err))
			}
		}
	}
}

// watchPaths returns the regular files of f.
func (f *varsFiles) watchPaths() []string {
	if f == nil {
		return nil
	}

	return f.paths
}

// sameFile reports whether a and b name the same file.
func sameFile(a, b string) bool {
	ka, okA := statKey(a)
	kb, okB := statKey(b)

	if okA && okB {
		return ka == kb
	}

	absA, errA := filepath.Abs(a)
	absB, errB := filepath.Abs(b)

	return errA == nil && errB == nil && absA == absB
}

func statKey(path string) (fileKey, bool) {
	info, err := os.Stat(path)
	if err != nil {
		return fileKey{}, false
	}

	return makeFileKey(info)
}
