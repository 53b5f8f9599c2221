package cmd

import (
	"log/slog"
	"os"

	"github.com/natefinch/atomic"
)

// publish moves src to dst. Within one file system this is an atomic
// rename; otherwise src is copied with [copyFile] and then removed.
func publish(src, dst string) error {
	if err := atomic.ReplaceFile(src, dst); err == nil {
		return nil
	}

	if err := copyFile(src, dst); err != nil {
		return err
	}

	if err := os.Remove(src); err != nil {
		return ErrPublish.With(slog.String("file", src)).Wrap(err)
	}

	return nil
}

// copyFile atomically writes the content of src to dst and gives dst the
// permission bits of src.
func copyFile(src, dst string) error {
	f, err := os.Open(src)
	if err != nil {
		return ErrPublish.With(slog.String("file", src)).Wrap(err)
	}
	defer f.Close()

	info, err := f.Stat()
	if err != nil {
		return ErrPublish.With(slog.String("file", src)).Wrap(err)
	}

	if err := atomic.WriteFile(dst, f); err != nil {
		return ErrPublish.With(slog.String("file", dst)).Wrap(err)
	}

	if err := os.Chmod(dst, info.Mode().Perm()); err != nil {
		return ErrPublish.With(slog.String("file", dst)).Wrap(err)
	}

	return nil
}
