package atat

import (
	"bufio"
	"errors"
	"io"
	"io/fs"
	"os"

	"github.com/natefinch/atomic"
)

// TempSuffix is appended to a template path to name the output of
// [Engine.Rewrite].
const TempSuffix = ".tmp"

// Rewrite renders the template at path line by line into path+[TempSuffix],
// which receives the permission bits of path.
//
// With overwrite, the temporary file then atomically replaces path and path
// is returned. Otherwise the temporary path is returned and path is left
// untouched. On failure the temporary file, if created, is left on disk.
//
// Rewrite discards any template held by the engine; afterwards the engine
// is empty with its runtime built-ins pointing at path.
func (e *Engine) Rewrite(path string, overwrite bool) (string, error) {
	e.reset(path)

	tmp := path + TempSuffix

	src, err := os.Open(path)
	if err != nil {
		return "", ioError(path, 0, err)
	}
	defer src.Close()

	info, err := src.Stat()
	if err != nil {
		return "", ioError(path, 0, err)
	}

	mode := info.Mode() & (fs.ModePerm | fs.ModeSetuid | fs.ModeSetgid | fs.ModeSticky)

	dst, err := os.OpenFile(tmp, os.O_WRONLY|os.O_CREATE|os.O_TRUNC, mode.Perm())
	if err != nil {
		return "", ioError(tmp, 0, err)
	}

	if err := e.stream(dst, src, path); err != nil {
		dst.Close()

		return "", err
	}

	// The creation mode is subject to the umask.
	if err := dst.Chmod(mode); err != nil {
		dst.Close()

		return "", ioError(tmp, 0, err)
	}

	if err := dst.Close(); err != nil {
		return "", ioError(tmp, 0, err)
	}

	if !overwrite {
		return tmp, nil
	}

	if err := atomic.ReplaceFile(tmp, path); err != nil {
		return "", ioError(path, 0, err)
	}

	return path, nil
}

func (e *Engine) stream(dst io.Writer, src io.Reader, path string) error {
	r := bufio.NewReader(src)
	w := bufio.NewWriter(dst)

	for lineNum := 1; ; lineNum++ {
		line, err := r.ReadString('\n')
		if line != "" {
			if rerr := e.renderLine(w, line, lineNum); rerr != nil {
				return rerr
			}
		}

		if errors.Is(err, io.EOF) {
			break
		}

		if err != nil {
			return ioError(path, lineNum, err)
		}
	}

	if err := w.Flush(); err != nil {
		return ioError(path+TempSuffix, 0, err)
	}

	return nil
}
