package atat

import (
	"errors"
	"io"
	"io/fs"
	"log/slog"
	"os"
	"path/filepath"
	"slices"
	"strings"
	"testing"
)

// recorder is a Sink that keeps every diagnostic.
type recorder struct {
	msgs  []string
	attrs [][]slog.Attr
}

func (r *recorder) Warn(msg string, attrs ...slog.Attr) {
	r.msgs = append(r.msgs, msg)
	r.attrs = append(r.attrs, attrs)
}

func (r *recorder) attr(i int, key string) (slog.Value, bool) {
	for _, a := range r.attrs[i] {
		if a.Key == key {
			return a.Value, true
		}
	}

	return slog.Value{}, false
}

func writeTemplate(t *testing.T, content string) string {
	t.Helper()

	path := filepath.Join(t.TempDir(), "index.html.tpl")
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatal(err)
	}

	return path
}

func newTestEngine(vars map[string]any) (*Engine, *recorder) {
	rec := &recorder{}

	return New(WithClock(testClock), WithSink(rec), WithVars(vars)), rec
}

func TestEngine_NoTemplate(t *testing.T) {
	t.Parallel()

	e, _ := newTestEngine(nil)

	if _, err := e.Characterize(); !errors.Is(err, ErrState) {
		t.Errorf("Characterize() error = %v, want %v", err, ErrState)
	}

	if err := e.Parse(); !errors.Is(err, ErrState) {
		t.Errorf("Parse() error = %v, want %v", err, ErrState)
	}

	if e.IsLoaded() || e.IsParsed() {
		t.Error("new engine is not empty")
	}
}

func TestEngine_LoadMissing(t *testing.T) {
	t.Parallel()

	e, _ := newTestEngine(nil)
	path := filepath.Join(t.TempDir(), "missing.tpl")

	err := e.Load(path)
	if !errors.Is(err, ErrIO) || !errors.Is(err, fs.ErrNotExist) {
		t.Fatalf("Load() error = %v, want %v wrapping %v", err, ErrIO, fs.ErrNotExist)
	}

	var aerr *Error
	if !errors.As(err, &aerr) || aerr.File() != path {
		t.Errorf("Load() error = %v, want file %q", err, path)
	}

	if !strings.HasPrefix(err.Error(), path+": ") {
		t.Errorf("Load() error = %q, want prefix %q", err, path)
	}

	if e.IsLoaded() {
		t.Error("IsLoaded() after failed load")
	}
}

func TestEngine_Characterize(t *testing.T) {
	t.Parallel()

	e, rec := newTestEngine(nil)
	if err := e.Load(writeTemplate(t, "<html>\n<body>\n@X@ and @Y:%s-%s@\n</body>\n")); err != nil {
		t.Fatal(err)
	}

	tags, err := e.Characterize()
	if err != nil {
		t.Fatal(err)
	}

	want := []Tag{
		{Name: "X", Line: 3, ColStart: 1, ColEnd: 3, Raw: "@X@"},
		{Name: "Y", Format: "%s-%s", Line: 3, ColStart: 9, ColEnd: 17, Raw: "@Y:%s-%s@"},
	}
	if !slices.Equal(tags, want) {
		t.Errorf("Characterize() = %+v, want %+v", tags, want)
	}

	if tags[0].ColEnd >= tags[1].ColStart {
		t.Errorf("spans overlap: %+v", tags)
	}

	if len(rec.msgs) != 0 || e.IsParsed() {
		t.Error("Characterize() is not read-only")
	}
}

func TestEngine_ParseNoTags(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name string
		in   string
		want string
	}{
		{"trailing newline", "a\nb\n", "a\nb\n"},
		{"no trailing newline", "a\nb", "a\nb"},
		{"trailing blank line", "a\nb\n\n", "a\nb\n"},
		{"trailing blanks", "a\n  \t\n", "a\n"},
		{"two blank lines", "a\n\n\n", "a\n\n"},
		{"email", "mail me@example.com\n", "mail me@example.com\n"},
		{"empty", "", ""},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			e, rec := newTestEngine(nil)
			if err := e.Load(writeTemplate(t, tt.in)); err != nil {
				t.Fatal(err)
			}

			if err := e.Parse(); err != nil {
				t.Fatal(err)
			}

			if got := e.String(); got != tt.want {
				t.Errorf("Parse() = %q, want %q", got, tt.want)
			}

			if got := strings.Join(e.Preparsed(), ""); got != tt.in {
				t.Errorf("Preparsed() = %q, want %q", got, tt.in)
			}

			if len(rec.msgs) != 0 {
				t.Errorf("unexpected diagnostics %v", rec.msgs)
			}
		})
	}
}

func TestEngine_Parse(t *testing.T) {
	t.Parallel()

	e, rec := newTestEngine(map[string]any{
		"PKG_NAME":          "rnmake",
		"PKG_VER":           "1.2.0",
		"AUTHORS":           []string{"Robin", "Kim"},
		"REL_UL_ITER":       Each("README.md", "LICENSE"),
		CopyrightInitial:    2013,
		"DEPRECATED_ABSENT": nil,
	})

	path := writeTemplate(t, ""+
		"<title>@PKG_NAME@ v@PKG_VER:%s@</title>\n"+
		"<p>by @AUTHORS@ (c) @COPYRIGHT_SPAN@</p>\n"+
		"<ul>\n"+
		"@REL_UL_ITER:<li>%s</li>@"+
		"</ul>\n"+
		"@DEPRECATED_ABSENT@@FILENAME@\n")

	if err := e.Load(path); err != nil {
		t.Fatal(err)
	}

	if err := e.Parse(); err != nil {
		t.Fatal(err)
	}

	want := []string{
		"<title>rnmake v1.2.0</title>\n",
		"<p>by Robin Kim (c) 2013-2024</p>\n",
		"<ul>\n",
		"<li>README.md</li>\n",
		"<li>LICENSE</li>\n",
		"</ul>\n",
		"index.html.tpl\n",
	}
	if got := e.Postparsed(); !slices.Equal(got, want) {
		t.Errorf("Postparsed() =\n%q\nwant\n%q", got, want)
	}

	if len(rec.msgs) != 0 {
		t.Errorf("unexpected diagnostics %v", rec.msgs)
	}

	if !e.IsParsed() {
		t.Error("IsParsed() = false after Parse()")
	}
}

func TestEngine_ParseUndefined(t *testing.T) {
	t.Parallel()

	e, rec := newTestEngine(map[string]any{"PKG_NAME": "rnmake"})
	path := writeTemplate(t, "line one\nname @PKG_NAM@ org @ORG:<b>%s</b>@!\n")

	if err := e.Load(path); err != nil {
		t.Fatal(err)
	}

	if err := e.Parse(); err != nil {
		t.Fatal(err)
	}

	if got, want := e.Postparsed()[1], "name @PKG_NAM@ org @ORG:<b>%s</b>@!\n"; got != want {
		t.Errorf("line 2 = %q, want verbatim %q", got, want)
	}

	if len(rec.msgs) != 2 {
		t.Fatalf("got %d diagnostics, want 2: %v", len(rec.msgs), rec.msgs)
	}

	for i, name := range []string{"PKG_NAM", "ORG"} {
		if rec.msgs[i] != MsgUndefined {
			t.Errorf("diagnostic %d = %q", i, rec.msgs[i])
		}

		if v, _ := rec.attr(i, AttrLine); v.Int64() != 2 {
			t.Errorf("diagnostic %d line = %v, want 2", i, v)
		}

		if v, _ := rec.attr(i, AttrVariable); v.String() != name {
			t.Errorf("diagnostic %d variable = %v, want %s", i, v, name)
		}

		if v, _ := rec.attr(i, AttrTemplate); v.String() != path {
			t.Errorf("diagnostic %d template = %v, want %s", i, v, path)
		}
	}

	v, ok := rec.attr(0, AttrSuggest)
	if !ok {
		t.Fatal("no suggestions for PKG_NAM")
	}

	if s, _ := v.Any().([]string); len(s) == 0 || s[0] != "PKG_NAME" {
		t.Errorf("suggestions = %v, want PKG_NAME first", v)
	}

	if v, _ := rec.attr(1, AttrFormat); v.String() != "<b>%s</b>" {
		t.Errorf("diagnostic format = %v", v)
	}
}

func TestEngine_ParseGeneratorError(t *testing.T) {
	t.Parallel()

	boom := errors.New("boom")
	e, _ := newTestEngine(map[string]any{
		"BAD": func(io.Writer, string, string) error { return boom },
	})

	path := writeTemplate(t, "ok\n@BAD@\n")
	if err := e.Load(path); err != nil {
		t.Fatal(err)
	}

	err := e.Parse()
	if !errors.Is(err, ErrGenerate) || !errors.Is(err, boom) {
		t.Fatalf("Parse() error = %v, want %v wrapping %v", err, ErrGenerate, boom)
	}

	var aerr *Error
	if !errors.As(err, &aerr) || aerr.Line() != 2 {
		t.Errorf("error = %v, want line 2", err)
	}

	if e.IsParsed() {
		t.Error("IsParsed() after failed Parse()")
	}
}

func TestEngine_LoadResets(t *testing.T) {
	t.Parallel()

	e, _ := newTestEngine(nil)

	first := writeTemplate(t, "@FILENAME@\n")
	if err := e.Load(first); err != nil {
		t.Fatal(err)
	}

	if err := e.Parse(); err != nil {
		t.Fatal(err)
	}

	dir := t.TempDir()
	second := filepath.Join(dir, "about.html")

	if err := os.WriteFile(second, []byte("@TEMPLATE@\n"), 0o644); err != nil {
		t.Fatal(err)
	}

	if err := e.Load(second); err != nil {
		t.Fatal(err)
	}

	if e.IsParsed() || e.Postparsed() != nil {
		t.Error("Load() kept parsed output")
	}

	if e.Template() != second {
		t.Errorf("Template() = %q, want %q", e.Template(), second)
	}

	if err := e.Parse(); err != nil {
		t.Fatal(err)
	}

	if got := e.String(); got != second+"\n" {
		t.Errorf("Parse() = %q, want %q", got, second+"\n")
	}
}

func TestError_Is(t *testing.T) {
	t.Parallel()

	err := ErrIO.At("a.tpl", 4).Wrap(fs.ErrPermission)

	if !errors.Is(err, ErrIO) {
		t.Error("decorated error does not match its sentinel")
	}

	if errors.Is(err, ErrState) {
		t.Error("decorated error matches another sentinel")
	}

	if got, want := err.Error(), "a.tpl[4]: i/o error: permission denied"; got != want {
		t.Errorf("Error() = %q, want %q", got, want)
	}
}
