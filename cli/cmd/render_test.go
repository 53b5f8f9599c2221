package cmd

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"
)

const renderTemplate = "Hello, @NAME@!\n@ITEMS:[%s]@\n"

func TestRenderRun(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name    string
		render  func(template string) *Render
		outPath func(template string) string
	}{
		{
			name: "default temporary",
			render: func(tpl string) *Render {
				return &Render{Args: []string{tpl, "NAME=world"}}
			},
			outPath: func(tpl string) string { return tpl + ".tmp" },
		},
		{
			name: "output",
			render: func(tpl string) *Render {
				return &Render{Output: filepath.Join(filepath.Dir(tpl), "out.txt"), Args: []string{"NAME=world", tpl}}
			},
			outPath: func(tpl string) string { return filepath.Join(filepath.Dir(tpl), "out.txt") },
		},
		{
			name: "in place",
			render: func(tpl string) *Render {
				return &Render{InPlace: true, Args: []string{tpl, "NAME=world"}}
			},
			outPath: func(tpl string) string { return tpl },
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			dir := t.TempDir()
			tpl := writeFile(t, filepath.Join(dir, "hello.txt.in"), renderTemplate)
			vars := writeFile(t, filepath.Join(dir, "vars.yaml"), "NAME: yaml\nITEMS: [a, b]\n")

			ctx, _, _ := testOutput(t)
			ctx = WithVarsFiles(ctx, []string{vars})

			if err := tt.render(tpl).Run(ctx); err != nil {
				t.Fatalf("Run() error = %v", err)
			}

			want := "Hello, world!\n[a][b]\n"
			if got := readFile(t, tt.outPath(tpl)); got != want {
				t.Errorf("output = %q, want %q", got, want)
			}

			if tt.name != "in place" {
				if got := readFile(t, tpl); got != renderTemplate {
					t.Errorf("template modified: %q", got)
				}
			}
		})
	}
}

func TestRenderRunShow(t *testing.T) {
	t.Parallel()

	dir := t.TempDir()
	tpl := writeFile(t, filepath.Join(dir, "hello.txt.in"), renderTemplate)

	ctx, out, _ := testOutput(t)

	r := &Render{
		View: viewConfig{Show: []string{ViewPost}, Format: "text"},
		Args: []string{tpl, "NAME=world", "ITEMS=x"},
	}

	if err := r.Run(ctx); err != nil {
		t.Fatalf("Run() error = %v", err)
	}

	if !strings.Contains(out.String(), "Hello, world!") {
		t.Errorf("post view missing rendered line:\n%s", out.String())
	}

	if _, err := os.Stat(tpl + ".tmp"); !errors.Is(err, os.ErrNotExist) {
		t.Errorf("output written in show mode: %v", err)
	}
}

func TestRenderRunErrors(t *testing.T) {
	t.Parallel()

	dir := t.TempDir()
	tpl := writeFile(t, filepath.Join(dir, "hello.txt.in"), renderTemplate)
	bad := writeFile(t, filepath.Join(dir, "bad.yaml"), "NAME: [\n")

	tests := []struct {
		name  string
		r     *Render
		files []string
		want  error
	}{
		{"no template", &Render{Args: []string{"NAME=x"}}, nil, ErrUsage},
		{"extra", &Render{Args: []string{tpl, "other"}}, nil, ErrUsage},
		{"watch in place", &Render{Watch: true, InPlace: true, Args: []string{tpl}}, nil, ErrUsage},
		{"watch output is template", &Render{Watch: true, Output: tpl, Args: []string{tpl}}, nil, ErrUsage},
		{"missing template", &Render{Args: []string{tpl + ".missing"}}, nil, ErrTemplate},
		{"bad vars file", &Render{Args: []string{tpl}}, []string{bad}, ErrVarsFile},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			ctx, _, _ := testOutput(t)
			ctx = WithVarsFiles(ctx, tt.files)

			if err := tt.r.Run(ctx); !errors.Is(err, tt.want) {
				t.Errorf("Run() error = %v, want %v", err, tt.want)
			}
		})
	}
}

func TestRenderWatch(t *testing.T) {
	t.Parallel()

	dir := t.TempDir()
	tpl := writeFile(t, filepath.Join(dir, "hello.txt.in"), "Hello, @NAME@!\n")
	vars := writeFile(t, filepath.Join(dir, "vars.yaml"), "NAME: first\n")
	out := filepath.Join(dir, "hello.txt")

	ctx, _, _ := testOutput(t)
	ctx = WithVarsFiles(ctx, []string{vars})

	ctx, cancel := context.WithCancel(ctx)
	defer cancel()

	r := &Render{Output: out, Watch: true, Args: []string{tpl}, debounce: 10 * time.Millisecond}

	done := make(chan error, 1)

	go func() { done <- r.Run(ctx) }()

	waitFor := func(want string) {
		t.Helper()

		deadline := time.Now().Add(5 * time.Second)
		for time.Now().Before(deadline) {
			if data, err := os.ReadFile(out); err == nil && string(data) == want {
				return
			}

			time.Sleep(10 * time.Millisecond)
		}

		t.Fatalf("output never became %q", want)
	}

	waitFor("Hello, first!\n")

	// Give the watcher time to register before changing the variables.
	time.Sleep(100 * time.Millisecond)
	writeFile(t, vars, "NAME: second\n")

	waitFor("Hello, second!\n")

	cancel()

	select {
	case err := <-done:
		if err != nil {
			t.Errorf("Run() error = %v", err)
		}
	case <-time.After(5 * time.Second):
		t.Fatal("Run() did not return after cancel")
	}
}

func TestSameFile(t *testing.T) {
	t.Parallel()

	dir := t.TempDir()
	a := writeFile(t, filepath.Join(dir, "a"), "")

	link := filepath.Join(dir, "link")
	if err := os.Symlink(a, link); err != nil {
		t.Fatal(err)
	}

	tests := []struct {
		a, b string
		want bool
	}{
		{a, a, true},
		{a, link, true},
		{a, filepath.Join(dir, "b"), false},
		{filepath.Join(dir, "b"), filepath.Join(dir, ".", "b"), true},
	}

	for _, tt := range tests {
		if got := sameFile(tt.a, tt.b); got != tt.want {
			t.Errorf("sameFile(%q, %q) = %v, want %v", tt.a, tt.b, got, tt.want)
		}
	}
}
