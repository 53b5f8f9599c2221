package cmd

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"slices"
	"strings"
	"testing"
)

const pydocTemplate = `<title>@PKG_NAME@ @PKG_VER@</title>
<img src="@IMAGE_PATH@/@ORG_LOGO@">
<p>@DESCRIPTION@</p>
<a href="@PARENT_PAGE@">up</a> @LICENSE@ @LICENSE_FILE@
@MOD_HREF_ITER:<a href="html/%s.html">%s</a>@
`

const pydocSetupJSON = `{
  "pkg_info": {
    "name": "mypkg",
    "version": "1.0",
    "author": "Robin",
    "author_email": "robin@example.com",
    "description": "line one\nline two",
    "url": "https://example.com",
    "packages": ["mypkg", "mypkg.sub"]
  },
  "pydoc_info": {
    "org": "RoadNarrows",
    "logo": "img/logo.png",
    "favicon": "img/favicon.ico"
  }
}`

// pydocCall is one program run by a fake runner.
type pydocCall struct {
	dir  string
	env  []string
	name string
	args []string
}

// fakePython answers setup queries with setup and records every other run.
// Runs of pydoc listed in fail return an error.
type fakePython struct {
	setup string
	fail  []int
	calls []pydocCall
}

func (f *fakePython) run(_ context.Context, dir string, env []string, name string, args ...string) ([]byte, error) {
	if name == "python3" {
		if len(args) < 3 || args[0] != "-c" {
			return nil, errors.New("unexpected python arguments")
		}

		return []byte(f.setup), nil
	}

	f.calls = append(f.calls, pydocCall{dir: dir, env: env, name: name, args: args})

	if slices.Contains(f.fail, len(f.calls)) {
		return nil, errors.New("pydoc: import failed")
	}

	return []byte("wrote page"), nil
}

// newPydocSource creates a setup script with one package and an image
// source directory.
func newPydocSource(t *testing.T) (setup, images string) {
	t.Helper()

	dir := t.TempDir()
	setup = writeFile(t, filepath.Join(dir, "src", "setup.py"), "PkgInfo = {}\n")

	for _, f := range []string{
		"mypkg/__init__.py",
		"mypkg/_private.py",
		"mypkg/core.py",
		"mypkg/util.py",
		"mypkg/README",
		"mypkg/__pycache__/core.cpython-312.pyc",
		"mypkg/sub/__init__.py",
		"mypkg/sub/deep.py",
	} {
		writeFile(t, filepath.Join(dir, "src", filepath.FromSlash(f)), "")
	}

	images = filepath.Join(dir, "art")
	writeFile(t, filepath.Join(images, "img", "logo.png"), "png")
	writeFile(t, filepath.Join(images, "img", "favicon.ico"), "ico")

	return setup, images
}

func TestModuleList(t *testing.T) {
	t.Parallel()

	setup, _ := newPydocSource(t)

	got, err := moduleList(filepath.Dir(setup), "mypkg")
	if err != nil {
		t.Fatalf("moduleList() error = %v", err)
	}

	want := []string{"mypkg", "mypkg.core", "mypkg.util", "mypkg.sub", "mypkg.sub.deep"}
	if !slices.Equal(got, want) {
		t.Errorf("moduleList() = %v, want %v", got, want)
	}

	if _, err := moduleList(filepath.Dir(setup), "nopkg"); err == nil {
		t.Error("moduleList() of a missing package succeeded")
	}
}

func TestPydocRun(t *testing.T) {
	t.Parallel()

	setup, images := newPydocSource(t)
	template := writeFile(t, filepath.Join(t.TempDir(), "index.html.tpl"), pydocTemplate)
	root := filepath.Join(t.TempDir(), "pydoc")

	fake := &fakePython{setup: pydocSetupJSON, fail: []int{1}}
	p := &Pydoc{
		Template:     template,
		ImagesSrcDir: images,
		Python:       "python3",
		PydocCmd:     "pydoc3",
		Args:         []string{root, setup, "pkg_ver=2.0"},
		run:          fake.run,
	}

	ctx, _, _ := testOutput(t)

	if err := p.Run(ctx); err != nil {
		t.Fatalf("Run() error = %v", err)
	}

	if len(fake.calls) != 2 {
		t.Fatalf("pydoc ran %d times, want 2 batches", len(fake.calls))
	}

	wantArgs := [][]string{
		{"-w", "mypkg", "mypkg.core", "mypkg.util", "mypkg.sub"},
		{"-w", "mypkg.sub.deep"},
	}

	for i, c := range fake.calls {
		if c.name != "pydoc3" || !slices.Equal(c.args, wantArgs[i]) {
			t.Errorf("call %d = %s %v, want pydoc3 %v", i, c.name, c.args, wantArgs[i])
		}

		if c.dir != filepath.Join(root, pydocHTMLDir) {
			t.Errorf("call %d dir = %q", i, c.dir)
		}

		abs, _ := filepath.Abs(filepath.Dir(setup))
		if len(c.env) != 1 || !strings.HasPrefix(c.env[0], "PYTHONPATH=") ||
			!strings.Contains(c.env[0], abs) {
			t.Errorf("call %d env = %v, want PYTHONPATH with %s", i, c.env, abs)
		}
	}

	for _, img := range []string{"logo.png", "favicon.ico"} {
		if _, err := os.Stat(filepath.Join(root, pydocImageDir, img)); err != nil {
			t.Errorf("image %s not copied: %v", img, err)
		}
	}

	got := readFile(t, filepath.Join(root, indexHTML))

	for _, want := range []string{
		"<title>mypkg 2.0</title>\n",
		`<img src="images/logo.png">` + "\n",
		"<p>line one<br>line two</p>\n",
		`<a href="../index.html">up</a> AS-IS ../LICENSE` + "\n",
		`<a href="html/mypkg.core.html">mypkg.core</a>` + "\n",
		`<a href="html/mypkg.sub.deep.html">mypkg.sub.deep</a>` + "\n",
	} {
		if !strings.Contains(got, want) {
			t.Errorf("index.html missing %q in\n%s", want, got)
		}
	}
}

func TestPydocRunNoTemplate(t *testing.T) {
	t.Parallel()

	setup, _ := newPydocSource(t)
	root := filepath.Join(t.TempDir(), "pydoc")

	fake := &fakePython{setup: pydocSetupJSON}
	p := &Pydoc{
		Python:   "python3",
		PydocCmd: "pydoc3",
		Args:     []string{root, setup},
		run:      fake.run,
	}

	ctx, _, diag := testOutput(t)

	if err := p.Run(ctx); err != nil {
		t.Fatalf("Run() error = %v", err)
	}

	if _, err := os.Stat(filepath.Join(root, pydocHTMLDir)); err != nil {
		t.Errorf("html directory not made: %v", err)
	}

	if _, err := os.Stat(filepath.Join(root, indexHTML)); !errors.Is(err, os.ErrNotExist) {
		t.Errorf("index page made without a template: %v", err)
	}

	// The images are relative to the working directory without a source
	// directory, so copying them fails with a warning.
	if !strings.Contains(diag.String(), "Warning") {
		t.Errorf("missing image not reported: %q", diag.String())
	}
}

func TestPydocRunShow(t *testing.T) {
	t.Parallel()

	setup, _ := newPydocSource(t)
	root := filepath.Join(t.TempDir(), "pydoc")

	fake := &fakePython{setup: pydocSetupJSON}
	p := &Pydoc{
		View:     viewConfig{Show: []string{ViewDef}, Format: "text"},
		Python:   "python3",
		PydocCmd: "pydoc3",
		Args:     []string{root, setup},
		run:      fake.run,
	}

	ctx, out, _ := testOutput(t)

	if err := p.Run(ctx); err != nil {
		t.Fatalf("Run() error = %v", err)
	}

	for _, want := range []string{"PKG_NAME", "mypkg", "ORG_URL"} {
		if !strings.Contains(out.String(), want) {
			t.Errorf("def view missing %q in\n%s", want, out.String())
		}
	}

	if len(fake.calls) != 0 {
		t.Errorf("pydoc ran in show mode: %v", fake.calls)
	}

	if _, err := os.Stat(root); !errors.Is(err, os.ErrNotExist) {
		t.Errorf("root made in show mode: %v", err)
	}
}

func TestPydocRunErrors(t *testing.T) {
	t.Parallel()

	setup, _ := newPydocSource(t)
	root := t.TempDir()

	tests := []struct {
		name  string
		args  []string
		setup string
		want  error
	}{
		{"no root", nil, pydocSetupJSON, ErrUsage},
		{"no setup", []string{root}, pydocSetupJSON, ErrUsage},
		{"extra", []string{root, setup, "x"}, pydocSetupJSON, ErrUsage},
		{"missing setup", []string{root, setup + ".missing"}, pydocSetupJSON, ErrSetup},
		{"no PkgInfo", []string{root, setup}, `{"pkg_info": null}`, ErrSetup},
		{"bad output", []string{root, setup}, "Traceback", ErrSetup},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			fake := &fakePython{setup: tt.setup}
			p := &Pydoc{Python: "python3", PydocCmd: "pydoc3", Args: tt.args, run: fake.run}

			ctx, _, _ := testOutput(t)

			if err := p.Run(ctx); !errors.Is(err, tt.want) {
				t.Errorf("Run() error = %v, want %v", err, tt.want)
			}
		})
	}
}

func TestPydocSiteVars(t *testing.T) {
	t.Parallel()

	s := &pydocSite{modules: []string{"mypkg"}}
	info := &setupInfo{
		Pkg: map[string]any{
			"name":             "mypkg",
			"license":          "MIT",
			"long_description": "a\nb",
		},
		Pydoc: map[string]any{"logo": "/art/logo.png"},
	}

	tests := []struct {
		name string
		user map[string]any
		key  string
		want any
	}{
		{"from PkgInfo", nil, "PKG_NAME", "mypkg"},
		{"license from PkgInfo", nil, "LICENSE", "MIT"},
		{"line breaks", nil, "LONG_DESC", "a<br>b"},
		{"logo base name", nil, "ORG_LOGO", "logo.png"},
		{"user wins", map[string]any{"PKG_NAME": "other"}, "PKG_NAME", "other"},
		{"empty default restored", map[string]any{"parent_page": ""}, "PARENT_PAGE", "../index.html"},
		{"image path default", nil, "IMAGE_PATH", "images"},
		{"unset dropped", nil, "AUTHOR", nil},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			got := s.vars(info, tt.user)[tt.key]
			if got != tt.want {
				t.Errorf("vars()[%s] = %v, want %v", tt.key, got, tt.want)
			}
		})
	}
}
