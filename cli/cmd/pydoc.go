package cmd

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"maps"
	"os"
	"os/exec"
	"path/filepath"
	"slices"
	"strings"

	"github.com/ardnew/mung"

	"github.com/roadnarrows/rnmake/atat"
	"github.com/roadnarrows/rnmake/log"
)

// Layout of a pydoc distribution below PYDOC_ROOT.
const (
	pydocImageDir = "images"
	pydocHTMLDir  = "html"
	pydocDirMode  = 0o775
	pydocBatch    = 4
)

// pydocDefaults are the variables of a pydoc index page with their default
// values; nil entries are defined but unset.
var pydocDefaults = map[string]any{
	"author":        nil,
	"description":   nil,
	"email":         nil,
	"favicon":       nil,
	"image_path":    pydocImageDir,
	"keywords":      nil,
	"license":       "AS-IS",
	"license_file":  "../LICENSE",
	"long_desc":     nil,
	"mod_href_iter": nil,
	"mod_ul_iter":   nil,
	"org":           nil,
	"org_abbrev":    nil,
	"org_fq":        nil,
	"org_logo":      nil,
	"org_url":       nil,
	"parent_page":   "../" + indexHTML,
	"pkg_name":      nil,
	"pkg_ver":       nil,
}

// setupQuery imports the setup script named by argv[1] and prints its
// PkgInfo and PyDocInfo dictionaries as one JSON object.
const setupQuery = `import importlib, json, os, sys
path = sys.argv[1]
sys.path.insert(0, os.path.dirname(path) or '.')
setup = importlib.import_module(os.path.splitext(os.path.basename(path))[0])
json.dump({'pkg_info': getattr(setup, 'PkgInfo', None),
           'pydoc_info': getattr(setup, 'PyDocInfo', None)}, sys.stdout, default=str)
`

// runner runs the program name in dir with env added to the process
// environment and returns its standard output.
type runner func(ctx context.Context, dir string, env []string, name string, args ...string) ([]byte, error)

func execRunner(ctx context.Context, dir string, env []string, name string, args ...string) ([]byte, error) {
	c := exec.CommandContext(ctx, name, args...)
	c.Dir = dir
	c.Env = append(os.Environ(), env...)

	out, err := c.Output()
	if err != nil {
		var exit *exec.ExitError
		if errors.As(err, &exit) && len(exit.Stderr) > 0 {
			err = fmt.Errorf("%w: %s", err, bytes.TrimSpace(exit.Stderr))
		}
	}

	return out, err
}

// Pydoc builds the pydoc HTML documentation of the packages of a python
// setup script, and an index page linking them:
//
//	PYDOC_ROOT/
//	  html/
//	  images/
//	  index.html
//
// SETUP_PY is imported to read its PkgInfo and optional PyDocInfo
// dictionaries. Template variable names are case insensitive.
type Pydoc struct {
	View viewConfig `embed:""`

	Template     string `help:"Index page template. Without one no index page is made." placeholder:"FILE" type:"path"`
	ImagesSrcDir string `help:"Directory holding the logo and favicon images."        name:"images-src-dir" placeholder:"DIR" type:"path"`
	Python       string `default:"python3" help:"Python interpreter used to import SETUP_PY."`
	PydocCmd     string `default:"pydoc3"  help:"Pydoc program writing one HTML page per module." name:"pydoc-cmd"`

	Args []string `arg:"" help:"PYDOC_ROOT SETUP_PY and any VAR=VAL assignments." name:"arg"`

	run runner
}

// setupInfo is the information read from a setup script.
type setupInfo struct {
	Pkg   map[string]any `json:"pkg_info"`
	Pydoc map[string]any `json:"pydoc_info"`
}

// pydocSite is the resolved layout of a pydoc distribution.
type pydocSite struct {
	root     string
	imageDir string
	htmlDir  string
	setupDir string
	template string

	images  []string // logo and favicon sources
	modules []string
}

// Run executes the pydoc command.
func (p *Pydoc) Run(ctx context.Context) error {
	args, assigns := SplitAssignments(p.Args)

	switch len(args) {
	case 0:
		return ErrUsage.Wrap(errors.New("no PYDOC_ROOT specified"))
	case 1:
		return ErrUsage.Wrap(errors.New("no SETUP_PY specified"))
	case 2:
	default:
		return ErrUsage.With(slog.Any("args", args[2:])).
			Wrap(errors.New("unexpected arguments"))
	}

	info, err := p.query(ctx, args[1])
	if err != nil {
		return err
	}

	user, err := userVars(ctx, assigns)
	if err != nil {
		return err
	}

	v := basicSet()
	v.update(user)

	site, err := p.site(args[0], args[1], info, v)
	if err != nil {
		return err
	}

	log.DebugContext(ctx, "pydoc site",
		slog.String("root", site.root),
		slog.String("template", site.template),
		slog.Any("images", site.images),
		slog.Any("modules", site.modules),
	)

	out := outputFrom(ctx)
	e := newEngine(out, site.vars(info, user))

	if p.View.enabled() {
		return p.View.show(ctx, e, site.template)
	}

	return p.make(ctx, site, e)
}

func (p *Pydoc) runner() runner {
	if p.run != nil {
		return p.run
	}

	return execRunner
}

// query imports the setup script and decodes its information.
func (p *Pydoc) query(ctx context.Context, setup string) (*setupInfo, error) {
	if !isFile(setup) {
		return nil, ErrSetup.With(slog.String("file", setup)).Wrap(os.ErrNotExist)
	}

	data, err := p.runner()(ctx, "", nil, p.Python, "-c", setupQuery, setup)
	if err != nil {
		return nil, ErrSetup.With(slog.String("file", setup)).Wrap(err)
	}

	var info setupInfo
	if err := json.Unmarshal(data, &info); err != nil {
		return nil, ErrSetup.With(slog.String("file", setup)).Wrap(err)
	}

	if info.Pkg == nil {
		return nil, ErrSetup.With(slog.String("file", setup)).
			Wrap(errors.New("'PkgInfo' not found"))
	}

	if info.Pydoc == nil {
		info.Pydoc = map[string]any{}
	}

	return &info, nil
}

// site resolves the distribution paths and the module list of the packages
// in info. user holds the lower-cased user variables.
func (p *Pydoc) site(root, setup string, info *setupInfo, user varSet) (*pydocSite, error) {
	s := &pydocSite{
		root:     root,
		imageDir: filepath.Join(root, pydocImageDir),
		htmlDir:  filepath.Join(root, pydocHTMLDir),
		setupDir: filepath.Dir(setup),
		template: p.Template,
	}

	pydoc := varSet(info.Pydoc)

	if s.template == "" {
		s.template = pydoc.str("template")
	}

	srcDir := p.ImagesSrcDir
	if srcDir == "" {
		srcDir = pydoc.str("images_src_dir")
	}

	for _, img := range []struct{ user, info string }{
		{"favicon", "favicon"},
		{"org_logo", "logo"},
	} {
		src := user.str(img.user)
		if src == "" {
			src = pydoc.str(img.info)
		}

		if src == "" {
			continue
		}

		if srcDir != "" && !filepath.IsAbs(src) {
			src = filepath.Join(srcDir, src)
		}

		s.images = append(s.images, src)
	}

	packages, _ := info.Pkg["packages"].([]any)

	for _, pkg := range packages {
		name, ok := pkg.(string)
		if !ok || strings.Contains(name, ".") {
			continue
		}

		mods, err := moduleList(s.setupDir, name)
		if err != nil {
			return nil, ErrPydoc.With(slog.String("package", name)).Wrap(err)
		}

		s.modules = append(s.modules, mods...)
	}

	return s, nil
}

// vars returns the template variables of s from the setup information and
// the user values, which win.
func (s *pydocSite) vars(info *setupInfo, user map[string]any) map[string]any {
	v := varSet(maps.Clone(pydocDefaults))

	for to, from := range map[string]string{
		"org":        "org",
		"org_fq":     "org_fq",
		"org_abbrev": "org_abbrev",
		"org_logo":   "logo",
		"favicon":    "favicon",
	} {
		if val, ok := info.Pydoc[from]; ok {
			v[to] = val
		}
	}

	for to, from := range map[string]string{
		"author":      "author",
		"description": "description",
		"email":       "author_email",
		"keywords":    "keywords",
		"license":     "license",
		"long_desc":   "long_description",
		"org_url":     "url",
		"pkg_name":    "name",
		"pkg_ver":     "version",
	} {
		if val, ok := info.Pkg[from]; ok {
			v[to] = val
		}
	}

	v.update(user)

	v["mod_href_iter"] = s.modHrefIter
	v["mod_ul_iter"] = atat.Each(s.modules...)

	for _, k := range []string{"image_path", "parent_page", "license_file"} {
		if isUnset(v[k]) {
			v[k] = pydocDefaults[k]
		}
	}

	for _, k := range []string{"description", "long_desc"} {
		if str := v.str(k); str != "" {
			v[k] = strings.ReplaceAll(str, "\n", "<br>")
		}
	}

	for _, k := range []string{"org_logo", "favicon"} {
		if str := v.str(k); str != "" {
			v[k] = filepath.Base(str)
		}
	}

	return v.export()
}

func (s *pydocSite) modHrefIter(w io.Writer, name, format string) error {
	pairs := make([]atat.Pair[string, string], len(s.modules))
	for i, m := range s.modules {
		pairs[i] = atat.Pair[string, string]{First: m, Second: m}
	}

	return atat.EachPair(pairs...)(w, name, format)
}

// make writes the distribution: directories, images, module pages and the
// index page.
func (p *Pydoc) make(ctx context.Context, s *pydocSite, e *atat.Engine) error {
	out := outputFrom(ctx)

	for _, dir := range []string{s.root, s.imageDir, s.htmlDir} {
		if err := os.MkdirAll(dir, pydocDirMode); err != nil {
			return ErrPydoc.With(slog.String("dir", dir)).Wrap(err)
		}
	}

	for _, src := range s.images {
		if err := copyFile(src, filepath.Join(s.imageDir, filepath.Base(src))); err != nil {
			out.IOWarning(src, 0, errors.Unwrap(err))
		}
	}

	if err := p.pages(ctx, s); err != nil {
		return err
	}

	if s.template == "" {
		log.InfoContext(ctx, "no template file, skipping index page")

		return nil
	}

	index := filepath.Join(s.root, indexHTML)
	log.InfoContext(ctx, "making pydoc index", slog.String("file", index))

	tmp, err := e.Rewrite(s.template, false)
	if err != nil {
		return ErrTemplate.Wrap(err)
	}

	return publish(tmp, index)
}

// pages runs pydoc on the modules of s in batches, writing into the html
// directory. A failed batch is reported and skipped.
func (p *Pydoc) pages(ctx context.Context, s *pydocSite) error {
	setupDir, err := filepath.Abs(s.setupDir)
	if err != nil {
		return ErrPydoc.Wrap(err)
	}

	env := []string{"PYTHONPATH=" + mung.Make(
		mung.WithSubjectItems(os.Getenv("PYTHONPATH")),
		mung.WithDelim(string(os.PathListSeparator)),
		mung.WithPrefixItems(setupDir),
	).String()}

	for batch := range slices.Chunk(s.modules, pydocBatch) {
		if err := ctx.Err(); err != nil {
			return ErrPydoc.Wrap(err)
		}

		args := append([]string{"-w"}, batch...)

		stdout, err := p.runner()(ctx, s.htmlDir, env, p.PydocCmd, args...)
		if err != nil {
			log.WarnContext(ctx, "pydoc failed",
				slog.Any("modules", batch),
				slog.Any("error", err),
			)

			continue
		}

		log.DebugContext(ctx, "pydoc", slog.String("output", string(bytes.TrimSpace(stdout))))
	}

	return nil
}

// moduleList returns the dotted names of package pkg below dir and of every
// subpackage and public module in it. A package's own name precedes its
// modules, which precede its subpackages; both are sorted.
func moduleList(dir, pkg string) ([]string, error) {
	var mods []string

	var walk func(rel string) error

	walk = func(rel string) error {
		if strings.Contains(rel, "__pycache__") {
			return nil
		}

		entries, err := os.ReadDir(filepath.Join(dir, rel))
		if err != nil {
			return err
		}

		dotted := strings.ReplaceAll(filepath.ToSlash(rel), "/", ".")
		mods = append(mods, dotted)

		var subdirs []string

		for _, ent := range entries {
			name := ent.Name()

			if ent.IsDir() {
				subdirs = append(subdirs, filepath.Join(rel, name))

				continue
			}

			mod, ok := strings.CutSuffix(name, ".py")
			if ok && mod != "" && mod[0] != '_' {
				mods = append(mods, dotted+"."+mod)
			}
		}

		for _, sub := range subdirs {
			if err := walk(sub); err != nil {
				return err
			}
		}

		return nil
	}

	return mods, walk(pkg)
}

// isUnset reports whether v is nil or the empty string.
func isUnset(v any) bool {
	s, ok := v.(string)

	return v == nil || (ok && s == "")
}
