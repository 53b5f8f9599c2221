package cmd

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"strings"

	"github.com/ardnew/mung"

	"github.com/roadnarrows/rnmake/atat"
	"github.com/roadnarrows/rnmake/log"
)

// indexHTML is the file name of generated index pages.
const indexHTML = "index.html"

// Fallback markup of empty generators.
const (
	noFilesHTML = "<p>no files</p>"
	noDocsHTML  = "<p>no documentation</p>"
)

// homeVars are the variables of a home page, defined but unset until a
// source supplies them.
var homeVars = []string{
	"author", "doxy_href", "favicon", "license", "license_file",
	"org", "org_abbrev", "org_fq", "org_logo", "org_url",
	"pkg_name", "pkg_ver", "pub_href", "pydoc_href",
	"rel_href_iter", "rel_ul_iter",
}

// Home builds the index.html home page of a documentation distribution.
//
// Template variable names given as VAR=VAL or in variable files are case
// insensitive.
type Home struct {
	View viewConfig `embed:""`

	ImagesPath string `help:"Colon-separated image search path, relative to DOC_ROOT."       name:"images-path" placeholder:"PATH"`
	RelFiles   string `help:"Semicolon-separated release file basenames, relative to DOC_ROOT." name:"rel-files"   placeholder:"FILES"`
	DoxyIndex  string `help:"Doxygen index page, relative to DOC_ROOT."                       name:"doxy-index"  placeholder:"INDEX"`
	PydocIndex string `help:"Pydoc index page, relative to DOC_ROOT."                         name:"pydoc-index" placeholder:"INDEX"`
	PubDir     string `help:"Published papers directory, relative to DOC_ROOT."              name:"pub-dir"     placeholder:"DIR"`

	Args []string `arg:"" help:"TEMPLATE DOC_ROOT and any VAR=VAL assignments." name:"arg"`
}

// homeSite is the resolved layout of a documentation distribution.
type homeSite struct {
	template string
	docRoot  string
	index    string

	imagesPath []string
	relFiles   []string
	license    string // LICENSE or EULA.md when released

	doxyIndex  string
	pydocIndex string
	pubIndex   string
}

// Run executes the home command.
func (h *Home) Run(ctx context.Context) error {
	args, assigns := SplitAssignments(h.Args)

	switch len(args) {
	case 0:
		return ErrUsage.Wrap(errors.New("no TEMPLATE index.html specified"))
	case 1:
		return ErrUsage.Wrap(errors.New("no DOC_ROOT path specified"))
	case 2:
	default:
		return ErrUsage.With(slog.Any("args", args[2:])).
			Wrap(errors.New("unexpected arguments"))
	}

	site, err := h.site(args[0], args[1])
	if err != nil {
		return err
	}

	log.DebugContext(ctx, "home site",
		slog.String("template", site.template),
		slog.String("doc_root", site.docRoot),
		slog.Any("images_path", site.imagesPath),
		slog.Any("rel_files", site.relFiles),
		slog.String("doxy_index", site.doxyIndex),
		slog.String("pydoc_index", site.pydocIndex),
		slog.String("pub_index", site.pubIndex),
	)

	user, err := userVars(ctx, assigns)
	if err != nil {
		return err
	}

	out := outputFrom(ctx)
	e := newEngine(out, site.vars(user))

	if h.View.enabled() {
		return h.View.show(ctx, e, site.template)
	}

	return site.make(ctx, e)
}

// site checks the required paths and resolves the optional ones against
// the document root. Missing optional files are dropped.
func (h *Home) site(template, docRoot string) (*homeSite, error) {
	if !isFile(template) {
		return nil, ErrTemplate.With(slog.String("file", template)).
			Wrap(os.ErrNotExist)
	}

	if !isDir(docRoot) {
		return nil, ErrDocRoot.With(slog.String("dir", docRoot)).
			Wrap(os.ErrNotExist)
	}

	s := &homeSite{
		template:   template,
		docRoot:    docRoot,
		index:      filepath.Join(docRoot, indexHTML),
		imagesPath: searchPath(h.ImagesPath),
	}

	for _, index := range []struct {
		from string
		to   *string
	}{
		{h.DoxyIndex, &s.doxyIndex},
		{h.PydocIndex, &s.pydocIndex},
	} {
		if index.from != "" && isFile(filepath.Join(docRoot, index.from)) {
			*index.to = index.from
		}
	}

	for rel := range strings.SplitSeq(h.RelFiles, ";") {
		rel = strings.TrimSpace(rel)
		if rel == "" || !isFile(filepath.Join(docRoot, rel)) {
			continue
		}

		s.relFiles = append(s.relFiles, rel)

		if rel == "LICENSE" || rel == "EULA.md" {
			s.license = rel
		}
	}

	if h.PubDir != "" {
		dir := filepath.Join(docRoot, h.PubDir)

		switch {
		case isFile(filepath.Join(dir, indexHTML)):
			s.pubIndex = filepath.Join(h.PubDir, indexHTML)
		case isDir(dir):
			s.pubIndex = h.PubDir
		}
	}

	return s, nil
}

// vars returns the template variables of s. User values override the
// defaults; images are looked up on the image search path and generators
// always come from s.
func (s *homeSite) vars(user map[string]any) map[string]any {
	v := basicSet(homeVars...)

	if s.license != "" {
		v["license_file"] = s.license
	}

	v.update(user)

	for _, k := range []string{"favicon", "org_logo"} {
		if found := s.search(v.str(k)); found != "" {
			v[k] = found
		} else {
			v[k] = nil
		}
	}

	v["rel_href_iter"] = s.relHrefIter
	v["rel_ul_iter"] = atat.Each(s.relFiles...)
	v["doxy_href"] = hrefGen(s.doxyIndex, "source documentation")
	v["pydoc_href"] = hrefGen(s.pydocIndex, "python documentation")
	v["pub_href"] = hrefGen(s.pubIndex, "papers")

	return v.export()
}

// search returns the path, relative to the document root, of the first
// directory of the image search path holding the base name of file.
func (s *homeSite) search(file string) string {
	if file == "" {
		return ""
	}

	base := filepath.Base(file)

	for _, dir := range s.imagesPath {
		if isFile(filepath.Join(s.docRoot, dir, base)) {
			return filepath.Join(dir, base)
		}
	}

	return ""
}

func (s *homeSite) relHrefIter(w io.Writer, name, format string) error {
	if len(s.relFiles) == 0 {
		_, err := fmt.Fprintln(w, noFilesHTML)

		return err
	}

	pairs := make([]atat.Pair[string, string], len(s.relFiles))
	for i, f := range s.relFiles {
		pairs[i] = atat.Pair[string, string]{First: f, Second: f}
	}

	return atat.EachPair(pairs...)(w, name, format)
}

// make renders the template into the index page of the document root.
func (s *homeSite) make(ctx context.Context, e *atat.Engine) error {
	log.InfoContext(ctx, "making home page", slog.String("file", s.index))

	tmp, err := e.Rewrite(s.template, false)
	if err != nil {
		return ErrTemplate.Wrap(err)
	}

	return publish(tmp, s.index)
}

// hrefGen returns a generator writing one line formatted with href and
// title, or a placeholder paragraph when href is empty.
func hrefGen(href, title string) atat.Generator {
	if href == "" {
		return func(w io.Writer, _, _ string) error {
			_, err := fmt.Fprintln(w, noDocsHTML)

			return err
		}
	}

	return atat.EachPair(atat.Pair[string, string]{First: href, Second: title})
}

// searchPath returns the colon-separated dirs followed by the document root
// itself.
func searchPath(dirs string) []string {
	var items []string

	for dir := range strings.SplitSeq(dirs, ":") {
		if dir = strings.TrimSpace(dir); dir != "" {
			items = append(items, dir)
		}
	}

	joined := mung.Make(
		mung.WithSubjectItems("."),
		mung.WithDelim(":"),
		mung.WithPrefixItems(items...),
	).String()

	var path []string

	for dir := range strings.SplitSeq(joined, ":") {
		if dir != "" {
			path = append(path, dir)
		}
	}

	return path
}

func isFile(path string) bool {
	info, err := os.Stat(path)

	return err == nil && info.Mode().IsRegular()
}

func isDir(path string) bool {
	info, err := os.Stat(path)

	return err == nil && info.IsDir()
}
