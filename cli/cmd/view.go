package cmd

import (
	"context"
	"fmt"
	"slices"

	"github.com/roadnarrows/rnmake/atat"
)

// Views selectable with --show, in the order they are printed.
const (
	ViewAll  = "all"
	ViewDef  = "def"
	ViewRef  = "ref"
	ViewPre  = "pre"
	ViewPost = "post"
)

var viewOrder = []string{ViewDef, ViewRef, ViewPre, ViewPost}

// viewConfig holds the flags selecting engine views printed instead of
// writing any file.
type viewConfig struct {
	Show   []string `enum:"${showEnum}"   help:"Show engine state instead of writing files (${enum}). May be repeated." placeholder:"WHAT"`
	Format string   `default:"text" enum:"${formatEnum}" help:"Format of the def and ref views (${enum})."`
	Indent int      `default:"2"                         help:"Indent of json and yaml views; 0 is compact."`
}

// enabled reports whether any view was selected.
func (v viewConfig) enabled() bool { return len(v.Show) > 0 }

// views returns the selected views, deduplicated and in print order.
func (v viewConfig) views() []string {
	if slices.Contains(v.Show, ViewAll) {
		return slices.Clone(viewOrder)
	}

	var out []string

	for _, view := range viewOrder {
		if slices.Contains(v.Show, view) {
			out = append(out, view)
		}
	}

	return out
}

// show prints the selected views of e. The def view needs no template; the
// others load template first if e has none loaded.
func (v viewConfig) show(ctx context.Context, e *atat.Engine, template string) error {
	out := outputFrom(ctx)
	p := atat.NewPrinter(e, out)
	w := out.Writer()
	text := v.Format == "" || v.Format == atat.FormatText

	for _, view := range v.views() {
		if view != ViewDef && !e.IsLoaded() {
			if template == "" {
				return ErrTemplate.Wrap(atat.ErrState)
			}

			if err := e.Load(template); err != nil {
				return ErrTemplate.Wrap(err)
			}
		}

		var err error

		switch {
		case view == ViewDef && text:
			p.ShowDefined()

		case view == ViewDef:
			err = atat.FormatVars(ctx, w, e.Env(), v.Format, v.Indent)

		case view == ViewRef && text:
			err = p.ShowReferenced()

		case view == ViewRef:
			var tags []atat.Tag

			tags, err = e.Characterize()
			if err == nil {
				err = atat.FormatReferences(ctx, w, tags, v.Format, v.Indent)
			}

		case view == ViewPre:
			err = p.ShowPreparsed()

		case view == ViewPost:
			err = p.ShowPostparsed()
		}

		if err != nil {
			return ErrTemplate.Wrap(err)
		}

		if text {
			fmt.Fprintln(w)
		}
	}

	return nil
}
