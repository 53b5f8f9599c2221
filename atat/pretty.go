package atat

import (
	"fmt"
	"slices"
	"strings"

	"github.com/roadnarrows/rnmake/color"
)

// valueWidth is the wrap width of sequence values in [Printer.ShowDefined].
const valueWidth = 58

// Printer writes human-readable views of an [Engine] to a color output.
type Printer struct {
	e   *Engine
	out *color.Output
}

// NewPrinter returns a Printer of e writing to out.
func NewPrinter(e *Engine, out *color.Output) *Printer {
	return &Printer{e: e, out: out}
}

// ShowDefined lists the working variables by name.
func (p *Printer) ShowDefined() {
	p.out.Info("    Defined Working Variables")
	p.out.CPrint(
		color.S("brown", color.Underline("Variable")+strings.Repeat(" ", 12)+" "),
		color.S("lightblue", color.Underline("Value")),
	)

	vars := p.e.env.Working()
	names := make([]string, 0, len(vars))

	for name := range vars {
		names = append(names, name)
	}

	slices.Sort(names)

	wrap := p.out.Renderer().NewStyle().Width(valueWidth)

	for _, name := range names {
		v := vars[name]

		lines := []string{v.String()}
		if v.Kind() == KindSeq {
			lines = strings.Split(wrap.Render(v.String()), "\n")
		}

		p.out.CPrint(
			color.S("brown", fmt.Sprintf("%-20s ", name)),
			color.S("lightblue", strings.TrimRight(lines[0], " ")),
		)

		for _, l := range lines[1:] {
			p.out.CPrint(color.S("lightblue", fmt.Sprintf("%-20s %s", "", strings.TrimRight(l, " "))))
		}
	}
}

// ShowReferenced lists the tags of the loaded template.
func (p *Printer) ShowReferenced() error {
	tags, err := p.e.Characterize()
	if err != nil {
		return err
	}

	p.out.Info("    References in " + p.e.template)
	p.out.CPrint(
		color.S("darkgray", color.Underline("Line")+" "),
		color.S("darkgray", color.Underline("Columns")+" "),
		color.S("brown", color.Underline("Variable")),
		color.S("normal", strings.Repeat(" ", 13)),
		color.S("lightblue", color.Underline("Format String")),
	)

	for _, t := range tags {
		p.out.CPrint(
			color.S("darkgray", fmt.Sprintf("%4d ", t.Line)),
			color.S("darkgray", fmt.Sprintf("%3d-%-3d ", t.ColStart, t.ColEnd)),
			color.S("brown", fmt.Sprintf("%-20s ", t.Name)),
			color.S("lightblue", t.Format),
		)
	}

	return nil
}

// ShowPreparsed writes the loaded template between rules.
func (p *Printer) ShowPreparsed() error {
	if !p.e.loaded {
		return ErrState
	}

	p.out.Info("    Pre-parsed " + p.e.template)
	p.showLines("green", p.e.in)

	return nil
}

// ShowPostparsed writes the parsed template between rules, parsing it first
// if needed.
func (p *Printer) ShowPostparsed() error {
	if !p.e.loaded {
		return ErrState
	}

	if !p.e.parsed {
		if err := p.e.Parse(); err != nil {
			return err
		}
	}

	p.out.Info("    Post-parsed " + p.e.template)
	p.showLines("info", p.e.out)

	return nil
}

func (p *Printer) showLines(c string, lines []string) {
	p.out.HR(80, false, "darkgray")

	for _, line := range lines {
		p.out.CWrite(color.S(c, line))
	}

	if n := len(lines); n > 0 && !strings.HasSuffix(lines[n-1], "\n") {
		p.out.CWrite(color.S("normal", "\n"))
	}

	p.out.HR(80, false, "darkgray")
}
