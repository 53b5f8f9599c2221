package color

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/lipgloss"
)

// Color is a named terminal color.
type Color uint8

// Terminal colors. The light variants are the bright half of the 16-color
// palette.
const (
	Black Color = iota
	Red
	Green
	Brown
	Blue
	Purple
	Cyan
	LightGray
	DarkGray
	LightRed
	LightGreen
	Yellow
	LightBlue
	LightPurple
	LightCyan
	White
	Normal
)

var colorNames = [...]string{
	Black:       "black",
	Red:         "red",
	Green:       "green",
	Brown:       "brown",
	Blue:        "blue",
	Purple:      "purple",
	Cyan:        "cyan",
	LightGray:   "lightgray",
	DarkGray:    "darkgray",
	LightRed:    "lightred",
	LightGreen:  "lightgreen",
	Yellow:      "yellow",
	LightBlue:   "lightblue",
	LightPurple: "lightpurple",
	LightCyan:   "lightcyan",
	White:       "white",
	Normal:      "normal",
}

func (c Color) String() string {
	if int(c) < len(colorNames) {
		return colorNames[c]
	}

	return fmt.Sprintf("Color(%d)", c)
}

// Colors returns all colors in palette order.
func Colors() []Color {
	cs := make([]Color, 0, len(colorNames))
	for c := Black; c <= Normal; c++ {
		cs = append(cs, c)
	}

	return cs
}

// ParseColor returns the color named s (case-insensitive).
func ParseColor(s string) (Color, bool) {
	s = strings.ToLower(strings.TrimSpace(s))
	for c, name := range colorNames {
		if name == s {
			return Color(c), true
		}
	}

	return Normal, false
}

// terminal returns the 16-color palette index of c. Normal has none.
func (c Color) terminal() (lipgloss.Color, bool) {
	if c >= Normal {
		return "", false
	}

	return lipgloss.Color(fmt.Sprint(uint8(c))), true
}

// Synonyms maps alias names to colors.
type Synonyms map[string]Color

// DefaultSynonyms returns the synonyms every [Output] starts with.
func DefaultSynonyms() Synonyms {
	return Synonyms{
		"debug":  DarkGray,
		"info":   Green,
		"warn":   Brown,
		"error":  LightRed,
		"crit":   LightPurple,
		"fatal":  LightPurple,
		"banner": Green,
		"num":    Green,
		"premsg": Green,
		"sep":    LightBlue,
	}
}

// Palette holds the style of every color name and synonym of an [Output].
type Palette struct {
	styles map[string]lipgloss.Style
	normal lipgloss.Style
}

func makePalette(r *lipgloss.Renderer, syn Synonyms) Palette {
	p := Palette{
		styles: make(map[string]lipgloss.Style, len(colorNames)+len(syn)),
		normal: r.NewStyle(),
	}

	style := func(c Color) lipgloss.Style {
		if fg, ok := c.terminal(); ok {
			return r.NewStyle().Foreground(fg)
		}

		return p.normal
	}

	for _, c := range Colors() {
		p.styles[c.String()] = style(c)
	}

	for name, c := range syn {
		p.styles[name] = style(c)
	}

	return p
}

// Style returns the style of a color name or synonym. Unknown names have no
// color.
func (p Palette) Style(name string) lipgloss.Style {
	if s, ok := p.styles[name]; ok {
		return s
	}

	return p.normal
}
