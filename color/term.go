package color

import (
	"os"
	"slices"

	"github.com/muesli/termenv"
)

// Terminal types known to render the 16-color palette.
var (
	screenTerms = []string{
		"linux", "screen", "screen-256color", "screen-bce",
		"screen.xterm-256color",
	}
	xtermTerms = []string{"xterm", "xterm-color", "xterm-256color"}
)

// Profile returns the color profile used for the terminal type term.
func Profile(term string) termenv.Profile {
	if slices.Contains(screenTerms, term) || slices.Contains(xtermTerms, term) {
		return termenv.ANSI
	}

	return termenv.Ascii
}

func envProfile() termenv.Profile { return Profile(os.Getenv("TERM")) }
