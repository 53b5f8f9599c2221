// Package cmd implements the rnmake subcommands.
//
// Each command is a kong command struct with a Run(context.Context) method.
// The context carries the parsed [kong.Context] ([WithContext]), the
// terminal output ([WithOutput]) and the variable files ([WithVarsFiles]).
//
// The home, pydoc and render commands feed an AtAt template engine with
// variables from three sources, later ones winning: the command itself,
// the variable files, and VAR=VAL arguments ([SplitAssignments]).
package cmd

import (
	"strings"

	"github.com/alecthomas/kong"

	"github.com/roadnarrows/rnmake/atat"
)

var (
	// CacheIdentifier is the kong variable identifier containing the path to
	// the runtime cache directory.
	CacheIdentifier = "cache"

	// ConfigIdentifier is the kong variable identifier containing the path to
	// the configuration file.
	ConfigIdentifier = "config"
)

// Vars returns the kong variables referenced by the command flags.
func Vars() kong.Vars {
	return kong.Vars{
		"showEnum":   strings.Join([]string{ViewAll, ViewDef, ViewRef, ViewPre, ViewPost}, ","),
		"formatEnum": strings.Join(atat.Formats(), ","),
	}
}
