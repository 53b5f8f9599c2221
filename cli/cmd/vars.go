package cmd

import (
	"context"
	"maps"
	"regexp"
	"strings"

	"github.com/roadnarrows/rnmake/atat"
	"github.com/roadnarrows/rnmake/color"
)

// assignment matches a VAR=VAL argument.
var assignment = regexp.MustCompile(`(?s)^([A-Za-z_]\w*)=(.*)$`)

// SplitAssignments separates VAR=VAL arguments from the others. The order
// of the remaining arguments is kept; a repeated VAR keeps its last value.
func SplitAssignments(args []string) (rest []string, vars map[string]any) {
	vars = make(map[string]any)

	for _, arg := range args {
		if m := assignment.FindStringSubmatch(arg); m != nil {
			vars[m[1]] = m[2]

			continue
		}

		rest = append(rest, arg)
	}

	return rest, vars
}

// userVars merges the variable files of ctx and then assigns, so that
// command-line assignments win.
func userVars(ctx context.Context, assigns map[string]any) (map[string]any, error) {
	vars, err := varsFilesFrom(ctx).load(ctx)
	if err != nil {
		return nil, err
	}

	maps.Copy(vars, assigns)

	return vars, nil
}

// varSet is a case-insensitive set of template variables. Names are kept
// lower case and exported upper case.
type varSet map[string]any

// basicSet returns a varSet declaring names with no value.
func basicSet(names ...string) varSet {
	s := make(varSet, len(names))
	for _, name := range names {
		s[name] = nil
	}

	return s
}

func (s varSet) update(vars map[string]any) {
	for k, v := range vars {
		s[strings.ToLower(k)] = v
	}
}

// str returns the value of name as a string, or "" when it is unset or not
// a string.
func (s varSet) str(name string) string {
	v, _ := s[name].(string)

	return v
}

// export returns the variables with upper-case names, dropping unset ones
// so that references to them are reported as undefined.
func (s varSet) export() map[string]any {
	out := make(map[string]any, len(s))

	for k, v := range s {
		if v != nil {
			out[strings.ToUpper(k)] = v
		}
	}

	return out
}

// newEngine returns an engine reporting to out with vars merged.
func newEngine(out *color.Output, vars map[string]any) *atat.Engine {
	return atat.New(atat.WithSink(out), atat.WithVars(vars))
}
