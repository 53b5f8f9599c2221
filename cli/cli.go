package cli

import (
	"context"

	"github.com/alecthomas/kong"

	"github.com/roadnarrows/rnmake/cli/cmd"
	"github.com/roadnarrows/rnmake/color"
	"github.com/roadnarrows/rnmake/pkg"
)

// CLI is the top-level command-line interface for rnmake.
type CLI struct {
	Log   logConfig   `embed:"" group:"log"   prefix:"log-"`
	Pprof pprofConfig `embed:"" group:"pprof" prefix:"pprof-"`

	Color    bool     `default:"true" help:"Colorize terminal output." negatable:""`
	VarsFile []string `help:"YAML file of template variables, or '-' for stdin. Later files win." name:"vars-file" placeholder:"FILE" short:"V" type:"existingfile"`

	Home    cmd.Home    `cmd:"" help:"Build a documentation home page from an AtAt template."`
	Pydoc   cmd.Pydoc   `cmd:"" help:"Build python package documentation and its index page." name:"pydoc"`
	Render  cmd.Render  `cmd:"" help:"Render an AtAt template."`
	Init    cmd.Init    `cmd:"" help:"Initialize configuration file."`
	Version cmd.Version `cmd:"" help:"Print version."`
}

// Run executes the rnmake CLI with the given context and arguments.
// The exit function is called with the appropriate exit code upon completion.
func Run(
	ctx context.Context,
	exit func(code int),
	args ...string,
) error {
	var cli CLI

	err := mkdirAllRequired()
	if err != nil {
		return err
	}

	configFilePath := configPath(baseConfig)

	vars := kong.Vars{
		cmd.ConfigIdentifier: configFilePath,
		cmd.CacheIdentifier:  cachePath(),
	}.
		CloneWith(cli.Log.vars()).
		CloneWith(cli.Pprof.vars()).
		CloneWith(cmd.Vars())

	ctx, cancel := context.WithCancel(ctx)
	defer cancel()

	// Logger flags are applied before parsing so that parse errors are
	// reported in the requested format.
	cli.Log.scan(args)

	parser, err := kong.New(&cli,
		kong.Name(pkg.Name),
		kong.Description(pkg.Description),
		kong.UsageOnError(),
		kong.Exit(exit),
		kong.ExplicitGroups(
			[]kong.Group{cli.Log.group(), cli.Pprof.group()},
		),
		// ctx is reassigned below; commands receive the final value.
		kong.BindSingletonProvider(func() context.Context {
			return ctx
		}),
		kong.ConfigureHelp(
			kong.HelpOptions{
				Compact:             true,
				Summary:             true,
				Tree:                true,
				NoExpandSubcommands: true,
			}),
		kong.Configuration(resolve, configFilePath),
		vars,
	)
	if err != nil {
		return err
	}

	ktx, err := parser.Parse(args)
	if err != nil {
		return err
	}

	ctx = cmd.WithContext(ctx, ktx)
	ctx = cmd.WithVarsFiles(ctx, cli.VarsFile)
	ctx = cmd.WithOutput(ctx, color.New(
		color.WithPrefix(pkg.Prefix()),
		color.WithColor(cli.Color),
	))

	cli.Log.start(ctx)

	// [pprofConfig.start] is no-op unless built with tag pprof and enabled.
	defer cli.Pprof.start(ctx)()

	return ktx.Run(ctx, &cli)
}
