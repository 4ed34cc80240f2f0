/*
	Package cli is dwight's command line interface.

	`Main` panics with errors rather than returning them; the main method
	sorts them into user errors, command exit codes, and bugs.
*/
package cli

import (
	"fmt"
	"io"
	"os"

	"github.com/inconshreveable/log15"
	"github.com/urfave/cli"

	"polydawn.net/dwight/config"
	"polydawn.net/dwight/def"
	"polydawn.net/dwight/environment"
	"polydawn.net/dwight/privilege"
)

func init() {
	// "-v" is ours for verbosity.
	cli.VersionFlag = cli.BoolFlag{
		Name:  "version",
		Usage: "print the version",
	}
}

func Main(args []string, journal, output io.Writer) {
	App := cli.NewApp()

	App.Name = "dwight"
	App.Usage = "Run commands in chroots composed of images and mounts."
	App.Version = "0.1.0"

	App.Writer = journal
	App.ErrWriter = journal

	App.Flags = []cli.Flag{
		cli.StringFlag{
			Name:  "config, c",
			Usage: "Configuration file (default $DWIGHT_CONFIG, or ./dwight.yaml)",
		},
		cli.StringFlag{
			Name:  "cache-dir",
			Usage: "Cache dir (overrides $DWIGHT_CACHE_DIR and CACHE_DIR)",
		},
		cli.BoolFlag{
			Name:  "verbose, v",
			Usage: "Log progress",
		},
		cli.BoolFlag{
			Name:  "debug",
			Usage: "Log everything",
		},
	}

	App.Commands = []cli.Command{
		RunCommandPattern(),
		ResolveCommandPattern(output),
		CacheCommandPattern(output),
	}

	// A failure to hit a command should be an error, not a zero exit.
	App.CommandNotFound = func(ctx *cli.Context, command string) {
		panic(Error.NewWith(fmt.Sprintf("'%s %v' is not a dwight subcommand", ctx.App.Name, command), SetExitCode(EXIT_BADARGS)))
	}

	if err := App.Run(args); err != nil {
		panic(Error.NewWith(err.Error(), SetExitCode(EXIT_BADARGS)))
	}
}

func logLevel(ctx *cli.Context) log15.Lvl {
	switch {
	case ctx.GlobalBool("debug"), config.DebugEnabled():
		return log15.LvlDebug
	case ctx.GlobalBool("verbose"):
		return log15.LvlInfo
	default:
		return log15.LvlWarn
	}
}

func newLogger(ctx *cli.Context) log15.Logger {
	log := log15.New()
	log.SetHandler(log15.LvlFilterHandler(
		logLevel(ctx),
		log15.StreamHandler(ctx.App.ErrWriter, log15.TerminalFormat()),
	))
	return log
}

/*
	Loads the configuration and the invoking identity, and builds an
	environment from them.

	When `requireFile` is false a missing configuration file is fine (the
	cache commands don't need one), unless the file was asked for by name.
*/
func loadEnvironment(ctx *cli.Context, requireFile bool) *environment.Environment {
	id, err := privilege.FromEnviron(os.LookupEnv)
	if err != nil {
		panic(err)
	}

	configPath := ctx.GlobalString("config")
	named := configPath != ""
	if !named {
		configPath = config.GetConfigPath()
	}
	var cfg *def.Config
	if _, statErr := os.Stat(configPath); statErr != nil && !requireFile && !named {
		cfg = &def.Config{}
	} else {
		cfg, err = def.LoadConfigFile(configPath)
		if err != nil {
			panic(err)
		}
	}

	if dir := config.GetCacheDir(); dir != "" {
		cfg.CacheDir = dir
	}
	if dir := ctx.GlobalString("cache-dir"); dir != "" {
		cfg.CacheDir = dir
	}
	cfg.ApplyDefaults(id.Home)
	if requireFile {
		if err := cfg.Validate(); err != nil {
			panic(err)
		}
	}

	log := newLogger(ctx)
	log.Debug("configuration loaded", "path", configPath, "cache", cfg.CacheDir)
	env := environment.New(cfg, id, log)
	env.LogLevel = logLevel(ctx)
	return env
}

func usageError(ctx *cli.Context, format string, args ...interface{}) error {
	msg := fmt.Sprintf(format, args...)
	return Error.NewWith(fmt.Sprintf("%s\nSee '%s %s --help'.", msg, ctx.App.Name, ctx.Command.Name), SetExitCode(EXIT_BADARGS))
}
