package cli

import (
	"fmt"
	"strings"

	"github.com/urfave/cli"
)

func RunCommandPattern() cli.Command {
	return cli.Command{
		Name:      "run",
		Usage:     "Run a command in the chroot described by the configuration",
		ArgsUsage: "COMMAND...",
		// everything after "run" belongs to the command.
		SkipFlagParsing: true,
		Action: func(ctx *cli.Context) error {
			if ctx.NArg() == 0 {
				panic(usageError(ctx, "no command given"))
			}
			command := strings.Join(ctx.Args(), " ")

			env := loadEnvironment(ctx, true)
			code, err := env.RunCommandInChroot(command)
			if err != nil {
				panic(err)
			}
			if code != 0 {
				panic(exitWith(code))
			}
			return nil
		},
	}
}

// The quiet error carrying a command's non-zero exit code out to main.
func exitWith(code int) error {
	return Exit.NewWith(fmt.Sprintf("command exited with code %d", code), SetExitCode(ExitCode(code)))
}
