package cli

import (
	"fmt"
	"io"

	"github.com/urfave/cli"
)

func ResolveCommandPattern(output io.Writer) cli.Command {
	return cli.Command{
		Name:  "resolve",
		Usage: "Fetch or refresh every resource in the configuration, and print where each one is",
		Action: func(ctx *cli.Context) error {
			env := loadEnvironment(ctx, true)
			resolved, err := env.Resolve()
			if err != nil {
				panic(err)
			}
			fmt.Fprintf(output, "/\t%s\n", resolved.Root)
			for i, inc := range env.Config.Includes {
				fmt.Fprintf(output, "%s\t%s\n", inc.Dest, resolved.Includes[i])
			}
			return nil
		},
	}
}
