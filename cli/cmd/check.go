package cmd

import (
	"fmt"

	"github.com/urfave/cli/v2"

	"github.com/justapithecus/sweep/matrix"
)

// CheckCommand returns the check command, which validates a matrix file and
// reports its combination count without materializing output.
func CheckCommand() *cli.Command {
	return &cli.Command{
		Name:  "check",
		Usage: "Validate a matrix file and report its combination count",
		Flags: []cli.Flag{
			&cli.StringFlag{
				Name:     "matrix",
				Aliases:  []string{"m"},
				Usage:    "Path to matrix YAML file",
				Required: true,
			},
		},
		Action: checkAction,
	}
}

func checkAction(c *cli.Context) error {
	f, err := matrix.Load(c.String("matrix"))
	if err != nil {
		return cli.Exit(err.Error(), exitMatrixError)
	}
	if err := f.Validate(); err != nil {
		return cli.Exit(fmt.Sprintf("invalid matrix: %v", err), exitMatrixError)
	}

	n, err := matrix.Count(f, nil)
	if err != nil {
		return cli.Exit(fmt.Sprintf("expansion failed: %v", err), exitExpandError)
	}

	name := f.Name
	if name == "" {
		name = c.String("matrix")
	}
	fmt.Fprintf(c.App.Writer, "%s: %d axes, %d combinations\n", name, len(f.Axes), n)
	return nil
}
