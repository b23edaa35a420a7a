// Package cmd implements the sweep CLI commands.
//
// Exit codes:
//   - 0: success
//   - 1: usage or matrix definition error
//   - 2: expansion failure
package cmd

import (
	"fmt"
	"io"
	"os"

	"github.com/urfave/cli/v2"

	"github.com/justapithecus/sweep/cli/render"
	"github.com/justapithecus/sweep/matrix"
)

// Exit codes for failure paths; success is the zero return from an action.
const (
	exitMatrixError = 1
	exitExpandError = 2
)

// ExpandCommand returns the expand command, which expands a matrix file into
// its combinations.
func ExpandCommand() *cli.Command {
	return &cli.Command{
		Name:  "expand",
		Usage: "Expand a parameter matrix file into its combinations",
		Flags: []cli.Flag{
			&cli.StringFlag{
				Name:     "matrix",
				Aliases:  []string{"m"},
				Usage:    "Path to matrix YAML file",
				Required: true,
			},
			&cli.StringFlag{
				Name:  "format",
				Usage: "Output format: json, yaml, table, or msgpack",
			},
			&cli.StringFlag{
				Name:  "out",
				Usage: "Write output to file instead of stdout",
			},
			&cli.BoolFlag{
				Name:  "no-color",
				Usage: "Disable color in table output",
			},
		},
		Action: expandAction,
	}
}

func expandAction(c *cli.Context) error {
	format, err := render.ParseFormat(c.String("format"))
	if err != nil {
		return cli.Exit(err.Error(), exitMatrixError)
	}

	f, err := matrix.Load(c.String("matrix"))
	if err != nil {
		return cli.Exit(err.Error(), exitMatrixError)
	}
	if err := f.Validate(); err != nil {
		return cli.Exit(fmt.Sprintf("invalid matrix: %v", err), exitMatrixError)
	}

	combos, err := matrix.Expand(f, nil)
	if err != nil {
		return cli.Exit(fmt.Sprintf("expansion failed: %v", err), exitExpandError)
	}

	var out io.Writer = os.Stdout
	if path := c.String("out"); path != "" {
		file, err := os.Create(path)
		if err != nil {
			return cli.Exit(fmt.Sprintf("cannot create output file: %v", err), exitExpandError)
		}
		defer file.Close()
		out = file
	}

	r := render.New(format, c.Bool("no-color"), out)
	if err := r.Combinations(f.AxisNames(), combos); err != nil {
		return cli.Exit(fmt.Sprintf("render failed: %v", err), exitExpandError)
	}
	return nil
}
