package main

import (
	"fmt"
	"os"

	"github.com/urfave/cli/v2"

	"github.com/patelvedant312/team-matching/internal/logger"
)

func main() {
	app := newApp()
	if err := app.Run(os.Args); err != nil {
		fmt.Fprintln(os.Stderr, "Error:", err)
		os.Exit(1)
	}
}

func newApp() *cli.App {
	return &cli.App{
		Name:  "teammatch",
		Usage: "Offline team matching over a JSON snapshot of projects and resources",
		Flags: []cli.Flag{
			&cli.StringFlag{
				Name:  "log-level",
				Value: "warn",
				Usage: "log level (debug, info, warn, error)",
			},
		},
		Before: func(ctx *cli.Context) error {
			logger.Init(ctx.String("log-level"))
			logger.SetTextFormatter()
			logger.Log.SetOutput(ctx.App.ErrWriter)
			return nil
		},
		Commands: []*cli.Command{
			matchCmd,
			validateCmd,
		},
	}
}

func inputFlag() cli.Flag {
	return &cli.StringFlag{
		Name:     "input",
		Aliases:  []string{"i"},
		Required: true,
		Usage:    "specify the input run.json ({projects, resources})",
	}
}

func configFlag() cli.Flag {
	return &cli.StringFlag{
		Name:    "config",
		Aliases: []string{"c"},
		Usage:   "specify the run configuration (YAML: weights, infeasible_cost, org_scoping, ...)",
	}
}

var matchCmd = &cli.Command{
	Name:    "match",
	Usage:   "Run the matching engine and print the result",
	Aliases: []string{"m"},
	Flags: []cli.Flag{
		inputFlag(),
		configFlag(),
		&cli.StringFlag{
			Name:    "out",
			Aliases: []string{"o"},
			Usage:   "specify the output result.json (stdout by default)",
		},
	},
	Action: func(ctx *cli.Context) error {
		return doMatch(ctx.String("input"), ctx.String("config"), ctx.String("out"), ctx.App.Writer)
	},
}

var validateCmd = &cli.Command{
	Name:    "validate",
	Usage:   "Validate the input without solving",
	Aliases: []string{"v"},
	Flags: []cli.Flag{
		inputFlag(),
		configFlag(),
	},
	Action: func(ctx *cli.Context) error {
		return doValidate(ctx.String("input"), ctx.String("config"), ctx.App.Writer)
	},
}
