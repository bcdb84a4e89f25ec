// Command stylekit is a small CLI wrapper around the stylekit package: it
// parses a stylesheet and prints the rules and errors it found.
package main

import (
	"context"
	"fmt"
	"os"
	"path/filepath"

	cli "github.com/urfave/cli/v3"
	"go.uber.org/zap"

	"github.com/tekugo/stylekit"
)

func main() {
	app := &cli.Command{
		Name:  "stylekit",
		Usage: "parse and inspect stylekit stylesheets",
		Commands: []*cli.Command{
			{
				Name:      "parse",
				Usage:     "parse a stylesheet file and print its rules and errors",
				ArgsUsage: "FILE",
				Flags: []cli.Flag{
					&cli.BoolFlag{Name: "quiet", Aliases: []string{"q"}, Usage: "suppress rule output, print only errors"},
					&cli.BoolFlag{Name: "debug", Aliases: []string{"d"}, Usage: "enable verbose logging"},
				},
				Action: runParse,
			},
		},
	}

	if err := app.Run(context.Background(), os.Args); err != nil {
		fmt.Fprintf(os.Stderr, "stylekit: %v\n", err)
		os.Exit(1)
	}
}

func runParse(ctx context.Context, cmd *cli.Command) error {
	if cmd.Args().Len() != 1 {
		return fmt.Errorf("expected exactly one FILE argument")
	}
	path := cmd.Args().Get(0)

	logger := zap.NewNop()
	if cmd.Bool("debug") {
		l, err := zap.NewDevelopment()
		if err != nil {
			return fmt.Errorf("unable to set up logging: %w", err)
		}
		logger = l
	}
	defer logger.Sync() //nolint:errcheck

	sheet := stylekit.NewStyleSheet(logger)
	sheet.SetRootPath(filepath.Dir(path))
	parseErr := sheet.ParseFile(filepath.Base(path))

	for _, e := range sheet.Errors() {
		fmt.Fprintf(os.Stderr, "%s:%d:%d: %s: %s\n", e.File, e.Line, e.Column, e.Kind, e.Message)
	}

	if !cmd.Bool("quiet") {
		for _, rule := range sheet.Rules() {
			fmt.Printf("rule with %d part(s), %d propert(y/ies)\n", len(rule.Selector.Parts), len(rule.Properties))
			for _, prop := range rule.Properties {
				fmt.Printf("  %s: %d value(s)\n", prop.Name, len(prop.Values))
			}
		}
	}

	if parseErr != nil {
		return parseErr
	}
	return nil
}
