package main

import (
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/lox/bingocards/internal/pipeline"
)

// CheckCmd reports whether the input can produce a card for everyone.
type CheckCmd struct {
	Input string `short:"i" help:"Sign-up sheet (.xlsx or .csv)"`
}

func (c *CheckCmd) Run(cli *CLI) error {
	cfg, err := loadConfig(cli)
	if err != nil {
		return err
	}
	if c.Input != "" {
		cfg.Input = c.Input
	}
	logger := setupLogger(cfg.Level(), cli.Debug)

	report, err := pipeline.Check(cfg, pipeline.Deps{Logger: logger})
	if err != nil {
		return err
	}
	printCheck(os.Stdout, cfg.Input, report)
	if len(report.Starved) > 0 {
		return fmt.Errorf("%d participants cannot get a card", len(report.Starved))
	}
	return nil
}

func printCheck(w io.Writer, input string, r *pipeline.CheckReport) {
	fmt.Fprintln(w, headerStyle.Render(fmt.Sprintf("%s: %d items from %d participants", input, r.Items, r.Participants)))
	if len(r.Starved) == 0 {
		fmt.Fprintln(w, pathStyle.Render("  every participant can get a card"))
		return
	}
	fmt.Fprintln(w, warnStyle.Render("  not enough other contributors or questions for: "+strings.Join(r.Starved, ", ")))
}
