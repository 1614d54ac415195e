package main

import (
	"fmt"
	"io"
	"os"

	"github.com/coder/quartz"

	"github.com/lox/bingocards/internal/config"
	"github.com/lox/bingocards/internal/pipeline"
)

// GenerateCmd runs a full generation. Flags override the config file.
type GenerateCmd struct {
	Input       string `short:"i" help:"Sign-up sheet (.xlsx or .csv)"`
	Seed        *int64 `help:"Deterministic RNG seed (optional)"`
	MaxAttempts *int   `help:"Attempts per participant before giving up, 0 for no limit"`
	Workers     int    `help:"Participants generated and rendered concurrently"`
	Font        string `type:"path" help:"TrueType/OpenType font for the card images"`
	Manifest    string `help:"Also write a YAML manifest of the run to this path"`
}

func (c *GenerateCmd) apply(cfg *config.Config) {
	if c.Input != "" {
		cfg.Input = c.Input
	}
	if c.Seed != nil {
		cfg.Seed = *c.Seed
	}
	if c.MaxAttempts != nil {
		cfg.MaxAttempts = c.MaxAttempts
	}
	if c.Workers > 0 {
		cfg.Workers = c.Workers
	}
	if c.Font != "" {
		cfg.Font.Path = c.Font
	}
	if c.Manifest != "" {
		cfg.Output.Manifest = c.Manifest
	}
}

func (c *GenerateCmd) Run(cli *CLI) error {
	cfg, err := loadConfig(cli)
	if err != nil {
		return err
	}
	c.apply(cfg)

	logger := setupLogger(cfg.Level(), cli.Debug)
	ctx, cancel := setupSignalHandler(logger)
	defer cancel()

	report, err := pipeline.Run(ctx, cfg, pipeline.Deps{
		Clock:  quartz.NewReal(),
		Logger: logger,
	})
	if err != nil {
		return err
	}
	printReport(os.Stdout, report)
	return nil
}

func printReport(w io.Writer, r *pipeline.Report) {
	fmt.Fprintln(w, headerStyle.Render(fmt.Sprintf("Generated %d bingo cards (seed %d, %d attempts)", r.Participants, r.Seed, r.Attempts)))
	line := func(label, path string) {
		fmt.Fprintf(w, "  %s %s\n", labelStyle.Render(fmt.Sprintf("%-10s", label)), pathStyle.Render(path))
	}
	line("Workbook", r.Workbook)
	line("Images", r.ImageDir)
	line("Archive", r.Archive)
	line("PDF", r.PDF)
	if r.Manifest != "" {
		line("Manifest", r.Manifest)
	}
}
