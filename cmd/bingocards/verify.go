package main

import (
	"fmt"
	"os"

	"github.com/lox/bingocards/internal/pipeline"
)

// VerifyCmd checks a manifest written by generate --manifest.
type VerifyCmd struct {
	Manifest string `arg:"" type:"existingfile" help:"Manifest YAML to verify"`
	Input    string `short:"i" help:"Sign-up sheet the manifest was generated from"`
}

func (c *VerifyCmd) Run(cli *CLI) error {
	cfg, err := loadConfig(cli)
	if err != nil {
		return err
	}
	if c.Input != "" {
		cfg.Input = c.Input
	}
	if err := pipeline.Verify(cfg, c.Manifest); err != nil {
		return fmt.Errorf("manifest %s is invalid:\n%w", c.Manifest, err)
	}
	fmt.Fprintln(os.Stdout, pathStyle.Render(fmt.Sprintf("%s matches %s", c.Manifest, cfg.Input)))
	return nil
}
