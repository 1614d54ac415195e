// Package config loads the optional HCL run configuration.
package config

import (
	"fmt"
	"os"
	"path/filepath"
	"runtime"
	"strings"

	"github.com/charmbracelet/log"
	"github.com/hashicorp/hcl/v2/gohcl"
	"github.com/hashicorp/hcl/v2/hclparse"

	"github.com/lox/bingocards/internal/cardgen"
	"github.com/lox/bingocards/internal/sheet"
)

// DefaultFile is read when no config path is given.
const DefaultFile = "bingo.hcl"

// Config describes one generation run.
type Config struct {
	Input       string   `hcl:"input,optional"`
	Seed        int64    `hcl:"seed,optional"`
	MaxAttempts *int     `hcl:"max_attempts,optional"`
	Workers     int      `hcl:"workers,optional"`
	LogLevel    string   `hcl:"log_level,optional"`
	Columns     *Columns `hcl:"columns,block"`
	Output      *Output  `hcl:"output,block"`
	Font        *Font    `hcl:"font,block"`
}

// Columns names the spreadsheet headers.
type Columns struct {
	Owner       string `hcl:"owner,optional"`
	Text        string `hcl:"text,optional"`
	Question    string `hcl:"question,optional"`
	Participant string `hcl:"participant,optional"`
}

// Output lists artifact paths. An empty Manifest disables the manifest.
type Output struct {
	Workbook string `hcl:"workbook,optional"`
	Images   string `hcl:"images,optional"`
	Archive  string `hcl:"archive,optional"`
	PDF      string `hcl:"pdf,optional"`
	Manifest string `hcl:"manifest,optional"`
}

// Font selects the typeface used on rendered cards.
type Font struct {
	Path      string  `hcl:"path,optional"`
	TextSize  float64 `hcl:"text_size,optional"`
	TitleSize float64 `hcl:"title_size,optional"`
}

// Default returns the configuration used when no file exists.
func Default() *Config {
	c := &Config{}
	c.applyDefaults()
	return c
}

// Load reads filename, returning defaults if it does not exist.
func Load(filename string) (*Config, error) {
	if _, err := os.Stat(filename); os.IsNotExist(err) {
		return Default(), nil
	}

	parser := hclparse.NewParser()
	file, diags := parser.ParseHCLFile(filename)
	if diags.HasErrors() {
		return nil, fmt.Errorf("failed to parse HCL file: %s", diags.Error())
	}

	var cfg Config
	diags = gohcl.DecodeBody(file.Body, nil, &cfg)
	if diags.HasErrors() {
		return nil, fmt.Errorf("failed to decode HCL: %s", diags.Error())
	}

	cfg.applyDefaults()
	return &cfg, nil
}

func (c *Config) applyDefaults() {
	if c.Input == "" {
		c.Input = "bingo.xlsx"
	}
	if c.MaxAttempts == nil {
		n := cardgen.DefaultMaxAttempts
		c.MaxAttempts = &n
	}
	if c.Workers == 0 {
		c.Workers = runtime.NumCPU()
	}
	if c.LogLevel == "" {
		c.LogLevel = "info"
	}

	if c.Columns == nil {
		c.Columns = &Columns{}
	}
	cols := sheet.DefaultColumns()
	if c.Columns.Owner == "" {
		c.Columns.Owner = cols.Owner
	}
	if c.Columns.Text == "" {
		c.Columns.Text = cols.Text
	}
	if c.Columns.Question == "" {
		c.Columns.Question = cols.Question
	}
	if c.Columns.Participant == "" {
		c.Columns.Participant = cols.Participant
	}

	if c.Output == nil {
		c.Output = &Output{}
	}
	if c.Output.Workbook == "" {
		c.Output.Workbook = "bingo_cards_output_linked.xlsx"
	}
	if c.Output.Images == "" {
		c.Output.Images = "bingo_cards_images_linked"
	}
	if c.Output.Archive == "" {
		c.Output.Archive = "bingo_cards_images_linked.zip"
	}
	if c.Output.PDF == "" {
		c.Output.PDF = "bingo_cards.pdf"
	}

	if c.Font == nil {
		c.Font = &Font{}
	}
	if c.Font.TextSize == 0 {
		c.Font.TextSize = 18
	}
	if c.Font.TitleSize == 0 {
		c.Font.TitleSize = 36
	}
}

// Validate checks the configuration for values that cannot work.
func (c *Config) Validate() error {
	if c.MaxAttempts != nil && *c.MaxAttempts < 0 {
		return fmt.Errorf("max_attempts must not be negative, got %d", *c.MaxAttempts)
	}
	if c.Workers < 1 {
		return fmt.Errorf("workers must be at least 1, got %d", c.Workers)
	}
	if _, err := log.ParseLevel(c.LogLevel); err != nil {
		return fmt.Errorf("invalid log_level %q", c.LogLevel)
	}
	if c.Font.TextSize < 0 || c.Font.TitleSize < 0 {
		return fmt.Errorf("font sizes must be positive")
	}

	images, err := filepath.Abs(c.Output.Images)
	if err != nil {
		return err
	}
	for name, path := range map[string]string{
		"input":    c.Input,
		"archive":  c.Output.Archive,
		"pdf":      c.Output.PDF,
		"workbook": c.Output.Workbook,
		"manifest": c.Output.Manifest,
	} {
		if path == "" {
			continue
		}
		abs, err := filepath.Abs(path)
		if err != nil {
			return err
		}
		if abs == images || strings.HasPrefix(abs, images+string(filepath.Separator)) {
			return fmt.Errorf("%s (%s) must not be inside the images directory", name, path)
		}
	}
	return nil
}

// Level returns the parsed log level.
func (c *Config) Level() log.Level {
	lvl, err := log.ParseLevel(c.LogLevel)
	if err != nil {
		return log.InfoLevel
	}
	return lvl
}

// Attempts returns the per-participant retry budget, 0 meaning unlimited.
func (c *Config) Attempts() int {
	if c.MaxAttempts == nil {
		return cardgen.DefaultMaxAttempts
	}
	return *c.MaxAttempts
}
