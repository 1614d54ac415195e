// Package pipeline runs a full bingo card generation: load the sign-up sheet,
// generate cards and write every artifact.
package pipeline

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/charmbracelet/log"
	"github.com/coder/quartz"

	"github.com/lox/bingocards/internal/cardgen"
	"github.com/lox/bingocards/internal/catalog"
	"github.com/lox/bingocards/internal/config"
	"github.com/lox/bingocards/internal/export"
	"github.com/lox/bingocards/internal/fileutil"
	"github.com/lox/bingocards/internal/render"
	"github.com/lox/bingocards/internal/sheet"
)

// Deps holds the collaborators a run needs besides its configuration.
type Deps struct {
	Clock  quartz.Clock
	Logger *log.Logger
}

func (d Deps) withDefaults() Deps {
	if d.Clock == nil {
		d.Clock = quartz.NewReal()
	}
	if d.Logger == nil {
		d.Logger = log.Default()
	}
	return d
}

// Report summarises a completed run.
type Report struct {
	Participants int
	Attempts     int
	Seed         int64
	Workbook     string
	ImageDir     string
	Images       []string
	Archive      string
	PDF          string
	Manifest     string
	Elapsed      time.Duration
}

func columns(cfg *config.Config) sheet.Columns {
	return sheet.Columns{
		Owner:       cfg.Columns.Owner,
		Text:        cfg.Columns.Text,
		Question:    cfg.Columns.Question,
		Participant: cfg.Columns.Participant,
	}
}

// LoadCatalog reads and validates the configured input.
func LoadCatalog(cfg *config.Config) (*catalog.Catalog, error) {
	rows, err := sheet.Load(cfg.Input, columns(cfg))
	if err != nil {
		return nil, fmt.Errorf("loading %s: %w", cfg.Input, err)
	}
	c, err := catalog.Build(rows)
	if err != nil {
		return nil, fmt.Errorf("loading %s: %w", cfg.Input, err)
	}
	if c.Len() == 0 {
		return nil, fmt.Errorf("loading %s: no items found", cfg.Input)
	}
	return c, nil
}

// Run generates cards for everyone in the input and writes the workbook, images,
// archive, PDF and (if configured) manifest. Nothing is written when the input is
// invalid or a card cannot be generated.
func Run(ctx context.Context, cfg *config.Config, deps Deps) (*Report, error) {
	deps = deps.withDefaults()
	logger := deps.Logger
	start := deps.Clock.Now()

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid config: %w", err)
	}

	cat, err := LoadCatalog(cfg)
	if err != nil {
		return nil, err
	}
	logger.Info("loaded items", "input", cfg.Input, "items", cat.Len(), "participants", cat.NumOwners())

	gen := cardgen.New(cat, cardgen.Options{
		Seed:        cfg.Seed,
		MaxAttempts: cfg.Attempts(),
		Workers:     cfg.Workers,
	}, logger)
	if cfg.Seed == 0 {
		logger.Info("using random seed", "seed", gen.Seed())
	}

	set, err := gen.GenerateAll(ctx, cat.Participants())
	if err != nil {
		return nil, err
	}
	if err := set.Validate(); err != nil {
		return nil, fmt.Errorf("generated an invalid card: %w", err)
	}

	report := &Report{
		Participants: set.Len(),
		Attempts:     set.TotalAttempts(),
		Seed:         gen.Seed(),
		Workbook:     cfg.Output.Workbook,
		ImageDir:     cfg.Output.Images,
		Archive:      cfg.Output.Archive,
		PDF:          cfg.Output.PDF,
		Manifest:     cfg.Output.Manifest,
	}

	if err := sheet.WriteCards(cfg.Output.Workbook, set, columns(cfg)); err != nil {
		return nil, fmt.Errorf("writing %s: %w", cfg.Output.Workbook, err)
	}
	logger.Debug("wrote workbook", "path", cfg.Output.Workbook)

	renderer, err := render.New(render.Options{
		FontPath:  cfg.Font.Path,
		TextSize:  cfg.Font.TextSize,
		TitleSize: cfg.Font.TitleSize,
	}, logger)
	if err != nil {
		return nil, err
	}
	if err := fileutil.ClearDir(cfg.Output.Images, render.FileSuffix); err != nil {
		return nil, err
	}
	report.Images, err = renderer.RenderAll(ctx, set, cfg.Output.Images, cfg.Workers)
	if err != nil {
		return nil, fmt.Errorf("rendering images: %w", err)
	}
	logger.Debug("rendered images", "dir", cfg.Output.Images, "count", len(report.Images))

	now := deps.Clock.Now()
	if err := export.WriteZip(cfg.Output.Images, cfg.Output.Archive, now); err != nil {
		return nil, fmt.Errorf("writing %s: %w", cfg.Output.Archive, err)
	}
	if err := export.WritePDF(cfg.Output.Images, cfg.Output.PDF, now); err != nil {
		return nil, fmt.Errorf("writing %s: %w", cfg.Output.PDF, err)
	}

	if cfg.Output.Manifest != "" {
		m, err := export.NewManifest(set, gen.Seed(), cfg.Input, now, report.Images)
		if err != nil {
			return nil, err
		}
		if err := export.WriteManifest(cfg.Output.Manifest, m); err != nil {
			return nil, fmt.Errorf("writing %s: %w", cfg.Output.Manifest, err)
		}
	}

	report.Elapsed = deps.Clock.Since(start)
	logger.Info("run complete", "participants", report.Participants, "attempts", report.Attempts, "elapsed", report.Elapsed)
	return report, nil
}

// CheckReport describes whether an input can produce cards.
type CheckReport struct {
	Items        int
	Participants int
	// Starved lists participants for whom no card can ever be generated.
	Starved []string
}

// Check loads the input and reports participants who cannot get a card, without
// generating or writing anything.
func Check(cfg *config.Config, deps Deps) (*CheckReport, error) {
	deps = deps.withDefaults()
	cat, err := LoadCatalog(cfg)
	if err != nil {
		return nil, err
	}
	gen := cardgen.New(cat, cardgen.Options{Seed: 1}, deps.Logger)
	report := &CheckReport{Items: cat.Len(), Participants: cat.NumOwners()}
	for _, p := range cat.Participants() {
		if !gen.Feasible(p) {
			report.Starved = append(report.Starved, p)
		}
	}
	return report, nil
}

// Verify checks a manifest against the configured input: every card must obey
// the card rules and contain only items present in the input.
func Verify(cfg *config.Config, manifestPath string) error {
	m, err := export.ReadManifest(manifestPath)
	if err != nil {
		return err
	}
	cat, err := LoadCatalog(cfg)
	if err != nil {
		return err
	}

	known := make(map[catalog.Item]struct{}, cat.Len())
	for _, o := range cat.Owners() {
		for _, it := range cat.Items(o) {
			known[it] = struct{}{}
		}
	}

	var errs []error
	seen := make(map[string]bool, len(m.Cards))
	for _, mc := range m.Cards {
		if seen[mc.Participant] {
			errs = append(errs, fmt.Errorf("participant %s has more than one card", mc.Participant))
		}
		seen[mc.Participant] = true
		if err := cardgen.Card(mc.Items).Validate(mc.Participant); err != nil {
			errs = append(errs, err)
		}
		for _, it := range mc.Items {
			if _, ok := known[it]; !ok {
				errs = append(errs, fmt.Errorf("card for %s has item %q not in %s", mc.Participant, it.Question, cfg.Input))
			}
		}
	}
	for _, p := range cat.Participants() {
		if !seen[p] {
			errs = append(errs, fmt.Errorf("participant %s has no card", p))
		}
	}
	return errors.Join(errs...)
}
