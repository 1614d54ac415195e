// Package cardgen assigns every participant a bingo card of items written by
// exactly three other participants.
package cardgen

import (
	"context"
	"errors"
	"fmt"
	rand "math/rand/v2"

	"github.com/charmbracelet/log"
	"golang.org/x/sync/errgroup"

	"github.com/lox/bingocards/internal/catalog"
	"github.com/lox/bingocards/internal/randutil"
)

// DefaultMaxAttempts is the per-participant retry budget used when Options leaves
// MaxAttempts negative.
const DefaultMaxAttempts = 10000

// ErrGenerationFailed is wrapped by GenerationFailedError.
var ErrGenerationFailed = errors.New("card generation failed")

// GenerationFailedError is returned when a participant exhausts the retry budget.
type GenerationFailedError struct {
	Participant string
	Attempts    int
}

func (e *GenerationFailedError) Error() string {
	return fmt.Sprintf("%s: no valid card for %q after %d attempts", ErrGenerationFailed, e.Participant, e.Attempts)
}

func (e *GenerationFailedError) Unwrap() error {
	return ErrGenerationFailed
}

// Options configures a Generator.
type Options struct {
	// Seed for the run. Zero picks a random seed, see Generator.Seed.
	Seed int64
	// MaxAttempts caps attempts per participant. Zero retries forever, negative
	// uses DefaultMaxAttempts.
	MaxAttempts int
	// Workers is the number of participants generated concurrently (min 1).
	Workers int
}

// Generator builds cards from a read-only catalog.
type Generator struct {
	catalog     *catalog.Catalog
	seed        int64
	maxAttempts int
	workers     int
	logger      *log.Logger
}

// New creates a Generator for c.
func New(c *catalog.Catalog, opts Options, logger *log.Logger) *Generator {
	if logger == nil {
		logger = log.Default()
	}
	g := &Generator{
		catalog:     c,
		seed:        opts.Seed,
		maxAttempts: opts.MaxAttempts,
		workers:     max(opts.Workers, 1),
		logger:      logger,
	}
	if g.maxAttempts < 0 {
		g.maxAttempts = DefaultMaxAttempts
	}
	if g.seed == 0 {
		g.seed = randutil.Seed()
	}
	return g
}

// Seed returns the seed in use, so a run with a random seed can be replayed.
func (g *Generator) Seed() int64 {
	return g.seed
}

// Attempt makes one try at a card for participant. It returns false when the
// random choices led to a dead end; that is expected and the caller should retry.
//
// An owner counts toward the three owners even when duplicate questions stopped
// them from contributing three items, which makes such an attempt fail.
func (g *Generator) Attempt(rng *rand.Rand, participant string) (Card, bool) {
	chosen := make(map[string]struct{}, OwnersPerCard)
	questions := make(map[string]struct{}, CardSize)
	card := make(Card, 0, CardSize)

	for len(card) < CardSize && len(chosen) < OwnersPerCard {
		candidates := g.candidates(participant, chosen)
		if len(candidates) == 0 {
			break
		}
		owner := candidates[rng.IntN(len(candidates))]

		items := g.catalog.Items(owner)
		rng.Shuffle(len(items), func(i, j int) { items[i], items[j] = items[j], items[i] })

		taken := 0
		for _, it := range items {
			if taken == ItemsPerOwner || len(card) == CardSize {
				break
			}
			if _, dup := questions[it.Question]; dup {
				continue
			}
			card = append(card, it)
			questions[it.Question] = struct{}{}
			taken++
		}
		chosen[owner] = struct{}{}
	}

	if len(chosen) != OwnersPerCard || len(card) != CardSize {
		return nil, false
	}
	rng.Shuffle(len(card), func(i, j int) { card[i], card[j] = card[j], card[i] })
	return card, true
}

// candidates lists owners other than participant not yet used, in catalog order.
func (g *Generator) candidates(participant string, chosen map[string]struct{}) []string {
	owners := g.catalog.Owners()
	out := owners[:0]
	for _, o := range owners {
		if o == participant {
			continue
		}
		if _, used := chosen[o]; used {
			continue
		}
		out = append(out, o)
	}
	return out
}

// Feasible reports whether participant has enough other contributors and distinct
// questions that some attempt could succeed. A true result does not guarantee success.
func (g *Generator) Feasible(participant string) bool {
	others := g.catalog.NumOwners()
	if g.catalog.Has(participant) {
		others--
	}
	return others >= OwnersPerCard && g.catalog.DistinctQuestions(participant) >= CardSize
}

// Generate retries Attempt for a single participant until it succeeds, the retry
// budget runs out or ctx is done. It returns the card and the attempts used.
func (g *Generator) Generate(ctx context.Context, rng *rand.Rand, participant string) (Card, int, error) {
	if !g.Feasible(participant) {
		g.logger.Warn("catalog looks too small for a card", "participant", participant)
	}
	for n := 1; g.maxAttempts == 0 || n <= g.maxAttempts; n++ {
		if err := ctx.Err(); err != nil {
			return nil, n - 1, err
		}
		if card, ok := g.Attempt(rng, participant); ok {
			return card, n, nil
		}
	}
	return nil, g.maxAttempts, &GenerationFailedError{Participant: participant, Attempts: g.maxAttempts}
}

type result struct {
	card     Card
	attempts int
}

// GenerateAll produces a card for every participant. Each participant draws from
// its own random stream derived from the run seed and its position, so the result
// does not depend on the number of workers.
func (g *Generator) GenerateAll(ctx context.Context, participants []string) (*CardSet, error) {
	participants = dedupe(participants)
	results := make([]result, len(participants))

	eg, ctx := errgroup.WithContext(ctx)
	eg.SetLimit(g.workers)
	for i, p := range participants {
		eg.Go(func() error {
			rng := randutil.New(randutil.Derive(g.seed, i))
			card, attempts, err := g.Generate(ctx, rng, p)
			if err != nil {
				return err
			}
			g.logger.Debug("generated card", "participant", p, "attempts", attempts)
			results[i] = result{card: card, attempts: attempts}
			return nil
		})
	}
	if err := eg.Wait(); err != nil {
		return nil, err
	}

	set := newCardSet(len(participants))
	for i, p := range participants {
		set.put(p, results[i].card, results[i].attempts)
	}
	g.logger.Info("generated cards", "participants", set.Len(), "attempts", set.TotalAttempts(), "seed", g.seed)
	return set, nil
}

func dedupe(in []string) []string {
	seen := make(map[string]struct{}, len(in))
	out := make([]string, 0, len(in))
	for _, s := range in {
		if _, ok := seen[s]; ok {
			continue
		}
		seen[s] = struct{}{}
		out = append(out, s)
	}
	return out
}
