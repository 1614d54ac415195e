package render

import (
	"context"
	"fmt"
	"image/png"
	"io"
	"path/filepath"
	"strings"

	"golang.org/x/sync/errgroup"

	"github.com/lox/bingocards/internal/cardgen"
	"github.com/lox/bingocards/internal/fileutil"
)

// FileSuffix is appended to the participant name to form an image file name.
const FileSuffix = "__bingo_card.png"

// FileName returns a file-system safe image name for participant that is not yet
// in used, and records it.
func FileName(participant string, used map[string]bool) string {
	base := strings.Map(func(r rune) rune {
		switch r {
		case '/', '\\', ':', '*', '?', '"', '<', '>', '|', 0:
			return '_'
		}
		return r
	}, strings.TrimSpace(participant))
	if base == "" || base == "." || base == ".." {
		base = "card"
	}
	name := base + FileSuffix
	for n := 2; used[strings.ToLower(name)]; n++ {
		name = fmt.Sprintf("%s_%d%s", base, n, FileSuffix)
	}
	used[strings.ToLower(name)] = true
	return name
}

// RenderAll writes one PNG per card into dir, rendering up to workers cards at a
// time. It returns the written paths in participant order.
func (r *Renderer) RenderAll(ctx context.Context, set *cardgen.CardSet, dir string, workers int) ([]string, error) {
	participants := set.Participants()
	paths := make([]string, len(participants))
	used := make(map[string]bool, len(participants))
	for i, p := range participants {
		paths[i] = filepath.Join(dir, FileName(p, used))
	}

	eg, ctx := errgroup.WithContext(ctx)
	eg.SetLimit(max(workers, 1))
	for i, p := range participants {
		card, _ := set.Get(p)
		eg.Go(func() error {
			if err := ctx.Err(); err != nil {
				return err
			}
			img, err := r.Render(p, card)
			if err != nil {
				return fmt.Errorf("rendering card for %s: %w", p, err)
			}
			err = fileutil.WriteAtomic(paths[i], 0o644, func(w io.Writer) error {
				return png.Encode(w, img)
			})
			if err != nil {
				return fmt.Errorf("saving card for %s: %w", p, err)
			}
			r.logger.Debug("rendered card", "participant", p, "path", paths[i])
			return nil
		})
	}
	if err := eg.Wait(); err != nil {
		return nil, err
	}
	return paths, nil
}
