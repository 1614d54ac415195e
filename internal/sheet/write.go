package sheet

import (
	"fmt"
	"io"
	"strings"
	"unicode/utf8"

	"github.com/xuri/excelize/v2"

	"github.com/lox/bingocards/internal/cardgen"
	"github.com/lox/bingocards/internal/fileutil"
)

const (
	defaultSheet = "Sheet1"
	maxSheetName = 31
)

// WriteCards writes one sheet per participant listing their items, with the
// participant repeated in the last column.
func WriteCards(path string, set *cardgen.CardSet, cols Columns) error {
	f := excelize.NewFile()
	defer f.Close()

	header := []any{cols.Owner, cols.Text, cols.Question, cols.Participant}
	used := map[string]bool{}
	first := -1

	err := set.Each(func(participant string, card cardgen.Card) error {
		name := SheetName(participant, used)
		idx, err := f.NewSheet(name)
		if err != nil {
			return fmt.Errorf("adding sheet for %s: %w", participant, err)
		}
		if first < 0 {
			first = idx
		}
		if err := f.SetSheetRow(name, "A1", &header); err != nil {
			return err
		}
		for i, it := range card {
			cell, err := excelize.CoordinatesToCellName(1, i+2)
			if err != nil {
				return err
			}
			row := []any{it.Owner, it.Text, it.Question, participant}
			if err := f.SetSheetRow(name, cell, &row); err != nil {
				return fmt.Errorf("writing card for %s: %w", participant, err)
			}
		}
		return f.SetColWidth(name, "B", "B", 60)
	})
	if err != nil {
		return err
	}

	if first >= 0 && !used[strings.ToLower(defaultSheet)] {
		f.SetActiveSheet(first)
		if err := f.DeleteSheet(defaultSheet); err != nil {
			return err
		}
	}

	return fileutil.WriteAtomic(path, 0o644, func(w io.Writer) error {
		return f.Write(w)
	})
}

// SheetName turns participant into a valid, unused worksheet name and records it
// in used.
func SheetName(participant string, used map[string]bool) string {
	base := strings.Map(func(r rune) rune {
		switch r {
		case ':', '\\', '/', '?', '*', '[', ']':
			return '_'
		}
		return r
	}, participant)
	base = strings.Trim(base, "'")
	if strings.TrimSpace(base) == "" {
		base = "Deelnemer"
	}
	base = truncate(base, maxSheetName)

	name := base
	for n := 2; used[strings.ToLower(name)]; n++ {
		suffix := fmt.Sprintf(" (%d)", n)
		name = truncate(base, maxSheetName-len(suffix)) + suffix
	}
	used[strings.ToLower(name)] = true
	return name
}

func truncate(s string, n int) string {
	if utf8.RuneCountInString(s) <= n {
		return s
	}
	return string([]rune(s)[:n])
}
