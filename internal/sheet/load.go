// Package sheet reads the contributed items from a spreadsheet and writes the
// generated cards back out as a workbook.
package sheet

import (
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/xuri/excelize/v2"

	"github.com/lox/bingocards/internal/catalog"
)

// Columns names the header cells used in input and output workbooks.
type Columns struct {
	Owner       string
	Text        string
	Question    string
	Participant string
}

// DefaultColumns returns the header names of the sign-up sheet.
func DefaultColumns() Columns {
	return Columns{
		Owner:       "Naam",
		Text:        "Bingo",
		Question:    "Vraag",
		Participant: "Deelnemer",
	}
}

// Load reads rows from an .xlsx or .csv file.
func Load(path string, cols Columns) ([]catalog.Row, error) {
	f, err := os.Open(filepath.Clean(path))
	if err != nil {
		return nil, err
	}
	defer f.Close()

	switch ext := strings.ToLower(filepath.Ext(path)); ext {
	case ".xlsx", ".xlsm":
		return ReadXLSX(f, cols)
	case ".csv":
		return ReadCSV(f, cols)
	default:
		return nil, fmt.Errorf("unsupported input format %q", ext)
	}
}

// ReadXLSX reads rows from the first sheet of a workbook.
func ReadXLSX(r io.Reader, cols Columns) ([]catalog.Row, error) {
	f, err := excelize.OpenReader(r)
	if err != nil {
		return nil, fmt.Errorf("opening workbook: %w", err)
	}
	defer f.Close()

	sheets := f.GetSheetList()
	if len(sheets) == 0 {
		return nil, errors.New("workbook has no sheets")
	}
	records, err := f.GetRows(sheets[0])
	if err != nil {
		return nil, fmt.Errorf("reading sheet %q: %w", sheets[0], err)
	}
	return parseRecords(records, cols)
}

// ReadCSV reads rows from comma separated text with a header line.
func ReadCSV(r io.Reader, cols Columns) ([]catalog.Row, error) {
	cr := csv.NewReader(r)
	cr.FieldsPerRecord = -1
	records, err := cr.ReadAll()
	if err != nil {
		return nil, fmt.Errorf("reading csv: %w", err)
	}
	return parseRecords(records, cols)
}

// parseRecords maps header names to columns and converts the remaining records.
// Blank records are skipped; a missing header column is a schema error.
func parseRecords(records [][]string, cols Columns) ([]catalog.Row, error) {
	if len(records) == 0 {
		return nil, &catalog.SchemaError{Missing: []string{cols.Owner, cols.Text, cols.Question}}
	}

	index := make(map[string]int)
	for i, h := range records[0] {
		h = strings.TrimSpace(strings.TrimPrefix(h, "\ufeff"))
		if _, dup := index[h]; !dup {
			index[h] = i
		}
	}
	var missing []string
	for _, name := range []string{cols.Owner, cols.Text, cols.Question} {
		if _, ok := index[name]; !ok {
			missing = append(missing, name)
		}
	}
	if len(missing) > 0 {
		return nil, &catalog.SchemaError{Missing: missing}
	}

	cell := func(rec []string, name string) string {
		if i := index[name]; i < len(rec) {
			return rec[i]
		}
		return ""
	}

	rows := make([]catalog.Row, 0, len(records)-1)
	for n, rec := range records[1:] {
		if blank(rec) {
			continue
		}
		rows = append(rows, catalog.Row{
			Owner:    cell(rec, cols.Owner),
			Text:     cell(rec, cols.Text),
			Question: cell(rec, cols.Question),
			Line:     n + 2,
		})
	}
	return rows, nil
}

func blank(rec []string) bool {
	for _, v := range rec {
		if strings.TrimSpace(v) != "" {
			return false
		}
	}
	return true
}
