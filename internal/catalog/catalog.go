// Package catalog groups contributed bingo items by the participant who wrote them.
package catalog

import (
	"fmt"
	"strings"
)

// Required field names, as reported in a SchemaError.
const (
	FieldOwner    = "owner"
	FieldText     = "text"
	FieldQuestion = "question"
)

// Row is one input record after loading. Line is the 1-based source line and is
// only used for error reporting.
type Row struct {
	Owner    string
	Text     string
	Question string
	Line     int
}

// Item is a single contributed entry. Question is the dedup key, Text is what
// appears on the card.
type Item struct {
	Owner    string `yaml:"owner"`
	Text     string `yaml:"text"`
	Question string `yaml:"question"`
}

// SchemaError reports input that lacks a required field. Line is zero when the
// field is missing from the dataset as a whole (e.g. a missing column).
type SchemaError struct {
	Line    int
	Missing []string
}

func (e *SchemaError) Error() string {
	if e.Line == 0 {
		return fmt.Sprintf("input is missing required fields: %s", strings.Join(e.Missing, ", "))
	}
	return fmt.Sprintf("row %d is missing required fields: %s", e.Line, strings.Join(e.Missing, ", "))
}

// Catalog maps each contributor to the items they wrote. It is immutable once built
// and safe for concurrent readers.
type Catalog struct {
	owners []string
	items  map[string][]Item
	total  int
}

// Build validates rows and groups them by owner, keeping input order both for
// owners (first appearance) and for the items within each owner.
func Build(rows []Row) (*Catalog, error) {
	c := &Catalog{items: make(map[string][]Item)}
	for i, row := range rows {
		item, err := row.item()
		if err != nil {
			if se, ok := err.(*SchemaError); ok && se.Line == 0 {
				se.Line = i + 1
			}
			return nil, err
		}
		if _, ok := c.items[item.Owner]; !ok {
			c.owners = append(c.owners, item.Owner)
		}
		c.items[item.Owner] = append(c.items[item.Owner], item)
		c.total++
	}
	return c, nil
}

func (r Row) item() (Item, error) {
	item := Item{
		Owner:    strings.TrimSpace(r.Owner),
		Text:     strings.TrimSpace(r.Text),
		Question: strings.TrimSpace(r.Question),
	}
	var missing []string
	if item.Owner == "" {
		missing = append(missing, FieldOwner)
	}
	if item.Text == "" {
		missing = append(missing, FieldText)
	}
	if item.Question == "" {
		missing = append(missing, FieldQuestion)
	}
	if len(missing) > 0 {
		return Item{}, &SchemaError{Line: r.Line, Missing: missing}
	}
	return item, nil
}

// Owners returns every contributor in first-seen order.
func (c *Catalog) Owners() []string {
	return append([]string(nil), c.owners...)
}

// Participants returns the people who need a card. Everyone who contributed is a
// participant, in first-seen order.
func (c *Catalog) Participants() []string {
	return c.Owners()
}

// Items returns a copy of owner's items in input order.
func (c *Catalog) Items(owner string) []Item {
	return append([]Item(nil), c.items[owner]...)
}

// Has reports whether owner contributed anything.
func (c *Catalog) Has(owner string) bool {
	_, ok := c.items[owner]
	return ok
}

// NumOwners returns the number of distinct contributors.
func (c *Catalog) NumOwners() int {
	return len(c.owners)
}

// Len returns the total number of items.
func (c *Catalog) Len() int {
	return c.total
}

// DistinctQuestions returns how many distinct questions are available to
// participant, counting only items written by others.
func (c *Catalog) DistinctQuestions(participant string) int {
	seen := make(map[string]struct{})
	for _, owner := range c.owners {
		if owner == participant {
			continue
		}
		for _, it := range c.items[owner] {
			seen[it.Question] = struct{}{}
		}
	}
	return len(seen)
}
