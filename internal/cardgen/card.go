package cardgen

import (
	"fmt"

	"github.com/lox/bingocards/internal/catalog"
)

const (
	// CardSize is the number of items on a card (a 3×3 grid).
	CardSize = 9
	// OwnersPerCard is the number of distinct contributors a card draws from.
	OwnersPerCard = 3
	// ItemsPerOwner caps how many items a single contributor supplies to one card.
	ItemsPerOwner = 3
)

// Card is the ordered list of items shown on one participant's grid.
type Card []catalog.Item

// Owners returns the distinct owners on the card in the order they first appear.
func (c Card) Owners() []string {
	var owners []string
	seen := make(map[string]struct{}, OwnersPerCard)
	for _, it := range c {
		if _, ok := seen[it.Owner]; ok {
			continue
		}
		seen[it.Owner] = struct{}{}
		owners = append(owners, it.Owner)
	}
	return owners
}

// Validate checks the card against the rules every generated card must satisfy
// for participant.
func (c Card) Validate(participant string) error {
	if len(c) != CardSize {
		return fmt.Errorf("card for %s has %d items, want %d", participant, len(c), CardSize)
	}
	owners := c.Owners()
	if len(owners) != OwnersPerCard {
		return fmt.Errorf("card for %s draws from %d owners, want %d", participant, len(owners), OwnersPerCard)
	}
	questions := make(map[string]struct{}, CardSize)
	for _, it := range c {
		if it.Owner == participant {
			return fmt.Errorf("card for %s contains their own item %q", participant, it.Question)
		}
		if _, dup := questions[it.Question]; dup {
			return fmt.Errorf("card for %s repeats question %q", participant, it.Question)
		}
		questions[it.Question] = struct{}{}
	}
	return nil
}

// CardSet holds the card generated for every participant of a run.
type CardSet struct {
	participants []string
	cards        map[string]Card
	attempts     map[string]int
}

func newCardSet(n int) *CardSet {
	return &CardSet{
		participants: make([]string, 0, n),
		cards:        make(map[string]Card, n),
		attempts:     make(map[string]int, n),
	}
}

func (s *CardSet) put(participant string, card Card, attempts int) {
	if _, ok := s.cards[participant]; ok {
		panic("cardgen: card for " + participant + " written twice")
	}
	s.participants = append(s.participants, participant)
	s.cards[participant] = card
	s.attempts[participant] = attempts
}

// Len returns the number of participants with a card.
func (s *CardSet) Len() int {
	return len(s.participants)
}

// Participants returns participants in generation order.
func (s *CardSet) Participants() []string {
	return append([]string(nil), s.participants...)
}

// Get returns a copy of participant's card.
func (s *CardSet) Get(participant string) (Card, bool) {
	card, ok := s.cards[participant]
	if !ok {
		return nil, false
	}
	return append(Card(nil), card...), true
}

// Attempts returns how many attempts it took to generate participant's card.
func (s *CardSet) Attempts(participant string) int {
	return s.attempts[participant]
}

// TotalAttempts sums attempts across all participants.
func (s *CardSet) TotalAttempts() int {
	total := 0
	for _, n := range s.attempts {
		total += n
	}
	return total
}

// Each calls fn for every participant in order, stopping at the first error.
func (s *CardSet) Each(fn func(participant string, card Card) error) error {
	for _, p := range s.participants {
		if err := fn(p, append(Card(nil), s.cards[p]...)); err != nil {
			return err
		}
	}
	return nil
}

// Validate checks every card in the set.
func (s *CardSet) Validate() error {
	for _, p := range s.participants {
		if err := s.cards[p].Validate(p); err != nil {
			return err
		}
	}
	return nil
}
