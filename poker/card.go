// Package poker provides the card model, deck sampling and hand evaluation
// used by the equity pipeline.
//
// Cards are bit-packed into a uint64 so that sets of cards (Hand) are plain
// bitwise unions and rank/suit histograms can be read straight off the masks.
package poker

import (
	"fmt"
	"math/bits"
	"strings"
)

// Rank is a card rank from Two (2) to Ace (14).
type Rank uint8

const (
	Two Rank = iota + 2
	Three
	Four
	Five
	Six
	Seven
	Eight
	Nine
	Ten
	Jack
	Queen
	King
	Ace
)

const rankChars = "23456789TJQKA"

// String returns the single character form used in card tokens.
func (r Rank) String() string {
	if r < Two || r > Ace {
		return "?"
	}
	return string(rankChars[r-Two])
}

// Name returns the long form of the rank ("Ace", "Seven").
func (r Rank) Name() string {
	switch r {
	case Ace:
		return "Ace"
	case King:
		return "King"
	case Queen:
		return "Queen"
	case Jack:
		return "Jack"
	case Ten:
		return "Ten"
	case Nine:
		return "Nine"
	case Eight:
		return "Eight"
	case Seven:
		return "Seven"
	case Six:
		return "Six"
	case Five:
		return "Five"
	case Four:
		return "Four"
	case Three:
		return "Three"
	case Two:
		return "Two"
	default:
		return "Unknown"
	}
}

// Plural returns the plural long form ("Sixes", "Kings").
func (r Rank) Plural() string {
	if r == Six {
		return "Sixes"
	}
	return r.Name() + "s"
}

// Suit is one of the four card suits.
type Suit uint8

const (
	Clubs Suit = iota
	Diamonds
	Hearts
	Spades
)

const suitChars = "cdhs"

func (s Suit) String() string {
	if s > Spades {
		return "?"
	}
	return string(suitChars[s])
}

// Symbol returns the unicode suit glyph.
func (s Suit) Symbol() string {
	switch s {
	case Clubs:
		return "♣"
	case Diamonds:
		return "♦"
	case Hearts:
		return "♥"
	case Spades:
		return "♠"
	default:
		return "?"
	}
}

// Card is a single playing card encoded as one bit at position suit*13 + (rank-2).
// The zero value is not a valid card.
type Card uint64

// NewCard creates a card from a rank and suit. It panics on out of range
// values; use ParseCard for untrusted input.
func NewCard(rank Rank, suit Suit) Card {
	if rank < Two || rank > Ace || suit > Spades {
		panic(fmt.Sprintf("poker: invalid card rank=%d suit=%d", rank, suit))
	}
	return Card(1) << (uint(suit)*13 + uint(rank-Two))
}

// cardFromIndex returns the card at bit index 0..51.
func cardFromIndex(idx int) Card {
	return Card(1) << uint(idx)
}

// Index returns the bit index (0..51) of the card.
func (c Card) Index() int {
	if !c.Valid() {
		return -1
	}
	return bits.TrailingZeros64(uint64(c))
}

// Valid reports whether c encodes exactly one card.
func (c Card) Valid() bool {
	return c != 0 && c&(c-1) == 0 && c < 1<<52
}

// Rank returns the card's rank.
func (c Card) Rank() Rank {
	return Rank(c.Index()%13) + Two
}

// Suit returns the card's suit.
func (c Card) Suit() Suit {
	return Suit(c.Index() / 13)
}

// String returns the two character token, e.g. "As" or "Td".
func (c Card) String() string {
	if !c.Valid() {
		return "??"
	}
	return c.Rank().String() + c.Suit().String()
}

// Pretty returns the card using a suit glyph, e.g. "A♠".
func (c Card) Pretty() string {
	if !c.Valid() {
		return "??"
	}
	return c.Rank().String() + c.Suit().Symbol()
}

// ParseRank parses a rank character.
func ParseRank(ch byte) (Rank, error) {
	switch ch {
	case 't':
		ch = 'T'
	case 'j':
		ch = 'J'
	case 'q':
		ch = 'Q'
	case 'k':
		ch = 'K'
	case 'a':
		ch = 'A'
	}
	if i := strings.IndexByte(rankChars, ch); i >= 0 {
		return Two + Rank(i), nil
	}
	return 0, fmt.Errorf("%w: unknown rank %q", ErrInvalidCard, ch)
}

// ParseSuit parses a suit character.
func ParseSuit(ch byte) (Suit, error) {
	switch ch {
	case 'c', 'C':
		return Clubs, nil
	case 'd', 'D':
		return Diamonds, nil
	case 'h', 'H':
		return Hearts, nil
	case 's', 'S':
		return Spades, nil
	default:
		return 0, fmt.Errorf("%w: unknown suit %q", ErrInvalidCard, ch)
	}
}

// ParseCard parses a token such as "As", "Td" or "2c".
func ParseCard(token string) (Card, error) {
	if len(token) != 2 {
		return 0, fmt.Errorf("%w: %q must be rank followed by suit", ErrInvalidCard, token)
	}
	rank, err := ParseRank(token[0])
	if err != nil {
		return 0, fmt.Errorf("card %q: %w", token, err)
	}
	suit, err := ParseSuit(token[1])
	if err != nil {
		return 0, fmt.Errorf("card %q: %w", token, err)
	}
	return NewCard(rank, suit), nil
}

// MustParseCard parses a token and panics on error (for tests and tables).
func MustParseCard(token string) Card {
	c, err := ParseCard(token)
	if err != nil {
		panic(err)
	}
	return c
}

// ParseCards parses a list of tokens. Duplicate cards are rejected.
func ParseCards(tokens ...string) ([]Card, error) {
	cards := make([]Card, 0, len(tokens))
	var seen Hand
	for _, tok := range tokens {
		c, err := ParseCard(tok)
		if err != nil {
			return nil, err
		}
		if seen.HasCard(c) {
			return nil, fmt.Errorf("%w: duplicate card %s", ErrInvalidCard, c)
		}
		seen.AddCard(c)
		cards = append(cards, c)
	}
	return cards, nil
}

// ParseCardList parses a free-form list: "As Kh", "As,Kh" and "AsKh" are all accepted.
func ParseCardList(s string) ([]Card, error) {
	s = strings.NewReplacer(",", " ", "\t", " ").Replace(strings.TrimSpace(s))
	if s == "" {
		return nil, nil
	}
	var tokens []string
	for _, field := range strings.Fields(s) {
		if len(field)%2 != 0 {
			return nil, fmt.Errorf("%w: %q has an odd number of characters", ErrInvalidCard, field)
		}
		for i := 0; i < len(field); i += 2 {
			tokens = append(tokens, field[i:i+2])
		}
	}
	return ParseCards(tokens...)
}

// MustParseCards parses a free-form list and panics on error.
func MustParseCards(s string) []Card {
	cards, err := ParseCardList(s)
	if err != nil {
		panic(fmt.Sprintf("failed to parse cards %q: %v", s, err))
	}
	return cards
}

// FormatCards joins card tokens with spaces.
func FormatCards(cards []Card) string {
	parts := make([]string, len(cards))
	for i, c := range cards {
		parts[i] = c.String()
	}
	return strings.Join(parts, " ")
}
