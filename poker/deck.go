package poker

import (
	"fmt"
	rand "math/rand/v2"
)

// Deck is a set of up to 52 distinct cards supporting uniform sampling
// without replacement. The live cards are cards[:n]; drawn cards are swapped
// behind n so that they can be put back.
//
// Deck is a value type: copying it yields an independent deck, which is how
// the simulator gives every trial its own view of the remaining cards.
type Deck struct {
	cards [52]Card
	n     int
}

// NewDeck returns the full 52-card deck in canonical order.
func NewDeck() Deck {
	var d Deck
	for i := 0; i < 52; i++ {
		d.cards[i] = cardFromIndex(i)
	}
	d.n = 52
	return d
}

// NewDeckWithout returns the full deck minus the known cards.
func NewDeckWithout(known Hand) Deck {
	full := NewDeck()
	return full.Without(known)
}

// Without returns a copy of the deck with the known cards removed.
func (d Deck) Without(known Hand) Deck {
	var out Deck
	for _, c := range d.cards[:d.n] {
		if !known.HasCard(c) {
			out.cards[out.n] = c
			out.n++
		}
	}
	return out
}

// Len returns the number of cards left to draw.
func (d Deck) Len() int {
	return d.n
}

// Cards returns a copy of the remaining cards.
func (d Deck) Cards() []Card {
	out := make([]Card, d.n)
	copy(out, d.cards[:d.n])
	return out
}

// Mask returns the remaining cards as a Hand.
func (d Deck) Mask() Hand {
	var h Hand
	for _, c := range d.cards[:d.n] {
		h |= Hand(c)
	}
	return h
}

// Contains reports whether c is still in the deck.
func (d Deck) Contains(c Card) bool {
	for _, dc := range d.cards[:d.n] {
		if dc == c {
			return true
		}
	}
	return false
}

// Shuffle shuffles the remaining cards using Fisher-Yates.
func (d *Deck) Shuffle(rng *rand.Rand) {
	for i := d.n - 1; i > 0; i-- {
		j := rng.IntN(i + 1)
		d.cards[i], d.cards[j] = d.cards[j], d.cards[i]
	}
}

// Draw removes n cards chosen uniformly at random without replacement.
func (d *Deck) Draw(rng *rand.Rand, n int) ([]Card, error) {
	if n < 0 {
		return nil, fmt.Errorf("%w: cannot draw %d cards", ErrInsufficientCards, n)
	}
	out := make([]Card, n)
	if err := d.DrawInto(rng, out); err != nil {
		return nil, err
	}
	return out, nil
}

// DrawInto fills dst with cards drawn without replacement. It is the
// allocation-free form of Draw used in hot loops.
//
// Each step is one step of a partial Fisher-Yates shuffle: pick a uniform
// index among the live cards and swap it to the end of the live region. Every
// unordered subset of len(dst) cards is therefore equally likely.
func (d *Deck) DrawInto(rng *rand.Rand, dst []Card) error {
	if len(dst) > d.n {
		return fmt.Errorf("%w: cannot draw %d cards, only %d remaining", ErrInsufficientCards, len(dst), d.n)
	}
	for i := range dst {
		j := rng.IntN(d.n)
		d.n--
		d.cards[j], d.cards[d.n] = d.cards[d.n], d.cards[j]
		dst[i] = d.cards[d.n]
	}
	return nil
}

// PutBack returns the k most recently drawn cards to the deck. The set of
// live cards is restored exactly; only their order differs, which does not
// affect later uniform draws.
func (d *Deck) PutBack(k int) {
	d.n += k
	if d.n > len(d.cards) {
		d.n = len(d.cards)
	}
}
