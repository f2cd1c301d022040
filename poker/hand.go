package poker

import (
	"math/bits"
	"strings"
)

// Hand is a set of cards stored as a 52-bit mask. Order is irrelevant, so two
// hands holding the same cards are equal no matter how they were built.
type Hand uint64

const fullDeckMask Hand = 1<<52 - 1

// NewHand builds a hand from the given cards.
func NewHand(cards ...Card) Hand {
	var h Hand
	for _, c := range cards {
		h |= Hand(c)
	}
	return h
}

// AddCard adds a card to the hand.
func (h *Hand) AddCard(c Card) {
	*h |= Hand(c)
}

// RemoveCard removes a card from the hand.
func (h *Hand) RemoveCard(c Card) {
	*h &^= Hand(c)
}

// HasCard reports whether the hand holds c.
func (h Hand) HasCard(c Card) bool {
	return h&Hand(c) != 0
}

// CountCards returns the number of cards in the hand.
func (h Hand) CountCards() int {
	return bits.OnesCount64(uint64(h))
}

// GetSuitMask returns the 13-bit rank mask for one suit (bit 0 = deuce).
func (h Hand) GetSuitMask(suit Suit) uint16 {
	return uint16(uint64(h)>>(uint(suit)*13)) & 0x1FFF
}

// GetRankMask returns the union of all suit masks.
func (h Hand) GetRankMask() uint16 {
	return h.GetSuitMask(Clubs) | h.GetSuitMask(Diamonds) | h.GetSuitMask(Hearts) | h.GetSuitMask(Spades)
}

// Cards returns the cards in ascending bit order (clubs first, deuce first).
func (h Hand) Cards() []Card {
	cards := make([]Card, 0, h.CountCards())
	for m := uint64(h); m != 0; m &= m - 1 {
		cards = append(cards, Card(m&-m))
	}
	return cards
}

// String returns the cards as space separated tokens.
func (h Hand) String() string {
	cards := h.Cards()
	parts := make([]string, len(cards))
	for i, c := range cards {
		parts[i] = c.String()
	}
	return strings.Join(parts, " ")
}

// RankCounts returns the per-rank histogram (index 0 = deuce).
func (h Hand) RankCounts() [13]uint8 {
	var counts [13]uint8
	for suit := Clubs; suit <= Spades; suit++ {
		mask := h.GetSuitMask(suit)
		for mask != 0 {
			counts[bits.TrailingZeros16(mask)]++
			mask &= mask - 1
		}
	}
	return counts
}
