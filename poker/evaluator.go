package poker

import (
	"fmt"
	"math/bits"
)

// Category enumerates poker hand categories ordered from weakest to strongest.
type Category uint8

const (
	HighCard Category = iota
	Pair
	TwoPair
	ThreeOfAKind
	Straight
	Flush
	FullHouse
	FourOfAKind
	StraightFlush
)

// String returns a human-readable category name.
func (c Category) String() string {
	switch c {
	case HighCard:
		return "High Card"
	case Pair:
		return "Pair"
	case TwoPair:
		return "Two Pair"
	case ThreeOfAKind:
		return "Three of a Kind"
	case Straight:
		return "Straight"
	case Flush:
		return "Flush"
	case FullHouse:
		return "Full House"
	case FourOfAKind:
		return "Four of a Kind"
	case StraightFlush:
		return "Straight Flush"
	default:
		return "Unknown"
	}
}

// HandRank is the strength of a hand. Higher values are stronger and equal
// values split the pot.
//
// Layout: bits 20-23 hold the Category, followed by five 4-bit rank slots
// (bits 16-19 down to 0-3) holding the tiebreak ranks in significance order:
// primary ranks first (quad, trips then pair, pairs high to low, straight
// top card) and kickers after. Unused slots are zero.
type HandRank uint32

const (
	categoryShift = 20
	slotBits      = 4
)

func makeRank(cat Category, ranks ...Rank) HandRank {
	hr := HandRank(cat) << categoryShift
	shift := categoryShift
	for _, r := range ranks {
		shift -= slotBits
		hr |= HandRank(r) << shift
	}
	return hr
}

// Category returns the hand category.
func (hr HandRank) Category() Category {
	return Category(hr >> categoryShift)
}

// Ranks returns the tiebreak key, primary ranks first then kickers. Unused
// trailing slots are omitted.
func (hr HandRank) Ranks() []Rank {
	out := make([]Rank, 0, 5)
	for shift := categoryShift - slotBits; shift >= 0; shift -= slotBits {
		r := Rank(hr>>shift) & 0xF
		if r == 0 {
			break
		}
		out = append(out, r)
	}
	return out
}

// Compare returns 1 if hr beats other, -1 if it loses and 0 on a split.
func (hr HandRank) Compare(other HandRank) int {
	switch {
	case hr > other:
		return 1
	case hr < other:
		return -1
	default:
		return 0
	}
}

// String describes the hand, e.g. "Full House, Kings over Sevens".
func (hr HandRank) String() string {
	ranks := hr.Ranks()
	at := func(i int) Rank {
		if i < len(ranks) {
			return ranks[i]
		}
		return 0
	}
	switch hr.Category() {
	case StraightFlush:
		if at(0) == Ace {
			return "Royal Flush"
		}
		return fmt.Sprintf("Straight Flush, %s high", at(0).Name())
	case FourOfAKind:
		return fmt.Sprintf("Four of a Kind, %s", at(0).Plural())
	case FullHouse:
		return fmt.Sprintf("Full House, %s over %s", at(0).Plural(), at(1).Plural())
	case Flush:
		return fmt.Sprintf("Flush, %s high", at(0).Name())
	case Straight:
		return fmt.Sprintf("Straight, %s high", at(0).Name())
	case ThreeOfAKind:
		return fmt.Sprintf("Three of a Kind, %s", at(0).Plural())
	case TwoPair:
		return fmt.Sprintf("Two Pair, %s and %s", at(0).Plural(), at(1).Plural())
	case Pair:
		return fmt.Sprintf("Pair of %s", at(0).Plural())
	default:
		return fmt.Sprintf("High Card, %s", at(0).Name())
	}
}

// CompareHands compares two hands and returns 1 if a wins, -1 if b wins, 0 for a split.
func CompareHands(a, b HandRank) int {
	return a.Compare(b)
}

// Evaluate ranks the best five-card hand that can be made from 5 to 7 cards.
// A card count outside that range or a repeated card fails with ErrEvaluation.
func Evaluate(cards []Card) (HandRank, error) {
	if len(cards) < 5 || len(cards) > 7 {
		return 0, fmt.Errorf("%w: need 5 to 7 cards, got %d", ErrEvaluation, len(cards))
	}
	var h Hand
	for _, c := range cards {
		if !c.Valid() {
			return 0, fmt.Errorf("%w: invalid card value %#x", ErrEvaluation, uint64(c))
		}
		if h.HasCard(c) {
			return 0, fmt.Errorf("%w: duplicate card %s", ErrEvaluation, c)
		}
		h.AddCard(c)
	}
	return EvaluateHand(h), nil
}

// Evaluate5 ranks exactly five cards.
func Evaluate5(cards [5]Card) (HandRank, error) {
	return Evaluate(cards[:])
}

// EvaluateHand ranks a hand without validation. It is the hot path used by
// the simulator. For seven cards the result equals the best of all 21
// five-card subsets; for fewer than five cards it ranks what is present
// (flushes and straights need five cards), which the outs calculator uses to
// read the current category of a partial hand.
//
// The rank/suit histogram is read once from the four suit masks: a rank bit
// present in k suit masks is a k-of-a-kind.
func EvaluateHand(h Hand) HandRank {
	s0, s1, s2, s3 := h.GetSuitMask(Clubs), h.GetSuitMask(Diamonds), h.GetSuitMask(Hearts), h.GetSuitMask(Spades)
	rankMask := s0 | s1 | s2 | s3

	for _, suitMask := range [4]uint16{s0, s1, s2, s3} {
		if bits.OnesCount16(suitMask) < 5 {
			continue
		}
		if high := StraightHigh(suitMask); high != 0 {
			return makeRank(StraightFlush, high)
		}
		// Quads or a full house cannot coexist with a flush in seven cards,
		// so the flush is final.
		top := topRanks(suitMask, 5)
		return makeRank(Flush, top[0], top[1], top[2], top[3], top[4])
	}

	quadsMask := s0 & s1 & s2 & s3
	tripsOrBetter := (s0 & s1 & s2) | (s0 & s1 & s3) | (s0 & s2 & s3) | (s1 & s2 & s3)
	tripsMask := tripsOrBetter &^ quadsMask
	pairsMask := ((s0 & s1) | (s0 & s2) | (s0 & s3) | (s1 & s2) | (s1 & s3) | (s2 & s3)) &^ tripsOrBetter

	if quadsMask != 0 {
		quad := highestRank(quadsMask)
		kick := highestRank(rankMask &^ RankBit(quad))
		return makeRank(FourOfAKind, quad, kick)
	}

	if tripsMask != 0 {
		trip := highestRank(tripsMask)
		// With two sets of trips the lower one plays as the pair.
		if rest := pairsMask | (tripsMask &^ RankBit(trip)); rest != 0 {
			return makeRank(FullHouse, trip, highestRank(rest))
		}
	}

	if high := StraightHigh(rankMask); high != 0 {
		return makeRank(Straight, high)
	}

	if tripsMask != 0 {
		trip := highestRank(tripsMask)
		k := topRanks(rankMask&^RankBit(trip), 2)
		return makeRank(ThreeOfAKind, trip, k[0], k[1])
	}

	if pairsMask != 0 {
		high := highestRank(pairsMask)
		if rest := pairsMask &^ RankBit(high); rest != 0 {
			low := highestRank(rest)
			k := topRanks(rankMask&^RankBit(high)&^RankBit(low), 1)
			return makeRank(TwoPair, high, low, k[0])
		}
		k := topRanks(rankMask&^RankBit(high), 3)
		return makeRank(Pair, high, k[0], k[1], k[2])
	}

	k := topRanks(rankMask, 5)
	return makeRank(HighCard, k[0], k[1], k[2], k[3], k[4])
}

// RankBit returns the rank-mask bit for r (bit 0 = deuce).
func RankBit(r Rank) uint16 {
	return 1 << (r - Two)
}

// highestRank returns the highest rank set in the mask, or 0 when empty.
func highestRank(mask uint16) Rank {
	if mask == 0 {
		return 0
	}
	return Rank(bits.Len16(mask)-1) + Two
}

// topRanks returns the n highest ranks in the mask, padding with zero when
// fewer are present.
func topRanks(mask uint16, n int) [5]Rank {
	var out [5]Rank
	for i := 0; i < n && mask != 0; i++ {
		r := highestRank(mask)
		out[i] = r
		mask &^= RankBit(r)
	}
	return out
}

// StraightHigh returns the top card of the best straight in the 13-bit rank
// mask, or 0 if there is none. The wheel (A-2-3-4-5) is five-high and only
// reported when no higher straight exists.
func StraightHigh(mask uint16) Rank {
	const wheelMask = 0x100F // Ace + 2-3-4-5
	mask &= 0x1FFF

	seq := mask & (mask >> 1) & (mask >> 2) & (mask >> 3) & (mask >> 4)
	if seq != 0 {
		low := bits.Len16(seq) - 1
		return Rank(low+4) + Two
	}
	if mask&wheelMask == wheelMask {
		return Five
	}
	return 0
}
