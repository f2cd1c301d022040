package analysis

import (
	"fmt"
	rand "math/rand/v2"
	"slices"
	"strings"

	"github.com/lox/maverick/poker"
)

// RangePredicate reports whether an opponent holding hole is plausible given
// the known board. Range-weighted sampling redraws until it returns true.
// Predicates that mix hands in at a frequency draw from rng.
//
// Redrawing with a bounded number of retries and then falling back to a
// uniform deal only approximates the conditional distribution of hands in a
// range; it is not an exact sampler.
type RangePredicate func(hole [2]poker.Card, board poker.Hand, rng *rand.Rand) bool

// MinCategory accepts hole cards whose preflop category is at least min.
func MinCategory(min poker.HoleCardCategory) RangePredicate {
	return func(hole [2]poker.Card, _ poker.Hand, _ *rand.Rand) bool {
		return poker.CategorizeHoleCards(hole[0], hole[1]).AtLeast(min)
	}
}

// CategoryRangeName names a MinCategory range for WithRange.
func CategoryRangeName(min poker.HoleCardCategory) string {
	return "category:" + string(min)
}

// MadeHandShare is how often a post-flop Continuing range insists on a
// made hand rather than a drawing holding.
const MadeHandShare = 0.8

// Continuing models the hands an opponent keeps playing. Before the flop it
// defers to preflop. Once a board is out, MadeHandShare of the time it
// requires a made hand (pair or better with the board); otherwise it accepts
// suited hole cards or ones within four ranks of each other.
func Continuing(preflop RangePredicate) RangePredicate {
	return func(hole [2]poker.Card, board poker.Hand, rng *rand.Rand) bool {
		if board == 0 {
			return preflop(hole, board, rng)
		}
		if rng.Float64() < MadeHandShare {
			return poker.EvaluateHand(board|poker.NewHand(hole[0], hole[1])).Category() >= poker.Pair
		}
		if hole[0].Suit() == hole[1].Suit() {
			return true
		}
		gap := int(hole[0].Rank()) - int(hole[1].Rank())
		return gap >= -4 && gap <= 4
	}
}

// Range is a set of two-card starting hands, each stored as a Hand holding
// exactly the two hole cards.
type Range struct {
	hands map[poker.Hand]struct{}
}

// NewRange creates a new empty range.
func NewRange() *Range {
	return &Range{hands: make(map[poker.Hand]struct{})}
}

// ParseRange creates a range from standard notation.
// Examples: "AA,KK", "AKs,AKo", "TT+", "A5s-A2s", "KTs+", "22-66"
func ParseRange(notation string) (*Range, error) {
	r := NewRange()
	for _, part := range strings.Split(notation, ",") {
		part = strings.TrimSpace(part)
		if part == "" {
			continue
		}
		if err := r.addPart(part); err != nil {
			return nil, fmt.Errorf("%w: part %q: %v", ErrInvalidRange, part, err)
		}
	}
	if r.Size() == 0 {
		return nil, fmt.Errorf("%w: %q holds no hands", ErrInvalidRange, notation)
	}
	return r, nil
}

// MustParseRange parses notation and panics on error.
func MustParseRange(notation string) *Range {
	r, err := ParseRange(notation)
	if err != nil {
		panic(err)
	}
	return r
}

// shape is one parsed notation token such as "AKs" or "QQ".
type shape struct {
	high, low       poker.Rank
	suited, offsuit bool
}

func parseShape(s string) (shape, error) {
	if len(s) < 2 || len(s) > 3 {
		return shape{}, fmt.Errorf("invalid notation length: %s", s)
	}
	high, err := poker.ParseRank(s[0])
	if err != nil {
		return shape{}, err
	}
	low, err := poker.ParseRank(s[1])
	if err != nil {
		return shape{}, err
	}
	if low > high {
		high, low = low, high
	}
	sh := shape{high: high, low: low, suited: true, offsuit: true}
	if len(s) == 3 {
		if high == low {
			return shape{}, fmt.Errorf("pocket pairs cannot have suited/offsuit modifier: %s", s)
		}
		switch s[2] {
		case 's':
			sh.offsuit = false
		case 'o':
			sh.suited = false
		default:
			return shape{}, fmt.Errorf("invalid modifier: %c", s[2])
		}
	}
	return sh, nil
}

func (r *Range) addPart(part string) error {
	switch {
	case strings.HasSuffix(part, "+"):
		return r.addPlus(strings.TrimSuffix(part, "+"))
	case strings.Contains(part, "-"):
		return r.addDash(part)
	}
	sh, err := parseShape(part)
	if err != nil {
		return err
	}
	r.addShape(sh)
	return nil
}

// addPlus handles "TT+" (TT up to AA) and "KTs+" (KT up to KQ).
func (r *Range) addPlus(base string) error {
	sh, err := parseShape(base)
	if err != nil {
		return err
	}
	if sh.high == sh.low {
		for rank := sh.high; rank <= poker.Ace; rank++ {
			r.addPair(rank)
		}
		return nil
	}
	for low := sh.low; low < sh.high; low++ {
		r.addShape(shape{high: sh.high, low: low, suited: sh.suited, offsuit: sh.offsuit})
	}
	return nil
}

// addDash handles "22-66" and "A5s-A2s".
func (r *Range) addDash(part string) error {
	ends := strings.Split(part, "-")
	if len(ends) != 2 {
		return fmt.Errorf("invalid dash range format")
	}
	from, err := parseShape(strings.TrimSpace(ends[0]))
	if err != nil {
		return err
	}
	to, err := parseShape(strings.TrimSpace(ends[1]))
	if err != nil {
		return err
	}

	if from.high == from.low && to.high == to.low {
		for rank := min(from.high, to.high); rank <= max(from.high, to.high); rank++ {
			r.addPair(rank)
		}
		return nil
	}
	if from.high != to.high || from.suited != to.suited || from.offsuit != to.offsuit {
		return fmt.Errorf("unsupported range format: %s", part)
	}
	for low := min(from.low, to.low); low <= max(from.low, to.low); low++ {
		r.addShape(shape{high: from.high, low: low, suited: from.suited, offsuit: from.offsuit})
	}
	return nil
}

func (r *Range) addShape(sh shape) {
	if sh.high == sh.low {
		r.addPair(sh.high)
		return
	}
	for s1 := poker.Clubs; s1 <= poker.Spades; s1++ {
		for s2 := poker.Clubs; s2 <= poker.Spades; s2++ {
			if (s1 == s2 && sh.suited) || (s1 != s2 && sh.offsuit) {
				r.hands[poker.NewHand(poker.NewCard(sh.high, s1), poker.NewCard(sh.low, s2))] = struct{}{}
			}
		}
	}
}

// addPair adds all 6 combinations of a pocket pair.
func (r *Range) addPair(rank poker.Rank) {
	for s1 := poker.Clubs; s1 <= poker.Spades; s1++ {
		for s2 := s1 + 1; s2 <= poker.Spades; s2++ {
			r.hands[poker.NewHand(poker.NewCard(rank, s1), poker.NewCard(rank, s2))] = struct{}{}
		}
	}
}

// ContainsCards checks if hole cards are in the range
func (r *Range) ContainsCards(c1, c2 poker.Card) bool {
	_, ok := r.hands[poker.NewHand(c1, c2)]
	return ok
}

// ContainsHand checks if a two-card hand is in the range
func (r *Range) ContainsHand(hand poker.Hand) bool {
	_, ok := r.hands[hand]
	return ok
}

// Size returns the number of hand combinations in the range
func (r *Range) Size() int {
	return len(r.hands)
}

// Hands returns all combinations sorted by their bit value.
func (r *Range) Hands() []poker.Hand {
	hands := make([]poker.Hand, 0, len(r.hands))
	for hand := range r.hands {
		hands = append(hands, hand)
	}
	slices.Sort(hands)
	return hands
}

// Predicate accepts hole cards that belong to the range.
func (r *Range) Predicate() RangePredicate {
	return func(hole [2]poker.Card, _ poker.Hand, _ *rand.Rand) bool {
		return r.ContainsCards(hole[0], hole[1])
	}
}
