package classification

import (
	"fmt"
	"math/bits"

	"github.com/lox/maverick/poker"
)

// DrawType labels how an out improves the hero's hand. The set is closed
// and ordered from the strongest resulting hand to the weakest.
type DrawType uint8

const (
	StraightFlushDraw DrawType = iota
	SetToQuads
	TripsToFullHouse
	TwoPairToFullHouse
	FlushDraw
	OpenEndedStraight
	DoubleGutshot
	Gutshot
	PairToTrips
	PairToTwoPair
	Overcard
	PairHoleCard
	PairBoard
)

var drawTypeTags = [...]string{
	StraightFlushDraw:  "straight_flush_draw",
	SetToQuads:         "set_to_quads",
	TripsToFullHouse:   "trips_to_full_house",
	TwoPairToFullHouse: "two_pair_to_full_house",
	FlushDraw:          "flush_draw",
	OpenEndedStraight:  "open_ended_straight",
	DoubleGutshot:      "double_gutshot",
	Gutshot:            "gutshot",
	PairToTrips:        "pair_to_trips",
	PairToTwoPair:      "pair_to_two_pair",
	Overcard:           "overcard",
	PairHoleCard:       "pair_hole_card",
	PairBoard:          "pair_board",
}

// String returns the snake_case tag, e.g. "flush_draw".
func (d DrawType) String() string {
	if int(d) < len(drawTypeTags) {
		return drawTypeTags[d]
	}
	return "unknown"
}

// MarshalText encodes the tag.
func (d DrawType) MarshalText() ([]byte, error) {
	if int(d) >= len(drawTypeTags) {
		return nil, fmt.Errorf("unknown draw type %d", d)
	}
	return []byte(d.String()), nil
}

// UnmarshalText decodes a tag produced by MarshalText.
func (d *DrawType) UnmarshalText(b []byte) error {
	for i, tag := range drawTypeTags {
		if tag == string(b) {
			*d = DrawType(i)
			return nil
		}
	}
	return fmt.Errorf("unknown draw type %q", b)
}

// ClassifyOut labels an out: a card that takes the hero from category
// before to category after when added to hero+board.
//
// Flush and straight flush outs are labelled by the category they make.
// Straight outs are labelled by the shape of the rank run before the card
// arrives: two or more completing ranks around a four-rank run is open
// ended, two or more otherwise is a double gutshot, a single one a gutshot.
// Pair outs distinguish pairing a hole card that is higher than every board
// card, pairing a lower hole card and pairing the board.
func ClassifyOut(hero, board poker.Hand, out poker.Card, before, after poker.Category) DrawType {
	switch after {
	case poker.StraightFlush:
		return StraightFlushDraw
	case poker.FourOfAKind:
		return SetToQuads
	case poker.FullHouse:
		if before == poker.ThreeOfAKind {
			return TripsToFullHouse
		}
		return TwoPairToFullHouse
	case poker.Flush:
		return FlushDraw
	case poker.Straight:
		return classifyStraight((hero | board).GetRankMask())
	case poker.ThreeOfAKind:
		return PairToTrips
	case poker.TwoPair:
		return PairToTwoPair
	}

	bit := poker.RankBit(out.Rank())
	holeRanks := hero.GetRankMask()
	boardRanks := board.GetRankMask()
	if holeRanks&bit == 0 {
		return PairBoard
	}
	if bits.Len16(boardRanks) < bits.Len16(bit) {
		return Overcard
	}
	return PairHoleCard
}

// classifyStraight inspects the ranks held before the out arrives.
func classifyStraight(ranks uint16) DrawType {
	completing := 0
	for r := poker.Two; r <= poker.Ace; r++ {
		bit := poker.RankBit(r)
		if ranks&bit == 0 && poker.StraightHigh(ranks|bit) != 0 {
			completing++
		}
	}
	switch {
	case completing >= 2 && hasFourRun(ranks):
		return OpenEndedStraight
	case completing >= 2:
		return DoubleGutshot
	default:
		return Gutshot
	}
}

// hasFourRun reports four consecutive ranks, counting the ace as low too.
func hasFourRun(ranks uint16) bool {
	ext := uint32(ranks)<<1 | uint32(ranks>>12&1)
	return ext&(ext>>1)&(ext>>2)&(ext>>3) != 0
}
