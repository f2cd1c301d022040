package classification

import (
	"fmt"
	"math/bits"
	"slices"

	"github.com/lox/maverick/poker"
)

// ComboDraw labels a draw that no single out describes: two draws held at
// once, or a runner-runner draw that needs both the turn and the river.
type ComboDraw uint8

const (
	PairPlusGutshot ComboDraw = iota
	DoublePairDraw
	BackdoorFlush
	BackdoorStraight
)

var comboDrawTags = [...]string{
	PairPlusGutshot:  "pair_plus_gutshot",
	DoublePairDraw:   "double_pair_draw",
	BackdoorFlush:    "backdoor_flush_draw",
	BackdoorStraight: "backdoor_straight_draw",
}

func (d ComboDraw) String() string {
	if int(d) < len(comboDrawTags) {
		return comboDrawTags[d]
	}
	return "unknown"
}

// MarshalText encodes the tag.
func (d ComboDraw) MarshalText() ([]byte, error) {
	if int(d) >= len(comboDrawTags) {
		return nil, fmt.Errorf("unknown combo draw %d", d)
	}
	return []byte(d.String()), nil
}

// straightWindows are the ten five-rank straights, wheel first.
var straightWindows = func() [10]uint16 {
	var w [10]uint16
	w[0] = poker.RankBit(poker.Ace) | 0xF
	for i := 1; i < 10; i++ {
		w[i] = 0x1F << (i - 1)
	}
	return w
}()

// detectCombos finds the combo and backdoor draws for hero on board, given
// the outs already computed. Backdoor draws only exist on the flop.
func detectCombos(hero, board poker.Hand, res OutsResult) []ComboDraw {
	var combos []ComboDraw
	if (res.Current == poker.Pair || res.Current == poker.TwoPair) && slices.Contains(res.Draws(), Gutshot) {
		combos = append(combos, PairPlusGutshot)
	}
	if doublePairDraw(hero, board, res.Current) {
		combos = append(combos, DoublePairDraw)
	}

	if board.CountCards() != 3 {
		return combos
	}
	if backdoorFlush(hero, board) {
		combos = append(combos, BackdoorFlush)
	}
	if res.Current < poker.Straight && !hasStraightOut(res) && backdoorStraight(hero, board) {
		combos = append(combos, BackdoorStraight)
	}
	return combos
}

// doublePairDraw is a paired board with two distinct, unpaired hole cards:
// either hole rank arriving makes two pair.
func doublePairDraw(hero, board poker.Hand, current poker.Category) bool {
	if current != poker.Pair {
		return false
	}
	holeRanks := hero.GetRankMask()
	if bits.OnesCount16(holeRanks) != 2 || holeRanks&board.GetRankMask() != 0 {
		return false
	}
	for _, n := range board.RankCounts() {
		if n == 2 {
			return true
		}
	}
	return false
}

// backdoorFlush is exactly three cards of one suit with at least one of
// them in hero's hand.
func backdoorFlush(hero, board poker.Hand) bool {
	for suit := poker.Clubs; suit <= poker.Spades; suit++ {
		h := bits.OnesCount16(hero.GetSuitMask(suit))
		b := bits.OnesCount16(board.GetSuitMask(suit))
		if h > 0 && h+b == 3 {
			return true
		}
	}
	return false
}

// backdoorStraight is three ranks of some straight held, one from hero.
func backdoorStraight(hero, board poker.Hand) bool {
	ranks := (hero | board).GetRankMask()
	holeRanks := hero.GetRankMask()
	for _, w := range straightWindows {
		if bits.OnesCount16(ranks&w) >= 3 && holeRanks&w != 0 {
			return true
		}
	}
	return false
}

func hasStraightOut(res OutsResult) bool {
	for _, o := range res.Outs {
		if o.Category == poker.Straight || o.Category == poker.StraightFlush {
			return true
		}
	}
	return false
}
