package classification

import (
	"math/bits"

	"github.com/lox/maverick/poker"
)

// BoardTexture represents the "wetness" of a poker board from dry to very wet
type BoardTexture int

const (
	Dry BoardTexture = iota
	SemiWet
	Wet
	VeryWet
)

func (bt BoardTexture) String() string {
	switch bt {
	case Dry:
		return "dry"
	case SemiWet:
		return "semi-wet"
	case Wet:
		return "wet"
	case VeryWet:
		return "very wet"
	default:
		return "unknown"
	}
}

// FlushInfo contains information about flush potential on a board
type FlushInfo struct {
	MaxSuitCount int
	DominantSuit *poker.Suit
	IsMonotone   bool // Single suit (3+ cards)
	IsRainbow    bool // All different suits
}

// StraightInfo contains information about straight potential on a board
type StraightInfo struct {
	ConnectedCards int // Longest run of consecutive ranks
	Gaps           int // Missing ranks between the lowest and highest
	HasAce         bool
	BroadwayCards  int // Number of T, J, Q, K, A ranks
}

const (
	broadwayMask = 0x1F00 // T-A
	lowMask      = 0x000F // 2-5
)

// AnalyzeBoardTexture scores how coordinated a board is. Boards with fewer
// than three cards are always Dry.
func AnalyzeBoardTexture(board poker.Hand) BoardTexture {
	if board.CountCards() < 3 {
		return Dry
	}

	var wetness int

	flushInfo := AnalyzeFlushPotential(board)
	switch {
	case flushInfo.IsMonotone, flushInfo.MaxSuitCount >= 4:
		wetness += 4
	case flushInfo.MaxSuitCount == 3:
		wetness += 3
	case flushInfo.MaxSuitCount == 2:
		wetness++
	}

	straightInfo := AnalyzeStraightPotential(board)
	switch {
	case straightInfo.ConnectedCards >= 4:
		wetness += 4
	case straightInfo.ConnectedCards == 3:
		wetness += 3
	case straightInfo.ConnectedCards == 2:
		wetness++
	}

	if countBoardPairs(board) >= 1 {
		wetness++
	}

	// Several broadway cards connect with most calling ranges
	if bits.OnesCount16(board.GetRankMask()&broadwayMask) >= 3 {
		wetness++
	}

	switch {
	case wetness <= 0:
		return Dry
	case wetness <= 3:
		return SemiWet
	case wetness <= 5:
		return Wet
	default:
		return VeryWet
	}
}

// AnalyzeFlushPotential reports suit concentration on the board. On equal
// counts the suit holding the higher card dominates.
func AnalyzeFlushPotential(board poker.Hand) FlushInfo {
	var maxCount, nonZeroSuits int
	var dominant *poker.Suit
	bestHigh := -1

	for suit := poker.Spades; ; suit-- {
		mask := board.GetSuitMask(suit)
		if count := bits.OnesCount16(mask); count > 0 {
			nonZeroSuits++
			high := bits.Len16(mask) - 1
			if count > maxCount || (count == maxCount && high > bestHigh) {
				maxCount = count
				bestHigh = high
				s := suit
				dominant = &s
			}
		}
		if suit == poker.Clubs {
			break
		}
	}

	cardCount := board.CountCards()
	return FlushInfo{
		MaxSuitCount: maxCount,
		DominantSuit: dominant,
		IsMonotone:   nonZeroSuits == 1 && cardCount >= 3,
		IsRainbow:    nonZeroSuits == cardCount && cardCount >= 3,
	}
}

// AnalyzeStraightPotential measures rank connectivity on the board.
func AnalyzeStraightPotential(board poker.Hand) StraightInfo {
	rankMask := board.GetRankMask()
	if rankMask == 0 {
		return StraightInfo{}
	}

	info := StraightInfo{
		HasAce:        rankMask&poker.RankBit(poker.Ace) != 0,
		BroadwayCards: bits.OnesCount16(rankMask & broadwayMask),
	}

	info.ConnectedCards = longestRun(rankMask)
	low := bits.TrailingZeros16(rankMask)
	high := bits.Len16(rankMask) - 1
	info.Gaps = (high - low + 1) - bits.OnesCount16(rankMask)

	// The ace also plays low, but only counts towards a wheel when at least
	// two wheel ranks are present.
	if info.HasAce && bits.OnesCount16(rankMask&lowMask) >= 2 {
		wheel := (rankMask&lowMask)<<1 | 1
		info.ConnectedCards = max(info.ConnectedCards, longestRun(wheel))
	}
	return info
}

// longestRun returns the length of the longest run of set bits.
func longestRun(mask uint16) int {
	n := 0
	for mask != 0 {
		mask &= mask << 1
		n++
	}
	return n
}

// countBoardPairs counts ranks appearing at least twice.
func countBoardPairs(board poker.Hand) int {
	pairs := 0
	for _, count := range board.RankCounts() {
		if count >= 2 {
			pairs++
		}
	}
	return pairs
}
