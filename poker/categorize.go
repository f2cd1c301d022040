package poker

import "strings"

// HoleCardCategory represents the strength category of hole cards
type HoleCardCategory string

const (
	CategoryPremium HoleCardCategory = "Premium"
	CategoryStrong  HoleCardCategory = "Strong"
	CategoryMedium  HoleCardCategory = "Medium"
	CategoryWeak    HoleCardCategory = "Weak"
	CategoryTrash   HoleCardCategory = "Trash"
	CategoryUnknown HoleCardCategory = "Unknown"
)

// Strength orders the categories: Premium is 4, Trash is 0, Unknown is -1.
func (c HoleCardCategory) Strength() int {
	switch c {
	case CategoryPremium:
		return 4
	case CategoryStrong:
		return 3
	case CategoryMedium:
		return 2
	case CategoryWeak:
		return 1
	case CategoryTrash:
		return 0
	default:
		return -1
	}
}

// AtLeast reports whether c is as strong as min.
func (c HoleCardCategory) AtLeast(min HoleCardCategory) bool {
	return c.Strength() >= min.Strength() && c != CategoryUnknown
}

// ParseHoleCardCategory parses a category name case-insensitively.
func ParseHoleCardCategory(s string) (HoleCardCategory, bool) {
	for _, c := range []HoleCardCategory{CategoryPremium, CategoryStrong, CategoryMedium, CategoryWeak, CategoryTrash} {
		if strings.EqualFold(string(c), s) {
			return c, true
		}
	}
	return CategoryUnknown, false
}

// CategorizeHoleCards provides a simple preflop hand categorization.
// Categories: Premium (JJ+, AK), Strong (TT, AQ/AJ), Medium (77+, suited broadway),
// Weak (small pairs, suited connectors), Trash (everything else).
func CategorizeHoleCards(card1, card2 Card) HoleCardCategory {
	if !card1.Valid() || !card2.Valid() || card1 == card2 {
		return CategoryUnknown
	}

	small, big := card1.Rank(), card2.Rank()
	if small > big {
		small, big = big, small
	}
	suited := card1.Suit() == card2.Suit()
	isPair := small == big

	// Premium: JJ+, AK (any suit)
	if isPair && small >= Jack {
		return CategoryPremium
	}
	if small == King && big == Ace {
		return CategoryPremium
	}

	// Strong: TT, AQ, AJ
	if isPair && small == Ten {
		return CategoryStrong
	}
	if big == Ace && (small == Queen || small == Jack) {
		return CategoryStrong
	}

	// Medium: 77-99, suited broadway
	if isPair && small >= Seven {
		return CategoryMedium
	}
	if suited && small >= Ten {
		return CategoryMedium
	}

	// Weak: 22-66 or suited connectors and one-gappers
	if isPair {
		return CategoryWeak
	}
	if suited && big-small <= 2 {
		return CategoryWeak
	}

	return CategoryTrash
}

// Notation returns the preflop shorthand for two hole cards: "AA", "AKs", "T9o".
func Notation(card1, card2 Card) string {
	hi, lo := card1.Rank(), card2.Rank()
	if lo > hi {
		hi, lo = lo, hi
	}
	if hi == lo {
		return hi.String() + lo.String()
	}
	if card1.Suit() == card2.Suit() {
		return hi.String() + lo.String() + "s"
	}
	return hi.String() + lo.String() + "o"
}
