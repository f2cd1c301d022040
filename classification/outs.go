// Package classification finds and labels the outs of a drawing hand and
// describes board texture.
package classification

import (
	"errors"
	"fmt"
	"slices"

	"github.com/lox/maverick/poker"
)

// ErrInsufficientBoard reports an outs request made before the flop.
var ErrInsufficientBoard = errors.New("insufficient board")

// Out is a card that strictly improves the hero's hand category.
type Out struct {
	Card     poker.Card
	Category poker.Category
	DrawType DrawType
}

// OutsResult lists the outs for one hero hand and board.
type OutsResult struct {
	Outs    []Out
	Current poker.Category
	// Unseen is the number of cards hero cannot see (52 minus hero and board).
	Unseen int
	// ToCome is the number of board cards still to be dealt.
	ToCome  int
	Texture BoardTexture
	// Combos lists draws that span several outs or need two more cards.
	Combos []ComboDraw
}

// Total returns the number of outs.
func (r OutsResult) Total() int {
	return len(r.Outs)
}

// Cards returns the out cards in deck order.
func (r OutsResult) Cards() []poker.Card {
	cards := make([]poker.Card, len(r.Outs))
	for i, o := range r.Outs {
		cards[i] = o.Card
	}
	return cards
}

// ByCategory counts outs by the category they make.
func (r OutsResult) ByCategory() map[poker.Category]int {
	m := make(map[poker.Category]int)
	for _, o := range r.Outs {
		m[o.Category]++
	}
	return m
}

// ByDrawType groups out cards by draw type.
func (r OutsResult) ByDrawType() map[DrawType][]poker.Card {
	m := make(map[DrawType][]poker.Card)
	for _, o := range r.Outs {
		m[o.DrawType] = append(m[o.DrawType], o.Card)
	}
	return m
}

// Draws returns the distinct draw types present, strongest first.
func (r OutsResult) Draws() []DrawType {
	var draws []DrawType
	for _, o := range r.Outs {
		if !slices.Contains(draws, o.DrawType) {
			draws = append(draws, o.DrawType)
		}
	}
	slices.Sort(draws)
	return draws
}

// Labels returns the draw tags followed by the combo draw tags.
func (r OutsResult) Labels() []string {
	var labels []string
	for _, d := range r.Draws() {
		labels = append(labels, d.String())
	}
	for _, c := range r.Combos {
		labels = append(labels, c.String())
	}
	return labels
}

// HitProbability is the exact chance that at least one out arrives among
// the remaining board cards: 1 - C(unseen-outs, k) / C(unseen, k).
func (r OutsResult) HitProbability() float64 {
	if r.ToCome == 0 || len(r.Outs) == 0 || r.Unseen == 0 {
		return 0
	}
	return 1 - binomial(r.Unseen-len(r.Outs), r.ToCome)/binomial(r.Unseen, r.ToCome)
}

func binomial(n, k int) float64 {
	if k < 0 || k > n {
		return 0
	}
	c := 1.0
	for i := 0; i < k; i++ {
		c = c * float64(n-i) / float64(i+1)
	}
	return c
}

// CalculateOuts enumerates every unseen card and keeps those that raise the
// hero's hand category. Outs need a flop or turn: fewer than two board cards
// fail with ErrInsufficientBoard, and a complete board has no outs.
func CalculateOuts(hero, board []poker.Card) (OutsResult, error) {
	if len(hero) != 2 {
		return OutsResult{}, fmt.Errorf("%w: hero needs 2 cards, got %d", poker.ErrInvalidCard, len(hero))
	}
	if len(board) < 2 {
		return OutsResult{}, fmt.Errorf("%w: need at least 2 board cards, got %d", ErrInsufficientBoard, len(board))
	}
	if len(board) > 5 {
		return OutsResult{}, fmt.Errorf("%w: board has %d cards, at most 5 allowed", poker.ErrInvalidCard, len(board))
	}

	var heroHand, boardHand poker.Hand
	for i, c := range append(slices.Clone(hero), board...) {
		if !c.Valid() {
			return OutsResult{}, fmt.Errorf("%w: invalid card value %#x", poker.ErrInvalidCard, uint64(c))
		}
		if (heroHand | boardHand).HasCard(c) {
			return OutsResult{}, fmt.Errorf("%w: duplicate card %s", poker.ErrInvalidCard, c)
		}
		if i < len(hero) {
			heroHand.AddCard(c)
		} else {
			boardHand.AddCard(c)
		}
	}

	known := heroHand | boardHand
	res := OutsResult{
		Current: poker.EvaluateHand(known).Category(),
		Unseen:  52 - known.CountCards(),
		ToCome:  5 - len(board),
		Texture: AnalyzeBoardTexture(boardHand),
	}
	if res.ToCome == 0 {
		return res, nil
	}

	deck := poker.NewDeckWithout(known)
	for _, c := range deck.Cards() {
		after := poker.EvaluateHand(known | poker.NewHand(c)).Category()
		if after <= res.Current {
			continue
		}
		res.Outs = append(res.Outs, Out{
			Card:     c,
			Category: after,
			DrawType: ClassifyOut(heroHand, boardHand, c, res.Current, after),
		})
	}
	res.Combos = detectCombos(heroHand, boardHand, res)
	return res, nil
}
