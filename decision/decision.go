// Package decision turns an equity estimate and the pot economics into a
// fold, call or raise recommendation.
//
// The rule is pot odds with a safety margin. Calling a bet b into a pot p
// breaks even at equity b/(p+b). An edge larger than the margin raises and
// an edge within the margin calls. The margin comes from a fixed
// per-position table nudged by the configured play style.
package decision

import (
	"errors"
	"fmt"
	"strings"

	"github.com/lox/maverick/classification"
)

// ErrInvalidInput reports negative amounts, equity outside [0,1] or an
// unknown position.
var ErrInvalidInput = errors.New("invalid decision input")

// Position is the hero's seat relative to the button.
type Position int

const (
	Early Position = iota
	Middle
	Late
	Button
)

func (p Position) String() string {
	if p < Early || p > Button {
		return "unknown"
	}
	return [...]string{"early", "middle", "late", "button"}[p]
}

// ParsePosition parses a position name. Common seat names map onto the four
// positions: the blinds act first after the flop and count as early.
func ParsePosition(s string) (Position, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "early", "utg", "sb", "bb", "small_blind", "big_blind":
		return Early, nil
	case "middle", "mp", "hj", "hijack":
		return Middle, nil
	case "late", "co", "cutoff":
		return Late, nil
	case "button", "btn", "dealer":
		return Button, nil
	default:
		return Early, fmt.Errorf("%w: unknown position %q", ErrInvalidInput, s)
	}
}

// Action is the recommended move.
type Action int

const (
	Fold Action = iota
	Check
	Call
	Raise
	AllIn
)

func (a Action) String() string {
	if a < Fold || a > AllIn {
		return "unknown"
	}
	return [...]string{"fold", "check", "call", "raise", "allin"}[a]
}

// Input holds everything the engine needs for one decision.
type Input struct {
	Equity    float64
	// Pot already holds the bet to call.
	Pot       float64
	BetToCall float64
	Stack     float64
	Position  Position

	// Outs is optional and only reported back in the Decision.
	Outs *classification.OutsResult
}

// Decision is a recommendation together with the numbers behind it.
type Decision struct {
	Action Action
	// Size is the raise amount for Raise and AllIn, zero otherwise.
	Size float64

	Equity         float64
	RequiredEquity float64
	EV             float64
	Margin         float64
	Position       Position

	OutsCount      int
	HitProbability float64

	Reasoning string
}

func (d Decision) String() string {
	switch d.Action {
	case Raise, AllIn:
		return fmt.Sprintf("%s %.0f (%s)", d.Action, d.Size, d.Reasoning)
	default:
		return fmt.Sprintf("%s (%s)", d.Action, d.Reasoning)
	}
}

// RequiredEquity returns the break-even equity for calling bet into pot,
// bet/(pot+bet). Nothing to call needs no equity.
func RequiredEquity(pot, bet float64) float64 {
	if bet <= 0 {
		return 0
	}
	return bet / (pot + bet)
}

// ExpectedValue returns the chip EV of calling: equity×(pot+bet) − (1−equity)×bet.
func ExpectedValue(equity, pot, bet float64) float64 {
	return equity*(pot+bet) - (1-equity)*bet
}
