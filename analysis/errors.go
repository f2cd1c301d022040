package analysis

import (
	"errors"
	"fmt"

	"github.com/lox/maverick/poker"
)

var (
	// ErrTooFewCardsRemaining reports a request whose remaining deck cannot
	// supply two cards per opponent plus the rest of the board. It also
	// matches poker.ErrInsufficientCards.
	ErrTooFewCardsRemaining = fmt.Errorf("%w: too few cards remaining", poker.ErrInsufficientCards)

	// ErrInvalidRequest reports out of range request parameters.
	ErrInvalidRequest = errors.New("invalid simulation request")

	// ErrInvalidRange reports range notation that cannot be parsed.
	ErrInvalidRange = errors.New("invalid range")
)
