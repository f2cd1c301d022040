package poker

import "errors"

var (
	// ErrInvalidCard reports a malformed or duplicate card token.
	ErrInvalidCard = errors.New("invalid card")

	// ErrInsufficientCards reports a deal the deck cannot satisfy.
	ErrInsufficientCards = errors.New("insufficient cards")

	// ErrEvaluation reports a hand that cannot be evaluated: a card count
	// outside [5,7] or a duplicated card.
	ErrEvaluation = errors.New("evaluation error")
)
