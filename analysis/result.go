// Package analysis runs Monte Carlo equity simulations over the poker
// package's bit-packed cards and summarises them as Results.
package analysis

import (
	"fmt"
	"math"
	"time"
)

// Result is the tally of a completed simulation run. It is immutable once
// returned and safe to share between goroutines.
type Result struct {
	Wins   int
	Ties   int
	Losses int
	Trials int

	// TiedShares sums, over all tied trials, the number of players
	// (hero included) sharing the pot.
	TiedShares int

	// Fallbacks counts opponent deals where range-weighted sampling gave up
	// and kept a uniform draw.
	Fallbacks int

	Elapsed time.Duration

	// Partial is set when the run was cancelled and the caller asked for an
	// early estimate. Trials then holds the number actually completed.
	Partial bool
}

// WinRate returns the fraction of trials won outright (0.0 to 1.0).
func (r Result) WinRate() float64 {
	if r.Trials == 0 {
		return 0.0
	}
	return float64(r.Wins) / float64(r.Trials)
}

// TieRate returns the fraction of trials where hero shared the best hand.
func (r Result) TieRate() float64 {
	if r.Trials == 0 {
		return 0.0
	}
	return float64(r.Ties) / float64(r.Trials)
}

// LossRate returns the fraction of trials lost.
func (r Result) LossRate() float64 {
	if r.Trials == 0 {
		return 0.0
	}
	return float64(r.Losses) / float64(r.Trials)
}

// AverageTied returns the mean number of players sharing the pot when hero
// ties, or 0 when there were no ties.
func (r Result) AverageTied() float64 {
	if r.Ties == 0 {
		return 0.0
	}
	return float64(r.TiedShares) / float64(r.Ties)
}

// Equity returns the share of the pot hero expects to win: the win rate
// plus the tie rate divided by the average number of players tied.
func (r Result) Equity() float64 {
	if r.Trials == 0 {
		return 0.0
	}
	eq := r.WinRate()
	if avg := r.AverageTied(); avg > 0 {
		eq += r.TieRate() / avg
	}
	return eq
}

// StdError returns the binomial standard error of the equity estimate.
func (r Result) StdError() float64 {
	if r.Trials == 0 {
		return 0.0
	}
	eq := r.Equity()
	return math.Sqrt(eq * (1.0 - eq) / float64(r.Trials))
}

// ConfidenceInterval returns the 95% confidence interval for equity
func (r Result) ConfidenceInterval() (lower, upper float64) {
	if r.Trials == 0 {
		return 0.0, 0.0
	}
	equity := r.Equity()

	// 95% confidence interval (±1.96 * SE)
	margin := 1.96 * r.StdError()

	lower = math.Max(0.0, equity-margin)
	upper = math.Min(1.0, equity+margin)
	return lower, upper
}

func (r Result) String() string {
	s := fmt.Sprintf("win %.1f%% tie %.1f%% equity %.1f%% (%d trials)",
		r.WinRate()*100, r.TieRate()*100, r.Equity()*100, r.Trials)
	if r.Partial {
		s += " partial"
	}
	return s
}

func (r *Result) add(o Result) {
	r.Wins += o.Wins
	r.Ties += o.Ties
	r.Losses += o.Losses
	r.Trials += o.Trials
	r.TiedShares += o.TiedShares
	r.Fallbacks += o.Fallbacks
}
