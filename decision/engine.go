package decision

import (
	"fmt"
	"math"
)

// Margins is the extra equity over pot odds each position needs before it
// raises, and the band around pot odds in which it calls.
//
//	early   0.10
//	middle  0.07
//	late    0.05
//	button  0.03
//
// Acting later means more information on later streets, so thinner edges are
// playable. Values must not increase from Early to Button.
type Margins [4]float64

// DefaultMargins is the documented margin table.
var DefaultMargins = Margins{Early: 0.10, Middle: 0.07, Late: 0.05, Button: 0.03}

// Validate checks that every margin lies in [0,1) and that later positions
// never demand more than earlier ones.
func (m Margins) Validate() error {
	for p, v := range m {
		if math.IsNaN(v) || v < 0 || v >= 1 {
			return fmt.Errorf("%w: %s margin %v outside [0,1)", ErrInvalidInput, Position(p), v)
		}
		if p > 0 && v > m[p-1] {
			return fmt.Errorf("%w: %s margin %v exceeds %s margin %v", ErrInvalidInput, Position(p), v, Position(p-1), m[p-1])
		}
	}
	return nil
}

// Style shifts the margins and scales raise sizes.
type Style int

const (
	Balanced Style = iota
	Tight
	Loose
	Aggressive
	Passive
)

func (s Style) String() string {
	if s < Balanced || s > Passive {
		return "unknown"
	}
	return [...]string{"balanced", "tight", "loose", "aggressive", "passive"}[s]
}

// ParseStyle parses a style name; the empty string is Balanced.
func ParseStyle(s string) (Style, error) {
	for st := Balanced; st <= Passive; st++ {
		if st.String() == s {
			return st, nil
		}
	}
	if s == "" {
		return Balanced, nil
	}
	return Balanced, fmt.Errorf("%w: unknown style %q", ErrInvalidInput, s)
}

// marginOffset is added to every position's margin.
func (s Style) marginOffset() float64 {
	switch s {
	case Tight:
		return 0.03
	case Loose:
		return -0.02
	default:
		return 0
	}
}

// raiseScale multiplies raise sizes.
func (s Style) raiseScale() float64 {
	switch s {
	case Aggressive:
		return 1.25
	case Passive:
		return 0.75
	default:
		return 1
	}
}

// Config configures an Engine.
type Config struct {
	Margins Margins
	Style   Style
	// MinRaiseMultiple is the smallest raise when facing a bet, as a
	// multiple of that bet.
	MinRaiseMultiple float64
}

// DefaultConfig returns the documented margins, a balanced style and a
// minimum raise of twice the bet.
func DefaultConfig() Config {
	return Config{
		Margins:          DefaultMargins,
		Style:            Balanced,
		MinRaiseMultiple: 2,
	}
}

// Engine produces recommendations. It holds no mutable state.
type Engine struct {
	cfg Config
}

// NewEngine validates cfg and returns an engine using it.
func NewEngine(cfg Config) (*Engine, error) {
	if err := cfg.Margins.Validate(); err != nil {
		return nil, err
	}
	if cfg.Style < Balanced || cfg.Style > Passive {
		return nil, fmt.Errorf("%w: unknown style %d", ErrInvalidInput, cfg.Style)
	}
	if math.IsNaN(cfg.MinRaiseMultiple) || cfg.MinRaiseMultiple < 1 {
		return nil, fmt.Errorf("%w: minimum raise multiple %v below 1", ErrInvalidInput, cfg.MinRaiseMultiple)
	}
	return &Engine{cfg: cfg}, nil
}

// Margin returns the effective margin for a position under the engine's style.
func (e *Engine) Margin(p Position) float64 {
	return max(0, e.cfg.Margins[p]+e.cfg.Style.marginOffset())
}

// Recommend applies the pot-odds rule. The amount to call is capped at the
// stack, since a short stack can only call all-in. The part of the bet a
// short stack cannot match goes back to the bettor, so it is taken out of
// the pot for both the required equity and the EV.
func (e *Engine) Recommend(in Input) (Decision, error) {
	if err := validate(in); err != nil {
		return Decision{}, err
	}

	call := min(in.BetToCall, in.Stack)
	pot := max(0, in.Pot-(in.BetToCall-call))
	required := RequiredEquity(pot, call)
	margin := e.Margin(in.Position)

	d := Decision{
		Equity:         in.Equity,
		RequiredEquity: required,
		EV:             ExpectedValue(in.Equity, pot, call),
		Margin:         margin,
		Position:       in.Position,
	}
	if in.Outs != nil {
		d.OutsCount = in.Outs.Total()
		d.HitProbability = in.Outs.HitProbability()
	}

	edge := in.Equity - required
	switch {
	case edge > margin && in.Stack > 0:
		size := edge * in.Stack * e.cfg.Style.raiseScale()
		if call > 0 {
			size = max(size, e.cfg.MinRaiseMultiple*call)
		}
		d.Size = min(size, in.Stack)
		d.Action = Raise
		if d.Size >= in.Stack {
			d.Action = AllIn
		}
		d.Reasoning = fmt.Sprintf("equity %.1f%% beats %.1f%% required by more than the %.1f%% %s margin",
			in.Equity*100, required*100, margin*100, in.Position)
	case edge >= -margin:
		d.Action = Call
		if call == 0 {
			d.Action = Check
		}
		d.Reasoning = fmt.Sprintf("equity %.1f%% within %.1f%% of %.1f%% required",
			in.Equity*100, margin*100, required*100)
	default:
		d.Action = Fold
		d.Reasoning = fmt.Sprintf("equity %.1f%% short of %.1f%% required", in.Equity*100, required*100)
	}
	return d, nil
}

func validate(in Input) error {
	for _, f := range []struct {
		name string
		v    float64
	}{
		{"pot", in.Pot},
		{"bet to call", in.BetToCall},
		{"stack", in.Stack},
	} {
		if math.IsNaN(f.v) || math.IsInf(f.v, 0) || f.v < 0 {
			return fmt.Errorf("%w: %s must be a non-negative number, got %v", ErrInvalidInput, f.name, f.v)
		}
	}
	if math.IsNaN(in.Equity) || in.Equity < 0 || in.Equity > 1 {
		return fmt.Errorf("%w: equity %v outside [0,1]", ErrInvalidInput, in.Equity)
	}
	if in.Position < Early || in.Position > Button {
		return fmt.Errorf("%w: unknown position %d", ErrInvalidInput, in.Position)
	}
	return nil
}
