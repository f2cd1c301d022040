package decision

import (
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/lox/maverick/classification"
	"github.com/lox/maverick/poker"
)

func newEngine(t *testing.T, style Style) *Engine {
	t.Helper()
	cfg := DefaultConfig()
	cfg.Style = style
	e, err := NewEngine(cfg)
	require.NoError(t, err)
	return e
}

func TestRequiredEquity(t *testing.T) {
	t.Parallel()
	tests := []struct {
		pot, bet float64
		want     float64
	}{
		{pot: 100, bet: 20, want: 20.0 / 120},
		{pot: 100, bet: 200, want: 200.0 / 300},
		{pot: 100, bet: 100, want: 0.5},
		{pot: 100, bet: 0, want: 0},
		{pot: 0, bet: 50, want: 1},
	}
	for _, tt := range tests {
		assert.InDelta(t, tt.want, RequiredEquity(tt.pot, tt.bet), 1e-12, "pot %v bet %v", tt.pot, tt.bet)
	}
}

func TestRecommend(t *testing.T) {
	t.Parallel()
	e := newEngine(t, Balanced)

	tests := []struct {
		name     string
		in       Input
		action   Action
		required float64
	}{
		{
			name:     "strong equity raises",
			in:       Input{Equity: 0.80, Pot: 100, BetToCall: 20, Stack: 1000, Position: Middle},
			action:   Raise,
			required: 20.0 / 120,
		},
		{
			name:     "weak equity folds",
			in:       Input{Equity: 0.10, Pot: 100, BetToCall: 200, Stack: 1000, Position: Middle},
			action:   Fold,
			required: 200.0 / 300,
		},
		{
			name:     "marginal equity calls",
			in:       Input{Equity: 0.35, Pot: 100, BetToCall: 50, Stack: 1000, Position: Early},
			action:   Call,
			required: 50.0 / 150,
		},
		{
			name:     "nothing to call checks",
			in:       Input{Equity: 0.02, Pot: 100, Stack: 1000, Position: Button},
			action:   Check,
			required: 0,
		},
		{
			name:     "no chips behind cannot raise",
			in:       Input{Equity: 0.90, Pot: 100, Stack: 0, Position: Button},
			action:   Check,
			required: 0,
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			d, err := e.Recommend(tt.in)
			require.NoError(t, err)
			assert.Equal(t, tt.action, d.Action, d.Reasoning)
			assert.InDelta(t, tt.required, d.RequiredEquity, 1e-9)
			assert.Equal(t, tt.in.Position, d.Position)
			assert.NotEmpty(t, d.Reasoning)
			if d.Action != Raise && d.Action != AllIn {
				assert.Zero(t, d.Size)
			}
		})
	}
}

func TestRaiseSizing(t *testing.T) {
	t.Parallel()
	e := newEngine(t, Balanced)

	d, err := e.Recommend(Input{Equity: 0.80, Pot: 100, BetToCall: 20, Stack: 1000, Position: Middle})
	require.NoError(t, err)
	require.Equal(t, Raise, d.Action)
	assert.InDelta(t, (0.80-20.0/120)*1000, d.Size, 1e-9)

	// A small edge on a short stack is lifted to the minimum raise
	d, err = e.Recommend(Input{Equity: 0.60, Pot: 100, BetToCall: 50, Stack: 200, Position: Button})
	require.NoError(t, err)
	require.Equal(t, Raise, d.Action)
	assert.InDelta(t, 100, d.Size, 1e-9)
	assert.GreaterOrEqual(t, d.Size, 2*50.0)
}

func TestRaiseCappedAtStack(t *testing.T) {
	t.Parallel()
	e := newEngine(t, Balanced)

	d, err := e.Recommend(Input{Equity: 0.95, Pot: 100, BetToCall: 40, Stack: 60, Position: Late})
	require.NoError(t, err)
	assert.Equal(t, AllIn, d.Action)
	assert.Equal(t, 60.0, d.Size)

	// The call is capped at the stack, so pot odds use 30 not 80, and the
	// 50 the stack cannot match leaves the pot.
	d, err = e.Recommend(Input{Equity: 0.30, Pot: 100, BetToCall: 80, Stack: 30, Position: Late})
	require.NoError(t, err)
	assert.InDelta(t, 30.0/80, d.RequiredEquity, 1e-9)
	assert.InDelta(t, ExpectedValue(0.30, 50, 30), d.EV, 1e-9)
	assert.InDelta(t, 3.0, d.EV, 1e-9)
	assert.Equal(t, Fold, d.Action)

	// An inconsistent pot smaller than the unmatched chips stays at zero.
	d, err = e.Recommend(Input{Equity: 0.5, Pot: 10, BetToCall: 80, Stack: 30, Position: Late})
	require.NoError(t, err)
	assert.InDelta(t, 1.0, d.RequiredEquity, 1e-9)
	assert.InDelta(t, ExpectedValue(0.5, 0, 30), d.EV, 1e-9)
}

func TestMarginsMonotoneByPosition(t *testing.T) {
	t.Parallel()
	for _, style := range []Style{Balanced, Tight, Loose, Aggressive, Passive} {
		e := newEngine(t, style)
		for p := Middle; p <= Button; p++ {
			assert.LessOrEqual(t, e.Margin(p), e.Margin(p-1), "%s: %s vs %s", style, p, p-1)
		}
	}
}

func TestStyleEffects(t *testing.T) {
	t.Parallel()
	assert.InDelta(t, 0.13, newEngine(t, Tight).Margin(Early), 1e-12)
	assert.InDelta(t, 0.08, newEngine(t, Loose).Margin(Early), 1e-12)
	assert.InDelta(t, 0.01, newEngine(t, Loose).Margin(Button), 1e-12)

	in := Input{Equity: 0.70, Pot: 100, BetToCall: 10, Stack: 1000, Position: Late}
	base, err := newEngine(t, Balanced).Recommend(in)
	require.NoError(t, err)
	aggro, err := newEngine(t, Aggressive).Recommend(in)
	require.NoError(t, err)
	passive, err := newEngine(t, Passive).Recommend(in)
	require.NoError(t, err)

	assert.InDelta(t, base.Size*1.25, aggro.Size, 1e-9)
	assert.InDelta(t, base.Size*0.75, passive.Size, 1e-9)
}

func TestExpectedValue(t *testing.T) {
	t.Parallel()
	assert.InDelta(t, 0.5*150-0.5*50, ExpectedValue(0.5, 100, 50), 1e-12)
	assert.InDelta(t, -50, ExpectedValue(0, 100, 50), 1e-12)
	assert.InDelta(t, 150, ExpectedValue(1, 100, 50), 1e-12)

	d, err := newEngine(t, Balanced).Recommend(Input{Equity: 0.4, Pot: 100, BetToCall: 25, Stack: 500, Position: Late})
	require.NoError(t, err)
	assert.InDelta(t, 0.4*125-0.6*25, d.EV, 1e-9)
}

func TestRecommendInvalidInput(t *testing.T) {
	t.Parallel()
	e := newEngine(t, Balanced)
	tests := []struct {
		name string
		in   Input
	}{
		{name: "negative pot", in: Input{Equity: 0.5, Pot: -1, Stack: 100}},
		{name: "negative bet", in: Input{Equity: 0.5, Pot: 10, BetToCall: -5, Stack: 100}},
		{name: "negative stack", in: Input{Equity: 0.5, Pot: 10, Stack: -100}},
		{name: "equity above one", in: Input{Equity: 1.2, Pot: 10, Stack: 100}},
		{name: "equity below zero", in: Input{Equity: -0.1, Pot: 10, Stack: 100}},
		{name: "nan equity", in: Input{Equity: math.NaN(), Pot: 10, Stack: 100}},
		{name: "infinite pot", in: Input{Equity: 0.5, Pot: math.Inf(1), Stack: 100}},
		{name: "unknown position", in: Input{Equity: 0.5, Pot: 10, Stack: 100, Position: Position(9)}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := e.Recommend(tt.in)
			assert.ErrorIs(t, err, ErrInvalidInput)
		})
	}
}

func TestRecommendInvalidInputNamesFirstField(t *testing.T) {
	t.Parallel()
	e := newEngine(t, Balanced)
	in := Input{Equity: 0.5, Pot: -1, BetToCall: -2, Stack: -3}
	for range 20 {
		_, err := e.Recommend(in)
		require.ErrorIs(t, err, ErrInvalidInput)
		assert.Contains(t, err.Error(), "pot must be")
	}
}

func TestNewEngineValidatesConfig(t *testing.T) {
	t.Parallel()
	cfg := DefaultConfig()
	cfg.Margins = Margins{0.05, 0.07, 0.05, 0.03}
	_, err := NewEngine(cfg)
	assert.ErrorIs(t, err, ErrInvalidInput)

	cfg = DefaultConfig()
	cfg.Margins[Button] = -0.01
	_, err = NewEngine(cfg)
	assert.ErrorIs(t, err, ErrInvalidInput)

	cfg = DefaultConfig()
	cfg.MinRaiseMultiple = 0.5
	_, err = NewEngine(cfg)
	assert.ErrorIs(t, err, ErrInvalidInput)

	cfg = DefaultConfig()
	cfg.Style = Style(42)
	_, err = NewEngine(cfg)
	assert.ErrorIs(t, err, ErrInvalidInput)
}

func TestRecommendReportsOuts(t *testing.T) {
	t.Parallel()
	outs, err := classification.CalculateOuts(poker.MustParseCards("Ah Kh"), poker.MustParseCards("Qh 7h 2c"))
	require.NoError(t, err)

	d, err := newEngine(t, Balanced).Recommend(Input{Equity: 0.5, Pot: 100, BetToCall: 50, Stack: 500, Position: Late, Outs: &outs})
	require.NoError(t, err)
	assert.Equal(t, outs.Total(), d.OutsCount)
	assert.InDelta(t, outs.HitProbability(), d.HitProbability, 1e-12)
	assert.Positive(t, d.OutsCount)
}

func TestParsePosition(t *testing.T) {
	t.Parallel()
	for in, want := range map[string]Position{
		"early": Early, "UTG": Early, "bb": Early,
		"middle": Middle, "hj": Middle,
		"late": Late, "co": Late,
		"button": Button, " BTN ": Button,
	} {
		got, err := ParsePosition(in)
		require.NoError(t, err, in)
		assert.Equal(t, want, got, in)
	}
	_, err := ParsePosition("nowhere")
	assert.ErrorIs(t, err, ErrInvalidInput)

	for p := Early; p <= Button; p++ {
		got, err := ParsePosition(p.String())
		require.NoError(t, err)
		assert.Equal(t, p, got)
	}
}

func TestParseStyle(t *testing.T) {
	t.Parallel()
	for s := Balanced; s <= Passive; s++ {
		got, err := ParseStyle(s.String())
		require.NoError(t, err)
		assert.Equal(t, s, got)
	}
	got, err := ParseStyle("")
	require.NoError(t, err)
	assert.Equal(t, Balanced, got)
	_, err = ParseStyle("maniac")
	assert.ErrorIs(t, err, ErrInvalidInput)
}

func TestActionString(t *testing.T) {
	t.Parallel()
	assert.Equal(t, "fold", Fold.String())
	assert.Equal(t, "allin", AllIn.String())
	assert.Equal(t, "unknown", Action(12).String())
}
