// Package advisor runs the full analysis for one spot: it parses card
// tokens, estimates equity by simulation, lists outs once the flop is out and
// turns the equity into a betting recommendation.
package advisor

import (
	"context"
	"fmt"
	rand "math/rand/v2"

	"github.com/lox/maverick/analysis"
	"github.com/lox/maverick/classification"
	"github.com/lox/maverick/decision"
	"github.com/lox/maverick/poker"
)

const (
	DefaultTrials    = 10000
	DefaultOpponents = 1
	// DefaultPosition is used when a request names none.
	DefaultPosition = decision.Button
)

// Request describes a spot using card tokens such as "As" or "Td".
type Request struct {
	HeroHand  []string
	Community []string
	Dead      []string

	Opponents int
	Trials    int

	Pot       float64
	BetToCall float64
	Stack     float64
	Position  string
	// Mode is "uniform" or "range"; empty means uniform.
	Mode string
}

// OutView is one out in display form.
type OutView struct {
	Card     string `json:"card"`
	DrawType string `json:"draw_type"`
}

// Recommendation is the decision in display form.
type Recommendation struct {
	Action         string  `json:"action"`
	Size           float64 `json:"size"`
	EV             float64 `json:"ev"`
	RequiredEquity float64 `json:"required_equity"`
	Reasoning      string  `json:"reasoning"`
}

// Response is the outcome of Analyze.
type Response struct {
	WinPct float64 `json:"win_pct"`
	TiePct float64 `json:"tie_pct"`
	Equity float64 `json:"equity"`

	Outs           []OutView      `json:"outs"`
	Draws          []string       `json:"draws,omitempty"`
	Recommendation Recommendation `json:"recommendation"`

	// PreflopEquity is the tabulated heads-up equity, set only before the
	// flop against a single opponent.
	PreflopEquity *float64 `json:"preflop_equity,omitempty"`
	Texture       string   `json:"texture,omitempty"`

	Result     analysis.Result            `json:"-"`
	OutsResult *classification.OutsResult `json:"-"`
	Decision   decision.Decision          `json:"-"`
}

// Advisor combines a simulator and a decision engine. It is safe for
// concurrent use when both are.
type Advisor struct {
	sim    *analysis.Simulator
	engine *decision.Engine
}

// New returns an advisor backed by sim and engine.
func New(sim *analysis.Simulator, engine *decision.Engine) *Advisor {
	return &Advisor{sim: sim, engine: engine}
}

// Analyze evaluates req. Malformed or repeated card tokens fail with
// poker.ErrInvalidCard; other request problems surface the error of the
// stage that rejected them.
func (a *Advisor) Analyze(ctx context.Context, req Request, rng *rand.Rand) (Response, error) {
	hero, err := poker.ParseCards(req.HeroHand...)
	if err != nil {
		return Response{}, fmt.Errorf("hero hand: %w", err)
	}
	board, err := poker.ParseCards(req.Community...)
	if err != nil {
		return Response{}, fmt.Errorf("community cards: %w", err)
	}
	dead, err := poker.ParseCards(req.Dead...)
	if err != nil {
		return Response{}, fmt.Errorf("dead cards: %w", err)
	}

	mode, err := analysis.ParseSamplingMode(req.Mode)
	if err != nil {
		return Response{}, err
	}
	position := DefaultPosition
	if req.Position != "" {
		if position, err = decision.ParsePosition(req.Position); err != nil {
			return Response{}, err
		}
	}
	trials := req.Trials
	if trials == 0 {
		trials = DefaultTrials
	}
	opponents := req.Opponents
	if opponents == 0 {
		opponents = DefaultOpponents
	}

	result, err := a.sim.Run(ctx, analysis.Request{
		Hero:      hero,
		Board:     board,
		Dead:      dead,
		Opponents: opponents,
		Trials:    trials,
		Mode:      mode,
	}, rng)
	if err != nil {
		return Response{}, err
	}

	resp := Response{
		WinPct: result.WinRate(),
		TiePct: result.TieRate(),
		Equity: result.Equity(),
		Result: result,
	}

	if len(board) >= 2 {
		outs, err := classification.CalculateOuts(hero, board)
		if err != nil {
			return Response{}, err
		}
		resp.OutsResult = &outs
		resp.Texture = outs.Texture.String()
		resp.Draws = outs.Labels()
		for _, o := range outs.Outs {
			resp.Outs = append(resp.Outs, OutView{Card: o.Card.String(), DrawType: o.DrawType.String()})
		}
	}
	if len(board) == 0 && opponents == 1 {
		if eq, ok := analysis.PreflopEquity(hero[0], hero[1]); ok {
			resp.PreflopEquity = &eq
		}
	}

	d, err := a.engine.Recommend(decision.Input{
		Equity:    resp.Equity,
		Pot:       req.Pot,
		BetToCall: req.BetToCall,
		Stack:     req.Stack,
		Position:  position,
		Outs:      resp.OutsResult,
	})
	if err != nil {
		return Response{}, err
	}
	resp.Decision = d
	resp.Recommendation = Recommendation{
		Action:         d.Action.String(),
		Size:           d.Size,
		EV:             d.EV,
		RequiredEquity: d.RequiredEquity,
		Reasoning:      d.Reasoning,
	}
	return resp, nil
}
