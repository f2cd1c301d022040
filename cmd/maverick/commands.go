package main

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"time"

	"github.com/lox/maverick/advisor"
	"github.com/lox/maverick/analysis"
	"github.com/lox/maverick/classification"
	"github.com/lox/maverick/internal/randutil"
	"github.com/lox/maverick/poker"
)

// SpotFlags describe the known cards and how the unknown ones are dealt.
type SpotFlags struct {
	Hero      string `arg:"" help:"Hero hole cards, e.g. 'AsKh'"`
	Board     string `short:"b" help:"Community cards, e.g. 'Qh7h2c'"`
	Dead      string `short:"d" help:"Cards known to be out of play"`
	Opponents int    `short:"o" help:"Number of opponents (0 uses the config)"`
	Trials    int    `short:"n" help:"Monte Carlo trials (0 uses the config)"`
	Mode      string `short:"m" enum:",uniform,range" default:"" help:"Opponent sampling: uniform or range"`
}

type spot struct {
	hero, board, dead []poker.Card
}

func (f SpotFlags) parse() (spot, error) {
	var s spot
	var err error
	if s.hero, err = poker.ParseCardList(f.Hero); err != nil {
		return s, fmt.Errorf("hero: %w", err)
	}
	if s.board, err = poker.ParseCardList(f.Board); err != nil {
		return s, fmt.Errorf("board: %w", err)
	}
	if s.dead, err = poker.ParseCardList(f.Dead); err != nil {
		return s, fmt.Errorf("dead: %w", err)
	}
	return s, nil
}

func (f SpotFlags) resolve(a *app) (opponents, trials int, mode string) {
	opponents, trials, mode = f.Opponents, f.Trials, f.Mode
	if opponents == 0 {
		opponents = a.cfg.Simulation.Opponents
	}
	if trials == 0 {
		trials = a.cfg.Simulation.Trials
	}
	if mode == "" {
		mode = a.cfg.Simulation.Mode
	}
	return opponents, trials, mode
}

func tokens(cards []poker.Card) []string {
	out := make([]string, len(cards))
	for i, c := range cards {
		out[i] = c.String()
	}
	return out
}

type AnalyzeCmd struct {
	SpotFlags `embed:""`

	Pot      float64 `short:"p" default:"100" help:"Current pot size"`
	Bet      float64 `default:"20" help:"Amount to call"`
	Stack    float64 `short:"s" default:"1000" help:"Hero stack"`
	Position string  `default:"button" help:"Hero position: early, middle, late or button"`
	Style    string  `enum:",balanced,tight,loose,aggressive,passive" default:"" help:"Play style, overriding the config"`
	JSON     bool    `help:"Print the analysis as JSON"`
}

func (c *AnalyzeCmd) Run(ctx context.Context, g *Globals) error {
	a, err := g.setup(os.Stdout)
	if err != nil {
		return err
	}
	return c.run(ctx, a)
}

func (c *AnalyzeCmd) run(ctx context.Context, a *app) error {
	s, err := c.parse()
	if err != nil {
		return err
	}
	sim, err := a.simulator()
	if err != nil {
		return err
	}
	engine, err := a.engine(c.Style)
	if err != nil {
		return err
	}
	opponents, trials, mode := c.resolve(a)

	a.logger.Debug("analyzing", "hero", poker.FormatCards(s.hero), "board", poker.FormatCards(s.board),
		"opponents", opponents, "trials", trials, "mode", mode)

	resp, err := advisor.New(sim, engine).Analyze(ctx, advisor.Request{
		HeroHand:  tokens(s.hero),
		Community: tokens(s.board),
		Dead:      tokens(s.dead),
		Opponents: opponents,
		Trials:    trials,
		Pot:       c.Pot,
		BetToCall: c.Bet,
		Stack:     c.Stack,
		Position:  c.Position,
		Mode:      mode,
	}, randutil.New(a.seed))
	if err != nil {
		return err
	}
	a.logger.Debug("simulation finished", "elapsed", resp.Result.Elapsed, "fallbacks", resp.Result.Fallbacks)

	if c.JSON {
		enc := json.NewEncoder(a.out)
		enc.SetIndent("", "  ")
		return enc.Encode(resp)
	}
	a.styles.renderSpot(a.out, s.hero, s.board, opponents)
	a.styles.renderEquity(a.out, resp.Result)
	if resp.PreflopEquity != nil {
		fmt.Fprintf(a.out, "%s %.1f%%\n", a.styles.label.Render("preflop table"), *resp.PreflopEquity*100)
	}
	if resp.OutsResult != nil {
		fmt.Fprintln(a.out)
		a.styles.renderOuts(a.out, *resp.OutsResult)
	}
	fmt.Fprintln(a.out)
	a.styles.renderDecision(a.out, resp.Decision)
	return nil
}

type EquityCmd struct {
	SpotFlags `embed:""`

	Timeout time.Duration `help:"Stop after this long and report a partial estimate"`
}

func (c *EquityCmd) Run(ctx context.Context, g *Globals) error {
	a, err := g.setup(os.Stdout)
	if err != nil {
		return err
	}
	return c.run(ctx, a)
}

func (c *EquityCmd) run(ctx context.Context, a *app) error {
	s, err := c.parse()
	if err != nil {
		return err
	}
	opponents, trials, modeName := c.resolve(a)
	mode, err := analysis.ParseSamplingMode(modeName)
	if err != nil {
		return err
	}
	sim, err := a.simulator()
	if err != nil {
		return err
	}

	req := analysis.Request{
		Hero:      s.hero,
		Board:     s.board,
		Dead:      s.dead,
		Opponents: opponents,
		Trials:    trials,
		Mode:      mode,
	}
	if c.Timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, c.Timeout)
		defer cancel()
		req.AllowPartial = true
	}

	res, err := sim.Run(ctx, req, randutil.New(a.seed))
	if err != nil {
		return err
	}
	if res.Partial {
		a.logger.Warn("simulation stopped early", "trials", res.Trials, "requested", trials)
	}
	a.styles.renderSpot(a.out, s.hero, s.board, opponents)
	a.styles.renderEquity(a.out, res)
	return nil
}

type OutsCmd struct {
	Hero  string `arg:"" help:"Hero hole cards, e.g. 'AsKh'"`
	Board string `arg:"" help:"Flop or turn, e.g. 'Qh7h2c'"`
}

func (c *OutsCmd) Run(g *Globals) error {
	a, err := g.setup(os.Stdout)
	if err != nil {
		return err
	}
	return c.run(a)
}

func (c *OutsCmd) run(a *app) error {
	hero, err := poker.ParseCardList(c.Hero)
	if err != nil {
		return fmt.Errorf("hero: %w", err)
	}
	board, err := poker.ParseCardList(c.Board)
	if err != nil {
		return fmt.Errorf("board: %w", err)
	}
	outs, err := classification.CalculateOuts(hero, board)
	if err != nil {
		return err
	}
	a.styles.renderSpot(a.out, hero, board, 0)
	a.styles.renderOuts(a.out, outs)
	return nil
}

type EvalCmd struct {
	Cards string `arg:"" help:"Five to seven cards, e.g. 'AsKsQsJsTs'"`
}

func (c *EvalCmd) Run(g *Globals) error {
	a, err := g.setup(os.Stdout)
	if err != nil {
		return err
	}
	return c.run(a)
}

func (c *EvalCmd) run(a *app) error {
	cards, err := poker.ParseCardList(c.Cards)
	if err != nil {
		return err
	}
	rank, err := poker.Evaluate(cards)
	if err != nil {
		return err
	}
	fmt.Fprintf(a.out, "%s\n", a.styles.hand.Render(poker.FormatCards(cards)))
	fmt.Fprintf(a.out, "%s %s\n", a.styles.label.Render("hand"), a.styles.category.Render(rank.String()))
	fmt.Fprintf(a.out, "%s %#06x\n", a.styles.label.Render("rank"), uint32(rank))
	return nil
}
