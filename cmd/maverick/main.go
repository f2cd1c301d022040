package main

import (
	"context"
	"fmt"
	"io"
	"os"
	"os/signal"

	"github.com/alecthomas/kong"
	"github.com/charmbracelet/lipgloss"
	"github.com/charmbracelet/log"
	"github.com/muesli/termenv"

	"github.com/lox/maverick/analysis"
	"github.com/lox/maverick/decision"
	"github.com/lox/maverick/internal/config"
	"github.com/lox/maverick/internal/randutil"
)

// version is set by ldflags during build
var version = "dev"

type CLI struct {
	Globals

	Version kong.VersionFlag `short:"v" help:"Show version"`
	Analyze AnalyzeCmd       `cmd:"" help:"Estimate equity, list outs and recommend an action"`
	Equity  EquityCmd        `cmd:"" help:"Estimate equity by Monte Carlo simulation"`
	Outs    OutsCmd          `cmd:"" help:"List the outs of a drawing hand"`
	Eval    EvalCmd          `cmd:"" help:"Rank a five to seven card hand"`
}

// Globals are flags shared by every command.
type Globals struct {
	Config   string `short:"c" default:"maverick.hcl" help:"HCL config file (defaults apply when missing)"`
	LogLevel string `enum:",debug,info,warn,error" default:"" help:"Log level, overriding the config"`
	NoColor  bool   `help:"Disable coloured output"`
	Seed     *int64 `help:"Deterministic RNG seed (optional)"`
	Workers  int    `help:"Simulation workers, overriding the config"`
}

func main() {
	var cli CLI
	sigCtx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()

	ctx := kong.Parse(&cli,
		kong.Name("maverick"),
		kong.Description("Poker equity calculator and decision helper"),
		kong.UsageOnError(),
		kong.ConfigureHelp(kong.HelpOptions{
			Compact: true,
		}),
		kong.Vars{
			"version": version,
		},
		kong.BindTo(sigCtx, (*context.Context)(nil)),
	)
	err := ctx.Run(&cli.Globals)
	ctx.FatalIfErrorf(err)
}

// app is the resolved runtime shared by the commands.
type app struct {
	cfg    *config.Config
	logger *log.Logger
	out    io.Writer
	styles styles
	seed   int64
}

// setup loads configuration and applies the global flags over it.
func (g *Globals) setup(out io.Writer) (*app, error) {
	logger := log.NewWithOptions(os.Stderr, log.Options{
		Prefix: "maverick",
		Level:  log.InfoLevel,
	})

	cfg, err := config.Load(g.Config, logger)
	if err != nil {
		return nil, err
	}
	if g.LogLevel != "" {
		cfg.LogLevel = g.LogLevel
	}
	level, err := log.ParseLevel(cfg.LogLevel)
	if err != nil {
		return nil, fmt.Errorf("log level: %w", err)
	}
	logger.SetLevel(level)

	if g.Workers > 0 {
		cfg.Simulation.Workers = g.Workers
	}
	seedOpt := cfg.Simulation.Seed
	if g.Seed != nil {
		seedOpt = g.Seed
	}
	seed := randutil.Seed(seedOpt)
	logger.Debug("resolved seed", "seed", seed)

	if g.NoColor {
		lipgloss.SetColorProfile(termenv.Ascii)
	}

	return &app{
		cfg:    cfg,
		logger: logger,
		out:    out,
		styles: newStyles(g.NoColor),
		seed:   seed,
	}, nil
}

func (a *app) simulator() (*analysis.Simulator, error) {
	opts, err := a.cfg.SimulatorOptions()
	if err != nil {
		return nil, err
	}
	return analysis.NewSimulator(opts...), nil
}

func (a *app) engine(style string) (*decision.Engine, error) {
	if style != "" {
		a.cfg.Decision.Style = style
	}
	cfg, err := a.cfg.EngineConfig()
	if err != nil {
		return nil, err
	}
	return decision.NewEngine(cfg)
}
