package main

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/alecthomas/kong"
	"github.com/charmbracelet/lipgloss"
	"github.com/charmbracelet/log"
	"github.com/muesli/termenv"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/lox/maverick/advisor"
	"github.com/lox/maverick/classification"
	"github.com/lox/maverick/internal/config"
	"github.com/lox/maverick/poker"
)

func testApp(t *testing.T) (*app, *bytes.Buffer) {
	t.Helper()
	lipgloss.SetColorProfile(termenv.Ascii)
	cfg := config.Default()
	cfg.Simulation.Trials = 2000
	cfg.Simulation.Workers = 2
	var buf bytes.Buffer
	return &app{
		cfg:    cfg,
		logger: log.New(io.Discard),
		out:    &buf,
		styles: newStyles(true),
		seed:   42,
	}, &buf
}

func TestCLIParse(t *testing.T) {
	var cli CLI
	parser, err := kong.New(&cli, kong.Vars{"version": "test"})
	require.NoError(t, err)

	kctx, err := parser.Parse([]string{
		"--seed", "7", "--no-color",
		"analyze", "AsKh", "-b", "Qh7h2c", "-o", "2", "-n", "500",
		"--pot", "60", "--bet", "30", "--position", "late", "--style", "tight",
	})
	require.NoError(t, err)
	assert.Equal(t, "analyze <hero>", kctx.Command())
	require.NotNil(t, cli.Seed)
	assert.Equal(t, int64(7), *cli.Seed)
	assert.True(t, cli.NoColor)
	assert.Equal(t, "AsKh", cli.Analyze.Hero)
	assert.Equal(t, "Qh7h2c", cli.Analyze.Board)
	assert.Equal(t, 2, cli.Analyze.Opponents)
	assert.Equal(t, 500, cli.Analyze.Trials)
	assert.Equal(t, 60.0, cli.Analyze.Pot)
	assert.Equal(t, 30.0, cli.Analyze.Bet)
	assert.Equal(t, 1000.0, cli.Analyze.Stack)
	assert.Equal(t, "late", cli.Analyze.Position)

	_, err = parser.Parse([]string{"equity", "AsKh", "--mode", "weighted"})
	assert.Error(t, err)
}

func TestAnalyzeCommand(t *testing.T) {
	a, buf := testApp(t)
	cmd := &AnalyzeCmd{
		SpotFlags: SpotFlags{Hero: "AsAh"},
		Pot:       100,
		Bet:       20,
		Stack:     1000,
		Position:  "middle",
	}
	require.NoError(t, cmd.run(context.Background(), a))

	out := buf.String()
	assert.Contains(t, out, "As Ah")
	assert.Contains(t, out, "equity")
	assert.Contains(t, out, "preflop table")
	assert.Contains(t, out, "raise")
	assert.Contains(t, out, "2000 trials")
}

func TestAnalyzeCommandJSON(t *testing.T) {
	a, buf := testApp(t)
	cmd := &AnalyzeCmd{
		SpotFlags: SpotFlags{Hero: "AhKh", Board: "Qh7h2c"},
		Pot:       100,
		Bet:       50,
		Stack:     500,
		Position:  "button",
		JSON:      true,
	}
	require.NoError(t, cmd.run(context.Background(), a))

	var resp advisor.Response
	require.NoError(t, json.Unmarshal(buf.Bytes(), &resp))
	assert.InDelta(t, resp.WinPct+resp.TiePct, resp.Equity, 0.05)
	assert.NotEmpty(t, resp.Outs)
	assert.NotEmpty(t, resp.Recommendation.Action)
}

func TestAnalyzeCommandRejectsBadCards(t *testing.T) {
	a, _ := testApp(t)
	cmd := &AnalyzeCmd{SpotFlags: SpotFlags{Hero: "AsXx"}, Position: "button"}
	err := cmd.run(context.Background(), a)
	assert.ErrorIs(t, err, poker.ErrInvalidCard)

	cmd = &AnalyzeCmd{SpotFlags: SpotFlags{Hero: "AsKs", Board: "As2c3d"}, Position: "button"}
	err = cmd.run(context.Background(), a)
	assert.ErrorIs(t, err, poker.ErrInvalidCard)
}

func TestEquityCommand(t *testing.T) {
	a, buf := testApp(t)
	cmd := &EquityCmd{SpotFlags: SpotFlags{Hero: "KdKc", Board: "Ks7h2c", Opponents: 2}}
	require.NoError(t, cmd.run(context.Background(), a))
	out := buf.String()
	assert.Contains(t, out, "Ks 7h 2c")
	assert.Contains(t, out, "2 opponent(s)")
	assert.Contains(t, out, "95% CI")
}

func TestEquityCommandTimeoutReportsPartial(t *testing.T) {
	a, buf := testApp(t)
	a.cfg.Simulation.Trials = 50_000_000
	cmd := &EquityCmd{SpotFlags: SpotFlags{Hero: "7d6d"}, Timeout: 20 * time.Millisecond}
	require.NoError(t, cmd.run(context.Background(), a))
	assert.Contains(t, buf.String(), "stopped early")
}

func TestOutsCommand(t *testing.T) {
	a, buf := testApp(t)
	cmd := &OutsCmd{Hero: "AhKh", Board: "Qh7h2c"}
	require.NoError(t, cmd.run(a))
	out := buf.String()
	assert.Contains(t, out, classification.FlushDraw.String())
	assert.Contains(t, out, "to come")

	cmd = &OutsCmd{Hero: "AhKh", Board: "Qh"}
	assert.ErrorIs(t, cmd.run(a), classification.ErrInsufficientBoard)
}

func TestOutsCommandListsBackdoorDraws(t *testing.T) {
	a, buf := testApp(t)
	require.NoError(t, (&OutsCmd{Hero: "9h8h", Board: "7h2cKd"}).run(a))
	out := buf.String()
	assert.Contains(t, out, classification.BackdoorFlush.String())
	assert.Contains(t, out, classification.BackdoorStraight.String())
}

func TestEvalCommand(t *testing.T) {
	a, buf := testApp(t)
	require.NoError(t, (&EvalCmd{Cards: "AsKsQsJsTs9d2c"}).run(a))
	assert.Contains(t, buf.String(), "Royal Flush")

	assert.ErrorIs(t, (&EvalCmd{Cards: "AsKs"}).run(a), poker.ErrEvaluation)
}

func TestGlobalsSetup(t *testing.T) {
	t.Chdir(t.TempDir())
	seed := int64(99)
	g := &Globals{Config: "missing.hcl", LogLevel: "error", Seed: &seed, Workers: 3, NoColor: true}
	var buf bytes.Buffer
	a, err := g.setup(&buf)
	require.NoError(t, err)
	assert.Equal(t, int64(99), a.seed)
	assert.Equal(t, 3, a.cfg.Simulation.Workers)
	assert.Equal(t, log.ErrorLevel, a.logger.GetLevel())
}

func TestGlobalsSetupZeroSeed(t *testing.T) {
	dir := t.TempDir()
	t.Chdir(dir)
	t.Setenv(config.EnvSeed, "")

	zero := int64(0)
	g := &Globals{Config: "missing.hcl", LogLevel: "error", Seed: &zero, NoColor: true}
	a, err := g.setup(io.Discard)
	require.NoError(t, err)
	assert.Zero(t, a.seed, "--seed 0 is a real seed")

	path := filepath.Join(dir, "maverick.hcl")
	require.NoError(t, os.WriteFile(path, []byte("simulation {\n  seed = 0\n}\n"), 0o600))
	g = &Globals{Config: path, LogLevel: "error", NoColor: true}
	a, err = g.setup(io.Discard)
	require.NoError(t, err)
	assert.Zero(t, a.seed, "seed = 0 in the config file is a real seed")
}
