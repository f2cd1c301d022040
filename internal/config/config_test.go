package config

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/charmbracelet/log"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/lox/maverick/analysis"
	"github.com/lox/maverick/decision"
	"github.com/lox/maverick/internal/randutil"
	"github.com/lox/maverick/poker"
)

const sampleConfig = `
log_level = "debug"

simulation {
  trials    = 50000
  opponents = 3
  workers   = 4
  seed      = 42
  mode      = "range"
  range     = "TT+,AQs+,AK"
}

cache {
  capacity = 64
  policy   = "2q"
}

decision {
  style = "tight"

  margins {
    early  = 0.12
    button = 0
  }
}
`

func quietLogger() *log.Logger {
	return log.NewWithOptions(os.Stderr, log.Options{Level: log.ErrorLevel})
}

func TestDefault(t *testing.T) {
	cfg := Default()
	require.NoError(t, cfg.Validate())
	assert.Equal(t, 10000, cfg.Simulation.Trials)
	assert.Equal(t, 1, cfg.Simulation.Opponents)
	assert.Equal(t, decision.DefaultMargins, cfg.Decision.Margins)
	assert.True(t, cfg.Cache.Enabled)
	assert.Nil(t, cfg.Simulation.Seed, "no seed means a clock seed")
	assert.Equal(t, RangeModelCategory, cfg.Simulation.RangeModel)
}

func TestParse(t *testing.T) {
	cfg, err := Parse([]byte(sampleConfig), "maverick.hcl")
	require.NoError(t, err)

	assert.Equal(t, "debug", cfg.LogLevel)
	assert.Equal(t, 50000, cfg.Simulation.Trials)
	assert.Equal(t, 3, cfg.Simulation.Opponents)
	assert.Equal(t, 4, cfg.Simulation.Workers)
	require.NotNil(t, cfg.Simulation.Seed)
	assert.Equal(t, int64(42), *cfg.Simulation.Seed)
	assert.Equal(t, "range", cfg.Simulation.Mode)
	// Omitted attributes keep their defaults
	assert.Equal(t, analysis.DefaultChunkSize, cfg.Simulation.ChunkSize)
	assert.True(t, cfg.Cache.Enabled)
	assert.Equal(t, 64, cfg.Cache.Capacity)
	assert.Equal(t, "2q", cfg.Cache.Policy)

	assert.Equal(t, decision.Margins{0.12, 0.07, 0.05, 0}, cfg.Decision.Margins)
	engine, err := cfg.EngineConfig()
	require.NoError(t, err)
	assert.Equal(t, decision.Tight, engine.Style)
	assert.Equal(t, 2.0, engine.MinRaiseMultiple)
}

func TestParseErrors(t *testing.T) {
	tests := []struct {
		name string
		src  string
	}{
		{name: "syntax error", src: `simulation {`},
		{name: "unknown attribute", src: `simulation { rounds = 3 }`},
		{name: "wrong type", src: `simulation { trials = "many" }`},
		{name: "zero trials", src: `simulation { trials = 0 }`},
		{name: "bad mode", src: `simulation { mode = "weighted" }`},
		{name: "bad range", src: `simulation { range = "AXs" }`},
		{name: "bad category", src: `simulation { min_category = "monster" }`},
		{name: "bad range model", src: `simulation { range_model = "sticky" }`},
		{name: "bad policy", src: `cache { policy = "fifo" }`},
		{name: "margins increase", src: `decision { margins { button = 0.2 } }`},
		{name: "bad style", src: `decision { style = "maniac" }`},
		{name: "bad log level", src: `log_level = "loud"`},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := Parse([]byte(tt.src), "bad.hcl")
			assert.Error(t, err)
		})
	}

	_, err := Parse([]byte(`simulation { opponents = 0 }`), "bad.hcl")
	assert.ErrorIs(t, err, ErrInvalidConfig)
}

func TestParseExplicitZeroSeed(t *testing.T) {
	cfg, err := Parse([]byte(`simulation { seed = 0 }`), "zero.hcl")
	require.NoError(t, err)
	require.NotNil(t, cfg.Simulation.Seed)
	assert.Zero(t, *cfg.Simulation.Seed)
}

func TestLoadEnvZeroSeed(t *testing.T) {
	t.Chdir(t.TempDir())
	t.Setenv(EnvSeed, "0")
	cfg, err := Load("", quietLogger())
	require.NoError(t, err)
	require.NotNil(t, cfg.Simulation.Seed)
	assert.Zero(t, *cfg.Simulation.Seed)
}

func TestLoadMissingFileUsesDefaults(t *testing.T) {
	t.Chdir(t.TempDir())
	cfg, err := Load(filepath.Join(t.TempDir(), "missing.hcl"), quietLogger())
	require.NoError(t, err)
	assert.Equal(t, Default(), cfg)
}

func TestLoadFileWithEnvOverrides(t *testing.T) {
	dir := t.TempDir()
	t.Chdir(dir)
	path := filepath.Join(dir, "maverick.hcl")
	require.NoError(t, os.WriteFile(path, []byte(sampleConfig), 0o600))

	t.Setenv(EnvSeed, "7")
	t.Setenv(EnvTrials, "2000")
	t.Setenv(EnvWorkers, "2")
	t.Setenv(EnvLogLevel, "warn")
	t.Setenv(EnvCacheCapacity, "16")

	cfg, err := Load(path, quietLogger())
	require.NoError(t, err)
	require.NotNil(t, cfg.Simulation.Seed)
	assert.Equal(t, int64(7), *cfg.Simulation.Seed)
	assert.Equal(t, 2000, cfg.Simulation.Trials)
	assert.Equal(t, 2, cfg.Simulation.Workers)
	assert.Equal(t, "warn", cfg.LogLevel)
	assert.Equal(t, 16, cfg.Cache.Capacity)
	// File values without an override survive
	assert.Equal(t, 3, cfg.Simulation.Opponents)
}

func TestLoadInvalidEnv(t *testing.T) {
	t.Chdir(t.TempDir())
	t.Setenv(EnvTrials, "lots")
	_, err := Load("", quietLogger())
	assert.ErrorIs(t, err, ErrInvalidConfig)
}

func TestLoadDotEnv(t *testing.T) {
	dir := t.TempDir()
	t.Chdir(dir)
	require.NoError(t, os.WriteFile(filepath.Join(dir, ".env"), []byte("MAVERICK_SEED=99\nMAVERICK_CACHE_CAPACITY=8\n"), 0o600))
	// The real environment wins over .env
	t.Setenv(EnvCacheCapacity, "32")
	// t.Setenv restores the variable afterwards; values set by .env are
	// cleared here so they do not leak into other tests.
	t.Setenv(EnvSeed, "")
	require.NoError(t, os.Unsetenv(EnvSeed))

	cfg, err := Load("", quietLogger())
	require.NoError(t, err)
	require.NotNil(t, cfg.Simulation.Seed)
	assert.Equal(t, int64(99), *cfg.Simulation.Seed)
	assert.Equal(t, 32, cfg.Cache.Capacity)
}

func TestSimulatorOptions(t *testing.T) {
	cfg := Default()
	opts, err := cfg.SimulatorOptions()
	require.NoError(t, err)
	sim := analysis.NewSimulator(opts...)
	require.NotNil(t, sim.Cache())

	cfg.Cache.Enabled = false
	opts, err = cfg.SimulatorOptions()
	require.NoError(t, err)
	assert.Nil(t, analysis.NewSimulator(opts...).Cache())
}

func TestOpponentRange(t *testing.T) {
	hole := func(s string) [2]poker.Card {
		c := poker.MustParseCards(s)
		return [2]poker.Card{c[0], c[1]}
	}
	board := poker.NewHand(poker.MustParseCards("Kd 8s 2c")...)
	accepted := func(pred analysis.RangePredicate, cards string) int {
		rng := randutil.New(1)
		n := 0
		for range 1000 {
			if pred(hole(cards), board, rng) {
				n++
			}
		}
		return n
	}

	tests := []struct {
		name     string
		src      string
		wantName string
		// 83o pairs the board but is neither suited nor connected
		wantMin, wantMax int
	}{
		{"category", ``, "category:Medium", 0, 0},
		{"notation", `simulation { range = "AA" }`, "range:AA", 0, 0},
		{"continuing", `simulation { range_model = "continuing" }`, "continuing(category:Medium)", 700, 900},
		{
			"continuing notation",
			`simulation {
  range       = "AA"
  range_model = "continuing"
}`,
			"continuing(range:AA)", 700, 900,
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg, err := Parse([]byte(tt.src), "range.hcl")
			require.NoError(t, err)
			name, pred, err := cfg.OpponentRange()
			require.NoError(t, err)
			assert.Equal(t, tt.wantName, name)
			n := accepted(pred, "8c 3h")
			assert.GreaterOrEqual(t, n, tt.wantMin)
			assert.LessOrEqual(t, n, tt.wantMax)
		})
	}
}

func TestSimulatorOptionsContinuingRange(t *testing.T) {
	cfg, err := Parse([]byte(`
simulation {
  mode          = "range"
  min_category  = "premium"
  range_model   = "continuing"
  range_retries = 10
}
cache {
  enabled = false
}
`), "continuing.hcl")
	require.NoError(t, err)

	opts, err := cfg.SimulatorOptions()
	require.NoError(t, err)
	sim := analysis.NewSimulator(opts...)

	run := func(board string) analysis.Result {
		res, err := sim.Run(context.Background(), analysis.Request{
			Hero:      poker.MustParseCards("Jc Jd"),
			Board:     poker.MustParseCards(board),
			Opponents: 1,
			Trials:    2000,
			Mode:      analysis.RangeWeighted,
		}, randutil.New(4))
		require.NoError(t, err)
		return res
	}

	// Premium hands rarely turn up in ten uniform draws, but once the flop
	// is out the continuing range accepts most pairs and draws.
	preflop := run("")
	flop := run("9h 8h 2s")
	assert.Greater(t, preflop.Fallbacks, 100)
	assert.Less(t, flop.Fallbacks, preflop.Fallbacks/10)
}
