// Package config loads maverick settings from an HCL file, a .env file and
// MAVERICK_* environment variables, in increasing order of precedence.
package config

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"strconv"

	"github.com/charmbracelet/log"
	"github.com/hashicorp/hcl/v2"
	"github.com/hashicorp/hcl/v2/gohcl"
	"github.com/hashicorp/hcl/v2/hclparse"
	"github.com/joho/godotenv"

	"github.com/lox/maverick/analysis"
	"github.com/lox/maverick/decision"
	"github.com/lox/maverick/poker"
)

// Environment variables that override file settings.
const (
	EnvSeed          = "MAVERICK_SEED"
	EnvTrials        = "MAVERICK_TRIALS"
	EnvWorkers       = "MAVERICK_WORKERS"
	EnvLogLevel      = "MAVERICK_LOG_LEVEL"
	EnvCacheCapacity = "MAVERICK_CACHE_CAPACITY"
)

// Opponent range models for range-weighted sampling.
const (
	// RangeModelCategory keeps the configured range on every street.
	RangeModelCategory = "category"
	// RangeModelContinuing uses the configured range preflop and
	// analysis.Continuing once a board is out.
	RangeModelContinuing = "continuing"
)

// ErrInvalidConfig is returned for settings that fail validation.
var ErrInvalidConfig = errors.New("invalid config")

// Config is the resolved configuration.
type Config struct {
	LogLevel   string
	Simulation Simulation
	Cache      Cache
	Decision   Decision
}

// Simulation configures the Monte Carlo simulator.
type Simulation struct {
	Trials    int
	Opponents int
	// Workers of zero means GOMAXPROCS.
	Workers   int
	ChunkSize int

	// Seed is nil when unset, which means seed from the clock.
	Seed         *int64
	Mode         string
	Range        string
	MinCategory  string
	RangeModel   string
	RangeRetries int
}

type Cache struct {
	Enabled  bool
	Capacity int
	Policy   string
}

type Decision struct {
	Style            string
	MinRaiseMultiple float64
	Margins          decision.Margins
}

// Default returns the built-in configuration.
func Default() *Config {
	return &Config{
		LogLevel: "info",
		Simulation: Simulation{
			Trials:       10000,
			Opponents:    1,
			ChunkSize:    analysis.DefaultChunkSize,
			Mode:         analysis.Uniform.String(),
			MinCategory:  string(poker.CategoryMedium),
			RangeModel:   RangeModelCategory,
			RangeRetries: analysis.DefaultRangeRetries,
		},
		Cache: Cache{
			Enabled:  true,
			Capacity: 256,
			Policy:   string(analysis.PolicyLRU),
		},
		Decision: Decision{
			Style:            decision.Balanced.String(),
			MinRaiseMultiple: 2,
			Margins:          decision.DefaultMargins,
		},
	}
}

// fileConfig mirrors the HCL layout. Pointers distinguish an omitted
// attribute from an explicit zero.
type fileConfig struct {
	LogLevel   *string         `hcl:"log_level,optional"`
	Simulation *simulationFile `hcl:"simulation,block"`
	Cache      *cacheFile      `hcl:"cache,block"`
	Decision   *decisionFile   `hcl:"decision,block"`
}

type simulationFile struct {
	Trials       *int    `hcl:"trials,optional"`
	Opponents    *int    `hcl:"opponents,optional"`
	Workers      *int    `hcl:"workers,optional"`
	ChunkSize    *int    `hcl:"chunk_size,optional"`
	Seed         *int64  `hcl:"seed,optional"`
	Mode         *string `hcl:"mode,optional"`
	Range        *string `hcl:"range,optional"`
	MinCategory  *string `hcl:"min_category,optional"`
	RangeModel   *string `hcl:"range_model,optional"`
	RangeRetries *int    `hcl:"range_retries,optional"`
}

type cacheFile struct {
	Enabled  *bool   `hcl:"enabled,optional"`
	Capacity *int    `hcl:"capacity,optional"`
	Policy   *string `hcl:"policy,optional"`
}

type decisionFile struct {
	Style            *string      `hcl:"style,optional"`
	MinRaiseMultiple *float64     `hcl:"min_raise_multiple,optional"`
	Margins          *marginsFile `hcl:"margins,block"`
}

type marginsFile struct {
	Early  *float64 `hcl:"early,optional"`
	Middle *float64 `hcl:"middle,optional"`
	Late   *float64 `hcl:"late,optional"`
	Button *float64 `hcl:"button,optional"`
}

// Load reads the HCL file at path, or uses defaults when path is empty or
// the file does not exist, then applies a .env file from the working
// directory and MAVERICK_* environment overrides. The result is validated.
func Load(path string, logger *log.Logger) (*Config, error) {
	if logger == nil {
		logger = log.Default()
	}
	cfg := Default()

	if path != "" {
		if _, err := os.Stat(path); errors.Is(err, fs.ErrNotExist) {
			logger.Debug("config file not found, using defaults", "path", path)
		} else {
			if err := cfg.loadFile(path); err != nil {
				return nil, err
			}
			logger.Debug("loaded config file", "path", path)
		}
	}

	if err := godotenv.Load(); err != nil && !errors.Is(err, fs.ErrNotExist) {
		return nil, fmt.Errorf("failed to load .env: %w", err)
	}
	if err := cfg.applyEnv(); err != nil {
		return nil, err
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// Parse decodes HCL source over the defaults without consulting the
// environment. filename is only used in diagnostics.
func Parse(src []byte, filename string) (*Config, error) {
	cfg := Default()
	parser := hclparse.NewParser()
	file, diags := parser.ParseHCL(src, filename)
	if diags.HasErrors() {
		return nil, fmt.Errorf("failed to parse HCL file: %s", diags.Error())
	}
	if err := cfg.decode(file.Body); err != nil {
		return nil, err
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

func (c *Config) loadFile(path string) error {
	parser := hclparse.NewParser()
	file, diags := parser.ParseHCLFile(path)
	if diags.HasErrors() {
		return fmt.Errorf("failed to parse HCL file: %s", diags.Error())
	}
	return c.decode(file.Body)
}

func (c *Config) decode(body hcl.Body) error {
	var fc fileConfig
	if diags := gohcl.DecodeBody(body, nil, &fc); diags.HasErrors() {
		return fmt.Errorf("failed to decode HCL: %s", diags.Error())
	}
	fc.applyTo(c)
	return nil
}

func set[T any](dst *T, src *T) {
	if src != nil {
		*dst = *src
	}
}

func (fc *fileConfig) applyTo(c *Config) {
	set(&c.LogLevel, fc.LogLevel)
	if s := fc.Simulation; s != nil {
		set(&c.Simulation.Trials, s.Trials)
		set(&c.Simulation.Opponents, s.Opponents)
		set(&c.Simulation.Workers, s.Workers)
		set(&c.Simulation.ChunkSize, s.ChunkSize)
		if s.Seed != nil {
			c.Simulation.Seed = s.Seed
		}
		set(&c.Simulation.Mode, s.Mode)
		set(&c.Simulation.Range, s.Range)
		set(&c.Simulation.MinCategory, s.MinCategory)
		set(&c.Simulation.RangeModel, s.RangeModel)
		set(&c.Simulation.RangeRetries, s.RangeRetries)
	}
	if cf := fc.Cache; cf != nil {
		set(&c.Cache.Enabled, cf.Enabled)
		set(&c.Cache.Capacity, cf.Capacity)
		set(&c.Cache.Policy, cf.Policy)
	}
	if d := fc.Decision; d != nil {
		set(&c.Decision.Style, d.Style)
		set(&c.Decision.MinRaiseMultiple, d.MinRaiseMultiple)
		if m := d.Margins; m != nil {
			set(&c.Decision.Margins[decision.Early], m.Early)
			set(&c.Decision.Margins[decision.Middle], m.Middle)
			set(&c.Decision.Margins[decision.Late], m.Late)
			set(&c.Decision.Margins[decision.Button], m.Button)
		}
	}
}

func (c *Config) applyEnv() error {
	if v := os.Getenv(EnvSeed); v != "" {
		seed, err := strconv.ParseInt(v, 10, 64)
		if err != nil {
			return fmt.Errorf("%w: %s: %w", ErrInvalidConfig, EnvSeed, err)
		}
		c.Simulation.Seed = &seed
	}
	for _, env := range []struct {
		name string
		dst  *int
	}{
		{EnvTrials, &c.Simulation.Trials},
		{EnvWorkers, &c.Simulation.Workers},
		{EnvCacheCapacity, &c.Cache.Capacity},
	} {
		v := os.Getenv(env.name)
		if v == "" {
			continue
		}
		n, err := strconv.Atoi(v)
		if err != nil {
			return fmt.Errorf("%w: %s: %w", ErrInvalidConfig, env.name, err)
		}
		*env.dst = n
	}
	if v := os.Getenv(EnvLogLevel); v != "" {
		c.LogLevel = v
	}
	return nil
}

// Validate checks every setting that has a fixed domain.
func (c *Config) Validate() error {
	if _, err := log.ParseLevel(c.LogLevel); err != nil {
		return fmt.Errorf("%w: log level %q", ErrInvalidConfig, c.LogLevel)
	}

	s := c.Simulation
	if s.Trials < 1 {
		return fmt.Errorf("%w: trials must be positive, got %d", ErrInvalidConfig, s.Trials)
	}
	if s.Opponents < 1 {
		return fmt.Errorf("%w: opponents must be positive, got %d", ErrInvalidConfig, s.Opponents)
	}
	if s.Workers < 0 {
		return fmt.Errorf("%w: workers must not be negative, got %d", ErrInvalidConfig, s.Workers)
	}
	if s.ChunkSize < 1 {
		return fmt.Errorf("%w: chunk size must be positive, got %d", ErrInvalidConfig, s.ChunkSize)
	}
	if s.RangeRetries < 1 {
		return fmt.Errorf("%w: range retries must be positive, got %d", ErrInvalidConfig, s.RangeRetries)
	}
	if _, err := analysis.ParseSamplingMode(s.Mode); err != nil {
		return fmt.Errorf("%w: %w", ErrInvalidConfig, err)
	}
	if _, _, err := c.OpponentRange(); err != nil {
		return fmt.Errorf("%w: %w", ErrInvalidConfig, err)
	}

	if c.Cache.Enabled && c.Cache.Capacity < 1 {
		return fmt.Errorf("%w: cache capacity must be positive, got %d", ErrInvalidConfig, c.Cache.Capacity)
	}
	if _, err := analysis.ParseEvictionPolicy(c.Cache.Policy); err != nil {
		return fmt.Errorf("%w: %w", ErrInvalidConfig, err)
	}

	if _, err := c.EngineConfig(); err != nil {
		return fmt.Errorf("%w: %w", ErrInvalidConfig, err)
	}
	return nil
}

// OpponentRange returns the opponent range for range-weighted sampling
// and the name that identifies it in cache keys. The base range is the
// notation when set, else hands at or above MinCategory; the continuing
// model wraps it in analysis.Continuing.
func (c *Config) OpponentRange() (string, analysis.RangePredicate, error) {
	var (
		name string
		pred analysis.RangePredicate
	)
	if c.Simulation.Range != "" {
		r, err := analysis.ParseRange(c.Simulation.Range)
		if err != nil {
			return "", nil, err
		}
		name, pred = "range:"+c.Simulation.Range, r.Predicate()
	} else {
		cat, ok := poker.ParseHoleCardCategory(c.Simulation.MinCategory)
		if !ok {
			return "", nil, fmt.Errorf("unknown hand category %q", c.Simulation.MinCategory)
		}
		name, pred = analysis.CategoryRangeName(cat), analysis.MinCategory(cat)
	}

	switch c.Simulation.RangeModel {
	case RangeModelCategory, "":
		return name, pred, nil
	case RangeModelContinuing:
		return "continuing(" + name + ")", analysis.Continuing(pred), nil
	default:
		return "", nil, fmt.Errorf("unknown range model %q", c.Simulation.RangeModel)
	}
}

// EngineConfig converts the decision settings.
func (c *Config) EngineConfig() (decision.Config, error) {
	style, err := decision.ParseStyle(c.Decision.Style)
	if err != nil {
		return decision.Config{}, err
	}
	cfg := decision.Config{
		Margins:          c.Decision.Margins,
		Style:            style,
		MinRaiseMultiple: c.Decision.MinRaiseMultiple,
	}
	if _, err := decision.NewEngine(cfg); err != nil {
		return decision.Config{}, err
	}
	return cfg, nil
}

// SimulatorOptions builds the simulator options, creating the cache when
// it is enabled.
func (c *Config) SimulatorOptions() ([]analysis.Option, error) {
	name, pred, err := c.OpponentRange()
	if err != nil {
		return nil, err
	}
	opts := []analysis.Option{
		analysis.WithWorkers(c.Simulation.Workers),
		analysis.WithChunkSize(c.Simulation.ChunkSize),
		analysis.WithRange(name, pred, c.Simulation.RangeRetries),
	}
	if c.Cache.Enabled {
		policy, err := analysis.ParseEvictionPolicy(c.Cache.Policy)
		if err != nil {
			return nil, err
		}
		cache, err := analysis.NewCache(c.Cache.Capacity, policy)
		if err != nil {
			return nil, err
		}
		opts = append(opts, analysis.WithCache(cache))
	}
	return opts, nil
}
