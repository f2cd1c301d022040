package analysis

import (
	"context"
	"fmt"
	rand "math/rand/v2"
	"runtime"
	"strings"
	"sync/atomic"

	"github.com/coder/quartz"
	"golang.org/x/sync/errgroup"

	"github.com/lox/maverick/internal/randutil"
	"github.com/lox/maverick/poker"
)

// SamplingMode selects how opponent hole cards are dealt.
type SamplingMode uint8

const (
	// Uniform deals opponents uniformly from the remaining deck.
	Uniform SamplingMode = iota
	// RangeWeighted redraws opponent hands until the simulator's range
	// predicate accepts them, up to a bounded number of retries.
	RangeWeighted
)

func (m SamplingMode) String() string {
	switch m {
	case Uniform:
		return "uniform"
	case RangeWeighted:
		return "range"
	default:
		return "unknown"
	}
}

// ParseSamplingMode parses "uniform" or "range" (also "range-weighted").
func ParseSamplingMode(s string) (SamplingMode, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "", "uniform":
		return Uniform, nil
	case "range", "range-weighted", "range_weighted":
		return RangeWeighted, nil
	default:
		return Uniform, fmt.Errorf("%w: unknown sampling mode %q", ErrInvalidRequest, s)
	}
}

const (
	DefaultChunkSize    = 1024
	DefaultRangeRetries = 100
)

// Request describes one equity simulation.
type Request struct {
	Hero      []poker.Card
	Board     []poker.Card
	Dead      []poker.Card
	Opponents int
	Trials    int
	Mode      SamplingMode

	// AllowPartial returns the trials completed so far, marked Partial,
	// when the context is cancelled mid-run instead of failing with the
	// context error. Partial results are never cached.
	AllowPartial bool
}

// Simulator estimates hero equity by dealing random completions of the
// hidden cards. A Simulator is safe for concurrent use.
type Simulator struct {
	workers   int
	chunkSize int
	predicate RangePredicate
	rangeName string
	retries   int
	cache     *Cache
	clock     quartz.Clock
}

// Option configures a Simulator.
type Option func(*Simulator)

// WithWorkers sets the number of goroutines trials are spread across.
// Values below one fall back to GOMAXPROCS.
func WithWorkers(n int) Option {
	return func(s *Simulator) {
		if n > 0 {
			s.workers = n
		}
	}
}

// WithChunkSize sets how many trials share one random stream. Results for a
// given seed depend on the chunk size but never on the worker count.
func WithChunkSize(n int) Option {
	return func(s *Simulator) {
		if n > 0 {
			s.chunkSize = n
		}
	}
}

// WithRange sets the predicate and retry budget used in RangeWeighted mode.
// The name identifies the range in cache keys, so simulators sharing a
// cache must give different ranges different names. An empty name keys
// results to this simulator alone.
func WithRange(name string, pred RangePredicate, retries int) Option {
	return func(s *Simulator) {
		if pred != nil {
			s.predicate = pred
			s.rangeName = name
			if name == "" {
				s.rangeName = fmt.Sprintf("anon@%p", s)
			}
		}
		if retries > 0 {
			s.retries = retries
		}
	}
}

// WithCache memoises completed results in c.
func WithCache(c *Cache) Option {
	return func(s *Simulator) {
		s.cache = c
	}
}

// WithClock sets the clock used to measure Result.Elapsed.
func WithClock(clock quartz.Clock) Option {
	return func(s *Simulator) {
		s.clock = clock
	}
}

// NewSimulator creates a simulator. By default it uses GOMAXPROCS workers,
// no cache and a range of hands categorised Medium or better.
func NewSimulator(opts ...Option) *Simulator {
	s := &Simulator{
		workers:   runtime.GOMAXPROCS(0),
		chunkSize: DefaultChunkSize,
		predicate: MinCategory(poker.CategoryMedium),
		rangeName: CategoryRangeName(poker.CategoryMedium),
		retries:   DefaultRangeRetries,
		clock:     quartz.NewReal(),
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Cache returns the simulator's result cache, or nil.
func (s *Simulator) Cache() *Cache {
	return s.cache
}

// setup is a validated request.
type setup struct {
	hero      poker.Hand
	board     poker.Hand
	dead      poker.Hand
	missing   int
	opponents int
	trials    int
	mode      SamplingMode
	deck      poker.Deck
}

func (s *Simulator) key(p setup) Key {
	k := Key{
		Hero:      p.hero,
		Board:     p.board,
		Dead:      p.dead,
		Opponents: p.opponents,
		Mode:      p.mode,
		Bucket:    TrialBucket(p.trials),
	}
	if p.mode == RangeWeighted {
		k.Range = fmt.Sprintf("%s/%d", s.rangeName, s.retries)
	}
	return k
}

func prepare(req Request) (setup, error) {
	if len(req.Hero) != 2 {
		return setup{}, fmt.Errorf("%w: hero needs 2 cards, got %d", ErrInvalidRequest, len(req.Hero))
	}
	if len(req.Board) > 5 {
		return setup{}, fmt.Errorf("%w: board has %d cards, at most 5 allowed", ErrInvalidRequest, len(req.Board))
	}
	if req.Opponents < 1 {
		return setup{}, fmt.Errorf("%w: need at least one opponent, got %d", ErrInvalidRequest, req.Opponents)
	}
	if req.Trials < 1 {
		return setup{}, fmt.Errorf("%w: need at least one trial, got %d", ErrInvalidRequest, req.Trials)
	}
	if req.Mode != Uniform && req.Mode != RangeWeighted {
		return setup{}, fmt.Errorf("%w: unknown sampling mode %d", ErrInvalidRequest, req.Mode)
	}

	var known poker.Hand
	collect := func(role string, cards []poker.Card) (poker.Hand, error) {
		var h poker.Hand
		for _, c := range cards {
			if !c.Valid() {
				return 0, fmt.Errorf("%w: %s holds an invalid card", poker.ErrInvalidCard, role)
			}
			if known.HasCard(c) {
				return 0, fmt.Errorf("%w: %s card %s is already in play", poker.ErrInvalidCard, role, c)
			}
			known.AddCard(c)
			h.AddCard(c)
		}
		return h, nil
	}

	p := setup{
		opponents: req.Opponents,
		trials:    req.Trials,
		mode:      req.Mode,
		missing:   5 - len(req.Board),
	}
	var err error
	if p.hero, err = collect("hero", req.Hero); err != nil {
		return setup{}, err
	}
	if p.board, err = collect("board", req.Board); err != nil {
		return setup{}, err
	}
	if p.dead, err = collect("dead", req.Dead); err != nil {
		return setup{}, err
	}

	p.deck = poker.NewDeckWithout(known)
	if need := 2*p.opponents + p.missing; need > p.deck.Len() {
		return setup{}, fmt.Errorf("%w: %d opponents and %d board cards need %d cards, deck has %d",
			ErrTooFewCardsRemaining, p.opponents, p.missing, need, p.deck.Len())
	}
	return p, nil
}

// Run simulates req. rng is read exactly once to derive the base seed of the
// per-chunk streams, so a given rng state reproduces identical counts
// regardless of worker count.
//
// When a cache is configured and AllowPartial is not set, results are
// looked up and stored by request fingerprint.
func (s *Simulator) Run(ctx context.Context, req Request, rng *rand.Rand) (Result, error) {
	p, err := prepare(req)
	if err != nil {
		return Result{}, err
	}
	seed := rng.Uint64()

	if s.cache == nil || req.AllowPartial {
		return s.simulate(ctx, p, seed, req.AllowPartial)
	}
	return s.cache.Do(ctx, s.key(p), func(ctx context.Context) (Result, error) {
		return s.simulate(ctx, p, seed, false)
	})
}

func (s *Simulator) simulate(ctx context.Context, p setup, seed uint64, allowPartial bool) (Result, error) {
	start := s.clock.Now()

	chunks := (p.trials + s.chunkSize - 1) / s.chunkSize
	workers := min(s.workers, chunks)
	tallies := make([]Result, workers)

	var next atomic.Int64
	g, gctx := errgroup.WithContext(ctx)
	for w := range tallies {
		tally := &tallies[w]
		g.Go(func() error {
			for {
				i := int(next.Add(1) - 1)
				if i >= chunks {
					return nil
				}
				n := min(s.chunkSize, p.trials-i*s.chunkSize)
				if err := s.runChunk(gctx, &p, randutil.Stream(seed, uint64(i)), n, tally); err != nil {
					return err
				}
			}
		})
	}
	err := g.Wait()

	var total Result
	for _, t := range tallies {
		total.add(t)
	}
	total.Elapsed = s.clock.Since(start)

	if err != nil {
		if allowPartial && ctx.Err() != nil {
			total.Partial = true
			return total, nil
		}
		return Result{}, err
	}
	return total, nil
}

// runChunk plays n trials from one stream, adding them to tally.
func (s *Simulator) runChunk(ctx context.Context, p *setup, rng *rand.Rand, n int, tally *Result) error {
	opps := make([]poker.Hand, p.opponents)
	runout := make([]poker.Card, p.missing)

	for i := 0; i < n; i++ {
		if err := ctx.Err(); err != nil {
			return err
		}

		deck := p.deck
		for o := range opps {
			hole, fellBack, err := s.dealOpponent(&deck, rng, p)
			if err != nil {
				return err
			}
			if fellBack {
				tally.Fallbacks++
			}
			opps[o] = hole
		}

		board := p.board
		if err := deck.DrawInto(rng, runout); err != nil {
			return err
		}
		for _, c := range runout {
			board.AddCard(c)
		}

		hero := poker.EvaluateHand(p.hero | board)
		tied := 1
		lost := false
		for _, opp := range opps {
			r := poker.EvaluateHand(opp | board)
			if r > hero {
				lost = true
				break
			}
			if r == hero {
				tied++
			}
		}

		tally.Trials++
		switch {
		case lost:
			tally.Losses++
		case tied > 1:
			tally.Ties++
			tally.TiedShares += tied
		default:
			tally.Wins++
		}
	}
	return nil
}

// dealOpponent deals two hole cards. In RangeWeighted mode it redraws until
// the predicate accepts, returning the cards to the deck between attempts;
// once the retries are spent it keeps a uniform deal and reports fellBack.
func (s *Simulator) dealOpponent(deck *poker.Deck, rng *rand.Rand, p *setup) (hole poker.Hand, fellBack bool, err error) {
	var cards [2]poker.Card
	if p.mode == RangeWeighted {
		for attempt := 0; attempt < s.retries; attempt++ {
			if err := deck.DrawInto(rng, cards[:]); err != nil {
				return 0, false, err
			}
			if s.predicate(cards, p.board, rng) {
				return poker.NewHand(cards[0], cards[1]), false, nil
			}
			deck.PutBack(2)
		}
		fellBack = true
	}
	if err := deck.DrawInto(rng, cards[:]); err != nil {
		return 0, false, err
	}
	return poker.NewHand(cards[0], cards[1]), fellBack, nil
}
