package analysis

import (
	"context"
	"errors"
	"fmt"
	"math/bits"
	"strings"
	"sync/atomic"

	lru "github.com/hashicorp/golang-lru/v2"
	"golang.org/x/sync/singleflight"

	"github.com/lox/maverick/poker"
)

// EvictionPolicy selects how a full Cache chooses entries to drop.
type EvictionPolicy string

const (
	// PolicyLRU evicts the least recently used entry.
	PolicyLRU EvictionPolicy = "lru"
	// Policy2Q keeps recently and frequently used entries in separate queues
	// so that a burst of one-off requests does not flush hot entries.
	Policy2Q EvictionPolicy = "2q"
)

// ParseEvictionPolicy parses "lru" or "2q" case-insensitively.
func ParseEvictionPolicy(s string) (EvictionPolicy, error) {
	switch p := EvictionPolicy(strings.ToLower(strings.TrimSpace(s))); p {
	case PolicyLRU, Policy2Q:
		return p, nil
	case "":
		return PolicyLRU, nil
	default:
		return "", fmt.Errorf("unknown eviction policy %q", s)
	}
}

// Key fingerprints a simulation request. Card sets are bitsets, so the
// order cards were supplied in does not matter.
type Key struct {
	Hero      poker.Hand
	Board     poker.Hand
	Dead      poker.Hand
	Opponents int
	Mode      SamplingMode
	Bucket    int
	// Range names the opponent range and retry budget; empty when Mode is
	// Uniform.
	Range     string
}

// TrialBucket rounds a trial count up to the next power of two so that
// requests for similar precision share cache entries.
func TrialBucket(trials int) int {
	if trials <= 1 {
		return 1
	}
	return 1 << bits.Len(uint(trials-1))
}

func (k Key) String() string {
	s := fmt.Sprintf("%x/%x/%x/%d/%s/%d", uint64(k.Hero), uint64(k.Board), uint64(k.Dead), k.Opponents, k.Mode, k.Bucket)
	if k.Range != "" {
		s += "/" + k.Range
	}
	return s
}

// store is the subset of the golang-lru caches we rely on.
type store interface {
	Get(Key) (Result, bool)
	Add(Key, Result)
	Len() int
	Purge()
}

type lruStore struct{ *lru.Cache[Key, Result] }

func (s lruStore) Add(k Key, r Result) { s.Cache.Add(k, r) }

// CacheStats is a snapshot of cache counters.
type CacheStats struct {
	Hits    uint64
	Misses  uint64
	Shared  uint64
	Entries int
}

// Cache memoises simulation Results by request fingerprint. Capacity and
// eviction policy are fixed at construction. Concurrent misses for the same
// key run a single simulation and every caller receives its Result.
//
// Entries never go stale because a Result is a pure function of its
// request; they only leave the cache to make room.
type Cache struct {
	store store
	group singleflight.Group

	hits   atomic.Uint64
	misses atomic.Uint64
	shared atomic.Uint64
}

// NewCache creates a cache holding at most capacity results.
func NewCache(capacity int, policy EvictionPolicy) (*Cache, error) {
	if capacity <= 0 {
		return nil, fmt.Errorf("cache capacity must be positive, got %d", capacity)
	}
	c := &Cache{}
	switch policy {
	case PolicyLRU, "":
		l, err := lru.New[Key, Result](capacity)
		if err != nil {
			return nil, err
		}
		c.store = lruStore{l}
	case Policy2Q:
		q, err := lru.New2Q[Key, Result](capacity)
		if err != nil {
			return nil, err
		}
		c.store = q
	default:
		return nil, fmt.Errorf("unknown eviction policy %q", policy)
	}
	return c, nil
}

// Get returns the cached result for key, if any.
func (c *Cache) Get(key Key) (Result, bool) {
	r, ok := c.store.Get(key)
	if ok {
		c.hits.Add(1)
	}
	return r, ok
}

// Do returns the cached result for key or computes it with fn. Only one fn
// runs per key at a time; other callers wait for it and share the outcome.
// A waiter whose own context ends stops waiting and returns ctx.Err(). If the
// running computation was cancelled by its caller, live waiters retry rather
// than inherit that cancellation. Errors are never cached.
func (c *Cache) Do(ctx context.Context, key Key, fn func(context.Context) (Result, error)) (Result, error) {
	for {
		if r, ok := c.Get(key); ok {
			return r, nil
		}

		ch := c.group.DoChan(key.String(), func() (any, error) {
			if r, ok := c.store.Get(key); ok {
				c.hits.Add(1)
				return r, nil
			}
			c.misses.Add(1)
			r, err := fn(ctx)
			if err != nil {
				return nil, err
			}
			c.store.Add(key, r)
			return r, nil
		})

		select {
		case <-ctx.Done():
			return Result{}, ctx.Err()
		case res := <-ch:
			if res.Shared {
				c.shared.Add(1)
			}
			if res.Err != nil {
				if isContextErr(res.Err) && ctx.Err() == nil {
					continue
				}
				return Result{}, res.Err
			}
			return res.Val.(Result), nil
		}
	}
}

// Len returns the number of cached results.
func (c *Cache) Len() int {
	return c.store.Len()
}

// Purge drops every entry. Counters are kept.
func (c *Cache) Purge() {
	c.store.Purge()
}

// Stats returns a snapshot of the cache counters.
func (c *Cache) Stats() CacheStats {
	return CacheStats{
		Hits:    c.hits.Load(),
		Misses:  c.misses.Load(),
		Shared:  c.shared.Load(),
		Entries: c.store.Len(),
	}
}

func isContextErr(err error) bool {
	return errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded)
}
