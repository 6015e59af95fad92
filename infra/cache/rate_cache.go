// Package cache holds the process-wide mid-market rate snapshot.
package cache

import (
	"context"
	"log/slog"
	"maps"
	"sync/atomic"
	"time"

	"github.com/amirasaad/remitquote/pkg/provider"
	"golang.org/x/sync/singleflight"
)

const refreshKey = "latest"

// Snapshot is an immutable rate table. Rates are units per reference currency.
// Callers must not mutate Rates.
type Snapshot struct {
	Rates     map[string]float64 `json:"rates"`
	FetchedAt time.Time          `json:"fetchedAt"`
	IsLive    bool               `json:"isLive"`
}

// SnapshotStore persists the last good live snapshot so other instances can start warm.
type SnapshotStore interface {
	// Load returns the stored snapshot, or nil if none exists
	Load(ctx context.Context) (*Snapshot, error)
	Save(ctx context.Context, s *Snapshot) error
}

// Options tunes a RateCache.
type Options struct {
	TTL             time.Duration
	FailureCooldown time.Duration
	FetchTimeout    time.Duration
	// Store is optional.
	Store SnapshotStore
	// Clock defaults to time.Now.
	Clock func() time.Time
}

// RateCache serves mid-market rates with bounded staleness.
//
// Reads never block on each other. A stale read outside the failure cooldown
// joins a single in-flight refresh; everything else is served from the current
// snapshot, which is replaced as a whole and never modified in place.
type RateCache struct {
	source   provider.RateSource
	seed     map[string]float64
	ttl      time.Duration
	cooldown time.Duration
	timeout  time.Duration
	store    SnapshotStore
	now      func() time.Time
	logger   *slog.Logger

	snap         atomic.Pointer[Snapshot]
	lastFailedAt atomic.Int64
	group        singleflight.Group
}

var _ provider.RateCache = (*RateCache)(nil)

// NewRateCache creates a cache that starts on the seed table.
func NewRateCache(
	source provider.RateSource,
	seed map[string]float64,
	opts Options,
	logger *slog.Logger,
) *RateCache {
	if opts.Clock == nil {
		opts.Clock = time.Now
	}
	c := &RateCache{
		source:   source,
		seed:     maps.Clone(seed),
		ttl:      opts.TTL,
		cooldown: opts.FailureCooldown,
		timeout:  opts.FetchTimeout,
		store:    opts.Store,
		now:      opts.Clock,
		logger:   logger.With("component", "rate_cache", "source", source.Name()),
	}
	c.snap.Store(&Snapshot{Rates: c.seed})
	return c
}

// Rates returns the current snapshot, refreshing it first when it is stale
// and a refresh is allowed. stale is true unless the data is live and within TTL.
func (c *RateCache) Rates(ctx context.Context) (snap *Snapshot, stale bool) {
	snap = c.snap.Load()
	if c.isFresh(snap) {
		return snap, false
	}
	if !c.source.Enabled() || c.inCooldown() {
		return snap, true
	}

	ch := c.group.DoChan(refreshKey, func() (any, error) {
		return c.refresh(), nil
	})
	select {
	case res := <-ch:
		snap = res.Val.(*Snapshot)
	case <-ctx.Done():
		c.logger.Debug("Caller gave up waiting for refresh", "error", ctx.Err())
		return c.snap.Load(), true
	}
	return snap, !c.isFresh(snap)
}

// MidMarketRate implements provider.MidMarketRates by triangulating through
// the reference currency.
func (c *RateCache) MidMarketRate(ctx context.Context, from, to string) (provider.RateQuote, bool) {
	snap, stale := c.Rates(ctx)
	fromRate, ok := snap.Rates[from]
	if !ok || fromRate <= 0 {
		return provider.RateQuote{}, false
	}
	toRate, ok := snap.Rates[to]
	if !ok {
		return provider.RateQuote{}, false
	}

	q := provider.RateQuote{
		Rate:   toRate / fromRate,
		Stale:  stale,
		IsLive: snap.IsLive,
	}
	if snap.IsLive {
		q.UpdatedAt = snap.FetchedAt
	}
	return q, true
}

// refresh runs inside the single flight. It re-checks the snapshot and the
// cooldown so a caller that raced a finished flight never fetches twice.
func (c *RateCache) refresh() *Snapshot {
	cur := c.snap.Load()
	if c.isFresh(cur) || c.inCooldown() {
		return cur
	}

	ctx, cancel := context.WithTimeout(context.Background(), c.timeout)
	defer cancel()

	live, err := c.source.Latest(ctx)
	if err != nil {
		c.lastFailedAt.Store(c.now().UnixNano())
		c.logger.Warn("Live rate refresh failed, serving previous snapshot",
			"error", err,
			"is_live", cur.IsLive,
			"cooldown", c.cooldown,
		)
		return cur
	}

	next := c.merge(live, c.now())
	c.snap.Store(next)
	c.lastFailedAt.Store(0)
	c.logger.Info("Live rates refreshed", "count", len(live))

	c.persist(next)
	return next
}

func (c *RateCache) persist(s *Snapshot) {
	if c.store == nil {
		return
	}
	ctx, cancel := context.WithTimeout(context.Background(), c.timeout)
	defer cancel()
	if err := c.store.Save(ctx, s); err != nil {
		c.logger.Warn("Failed to persist rate snapshot", "error", err)
	}
}

// Warm loads the last stored live snapshot if it is newer than the current one.
func (c *RateCache) Warm(ctx context.Context) error {
	if c.store == nil {
		return nil
	}
	stored, err := c.store.Load(ctx)
	if err != nil {
		return err
	}
	if stored == nil || !stored.IsLive || len(stored.Rates) == 0 {
		c.logger.Debug("No stored live snapshot to warm from")
		return nil
	}
	cur := c.snap.Load()
	if cur.IsLive && !stored.FetchedAt.After(cur.FetchedAt) {
		return nil
	}
	next := c.merge(stored.Rates, stored.FetchedAt)
	if c.snap.CompareAndSwap(cur, next) {
		c.logger.Info("Rate cache warmed from store",
			"fetched_at", stored.FetchedAt,
			"count", len(stored.Rates),
		)
	}
	return nil
}

func (c *RateCache) merge(live map[string]float64, fetchedAt time.Time) *Snapshot {
	rates := make(map[string]float64, len(c.seed)+len(live))
	maps.Copy(rates, c.seed)
	for code, rate := range live {
		if rate > 0 {
			rates[code] = rate
		}
	}
	return &Snapshot{Rates: rates, FetchedAt: fetchedAt, IsLive: true}
}

func (c *RateCache) isFresh(s *Snapshot) bool {
	return s.IsLive && c.now().Sub(s.FetchedAt) < c.ttl
}

func (c *RateCache) inCooldown() bool {
	last := c.lastFailedAt.Load()
	if last == 0 {
		return false
	}
	return c.now().Sub(time.Unix(0, last)) < c.cooldown
}

// Status reports the cache state without triggering a refresh.
func (c *RateCache) Status() provider.RateStatus {
	snap := c.snap.Load()
	s := provider.RateStatus{
		Source:     c.source.Name(),
		Enabled:    c.source.Enabled(),
		IsLive:     snap.IsLive,
		Stale:      !c.isFresh(snap),
		Currencies: len(snap.Rates),
	}
	if snap.IsLive {
		t := snap.FetchedAt
		s.FetchedAt = &t
	}
	if last := c.lastFailedAt.Load(); last != 0 {
		t := time.Unix(0, last)
		s.LastFailedAt = &t
	}
	return s
}
