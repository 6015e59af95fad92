package cache

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var seedRates = map[string]float64{"USD": 1, "EUR": 0.952, "BRL": 5.8}

type fakeClock struct {
	mu  sync.Mutex
	now time.Time
}

func newFakeClock() *fakeClock {
	return &fakeClock{now: time.Date(2025, time.March, 3, 12, 0, 0, 0, time.UTC)}
}

func (f *fakeClock) Now() time.Time {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.now
}

func (f *fakeClock) Advance(d time.Duration) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.now = f.now.Add(d)
}

// fakeSource returns rates or err. When gate is non-nil each call blocks on it.
type fakeSource struct {
	mu      sync.Mutex
	rates   map[string]float64
	err     error
	enabled bool
	gate    chan struct{}
	calls   atomic.Int32
}

func (f *fakeSource) Name() string  { return "fake" }
func (f *fakeSource) Enabled() bool { return f.enabled }

func (f *fakeSource) Latest(ctx context.Context) (map[string]float64, error) {
	f.calls.Add(1)
	f.mu.Lock()
	gate, rates, err := f.gate, f.rates, f.err
	f.mu.Unlock()
	if gate != nil {
		select {
		case <-gate:
		case <-ctx.Done():
			return nil, ctx.Err()
		}
	}
	return rates, err
}

func (f *fakeSource) set(rates map[string]float64, err error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.rates, f.err = rates, err
}

func (f *fakeSource) block() chan struct{} {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.gate = make(chan struct{})
	return f.gate
}

func newTestCache(src *fakeSource, clock *fakeClock, store SnapshotStore) *RateCache {
	logger := slog.New(slog.NewTextHandler(io.Discard, nil))
	return NewRateCache(src, seedRates, Options{
		TTL:             10 * time.Minute,
		FailureCooldown: time.Minute,
		FetchTimeout:    time.Second,
		Store:           store,
		Clock:           clock.Now,
	}, logger)
}

func TestRateCache_DisabledSourceServesSeed(t *testing.T) {
	src := &fakeSource{enabled: false}
	c := newTestCache(src, newFakeClock(), nil)

	snap, stale := c.Rates(context.Background())
	assert.True(t, stale)
	assert.False(t, snap.IsLive)
	assert.InDelta(t, 5.8, snap.Rates["BRL"], 1e-9)
	assert.Zero(t, src.calls.Load())

	q, ok := c.MidMarketRate(context.Background(), "USD", "BRL")
	require.True(t, ok)
	assert.InDelta(t, 5.8, q.Rate, 1e-9)
	assert.True(t, q.Stale)
	assert.True(t, q.UpdatedAt.IsZero())
}

func TestRateCache_RefreshMergesLiveOverSeed(t *testing.T) {
	src := &fakeSource{enabled: true, rates: map[string]float64{"USD": 1, "BRL": 6.0, "JPY": 150}}
	clock := newFakeClock()
	c := newTestCache(src, clock, nil)

	snap, stale := c.Rates(context.Background())
	assert.False(t, stale)
	assert.True(t, snap.IsLive)
	assert.Equal(t, clock.Now(), snap.FetchedAt)
	assert.InDelta(t, 6.0, snap.Rates["BRL"], 1e-9, "live wins")
	assert.InDelta(t, 0.952, snap.Rates["EUR"], 1e-9, "seed fills gaps")
	assert.InDelta(t, 150.0, snap.Rates["JPY"], 1e-9)

	// Fresh reads do not fetch again.
	clock.Advance(9 * time.Minute)
	_, stale = c.Rates(context.Background())
	assert.False(t, stale)
	assert.EqualValues(t, 1, src.calls.Load())

	// Past TTL a new fetch happens.
	clock.Advance(2 * time.Minute)
	_, stale = c.Rates(context.Background())
	assert.False(t, stale)
	assert.EqualValues(t, 2, src.calls.Load())
}

func TestRateCache_FailureCooldownServesStale(t *testing.T) {
	src := &fakeSource{enabled: true, rates: map[string]float64{"USD": 1, "BRL": 6.0}}
	clock := newFakeClock()
	c := newTestCache(src, clock, nil)

	before, ok := c.MidMarketRate(context.Background(), "USD", "BRL")
	require.True(t, ok)
	require.False(t, before.Stale)

	// Expire the snapshot and make the source fail.
	clock.Advance(11 * time.Minute)
	src.set(nil, errors.New("connection refused"))

	q, ok := c.MidMarketRate(context.Background(), "USD", "BRL")
	require.True(t, ok)
	assert.True(t, q.Stale)
	assert.InDelta(t, before.Rate, q.Rate, 1e-12)
	assert.EqualValues(t, 2, src.calls.Load())

	// Within the cooldown no further fetch is attempted.
	clock.Advance(30 * time.Second)
	q, ok = c.MidMarketRate(context.Background(), "USD", "BRL")
	require.True(t, ok)
	assert.True(t, q.Stale)
	assert.InDelta(t, before.Rate, q.Rate, 1e-12)
	assert.EqualValues(t, 2, src.calls.Load())
	require.NotNil(t, c.Status().LastFailedAt)

	// After the cooldown the source is retried and recovers.
	clock.Advance(31 * time.Second)
	src.set(map[string]float64{"USD": 1, "BRL": 6.2}, nil)
	q, ok = c.MidMarketRate(context.Background(), "USD", "BRL")
	require.True(t, ok)
	assert.False(t, q.Stale)
	assert.InDelta(t, 6.2, q.Rate, 1e-12)
	assert.EqualValues(t, 3, src.calls.Load())
	assert.Nil(t, c.Status().LastFailedAt)
}

func TestRateCache_FailureBeforeFirstSuccessKeepsSeed(t *testing.T) {
	src := &fakeSource{enabled: true, err: errors.New("503")}
	c := newTestCache(src, newFakeClock(), nil)

	snap, stale := c.Rates(context.Background())
	assert.True(t, stale)
	assert.False(t, snap.IsLive)
	assert.Equal(t, seedRates, snap.Rates)
}

func TestRateCache_SingleRefreshPerStaleBurst(t *testing.T) {
	src := &fakeSource{enabled: true, err: errors.New("timeout")}
	clock := newFakeClock()
	c := newTestCache(src, clock, nil)

	// Initial failure starts the cooldown.
	_, stale := c.Rates(context.Background())
	require.True(t, stale)
	require.EqualValues(t, 1, src.calls.Load())

	clock.Advance(2 * time.Minute)
	src.set(map[string]float64{"USD": 1, "BRL": 5.9}, nil)
	gate := src.block()

	const callers = 50
	var wg sync.WaitGroup
	results := make(chan bool, callers)
	for range callers {
		wg.Add(1)
		go func() {
			defer wg.Done()
			_, stale := c.Rates(context.Background())
			results <- stale
		}()
	}

	require.Eventually(t, func() bool { return src.calls.Load() == 2 }, time.Second, time.Millisecond)
	time.Sleep(20 * time.Millisecond)
	close(gate)
	wg.Wait()
	close(results)

	assert.EqualValues(t, 2, src.calls.Load(), "one fetch for the whole burst")
	for stale := range results {
		assert.False(t, stale)
	}
}

func TestRateCache_CallerContextCancelledWhileWaiting(t *testing.T) {
	src := &fakeSource{enabled: true, rates: map[string]float64{"USD": 1, "BRL": 5.9}}
	gate := src.block()
	c := newTestCache(src, newFakeClock(), nil)

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	snap, stale := c.Rates(ctx)
	assert.True(t, stale)
	assert.False(t, snap.IsLive)

	// The shared flight is not cancelled by the caller going away.
	close(gate)
	require.Eventually(t, func() bool { return c.Status().IsLive }, time.Second, time.Millisecond)
}

func TestRateCache_MidMarketRateTriangulates(t *testing.T) {
	src := &fakeSource{enabled: false}
	c := newTestCache(src, newFakeClock(), nil)

	q, ok := c.MidMarketRate(context.Background(), "EUR", "BRL")
	require.True(t, ok)
	assert.InDelta(t, 5.8/0.952, q.Rate, 1e-12)

	_, ok = c.MidMarketRate(context.Background(), "USD", "JPY")
	assert.False(t, ok)
	_, ok = c.MidMarketRate(context.Background(), "JPY", "USD")
	assert.False(t, ok)
}

func TestRateCache_PersistsAndWarms(t *testing.T) {
	store := NewMemorySnapshotStore()
	clock := newFakeClock()

	src := &fakeSource{enabled: true, rates: map[string]float64{"USD": 1, "BRL": 6.1}}
	first := newTestCache(src, clock, store)
	_, stale := first.Rates(context.Background())
	require.False(t, stale)

	saved, err := store.Load(context.Background())
	require.NoError(t, err)
	require.NotNil(t, saved)
	assert.True(t, saved.IsLive)

	// A second instance with a failing source starts from the stored snapshot.
	down := &fakeSource{enabled: true, err: errors.New("down")}
	second := newTestCache(down, clock, store)
	require.NoError(t, second.Warm(context.Background()))

	st := second.Status()
	assert.True(t, st.IsLive)
	assert.False(t, st.Stale)
	require.NotNil(t, st.FetchedAt)

	q, ok := second.MidMarketRate(context.Background(), "USD", "BRL")
	require.True(t, ok)
	assert.InDelta(t, 6.1, q.Rate, 1e-12)
	assert.Zero(t, down.calls.Load())
}

func TestRateCache_WarmWithoutStore(t *testing.T) {
	c := newTestCache(&fakeSource{}, newFakeClock(), nil)
	assert.NoError(t, c.Warm(context.Background()))
	assert.False(t, c.Status().IsLive)
}
