// Package cache memoizes a blocking fetch behind a fixed time-to-live.
//
// A Cache hands the render loop the last successfully fetched value
// immediately and refreshes it only once the value is older than the TTL.
// A failed refresh never replaces a value: the stale value keeps being
// served and the entry's fetch time is left untouched, so the key stays
// due and is retried on the next read (or after the configured retry
// backoff).
package cache

import (
	"context"
	"fmt"
	"io"
	"sync"
	"time"

	"github.com/charmbracelet/log"
	"github.com/google/uuid"
	"golang.org/x/sync/singleflight"

	"github.com/tinytelemetry/homeroom/internal/model"
)

const defaultLatencyWindow = 32

// FetchFunc performs the blocking retrieval for one key.
type FetchFunc[K comparable, V any] func(ctx context.Context, key K) (V, error)

// Entry is a successfully fetched value and the time it was stored.
type Entry[V any] struct {
	Value     V
	FetchedAt time.Time
}

// keyState tracks refresh bookkeeping for one key. It is separate from
// Entry so that failures never touch the stored value or its timestamp.
type keyState struct {
	inFlight    bool
	retryAt     time.Time
	consecutive int

	fetches     int
	failures    int
	lastErr     error
	lastErrAt   time.Time
	lastLatency time.Duration
	latencies   []time.Duration
}

// Cache is a TTL cache over a FetchFunc. It is safe for concurrent use.
type Cache[K comparable, V any] struct {
	mu      sync.Mutex
	fetch   FetchFunc[K, V]
	ttl     time.Duration
	timeout time.Duration
	backoff Backoff
	window  int
	now     func() time.Time
	logger  *log.Logger

	group   singleflight.Group
	entries map[K]Entry[V]
	states  map[K]*keyState
}

// Option configures a Cache.
type Option func(*options)

type options struct {
	now     func() time.Time
	timeout time.Duration
	backoff Backoff
	window  int
	logger  *log.Logger
}

// WithClock replaces time.Now as the source of the current time.
func WithClock(now func() time.Time) Option {
	return func(o *options) { o.now = now }
}

// WithFetchTimeout bounds every fetch with a context deadline.
// Zero disables the bound.
func WithFetchTimeout(d time.Duration) Option {
	return func(o *options) { o.timeout = d }
}

// WithRetryBackoff delays retries after consecutive failures, starting at
// min and doubling up to max. Without it a failed key is due again on the
// very next read.
func WithRetryBackoff(min, max time.Duration) Option {
	return func(o *options) { o.backoff = Backoff{Min: min, Max: max} }
}

// WithLatencyWindow sets how many recent fetch latencies Stats reports.
func WithLatencyWindow(n int) Option {
	return func(o *options) { o.window = n }
}

// WithLogger sets the logger used for refresh failures.
func WithLogger(l *log.Logger) Option {
	return func(o *options) { o.logger = l }
}

// New creates a cache over fetch. The TTL is fixed for the life of the
// cache; a non-positive ttl falls back to model.DefaultRefreshTTL.
func New[K comparable, V any](fetch FetchFunc[K, V], ttl time.Duration, opts ...Option) *Cache[K, V] {
	o := options{now: time.Now, window: defaultLatencyWindow}
	for _, opt := range opts {
		opt(&o)
	}
	if ttl <= 0 {
		ttl = model.DefaultRefreshTTL
	}
	if o.window <= 0 {
		o.window = defaultLatencyWindow
	}
	if o.logger == nil {
		o.logger = log.New(io.Discard)
	}
	return &Cache[K, V]{
		fetch:   fetch,
		ttl:     ttl,
		timeout: o.timeout,
		backoff: o.backoff,
		window:  o.window,
		now:     o.now,
		logger:  o.logger,
		entries: make(map[K]Entry[V]),
		states:  make(map[K]*keyState),
	}
}

// TTL returns the cache's fixed time-to-live.
func (c *Cache[K, V]) TTL() time.Duration { return c.ttl }

// Get returns the value for key, fetching synchronously when there is no
// entry or the entry has expired. A failed fetch returns the existing
// value, or the zero value when nothing was ever fetched.
func (c *Cache[K, V]) Get(ctx context.Context, key K) V {
	c.mu.Lock()
	e, ok := c.entries[key]
	st, tracked := c.states[key]
	if ok && (!c.dueLocked(key, e, ok) || tracked && st.inFlight) {
		c.mu.Unlock()
		return e.Value
	}
	if !ok && !c.dueLocked(key, e, ok) {
		c.mu.Unlock()
		var zero V
		return zero
	}
	c.mu.Unlock()

	v, _ := c.load(ctx, key)
	return v
}

// Peek returns the current value without fetching.
func (c *Cache[K, V]) Peek(key K) (V, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()
	e, ok := c.entries[key]
	return e.Value, ok
}

// Entry returns the current entry without fetching.
func (c *Cache[K, V]) Entry(key K) (Entry[V], bool) {
	c.mu.Lock()
	defer c.mu.Unlock()
	e, ok := c.entries[key]
	return e, ok
}

// Due reports whether key is missing or expired and no retry delay is
// pending.
func (c *Cache[K, V]) Due(key K) bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	e, ok := c.entries[key]
	return c.dueLocked(key, e, ok)
}

// Claim takes the single in-flight refresh slot for key. It succeeds only
// when the key is due and no refresh for it is running. A successful Claim
// must be followed by Refresh, which releases the slot.
func (c *Cache[K, V]) Claim(key K) bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	e, ok := c.entries[key]
	st := c.stateLocked(key)
	if st.inFlight || !c.dueLocked(key, e, ok) {
		return false
	}
	st.inFlight = true
	return true
}

// Refresh fetches key and stores the result under the same policy as Get,
// then releases the slot taken by Claim.
func (c *Cache[K, V]) Refresh(ctx context.Context, key K) error {
	_, err := c.load(ctx, key)
	c.mu.Lock()
	c.stateLocked(key).inFlight = false
	c.mu.Unlock()
	return err
}

func (c *Cache[K, V]) dueLocked(key K, e Entry[V], ok bool) bool {
	now := c.now()
	if st, exists := c.states[key]; exists && now.Before(st.retryAt) {
		return false
	}
	return !ok || now.Sub(e.FetchedAt) >= c.ttl
}

func (c *Cache[K, V]) stateLocked(key K) *keyState {
	st, ok := c.states[key]
	if !ok {
		st = &keyState{}
		c.states[key] = st
	}
	return st
}

// load runs at most one fetch per key at a time; concurrent callers share
// its result.
func (c *Cache[K, V]) load(ctx context.Context, key K) (V, error) {
	res, err, _ := c.group.Do(fmt.Sprint(key), func() (any, error) {
		return c.fetchAndStore(ctx, key)
	})
	v, _ := res.(V)
	return v, err
}

func (c *Cache[K, V]) fetchAndStore(ctx context.Context, key K) (V, error) {
	// Another caller may have stored a result since this one checked.
	c.mu.Lock()
	if e, ok := c.entries[key]; !c.dueLocked(key, e, ok) {
		var err error
		if st, tracked := c.states[key]; tracked && st.consecutive > 0 {
			err = st.lastErr
		}
		c.mu.Unlock()
		return e.Value, err
	}
	c.mu.Unlock()

	fctx := ctx
	if c.timeout > 0 {
		var cancel context.CancelFunc
		fctx, cancel = context.WithTimeout(ctx, c.timeout)
		defer cancel()
	}

	id := uuid.NewString()
	c.logger.Debug("refresh started", "key", key, "refresh", id)

	start := time.Now()
	v, err := c.fetch(fctx, key)
	latency := time.Since(start)

	c.mu.Lock()
	defer c.mu.Unlock()

	now := c.now()
	st := c.stateLocked(key)
	st.fetches++
	st.lastLatency = latency
	st.latencies = append(st.latencies, latency)
	if len(st.latencies) > c.window {
		st.latencies = st.latencies[len(st.latencies)-c.window:]
	}

	if err != nil {
		st.failures++
		st.consecutive++
		st.lastErr = err
		st.lastErrAt = now
		if d := c.backoff.Delay(st.consecutive); d > 0 {
			st.retryAt = now.Add(d)
		}
		c.logger.Warn("refresh failed, serving stale value",
			"key", key, "refresh", id, "err", err, "consecutive", st.consecutive)
		e := c.entries[key]
		return e.Value, err
	}

	st.consecutive = 0
	st.retryAt = time.Time{}
	c.entries[key] = Entry[V]{Value: v, FetchedAt: now}
	c.logger.Debug("refresh stored", "key", key, "refresh", id, "latency", latency)
	return v, nil
}
