package cache

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
	"golang.org/x/sync/singleflight"
)

var (
	// ErrCancelled is returned to waiters of a fetch discarded by Cancel or Remove.
	ErrCancelled = errors.New("query cancelled")

	// ErrDisabled is returned by Fetch for a disabled query with no cached data.
	ErrDisabled = errors.New("query disabled")

	// ErrTypeMismatch is returned when a cached value cannot be read as the
	// requested type.
	ErrTypeMismatch = errors.New("cached value has unexpected type")
)

// DefaultCacheTime is how long an untouched entry survives GC.
const DefaultCacheTime = 5 * time.Minute

// Config holds the defaults applied to every query.
type Config struct {
	// StaleTime is how long fetched data is served without refetching.
	// Zero refetches on every Fetch.
	StaleTime time.Duration

	// CacheTime is how long an entry nobody reads or writes is kept.
	CacheTime time.Duration

	// Retry is the retry policy for failed fetches.
	Retry RetryConfig

	// ShouldRetry filters which failures are retried. Nil retries all.
	ShouldRetry ShouldRetryFunc
}

// DefaultConfig returns a configuration with sensible defaults.
func DefaultConfig() Config {
	return Config{
		StaleTime: 0,
		CacheTime: DefaultCacheTime,
		Retry:     DefaultRetryConfig(),
	}
}

// flight is one registered fetch of a key. It is created under c.mu before
// the fetch starts so Cancel always sees it. Its singleflight key carries
// the id, and the result is kept on the flight for callers that join after
// the function returned.
type flight struct {
	id     uint64
	ctx    context.Context
	cancel context.CancelFunc

	started bool
	val     any
	err     error
}

func (f *flight) key(k string) string {
	return fmt.Sprintf("%s#%d", k, f.id)
}

type record struct {
	entry   Entry
	flight  *flight
	touched time.Time
}

// Client is an in-memory query cache. It deduplicates concurrent fetches of
// the same key, tracks staleness and supports optimistic mutations.
//
// Client is safe for concurrent use.
type Client struct {
	mu      sync.Mutex
	records map[string]*record
	seq     uint64
	flights singleflight.Group

	config Config
	logger zerolog.Logger
	now    func() time.Time
}

// New creates a query cache.
func New(config Config) *Client {
	if config.CacheTime <= 0 {
		config.CacheTime = DefaultCacheTime
	}
	return &Client{
		records: make(map[string]*record),
		config:  config,
		logger:  log.With().Str("component", "query-cache").Logger(),
		now:     time.Now,
	}
}

type options struct {
	staleTime   time.Duration
	retry       RetryConfig
	shouldRetry ShouldRetryFunc
	enabled     bool
}

// Option overrides a Config default for a single Fetch.
type Option func(*options)

// WithStaleTime overrides Config.StaleTime.
func WithStaleTime(d time.Duration) Option {
	return func(o *options) { o.staleTime = d }
}

// WithRetry overrides the number of retries after the first failure.
func WithRetry(retries int) Option {
	return func(o *options) { o.retry.Retries = retries }
}

// WithRetryDelay overrides the wait before the first retry.
func WithRetryDelay(d time.Duration) Option {
	return func(o *options) { o.retry.InitialBackoff = d }
}

// WithShouldRetry overrides Config.ShouldRetry.
func WithShouldRetry(fn ShouldRetryFunc) Option {
	return func(o *options) { o.shouldRetry = fn }
}

// WithEnabled disables the query when false: Fetch serves whatever is cached
// and never calls the fetch function.
func WithEnabled(enabled bool) Option {
	return func(o *options) { o.enabled = enabled }
}

func (c *Client) options(opts []Option) options {
	o := options{
		staleTime:   c.config.StaleTime,
		retry:       c.config.Retry,
		shouldRetry: c.config.ShouldRetry,
		enabled:     true,
	}
	for _, opt := range opts {
		opt(&o)
	}
	return o
}

// Fetch returns the cached value for key when it is fresh, and otherwise
// runs fn and caches its result. Concurrent callers for the same key share
// one execution of fn. A caller whose ctx ends stops waiting without
// aborting the shared fetch.
func Fetch[T any](ctx context.Context, c *Client, key Key, fn func(context.Context) (T, error), opts ...Option) (T, error) {
	v, err := c.fetch(ctx, key, func(ctx context.Context) (any, error) {
		return fn(ctx)
	}, opts)
	if err != nil {
		var zero T
		return zero, err
	}
	return decode[T](c, key, v)
}

func (c *Client) fetch(ctx context.Context, key Key, fn func(context.Context) (any, error), opts []Option) (any, error) {
	o := c.options(opts)
	k := key.String()

	c.mu.Lock()
	rec := c.records[k]
	now := c.now()
	if rec != nil {
		rec.touched = now
	}
	if !o.enabled {
		defer c.mu.Unlock()
		if rec != nil && rec.entry.HasData {
			return rec.entry.Value, nil
		}
		return nil, ErrDisabled
	}
	if rec != nil && !rec.entry.IsStale(now, o.staleTime) {
		v := rec.entry.Value
		c.mu.Unlock()
		CacheHits.Inc()
		return v, nil
	}
	CacheMisses.WithLabelValues(missReason(rec)).Inc()
	if rec == nil {
		rec = c.recordLocked(k, key)
	}
	f := rec.flight
	if f == nil {
		c.seq++
		fctx, cancel := context.WithCancel(context.WithoutCancel(ctx))
		f = &flight{id: c.seq, ctx: fctx, cancel: cancel}
		rec.flight = f
		rec.entry.Fetching = true
		if !rec.entry.HasData {
			rec.entry.Status = StatusLoading
		}
	}
	c.mu.Unlock()

	ch := c.flights.DoChan(f.key(k), func() (any, error) {
		return c.run(rec, k, f, fn, o)
	})
	select {
	case res := <-ch:
		return res.Val, res.Err
	case <-ctx.Done():
		return nil, ctx.Err()
	}
}

func missReason(rec *record) string {
	switch {
	case rec == nil || !rec.entry.HasData:
		return "empty"
	case rec.entry.Invalidated:
		return "invalidated"
	default:
		return "stale"
	}
}

// run executes the fetch of f and records its outcome unless the flight
// was cancelled or its entry removed meanwhile.
func (c *Client) run(rec *record, k string, f *flight, fn func(context.Context) (any, error), o options) (any, error) {
	c.mu.Lock()
	if f.started {
		v, err := f.val, f.err
		c.mu.Unlock()
		return v, err
	}
	f.started = true
	logger := c.logger.With().Str("key", k).Logger()
	if rec.flight != f || c.records[k] != rec {
		f.err = fmt.Errorf("%w: %s", ErrCancelled, k)
		c.mu.Unlock()
		Fetches.WithLabelValues("cancelled").Inc()
		return nil, f.err
	}
	c.mu.Unlock()
	defer f.cancel()

	v, err := retryWithBackoff(f.ctx, logger, o.retry, o.shouldRetry, fn)

	c.mu.Lock()
	defer c.mu.Unlock()

	if rec.flight != f || c.records[k] != rec {
		Fetches.WithLabelValues("cancelled").Inc()
		logger.Debug().Msg("Discarding result of cancelled query")
		f.val, f.err = nil, fmt.Errorf("%w: %s", ErrCancelled, k)
		return f.val, f.err
	}
	f.val, f.err = v, err

	now := c.now()
	rec.flight = nil
	rec.entry.Fetching = false
	rec.touched = now

	if err != nil {
		Fetches.WithLabelValues("error").Inc()
		rec.entry.Status = StatusError
		rec.entry.Err = err
		rec.entry.ErrorAt = now
		logger.Debug().Err(err).Msg("Query failed")
		return nil, err
	}

	Fetches.WithLabelValues("success").Inc()
	rec.entry.Value = v
	rec.entry.HasData = true
	rec.entry.Status = StatusSuccess
	rec.entry.Err = nil
	rec.entry.Invalidated = false
	rec.entry.UpdatedAt = now
	return v, nil
}

// recordLocked returns the record for k, creating it when missing.
// Caller must hold c.mu.
func (c *Client) recordLocked(k string, key Key) *record {
	rec, ok := c.records[k]
	if !ok {
		rec = &record{
			entry:   Entry{Key: key, Status: StatusIdle},
			touched: c.now(),
		}
		c.records[k] = rec
		Entries.Set(float64(len(c.records)))
	}
	return rec
}

// Get returns a snapshot of the entry for key.
func (c *Client) Get(key Key) (Entry, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()

	rec, ok := c.records[key.String()]
	if !ok {
		return Entry{}, false
	}
	rec.touched = c.now()
	return rec.entry, true
}

// GetData returns the cached value for key without fetching.
func GetData[T any](c *Client, key Key) (T, bool) {
	var zero T
	e, ok := c.Get(key)
	if !ok || !e.HasData {
		return zero, false
	}
	v, err := decode[T](c, key, e.Value)
	if err != nil {
		return zero, false
	}
	return v, true
}

// Set writes value as the fresh result for key.
func (c *Client) Set(key Key, value any) {
	c.mu.Lock()
	defer c.mu.Unlock()

	rec := c.recordLocked(key.String(), key)
	now := c.now()
	rec.touched = now
	rec.entry.Value = value
	rec.entry.HasData = true
	rec.entry.Status = StatusSuccess
	rec.entry.Err = nil
	rec.entry.Invalidated = false
	rec.entry.UpdatedAt = now
}

// Update replaces the cached value for key with fn(current). It reports
// false, leaving the cache untouched, when key holds no value of type T.
func Update[T any](c *Client, key Key, fn func(T) T) bool {
	cur, ok := GetData[T](c, key)
	if !ok {
		return false
	}
	c.Set(key, fn(cur))
	return true
}

// Invalidate marks every entry whose key starts with prefix as stale so the
// next Fetch refetches it. Cached values stay readable. It returns the
// number of entries marked.
func (c *Client) Invalidate(prefix Key) int {
	c.mu.Lock()
	defer c.mu.Unlock()

	n := 0
	for _, rec := range c.records {
		if rec.entry.Key.HasPrefix(prefix) {
			rec.entry.Invalidated = true
			n++
		}
	}
	Invalidations.Add(float64(n))
	if n > 0 {
		c.logger.Debug().Str("prefix", prefix.String()).Int("entries", n).Msg("Invalidated queries")
	}
	return n
}

// Cancel aborts in-flight fetches of every key starting with prefix. Their
// results are discarded and the entries keep their previous values. It
// returns the number of fetches cancelled.
func (c *Client) Cancel(prefix Key) int {
	c.mu.Lock()
	defer c.mu.Unlock()

	n := 0
	for k, rec := range c.records {
		if rec.flight == nil || !rec.entry.Key.HasPrefix(prefix) {
			continue
		}
		c.cancelLocked(k, rec)
		n++
	}
	return n
}

// cancelLocked detaches the in-flight fetch of rec. Caller must hold c.mu.
func (c *Client) cancelLocked(k string, rec *record) {
	rec.flight.cancel()
	rec.flight = nil
	rec.entry.Fetching = false
	if !rec.entry.HasData && rec.entry.Status == StatusLoading {
		rec.entry.Status = StatusIdle
	}
}

// Remove drops the entry for key, cancelling its fetch if one is running.
func (c *Client) Remove(key Key) {
	c.mu.Lock()
	defer c.mu.Unlock()

	k := key.String()
	rec, ok := c.records[k]
	if !ok {
		return
	}
	if rec.flight != nil {
		c.cancelLocked(k, rec)
	}
	delete(c.records, k)
	Entries.Set(float64(len(c.records)))
}

// Clear drops every entry.
func (c *Client) Clear() {
	c.mu.Lock()
	defer c.mu.Unlock()

	for k, rec := range c.records {
		if rec.flight != nil {
			c.cancelLocked(k, rec)
		}
	}
	c.records = make(map[string]*record)
	Entries.Set(0)
}

// Len returns the number of cached entries.
func (c *Client) Len() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return len(c.records)
}

// Keys returns the keys of every cached entry, in no particular order.
func (c *Client) Keys() []Key {
	c.mu.Lock()
	defer c.mu.Unlock()

	keys := make([]Key, 0, len(c.records))
	for _, rec := range c.records {
		keys = append(keys, rec.entry.Key)
	}
	return keys
}

// GC drops entries not read or written within CacheTime. Entries with a
// fetch in flight are kept. It returns the number of entries dropped.
func (c *Client) GC() int {
	c.mu.Lock()
	defer c.mu.Unlock()

	now := c.now()
	n := 0
	for k, rec := range c.records {
		if rec.flight != nil || now.Sub(rec.touched) < c.config.CacheTime {
			continue
		}
		delete(c.records, k)
		n++
	}
	Entries.Set(float64(len(c.records)))
	return n
}

// restore puts a previously captured entry back, keeping the current fetch
// state.
func (c *Client) restore(e Entry) {
	c.mu.Lock()
	defer c.mu.Unlock()

	rec := c.recordLocked(e.Key.String(), e.Key)
	fetching := rec.entry.Fetching
	rec.entry = e
	rec.entry.Fetching = fetching
	rec.touched = c.now()
}

// decode reads v as T. Values restored from a snapshot arrive as raw JSON;
// they are decoded once and the typed value is written back.
func decode[T any](c *Client, key Key, v any) (T, error) {
	if t, ok := v.(T); ok {
		return t, nil
	}
	var zero T
	raw, ok := v.(json.RawMessage)
	if !ok {
		return zero, fmt.Errorf("%w: %s holds %T", ErrTypeMismatch, key, v)
	}
	var t T
	if err := json.Unmarshal(raw, &t); err != nil {
		return zero, fmt.Errorf("%w: %s: %v", ErrTypeMismatch, key, err)
	}

	c.mu.Lock()
	if rec, ok := c.records[key.String()]; ok {
		if _, still := rec.entry.Value.(json.RawMessage); still {
			rec.entry.Value = t
		}
	}
	c.mu.Unlock()
	return t, nil
}
