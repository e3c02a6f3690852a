// Package cache provides CachedValue, a single-slot TTL cache that can be
// mirrored to the local key-value store.
//
// Memory is authoritative. The disk copy is written on every Set, read once
// at construction and deleted when an expired value is observed or the cache
// is cleared. Disk failures are logged and never returned to the caller.
package cache

import (
	"context"
	"encoding/json"
	"sync"
	"time"

	"github.com/MKhiriev/go-vrc-link/internal/logger"
	"github.com/MKhiriev/go-vrc-link/internal/metrics"
	"github.com/MKhiriev/go-vrc-link/internal/store"
	"github.com/MKhiriev/go-vrc-link/internal/utils"
)

// persistedEntry is the on-disk shape: {"value": ..., "lastSet": <unix ms>, "ttl": <ms>}.
type persistedEntry struct {
	Value   json.RawMessage `json:"value"`
	LastSet int64           `json:"lastSet"`
	TTL     int64           `json:"ttl"`
}

type entry[T any] struct {
	value   T
	lastSet time.Time
}

// CachedValue holds at most one value of type T which is visible only while
// now - lastSet < ttl.
type CachedValue[T any] struct {
	ttl time.Duration
	settings

	mu      sync.Mutex
	entry   *entry[T]
	version uint64

	ready chan struct{}
}

// New creates an empty CachedValue. With [WithPersistence] the value is
// hydrated from disk in the background; use WaitForInitialisation to wait
// for it.
func New[T any](ttl time.Duration, opts ...Option) *CachedValue[T] {
	c := newCachedValue[T](ttl, opts)

	if c.store == nil {
		close(c.ready)
		return c
	}

	go c.hydrate(c.version)
	return c
}

// NewWithValue creates a CachedValue holding initial, set now. With
// [WithPersistence] the value is written to disk immediately.
func NewWithValue[T any](ttl time.Duration, initial T, opts ...Option) *CachedValue[T] {
	c := newCachedValue[T](ttl, opts)
	close(c.ready)

	c.Set(context.Background(), initial)
	return c
}

func newCachedValue[T any](ttl time.Duration, opts []Option) *CachedValue[T] {
	s := settings{
		clock: utils.SystemClock{},
		log:   logger.Nop(),
	}
	for _, opt := range opts {
		opt(&s)
	}
	if s.name == "" {
		s.name = s.key
	}

	return &CachedValue[T]{
		ttl:      ttl,
		settings: s,
		ready:    make(chan struct{}),
	}
}

// WaitForInitialisation blocks until the initial value (explicit or hydrated
// from disk) has settled or ctx is done.
func (c *CachedValue[T]) WaitForInitialisation(ctx context.Context) error {
	select {
	case <-c.ready:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}

// Get returns the value if it was set less than ttl ago. An expired value is
// dropped together with its disk copy.
func (c *CachedValue[T]) Get(ctx context.Context) (T, bool) {
	var zero T

	c.mu.Lock()
	e := c.entry
	if e == nil {
		c.mu.Unlock()
		c.metrics.CacheLookup(c.name, "miss")
		return zero, false
	}
	if c.clock.Now().Sub(e.lastSet) < c.ttl {
		v := e.value
		c.mu.Unlock()
		c.metrics.CacheLookup(c.name, "hit")
		return v, true
	}
	c.entry = nil
	c.version++
	c.mu.Unlock()

	c.metrics.CacheLookup(c.name, "expired")
	c.deleteFromDisk(ctx)
	return zero, false
}

// Set stores value with the current time and writes it through to disk.
func (c *CachedValue[T]) Set(ctx context.Context, value T) {
	now := c.clock.Now()

	c.mu.Lock()
	c.entry = &entry[T]{value: value, lastSet: now}
	c.version++
	c.mu.Unlock()

	c.writeToDisk(ctx, value, now)
}

// Clear removes the value from memory and disk.
func (c *CachedValue[T]) Clear(ctx context.Context) {
	c.mu.Lock()
	c.entry = nil
	c.version++
	c.mu.Unlock()

	c.deleteFromDisk(ctx)
}

// TTL returns the configured time-to-live.
func (c *CachedValue[T]) TTL() time.Duration {
	return c.ttl
}

func (c *CachedValue[T]) hydrate(version uint64) {
	defer close(c.ready)

	ctx := context.Background()
	raw, ok, err := c.store.Get(ctx, c.key)
	if err != nil {
		c.log.Warn().Err(err).Str("key", c.key).Msg("cache hydration failed")
		return
	}
	if !ok {
		return
	}

	var p persistedEntry
	if err = json.Unmarshal(raw, &p); err != nil {
		c.log.Warn().Err(err).Str("key", c.key).Msg("cache entry on disk is malformed")
		return
	}
	var value T
	if err = json.Unmarshal(p.Value, &value); err != nil {
		c.log.Warn().Err(err).Str("key", c.key).Msg("cache value on disk is malformed")
		return
	}

	c.mu.Lock()
	defer c.mu.Unlock()

	// a Set or Clear issued while hydrating wins
	if c.version != version {
		return
	}
	c.entry = &entry[T]{value: value, lastSet: time.UnixMilli(p.LastSet)}
}

func (c *CachedValue[T]) writeToDisk(ctx context.Context, value T, lastSet time.Time) {
	if c.store == nil {
		return
	}

	raw, err := json.Marshal(value)
	if err != nil {
		c.log.Warn().Err(err).Str("key", c.key).Msg("cache value is not serializable")
		return
	}
	payload, err := json.Marshal(persistedEntry{
		Value:   raw,
		LastSet: lastSet.UnixMilli(),
		TTL:     c.ttl.Milliseconds(),
	})
	if err != nil {
		c.log.Warn().Err(err).Str("key", c.key).Msg("cache entry is not serializable")
		return
	}

	if err = c.store.Set(ctx, c.key, payload); err != nil {
		c.log.Warn().Err(err).Str("key", c.key).Msg("cache write-through failed")
	}
}

func (c *CachedValue[T]) deleteFromDisk(ctx context.Context) {
	if c.store == nil {
		return
	}
	if err := c.store.Delete(ctx, c.key); err != nil {
		c.log.Warn().Err(err).Str("key", c.key).Msg("cache disk eviction failed")
	}
}

// settings are shared by every CachedValue regardless of T.
type settings struct {
	store   store.KeyValueStore
	key     string
	name    string
	clock   utils.Clock
	log     *logger.Logger
	metrics *metrics.Collector
}

// Option configures a CachedValue.
type Option func(*settings)

// WithPersistence mirrors the value to s under key.
func WithPersistence(s store.KeyValueStore, key string) Option {
	return func(o *settings) {
		o.store = s
		o.key = key
	}
}

func WithClock(c utils.Clock) Option {
	return func(o *settings) { o.clock = c }
}

func WithLogger(l *logger.Logger) Option {
	return func(o *settings) { o.log = l.Component("cache") }
}

// WithMetrics records lookups under name (defaults to the persistence key).
func WithMetrics(m *metrics.Collector, name string) Option {
	return func(o *settings) {
		o.metrics = m
		o.name = name
	}
}
