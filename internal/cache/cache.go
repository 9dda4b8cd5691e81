package cache

import (
	"context"
	"fmt"
	"sync"
	"time"

	lru "github.com/hashicorp/golang-lru/v2"
	"go.uber.org/zap"
	"golang.org/x/sync/singleflight"
)

// Fetcher loads the authoritative value for key.
type Fetcher[K comparable, V any] func(ctx context.Context, key K) (V, error)

type Options struct {
	// TTL is how long a value is served without refreshing.
	TTL time.Duration
	// StaleWindow is how long after TTL a value is still served while a
	// background refresh runs. Zero disables stale serving.
	StaleWindow time.Duration
	// Size bounds the number of keys held.
	Size int
	// RefreshTimeout bounds every fetch.
	RefreshTimeout time.Duration
}

func DefaultOptions() Options {
	return Options{
		TTL:            5 * time.Minute,
		StaleWindow:    10 * time.Minute,
		Size:           1024,
		RefreshTimeout: 10 * time.Second,
	}
}

type entry[V any] struct {
	value     V
	fetchedAt time.Time
}

// Cache is a read-through TTL cache. Concurrent misses for the same key share
// one fetch, and stale entries are refreshed in the background.
type Cache[K comparable, V any] struct {
	name    string
	fetch   Fetcher[K, V]
	opts    Options
	entries *lru.Cache[K, entry[V]]
	group   singleflight.Group
	logger  *zap.Logger
	now     func() time.Time

	refreshing sync.WaitGroup
	inflight   sync.Map // K -> struct{}, keys with a background refresh running
}

func New[K comparable, V any](name string, fetch Fetcher[K, V], opts Options, logger *zap.Logger) (*Cache[K, V], error) {
	if opts.Size <= 0 {
		opts.Size = DefaultOptions().Size
	}
	if opts.RefreshTimeout <= 0 {
		opts.RefreshTimeout = DefaultOptions().RefreshTimeout
	}
	entries, err := lru.New[K, entry[V]](opts.Size)
	if err != nil {
		return nil, fmt.Errorf("create %s cache: %w", name, err)
	}
	return &Cache[K, V]{
		name:    name,
		fetch:   fetch,
		opts:    opts,
		entries: entries,
		logger:  logger.Named("cache").With(zap.String("cache", name)),
		now:     time.Now,
	}, nil
}

// Get returns the cached value for key, fetching it when missing or expired.
func (c *Cache[K, V]) Get(ctx context.Context, key K) (V, error) {
	if e, ok := c.entries.Get(key); ok {
		age := c.now().Sub(e.fetchedAt)
		if age < c.opts.TTL {
			return e.value, nil
		}
		if age < c.opts.TTL+c.opts.StaleWindow {
			c.refreshInBackground(key)
			return e.value, nil
		}
	}
	return c.load(ctx, key)
}

// load joins the shared fetch for key. The fetch runs detached from ctx and is
// bounded by RefreshTimeout. A cancelled ctx only abandons this caller's wait.
func (c *Cache[K, V]) load(ctx context.Context, key K) (V, error) {
	ch := c.group.DoChan(fmt.Sprint(key), func() (interface{}, error) {
		fetchCtx, cancel := context.WithTimeout(context.WithoutCancel(ctx), c.opts.RefreshTimeout)
		defer cancel()
		value, err := c.fetch(fetchCtx, key)
		if err != nil {
			return value, err
		}
		c.entries.Add(key, entry[V]{value: value, fetchedAt: c.now()})
		return value, nil
	})

	var zero V
	select {
	case <-ctx.Done():
		return zero, ctx.Err()
	case res := <-ch:
		if res.Err != nil {
			return zero, res.Err
		}
		return res.Val.(V), nil
	}
}

// refreshInBackground starts at most one refresh per key.
func (c *Cache[K, V]) refreshInBackground(key K) {
	if _, running := c.inflight.LoadOrStore(key, struct{}{}); running {
		return
	}
	c.refreshing.Add(1)
	go func() {
		defer c.refreshing.Done()
		defer c.inflight.Delete(key)
		if _, err := c.load(context.Background(), key); err != nil {
			c.logger.Warn("background refresh failed", zap.Any("key", key), zap.Error(err))
		}
	}()
}

// Invalidate drops key so the next Get fetches it.
func (c *Cache[K, V]) Invalidate(key K) {
	c.entries.Remove(key)
}

func (c *Cache[K, V]) Purge() {
	c.entries.Purge()
}

func (c *Cache[K, V]) Len() int {
	return c.entries.Len()
}

// Wait blocks until in-flight background refreshes finish.
func (c *Cache[K, V]) Wait() {
	c.refreshing.Wait()
}
