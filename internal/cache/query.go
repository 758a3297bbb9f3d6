package cache

import (
	"context"
	"fmt"
	"sync"
	"time"

	"golang.org/x/sync/singleflight"
)

const (
	DefaultStaleTime  = time.Minute
	DefaultRetry      = 1
	DefaultRetryDelay = time.Second
)

type Fetcher[T any] func(ctx context.Context) (T, error)

type Options struct {
	StaleTime  time.Duration
	Retry      int
	RetryDelay time.Duration
	Now        func() time.Time
	// OnBackgroundError receives failures of refetches nobody waits for.
	OnBackgroundError func(key string, err error)
}

// State is a read-only view of one entry.
type State struct {
	HasData   bool      `json:"hasData"`
	UpdatedAt time.Time `json:"updatedAt"`
	Stale     bool      `json:"stale"`
	Fetching  bool      `json:"fetching"`
	LastError string    `json:"lastError,omitempty"`
}

type entry[T any] struct {
	data        T
	hasData     bool
	updatedAt   time.Time
	invalidated bool
	fetching    bool
	lastErr     error
	fetch       Fetcher[T]
	// gen is bumped by Invalidate so a fetch started before it cannot
	// overwrite the result of the one started after it.
	gen uint64
}

// Client caches query results by key. Fresh values are served as is, stale
// ones are served while a refetch runs, and at most one fetch per key is in
// flight at any time.
type Client[T any] struct {
	opts  Options
	group singleflight.Group

	mu      sync.Mutex
	entries map[string]*entry[T]

	background sync.WaitGroup
}

func NewClient[T any](opts Options) *Client[T] {
	if opts.StaleTime <= 0 {
		opts.StaleTime = DefaultStaleTime
	}
	if opts.Retry < 0 {
		opts.Retry = 0
	}
	if opts.RetryDelay < 0 {
		opts.RetryDelay = 0
	}
	if opts.Now == nil {
		opts.Now = time.Now
	}
	return &Client[T]{
		opts:    opts,
		entries: make(map[string]*entry[T]),
	}
}

func (c *Client[T]) entryLocked(key string) *entry[T] {
	e, ok := c.entries[key]
	if !ok {
		e = &entry[T]{}
		c.entries[key] = e
	}
	return e
}

func (c *Client[T]) staleLocked(e *entry[T]) bool {
	return e.invalidated || c.opts.Now().Sub(e.updatedAt) >= c.opts.StaleTime
}

// Get returns the value for key. The first call for a key blocks until fetch
// resolves. Later calls return the cached value and, once it is stale, start
// a background refetch.
func (c *Client[T]) Get(ctx context.Context, key string, fetch Fetcher[T]) (T, error) {
	c.mu.Lock()
	e := c.entryLocked(key)
	if fetch != nil {
		e.fetch = fetch
	}
	if !e.hasData {
		c.mu.Unlock()
		return c.refetch(ctx, key)
	}

	data := e.data
	if c.staleLocked(e) && !e.fetching {
		c.revalidateLocked(key)
	}
	c.mu.Unlock()
	return data, nil
}

// revalidateLocked starts a background refetch detached from any request.
func (c *Client[T]) revalidateLocked(key string) {
	c.entryLocked(key).fetching = true
	c.background.Add(1)
	go func() {
		defer c.background.Done()
		if _, err := c.refetch(context.Background(), key); err != nil && c.opts.OnBackgroundError != nil {
			c.opts.OnBackgroundError(key, err)
		}
	}()
}

// Invalidate marks key stale and refetches it, waiting for the result. A
// fetch already in flight is not joined since it may predate the change that
// caused the invalidation. Keys that were never queried are left alone.
func (c *Client[T]) Invalidate(ctx context.Context, key string) error {
	c.mu.Lock()
	e, ok := c.entries[key]
	if !ok || e.fetch == nil {
		c.mu.Unlock()
		return nil
	}
	e.invalidated = true
	e.gen++
	c.group.Forget(key)
	c.mu.Unlock()

	_, err := c.refetch(ctx, key)
	return err
}

// Revalidate refetches key when its value is stale and waits for that fetch,
// joining a background refetch already in flight. Keys that were never
// fetched or are still fresh are left alone.
func (c *Client[T]) Revalidate(ctx context.Context, key string) error {
	c.mu.Lock()
	e, ok := c.entries[key]
	if !ok || !e.hasData || !c.staleLocked(e) {
		c.mu.Unlock()
		return nil
	}
	c.mu.Unlock()

	_, err := c.refetch(ctx, key)
	return err
}

// Peek returns the last known value without fetching.
func (c *Client[T]) Peek(key string) (T, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()

	var zero T
	e, ok := c.entries[key]
	if !ok || !e.hasData {
		return zero, false
	}
	return e.data, true
}

func (c *Client[T]) State(key string) State {
	c.mu.Lock()
	defer c.mu.Unlock()

	e, ok := c.entries[key]
	if !ok {
		return State{Stale: true}
	}
	s := State{
		HasData:   e.hasData,
		UpdatedAt: e.updatedAt,
		Stale:     !e.hasData || c.staleLocked(e),
		Fetching:  e.fetching,
	}
	if e.lastErr != nil {
		s.LastError = e.lastErr.Error()
	}
	return s
}

// IsStale reports whether key has no value or its value is older than the
// stale time.
func (c *Client[T]) IsStale(key string) bool {
	return c.State(key).Stale
}

// Wait blocks until every background refetch started so far has finished.
// It must not race with Get on another goroutine; use Revalidate there.
func (c *Client[T]) Wait() {
	c.background.Wait()
}

// refetch runs the registered fetcher for key through the singleflight group
// so concurrent callers share one remote call. The shared fetch outlives the
// caller that started it; each caller stops waiting when its own ctx ends.
func (c *Client[T]) refetch(ctx context.Context, key string) (T, error) {
	fetchCtx := context.WithoutCancel(ctx)
	ch := c.group.DoChan(key, func() (interface{}, error) {
		c.mu.Lock()
		e := c.entryLocked(key)
		fetch := e.fetch
		gen := e.gen
		e.fetching = true
		c.mu.Unlock()

		var (
			data T
			err  error
		)
		if fetch == nil {
			err = fmt.Errorf("no fetcher registered for %q", key)
		} else {
			data, err = c.fetchWithRetry(fetchCtx, fetch)
		}

		c.mu.Lock()
		if gen == e.gen {
			e.fetching = false
			e.lastErr = err
			if err == nil {
				e.data = data
				e.hasData = true
				e.updatedAt = c.opts.Now()
				e.invalidated = false
			}
		}
		c.mu.Unlock()

		return data, err
	})

	select {
	case res := <-ch:
		var zero T
		if res.Err != nil {
			return zero, res.Err
		}
		return res.Val.(T), nil
	case <-ctx.Done():
		var zero T
		return zero, ctx.Err()
	}
}

func (c *Client[T]) fetchWithRetry(ctx context.Context, fetch Fetcher[T]) (T, error) {
	var (
		data T
		err  error
	)
	for attempt := 0; attempt <= c.opts.Retry; attempt++ {
		if attempt > 0 && c.opts.RetryDelay > 0 {
			timer := time.NewTimer(c.opts.RetryDelay)
			select {
			case <-ctx.Done():
				timer.Stop()
				return data, ctx.Err()
			case <-timer.C:
			}
		}

		data, err = fetch(ctx)
		if err == nil {
			return data, nil
		}
	}
	return data, err
}
