// Package provider fetches remote values through an ordered list of
// interchangeable providers, with a retry budget per provider and a
// time-bucketed cache in front of the chain.
package provider

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/cenkalti/backoff/v5"
	"github.com/charmbracelet/log"
	"golang.org/x/time/rate"

	"github.com/vovakirdan/skyboard/internal/logger"
)

// ErrUnavailable is returned when every provider exhausted its retries.
var ErrUnavailable = errors.New("provider: unavailable")

const (
	DefaultRetries        = 3
	DefaultAttemptTimeout = 3 * time.Second
	DefaultTTL            = time.Minute
)

// Provider is one source of values.
type Provider[T any] struct {
	Name  string
	Fetch func(ctx context.Context, key string) (T, error)
}

// Stats counts chain activity.
type Stats struct {
	Attempts int // Network attempts across all providers
	Hits     int
	Misses   int
	Failures int // Fetches that ended unavailable
}

type options struct {
	name           string
	retries        int
	attemptTimeout time.Duration
	newBackOff     func() backoff.BackOff
	ttl            time.Duration
	now            func() time.Time
	limiter        *rate.Limiter
	log            *log.Logger
}

// Option configures a Chain.
type Option func(*options)

// WithName labels the chain in logs.
func WithName(name string) Option {
	return func(o *options) { o.name = name }
}

// WithRetries sets the attempts each provider gets. Values below 1 mean 1.
func WithRetries(n int) Option {
	return func(o *options) {
		if n < 1 {
			n = 1
		}
		o.retries = n
	}
}

// WithAttemptTimeout bounds a single attempt.
func WithAttemptTimeout(d time.Duration) Option {
	return func(o *options) {
		if d > 0 {
			o.attemptTimeout = d
		}
	}
}

// WithBackOff sets the delay policy between attempts of one provider.
func WithBackOff(newBackOff func() backoff.BackOff) Option {
	return func(o *options) {
		if newBackOff != nil {
			o.newBackOff = newBackOff
		}
	}
}

// WithTTL sets the cache bucket width. Zero disables caching.
func WithTTL(d time.Duration) Option {
	return func(o *options) { o.ttl = d }
}

// WithNow injects the clock used for cache buckets.
func WithNow(now func() time.Time) Option {
	return func(o *options) {
		if now != nil {
			o.now = now
		}
	}
}

// WithRateLimit bounds outbound attempts. A zero limit disables limiting.
func WithRateLimit(limit rate.Limit, burst int) Option {
	return func(o *options) {
		if limit <= 0 {
			o.limiter = nil
			return
		}
		if burst < 1 {
			burst = 1
		}
		o.limiter = rate.NewLimiter(limit, burst)
	}
}

// WithLogger sets the chain logger.
func WithLogger(l *log.Logger) Option {
	return func(o *options) {
		if l != nil {
			o.log = l
		}
	}
}

func defaultBackOff() backoff.BackOff {
	b := backoff.NewExponentialBackOff()
	b.InitialInterval = 200 * time.Millisecond
	b.MaxInterval = time.Second
	return b
}

// Chain tries its providers in order until one succeeds.
type Chain[T any] struct {
	providers []Provider[T]
	opts      options
	cache     *Cache[T]

	mu    sync.Mutex
	stats Stats
}

// NewChain builds a chain. At least one provider is required.
func NewChain[T any](providers []Provider[T], opts ...Option) (*Chain[T], error) {
	if len(providers) == 0 {
		return nil, errors.New("provider: at least one provider is required")
	}
	for i, p := range providers {
		if p.Fetch == nil {
			return nil, fmt.Errorf("provider: provider %d (%q) has no fetch function", i, p.Name)
		}
	}
	o := options{
		name:           "chain",
		retries:        DefaultRetries,
		attemptTimeout: DefaultAttemptTimeout,
		newBackOff:     defaultBackOff,
		ttl:            DefaultTTL,
		now:            time.Now,
	}
	for _, opt := range opts {
		opt(&o)
	}
	if o.log == nil {
		o.log = logger.WithComponent("provider/" + o.name)
	}
	c := &Chain[T]{
		providers: append([]Provider[T](nil), providers...),
		opts:      o,
	}
	if o.ttl > 0 {
		c.cache = NewCache[T](o.ttl)
	}
	return c, nil
}

// Providers returns the provider names in order.
func (c *Chain[T]) Providers() []string {
	names := make([]string, len(c.providers))
	for i, p := range c.providers {
		names[i] = p.Name
	}
	return names
}

// Stats returns a snapshot of the counters.
func (c *Chain[T]) Stats() Stats {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.stats
}

// Fetch returns the value for key, from the cache when the current bucket
// holds one. Exhausting every provider returns an error wrapping
// ErrUnavailable and invalidates the key. A cancelled ctx returns its error.
func (c *Chain[T]) Fetch(ctx context.Context, key string) (T, error) {
	var zero T
	now := c.opts.now()
	if c.cache != nil {
		if v, ok := c.cache.Get(key, now); ok {
			c.count(func(s *Stats) { s.Hits++ })
			return v, nil
		}
	}
	c.count(func(s *Stats) { s.Misses++ })

	var errs []error
	for _, p := range c.providers {
		v, err := c.try(ctx, p, key)
		if err == nil {
			if c.cache != nil {
				c.cache.Put(key, now, v)
			}
			return v, nil
		}
		if ctxErr := ctx.Err(); ctxErr != nil {
			return zero, ctxErr
		}
		c.opts.log.Warn("provider exhausted", "provider", p.Name, "key", key, "err", err)
		errs = append(errs, fmt.Errorf("%s: %w", p.Name, err))
	}

	if c.cache != nil {
		c.cache.Invalidate(key)
	}
	c.count(func(s *Stats) { s.Failures++ })
	return zero, fmt.Errorf("%w: %s: %w", ErrUnavailable, key, errors.Join(errs...))
}

func (c *Chain[T]) try(ctx context.Context, p Provider[T], key string) (T, error) {
	op := func() (T, error) {
		var zero T
		if err := ctx.Err(); err != nil {
			return zero, backoff.Permanent(err)
		}
		if err := c.waitLimiter(ctx); err != nil {
			return zero, backoff.Permanent(err)
		}
		c.count(func(s *Stats) { s.Attempts++ })

		attemptCtx, cancel := context.WithTimeout(ctx, c.opts.attemptTimeout)
		defer cancel()
		v, err := p.Fetch(attemptCtx, key)
		if err != nil {
			c.opts.log.Debug("attempt failed", "provider", p.Name, "key", key, "err", err)
		}
		return v, err
	}
	return backoff.Retry(ctx, op,
		backoff.WithBackOff(c.opts.newBackOff()),
		backoff.WithMaxTries(uint(c.opts.retries)),
	)
}

// waitLimiter blocks until the rate limit allows an attempt. Unlike
// rate.Limiter.Wait it does not fail early when the slot lies past the ctx
// deadline, so the only error is ctx's own.
func (c *Chain[T]) waitLimiter(ctx context.Context) error {
	if c.opts.limiter == nil {
		return nil
	}
	r := c.opts.limiter.Reserve()
	delay := r.Delay()
	if delay == 0 {
		return nil
	}
	t := time.NewTimer(delay)
	defer t.Stop()
	select {
	case <-t.C:
		return nil
	case <-ctx.Done():
		r.Cancel()
		return ctx.Err()
	}
}

func (c *Chain[T]) count(f func(*Stats)) {
	c.mu.Lock()
	f(&c.stats)
	c.mu.Unlock()
}
