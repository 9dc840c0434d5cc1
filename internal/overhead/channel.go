// Package overhead hands slow data from a background worker to the
// scheduler goroutine without ever blocking a tick.
//
// A Channel is idle or in flight, and separately holds at most one staged
// batch. The scheduler asks for a refresh, polls for a new batch and takes
// it; the worker only ever publishes whole batches.
package overhead

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/charmbracelet/log"
	"github.com/google/uuid"
	"github.com/sourcegraph/conc"
	"github.com/sourcegraph/conc/panics"

	"github.com/vovakirdan/skyboard/internal/logger"
)

const defaultFetchTimeout = 30 * time.Second

// Fetcher produces one batch. It runs on the worker goroutine.
type Fetcher[R any] func(ctx context.Context) ([]R, error)

type options struct {
	timeout time.Duration
	log     *log.Logger
	now     func() time.Time
}

// Option configures a Channel.
type Option func(*options)

// WithTimeout bounds a single fetch. Zero keeps the default.
func WithTimeout(d time.Duration) Option {
	return func(o *options) {
		if d > 0 {
			o.timeout = d
		}
	}
}

// WithLogger sets the channel logger.
func WithLogger(l *log.Logger) Option {
	return func(o *options) {
		if l != nil {
			o.log = l
		}
	}
}

// WithNow injects the clock used for LastSuccess and Stale.
func WithNow(now func() time.Time) Option {
	return func(o *options) {
		if now != nil {
			o.now = now
		}
	}
}

// Channel is a single-slot handoff between an acquisition worker and the
// scheduler. At most one fetch is in flight at any time.
type Channel[R any] struct {
	name  string
	fetch Fetcher[R]
	opts  options

	ctx    context.Context
	cancel context.CancelFunc
	wg     conc.WaitGroup

	mu          sync.Mutex
	inFlight    bool
	staged      bool
	batch       []R
	delivered   bool
	lastSuccess time.Time
	failures    int
	closed      bool
}

// New creates an idle channel with an empty batch.
func New[R any](name string, fetch Fetcher[R], opts ...Option) *Channel[R] {
	o := options{
		timeout: defaultFetchTimeout,
		now:     time.Now,
	}
	for _, opt := range opts {
		opt(&o)
	}
	if o.log == nil {
		o.log = logger.WithComponent("overhead/" + name)
	}
	ctx, cancel := context.WithCancel(context.Background())
	return &Channel[R]{
		name:   name,
		fetch:  fetch,
		opts:   o,
		ctx:    ctx,
		cancel: cancel,
	}
}

// Name returns the channel name.
func (c *Channel[R]) Name() string {
	return c.name
}

// RequestRefresh starts a background fetch. It returns false without doing
// anything when a fetch is already in flight or the channel is closed.
func (c *Channel[R]) RequestRefresh() bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.inFlight || c.closed {
		return false
	}
	c.inFlight = true
	c.wg.Go(c.work)
	return true
}

func (c *Channel[R]) work() {
	id := uuid.NewString()
	start := c.opts.now()
	c.opts.log.Debug("fetch started", "fetch", id)

	ctx, cancel := context.WithTimeout(c.ctx, c.opts.timeout)
	defer cancel()

	var (
		batch []R
		err   error
	)
	var pc panics.Catcher
	pc.Try(func() { batch, err = c.fetch(ctx) })
	if r := pc.Recovered(); r != nil {
		err = fmt.Errorf("fetcher panicked: %v", r.Value)
	}

	c.mu.Lock()
	defer c.mu.Unlock()
	c.inFlight = false
	if c.closed {
		return
	}
	if err != nil {
		c.failures++
		c.opts.log.Warn("fetch failed", "fetch", id, "err", err, "failures", c.failures)
		return
	}
	c.batch = batch
	c.staged = true
	c.delivered = true
	c.lastSuccess = c.opts.now()
	c.opts.log.Debug("fetch staged", "fetch", id, "items", len(batch), "took", c.lastSuccess.Sub(start))
}

// Processing reports whether a fetch is in flight.
func (c *Channel[R]) Processing() bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.inFlight
}

// PollNew reports whether a staged batch is waiting to be taken.
func (c *Channel[R]) PollNew() bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.staged
}

// Take returns the current batch and clears the staged flag.
// Calling it again without a new fetch returns the same batch.
func (c *Channel[R]) Take() []R {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.staged = false
	return c.batch
}

// IsEmpty reports whether the current batch has no items.
func (c *Channel[R]) IsEmpty() bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	return len(c.batch) == 0
}

// Delivered reports whether any fetch has ever succeeded.
func (c *Channel[R]) Delivered() bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.delivered
}

// LastSuccess returns when the current batch was staged.
func (c *Channel[R]) LastSuccess() time.Time {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.lastSuccess
}

// Stale reports whether the current batch is older than maxAge, or
// whether nothing was ever delivered.
func (c *Channel[R]) Stale(maxAge time.Duration) bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	if !c.delivered {
		return true
	}
	return c.opts.now().Sub(c.lastSuccess) > maxAge
}

// Failures returns the number of failed fetches.
func (c *Channel[R]) Failures() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.failures
}

// Close cancels any in-flight fetch and waits for the worker to exit, or
// for ctx to end. Results of the cancelled fetch are discarded.
func (c *Channel[R]) Close(ctx context.Context) error {
	c.mu.Lock()
	if c.closed {
		c.mu.Unlock()
		return nil
	}
	c.closed = true
	c.mu.Unlock()

	c.cancel()
	done := make(chan struct{})
	go func() {
		c.wg.Wait()
		close(done)
	}()
	select {
	case <-done:
		return nil
	case <-ctx.Done():
		return fmt.Errorf("overhead: %s: close: %w", c.name, ctx.Err())
	}
}
