package animator

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/charmbracelet/log"
	"github.com/sourcegraph/conc/panics"

	"github.com/vovakirdan/skyboard/internal/core"
	"github.com/vovakirdan/skyboard/internal/logger"
)

const defaultShutdownTimeout = 5 * time.Second

// Frame is passed to every handler invocation.
type Frame struct {
	Tick   uint64 // Global tick counter
	Count  uint64 // Fires of this keyframe since its count was last reset
	Screen *core.Screen

	resetCount bool
	sched      *Scheduler
}

// ResetCount restarts this keyframe's fire count at zero after the handler returns.
func (f *Frame) ResetCount() {
	f.resetCount = true
}

// RequestReset asks the scheduler to run the reset handlers once the
// current handler returns. Requests made from a reset handler are ignored.
func (f *Frame) RequestReset() {
	if f.sched != nil && !f.sched.inReset {
		f.sched.resetPending = true
	}
}

// FaultError reports a handler failure. It ends the run.
type FaultError struct {
	Tick     uint64
	Keyframe string
	Err      error
}

func (e *FaultError) Error() string {
	return fmt.Sprintf("animator: keyframe %q faulted on tick %d: %v", e.Keyframe, e.Tick, e.Err)
}

func (e *FaultError) Unwrap() error {
	return e.Err
}

// Ticker delivers tick boundaries.
type Ticker interface {
	C() <-chan time.Time
	Stop()
}

type timeTicker struct {
	t *time.Ticker
}

func (t timeTicker) C() <-chan time.Time { return t.t.C }
func (t timeTicker) Stop()               { t.t.Stop() }

// NewTimeTicker returns a Ticker backed by time.Ticker.
func NewTimeTicker(period time.Duration) Ticker {
	return timeTicker{t: time.NewTicker(period)}
}

// Option configures a Scheduler.
type Option func(*Scheduler)

// WithTicker replaces the wall-clock ticker.
func WithTicker(newTicker func(period time.Duration) Ticker) Option {
	return func(s *Scheduler) {
		if newTicker != nil {
			s.newTicker = newTicker
		}
	}
}

// WithShutdown adds a hook run after the loop exits. Hooks run in the order added.
func WithShutdown(hook func(ctx context.Context) error) Option {
	return func(s *Scheduler) {
		if hook != nil {
			s.shutdown = append(s.shutdown, hook)
		}
	}
}

// WithShutdownTimeout bounds the total time spent in shutdown hooks.
func WithShutdownTimeout(d time.Duration) Option {
	return func(s *Scheduler) {
		if d > 0 {
			s.shutdownTimeout = d
		}
	}
}

// WithLogger sets the scheduler logger.
func WithLogger(l *log.Logger) Option {
	return func(s *Scheduler) {
		if l != nil {
			s.log = l
		}
	}
}

// Scheduler consumes ticks at a fixed rate and drives the keyframes.
// All handler invocations happen on the goroutine calling Run or Step.
type Scheduler struct {
	keyframes *Keyframes
	screen    *core.Screen
	display   core.Display
	period    time.Duration

	newTicker       func(time.Duration) Ticker
	shutdown        []func(context.Context) error
	shutdownTimeout time.Duration
	log             *log.Logger

	entries      []Entry
	resets       []Entry
	counts       []uint64
	tick         uint64
	started      bool
	resetPending bool
	inReset      bool
	frame        Frame
}

// New creates a scheduler over a composed keyframe registry.
func New(keyframes *Keyframes, screen *core.Screen, display core.Display, tickRate int, opts ...Option) (*Scheduler, error) {
	if keyframes == nil {
		return nil, errors.New("animator: keyframes are required")
	}
	if screen == nil {
		return nil, errors.New("animator: screen is required")
	}
	if display == nil {
		return nil, errors.New("animator: display is required")
	}
	if tickRate < 1 {
		return nil, fmt.Errorf("animator: tick rate must be positive, got %d", tickRate)
	}
	s := &Scheduler{
		keyframes:       keyframes,
		screen:          screen,
		display:         display,
		period:          time.Second / time.Duration(tickRate),
		newTicker:       NewTimeTicker,
		shutdownTimeout: defaultShutdownTimeout,
		log:             logger.WithComponent("animator"),
	}
	for _, opt := range opts {
		opt(s)
	}
	s.frame.sched = s
	s.frame.Screen = screen
	return s, nil
}

// Period returns the tick period.
func (s *Scheduler) Period() time.Duration {
	return s.period
}

// Tick returns the counter of the next tick to run.
func (s *Scheduler) Tick() uint64 {
	return s.tick
}

// Run drives ticks until ctx is cancelled or a handler faults.
// Cancellation returns nil. Shutdown hooks run on every exit.
func (s *Scheduler) Run(ctx context.Context) error {
	ticker := s.newTicker(s.period)
	defer ticker.Stop()
	defer s.runShutdown()

	s.log.Info("scheduler started", "period", s.period, "keyframes", s.keyframes.Len())
	for {
		if ctx.Err() != nil {
			s.log.Info("scheduler stopping", "tick", s.tick)
			return nil
		}
		if err := s.Step(ctx); err != nil {
			// Only the run context decides a clean stop; a handler error
			// wrapping a context error is still a fault.
			if ctx.Err() != nil {
				s.log.Info("scheduler stopping", "tick", s.tick)
				return nil
			}
			s.log.Error("scheduler fault", "err", err)
			return err
		}
		select {
		case <-ctx.Done():
			s.log.Info("scheduler stopping", "tick", s.tick)
			return nil
		case <-ticker.C():
		}
	}
}

// Step runs exactly one tick: the due handlers in registration order,
// any requested reset, then a single Present.
func (s *Scheduler) Step(ctx context.Context) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	if !s.started {
		s.start()
		if err := s.runResets(); err != nil {
			return err
		}
	}

	tick := s.tick
	for i := range s.entries {
		e := s.entries[i]
		if !e.Due(tick) {
			continue
		}
		if err := s.invoke(e, &s.counts[i]); err != nil {
			return err
		}
		if s.resetPending {
			if err := s.runResets(); err != nil {
				return err
			}
		}
	}

	if err := s.display.Present(s.screen); err != nil {
		return &FaultError{Tick: tick, Keyframe: "present", Err: err}
	}
	s.tick++
	return nil
}

func (s *Scheduler) start() {
	s.started = true
	s.keyframes.Freeze()
	s.entries = s.keyframes.Entries()
	s.resets = s.keyframes.Resets()
	s.counts = make([]uint64, len(s.entries))
}

func (s *Scheduler) runResets() error {
	s.resetPending = false
	s.inReset = true
	defer func() { s.inReset = false }()
	for _, e := range s.resets {
		var count uint64
		if err := s.invoke(e, &count); err != nil {
			return err
		}
	}
	return nil
}

func (s *Scheduler) invoke(e Entry, count *uint64) error {
	s.frame.Tick = s.tick
	s.frame.Count = *count
	s.frame.resetCount = false

	var herr error
	var pc panics.Catcher
	pc.Try(func() { herr = e.Handler(&s.frame) })
	if r := pc.Recovered(); r != nil {
		herr = r.AsError()
	}
	if herr != nil {
		return &FaultError{Tick: s.tick, Keyframe: e.Name, Err: herr}
	}

	if s.frame.resetCount {
		*count = 0
	} else {
		*count++
	}
	return nil
}

func (s *Scheduler) runShutdown() {
	if len(s.shutdown) == 0 {
		return
	}
	ctx, cancel := context.WithTimeout(context.Background(), s.shutdownTimeout)
	defer cancel()
	for i, hook := range s.shutdown {
		if err := hook(ctx); err != nil {
			s.log.Warn("shutdown hook failed", "hook", i, "err", err)
		}
	}
}
