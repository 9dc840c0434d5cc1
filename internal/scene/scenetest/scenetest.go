// Package scenetest drives composed features tick by tick in tests.
package scenetest

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/vovakirdan/skyboard/internal/animator"
	"github.com/vovakirdan/skyboard/internal/config"
	"github.com/vovakirdan/skyboard/internal/core"
	"github.com/vovakirdan/skyboard/internal/flight"
	"github.com/vovakirdan/skyboard/internal/overhead"
	"github.com/vovakirdan/skyboard/internal/registry"
	"github.com/vovakirdan/skyboard/internal/scene"
	"github.com/vovakirdan/skyboard/internal/weather"
)

// Display records presents and brightness changes.
type Display struct {
	mu         sync.Mutex
	presents   int
	brightness int
	changes    int
}

func (d *Display) Present(*core.Screen) error {
	d.mu.Lock()
	defer d.mu.Unlock()
	d.presents++
	return nil
}

func (d *Display) SetBrightness(p int) {
	d.mu.Lock()
	defer d.mu.Unlock()
	d.brightness = p
	d.changes++
}

func (d *Display) Brightness() int {
	d.mu.Lock()
	defer d.mu.Unlock()
	return d.brightness
}

// Changes returns how many times SetBrightness was called.
func (d *Display) Changes() int {
	d.mu.Lock()
	defer d.mu.Unlock()
	return d.changes
}

// Harness is a composed scene over fake data sources.
type Harness struct {
	T         testing.TB
	Config    config.Config
	Env       *scene.Env
	Display   *Display
	Screen    *core.Screen
	Scheduler *animator.Scheduler

	mu       sync.Mutex
	now      time.Time
	flights  []flight.Flight
	reports  []weather.Report
	fetchErr error
	gate     chan struct{}
}

// New composes the features with the default configuration. mutate may
// adjust the configuration first.
func New(t testing.TB, features []string, mutate func(*config.Config)) *Harness {
	t.Helper()
	cfg := config.DefaultConfig()
	cfg.Features = features
	if mutate != nil {
		mutate(&cfg)
	}

	h := &Harness{
		T:       t,
		Config:  cfg,
		Display: &Display{brightness: cfg.Display.Brightness},
		Screen:  core.NewScreen(cfg.Display.Width, cfg.Display.Height),
		now:     time.Date(2026, 10, 14, 12, 34, 0, 0, time.UTC),
	}
	flights := overhead.New("flights", func(ctx context.Context) ([]flight.Flight, error) {
		if err := h.waitGate(ctx); err != nil {
			return nil, err
		}
		h.mu.Lock()
		defer h.mu.Unlock()
		return h.flights, h.fetchErr
	})
	reports := overhead.New("weather", func(ctx context.Context) ([]weather.Report, error) {
		if err := h.waitGate(ctx); err != nil {
			return nil, err
		}
		h.mu.Lock()
		defer h.mu.Unlock()
		return h.reports, h.fetchErr
	}, overhead.WithNow(h.Now))
	t.Cleanup(func() {
		_ = flights.Close(context.Background())
		_ = reports.Close(context.Background())
	})

	h.Env = &scene.Env{
		Config:  cfg,
		Display: h.Display,
		Now:     h.Now,
		Flights: flights,
		Weather: reports,
		Board:   &scene.Board{},
	}

	k := animator.NewKeyframes()
	if _, err := registry.Compose(features, h.Env, k); err != nil {
		t.Fatalf("Compose: %v", err)
	}
	s, err := animator.New(k, h.Screen, h.Display, cfg.Display.TickRate)
	if err != nil {
		t.Fatalf("animator.New: %v", err)
	}
	h.Scheduler = s
	return h
}

// Now returns the fake wall clock.
func (h *Harness) Now() time.Time {
	h.mu.Lock()
	defer h.mu.Unlock()
	return h.now
}

// SetNow moves the fake wall clock.
func (h *Harness) SetNow(t time.Time) {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.now = t
}

// SetFlights sets the batch the next flight fetch returns.
func (h *Harness) SetFlights(flights ...flight.Flight) {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.flights = flights
}

// SetReports sets the batch the next weather fetch returns.
func (h *Harness) SetReports(reports ...weather.Report) {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.reports = reports
}

// SetFetchError makes every fetch fail with err.
func (h *Harness) SetFetchError(err error) {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.fetchErr = err
}

// HoldFetches blocks every fetch until ReleaseFetches.
func (h *Harness) HoldFetches() {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.gate = make(chan struct{})
}

// ReleaseFetches lets held fetches complete.
func (h *Harness) ReleaseFetches() {
	h.mu.Lock()
	defer h.mu.Unlock()
	if h.gate != nil {
		close(h.gate)
		h.gate = nil
	}
}

func (h *Harness) waitGate(ctx context.Context) error {
	h.mu.Lock()
	gate := h.gate
	h.mu.Unlock()
	if gate == nil {
		return nil
	}
	select {
	case <-gate:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}

// Step runs n ticks.
func (h *Harness) Step(n int) {
	h.T.Helper()
	for i := 0; i < n; i++ {
		if err := h.Scheduler.Step(context.Background()); err != nil {
			h.T.Fatalf("tick %d: %v", h.Scheduler.Tick(), err)
		}
	}
}

// WaitIdle blocks until no fetch is in flight.
func (h *Harness) WaitIdle() {
	h.T.Helper()
	deadline := time.Now().Add(2 * time.Second)
	for h.Env.Flights.Processing() || h.Env.Weather.Processing() {
		if time.Now().After(deadline) {
			h.T.Fatal("fetch still in flight")
		}
		time.Sleep(time.Millisecond)
	}
}

// WaitStaged blocks until ch has a staged batch.
func (h *Harness) WaitStaged(ch interface{ PollNew() bool }) {
	h.T.Helper()
	deadline := time.Now().Add(2 * time.Second)
	for !ch.PollNew() {
		if time.Now().After(deadline) {
			h.T.Fatal("no staged batch")
		}
		time.Sleep(time.Millisecond)
	}
}

// SameLit reports whether a and b light the same pixels inside r.
func SameLit(a, b *core.Screen, r core.Rect) bool {
	for y := r.Y; y < r.Bottom(); y++ {
		for x := r.X; x < r.Right(); x++ {
			if a.Get(x, y).IsBlack() != b.Get(x, y).IsBlack() {
				return false
			}
		}
	}
	return true
}

// AreaLit counts lit pixels inside r.
func (h *Harness) AreaLit(r core.Rect) int {
	n := 0
	for y := r.Y; y < r.Bottom(); y++ {
		for x := r.X; x < r.Right(); x++ {
			if !h.Screen.Get(x, y).IsBlack() {
				n++
			}
		}
	}
	return n
}
