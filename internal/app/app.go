// Package app wires configuration, data channels, features and the
// scheduler into one running display.
package app

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"time"

	"github.com/charmbracelet/log"

	"github.com/vovakirdan/skyboard/internal/animator"
	"github.com/vovakirdan/skyboard/internal/config"
	"github.com/vovakirdan/skyboard/internal/core"
	"github.com/vovakirdan/skyboard/internal/flight"
	"github.com/vovakirdan/skyboard/internal/logger"
	"github.com/vovakirdan/skyboard/internal/overhead"
	"github.com/vovakirdan/skyboard/internal/registry"
	"github.com/vovakirdan/skyboard/internal/scene"
	"github.com/vovakirdan/skyboard/internal/scenes/clearscreen"
	"github.com/vovakirdan/skyboard/internal/storage"
	"github.com/vovakirdan/skyboard/internal/weather"
)

// SightingStore persists flights seen overhead.
type SightingStore interface {
	flight.Recorder
	Close() error
}

type options struct {
	now            func() time.Time
	client         *http.Client
	store          SightingStore
	ticker         func(time.Duration) animator.Ticker
	flightFetcher  overhead.Fetcher[flight.Flight]
	weatherFetcher overhead.Fetcher[weather.Report]
}

// Option configures an App.
type Option func(*options)

// WithNow overrides the wall clock.
func WithNow(now func() time.Time) Option {
	return func(o *options) { o.now = now }
}

// WithHTTPClient sets the client used by every provider.
func WithHTTPClient(c *http.Client) Option {
	return func(o *options) { o.client = c }
}

// WithStore uses store for sightings instead of opening storage.db_path.
func WithStore(store SightingStore) Option {
	return func(o *options) { o.store = store }
}

// WithTicker replaces the scheduler's wall-clock ticker.
func WithTicker(newTicker func(time.Duration) animator.Ticker) Option {
	return func(o *options) { o.ticker = newTicker }
}

// WithFlightFetcher replaces the flight provider chain.
func WithFlightFetcher(f overhead.Fetcher[flight.Flight]) Option {
	return func(o *options) { o.flightFetcher = f }
}

// WithWeatherFetcher replaces the weather provider chain.
func WithWeatherFetcher(f overhead.Fetcher[weather.Report]) Option {
	return func(o *options) { o.weatherFetcher = f }
}

// App is the application container: immutable dependencies plus the
// scheduler that owns the run loop.
type App struct {
	Config    config.Config
	Env       *scene.Env
	Flights   *overhead.Channel[flight.Flight]
	Weather   *overhead.Channel[weather.Report]
	Features  []registry.Feature
	Scheduler *animator.Scheduler

	store SightingStore
	log   *log.Logger
}

// New builds the display from cfg. Feature ids come from cfg.Features, in
// order; the screen-clearing reset handler is always composed first unless
// listed explicitly.
func New(cfg config.Config, display core.Display, opts ...Option) (*App, error) {
	if display == nil {
		return nil, errors.New("app: display is nil")
	}
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("app: invalid config: %w", err)
	}

	o := options{now: time.Now}
	for _, opt := range opts {
		opt(&o)
	}
	if o.now == nil {
		o.now = time.Now
	}

	a := &App{Config: cfg, log: logger.WithComponent("app")}
	if err := a.openStore(o); err != nil {
		return nil, err
	}

	if err := a.buildChannels(o); err != nil {
		a.close(context.Background())
		return nil, err
	}

	a.Env = &scene.Env{
		Config:  cfg,
		Display: display,
		Now:     o.now,
		Flights: a.Flights,
		Weather: a.Weather,
		Board:   &scene.Board{},
	}
	display.SetBrightness(cfg.Display.Brightness)

	k := animator.NewKeyframes()
	features, err := registry.Compose(FeatureIDs(cfg), a.Env, k)
	if err != nil {
		a.close(context.Background())
		return nil, fmt.Errorf("app: %w", err)
	}
	a.Features = features

	screen := core.NewScreen(cfg.Display.Width, cfg.Display.Height)
	sched, err := animator.New(k, screen, display, cfg.Display.TickRate,
		animator.WithTicker(o.ticker),
		animator.WithShutdownTimeout(cfg.Shutdown.Timeout),
		animator.WithShutdown(a.close),
	)
	if err != nil {
		a.close(context.Background())
		return nil, fmt.Errorf("app: %w", err)
	}
	a.Scheduler = sched

	a.log.Info("display composed",
		"features", FeatureIDs(cfg),
		"keyframes", k.Len(),
		"size", fmt.Sprintf("%dx%d", cfg.Display.Width, cfg.Display.Height),
	)
	return a, nil
}

// FeatureIDs returns the composition order used for cfg.
func FeatureIDs(cfg config.Config) []string {
	if cfg.Enabled(clearscreen.ID) {
		return cfg.Features
	}
	return append([]string{clearscreen.ID}, cfg.Features...)
}

func (a *App) openStore(o options) error {
	if o.store != nil {
		a.store = o.store
		return nil
	}
	if !a.Config.Storage.Enabled {
		return nil
	}
	store, err := storage.Open(a.Config.Storage.DBPath)
	if err != nil {
		// Sightings are a side log; the display runs without them.
		a.log.Warn("could not open sightings database", "error", err)
		return nil
	}
	a.store = store
	return nil
}

func (a *App) buildChannels(o options) error {
	cfg := a.Config

	flightFetch := o.flightFetcher
	if flightFetch == nil {
		fopts := []flight.ServiceOption{flight.WithHTTPClient(o.client)}
		if a.store != nil {
			fopts = append(fopts, flight.WithRecorder(a.store))
		}
		svc, err := flight.NewService(cfg.Flights, fopts...)
		if err != nil {
			return fmt.Errorf("app: flights: %w", err)
		}
		flightFetch = svc.Fetch
	}

	weatherFetch := o.weatherFetcher
	if weatherFetch == nil {
		svc, err := weather.NewService(cfg.Weather, weather.WithHTTPClient(o.client), weather.WithNow(o.now))
		if err != nil {
			return fmt.Errorf("app: weather: %w", err)
		}
		weatherFetch = svc.Fetch
	}

	a.Flights = overhead.New("flights", flightFetch,
		overhead.WithTimeout(cfg.Flights.Provider.FetchTimeout),
		overhead.WithNow(o.now),
	)
	a.Weather = overhead.New("weather", weatherFetch,
		overhead.WithTimeout(cfg.Weather.Provider.FetchTimeout),
		overhead.WithNow(o.now),
	)
	return nil
}

// Run starts the first flight fetch and drives the display until ctx is
// cancelled or a keyframe faults. Cancellation returns nil.
func (a *App) Run(ctx context.Context) error {
	a.Flights.RequestRefresh()
	return a.Scheduler.Run(ctx)
}

// close stops the data channels and the sightings store.
func (a *App) close(ctx context.Context) error {
	var errs []error
	if a.Flights != nil {
		errs = append(errs, a.Flights.Close(ctx))
	}
	if a.Weather != nil {
		errs = append(errs, a.Weather.Close(ctx))
	}
	if a.store != nil {
		errs = append(errs, a.store.Close())
		a.store = nil
	}
	return errors.Join(errs...)
}
