package flight

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"time"

	"github.com/charmbracelet/log"
	"golang.org/x/time/rate"

	"github.com/vovakirdan/skyboard/internal/config"
	"github.com/vovakirdan/skyboard/internal/logger"
	"github.com/vovakirdan/skyboard/internal/provider"
)

// Recorder persists sightings. It is called from the acquisition worker.
type Recorder interface {
	RecordSightings(ctx context.Context, flights []Flight) error
}

// Service fetches the flights overhead: feeds are tried in order, results
// are filtered around home, and sightings are recorded.
type Service struct {
	area     Area
	filter   Filter
	chain    *provider.Chain[[]Flight]
	recorder Recorder
	log      *log.Logger
}

type serviceOptions struct {
	client       *http.Client
	recorder     Recorder
	chainOptions []provider.Option
}

// ServiceOption configures a Service.
type ServiceOption func(*serviceOptions)

// WithHTTPClient sets the HTTP client for every feed.
func WithHTTPClient(c *http.Client) ServiceOption {
	return func(o *serviceOptions) { o.client = c }
}

// WithRecorder records every filtered batch.
func WithRecorder(r Recorder) ServiceOption {
	return func(o *serviceOptions) { o.recorder = r }
}

// WithChainOptions appends options to the feed chain.
func WithChainOptions(opts ...provider.Option) ServiceOption {
	return func(o *serviceOptions) { o.chainOptions = append(o.chainOptions, opts...) }
}

// NewService builds the feed chain from configuration.
func NewService(cfg config.FlightsConfig, opts ...ServiceOption) (*Service, error) {
	if len(cfg.Feeds) == 0 {
		return nil, errors.New("flight: at least one feed is required")
	}
	var o serviceOptions
	for _, opt := range opts {
		opt(&o)
	}

	area := Area{Lat: cfg.HomeLat, Lon: cfg.HomeLon, RadiusKm: cfg.RadiusKm}
	providers := make([]provider.Provider[[]Flight], 0, len(cfg.Feeds))
	for _, u := range cfg.Feeds {
		feed := &Feed{URL: u, Client: o.client}
		providers = append(providers, provider.Provider[[]Flight]{
			Name:  feed.Name(),
			Fetch: func(ctx context.Context, _ string) ([]Flight, error) {
				return feed.Fetch(ctx, area)
			},
		})
	}

	chainOpts := []provider.Option{
		provider.WithName("flights"),
		provider.WithRetries(cfg.Provider.Retries),
		provider.WithAttemptTimeout(cfg.Provider.AttemptTimeout),
		provider.WithTTL(cfg.Provider.CacheTTL),
	}
	if cfg.Provider.MaxPerMinute > 0 {
		chainOpts = append(chainOpts, provider.WithRateLimit(rate.Limit(float64(cfg.Provider.MaxPerMinute)/60), 1))
	}
	chain, err := provider.NewChain(providers, append(chainOpts, o.chainOptions...)...)
	if err != nil {
		return nil, fmt.Errorf("flight: %w", err)
	}

	return &Service{
		area: area,
		filter: Filter{
			HomeLat:     cfg.HomeLat,
			HomeLon:     cfg.HomeLon,
			RadiusKm:    cfg.RadiusKm,
			MinAltitude: cfg.MinAltitude,
			MaxAltitude: cfg.MaxAltitude,
			MaxFlights:  cfg.MaxFlights,
		},
		chain:    chain,
		recorder: o.recorder,
		log:      logger.WithComponent("flight"),
	}, nil
}

// Stats returns the feed chain counters.
func (s *Service) Stats() provider.Stats {
	return s.chain.Stats()
}

// Fetch is the acquisition fetcher for the flights channel. It fails when
// every feed is unavailable; an empty sky is an empty batch.
func (s *Service) Fetch(ctx context.Context) ([]Flight, error) {
	start := time.Now()
	raw, err := s.chain.Fetch(ctx, s.area.Key())
	if err != nil {
		return nil, err
	}
	flights := s.filter.Apply(raw)
	s.log.Debug("flights fetched", "seen", len(raw), "overhead", len(flights), "took", time.Since(start))

	if s.recorder != nil && len(flights) > 0 {
		if err := s.recorder.RecordSightings(ctx, flights); err != nil {
			s.log.Warn("record sightings failed", "err", err)
		}
	}
	return flights, nil
}
