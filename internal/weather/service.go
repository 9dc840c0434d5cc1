package weather

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

// Service fetches weather reports through provider chains built once from
// configuration: OpenWeather first when a key is set, taps-aff as fallback.
type Service struct {
	location    string
	temperature *provider.Chain[Reading]
	forecast    *provider.Chain[Forecast] // nil without an OpenWeather key
	rainfall    *provider.Chain[[]Hour]   // nil unless rainfall is enabled
	now         func() time.Time
	log         *log.Logger
}

type serviceOptions struct {
	client       *http.Client
	tapsAffURL   string
	owURL        string
	geocodeURL   string
	now          func() time.Time
	chainOptions []provider.Option
}

// ServiceOption configures a Service.
type ServiceOption func(*serviceOptions)

// WithHTTPClient sets the HTTP client for every provider.
func WithHTTPClient(c *http.Client) ServiceOption {
	return func(o *serviceOptions) { o.client = c }
}

// WithTapsAffURL overrides the taps-aff API root.
func WithTapsAffURL(u string) ServiceOption {
	return func(o *serviceOptions) { o.tapsAffURL = u }
}

// WithOpenWeatherURLs overrides the OpenWeather API root and geocoding endpoint.
func WithOpenWeatherURLs(base, geocode string) ServiceOption {
	return func(o *serviceOptions) {
		o.owURL = base
		o.geocodeURL = geocode
	}
}

// WithNow injects the clock.
func WithNow(now func() time.Time) ServiceOption {
	return func(o *serviceOptions) {
		if now != nil {
			o.now = now
		}
	}
}

// WithChainOptions appends options to every provider chain.
func WithChainOptions(opts ...provider.Option) ServiceOption {
	return func(o *serviceOptions) { o.chainOptions = append(o.chainOptions, opts...) }
}

// ChainOptions translates provider configuration into chain options.
func ChainOptions(name string, cfg config.ProviderConfig) []provider.Option {
	opts := []provider.Option{
		provider.WithName(name),
		provider.WithRetries(cfg.Retries),
		provider.WithAttemptTimeout(cfg.AttemptTimeout),
		provider.WithTTL(cfg.CacheTTL),
	}
	if cfg.MaxPerMinute > 0 {
		opts = append(opts, provider.WithRateLimit(rate.Limit(float64(cfg.MaxPerMinute)/60), 1))
	}
	return opts
}

// NewService builds the weather chains.
func NewService(cfg config.WeatherConfig, opts ...ServiceOption) (*Service, error) {
	if cfg.Location == "" {
		return nil, errors.New("weather: location is required")
	}
	o := serviceOptions{now: time.Now}
	for _, opt := range opts {
		opt(&o)
	}

	tapsAff := &TapsAff{BaseURL: o.tapsAffURL, Client: o.client}
	var ow *OpenWeather
	if cfg.OpenWeatherAPIKey != "" {
		ow = &OpenWeather{APIKey: cfg.OpenWeatherAPIKey, BaseURL: o.owURL, GeocodeURL: o.geocodeURL, Client: o.client}
	}
	chainOpts := func(name string) []provider.Option {
		base := ChainOptions(name, cfg.Provider)
		base = append(base, provider.WithNow(o.now))
		return append(base, o.chainOptions...)
	}

	s := &Service{
		location: cfg.Location,
		now:      o.now,
		log:      logger.WithComponent("weather"),
	}

	var temps []provider.Provider[Reading]
	if ow != nil {
		temps = append(temps, provider.Provider[Reading]{Name: "openweather", Fetch: ow.Current})
	}
	temps = append(temps, provider.Provider[Reading]{Name: "taps-aff", Fetch: tapsAff.Current})
	var err error
	if s.temperature, err = provider.NewChain(temps, chainOpts("temperature")...); err != nil {
		return nil, fmt.Errorf("weather: temperature chain: %w", err)
	}

	if ow != nil {
		forecasts := []provider.Provider[Forecast]{{Name: "openweather", Fetch: ow.Forecast}}
		if s.forecast, err = provider.NewChain(forecasts, chainOpts("forecast")...); err != nil {
			return nil, fmt.Errorf("weather: forecast chain: %w", err)
		}
	}

	if cfg.RainfallEnabled {
		hourly := []provider.Provider[[]Hour]{{Name: "taps-aff", Fetch: tapsAff.Hourly}}
		if s.rainfall, err = provider.NewChain(hourly, chainOpts("rainfall")...); err != nil {
			return nil, fmt.Errorf("weather: rainfall chain: %w", err)
		}
	}
	return s, nil
}

// Providers lists the chains and their providers, for diagnostics.
func (s *Service) Providers() map[string][]string {
	out := map[string][]string{"temperature": s.temperature.Providers()}
	if s.forecast != nil {
		out["forecast"] = s.forecast.Providers()
	}
	if s.rainfall != nil {
		out["rainfall"] = s.rainfall.Providers()
	}
	return out
}

// Stats returns per-chain counters.
func (s *Service) Stats() map[string]provider.Stats {
	out := map[string]provider.Stats{"temperature": s.temperature.Stats()}
	if s.forecast != nil {
		out["forecast"] = s.forecast.Stats()
	}
	if s.rainfall != nil {
		out["rainfall"] = s.rainfall.Stats()
	}
	return out
}

// Fetch acquires one report. Unavailable chains leave their fields nil;
// when every chain is unavailable the batch is empty. Only cancellation of
// ctx is returned as an error.
func (s *Service) Fetch(ctx context.Context) ([]Report, error) {
	r := Report{FetchedAt: s.now()}

	if reading, err := s.temperature.Fetch(ctx, s.location); err == nil {
		r.Current = &reading
	} else if ctx.Err() != nil {
		return nil, ctx.Err()
	} else {
		s.log.Warn("temperature unavailable", "location", s.location, "err", err)
	}

	if s.forecast != nil {
		if f, err := s.forecast.Fetch(ctx, s.location); err == nil {
			r.Forecast = &f
		} else if ctx.Err() != nil {
			return nil, ctx.Err()
		} else {
			s.log.Warn("forecast unavailable", "location", s.location, "err", err)
		}
	}

	if s.rainfall != nil {
		if hours, err := s.rainfall.Fetch(ctx, s.location); err == nil {
			r.Hourly = hours
		} else if ctx.Err() != nil {
			return nil, ctx.Err()
		} else {
			s.log.Warn("rainfall unavailable", "location", s.location, "err", err)
		}
	}

	if r.Empty() {
		return []Report{}, nil
	}
	return []Report{r}, nil
}
