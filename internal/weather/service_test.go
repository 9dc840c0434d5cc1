package weather

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"
	"time"

	"github.com/cenkalti/backoff/v5"

	"github.com/vovakirdan/skyboard/internal/config"
	"github.com/vovakirdan/skyboard/internal/provider"
)

func testWeatherConfig() config.WeatherConfig {
	cfg := config.DefaultConfig().Weather
	cfg.Provider.AttemptTimeout = time.Second
	return cfg
}

func zeroBackOff() ServiceOption {
	return WithChainOptions(provider.WithBackOff(func() backoff.BackOff { return &backoff.ZeroBackOff{} }))
}

func TestNewServiceRequiresLocation(t *testing.T) {
	cfg := testWeatherConfig()
	cfg.Location = ""
	if _, err := NewService(cfg); err == nil {
		t.Fatal("expected error for empty location")
	}
}

func TestServiceProvidersFollowConfig(t *testing.T) {
	cfg := testWeatherConfig()
	s, err := NewService(cfg)
	if err != nil {
		t.Fatalf("NewService: %v", err)
	}
	p := s.Providers()
	if len(p) != 1 || len(p["temperature"]) != 1 || p["temperature"][0] != "taps-aff" {
		t.Fatalf("keyless providers = %v", p)
	}

	cfg.OpenWeatherAPIKey = "k"
	cfg.RainfallEnabled = true
	s, err = NewService(cfg)
	if err != nil {
		t.Fatalf("NewService: %v", err)
	}
	p = s.Providers()
	if got := p["temperature"]; len(got) != 2 || got[0] != "openweather" || got[1] != "taps-aff" {
		t.Fatalf("temperature chain = %v", got)
	}
	if len(p["forecast"]) != 1 || len(p["rainfall"]) != 1 {
		t.Fatalf("providers = %v", p)
	}
}

func TestServiceFetchTapsAff(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte(tapsAffBody))
	}))
	defer srv.Close()

	cfg := testWeatherConfig()
	cfg.RainfallEnabled = true
	now := time.Date(2026, 4, 2, 9, 0, 0, 0, time.UTC)
	s, err := NewService(cfg, WithHTTPClient(srv.Client()), WithTapsAffURL(srv.URL),
		WithNow(func() time.Time { return now }), zeroBackOff())
	if err != nil {
		t.Fatalf("NewService: %v", err)
	}

	batch, err := s.Fetch(context.Background())
	if err != nil {
		t.Fatalf("Fetch: %v", err)
	}
	if len(batch) != 1 {
		t.Fatalf("batch = %+v", batch)
	}
	r := batch[0]
	if r.Current == nil || r.Current.Celsius != 11.4 {
		t.Fatalf("current = %+v", r.Current)
	}
	if r.Forecast != nil {
		t.Fatal("forecast needs an OpenWeather key")
	}
	if len(r.Hourly) != 3 || !r.FetchedAt.Equal(now) {
		t.Fatalf("report = %+v", r)
	}
}

func TestServiceFallsBackToTapsAff(t *testing.T) {
	var owCalls atomic.Int32
	ow := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		owCalls.Add(1)
		w.WriteHeader(http.StatusUnauthorized)
	}))
	defer ow.Close()
	ta := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte(tapsAffBody))
	}))
	defer ta.Close()

	cfg := testWeatherConfig()
	cfg.OpenWeatherAPIKey = "bad-key"
	s, err := NewService(cfg, WithTapsAffURL(ta.URL), WithOpenWeatherURLs(ow.URL, ow.URL+"/geo"), zeroBackOff())
	if err != nil {
		t.Fatalf("NewService: %v", err)
	}

	batch, err := s.Fetch(context.Background())
	if err != nil {
		t.Fatalf("Fetch: %v", err)
	}
	if len(batch) != 1 || batch[0].Current == nil || batch[0].Current.Source != "taps-aff" {
		t.Fatalf("batch = %+v", batch)
	}
	if batch[0].Forecast != nil {
		t.Fatal("failed forecast chain should leave the forecast nil")
	}
	// current: 3 attempts; forecast: 3 geocode attempts
	if n := owCalls.Load(); n != 6 {
		t.Fatalf("openweather calls = %d, want 6", n)
	}
}

func TestServiceAllUnavailableIsEmptyBatch(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusBadGateway)
	}))
	defer srv.Close()

	s, err := NewService(testWeatherConfig(), WithTapsAffURL(srv.URL), zeroBackOff())
	if err != nil {
		t.Fatalf("NewService: %v", err)
	}
	batch, err := s.Fetch(context.Background())
	if err != nil {
		t.Fatalf("Fetch: %v", err)
	}
	if len(batch) != 0 {
		t.Fatalf("expected empty batch, got %+v", batch)
	}
	if st := s.Stats()["temperature"]; st.Attempts != 3 || st.Failures != 1 {
		t.Fatalf("stats = %+v", st)
	}
}

func TestServiceFetchCancelled(t *testing.T) {
	s, err := NewService(testWeatherConfig(), WithTapsAffURL("http://127.0.0.1:1"), zeroBackOff())
	if err != nil {
		t.Fatalf("NewService: %v", err)
	}
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	if _, err := s.Fetch(ctx); !errors.Is(err, context.Canceled) {
		t.Fatalf("Fetch = %v, want context.Canceled", err)
	}
}
