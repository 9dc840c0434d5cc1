// Package config provides YAML-based configuration loading for the display.
// Configuration is read once at startup and never mutated afterwards.
package config

import (
	"errors"
	"fmt"
	"time"
)

// Config is the full runtime configuration.
type Config struct {
	Display  DisplayConfig  `yaml:"display"`
	Power    PowerConfig    `yaml:"power"`
	Features []string       `yaml:"features"` // Enabled scenes, in composition order
	Weather  WeatherConfig  `yaml:"weather"`
	Flights  FlightsConfig  `yaml:"flights"`
	Storage  StorageConfig  `yaml:"storage"`
	Log      LogConfig      `yaml:"log"`
	Shutdown ShutdownConfig `yaml:"shutdown"`
}

// DisplayConfig describes the LED panel and the global tick.
type DisplayConfig struct {
	Width      int `yaml:"width"`
	Height     int `yaml:"height"`
	TickRate   int `yaml:"tick_rate"` // Ticks per second
	Brightness int `yaml:"brightness"`
	ViewerFPS  int `yaml:"viewer_fps"` // Terminal refresh rate
}

// PowerConfig defines the dim and off windows. Windows may cross midnight.
type PowerConfig struct {
	DayBrightness int `yaml:"day_brightness"`
	DimBrightness int `yaml:"dim_brightness"`
	DimStartHour  int `yaml:"dim_start_hour"`
	DimEndHour    int `yaml:"dim_end_hour"`
	OffStartHour  int `yaml:"off_start_hour"`
	OffEndHour    int `yaml:"off_end_hour"`
}

// WeatherConfig configures the weather providers and scene refresh cadence.
type WeatherConfig struct {
	Location                  string         `yaml:"location"`
	OpenWeatherAPIKey         string         `yaml:"openweather_api_key"`
	Units                     string         `yaml:"units"` // "metric" or "imperial"
	RainfallEnabled           bool           `yaml:"rainfall_enabled"`
	RainfallHours             int            `yaml:"rainfall_hours"`
	TemperatureRefreshSeconds int            `yaml:"temperature_refresh_seconds"`
	StaleAfter                time.Duration  `yaml:"stale_after"`
	Provider                  ProviderConfig `yaml:"provider"`
}

// FlightsConfig configures flight feeds, filtering and carousel cadence.
type FlightsConfig struct {
	Feeds          []string       `yaml:"feeds"` // URL templates with {lat}, {lon}, {radius}
	HomeLat        float64        `yaml:"home_lat"`
	HomeLon        float64        `yaml:"home_lon"`
	RadiusKm       float64        `yaml:"radius_km"`
	MinAltitude    int            `yaml:"min_altitude"` // feet
	MaxAltitude    int            `yaml:"max_altitude"`
	MaxFlights     int            `yaml:"max_flights"`
	CheckSeconds   int            `yaml:"check_seconds"`
	RefreshSeconds int            `yaml:"refresh_seconds"`
	ScrollTicks    int            `yaml:"scroll_ticks"` // Ticks per pixel of the details scroller
	Provider       ProviderConfig `yaml:"provider"`
}

// ProviderConfig tunes a provider chain.
type ProviderConfig struct {
	Retries        int           `yaml:"retries"`
	AttemptTimeout time.Duration `yaml:"attempt_timeout"`
	CacheTTL       time.Duration `yaml:"cache_ttl"`
	FetchTimeout   time.Duration `yaml:"fetch_timeout"`
	MaxPerMinute   int           `yaml:"max_per_minute"` // 0 disables rate limiting
}

// StorageConfig configures the sightings database.
type StorageConfig struct {
	Enabled bool   `yaml:"enabled"`
	DBPath  string `yaml:"db_path"`
}

// LogConfig configures logging.
type LogConfig struct {
	Level string `yaml:"level"`
	File  string `yaml:"file"` // Used while the terminal viewer owns the screen
}

// ShutdownConfig bounds orderly shutdown.
type ShutdownConfig struct {
	Timeout time.Duration `yaml:"timeout"`
}

// Validate checks the configuration for values the engine cannot run with.
func (c *Config) Validate() error {
	var errs []error

	if c.Display.Width <= 0 || c.Display.Height <= 0 {
		errs = append(errs, fmt.Errorf("display size must be positive, got %dx%d", c.Display.Width, c.Display.Height))
	}
	if c.Display.TickRate <= 0 {
		errs = append(errs, fmt.Errorf("display.tick_rate must be positive, got %d", c.Display.TickRate))
	}
	if c.Display.Brightness < 0 || c.Display.Brightness > 100 {
		errs = append(errs, fmt.Errorf("display.brightness must be 0-100, got %d", c.Display.Brightness))
	}
	if len(c.Features) == 0 {
		errs = append(errs, errors.New("at least one feature must be enabled"))
	}

	for name, hour := range map[string]int{
		"power.dim_start_hour": c.Power.DimStartHour,
		"power.dim_end_hour":   c.Power.DimEndHour,
		"power.off_start_hour": c.Power.OffStartHour,
		"power.off_end_hour":   c.Power.OffEndHour,
	} {
		if hour < 0 || hour > 23 {
			errs = append(errs, fmt.Errorf("%s must be 0-23, got %d", name, hour))
		}
	}

	if c.Weather.Units != "metric" && c.Weather.Units != "imperial" {
		errs = append(errs, fmt.Errorf("weather.units must be metric or imperial, got %q", c.Weather.Units))
	}
	if c.Weather.TemperatureRefreshSeconds <= 0 {
		errs = append(errs, errors.New("weather.temperature_refresh_seconds must be positive"))
	}
	if c.Flights.CheckSeconds <= 0 || c.Flights.RefreshSeconds <= 0 {
		errs = append(errs, errors.New("flights.check_seconds and flights.refresh_seconds must be positive"))
	}
	if c.Flights.MaxAltitude < c.Flights.MinAltitude {
		errs = append(errs, errors.New("flights.max_altitude must not be below min_altitude"))
	}

	for _, p := range []struct {
		name string
		cfg  ProviderConfig
	}{{"weather.provider", c.Weather.Provider}, {"flights.provider", c.Flights.Provider}} {
		if p.cfg.Retries <= 0 {
			errs = append(errs, fmt.Errorf("%s.retries must be positive", p.name))
		}
		if p.cfg.AttemptTimeout <= 0 {
			errs = append(errs, fmt.Errorf("%s.attempt_timeout must be positive", p.name))
		}
		if p.cfg.CacheTTL < time.Second {
			errs = append(errs, fmt.Errorf("%s.cache_ttl must be at least 1s", p.name))
		}
	}

	return errors.Join(errs...)
}

// Enabled reports whether the feature id is in the composition list.
func (c *Config) Enabled(id string) bool {
	for _, f := range c.Features {
		if f == id {
			return true
		}
	}
	return false
}
