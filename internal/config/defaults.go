package config

import (
	_ "embed"
	"time"
)

//go:embed defaults/skyboard.yaml
var defaultYAML []byte

// DefaultConfig returns the built-in configuration.
// It matches defaults/skyboard.yaml and is used when the embedded file
// cannot be parsed.
func DefaultConfig() Config {
	return Config{
		Display: DisplayConfig{
			Width:      64,
			Height:     32,
			TickRate:   10,
			Brightness: 100,
			ViewerFPS:  10,
		},
		Power: PowerConfig{
			DayBrightness: 100,
			DimBrightness: 50,
			DimStartHour:  19,
			DimEndHour:    8,
			OffStartHour:  21,
			OffEndHour:    7,
		},
		Features: []string{"clock", "day", "date", "weather", "flights", "loading", "power"},
		Weather: WeatherConfig{
			Location:                  "glasgow",
			Units:                     "metric",
			RainfallHours:             24,
			TemperatureRefreshSeconds: 120,
			StaleAfter:                15 * time.Minute,
			Provider: ProviderConfig{
				Retries:        3,
				AttemptTimeout: 3 * time.Second,
				CacheTTL:       60 * time.Second,
				FetchTimeout:   30 * time.Second,
			},
		},
		Flights: FlightsConfig{
			Feeds: []string{
				"http://localhost:8080/data/aircraft.json",
				"https://api.adsb.lol/v2/point/{lat}/{lon}/{radius}",
			},
			HomeLat:        55.8642,
			HomeLon:        -4.2518,
			RadiusKm:       15,
			MinAltitude:    100,
			MaxAltitude:    10000,
			MaxFlights:     5,
			CheckSeconds:   5,
			RefreshSeconds: 30,
			ScrollTicks:    1,
			Provider: ProviderConfig{
				Retries:        3,
				AttemptTimeout: 3 * time.Second,
				CacheTTL:       10 * time.Second,
				FetchTimeout:   30 * time.Second,
				MaxPerMinute:   30,
			},
		},
		Storage: StorageConfig{
			Enabled: true,
			DBPath:  "~/.skyboard/sightings.db",
		},
		Log: LogConfig{
			Level: "info",
			File:  "~/.skyboard/skyboard.log",
		},
		Shutdown: ShutdownConfig{
			Timeout: 5 * time.Second,
		},
	}
}
