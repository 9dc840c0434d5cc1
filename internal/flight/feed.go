package flight

import (
	"context"
	"errors"
	"fmt"
	"io"
	"math"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	json "github.com/goccy/go-json"
)

const kmPerNauticalMile = 1.852

// Area is the region a feed is asked about.
type Area struct {
	Lat      float64
	Lon      float64
	RadiusKm float64
}

// Key identifies the area for caching.
func (a Area) Key() string {
	return fmt.Sprintf("%.4f,%.4f,%.1f", a.Lat, a.Lon, a.RadiusKm)
}

// Feed reads a readsb or dump1090 compatible aircraft.json. The URL may
// carry {lat}, {lon} and {radius} placeholders; radius is in nautical miles.
type Feed struct {
	URL    string
	Client *http.Client
}

// Name returns the feed host, for logs.
func (f *Feed) Name() string {
	u, err := url.Parse(f.URL)
	if err != nil || u.Host == "" {
		return f.URL
	}
	return u.Host
}

// Resolve expands the URL template for an area.
func (f *Feed) Resolve(a Area) string {
	radius := int(math.Ceil(a.RadiusKm / kmPerNauticalMile))
	if radius < 1 {
		radius = 1
	}
	r := strings.NewReplacer(
		"{lat}", strconv.FormatFloat(a.Lat, 'f', 4, 64),
		"{lon}", strconv.FormatFloat(a.Lon, 'f', 4, 64),
		"{radius}", strconv.Itoa(radius),
	)
	return r.Replace(f.URL)
}

type aircraftPayload struct {
	Aircraft []aircraft `json:"aircraft"`
	AC       []aircraft `json:"ac"`
}

type aircraft struct {
	Hex          string   `json:"hex"`
	Flight       string   `json:"flight"`
	Registration string   `json:"r"`
	Type         string   `json:"t"`
	AltBaro      any      `json:"alt_baro"` // feet, or "ground"
	GroundSpeed  float64  `json:"gs"`
	Lat          *float64 `json:"lat"`
	Lon          *float64 `json:"lon"`
	Origin       string   `json:"origin"`
	Destination  string   `json:"destination"`
}

// Fetch returns every aircraft the feed reports for the area.
func (f *Feed) Fetch(ctx context.Context, a Area) ([]Flight, error) {
	client := f.Client
	if client == nil {
		client = &http.Client{Timeout: 10 * time.Second}
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, f.Resolve(a), nil)
	if err != nil {
		return nil, fmt.Errorf("flight: %s: build request: %w", f.Name(), err)
	}
	req.Header.Set("Accept", "application/json")
	req.Header.Set("User-Agent", "skyboard")

	resp, err := client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("flight: %s: %w", f.Name(), err)
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		_, _ = io.Copy(io.Discard, io.LimitReader(resp.Body, 4096))
		return nil, fmt.Errorf("flight: %s: unexpected status %d", f.Name(), resp.StatusCode)
	}

	var p aircraftPayload
	if err := json.NewDecoder(resp.Body).Decode(&p); err != nil {
		return nil, fmt.Errorf("flight: %s: decode: %w", f.Name(), err)
	}
	if p.Aircraft == nil && p.AC == nil {
		return nil, errors.New("flight: " + f.Name() + ": response has no aircraft list")
	}

	list := p.Aircraft
	if len(list) == 0 {
		list = p.AC
	}
	flights := make([]Flight, 0, len(list))
	for _, ac := range list {
		flights = append(flights, ac.toFlight())
	}
	return flights, nil
}

func (ac aircraft) toFlight() Flight {
	fl := Flight{
		Hex:          strings.TrimSpace(ac.Hex),
		Callsign:     strings.TrimSpace(ac.Flight),
		Registration: strings.TrimSpace(ac.Registration),
		AircraftType: strings.TrimSpace(ac.Type),
		Origin:       strings.TrimSpace(ac.Origin),
		Destination:  strings.TrimSpace(ac.Destination),
		GroundSpeed:  ac.GroundSpeed,
	}
	if v, ok := ac.AltBaro.(float64); ok {
		fl.Altitude = int(math.Round(v))
	}
	if ac.Lat != nil && ac.Lon != nil {
		fl.Lat, fl.Lon = *ac.Lat, *ac.Lon
		fl.HasPosition = true
	}
	return fl
}
