package weather

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"sync"
	"time"
)

const (
	DefaultOpenWeatherURL = "https://api.openweathermap.org"
	DefaultGeocodeURL     = "http://api.openweathermap.org/geo/1.0/direct"
)

// forecastSlot is the hourly index used for the forecast, two hours ahead.
const forecastSlot = 2

// OpenWeather reads the OpenWeatherMap APIs. Requests are always made in
// metric units.
type OpenWeather struct {
	APIKey     string
	BaseURL    string
	GeocodeURL string
	Client     *http.Client

	mu     sync.Mutex
	coords map[string][2]float64
}

type owCurrent struct {
	Main *struct {
		Temp float64 `json:"temp"`
	} `json:"main"`
}

type owGeo []struct {
	Lat float64 `json:"lat"`
	Lon float64 `json:"lon"`
}

type owOneCall struct {
	TimezoneOffset int64 `json:"timezone_offset"`
	Current        *struct {
		Temp float64 `json:"temp"`
	} `json:"current"`
	Hourly []struct {
		Dt      int64   `json:"dt"`
		Temp    float64 `json:"temp"`
		Weather []struct {
			Icon string `json:"icon"`
		} `json:"weather"`
	} `json:"hourly"`
}

func (o *OpenWeather) client() *http.Client {
	if o.Client == nil {
		return defaultClient()
	}
	return o.Client
}

func (o *OpenWeather) base() string {
	if o.BaseURL == "" {
		return DefaultOpenWeatherURL
	}
	return strings.TrimSuffix(o.BaseURL, "/")
}

// Current returns the current temperature for a named location.
func (o *OpenWeather) Current(ctx context.Context, location string) (Reading, error) {
	q := url.Values{}
	q.Set("q", location)
	q.Set("appid", o.APIKey)
	q.Set("units", UnitsMetric)

	var p owCurrent
	if err := getJSON(ctx, o.client(), "openweather", o.base()+"/data/2.5/weather?"+q.Encode(), &p); err != nil {
		return Reading{}, err
	}
	if p.Main == nil {
		return Reading{}, errors.New("openweather: response has no main.temp")
	}
	return Reading{Celsius: p.Main.Temp, Source: "openweather"}, nil
}

// Forecast returns the temperature and icon two hours ahead.
func (o *OpenWeather) Forecast(ctx context.Context, location string) (Forecast, error) {
	lat, lon, err := o.geocode(ctx, location)
	if err != nil {
		return Forecast{}, err
	}

	q := url.Values{}
	q.Set("lat", strconv.FormatFloat(lat, 'f', -1, 64))
	q.Set("lon", strconv.FormatFloat(lon, 'f', -1, 64))
	q.Set("exclude", "minutely,daily,alerts")
	q.Set("appid", o.APIKey)
	q.Set("units", UnitsMetric)

	var p owOneCall
	if err := getJSON(ctx, o.client(), "openweather onecall", o.base()+"/data/3.0/onecall?"+q.Encode(), &p); err != nil {
		return Forecast{}, err
	}
	if len(p.Hourly) <= forecastSlot {
		return Forecast{}, fmt.Errorf("openweather onecall: hourly forecast has %d entries", len(p.Hourly))
	}
	slot := p.Hourly[forecastSlot]
	f := Forecast{
		Time:    time.Unix(slot.Dt+p.TimezoneOffset, 0).UTC().Format("15:04"),
		Celsius: slot.Temp,
	}
	if len(slot.Weather) > 0 {
		f.Icon = slot.Weather[0].Icon
	}
	return f, nil
}

func (o *OpenWeather) geocode(ctx context.Context, location string) (float64, float64, error) {
	o.mu.Lock()
	c, ok := o.coords[location]
	o.mu.Unlock()
	if ok {
		return c[0], c[1], nil
	}

	geoURL := o.GeocodeURL
	if geoURL == "" {
		geoURL = DefaultGeocodeURL
	}
	q := url.Values{}
	q.Set("q", location)
	q.Set("limit", "1")
	q.Set("appid", o.APIKey)

	var res owGeo
	if err := getJSON(ctx, o.client(), "openweather geocode", geoURL+"?"+q.Encode(), &res); err != nil {
		return 0, 0, err
	}
	if len(res) == 0 {
		return 0, 0, fmt.Errorf("openweather geocode: no match for %q", location)
	}

	o.mu.Lock()
	if o.coords == nil {
		o.coords = make(map[string][2]float64)
	}
	o.coords[location] = [2]float64{res[0].Lat, res[0].Lon}
	o.mu.Unlock()
	return res[0].Lat, res[0].Lon, nil
}
