package weather

import (
	"context"
	"errors"
	"net/http"
	"net/url"
	"strings"
)

// DefaultTapsAffURL is the taps-aff API root; the location is appended.
const DefaultTapsAffURL = "https://taps-aff.co.uk/api/"

// TapsAff reads the taps-aff.co.uk API. It needs no key.
type TapsAff struct {
	BaseURL string
	Client  *http.Client
}

type tapsAffPayload struct {
	TempC    *float64 `json:"temp_c"`
	Forecast []struct {
		Hourly []struct {
			PrecipMM float64 `json:"precip_mm"`
			TempC    float64 `json:"temp_c"`
			Hour     int     `json:"hour"`
		} `json:"hourly"`
	} `json:"forecast"`
}

func (t *TapsAff) fetch(ctx context.Context, location string) (tapsAffPayload, error) {
	base := t.BaseURL
	if base == "" {
		base = DefaultTapsAffURL
	}
	if !strings.HasSuffix(base, "/") {
		base += "/"
	}
	client := t.Client
	if client == nil {
		client = defaultClient()
	}
	var p tapsAffPayload
	err := getJSON(ctx, client, "taps-aff", base+url.PathEscape(location), &p)
	return p, err
}

// Current returns the current temperature.
func (t *TapsAff) Current(ctx context.Context, location string) (Reading, error) {
	p, err := t.fetch(ctx, location)
	if err != nil {
		return Reading{}, err
	}
	if p.TempC == nil {
		return Reading{}, errors.New("taps-aff: response has no temp_c")
	}
	return Reading{Celsius: *p.TempC, Source: "taps-aff"}, nil
}

// Hourly returns the hourly forecast for today followed by tomorrow.
func (t *TapsAff) Hourly(ctx context.Context, location string) ([]Hour, error) {
	p, err := t.fetch(ctx, location)
	if err != nil {
		return nil, err
	}
	if len(p.Forecast) < 2 {
		return nil, errors.New("taps-aff: forecast needs today and tomorrow")
	}
	var hours []Hour
	for _, day := range p.Forecast[:2] {
		for _, h := range day.Hourly {
			hours = append(hours, Hour{Hour: h.Hour, PrecipMM: h.PrecipMM, Celsius: h.TempC})
		}
	}
	return hours, nil
}
