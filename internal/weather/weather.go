// Package weather fetches current temperature, a short forecast and hourly
// rainfall from public weather APIs. Values are kept in Celsius and
// millimetres; unit conversion happens at presentation time.
package weather

import (
	"time"

	"github.com/vovakirdan/skyboard/internal/core"
)

const (
	UnitsMetric   = "metric"
	UnitsImperial = "imperial"
)

// Reading is a current temperature.
type Reading struct {
	Celsius float64
	Source  string
}

// Forecast is the temperature a couple of hours ahead.
type Forecast struct {
	Time    string // Local "15:04" of the forecast hour
	Celsius float64
	Icon    string // OpenWeather icon code, e.g. "10d"
}

// Hour is one hourly forecast slot.
type Hour struct {
	Hour     int // 0-23
	PrecipMM float64
	Celsius  float64
}

// Report is one weather acquisition result. Fields are nil when their
// source was unavailable.
type Report struct {
	Current   *Reading
	Forecast  *Forecast
	Hourly    []Hour
	FetchedAt time.Time
}

// Empty reports whether the report carries no data at all.
func (r Report) Empty() bool {
	return r.Current == nil && r.Forecast == nil && len(r.Hourly) == 0
}

// ToUnits converts a Celsius value into the configured units.
func ToUnits(celsius float64, units string) float64 {
	if units == UnitsImperial {
		return celsius*9.0/5.0 + 32
	}
	return celsius
}

// IconCategory maps an OpenWeather icon code onto a sprite category.
func IconCategory(code string) string {
	if len(code) < 2 {
		return "unknown"
	}
	switch code[:2] {
	case "01":
		return "clear"
	case "02":
		return "few-clouds"
	case "03":
		return "scattered-clouds"
	case "04":
		return "clouds"
	case "09":
		return "showers"
	case "10":
		return "rain"
	case "11":
		return "thunder"
	case "13":
		return "snow"
	case "50":
		return "mist"
	}
	return "unknown"
}

type colourStop struct {
	celsius float64
	colour  core.Pixel
}

var temperatureStops = []colourStop{
	{0, core.White},
	{1, core.BlueLight},
	{8, core.PinkDark},
	{18, core.Yellow},
	{30, core.Orange},
}

// TemperatureColour blends between the stops of the temperature table.
func TemperatureColour(celsius float64) core.Pixel {
	if celsius <= temperatureStops[0].celsius {
		return temperatureStops[0].colour
	}
	for i := 1; i < len(temperatureStops); i++ {
		lo, hi := temperatureStops[i-1], temperatureStops[i]
		if celsius <= hi.celsius {
			ratio := (celsius - lo.celsius) / (hi.celsius - lo.celsius)
			return core.Lerp(lo.colour, hi.colour, ratio)
		}
	}
	return temperatureStops[len(temperatureStops)-1].colour
}

// UpcomingHours returns up to n slots starting at now's hour. Hours must
// start at midnight of now's day, as taps-aff reports them.
func UpcomingHours(hours []Hour, now time.Time, n int) []Hour {
	start := now.Hour()
	if n <= 0 || start >= len(hours) {
		return nil
	}
	end := start + n
	if end > len(hours) {
		end = len(hours)
	}
	return append([]Hour(nil), hours[start:end]...)
}
