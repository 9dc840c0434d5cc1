// Package weather draws the current temperature, the +2h forecast with an
// icon and, optionally, an hourly rainfall graph.
package weather

import (
	"fmt"
	"math"
	"os"
	"strings"

	"github.com/vovakirdan/skyboard/internal/animator"
	"github.com/vovakirdan/skyboard/internal/core"
	"github.com/vovakirdan/skyboard/internal/registry"
	"github.com/vovakirdan/skyboard/internal/scene"
	wx "github.com/vovakirdan/skyboard/internal/weather"
)

const ID = "weather"

// Screen layout.
var (
	TemperatureArea = core.Rect{X: 38, Y: 0, W: 25, H: 7}
	ForecastArea    = core.Rect{X: 0, Y: 23, W: 50, H: 7}
	IconArea        = core.Rect{X: 52, Y: 20, W: 11, H: 11}
	RainfallArea    = core.Rect{X: 39, Y: 7, W: 24, H: 10}
)

const (
	rainfallOriginY   = 15 // x axis of the graph
	rainfallHeight    = 8
	rainfallMaxMM     = 3.0
	iconOverrideEnvar = "FORECAST_ICON_OVERRIDE"
)

func init() {
	registry.Register(ID, "Weather", New)
}

// Feature owns the weather areas of the screen.
type Feature struct {
	env     *scene.Env
	report  wx.Report
	refresh uint64
}

// New creates the weather feature.
func New(env *scene.Env) (registry.Feature, error) {
	if env.Weather == nil {
		return nil, fmt.Errorf("weather: no weather channel")
	}
	refresh := env.Config.Weather.TemperatureRefreshSeconds
	if refresh < 1 {
		refresh = 1
	}
	return &Feature{env: env, refresh: uint64(refresh)}, nil
}

// Keyframes registers the once-a-second weather handler.
func (w *Feature) Keyframes(k *animator.Keyframes) error {
	return k.Add("weather", w.env.Seconds(1), w.tick)
}

func (w *Feature) tick(f *animator.Frame) error {
	if f.Count%w.refresh == 0 {
		w.env.Weather.RequestRefresh()
	}
	if w.env.Weather.PollNew() {
		w.report = wx.Report{}
		if batch := w.env.Weather.Take(); len(batch) > 0 {
			w.report = batch[0]
		}
	}
	if w.env.Board.ShowingFlights() {
		return nil
	}

	s := f.Screen
	s.DrawRect(TemperatureArea, core.Black)
	s.DrawRect(ForecastArea, core.Black)
	s.DrawRect(IconArea, core.Black)
	s.DrawRect(RainfallArea, core.Black)

	if w.env.Weather.Stale(w.env.Config.Weather.StaleAfter) {
		return nil
	}
	units := w.env.Config.Weather.Units
	if r := w.report.Current; r != nil {
		text := fmt.Sprintf("%d°", int(math.Round(wx.ToUnits(r.Celsius, units))))
		x := TemperatureArea.Right() - core.TextWidth(text)
		s.DrawText(x, TemperatureArea.Y+1, text, wx.TemperatureColour(r.Celsius))
	}
	if fc := w.report.Forecast; fc != nil {
		text := fmt.Sprintf("+2h %s %d°", fc.Time, int(math.Round(wx.ToUnits(fc.Celsius, units))))
		s.DrawText(ForecastArea.X+1, ForecastArea.Y+1, text, core.White)
		s.DrawSprite(IconArea.X, IconArea.Y, Sprite(iconCategory(fc.Icon)), core.White)
	}
	if w.env.Config.Weather.RainfallEnabled && len(w.report.Hourly) > 0 {
		hours := wx.UpcomingHours(w.report.Hourly, w.env.Now(), w.env.Config.Weather.RainfallHours)
		drawRainfall(s, hours, f.Count%2 == 1)
	}
	return nil
}

func iconCategory(code string) string {
	if override := strings.ToLower(strings.TrimSpace(os.Getenv(iconOverrideEnvar))); override != "" {
		if _, ok := sprites[override]; ok {
			return override
		}
	}
	return wx.IconCategory(code)
}

// drawRainfall draws one column per hour, coloured by temperature, growing up
// from the x axis. Midnight and noon columns dip one pixel below the axis.
// Rain beyond the graph height flashes the top of the column.
func drawRainfall(s *core.Screen, hours []wx.Hour, flash bool) {
	for i, h := range hours {
		if i >= RainfallArea.W {
			break
		}
		x := RainfallArea.X + i
		height := int(math.Ceil(h.PrecipMM * rainfallHeight / rainfallMaxMM))
		overspill := 0
		if height > rainfallHeight {
			overspill = core.Clamp(height-rainfallHeight, 0, rainfallHeight+1)
			height = rainfallHeight
		}
		bottom := rainfallOriginY
		if h.Hour == 0 || h.Hour == 12 {
			bottom++
		}
		top := rainfallOriginY - height
		s.DrawVLine(x, top, bottom-top+1, wx.TemperatureColour(h.Celsius))
		if flash && overspill > 0 {
			s.DrawVLine(x, rainfallOriginY-rainfallHeight, overspill, core.Black)
		}
	}
}
