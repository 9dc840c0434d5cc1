// Package power dims the panel in the evening and turns it off overnight.
package power

import (
	"github.com/vovakirdan/skyboard/internal/animator"
	"github.com/vovakirdan/skyboard/internal/config"
	"github.com/vovakirdan/skyboard/internal/registry"
	"github.com/vovakirdan/skyboard/internal/scene"
)

// ID is the registry id of the feature.
const ID = "power"

func init() {
	registry.Register(ID, "Power management", New)
}

// InWindow reports whether hour falls in [start, end). Windows with
// start > end cross midnight; start == end is an empty window.
func InWindow(hour, start, end int) bool {
	if start == end {
		return false
	}
	if start < end {
		return hour >= start && hour < end
	}
	return hour >= start || hour < end
}

// Brightness returns the panel brightness for an hour of the day.
// The off window takes precedence over the dim window.
func Brightness(cfg config.PowerConfig, hour int) int {
	switch {
	case InWindow(hour, cfg.OffStartHour, cfg.OffEndHour):
		return 0
	case InWindow(hour, cfg.DimStartHour, cfg.DimEndHour):
		return cfg.DimBrightness
	default:
		return cfg.DayBrightness
	}
}

// Feature applies the brightness schedule.
type Feature struct {
	env *scene.Env
}

// New creates the power feature.
func New(env *scene.Env) (registry.Feature, error) {
	return &Feature{env: env}, nil
}

// Keyframes registers the once-a-minute brightness check.
func (p *Feature) Keyframes(k *animator.Keyframes) error {
	return k.Add("power", p.env.Seconds(60), p.apply)
}

func (p *Feature) apply(*animator.Frame) error {
	want := Brightness(p.env.Config.Power, p.env.Now().Hour())
	if p.env.Display.Brightness() != want {
		p.env.Display.SetBrightness(want)
	}
	return nil
}
