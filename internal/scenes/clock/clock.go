// Package clock shows the time of day while no flight is overhead.
package clock

import (
	"github.com/vovakirdan/skyboard/internal/animator"
	"github.com/vovakirdan/skyboard/internal/core"
	"github.com/vovakirdan/skyboard/internal/registry"
	"github.com/vovakirdan/skyboard/internal/scene"
)

// ID is the registry id of the feature.
const ID = "clock"

// Area is the screen region owned by the clock.
var Area = core.Rect{X: 0, Y: 0, W: 20, H: 7}

var colour = core.Orange

func init() {
	registry.Register(ID, "Clock", New)
}

// Feature draws HH:MM once a second.
type Feature struct {
	env *scene.Env
}

// New creates the clock.
func New(env *scene.Env) (registry.Feature, error) {
	return &Feature{env: env}, nil
}

// Keyframes registers the clock.
func (c *Feature) Keyframes(k *animator.Keyframes) error {
	return k.Add("clock", c.env.Seconds(1), c.draw)
}

func (c *Feature) draw(f *animator.Frame) error {
	if c.env.Board.ShowingFlights() {
		return nil
	}
	f.Screen.DrawRect(Area, core.Black)
	f.Screen.DrawText(Area.X+1, Area.Y+1, c.env.Now().Format("15:04"), colour)
	return nil
}
