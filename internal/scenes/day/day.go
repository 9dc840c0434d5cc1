// Package day shows the weekday under the clock.
package day

import (
	"strings"

	"github.com/vovakirdan/skyboard/internal/animator"
	"github.com/vovakirdan/skyboard/internal/core"
	"github.com/vovakirdan/skyboard/internal/registry"
	"github.com/vovakirdan/skyboard/internal/scene"
)

const ID = "day"

// Area is the screen region owned by the weekday.
var Area = core.Rect{X: 0, Y: 7, W: 16, H: 7}

func init() {
	registry.Register(ID, "Day of week", New)
}

type Feature struct {
	env *scene.Env
}

func New(env *scene.Env) (registry.Feature, error) {
	return &Feature{env: env}, nil
}

func (d *Feature) Keyframes(k *animator.Keyframes) error {
	return k.Add("day", d.env.Seconds(1), d.draw)
}

func (d *Feature) draw(f *animator.Frame) error {
	if d.env.Board.ShowingFlights() {
		return nil
	}
	f.Screen.DrawRect(Area, core.Black)
	f.Screen.DrawText(Area.X+1, Area.Y+1, strings.ToUpper(d.env.Now().Format("Mon")), core.PinkDark)
	return nil
}
