// Package date shows day and month next to the weekday.
package date

import (
	"github.com/vovakirdan/skyboard/internal/animator"
	"github.com/vovakirdan/skyboard/internal/core"
	"github.com/vovakirdan/skyboard/internal/registry"
	"github.com/vovakirdan/skyboard/internal/scene"
)

const ID = "date"

// Area is the screen region owned by the date.
var Area = core.Rect{X: 16, Y: 7, W: 22, H: 7}

func init() {
	registry.Register(ID, "Date", New)
}

type Feature struct {
	env *scene.Env
}

func New(env *scene.Env) (registry.Feature, error) {
	return &Feature{env: env}, nil
}

func (d *Feature) Keyframes(k *animator.Keyframes) error {
	return k.Add("date", d.env.Seconds(1), d.draw)
}

func (d *Feature) draw(f *animator.Frame) error {
	if d.env.Board.ShowingFlights() {
		return nil
	}
	f.Screen.DrawRect(Area, core.Black)
	f.Screen.DrawText(Area.X+1, Area.Y+1, d.env.Now().Format("02.01"), core.Blue)
	return nil
}
