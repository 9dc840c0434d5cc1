// Package loading pulses a corner pixel while data is being fetched.
package loading

import (
	"github.com/vovakirdan/skyboard/internal/animator"
	"github.com/vovakirdan/skyboard/internal/core"
	"github.com/vovakirdan/skyboard/internal/registry"
	"github.com/vovakirdan/skyboard/internal/scene"
)

const ID = "loading"

func init() {
	registry.Register(ID, "Loading indicator", New)
}

type Feature struct {
	env  *scene.Env
	x, y int
}

func New(env *scene.Env) (registry.Feature, error) {
	return &Feature{env: env, x: env.Width() - 1, y: 0}, nil
}

func (l *Feature) Keyframes(k *animator.Keyframes) error {
	interval := l.env.Config.Display.TickRate / 2
	if interval < 1 {
		interval = 1
	}
	return k.Add("loading", interval, l.pulse)
}

func (l *Feature) pulse(f *animator.Frame) error {
	busy := (l.env.Flights != nil && l.env.Flights.Processing()) ||
		(l.env.Weather != nil && l.env.Weather.Processing())
	colour := core.Black
	if busy && f.Count%2 == 0 {
		colour = core.White
	}
	f.Screen.SetPixel(l.x, l.y, colour)
	return nil
}
