// Package clearscreen wipes the screen whenever the scene is reset.
package clearscreen

import (
	"github.com/vovakirdan/skyboard/internal/animator"
	"github.com/vovakirdan/skyboard/internal/registry"
	"github.com/vovakirdan/skyboard/internal/scene"
)

// ID is the registry id of the feature.
const ID = "clear"

func init() {
	registry.Register(ID, "Clear on reset", New)
}

// Feature clears the screen on reset.
type Feature struct{}

// New creates the feature.
func New(*scene.Env) (registry.Feature, error) {
	return Feature{}, nil
}

// Keyframes registers the reset handler.
func (Feature) Keyframes(k *animator.Keyframes) error {
	return k.OnReset("clear", func(f *animator.Frame) error {
		f.Screen.Clear()
		return nil
	})
}
