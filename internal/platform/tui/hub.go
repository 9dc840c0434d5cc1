package tui

import (
	"sync"

	"github.com/vovakirdan/skyboard/internal/core"
)

// Hub is an in-memory panel. The scheduler presents into it and any number
// of viewers read the latest frame.
type Hub struct {
	mu         sync.RWMutex
	front      *core.Screen
	back       *core.Screen
	brightness int
	version    uint64
}

// NewHub creates a hub for a panel of the given size at full brightness.
func NewHub(width, height int) *Hub {
	return &Hub{
		front:      core.NewScreen(width, height),
		back:       core.NewScreen(width, height),
		brightness: 100,
	}
}

// Present copies s into the back buffer with brightness applied and swaps it
// to the front.
func (h *Hub) Present(s *core.Screen) error {
	h.mu.Lock()
	defer h.mu.Unlock()
	for y := 0; y < h.back.Height(); y++ {
		for x := 0; x < h.back.Width(); x++ {
			h.back.SetPixel(x, y, s.Get(x, y).Scale(h.brightness))
		}
	}
	h.front, h.back = h.back, h.front
	h.version++
	return nil
}

// SetBrightness sets the panel brightness, clamped to 0-100. It applies from
// the next Present.
func (h *Hub) SetBrightness(percent int) {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.brightness = core.Clamp(percent, 0, 100)
}

// Brightness returns the current brightness percentage.
func (h *Hub) Brightness() int {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return h.brightness
}

// Version increments on every Present.
func (h *Hub) Version() uint64 {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return h.version
}

// Frame returns a copy of the front buffer and its version.
func (h *Hub) Frame() (*core.Screen, uint64) {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return h.front.Clone(), h.version
}

var _ core.Display = (*Hub)(nil)
