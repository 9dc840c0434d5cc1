package tui

import (
	"testing"

	"github.com/vovakirdan/skyboard/internal/core"
)

func TestHubPresentSwapsBuffers(t *testing.T) {
	hub := NewHub(4, 2)
	s := core.NewScreen(4, 2)
	s.SetPixel(1, 1, core.White)

	if err := hub.Present(s); err != nil {
		t.Fatalf("Present() failed: %v", err)
	}
	frame, version := hub.Frame()
	if version != 1 {
		t.Errorf("version = %d, want 1", version)
	}
	if frame.Get(1, 1) != core.White {
		t.Errorf("pixel = %v, want white", frame.Get(1, 1))
	}

	// Later writes to the source do not leak into presented frames.
	s.SetPixel(0, 0, core.Red)
	if frame, _ = hub.Frame(); !frame.Get(0, 0).IsBlack() {
		t.Error("frame changed without Present")
	}

	s.Clear()
	hub.Present(s)
	frame, version = hub.Frame()
	if version != 2 || frame.Lit() != 0 {
		t.Errorf("second present: version %d lit %d", version, frame.Lit())
	}
}

func TestHubBrightness(t *testing.T) {
	hub := NewHub(2, 1)
	if hub.Brightness() != 100 {
		t.Fatalf("initial brightness = %d", hub.Brightness())
	}
	s := core.NewScreen(2, 1)
	s.SetPixel(0, 0, core.Pixel{R: 200, G: 100, B: 50})

	hub.SetBrightness(50)
	hub.Present(s)
	frame, _ := hub.Frame()
	if got, want := frame.Get(0, 0), (core.Pixel{R: 100, G: 50, B: 25}); got != want {
		t.Errorf("dimmed pixel = %v, want %v", got, want)
	}

	hub.SetBrightness(0)
	hub.Present(s)
	if frame, _ = hub.Frame(); frame.Lit() != 0 {
		t.Error("brightness 0 should present a black frame")
	}

	hub.SetBrightness(250)
	if hub.Brightness() != 100 {
		t.Errorf("brightness not clamped: %d", hub.Brightness())
	}
}
