// Package scene holds the state shared by feature modules during a run.
package scene

import (
	"time"

	"github.com/charmbracelet/log"

	"github.com/vovakirdan/skyboard/internal/config"
	"github.com/vovakirdan/skyboard/internal/core"
	"github.com/vovakirdan/skyboard/internal/flight"
	"github.com/vovakirdan/skyboard/internal/overhead"
	"github.com/vovakirdan/skyboard/internal/weather"
)

// Env is what a feature factory receives. Features keep references to the
// channels and the board, never to the screen.
type Env struct {
	Config  config.Config
	Display core.Display
	Now     func() time.Time
	Flights *overhead.Channel[flight.Flight]
	Weather *overhead.Channel[weather.Report]
	Board   *Board
	Log     *log.Logger
}

// Width returns the panel width in pixels.
func (e *Env) Width() int { return e.Config.Display.Width }

// Height returns the panel height in pixels.
func (e *Env) Height() int { return e.Config.Display.Height }

// Seconds converts a period in seconds into a keyframe interval in ticks.
func (e *Env) Seconds(n int) int {
	ticks := n * e.Config.Display.TickRate
	if ticks < 1 {
		return 1
	}
	return ticks
}

// Board is the composition state features coordinate through. It is only
// read and written from keyframe handlers, on the scheduler goroutine.
type Board struct {
	Flights  []flight.Flight // Batch currently on screen
	Index    int             // Carousel position within Flights
	AllShown bool            // Every flight of the batch has been shown
}

// ShowingFlights reports whether flight details own the screen.
func (b *Board) ShowingFlights() bool {
	return len(b.Flights) > 0
}

// Current returns the flight at the carousel position.
func (b *Board) Current() (flight.Flight, bool) {
	if len(b.Flights) == 0 {
		return flight.Flight{}, false
	}
	return b.Flights[b.Index%len(b.Flights)], true
}

// Show replaces the batch and restarts the carousel.
func (b *Board) Show(flights []flight.Flight) {
	b.Flights = flights
	b.Index = 0
	b.AllShown = len(flights) <= 1
}

// Advance moves the carousel to the next flight. Wrapping back to the first
// marks the batch as fully shown.
func (b *Board) Advance() {
	if len(b.Flights) == 0 {
		return
	}
	b.Index++
	if b.Index >= len(b.Flights) {
		b.Index = 0
		b.AllShown = true
	}
}
