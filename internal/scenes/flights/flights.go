// Package flights shows details of the aircraft overhead. It takes over the
// whole screen while at least one flight is in range and cycles through
// them with a scrolling details line.
package flights

import (
	"errors"
	"fmt"
	"strings"

	"github.com/charmbracelet/log"

	"github.com/vovakirdan/skyboard/internal/animator"
	"github.com/vovakirdan/skyboard/internal/core"
	"github.com/vovakirdan/skyboard/internal/flight"
	"github.com/vovakirdan/skyboard/internal/logger"
	"github.com/vovakirdan/skyboard/internal/overhead"
	"github.com/vovakirdan/skyboard/internal/registry"
	"github.com/vovakirdan/skyboard/internal/scene"
)

const ID = "flights"

// Layout holds the rows of the flight screen, each one glyph high plus spacing.
type Layout struct {
	Journey  core.Rect
	Aircraft core.Rect
	Position core.Rect
	Scroll   core.Rect
}

// NewLayout spans the rows across a panel of the given width.
func NewLayout(width int) Layout {
	return Layout{
		Journey:  core.Rect{X: 0, Y: 0, W: width, H: 7},
		Aircraft: core.Rect{X: 0, Y: 8, W: width, H: 7},
		Position: core.Rect{X: 0, Y: 16, W: width, H: 7},
		Scroll:   core.Rect{X: 0, Y: 24, W: width, H: 7},
	}
}

var (
	journeyColour  = core.Orange
	aircraftColour = core.BlueLight
	positionColour = core.GreenLight
	indexColour    = core.Grey
	detailsColour  = core.White
)

func init() {
	registry.Register(ID, "Flights overhead", New)
}

// Feature runs the check, grab and scroll keyframes.
type Feature struct {
	env     *scene.Env
	log     *log.Logger
	width   int
	rows    Layout
	scrollX int
	dirty   bool // Static rows need a redraw
}

// New creates the flights feature.
func New(env *scene.Env) (registry.Feature, error) {
	if env.Flights == nil {
		return nil, errors.New("flights: no flights channel")
	}
	if env.Board == nil {
		return nil, errors.New("flights: no board")
	}
	l := env.Log
	if l == nil {
		l = logger.WithComponent(ID)
	}
	return &Feature{env: env, log: l, width: env.Width(), rows: NewLayout(env.Width()), scrollX: env.Width()}, nil
}

// Keyframes registers the handlers.
func (fl *Feature) Keyframes(k *animator.Keyframes) error {
	cfg := fl.env.Config.Flights
	scroll := cfg.ScrollTicks
	if scroll < 1 {
		scroll = 1
	}
	return errors.Join(
		k.Add("flights/check", fl.env.Seconds(cfg.CheckSeconds), fl.check),
		k.Add("flights/grab", fl.env.Seconds(cfg.RefreshSeconds), fl.grab),
		k.Add("flights/scroll", scroll, fl.scroll),
	)
}

// check consumes a staged batch. A batch with different flights restarts
// the carousel and resets the scene; the same flights only refresh the rows.
func (fl *Feature) check(f *animator.Frame) error {
	ch := fl.env.Flights
	if !ch.PollNew() {
		return nil
	}
	batch := ch.Take()
	board := fl.env.Board
	if overhead.SameKeys(batch, board.Flights) {
		if len(batch) > 0 {
			board.Flights = batch
			fl.dirty = true
		}
		return nil
	}

	fl.log.Info("flights changed", "count", len(batch))
	board.Show(batch)
	fl.scrollX = fl.width
	fl.dirty = true
	f.RequestReset()
	return nil
}

// grab asks for new data once the current batch has been shown.
func (fl *Feature) grab(*animator.Frame) error {
	board := fl.env.Board
	if overhead.ShouldRefresh(fl.env.Flights, board.AllShown, len(board.Flights)) {
		fl.env.Flights.RequestRefresh()
	}
	return nil
}

// scroll moves the details line one pixel left. Once it has scrolled off,
// the carousel advances to the next flight.
func (fl *Feature) scroll(f *animator.Frame) error {
	board := fl.env.Board
	cur, ok := board.Current()
	if !ok {
		return nil
	}
	s := f.Screen
	if fl.dirty {
		fl.drawRows(s, cur, board.Index, len(board.Flights))
		fl.dirty = false
	}

	text := Details(cur)
	s.DrawRect(fl.rows.Scroll, core.Black)
	s.DrawText(fl.scrollX, fl.rows.Scroll.Y+1, text, detailsColour)
	fl.scrollX--
	if fl.scrollX+core.TextWidth(text) < 0 {
		fl.scrollX = fl.width
		board.Advance()
		fl.dirty = true
	}
	return nil
}

func (fl *Feature) drawRows(s *core.Screen, cur flight.Flight, index, total int) {
	rows := fl.rows
	s.DrawRect(rows.Journey, core.Black)
	s.DrawRect(rows.Aircraft, core.Black)
	s.DrawRect(rows.Position, core.Black)

	counter := fmt.Sprintf("%d/%d", index+1, total)
	counterX := rows.Journey.Right() - core.TextWidth(counter)
	if total > 1 {
		s.DrawText(counterX, rows.Journey.Y+1, counter, indexColour)
	}

	headline := cur.Journey()
	if headline == "" {
		headline = cur.Key()
	}
	s.DrawText(rows.Journey.X+1, rows.Journey.Y+1, headline, journeyColour)

	aircraft := strings.TrimSpace(cur.AircraftType + " " + cur.Registration)
	if cur.Journey() != "" {
		aircraft = strings.TrimSpace(cur.Key() + " " + cur.AircraftType)
	}
	s.DrawText(rows.Aircraft.X+1, rows.Aircraft.Y+1, aircraft, aircraftColour)

	alt := fmt.Sprintf("%dFT", cur.Altitude)
	dist := fmt.Sprintf("%.1fKM", cur.DistanceKm)
	s.DrawText(rows.Position.X+1, rows.Position.Y+1, alt, positionColour)
	s.DrawText(rows.Position.Right()-core.TextWidth(dist), rows.Position.Y+1, dist, positionColour)
}

// Details is the scrolling line for a flight.
func Details(f flight.Flight) string {
	parts := []string{f.Key()}
	for _, p := range []string{f.AircraftType, f.Registration} {
		if p != "" {
			parts = append(parts, p)
		}
	}
	if f.GroundSpeed > 0 {
		parts = append(parts, fmt.Sprintf("%.0fKT", f.GroundSpeed))
	}
	parts = append(parts, fmt.Sprintf("%dFT", f.Altitude), fmt.Sprintf("%.1fKM", f.DistanceKm))
	return strings.Join(parts, " ")
}
