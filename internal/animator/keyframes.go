// Package animator runs the fixed-period tick loop that drives the display.
//
// Feature modules declare keyframes, periodic handlers keyed by an interval
// in ticks, into a shared Keyframes registry at composition time. The
// Scheduler then consumes ticks, invokes every due handler in registration
// order and presents the frame exactly once per tick.
package animator

import (
	"errors"
	"fmt"
	"sort"
)

var (
	// ErrInvalidInterval is returned when a keyframe interval is below 1.
	ErrInvalidInterval = errors.New("animator: keyframe interval must be at least 1")

	// ErrFrozen is returned when registering after the scheduler has started.
	ErrFrozen = errors.New("animator: keyframes cannot change once the scheduler has started")
)

// Handler is a keyframe callback. It runs to completion on the scheduler
// goroutine and must never block on network or disk I/O.
// A returned error is fatal to the run.
type Handler func(f *Frame) error

// Entry is a registered keyframe. Entries are immutable once added.
type Entry struct {
	Name     string
	Interval uint64
	Offset   uint64
	Order    int // Global registration order
	Handler  Handler
}

// Due reports whether the entry fires on the given tick.
func (e Entry) Due(tick uint64) bool {
	if tick < e.Offset {
		return false
	}
	return (tick-e.Offset)%e.Interval == 0
}

// Keyframes is the additive registry of keyframe entries.
// Registrations from different modules never shadow each other: two entries
// with the same interval, or even the same name, both fire.
type Keyframes struct {
	entries []Entry
	resets  []Entry
	frozen  bool
}

// NewKeyframes creates an empty registry.
func NewKeyframes() *Keyframes {
	return &Keyframes{}
}

// Add registers a handler that fires on every tick divisible by interval.
func (k *Keyframes) Add(name string, interval int, h Handler) error {
	return k.AddOffset(name, interval, 0, h)
}

// AddOffset registers a handler firing when (tick - offset) is divisible by
// interval. Ticks before offset never fire.
func (k *Keyframes) AddOffset(name string, interval, offset int, h Handler) error {
	if k.frozen {
		return ErrFrozen
	}
	if interval < 1 {
		return fmt.Errorf("%w: %q has interval %d", ErrInvalidInterval, name, interval)
	}
	if offset < 0 {
		return fmt.Errorf("animator: %q has negative offset %d", name, offset)
	}
	if h == nil {
		return fmt.Errorf("animator: %q has no handler", name)
	}
	k.entries = append(k.entries, Entry{
		Name:     name,
		Interval: uint64(interval),
		Offset:   uint64(offset),
		Order:    k.nextOrder(),
		Handler:  h,
	})
	return nil
}

// OnReset registers a handler run before the first tick and whenever a
// handler requests a scene reset.
func (k *Keyframes) OnReset(name string, h Handler) error {
	if k.frozen {
		return ErrFrozen
	}
	if h == nil {
		return fmt.Errorf("animator: %q has no handler", name)
	}
	k.resets = append(k.resets, Entry{Name: name, Order: k.nextOrder(), Handler: h})
	return nil
}

func (k *Keyframes) nextOrder() int {
	return len(k.entries) + len(k.resets)
}

// Intervals returns the sorted distinct set of registered intervals.
func (k *Keyframes) Intervals() []int {
	seen := make(map[uint64]bool)
	var out []int
	for _, e := range k.entries {
		if !seen[e.Interval] {
			seen[e.Interval] = true
			out = append(out, int(e.Interval))
		}
	}
	sort.Ints(out)
	return out
}

// HandlersFor returns the entries registered at interval, in registration order.
func (k *Keyframes) HandlersFor(interval int) []Entry {
	var out []Entry
	for _, e := range k.entries {
		if e.Interval == uint64(interval) {
			out = append(out, e)
		}
	}
	return out
}

// Entries returns every periodic entry in registration order.
func (k *Keyframes) Entries() []Entry {
	return append([]Entry(nil), k.entries...)
}

// Resets returns the reset handlers in registration order.
func (k *Keyframes) Resets() []Entry {
	return append([]Entry(nil), k.resets...)
}

// Len returns the number of periodic entries.
func (k *Keyframes) Len() int {
	return len(k.entries)
}

// Freeze makes the registry immutable. The scheduler calls it on start.
func (k *Keyframes) Freeze() {
	k.frozen = true
}

// Frozen reports whether the registry has been frozen.
func (k *Keyframes) Frozen() bool {
	return k.frozen
}
