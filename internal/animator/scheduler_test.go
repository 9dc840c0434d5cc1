package animator

import (
	"context"
	"errors"
	"fmt"
	"reflect"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/vovakirdan/skyboard/internal/core"
)

type recordingDisplay struct {
	mu         sync.Mutex
	presents   int
	trace      *[]string
	err        error
	brightness int
}

func (d *recordingDisplay) Present(*core.Screen) error {
	d.mu.Lock()
	defer d.mu.Unlock()
	d.presents++
	if d.trace != nil {
		*d.trace = append(*d.trace, "present")
	}
	return d.err
}

func (d *recordingDisplay) SetBrightness(p int) { d.brightness = p }
func (d *recordingDisplay) Brightness() int     { return d.brightness }

func (d *recordingDisplay) count() int {
	d.mu.Lock()
	defer d.mu.Unlock()
	return d.presents
}

type fakeTicker struct {
	ch      chan time.Time
	stopped chan struct{}
	once    sync.Once
}

func newFakeTicker() *fakeTicker {
	return &fakeTicker{ch: make(chan time.Time), stopped: make(chan struct{})}
}

func (f *fakeTicker) C() <-chan time.Time { return f.ch }
func (f *fakeTicker) Stop()               { f.once.Do(func() { close(f.stopped) }) }

func newScheduler(t *testing.T, k *Keyframes, d core.Display, opts ...Option) *Scheduler {
	t.Helper()
	s, err := New(k, core.NewScreen(8, 8), d, 10, opts...)
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	return s
}

func stepN(t *testing.T, s *Scheduler, n int) {
	t.Helper()
	for i := 0; i < n; i++ {
		if err := s.Step(context.Background()); err != nil {
			t.Fatalf("step %d: %v", i, err)
		}
	}
}

func TestNewValidatesArguments(t *testing.T) {
	k := NewKeyframes()
	screen := core.NewScreen(4, 4)
	d := &recordingDisplay{}
	if _, err := New(nil, screen, d, 10); err == nil {
		t.Fatal("expected error for nil keyframes")
	}
	if _, err := New(k, nil, d, 10); err == nil {
		t.Fatal("expected error for nil screen")
	}
	if _, err := New(k, screen, nil, 10); err == nil {
		t.Fatal("expected error for nil display")
	}
	if _, err := New(k, screen, d, 0); err == nil {
		t.Fatal("expected error for zero tick rate")
	}
	s, err := New(k, screen, d, 10)
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	if s.Period() != 100*time.Millisecond {
		t.Fatalf("period = %v, want 100ms", s.Period())
	}
}

func TestIntervalFiresOnMultiplesIncludingZero(t *testing.T) {
	k := NewKeyframes()
	var ticks []uint64
	_ = k.Add("every5", 5, func(f *Frame) error {
		ticks = append(ticks, f.Tick)
		return nil
	})
	s := newScheduler(t, k, &recordingDisplay{})

	stepN(t, s, 21) // ticks 0..20

	want := []uint64{0, 5, 10, 15, 20}
	if !reflect.DeepEqual(ticks, want) {
		t.Fatalf("fired on %v, want %v", ticks, want)
	}
}

func TestLongIntervalNeverFiresAfterZero(t *testing.T) {
	k := NewKeyframes()
	fires := 0
	_ = k.Add("rare", 1000, func(*Frame) error { fires++; return nil })
	s := newScheduler(t, k, &recordingDisplay{})
	stepN(t, s, 999)
	if fires != 1 {
		t.Fatalf("expected only the tick 0 fire, got %d", fires)
	}
}

func TestInvocationOrderIsRegistrationOrder(t *testing.T) {
	run := func() []string {
		k := NewKeyframes()
		var trace []string
		add := func(name string, n int) {
			_ = k.Add(name, n, func(f *Frame) error {
				trace = append(trace, name)
				return nil
			})
		}
		add("a", 2)
		add("b", 1)
		add("c", 2)
		add("d", 3)
		s := newScheduler(t, k, &recordingDisplay{trace: &trace})
		stepN(t, s, 4)
		return trace
	}

	want := []string{
		"a", "b", "c", "d", "present", // tick 0
		"b", "present", // tick 1
		"a", "b", "c", "present", // tick 2
		"b", "d", "present", // tick 3
	}
	first := run()
	if !reflect.DeepEqual(first, want) {
		t.Fatalf("trace = %v\nwant  %v", first, want)
	}
	for i := 0; i < 5; i++ {
		if got := run(); !reflect.DeepEqual(got, first) {
			t.Fatalf("run %d differs: %v", i, got)
		}
	}
}

func TestPresentOncePerTickEvenWithoutHandlers(t *testing.T) {
	d := &recordingDisplay{}
	s := newScheduler(t, NewKeyframes(), d)
	stepN(t, s, 7)
	if d.count() != 7 {
		t.Fatalf("presents = %d, want 7", d.count())
	}
	if s.Tick() != 7 {
		t.Fatalf("tick = %d, want 7", s.Tick())
	}
}

func TestAddOffsetDelaysFirstFire(t *testing.T) {
	k := NewKeyframes()
	var ticks []uint64
	_ = k.AddOffset("late", 4, 3, func(f *Frame) error {
		ticks = append(ticks, f.Tick)
		return nil
	})
	s := newScheduler(t, k, &recordingDisplay{})
	stepN(t, s, 12)
	want := []uint64{3, 7, 11}
	if !reflect.DeepEqual(ticks, want) {
		t.Fatalf("fired on %v, want %v", ticks, want)
	}
}

func TestCountAndResetCount(t *testing.T) {
	k := NewKeyframes()
	var counts []uint64
	_ = k.Add("counter", 1, func(f *Frame) error {
		counts = append(counts, f.Count)
		if f.Count == 2 {
			f.ResetCount()
		}
		return nil
	})
	s := newScheduler(t, k, &recordingDisplay{})
	stepN(t, s, 7)
	want := []uint64{0, 1, 2, 0, 1, 2, 0}
	if !reflect.DeepEqual(counts, want) {
		t.Fatalf("counts = %v, want %v", counts, want)
	}
}

func TestResetHandlersRunFirstAndOnRequest(t *testing.T) {
	k := NewKeyframes()
	var trace []string
	_ = k.OnReset("clear", func(f *Frame) error {
		trace = append(trace, "reset")
		return nil
	})
	_ = k.Add("check", 1, func(f *Frame) error {
		trace = append(trace, "check")
		if f.Tick == 1 {
			f.RequestReset()
		}
		return nil
	})
	_ = k.Add("draw", 1, func(f *Frame) error {
		trace = append(trace, "draw")
		return nil
	})
	s := newScheduler(t, k, &recordingDisplay{trace: &trace})
	stepN(t, s, 3)

	want := []string{
		"reset", "check", "draw", "present",
		"check", "reset", "draw", "present",
		"check", "draw", "present",
	}
	if !reflect.DeepEqual(trace, want) {
		t.Fatalf("trace = %v\nwant  %v", trace, want)
	}
}

func TestResetRequestFromResetHandlerIgnored(t *testing.T) {
	k := NewKeyframes()
	resets := 0
	_ = k.OnReset("loop", func(f *Frame) error {
		resets++
		f.RequestReset()
		return nil
	})
	s := newScheduler(t, k, &recordingDisplay{})
	stepN(t, s, 3)
	if resets != 1 {
		t.Fatalf("resets = %d, want 1", resets)
	}
}

func TestHandlerErrorIsFault(t *testing.T) {
	cause := errors.New("boom")
	k := NewKeyframes()
	_ = k.Add("ok", 1, nop)
	_ = k.Add("bad", 3, func(f *Frame) error {
		if f.Tick == 3 {
			return cause
		}
		return nil
	})
	d := &recordingDisplay{}
	s := newScheduler(t, k, d)
	stepN(t, s, 3)

	err := s.Step(context.Background())
	var fault *FaultError
	if !errors.As(err, &fault) {
		t.Fatalf("expected FaultError, got %v", err)
	}
	if fault.Tick != 3 || fault.Keyframe != "bad" {
		t.Fatalf("fault = %+v", fault)
	}
	if !errors.Is(err, cause) {
		t.Fatal("fault should unwrap to cause")
	}
	if d.count() != 3 {
		t.Fatalf("faulted tick must not present, presents = %d", d.count())
	}
}

func TestHandlerPanicIsFault(t *testing.T) {
	k := NewKeyframes()
	_ = k.Add("explode", 1, func(*Frame) error { panic("kaboom") })
	s := newScheduler(t, k, &recordingDisplay{})

	err := s.Step(context.Background())
	var fault *FaultError
	if !errors.As(err, &fault) {
		t.Fatalf("expected FaultError, got %v", err)
	}
	if !strings.Contains(err.Error(), "kaboom") {
		t.Fatalf("fault should carry panic value: %v", err)
	}
}

func TestPresentErrorIsFault(t *testing.T) {
	d := &recordingDisplay{err: errors.New("display gone")}
	s := newScheduler(t, NewKeyframes(), d)
	var fault *FaultError
	if err := s.Step(context.Background()); !errors.As(err, &fault) || fault.Keyframe != "present" {
		t.Fatalf("expected present fault, got %v", err)
	}
}

func TestStepFreezesRegistry(t *testing.T) {
	k := NewKeyframes()
	s := newScheduler(t, k, &recordingDisplay{})
	stepN(t, s, 1)
	if err := k.Add("late", 1, nop); !errors.Is(err, ErrFrozen) {
		t.Fatalf("expected ErrFrozen, got %v", err)
	}
}

func TestRunStopsOnCancel(t *testing.T) {
	k := NewKeyframes()
	var mu sync.Mutex
	fires := 0
	_ = k.Add("tick", 1, func(*Frame) error {
		mu.Lock()
		fires++
		mu.Unlock()
		return nil
	})
	ft := newFakeTicker()
	var shutdownCalls []int
	s := newScheduler(t, k, &recordingDisplay{},
		WithTicker(func(time.Duration) Ticker { return ft }),
		WithShutdown(func(context.Context) error { shutdownCalls = append(shutdownCalls, 1); return nil }),
		WithShutdown(func(ctx context.Context) error {
			if _, ok := ctx.Deadline(); !ok {
				t.Error("shutdown context should carry a deadline")
			}
			shutdownCalls = append(shutdownCalls, 2)
			return errors.New("ignored")
		}),
	)

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)
	go func() { done <- s.Run(ctx) }()

	for i := 0; i < 4; i++ {
		ft.ch <- time.Now()
	}
	cancel()

	select {
	case err := <-done:
		if err != nil {
			t.Fatalf("Run returned %v, want nil", err)
		}
	case <-time.After(2 * time.Second):
		t.Fatal("Run did not stop after cancel")
	}

	mu.Lock()
	defer mu.Unlock()
	if fires < 4 {
		t.Fatalf("expected at least 4 fires, got %d", fires)
	}
	if !reflect.DeepEqual(shutdownCalls, []int{1, 2}) {
		t.Fatalf("shutdown hooks = %v", shutdownCalls)
	}
	select {
	case <-ft.stopped:
	default:
		t.Fatal("ticker not stopped")
	}
}

func TestRunReturnsFault(t *testing.T) {
	k := NewKeyframes()
	_ = k.Add("bad", 1, func(f *Frame) error {
		if f.Tick == 2 {
			return errors.New("handler failed")
		}
		return nil
	})
	ft := newFakeTicker()
	shutdown := false
	s := newScheduler(t, k, &recordingDisplay{},
		WithTicker(func(time.Duration) Ticker { return ft }),
		WithShutdown(func(context.Context) error { shutdown = true; return nil }),
	)

	done := make(chan error, 1)
	go func() { done <- s.Run(context.Background()) }()
	ft.ch <- time.Now()
	ft.ch <- time.Now()

	select {
	case err := <-done:
		var fault *FaultError
		if !errors.As(err, &fault) || fault.Tick != 2 {
			t.Fatalf("expected fault on tick 2, got %v", err)
		}
	case <-time.After(2 * time.Second):
		t.Fatal("Run did not return the fault")
	}
	if !shutdown {
		t.Fatal("shutdown hook should run after a fault")
	}
}

func TestRunReportsHandlerContextErrorAsFault(t *testing.T) {
	k := NewKeyframes()
	_ = k.Add("lookup", 1, func(*Frame) error {
		return fmt.Errorf("stale lookup: %w", context.Canceled)
	})
	s := newScheduler(t, k, &recordingDisplay{}, WithTicker(func(time.Duration) Ticker { return newFakeTicker() }))

	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
	defer cancel()
	err := s.Run(ctx)
	var fault *FaultError
	if !errors.As(err, &fault) {
		t.Fatalf("Run = %v, want FaultError", err)
	}
	if fault.Keyframe != "lookup" || fault.Tick != 0 {
		t.Fatalf("fault = %+v", fault)
	}
	if ctx.Err() != nil {
		t.Fatal("run context should still be live")
	}
}

func TestRunWithCancelledContextReturnsImmediately(t *testing.T) {
	d := &recordingDisplay{}
	s := newScheduler(t, NewKeyframes(), d, WithTicker(func(time.Duration) Ticker { return newFakeTicker() }))
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	if err := s.Run(ctx); err != nil {
		t.Fatalf("Run = %v", err)
	}
	if d.count() != 0 {
		t.Fatalf("presents = %d, want 0", d.count())
	}
}
