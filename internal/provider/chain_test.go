package provider

import (
	"context"
	"errors"
	"sync/atomic"
	"testing"
	"time"

	"github.com/cenkalti/backoff/v5"
	"golang.org/x/time/rate"
)

func noWait() backoff.BackOff { return &backoff.ZeroBackOff{} }

type scripted struct {
	calls    atomic.Int32
	failures int32 // Calls that fail before the first success; -1 fails forever
	value    string
}

func (s *scripted) fetch(_ context.Context, _ string) (string, error) {
	n := s.calls.Add(1)
	if s.failures < 0 || n <= s.failures {
		return "", errors.New("upstream error")
	}
	return s.value, nil
}

func newTestChain(t *testing.T, providers []Provider[string], opts ...Option) *Chain[string] {
	t.Helper()
	opts = append([]Option{WithBackOff(noWait)}, opts...)
	c, err := NewChain(providers, opts...)
	if err != nil {
		t.Fatalf("NewChain: %v", err)
	}
	return c
}

func TestNewChainValidates(t *testing.T) {
	if _, err := NewChain[string](nil); err == nil {
		t.Fatal("expected error for empty chain")
	}
	if _, err := NewChain([]Provider[string]{{Name: "nil"}}); err == nil {
		t.Fatal("expected error for provider without fetch")
	}
}

func TestRetrySucceedsOnThirdAttempt(t *testing.T) {
	p := &scripted{failures: 2, value: "12"}
	c := newTestChain(t, []Provider[string]{{Name: "flaky", Fetch: p.fetch}}, WithRetries(3))

	got, err := c.Fetch(context.Background(), "glasgow")
	if err != nil {
		t.Fatalf("Fetch: %v", err)
	}
	if got != "12" {
		t.Fatalf("Fetch = %q, want 12", got)
	}
	if n := p.calls.Load(); n != 3 {
		t.Fatalf("attempts = %d, want 3", n)
	}
}

func TestExhaustedBudgetIsUnavailable(t *testing.T) {
	for _, budget := range []int{1, 3, 5} {
		p := &scripted{failures: -1}
		c := newTestChain(t, []Provider[string]{{Name: "down", Fetch: p.fetch}}, WithRetries(budget))

		_, err := c.Fetch(context.Background(), "glasgow")
		if !errors.Is(err, ErrUnavailable) {
			t.Fatalf("budget %d: expected ErrUnavailable, got %v", budget, err)
		}
		if n := p.calls.Load(); int(n) != budget {
			t.Fatalf("budget %d: attempts = %d", budget, n)
		}
		if st := c.Stats(); st.Attempts != budget || st.Failures != 1 {
			t.Fatalf("budget %d: stats = %+v", budget, st)
		}
	}
}

func TestFallsBackToNextProvider(t *testing.T) {
	primary := &scripted{failures: -1}
	fallback := &scripted{value: "9"}
	c := newTestChain(t, []Provider[string]{
		{Name: "openweather", Fetch: primary.fetch},
		{Name: "taps-aff", Fetch: fallback.fetch},
	}, WithRetries(3))

	got, err := c.Fetch(context.Background(), "glasgow")
	if err != nil || got != "9" {
		t.Fatalf("Fetch = %q, %v", got, err)
	}
	if primary.calls.Load() != 3 || fallback.calls.Load() != 1 {
		t.Fatalf("calls primary=%d fallback=%d", primary.calls.Load(), fallback.calls.Load())
	}
	if names := c.Providers(); len(names) != 2 || names[0] != "openweather" {
		t.Fatalf("Providers = %v", names)
	}
}

func TestSameBucketIssuesOneAttempt(t *testing.T) {
	now := time.Unix(1_700_000_000, 0) // bucket boundary for 100s
	clock := now
	p := &scripted{value: "7"}
	c := newTestChain(t, []Provider[string]{{Name: "p", Fetch: p.fetch}},
		WithTTL(100*time.Second), WithNow(func() time.Time { return clock }))

	for i := 0; i < 3; i++ {
		if _, err := c.Fetch(context.Background(), "k"); err != nil {
			t.Fatalf("Fetch %d: %v", i, err)
		}
		clock = clock.Add(30 * time.Second)
	}
	if n := p.calls.Load(); n != 1 {
		t.Fatalf("attempts within one bucket = %d, want 1", n)
	}
	st := c.Stats()
	if st.Hits != 2 || st.Misses != 1 {
		t.Fatalf("stats = %+v", st)
	}

	clock = now.Add(100 * time.Second)
	if _, err := c.Fetch(context.Background(), "k"); err != nil {
		t.Fatalf("Fetch next bucket: %v", err)
	}
	if n := p.calls.Load(); n != 2 {
		t.Fatalf("next bucket should refetch, attempts = %d", n)
	}
}

func TestKeysAreCachedSeparately(t *testing.T) {
	p := &scripted{value: "x"}
	c := newTestChain(t, []Provider[string]{{Name: "p", Fetch: p.fetch}})
	_, _ = c.Fetch(context.Background(), "glasgow")
	_, _ = c.Fetch(context.Background(), "edinburgh")
	if n := p.calls.Load(); n != 2 {
		t.Fatalf("attempts = %d, want 2", n)
	}
}

func TestFailureInvalidatesKey(t *testing.T) {
	clock := time.Unix(1_700_000_000, 0)
	var fail atomic.Bool
	var calls atomic.Int32
	fetch := func(context.Context, string) (string, error) {
		calls.Add(1)
		if fail.Load() {
			return "", errors.New("down")
		}
		return "ok", nil
	}
	c := newTestChain(t, []Provider[string]{{Name: "p", Fetch: fetch}},
		WithRetries(1), WithTTL(time.Minute), WithNow(func() time.Time { return clock }))

	fail.Store(true)
	if _, err := c.Fetch(context.Background(), "k"); !errors.Is(err, ErrUnavailable) {
		t.Fatalf("expected unavailable, got %v", err)
	}
	fail.Store(false)
	got, err := c.Fetch(context.Background(), "k")
	if err != nil || got != "ok" {
		t.Fatalf("Fetch after recovery = %q, %v", got, err)
	}
	if calls.Load() != 2 {
		t.Fatalf("failure must not be cached, calls = %d", calls.Load())
	}
}

func TestZeroTTLDisablesCache(t *testing.T) {
	p := &scripted{value: "v"}
	c := newTestChain(t, []Provider[string]{{Name: "p", Fetch: p.fetch}}, WithTTL(0))
	for i := 0; i < 3; i++ {
		_, _ = c.Fetch(context.Background(), "k")
	}
	if n := p.calls.Load(); n != 3 {
		t.Fatalf("attempts = %d, want 3", n)
	}
}

func TestAttemptTimeout(t *testing.T) {
	slow := func(ctx context.Context, _ string) (string, error) {
		<-ctx.Done()
		return "", ctx.Err()
	}
	c := newTestChain(t, []Provider[string]{{Name: "slow", Fetch: slow}},
		WithRetries(2), WithAttemptTimeout(5*time.Millisecond))

	start := time.Now()
	_, err := c.Fetch(context.Background(), "k")
	if !errors.Is(err, ErrUnavailable) {
		t.Fatalf("expected unavailable, got %v", err)
	}
	if !errors.Is(err, context.DeadlineExceeded) {
		t.Fatalf("expected attempt deadline in chain, got %v", err)
	}
	if time.Since(start) > time.Second {
		t.Fatal("attempt timeout not applied")
	}
}

func TestCancelledContextIsNotUnavailable(t *testing.T) {
	p := &scripted{failures: -1}
	c := newTestChain(t, []Provider[string]{{Name: "p", Fetch: p.fetch}})
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := c.Fetch(ctx, "k")
	if !errors.Is(err, context.Canceled) {
		t.Fatalf("expected context.Canceled, got %v", err)
	}
	if errors.Is(err, ErrUnavailable) {
		t.Fatal("cancellation must not report unavailable")
	}
	if p.calls.Load() != 0 {
		t.Fatalf("no attempt should run, got %d", p.calls.Load())
	}
}

func TestRateLimitSpacesAttempts(t *testing.T) {
	p := &scripted{failures: -1}
	c := newTestChain(t, []Provider[string]{{Name: "p", Fetch: p.fetch}},
		WithRetries(3), WithRateLimit(50, 1)) // 20ms between attempts

	start := time.Now()
	_, _ = c.Fetch(context.Background(), "k")
	if elapsed := time.Since(start); elapsed < 30*time.Millisecond {
		t.Fatalf("3 limited attempts finished in %v", elapsed)
	}
}

func TestRateLimitPastDeadlineWaitsForContext(t *testing.T) {
	primary := &scripted{failures: -1}
	fallback := &scripted{value: "ok"}
	c := newTestChain(t, []Provider[string]{
		{Name: "primary", Fetch: primary.fetch},
		{Name: "fallback", Fetch: fallback.fetch},
	}, WithRetries(3), WithRateLimit(rate.Every(time.Hour), 1))

	ctx, cancel := context.WithTimeout(context.Background(), 50*time.Millisecond)
	defer cancel()
	_, err := c.Fetch(ctx, "k")
	if !errors.Is(err, context.DeadlineExceeded) {
		t.Fatalf("Fetch = %v, want deadline exceeded", err)
	}
	if errors.Is(err, ErrUnavailable) {
		t.Fatal("a throttled chain is not unavailable")
	}
	if primary.calls.Load() != 1 || fallback.calls.Load() != 0 {
		t.Fatalf("calls primary=%d fallback=%d, want 1 and 0", primary.calls.Load(), fallback.calls.Load())
	}
	if st := c.Stats(); st.Attempts != 1 || st.Failures != 0 {
		t.Fatalf("stats = %+v", st)
	}
}
