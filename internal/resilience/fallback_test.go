package resilience

import (
	"errors"
	"testing"
	"time"
)

// countingBackend records how often it was invoked.
type countingBackend struct {
	name  string
	err   error
	calls int
}

func TestFallbackGroup_PrimarySucceeds(t *testing.T) {
	t.Parallel()

	primary := &countingBackend{name: "a"}
	fallback := &countingBackend{name: "b"}
	fg := NewFallbackGroup(primary, "a", FallbackConfig{})
	fg.AddFallback("b", fallback)

	err := fg.Execute(func(b *countingBackend) error {
		b.calls++
		return b.err
	})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if primary.calls != 1 || fallback.calls != 0 {
		t.Errorf("calls = %d/%d, want 1/0", primary.calls, fallback.calls)
	}
}

func TestFallbackGroup_FailsOverInOrder(t *testing.T) {
	t.Parallel()

	first := &countingBackend{name: "a", err: errBackend}
	second := &countingBackend{name: "b", err: errBackend}
	third := &countingBackend{name: "c"}
	fg := NewFallbackGroup(first, "a", FallbackConfig{})
	fg.AddFallback("b", second)
	fg.AddFallback("c", third)

	got, err := ExecuteWithResult(fg, func(b *countingBackend) (string, error) {
		b.calls++
		return b.name, b.err
	})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if got != "c" {
		t.Errorf("result = %q, want c", got)
	}
	if first.calls != 1 || second.calls != 1 || third.calls != 1 {
		t.Errorf("calls = %d/%d/%d, want 1/1/1", first.calls, second.calls, third.calls)
	}
}

func TestFallbackGroup_AllFail(t *testing.T) {
	t.Parallel()

	fg := NewFallbackGroup(&countingBackend{name: "a", err: errBackend}, "a", FallbackConfig{})
	fg.AddFallback("b", &countingBackend{name: "b", err: errBackend})

	_, err := ExecuteWithResult(fg, func(b *countingBackend) (string, error) {
		return "", b.err
	})
	if !errors.Is(err, ErrAllFailed) {
		t.Errorf("error = %v, want ErrAllFailed", err)
	}
}

func TestFallbackGroup_SkipsOpenBreaker(t *testing.T) {
	t.Parallel()

	flaky := &countingBackend{name: "flaky", err: errBackend}
	steady := &countingBackend{name: "steady"}
	fg := NewFallbackGroup(flaky, "flaky", FallbackConfig{
		CircuitBreaker: CircuitBreakerConfig{
			MaxFailures:  2,
			ResetTimeout: time.Hour,
		},
	})
	fg.AddFallback("steady", steady)

	run := func(b *countingBackend) error {
		b.calls++
		return b.err
	}

	// Two failures trip the flaky entry's breaker; the third round must skip
	// it entirely.
	for i := 0; i < 3; i++ {
		if err := fg.Execute(run); err != nil {
			t.Fatalf("round %d: unexpected error: %v", i, err)
		}
	}
	if flaky.calls != 2 {
		t.Errorf("flaky calls = %d, want 2 (third round skipped)", flaky.calls)
	}
	if steady.calls != 3 {
		t.Errorf("steady calls = %d, want 3", steady.calls)
	}
}
