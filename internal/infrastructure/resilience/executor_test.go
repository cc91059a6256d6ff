package resilience

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/sony/gobreaker/v2"
)

func fastRetryConfig() Config {
	return Config{
		MaxAttempts:       3,
		InitialBackoff:    1 * time.Millisecond,
		MaxBackoff:        2 * time.Millisecond,
		BackoffMultiplier: 2,
		BreakerEnabled:    false,
	}
}

func TestExecuteRetriesUntilSuccess(t *testing.T) {
	exec := NewExecutor(fastRetryConfig())

	attempts := 0
	errFlaky := errors.New("connection reset")
	err := exec.Execute(context.Background(), "detect", func(context.Context) error {
		attempts++
		if attempts < 3 {
			return errFlaky
		}
		return nil
	}, func(err error) ErrorClassification {
		return ErrorClassification{Retryable: errors.Is(err, errFlaky), RecordFailure: true}
	})

	if err != nil {
		t.Fatalf("expected success after retries, got %v", err)
	}
	if attempts != 3 {
		t.Fatalf("attempts = %d, want 3", attempts)
	}
}

func TestExecuteStopsOnPermanentError(t *testing.T) {
	exec := NewExecutor(fastRetryConfig())

	attempts := 0
	errBadRequest := errors.New("bad request")
	err := exec.Execute(context.Background(), "detect", func(context.Context) error {
		attempts++
		return errBadRequest
	}, func(error) ErrorClassification {
		return ErrorClassification{Retryable: false, RecordFailure: false}
	})

	if !errors.Is(err, errBadRequest) {
		t.Fatalf("expected permanent error, got %v", err)
	}
	if attempts != 1 {
		t.Fatalf("attempts = %d, want 1", attempts)
	}
}

func TestExecuteExhaustsAttempts(t *testing.T) {
	exec := NewExecutor(fastRetryConfig())

	attempts := 0
	errFlaky := errors.New("timeout")
	err := exec.Execute(context.Background(), "publish", func(context.Context) error {
		attempts++
		return errFlaky
	}, func(error) ErrorClassification {
		return ErrorClassification{Retryable: true, RecordFailure: true}
	})

	if !errors.Is(err, errFlaky) {
		t.Fatalf("expected the last error, got %v", err)
	}
	if attempts != 3 {
		t.Fatalf("attempts = %d, want 3", attempts)
	}
}

func TestExecuteRespectsCancelledContext(t *testing.T) {
	exec := NewExecutor(fastRetryConfig())

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	called := false
	err := exec.Execute(ctx, "detect", func(context.Context) error {
		called = true
		return nil
	}, nil)

	if !errors.Is(err, context.Canceled) {
		t.Fatalf("expected context.Canceled, got %v", err)
	}
	if called {
		t.Fatal("operation must not run after cancellation")
	}
}

func TestExecuteOpensCircuitAfterFailures(t *testing.T) {
	exec := NewExecutor(Config{
		MaxAttempts:          1,
		InitialBackoff:       1 * time.Millisecond,
		MaxBackoff:           1 * time.Millisecond,
		BackoffMultiplier:    2,
		BreakerEnabled:       true,
		BreakerMinRequests:   2,
		BreakerFailureRatio:  0.5,
		BreakerOpenFor:       50 * time.Millisecond,
		BreakerHalfOpenCalls: 1,
	})

	errDown := errors.New("service down")
	classifier := func(error) ErrorClassification {
		return ErrorClassification{Retryable: false, RecordFailure: true}
	}

	for i := 0; i < 2; i++ {
		err := exec.Execute(context.Background(), "detect", func(context.Context) error {
			return errDown
		}, classifier)
		if !errors.Is(err, errDown) {
			t.Fatalf("iteration %d: expected service error, got %v", i, err)
		}
	}

	err := exec.Execute(context.Background(), "detect", func(context.Context) error {
		t.Fatal("circuit should be open and must not call the operation")
		return nil
	}, classifier)
	if !errors.Is(err, gobreaker.ErrOpenState) {
		t.Fatalf("expected open state error, got %v", err)
	}
	if !IsCircuitOpen(err) {
		t.Fatal("IsCircuitOpen should report the open breaker")
	}
}

func TestBreakersAreIsolatedPerOperation(t *testing.T) {
	exec := NewExecutor(Config{
		MaxAttempts:          1,
		BreakerEnabled:       true,
		BreakerMinRequests:   1,
		BreakerFailureRatio:  0.5,
		BreakerOpenFor:       time.Second,
		BreakerHalfOpenCalls: 1,
	})

	errDown := errors.New("service down")
	classifier := func(error) ErrorClassification {
		return ErrorClassification{Retryable: false, RecordFailure: true}
	}

	_ = exec.Execute(context.Background(), "detect", func(context.Context) error {
		return errDown
	}, classifier)

	err := exec.Execute(context.Background(), "publish", func(context.Context) error {
		return nil
	}, classifier)
	if err != nil {
		t.Fatalf("publish breaker must be unaffected, got %v", err)
	}
}
