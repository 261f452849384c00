package timeout

import (
	"context"
	"errors"
	"sync/atomic"
	"testing"
	"time"
)

func TestWithTimeout_OperationSettlesFirst(t *testing.T) {
	got, err := WithTimeout(context.Background(), 100*time.Millisecond, "fast", func(_ context.Context) (string, error) {
		return "ok", nil
	})
	if err != nil {
		t.Fatalf("expected no error, got %v", err)
	}
	if got != "ok" {
		t.Errorf("expected ok, got %q", got)
	}
}

func TestWithTimeout_OperationErrorPropagates(t *testing.T) {
	opErr := errors.New("downstream failed")
	_, err := WithTimeout(context.Background(), 100*time.Millisecond, "failing", func(_ context.Context) (int, error) {
		return 0, opErr
	})
	if !errors.Is(err, opErr) {
		t.Errorf("expected operation error, got %v", err)
	}
}

func TestWithTimeout_DeadlineFires(t *testing.T) {
	start := time.Now()
	_, err := WithTimeout(context.Background(), 50*time.Millisecond, "slow", func(ctx context.Context) (string, error) {
		select {
		case <-time.After(5 * time.Second):
			return "late", nil
		case <-ctx.Done():
			return "", ctx.Err()
		}
	})

	var te *Error
	if !errors.As(err, &te) {
		t.Fatalf("expected *Error, got %v", err)
	}
	if te.Label != "slow" {
		t.Errorf("expected label slow, got %q", te.Label)
	}
	if te.Duration != 50*time.Millisecond {
		t.Errorf("expected 50ms duration, got %s", te.Duration)
	}
	if elapsed := time.Since(start); elapsed > time.Second {
		t.Errorf("deadline should fire promptly, took %s", elapsed)
	}
}

func TestWithTimeout_LateSettlementIgnored(t *testing.T) {
	done := make(chan struct{})
	_, err := WithTimeout(context.Background(), 20*time.Millisecond, "laggard", func(_ context.Context) (string, error) {
		// Ignore the context: the operation keeps running after losing.
		time.Sleep(60 * time.Millisecond)
		close(done)
		return "late", nil
	})
	if !IsTimeout(err) {
		t.Fatalf("expected timeout, got %v", err)
	}

	// The in-flight operation runs to completion without blocking or panicking.
	select {
	case <-done:
	case <-time.After(time.Second):
		t.Fatal("losing operation should still run to completion")
	}
}

func TestWithTimeout_PanicRecovered(t *testing.T) {
	_, err := WithTimeout(context.Background(), 100*time.Millisecond, "panicky", func(_ context.Context) (int, error) {
		panic("boom")
	})
	if err == nil {
		t.Fatal("expected error from panicking operation")
	}
	if IsTimeout(err) {
		t.Errorf("panic should not classify as timeout: %v", err)
	}
}

func TestWithTimeout_ParentContextCancelled(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := WithTimeout(ctx, time.Second, "cancelled", func(ctx context.Context) (int, error) {
		<-ctx.Done()
		return 0, ctx.Err()
	})
	if !errors.Is(err, context.Canceled) {
		t.Errorf("expected context.Canceled, got %v", err)
	}
}

func TestRace_FirstSettlerWins(t *testing.T) {
	got, err := Race(context.Background(), time.Second, "replicas",
		func(ctx context.Context) (string, error) {
			select {
			case <-time.After(200 * time.Millisecond):
				return "slow-replica", nil
			case <-ctx.Done():
				return "", ctx.Err()
			}
		},
		func(_ context.Context) (string, error) {
			return "fast-replica", nil
		},
	)
	if err != nil {
		t.Fatalf("expected no error, got %v", err)
	}
	if got != "fast-replica" {
		t.Errorf("expected fast-replica, got %q", got)
	}
}

func TestRace_AllTooSlow(t *testing.T) {
	slow := func(ctx context.Context) (int, error) {
		select {
		case <-time.After(time.Second):
			return 1, nil
		case <-ctx.Done():
			return 0, ctx.Err()
		}
	}
	_, err := Race(context.Background(), 30*time.Millisecond, "all-slow", slow, slow)
	if !IsTimeout(err) {
		t.Errorf("expected timeout, got %v", err)
	}
}

func TestRace_NoOperations(t *testing.T) {
	_, err := Race[int](context.Background(), time.Second, "empty")
	if err == nil {
		t.Fatal("expected error for empty race")
	}
}

func TestWithTimeout_NoDoubleSettlement(t *testing.T) {
	var settles int32
	for i := 0; i < 5; i++ {
		_, _ = WithTimeout(context.Background(), 10*time.Millisecond, "racy", func(_ context.Context) (int, error) {
			time.Sleep(10 * time.Millisecond)
			atomic.AddInt32(&settles, 1)
			return 1, nil
		})
	}
	// Wait for stragglers; each invocation settles exactly once internally.
	time.Sleep(50 * time.Millisecond)
	if n := atomic.LoadInt32(&settles); n != 5 {
		t.Errorf("expected 5 settlements, got %d", n)
	}
}
