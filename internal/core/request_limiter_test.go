package core

import (
	"context"
	"sync"
	"testing"
	"time"
)

func TestRequestLimiter_AcquireRelease(t *testing.T) {
	limiter := NewRequestLimiter(2, time.Second)
	ctx := context.Background()

	if got := limiter.Available(); got != 2 {
		t.Errorf("initial Available = %d, want 2", got)
	}

	if err := limiter.Acquire(ctx); err != nil {
		t.Fatalf("first Acquire failed: %v", err)
	}
	if err := limiter.Acquire(ctx); err != nil {
		t.Fatalf("second Acquire failed: %v", err)
	}
	if got := limiter.ActiveCount(); got != 2 {
		t.Errorf("ActiveCount = %d, want 2", got)
	}
	if got := limiter.Available(); got != 0 {
		t.Errorf("Available = %d, want 0", got)
	}

	limiter.Release()
	limiter.Release()

	if got := limiter.ActiveCount(); got != 0 {
		t.Errorf("after Release, ActiveCount = %d, want 0", got)
	}
}

func TestRequestLimiter_TimesOutWhenFull(t *testing.T) {
	limiter := NewRequestLimiter(1, 50*time.Millisecond)
	ctx := context.Background()

	if err := limiter.Acquire(ctx); err != nil {
		t.Fatalf("Acquire failed: %v", err)
	}
	defer limiter.Release()

	start := time.Now()
	err := limiter.Acquire(ctx)
	if err != ErrTooManyRequests {
		t.Fatalf("Acquire on full limiter = %v, want ErrTooManyRequests", err)
	}
	if elapsed := time.Since(start); elapsed < 40*time.Millisecond {
		t.Errorf("Acquire returned after %v, want about 50ms", elapsed)
	}
}

func TestRequestLimiter_CallerCancellation(t *testing.T) {
	limiter := NewRequestLimiter(1, time.Minute)
	if !limiter.TryAcquire() {
		t.Fatal("TryAcquire on empty limiter = false")
	}
	defer limiter.Release()

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	if err := limiter.Acquire(ctx); err != context.Canceled {
		t.Errorf("Acquire with cancelled ctx = %v, want context.Canceled", err)
	}
}

func TestRequestLimiter_TryAcquire(t *testing.T) {
	limiter := NewRequestLimiter(1, time.Second)

	if !limiter.TryAcquire() {
		t.Fatal("first TryAcquire = false, want true")
	}
	if limiter.TryAcquire() {
		t.Error("second TryAcquire = true, want false")
	}
	limiter.Release()
	if !limiter.TryAcquire() {
		t.Error("TryAcquire after Release = false, want true")
	}
	limiter.Release()
}

func TestRequestLimiter_Defaults(t *testing.T) {
	limiter := NewRequestLimiter(0, 0)
	if got := limiter.MaxConcurrent(); got != DefaultMaxConcurrentRequests {
		t.Errorf("MaxConcurrent = %d, want %d", got, DefaultMaxConcurrentRequests)
	}
	if limiter.maxWait != DefaultMaxWaitTime {
		t.Errorf("maxWait = %v, want %v", limiter.maxWait, DefaultMaxWaitTime)
	}
}

func TestRequestLimiter_WaitForDrain(t *testing.T) {
	limiter := NewRequestLimiter(3, time.Second)
	ctx := context.Background()

	var wg sync.WaitGroup
	for range 3 {
		if err := limiter.Acquire(ctx); err != nil {
			t.Fatalf("Acquire failed: %v", err)
		}
		wg.Add(1)
		go func() {
			defer wg.Done()
			time.Sleep(30 * time.Millisecond)
			limiter.Release()
		}()
	}

	drainCtx, cancel := context.WithTimeout(ctx, time.Second)
	defer cancel()
	if err := limiter.WaitForDrain(drainCtx); err != nil {
		t.Fatalf("WaitForDrain = %v, want nil", err)
	}
	wg.Wait()

	if got := limiter.ActiveCount(); got != 0 {
		t.Errorf("ActiveCount after drain = %d, want 0", got)
	}
}

func TestRequestLimiter_WaitForDrainTimeout(t *testing.T) {
	limiter := NewRequestLimiter(1, time.Second)
	if !limiter.TryAcquire() {
		t.Fatal("TryAcquire = false")
	}
	defer limiter.Release()

	ctx, cancel := context.WithTimeout(context.Background(), 20*time.Millisecond)
	defer cancel()
	if err := limiter.WaitForDrain(ctx); err != context.DeadlineExceeded {
		t.Errorf("WaitForDrain = %v, want context.DeadlineExceeded", err)
	}
}

func TestRequestLimiter_Status(t *testing.T) {
	limiter := NewRequestLimiter(4, time.Second)
	limiter.TryAcquire()
	defer limiter.Release()

	got := limiter.Status()
	want := LimiterStatus{Active: 1, Available: 3, MaxConcurrent: 4}
	if got != want {
		t.Errorf("Status = %+v, want %+v", got, want)
	}
}
