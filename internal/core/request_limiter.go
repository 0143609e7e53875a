package core

// request_limiter.go bounds how many match requests run at once.
//
// Matching can fan out to the semantic oracle for every line of an invoice,
// so a burst of large invoices would otherwise queue unbounded work behind
// the oracle's rate limit. Requests that cannot get a slot within maxWait
// fail with ErrTooManyRequests. Shutdown calls WaitForDrain so in-flight
// matches finish before the process exits.

import (
	"context"
	"errors"
	"sync"
	"time"

	"github.com/JonMunkholm/stockmatch/internal/metrics"
)

// ErrTooManyRequests is returned when every slot stayed busy for maxWait.
var ErrTooManyRequests = errors.New("too many concurrent requests, please try again later")

// DefaultMaxConcurrentRequests is the default number of parallel match requests.
const DefaultMaxConcurrentRequests = 5

// DefaultMaxWaitTime is how long to wait for a slot before rejecting.
const DefaultMaxWaitTime = 30 * time.Second

// RequestLimiter is a counting semaphore with a bounded wait.
type RequestLimiter struct {
	semaphore chan struct{}
	maxWait   time.Duration

	mu     sync.RWMutex
	active int
}

// NewRequestLimiter allows at most maxConcurrent simultaneous requests.
func NewRequestLimiter(maxConcurrent int, maxWait time.Duration) *RequestLimiter {
	if maxConcurrent <= 0 {
		maxConcurrent = DefaultMaxConcurrentRequests
	}
	if maxWait <= 0 {
		maxWait = DefaultMaxWaitTime
	}

	return &RequestLimiter{
		semaphore: make(chan struct{}, maxConcurrent),
		maxWait:   maxWait,
	}
}

// Acquire takes a slot, waiting up to maxWait. The caller must Release
// after a nil return.
func (l *RequestLimiter) Acquire(ctx context.Context) error {
	waitCtx, cancel := context.WithTimeout(ctx, l.maxWait)
	defer cancel()

	select {
	case l.semaphore <- struct{}{}:
		l.track(1)
		return nil

	case <-waitCtx.Done():
		if ctx.Err() != nil {
			return ctx.Err()
		}
		return ErrTooManyRequests
	}
}

// TryAcquire takes a slot only if one is free right now.
func (l *RequestLimiter) TryAcquire() bool {
	select {
	case l.semaphore <- struct{}{}:
		l.track(1)
		return true
	default:
		return false
	}
}

// Release gives back a slot taken by Acquire or TryAcquire.
func (l *RequestLimiter) Release() {
	l.track(-1)
	<-l.semaphore
}

func (l *RequestLimiter) track(delta int) {
	l.mu.Lock()
	l.active += delta
	l.mu.Unlock()
	metrics.RequestSlotsInUse.Add(float64(delta))
}

// ActiveCount returns the number of requests holding a slot.
func (l *RequestLimiter) ActiveCount() int {
	l.mu.RLock()
	defer l.mu.RUnlock()
	return l.active
}

func (l *RequestLimiter) MaxConcurrent() int {
	return cap(l.semaphore)
}

func (l *RequestLimiter) Available() int {
	return cap(l.semaphore) - len(l.semaphore)
}

// WaitForDrain blocks until no request holds a slot or ctx is done.
func (l *RequestLimiter) WaitForDrain(ctx context.Context) error {
	ticker := time.NewTicker(50 * time.Millisecond)
	defer ticker.Stop()

	for {
		if l.ActiveCount() == 0 {
			return nil
		}
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-ticker.C:
		}
	}
}

// LimiterStatus is a snapshot for health reporting.
type LimiterStatus struct {
	Active        int `json:"active"`
	Available     int `json:"available"`
	MaxConcurrent int `json:"max_concurrent"`
}

func (l *RequestLimiter) Status() LimiterStatus {
	return LimiterStatus{
		Active:        l.ActiveCount(),
		Available:     l.Available(),
		MaxConcurrent: l.MaxConcurrent(),
	}
}
