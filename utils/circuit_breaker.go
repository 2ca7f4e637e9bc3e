package utils

import (
	"context"
	"errors"
	"sync"
	"time"
)

var ErrBreakerOpen = errors.New("circuit breaker is open")

type BreakerState int

const (
	BreakerClosed BreakerState = iota
	BreakerHalfOpen
	BreakerOpen
)

// CircuitBreaker guards calls to an external dependency. After the failure
// ratio of a window crosses the threshold the breaker opens and calls fail
// fast until the cooldown elapses, then a half-open probe decides.
type CircuitBreaker struct {
	name         string
	maxRequests  uint32
	interval     time.Duration
	cooldown     time.Duration
	failureRatio float64

	mu       sync.Mutex
	state    BreakerState
	requests uint32
	failures uint32
	expiry   time.Time
}

func NewCircuitBreaker(name string) *CircuitBreaker {
	return &CircuitBreaker{
		name:         name,
		maxRequests:  5,
		interval:     60 * time.Second,
		cooldown:     30 * time.Second,
		failureRatio: 0.6,
		state:        BreakerClosed,
	}
}

// Execute runs req unless the breaker is open. The context is passed
// through untouched; req owns its own timeout.
func (cb *CircuitBreaker) Execute(ctx context.Context, req func(ctx context.Context) error) error {
	if err := cb.beforeRequest(); err != nil {
		return err
	}

	err := req(ctx)
	cb.afterRequest(err == nil)
	return err
}

func (cb *CircuitBreaker) State() BreakerState {
	cb.mu.Lock()
	defer cb.mu.Unlock()
	cb.refreshLocked(time.Now())
	return cb.state
}

func (cb *CircuitBreaker) beforeRequest() error {
	cb.mu.Lock()
	defer cb.mu.Unlock()

	now := time.Now()
	cb.refreshLocked(now)

	switch cb.state {
	case BreakerOpen:
		return ErrBreakerOpen
	case BreakerHalfOpen:
		if cb.requests >= cb.maxRequests {
			return ErrBreakerOpen
		}
	}

	cb.requests++
	return nil
}

func (cb *CircuitBreaker) afterRequest(success bool) {
	cb.mu.Lock()
	defer cb.mu.Unlock()

	if !success {
		cb.failures++
	}

	switch cb.state {
	case BreakerClosed:
		if cb.requests >= cb.maxRequests && float64(cb.failures)/float64(cb.requests) >= cb.failureRatio {
			cb.trip(time.Now())
		}
	case BreakerHalfOpen:
		if !success {
			cb.trip(time.Now())
		} else if cb.failures == 0 && cb.requests >= cb.maxRequests {
			cb.reset(time.Now())
		}
	}
}

func (cb *CircuitBreaker) refreshLocked(now time.Time) {
	if cb.expiry.IsZero() || now.Before(cb.expiry) {
		return
	}

	switch cb.state {
	case BreakerClosed:
		// window elapsed, start a fresh counting window
		cb.requests, cb.failures = 0, 0
		cb.expiry = now.Add(cb.interval)
	case BreakerOpen:
		// cooldown elapsed, allow probes
		cb.state = BreakerHalfOpen
		cb.requests, cb.failures = 0, 0
		cb.expiry = time.Time{}
	}
}

func (cb *CircuitBreaker) trip(now time.Time) {
	cb.state = BreakerOpen
	cb.requests, cb.failures = 0, 0
	cb.expiry = now.Add(cb.cooldown)
}

func (cb *CircuitBreaker) reset(now time.Time) {
	cb.state = BreakerClosed
	cb.requests, cb.failures = 0, 0
	cb.expiry = now.Add(cb.interval)
}
