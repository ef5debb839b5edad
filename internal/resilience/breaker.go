package resilience

import (
	"context"
	"errors"
	"sync"
	"time"
)

// ErrCircuitOpen is returned without invoking the operation while the
// breaker is open. Callers treat it like any other transport failure: the
// message stays uncommitted and is redelivered.
var ErrCircuitOpen = errors.New("circuit breaker is open")

type BreakerState int

const (
	StateClosed BreakerState = iota
	StateOpen
	StateHalfOpen
)

func (s BreakerState) String() string {
	switch s {
	case StateClosed:
		return "closed"
	case StateOpen:
		return "open"
	case StateHalfOpen:
		return "half-open"
	default:
		return "unknown"
	}
}

// CircuitBreaker trips open after a run of consecutive failures and probes
// again once the recovery timeout has passed. It guards broker calls so an
// outage is not hammered with requests.
type CircuitBreaker struct {
	mu          sync.Mutex
	state       BreakerState
	failures    int
	lastFailure time.Time

	threshold int
	recovery  time.Duration
	now       func() time.Time
}

func NewCircuitBreaker(threshold int, recovery time.Duration) *CircuitBreaker {
	return &CircuitBreaker{
		threshold: threshold,
		recovery:  recovery,
		now:       time.Now,
	}
}

func (b *CircuitBreaker) Call(ctx context.Context, op func(context.Context) error) error {
	if !b.allow() {
		return ErrCircuitOpen
	}

	if err := op(ctx); err != nil {
		b.onFailure()
		return err
	}
	b.onSuccess()
	return nil
}

func (b *CircuitBreaker) State() BreakerState {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.state
}

func (b *CircuitBreaker) allow() bool {
	b.mu.Lock()
	defer b.mu.Unlock()

	switch b.state {
	case StateClosed, StateHalfOpen:
		return true
	case StateOpen:
		if b.now().Sub(b.lastFailure) >= b.recovery {
			b.state = StateHalfOpen
			return true
		}
		return false
	default:
		return false
	}
}

func (b *CircuitBreaker) onSuccess() {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.failures = 0
	b.state = StateClosed
}

func (b *CircuitBreaker) onFailure() {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.failures++
	b.lastFailure = b.now()
	if b.state == StateHalfOpen || b.failures >= b.threshold {
		b.state = StateOpen
	}
}
