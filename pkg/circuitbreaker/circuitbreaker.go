package circuitbreaker

import (
	"errors"
	"sync"
	"time"
)

// State represents the state of the circuit breaker.
type State int

const (
	// Closed is the initial state where requests are allowed.
	Closed State = iota
	// Open state is when the circuit has tripped and requests are blocked.
	Open
	// HalfOpen allows a limited number of trial requests to test recovery.
	HalfOpen
)

// String returns the string representation of the state.
func (s State) String() string {
	switch s {
	case Closed:
		return "Closed"
	case Open:
		return "Open"
	case HalfOpen:
		return "Half-Open"
	default:
		return "Unknown"
	}
}

// ErrCircuitOpen is returned when the circuit breaker is in the Open state.
var ErrCircuitOpen = errors.New("circuit breaker is open")

// CircuitBreaker is the interface for the circuit breaker pattern.
type CircuitBreaker interface {
	// Execute runs the given request if the circuit breaker is closed or half-open.
	Execute(req func() (interface{}, error)) (interface{}, error)
	// State returns the current state of the circuit breaker.
	State() State
}

// breaker is the default CircuitBreaker implementation.
type breaker struct {
	mu sync.Mutex

	failureThreshold uint32        // Consecutive failures that trip the circuit.
	successThreshold uint32        // Consecutive half-open successes that close it.
	timeout          time.Duration // Open-state cool-down before probing.

	state     State
	failures  uint32
	successes uint32
	openedAt  time.Time
}

// New creates a CircuitBreaker in the Closed state.
func New(failureThreshold, successThreshold uint32, timeout time.Duration) CircuitBreaker {
	return &breaker{
		failureThreshold: failureThreshold,
		successThreshold: successThreshold,
		timeout:          timeout,
		state:            Closed,
	}
}

// Execute runs req unless the circuit is open. A request executed while
// half-open counts toward closing or re-opening the circuit.
func (b *breaker) Execute(req func() (interface{}, error)) (interface{}, error) {
	if !b.admit() {
		return nil, ErrCircuitOpen
	}

	result, err := req()
	b.record(err == nil)
	return result, err
}

// State returns the current state, accounting for open-state expiry.
func (b *breaker) State() State {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.maybeProbe()
	return b.state
}

// admit decides whether a request may proceed and transitions Open to
// HalfOpen once the cool-down has elapsed.
func (b *breaker) admit() bool {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.maybeProbe()
	return b.state != Open
}

// maybeProbe moves the breaker from Open to HalfOpen after the timeout.
// Callers must hold the lock.
func (b *breaker) maybeProbe() {
	if b.state == Open && time.Since(b.openedAt) >= b.timeout {
		b.state = HalfOpen
		b.successes = 0
	}
}

// record folds one request outcome into the breaker state.
func (b *breaker) record(success bool) {
	b.mu.Lock()
	defer b.mu.Unlock()

	if success {
		b.failures = 0
		if b.state == HalfOpen {
			b.successes++
			if b.successes >= b.successThreshold {
				b.state = Closed
				b.successes = 0
			}
		}
		return
	}

	// A failure while half-open re-opens immediately.
	if b.state == HalfOpen {
		b.trip()
		return
	}

	b.failures++
	if b.state == Closed && b.failures >= b.failureThreshold {
		b.trip()
	}
}

// trip opens the circuit and restarts the cool-down clock.
// Callers must hold the lock.
func (b *breaker) trip() {
	b.state = Open
	b.openedAt = time.Now()
	b.failures = 0
	b.successes = 0
}
