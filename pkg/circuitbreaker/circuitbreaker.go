package circuitbreaker

import (
	"errors"
	"sync"
	"time"
)

// State of a breaker.
type State int

const (
	StateClosed   State = iota // calls pass through
	StateOpen                  // calls are rejected immediately
	StateHalfOpen              // a limited number of trial calls pass through
)

func (s State) String() string {
	switch s {
	case StateClosed:
		return "closed"
	case StateOpen:
		return "open"
	case StateHalfOpen:
		return "half_open"
	default:
		return "unknown"
	}
}

// ErrCircuitBreakerOpen is returned by Execute while the breaker rejects calls.
var ErrCircuitBreakerOpen = errors.New("circuit breaker is open")

// Config breaker thresholds.
type Config struct {
	// FailureThreshold consecutive failures that open the breaker.
	FailureThreshold int
	// SuccessThreshold successful trial calls that close a half-open breaker.
	SuccessThreshold int
	// Timeout how long the breaker stays open before probing.
	Timeout time.Duration
	// HalfOpenMaxRequests concurrent trial calls allowed while half-open.
	HalfOpenMaxRequests int
	// OnStateChange, if set, is called (outside the lock) on every transition.
	OnStateChange func(from, to State)
}

// DefaultConfig returns the thresholds used for the completion service.
func DefaultConfig() Config {
	return Config{
		FailureThreshold:    5,
		SuccessThreshold:    2,
		Timeout:             30 * time.Second,
		HalfOpenMaxRequests: 3,
	}
}

// CircuitBreaker guards calls to an unreliable dependency.
type CircuitBreaker struct {
	config Config
	now    func() time.Time

	state         State
	failureCount  int
	successCount  int
	halfOpenCount int
	lastStateTime time.Time

	mu sync.Mutex
}

// NewCircuitBreaker creates a closed breaker.
func NewCircuitBreaker(config Config) *CircuitBreaker {
	return &CircuitBreaker{
		config:        config,
		now:           time.Now,
		state:         StateClosed,
		lastStateTime: time.Now(),
	}
}

// Execute runs fn unless the breaker is open. fn's error is returned unchanged.
func (cb *CircuitBreaker) Execute(fn func() error) error {
	cb.mu.Lock()
	transitions := cb.advance()

	switch cb.state {
	case StateOpen:
		cb.mu.Unlock()
		cb.notify(transitions)
		return ErrCircuitBreakerOpen
	case StateHalfOpen:
		if cb.halfOpenCount >= cb.config.HalfOpenMaxRequests {
			cb.mu.Unlock()
			cb.notify(transitions)
			return ErrCircuitBreakerOpen
		}
		cb.halfOpenCount++
	}
	cb.mu.Unlock()
	cb.notify(transitions)

	err := fn()

	cb.mu.Lock()
	if err != nil {
		transitions = cb.onFailure()
	} else {
		transitions = cb.onSuccess()
	}
	cb.mu.Unlock()
	cb.notify(transitions)

	return err
}

type transition struct{ from, to State }

// advance applies time-based transitions. Caller holds mu.
func (cb *CircuitBreaker) advance() []transition {
	if cb.state == StateOpen && cb.now().Sub(cb.lastStateTime) >= cb.config.Timeout {
		return []transition{cb.setState(StateHalfOpen)}
	}
	return nil
}

// Caller holds mu.
func (cb *CircuitBreaker) onFailure() []transition {
	cb.failureCount++

	switch cb.state {
	case StateHalfOpen:
		return []transition{cb.setState(StateOpen)}
	case StateClosed:
		if cb.failureCount >= cb.config.FailureThreshold {
			return []transition{cb.setState(StateOpen)}
		}
	}
	return nil
}

// Caller holds mu.
func (cb *CircuitBreaker) onSuccess() []transition {
	cb.failureCount = 0

	if cb.state == StateHalfOpen {
		cb.successCount++
		cb.halfOpenCount--
		if cb.successCount >= cb.config.SuccessThreshold {
			return []transition{cb.setState(StateClosed)}
		}
	}
	return nil
}

// Caller holds mu.
func (cb *CircuitBreaker) setState(to State) transition {
	from := cb.state
	cb.state = to
	cb.lastStateTime = cb.now()
	cb.halfOpenCount = 0
	cb.successCount = 0
	if to == StateClosed {
		cb.failureCount = 0
	}
	return transition{from: from, to: to}
}

func (cb *CircuitBreaker) notify(ts []transition) {
	if cb.config.OnStateChange == nil {
		return
	}
	for _, t := range ts {
		cb.config.OnStateChange(t.from, t.to)
	}
}

// GetState returns the current state without applying time-based transitions.
func (cb *CircuitBreaker) GetState() State {
	cb.mu.Lock()
	defer cb.mu.Unlock()
	return cb.state
}

// Reset closes the breaker and clears all counters.
func (cb *CircuitBreaker) Reset() {
	cb.mu.Lock()
	defer cb.mu.Unlock()

	cb.state = StateClosed
	cb.failureCount = 0
	cb.successCount = 0
	cb.halfOpenCount = 0
	cb.lastStateTime = cb.now()
}
