package circuitbreaker

import (
	"errors"
	"sync"
	"time"
)

// ErrOpen is returned while the breaker is rejecting calls.
var ErrOpen = errors.New("circuit breaker is open")

type State int

const (
	StateClosed State = iota
	StateOpen
	StateHalfOpen
)

type Settings struct {
	Name string
	// MaxRequests is the consecutive-failure threshold that trips the
	// breaker open.
	MaxRequests int
	Interval    time.Duration
	// Timeout is how long the breaker stays open before probing again.
	Timeout time.Duration
}

type CircuitBreaker struct {
	name      string
	threshold int
	timeout   time.Duration

	mu       sync.Mutex
	state    State
	failures int
	openedAt time.Time
}

func NewCircuitBreaker(settings Settings) *CircuitBreaker {
	threshold := settings.MaxRequests
	if threshold <= 0 {
		threshold = 5
	}
	timeout := settings.Timeout
	if timeout <= 0 {
		timeout = 30 * time.Second
	}
	return &CircuitBreaker{
		name:      settings.Name,
		threshold: threshold,
		timeout:   timeout,
		state:     StateClosed,
	}
}

func (cb *CircuitBreaker) State() State {
	cb.mu.Lock()
	defer cb.mu.Unlock()
	return cb.state
}

// Execute runs fn unless the breaker is open. A success in half-open state
// closes the breaker; a failure reopens it immediately.
func (cb *CircuitBreaker) Execute(fn func() error) error {
	cb.mu.Lock()
	if cb.state == StateOpen {
		if time.Since(cb.openedAt) < cb.timeout {
			cb.mu.Unlock()
			return ErrOpen
		}
		cb.state = StateHalfOpen
	}
	cb.mu.Unlock()

	err := fn()

	cb.mu.Lock()
	defer cb.mu.Unlock()

	if err != nil {
		cb.failures++
		if cb.state == StateHalfOpen || cb.failures >= cb.threshold {
			cb.state = StateOpen
			cb.openedAt = time.Now()
		}
		return err
	}

	cb.state = StateClosed
	cb.failures = 0
	return nil
}
