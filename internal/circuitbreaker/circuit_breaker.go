// Package circuitbreaker protects outbound collaborator calls from hammering
// a dead endpoint. The registrar wraps its RPC sends with one: while the
// circuit is open, registration attempts fail fast and the allocation path
// keeps working.
package circuitbreaker

import (
	"context"
	"errors"
	"sync"
	"time"

	"github.com/cashback-id/internal/logging"
)

// State represents the circuit breaker state
type State string

const (
	// StateClosed means the circuit is closed and requests are allowed
	StateClosed State = "closed"
	// StateOpen means the circuit is open and requests are blocked
	StateOpen State = "open"
	// StateHalfOpen means the circuit is probing whether the service recovered
	StateHalfOpen State = "half_open"
)

// ErrCircuitOpen is returned when the circuit breaker is open
var ErrCircuitOpen = errors.New("circuit breaker is open")

// Config configures a circuit breaker
type Config struct {
	Name        string
	MaxFailures int           // Consecutive failures before opening
	Timeout     time.Duration // Time to wait before attempting half-open
}

// DefaultConfig returns a default circuit breaker configuration
func DefaultConfig(name string) *Config {
	return &Config{
		Name:        name,
		MaxFailures: 5,
		Timeout:     30 * time.Second,
	}
}

// CircuitBreaker implements the circuit breaker pattern
type CircuitBreaker struct {
	name        string
	maxFailures int
	timeout     time.Duration
	logger      *logging.Logger

	mu               sync.Mutex
	state            State
	consecutiveFails int
	lastStateChange  time.Time
}

// NewCircuitBreaker creates a new circuit breaker
func NewCircuitBreaker(config *Config, logger *logging.Logger) *CircuitBreaker {
	if logger == nil {
		logger = logging.GetGlobalLogger()
	}
	return &CircuitBreaker{
		name:            config.Name,
		maxFailures:     config.MaxFailures,
		timeout:         config.Timeout,
		state:           StateClosed,
		lastStateChange: time.Now(),
		logger:          logger.WithField("circuitBreaker", config.Name),
	}
}

// State returns the current state.
func (cb *CircuitBreaker) State() State {
	cb.mu.Lock()
	defer cb.mu.Unlock()
	return cb.state
}

// Execute runs fn with circuit breaker protection. While open it returns
// ErrCircuitOpen without calling fn; after the timeout a single half-open
// probe decides whether to close again.
func (cb *CircuitBreaker) Execute(ctx context.Context, fn func() error) error {
	if err := cb.beforeRequest(); err != nil {
		return err
	}

	err := fn()
	cb.afterRequest(err)
	return err
}

func (cb *CircuitBreaker) beforeRequest() error {
	cb.mu.Lock()
	defer cb.mu.Unlock()

	switch cb.state {
	case StateOpen:
		if time.Since(cb.lastStateChange) > cb.timeout {
			cb.setState(StateHalfOpen)
			return nil
		}
		return ErrCircuitOpen
	default:
		return nil
	}
}

func (cb *CircuitBreaker) afterRequest(err error) {
	cb.mu.Lock()
	defer cb.mu.Unlock()

	if err == nil {
		cb.consecutiveFails = 0
		if cb.state != StateClosed {
			cb.setState(StateClosed)
		}
		return
	}

	cb.consecutiveFails++
	if cb.state == StateHalfOpen || cb.consecutiveFails >= cb.maxFailures {
		if cb.state != StateOpen {
			cb.setState(StateOpen)
		} else {
			cb.lastStateChange = time.Now()
		}
	}
}

func (cb *CircuitBreaker) setState(state State) {
	cb.state = state
	cb.lastStateChange = time.Now()
	cb.logger.WithField("state", string(state)).Info("Circuit breaker state changed")
}
