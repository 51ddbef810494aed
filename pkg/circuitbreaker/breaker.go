// Package circuitbreaker guards calls to the identity provider and the
// event broker with sony/gobreaker.
package circuitbreaker

import (
	"context"
	"errors"
	"sync"
	"time"

	"github.com/sony/gobreaker"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"
	"go.uber.org/zap"
)

// State represents the circuit breaker state
type State string

const (
	StateClosed   State = "closed"
	StateOpen     State = "open"
	StateHalfOpen State = "half-open"
)

// Gauge returns the numeric form used by the state gauge
func (s State) Gauge() float64 {
	switch s {
	case StateOpen:
		return 1
	case StateHalfOpen:
		return 2
	default:
		return 0
	}
}

// ErrOpen is returned while the circuit rejects calls
var ErrOpen = errors.New("circuit breaker is open")

// Config holds circuit breaker configuration
type Config struct {
	Name string
	// MaxRequests is max requests allowed in half-open state
	MaxRequests uint32
	// Interval is the cyclic period for clearing counts in closed state
	Interval time.Duration
	// Timeout is how long the circuit stays open before probing again
	Timeout time.Duration
	// FailureThreshold is the number of consecutive failures before opening
	FailureThreshold uint32
	// OnStateChange is called after every transition
	OnStateChange func(name string, to State)
}

// DefaultConfig returns defaults for the portal's outbound calls
func DefaultConfig(name string) Config {
	return Config{
		Name:             name,
		MaxRequests:      1,
		Interval:         60 * time.Second,
		Timeout:          30 * time.Second,
		FailureThreshold: 5,
	}
}

// CircuitBreaker wraps gobreaker with logging and tracing
type CircuitBreaker struct {
	cb     *gobreaker.CircuitBreaker
	name   string
	logger *zap.Logger
	tracer trace.Tracer
	notify func(name string, to State)

	stateMu      sync.RWMutex
	currentState State
}

// New creates a new circuit breaker
func New(cfg Config, logger *zap.Logger) *CircuitBreaker {
	if logger == nil {
		logger = zap.NewNop()
	}

	c := &CircuitBreaker{
		name:         cfg.Name,
		logger:       logger,
		tracer:       otel.Tracer("circuit-breaker"),
		notify:       cfg.OnStateChange,
		currentState: StateClosed,
	}

	c.cb = gobreaker.NewCircuitBreaker(gobreaker.Settings{
		Name:        cfg.Name,
		MaxRequests: cfg.MaxRequests,
		Interval:    cfg.Interval,
		Timeout:     cfg.Timeout,
		ReadyToTrip: func(counts gobreaker.Counts) bool {
			return counts.ConsecutiveFailures >= cfg.FailureThreshold
		},
		OnStateChange: func(_ string, from, to gobreaker.State) {
			c.onStateChange(from, to)
		},
	})

	return c
}

// Execute runs fn through the circuit breaker. While the circuit is open fn
// is not called and ErrOpen is returned.
func (c *CircuitBreaker) Execute(ctx context.Context, fn func(ctx context.Context) error) error {
	ctx, span := c.tracer.Start(ctx, "circuit_breaker_execute",
		trace.WithAttributes(
			attribute.String("breaker_name", c.name),
			attribute.String("state", string(c.State())),
		))
	defer span.End()

	_, err := c.cb.Execute(func() (interface{}, error) {
		return nil, fn(ctx)
	})
	if errors.Is(err, gobreaker.ErrOpenState) || errors.Is(err, gobreaker.ErrTooManyRequests) {
		span.SetAttributes(attribute.Bool("circuit_open", true))
		err = ErrOpen
	}
	if err != nil {
		span.RecordError(err)
	}
	return err
}

// State returns the current circuit breaker state
func (c *CircuitBreaker) State() State {
	c.stateMu.RLock()
	defer c.stateMu.RUnlock()
	return c.currentState
}

func (c *CircuitBreaker) onStateChange(from, to gobreaker.State) {
	fromState, toState := mapState(from), mapState(to)

	c.stateMu.Lock()
	c.currentState = toState
	c.stateMu.Unlock()

	c.logger.Warn("circuit breaker state changed",
		zap.String("breaker", c.name),
		zap.String("from", string(fromState)),
		zap.String("to", string(toState)))

	if c.notify != nil {
		c.notify(c.name, toState)
	}
}

func mapState(s gobreaker.State) State {
	switch s {
	case gobreaker.StateOpen:
		return StateOpen
	case gobreaker.StateHalfOpen:
		return StateHalfOpen
	default:
		return StateClosed
	}
}
