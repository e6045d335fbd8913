// Package resilience wraps outbound calls with a circuit breaker and
// bounded exponential-backoff retries.
package resilience

import (
	"context"
	"errors"
	"time"

	"github.com/cenkalti/backoff/v4"
	"github.com/sony/gobreaker/v2"
)

// ErrCircuitOpen is returned without calling the operation while the breaker is open.
var ErrCircuitOpen = errors.New("circuit breaker is open")

type Config struct {
	// Name identifies the breaker in logs.
	Name string

	// MaxRetries bounds retry attempts after the first call. Default: 3
	MaxRetries uint64

	// InitialInterval is the first backoff delay. Default: 100ms
	InitialInterval time.Duration

	// MaxInterval caps the backoff delay. Default: 5s
	MaxInterval time.Duration

	// OpenTimeout is how long the breaker stays open before probing. Default: 60s
	OpenTimeout time.Duration

	// OnStateChange is called when the breaker changes state.
	OnStateChange func(name string, from gobreaker.State, to gobreaker.State)
}

func DefaultConfig(name string) Config {
	return Config{
		Name:            name,
		MaxRetries:      3,
		InitialInterval: 100 * time.Millisecond,
		MaxInterval:     5 * time.Second,
		OpenTimeout:     60 * time.Second,
	}
}

// ReadyToTrip opens the breaker after 5+ requests with a failure rate of 50% or more.
func ReadyToTrip(counts gobreaker.Counts) bool {
	failureRatio := float64(counts.TotalFailures) / float64(counts.Requests)
	return counts.Requests >= 5 && failureRatio >= 0.5
}

type Executor struct {
	cfg     Config
	breaker *gobreaker.CircuitBreaker[struct{}]
}

func NewExecutor(cfg Config) *Executor {
	def := DefaultConfig(cfg.Name)
	if cfg.MaxRetries == 0 {
		cfg.MaxRetries = def.MaxRetries
	}
	if cfg.InitialInterval == 0 {
		cfg.InitialInterval = def.InitialInterval
	}
	if cfg.MaxInterval == 0 {
		cfg.MaxInterval = def.MaxInterval
	}
	if cfg.OpenTimeout == 0 {
		cfg.OpenTimeout = def.OpenTimeout
	}
	settings := gobreaker.Settings{
		Name:        cfg.Name,
		MaxRequests: 1,
		Timeout:     cfg.OpenTimeout,
		ReadyToTrip: ReadyToTrip,
	}
	if cfg.OnStateChange != nil {
		settings.OnStateChange = cfg.OnStateChange
	}
	return &Executor{cfg: cfg, breaker: gobreaker.NewCircuitBreaker[struct{}](settings)}
}

// Permanent marks err as not worth retrying. It still counts as a breaker failure.
func Permanent(err error) error {
	return backoff.Permanent(err)
}

// Do runs op until it succeeds, returns a permanent error, exhausts the
// retry budget, or ctx ends.
func (e *Executor) Do(ctx context.Context, op func(context.Context) error) error {
	bo := backoff.NewExponentialBackOff()
	bo.InitialInterval = e.cfg.InitialInterval
	bo.MaxInterval = e.cfg.MaxInterval
	bo.MaxElapsedTime = 0
	policy := backoff.WithContext(backoff.WithMaxRetries(bo, e.cfg.MaxRetries), ctx)

	return backoff.Retry(func() error {
		_, err := e.breaker.Execute(func() (struct{}, error) {
			return struct{}{}, op(ctx)
		})
		if errors.Is(err, gobreaker.ErrOpenState) || errors.Is(err, gobreaker.ErrTooManyRequests) {
			return backoff.Permanent(ErrCircuitOpen)
		}
		return err
	}, policy)
}

func (e *Executor) State() gobreaker.State {
	return e.breaker.State()
}
