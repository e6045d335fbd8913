package resilience_test

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/sony/gobreaker/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"bactrack/internal/platform/resilience"
)

func fastConfig(name string) resilience.Config {
	return resilience.Config{
		Name:            name,
		MaxRetries:      2,
		InitialInterval: time.Millisecond,
		MaxInterval:     2 * time.Millisecond,
		OpenTimeout:     time.Minute,
	}
}

func TestExecutorRetriesTransientFailures(t *testing.T) {
	t.Parallel()
	ex := resilience.NewExecutor(fastConfig("retry"))
	calls := 0
	err := ex.Do(context.Background(), func(context.Context) error {
		calls++
		if calls < 3 {
			return errors.New("boom")
		}
		return nil
	})
	require.NoError(t, err)
	assert.Equal(t, 3, calls)
}

func TestExecutorStopsOnPermanentError(t *testing.T) {
	t.Parallel()
	ex := resilience.NewExecutor(fastConfig("permanent"))
	calls := 0
	cause := errors.New("bad request")
	err := ex.Do(context.Background(), func(context.Context) error {
		calls++
		return resilience.Permanent(cause)
	})
	assert.ErrorIs(t, err, cause)
	assert.Equal(t, 1, calls)
}

func TestExecutorOpensCircuitAfterRepeatedFailures(t *testing.T) {
	t.Parallel()
	ex := resilience.NewExecutor(fastConfig("trip"))
	failing := func(context.Context) error { return errors.New("down") }

	for i := 0; i < 3; i++ {
		_ = ex.Do(context.Background(), failing)
	}
	assert.Equal(t, gobreaker.StateOpen, ex.State())

	calls := 0
	err := ex.Do(context.Background(), func(context.Context) error {
		calls++
		return nil
	})
	assert.ErrorIs(t, err, resilience.ErrCircuitOpen)
	assert.Equal(t, 0, calls)
}
