package out_test

import (
	"context"
	"io"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"
	"time"

	"github.com/goccy/go-json"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	sessionout "bactrack/internal/modules/session/adapter/out"
	"bactrack/internal/modules/session/domain"
	"bactrack/internal/platform/resilience"
)

func fastExecutor(name string) *resilience.Executor {
	return resilience.NewExecutor(resilience.Config{
		Name:            name,
		MaxRetries:      2,
		InitialInterval: time.Millisecond,
		MaxInterval:     5 * time.Millisecond,
	})
}

func TestHTTPSessionPusherPutsSession(t *testing.T) {
	t.Parallel()
	var (
		gotPath   string
		gotMethod string
		gotAuth   string
		gotBody   domain.Session
	)
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotPath = r.URL.Path
		gotMethod = r.Method
		gotAuth = r.Header.Get("Authorization")
		body, _ := io.ReadAll(r.Body)
		_ = json.Unmarshal(body, &gotBody)
		w.WriteHeader(http.StatusNoContent)
	}))
	t.Cleanup(server.Close)

	pusher := sessionout.NewHTTPSessionPusher(sessionout.HTTPPusherConfig{
		BaseURL:  server.URL + "/",
		Token:    "secret",
		Executor: fastExecutor("put"),
	})
	s := sampleSession(t, "s-1", false)
	require.NoError(t, pusher.Push(context.Background(), s))

	assert.Equal(t, http.MethodPut, gotMethod)
	assert.Equal(t, "/sessions/s-1", gotPath)
	assert.Equal(t, "Bearer secret", gotAuth)
	assert.Equal(t, s.ID, gotBody.ID)
	assert.Len(t, gotBody.Drinks, 1)
}

func TestHTTPSessionPusherRetriesServerErrors(t *testing.T) {
	t.Parallel()
	var calls atomic.Int32
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if calls.Add(1) < 3 {
			w.WriteHeader(http.StatusBadGateway)
			return
		}
		w.WriteHeader(http.StatusOK)
	}))
	t.Cleanup(server.Close)

	pusher := sessionout.NewHTTPSessionPusher(sessionout.HTTPPusherConfig{BaseURL: server.URL, Executor: fastExecutor("retry")})
	require.NoError(t, pusher.Push(context.Background(), sampleSession(t, "s-1", false)))
	assert.Equal(t, int32(3), calls.Load())
}

func TestHTTPSessionPusherDoesNotRetryRejections(t *testing.T) {
	t.Parallel()
	var calls atomic.Int32
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		calls.Add(1)
		w.WriteHeader(http.StatusUnprocessableEntity)
	}))
	t.Cleanup(server.Close)

	pusher := sessionout.NewHTTPSessionPusher(sessionout.HTTPPusherConfig{BaseURL: server.URL, Executor: fastExecutor("reject")})
	err := pusher.Push(context.Background(), sampleSession(t, "s-1", false))
	assert.ErrorIs(t, err, sessionout.ErrRemoteRejected)
	assert.Equal(t, int32(1), calls.Load())
}

func TestHTTPSessionPusherGivesUpAfterRetryBudget(t *testing.T) {
	t.Parallel()
	var calls atomic.Int32
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		calls.Add(1)
		w.WriteHeader(http.StatusInternalServerError)
	}))
	t.Cleanup(server.Close)

	pusher := sessionout.NewHTTPSessionPusher(sessionout.HTTPPusherConfig{BaseURL: server.URL, Executor: fastExecutor("budget")})
	err := pusher.Push(context.Background(), sampleSession(t, "s-1", false))
	require.Error(t, err)
	assert.Equal(t, int32(3), calls.Load())
}
