package out

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/goccy/go-json"

	"bactrack/internal/modules/session/domain"
	sessionout "bactrack/internal/modules/session/port/out"
	"bactrack/internal/platform/resilience"
)

// ErrRemoteRejected marks a push the remote refused outright; it is not retried.
var ErrRemoteRejected = errors.New("remote rejected session")

type HTTPPusherConfig struct {
	// BaseURL is the sync endpoint root (required).
	BaseURL string

	// Token is sent as a bearer token when set.
	Token string

	// Timeout bounds each request. Default: 10s
	Timeout time.Duration

	// Executor wraps every request (optional, defaults to resilience.DefaultConfig).
	Executor *resilience.Executor
}

// HTTPSessionPusher mirrors sessions to PUT <base>/sessions/<id>.
type HTTPSessionPusher struct {
	baseURL string
	token   string
	client  *http.Client
	exec    *resilience.Executor
}

func NewHTTPSessionPusher(cfg HTTPPusherConfig) *HTTPSessionPusher {
	timeout := cfg.Timeout
	if timeout <= 0 {
		timeout = 10 * time.Second
	}
	exec := cfg.Executor
	if exec == nil {
		exec = resilience.NewExecutor(resilience.DefaultConfig("session-sync"))
	}
	return &HTTPSessionPusher{
		baseURL: strings.TrimRight(cfg.BaseURL, "/"),
		token:   cfg.Token,
		client:  &http.Client{Timeout: timeout},
		exec:    exec,
	}
}

var _ sessionout.RemotePusher = (*HTTPSessionPusher)(nil)

func (p *HTTPSessionPusher) Push(ctx context.Context, session domain.Session) error {
	payload, err := json.Marshal(session)
	if err != nil {
		return fmt.Errorf("marshal session: %w", err)
	}
	target := p.baseURL + "/sessions/" + url.PathEscape(session.ID)

	return p.exec.Do(ctx, func(ctx context.Context) error {
		req, err := http.NewRequestWithContext(ctx, http.MethodPut, target, bytes.NewReader(payload))
		if err != nil {
			return resilience.Permanent(fmt.Errorf("creating request: %w", err))
		}
		req.Header.Set("Content-Type", "application/json")
		if p.token != "" {
			req.Header.Set("Authorization", "Bearer "+p.token)
		}

		resp, err := p.client.Do(req)
		if err != nil {
			return fmt.Errorf("executing request: %w", err)
		}
		defer resp.Body.Close()
		_, _ = io.Copy(io.Discard, resp.Body)

		switch {
		case resp.StatusCode >= 200 && resp.StatusCode < 300:
			return nil
		case resp.StatusCode == http.StatusRequestTimeout || resp.StatusCode == http.StatusTooManyRequests:
			return fmt.Errorf("remote busy: status %d", resp.StatusCode)
		case resp.StatusCode >= 400 && resp.StatusCode < 500:
			return resilience.Permanent(fmt.Errorf("%w: status %d", ErrRemoteRejected, resp.StatusCode))
		default:
			return fmt.Errorf("unexpected status code: %d", resp.StatusCode)
		}
	})
}
