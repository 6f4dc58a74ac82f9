package session

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/avast/retry-go/v4"
	"github.com/gridbox/gridbox/internal/log"
	"github.com/gridbox/gridbox/internal/webdriver"
)

// ErrReadinessTimeout reports that the WebDriver endpoint kept refusing
// connections until the readiness deadline. The container process was
// running; the service inside it never came up in time.
var ErrReadinessTimeout = errors.New("webdriver endpoint not ready before deadline")

// Driver resolves the session's endpoint and returns a live WebDriver
// client. Container start does not imply the in-container service is
// ready, so connection attempts are retried with backoff while they
// fail at the transport level, up to the session's readiness timeout.
// Any non-transient failure surfaces immediately.
func (s *Session) Driver(ctx context.Context) (*webdriver.Client, error) {
	url, err := s.ConnectionURL(ctx)
	if err != nil {
		return nil, err
	}

	return awaitReady(ctx, s.opts.ReadinessTimeout, func(ctx context.Context) (*webdriver.Client, error) {
		return webdriver.New(ctx, url, s.caps)
	})
}

// connectFunc attempts one protocol handshake.
type connectFunc func(ctx context.Context) (*webdriver.Client, error)

// awaitReady retries connect on transient connection errors until it
// succeeds or the deadline passes.
func awaitReady(ctx context.Context, timeout time.Duration, connect connectFunc) (*webdriver.Client, error) {
	deadlineCtx, cancel := context.WithTimeout(ctx, timeout)
	defer cancel()

	client, err := retry.DoWithData(func() (*webdriver.Client, error) {
		return connect(deadlineCtx)
	},
		retry.Context(deadlineCtx),
		retry.Attempts(0), // bounded by the deadline, not a count
		retry.Delay(500*time.Millisecond),
		retry.MaxDelay(5*time.Second),
		retry.DelayType(retry.BackOffDelay),
		retry.LastErrorOnly(true),
		retry.RetryIf(webdriver.IsConnError),
		retry.OnRetry(func(n uint, err error) {
			log.Debug("webdriver endpoint not ready, retrying", "attempt", n, "error", err)
		}),
	)
	if err == nil {
		return client, nil
	}

	// Caller cancellation is not a readiness verdict.
	if ctx.Err() != nil {
		return nil, ctx.Err()
	}
	if deadlineCtx.Err() != nil {
		return nil, fmt.Errorf("%w (%s): %v", ErrReadinessTimeout, timeout, err)
	}
	return nil, err
}
