package apiclient

import (
	"context"
	"errors"
	"time"

	"github.com/sethvargo/go-retry"
)

// Retrier wraps a Doer with a retry policy for responses that settled as
// NetworkError or ServerError. Unauthorized, RateLimited and
// RequestRejected responses are returned as-is: retrying them cannot
// change the outcome and would repeat side effects the user did not ask
// for.
//
// The wrapped Doer stays retry-free; this type is the only place the retry
// configuration is consulted.
type Retrier struct {
	doer        Doer
	maxAttempts uint64
	baseDelay   time.Duration
}

var errTransient = errors.New("transient gateway failure")

// NewRetrier wraps doer. maxAttempts counts retries beyond the initial
// call; baseDelay seeds the fibonacci backoff.
func NewRetrier(doer Doer, maxAttempts uint64, baseDelay time.Duration) *Retrier {
	if baseDelay <= 0 {
		baseDelay = 250 * time.Millisecond
	}
	return &Retrier{
		doer:        doer,
		maxAttempts: maxAttempts,
		baseDelay:   baseDelay,
	}
}

// Do issues the request, re-issuing it with backoff while it settles as a
// transient failure. The last settled Response is returned even when all
// attempts are exhausted or the context is cancelled mid-backoff.
func (r *Retrier) Do(ctx context.Context, req Request) (Response, error) {
	var (
		resp  Response
		doErr error
	)

	backoff := retry.WithMaxRetries(r.maxAttempts, retry.NewFibonacci(r.baseDelay))
	_ = retry.Do(ctx, backoff, func(ctx context.Context) error {
		resp, doErr = r.doer.Do(ctx, req)
		if doErr != nil {
			// Construction failures are caller bugs; retrying cannot help.
			return nil
		}
		if resp.Kind == KindNetworkError || resp.Kind == KindServerError {
			return retry.RetryableError(errTransient)
		}
		return nil
	})

	if doErr == nil && !resp.OK && resp.Kind == KindNone {
		// Context was cancelled before the first attempt ran.
		return failure(KindNetworkError, ""), nil
	}
	return resp, doErr
}
