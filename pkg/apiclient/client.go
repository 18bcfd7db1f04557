package apiclient

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"io"
	"log/slog"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/arborvest/arborvest-go/pkg/broadcast"
	"github.com/arborvest/arborvest-go/pkg/credentials"
)

// maxResponseBody caps how much of a response body is read when unwrapping
// the envelope.
const maxResponseBody = 1 << 20

// Invalidation is published when the server rejects the current credential.
// By the time subscribers observe it, the credential store is already empty.
type Invalidation struct {
	// Path is the API path of the request that triggered the rejection.
	Path string
	// Message is the server's wording, or the generic fallback.
	Message string
}

// Doer issues normalized requests. *Client implements it; Retrier wraps any
// implementation with a retry policy.
type Doer interface {
	Do(ctx context.Context, req Request) (Response, error)
}

// Client is the API gateway: every outbound call goes through Do.
// Safe for concurrent use. Create instances with New.
type Client struct {
	baseURL       *url.URL
	httpClient    *http.Client
	creds         credentials.Store
	invalidations *broadcast.Hub[Invalidation]
	log           *slog.Logger
	userAgent     string
}

// Option configures a Client.
type Option func(*Client)

// WithHTTPClient replaces the default HTTP client. Useful for custom
// transports and tests.
func WithHTTPClient(hc *http.Client) Option {
	return func(c *Client) {
		if hc != nil {
			c.httpClient = hc
		}
	}
}

// WithTimeout bounds each request end to end. Default is 15 seconds.
func WithTimeout(d time.Duration) Option {
	return func(c *Client) {
		if d > 0 {
			c.httpClient.Timeout = d
		}
	}
}

// WithUserAgent overrides the User-Agent header.
func WithUserAgent(ua string) Option {
	return func(c *Client) {
		if ua != "" {
			c.userAgent = ua
		}
	}
}

// WithLogger attaches a structured logger. Default discards nothing but
// logs to the process default.
func WithLogger(log *slog.Logger) Option {
	return func(c *Client) {
		if log != nil {
			c.log = log
		}
	}
}

// New creates a gateway client for the API rooted at baseURL, reading the
// bearer credential from creds on every call.
func New(baseURL string, creds credentials.Store, opts ...Option) (*Client, error) {
	if creds == nil {
		return nil, ErrNoCredentialStore
	}

	u, err := url.Parse(baseURL)
	if err != nil {
		return nil, errors.Join(ErrInvalidBaseURL, err)
	}
	if u.Scheme != "http" && u.Scheme != "https" {
		return nil, errors.Join(ErrInvalidBaseURL, errors.New("scheme must be http or https"))
	}
	if u.Host == "" {
		return nil, errors.Join(ErrInvalidBaseURL, errors.New("host is required"))
	}

	c := &Client{
		baseURL: u,
		httpClient: &http.Client{
			Timeout: 15 * time.Second,
		},
		creds:         creds,
		invalidations: broadcast.NewHub[Invalidation](8),
		log:           slog.Default(),
		userAgent:     "arborvest-go/1.0",
	}
	for _, opt := range opts {
		opt(c)
	}
	return c, nil
}

// Invalidations returns the hub carrying credential-rejection events.
func (c *Client) Invalidations() *broadcast.Hub[Invalidation] {
	return c.invalidations
}

// Close shuts down the invalidation hub. In-flight requests still settle.
func (c *Client) Close() {
	c.invalidations.Close()
}

// Do issues the request and settles it into a Response. Transport failures
// and server failures are classified, never returned as errors; the error
// return fires only for requests that cannot be constructed at all.
func (c *Client) Do(ctx context.Context, req Request) (Response, error) {
	httpReq, err := c.buildRequest(ctx, req)
	if err != nil {
		return Response{}, err
	}

	c.log.DebugContext(ctx, "api request",
		slog.String("method", req.Method),
		slog.String("path", req.Path),
	)

	httpResp, err := c.httpClient.Do(httpReq)
	if err != nil {
		if ctx.Err() != nil || errors.Is(err, context.DeadlineExceeded) {
			return failure(KindNetworkError, "The request timed out. Please try again."), nil
		}
		return failure(KindNetworkError, ""), nil
	}
	defer func() { _ = httpResp.Body.Close() }()

	body, _ := io.ReadAll(io.LimitReader(httpResp.Body, maxResponseBody))

	var envelope wireEnvelope
	envelopeErr := json.Unmarshal(body, &envelope)

	resp := c.classify(httpResp.StatusCode, envelope, envelopeErr)

	if resp.Kind == KindUnauthorized {
		// Clear first, publish second: by the time any subscriber reacts,
		// no new request can pick up the dead credential.
		if err := c.creds.Clear(ctx); err != nil {
			c.log.ErrorContext(ctx, "failed to clear rejected credential", slog.Any("error", err))
		}
		c.invalidations.Publish(Invalidation{Path: req.Path, Message: resp.Message})
		c.log.WarnContext(ctx, "session invalidated by server",
			slog.String("path", req.Path),
		)
	}

	if !resp.OK {
		c.log.DebugContext(ctx, "api request failed",
			slog.String("path", req.Path),
			slog.String("kind", string(resp.Kind)),
			slog.Int("status", httpResp.StatusCode),
		)
	}
	return resp, nil
}

// classify maps a status code plus envelope into the closed error-kind set.
func (c *Client) classify(status int, envelope wireEnvelope, envelopeErr error) Response {
	switch {
	case status == http.StatusUnauthorized:
		return failure(KindUnauthorized, envelope.Message)
	case status == http.StatusTooManyRequests:
		return failure(KindRateLimited, envelope.Message)
	case status >= 500:
		return failure(KindServerError, envelope.Message)
	case status >= 400:
		return failure(KindRequestRejected, envelope.Message)
	}

	// 2xx from here on.
	if envelopeErr != nil {
		return failure(KindServerError, "")
	}
	if !envelope.Success {
		return failure(KindRequestRejected, envelope.Message)
	}
	return Response{OK: true, Data: envelope.Data, Message: envelope.Message}
}

func (c *Client) buildRequest(ctx context.Context, req Request) (*http.Request, error) {
	if req.Path == "" || !strings.HasPrefix(req.Path, "/") {
		return nil, errors.Join(ErrInvalidRequest, errors.New("path must start with /"))
	}

	var bodyReader io.Reader
	if req.Body != nil {
		payload, err := json.Marshal(req.Body)
		if err != nil {
			return nil, errors.Join(ErrInvalidRequest, err)
		}
		bodyReader = bytes.NewReader(payload)
	}

	target := c.baseURL.JoinPath(req.Path)
	if len(req.Query) > 0 {
		target.RawQuery = req.Query.Encode()
	}

	httpReq, err := http.NewRequestWithContext(ctx, req.Method, target.String(), bodyReader)
	if err != nil {
		return nil, errors.Join(ErrInvalidRequest, err)
	}

	httpReq.Header.Set("Accept", "application/json")
	httpReq.Header.Set("User-Agent", c.userAgent)
	httpReq.Header.Set("X-Request-ID", uuid.NewString())
	if req.Body != nil {
		httpReq.Header.Set("Content-Type", "application/json")
	}

	// Credential presence decides between authenticated and anonymous
	// dispatch. A store read failure downgrades to anonymous rather than
	// blocking the call.
	token, err := c.creds.Get(ctx)
	switch {
	case err == nil:
		httpReq.Header.Set("Authorization", "Bearer "+token)
	case !errors.Is(err, credentials.ErrNoCredential):
		c.log.WarnContext(ctx, "credential read failed, dispatching unauthenticated", slog.Any("error", err))
	}

	return httpReq, nil
}
