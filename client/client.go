package client

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/url"
	"strings"
	"sync"
	"time"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/trace/noop"

	"github.com/adamwoolhether/apiclient/client/throttle"
)

// Client performs one HTTP exchange per call against a fixed base url.
// Responses outside the 2xx range are returned as errors of kind E.
type Client[E error] struct {
	c          *http.Client
	owned      *http.Transport
	baseURL    string
	token      string
	newErr     ErrorFactory[E]
	logger     *slog.Logger
	maxErrBody int64
	validate   bool

	closeOnce sync.Once
}

// Build creates a Client for baseURL. token is sent verbatim as the
// Authorization header of every request; an empty token sends none.
// newErr builds the error returned for every non-2xx response.
func Build[E error](baseURL, token string, newErr ErrorFactory[E], optFns ...Option) (*Client[E], error) {
	if newErr == nil {
		return nil, ErrNilErrorFactory
	}

	base, err := normalizeBaseURL(baseURL)
	if err != nil {
		return nil, err
	}

	var opts options
	for _, opt := range optFns {
		if err := opt(&opts); err != nil {
			return nil, fmt.Errorf("applying client option: %w", err)
		}
	}

	client := &Client[E]{
		baseURL:    base,
		token:      token,
		newErr:     newErr,
		logger:     slog.Default(),
		maxErrBody: opts.maxErrBody,
		validate:   opts.validate,
	}

	if opts.logger != nil {
		client.logger = opts.logger
	}

	hc := &http.Client{}
	if opts.client != nil {
		cpy := *opts.client
		hc = &cpy
	}

	if opts.timeout != nil {
		hc.Timeout = *opts.timeout
	}

	if opts.noFollowRedirects {
		hc.CheckRedirect = func(*http.Request, []*http.Request) error {
			return http.ErrUseLastResponse
		}
	}

	var transport http.RoundTripper
	switch {
	case opts.rt != nil:
		transport = opts.rt
	case opts.client != nil && opts.client.Transport != nil:
		transport = opts.client.Transport
	default:
		client.owned = newTransport()
		transport = client.owned
	}
	if opts.throttle != nil {
		rt, err := throttle.NewRoundTripper(*opts.throttle, func() *slog.Logger { return client.logger }, transport)
		if err != nil {
			return nil, fmt.Errorf("configuring throttle: %w", err)
		}
		transport = rt
	}
	if opts.registerer != nil {
		rt, err := instrument(opts.registerer, transport)
		if err != nil {
			return nil, fmt.Errorf("configuring metrics: %w", err)
		}
		transport = rt
	}
	if opts.userAgent != "" {
		transport = userAgent{value: opts.userAgent, base: transport}
	}
	if opts.requestIDHeader != "" {
		transport = requestID{header: opts.requestIDHeader, base: transport}
	}
	if opts.tracer != nil || opts.propagator != nil {
		t := tracing{
			tracer:     opts.tracer,
			propagator: opts.propagator,
			base:       transport,
		}
		if t.tracer == nil {
			t.tracer = noop.NewTracerProvider().Tracer("no-op tracer")
		}
		if t.propagator == nil {
			t.propagator = otel.GetTextMapPropagator()
		}
		transport = t
	}
	hc.Transport = transport

	client.c = hc

	return client, nil
}

// BaseURL returns the normalized base url, always ending in a single "/".
func (c *Client[E]) BaseURL() string {
	return c.baseURL
}

// SendRaw executes a single request against the base url joined with path.
// path is appended verbatim and should not start with "/".
// On a 2xx status the returned [Content] belongs to the caller, who must close it.
// Any other status is translated into an error of kind E.
func (c *Client[E]) SendRaw(ctx context.Context, method, path string, body Body) (*Content, error) {
	req, err := c.request(ctx, method, path, body)
	if err != nil {
		return nil, err
	}

	start := time.Now()

	resp, err := c.c.Do(req)
	if err != nil {
		return nil, fmt.Errorf("exec http do: %w", err)
	}

	c.logger.Debug("api exchange", "method", method, "path", path, "status", resp.StatusCode, "elapsed", time.Since(start))

	if !isSuccess(resp.StatusCode) {
		return nil, c.translate(resp, path)
	}

	return &Content{resp: resp}, nil
}

// Send executes the request and returns the response body as text.
func (c *Client[E]) Send(ctx context.Context, method, path string, body Body) (string, error) {
	content, err := c.SendRaw(ctx, method, path, body)
	if err != nil {
		return "", err
	}

	return content.Text()
}

// SendStream executes the request and returns the unread response body.
// The caller must close it.
func (c *Client[E]) SendStream(ctx context.Context, method, path string, body Body) (io.ReadCloser, error) {
	content, err := c.SendRaw(ctx, method, path, body)
	if err != nil {
		return nil, err
	}

	return content, nil
}

// Close releases the transport owned by the Client. It is safe to call
// more than once. Transports supplied through options are left untouched.
func (c *Client[E]) Close() error {
	c.closeOnce.Do(func() {
		if c.owned != nil {
			c.owned.CloseIdleConnections()
		}
	})

	return nil
}

func (c *Client[E]) request(ctx context.Context, method, path string, body Body) (*http.Request, error) {
	var (
		payload     io.Reader
		contentType string
	)
	if body != nil {
		var err error
		if payload, contentType, err = body.encode(); err != nil {
			return nil, fmt.Errorf("encoding request body: %w", err)
		}
	}

	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, payload)
	if err != nil {
		return nil, fmt.Errorf("instantiating request: %w", err)
	}

	// http.Client strips it from redirects that leave the origin's domain.
	if c.token != "" {
		req.Header.Set("Authorization", c.token)
	}
	if contentType != "" {
		req.Header.Set("Content-Type", contentType)
	}

	return req, nil
}

// translate consumes a failed response and builds the caller's error from it.
func (c *Client[E]) translate(resp *http.Response, path string) error {
	defer c.release(resp.Body)

	var r io.Reader = resp.Body
	if c.maxErrBody > 0 {
		r = io.LimitReader(r, c.maxErrBody)
	}

	b, err := io.ReadAll(r)
	if err != nil {
		c.logger.Error("failed to read error body", "path", path, "error", err)
		b = []byte(unreadableBody)
	}

	return c.newErr(failureMessage(path, resp.StatusCode, string(b)))
}

// release drains and closes a body the caller never sees.
func (c *Client[E]) release(body io.ReadCloser) {
	if _, err := io.Copy(io.Discard, body); err != nil {
		c.logger.Error("failed to discard unused body", "error", err)
	}
	if err := body.Close(); err != nil {
		c.logger.Error("failed to close response body", "error", err)
	}
}

// normalizeBaseURL guarantees exactly one trailing "/".
func normalizeBaseURL(raw string) (string, error) {
	trimmed := strings.TrimRight(strings.TrimSpace(raw), "/")
	if trimmed == "" {
		return "", fmt.Errorf("%w: must not be empty", ErrInvalidBaseURL)
	}

	u, err := url.Parse(trimmed)
	if err != nil {
		return "", fmt.Errorf("%w: %w", ErrInvalidBaseURL, err)
	}
	if u.Scheme == "" || u.Host == "" {
		return "", fmt.Errorf("%w: %q is not absolute", ErrInvalidBaseURL, raw)
	}

	return trimmed + "/", nil
}

func newTransport() *http.Transport {
	if dt, ok := http.DefaultTransport.(*http.Transport); ok {
		return dt.Clone()
	}

	return &http.Transport{Proxy: http.ProxyFromEnvironment}
}
