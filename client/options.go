package client

import (
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"go.opentelemetry.io/otel/propagation"
	"go.opentelemetry.io/otel/trace"

	"github.com/adamwoolhether/apiclient/client/throttle"
)

// Option is a functional option for configuring a [Client] via [Build].
type Option func(*options) error
type options struct {
	client            *http.Client
	rt                http.RoundTripper
	timeout           *time.Duration
	userAgent         string
	throttle          *throttle.Config
	noFollowRedirects bool
	logger            *slog.Logger
	maxErrBody        int64
	requestIDHeader   string
	tracer            trace.Tracer
	propagator        propagation.TextMapPropagator
	registerer        prometheus.Registerer
	validate          bool
}

// WithClient replaces the default [http.Client] used by the [Client].
// The provided client is copied, and its transport is not released by [Client.Close].
func WithClient(hc *http.Client) Option {
	return func(c *options) error {
		if hc == nil {
			return errors.New("client must not be nil")
		}
		c.client = hc
		return nil
	}
}

// WithTransport sets a custom [http.RoundTripper] as the base transport.
// A caller-supplied transport is not released by [Client.Close].
func WithTransport(rt http.RoundTripper) Option {
	return func(c *options) error {
		if rt == nil {
			return errors.New("transport must not be nil")
		}
		c.rt = rt
		return nil
	}
}

// WithTimeout sets the overall request timeout on the underlying [http.Client].
// Without it no timeout is imposed beyond the caller's context.
func WithTimeout(d time.Duration) Option {
	return func(c *options) error {
		if d < 0 {
			return errors.New("timeout must not be negative")
		}
		c.timeout = &d
		return nil
	}
}

// WithUserAgent adds a persistent User-Agent header to all outgoing requests.
func WithUserAgent(header string) Option {
	return func(c *options) error {
		c.userAgent = header
		return nil
	}
}

// WithThrottle enables token-bucket rate limiting with the given requests per second and burst capacity.
func WithThrottle(rps, burst int) Option {
	return func(c *options) error {
		cfg := throttle.Config{RPS: rps, Burst: burst}
		if err := cfg.Validate(); err != nil {
			return err
		}
		c.throttle = &cfg
		return nil
	}
}

// WithNoFollowRedirects prevents the [Client] from following HTTP redirects.
// Redirect responses are then translated like any other non-2xx status.
func WithNoFollowRedirects() Option {
	return func(c *options) error {
		c.noFollowRedirects = true
		return nil
	}
}

// WithLogger injects a custom [slog.Logger] into the [Client].
func WithLogger(logger *slog.Logger) Option {
	return func(c *options) error {
		if logger == nil {
			return errors.New("logger must not be nil")
		}
		c.logger = logger
		return nil
	}
}

// WithMaxErrorBody caps how many bytes of a failed response are read into
// the failure message. By default the whole body is read.
func WithMaxErrorBody(n int64) Option {
	return func(c *options) error {
		if n <= 0 {
			return fmt.Errorf("max error body[%d] must be greater than zero", n)
		}
		c.maxErrBody = n
		return nil
	}
}

// WithRequestID stamps every request lacking the header with a random UUID.
// An empty header name uses [DefaultRequestIDHeader].
func WithRequestID(header string) Option {
	return func(c *options) error {
		if header == "" {
			header = DefaultRequestIDHeader
		}
		c.requestIDHeader = http.CanonicalHeaderKey(header)
		return nil
	}
}

// WithTracer records a client span for every exchange and injects
// trace context into the outgoing headers.
func WithTracer(tracer trace.Tracer) Option {
	return func(c *options) error {
		if tracer == nil {
			return errors.New("tracer must not be nil")
		}
		c.tracer = tracer
		return nil
	}
}

// WithPropagator overrides the propagator used to inject trace context.
// The global propagator from [go.opentelemetry.io/otel] is used otherwise.
func WithPropagator(p propagation.TextMapPropagator) Option {
	return func(c *options) error {
		if p == nil {
			return errors.New("propagator must not be nil")
		}
		c.propagator = p
		return nil
	}
}

// WithMetrics registers request counters and latency histograms with reg.
// Collectors already registered by another client are reused.
func WithMetrics(reg prometheus.Registerer) Option {
	return func(c *options) error {
		if reg == nil {
			return errors.New("registerer must not be nil")
		}
		c.registerer = reg
		return nil
	}
}

// WithValidation checks struct payloads of typed helpers against their
// `validate` tags before anything is sent.
func WithValidation() Option {
	return func(c *options) error {
		c.validate = true
		return nil
	}
}
