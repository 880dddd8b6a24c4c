// Package rpc provides the transport behind the service facade: a
// method-per-operation invoker that posts JSON messages to the backend with a
// fixed per-call timeout, decodes backend status errors, and records metrics
// and traces for every call.
package rpc

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net"
	"net/http"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/rs/dnscache"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
	"github.com/tidwall/gjson"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	otelcodes "go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"
)

// Prometheus metrics for RPC calls.
var (
	rpcRequestsTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "couchers_rpc_requests_total",
		Help: "Total RPC calls by method and status code",
	}, []string{"method", "code"})

	rpcRequestDuration = promauto.NewHistogramVec(prometheus.HistogramOpts{
		Name:    "couchers_rpc_request_duration_seconds",
		Help:    "RPC call duration in seconds by method",
		Buckets: []float64{0.05, 0.1, 0.25, 0.5, 1, 2.5, 5, 10},
	}, []string{"method"})

	rpcErrorsTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "couchers_rpc_errors_total",
		Help: "Total RPC errors by class",
	}, []string{"class"})
)

const (
	// DefaultTimeout is the wall-clock limit applied to every call.
	DefaultTimeout = 10 * time.Second

	// RequestIDHeader carries a per-call id for correlating backend logs.
	RequestIDHeader = "X-Request-Id"

	maxResponseBytes = 8 << 20
	maxErrorTextLen  = 512
)

// Invoker is the boundary the service facade depends on.
type Invoker interface {
	Invoke(ctx context.Context, method string, req, resp any) error
}

// Config holds the transport configuration.
type Config struct {
	// BaseURL of the backend API, e.g. "https://api.couchers.org".
	BaseURL string

	// UserAgent sent with every call.
	UserAgent string

	// SessionToken is sent as a bearer token when set.
	SessionToken string

	// Timeout is the fixed per-call wall-clock timeout.
	Timeout time.Duration

	// Resolver enables DNS caching for backend connections when set.
	Resolver *dnscache.Resolver
}

// DefaultConfig returns a configuration with the default timeout.
func DefaultConfig(baseURL, userAgent string) Config {
	return Config{
		BaseURL:   baseURL,
		UserAgent: userAgent,
		Timeout:   DefaultTimeout,
		Resolver:  &dnscache.Resolver{},
	}
}

// Client invokes backend methods over HTTP.
type Client struct {
	httpClient *http.Client
	config     Config
	logger     zerolog.Logger
	tracer     trace.Tracer

	mu    sync.RWMutex
	token string
}

// New creates a transport client.
func New(cfg Config) (*Client, error) {
	if strings.TrimSpace(cfg.BaseURL) == "" {
		return nil, ErrNoBaseURL
	}
	if cfg.Timeout < 0 {
		return nil, fmt.Errorf("timeout must be >= 0 (got %s)", cfg.Timeout)
	}
	if cfg.Timeout == 0 {
		cfg.Timeout = DefaultTimeout
	}

	return &Client{
		httpClient: &http.Client{Transport: NewTransport(cfg.Resolver)},
		config:     cfg,
		logger:     log.With().Str("component", "rpc").Logger(),
		tracer:     otel.Tracer("github.com/thevivek0408/couchsurfing-sub002/pkg/rpc"),
		token:      cfg.SessionToken,
	}, nil
}

// NewTransport returns a pooled *http.Transport, dialing through resolver
// when one is given.
func NewTransport(resolver *dnscache.Resolver) *http.Transport {
	t := &http.Transport{
		Proxy:               http.ProxyFromEnvironment,
		MaxIdleConnsPerHost: 16,
		IdleConnTimeout:     90 * time.Second,
		ForceAttemptHTTP2:   true,
		TLSHandshakeTimeout: 5 * time.Second,
	}
	if resolver != nil {
		var d net.Dialer
		t.DialContext = func(ctx context.Context, network, addr string) (net.Conn, error) {
			return dialResolved(ctx, network, addr, resolver.LookupHost, d.DialContext)
		}
	}
	return t
}

// dialResolved looks addr's host up and dials the returned addresses in
// order until one connects.
func dialResolved(
	ctx context.Context,
	network, addr string,
	lookup func(ctx context.Context, host string) ([]string, error),
	dial func(ctx context.Context, network, addr string) (net.Conn, error),
) (net.Conn, error) {
	host, port, err := net.SplitHostPort(addr)
	if err != nil {
		return nil, err
	}
	ips, err := lookup(ctx, host)
	if err != nil {
		return nil, err
	}
	if len(ips) == 0 {
		return nil, &net.DNSError{Err: "no addresses found", Name: host, IsNotFound: true}
	}

	var errs []error
	for _, ip := range ips {
		conn, err := dial(ctx, network, net.JoinHostPort(ip, port))
		if err == nil {
			return conn, nil
		}
		errs = append(errs, err)
		if ctx.Err() != nil {
			break
		}
	}
	return nil, errors.Join(errs...)
}

// SetSessionToken replaces the bearer token used for subsequent calls.
func (c *Client) SetSessionToken(token string) {
	c.mu.Lock()
	c.token = token
	c.mu.Unlock()
}

// SetHTTPClient sets a custom HTTP client (for testing).
func (c *Client) SetHTTPClient(client *http.Client) {
	c.httpClient = client
}

// Invoke calls method with req and decodes the reply into resp. resp may be
// nil for methods returning an empty message. Failures are returned as *Error.
func (c *Client) Invoke(ctx context.Context, method string, req, resp any) error {
	if method == "" {
		return ErrEmptyMethod
	}

	start := time.Now()
	defer func() {
		rpcRequestDuration.WithLabelValues(method).Observe(time.Since(start).Seconds())
	}()

	ctx, span := c.tracer.Start(ctx, method,
		trace.WithSpanKind(trace.SpanKindClient),
		trace.WithAttributes(attribute.String("rpc.method", method)),
	)
	defer span.End()

	ctx, cancel := context.WithTimeout(ctx, c.config.Timeout)
	defer cancel()

	err := c.do(ctx, method, req, resp)
	code := CodeOf(err)
	rpcRequestsTotal.WithLabelValues(method, code.String()).Inc()
	span.SetAttributes(attribute.String("rpc.code", code.String()))

	if err != nil {
		var rpcErr *Error
		if errors.As(err, &rpcErr) {
			rpcErrorsTotal.WithLabelValues(string(rpcErr.Class())).Inc()
		}
		span.RecordError(err)
		span.SetStatus(otelcodes.Error, Message(err))
		c.logger.Warn().
			Err(err).
			Str("method", method).
			Str("code", code.String()).
			Dur("duration", time.Since(start)).
			Msg("RPC failed")
		return err
	}

	c.logger.Debug().
		Str("method", method).
		Dur("duration", time.Since(start)).
		Msg("RPC completed")
	return nil
}

func (c *Client) do(ctx context.Context, method string, req, resp any) error {
	body, err := encodeMessage(req)
	if err != nil {
		return &Error{Method: method, Code: CodeInvalidArgument, Message: "encode request", Err: err}
	}

	httpReq, err := http.NewRequestWithContext(ctx, http.MethodPost, c.endpoint(method), bytes.NewReader(body))
	if err != nil {
		return &Error{Method: method, Code: CodeInvalidArgument, Message: "create request", Err: err}
	}
	httpReq.Header.Set("Content-Type", "application/json")
	httpReq.Header.Set("Accept", "application/json")
	httpReq.Header.Set(RequestIDHeader, uuid.NewString())
	if c.config.UserAgent != "" {
		httpReq.Header.Set("User-Agent", c.config.UserAgent)
	}
	c.mu.RLock()
	token := c.token
	c.mu.RUnlock()
	if token != "" {
		httpReq.Header.Set("Authorization", "Bearer "+token)
	}

	httpResp, err := c.httpClient.Do(httpReq)
	if err != nil {
		return networkError(ctx, method, err)
	}
	defer httpResp.Body.Close()

	data, err := io.ReadAll(io.LimitReader(httpResp.Body, maxResponseBytes))
	if err != nil {
		return networkError(ctx, method, err)
	}

	if httpResp.StatusCode < 200 || httpResp.StatusCode > 299 {
		return decodeError(method, httpResp.StatusCode, data)
	}

	if resp == nil || len(bytes.TrimSpace(data)) == 0 {
		return nil
	}
	if err := json.Unmarshal(data, resp); err != nil {
		return &Error{Method: method, Code: CodeInternal, Message: "decode response", Err: err}
	}
	return nil
}

func (c *Client) endpoint(method string) string {
	return strings.TrimRight(c.config.BaseURL, "/") + "/" + strings.TrimLeft(method, "/")
}

func encodeMessage(msg any) ([]byte, error) {
	if msg == nil {
		return []byte("{}"), nil
	}
	return json.Marshal(msg)
}

// networkError maps a failed round trip to a status error. The messages match
// the ones produced by the browser transport so FriendlyMessage applies.
func networkError(ctx context.Context, method string, err error) error {
	switch {
	case errors.Is(ctx.Err(), context.DeadlineExceeded):
		return &Error{Method: method, Code: CodeDeadlineExceeded, Message: "Deadline exceeded", Err: err}
	case errors.Is(ctx.Err(), context.Canceled):
		return &Error{Method: method, Code: CodeCanceled, Message: "Request cancelled", Err: err}
	default:
		return &Error{Method: method, Code: CodeUnavailable, Message: "Http response at 400 or 500 level", Err: err}
	}
}

// decodeError builds an *Error from a non-2xx reply. JSON bodies may carry
// "code" (name or number) and "message"; plain-text bodies (proxies) become
// the message.
func decodeError(method string, status int, body []byte) error {
	e := &Error{
		Method:  method,
		Code:    codeFromHTTPStatus(status),
		Message: fmt.Sprintf("Http response at 400 or 500 level, http status code: %d", status),
	}

	trimmed := bytes.TrimSpace(body)
	switch {
	case len(trimmed) == 0:
	case gjson.ValidBytes(trimmed):
		parsed := gjson.ParseBytes(trimmed)
		if code := parsed.Get("code"); code.Exists() {
			if code.Type == gjson.Number {
				e.Code = Code(code.Int())
			} else {
				e.Code = ParseCode(code.String())
			}
		}
		if msg := parsed.Get("message"); msg.Exists() && msg.String() != "" {
			e.Message = msg.String()
		}
	default:
		text := string(trimmed)
		if len(text) > maxErrorTextLen {
			text = text[:maxErrorTextLen]
		}
		e.Message = text
	}
	return e
}
