// Package apiclient is the single HTTP client every console component uses
// to reach the remote POS REST API. It attaches the bearer token of the
// current session, normalizes list envelopes and turns non-2xx responses
// into *APIError values carrying the server's message.
package apiclient

import (
	"bytes"
	"context"
	"crypto/tls"
	"encoding/json"
	"fmt"
	"io"
	"mime/multipart"
	"net/http"
	"net/textproto"
	"net/url"
	"strings"
	"sync"
	"time"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"
	"go.uber.org/zap"
)

// TokenSource supplies the bearer token for an outgoing request. An empty
// token means no Authorization header is sent.
type TokenSource interface {
	Token(ctx context.Context) string
}

// TokenFunc adapts a function to TokenSource
type TokenFunc func(ctx context.Context) string

// Token implements TokenSource
func (f TokenFunc) Token(ctx context.Context) string { return f(ctx) }

// Config configures the client
type Config struct {
	BaseURL       string
	APIVersion    string
	Timeout       time.Duration
	TLSSkipVerify bool
	UserAgent     string
	Headers       map[string]string
}

// Option customizes a Client
type Option func(*Client)

// WithHTTPClient replaces the underlying http.Client (tests use the
// httptest server's client)
func WithHTTPClient(hc *http.Client) Option {
	return func(c *Client) { c.httpClient = hc }
}

// WithLogger sets the logger
func WithLogger(l *zap.Logger) Option {
	return func(c *Client) { c.logger = l.Named("apiclient") }
}

// WithMetrics records every call in m
func WithMetrics(m *Metrics) Option {
	return func(c *Client) { c.metrics = m }
}

// WithTokenSource sets the token source at construction
func WithTokenSource(ts TokenSource) Option {
	return func(c *Client) { c.tokens = ts }
}

// Client talks to the remote API. It never retries: every failure is
// returned to the caller, who decides whether the user retries.
type Client struct {
	httpClient *http.Client
	baseURL    *url.URL
	apiVersion string
	headers    map[string]string
	tokens     TokenSource
	logger     *zap.Logger
	metrics    *Metrics
	tracer     trace.Tracer
	mu         sync.RWMutex
}

// New creates a client for cfg
func New(cfg Config, opts ...Option) (*Client, error) {
	if cfg.BaseURL == "" {
		return nil, fmt.Errorf("base URL is required")
	}
	base, err := url.Parse(cfg.BaseURL)
	if err != nil {
		return nil, fmt.Errorf("invalid base URL: %w", err)
	}
	if cfg.Timeout <= 0 {
		cfg.Timeout = 30 * time.Second
	}

	c := &Client{
		httpClient: &http.Client{
			Transport: &http.Transport{
				TLSClientConfig:     &tls.Config{InsecureSkipVerify: cfg.TLSSkipVerify}, //nolint:gosec // opt-in for self-signed staging APIs
				MaxIdleConns:        20,
				MaxIdleConnsPerHost: 10,
				IdleConnTimeout:     90 * time.Second,
			},
			Timeout: cfg.Timeout,
		},
		baseURL:    base,
		apiVersion: strings.Trim(cfg.APIVersion, "/"),
		headers: map[string]string{
			"Accept": "application/json",
		},
		logger: zap.NewNop(),
		tracer: otel.Tracer("github.com/erp/console/apiclient"),
	}
	if cfg.UserAgent != "" {
		c.headers["User-Agent"] = cfg.UserAgent
	}
	for k, v := range cfg.Headers {
		c.headers[k] = v
	}
	for _, opt := range opts {
		opt(c)
	}
	return c, nil
}

// SetTokenSource wires the bearer token source after construction; the
// sessions themselves need the client to log in.
func (c *Client) SetTokenSource(ts TokenSource) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.tokens = ts
}

// BaseURL returns the configured API base URL
func (c *Client) BaseURL() string {
	return c.baseURL.String()
}

// Request describes one API call. Body is JSON-encoded unless it is a
// *Multipart, which is sent as multipart/form-data.
type Request struct {
	Method string
	Path   string
	Query  url.Values
	Body   any
}

// Response is a completed API call with a 2xx status
type Response struct {
	StatusCode int
	Headers    http.Header
	Body       []byte
	Duration   time.Duration
}

// Decode unmarshals the raw response body into v
func (r *Response) Decode(v any) error {
	if len(r.Body) == 0 {
		return nil
	}
	if err := json.Unmarshal(r.Body, v); err != nil {
		return fmt.Errorf("decoding response: %w", err)
	}
	return nil
}

// Do executes req. Transport failures are returned as is; non-2xx responses
// are returned as *APIError.
func (c *Client) Do(ctx context.Context, req Request) (*Response, error) {
	u, err := c.buildURL(req.Path, req.Query)
	if err != nil {
		return nil, fmt.Errorf("building URL: %w", err)
	}

	body, contentType, err := encodeBody(req.Body)
	if err != nil {
		return nil, err
	}

	ctx, span := c.tracer.Start(ctx, req.Method+" "+req.Path,
		trace.WithSpanKind(trace.SpanKindClient),
		trace.WithAttributes(
			attribute.String("http.method", req.Method),
			attribute.String("http.url", u.String()),
		),
	)
	defer span.End()

	httpReq, err := http.NewRequestWithContext(ctx, req.Method, u.String(), body)
	if err != nil {
		return nil, fmt.Errorf("creating HTTP request: %w", err)
	}
	c.setHeaders(httpReq, contentType)

	start := time.Now()
	httpResp, err := c.httpClient.Do(httpReq)
	duration := time.Since(start)
	if err != nil {
		c.observe(req, 0, duration)
		span.RecordError(err)
		span.SetStatus(codes.Error, "transport error")
		c.logger.Warn("api call failed",
			zap.String("method", req.Method),
			zap.String("path", req.Path),
			zap.Error(err),
		)
		return nil, fmt.Errorf("%s %s: %w", req.Method, req.Path, err)
	}
	defer httpResp.Body.Close()

	raw, err := io.ReadAll(httpResp.Body)
	if err != nil {
		return nil, fmt.Errorf("reading response body: %w", err)
	}

	c.observe(req, httpResp.StatusCode, duration)
	span.SetAttributes(attribute.Int("http.status_code", httpResp.StatusCode))
	c.logger.Debug("api call",
		zap.String("method", req.Method),
		zap.String("path", req.Path),
		zap.Int("status", httpResp.StatusCode),
		zap.Duration("duration", duration),
	)

	if httpResp.StatusCode < 200 || httpResp.StatusCode >= 300 {
		apiErr := parseAPIError(httpResp.StatusCode, raw)
		span.SetStatus(codes.Error, apiErr.Error())
		return nil, apiErr
	}

	return &Response{
		StatusCode: httpResp.StatusCode,
		Headers:    httpResp.Header,
		Body:       raw,
		Duration:   duration,
	}, nil
}

// Get performs a GET request
func (c *Client) Get(ctx context.Context, path string, query url.Values) (*Response, error) {
	return c.Do(ctx, Request{Method: http.MethodGet, Path: path, Query: query})
}

// Post performs a POST request
func (c *Client) Post(ctx context.Context, path string, body any) (*Response, error) {
	return c.Do(ctx, Request{Method: http.MethodPost, Path: path, Body: body})
}

// Put performs a PUT request
func (c *Client) Put(ctx context.Context, path string, body any) (*Response, error) {
	return c.Do(ctx, Request{Method: http.MethodPut, Path: path, Body: body})
}

// Delete performs a DELETE request
func (c *Client) Delete(ctx context.Context, path string) (*Response, error) {
	return c.Do(ctx, Request{Method: http.MethodDelete, Path: path})
}

func (c *Client) buildURL(path string, query url.Values) (*url.URL, error) {
	if !strings.HasPrefix(path, "/") {
		path = "/" + path
	}
	if c.apiVersion != "" && !strings.HasPrefix(path, "/"+c.apiVersion+"/") {
		path = "/" + c.apiVersion + path
	}

	u := *c.baseURL
	u.Path = strings.TrimSuffix(u.Path, "/") + path
	if len(query) > 0 {
		u.RawQuery = query.Encode()
	}
	return &u, nil
}

func (c *Client) setHeaders(req *http.Request, contentType string) {
	c.mu.RLock()
	defer c.mu.RUnlock()

	for k, v := range c.headers {
		req.Header.Set(k, v)
	}
	if contentType != "" {
		req.Header.Set("Content-Type", contentType)
	}
	if c.tokens != nil {
		if token := c.tokens.Token(req.Context()); token != "" {
			req.Header.Set("Authorization", "Bearer "+token)
		}
	}
	if id := requestIDFromContext(req.Context()); id != "" {
		req.Header.Set("X-Request-ID", id)
	}
}

func (c *Client) observe(req Request, status int, d time.Duration) {
	if c.metrics != nil {
		c.metrics.Observe(req.Method, req.Path, status, d)
	}
}

// File is one file part of a multipart body
type File struct {
	Field       string
	Name        string
	ContentType string
	Data        []byte
}

// Multipart is a multipart/form-data body: plain fields plus files
type Multipart struct {
	Fields map[string]string
	Files  []File
}

func encodeBody(body any) (io.Reader, string, error) {
	switch b := body.(type) {
	case nil:
		return nil, "", nil
	case *Multipart:
		return b.encode()
	default:
		data, err := json.Marshal(b)
		if err != nil {
			return nil, "", fmt.Errorf("marshaling request body: %w", err)
		}
		return bytes.NewReader(data), "application/json", nil
	}
}

func (m *Multipart) encode() (io.Reader, string, error) {
	var buf bytes.Buffer
	w := multipart.NewWriter(&buf)

	for k, v := range m.Fields {
		if err := w.WriteField(k, v); err != nil {
			return nil, "", fmt.Errorf("writing field %s: %w", k, err)
		}
	}
	for _, f := range m.Files {
		h := make(textproto.MIMEHeader)
		h.Set("Content-Disposition", fmt.Sprintf(`form-data; name=%q; filename=%q`, f.Field, f.Name))
		ct := f.ContentType
		if ct == "" {
			ct = "application/octet-stream"
		}
		h.Set("Content-Type", ct)
		part, err := w.CreatePart(h)
		if err != nil {
			return nil, "", fmt.Errorf("creating part %s: %w", f.Field, err)
		}
		if _, err := part.Write(f.Data); err != nil {
			return nil, "", fmt.Errorf("writing part %s: %w", f.Field, err)
		}
	}
	if err := w.Close(); err != nil {
		return nil, "", err
	}
	return &buf, w.FormDataContentType(), nil
}

type requestIDKey struct{}

// WithRequestID propagates the BFF request ID to the remote API
func WithRequestID(ctx context.Context, id string) context.Context {
	return context.WithValue(ctx, requestIDKey{}, id)
}

func requestIDFromContext(ctx context.Context) string {
	id, _ := ctx.Value(requestIDKey{}).(string)
	return id
}
