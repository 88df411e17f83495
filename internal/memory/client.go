package memory

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"
	"unicode"

	"github.com/google/uuid"
	"github.com/sirupsen/logrus"

	"github.com/five82/mnemo/internal/logging"
	"github.com/five82/mnemo/internal/metrics"
)

// BaseURLSource supplies the backend base URL. It is consulted on every
// request, so a change takes effect on the next call.
type BaseURLSource interface {
	BaseURL() string
}

// StaticURL is a BaseURLSource with a fixed value.
type StaticURL string

// BaseURL implements BaseURLSource.
func (s StaticURL) BaseURL() string { return string(s) }

// Client talks to the memory backend HTTP API. It holds no retry state.
type Client struct {
	source    BaseURLSource
	http      *http.Client
	userAgent string
	recorder  metrics.Recorder
	log       *logrus.Entry
}

const (
	defaultUserAgent = "mnemo/0.1"
	requestTimeout   = 2 * time.Minute
	probeTimeout     = 3 * time.Second
	maxErrorBody     = 64 << 10
)

// Option customizes a Client.
type Option func(*Client)

// WithHTTPClient replaces the underlying HTTP client.
func WithHTTPClient(h *http.Client) Option {
	return func(c *Client) {
		if h != nil {
			c.http = h
		}
	}
}

// WithRecorder reports request outcomes to r.
func WithRecorder(r metrics.Recorder) Option {
	return func(c *Client) {
		if r != nil {
			c.recorder = r
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

// NewClient builds a Client reading its base URL from source.
func NewClient(source BaseURLSource, opts ...Option) *Client {
	c := &Client{
		source:    source,
		http:      &http.Client{},
		userAgent: defaultUserAgent,
		recorder:  metrics.NoopRecorder{},
		log:       logging.NewLogger("api"),
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// BaseURL returns the base URL the next request will use.
func (c *Client) BaseURL() string {
	return strings.TrimRight(strings.TrimSpace(c.source.BaseURL()), "/")
}

// ResolveURL turns a backend-relative path (as found in file_url and
// preview_url fields) into an absolute URL. Absolute URLs pass through.
func (c *Client) ResolveURL(ref string) string {
	if ref == "" || strings.Contains(ref, "://") {
		return ref
	}
	if !strings.HasPrefix(ref, "/") {
		ref = "/" + ref
	}
	return c.BaseURL() + ref
}

// JSONRequest issues method on path with body encoded as JSON (nil sends no
// body) and decodes a 2xx response into T.
func JSONRequest[T any](ctx context.Context, c *Client, method, path string, body any) Outcome[T] {
	var (
		reader      io.Reader
		contentType string
	)
	if body != nil {
		encoded, err := json.Marshal(body)
		if err != nil {
			return Failure[T](malformed("encode request", err))
		}
		reader = bytes.NewReader(encoded)
		contentType = "application/json"
	}

	ctx, cancel := context.WithTimeout(ctx, requestTimeout)
	defer cancel()

	start := time.Now()
	data, reqErr := c.send(ctx, method, path, contentType, reader, -1)
	out := decode[T](data, reqErr)
	c.observe(method, path, out.Err(), time.Since(start))
	return out
}

// Health probes GET /health. Any transport error or non-2xx status is an error.
func (c *Client) Health(ctx context.Context) error {
	ctx, cancel := context.WithTimeout(ctx, probeTimeout)
	defer cancel()

	start := time.Now()
	_, reqErr := c.send(ctx, http.MethodGet, "/health", "", nil, -1)
	c.observe(http.MethodGet, "/health", reqErr, time.Since(start))
	if reqErr != nil {
		return reqErr
	}
	return nil
}

// Warmup hints the backend to load its models. The response body is ignored.
func (c *Client) Warmup(ctx context.Context) error {
	start := time.Now()
	_, reqErr := c.send(ctx, http.MethodGet, "/warmup-ai", "", nil, -1)
	c.observe(http.MethodGet, "/warmup-ai", reqErr, time.Since(start))
	if reqErr != nil {
		return reqErr
	}
	return nil
}

// send performs one request and returns the 2xx body. contentLength < 0
// leaves the length to the transport.
func (c *Client) send(ctx context.Context, method, path, contentType string, body io.Reader, contentLength int64) ([]byte, *RequestError) {
	reqURL := c.BaseURL() + path
	req, err := http.NewRequestWithContext(ctx, method, reqURL, body)
	if err != nil {
		// A malformed base URL never reaches the network.
		return nil, unreachable(fmt.Errorf("create request: %w", err))
	}
	if contentLength >= 0 {
		req.ContentLength = contentLength
	}
	requestID := uuid.NewString()
	req.Header.Set("Accept", "application/json")
	req.Header.Set("User-Agent", c.userAgent)
	req.Header.Set("X-Request-ID", requestID)
	if contentType != "" {
		req.Header.Set("Content-Type", contentType)
	}

	log := c.log.WithFields(logrus.Fields{"request_id": requestID, "method": method, "path": path})

	resp, err := c.http.Do(req)
	if err != nil {
		if errors.Is(err, errPayloadShort) {
			log.WithError(err).Debug("upload body shorter than declared")
			return nil, malformed("encode upload", err)
		}
		log.WithError(err).Debug("request got no response")
		return nil, unreachable(fmt.Errorf("execute request: %w", err))
	}
	defer func() { _ = resp.Body.Close() }()

	log = log.WithField("status", resp.StatusCode)
	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		text, readErr := io.ReadAll(io.LimitReader(resp.Body, maxErrorBody))
		message := ""
		if readErr == nil {
			message = errorMessage(text)
		}
		log.WithField("message", message).Debug("request rejected")
		return nil, rejected(resp.StatusCode, message)
	}

	data, err := io.ReadAll(resp.Body)
	if err != nil {
		log.WithError(err).Debug("response body cut off")
		return nil, unreachable(fmt.Errorf("read response: %w", err))
	}
	log.Debug("request succeeded")
	return data, nil
}

func decode[T any](data []byte, reqErr *RequestError) Outcome[T] {
	if reqErr != nil {
		return Failure[T](reqErr)
	}
	var payload T
	// 204 and empty acknowledgements carry no body to decode.
	if len(bytes.TrimSpace(data)) == 0 {
		return Success(payload)
	}
	if err := json.Unmarshal(data, &payload); err != nil {
		return Failure[T](malformed("decode response", err))
	}
	return Success(payload)
}

// errorMessage extracts the message from an error body. FastAPI style
// {"detail": "..."} bodies yield the detail; anything else is the trimmed text.
func errorMessage(body []byte) string {
	trimmed := bytes.TrimSpace(body)
	if len(trimmed) == 0 {
		return ""
	}
	if trimmed[0] == '{' {
		var payload struct {
			Detail any `json:"detail"`
		}
		if err := json.Unmarshal(trimmed, &payload); err == nil {
			if detail, ok := payload.Detail.(string); ok && detail != "" {
				return detail
			}
		}
	}
	return string(trimmed)
}

func (c *Client) observe(method, path string, reqErr *RequestError, d time.Duration) {
	outcome := metrics.OutcomeSuccess
	if reqErr != nil {
		outcome = reqErr.Kind.String()
	}
	c.recorder.ObserveRequest(method+" "+routeLabel(path), outcome, d)
}

// routeLabel strips the query string and replaces identifier segments with
// {id} to keep metric cardinality bounded.
func routeLabel(path string) string {
	if i := strings.IndexByte(path, '?'); i >= 0 {
		path = path[:i]
	}
	segments := strings.Split(path, "/")
	for i, seg := range segments {
		if seg != "" && looksLikeID(seg) {
			segments[i] = "{id}"
		}
	}
	return strings.Join(segments, "/")
}

func looksLikeID(seg string) bool {
	if len(seg) >= 24 {
		return true
	}
	for _, r := range seg {
		if !unicode.IsDigit(r) {
			return false
		}
	}
	return true
}
