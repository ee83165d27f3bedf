package overpass

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/url"
	"strings"
	"time"

	"osmblocks/internal/geom"
)

const (
	DefaultEndpoint  = "https://overpass-api.de/api/interpreter"
	DefaultUserAgent = "osmblocks/0.1"
	DefaultTimeout   = 60 * time.Second

	// response bodies are truncated past this size
	maxBodyBytes = 64 << 20
)

// Options configures a Client. Zero values fall back to the defaults.
type Options struct {
	Endpoint     string
	Timeout      time.Duration
	QueryTimeout int // seconds, sent as [timeout:N]
	UserAgent    string
	HTTPClient   *http.Client
	Logger       *slog.Logger
}

// Client issues building queries against one Overpass endpoint.
type Client struct {
	endpoint     string
	queryTimeout int
	userAgent    string
	http         *http.Client
	log          *slog.Logger
}

func NewClient(opts Options) *Client {
	c := &Client{
		endpoint:     opts.Endpoint,
		queryTimeout: opts.QueryTimeout,
		userAgent:    opts.UserAgent,
		http:         opts.HTTPClient,
		log:          opts.Logger,
	}
	if c.endpoint == "" {
		c.endpoint = DefaultEndpoint
	}
	if c.queryTimeout <= 0 {
		c.queryTimeout = DefaultQueryTimeout
	}
	if c.userAgent == "" {
		c.userAgent = DefaultUserAgent
	}
	if c.http == nil {
		timeout := opts.Timeout
		if timeout <= 0 {
			timeout = DefaultTimeout
		}
		c.http = &http.Client{Timeout: timeout}
	}
	if c.log == nil {
		c.log = slog.Default()
	}
	return c
}

// Endpoint returns the interpreter URL requests go to.
func (c *Client) Endpoint() string { return c.endpoint }

// Fetch validates box, issues exactly one query and decodes the answer.
// Invalid boxes fail with *geom.InvalidBoundsError before any request; every
// other failure is a *FetchError. There is no retry.
func (c *Client) Fetch(ctx context.Context, box geom.BoundingBox) (*geom.QueryResult, error) {
	if err := box.Validate(); err != nil {
		return nil, err
	}

	query := BuildQuery(box, c.queryTimeout)
	form := url.Values{"data": {query}}
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.endpoint, strings.NewReader(form.Encode()))
	if err != nil {
		return nil, &FetchError{Op: "request", Err: err}
	}
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
	req.Header.Set("Accept", "application/json")
	req.Header.Set("User-Agent", c.userAgent)

	start := time.Now()
	c.log.Debug("overpass query", "endpoint", c.endpoint, "box", box)
	resp, err := c.http.Do(req)
	if err != nil {
		return nil, &FetchError{Op: "request", Err: err}
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(io.LimitReader(resp.Body, maxBodyBytes))
	if err != nil {
		return nil, &FetchError{Op: "read", StatusCode: resp.StatusCode, Err: err}
	}
	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return nil, &FetchError{Op: "status", StatusCode: resp.StatusCode, Err: fmt.Errorf("%s: %s", http.StatusText(resp.StatusCode), snippet(body))}
	}

	decoded, err := DecodeResponse(bytes.NewReader(body))
	if err != nil {
		return nil, &FetchError{Op: "decode", StatusCode: resp.StatusCode, Err: err}
	}
	// Overpass reports query timeouts and memory exhaustion as a 200 with a remark.
	if strings.Contains(decoded.Remark, "runtime error") {
		return nil, &FetchError{Op: "remark", StatusCode: resp.StatusCode, Err: errors.New(decoded.Remark)}
	}
	bounds, err := decoded.ResolveBounds()
	switch {
	case errors.Is(err, ErrNoBounds) && len(decoded.Elements) == 0:
		// a present but empty elements array has nothing to measure; the query box is the extent
		bounds = box
	case err != nil:
		return nil, &FetchError{Op: "bounds", StatusCode: resp.StatusCode, Err: err}
	}

	features := decoded.Features()
	c.log.Info("overpass response",
		"elements", len(features),
		"bytes", len(body),
		"elapsed", time.Since(start).Round(time.Millisecond))
	return &geom.QueryResult{Box: box, Bounds: bounds, Features: features}, nil
}

func snippet(b []byte) string {
	s := strings.TrimSpace(string(b))
	if len(s) > 200 {
		s = s[:200] + "..."
	}
	return s
}
