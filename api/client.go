package api

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	"math"
	"net/http"
	"net/url"
	"runtime/debug"
	"strings"
	"syscall"
	"time"

	"github.com/cockroachdb/errors"
	"github.com/keydesk/keydesk/logger"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"
)

var (
	Version = "dev"
	Commit  = "unknown"
)

// DefaultBaseURL is the local development endpoint used when no base URL is configured.
const DefaultBaseURL = "http://localhost:8000/api/v1"

// DefaultTimeout bounds a single request, including reading the body.
const DefaultTimeout = 30 * time.Second

var tracer = otel.Tracer("github.com/keydesk/keydesk/api")

// TokenSource supplies the bearer token for the current session. An empty
// token sends the request unauthenticated.
type TokenSource interface {
	Token() string
}

// StaticToken is a TokenSource that always returns the same token.
type StaticToken string

func (t StaticToken) Token() string { return string(t) }

type Client struct {
	baseURL string
	tokens  TokenSource
	client  *http.Client
	logger  logger.Logger
	retries int
}

// Option configures a Client.
type Option func(*Client)

// WithHTTPClient replaces the underlying http.Client.
func WithHTTPClient(hc *http.Client) Option {
	return func(c *Client) { c.client = hc }
}

// WithTimeout sets the per request timeout.
func WithTimeout(d time.Duration) Option {
	return func(c *Client) {
		hc := *c.client
		hc.Timeout = d
		c.client = &hc
	}
}

// WithRetries enables up to n extra attempts on connection resets and
// 408/429/502/503/504 responses. Disabled by default: callers decide on retries.
func WithRetries(n int) Option {
	return func(c *Client) { c.retries = max(0, n) }
}

func New(log logger.Logger, baseURL string, tokens TokenSource, opts ...Option) *Client {
	if baseURL == "" {
		baseURL = DefaultBaseURL
	}
	if tokens == nil {
		tokens = StaticToken("")
	}
	c := &Client{
		baseURL: strings.TrimRight(baseURL, "/"),
		tokens:  tokens,
		client:  &http.Client{Timeout: DefaultTimeout},
		logger:  log.WithPrefix("[api]"),
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// BaseURL returns the configured API root.
func (c *Client) BaseURL() string {
	return c.baseURL
}

// errorBody is the JSON shape the backend uses for rejections.
type errorBody struct {
	Message string          `json:"message"`
	Error   json.RawMessage `json:"error"`
}

func (b errorBody) text() string {
	if b.Message != "" {
		return b.Message
	}
	if len(b.Error) == 0 {
		return ""
	}
	var s string
	if err := json.Unmarshal(b.Error, &s); err == nil {
		return s
	}
	var nested struct {
		Message string `json:"message"`
	}
	if err := json.Unmarshal(b.Error, &nested); err == nil {
		return nested.Message
	}
	return ""
}

func UserAgent() string {
	gitSHA := Commit
	if info, ok := debug.ReadBuildInfo(); ok {
		for _, setting := range info.Settings {
			if setting.Key == "vcs.revision" {
				gitSHA = setting.Value
			}
		}
	}
	return "keydesk/" + Version + " (" + gitSHA + ")"
}

func shouldRetry(resp *http.Response, err error) bool {
	if err != nil {
		if errors.Is(err, syscall.ECONNRESET) || errors.Is(err, syscall.ECONNREFUSED) {
			return true
		} else if strings.Contains(err.Error(), "EOF") {
			return true
		}
	}
	if resp != nil {
		switch resp.StatusCode {
		case http.StatusRequestTimeout, http.StatusBadGateway, http.StatusServiceUnavailable, http.StatusGatewayTimeout, http.StatusTooManyRequests:
			return true
		}
	}
	return false
}

func (c *Client) resolve(p string, query url.Values) (*url.URL, error) {
	u, err := url.Parse(c.baseURL)
	if err != nil {
		return nil, errors.Wrap(err, "error parsing base url")
	}
	if i := strings.Index(p, "?"); i != -1 {
		extra, err := url.ParseQuery(p[i+1:])
		if err != nil {
			return nil, errors.Wrap(err, "error parsing path query")
		}
		p = p[:i]
		if query == nil {
			query = url.Values{}
		}
		for k, v := range extra {
			query[k] = append(query[k], v...)
		}
	}
	if p != "" {
		u = u.JoinPath(p)
	}
	if len(query) > 0 {
		u.RawQuery = query.Encode()
	}
	return u, nil
}

// Do sends a JSON request and decodes a JSON response into response when it is
// non-nil and the body is not empty. Failures are returned as *Error.
func (c *Client) Do(ctx context.Context, method, p string, query url.Values, payload any, response any) (rerr error) {
	u, err := c.resolve(p, query)
	if err != nil {
		return NewError(c.baseURL+p, method, 0, "", "", err)
	}
	target := u.String()

	ctx, span := tracer.Start(ctx, method+" "+u.Path, trace.WithSpanKind(trace.SpanKindClient),
		trace.WithAttributes(attribute.String("http.request.method", method), attribute.String("url.path", u.Path)))
	defer func() {
		if rerr != nil {
			span.RecordError(rerr)
			span.SetStatus(codes.Error, rerr.Error())
		}
		span.End()
	}()

	var body []byte
	if payload != nil {
		if body, err = json.Marshal(payload); err != nil {
			return NewError(target, method, 0, "", "", errors.Wrap(err, "error marshalling payload"))
		}
	}
	c.logger.Trace("sending request: %s %s", method, target)

	var resp *http.Response
	for attempt := 0; ; attempt++ {
		req, err := http.NewRequestWithContext(ctx, method, target, bytes.NewReader(body))
		if err != nil {
			return NewError(target, method, 0, "", "", errors.Wrap(err, "error creating request"))
		}
		req.Header.Set("User-Agent", UserAgent())
		req.Header.Set("Accept", "application/json")
		if payload != nil {
			req.Header.Set("Content-Type", "application/json")
		}
		if token := c.tokens.Token(); token != "" {
			req.Header.Set("Authorization", "Bearer "+token)
		}
		resp, err = c.client.Do(req)
		if attempt < c.retries && shouldRetry(resp, err) {
			c.logger.Trace("client returned retryable error, retrying...")
			if resp != nil {
				io.Copy(io.Discard, resp.Body)
				resp.Body.Close()
			}
			backoff := time.Duration(150*math.Pow(2, float64(attempt))) * time.Millisecond
			select {
			case <-ctx.Done():
				return ctx.Err()
			case <-time.After(backoff):
			}
			continue
		}
		if err != nil {
			if errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded) {
				return err
			}
			return NewError(target, method, 0, "", "", errors.Mark(errors.Wrap(err, "error sending request"), ErrTransport))
		}
		break
	}
	defer resp.Body.Close()
	span.SetAttributes(attribute.Int("http.response.status_code", resp.StatusCode))
	c.logger.Debug("response status: %s", resp.Status)

	respBody, err := io.ReadAll(resp.Body)
	if err != nil {
		return NewError(target, method, resp.StatusCode, "", "", errors.Mark(errors.Wrap(err, "error reading response body"), ErrTransport))
	}
	contentType := resp.Header.Get("Content-Type")
	c.logger.Debug("response body: %s, content-type: %s", safeBodyPreview(respBody, contentType, 200), contentType)

	if resp.StatusCode > 299 {
		var eb errorBody
		if strings.Contains(contentType, "application/json") {
			_ = json.Unmarshal(respBody, &eb)
		}
		msg := eb.text()
		cause := errors.Newf("request failed with status (%s)", resp.Status)
		if msg != "" {
			cause = errors.New(msg)
		}
		return NewError(target, method, resp.StatusCode, msg, string(respBody), cause)
	}

	if response != nil && len(bytes.TrimSpace(respBody)) > 0 {
		if err := json.Unmarshal(respBody, response); err != nil {
			return NewError(target, method, resp.StatusCode, "", string(respBody), errors.Wrap(err, "error JSON decoding response"))
		}
	}
	return nil
}

func (c *Client) Get(ctx context.Context, p string, query url.Values, response any) error {
	return c.Do(ctx, http.MethodGet, p, query, nil, response)
}

func (c *Client) Post(ctx context.Context, p string, payload any, response any) error {
	return c.Do(ctx, http.MethodPost, p, nil, payload, response)
}

func (c *Client) Put(ctx context.Context, p string, payload any, response any) error {
	return c.Do(ctx, http.MethodPut, p, nil, payload, response)
}

func (c *Client) Patch(ctx context.Context, p string, payload any, response any) error {
	return c.Do(ctx, http.MethodPatch, p, nil, payload, response)
}

func (c *Client) Delete(ctx context.Context, p string) error {
	return c.Do(ctx, http.MethodDelete, p, nil, nil, nil)
}
