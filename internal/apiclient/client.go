package apiclient

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

	"github.com/google/uuid"
	"go.uber.org/zap"
	"golang.org/x/oauth2"

	"taskcollab/internal/tokenstore"
)

const (
	// DefaultTimeout bounds a single HTTP round trip.
	DefaultTimeout = 10 * time.Second

	// maxBodyBytes caps how much of a response body is read.
	maxBodyBytes = 4 << 20
)

// ErrNoToken is returned by a token source when no session is stored.
var ErrNoToken = errors.New("no access token")

// Client sends requests to the API base URL. It never refreshes tokens or
// retries; wrap it in an Interceptor for that.
type Client struct {
	baseURL string
	http    *http.Client
	tokens  oauth2.TokenSource
	logger  *zap.Logger
}

var _ Doer = (*Client)(nil)

// Option configures a Client.
type Option func(*Client)

// WithHTTPClient replaces the underlying http.Client.
func WithHTTPClient(hc *http.Client) Option {
	return func(c *Client) {
		if hc != nil {
			c.http = hc
		}
	}
}

// WithTokenSource sets where the access token is read from at dispatch time.
func WithTokenSource(ts oauth2.TokenSource) Option {
	return func(c *Client) { c.tokens = ts }
}

// WithLogger sets the request logger.
func WithLogger(logger *zap.Logger) Option {
	return func(c *Client) {
		if logger != nil {
			c.logger = logger
		}
	}
}

// New creates a Client for baseURL.
func New(baseURL string, opts ...Option) *Client {
	c := &Client{
		baseURL: strings.TrimRight(baseURL, "/"),
		http:    &http.Client{Timeout: DefaultTimeout},
		logger:  zap.NewNop(),
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// BaseURL returns the API base URL without a trailing slash.
func (c *Client) BaseURL() string {
	return c.baseURL
}

// Do sends r. Responses with status >= 400 return the response together
// with a normalized *Error.
func (c *Client) Do(ctx context.Context, r *Request) (*Response, error) {
	var body io.Reader
	if r.Body != nil {
		payload, err := json.Marshal(r.Body)
		if err != nil {
			return nil, fmt.Errorf("encode %s %s body: %w", r.Method, r.Path, err)
		}
		body = bytes.NewReader(payload)
	}

	req, err := http.NewRequestWithContext(ctx, r.Method, c.url(r.Path), body)
	if err != nil {
		return nil, fmt.Errorf("build %s %s: %w", r.Method, r.Path, err)
	}

	requestID := uuid.NewString()
	req.Header.Set("Accept", "application/json")
	req.Header.Set("X-Request-ID", requestID)
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if err := c.authorize(req, r); err != nil {
		return nil, err
	}

	start := time.Now()
	resp, err := c.http.Do(req)
	if err != nil {
		c.logger.Debug("api request failed",
			zap.String("method", r.Method),
			zap.String("path", r.Path),
			zap.String("request_id", requestID),
			zap.Error(err),
		)
		return nil, &NetworkError{Method: r.Method, Path: r.Path, Err: err}
	}
	defer resp.Body.Close()

	data, err := io.ReadAll(io.LimitReader(resp.Body, maxBodyBytes))
	if err != nil {
		return nil, &NetworkError{Method: r.Method, Path: r.Path, Err: err}
	}

	c.logger.Debug("api request",
		zap.String("method", r.Method),
		zap.String("path", r.Path),
		zap.Int("status", resp.StatusCode),
		zap.Duration("duration", time.Since(start)),
		zap.Bool("retried", r.retried),
		zap.String("request_id", requestID),
	)

	out := &Response{
		StatusCode: resp.StatusCode,
		Header:     resp.Header,
		Body:       data,
		RequestID:  requestID,
	}

	if resp.StatusCode >= http.StatusBadRequest {
		return out, Normalize(resp.StatusCode, data)
	}

	if r.Out != nil && len(bytes.TrimSpace(data)) > 0 {
		if err := json.Unmarshal(data, r.Out); err != nil {
			return out, fmt.Errorf("decode %s %s response: %w", r.Method, r.Path, err)
		}
	}
	return out, nil
}

// authorize attaches the bearer token: the request override first, then
// whatever the token source holds right now.
func (c *Client) authorize(req *http.Request, r *Request) error {
	if r.NoAuth {
		return nil
	}
	tok := r.Token
	if tok == nil && c.tokens != nil {
		t, err := c.tokens.Token()
		if err != nil && !errors.Is(err, ErrNoToken) {
			return fmt.Errorf("read access token: %w", err)
		}
		tok = t
	}
	if tok != nil && tok.AccessToken != "" {
		tok.SetAuthHeader(req)
	}
	return nil
}

func (c *Client) url(path string) string {
	if !strings.HasPrefix(path, "/") {
		path = "/" + path
	}
	return c.baseURL + path
}

// StoreTokenSource reads the access token from store on every call.
func StoreTokenSource(store tokenstore.Store) oauth2.TokenSource {
	return storeTokenSource{store: store}
}

type storeTokenSource struct {
	store tokenstore.Store
}

func (s storeTokenSource) Token() (*oauth2.Token, error) {
	sess, ok, err := s.store.Load()
	if err != nil {
		return nil, err
	}
	if !ok {
		return nil, ErrNoToken
	}
	return BearerToken(sess.Access), nil
}

// BearerToken wraps an access token string.
func BearerToken(access string) *oauth2.Token {
	return &oauth2.Token{AccessToken: access, TokenType: "Bearer"}
}
