// Package apiclient talks to the remote task API: it attaches bearer
// credentials, replays requests once after a token refresh and normalizes
// error payloads.
package apiclient

import (
	"context"
	"net/http"

	"golang.org/x/oauth2"
)

// Request carries everything needed to issue (and re-issue) one API call.
// It is the per-request context: credentials and the retry flag live here,
// not in shared client state.
type Request struct {
	Method string
	Path   string

	// Body is JSON-encoded when non-nil.
	Body any

	// Out receives the decoded JSON body of a successful response.
	Out any

	// Token overrides the stored credentials for this request.
	Token *oauth2.Token

	// NoAuth sends the request without an Authorization header.
	NoAuth bool

	retried bool
}

// Retried reports whether the request was already replayed after a refresh.
func (r *Request) Retried() bool {
	return r.retried
}

// Response is a completed API response with its body fully read.
type Response struct {
	StatusCode int
	Header     http.Header
	Body       []byte
	RequestID  string
}

// Doer issues requests. Both Client and Interceptor implement it.
type Doer interface {
	Do(ctx context.Context, r *Request) (*Response, error)
}

// Get is a shorthand for a GET request decoding into out.
func Get(ctx context.Context, d Doer, path string, out any) error {
	_, err := d.Do(ctx, &Request{Method: http.MethodGet, Path: path, Out: out})
	return err
}

// Post is a shorthand for a POST request.
func Post(ctx context.Context, d Doer, path string, body, out any) error {
	_, err := d.Do(ctx, &Request{Method: http.MethodPost, Path: path, Body: body, Out: out})
	return err
}

// Put is a shorthand for a PUT request.
func Put(ctx context.Context, d Doer, path string, body, out any) error {
	_, err := d.Do(ctx, &Request{Method: http.MethodPut, Path: path, Body: body, Out: out})
	return err
}

// Delete is a shorthand for a DELETE request.
func Delete(ctx context.Context, d Doer, path string) error {
	_, err := d.Do(ctx, &Request{Method: http.MethodDelete, Path: path})
	return err
}
