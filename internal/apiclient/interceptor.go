package apiclient

import (
	"context"
	"fmt"
	"net/http"

	"go.uber.org/zap"
)

// RefreshFunc exchanges the stored refresh token for a new access token.
// On failure it must already have cleared the session.
type RefreshFunc func(ctx context.Context) (string, error)

// Interceptor wraps a Client: on a 401 it refreshes the access token once
// and replays the request.
type Interceptor struct {
	client  *Client
	refresh RefreshFunc
	logger  *zap.Logger
}

var _ Doer = (*Interceptor)(nil)

// NewInterceptor wires client and refresh. A nil refresh disables replay.
func NewInterceptor(client *Client, refresh RefreshFunc, logger *zap.Logger) *Interceptor {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Interceptor{
		client:  client,
		refresh: refresh,
		logger:  logger,
	}
}

// Do sends r and, on its first 401, refreshes and replays it with the new
// token. A replayed request is never refreshed again.
func (i *Interceptor) Do(ctx context.Context, r *Request) (*Response, error) {
	resp, err := i.client.Do(ctx, r)
	if err == nil || r.retried || i.refresh == nil || !IsStatus(err, http.StatusUnauthorized) {
		return resp, err
	}

	// Mark before refreshing so a second 401 on this request can't loop.
	r.retried = true

	access, refreshErr := i.refresh(ctx)
	if refreshErr != nil {
		i.logger.Warn("token refresh failed",
			zap.String("method", r.Method),
			zap.String("path", r.Path),
			zap.Error(refreshErr),
		)
		return resp, fmt.Errorf("%w: %w", ErrSessionInvalid, refreshErr)
	}

	i.logger.Debug("replaying request after refresh",
		zap.String("method", r.Method),
		zap.String("path", r.Path),
	)
	r.Token = BearerToken(access)
	return i.client.Do(ctx, r)
}
