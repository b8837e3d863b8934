// Package session owns the login state: it logs in, registers, refreshes
// the access token and logs out, keeping the token store in sync.
package session

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"sync"

	"go.uber.org/zap"
	"golang.org/x/sync/singleflight"

	"taskcollab/internal/apiclient"
	"taskcollab/internal/task"
	"taskcollab/internal/tokenstore"
)

const (
	loginPath    = "/accounts/login/"
	refreshPath  = "/accounts/login/refresh/"
	registerPath = "/accounts/register/"

	invalidCredentials = "invalid credentials"
)

// State is the authentication state of a Manager.
type State int

const (
	Anonymous State = iota
	Authenticated
	Refreshing
)

func (s State) String() string {
	switch s {
	case Authenticated:
		return "authenticated"
	case Refreshing:
		return "refreshing"
	default:
		return "anonymous"
	}
}

// Manager coordinates the token store with the accounts endpoints.
// Its Refresh method is what the request interceptor calls on a 401.
type Manager struct {
	client   *apiclient.Client
	store    tokenstore.Store
	logger   *zap.Logger
	onLogout func()

	flight singleflight.Group

	mu    sync.RWMutex
	state State
	user  tokenstore.User
}

// Option configures a Manager.
type Option func(*Manager)

// WithLogger sets the logger.
func WithLogger(logger *zap.Logger) Option {
	return func(m *Manager) {
		if logger != nil {
			m.logger = logger
		}
	}
}

// OnLogout registers a hook run after every logout, including the forced
// logout after a failed refresh.
func OnLogout(fn func()) Option {
	return func(m *Manager) { m.onLogout = fn }
}

// New creates a Manager. The client must be the plain client, not the
// interceptor, so account calls never trigger a refresh.
func New(client *apiclient.Client, store tokenstore.Store, opts ...Option) (*Manager, error) {
	m := &Manager{
		client: client,
		store:  store,
		logger: zap.NewNop(),
	}
	for _, opt := range opts {
		opt(m)
	}

	sess, ok, err := store.Load()
	if err != nil {
		return nil, fmt.Errorf("restore session: %w", err)
	}
	if ok {
		m.state = Authenticated
		m.user = sess.User
	}
	return m, nil
}

// State returns the current authentication state.
func (m *Manager) State() State {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.state
}

// CurrentUser returns the logged-in user.
func (m *Manager) CurrentUser() (tokenstore.User, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	if m.state == Anonymous {
		return tokenstore.User{}, ErrNotLoggedIn
	}
	return m.user, nil
}

type loginRequest struct {
	Credential string `json:"credential"`
	Password   string `json:"password"`
}

type loginResponse struct {
	Access  string     `json:"access"`
	Refresh string     `json:"refresh"`
	User    serverUser `json:"user"`
}

// Login authenticates with an email or a username. Usernames have their
// whitespace runs replaced by underscores before being sent.
func (m *Manager) Login(ctx context.Context, credential, password string) (tokenstore.User, error) {
	if !task.IsEmail(credential) {
		credential = task.NormalizeUsername(credential)
	}

	var resp loginResponse
	_, err := m.client.Do(ctx, &apiclient.Request{
		Method: http.MethodPost,
		Path:   loginPath,
		Body:   loginRequest{Credential: credential, Password: password},
		Out:    &resp,
		NoAuth: true,
	})
	if err != nil {
		return tokenstore.User{}, loginError(err)
	}
	if resp.Access == "" || resp.Refresh == "" {
		return tokenstore.User{}, &AuthError{
			Message: invalidCredentials,
			Err:     errors.New("login response without tokens"),
		}
	}

	user := snapshotUser(resp.Access, resp.User)
	if err := m.store.Save(tokenstore.Tokens{Access: resp.Access, Refresh: resp.Refresh}, user); err != nil {
		return tokenstore.User{}, fmt.Errorf("save session: %w", err)
	}

	m.mu.Lock()
	m.state = Authenticated
	m.user = user
	m.mu.Unlock()

	m.logger.Debug("logged in", zap.String("username", user.Username))
	return user, nil
}

// loginError turns an API rejection into an AuthError showing the first
// field message. Transport errors are returned as they are.
func loginError(err error) error {
	var apiErr *apiclient.Error
	if !errors.As(err, &apiErr) {
		return fmt.Errorf("login: %w", err)
	}
	msg := apiErr.First().Message
	if msg == "" {
		msg = invalidCredentials
	}
	return &AuthError{Message: msg, Err: err}
}

type registerRequest struct {
	Email    string `json:"email"`
	Username string `json:"username"`
	Password string `json:"password"`
}

// Register creates an account. It does not log in.
func (m *Manager) Register(ctx context.Context, email, password, name string) error {
	_, err := m.client.Do(ctx, &apiclient.Request{
		Method: http.MethodPost,
		Path:   registerPath,
		Body: registerRequest{
			Email:    email,
			Username: task.NormalizeUsername(name),
			Password: password,
		},
		NoAuth: true,
	})
	return err
}

// Refresh exchanges the stored refresh token for a new access token and
// stores it. Concurrent callers share one exchange. Any failure, including
// failing to store the new token, logs the user out before returning.
func (m *Manager) Refresh(ctx context.Context) (string, error) {
	v, err, shared := m.flight.Do("refresh", func() (any, error) {
		// One caller's cancellation must not fail the others sharing the call.
		return m.refresh(context.WithoutCancel(ctx))
	})
	if shared {
		m.logger.Debug("joined in-flight refresh")
	}
	if err != nil {
		return "", err
	}
	return v.(string), nil
}

type refreshRequest struct {
	Refresh string `json:"refresh"`
}

type refreshResponse struct {
	Access  string `json:"access"`
	Refresh string `json:"refresh"`
}

func (m *Manager) refresh(ctx context.Context) (string, error) {
	sess, ok, err := m.store.Load()
	if err != nil {
		return "", fmt.Errorf("load session: %w", err)
	}
	if !ok || sess.Refresh == "" {
		m.forceLogout(ErrNoRefreshToken)
		return "", ErrNoRefreshToken
	}

	m.setState(Refreshing)

	var resp refreshResponse
	_, err = m.client.Do(ctx, &apiclient.Request{
		Method: http.MethodPost,
		Path:   refreshPath,
		Body:   refreshRequest{Refresh: sess.Refresh},
		Out:    &resp,
		NoAuth: true,
	})
	if err == nil && resp.Access == "" {
		err = errors.New("refresh response without access token")
	}
	if err != nil {
		m.forceLogout(err)
		return "", &AuthError{Message: "session expired, please log in again", Err: err}
	}

	// Servers that rotate refresh tokens send the new one along.
	if resp.Refresh != "" {
		err = m.store.Save(tokenstore.Tokens{Access: resp.Access, Refresh: resp.Refresh}, sess.User)
	} else {
		err = m.store.SetAccessToken(resp.Access)
	}
	if err != nil {
		m.forceLogout(err)
		return "", fmt.Errorf("store refreshed token: %w", err)
	}

	m.setState(Authenticated)
	m.logger.Debug("access token refreshed")
	return resp.Access, nil
}

// Logout clears the stored session and runs the logout hook.
func (m *Manager) Logout() error {
	err := m.store.Clear()

	m.mu.Lock()
	m.state = Anonymous
	m.user = tokenstore.User{}
	hook := m.onLogout
	m.mu.Unlock()

	if hook != nil {
		hook()
	}
	if err != nil {
		return fmt.Errorf("clear session: %w", err)
	}
	return nil
}

func (m *Manager) forceLogout(cause error) {
	m.logger.Info("session ended", zap.Error(cause))
	if err := m.Logout(); err != nil {
		m.logger.Warn("logout failed", zap.Error(err))
	}
}

func (m *Manager) setState(s State) {
	m.mu.Lock()
	m.state = s
	m.mu.Unlock()
}
