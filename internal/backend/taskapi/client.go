// Package taskapi implements service.Service against the remote REST API.
package taskapi

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"time"

	"go.uber.org/zap"

	"taskcollab/internal/apiclient"
	"taskcollab/internal/config"
	"taskcollab/internal/service"
	"taskcollab/internal/session"
	"taskcollab/internal/task"
	"taskcollab/internal/tokenstore"
)

const (
	// APITimeout is the default timeout for one API call, refresh and
	// replay included.
	APITimeout = 10 * time.Second

	tasksPath = "/tasks/"
)

// Client implements service.Service.
type Client struct {
	api     apiclient.Doer
	session *session.Manager
	store   tokenstore.Store
	timeout time.Duration
	logger  *zap.Logger
}

var _ service.Service = (*Client)(nil)

// Options tunes a Client built with NewWithStore.
type Options struct {
	HTTPClient *http.Client
	Timeout    time.Duration
	Logger     *zap.Logger

	// OnLogout runs whenever the session is cleared.
	OnLogout func()
}

// New opens the session database from cfg and builds a Client for cfg.APIURL.
// Close releases the database.
func New(cfg *config.Config, logger *zap.Logger) (*Client, error) {
	if logger == nil {
		logger = zap.NewNop()
	}
	if err := cfg.EnsureDir(); err != nil {
		return nil, fmt.Errorf("create config dir: %w", err)
	}
	logger.Debug("opening session store",
		zap.String("path", cfg.SessionPath()),
		zap.Bool("exists", cfg.HasSession()),
	)

	store, err := tokenstore.OpenBolt(cfg.SessionPath())
	if err != nil {
		return nil, fmt.Errorf("open session store: %w", err)
	}
	c, err := NewWithStore(cfg.APIURL, store, Options{
		Timeout: cfg.Timeout,
		Logger:  logger,
	})
	if err != nil {
		store.Close()
		return nil, err
	}
	return c, nil
}

// NewWithStore builds a Client over an existing token store.
func NewWithStore(baseURL string, store tokenstore.Store, opts Options) (*Client, error) {
	logger := opts.Logger
	if logger == nil {
		logger = zap.NewNop()
	}
	timeout := opts.Timeout
	if timeout <= 0 {
		timeout = APITimeout
	}

	plain := apiclient.New(baseURL,
		apiclient.WithHTTPClient(opts.HTTPClient),
		apiclient.WithTokenSource(apiclient.StoreTokenSource(store)),
		apiclient.WithLogger(logger.Named("http")),
	)

	onLogout := func() {
		logger.Debug("session cleared")
		if opts.OnLogout != nil {
			opts.OnLogout()
		}
	}
	mgr, err := session.New(plain, store,
		session.WithLogger(logger.Named("session")),
		session.OnLogout(onLogout),
	)
	if err != nil {
		return nil, err
	}

	return &Client{
		api:     apiclient.NewInterceptor(plain, mgr.Refresh, logger.Named("interceptor")),
		session: mgr,
		store:   store,
		timeout: timeout,
		logger:  logger,
	}, nil
}

// Close releases the token store if it holds resources.
func (c *Client) Close() error {
	if closer, ok := c.store.(interface{ Close() error }); ok {
		return closer.Close()
	}
	return nil
}

// Login implements service.Service.
func (c *Client) Login(ctx context.Context, credential, password string) (service.User, error) {
	ctx, cancel := context.WithTimeout(ctx, c.timeout)
	defer cancel()

	u, err := c.session.Login(ctx, credential, password)
	if err != nil {
		return service.User{}, wrapError(err)
	}
	return service.User(u), nil
}

// Register implements service.Service.
func (c *Client) Register(ctx context.Context, email, password, name string) error {
	ctx, cancel := context.WithTimeout(ctx, c.timeout)
	defer cancel()
	return wrapError(c.session.Register(ctx, email, password, name))
}

// Logout implements service.Service.
func (c *Client) Logout(ctx context.Context) error {
	return wrapError(c.session.Logout())
}

// CurrentUser implements service.Service.
func (c *Client) CurrentUser(ctx context.Context) (service.User, error) {
	u, err := c.session.CurrentUser()
	if err != nil {
		return service.User{}, wrapError(err)
	}
	return service.User(u), nil
}

// ListTasks implements service.Service.
func (c *Client) ListTasks(ctx context.Context) ([]task.Task, error) {
	if err := c.requireSession(); err != nil {
		return nil, err
	}
	ctx, cancel := context.WithTimeout(ctx, c.timeout)
	defer cancel()

	var tasks []task.Task
	if err := apiclient.Get(ctx, c.api, tasksPath, &tasks); err != nil {
		return nil, wrapError(err)
	}
	return tasks, nil
}

// GetTask implements service.Service.
func (c *Client) GetTask(ctx context.Context, id int64) (task.Task, error) {
	if err := c.requireSession(); err != nil {
		return task.Task{}, err
	}
	ctx, cancel := context.WithTimeout(ctx, c.timeout)
	defer cancel()

	var t task.Task
	if err := apiclient.Get(ctx, c.api, taskPath(id), &t); err != nil {
		return task.Task{}, wrapError(err)
	}
	return t, nil
}

// CreateTask implements service.Service.
func (c *Client) CreateTask(ctx context.Context, p task.Payload) (task.Task, error) {
	if err := p.Validate(); err != nil {
		return task.Task{}, err
	}
	if err := c.requireSession(); err != nil {
		return task.Task{}, err
	}
	p = c.withOwner(p)

	ctx, cancel := context.WithTimeout(ctx, c.timeout)
	defer cancel()

	var created task.Task
	if err := apiclient.Post(ctx, c.api, tasksPath, p, &created); err != nil {
		return task.Task{}, wrapError(err)
	}
	c.logger.Debug("task created", zap.Int64("id", created.ID))
	return created, nil
}

// UpdateTask implements service.Service. The API takes full payloads; the
// task is fetched again afterwards so display fields are current.
func (c *Client) UpdateTask(ctx context.Context, id int64, p task.Payload) (task.Task, error) {
	if err := p.Validate(); err != nil {
		return task.Task{}, err
	}
	if err := c.requireSession(); err != nil {
		return task.Task{}, err
	}
	p = c.withOwner(p)

	ctx, cancel := context.WithTimeout(ctx, c.timeout)
	defer cancel()

	if err := apiclient.Put(ctx, c.api, taskPath(id), p, nil); err != nil {
		return task.Task{}, wrapError(err)
	}

	var updated task.Task
	if err := apiclient.Get(ctx, c.api, taskPath(id), &updated); err != nil {
		return task.Task{}, wrapError(err)
	}
	return updated, nil
}

// DeleteTask implements service.Service.
func (c *Client) DeleteTask(ctx context.Context, id int64) error {
	if err := c.requireSession(); err != nil {
		return err
	}
	ctx, cancel := context.WithTimeout(ctx, c.timeout)
	defer cancel()

	return wrapError(apiclient.Delete(ctx, c.api, taskPath(id)))
}

func (c *Client) requireSession() error {
	if c.session.State() == session.Anonymous {
		return service.ErrNotLoggedIn
	}
	return nil
}

// withOwner fills the usuario field from the session when it is empty.
func (c *Client) withOwner(p task.Payload) task.Payload {
	if p.User != "" {
		return p
	}
	if u, err := c.session.CurrentUser(); err == nil {
		p.User = task.NormalizeUsername(u.Username)
	}
	return p
}

func taskPath(id int64) string {
	return fmt.Sprintf("%s%d/", tasksPath, id)
}

// wrapError maps client and session errors to the service error set.
func wrapError(err error) error {
	if err == nil {
		return nil
	}

	if errors.Is(err, context.DeadlineExceeded) {
		return fmt.Errorf("%w: request timed out", service.ErrUnavailable)
	}
	if errors.Is(err, session.ErrNotLoggedIn) {
		return service.ErrNotLoggedIn
	}
	if errors.Is(err, apiclient.ErrSessionInvalid) || errors.Is(err, session.ErrNoRefreshToken) {
		return service.ErrSessionExpired
	}

	var authErr *session.AuthError
	if errors.As(err, &authErr) {
		return &service.AuthError{Message: authErr.Message}
	}

	var netErr *apiclient.NetworkError
	if errors.As(err, &netErr) {
		return fmt.Errorf("%w: %v", service.ErrUnavailable, netErr.Err)
	}

	var apiErr *apiclient.Error
	if errors.As(err, &apiErr) {
		switch apiErr.StatusCode {
		case http.StatusNotFound:
			return service.ErrNotFound
		case http.StatusUnauthorized:
			return service.ErrSessionExpired
		}
		remote := &service.RemoteError{Status: apiErr.StatusCode, Title: apiErr.Title}
		for _, fe := range apiErr.Errors {
			remote.Fields = append(remote.Fields, service.FieldError{Field: fe.Field, Message: fe.Message})
		}
		return remote
	}

	return err
}
