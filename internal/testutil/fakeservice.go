// Package testutil provides testing utilities.
package testutil

import (
	"context"
	"sync"
	"time"

	"taskcollab/internal/service"
	"taskcollab/internal/task"
)

// FakeService is an in-memory implementation of service.Service for testing.
type FakeService struct {
	mu       sync.RWMutex
	user     *service.User
	accounts map[string]fakeAccount // username or email -> account
	tasks    []task.Task
	nextID   int64

	// Registered records the accounts created through Register.
	Registered []service.User

	// Error injection for testing
	LoginErr       error
	RegisterErr    error
	LogoutErr      error
	ListTasksErr   error
	GetTaskErr     error
	CreateTaskErr  error
	UpdateTaskErr  error
	DeleteTaskErr  error
	CurrentUserErr error
}

type fakeAccount struct {
	user     service.User
	password string
}

// NewFakeService creates an empty, logged-out FakeService.
func NewFakeService() *FakeService {
	return &FakeService{
		accounts: make(map[string]fakeAccount),
		nextID:   1,
	}
}

// AddAccount makes credentials valid for Login. username is the wire form.
func (f *FakeService) AddAccount(username, email, password string) {
	f.mu.Lock()
	defer f.mu.Unlock()
	acct := fakeAccount{
		user:     service.User{Username: task.DisplayUsername(username), Email: email},
		password: password,
	}
	f.accounts[username] = acct
	f.accounts[email] = acct
}

// SetUser logs a user in without credentials.
func (f *FakeService) SetUser(username, email string) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.user = &service.User{Username: username, Email: email}
}

// LoggedIn reports whether a user is logged in.
func (f *FakeService) LoggedIn() bool {
	f.mu.RLock()
	defer f.mu.RUnlock()
	return f.user != nil
}

// AddTask stores t with the next ID and filled display labels.
func (f *FakeService) AddTask(t task.Task) task.Task {
	f.mu.Lock()
	defer f.mu.Unlock()
	t.ID = f.nextID
	f.nextID++
	t.StatusDisplay = t.CurrentStatus().Label()
	t.PriorityDisplay = t.CurrentPriority().Label()
	f.tasks = append(f.tasks, t)
	return t
}

// Tasks returns a copy of the stored tasks.
func (f *FakeService) Tasks() []task.Task {
	f.mu.RLock()
	defer f.mu.RUnlock()
	out := make([]task.Task, len(f.tasks))
	copy(out, f.tasks)
	return out
}

// Login implements service.Service. Usernames are normalized like the real
// backend before lookup.
func (f *FakeService) Login(ctx context.Context, credential, password string) (service.User, error) {
	if f.LoginErr != nil {
		return service.User{}, f.LoginErr
	}
	if !task.IsEmail(credential) {
		credential = task.NormalizeUsername(credential)
	}
	f.mu.Lock()
	defer f.mu.Unlock()
	acct, ok := f.accounts[credential]
	if !ok || acct.password != password {
		return service.User{}, &service.AuthError{Message: "invalid credentials"}
	}
	u := acct.user
	f.user = &u
	return u, nil
}

// Register implements service.Service.
func (f *FakeService) Register(ctx context.Context, email, password, name string) error {
	if f.RegisterErr != nil {
		return f.RegisterErr
	}
	f.mu.Lock()
	defer f.mu.Unlock()
	username := task.NormalizeUsername(name)
	acct := fakeAccount{
		user:     service.User{Username: task.DisplayUsername(username), Email: email},
		password: password,
	}
	f.accounts[username] = acct
	f.accounts[email] = acct
	f.Registered = append(f.Registered, service.User{Username: username, Email: email})
	return nil
}

// Logout implements service.Service.
func (f *FakeService) Logout(ctx context.Context) error {
	f.mu.Lock()
	f.user = nil
	f.mu.Unlock()
	return f.LogoutErr
}

// CurrentUser implements service.Service.
func (f *FakeService) CurrentUser(ctx context.Context) (service.User, error) {
	if f.CurrentUserErr != nil {
		return service.User{}, f.CurrentUserErr
	}
	f.mu.RLock()
	defer f.mu.RUnlock()
	if f.user == nil {
		return service.User{}, service.ErrNotLoggedIn
	}
	return *f.user, nil
}

// ListTasks implements service.Service.
func (f *FakeService) ListTasks(ctx context.Context) ([]task.Task, error) {
	if err := f.check(f.ListTasksErr); err != nil {
		return nil, err
	}
	return f.Tasks(), nil
}

// GetTask implements service.Service.
func (f *FakeService) GetTask(ctx context.Context, id int64) (task.Task, error) {
	if err := f.check(f.GetTaskErr); err != nil {
		return task.Task{}, err
	}
	f.mu.RLock()
	defer f.mu.RUnlock()
	for _, t := range f.tasks {
		if t.ID == id {
			return t, nil
		}
	}
	return task.Task{}, service.ErrNotFound
}

// CreateTask implements service.Service.
func (f *FakeService) CreateTask(ctx context.Context, p task.Payload) (task.Task, error) {
	if err := p.Validate(); err != nil {
		return task.Task{}, err
	}
	if err := f.check(f.CreateTaskErr); err != nil {
		return task.Task{}, err
	}
	t := applyPayload(task.Task{CreatedAt: task.At(time.Now().UTC())}, p)
	return f.AddTask(t), nil
}

// UpdateTask implements service.Service.
func (f *FakeService) UpdateTask(ctx context.Context, id int64, p task.Payload) (task.Task, error) {
	if err := p.Validate(); err != nil {
		return task.Task{}, err
	}
	if err := f.check(f.UpdateTaskErr); err != nil {
		return task.Task{}, err
	}
	f.mu.Lock()
	defer f.mu.Unlock()
	for i, t := range f.tasks {
		if t.ID == id {
			f.tasks[i] = applyPayload(t, p)
			return f.tasks[i], nil
		}
	}
	return task.Task{}, service.ErrNotFound
}

// DeleteTask implements service.Service.
func (f *FakeService) DeleteTask(ctx context.Context, id int64) error {
	if err := f.check(f.DeleteTaskErr); err != nil {
		return err
	}
	f.mu.Lock()
	defer f.mu.Unlock()
	for i, t := range f.tasks {
		if t.ID == id {
			f.tasks = append(f.tasks[:i], f.tasks[i+1:]...)
			return nil
		}
	}
	return service.ErrNotFound
}

// check returns the injected error, or ErrNotLoggedIn without a session.
func (f *FakeService) check(injected error) error {
	if injected != nil {
		return injected
	}
	if !f.LoggedIn() {
		return service.ErrNotLoggedIn
	}
	return nil
}

func applyPayload(t task.Task, p task.Payload) task.Task {
	t.Title = p.Title
	t.Description = p.Description
	t.Priority = string(p.Priority)
	t.Status = string(p.Status)
	t.Deadline = p.Deadline
	t.User = p.User
	t.StatusDisplay = p.Status.Label()
	t.PriorityDisplay = p.Priority.Label()
	return t
}
