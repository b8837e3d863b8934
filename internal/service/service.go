// Package service defines the backend-agnostic interface for account and
// task operations. Commands only talk to the remote API through it.
package service

import (
	"context"

	"taskcollab/internal/task"
)

// Service is everything the commands need from the backend.
type Service interface {
	// Login authenticates with an email or username and stores the session.
	Login(ctx context.Context, credential, password string) (User, error)

	// Register creates an account without logging in.
	Register(ctx context.Context, email, password, name string) error

	// Logout clears the stored session. It never fails for a missing session.
	Logout(ctx context.Context) error

	// CurrentUser returns the logged-in user or ErrNotLoggedIn.
	CurrentUser(ctx context.Context) (User, error)

	// ListTasks returns every task visible to the user, in API order.
	ListTasks(ctx context.Context) ([]task.Task, error)

	// GetTask returns one task or ErrNotFound.
	GetTask(ctx context.Context, id int64) (task.Task, error)

	// CreateTask validates p and creates a task.
	CreateTask(ctx context.Context, p task.Payload) (task.Task, error)

	// UpdateTask validates p and replaces the task with it.
	UpdateTask(ctx context.Context, id int64, p task.Payload) (task.Task, error)

	// DeleteTask deletes a task.
	DeleteTask(ctx context.Context, id int64) error
}
