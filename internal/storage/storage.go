// Package storage defines persistence for users, tasks and permission grants.
//
// Repositories do no authorization. Callers decide access first, inside the
// same InTx call that performs the mutation.
package storage

import (
	"context"
	"errors"

	"github.com/adanyl0v/task-tracker/internal/models"
)

var (
	ErrNotFound          = errors.New("record not found")
	ErrAlreadyExists     = errors.New("record already exists")
	ErrReferenceNotFound = errors.New("referenced record not found")
)

type Repository interface {
	// CreateUser returns ErrAlreadyExists if the username is taken.
	CreateUser(ctx context.Context, username, passwordHash string) (*models.User, error)
	GetUserByID(ctx context.Context, id int64) (*models.User, error)
	GetUserByUsername(ctx context.Context, username string) (*models.User, error)

	CreateTask(ctx context.Context, task *models.Task) (*models.Task, error)
	// GetTask locks the task row until the surrounding transaction ends
	// on backends that support row locks.
	GetTask(ctx context.Context, id int64) (*models.Task, error)
	// ListVisibleTasks returns tasks owned by userID or shared with it through
	// any grant, ordered by id.
	ListVisibleTasks(ctx context.Context, userID int64, offset, limit int) ([]*models.Task, error)
	// UpdateTask overwrites title and description. A nil description clears it.
	UpdateTask(ctx context.Context, id int64, title string, description *string) (*models.Task, error)
	// DeleteTask removes the task and its grants and returns the removed task.
	DeleteTask(ctx context.Context, id int64) (*models.Task, error)

	ListGrants(ctx context.Context, taskID, userID int64) ([]models.Permission, error)
	// CreateGrant returns ErrReferenceNotFound if the task or user does not exist.
	CreateGrant(ctx context.Context, permission models.Permission) (*models.Permission, error)
	// DeleteGrant removes the oldest grant of userID on taskID. A non-empty
	// permissionType restricts the match to that type.
	DeleteGrant(ctx context.Context, taskID, userID int64, permissionType string) (*models.Permission, error)
}

type Store interface {
	Repository

	// InTx runs fn against a repository bound to one transaction. The
	// transaction commits if fn returns nil and rolls back otherwise.
	InTx(ctx context.Context, fn func(repo Repository) error) error
	Ping(ctx context.Context) error
	Close() error
}
