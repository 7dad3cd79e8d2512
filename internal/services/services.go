package services

import (
	"context"
	"errors"
	"time"

	"github.com/adanyl0v/task-tracker/internal/models"
)

var (
	ErrUserAlreadyExists  = errors.New("user already exists")
	ErrInvalidCredentials = errors.New("invalid username or password")
	ErrInvalidToken       = errors.New("could not validate credentials")
	ErrTaskNotFound       = errors.New("task not found")
	ErrPermissionNotFound = errors.New("permission not found")
	ErrGranteeNotFound    = errors.New("grantee not found")
)

type AuthService interface {
	// Register creates a user with a hashed password.
	//
	// It returns ErrUserAlreadyExists if the username is taken,
	// leaving the existing user untouched.
	Register(ctx context.Context, params RegisterParams) (*models.User, error)

	// Login checks the username and password and issues a bearer token.
	//
	// It returns ErrInvalidCredentials both for an unknown username
	// and for a wrong password.
	Login(ctx context.Context, params LoginParams) (*LoginResult, error)

	// Authenticate resolves a bearer token to its user.
	//
	// It returns ErrInvalidToken if the token is invalid, expired,
	// has no subject or names a user that does not exist.
	Authenticate(ctx context.Context, token string) (*models.User, error)
}

// TaskService applies access rules to every task operation. A task that
// exists but is not accessible to the actor is reported as ErrTaskNotFound.
type TaskService interface {
	CreateTask(ctx context.Context, params CreateTaskParams) (*models.Task, error)
	GetTasks(ctx context.Context, params GetTasksParams) ([]*models.Task, error)
	UpdateTask(ctx context.Context, params UpdateTaskParams) (*models.Task, error)
	DeleteTask(ctx context.Context, params DeleteTaskParams) (*models.Task, error)

	// GrantPermission returns ErrGranteeNotFound if the grantee does not exist.
	GrantPermission(ctx context.Context, params GrantPermissionParams) (*models.Permission, error)
	// RevokePermission returns ErrPermissionNotFound if the grantee holds no
	// matching grant.
	RevokePermission(ctx context.Context, params RevokePermissionParams) (*models.Permission, error)
}

type RegisterParams struct {
	Username string
	Password string
}

type LoginParams struct {
	Username string
	Password string
}

type LoginResult struct {
	AccessToken string
	ExpiresAt   time.Time
}

type CreateTaskParams struct {
	ActorID     int64
	Title       string
	Description *string
}

type GetTasksParams struct {
	ActorID int64
	Offset  int
	Limit   int
}

// UpdateTaskParams replaces the task's fields. A nil Description clears it.
type UpdateTaskParams struct {
	ActorID     int64
	ID          int64
	Title       string
	Description *string
}

type DeleteTaskParams struct {
	ActorID int64
	ID      int64
}

type GrantPermissionParams struct {
	ActorID int64
	TaskID  int64
	UserID  int64
	Type    string
}

// RevokePermissionParams identifies the grant by task and grantee. An empty
// Type matches a grant of any type.
type RevokePermissionParams struct {
	ActorID int64
	TaskID  int64
	UserID  int64
	Type    string
}
