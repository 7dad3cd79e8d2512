package postgres

import (
	"context"
	"errors"

	"github.com/jackc/pgerrcode"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"

	"github.com/adanyl0v/task-tracker/internal/models"
	"github.com/adanyl0v/task-tracker/internal/storage"
)

type repository struct {
	q querier
	// lockRows is set inside InTx so that GetTask holds the task row.
	lockRows bool
}

func (r *repository) CreateUser(ctx context.Context, username, passwordHash string) (*models.User, error) {
	user := &models.User{
		Username:     username,
		PasswordHash: passwordHash,
	}

	const insertUserQuery = `
INSERT INTO users (username,
                   password_hash)
VALUES ($1, $2)
RETURNING id
`
	err := r.q.QueryRow(
		ctx,
		insertUserQuery,
		user.Username,
		user.PasswordHash,
	).Scan(&user.ID)
	if err != nil {
		return nil, mapError(err)
	}
	return user, nil
}

func (r *repository) GetUserByID(ctx context.Context, id int64) (*models.User, error) {
	user := &models.User{ID: id}

	const selectUserByIDQuery = `
SELECT username,
       password_hash
FROM users
WHERE id = $1
`
	err := r.q.QueryRow(
		ctx,
		selectUserByIDQuery,
		user.ID,
	).Scan(
		&user.Username,
		&user.PasswordHash,
	)
	if err != nil {
		return nil, mapError(err)
	}
	return user, nil
}

func (r *repository) GetUserByUsername(ctx context.Context, username string) (*models.User, error) {
	user := &models.User{Username: username}

	const selectUserByUsernameQuery = `
SELECT id,
       password_hash
FROM users
WHERE username = $1
`
	err := r.q.QueryRow(
		ctx,
		selectUserByUsernameQuery,
		user.Username,
	).Scan(
		&user.ID,
		&user.PasswordHash,
	)
	if err != nil {
		return nil, mapError(err)
	}
	return user, nil
}

func (r *repository) CreateTask(ctx context.Context, task *models.Task) (*models.Task, error) {
	created := &models.Task{
		OwnerID:     task.OwnerID,
		Title:       task.Title,
		Description: task.Description,
	}

	const insertTaskQuery = `
INSERT INTO tasks (owner_id,
                   title,
                   description)
VALUES ($1, $2, $3)
RETURNING id
`
	err := r.q.QueryRow(
		ctx,
		insertTaskQuery,
		created.OwnerID,
		created.Title,
		created.Description,
	).Scan(&created.ID)
	if err != nil {
		return nil, mapError(err)
	}
	return created, nil
}

func (r *repository) GetTask(ctx context.Context, id int64) (*models.Task, error) {
	selectTaskQuery := `
SELECT id,
       owner_id,
       title,
       description
FROM tasks
WHERE id = $1
`
	if r.lockRows {
		selectTaskQuery += "FOR UPDATE\n"
	}

	task, err := scanTask(r.q.QueryRow(ctx, selectTaskQuery, id))
	if err != nil {
		return nil, mapError(err)
	}
	return task, nil
}

func (r *repository) ListVisibleTasks(ctx context.Context, userID int64, offset, limit int) ([]*models.Task, error) {
	const selectVisibleTasksQuery = `
SELECT id,
       owner_id,
       title,
       description
FROM tasks
WHERE owner_id = $1
   OR id IN (SELECT task_id
             FROM task_permission
             WHERE user_id = $1)
ORDER BY id
LIMIT $2 OFFSET $3
`
	rows, err := r.q.Query(
		ctx,
		selectVisibleTasksQuery,
		userID,
		limit,
		offset,
	)
	if err != nil {
		return nil, mapError(err)
	}
	defer rows.Close()

	tasks := make([]*models.Task, 0, limit)
	for rows.Next() {
		task, err := scanTask(rows)
		if err != nil {
			return nil, err
		}
		tasks = append(tasks, task)
	}

	err = rows.Err()
	if err != nil {
		return nil, err
	}
	return tasks, nil
}

func (r *repository) UpdateTask(ctx context.Context, id int64, title string, description *string) (*models.Task, error) {
	const updateTaskQuery = `
UPDATE tasks
SET title = $1,
    description = $2
WHERE id = $3
RETURNING id, owner_id, title, description
`
	task, err := scanTask(r.q.QueryRow(
		ctx,
		updateTaskQuery,
		title,
		description,
		id,
	))
	if err != nil {
		return nil, mapError(err)
	}
	return task, nil
}

func (r *repository) DeleteTask(ctx context.Context, id int64) (*models.Task, error) {
	const deleteTaskQuery = `
DELETE FROM tasks
WHERE id = $1
RETURNING id, owner_id, title, description
`
	task, err := scanTask(r.q.QueryRow(ctx, deleteTaskQuery, id))
	if err != nil {
		return nil, mapError(err)
	}
	return task, nil
}

func (r *repository) ListGrants(ctx context.Context, taskID, userID int64) ([]models.Permission, error) {
	const selectGrantsQuery = `
SELECT id,
       task_id,
       user_id,
       permission_type
FROM task_permission
WHERE task_id = $1 AND user_id = $2
ORDER BY id
`
	rows, err := r.q.Query(ctx, selectGrantsQuery, taskID, userID)
	if err != nil {
		return nil, mapError(err)
	}
	defer rows.Close()

	var grants []models.Permission
	for rows.Next() {
		var p models.Permission
		err = rows.Scan(&p.ID, &p.TaskID, &p.UserID, &p.Type)
		if err != nil {
			return nil, err
		}
		grants = append(grants, p)
	}

	err = rows.Err()
	if err != nil {
		return nil, err
	}
	return grants, nil
}

func (r *repository) CreateGrant(ctx context.Context, permission models.Permission) (*models.Permission, error) {
	created := permission

	const insertGrantQuery = `
INSERT INTO task_permission (task_id,
                             user_id,
                             permission_type)
VALUES ($1, $2, $3)
RETURNING id
`
	err := r.q.QueryRow(
		ctx,
		insertGrantQuery,
		created.TaskID,
		created.UserID,
		created.Type,
	).Scan(&created.ID)
	if err != nil {
		return nil, mapError(err)
	}
	return &created, nil
}

func (r *repository) DeleteGrant(ctx context.Context, taskID, userID int64, permissionType string) (*models.Permission, error) {
	const deleteGrantQuery = `
DELETE FROM task_permission
WHERE id = (SELECT id
            FROM task_permission
            WHERE task_id = $1
              AND user_id = $2
              AND ($3::TEXT = '' OR permission_type = $3::TEXT)
            ORDER BY id
            LIMIT 1)
RETURNING id, task_id, user_id, permission_type
`
	var p models.Permission
	err := r.q.QueryRow(
		ctx,
		deleteGrantQuery,
		taskID,
		userID,
		permissionType,
	).Scan(
		&p.ID,
		&p.TaskID,
		&p.UserID,
		&p.Type,
	)
	if err != nil {
		return nil, mapError(err)
	}
	return &p, nil
}

func scanTask(row pgx.Row) (*models.Task, error) {
	task := new(models.Task)
	err := row.Scan(
		&task.ID,
		&task.OwnerID,
		&task.Title,
		&task.Description,
	)
	if err != nil {
		return nil, err
	}
	return task, nil
}

func mapError(err error) error {
	if isNoRows(err) {
		return storage.ErrNotFound
	}

	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) {
		switch pgErr.Code {
		case pgerrcode.UniqueViolation:
			return storage.ErrAlreadyExists
		case pgerrcode.ForeignKeyViolation:
			return storage.ErrReferenceNotFound
		}
	}
	return err
}
