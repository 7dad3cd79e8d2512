package sqlite

import (
	"context"
	"database/sql"

	"github.com/adanyl0v/task-tracker/internal/models"
)

type repository struct {
	q querier
}

func (r *repository) CreateUser(ctx context.Context, username, passwordHash string) (*models.User, error) {
	user := &models.User{
		Username:     username,
		PasswordHash: passwordHash,
	}

	const insertUserQuery = `
INSERT INTO users (username, password_hash)
VALUES (?, ?)
RETURNING id
`
	err := r.q.QueryRowContext(ctx, insertUserQuery, user.Username, user.PasswordHash).Scan(&user.ID)
	if err != nil {
		return nil, mapError(err)
	}
	return user, nil
}

func (r *repository) GetUserByID(ctx context.Context, id int64) (*models.User, error) {
	user := &models.User{ID: id}

	const selectUserByIDQuery = `
SELECT username, password_hash
FROM users WHERE id = ?
`
	err := r.q.QueryRowContext(ctx, selectUserByIDQuery, id).Scan(&user.Username, &user.PasswordHash)
	if err != nil {
		return nil, mapError(err)
	}
	return user, nil
}

func (r *repository) GetUserByUsername(ctx context.Context, username string) (*models.User, error) {
	user := &models.User{Username: username}

	const selectUserByUsernameQuery = `
SELECT id, password_hash
FROM users WHERE username = ?
`
	err := r.q.QueryRowContext(ctx, selectUserByUsernameQuery, username).Scan(&user.ID, &user.PasswordHash)
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
INSERT INTO tasks (owner_id, title, description)
VALUES (?, ?, ?)
RETURNING id
`
	err := r.q.QueryRowContext(
		ctx,
		insertTaskQuery,
		created.OwnerID,
		created.Title,
		nullString(created.Description),
	).Scan(&created.ID)
	if err != nil {
		return nil, mapError(err)
	}
	return created, nil
}

func (r *repository) GetTask(ctx context.Context, id int64) (*models.Task, error) {
	const selectTaskQuery = `
SELECT id, owner_id, title, description
FROM tasks WHERE id = ?
`
	task, err := scanTask(r.q.QueryRowContext(ctx, selectTaskQuery, id))
	if err != nil {
		return nil, mapError(err)
	}
	return task, nil
}

func (r *repository) ListVisibleTasks(ctx context.Context, userID int64, offset, limit int) ([]*models.Task, error) {
	const selectVisibleTasksQuery = `
SELECT id, owner_id, title, description
FROM tasks
WHERE owner_id = ?
   OR id IN (SELECT task_id FROM task_permission WHERE user_id = ?)
ORDER BY id
LIMIT ? OFFSET ?
`
	rows, err := r.q.QueryContext(ctx, selectVisibleTasksQuery, userID, userID, limit, offset)
	if err != nil {
		return nil, mapError(err)
	}
	defer func() { _ = rows.Close() }()

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
UPDATE tasks SET title = ?, description = ?
WHERE id = ?
RETURNING id, owner_id, title, description
`
	task, err := scanTask(r.q.QueryRowContext(ctx, updateTaskQuery, title, nullString(description), id))
	if err != nil {
		return nil, mapError(err)
	}
	return task, nil
}

func (r *repository) DeleteTask(ctx context.Context, id int64) (*models.Task, error) {
	const deleteTaskQuery = `
DELETE FROM tasks WHERE id = ?
RETURNING id, owner_id, title, description
`
	task, err := scanTask(r.q.QueryRowContext(ctx, deleteTaskQuery, id))
	if err != nil {
		return nil, mapError(err)
	}
	return task, nil
}

func (r *repository) ListGrants(ctx context.Context, taskID, userID int64) ([]models.Permission, error) {
	const selectGrantsQuery = `
SELECT id, task_id, user_id, permission_type
FROM task_permission
WHERE task_id = ? AND user_id = ?
ORDER BY id
`
	rows, err := r.q.QueryContext(ctx, selectGrantsQuery, taskID, userID)
	if err != nil {
		return nil, mapError(err)
	}
	defer func() { _ = rows.Close() }()

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
INSERT INTO task_permission (task_id, user_id, permission_type)
VALUES (?, ?, ?)
RETURNING id
`
	err := r.q.QueryRowContext(
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
WHERE id = (SELECT id FROM task_permission
            WHERE task_id = ? AND user_id = ? AND (? = '' OR permission_type = ?)
            ORDER BY id LIMIT 1)
RETURNING id, task_id, user_id, permission_type
`
	var p models.Permission
	err := r.q.QueryRowContext(
		ctx,
		deleteGrantQuery,
		taskID,
		userID,
		permissionType,
		permissionType,
	).Scan(&p.ID, &p.TaskID, &p.UserID, &p.Type)
	if err != nil {
		return nil, mapError(err)
	}
	return &p, nil
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanTask(row rowScanner) (*models.Task, error) {
	var (
		task        models.Task
		description sql.NullString
	)
	err := row.Scan(&task.ID, &task.OwnerID, &task.Title, &description)
	if err != nil {
		return nil, err
	}
	if description.Valid {
		task.Description = &description.String
	}
	return &task, nil
}

func nullString(s *string) sql.NullString {
	if s == nil {
		return sql.NullString{}
	}
	return sql.NullString{String: *s, Valid: true}
}
