package services

import (
	"context"
	"errors"

	"github.com/rs/zerolog"

	"github.com/adanyl0v/task-tracker/internal/access"
	"github.com/adanyl0v/task-tracker/internal/models"
	"github.com/adanyl0v/task-tracker/internal/storage"
)

type taskServiceImpl struct {
	logger zerolog.Logger
	store  storage.Store
}

func NewTaskService(
	logger zerolog.Logger,
	store storage.Store,
) TaskService {
	return &taskServiceImpl{
		logger: logger,
		store:  store,
	}
}

func (s *taskServiceImpl) CreateTask(ctx context.Context, params CreateTaskParams) (*models.Task, error) {
	task, err := s.store.CreateTask(ctx, &models.Task{
		OwnerID:     params.ActorID,
		Title:       params.Title,
		Description: params.Description,
	})
	if err != nil {
		s.logger.Error().
			Err(err).
			Int64("user_id", params.ActorID).
			Msg("failed to insert task")
		return nil, err
	}
	s.logger.Debug().
		Int64("task_id", task.ID).
		Msg("inserted task")

	s.logger.Info().
		Int64("task_id", task.ID).
		Int64("user_id", params.ActorID).
		Msg("created task")
	return task, nil
}

func (s *taskServiceImpl) GetTasks(ctx context.Context, params GetTasksParams) ([]*models.Task, error) {
	tasks, err := s.store.ListVisibleTasks(ctx, params.ActorID, params.Offset, params.Limit)
	if err != nil {
		s.logger.Error().
			Err(err).
			Int64("user_id", params.ActorID).
			Msg("failed to select visible tasks")
		return nil, err
	}
	s.logger.Debug().
		Int("count", len(tasks)).
		Int64("user_id", params.ActorID).
		Int("offset", params.Offset).
		Int("limit", params.Limit).
		Msg("selected visible tasks")

	s.logger.Info().
		Int("count", len(tasks)).
		Int64("user_id", params.ActorID).
		Msg("tasks found")
	return tasks, nil
}

func (s *taskServiceImpl) UpdateTask(ctx context.Context, params UpdateTaskParams) (*models.Task, error) {
	var task *models.Task
	err := s.store.InTx(ctx, func(repo storage.Repository) error {
		err := s.authorize(ctx, repo, params.ActorID, params.ID, access.OpUpdate)
		if err != nil {
			return err
		}

		task, err = repo.UpdateTask(ctx, params.ID, params.Title, params.Description)
		if err != nil {
			if errors.Is(err, storage.ErrNotFound) {
				return ErrTaskNotFound
			}
			s.logger.Error().
				Err(err).
				Int64("task_id", params.ID).
				Msg("failed to update task")
			return err
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	s.logger.Info().
		Int64("task_id", task.ID).
		Int64("user_id", params.ActorID).
		Msg("updated task")
	return task, nil
}

func (s *taskServiceImpl) DeleteTask(ctx context.Context, params DeleteTaskParams) (*models.Task, error) {
	var task *models.Task
	err := s.store.InTx(ctx, func(repo storage.Repository) error {
		err := s.authorize(ctx, repo, params.ActorID, params.ID, access.OpDelete)
		if err != nil {
			return err
		}

		task, err = repo.DeleteTask(ctx, params.ID)
		if err != nil {
			if errors.Is(err, storage.ErrNotFound) {
				return ErrTaskNotFound
			}
			s.logger.Error().
				Err(err).
				Int64("task_id", params.ID).
				Msg("failed to delete task")
			return err
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	s.logger.Info().
		Int64("task_id", task.ID).
		Int64("user_id", params.ActorID).
		Msg("deleted task")
	return task, nil
}

func (s *taskServiceImpl) GrantPermission(ctx context.Context, params GrantPermissionParams) (*models.Permission, error) {
	var permission *models.Permission
	err := s.store.InTx(ctx, func(repo storage.Repository) error {
		err := s.authorize(ctx, repo, params.ActorID, params.TaskID, access.OpGrant)
		if err != nil {
			return err
		}

		permission, err = repo.CreateGrant(ctx, models.Permission{
			TaskID: params.TaskID,
			UserID: params.UserID,
			Type:   params.Type,
		})
		if err != nil {
			if errors.Is(err, storage.ErrReferenceNotFound) {
				s.logger.Error().
					Int64("task_id", params.TaskID).
					Int64("grantee_id", params.UserID).
					Msg("grantee not found")
				return ErrGranteeNotFound
			}
			s.logger.Error().
				Err(err).
				Int64("task_id", params.TaskID).
				Msg("failed to insert permission")
			return err
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	s.logger.Debug().
		Int64("permission_id", permission.ID).
		Msg("inserted permission")

	s.logger.Info().
		Int64("task_id", permission.TaskID).
		Int64("grantee_id", permission.UserID).
		Str("permission_type", permission.Type).
		Msg("granted permission")
	return permission, nil
}

func (s *taskServiceImpl) RevokePermission(ctx context.Context, params RevokePermissionParams) (*models.Permission, error) {
	var permission *models.Permission
	err := s.store.InTx(ctx, func(repo storage.Repository) error {
		err := s.authorize(ctx, repo, params.ActorID, params.TaskID, access.OpRevoke)
		if err != nil {
			return err
		}

		permission, err = repo.DeleteGrant(ctx, params.TaskID, params.UserID, params.Type)
		if err != nil {
			if errors.Is(err, storage.ErrNotFound) {
				s.logger.Warn().
					Int64("task_id", params.TaskID).
					Int64("grantee_id", params.UserID).
					Msg("permission not found")
				return ErrPermissionNotFound
			}
			s.logger.Error().
				Err(err).
				Int64("task_id", params.TaskID).
				Msg("failed to delete permission")
			return err
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	s.logger.Info().
		Int64("task_id", permission.TaskID).
		Int64("grantee_id", permission.UserID).
		Str("permission_type", permission.Type).
		Msg("revoked permission")
	return permission, nil
}

// authorize loads the task and the actor's grants on it through repo and
// applies the access rules for op. Both a missing task and a denial are
// reported as ErrTaskNotFound.
func (s *taskServiceImpl) authorize(
	ctx context.Context,
	repo storage.Repository,
	actorID, taskID int64,
	op access.Operation,
) error {
	task, err := repo.GetTask(ctx, taskID)
	if err != nil {
		if errors.Is(err, storage.ErrNotFound) {
			s.logger.Warn().
				Int64("task_id", taskID).
				Msg("task not found")
			return ErrTaskNotFound
		}
		s.logger.Error().
			Err(err).
			Int64("task_id", taskID).
			Msg("failed to select task")
		return err
	}

	facts := access.Facts{OwnerID: task.OwnerID}
	if task.OwnerID != actorID {
		facts.Grants, err = repo.ListGrants(ctx, taskID, actorID)
		if err != nil {
			s.logger.Error().
				Err(err).
				Int64("task_id", taskID).
				Msg("failed to select permissions")
			return err
		}
	}

	err = access.Check(actorID, facts, op)
	if err != nil {
		s.logger.Warn().
			Err(err).
			Int64("task_id", taskID).
			Int64("user_id", actorID).
			Msg("access denied")
		return ErrTaskNotFound
	}
	return nil
}
