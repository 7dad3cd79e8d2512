package v1

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/adanyl0v/task-tracker/internal/models"
	"github.com/adanyl0v/task-tracker/internal/services"
)

type getTaskResponse struct {
	ID          int64   `json:"id"`
	Title       string  `json:"title"`
	Description *string `json:"description"`
	OwnerID     int64   `json:"owner_id"`
}

func newGetTaskResponse(task *models.Task) getTaskResponse {
	return getTaskResponse{
		ID:          task.ID,
		Title:       task.Title,
		Description: task.Description,
		OwnerID:     task.OwnerID,
	}
}

// taskRequest is shared by create and update. Update replaces every field,
// so an omitted description clears the stored one.
type taskRequest struct {
	Title       *string `json:"title"`
	Description *string `json:"description"`
}

func (h *handlerImpl) HandleCreateTask(c *gin.Context) {
	user, ok := currentUser(c)
	if !ok {
		h.logger.Error().Msg("no user found in context")
		abort(c, newUnauthorizedError(errUnauthenticated.Error()))
		return
	}

	var req taskRequest
	err := c.ShouldBindJSON(&req)
	if err != nil {
		h.logger.Error().
			Err(err).
			Msg("failed to bind json")
		abort(c, newBadRequestError(errInvalidRequestBody.Error()))
		return
	}
	if errs := validateTask(req.Title, req.Description); len(errs) > 0 {
		abortValidation(c, errs)
		return
	}

	task, err := h.tasks.CreateTask(c, services.CreateTaskParams{
		ActorID:     user.ID,
		Title:       *req.Title,
		Description: req.Description,
	})
	if err != nil {
		h.logger.Error().
			Err(err).
			Msg("failed to create task")
		abort(c, newStatusTextError(http.StatusInternalServerError))
		return
	}

	c.JSON(http.StatusOK, newGetTaskResponse(task))
}

func (h *handlerImpl) HandleGetTasks(c *gin.Context) {
	user, ok := currentUser(c)
	if !ok {
		h.logger.Error().Msg("no user found in context")
		abort(c, newUnauthorizedError(errUnauthenticated.Error()))
		return
	}

	skip, limit, errs := parsePagination(c.Query("skip"), c.Query("limit"))
	if len(errs) > 0 {
		abortValidation(c, errs)
		return
	}

	tasks, err := h.tasks.GetTasks(c, services.GetTasksParams{
		ActorID: user.ID,
		Offset:  skip,
		Limit:   limit,
	})
	if err != nil {
		h.logger.Error().
			Err(err).
			Msg("failed to get tasks")
		abort(c, newStatusTextError(http.StatusInternalServerError))
		return
	}

	response := make([]getTaskResponse, len(tasks))
	for i, task := range tasks {
		response[i] = newGetTaskResponse(task)
	}
	c.JSON(http.StatusOK, response)
}

func (h *handlerImpl) HandleUpdateTask(c *gin.Context) {
	user, ok := currentUser(c)
	if !ok {
		h.logger.Error().Msg("no user found in context")
		abort(c, newUnauthorizedError(errUnauthenticated.Error()))
		return
	}

	var errs validationErrors
	taskID := parseID(&errs, "id", c.Param("id"))

	var req taskRequest
	err := c.ShouldBindJSON(&req)
	if err != nil {
		h.logger.Error().
			Err(err).
			Msg("failed to bind json")
		abort(c, newBadRequestError(errInvalidRequestBody.Error()))
		return
	}
	errs = append(errs, validateTask(req.Title, req.Description)...)
	if len(errs) > 0 {
		abortValidation(c, errs)
		return
	}

	task, err := h.tasks.UpdateTask(c, services.UpdateTaskParams{
		ActorID:     user.ID,
		ID:          taskID,
		Title:       *req.Title,
		Description: req.Description,
	})
	if err != nil {
		h.logger.Error().
			Err(err).
			Int64("task_id", taskID).
			Msg("failed to update task")
		switch {
		case errors.Is(err, services.ErrTaskNotFound):
			abort(c, newNotFoundError(errTaskNotFound.Error()))
		default:
			abort(c, newStatusTextError(http.StatusInternalServerError))
		}
		return
	}

	c.JSON(http.StatusOK, newGetTaskResponse(task))
}

func (h *handlerImpl) HandleDeleteTask(c *gin.Context) {
	user, ok := currentUser(c)
	if !ok {
		h.logger.Error().Msg("no user found in context")
		abort(c, newUnauthorizedError(errUnauthenticated.Error()))
		return
	}

	var errs validationErrors
	taskID := parseID(&errs, "id", c.Param("id"))
	if len(errs) > 0 {
		abortValidation(c, errs)
		return
	}

	task, err := h.tasks.DeleteTask(c, services.DeleteTaskParams{
		ActorID: user.ID,
		ID:      taskID,
	})
	if err != nil {
		h.logger.Error().
			Err(err).
			Int64("task_id", taskID).
			Msg("failed to delete task")
		switch {
		case errors.Is(err, services.ErrTaskNotFound):
			abort(c, newNotFoundError(errTaskNotFound.Error()))
		default:
			abort(c, newStatusTextError(http.StatusInternalServerError))
		}
		return
	}

	c.JSON(http.StatusOK, newGetTaskResponse(task))
}
