package v1

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/adanyl0v/task-tracker/internal/models"
	"github.com/adanyl0v/task-tracker/internal/services"
)

type permissionResponse struct {
	ID             int64  `json:"id"`
	TaskID         int64  `json:"task_id"`
	UserID         int64  `json:"user_id"`
	PermissionType string `json:"permission_type"`
}

func newPermissionResponse(p *models.Permission) permissionResponse {
	return permissionResponse{
		ID:             p.ID,
		TaskID:         p.TaskID,
		UserID:         p.UserID,
		PermissionType: p.Type,
	}
}

type grantPermissionRequest struct {
	UserID         *int64 `json:"user_id"`
	PermissionType string `json:"permission_type"`
}

func (h *handlerImpl) HandleGrantPermission(c *gin.Context) {
	user, ok := currentUser(c)
	if !ok {
		h.logger.Error().Msg("no user found in context")
		abort(c, newUnauthorizedError(errUnauthenticated.Error()))
		return
	}

	var errs validationErrors
	taskID := parseID(&errs, "id", c.Param("id"))

	var req grantPermissionRequest
	err := c.ShouldBindJSON(&req)
	if err != nil {
		h.logger.Error().
			Err(err).
			Msg("failed to bind json")
		abort(c, newBadRequestError(errInvalidRequestBody.Error()))
		return
	}
	errs = append(errs, validatePermission(req.UserID, req.PermissionType)...)
	if len(errs) > 0 {
		abortValidation(c, errs)
		return
	}

	permission, err := h.tasks.GrantPermission(c, services.GrantPermissionParams{
		ActorID: user.ID,
		TaskID:  taskID,
		UserID:  *req.UserID,
		Type:    req.PermissionType,
	})
	if err != nil {
		h.logger.Error().
			Err(err).
			Int64("task_id", taskID).
			Msg("failed to grant permission")
		switch {
		case errors.Is(err, services.ErrTaskNotFound):
			abort(c, newNotFoundError(errTaskNotFound.Error()))
		case errors.Is(err, services.ErrGranteeNotFound):
			abort(c, newBadRequestError(errGranteeNotFound.Error()))
		default:
			abort(c, newStatusTextError(http.StatusInternalServerError))
		}
		return
	}

	c.JSON(http.StatusOK, newPermissionResponse(permission))
}

func (h *handlerImpl) HandleRevokePermission(c *gin.Context) {
	user, ok := currentUser(c)
	if !ok {
		h.logger.Error().Msg("no user found in context")
		abort(c, newUnauthorizedError(errUnauthenticated.Error()))
		return
	}

	var errs validationErrors
	taskID := parseID(&errs, "id", c.Param("id"))
	granteeID := parseID(&errs, "user_id", c.Query("user_id"))
	permissionType := c.Query("permission_type")
	validatePermissionType(&errs, permissionType, false)
	if len(errs) > 0 {
		abortValidation(c, errs)
		return
	}

	permission, err := h.tasks.RevokePermission(c, services.RevokePermissionParams{
		ActorID: user.ID,
		TaskID:  taskID,
		UserID:  granteeID,
		Type:    permissionType,
	})
	if err != nil {
		h.logger.Error().
			Err(err).
			Int64("task_id", taskID).
			Msg("failed to revoke permission")
		switch {
		case errors.Is(err, services.ErrTaskNotFound),
			errors.Is(err, services.ErrPermissionNotFound):
			abort(c, newNotFoundError(errPermissionNotFound.Error()))
		default:
			abort(c, newStatusTextError(http.StatusInternalServerError))
		}
		return
	}

	c.JSON(http.StatusOK, newPermissionResponse(permission))
}
