package v1

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/adanyl0v/task-tracker/internal/models"
	"github.com/adanyl0v/task-tracker/internal/services"
)

const tokenTypeBearer = "bearer"

type userResponse struct {
	ID       int64  `json:"id"`
	Username string `json:"username"`
}

func newUserResponse(user *models.User) userResponse {
	return userResponse{
		ID:       user.ID,
		Username: user.Username,
	}
}

type registerRequest struct {
	Username string `json:"username"`
	Password string `json:"password"`
}

func (h *handlerImpl) HandleRegister(c *gin.Context) {
	var req registerRequest
	err := c.ShouldBindJSON(&req)
	if err != nil {
		h.logger.Error().
			Err(err).
			Msg("failed to bind json")
		abort(c, newBadRequestError(errInvalidRequestBody.Error()))
		return
	}

	if errs := validateCredentials(req.Username, req.Password); len(errs) > 0 {
		h.logger.Error().
			Err(errs).
			Msg("invalid register request")
		abortValidation(c, errs)
		return
	}
	h.logger.Info().
		Str("username", req.Username).
		Msg("register request")

	user, err := h.auth.Register(c, services.RegisterParams{
		Username: req.Username,
		Password: req.Password,
	})
	if err != nil {
		h.logger.Error().
			Err(err).
			Msg("failed to register user")
		switch {
		case errors.Is(err, services.ErrUserAlreadyExists):
			abort(c, newBadRequestError(errUsernameTaken.Error()))
		default:
			abort(c, newStatusTextError(http.StatusInternalServerError))
		}
		return
	}

	c.JSON(http.StatusOK, newUserResponse(user))
}

type loginRequest struct {
	Username string `form:"username"`
	Password string `form:"password"`
}

type tokenResponse struct {
	AccessToken string `json:"access_token"`
	TokenType   string `json:"token_type"`
}

func (h *handlerImpl) HandleLogin(c *gin.Context) {
	var req loginRequest
	err := c.ShouldBind(&req)
	if err != nil {
		h.logger.Error().
			Err(err).
			Msg("failed to bind form")
		abort(c, newBadRequestError(errInvalidRequestBody.Error()))
		return
	}

	var errs validationErrors
	if req.Username == "" {
		errs.add("username", "is required")
	}
	if req.Password == "" {
		errs.add("password", "is required")
	}
	if len(errs) > 0 {
		abortValidation(c, errs)
		return
	}

	result, err := h.auth.Login(c, services.LoginParams{
		Username: req.Username,
		Password: req.Password,
	})
	if err != nil {
		h.logger.Error().
			Err(err).
			Msg("failed to login")
		switch {
		case errors.Is(err, services.ErrInvalidCredentials):
			abort(c, newUnauthorizedError(errBadCredentials.Error()))
		default:
			abort(c, newStatusTextError(http.StatusInternalServerError))
		}
		return
	}

	c.JSON(http.StatusOK, tokenResponse{
		AccessToken: result.AccessToken,
		TokenType:   tokenTypeBearer,
	})
}

func (h *handlerImpl) HandleGetMe(c *gin.Context) {
	user, ok := currentUser(c)
	if !ok {
		h.logger.Error().Msg("no user found in context")
		abort(c, newUnauthorizedError(errUnauthenticated.Error()))
		return
	}

	c.JSON(http.StatusOK, newUserResponse(user))
}

func (h *handlerImpl) HandleHealth(c *gin.Context) {
	err := h.pinger.Ping(c)
	if err != nil {
		h.logger.Error().
			Err(err).
			Msg("failed to ping storage")
		abort(c, newStatusTextError(http.StatusServiceUnavailable))
		return
	}
	c.JSON(http.StatusOK, gin.H{"status": "ok"})
}
