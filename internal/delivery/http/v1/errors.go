package v1

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
)

var (
	errInvalidRequestBody = errors.New("invalid request body")
	errUsernameTaken      = errors.New("username already registered")
	errBadCredentials     = errors.New("incorrect username or password")
	errUnauthenticated    = errors.New("could not validate credentials")
	errTaskNotFound       = errors.New("task not found or access denied")
	errPermissionNotFound = errors.New("permission not found or access denied")
	errGranteeNotFound    = errors.New("user does not exist")
)

type apiError struct {
	Code    int    `json:"code"`
	Message string `json:"message"`
}

func newAPIError(code int, message string) apiError {
	return apiError{
		Code:    code,
		Message: message,
	}
}

func (e apiError) Error() string {
	return e.Message
}

func abort(c *gin.Context, err apiError) {
	if err.Code == http.StatusUnauthorized {
		c.Header("WWW-Authenticate", "Bearer")
	}
	c.AbortWithStatusJSON(err.Code, gin.H{"detail": err.Message})
}

func abortValidation(c *gin.Context, errs validationErrors) {
	c.AbortWithStatusJSON(http.StatusBadRequest, gin.H{"detail": errs})
}

func newStatusTextError(status int) apiError {
	return newAPIError(status, http.StatusText(status))
}

func newBadRequestError(message string) apiError {
	return newAPIError(http.StatusBadRequest, message)
}

func newUnauthorizedError(message string) apiError {
	return newAPIError(http.StatusUnauthorized, message)
}

func newNotFoundError(message string) apiError {
	return newAPIError(http.StatusNotFound, message)
}
