package v1

import (
	"context"

	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog"

	"github.com/adanyl0v/task-tracker/internal/services"
)

type Handler interface {
	HandleRegister(c *gin.Context)
	HandleLogin(c *gin.Context)
	HandleGetMe(c *gin.Context)
	HandleAuthMiddleware(c *gin.Context)
	HandleHealth(c *gin.Context)

	HandleCreateTask(c *gin.Context)
	HandleGetTasks(c *gin.Context)
	HandleUpdateTask(c *gin.Context)
	HandleDeleteTask(c *gin.Context)

	HandleGrantPermission(c *gin.Context)
	HandleRevokePermission(c *gin.Context)
}

type Pinger interface {
	Ping(ctx context.Context) error
}

type handlerImpl struct {
	logger zerolog.Logger
	auth   services.AuthService
	tasks  services.TaskService
	pinger Pinger
}

func New(
	logger zerolog.Logger,
	authService services.AuthService,
	taskService services.TaskService,
	pinger Pinger,
) Handler {
	return &handlerImpl{
		logger: logger,
		auth:   authService,
		tasks:  taskService,
		pinger: pinger,
	}
}

// RegisterRoutes mounts the API on router.
func RegisterRoutes(router gin.IRouter, h Handler) {
	router.GET("/healthz", h.HandleHealth)

	router.POST("/users/", h.HandleRegister)
	router.POST("/token", h.HandleLogin)

	authorized := router.Group("/", h.HandleAuthMiddleware)
	authorized.GET("/users/me/", h.HandleGetMe)

	authorized.POST("/tasks/", h.HandleCreateTask)
	authorized.GET("/tasks/", h.HandleGetTasks)
	authorized.PUT("/tasks/:id/", h.HandleUpdateTask)
	authorized.DELETE("/tasks/:id/", h.HandleDeleteTask)

	authorized.POST("/tasks/:id/permissions/", h.HandleGrantPermission)
	authorized.DELETE("/tasks/:id/permissions/", h.HandleRevokePermission)
}
