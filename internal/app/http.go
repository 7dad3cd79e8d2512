package app

import (
	"context"
	"errors"
	"net"
	"net/http"
	"os"
	"os/signal"
	"syscall"

	"github.com/gin-gonic/gin"

	"github.com/adanyl0v/task-tracker/internal/config"
	"github.com/adanyl0v/task-tracker/internal/delivery/http/v1"
	"github.com/adanyl0v/task-tracker/internal/passwords"
	"github.com/adanyl0v/task-tracker/internal/services"
	"github.com/adanyl0v/task-tracker/internal/tokens"
)

func MustListenAndServeHTTP() {
	cfg := config.Global()
	if cfg.Env != config.EnvLocal {
		gin.SetMode(gin.ReleaseMode)
	}

	httpCfg := cfg.HTTP

	router := gin.New()
	router.Use(v1.RequestLogger(globalLogger))
	router.Use(gin.Recovery())
	registerRoutes(router)

	server := &http.Server{
		Addr:              net.JoinHostPort(httpCfg.Host, httpCfg.Port),
		Handler:           router,
		ReadHeaderTimeout: httpCfg.ReadHeaderTimeout,
	}

	go func() {
		globalLogger.Info().
			Str("host", httpCfg.Host).
			Str("port", httpCfg.Port).
			Msg("setting up http server")
		err := server.ListenAndServe()
		if err != nil && !errors.Is(err, http.ErrServerClosed) {
			globalLogger.Error().
				Err(err).
				Msg("failed to listen and serve http")
			panic(err)
		}
	}()

	// kill -9 cannot be caught, so only SIGINT and SIGTERM are handled.
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	globalLogger.Info().
		Msg("shutting down http server")

	ctx, cancel := context.WithTimeout(context.Background(), httpCfg.ShutdownTimeout)
	defer cancel()

	err := server.Shutdown(ctx)
	if err != nil {
		globalLogger.Error().
			Err(err).
			Msg("failed to shutdown http server")
		panic(err)
	}
	globalLogger.Info().Msg("shut down http server")
}

func registerRoutes(router gin.IRouter) {
	jwtCfg := config.Global().JWT

	hasher, err := passwords.NewHasher(nil)
	if err != nil {
		globalLogger.Error().
			Err(err).
			Msg("failed to create password hasher")
		panic(err)
	}
	tokenService := tokens.NewService(jwtCfg.Issuer, []byte(jwtCfg.SigningKey))

	v1Handler := v1.New(
		globalLogger,
		services.NewAuthService(globalLogger, globalStore, hasher, tokenService, jwtCfg.AccessTokenTTL),
		services.NewTaskService(globalLogger, globalStore),
		globalStore,
	)
	v1.RegisterRoutes(router, v1Handler)
}
