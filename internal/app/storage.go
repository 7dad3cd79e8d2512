package app

import (
	"context"
	"fmt"

	"github.com/adanyl0v/task-tracker/internal/config"
	"github.com/adanyl0v/task-tracker/internal/storage"
	"github.com/adanyl0v/task-tracker/internal/storage/postgres"
	"github.com/adanyl0v/task-tracker/internal/storage/sqlite"
)

var globalStore storage.Store

func MustOpenStorage() {
	cfg := config.Global()
	ctx := context.Background()

	var err error
	switch cfg.Storage.Driver {
	case config.StorageDriverPostgres:
		globalStore, err = postgres.Open(ctx, globalLogger, cfg.Postgres)
		if err == nil {
			globalLogger.Info().
				Str("host", cfg.Postgres.Host).
				Int("port", cfg.Postgres.Port).
				Msg("connected to postgres")
		}
	case config.StorageDriverSQLite:
		globalStore, err = sqlite.Open(ctx, globalLogger, cfg.Storage.SQLitePath)
		if err == nil {
			globalLogger.Info().
				Str("path", cfg.Storage.SQLitePath).
				Msg("opened sqlite database")
		}
	default:
		err = fmt.Errorf("unknown storage driver: %s", cfg.Storage.Driver)
	}
	if err != nil {
		globalLogger.Error().
			Err(err).
			Str("driver", cfg.Storage.Driver).
			Msg("failed to open storage")
		panic(err)
	}
}

func CloseStorage() {
	err := globalStore.Close()
	if err != nil {
		globalLogger.Error().
			Err(err).
			Msg("failed to close storage")
		return
	}
	globalLogger.Info().Msg("closed storage")
}
