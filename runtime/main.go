package main

import (
	"os"

	"github.com/alphabatem/common/context"
	"github.com/joho/godotenv"
	"github.com/lac-hong-legacy/learnhub/middleware"
	"github.com/lac-hong-legacy/learnhub/services"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
)

func main() {
	if err := godotenv.Load(); err != nil {
		log.Warn().Err(err).Msg("No .env file found, using system environment variables")
	}

	if level, err := zerolog.ParseLevel(os.Getenv("LOG_LEVEL")); err == nil && level != zerolog.NoLevel {
		zerolog.SetGlobalLevel(level)
	}

	ctx, err := context.NewCtx(storageServices()...)
	if err != nil {
		log.Fatal().Err(err).Msg("Failed to configure services")
		return
	}

	err = ctx.Run()
	if err != nil {
		log.Fatal().Err(err).Msg("Service stopped")
		return
	}
}

// storageServices registers only the backends the configured drivers need, followed by the app services.
func storageServices() []context.Service {
	recordDriver := envOr("RECORD_DRIVER", services.DriverSqlite)
	blobDriver := envOr("BLOB_DRIVER", services.DriverSqlite)

	var svcs []context.Service
	if usesDatabase(recordDriver) || usesDatabase(blobDriver) {
		svcs = append(svcs, &services.SqliteService{})
	}
	if recordDriver == services.DriverRedis {
		svcs = append(svcs, &services.RedisService{})
	}
	if blobDriver == services.DriverMinIO {
		svcs = append(svcs, &services.MinIOService{})
	}

	return append(svcs,
		&services.StorageService{},
		&services.CatalogService{},
		&services.ProgressService{},
		&services.BackupService{},
		&services.MaintenanceService{},

		&middleware.RoleMiddleware{},
		&services.MonitoringService{},

		&services.HttpService{},
	)
}

func usesDatabase(driver string) bool {
	return driver == services.DriverSqlite || driver == services.DriverPostgres
}

func envOr(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}
