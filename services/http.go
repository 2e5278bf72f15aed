package services

import (
	"fmt"
	"os"
	"strconv"

	"github.com/alphabatem/common/context"
	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/recover"
	"github.com/lac-hong-legacy/learnhub/middleware"
	"github.com/lac-hong-legacy/learnhub/services/handlers"
	"github.com/lac-hong-legacy/learnhub/shared"
	log "github.com/sirupsen/logrus"
)

const defaultBodyLimit = 512 * 1024 * 1024

type HttpService struct {
	context.DefaultService

	catalogSvc     *CatalogService
	progressSvc    *ProgressService
	backupSvc      *BackupService
	maintenanceSvc *MaintenanceService
	monitoringSvc  *MonitoringService
	roleMiddleware *middleware.RoleMiddleware

	port      int
	bodyLimit int
	app       *fiber.App
}

const HTTP_SVC = "http_svc"

func (svc HttpService) Id() string {
	return HTTP_SVC
}

func (svc *HttpService) Configure(ctx *context.Context) error {
	if port := os.Getenv("HTTP_PORT"); port != "" {
		var err error
		if svc.port, err = strconv.Atoi(port); err != nil {
			return err
		}
	} else {
		svc.port = 8000
	}

	svc.bodyLimit = defaultBodyLimit
	if limit := os.Getenv("HTTP_BODY_LIMIT"); limit != "" {
		var err error
		if svc.bodyLimit, err = strconv.Atoi(limit); err != nil {
			return err
		}
	}

	return svc.DefaultService.Configure(ctx)
}

func (svc *HttpService) Start() error {
	svc.catalogSvc = svc.Service(CATALOG_SVC).(*CatalogService)
	svc.progressSvc = svc.Service(PROGRESS_SVC).(*ProgressService)
	svc.backupSvc = svc.Service(BACKUP_SVC).(*BackupService)
	svc.maintenanceSvc = svc.Service(MAINTENANCE_SVC).(*MaintenanceService)
	svc.roleMiddleware = svc.Service(middleware.ROLE_MIDDLEWARE_SVC).(*middleware.RoleMiddleware)
	if monitoring, ok := svc.Service(MONITORING_SVC).(*MonitoringService); ok {
		svc.monitoringSvc = monitoring
	}

	svc.app = NewApp(AppServices{
		Catalog:     svc.catalogSvc,
		Progress:    svc.progressSvc,
		Backup:      svc.backupSvc,
		Maintenance: svc.maintenanceSvc,
		Monitoring:  svc.monitoringSvc,
		Roles:       svc.roleMiddleware,
		BodyLimit:   svc.bodyLimit,
	})

	log.WithField("port", svc.port).Info("HTTP server listening")
	return svc.app.Listen(fmt.Sprintf(":%v", svc.port))
}

func (svc *HttpService) Shutdown() {
	if svc.app != nil {
		_ = svc.app.Shutdown()
	}
}

// AppServices are the collaborators the API routes are built from. Monitoring is optional.
type AppServices struct {
	Catalog     *CatalogService
	Progress    *ProgressService
	Backup      *BackupService
	Maintenance *MaintenanceService
	Monitoring  *MonitoringService
	Roles       *middleware.RoleMiddleware
	BodyLimit   int
}

// NewApp builds the fiber app serving the API.
func NewApp(deps AppServices) *fiber.App {
	if deps.Roles == nil {
		deps.Roles = middleware.NewRoleMiddleware()
	}
	if deps.BodyLimit == 0 {
		deps.BodyLimit = defaultBodyLimit
	}

	app := fiber.New(fiber.Config{
		AppName:      "LearnHub",
		BodyLimit:    deps.BodyLimit,
		ErrorHandler: handlers.ErrorHandler,
		JSONEncoder:  shared.JSON().Marshal,
		JSONDecoder:  shared.JSON().Unmarshal,
	})
	app.Use(recover.New())
	if deps.Monitoring != nil {
		app.Use(MonitoringMiddleware(deps.Monitoring))
	}
	app.Use(deps.Roles.ResolveRole())

	catalogHandler := handlers.NewCatalogHandler(deps.Catalog)
	progressHandler := handlers.NewProgressHandler(deps.Progress, deps.Catalog)
	contentHandler := handlers.NewContentHandler(deps.Catalog.Handles(), deps.Catalog)
	adminHandler := handlers.NewAdminHandler(deps.Backup, deps.Maintenance)

	app.Get("/ping", ping)
	app.Get("/content/:handle", contentHandler.GetContent)

	v1 := app.Group("/api/v1")
	v1.Get("/ping", ping)

	v1.Get("/courses", catalogHandler.GetCourses)
	v1.Get("/courses/:courseId", catalogHandler.GetCourse)
	v1.Get("/courses/:courseId/progress", progressHandler.GetCourseProgress)
	v1.Get("/courses/:courseId/resume", progressHandler.GetLastPlayed)
	v1.Get("/courses/:courseId/lessons/:lessonId/neighbors", catalogHandler.GetNeighbors)
	v1.Get("/courses/:courseId/lessons/:lessonId/play", progressHandler.GetPlayback)
	v1.Get("/courses/:courseId/lessons/:lessonId/progress", progressHandler.GetLessonProgress)
	v1.Post("/courses/:courseId/lessons/:lessonId/progress", progressHandler.RecordProgress)
	v1.Post("/courses/:courseId/lessons/:lessonId/complete", progressHandler.CompleteLesson)

	v1.Get("/dashboard", progressHandler.GetDashboard)
	v1.Get("/dashboard/activity", progressHandler.GetDailyActivity)

	admin := v1.Group("/admin", deps.Roles.RequireAdmin())
	admin.Post("/courses", catalogHandler.CreateCourse)
	admin.Put("/courses/:courseId", catalogHandler.UpdateCourse)
	admin.Delete("/courses/:courseId", catalogHandler.DeleteCourse)
	admin.Post("/courses/:courseId/import", contentHandler.ImportFolder)

	admin.Post("/courses/:courseId/modules", catalogHandler.CreateModule)
	admin.Post("/courses/:courseId/modules/reorder", catalogHandler.ReorderModules)
	admin.Put("/courses/:courseId/modules/:moduleId", catalogHandler.UpdateModule)
	admin.Delete("/courses/:courseId/modules/:moduleId", catalogHandler.DeleteModule)

	admin.Post("/courses/:courseId/modules/:moduleId/lessons", catalogHandler.CreateLesson)
	admin.Post("/courses/:courseId/modules/:moduleId/lessons/reorder", catalogHandler.ReorderLessons)
	admin.Put("/courses/:courseId/modules/:moduleId/lessons/:lessonId", catalogHandler.UpdateLesson)
	admin.Delete("/courses/:courseId/modules/:moduleId/lessons/:lessonId", catalogHandler.DeleteLesson)
	admin.Post("/courses/:courseId/modules/:moduleId/lessons/:lessonId/content", contentHandler.UploadLessonContent)

	admin.Post("/content/hydrate", catalogHandler.Hydrate)
	admin.Post("/progress/prune", progressHandler.PruneOrphans)

	admin.Get("/backup", adminHandler.ExportBackup)
	admin.Post("/backup", adminHandler.ImportBackup)
	admin.Get("/storage", adminHandler.GetStorageStats)
	admin.Delete("/storage", adminHandler.ClearStorage)

	app.Use(func(c *fiber.Ctx) error {
		return shared.NewNotFoundError(nil, "page not found")
	})

	return app
}

// @Summary Ping
// @Description This endpoint checks the health of the service
// @Tags health
// @Produce json
// @Success 200 {object} shared.Response{data=string}
// @Router /ping [get]
func ping(c *fiber.Ctx) error {
	c.Set(fiber.HeaderCacheControl, "max-age=10")

	return shared.ResponseJSON(c, fiber.StatusOK, "Success", "pong")
}
