package router

import (
	"campus-admin/internal/catalog"
	"campus-admin/internal/config"
	"campus-admin/internal/handler"
	"campus-admin/internal/repository"
	"campus-admin/internal/service"

	"github.com/gofiber/fiber/v2"
	"github.com/hibiken/asynq"
	"github.com/jmoiron/sqlx"
	"github.com/redis/go-redis/v9"
)

func SetupAPIRoutes(
	router fiber.Router,
	db *sqlx.DB,
	redis *redis.Client,
	cfg *config.Config,
) {
	// Initialize repositories
	importRepo := repository.NewImportRepository(db)
	studentRepo := repository.NewStudentRepository(db)

	// Initialize services
	cat := catalog.Student()
	excelService := service.NewExcelService(cat)

	// Initialize Asynq client (optional - only if Redis is available)
	var asynqClient *asynq.Client
	if redis != nil {
		asynqClient = asynq.NewClient(asynq.RedisClientOpt{
			Addr:     cfg.AsynqRedisAddr,
			Password: cfg.AsynqRedisPassword,
			DB:       cfg.AsynqRedisDB,
		})
	}

	// Initialize handlers
	importHandler := handler.NewImportHandler(importRepo, excelService, asynqClient, redis, cat, cfg)
	studentHandler := handler.NewStudentHandler(studentRepo)

	// Import pipeline
	imports := router.Group("/imports")
	imports.Post("/", importHandler.UploadFile)
	imports.Get("/", importHandler.GetSessions)
	imports.Get("/:id", importHandler.GetSessionDetail)
	imports.Get("/:id/rows", importHandler.GetRows)
	imports.Get("/:id/groups", importHandler.GetGroups)
	imports.Put("/:id/mapping", importHandler.UpdateMapping)
	imports.Post("/:id/validate", importHandler.Validate)
	imports.Post("/:id/process", importHandler.ProcessSession)
	imports.Get("/:id/progress", importHandler.GetProgress)
	imports.Get("/:id/errors/report", importHandler.DownloadErrorReport)

	// Template export
	router.Get("/template", importHandler.DownloadTemplate)

	// Students (read side)
	students := router.Group("/students")
	students.Get("/", studentHandler.GetStudents)
	students.Get("/:id", studentHandler.GetStudent)
}
