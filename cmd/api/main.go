package main

import (
	"fmt"
	"log"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/cors"
	"github.com/gofiber/fiber/v2/middleware/logger"
	"github.com/gofiber/fiber/v2/middleware/recover"

	"hrtools/resume-shortlister/internal/config"
	"hrtools/resume-shortlister/internal/handlers"
	"hrtools/resume-shortlister/internal/models"
	"hrtools/resume-shortlister/internal/repositories"
	"hrtools/resume-shortlister/internal/services"
)

func main() {
	// Load configuration
	cfg := config.Load()
	log.Println("✅ Config loaded successfully")

	// Initialize database
	db, err := config.InitDatabase(cfg)
	if err != nil {
		log.Fatalf("❌ Failed to initialize database: %v", err)
	}

	// Initialize repositories
	jobRepo := repositories.NewJobRepository(db)
	resumeRepo := repositories.NewResumeRepository(db)
	evalRepo := repositories.NewEvaluationRepository(db)
	auditRepo := repositories.NewAuditRepository(db)
	log.Println("✅ Repositories initialized successfully")

	// Initialize services
	generator := services.NewJobIDGenerator(jobRepo)
	extractor := services.NewTextExtractor()

	storageService, err := services.NewStorageService(cfg)
	if err != nil {
		log.Fatalf("❌ Failed to initialize blob storage: %v", err)
	}
	log.Println("✅ Blob storage initialized successfully")

	geminiService, err := services.NewGeminiService(cfg)
	if err != nil {
		log.Fatalf("❌ Failed to initialize Gemini AI: %v", err)
	}
	log.Println("✅ Gemini AI initialized successfully")

	evaluatorService := services.NewEvaluatorService(
		jobRepo,
		resumeRepo,
		evalRepo,
		auditRepo,
		storageService,
		extractor,
		geminiService,
	)
	batchEvaluator := services.NewBatchEvaluator(
		jobRepo,
		resumeRepo,
		evaluatorService,
		cfg.Worker.Concurrency,
	)
	summaryService := services.NewSummaryService(jobRepo, resumeRepo, evalRepo)
	log.Println("✅ Services initialized successfully")

	// Initialize handlers
	jobHandler := handlers.NewJobHandler(jobRepo, resumeRepo, auditRepo, generator, storageService)
	resumeHandler := handlers.NewResumeHandler(jobRepo, resumeRepo, auditRepo, storageService, cfg.Storage.MaxFileSize)
	evaluationHandler := handlers.NewEvaluationHandler(jobRepo, evalRepo, auditRepo, evaluatorService, batchEvaluator, summaryService)
	auditHandler := handlers.NewAuditHandler(auditRepo)
	log.Println("✅ Handlers initialized")

	// Create Fiber app
	app := fiber.New(fiber.Config{
		AppName:      "Resume Shortlisting API",
		ReadTimeout:  30 * time.Second,
		WriteTimeout: 30 * time.Second,
		BodyLimit:    int(cfg.Storage.MaxFileSize) * 2,
		ErrorHandler: customErrorHandler,
	})

	// Middleware
	app.Use(recover.New())
	app.Use(logger.New(logger.Config{
		Format:     "[${time}] ${status} - ${latency} ${method} ${path}\n",
		TimeFormat: "2006-01-02 15:04:05",
	}))

	app.Use(cors.New(cors.Config{
		AllowOrigins: "*",
		AllowMethods: "GET,POST,PUT,DELETE,OPTIONS",
		AllowHeaders: "Origin, Content-Type, Accept, Authorization",
	}))

	// Routes
	api := app.Group("/api/v1")

	// Health check
	api.Get("/health", func(c *fiber.Ctx) error {
		return c.JSON(models.SuccessResponse(fiber.Map{
			"status": "healthy",
			"time":   time.Now(),
		}, "OK"))
	})

	// Jobs
	api.Post("/jobs", jobHandler.HandleCreate)
	api.Get("/jobs", jobHandler.HandleList)
	api.Get("/jobs/:jobID", jobHandler.HandleGet)
	api.Put("/jobs/:jobID", jobHandler.HandleUpdate)
	api.Delete("/jobs/:jobID", jobHandler.HandleDelete)
	api.Get("/jobs/:jobID/integrity", jobHandler.HandleIntegrity)

	// Resumes
	api.Post("/resumes/:jobID/upload", resumeHandler.HandleUpload)
	api.Get("/resumes/download/:id", resumeHandler.HandleDownload)
	api.Get("/resumes/:jobID", resumeHandler.HandleList)
	api.Delete("/resumes/job/:jobID/all", resumeHandler.HandleDeleteAll)
	api.Delete("/resumes/:id", resumeHandler.HandleDelete)

	// Evaluations
	api.Post("/evaluations/resume/:id", evaluationHandler.HandleEvaluate)
	api.Post("/evaluations/resume/:id/re-evaluate", evaluationHandler.HandleReevaluate)
	api.Post("/evaluations/job/:jobID/all", evaluationHandler.HandleEvaluateJob)
	api.Get("/evaluations/job/:jobID/summary", evaluationHandler.HandleSummary)
	api.Get("/evaluations/job/:jobID", evaluationHandler.HandleListByJob)
	api.Get("/evaluations/:id", evaluationHandler.HandleGet)
	api.Delete("/evaluations/:id", evaluationHandler.HandleDelete)

	// Audit log
	api.Get("/audit/:entityType/:entityID", auditHandler.HandleList)

	// Root route
	app.Get("/", func(c *fiber.Ctx) error {
		return c.JSON(models.SuccessResponse(fiber.Map{
			"service": "Resume Shortlisting API",
			"version": "1.0.0",
		}, "OK"))
	})

	// Graceful shutdown
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)

	go func() {
		<-quit
		log.Println("\n🛑 Shutting down server...")
		if err := app.Shutdown(); err != nil {
			log.Printf("❌ Server forced to shutdown: %v", err)
		}
	}()

	// Start server
	addr := fmt.Sprintf(":%s", cfg.Server.Port)
	log.Printf("🚀 Server starting on %s\n", addr)

	if err := app.Listen(addr); err != nil {
		log.Fatalf("❌ Failed to start server: %v", err)
	}
}

func customErrorHandler(c *fiber.Ctx, err error) error {
	code := fiber.StatusInternalServerError

	if e, ok := err.(*fiber.Error); ok {
		code = e.Code
	}

	return c.Status(code).JSON(models.ErrorResponse(err.Error()))
}
