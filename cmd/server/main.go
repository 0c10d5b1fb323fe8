package main

import (
	"database/sql"
	"fmt"
	"log"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/cors"
	"github.com/gofiber/fiber/v2/middleware/logger"
	"github.com/hibiken/asynq"
	"github.com/joho/godotenv"
	_ "github.com/lib/pq"
	"github.com/robfig/cron"

	config "github.com/talentwire/socialcast/configs"
	"github.com/talentwire/socialcast/internal/api/handlers"
	"github.com/talentwire/socialcast/internal/api/middleware"
	job "github.com/talentwire/socialcast/internal/jobs"
	"github.com/talentwire/socialcast/internal/provider"
	"github.com/talentwire/socialcast/internal/queue"
	"github.com/talentwire/socialcast/internal/repository"
	"github.com/talentwire/socialcast/internal/service"
)

func main() {
	if err := godotenv.Load(); err != nil {
		log.Println("Warning: Failed to load environment variables", err)
	}

	cfg := config.LoadConfig()

	db, err := sql.Open("postgres", cfg.PostgresURI)
	if err != nil {
		log.Fatalf("Failed to connect to database: %v", err)
	}
	defer closeDB(db)

	if err := db.Ping(); err != nil {
		log.Fatalf("Database is unreachable: %v", err)
	}

	redisConn := asynq.RedisClientOpt{Addr: cfg.RedisURI}
	client := asynq.NewClient(redisConn)
	defer client.Close()

	app := fiber.New(fiber.Config{
		ReadTimeout:  2 * time.Minute,
		WriteTimeout: 2 * time.Minute,
		BodyLimit:    100 * 1024 * 1024, // 100 MB
		ErrorHandler: func(c *fiber.Ctx, err error) error {
			log.Printf("Error: %v", err)
			return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": err.Error()})
		},
	})

	app.Use(logger.New())
	app.Use(cors.New(cors.Config{
		AllowOriginsFunc: func(origin string) bool {
			return true
		},
		AllowMethods:     "GET,POST,PUT,DELETE,OPTIONS",
		AllowHeaders:     "Origin, Content-Type, Accept, Authorization",
		AllowCredentials: true,
		MaxAge:           3600,
	}))

	publicationRepo := repository.NewPublicationRepository(db)
	socialAccountRepo := repository.NewSocialAccountRepository(db)
	contentRepo := repository.NewContentRepository(db)
	tenantRepo := repository.NewTenantRepository(db)
	auditRepo := repository.NewAuditRepository(db)
	mediaAssetRepo := repository.NewMediaAssetRepository(db)

	registry := provider.NewRegistry(*cfg, socialAccountRepo)

	connectService := service.NewConnectService(*cfg, socialAccountRepo, auditRepo)
	publishService := service.NewPublishService(publicationRepo, socialAccountRepo, contentRepo, tenantRepo, auditRepo, registry)
	pollerService := service.NewPollerService(publicationRepo, publishService)
	publicationService := service.NewPublicationService(publicationRepo, contentRepo, socialAccountRepo)
	mediaService := service.NewMediaService(*cfg, mediaAssetRepo)

	authMiddleware := middleware.NewAuthMiddleware(*cfg)

	connect := handlers.NewConnectHandler(connectService, *cfg)
	// The callback is authorized by the signed state alone; only the
	// initiate route needs a session.
	app.Get("/connect/:provider/callback", connect.CallbackHandler)
	app.Get("/connect/:provider", authMiddleware.AuthMiddleware(), connect.AddSocialAccount)

	publish := handlers.NewPublishHandler(publishService, pollerService)
	internal := app.Group("/internal")
	internal.Use(authMiddleware.CronMiddleware())
	internal.Post("/poll", publish.RunPoll)
	internal.Get("/poll", publish.PollStatus)

	api := app.Group("/api")
	api.Use(authMiddleware.AuthMiddleware())

	publication := handlers.NewPublicationHandler(publicationService, client)
	api.Post("/publications", publication.CreatePublication)
	api.Get("/publications", publication.ListPublications)
	api.Get("/publications/:id", publication.PublicationInfo)
	api.Post("/publications/:id/publish", publish.PublishNow)

	media := handlers.NewMediaHandler(mediaService)
	api.Post("/media", media.UploadMedia)

	// social accounts api routes
	api.Get("/accounts", connect.ListSocialAccounts)
	api.Post("/accounts/:id/disconnect", connect.DisconnectSocialAccount)

	// cron jobs
	refreshTokenJob := job.NewTokenRefreshJob(socialAccountRepo, registry)

	c := cron.New()
	c.AddFunc("@every 00h10m00s", refreshTokenJob.RefreshTokens)
	c.Start()

	queueW := queue.NewWorker(publishService)

	go func() {
		server := asynq.NewServer(redisConn, asynq.Config{
			Concurrency: 10,
		})

		mux := asynq.NewServeMux()
		mux.HandleFunc(queue.TaskTypePublishAttempt, queueW.HandlePublishAttemptTask)

		log.Println("Starting the Asynq server...")
		if err := server.Run(mux); err != nil {
			log.Fatalf("Could not start Asynq server: %v", err)
		}
	}()

	go func() {
		if err := app.Listen(":3000"); err != nil {
			log.Fatalf("Failed to start server: %v", err)
		}
	}()
	log.Println("Server is running on http://localhost:3000")

	gracefulShutdown(app, db)
}

func closeDB(db *sql.DB) {
	fmt.Fprint(os.Stdout, "Closing database connection... ")
	if err := db.Close(); err != nil {
		fmt.Fprintf(os.Stderr, "Failed to close database: %v", err)
		return
	}
	fmt.Fprintln(os.Stdout, "Done")
}

func gracefulShutdown(app *fiber.App, db *sql.DB) {
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, os.Interrupt, syscall.SIGTERM)

	<-quit
	log.Println("Shutting down server...")

	if err := app.Shutdown(); err != nil {
		log.Fatalf("Failed to shut down server: %v", err)
	}

	closeDB(db)
	log.Println("Server shutdown complete.")
}
