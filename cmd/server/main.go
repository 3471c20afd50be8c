package main

import (
	"context"
	"database/sql"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/adaptor"
	"github.com/gofiber/fiber/v2/middleware/cors"
	"github.com/gofiber/fiber/v2/middleware/logger"
	"github.com/gofiber/fiber/v2/middleware/recover"
	"github.com/hibiken/asynq"
	"github.com/joho/godotenv"
	_ "github.com/lib/pq"
	config "github.com/maheshrc27/autopost/configs"
	"github.com/maheshrc27/autopost/internal/api/handlers"
	"github.com/maheshrc27/autopost/internal/api/middleware"
	job "github.com/maheshrc27/autopost/internal/jobs"
	"github.com/maheshrc27/autopost/internal/queue"
	"github.com/maheshrc27/autopost/internal/repository"
	"github.com/maheshrc27/autopost/internal/service"
	"github.com/maheshrc27/autopost/pkg/utils"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/robfig/cron"
)

func main() {
	if len(os.Args) > 1 && os.Args[1] == "genkey" {
		genkey()
		return
	}

	slog.SetDefault(slog.New(slog.NewJSONHandler(os.Stdout, nil)))

	if err := godotenv.Load(); err != nil {
		slog.Info("Warning: Failed to load environment variables", "error", err)
	}

	cfg, err := config.LoadConfig(os.Getenv("CONFIG_FILE"))
	if err != nil {
		slog.Error("Failed to load configuration", "error", err)
		os.Exit(1)
	}

	ctx := context.Background()

	var (
		db             *sql.DB
		credentialRepo repository.CredentialRepository
		historyRepo    repository.PostingHistoryRepository
	)
	if cfg.PostgresURI != "" {
		db, err = sql.Open("postgres", cfg.PostgresURI)
		if err != nil {
			slog.Error("Failed to connect to database", "error", err)
			os.Exit(1)
		}
		if err := db.Ping(); err != nil {
			slog.Error("Database is unreachable", "error", err)
			os.Exit(1)
		}
		if err := repository.Migrate(ctx, db); err != nil {
			slog.Error("Failed to migrate database", "error", err)
			os.Exit(1)
		}
		credentialRepo = repository.NewCredentialRepository(db)
		historyRepo = repository.NewPostingHistoryRepository(db)
	} else {
		slog.Warn("POSTGRES_URI not set, credentials and history are kept in memory")
		credentialRepo = repository.NewMemoryCredentialRepository()
		historyRepo = repository.NewMemoryPostingHistoryRepository()
	}

	httpClient := &http.Client{Timeout: cfg.Publish.Timeout}

	credentialService := service.NewCredentialService(*cfg, credentialRepo)
	facebookService := service.NewFacebookService(*cfg, httpClient)
	instagramService := service.NewInstagramService(*cfg, httpClient)
	youtubeService := service.NewYoutubeService(*cfg, httpClient, credentialService)
	publishService := service.NewPublishService(*cfg, credentialService,
		service.NewPublishMetrics(prometheus.DefaultRegisterer),
		facebookService,
		instagramService,
		service.NewLinkedinService(),
		service.NewTiktokService(),
		youtubeService,
	)
	trackerService := service.NewTrackerService(historyRepo)
	contentService := service.NewContentService()

	var store service.ObjectStore
	if cfg.R2.BucketName != "" {
		r2Client, err := service.NewR2Client(ctx, *cfg)
		if err != nil {
			slog.Error("Failed to create object storage client", "error", err)
			os.Exit(1)
		}
		store = r2Client
	}
	mediaService := service.NewMediaService(*cfg, store)

	redisConn := asynq.RedisClientOpt{Addr: cfg.RedisURI}
	client := asynq.NewClient(redisConn)
	defer client.Close()

	app := fiber.New(fiber.Config{
		ReadTimeout:  10 * time.Minute,
		WriteTimeout: 10 * time.Minute,
		BodyLimit:    100 * 1024 * 1024, // 100 MB
		ErrorHandler: func(c *fiber.Ctx, err error) error {
			slog.Error("request failed", "path", c.Path(), "error", err)
			return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": err.Error()})
		},
	})

	app.Use(recover.New())
	app.Use(logger.New())
	app.Use(cors.New(cors.Config{
		AllowOriginsFunc: func(origin string) bool {
			return true
		},
		AllowMethods:     "GET,POST,PUT,DELETE,OPTIONS",
		AllowHeaders:     "Origin, Content-Type, Accept, Authorization, X-API-Key",
		AllowCredentials: true,
		MaxAge:           3600,
	}))

	app.Get("/healthz", func(c *fiber.Ctx) error {
		return c.JSON(fiber.Map{"status": "ok"})
	})
	app.Get("/metrics", adaptor.HTTPHandler(promhttp.Handler()))

	authMiddleware := middleware.NewAuthMiddleware(*cfg)

	auth := handlers.NewAuthHandler(*cfg, authMiddleware)
	app.Post("/login", auth.Login)
	app.Post("/logout", auth.Logout)

	platform := handlers.NewPlatformHandler(credentialService, youtubeService, *cfg)
	app.Get("/auth/youtube", authMiddleware.AuthMiddleware(), platform.ConnectYoutube)
	app.Get("/auth/youtube/callback", platform.YoutubeCallback)

	api := app.Group("/api")
	api.Use(authMiddleware.AuthMiddleware())

	publish := handlers.NewPublishHandler(publishService, trackerService, client)
	api.Post("/publish", publish.Publish)

	credentials := handlers.NewCredentialHandler(credentialService)
	api.Get("/credentials", credentials.ListCredentials)
	api.Put("/credentials/:platform", credentials.UpdateCredential)

	content := handlers.NewContentHandler(contentService)
	api.Post("/content/generate", content.Generate)

	media := handlers.NewMediaHandler(mediaService)
	api.Post("/media", media.Upload)

	history := handlers.NewHistoryHandler(trackerService)
	api.Get("/history", history.ListHistory)
	api.Get("/stats", history.Stats)

	api.Get("/youtube/channel", platform.YoutubeChannel)

	// cron jobs
	refreshTokenJob := job.NewTokenRefreshJob(credentialService, youtubeService)

	c := cron.New()
	if err := refreshTokenJob.Register(c); err != nil {
		slog.Error("Failed to register token refresh job", "error", err)
		os.Exit(1)
	}
	c.Start()
	defer c.Stop()

	// queue
	queueW := queue.NewQueue(publishService, trackerService)
	server := asynq.NewServer(redisConn, asynq.Config{
		Concurrency: 10,
	})

	go func() {
		mux := asynq.NewServeMux()
		mux.HandleFunc(queue.TaskTypePublishBatch, queueW.HandlePublishTask)

		slog.Info("Starting the Asynq server...")
		if err := server.Run(mux); err != nil {
			slog.Error("Could not start Asynq server", "error", err)
		}
	}()

	go func() {
		if err := app.Listen(":" + cfg.Port); err != nil {
			slog.Error("Failed to start server", "error", err)
			os.Exit(1)
		}
	}()
	slog.Info(fmt.Sprintf("Server is running on http://localhost:%s", cfg.Port))

	gracefulShutdown(app, server, db)
}

// genkey prints a random 32 character value usable as API_KEY or SECRET_KEY.
func genkey() {
	key, err := utils.GenerateRandomKey(24)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Failed to generate key: %v\n", err)
		os.Exit(1)
	}
	fmt.Fprintln(os.Stdout, key)
}

func closeDB(db *sql.DB) {
	if db == nil {
		return
	}
	fmt.Fprint(os.Stdout, "Closing database connection... ")
	if err := db.Close(); err != nil {
		fmt.Fprintf(os.Stderr, "Failed to close database: %v", err)
		return
	}
	fmt.Fprintln(os.Stdout, "Done")
}

func gracefulShutdown(app *fiber.App, server *asynq.Server, db *sql.DB) {
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, os.Interrupt, syscall.SIGTERM)

	<-quit
	slog.Info("Shutting down server...")

	if err := app.Shutdown(); err != nil {
		slog.Error("Failed to shut down server", "error", err)
	}
	server.Shutdown()

	closeDB(db)
	slog.Info("Server shutdown complete.")
}
