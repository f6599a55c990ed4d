package admin

import (
	"context"
	"database/sql"
	"fmt"
	"io"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/golang-migrate/migrate/v4"
	"github.com/golang-migrate/migrate/v4/database/postgres"
	_ "github.com/golang-migrate/migrate/v4/source/file"
	_ "github.com/jackc/pgx/v5/stdlib"
	"github.com/spf13/cobra"
	"github.com/studyhall-ai/studyhall/internal/api/handlers"
	"github.com/studyhall-ai/studyhall/internal/auth"
	"github.com/studyhall-ai/studyhall/internal/config"
	"github.com/studyhall-ai/studyhall/internal/database"
	"github.com/studyhall-ai/studyhall/internal/jobs"
	"github.com/studyhall-ai/studyhall/internal/llm"
	"github.com/studyhall-ai/studyhall/internal/repository"
	"github.com/studyhall-ai/studyhall/internal/server"
	"github.com/studyhall-ai/studyhall/internal/service"
	"github.com/studyhall-ai/studyhall/internal/telemetry"
)

// ServeCmd returns the serve command
func ServeCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Start the API server",
		Long:  "Start the studyhall API server on the specified port",
		RunE:  runServe,
	}

	cmd.Flags().StringP("port", "p", "8080", "Port to listen on")
	cmd.Flags().Bool("no-migrate", false, "Skip automatic database migrations on startup")

	return cmd
}

func runServe(cmd *cobra.Command, args []string) error {
	ctx := context.Background()

	cfg, err := config.Load()
	if err != nil {
		return fmt.Errorf("failed to load config: %w", err)
	}
	if err := cfg.Validate(); err != nil {
		return fmt.Errorf("invalid config: %w", err)
	}
	if !cfg.HasJWT() {
		return fmt.Errorf("JWT_SECRET must be set to serve the API")
	}

	// Initialize Sentry with tracing if the DSN is set
	if cfg.HasSentry() {
		environment := os.Getenv("ENVIRONMENT")
		if environment == "" {
			environment = "development"
		}

		// Default to 10% sampling in production, 100% in development
		sampleRate := 0.1
		if environment == "development" {
			sampleRate = 1.0
		}

		shutdownTelemetry, err := telemetry.Init(telemetry.Config{
			DSN:              cfg.SentryDSN,
			Environment:      environment,
			TracesSampleRate: sampleRate,
			Debug:            cfg.Debug,
		})
		if err != nil {
			log.Printf("telemetry init failed (continuing without tracing): %v", err)
		} else {
			defer shutdownTelemetry()
		}
	}

	portFlag, _ := cmd.Flags().GetString("port")
	if portFlag != "" && portFlag != "8080" {
		cfg.Port = portFlag
	}

	pool, err := database.Connect(ctx, cfg.DatabaseURL)
	if err != nil {
		return fmt.Errorf("failed to connect to database: %w", err)
	}
	defer pool.Close()
	log.Println("connected to database")

	// Run migrations unless --no-migrate flag is set
	noMigrate, _ := cmd.Flags().GetBool("no-migrate")
	if !noMigrate {
		if err := runMigrations(cfg.DatabaseURL); err != nil {
			return fmt.Errorf("failed to run migrations: %w", err)
		}
	}

	userRepo := repository.NewUserRepository(pool)
	courseRepo := repository.NewCourseRepository(pool)
	documentRepo := repository.NewCourseDocumentRepository(pool)
	chunkRepo := repository.NewChunkRepository(pool)
	qaLogRepo := repository.NewQALogRepository(pool)
	verifiedRepo := repository.NewVerifiedAnswerRepository(pool)
	analyticsRepo := repository.NewAnalyticsRepository(pool)
	txRunner := repository.NewTxRunner(pool)

	chatClient, err := newModelClient(ctx, cfg, cfg.Provider)
	if err != nil {
		return fmt.Errorf("failed to create %s client: %w", cfg.Provider, err)
	}
	if closer, ok := chatClient.(io.Closer); ok {
		defer closer.Close()
	}

	// Embeddings may be pinned to a different provider than chat so the
	// stored vectors stay comparable across chat-model switches.
	embedProvider := cfg.ResolvedEmbeddingProvider()
	embedClient := chatClient
	if embedProvider != cfg.Provider {
		embedClient, err = newModelClient(ctx, cfg, embedProvider)
		if err != nil {
			return fmt.Errorf("failed to create %s client: %w", embedProvider, err)
		}
		if closer, ok := embedClient.(io.Closer); ok {
			defer closer.Close()
		}
	}
	log.Printf("model providers ready (chat: %s, embeddings: %s)", cfg.Provider, embedProvider)

	embeddingProcessor := jobs.NewEmbeddingWorker(documentRepo, chunkRepo, embedClient, cfg.EmbedBatchSize, cfg.EmbedRequestsPerMinute)
	embeddingWorker := jobs.NewWorker(embeddingProcessor, time.Duration(cfg.WorkerPollIntervalSecs)*time.Second)
	go embeddingWorker.Start(ctx)
	log.Println("embedding worker started")

	userSvc := service.NewUserService(userRepo)
	retrievalSvc := service.NewRetrievalService(embedClient, chunkRepo, verifiedRepo)
	answerSvc := service.NewAnswerService(retrievalSvc, chatClient, courseRepo, qaLogRepo, service.AnswerConfig{
		RetrievalChunks:   cfg.RetrievalChunks,
		RetrievalVerified: cfg.RetrievalVerified,
		SelfEvalEnabled:   cfg.SelfEvalEnabled,
	})
	correctionSvc := service.NewCorrectionService(qaLogRepo, embedClient, txRunner)
	courseSvc := service.NewCourseService(courseRepo)
	chatLogSvc := service.NewChatLogService(qaLogRepo)
	ingestionSvc := service.NewIngestionService(documentRepo, chunkRepo, courseRepo, service.IngestionConfig{
		MaxChunkChars:           cfg.MaxChunkChars,
		TranscriptWindowSeconds: float64(cfg.TranscriptWindowSeconds),
	})
	analyticsSvc := service.NewAnalyticsService(analyticsRepo, chatClient)

	routerCfg := server.RouterConfig{
		TokenVerifier:    auth.NewTokenVerifier(cfg.JWTSecret),
		UserProvisioner:  userSvc,
		DB:               pool,
		QAHandler:        handlers.NewQAHandler(answerSvc, correctionSvc),
		LogsHandler:      handlers.NewLogsHandler(chatLogSvc),
		DocumentsHandler: handlers.NewDocumentsHandler(ingestionSvc),
		AnalyticsHandler: handlers.NewAnalyticsHandler(analyticsSvc),
		CoursesHandler:   handlers.NewCoursesHandler(courseSvc),
	}

	router := server.NewRouter(routerCfg)

	srv := &http.Server{
		Addr:    ":" + cfg.Port,
		Handler: router,
	}

	go func() {
		log.Printf("starting server on port %s", cfg.Port)
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatalf("server failed: %v", err)
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit
	log.Println("shutting down...")

	embeddingWorker.Stop()

	shutdownCtx, cancel := context.WithTimeout(ctx, 30*time.Second)
	defer cancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("server forced to shutdown: %w", err)
	}

	log.Println("server exited")
	return nil
}

// modelClient is the provider surface the services consume. Both the Gemini
// and OpenAI clients satisfy it.
type modelClient interface {
	EmbedText(ctx context.Context, text string) ([]float32, error)
	GenerateText(ctx context.Context, req llm.GenerationRequest) (string, error)
}

func newModelClient(ctx context.Context, cfg *config.Config, provider string) (modelClient, error) {
	switch provider {
	case config.ProviderGemini:
		client, err := llm.NewGeminiClient(ctx, llm.GeminiConfig{
			APIKey:              cfg.GeminiAPIKey,
			ChatModel:           cfg.GeminiChatModel,
			EmbeddingModel:      cfg.GeminiEmbeddingModel,
			EmbeddingDimensions: cfg.EmbeddingDimensions,
		})
		if err != nil {
			return nil, err
		}
		return client, nil
	case config.ProviderOpenAI:
		client, err := llm.NewOpenAIClient(llm.OpenAIConfig{
			APIKey:              cfg.OpenAIAPIKey,
			ChatModel:           cfg.OpenAIChatModel,
			EmbeddingModel:      cfg.OpenAIEmbeddingModel,
			EmbeddingDimensions: cfg.EmbeddingDimensions,
		})
		if err != nil {
			return nil, err
		}
		return client, nil
	}
	return nil, fmt.Errorf("unknown provider: %s", provider)
}

func runMigrations(databaseURL string) error {
	// Create a sql.DB connection for golang-migrate
	db, err := sql.Open("pgx", databaseURL)
	if err != nil {
		return fmt.Errorf("failed to open database for migrations: %w", err)
	}
	defer db.Close()

	// Create postgres driver instance
	driver, err := postgres.WithInstance(db, &postgres.Config{})
	if err != nil {
		return fmt.Errorf("failed to create migration driver: %w", err)
	}

	// Create migrate instance with file source
	m, err := migrate.NewWithDatabaseInstance(
		"file://migrations",
		"postgres",
		driver,
	)
	if err != nil {
		return fmt.Errorf("failed to create migrate instance: %w", err)
	}

	// Run migrations
	err = m.Up()
	if err != nil && err != migrate.ErrNoChange {
		return fmt.Errorf("failed to apply migrations: %w", err)
	}

	// Get migration version and status
	version, dirty, err := m.Version()
	if err != nil && err != migrate.ErrNilVersion {
		return fmt.Errorf("failed to get migration version: %w", err)
	}

	if err == migrate.ErrNilVersion {
		log.Println("migrations: database is up to date (no migrations applied)")
	} else if dirty {
		return fmt.Errorf("migration version %d is dirty - manual intervention required", version)
	} else if err == migrate.ErrNoChange {
		log.Printf("migrations: database is up to date (version %d)", version)
	} else {
		log.Printf("migrations: applied successfully (version %d)", version)
	}

	return nil
}
