package admin

import (
	"context"
	"fmt"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	openai "github.com/sashabaranov/go-openai"
	"github.com/spf13/cobra"

	"github.com/poliq-ai/poliq/internal/config"
	"github.com/poliq-ai/poliq/internal/domain"
	"github.com/poliq-ai/poliq/internal/embedding"
	"github.com/poliq-ai/poliq/internal/jobs"
	"github.com/poliq-ai/poliq/internal/llm"
	"github.com/poliq-ai/poliq/internal/registry"
	"github.com/poliq-ai/poliq/internal/retrieval"
	"github.com/poliq-ai/poliq/internal/server"
	"github.com/poliq-ai/poliq/internal/service"
	"github.com/poliq-ai/poliq/internal/session"
	"github.com/poliq-ai/poliq/internal/storage"
	"github.com/poliq-ai/poliq/internal/telemetry"
)

const sweepInterval = 10 * time.Minute

// ServeCmd returns the serve command
func ServeCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Start the API server",
		Long:  "Start the poliq API server on the specified port",
		RunE:  runServe,
	}

	cmd.Flags().StringP("port", "p", "8080", "Port to listen on")
	cmd.Flags().Bool("no-sync", false, "Skip pulling corpus artifacts from S3 on startup")

	return cmd
}

func runServe(cmd *cobra.Command, args []string) error {
	ctx := context.Background()

	cfg, err := config.Load()
	if err != nil {
		return fmt.Errorf("failed to load config: %w", err)
	}

	// Initialize Sentry with tracing if SENTRY_DSN is set
	if dsn := os.Getenv("SENTRY_DSN"); dsn != "" {
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
			DSN:              dsn,
			Environment:      environment,
			TracesSampleRate: sampleRate,
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

	// Pull prebuilt corpus artifacts before the registry loads.
	noSync, _ := cmd.Flags().GetBool("no-sync")
	if cfg.HasS3() && !noSync {
		s3Client, err := storage.NewS3Client(ctx, storage.S3ClientConfig{
			Endpoint:        cfg.S3Endpoint,
			Region:          cfg.S3Region,
			AccessKeyID:     cfg.S3AccessKey,
			SecretAccessKey: cfg.S3SecretKey,
			Bucket:          cfg.S3Bucket,
			UsePathStyle:    true,
		})
		if err != nil {
			return fmt.Errorf("failed to create S3 client: %w", err)
		}
		if err := s3Client.SyncCorpora(ctx, cfg.StorageDir); err != nil {
			return fmt.Errorf("failed to sync corpus artifacts: %w", err)
		}
	}

	reg, err := registry.Load(cfg.StorageDir)
	if err != nil {
		return fmt.Errorf("failed to load corpus registry: %w", err)
	}
	log.Printf("loaded %d corpora from %s", reg.Len(), cfg.StorageDir)

	// The embedding provider initializes on the first query, not at
	// startup, so the server comes up even while the provider is
	// misconfigured or unreachable.
	encoder := embedding.NewLazy(embedding.DefaultDimensions, func() (embedding.Encoder, error) {
		if !cfg.HasOpenAI() {
			return nil, embedding.ErrNoAPIKey
		}
		return embedding.NewClientWithConfig(embedding.Config{
			APIKey: cfg.OpenAIAPIKey,
			Model:  openai.EmbeddingModel(cfg.EmbeddingModel),
		}), nil
	})

	engine := retrieval.New(reg, encoder, retrieval.Config{
		TopKPerCorpus:    cfg.TopKPerCorpus,
		MaxScopedCorpora: cfg.MaxScopedCorpora,
	})

	sessions, err := session.Open(cfg.SessionDBPath)
	if err != nil {
		return fmt.Errorf("failed to open session store: %w", err)
	}
	defer sessions.Close()

	sweeper := jobs.NewWorker("session sweeper", jobs.NewSessionSweeper(sessions, cfg.SessionTTL), sweepInterval)
	go sweeper.Start(ctx)

	var chat service.ChatModel
	if cfg.HasOpenAI() {
		chat = llm.NewClient(cfg.OpenAIAPIKey, cfg.ChatModel)
	} else {
		chat = &noOpChat{}
		log.Println("OPENAI_API_KEY not set: /ask will report the answer service as unavailable")
	}

	answerSvc := service.NewAnswerService(engine, chat, sessions, reg)

	router := server.NewRouter(server.Dependencies{
		AskService: answerSvc,
		Catalog:    reg,
	})

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

	sweeper.Stop()

	shutdownCtx, cancel := context.WithTimeout(ctx, 30*time.Second)
	defer cancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("server forced to shutdown: %w", err)
	}

	log.Println("server exited")
	return nil
}

type noOpChat struct{}

func (c *noOpChat) Complete(ctx context.Context, prompt string) (string, error) {
	return "", domain.ErrAnswerNotConfigured
}
