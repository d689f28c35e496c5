package main

import (
	"context"
	"log"

	"droitis-backend/config"
	"droitis-backend/handlers"
	"droitis-backend/llm"
	"droitis-backend/repository"
	"droitis-backend/schema"
	"droitis-backend/service"
	"droitis-backend/storage"

	"github.com/gin-gonic/gin"
	"github.com/google/generative-ai-go/genai"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/joho/godotenv"
	"google.golang.org/api/option"
)

func main() {
	// Load .env file from project root (relative to cmd/server/)
	if err := godotenv.Load(); err != nil {
		if err := godotenv.Load("../../.env"); err != nil {
			log.Printf("Warning: No .env file found, using environment variables")
		}
	}

	cfg, err := config.FromEnv()
	if err != nil {
		log.Fatal("Invalid configuration: ", err)
	}

	db, err := initPostgres(cfg)
	if err != nil {
		log.Fatal("Failed to initialize Postgres: ", err)
	}
	defer db.Close()

	// Initialize the artifact store for failure debugging dumps
	artifactStore, err := storage.NewStoreFromEnv()
	if err != nil {
		log.Fatalf("Failed to initialize artifact store: %v", err)
	}
	log.Println("Artifact store initialized")

	// Compile the canonical answer schema once; it is read-only afterwards
	answerSchema, err := schema.Load()
	if err != nil {
		log.Fatal("Failed to load answer schema: ", err)
	}
	log.Println("Answer schema compiled")

	// Load the codification reference table into memory
	noteRepo := repository.NewCodificationNoteRepository(db)
	notes, err := noteRepo.ListAll(context.Background())
	if err != nil {
		log.Printf("Warning: Failed to load codification notes: %v. Continuing without them.", err)
	}
	resolver := service.NewCodificationResolver(notes)
	log.Printf("Codification resolver loaded with %d notes", len(notes))

	geminiClient, err := initGemini(cfg)
	if err != nil {
		log.Fatal("Failed to initialize Gemini: ", err)
	}

	invoker := llm.NewGemini(geminiClient, cfg.GeminiModel, answerSchema.ResponseSchema(), cfg.Retry)

	caseReader := service.NewCaseReaderService(
		service.WithInvoker(invoker),
		service.WithSchema(answerSchema),
		service.WithCodification(resolver),
		service.WithArtifactStore(artifactStore),
		service.WithConfig(cfg),
	)

	caseHandler := handlers.NewCaseHandler(caseReader)

	// Setup Gin router
	r := gin.Default()

	// Health check endpoint
	r.GET("/health", func(c *gin.Context) {
		c.JSON(200, gin.H{
			"status": "ok",
		})
	})

	// API routes
	api := r.Group("/api")
	{
		api.POST("/cases/analyze", caseHandler.AnalyzeCase)
	}

	log.Printf("Server starting on port %s", cfg.Port)
	if err := r.Run(":" + cfg.Port); err != nil {
		log.Fatal("Failed to start server: ", err)
	}
}

func initPostgres(cfg *config.Config) (*pgxpool.Pool, error) {
	pool, err := pgxpool.New(context.Background(), cfg.DatabaseURL)
	if err != nil {
		return nil, err
	}

	if err := pool.Ping(context.Background()); err != nil {
		return nil, err
	}

	log.Println("Postgres connection established")
	return pool, nil
}

func initGemini(cfg *config.Config) (*genai.Client, error) {
	if cfg.GeminiAPIKey == "" {
		log.Println("Warning: GEMINI_API_KEY not set")
	}

	client, err := genai.NewClient(context.Background(), option.WithAPIKey(cfg.GeminiAPIKey))
	if err != nil {
		return nil, err
	}

	log.Println("Gemini client initialized")
	return client, nil
}
