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

	"talenthub/match-engine/internal/config"
	"talenthub/match-engine/internal/handlers"
	"talenthub/match-engine/internal/repositories"
	"talenthub/match-engine/internal/scoring"
	"talenthub/match-engine/internal/services"
)

func main() {
	// Load configuration
	cfg := config.Load()
	log.Println("✅ Config loaded successfully")

	scoringCfg := scoring.DefaultConfig()
	if err := scoringCfg.Validate(); err != nil {
		log.Fatalf("❌ Invalid scoring configuration: %v", err)
	}

	// Initialize database
	db, err := config.InitDatabase(cfg)
	if err != nil {
		log.Fatalf("❌ Failed to initialize database: %v", err)
	}

	// Initialize repositories
	candidateRepo := repositories.NewCandidateRepository(db)
	jobRepo := repositories.NewJobRepository(db)
	matchRepo := repositories.NewMatchRepository(db)
	log.Println("✅ Repositories initialized successfully")

	// Initialize Gemini AI (optional — the engine degrades to templated
	// summaries and the static skill taxonomy without it)
	var geminiService services.GeminiService
	if cfg.Gemini.APIKey != "" {
		geminiService, err = services.NewGeminiService(cfg.Gemini.APIKey)
		if err != nil {
			log.Fatalf("❌ Failed to initialize Gemini AI: %v", err)
		}
		log.Println("✅ Gemini AI initialized successfully")
	} else {
		log.Println("ℹ️  GEMINI_API_KEY not set; using templated summaries only")
	}

	// Related-skill resolution: vector index when configured, static taxonomy
	// otherwise
	resolver := services.NewStaticResolver()
	if cfg.Qdrant.Enabled && geminiService != nil {
		skillIndex, err := services.NewSkillIndexService(
			cfg.Qdrant.URL,
			cfg.Qdrant.APIKey,
			cfg.Qdrant.Collection,
		)
		if err != nil {
			log.Fatalf("❌ Failed to initialize Qdrant: %v", err)
		}
		if err := skillIndex.InitCollection(); err != nil {
			log.Fatalf("❌ Failed to initialize Qdrant collection: %v", err)
		}
		resolver = services.NewVectorResolver(skillIndex, geminiService)
		log.Println("✅ Qdrant skill index initialized successfully")
	}

	// Narrative generation with templated fallback
	var summarizer services.Summarizer
	if geminiService != nil {
		summarizer = services.NewGeminiSummarizer(geminiService, cfg.Gemini.RetryMaxAttempts)
	}
	narrative := services.NewNarrativeService(summarizer, scoringCfg, cfg.Matching.SummaryTimeout)

	// Initialize the matching engine
	matcherService := services.NewMatcherService(
		candidateRepo,
		jobRepo,
		matchRepo,
		resolver,
		narrative,
		scoringCfg,
		cfg.Matching,
	)
	log.Println("✅ Matcher service initialized")

	// Initialize handlers
	matchHandler := handlers.NewMatchHandler(matcherService, matchRepo)
	log.Println("✅ Handlers initialized")

	// Create Fiber app
	app := fiber.New(fiber.Config{
		AppName:      "Job Match Engine API",
		ReadTimeout:  30 * time.Second,
		WriteTimeout: 30 * time.Second,
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
		AllowMethods: "GET,POST,PATCH,DELETE,OPTIONS",
		AllowHeaders: "Origin, Content-Type, Accept, Authorization",
	}))

	// Routes
	api := app.Group("/api/v1")

	// Health check
	api.Get("/health", func(c *fiber.Ctx) error {
		return c.JSON(fiber.Map{
			"status": "healthy",
			"time":   time.Now(),
		})
	})

	// API endpoints
	api.Get("/candidates/:candidate_id/matches", matchHandler.HandleListMatches)
	api.Get("/candidates/:candidate_id/matches/:job_id", matchHandler.HandleGetMatch)
	api.Post("/candidates/:candidate_id/matches/:job_id/refresh", matchHandler.HandleRequestRefresh)
	api.Patch("/candidates/:candidate_id/matches/:job_id/status", matchHandler.HandleUpdateStatus)

	// Root route
	app.Get("/", func(c *fiber.Ctx) error {
		return c.JSON(fiber.Map{
			"message": "Job Match Engine API",
			"version": "1.0.0",
			"endpoints": []string{
				"GET /api/v1/candidates/:candidate_id/matches",
				"GET /api/v1/candidates/:candidate_id/matches/:job_id",
				"POST /api/v1/candidates/:candidate_id/matches/:job_id/refresh",
				"PATCH /api/v1/candidates/:candidate_id/matches/:job_id/status",
			},
		})
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

	return c.Status(code).JSON(fiber.Map{
		"error": err.Error(),
		"code":  code,
	})
}
