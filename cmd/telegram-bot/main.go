package main

import (
	"context"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"ai-trip-planner/internal/app"
	"ai-trip-planner/internal/config"
	"ai-trip-planner/internal/database"
	"ai-trip-planner/internal/llm"
	"ai-trip-planner/internal/metrics"
	"ai-trip-planner/internal/planner"
	"ai-trip-planner/internal/search"
	"ai-trip-planner/internal/storage"
	"ai-trip-planner/internal/telegram"
)

func main() {
	// 1. Load Configuration
	cfg, err := config.NewFromEnv()
	if err != nil {
		log.Fatalf("Failed to load config: %v", err)
	}

	ctx := context.Background()

	// 2. Initialize Infrastructure (LLM + Database)
	var textGen llm.TextGenerator
	if cfg.LLMProvider == "ollama" {
		textGen = llm.NewOllamaClient(cfg)
	} else {
		geminiClient, err := llm.NewGeminiClient(ctx, cfg)
		if err != nil {
			log.Fatalf("Failed to create Gemini client: %v", err)
		}
		defer geminiClient.Close()
		textGen = geminiClient
	}

	db, err := database.NewDB(cfg.DatabasePath)
	if err != nil {
		log.Fatalf("Failed to initialize database: %v", err)
	}
	defer db.Close()

	// 3. Initialize Repositories
	metricsStore := metrics.NewStore(db.SQL)
	planRepo := planner.NewPlanRepository(db.SQL)
	chatRepo := telegram.NewChatRepository(db.SQL)

	planStore, err := storage.NewPlanStore(cfg.SnapshotPath)
	if err != nil {
		log.Fatalf("Failed to initialize plan store: %v", err)
	}

	// 4. Initialize Search Clients
	poiFinder := search.NewTavilyClient(cfg)

	var flightFinder search.FlightFinder
	var hotelFinder search.HotelFinder
	if cfg.SerpAPIKey != "" {
		serp := search.NewSerpAPIClient(cfg)
		flightFinder = serp
		hotelFinder = serp
	}

	// 5. Initialize Services
	tripPlanner := planner.NewPlanner(textGen, metricsStore, cfg.MaxItineraryDays)
	application := app.NewApp(cfg, textGen, poiFinder, flightFinder, hotelFinder, metricsStore, planStore, tripPlanner, planRepo)

	// 6. Initialize Telegram Bot
	bot, err := telegram.NewBot(cfg, application, metricsStore, chatRepo)
	if err != nil {
		log.Fatalf("Failed to initialize Telegram Bot: %v", err)
	}

	// 7. Start Server with Graceful Shutdown
	port := os.Getenv("PORT")
	if port == "" {
		port = cfg.Port
	}

	bot.RegisterHandlers()

	srv := &http.Server{
		Addr:    ":" + port,
		Handler: nil,
	}

	go func() {
		log.Printf("Telegram Bot Server listening on port %s", port)
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatalf("Server failed: %v", err)
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit
	log.Println("Shutting down server...")

	ctxShutdown, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	if err := srv.Shutdown(ctxShutdown); err != nil {
		log.Fatalf("Server forced to shutdown: %v", err)
	}

	log.Println("Server exiting")
}
