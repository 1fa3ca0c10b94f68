package main

import (
	"context"
	"encoding/json"
	"flag"
	"fmt"
	"log"
	"net/http"
	"os"
	"os/signal"
	"path/filepath"
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
	"ai-trip-planner/internal/stream"
)

func main() {
	if len(os.Args) < 2 {
		printUsage()
		os.Exit(1)
	}

	ctx := context.Background()

	cfg, err := config.NewFromEnv()
	if err != nil {
		log.Fatalf("Failed to load configuration: %v", err)
	}

	switch os.Args[1] {
	case "serve":
		serveCmd := flag.NewFlagSet("serve", flag.ExitOnError)
		port := serveCmd.String("port", cfg.Port, "HTTP listen port")
		serveCmd.Parse(os.Args[2:])

		runServe(ctx, cfg, *port)
	case "plan":
		planCmd := flag.NewFlagSet("plan", flag.ExitOnError)
		message := planCmd.String("message", "", `Trip request, e.g. "3 days in Goa with flights"`)
		planCmd.Parse(os.Args[2:])

		if *message == "" {
			fmt.Println("plan requires -message")
			planCmd.Usage()
			os.Exit(1)
		}
		runPlan(ctx, cfg, *message)
	case "metrics-cleanup":
		cleanupCmd := flag.NewFlagSet("metrics-cleanup", flag.ExitOnError)
		days := cleanupCmd.Int("days", 30, "Keep records for the last N days")
		cleanupCmd.Parse(os.Args[2:])

		runMetricsCleanup(cfg, *days)
	case "snapshots-cleanup":
		cleanupCmd := flag.NewFlagSet("snapshots-cleanup", flag.ExitOnError)
		days := cleanupCmd.Int("days", 30, "Keep snapshots for the last N days")
		cleanupCmd.Parse(os.Args[2:])

		runSnapshotsCleanup(cfg, *days)
	default:
		fmt.Printf("Unknown command: %s\n", os.Args[1])
		printUsage()
		os.Exit(1)
	}
}

func runServe(ctx context.Context, cfg *config.Config, port string) {
	application, cleanup := newApplication(ctx, cfg)
	defer cleanup()

	server := stream.NewServer(application, filepath.Dir(cfg.DatabasePath))
	server.RegisterHandlers()

	sweepCtx, cancelSweep := context.WithCancel(ctx)
	defer cancelSweep()
	server.StartSweeper(sweepCtx)

	srv := &http.Server{
		Addr:    ":" + port,
		Handler: nil,
	}

	go func() {
		log.Printf("Trip planner listening on port %s", port)
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

func runPlan(ctx context.Context, cfg *config.Config, message string) {
	application, cleanup := newApplication(ctx, cfg)
	defer cleanup()

	plan := application.BuildPlan(ctx, "", message)

	data, err := json.MarshalIndent(plan, "", "  ")
	if err != nil {
		log.Fatalf("Failed to encode plan: %v", err)
	}
	fmt.Println(string(data))
}

func runMetricsCleanup(cfg *config.Config, days int) {
	db, err := database.NewDB(cfg.DatabasePath)
	if err != nil {
		log.Fatalf("Failed to initialize database: %v", err)
	}
	defer db.Close()

	affected, err := metrics.NewStore(db.SQL).Cleanup(days)
	if err != nil {
		log.Fatalf("Cleanup failed: %v", err)
	}
	fmt.Printf("Successfully removed %d old metric records.\n", affected)
}

func runSnapshotsCleanup(cfg *config.Config, days int) {
	planStore, err := storage.NewPlanStore(cfg.SnapshotPath)
	if err != nil {
		log.Fatalf("Failed to initialize plan store: %v", err)
	}

	removed, err := planStore.CleanupOlderThan(time.Duration(days) * 24 * time.Hour)
	if err != nil {
		log.Fatalf("Cleanup failed: %v", err)
	}
	fmt.Printf("Successfully removed %d old plan snapshots.\n", removed)
}

// newApplication wires the full planning pipeline from configuration. The
// returned cleanup releases the database and the LLM client.
func newApplication(ctx context.Context, cfg *config.Config) (*app.App, func()) {
	db, err := database.NewDB(cfg.DatabasePath)
	if err != nil {
		log.Fatalf("Failed to initialize database: %v", err)
	}

	textGen, closeGen := newTextGenerator(ctx, cfg)

	metricsStore := metrics.NewStore(db.SQL)
	planRepo := planner.NewPlanRepository(db.SQL)

	planStore, err := storage.NewPlanStore(cfg.SnapshotPath)
	if err != nil {
		log.Fatalf("Failed to initialize plan store: %v", err)
	}

	poiFinder := search.NewTavilyClient(cfg)

	var flightFinder search.FlightFinder
	var hotelFinder search.HotelFinder
	if cfg.SerpAPIKey != "" {
		serp := search.NewSerpAPIClient(cfg)
		flightFinder = serp
		hotelFinder = serp
	}

	tripPlanner := planner.NewPlanner(textGen, metricsStore, cfg.MaxItineraryDays)

	application := app.NewApp(
		cfg,
		textGen,
		poiFinder,
		flightFinder,
		hotelFinder,
		metricsStore,
		planStore,
		tripPlanner,
		planRepo,
	)

	cleanup := func() {
		closeGen()
		db.Close()
	}
	return application, cleanup
}

func newTextGenerator(ctx context.Context, cfg *config.Config) (llm.TextGenerator, func()) {
	if cfg.LLMProvider == "ollama" {
		return llm.NewOllamaClient(cfg), func() {}
	}

	gemini, err := llm.NewGeminiClient(ctx, cfg)
	if err != nil {
		log.Fatalf("Failed to initialize Gemini client: %v", err)
	}
	return gemini, func() { gemini.Close() }
}

func printUsage() {
	fmt.Println("Usage: ai-trip-planner <command> [arguments]")
	fmt.Println("\nCommands:")
	fmt.Println("  serve              Start the HTTP planning server")
	fmt.Println("  plan               Build a single trip plan and print it as JSON")
	fmt.Println("  metrics-cleanup    Remove old metric records")
	fmt.Println("  snapshots-cleanup  Remove old plan snapshot files")
}
