// Package main contains the entrypoint for the AdCraft service.
package main

import (
	"context"
	"errors"
	"flag"
	"log/slog"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/joho/godotenv"
	"golang.org/x/sync/errgroup"

	"github.com/adcraft-ai/adcraft/internal/chat"
	"github.com/adcraft-ai/adcraft/internal/config"
	"github.com/adcraft-ai/adcraft/internal/database"
	"github.com/adcraft-ai/adcraft/internal/gemini"
	"github.com/adcraft-ai/adcraft/internal/imagegen"
	"github.com/adcraft-ai/adcraft/internal/logger"
	"github.com/adcraft-ai/adcraft/internal/maintenance"
	"github.com/adcraft-ai/adcraft/internal/scraper"
	"github.com/adcraft-ai/adcraft/internal/server"
	"github.com/adcraft-ai/adcraft/internal/service"
	"github.com/adcraft-ai/adcraft/internal/storage"

	_ "modernc.org/sqlite"
)

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	exitCode := run(ctx)
	stop() // Ensure context cancellation is signaled before exit
	os.Exit(exitCode)
}

// run initializes all application components (config, logger, db, scraper,
// AI clients, services, HTTP server, scheduler), handles graceful shutdown,
// and returns an exit code (0 for success, 1 for failure).
func run(ctx context.Context) int {
	configPath := flag.String("config", "./config.yaml", "Path to configuration file")
	flag.Parse()

	// .env is optional; environment overrides are picked up by the config
	// loader either way.
	_ = godotenv.Load()

	cfg, err := config.LoadConfig(*configPath)
	if err != nil {
		slog.Error("Failed to load configuration", "path", *configPath, "error", err)
		return 1
	}

	log := logger.NewLogger(cfg.Logger.Level, cfg.Logger.JSON)
	slog.SetDefault(log)
	log.Info("Logger initialized", "level", cfg.Logger.Level, "json", cfg.Logger.JSON)

	db, err := database.NewDB(cfg.Database.Path)
	if err != nil {
		log.Error("Failed to connect to database", "path", cfg.Database.Path, "error", err)
		return 1
	}
	defer database.CloseDB(db)
	store := database.NewStore(db, log)

	var extractor scraper.Extractor
	if cfg.Scraper.UseBrowser {
		extractor = scraper.NewBrowserExtractor(cfg.Scraper.Timeout, cfg.Scraper.UserAgent, log)
	} else {
		extractor = scraper.NewHTTPExtractor(cfg.Scraper.Timeout, cfg.Scraper.UserAgent, cfg.Scraper.MaxBodyLength, log)
	}
	if cfg.Scraper.CacheTTL > 0 {
		extractor = scraper.WithCache(extractor, cfg.Scraper.CacheTTL, log)
	}

	textClient, err := gemini.NewClient(ctx, cfg.Gemini, log)
	if err != nil {
		log.Error("Failed to initialize Gemini client", "error", err)
		return 1
	}

	imageBackend := imagegen.NewClient(cfg.Gemini, log)
	orchestrator := imagegen.NewOrchestrator(imageBackend, cfg.Gemini.GenerationDelay, log)

	media, err := storage.NewFileStore(cfg.Storage.Dir, cfg.Storage.BaseURL, log)
	if err != nil {
		log.Error("Failed to initialize media storage", "dir", cfg.Storage.Dir, "error", err)
		return 1
	}

	analyzer := service.NewAnalysisService(store, extractor, textClient, log)
	generator := service.NewGenerationService(store, orchestrator, media, log)
	chatSvc := chat.NewService(store, textClient, analyzer, generator, log)

	srv := server.New(cfg.Server, store, analyzer, generator, chatSvc, media, log)

	sched, err := maintenance.NewScheduler(store, cfg.Tasks, log)
	if err != nil {
		log.Error("Failed to create maintenance scheduler", "error", err)
		return 1
	}
	if err := sched.Start(); err != nil {
		log.Error("Failed to start maintenance scheduler", "error", err)
		return 1
	}
	defer func() {
		if err := sched.Stop(); err != nil {
			log.Error("Failed to stop maintenance scheduler", "error", err)
		}
	}()

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		return srv.Run(gctx)
	})

	log.Info("AdCraft started")
	runErr := g.Wait()
	log.Info("Run loop finished. Initiating shutdown...")

	if runErr != nil && !errors.Is(runErr, context.Canceled) {
		log.Error("Service stopped due to error", "error", runErr)
		time.Sleep(time.Second)
		return 1
	}

	log.Info("Service stopped gracefully.")
	time.Sleep(time.Second)
	return 0
}
