package main

import (
    "context"
    "fmt"
    "os"
    "os/signal"
    "syscall"
    "time"

    "github.com/bilgisen/newsdigest/internal/ai"
    "github.com/bilgisen/newsdigest/internal/api"
    "github.com/bilgisen/newsdigest/internal/cache"
    "github.com/bilgisen/newsdigest/internal/config"
    "github.com/bilgisen/newsdigest/internal/cycle"
    "github.com/bilgisen/newsdigest/internal/feed"
    "github.com/bilgisen/newsdigest/internal/logger"
    "github.com/bilgisen/newsdigest/internal/middleware"
    "github.com/bilgisen/newsdigest/internal/session"
    "github.com/bilgisen/newsdigest/internal/storage"
    "github.com/bilgisen/newsdigest/web"
    "github.com/gofiber/fiber/v2"
    "github.com/gofiber/fiber/v2/middleware/recover"
)

func main() {
    // Load and validate configuration
    cfg, err := config.Load()
    if err != nil {
        fmt.Fprintf(os.Stderr, "Invalid configuration: %v\n", err)
        os.Exit(1)
    }

    // Initialize logger
    if err := logger.Init(logger.Config{
        Level:  cfg.LogLevel,
        Output: cfg.LogFile,
        Pretty: !cfg.IsProduction(),
    }); err != nil {
        panic(err)
    }

    log := logger.Get()
    log.Info().Str("env", cfg.Env).Msg("Starting application...")

    loc, err := cfg.Location()
    if err != nil {
        log.Fatal().Err(err).Str("time_zone", cfg.TimeZone).Msg("Invalid time zone")
    }

    // Session store: Redis when configured, process memory otherwise
    var store cache.Store
    if cfg.RedisURL != "" {
        redisClient, err := cache.NewRedisClient(cfg.RedisURL, cfg.RedisPrefix)
        if err != nil {
            log.Fatal().Err(err).Msg("Failed to initialize Redis client")
        }
        store = redisClient
    } else {
        log.Warn().Msg("REDIS_URL not set, sessions are kept in memory")
        store = cache.NewMemoryStore()
    }
    defer func() {
        log.Info().Msg("Closing session store...")
        if err := store.Close(); err != nil {
            log.Error().Err(err).Msg("Error closing session store")
        }
    }()

    archive, err := storage.NewArchive(context.Background(), cfg)
    if err != nil {
        log.Fatal().Err(err).Str("backend", cfg.ArchiveBackend).Msg("Failed to initialize cycle archive")
    }
    if archive != nil {
        log.Info().Str("backend", cfg.ArchiveBackend).Msg("Cycle archive enabled")
    }

    // Pipeline
    processor := feed.NewProcessor(
        feed.NewFetcher(cfg.CORSProxy),
        feed.NewParser(cfg.MaxItemsPerFeed, loc),
    )
    gemini := ai.NewGeminiClient(cfg.AIApiKey, cfg.AIModel, cfg.AIBaseURL, time.Duration(cfg.AITimeout)*time.Second)
    runner := cycle.NewRunner(processor, gemini)

    manager := session.NewManager(session.Options{
        Store:        store,
        Runner:       runner,
        Archive:      archive,
        DefaultFeeds: cfg.DefaultFeeds,
        TTL:          cfg.SessionTTL,
    })

    // Create Fiber app with custom config
    app := fiber.New(fiber.Config{
        ReadTimeout:  cfg.HTTPTimeout,
        WriteTimeout: cfg.HTTPTimeout,
        IdleTimeout:  120 * time.Second,
        ErrorHandler: middleware.ErrorHandler,
    })

    // Global middleware
    app.Use(recover.New()) // Recover from panics
    app.Use(middleware.RequestLogger())

    api.SetupRoutes(app, api.NewHandlers(manager, archive), api.RouteConfig{
        Session: middleware.SessionConfig{
            TTL:    cfg.SessionTTL,
            Secure: cfg.IsProduction(),
        },
        AdminKey: cfg.AdminAPIKey,
        Static:   web.FS(),
    })

    // Start server in a goroutine
    go func() {
        log.Info().Str("port", cfg.Port).Msg("Starting server")
        if err := app.Listen(":" + cfg.Port); err != nil {
            log.Fatal().Err(err).Msg("Server error")
        }
    }()

    // Wait for interrupt signal to gracefully shut down the server
    quit := make(chan os.Signal, 1)
    signal.Notify(quit, os.Interrupt, syscall.SIGTERM)
    <-quit

    log.Info().Msg("Shutting down server...")

    // Create a deadline for graceful shutdown
    ctx, cancel := context.WithTimeout(context.Background(), cfg.ShutdownTimeout)
    defer cancel()

    if err := app.ShutdownWithContext(ctx); err != nil {
        log.Error().Err(err).Msg("Server forced to shutdown")
    }

    // Running cycles are not cancelled; give them what is left of the deadline.
    if err := manager.Wait(ctx); err != nil {
        log.Warn().Err(err).Msg("Shutdown deadline reached with cycles still running")
    }

    log.Info().Msg("Server exited properly")
}
