package main

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"

	"parsaban/internal/api"
	"parsaban/internal/api/handlers"
	"parsaban/internal/config"
	"parsaban/internal/engine"
	"parsaban/internal/infrastructure/cache"
	"parsaban/internal/infrastructure/database"
	"parsaban/internal/infrastructure/database/repository"
	"parsaban/internal/update"
	"parsaban/pkg/logger"
)

func main() {
	cfg, err := config.LoadDefault()
	if err != nil {
		fmt.Fprintf(os.Stderr, "Failed to load config: %v\n", err)
		os.Exit(1)
	}

	var log *logger.Logger
	if cfg.App.Environment == "production" {
		log = logger.NewProduction()
	} else {
		log = logger.NewDevelopment()
	}
	logger.SetGlobal(log)

	log.Info().
		Str("app", cfg.App.Name).
		Str("env", cfg.App.Environment).
		Str("version", cfg.App.Version).
		Msg("starting Parsaban")

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	db, err := database.NewPostgres(ctx, cfg.Database, log)
	if err != nil {
		log.Fatal().Err(err).Msg("failed to connect to PostgreSQL")
	}
	defer db.Close()

	redisCache, err := cache.NewRedis(ctx, cfg.Redis, log)
	if err != nil {
		log.Warn().Err(err).Msg("failed to connect to Redis, continuing without cache")
		redisCache = nil
	} else {
		defer redisCache.Close()
	}

	fresh, err := repository.EnsureSchema(ctx, db.Pool())
	if err != nil {
		log.Fatal().Err(err).Msg("failed to prepare signature store schema")
	}

	repos := repository.New(db, log)
	manager := update.NewManager(cfg.Update, repos, redisCache, log)

	if fresh {
		if err := manager.Seed(ctx); err != nil {
			log.Fatal().Err(err).Msg("failed to seed signature store")
		}
	}

	eng := engine.New(engine.Config{
		DomainCacheSize: cfg.Engine.DomainCacheSize,
	}, repos.URLs, repos.SMS, repos.Apps, repos.Stats, log)

	dispatcher := engine.NewDispatcher(
		eng,
		cfg.Engine.ThrottleWindow,
		cfg.Engine.SignalQueueSize,
		verdictLogger{log: log.WithComponent("verdicts")},
		log,
	)
	if redisCache != nil {
		dispatcher.UseDedupMirror(redisCache)
	}
	dispatcher.Start(ctx)

	h := handlers.NewHandlers(handlers.Dependencies{
		Engine:     eng,
		Dispatcher: dispatcher,
		Manager:    manager,
		Repos:      repos,
		Cache:      redisCache,
		Logger:     log,
		Version:    cfg.App.Version,
	})

	router := api.NewRouter(*cfg, h, redisCache, log)

	httpServer := &http.Server{
		Addr:         fmt.Sprintf("%s:%d", cfg.Server.Host, cfg.Server.HTTPPort),
		Handler:      router.Setup(),
		ReadTimeout:  cfg.Server.ReadTimeout,
		WriteTimeout: cfg.Server.WriteTimeout,
		IdleTimeout:  cfg.Server.IdleTimeout,
	}

	go func() {
		log.Info().Str("addr", httpServer.Addr).Msg("starting HTTP server")
		if err := httpServer.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatal().Err(err).Msg("HTTP server failed")
		}
	}()

	var scheduler *update.Scheduler
	if cfg.Update.Enabled && cfg.Update.DataURL != "" {
		scheduler = update.NewScheduler(manager, cfg.Update.ScheduleEvery, log)
		scheduler.Start(ctx)
	} else {
		log.Info().Msg("automatic refresh disabled")
	}

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	log.Info().Msg("shutting down...")
	cancel()

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), cfg.Server.ShutdownTimeout)
	defer shutdownCancel()

	if err := httpServer.Shutdown(shutdownCtx); err != nil {
		log.Error().Err(err).Msg("HTTP server shutdown error")
	}
	if scheduler != nil {
		scheduler.Stop()
	}
	dispatcher.Close()

	log.Info().Msg("shutdown complete")
}
