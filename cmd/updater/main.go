// The updater runs one signature refresh and exits. Deployed as a cron
// companion to the API server, or invoked by hand to force a fetch.
package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"os"
	"time"

	"parsaban/internal/config"
	"parsaban/internal/domain/models"
	"parsaban/internal/infrastructure/cache"
	"parsaban/internal/infrastructure/database"
	"parsaban/internal/infrastructure/database/repository"
	"parsaban/internal/update"
	"parsaban/pkg/logger"
)

func main() {
	seedOnly := flag.Bool("seed", false, "apply the embedded seed payload instead of fetching the remote feed")
	timeout := flag.Duration("timeout", 5*time.Minute, "overall run timeout")
	flag.Parse()

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
	log = log.WithComponent("updater")
	logger.SetGlobal(log)

	ctx, cancel := context.WithTimeout(context.Background(), *timeout)
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

	if *seedOnly || fresh {
		if err := manager.Seed(ctx); err != nil {
			log.Fatal().Err(err).Msg("seed failed")
		}
		if *seedOnly {
			log.Info().Msg("seed applied")
			return
		}
	}

	state, err := manager.Refresh(ctx, models.UpdateAuto)
	switch {
	case errors.Is(err, update.ErrRefreshTooSoon):
		log.Info().Time("last_update", state.LastUpdate).Msg("refresh skipped, minimum interval not elapsed")
	case err != nil:
		log.Fatal().Err(err).Msg("refresh failed")
	default:
		log.Info().
			Int("links", state.LastCounts.Links).
			Int("senders", state.LastCounts.Senders).
			Int("messages", state.LastCounts.Messages).
			Int("apps", state.LastCounts.Apps).
			Int("tips", state.LastCounts.Tips).
			Msg("refresh applied")
	}
}
