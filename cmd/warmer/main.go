package main

import (
	"context"
	"flag"
	"os/signal"
	"strings"
	"syscall"

	"github.com/go-co-op/gocron/v2"
	"github.com/joho/godotenv"
	"github.com/rs/zerolog/log"

	"voyago/internal/adapters/observability"
	redisad "voyago/internal/adapters/redis"
	"voyago/internal/app"
	"voyago/internal/domain"
	"voyago/internal/shared"
)

func main() {
	invalidate := flag.String("invalidate", "", "drop one cached listing, as category:id, and exit")
	flag.Parse()

	if err := godotenv.Load(); err != nil {
		log.Debug().Msg("no .env file, using process environment")
	}
	cfg := shared.Load()

	// 1) initialize global logger (console in dev, JSON otherwise)
	log.Logger = observability.NewLogger(cfg.AppEnv, cfg.LogLevel, "warmer")

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	cache := redisad.New(cfg.RedisAddr, cfg.RedisPass, cfg.RedisDB)
	defer cache.Close()
	if err := cache.Ping(ctx); err != nil {
		log.Fatal().Err(err).Str("addr", cfg.RedisAddr).Msg("redis ping failed")
	}

	if *invalidate != "" {
		key, id, ok := strings.Cut(*invalidate, ":")
		c, known := domain.ParseCategory(key)
		if !ok || !known || id == "" {
			log.Fatal().Str("invalidate", *invalidate).Msg("expected category:id")
		}
		if err := app.NewWarmService(nil, cache, cfg.CacheTTL).Invalidate(ctx, c, id); err != nil {
			log.Fatal().Err(err).Msg("invalidate failed")
		}
		log.Info().Str("category", c.String()).Str("id", id).Msg("listing invalidated")
		return
	}

	src, closeSrc, err := shared.OpenSource(ctx, cfg)
	if err != nil {
		log.Fatal().Err(err).Str("backend", cfg.Backend).Msg("listing backend init failed")
	}
	defer func() { _ = closeSrc() }()

	warm := app.NewWarmService(src, cache, cfg.CacheTTL)
	run := func() {
		log.Info().
			Str("backend", cfg.Backend).
			Int("workers", cfg.WarmWorkers).
			Int("limit", cfg.WarmLimit).
			Msg("warm starting")
		if err := warm.WarmAll(ctx, cfg.WarmWorkers, cfg.WarmLimit); err != nil {
			log.Warn().Err(err).Msg("warm finished with errors")
			return
		}
		log.Info().Msg("warm completed")
	}

	run()
	if cfg.WarmInterval <= 0 {
		return
	}

	sched, err := gocron.NewScheduler()
	if err != nil {
		log.Fatal().Err(err).Msg("scheduler init failed")
	}
	if _, err := sched.NewJob(gocron.DurationJob(cfg.WarmInterval), gocron.NewTask(run)); err != nil {
		log.Fatal().Err(err).Msg("warm job failed")
	}
	sched.Start()
	log.Info().Dur("interval", cfg.WarmInterval).Msg("warmer scheduled")

	<-ctx.Done()
	if err := sched.Shutdown(); err != nil {
		log.Error().Err(err).Msg("scheduler shutdown failed")
	}
}
