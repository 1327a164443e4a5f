package main

import (
	"context"
	"net/http"
	"os/signal"
	"syscall"
	"time"

	"github.com/go-co-op/gocron/v2"
	"github.com/joho/godotenv"
	"github.com/rs/zerolog/log"

	server "voyago/internal/adapters/http_server"
	"voyago/internal/adapters/observability"
	redisad "voyago/internal/adapters/redis"
	stripead "voyago/internal/adapters/stripe"
	"voyago/internal/app"
	"voyago/internal/booking"
	"voyago/internal/catalog"
	"voyago/internal/payment"
	"voyago/internal/shared"
)

func main() {
	if err := godotenv.Load(); err != nil {
		log.Debug().Msg("no .env file, using process environment")
	}
	cfg := shared.Load()

	// set global logger (console in dev, JSON otherwise)
	log.Logger = observability.NewLogger(cfg.AppEnv, cfg.LogLevel, "api")

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	reg := observability.InitRegistry()
	observability.Serve(cfg.MetricsAddr, reg)

	// deps
	src, closeSrc, err := shared.OpenSource(ctx, cfg)
	if err != nil {
		log.Fatal().Err(err).Str("backend", cfg.Backend).Msg("listing backend init failed")
	}
	defer func() { _ = closeSrc() }()

	cache := redisad.New(cfg.RedisAddr, cfg.RedisPass, cfg.RedisDB)
	defer cache.Close()
	if err := cache.Ping(ctx); err != nil {
		log.Warn().Err(err).Str("addr", cfg.RedisAddr).Msg("redis unreachable; listings served uncached")
	}

	listings := app.NewListingService(src, cache, cfg.CacheTTL)
	sessions := booking.NewRegistry(listings)

	var creator payment.IntentCreator
	if sc, err := stripead.New(cfg.StripeSecretKey); err == nil {
		creator = sc
	}

	sched, err := gocron.NewScheduler()
	if err != nil {
		log.Fatal().Err(err).Msg("scheduler init failed")
	}
	if _, err := sched.NewJob(
		gocron.DurationJob(time.Minute),
		gocron.NewTask(func() {
			sessions.Sweep(cfg.SessionIdle)
			observability.SetSessions(sessions.Len())
		}),
	); err != nil {
		log.Fatal().Err(err).Msg("session sweep job failed")
	}
	sched.Start()
	defer func() { _ = sched.Shutdown() }()

	// http
	srv := server.New(server.Options{AllowedOrigins: cfg.AllowedOrigins})
	srv.Mount("/metrics", observability.MetricsHandler(reg))
	srv.MountHandlers(&server.Handlers{
		Listings: listings,
		Handoff:  booking.NewHandoff(cache.Handoffs(), listings, cfg.HandoffTTL),
		Sessions: sessions,
		Payments: payment.NewBridge(creator, cfg.DefaultCurrency),
		Prices:   catalog.NewFormatter(cfg.DisplayLocale, cfg.DefaultCurrency),
	})

	httpSrv := &http.Server{Addr: cfg.HTTPAddr, Handler: srv.Mux(), ReadHeaderTimeout: 5 * time.Second}
	go func() {
		log.Info().Str("addr", cfg.HTTPAddr).Str("backend", cfg.Backend).Msg("API listening")
		if err := httpSrv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatal().Err(err).Msg("http server failed")
		}
	}()

	<-ctx.Done()
	log.Info().Msg("shutting down")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := httpSrv.Shutdown(shutdownCtx); err != nil {
		log.Error().Err(err).Msg("http shutdown failed")
	}
}
