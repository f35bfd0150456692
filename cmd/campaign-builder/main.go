package main

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/joho/godotenv"
	"github.com/redis/go-redis/v9"

	"github.com/LeventeLantos/campaign-builder/internal/api"
	"github.com/LeventeLantos/campaign-builder/internal/cache"
	"github.com/LeventeLantos/campaign-builder/internal/client"
	"github.com/LeventeLantos/campaign-builder/internal/config"
	"github.com/LeventeLantos/campaign-builder/internal/metrics"
	"github.com/LeventeLantos/campaign-builder/internal/repo"
	"github.com/LeventeLantos/campaign-builder/internal/scheduler"
	"github.com/LeventeLantos/campaign-builder/internal/service"
)

func main() {
	_ = godotenv.Load()

	slog.SetDefault(slog.New(slog.NewJSONHandler(os.Stdout, nil)))

	if err := run(); err != nil {
		slog.Error("campaign-builder exited", "err", err)
		os.Exit(1)
	}
}

func run() error {
	cfg, err := config.LoadAll()
	if err != nil {
		return err
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	store, err := repo.Open(ctx, cfg.Database.Driver, cfg.Database.URL)
	if err != nil {
		return err
	}
	defer store.Close()

	if err := store.Migrate(ctx); err != nil {
		return err
	}

	m := metrics.New()

	carrier := client.NewCarrierClient(cfg.Carrier.BaseURL, cfg.Carrier.AccountSID, cfg.Carrier.AuthToken, cfg.Carrier.Timeout).
		WithStatusCallback(cfg.Carrier.StatusCallbackURL)
	if !carrier.Configured() {
		slog.Warn("twilio credentials not set, sends will fail until configured")
	}

	selector := service.NewNumberSelector(store, cfg.Carrier.DefaultNumber, m).
		WithDailyLimit(cfg.Pool.DefaultDailyLimit)
	conversations := service.NewConversations(store, store)
	dispatcher := service.NewDispatcher(carrier, selector, conversations, cfg.Carrier.ContentMax, m)
	reconciler := service.NewReconciler(conversations, m)

	if cfg.Redis.Enabled() {
		rdb := redis.NewClient(&redis.Options{
			Addr:     cfg.Redis.Address,
			Password: cfg.Redis.Password,
			DB:       cfg.Redis.DB,
		})
		defer rdb.Close()

		if err := rdb.Ping(ctx).Err(); err != nil {
			slog.Warn("redis unreachable, continuing without delivery cache", "addr", cfg.Redis.Address, "err", err)
		} else {
			c := cache.NewRedisCache(rdb, cfg.Redis.TTL)
			reconciler.WithCache(c, c)
		}
	}

	mailer := client.NewMailerClient(cfg.Mailer.BaseURL, cfg.Mailer.APIKey)
	orchestrator := service.NewOrchestrator(store, store, dispatcher, mailer, cfg.Campaign.DispatchConcurrency, m)
	composer := client.NewComposer(cfg.Composer.BaseURL, cfg.Composer.APIKey, cfg.Composer.Model)

	sched, err := scheduler.NewCounterReset(cfg.Pool.ResetInterval, selector)
	if err != nil {
		return err
	}
	if cfg.Pool.ResetEnabled {
		sched.Start()
	}
	defer sched.Stop()

	h := api.NewHandler(api.Deps{
		Store:         store,
		Scheduler:     sched,
		Dispatcher:    dispatcher,
		Reconciler:    reconciler,
		Conversations: conversations,
		Numbers:       selector,
		Campaigns:     orchestrator,
		Composer:      composer,
	})

	srv := &http.Server{
		Addr:              cfg.Server.Address,
		Handler:           requestIDMiddleware(loggingMiddleware(recoverMiddleware(api.Router(h)))),
		ReadHeaderTimeout: 5 * time.Second,
	}
	metricsSrv := &http.Server{
		Addr:              cfg.Server.MetricsAddress,
		Handler:           metricsMux(m),
		ReadHeaderTimeout: 5 * time.Second,
	}

	errCh := make(chan error, 2)
	go serve(srv, "api", errCh)
	go serve(metricsSrv, "metrics", errCh)

	slog.Info("campaign-builder started",
		"addr", cfg.Server.Address,
		"metrics_addr", cfg.Server.MetricsAddress,
		"db_driver", cfg.Database.Driver,
		"redis", cfg.Redis.Enabled(),
		"pool_reset", cfg.Pool.ResetEnabled,
	)

	select {
	case <-ctx.Done():
		slog.Info("shutdown signal received")
	case err := <-errCh:
		slog.Error("server failed", "err", err)
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.Server.ShutdownTimeout)
	defer cancel()

	return errors.Join(srv.Shutdown(shutdownCtx), metricsSrv.Shutdown(shutdownCtx))
}

func serve(srv *http.Server, name string, errCh chan<- error) {
	slog.Info("listening", "server", name, "addr", srv.Addr)
	if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
		errCh <- err
	}
}

func metricsMux(m *metrics.Metrics) http.Handler {
	mux := http.NewServeMux()
	mux.Handle("GET /metrics", m.Handler())
	return mux
}
