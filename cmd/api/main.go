package main

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"redis-spread-queue/internal/api"
	"redis-spread-queue/internal/catalog"
	"redis-spread-queue/internal/config"
	"redis-spread-queue/internal/logger"
	"redis-spread-queue/internal/queue"
	"redis-spread-queue/internal/spread"
	"redis-spread-queue/internal/store"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"
)

func main() {
	os.Exit(run())
}

func run() int {
	cfg, err := config.Load()
	if err != nil {
		slog.Error("config", slog.Any("error", err))
		return 1
	}

	log := logger.New(logger.Options{App: "spread-api", Env: cfg.Env, Level: cfg.Log.Level, File: cfg.Log.File})
	defer logger.Close(log)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := serve(ctx, cfg, log); err != nil {
		log.Error("api exited", slog.Any("error", err))
		return 1
	}
	return 0
}

func serve(ctx context.Context, cfg config.Config, log *slog.Logger) error {
	method, err := spread.ParseMethod(cfg.Spread.Method)
	if err != nil {
		return err
	}
	handlers, err := catalog.Load(cfg.HandlersFile, catalog.Defaults{
		Duration: time.Duration(cfg.Spread.Duration) * time.Second,
		Method:   method,
	})
	if err != nil {
		return err
	}
	log.Info("handlers loaded", slog.String("file", cfg.HandlersFile), slog.Any("names", handlers.Names()))

	q, err := queue.New(ctx, queue.Options{
		Addr:          cfg.RedisAddr,
		DB:            cfg.RedisDB,
		Stream:        cfg.Stream,
		ConsumerGroup: cfg.ConsumerGroup,
		ScheduledKey:  cfg.ScheduledKey,
	})
	if err != nil {
		return err
	}
	defer q.Close()

	if cfg.Env == "prod" {
		gin.SetMode(gin.ReleaseMode)
	}
	router := api.New(api.Deps{
		Queue:    q,
		Store:    store.New(q.Client()),
		Handlers: handlers,
		Spreader: spread.New(spread.WithLogger(log)),
		APIKey:   cfg.APIKey,
		Logger:   log,
	})

	srv := &http.Server{
		Addr:              ":" + cfg.Port,
		Handler:           router,
		ReadHeaderTimeout: 5 * time.Second,
	}
	errCh := make(chan error, 1)
	go func() {
		log.Info("api listening", slog.String("addr", srv.Addr))
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
		close(errCh)
	}()

	select {
	case err := <-errCh:
		return err
	case <-ctx.Done():
	}

	log.Info("shutting down")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	return srv.Shutdown(shutdownCtx)
}
