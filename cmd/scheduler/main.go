package main

import (
	"context"
	"log/slog"
	"os"
	"os/signal"
	"redis-spread-queue/internal/config"
	"redis-spread-queue/internal/logger"
	"redis-spread-queue/internal/queue"
	"redis-spread-queue/internal/store"
	"syscall"
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

	log := logger.New(logger.Options{App: "spread-scheduler", Env: cfg.Env, Level: cfg.Log.Level, File: cfg.Log.File})
	defer logger.Close(log)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	q, err := queue.New(ctx, queue.Options{
		Addr:          cfg.RedisAddr,
		DB:            cfg.RedisDB,
		Stream:        cfg.Stream,
		ConsumerGroup: cfg.ConsumerGroup,
		ScheduledKey:  cfg.ScheduledKey,
	})
	if err != nil {
		log.Error("redis", slog.Any("error", err))
		return 1
	}
	defer q.Close()

	sch := queue.NewScheduler(q.Client(), store.New(q.Client()), queue.SchedulerOptions{
		Stream:       cfg.Stream,
		ScheduledKey: cfg.ScheduledKey,
		Batch:        cfg.Release.Batch,
		Rate:         cfg.Release.Rate,
		PollInterval: cfg.Release.PollInterval,
		Logger:       log,
	})
	if err := sch.Run(ctx); err != nil {
		log.Error("scheduler exited", slog.Any("error", err))
		return 1
	}
	return 0
}
