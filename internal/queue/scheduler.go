package queue

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"redis-spread-queue/internal/store"
	"strconv"
	"time"

	"github.com/redis/go-redis/v9"
	"golang.org/x/time/rate"
)

type SchedulerOptions struct {
	Stream       string
	ScheduledKey string
	Batch        int           // due jobs read per pass
	Rate         int           // releases per second, 0 = unlimited
	PollInterval time.Duration // pause between passes
	Logger       *slog.Logger
}

// Scheduler moves due jobs from the scheduled set onto the stream.
// Several schedulers may run against the same keys: a job is only released
// by the one whose ZREM removed it.
type Scheduler struct {
	rdb     *redis.Client
	store   *store.Store
	opts    SchedulerOptions
	limiter *rate.Limiter
	logger  *slog.Logger
	now     func() time.Time
}

func NewScheduler(rdb *redis.Client, s *store.Store, o SchedulerOptions) *Scheduler {
	if o.Batch <= 0 {
		o.Batch = 10
	}
	if o.PollInterval <= 0 {
		o.PollInterval = time.Second
	}
	logger := o.Logger
	if logger == nil {
		logger = slog.Default()
	}

	sch := &Scheduler{
		rdb:    rdb,
		store:  s,
		opts:   o,
		logger: logger.With(slog.String("component", "scheduler")),
		now:    time.Now,
	}
	if o.Rate > 0 {
		sch.limiter = rate.NewLimiter(rate.Limit(o.Rate), o.Rate)
	}
	return sch
}

// Run releases due jobs until ctx is done.
func (s *Scheduler) Run(ctx context.Context) error {
	s.logger.Info("scheduler started",
		slog.String("key", s.opts.ScheduledKey),
		slog.Duration("poll_interval", s.opts.PollInterval),
		slog.Int("rate", s.opts.Rate),
	)

	ticker := time.NewTicker(s.opts.PollInterval)
	defer ticker.Stop()

	for {
		n, err := s.ReleaseDue(ctx)
		switch {
		case errors.Is(err, context.Canceled):
		case err != nil:
			s.logger.Error("release failed", slog.Any("error", err))
		case n > 0:
			s.logger.Debug("released scheduled jobs", slog.Int("count", n))
		}

		select {
		case <-ctx.Done():
			s.logger.Info("scheduler stopped")
			return nil
		case <-ticker.C:
		}
	}
}

// ReleaseDue performs a single pass and returns how many jobs it moved.
func (s *Scheduler) ReleaseDue(ctx context.Context) (int, error) {
	due, err := s.rdb.ZRangeByScoreWithScores(ctx, s.opts.ScheduledKey, &redis.ZRangeBy{
		Min:   "-inf",
		Max:   strconv.FormatInt(s.now().Unix(), 10),
		Count: int64(s.opts.Batch),
	}).Result()
	if err != nil && !errors.Is(err, redis.Nil) {
		return 0, fmt.Errorf("zrangebyscore %s: %w", s.opts.ScheduledKey, err)
	}

	released := 0
	for _, z := range due {
		raw, ok := z.Member.(string)
		if !ok {
			continue
		}

		if s.limiter != nil {
			if err := s.limiter.Wait(ctx); err != nil {
				return released, err
			}
		}

		moved, err := s.release(ctx, raw, z.Score)
		if err != nil {
			return released, err
		}
		if moved {
			released++
		}
	}
	return released, nil
}

func (s *Scheduler) release(ctx context.Context, raw string, score float64) (bool, error) {
	claimed, err := s.rdb.ZRem(ctx, s.opts.ScheduledKey, raw).Result()
	if err != nil {
		return false, fmt.Errorf("zrem %s: %w", s.opts.ScheduledKey, err)
	}
	if claimed == 0 {
		// another scheduler got there first
		return false, nil
	}

	var job JobEnvelope
	if err := json.Unmarshal([]byte(raw), &job); err != nil {
		s.logger.Warn("dropping bad scheduled job", slog.Any("error", err))
		return false, nil
	}

	if err := s.rdb.XAdd(ctx, &redis.XAddArgs{
		Stream: s.opts.Stream,
		Values: map[string]interface{}{"job": raw},
	}).Err(); err != nil {
		// put it back so the next pass retries
		if zerr := s.rdb.ZAdd(ctx, s.opts.ScheduledKey, redis.Z{Score: score, Member: raw}).Err(); zerr != nil {
			s.logger.Error("lost scheduled job", slog.String("job_id", job.ID), slog.Any("error", zerr))
		}
		return false, fmt.Errorf("xadd %s: %w", s.opts.Stream, err)
	}

	if err := s.store.SetStatus(ctx, job.ID, store.StatusQueued, map[string]interface{}{
		"released_at": s.now().Unix(),
	}); err != nil {
		s.logger.Warn("set status failed", slog.String("job_id", job.ID), slog.Any("error", err))
	}

	s.logger.Debug("released scheduled job",
		slog.String("job_id", job.ID),
		slog.String("type", job.Type),
	)
	return true, nil
}
