package queue

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"math"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
)

var ErrDelayOutOfRange = errors.New("queue: delay out of range")

type Options struct {
	Addr          string
	DB            int
	Stream        string
	ConsumerGroup string
	ScheduledKey  string
}

type RedisQueue struct {
	client        *redis.Client
	stream        string
	consumerGroup string
	scheduledKey  string
	now           func() time.Time
}

func (q *RedisQueue) Client() *redis.Client {
	return q.client
}

// New connects to Redis and makes sure the stream and consumer group exist.
func New(ctx context.Context, o Options) (*RedisQueue, error) {
	rdb := redis.NewClient(&redis.Options{
		Addr: o.Addr,
		DB:   o.DB,
	})
	q, err := NewWithClient(ctx, rdb, o)
	if err != nil {
		_ = rdb.Close()
		return nil, err
	}
	return q, nil
}

// NewWithClient is New for an existing client. Addr and DB are ignored.
func NewWithClient(ctx context.Context, rdb *redis.Client, o Options) (*RedisQueue, error) {
	if err := rdb.Ping(ctx).Err(); err != nil {
		return nil, fmt.Errorf("redis connect: %w", err)
	}

	err := rdb.XGroupCreateMkStream(ctx, o.Stream, o.ConsumerGroup, "$").Err()
	if err != nil && !strings.HasPrefix(err.Error(), "BUSYGROUP") {
		return nil, fmt.Errorf("create consumer group %s: %w", o.ConsumerGroup, err)
	}

	return &RedisQueue{
		client:        rdb,
		stream:        o.Stream,
		consumerGroup: o.ConsumerGroup,
		scheduledKey:  o.ScheduledKey,
		now:           time.Now,
	}, nil
}

func (q *RedisQueue) Close() error {
	return q.client.Close()
}

// Enqueue stores a job for immediate processing, or in the scheduled set
// when scheduledAt lies in the future.
func (q *RedisQueue) Enqueue(ctx context.Context, jobType string, args []any, scheduledAt int64) (string, error) {
	return q.enqueue(ctx, jobType, args, scheduledAt, q.now().Unix())
}

func (q *RedisQueue) enqueue(ctx context.Context, jobType string, args []any, scheduledAt, now int64) (string, error) {
	if scheduledAt > now {
		return q.schedule(ctx, jobType, args, scheduledAt, now)
	}
	return q.push(ctx, jobType, args, scheduledAt, now)
}

func (q *RedisQueue) envelope(jobType string, args []any, scheduledAt, now int64) (JobEnvelope, []byte, error) {
	if args == nil {
		args = []any{}
	}
	raw, err := json.Marshal(args)
	if err != nil {
		return JobEnvelope{}, nil, fmt.Errorf("marshal args for %s: %w", jobType, err)
	}

	env := JobEnvelope{
		ID:          uuid.NewString(),
		Type:        jobType,
		Args:        raw,
		Attempt:     0,
		MaxAttempts: 5,
		TimeoutMS:   30000,
		CreatedAt:   now,
		ScheduledAt: scheduledAt,
	}
	jobJSON, err := json.Marshal(env)
	if err != nil {
		return JobEnvelope{}, nil, fmt.Errorf("marshal job %s: %w", env.ID, err)
	}
	return env, jobJSON, nil
}

// push appends the job to the stream.
func (q *RedisQueue) push(ctx context.Context, jobType string, args []any, scheduledAt, now int64) (string, error) {
	env, jobJSON, err := q.envelope(jobType, args, scheduledAt, now)
	if err != nil {
		return "", err
	}
	if err := q.client.XAdd(ctx, &redis.XAddArgs{
		Stream: q.stream,
		Values: map[string]interface{}{"job": string(jobJSON)},
	}).Err(); err != nil {
		return "", fmt.Errorf("xadd %s: %w", q.stream, err)
	}
	return env.ID, nil
}

// schedule parks the job in the scheduled set until the Scheduler releases
// it at runAt.
func (q *RedisQueue) schedule(ctx context.Context, jobType string, args []any, runAt, now int64) (string, error) {
	env, jobJSON, err := q.envelope(jobType, args, runAt, now)
	if err != nil {
		return "", err
	}
	if err := q.client.ZAdd(ctx, q.scheduledKey, redis.Z{
		Score:  float64(runAt),
		Member: jobJSON,
	}).Err(); err != nil {
		return "", fmt.Errorf("zadd %s: %w", q.scheduledKey, err)
	}
	return env.ID, nil
}

// Target binds the queue to one job type. It implements spread.Enqueuer.
type Target struct {
	q       *RedisQueue
	jobType string
	at      time.Time
}

func (q *RedisQueue) Target(jobType string) *Target {
	return &Target{q: q, jobType: jobType}
}

// TargetAt is Target with the clock fixed at now, so a caller deciding a
// job's status from the same reading agrees with where the job was put.
func (q *RedisQueue) TargetAt(jobType string, now time.Time) *Target {
	return &Target{q: q, jobType: jobType, at: now}
}

func (t *Target) now() int64 {
	if t.at.IsZero() {
		return t.q.now().Unix()
	}
	return t.at.Unix()
}

func (t *Target) EnqueueNow(ctx context.Context, args []any) (string, error) {
	return t.q.push(ctx, t.jobType, args, 0, t.now())
}

// EnqueueIn always goes through the scheduled set, even for a zero or
// negative delay, so a delayed job never jumps ahead of the release order.
func (t *Target) EnqueueIn(ctx context.Context, seconds int64, args []any) (string, error) {
	now := t.now()
	if now > 0 && seconds > math.MaxInt64-now {
		return "", fmt.Errorf("%w: %d seconds from %d", ErrDelayOutOfRange, seconds, now)
	}
	return t.q.schedule(ctx, t.jobType, args, now+seconds, now)
}

func (t *Target) EnqueueAt(ctx context.Context, unix int64, args []any) (string, error) {
	return t.q.enqueue(ctx, t.jobType, args, unix, t.now())
}
