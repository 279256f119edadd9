package store

import (
	"context"
	"time"

	"github.com/redis/go-redis/v9"
)

// Job statuses written by this service.
const (
	StatusQueued    = "queued"
	StatusScheduled = "scheduled"
)

type Store struct {
	rdb *redis.Client
	now func() time.Time
}

func New(rdb *redis.Client) *Store {
	return &Store{rdb: rdb, now: time.Now}
}

func key(jobID string) string { return "job:" + jobID }

// SetStatus writes status and updated_at to the job hash, merged with the
// first fields map if one is given.
func (s *Store) SetStatus(ctx context.Context, jobID, status string, fields ...map[string]interface{}) error {
	data := map[string]interface{}{
		"status":     status,
		"updated_at": s.now().Unix(),
	}

	if len(fields) > 0 {
		for k, v := range fields[0] {
			data[k] = v
		}
	}

	return s.rdb.HSet(ctx, key(jobID), data).Err()
}

// CreateStatus records the status a job was enqueued with. A status already
// on the hash, such as one the scheduler wrote when releasing the job, is
// kept; fields and updated_at are merged either way.
func (s *Store) CreateStatus(ctx context.Context, jobID, status string, fields map[string]interface{}) error {
	k := key(jobID)
	data := map[string]interface{}{"updated_at": s.now().Unix()}
	for f, v := range fields {
		data[f] = v
	}

	_, err := s.rdb.TxPipelined(ctx, func(p redis.Pipeliner) error {
		p.HSetNX(ctx, k, "status", status)
		p.HSet(ctx, k, data)
		return nil
	})
	return err
}

// GetJob returns the job hash. An unknown id yields an empty map.
func (s *Store) GetJob(ctx context.Context, jobID string) (map[string]string, error) {
	return s.rdb.HGetAll(ctx, key(jobID)).Result()
}
