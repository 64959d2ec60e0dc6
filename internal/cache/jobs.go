// Package cache provides the Redis-backed cache for the public job list.
package cache

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/kaojob/jobboard-service/internal/models"
)

const (
	generationKey = "jobs:recent:gen"
	listKeyPrefix = "jobs:recent:"
)

// ErrMiss is returned by Get when nothing is cached for the current generation.
var ErrMiss = errors.New("cache miss")

// JobListCache caches the newest-jobs listing. Entries are scoped to a
// generation; Invalidate bumps the generation so older entries are never
// served again, including ones written by fills that raced the bump.
type JobListCache interface {
	// Get returns the cached listing and the generation it was looked up
	// under. On ErrMiss the generation is still valid and should be passed
	// to Set.
	Get(ctx context.Context) ([]models.JobListing, int64, error)
	Set(ctx context.Context, generation int64, jobs []models.JobListing) error
	Invalidate(ctx context.Context) error
}

type redisJobListCache struct {
	client *redis.Client
	ttl    time.Duration
}

// NewJobListCache returns a Redis-backed cache, or a no-op cache when client
// is nil.
func NewJobListCache(client *redis.Client, ttl time.Duration) JobListCache {
	if client == nil {
		return Noop{}
	}
	return &redisJobListCache{client: client, ttl: ttl}
}

func (c *redisJobListCache) Get(ctx context.Context) ([]models.JobListing, int64, error) {
	gen, err := c.client.Get(ctx, generationKey).Int64()
	if err != nil && !errors.Is(err, redis.Nil) {
		return nil, 0, fmt.Errorf("failed to read job list generation: %w", err)
	}

	data, err := c.client.Get(ctx, listKey(gen)).Bytes()
	if errors.Is(err, redis.Nil) {
		return nil, gen, ErrMiss
	}
	if err != nil {
		return nil, gen, fmt.Errorf("failed to read job list: %w", err)
	}

	var jobs []models.JobListing
	if err := json.Unmarshal(data, &jobs); err != nil {
		return nil, gen, fmt.Errorf("failed to decode job list: %w", err)
	}
	return jobs, gen, nil
}

func (c *redisJobListCache) Set(ctx context.Context, generation int64, jobs []models.JobListing) error {
	data, err := json.Marshal(jobs)
	if err != nil {
		return fmt.Errorf("failed to encode job list: %w", err)
	}
	if err := c.client.Set(ctx, listKey(generation), data, c.ttl).Err(); err != nil {
		return fmt.Errorf("failed to store job list: %w", err)
	}
	return nil
}

func (c *redisJobListCache) Invalidate(ctx context.Context) error {
	if err := c.client.Incr(ctx, generationKey).Err(); err != nil {
		return fmt.Errorf("failed to bump job list generation: %w", err)
	}
	return nil
}

func listKey(generation int64) string {
	return fmt.Sprintf("%s%d", listKeyPrefix, generation)
}

// Noop never stores anything; every Get is a miss.
type Noop struct{}

func (Noop) Get(context.Context) ([]models.JobListing, int64, error) { return nil, 0, ErrMiss }

func (Noop) Set(context.Context, int64, []models.JobListing) error { return nil }

func (Noop) Invalidate(context.Context) error { return nil }
