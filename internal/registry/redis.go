package registry

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/phrazzld/acharya-api/internal/domain"
)

// redisKeyPrefix namespaces job entries in the shared keyspace.
const redisKeyPrefix = "acharya:job:"

// RedisConfig holds connection settings for the Redis-backed registry.
type RedisConfig struct {
	Addr     string
	Password string
	DB       int

	// TTL bounds how long a finished or abandoned job entry survives.
	// Zero means entries never expire.
	TTL time.Duration
}

// RedisRegistry is a JobRegistry backed by Redis, for deployments where
// status polling may land on a different node than the one driving the job.
// Jobs are stored as JSON values; Update uses optimistic WATCH/MULTI
// transactions so concurrent merges retry instead of clobbering each other.
type RedisRegistry struct {
	client *redis.Client
	ttl    time.Duration
}

// NewRedisRegistry connects to Redis and verifies the connection.
func NewRedisRegistry(ctx context.Context, cfg RedisConfig) (*RedisRegistry, error) {
	if cfg.Addr == "" {
		return nil, errors.New("redis address is required")
	}

	client := redis.NewClient(&redis.Options{
		Addr:     cfg.Addr,
		Password: cfg.Password,
		DB:       cfg.DB,
	})

	if err := client.Ping(ctx).Err(); err != nil {
		return nil, fmt.Errorf("ping redis: %w", err)
	}

	return &RedisRegistry{client: client, ttl: cfg.TTL}, nil
}

// Ensure RedisRegistry implements the JobRegistry interface
var _ JobRegistry = (*RedisRegistry)(nil)

// Close releases the underlying Redis connection.
func (r *RedisRegistry) Close() error {
	return r.client.Close()
}

// Create implements JobRegistry.Create.
func (r *RedisRegistry) Create(ctx context.Context, job *domain.Job) error {
	if err := job.Validate(); err != nil {
		return err
	}

	payload, err := json.Marshal(job)
	if err != nil {
		return fmt.Errorf("marshal job: %w", err)
	}

	ok, err := r.client.SetNX(ctx, redisKeyPrefix+job.ID, payload, r.ttl).Result()
	if err != nil {
		return fmt.Errorf("store job: %w", err)
	}
	if !ok {
		return ErrJobExists
	}
	return nil
}

// Get implements JobRegistry.Get.
func (r *RedisRegistry) Get(ctx context.Context, id string) (*domain.Job, error) {
	payload, err := r.client.Get(ctx, redisKeyPrefix+id).Bytes()
	if errors.Is(err, redis.Nil) {
		return nil, ErrJobNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("load job: %w", err)
	}

	var job domain.Job
	if err := json.Unmarshal(payload, &job); err != nil {
		return nil, fmt.Errorf("unmarshal job: %w", err)
	}
	return &job, nil
}

// Update implements JobRegistry.Update. The read-modify-write runs inside a
// WATCH transaction and retries on contention, which preserves the
// fill-once discipline across processes.
func (r *RedisRegistry) Update(ctx context.Context, id string, fn func(*domain.Job)) error {
	key := redisKeyPrefix + id

	apply := func(tx *redis.Tx) error {
		payload, err := tx.Get(ctx, key).Bytes()
		if errors.Is(err, redis.Nil) {
			return ErrJobNotFound
		}
		if err != nil {
			return fmt.Errorf("load job: %w", err)
		}

		var job domain.Job
		if err := json.Unmarshal(payload, &job); err != nil {
			return fmt.Errorf("unmarshal job: %w", err)
		}

		fn(&job)
		job.UpdatedAt = time.Now().UTC()

		updated, err := json.Marshal(&job)
		if err != nil {
			return fmt.Errorf("marshal job: %w", err)
		}

		_, err = tx.TxPipelined(ctx, func(pipe redis.Pipeliner) error {
			pipe.Set(ctx, key, updated, r.ttl)
			return nil
		})
		return err
	}

	const maxRetries = 5
	for i := 0; i < maxRetries; i++ {
		err := r.client.Watch(ctx, apply, key)
		if !errors.Is(err, redis.TxFailedErr) {
			return err
		}
	}
	return fmt.Errorf("update job %s: transaction contention persisted", id)
}
