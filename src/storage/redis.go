package storage

import (
	"context"
	"errors"
	"fmt"

	"feynman_tutor/src/model"

	"github.com/redis/go-redis/v9"
)

const recordsPrefix = "learning_records:"

// NewRedisClient parses a redis:// URL and checks the connection
func NewRedisClient(ctx context.Context, redisURL string) (*redis.Client, error) {
	if redisURL == "" {
		return nil, fmt.Errorf("REDIS_URL is required")
	}

	opts, err := redis.ParseURL(redisURL)
	if err != nil {
		return nil, fmt.Errorf("failed to parse REDIS_URL: %w", err)
	}

	client := redis.NewClient(opts)

	// Test connection
	if err := client.Ping(ctx).Err(); err != nil {
		client.Close()
		return nil, fmt.Errorf("failed to connect to Redis: %w", err)
	}

	return client, nil
}

// RedisRecordStore keeps each learner's records as one JSON list under
// learning_records:{learner}. Update uses WATCH/MULTI/EXEC.
type RedisRecordStore struct {
	client     *redis.Client
	maxRetries int
}

func NewRedisRecordStore(client *redis.Client, maxRetries int) *RedisRecordStore {
	if maxRetries <= 0 {
		maxRetries = DefaultMaxRetries
	}
	return &RedisRecordStore{client: client, maxRetries: maxRetries}
}

// key generates a Redis key for the given learner
func (r *RedisRecordStore) key(learnerID string) string {
	return recordsPrefix + learnerID
}

// Get returns the learner's records, empty when none are stored
func (r *RedisRecordStore) Get(ctx context.Context, learnerID string) ([]model.LearningRecord, error) {
	return r.read(ctx, r.client, r.key(learnerID))
}

// Set overwrites the learner's whole record list
func (r *RedisRecordStore) Set(ctx context.Context, learnerID string, records []model.LearningRecord) error {
	data, err := encodeRecords(records)
	if err != nil {
		return err
	}
	if err := r.client.Set(ctx, r.key(learnerID), data, 0).Err(); err != nil {
		return fmt.Errorf("%w: failed to set learning records: %v", ErrStoreUnavailable, err)
	}
	return nil
}

// Update runs fn inside an optimistic transaction on the learner's key
func (r *RedisRecordStore) Update(ctx context.Context, learnerID string, fn model.RecordsUpdate) ([]model.LearningRecord, error) {
	key := r.key(learnerID)
	var result []model.LearningRecord

	txf := func(tx *redis.Tx) error {
		records, err := r.read(ctx, tx, key)
		if err != nil {
			return err
		}

		updated, changed, err := fn(records)
		if err != nil {
			return err
		}
		result = updated
		if !changed {
			return nil
		}

		data, err := encodeRecords(updated)
		if err != nil {
			return err
		}

		_, err = tx.TxPipelined(ctx, func(pipe redis.Pipeliner) error {
			pipe.Set(ctx, key, data, 0)
			return nil
		})
		if err != nil && !errors.Is(err, redis.TxFailedErr) {
			return fmt.Errorf("%w: failed to write learning records: %v", ErrStoreUnavailable, err)
		}
		return err
	}

	for attempt := 0; attempt < r.maxRetries; attempt++ {
		err := r.client.Watch(ctx, txf, key)
		if err == nil {
			return result, nil
		}
		if errors.Is(err, redis.TxFailedErr) {
			continue
		}
		return nil, err
	}

	return nil, fmt.Errorf("%w: learner %s after %d attempts", ErrConflict, learnerID, r.maxRetries)
}

// Learners scans for every learner with stored records
func (r *RedisRecordStore) Learners(ctx context.Context) ([]string, error) {
	var learners []string
	iter := r.client.Scan(ctx, 0, recordsPrefix+"*", 100).Iterator()
	for iter.Next(ctx) {
		learners = append(learners, iter.Val()[len(recordsPrefix):])
	}
	if err := iter.Err(); err != nil {
		return nil, fmt.Errorf("%w: failed to scan learners: %v", ErrStoreUnavailable, err)
	}
	return learners, nil
}

// Ping tests Redis connection
func (r *RedisRecordStore) Ping(ctx context.Context) error {
	return r.client.Ping(ctx).Err()
}

func (r *RedisRecordStore) read(ctx context.Context, c redis.Cmdable, key string) ([]model.LearningRecord, error) {
	data, err := c.Get(ctx, key).Bytes()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return []model.LearningRecord{}, nil
		}
		return nil, fmt.Errorf("%w: failed to get learning records: %v", ErrStoreUnavailable, err)
	}
	return decodeRecords(data)
}
