package storage

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"feynman_tutor/src/model"

	"github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type recordStore interface {
	Get(ctx context.Context, learnerID string) ([]model.LearningRecord, error)
	Set(ctx context.Context, learnerID string, records []model.LearningRecord) error
	Update(ctx context.Context, learnerID string, fn model.RecordsUpdate) ([]model.LearningRecord, error)
	Learners(ctx context.Context) ([]string, error)
}

var learnedAt = time.Date(2024, 3, 1, 9, 0, 0, 0, time.UTC)

func newRedisStore(t *testing.T, retries int) *RedisRecordStore {
	t.Helper()
	mr := miniredis.RunT(t)
	client := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { client.Close() })
	return NewRedisRecordStore(client, retries)
}

func newSQLiteStore(t *testing.T, retries int) *SQLRecordStore {
	t.Helper()
	store, err := OpenSQLRecordStore(context.Background(), DriverSQLite, ":memory:", retries)
	require.NoError(t, err)
	t.Cleanup(func() { store.Close() })
	return store
}

func backends(t *testing.T, retries int) map[string]recordStore {
	return map[string]recordStore{
		"memory": NewMemoryRecordStore(),
		"redis":  newRedisStore(t, retries),
		"sqlite": newSQLiteStore(t, retries),
	}
}

func appendRecord(concept string) model.RecordsUpdate {
	return func(records []model.LearningRecord) ([]model.LearningRecord, bool, error) {
		return append(records, model.LearningRecord{
			Concept:        concept,
			FirstLearned:   learnedAt,
			MemoryStrength: 0.5,
		}), true, nil
	}
}

func TestStoreRoundTrip(t *testing.T) {
	ctx := context.Background()
	for name, store := range backends(t, DefaultMaxRetries) {
		t.Run(name, func(t *testing.T) {
			records, err := store.Get(ctx, "nobody")
			require.NoError(t, err)
			assert.Empty(t, records)

			reviewed := learnedAt.Add(48 * time.Hour)
			in := []model.LearningRecord{
				{Concept: "递归", FirstLearned: learnedAt, MemoryStrength: 0.5},
				{Concept: "Python", FirstLearned: learnedAt, MemoryStrength: 0.65, ReviewCount: 1, LastReviewed: &reviewed},
			}
			require.NoError(t, store.Set(ctx, "1", in))

			out, err := store.Get(ctx, "1")
			require.NoError(t, err)
			require.Len(t, out, 2)
			assert.Equal(t, "递归", out[0].Concept)
			assert.True(t, learnedAt.Equal(out[0].FirstLearned))
			assert.Nil(t, out[0].LastReviewed)
			require.NotNil(t, out[1].LastReviewed)
			assert.True(t, reviewed.Equal(*out[1].LastReviewed))
			assert.InDelta(t, 0.65, out[1].MemoryStrength, 1e-12)
		})
	}
}

func TestStoreUpdate(t *testing.T) {
	ctx := context.Background()
	for name, store := range backends(t, DefaultMaxRetries) {
		t.Run(name, func(t *testing.T) {
			out, err := store.Update(ctx, "1", appendRecord("算法"))
			require.NoError(t, err)
			require.Len(t, out, 1)

			out, err = store.Update(ctx, "1", appendRecord("数据库"))
			require.NoError(t, err)
			assert.Len(t, out, 2)

			stored, err := store.Get(ctx, "1")
			require.NoError(t, err)
			assert.Len(t, stored, 2)

			learners, err := store.Learners(ctx)
			require.NoError(t, err)
			assert.Equal(t, []string{"1"}, learners)
		})
	}
}

func TestStoreUpdateUnchangedWritesNothing(t *testing.T) {
	ctx := context.Background()
	for name, store := range backends(t, DefaultMaxRetries) {
		t.Run(name, func(t *testing.T) {
			_, err := store.Update(ctx, "1", func(records []model.LearningRecord) ([]model.LearningRecord, bool, error) {
				return records, false, nil
			})
			require.NoError(t, err)

			learners, err := store.Learners(ctx)
			require.NoError(t, err)
			assert.Empty(t, learners)
		})
	}
}

func TestStoreUpdateErrorPassesThrough(t *testing.T) {
	ctx := context.Background()
	errBoom := errors.New("boom")
	for name, store := range backends(t, DefaultMaxRetries) {
		t.Run(name, func(t *testing.T) {
			_, err := store.Update(ctx, "1", func(records []model.LearningRecord) ([]model.LearningRecord, bool, error) {
				return nil, false, errBoom
			})
			assert.ErrorIs(t, err, errBoom)
		})
	}
}

func TestStoreConcurrentUpdates(t *testing.T) {
	ctx := context.Background()
	const writers = 10

	for name, store := range backends(t, 200) {
		t.Run(name, func(t *testing.T) {
			require.NoError(t, store.Set(ctx, "1", []model.LearningRecord{
				{Concept: "机器学习", FirstLearned: learnedAt, MemoryStrength: 0.5},
			}))

			var wg sync.WaitGroup
			for i := 0; i < writers; i++ {
				wg.Add(1)
				go func() {
					defer wg.Done()
					_, err := store.Update(ctx, "1", func(records []model.LearningRecord) ([]model.LearningRecord, bool, error) {
						records[0].ReviewCount++
						return records, true, nil
					})
					assert.NoError(t, err)
				}()
			}
			wg.Wait()

			records, err := store.Get(ctx, "1")
			require.NoError(t, err)
			assert.Equal(t, writers, records[0].ReviewCount)
		})
	}
}

func TestStoreUpdateConflict(t *testing.T) {
	ctx := context.Background()
	stores := map[string]recordStore{
		"redis":  newRedisStore(t, 3),
		"sqlite": newSQLiteStore(t, 3),
	}

	for name, store := range stores {
		t.Run(name, func(t *testing.T) {
			calls := 0
			_, err := store.Update(ctx, "1", func(records []model.LearningRecord) ([]model.LearningRecord, bool, error) {
				calls++
				// a competing writer lands between read and write every time
				require.NoError(t, store.Set(ctx, "1", []model.LearningRecord{
					{Concept: "竞争", FirstLearned: learnedAt, MemoryStrength: 0.5},
				}))
				return append(records, model.LearningRecord{Concept: "mine", FirstLearned: learnedAt}), true, nil
			})
			assert.ErrorIs(t, err, ErrConflict)
			assert.Equal(t, 3, calls)
		})
	}
}

func TestRedisStoreUnavailable(t *testing.T) {
	mr := miniredis.RunT(t)
	client := redis.NewClient(&redis.Options{Addr: mr.Addr(), MaxRetries: -1})
	defer client.Close()
	store := NewRedisRecordStore(client, 1)

	mr.Close()

	_, err := store.Get(context.Background(), "1")
	assert.ErrorIs(t, err, ErrStoreUnavailable)
}

func TestRedisStoreKeyLayout(t *testing.T) {
	mr := miniredis.RunT(t)
	client := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	defer client.Close()
	store := NewRedisRecordStore(client, 1)

	_, err := store.Update(context.Background(), "42", appendRecord("神经网络"))
	require.NoError(t, err)

	assert.True(t, mr.Exists("learning_records:42"))
}

func TestSQLStoreRejectsUnknownDriver(t *testing.T) {
	_, err := OpenSQLRecordStore(context.Background(), "mysql", "x", 1)
	assert.Error(t, err)
}
