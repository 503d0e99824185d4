package storage

import (
	"context"
	"sort"
	"sync"

	"feynman_tutor/src/model"
)

// MemoryRecordStore is a process-local store for tests and single-node runs
type MemoryRecordStore struct {
	mu      sync.Mutex
	records map[string][]model.LearningRecord
}

func NewMemoryRecordStore() *MemoryRecordStore {
	return &MemoryRecordStore{records: make(map[string][]model.LearningRecord)}
}

func (m *MemoryRecordStore) Get(_ context.Context, learnerID string) ([]model.LearningRecord, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	return cloneRecords(m.records[learnerID]), nil
}

func (m *MemoryRecordStore) Set(_ context.Context, learnerID string, records []model.LearningRecord) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.records[learnerID] = cloneRecords(records)
	return nil
}

// Update holds the lock for the whole read-modify-write, so it never conflicts
func (m *MemoryRecordStore) Update(_ context.Context, learnerID string, fn model.RecordsUpdate) ([]model.LearningRecord, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	updated, changed, err := fn(cloneRecords(m.records[learnerID]))
	if err != nil {
		return nil, err
	}
	if changed {
		m.records[learnerID] = cloneRecords(updated)
	}
	return updated, nil
}

func (m *MemoryRecordStore) Learners(_ context.Context) ([]string, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	learners := make([]string, 0, len(m.records))
	for id := range m.records {
		learners = append(learners, id)
	}
	sort.Strings(learners)
	return learners, nil
}

func (m *MemoryRecordStore) Ping(context.Context) error { return nil }
