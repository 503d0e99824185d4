package memory

import (
	"time"

	"feynman_tutor/src/model"
)

// AddRecord appends a fresh record for concept unless one already exists.
// It reports whether the slice changed.
func (s *Scheduler) AddRecord(records []model.LearningRecord, concept string, now time.Time) ([]model.LearningRecord, bool) {
	if findRecord(records, concept) >= 0 {
		return records, false
	}

	return append(records, model.LearningRecord{
		Concept:        concept,
		FirstLearned:   now,
		MemoryStrength: s.initialStrength,
		ReviewCount:    0,
	}), true
}

// RecordReview applies a review outcome to the first record matching concept.
// A missing concept leaves the records untouched and reports false.
func (s *Scheduler) RecordReview(records []model.LearningRecord, concept string, performance float64, now time.Time) ([]model.LearningRecord, bool) {
	i := findRecord(records, concept)
	if i < 0 {
		return records, false
	}

	record := &records[i]
	record.MemoryStrength = s.UpdateStrength(record.MemoryStrength, performance)
	record.ReviewCount++
	reviewed := now
	record.LastReviewed = &reviewed

	return records, true
}

// FindRecord returns the first record for concept
func FindRecord(records []model.LearningRecord, concept string) (model.LearningRecord, bool) {
	i := findRecord(records, concept)
	if i < 0 {
		return model.LearningRecord{}, false
	}
	return records[i], true
}

func findRecord(records []model.LearningRecord, concept string) int {
	for i := range records {
		if records[i].Concept == concept {
			return i
		}
	}
	return -1
}
