package memory

import (
	"context"
	"fmt"
	"math"
	"sort"
	"strings"
	"time"

	"feynman_tutor/src/logger"
	"feynman_tutor/src/model"

	"github.com/google/uuid"
)

// RecordStore persists each learner's full record list
type RecordStore interface {
	Get(ctx context.Context, learnerID string) ([]model.LearningRecord, error)
	Update(ctx context.Context, learnerID string, fn model.RecordsUpdate) ([]model.LearningRecord, error)
	Learners(ctx context.Context) ([]string, error)
}

// Service runs scheduler operations against a RecordStore
type Service struct {
	store     RecordStore
	scheduler *Scheduler
	now       func() time.Time
}

func NewService(store RecordStore, scheduler *Scheduler) *Service {
	return &Service{
		store:     store,
		scheduler: scheduler,
		now:       time.Now,
	}
}

// WithClock replaces the time source, for tests
func (s *Service) WithClock(now func() time.Time) *Service {
	s.now = now
	return s
}

func (s *Service) Scheduler() *Scheduler { return s.scheduler }

// AddRecord creates the learner's record for concept on first exposure.
// created is false when the record already existed.
func (s *Service) AddRecord(ctx context.Context, learnerID, concept string) (model.LearningRecord, bool, error) {
	if err := validateIDs(learnerID, concept); err != nil {
		return model.LearningRecord{}, false, err
	}

	var created bool
	records, err := s.store.Update(ctx, learnerID, func(records []model.LearningRecord) ([]model.LearningRecord, bool, error) {
		records, created = s.scheduler.AddRecord(records, concept, s.now().UTC())
		return records, created, nil
	})
	if err != nil {
		return model.LearningRecord{}, false, fmt.Errorf("failed to add learning record: %w", err)
	}

	record, _ := FindRecord(records, concept)
	if created {
		logger.Info().Str("learner", learnerID).Str("concept", concept).Msg("learning record created")
	}
	return record, created, nil
}

// RecordReview folds a performance score into the concept's strength.
// The score must be a finite number in [0, 1].
func (s *Service) RecordReview(ctx context.Context, learnerID, concept string, score float64) (model.LearningRecord, error) {
	if err := validateIDs(learnerID, concept); err != nil {
		return model.LearningRecord{}, err
	}
	if math.IsNaN(score) || score < 0 || score > 1 {
		return model.LearningRecord{}, fmt.Errorf("%w: performance score %v outside [0, 1]", ErrInvalidInput, score)
	}

	records, err := s.store.Update(ctx, learnerID, func(records []model.LearningRecord) ([]model.LearningRecord, bool, error) {
		records, found := s.scheduler.RecordReview(records, concept, score, s.now().UTC())
		if !found {
			return records, false, fmt.Errorf("%w: %s", ErrConceptNotFound, concept)
		}
		return records, true, nil
	})
	if err != nil {
		return model.LearningRecord{}, fmt.Errorf("failed to record review: %w", err)
	}

	record, _ := FindRecord(records, concept)
	logger.Info().
		Str("learner", learnerID).
		Str("concept", concept).
		Float64("score", score).
		Float64("strength", record.MemoryStrength).
		Int("review_count", record.ReviewCount).
		Msg("review recorded")
	return record, nil
}

// ReviewSchedule lists every record with its next review. Due entries come
// first, then upcoming ones by date, then mastered concepts.
func (s *Service) ReviewSchedule(ctx context.Context, learnerID string) ([]model.ScheduleEntry, error) {
	records, err := s.load(ctx, learnerID)
	if err != nil {
		return nil, err
	}

	now := s.now()
	entries := make([]model.ScheduleEntry, 0, len(records))
	for _, record := range records {
		entries = append(entries, s.scheduler.Entry(record, now))
	}

	sort.SliceStable(entries, func(i, j int) bool {
		a, b := entries[i], entries[j]
		if a.Due != b.Due {
			return a.Due
		}
		if (a.NextReview == nil) != (b.NextReview == nil) {
			return a.NextReview != nil
		}
		if a.NextReview != nil && !a.NextReview.Equal(*b.NextReview) {
			return a.NextReview.Before(*b.NextReview)
		}
		return false
	})
	return entries, nil
}

// DueReviews returns the entries whose next review is at or before now
func (s *Service) DueReviews(ctx context.Context, learnerID string, now time.Time) ([]model.ScheduleEntry, error) {
	records, err := s.load(ctx, learnerID)
	if err != nil {
		return nil, err
	}

	var due []model.ScheduleEntry
	for _, record := range records {
		if entry := s.scheduler.Entry(record, now); entry.Due {
			due = append(due, entry)
		}
	}
	return due, nil
}

// Stats summarizes the learner's progress
func (s *Service) Stats(ctx context.Context, learnerID string) (model.LearningStats, error) {
	records, err := s.load(ctx, learnerID)
	if err != nil {
		return model.LearningStats{}, err
	}

	stats := model.LearningStats{TotalConcepts: len(records)}
	if len(records) == 0 {
		return stats, nil
	}

	now := s.now()
	total := 0.0
	for _, record := range records {
		total += record.MemoryStrength
		stats.ReviewCount += record.ReviewCount
		entry := s.scheduler.Entry(record, now)
		if entry.Mastered {
			stats.MasteredConcepts++
		}
		if entry.Due {
			stats.DueToday++
		}
	}
	stats.AverageStrength = total / float64(len(records))
	return stats, nil
}

// Strengths returns concept names and strengths in record order
func (s *Service) Strengths(ctx context.Context, learnerID string) (model.StrengthOverview, error) {
	records, err := s.load(ctx, learnerID)
	if err != nil {
		return model.StrengthOverview{}, err
	}

	overview := model.StrengthOverview{
		Concepts:  make([]string, 0, len(records)),
		Strengths: make([]float64, 0, len(records)),
	}
	for _, record := range records {
		overview.Concepts = append(overview.Concepts, record.Concept)
		overview.Strengths = append(overview.Strengths, record.MemoryStrength)
	}
	return overview, nil
}

// StartReview opens a review session, creating the record on first exposure
func (s *Service) StartReview(ctx context.Context, learnerID, concept string) (model.ReviewSession, error) {
	if _, _, err := s.AddRecord(ctx, learnerID, concept); err != nil {
		return model.ReviewSession{}, err
	}

	return model.ReviewSession{
		ID:        uuid.NewString(),
		Status:    "success",
		Message:   fmt.Sprintf("review started: %s", concept),
		Concept:   concept,
		Timestamp: s.now().UTC(),
	}, nil
}

// SkipReview acknowledges a skipped review. Records are left untouched.
func (s *Service) SkipReview(ctx context.Context, learnerID, concept string) (model.ReviewSession, error) {
	if err := validateIDs(learnerID, concept); err != nil {
		return model.ReviewSession{}, err
	}

	logger.Debug().Str("learner", learnerID).Str("concept", concept).Msg("review skipped")
	return model.ReviewSession{
		ID:        uuid.NewString(),
		Status:    "success",
		Message:   fmt.Sprintf("review skipped: %s", concept),
		Concept:   concept,
		Timestamp: s.now().UTC(),
	}, nil
}

// Learners lists every learner that has records
func (s *Service) Learners(ctx context.Context) ([]string, error) {
	learners, err := s.store.Learners(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to list learners: %w", err)
	}
	return learners, nil
}

func (s *Service) load(ctx context.Context, learnerID string) ([]model.LearningRecord, error) {
	if strings.TrimSpace(learnerID) == "" {
		return nil, fmt.Errorf("%w: learner id is required", ErrInvalidInput)
	}
	records, err := s.store.Get(ctx, learnerID)
	if err != nil {
		return nil, fmt.Errorf("failed to load learning records: %w", err)
	}
	return records, nil
}

func validateIDs(learnerID, concept string) error {
	if strings.TrimSpace(learnerID) == "" {
		return fmt.Errorf("%w: learner id is required", ErrInvalidInput)
	}
	if strings.TrimSpace(concept) == "" {
		return fmt.Errorf("%w: concept is required", ErrInvalidInput)
	}
	return nil
}
