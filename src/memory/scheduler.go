// Package memory implements the memory-strength model and the review
// scheduling built on it.
//
// Strength is a scalar in [0, 1]. Each review pulls it toward the observed
// performance by a fixed learning rate. While strength stays below the mastery
// threshold, the next review is due firstLearned plus an interval picked from
// an ascending day table by floor(strength * len(table)).
package memory

import (
	"math"
	"time"

	"feynman_tutor/src/model"
)

const (
	DefaultThreshold       = 0.8
	DefaultLearningRate    = 0.3
	DefaultInitialStrength = 0.5
)

// DefaultIntervals is the review interval table in days
var DefaultIntervals = []int{1, 3, 7, 14, 30}

// Scheduler holds the model constants. The zero value is not usable; build it
// with NewScheduler or DefaultScheduler.
type Scheduler struct {
	threshold       float64
	intervals       []time.Duration
	learningRate    float64
	initialStrength float64
}

// NewScheduler builds a Scheduler from config as given. Callers supply the
// defaults; src.Config gets them from envconfig and validates the ranges.
func NewScheduler(cfg model.MemoryConfig) *Scheduler {
	s := &Scheduler{
		threshold:       cfg.Threshold,
		learningRate:    cfg.LearningRate,
		initialStrength: cfg.InitialStrength,
		intervals:       make([]time.Duration, len(cfg.Intervals)),
	}
	for i, d := range cfg.Intervals {
		s.intervals[i] = time.Duration(d) * 24 * time.Hour
	}
	return s
}

// DefaultScheduler returns a Scheduler with threshold 0.8, rate 0.3, initial
// strength 0.5 and intervals 1, 3, 7, 14, 30 days.
func DefaultScheduler() *Scheduler {
	return NewScheduler(model.MemoryConfig{
		Threshold:       DefaultThreshold,
		Intervals:       DefaultIntervals,
		LearningRate:    DefaultLearningRate,
		InitialStrength: DefaultInitialStrength,
	})
}

// UpdateStrength interpolates between the current strength and the observed
// performance, then clamps to [0, 1].
func (s *Scheduler) UpdateStrength(current, performance float64) float64 {
	next := current*(1-s.learningRate) + performance*s.learningRate
	if math.IsNaN(next) {
		next = current
		if math.IsNaN(next) {
			return 0
		}
	}
	return clamp(next)
}

// NextReviewDate returns the next review time and true, or false when the
// concept needs no further review.
func (s *Scheduler) NextReviewDate(firstLearned time.Time, strength float64) (time.Time, bool) {
	if strength >= s.threshold || math.IsNaN(strength) {
		return time.Time{}, false
	}

	index := int(math.Floor(strength * float64(len(s.intervals))))
	if index < 0 || index >= len(s.intervals) {
		return time.Time{}, false
	}

	return firstLearned.Add(s.intervals[index]), true
}

// Mastered reports whether strength clears the mastery threshold
func (s *Scheduler) Mastered(strength float64) bool {
	return strength >= s.threshold
}

// Entry annotates a record with its schedule as of now
func (s *Scheduler) Entry(record model.LearningRecord, now time.Time) model.ScheduleEntry {
	entry := model.ScheduleEntry{
		Concept:        record.Concept,
		MemoryStrength: record.MemoryStrength,
		ReviewCount:    record.ReviewCount,
		Mastered:       s.Mastered(record.MemoryStrength),
	}
	if next, ok := s.NextReviewDate(record.FirstLearned, record.MemoryStrength); ok {
		entry.NextReview = &next
		entry.Due = !next.After(now)
	}
	return entry
}

func clamp(v float64) float64 {
	return math.Min(math.Max(v, 0), 1)
}
