package model

import "time"

// LearningRecord tracks one learner's retention of one concept.
// FirstLearned is set once at creation; LastReviewed stays nil until the first review.
type LearningRecord struct {
	Concept        string     `json:"concept"`
	FirstLearned   time.Time  `json:"first_learned"`
	MemoryStrength float64    `json:"memory_strength"`
	ReviewCount    int        `json:"review_count"`
	LastReviewed   *time.Time `json:"last_reviewed,omitempty"`
}

// ScheduleEntry is a record annotated with its next review date
type ScheduleEntry struct {
	Concept        string     `json:"concept"`
	MemoryStrength float64    `json:"memory_strength"`
	ReviewCount    int        `json:"review_count"`
	NextReview     *time.Time `json:"next_review"`
	Due            bool       `json:"due"`
	Mastered       bool       `json:"mastered"`
}

// LearningStats summarizes a learner's records
type LearningStats struct {
	TotalConcepts    int     `json:"total_concepts"`
	MasteredConcepts int     `json:"mastered_concepts"`
	ReviewCount      int     `json:"review_count"`
	AverageStrength  float64 `json:"average_strength"`
	DueToday         int     `json:"due_today"`
}

// StrengthOverview lists concepts and strengths as parallel arrays for charting
type StrengthOverview struct {
	Concepts  []string  `json:"concepts"`
	Strengths []float64 `json:"strengths"`
}

// ReviewSession is the acknowledgement returned when a review starts or is skipped
type ReviewSession struct {
	ID        string    `json:"id"`
	Status    string    `json:"status"`
	Message   string    `json:"message"`
	Concept   string    `json:"concept"`
	Timestamp time.Time `json:"timestamp"`
}

// RecordsUpdate mutates a learner's record list inside a store transaction.
// Returning changed=false skips the write; returning an error aborts it.
type RecordsUpdate func(records []LearningRecord) (updated []LearningRecord, changed bool, err error)
