package memory

import (
	"math"
	"testing"
	"time"

	"feynman_tutor/src/model"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var firstLearned = time.Date(2024, 3, 1, 9, 0, 0, 0, time.UTC)

func TestUpdateStrength(t *testing.T) {
	s := DefaultScheduler()

	assert.InDelta(t, 0.65, s.UpdateStrength(0.5, 1.0), 1e-9)
	assert.InDelta(t, 0.63, s.UpdateStrength(0.9, 0.0), 1e-9)
	assert.InDelta(t, 0.5, s.UpdateStrength(0.5, 0.5), 1e-9)
}

func TestUpdateStrengthAlwaysClamped(t *testing.T) {
	s := DefaultScheduler()
	values := []float64{math.Inf(-1), -1e9, -2, -0.1, 0, 0.3, 1, 1.5, 7, 1e9, math.Inf(1), math.NaN()}

	for _, current := range values {
		for _, performance := range values {
			got := s.UpdateStrength(current, performance)
			assert.False(t, math.IsNaN(got), "UpdateStrength(%v, %v) is NaN", current, performance)
			assert.GreaterOrEqual(t, got, 0.0, "UpdateStrength(%v, %v)", current, performance)
			assert.LessOrEqual(t, got, 1.0, "UpdateStrength(%v, %v)", current, performance)
		}
	}
}

func TestUpdateStrengthClampsAfterInterpolation(t *testing.T) {
	s := DefaultScheduler()

	// 0.9*0.7 + 2*0.3 = 1.23 is clamped only once interpolated
	assert.Equal(t, 1.0, s.UpdateStrength(0.9, 2))
	// -1*0.7 + 1*0.3 = -0.4
	assert.Equal(t, 0.0, s.UpdateStrength(-1, 1))
	// an out-of-range input that interpolates back into range is kept
	assert.InDelta(t, 0.89, s.UpdateStrength(1.1, 0.4), 1e-9)
}

func TestNextReviewDate(t *testing.T) {
	s := DefaultScheduler()

	cases := []struct {
		strength float64
		days     int
		due      bool
	}{
		{0, 1, true},
		{0.1, 1, true},
		{0.2, 3, true},
		{0.45, 7, true},
		{0.6, 14, true},
		{0.79, 14, true},
		{0.8, 0, false},
		{0.95, 0, false},
		{1, 0, false},
	}

	for _, tc := range cases {
		next, ok := s.NextReviewDate(firstLearned, tc.strength)
		require.Equal(t, tc.due, ok, "strength %v", tc.strength)
		if ok {
			assert.Equal(t, firstLearned.AddDate(0, 0, tc.days), next, "strength %v", tc.strength)
		}
	}
}

func TestNextReviewDateMasteryIsInclusive(t *testing.T) {
	s := DefaultScheduler()

	_, ok := s.NextReviewDate(firstLearned, 0.8)
	assert.False(t, ok)
}

func TestNextReviewDateOutOfRangeIndex(t *testing.T) {
	// negative or NaN strength can only come from unclamped input
	s := NewScheduler(model.MemoryConfig{Threshold: 1, Intervals: []int{1, 3}})

	next, ok := s.NextReviewDate(firstLearned, 0.99)
	require.True(t, ok)
	assert.Equal(t, firstLearned.AddDate(0, 0, 3), next)

	_, ok = s.NextReviewDate(firstLearned, -0.5)
	assert.False(t, ok)

	_, ok = s.NextReviewDate(firstLearned, math.NaN())
	assert.False(t, ok)
}

func TestNextReviewDateSingleInterval(t *testing.T) {
	s := NewScheduler(model.MemoryConfig{Threshold: 1, Intervals: []int{5}})

	next, ok := s.NextReviewDate(firstLearned, 0.999)
	require.True(t, ok)
	assert.Equal(t, firstLearned.AddDate(0, 0, 5), next)
}

func TestAddRecordIsIdempotent(t *testing.T) {
	s := DefaultScheduler()
	later := firstLearned.Add(48 * time.Hour)

	records, changed := s.AddRecord(nil, "recursion", firstLearned)
	require.True(t, changed)
	require.Len(t, records, 1)
	assert.Equal(t, 0.5, records[0].MemoryStrength)
	assert.Equal(t, 0, records[0].ReviewCount)
	assert.Equal(t, firstLearned, records[0].FirstLearned)
	assert.Nil(t, records[0].LastReviewed)

	records, changed = s.AddRecord(records, "recursion", later)
	assert.False(t, changed)
	require.Len(t, records, 1)
	assert.Equal(t, firstLearned, records[0].FirstLearned)
	assert.Equal(t, 0, records[0].ReviewCount)
}

func TestRecordReview(t *testing.T) {
	s := DefaultScheduler()
	reviewedAt := firstLearned.Add(24 * time.Hour)

	records, _ := s.AddRecord(nil, "graphs", firstLearned)
	records, _ = s.AddRecord(records, "trees", firstLearned)

	records, found := s.RecordReview(records, "trees", 1.0, reviewedAt)
	require.True(t, found)

	trees, _ := FindRecord(records, "trees")
	assert.InDelta(t, 0.65, trees.MemoryStrength, 1e-9)
	assert.Equal(t, 1, trees.ReviewCount)
	require.NotNil(t, trees.LastReviewed)
	assert.Equal(t, reviewedAt, *trees.LastReviewed)
	assert.Equal(t, firstLearned, trees.FirstLearned)

	graphs, _ := FindRecord(records, "graphs")
	assert.Equal(t, 0, graphs.ReviewCount)
	assert.Nil(t, graphs.LastReviewed)
}

func TestRecordReviewMissingConcept(t *testing.T) {
	s := DefaultScheduler()
	records, _ := s.AddRecord(nil, "graphs", firstLearned)

	records, found := s.RecordReview(records, "heaps", 1.0, firstLearned)
	assert.False(t, found)
	require.Len(t, records, 1)
	assert.Equal(t, 0, records[0].ReviewCount)
	assert.Equal(t, 0.5, records[0].MemoryStrength)
}

func TestRecordReviewFirstMatchWins(t *testing.T) {
	s := DefaultScheduler()
	records := []model.LearningRecord{
		{Concept: "sorting", MemoryStrength: 0.5, FirstLearned: firstLearned},
		{Concept: "sorting", MemoryStrength: 0.2, FirstLearned: firstLearned},
	}

	records, found := s.RecordReview(records, "sorting", 1.0, firstLearned)
	require.True(t, found)
	assert.Equal(t, 1, records[0].ReviewCount)
	assert.Equal(t, 0, records[1].ReviewCount)
	assert.Equal(t, 0.2, records[1].MemoryStrength)
}

func TestReviewsCanLeaveMastery(t *testing.T) {
	s := DefaultScheduler()
	records := []model.LearningRecord{{Concept: "closures", MemoryStrength: 0.85, FirstLearned: firstLearned}}

	_, ok := s.NextReviewDate(firstLearned, records[0].MemoryStrength)
	require.False(t, ok)

	records, _ = s.RecordReview(records, "closures", 0, firstLearned)
	assert.InDelta(t, 0.595, records[0].MemoryStrength, 1e-9)

	next, ok := s.NextReviewDate(firstLearned, records[0].MemoryStrength)
	require.True(t, ok)
	assert.Equal(t, firstLearned.AddDate(0, 0, 7), next)
}

func TestEntry(t *testing.T) {
	s := DefaultScheduler()
	now := firstLearned.Add(5 * 24 * time.Hour)

	due := s.Entry(model.LearningRecord{Concept: "a", MemoryStrength: 0.3, FirstLearned: firstLearned}, now)
	require.NotNil(t, due.NextReview)
	assert.True(t, due.Due)
	assert.False(t, due.Mastered)

	upcoming := s.Entry(model.LearningRecord{Concept: "b", MemoryStrength: 0.7, FirstLearned: firstLearned}, now)
	require.NotNil(t, upcoming.NextReview)
	assert.False(t, upcoming.Due)

	mastered := s.Entry(model.LearningRecord{Concept: "c", MemoryStrength: 0.9, FirstLearned: firstLearned}, now)
	assert.Nil(t, mastered.NextReview)
	assert.False(t, mastered.Due)
	assert.True(t, mastered.Mastered)
}

func TestNewSchedulerCustomConfig(t *testing.T) {
	s := NewScheduler(model.MemoryConfig{
		Threshold:       0.9,
		Intervals:       []int{2, 4},
		LearningRate:    0.5,
		InitialStrength: 0.25,
	})

	assert.InDelta(t, 0.75, s.UpdateStrength(0.5, 1), 1e-9)
	assert.False(t, s.Mastered(0.85))
	assert.True(t, s.Mastered(0.9))

	records, _ := s.AddRecord(nil, "recursion", firstLearned)
	assert.Equal(t, 0.25, records[0].MemoryStrength)

	next, ok := s.NextReviewDate(firstLearned, 0.85)
	require.True(t, ok)
	assert.Equal(t, firstLearned.AddDate(0, 0, 4), next)
}

func TestNewSchedulerKeepsZeroRateAndStrength(t *testing.T) {
	s := NewScheduler(model.MemoryConfig{
		Threshold:       0.8,
		Intervals:       []int{1, 3, 7, 14, 30},
		LearningRate:    0,
		InitialStrength: 0,
	})

	// a zero rate freezes strength
	assert.InDelta(t, 0.5, s.UpdateStrength(0.5, 1.0), 1e-9)
	assert.InDelta(t, 0.2, s.UpdateStrength(0.2, 0.0), 1e-9)

	records, changed := s.AddRecord(nil, "recursion", firstLearned)
	require.True(t, changed)
	assert.Zero(t, records[0].MemoryStrength)

	next, ok := s.NextReviewDate(firstLearned, records[0].MemoryStrength)
	require.True(t, ok)
	assert.Equal(t, firstLearned.AddDate(0, 0, 1), next)
}

func TestDefaultSchedulerConstants(t *testing.T) {
	s := DefaultScheduler()

	records, _ := s.AddRecord(nil, "recursion", firstLearned)
	assert.Equal(t, DefaultInitialStrength, records[0].MemoryStrength)
	assert.True(t, s.Mastered(DefaultThreshold))
	assert.False(t, s.Mastered(0.79))
}
