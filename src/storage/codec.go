package storage

import (
	"fmt"
	"strings"
	"time"

	"feynman_tutor/src/model"

	"github.com/bytedance/sonic"
)

// wireRecord mirrors the stored JSON loosely so lists written by older
// writers (naive ISO timestamps, missing strength) still decode.
type wireRecord struct {
	Concept        string   `json:"concept"`
	FirstLearned   string   `json:"first_learned"`
	MemoryStrength *float64 `json:"memory_strength"`
	ReviewCount    int      `json:"review_count"`
	LastReviewed   string   `json:"last_reviewed,omitempty"`
}

var timeLayouts = []string{
	time.RFC3339Nano,
	"2006-01-02T15:04:05.999999999",
	"2006-01-02 15:04:05.999999999",
	"2006-01-02",
}

const defaultStoredStrength = 0.5

func encodeRecords(records []model.LearningRecord) ([]byte, error) {
	if records == nil {
		records = []model.LearningRecord{}
	}
	data, err := sonic.Marshal(records)
	if err != nil {
		return nil, fmt.Errorf("failed to marshal learning records: %w", err)
	}
	return data, nil
}

func decodeRecords(data []byte) ([]model.LearningRecord, error) {
	if len(data) == 0 {
		return []model.LearningRecord{}, nil
	}

	var wire []wireRecord
	if err := sonic.Unmarshal(data, &wire); err != nil {
		return nil, fmt.Errorf("failed to unmarshal learning records: %w", err)
	}

	records := make([]model.LearningRecord, 0, len(wire))
	for i, w := range wire {
		first, err := parseTime(w.FirstLearned)
		if err != nil {
			return nil, fmt.Errorf("record %d (%s): bad first_learned: %w", i, w.Concept, err)
		}

		record := model.LearningRecord{
			Concept:        w.Concept,
			FirstLearned:   first,
			MemoryStrength: defaultStoredStrength,
			ReviewCount:    w.ReviewCount,
		}
		if w.MemoryStrength != nil {
			record.MemoryStrength = *w.MemoryStrength
		}
		if w.LastReviewed != "" {
			last, err := parseTime(w.LastReviewed)
			if err != nil {
				return nil, fmt.Errorf("record %d (%s): bad last_reviewed: %w", i, w.Concept, err)
			}
			record.LastReviewed = &last
		}
		records = append(records, record)
	}
	return records, nil
}

// parseTime accepts RFC 3339 and naive ISO-8601 timestamps; naive ones are UTC
func parseTime(s string) (time.Time, error) {
	s = strings.TrimSpace(s)
	var lastErr error
	for _, layout := range timeLayouts {
		t, err := time.Parse(layout, s)
		if err == nil {
			return t, nil
		}
		lastErr = err
	}
	return time.Time{}, lastErr
}

func cloneRecords(records []model.LearningRecord) []model.LearningRecord {
	out := make([]model.LearningRecord, len(records))
	copy(out, records)
	for i := range out {
		if out[i].LastReviewed != nil {
			last := *out[i].LastReviewed
			out[i].LastReviewed = &last
		}
	}
	return out
}
