package pkg

import "feynman_tutor/src/model"

// HTTP request and response bodies

// ReviewRequest is the body of the /api/memory review and record endpoints.
// UserID defaults to "1"; PerformanceScore is only read by submit.
type ReviewRequest struct {
	Concept          string   `json:"concept"`
	UserID           string   `json:"user_id"`
	PerformanceScore *float64 `json:"performance_score,omitempty"`
}

// PathRequest is the body of POST /api/learning/path
type PathRequest struct {
	Concept   string `json:"concept"`
	UserLevel string `json:"user_level"`
}

// RelationshipRequest is the body of PUT /api/concept/:name/related/:other
type RelationshipRequest struct {
	Weight *float64 `json:"weight"`
}

// Relationship echoes an updated edge
type Relationship struct {
	From   string  `json:"from"`
	To     string  `json:"to"`
	Weight float64 `json:"weight"`
}

// RecordResponse wraps a learning record with whether it was just created
type RecordResponse struct {
	Record  model.LearningRecord `json:"record"`
	Created bool                 `json:"created"`
}

// ReviewResult is returned by a submitted review
type ReviewResult struct {
	Status string               `json:"status"`
	Record model.LearningRecord `json:"record"`
	Entry  model.ScheduleEntry  `json:"schedule"`
}

type ErrorResponse struct {
	Error     string `json:"error"`
	RequestID string `json:"request_id,omitempty"`
}

type HealthResponse struct {
	Status string            `json:"status"`
	Checks map[string]string `json:"checks"`
}

const DefaultUserID = "1"
