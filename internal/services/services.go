package services

import (
	"context"
	"errors"

	"feynman_tutor/src/model"
)

// ErrInvalidInput marks requests rejected before any lookup
var ErrInvalidInput = errors.New("services: invalid input")

// Generator produces teaching material with a language model
type Generator interface {
	Explain(ctx context.Context, concept string) (model.Explanation, error)
	Exercises(ctx context.Context, concept, difficulty string) (model.Exercises, error)
	LearningPath(ctx context.Context, concept, userLevel string, days int) (model.LearningPath, error)
}

// Cache stores generated material between requests
type Cache interface {
	Get(ctx context.Context, key string, dest any) (bool, error)
	Set(ctx context.Context, key string, value any) error
}
