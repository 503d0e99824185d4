package services

import (
	"context"
	"fmt"
	"math"
	"strings"

	"feynman_tutor/src/graph"
	"feynman_tutor/src/logger"
	"feynman_tutor/src/model"
)

const DefaultDifficulty = "medium"

var difficulties = map[string]bool{"easy": true, "medium": true, "hard": true}

// ConceptService handles concept lookups and generated material.
// gen and cache are optional.
type ConceptService struct {
	catalog graph.Catalog
	gen     Generator
	cache   Cache
}

func NewConceptService(catalog graph.Catalog, gen Generator, cache Cache) *ConceptService {
	return &ConceptService{catalog: catalog, gen: gen, cache: cache}
}

// Search returns concept names containing query, case-insensitively
func (cs *ConceptService) Search(ctx context.Context, query string) ([]string, error) {
	if strings.TrimSpace(query) == "" {
		return nil, fmt.Errorf("%w: search query is required", ErrInvalidInput)
	}
	return cs.catalog.Search(ctx, query)
}

func (cs *ConceptService) Get(ctx context.Context, name string) (model.Concept, error) {
	if strings.TrimSpace(name) == "" {
		return model.Concept{}, fmt.Errorf("%w: concept name is required", ErrInvalidInput)
	}
	return cs.catalog.Get(ctx, name)
}

func (cs *ConceptService) KnowledgeGraph(ctx context.Context, name string) (model.KnowledgeGraph, error) {
	return cs.catalog.ConceptGraph(ctx, name)
}

func (cs *ConceptService) Related(ctx context.Context, name string, limit int) ([]model.RelatedConcept, error) {
	return cs.catalog.Related(ctx, name, limit)
}

// UpdateRelationship sets the weight of an existing edge between two concepts.
// Weights must be positive and finite.
func (cs *ConceptService) UpdateRelationship(ctx context.Context, from, to string, weight float64) error {
	if strings.TrimSpace(from) == "" || strings.TrimSpace(to) == "" {
		return fmt.Errorf("%w: both concept names are required", ErrInvalidInput)
	}
	if math.IsNaN(weight) || math.IsInf(weight, 0) || weight <= 0 {
		return fmt.Errorf("%w: weight must be a positive number, got %v", ErrInvalidInput, weight)
	}
	return cs.catalog.UpdateRelationship(ctx, from, to, weight)
}

// Explanation tries the cache, then the model, then canned content
func (cs *ConceptService) Explanation(ctx context.Context, name string) (model.Explanation, error) {
	if strings.TrimSpace(name) == "" {
		return model.Explanation{}, fmt.Errorf("%w: concept name is required", ErrInvalidInput)
	}

	key := "explanation:" + name
	var cached model.Explanation
	if cs.fromCache(ctx, key, &cached) {
		cached.Source = model.SourceCache
		return cached, nil
	}

	if cs.gen != nil {
		explanation, err := cs.gen.Explain(ctx, name)
		if err == nil {
			cs.toCache(ctx, key, explanation)
			return explanation, nil
		}
		logger.Warn().Err(err).Str("concept", name).Msg("explanation generation failed, using fallback")
	}
	return fallbackExplanation(name), nil
}

// Exercises works like Explanation. An empty difficulty means medium.
func (cs *ConceptService) Exercises(ctx context.Context, name, difficulty string) (model.Exercises, error) {
	if strings.TrimSpace(name) == "" {
		return model.Exercises{}, fmt.Errorf("%w: concept name is required", ErrInvalidInput)
	}
	difficulty = strings.ToLower(strings.TrimSpace(difficulty))
	if difficulty == "" {
		difficulty = DefaultDifficulty
	}
	if !difficulties[difficulty] {
		return model.Exercises{}, fmt.Errorf("%w: unknown difficulty %q", ErrInvalidInput, difficulty)
	}

	key := "exercises:" + difficulty + ":" + name
	var cached model.Exercises
	if cs.fromCache(ctx, key, &cached) {
		cached.Source = model.SourceCache
		return cached, nil
	}

	if cs.gen != nil {
		exercises, err := cs.gen.Exercises(ctx, name, difficulty)
		if err == nil {
			cs.toCache(ctx, key, exercises)
			return exercises, nil
		}
		logger.Warn().Err(err).Str("concept", name).Str("difficulty", difficulty).Msg("exercise generation failed, using fallback")
	}
	return fallbackExercises(name), nil
}

func (cs *ConceptService) fromCache(ctx context.Context, key string, dest any) bool {
	return readCache(ctx, cs.cache, key, dest)
}

func (cs *ConceptService) toCache(ctx context.Context, key string, value any) {
	writeCache(ctx, cs.cache, key, value)
}

// cache failures only cost a regeneration, so they are logged and ignored
func readCache(ctx context.Context, cache Cache, key string, dest any) bool {
	if cache == nil {
		return false
	}
	found, err := cache.Get(ctx, key, dest)
	if err != nil {
		logger.Warn().Err(err).Str("key", key).Msg("cache read failed")
		return false
	}
	return found
}

func writeCache(ctx context.Context, cache Cache, key string, value any) {
	if cache == nil {
		return
	}
	if err := cache.Set(ctx, key, value); err != nil {
		logger.Warn().Err(err).Str("key", key).Msg("cache write failed")
	}
}
