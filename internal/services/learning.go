package services

import (
	"context"
	"fmt"
	"strings"

	"feynman_tutor/src/logger"
	"feynman_tutor/src/model"
)

const DefaultUserLevel = "beginner"

// PathDays is the plan length per learner level
var PathDays = map[string]int{
	"beginner":     7,
	"intermediate": 5,
	"advanced":     3,
}

type LearningService struct {
	gen   Generator
	cache Cache
}

func NewLearningService(gen Generator, cache Cache) *LearningService {
	return &LearningService{gen: gen, cache: cache}
}

// Path builds a learning path sized for the level. An empty level means beginner.
func (ls *LearningService) Path(ctx context.Context, concept, level string) (model.LearningPath, error) {
	concept = strings.TrimSpace(concept)
	if concept == "" {
		return model.LearningPath{}, fmt.Errorf("%w: concept is required", ErrInvalidInput)
	}
	level = strings.ToLower(strings.TrimSpace(level))
	if level == "" {
		level = DefaultUserLevel
	}
	days, ok := PathDays[level]
	if !ok {
		return model.LearningPath{}, fmt.Errorf("%w: unknown user level %q", ErrInvalidInput, level)
	}

	key := "path:" + level + ":" + concept
	var cached model.LearningPath
	if readCache(ctx, ls.cache, key, &cached) {
		cached.Source = model.SourceCache
		return cached, nil
	}

	if ls.gen != nil {
		path, err := ls.gen.LearningPath(ctx, concept, level, days)
		if err == nil && len(path.Days) > 0 {
			if len(path.Days) > days {
				path.Days = path.Days[:days]
			}
			writeCache(ctx, ls.cache, key, path)
			return path, nil
		}
		logger.Warn().Err(err).Str("concept", concept).Str("level", level).Msg("learning path generation failed, using fallback")
	}
	return fallbackPath(concept, level, days), nil
}
