package llm

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"feynman_tutor/src/logger"
	"feynman_tutor/src/model"

	einomodel "github.com/cloudwego/eino/components/model"
	"github.com/cloudwego/eino/compose"
	"github.com/cloudwego/eino/schema"
)

var (
	// ErrEmptyResponse means the model answered with no content
	ErrEmptyResponse = errors.New("llm: empty response")
	// ErrUnparseable means the answer had no recognizable structure
	ErrUnparseable = errors.New("llm: unparseable response")
)

type task string

const (
	taskExplanation  task = "explanation"
	taskExercises    task = "exercises"
	taskLearningPath task = "learning_path"
)

// Client runs one compiled Template → ChatModel chain per task
type Client struct {
	chains  map[task]compose.Runnable[map[string]any, *schema.Message]
	timeout time.Duration
}

// NewClient compiles the chains. Empty prompts fall back to DefaultPrompts.
func NewClient(ctx context.Context, chatModel einomodel.BaseChatModel, prompts Prompts, timeout time.Duration) (*Client, error) {
	prompts = prompts.withDefaults()
	pairs := map[task]PromptPair{
		taskExplanation:  prompts.Explanation,
		taskExercises:    prompts.Exercises,
		taskLearningPath: prompts.LearningPath,
	}

	c := &Client{
		chains:  make(map[task]compose.Runnable[map[string]any, *schema.Message], len(pairs)),
		timeout: timeout,
	}
	for name, pair := range pairs {
		chain, err := compose.NewChain[map[string]any, *schema.Message]().
			AppendChatTemplate(newTemplate(pair)).
			AppendChatModel(chatModel).
			Compile(ctx)
		if err != nil {
			return nil, fmt.Errorf("error creating %s chain: %v", name, err)
		}
		c.chains[name] = chain
	}
	return c, nil
}

// Explain asks for a definition, a Feynman-style explanation and misconceptions
func (c *Client) Explain(ctx context.Context, concept string) (model.Explanation, error) {
	text, err := c.generate(ctx, taskExplanation, map[string]any{"concept": concept})
	if err != nil {
		return model.Explanation{}, err
	}

	explanation, ok := ParseExplanation(text)
	if !ok {
		return model.Explanation{}, fmt.Errorf("%w: explanation of %s", ErrUnparseable, concept)
	}
	explanation.Source = model.SourceLLM
	return explanation, nil
}

// Exercises asks for practice questions at the given difficulty
func (c *Client) Exercises(ctx context.Context, concept, difficulty string) (model.Exercises, error) {
	text, err := c.generate(ctx, taskExercises, map[string]any{
		"concept":    concept,
		"difficulty": difficulty,
	})
	if err != nil {
		return model.Exercises{}, err
	}

	exercises, ok := ParseExercises(text)
	if !ok {
		return model.Exercises{}, fmt.Errorf("%w: exercises for %s", ErrUnparseable, concept)
	}
	exercises.Source = model.SourceLLM
	return exercises, nil
}

// LearningPath asks for a day-by-day plan
func (c *Client) LearningPath(ctx context.Context, concept, userLevel string, days int) (model.LearningPath, error) {
	text, err := c.generate(ctx, taskLearningPath, map[string]any{
		"concept":    concept,
		"user_level": userLevel,
		"days":       days,
	})
	if err != nil {
		return model.LearningPath{}, err
	}

	path, ok := ParseLearningPath(text)
	if !ok {
		return model.LearningPath{}, fmt.Errorf("%w: learning path for %s", ErrUnparseable, concept)
	}
	path.Concept = concept
	path.UserLevel = userLevel
	path.Source = model.SourceLLM
	return path, nil
}

func (c *Client) generate(ctx context.Context, name task, vars map[string]any) (string, error) {
	if c.timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, c.timeout)
		defer cancel()
	}

	start := time.Now()
	msg, err := c.chains[name].Invoke(ctx, vars)
	if err != nil {
		return "", fmt.Errorf("%s chain failed: %w", name, err)
	}

	if msg == nil || strings.TrimSpace(msg.Content) == "" {
		return "", fmt.Errorf("%w: %s", ErrEmptyResponse, name)
	}

	logger.Debug().
		Str("task", string(name)).
		Dur("latency", time.Since(start)).
		Int("chars", len(msg.Content)).
		Msg("llm response")
	return msg.Content, nil
}
