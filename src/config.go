package src

import (
	"feynman_tutor/src/model"
	"fmt"

	"github.com/kelseyhightower/envconfig"
)

type Config struct {
	LogConfig      model.LogConfig      `envconfig:"LOG"`
	LLMConfig      model.LLMConfig      `envconfig:"LLM"`
	RedisConfig    model.RedisConfig    `envconfig:"REDIS"`
	StoreConfig    model.StoreConfig    `envconfig:"STORE"`
	MemoryConfig   model.MemoryConfig   `envconfig:"MEMORY"`
	GraphConfig    model.GraphConfig    `envconfig:"NEO4J"`
	ServerConfig   model.ServerConfig   `envconfig:"SERVER"`
	ReminderConfig model.ReminderConfig `envconfig:"REMINDER"`
	PromptsFile    string               `envconfig:"PROMPTS_FILE" default:"prompts.yaml"`
}

func LoadConfig() (*Config, error) {
	var config Config
	err := envconfig.Process("", &config)
	if err != nil {
		return nil, fmt.Errorf("error processing environment configuration: %v", err)
	}

	if err := config.Validate(); err != nil {
		return nil, err
	}

	return &config, nil
}

// Validate rejects settings the scheduler cannot work with
func (c *Config) Validate() error {
	m := c.MemoryConfig
	if len(m.Intervals) == 0 {
		return fmt.Errorf("MEMORY_INTERVALS must not be empty")
	}
	for i, days := range m.Intervals {
		if days <= 0 {
			return fmt.Errorf("MEMORY_INTERVALS[%d] must be positive, got %d", i, days)
		}
		if i > 0 && days < m.Intervals[i-1] {
			return fmt.Errorf("MEMORY_INTERVALS must be ascending")
		}
	}
	if m.Threshold <= 0 || m.Threshold > 1 {
		return fmt.Errorf("MEMORY_THRESHOLD must be in (0, 1], got %v", m.Threshold)
	}
	if m.LearningRate < 0 || m.LearningRate > 1 {
		return fmt.Errorf("MEMORY_LEARNING_RATE must be in [0, 1], got %v", m.LearningRate)
	}
	if m.InitialStrength < 0 || m.InitialStrength > 1 {
		return fmt.Errorf("MEMORY_INITIAL_STRENGTH must be in [0, 1], got %v", m.InitialStrength)
	}

	switch c.StoreConfig.Backend {
	case "redis", "sql", "memory":
	default:
		return fmt.Errorf("unknown STORE_BACKEND %q", c.StoreConfig.Backend)
	}

	switch c.LLMConfig.Provider {
	case "deepseek", "openai", "ollama", "ark":
	default:
		return fmt.Errorf("unknown LLM_PROVIDER %q", c.LLMConfig.Provider)
	}

	return nil
}
