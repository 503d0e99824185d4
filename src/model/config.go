package model

import "time"

// ----------------------------------------------------
// ================ Config ================

// LogConfig controls the zerolog setup.
// Format is json or console, Output is stdout, stderr or file.
type LogConfig struct {
	Level      string `envconfig:"LEVEL" default:"info"`
	Format     string `envconfig:"FORMAT" default:"json"`
	Output     string `envconfig:"OUTPUT" default:"stdout"`
	FilePath   string `envconfig:"FILE_PATH" default:"logs/app.log"`
	TimeFormat string `envconfig:"TIME_FORMAT" default:"rfc3339"`
}

// LLMConfig selects and tunes the chat model backend.
// Provider is one of deepseek, openai, ollama, ark.
type LLMConfig struct {
	Provider    string        `envconfig:"PROVIDER" default:"deepseek"`
	APIKey      string        `envconfig:"API_KEY"`
	BaseURL     string        `envconfig:"BASE_URL" default:"https://api.deepseek.com"`
	Model       string        `envconfig:"MODEL" default:"deepseek-chat"`
	MaxTokens   int           `envconfig:"MAX_TOKENS" default:"2000"`
	Temperature float64       `envconfig:"TEMPERATURE" default:"0.7"`
	Timeout     time.Duration `envconfig:"TIMEOUT" default:"60s"`
}

// RedisConfig holds Redis connection settings
type RedisConfig struct {
	URL      string        `envconfig:"URL" default:"redis://localhost:6379/0"`
	CacheTTL time.Duration `envconfig:"CACHE_TTL" default:"24h"`
}

// StoreConfig picks the record store backend (redis, sql, memory).
// SQLDriver is sqlite or pgx.
type StoreConfig struct {
	Backend    string `envconfig:"BACKEND" default:"redis"`
	SQLDriver  string `envconfig:"SQL_DRIVER" default:"sqlite"`
	SQLDSN     string `envconfig:"SQL_DSN" default:"data/records.db"`
	MaxRetries int    `envconfig:"MAX_RETRIES" default:"5"`
}

// MemoryConfig holds the spaced-repetition constants. Intervals are in days.
type MemoryConfig struct {
	Threshold       float64 `envconfig:"THRESHOLD" default:"0.8"`
	Intervals       []int   `envconfig:"INTERVALS" default:"1,3,7,14,30"`
	LearningRate    float64 `envconfig:"LEARNING_RATE" default:"0.3"`
	InitialStrength float64 `envconfig:"INITIAL_STRENGTH" default:"0.5"`
}

// GraphConfig holds Neo4j settings for the knowledge graph
type GraphConfig struct {
	Enabled    bool   `envconfig:"ENABLED" default:"false"`
	URI        string `envconfig:"URI" default:"bolt://localhost:7687"`
	User       string `envconfig:"USER" default:"neo4j"`
	Password   string `envconfig:"PASSWORD" default:"password"`
	MaxRelated int    `envconfig:"MAX_RELATED" default:"5"`
	Depth      int    `envconfig:"DEPTH" default:"2"`
}

// ServerConfig holds HTTP server settings
type ServerConfig struct {
	Addr           string        `envconfig:"ADDR" default:"0.0.0.0:5000"`
	MaxUploadBytes int           `envconfig:"MAX_UPLOAD_BYTES" default:"16777216"`
	ExitWait       time.Duration `envconfig:"EXIT_WAIT" default:"5s"`
}

// ReminderConfig controls the due-review sweep
type ReminderConfig struct {
	Enabled  bool          `envconfig:"ENABLED" default:"true"`
	Interval time.Duration `envconfig:"INTERVAL" default:"1h"`
}
