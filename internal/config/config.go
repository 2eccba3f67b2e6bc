package config

import "time"

// Config holds all application configuration.
// It organizes settings into logical groups for better maintainability.
type Config struct {
	Server   ServerConfig   `mapstructure:"server" validate:"required"`
	Database DatabaseConfig `mapstructure:"database" validate:"required"`
	Registry RegistryConfig `mapstructure:"registry" validate:"required"`
	Pipeline PipelineConfig `mapstructure:"pipeline" validate:"required"`
	LLM      LLMConfig      `mapstructure:"llm" validate:"required"`
	Media    MediaConfig    `mapstructure:"media" validate:"required"`
}

// ServerConfig contains all server-related configuration settings.
type ServerConfig struct {
	Port     int    `mapstructure:"port" validate:"required,gt=0,lt=65536"`
	LogLevel string `mapstructure:"log_level" validate:"required,oneof=debug info warn error"`
	// Requests per second allowed on the generate endpoint, per client IP.
	RateLimitRPS   float64 `mapstructure:"rate_limit_rps" validate:"gt=0"`
	RateLimitBurst int     `mapstructure:"rate_limit_burst" validate:"gt=0"`
}

// DatabaseConfig controls where agent session state is persisted.
// The memory backend keeps sessions in-process and loses them on restart.
type DatabaseConfig struct {
	Backend string `mapstructure:"backend" validate:"required,oneof=memory postgres"`
	URL     string `mapstructure:"url" validate:"omitempty,url"`
}

// RegistryConfig controls where job records live. The memory backend is
// suitable for a single instance; redis allows multiple instances to share
// job state.
type RegistryConfig struct {
	Backend  string        `mapstructure:"backend" validate:"required,oneof=memory redis"`
	Addr     string        `mapstructure:"addr"`
	Password string        `mapstructure:"password"`
	DB       int           `mapstructure:"db" validate:"gte=0"`
	TTL      time.Duration `mapstructure:"ttl" validate:"gte=0"`
}

// PipelineConfig tunes the orchestration pipeline timings and bounds.
type PipelineConfig struct {
	DecompositionSettle time.Duration `mapstructure:"decomposition_settle" validate:"gt=0"`
	FanoutSettle        time.Duration `mapstructure:"fanout_settle" validate:"gt=0"`
	PollInterval        time.Duration `mapstructure:"poll_interval" validate:"gt=0"`
	MinSubtopics        int           `mapstructure:"min_subtopics" validate:"gt=0"`
	MaxSubtopics        int           `mapstructure:"max_subtopics" validate:"gtefield=MinSubtopics"`
}

// LLMConfig contains all LLM integration related settings.
type LLMConfig struct {
	GeminiAPIKey string `mapstructure:"gemini_api_key" validate:"required"`
	Model        string `mapstructure:"model" validate:"required"`
	MaxRetries   int    `mapstructure:"max_retries" validate:"gte=0"`
}

// MediaConfig locates generated media on disk and the base URL clients use
// to fetch it.
type MediaConfig struct {
	BaseURL    string `mapstructure:"base_url" validate:"required,url"`
	PodcastDir string `mapstructure:"podcast_dir" validate:"required"`
	ImageDir   string `mapstructure:"image_dir" validate:"required"`
}
