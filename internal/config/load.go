package config

import (
	"errors"
	"fmt"
	"strings"

	"github.com/go-playground/validator/v10"
	"github.com/spf13/viper"
)

// Load configuration from environment variables and optionally config files.
// Environment variables take precedence over values from config files.
// Returns a populated Config struct or an error if loading/validation fails.
func Load() (*Config, error) {
	v := viper.New()

	setDefaults(v)

	// An optional config.yaml in the working directory can override the
	// defaults; its absence is not an error.
	v.SetConfigName("config")
	v.SetConfigType("yaml")
	v.AddConfigPath(".")
	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if !errors.As(err, &notFound) {
			return nil, fmt.Errorf("failed to read config file: %w", err)
		}
	}

	// Environment variables use the ACHARYA_ prefix with underscores for
	// nesting, e.g. ACHARYA_SERVER_PORT maps to server.port.
	v.SetEnvPrefix("ACHARYA")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("failed to unmarshal config: %w", err)
	}

	validate := validator.New()
	if err := validate.Struct(cfg); err != nil {
		return nil, fmt.Errorf("config validation failed: %w", err)
	}

	// Cross-field requirements that tags cannot express.
	if cfg.Database.Backend == "postgres" && cfg.Database.URL == "" {
		return nil, fmt.Errorf("config validation failed: database.url is required when database.backend is postgres")
	}
	if cfg.Registry.Backend == "redis" && cfg.Registry.Addr == "" {
		return nil, fmt.Errorf("config validation failed: registry.addr is required when registry.backend is redis")
	}

	return &cfg, nil
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("server.port", 8000)
	v.SetDefault("server.log_level", "info")
	v.SetDefault("server.rate_limit_rps", 5.0)
	v.SetDefault("server.rate_limit_burst", 10)

	v.SetDefault("database.backend", "memory")
	v.SetDefault("database.url", "")

	v.SetDefault("registry.backend", "memory")
	v.SetDefault("registry.addr", "")
	v.SetDefault("registry.password", "")
	v.SetDefault("registry.db", 0)
	v.SetDefault("registry.ttl", "24h")

	v.SetDefault("pipeline.decomposition_settle", "30s")
	v.SetDefault("pipeline.fanout_settle", "30s")
	v.SetDefault("pipeline.poll_interval", "10s")
	v.SetDefault("pipeline.min_subtopics", 5)
	v.SetDefault("pipeline.max_subtopics", 10)

	v.SetDefault("llm.gemini_api_key", "")
	v.SetDefault("llm.model", "gemini-2.0-flash")
	v.SetDefault("llm.max_retries", 3)

	v.SetDefault("media.base_url", "http://localhost:8000")
	v.SetDefault("media.podcast_dir", "static/podcasts")
	v.SetDefault("media.image_dir", "static/images")
}
