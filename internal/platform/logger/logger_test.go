// Package logger_test contains tests for the logger package
package logger_test

import (
	"context"
	"log/slog"
	"testing"

	"github.com/phrazzld/acharya-api/internal/config"
	"github.com/phrazzld/acharya-api/internal/platform/logger"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSetup(t *testing.T) {
	t.Run("returns a logger for each valid level", func(t *testing.T) {
		for _, level := range []string{"debug", "info", "warn", "error", "DEBUG", "Info"} {
			log, err := logger.Setup(config.ServerConfig{LogLevel: level})
			require.NoError(t, err, "level %q", level)
			require.NotNil(t, log, "level %q", level)
		}
	})

	t.Run("sets the default logger", func(t *testing.T) {
		log, err := logger.Setup(config.ServerConfig{LogLevel: "info"})
		require.NoError(t, err)
		assert.Same(t, log, slog.Default())
	})

	t.Run("falls back to info on an invalid level", func(t *testing.T) {
		log, err := logger.Setup(config.ServerConfig{LogLevel: "loud"})
		require.NoError(t, err)
		require.NotNil(t, log)
		assert.True(t, log.Enabled(context.Background(), slog.LevelInfo))
		assert.False(t, log.Enabled(context.Background(), slog.LevelDebug))
	})
}
