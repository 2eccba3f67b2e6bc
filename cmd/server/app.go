package main

import (
	"context"
	"database/sql"
	"fmt"
	"log/slog"
	"time"

	// Registers the pgx driver under the "pgx" database/sql name.
	_ "github.com/jackc/pgx/v5/stdlib"

	"github.com/phrazzld/acharya-api/internal/agent"
	"github.com/phrazzld/acharya-api/internal/config"
	"github.com/phrazzld/acharya-api/internal/orchestrator"
	"github.com/phrazzld/acharya-api/internal/platform/gemini"
	"github.com/phrazzld/acharya-api/internal/platform/postgres"
	"github.com/phrazzld/acharya-api/internal/registry"
)

// application holds the wired dependencies of the server. It is built once
// at startup and torn down by cleanup.
type application struct {
	config       *config.Config
	logger       *slog.Logger
	db           *sql.DB
	jobRegistry  registry.JobRegistry
	stateStore   agent.StateStore
	orchestrator *orchestrator.Service
}

// newApplication wires the configured backends together: the job registry
// (memory or redis), the agent session store (memory or postgres), the
// Gemini runner, and the orchestration service on top of them.
func newApplication(ctx context.Context, cfg *config.Config, appLogger *slog.Logger) (*application, error) {
	app := &application{
		config: cfg,
		logger: appLogger,
	}

	stateStore, err := app.buildStateStore(cfg)
	if err != nil {
		return nil, err
	}
	app.stateStore = stateStore

	jobRegistry, err := buildJobRegistry(ctx, cfg)
	if err != nil {
		return nil, fmt.Errorf("failed to build job registry: %w", err)
	}
	app.jobRegistry = jobRegistry

	runner, err := gemini.NewRunner(ctx, appLogger, cfg.LLM, stateStore)
	if err != nil {
		return nil, fmt.Errorf("failed to build gemini runner: %w", err)
	}

	service, err := orchestrator.NewService(jobRegistry, runner, stateStore, orchestrator.Config{
		DecompositionSettle: cfg.Pipeline.DecompositionSettle,
		FanoutSettle:        cfg.Pipeline.FanoutSettle,
		PollInterval:        cfg.Pipeline.PollInterval,
		MinSubtopics:        cfg.Pipeline.MinSubtopics,
		MaxSubtopics:        cfg.Pipeline.MaxSubtopics,
		MediaBaseURL:        cfg.Media.BaseURL,
	}, appLogger)
	if err != nil {
		return nil, fmt.Errorf("failed to build orchestrator: %w", err)
	}
	app.orchestrator = service

	return app, nil
}

// buildStateStore selects the agent session backend from configuration.
func (app *application) buildStateStore(cfg *config.Config) (agent.StateStore, error) {
	switch cfg.Database.Backend {
	case "postgres":
		db, err := openDatabase(cfg.Database.URL)
		if err != nil {
			return nil, fmt.Errorf("failed to open database: %w", err)
		}
		app.db = db
		return postgres.NewSessionStore(db, app.logger), nil

	case "memory":
		app.logger.Warn("using in-memory session store; sessions are lost on restart")
		return agent.NewMemoryStateStore(), nil

	default:
		return nil, fmt.Errorf("unknown database backend %q", cfg.Database.Backend)
	}
}

// buildJobRegistry selects the job registry backend from configuration.
func buildJobRegistry(ctx context.Context, cfg *config.Config) (registry.JobRegistry, error) {
	switch cfg.Registry.Backend {
	case "redis":
		return registry.NewRedisRegistry(ctx, registry.RedisConfig{
			Addr:     cfg.Registry.Addr,
			Password: cfg.Registry.Password,
			DB:       cfg.Registry.DB,
			TTL:      cfg.Registry.TTL,
		})

	case "memory":
		return registry.NewMemoryRegistry(), nil

	default:
		return nil, fmt.Errorf("unknown registry backend %q", cfg.Registry.Backend)
	}
}

// openDatabase opens and verifies a PostgreSQL connection pool.
func openDatabase(url string) (*sql.DB, error) {
	db, err := sql.Open("pgx", url)
	if err != nil {
		return nil, err
	}

	db.SetMaxOpenConns(25)
	db.SetMaxIdleConns(5)
	db.SetConnMaxLifetime(5 * time.Minute)

	pingCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := db.PingContext(pingCtx); err != nil {
		_ = db.Close()
		return nil, err
	}

	return db, nil
}

// cleanup stops background work and releases held resources. Called after
// the HTTP server has drained.
func (app *application) cleanup() {
	app.orchestrator.Stop()

	if app.db != nil {
		if err := app.db.Close(); err != nil {
			app.logger.Error("Failed to close database", "error", err)
		}
	}
}
