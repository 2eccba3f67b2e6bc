package orchestrator

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"github.com/phrazzld/acharya-api/internal/agent"
	"github.com/phrazzld/acharya-api/internal/domain"
	"github.com/phrazzld/acharya-api/internal/extract"
	"github.com/phrazzld/acharya-api/internal/faults"
	"github.com/phrazzld/acharya-api/internal/registry"
)

// Common errors
var (
	ErrNilRegistry   = errors.New("job registry cannot be nil")
	ErrNilRunner     = errors.New("agent runner cannot be nil")
	ErrNilStateStore = errors.New("state store cannot be nil")
	ErrNilLogger     = errors.New("logger cannot be nil")

	// errNoSubtopics marks the sole hard stage-1 failure: decomposition
	// produced nothing usable.
	errNoSubtopics = errors.New("decomposition produced no subtopics")
)

// noSubtopicsMessage is the client-visible error for a failed decomposition.
const noSubtopicsMessage = "Failed to generate subtopics"

// Config holds tuning knobs for the pipeline. The settle intervals account
// for the agents' asynchronous write-back into session state; they are a
// polling heuristic, not a completion signal.
type Config struct {
	// DecompositionSettle is how long to wait after the decomposition agent
	// returns before reading the subtopic list back from session state.
	DecompositionSettle time.Duration

	// FanoutSettle is how long to wait before launching the generation
	// fan-out after slots are initialized.
	FanoutSettle time.Duration

	// PollInterval is the incremental poller's cycle interval.
	PollInterval time.Duration

	// MinSubtopics and MaxSubtopics bound the accepted decomposition size.
	// Counts above the max are truncated; counts below the min are accepted
	// with a warning. Zero subtopics is a hard failure.
	MinSubtopics int
	MaxSubtopics int

	// MediaBaseURL prefixes the podcast and image URLs embedded in content.
	MediaBaseURL string
}

// DefaultConfig returns a Config with the intervals the pipeline was tuned
// with.
func DefaultConfig() Config {
	return Config{
		DecompositionSettle: 30 * time.Second,
		FanoutSettle:        30 * time.Second,
		PollInterval:        10 * time.Second,
		MinSubtopics:        5,
		MaxSubtopics:        10,
		MediaBaseURL:        "http://localhost:8000",
	}
}

// Service owns the lifecycle of generation jobs: it creates registry
// entries on submission and drives each job through the pipeline stages on
// a dedicated goroutine.
type Service struct {
	registry   registry.JobRegistry
	runner     agent.Runner
	state      agent.StateStore
	cfg        Config
	logger     *slog.Logger
	ctx        context.Context
	cancelFunc context.CancelFunc
	wg         sync.WaitGroup
}

// NewService creates a Service. Zero-valued intervals and bounds in cfg are
// replaced with defaults.
func NewService(
	reg registry.JobRegistry,
	runner agent.Runner,
	state agent.StateStore,
	cfg Config,
	logger *slog.Logger,
) (*Service, error) {
	if reg == nil {
		return nil, ErrNilRegistry
	}
	if runner == nil {
		return nil, ErrNilRunner
	}
	if state == nil {
		return nil, ErrNilStateStore
	}
	if logger == nil {
		return nil, ErrNilLogger
	}

	defaults := DefaultConfig()
	if cfg.DecompositionSettle <= 0 {
		cfg.DecompositionSettle = defaults.DecompositionSettle
	}
	if cfg.FanoutSettle <= 0 {
		cfg.FanoutSettle = defaults.FanoutSettle
	}
	if cfg.PollInterval <= 0 {
		cfg.PollInterval = defaults.PollInterval
	}
	if cfg.MinSubtopics <= 0 {
		cfg.MinSubtopics = defaults.MinSubtopics
	}
	if cfg.MaxSubtopics <= 0 {
		cfg.MaxSubtopics = defaults.MaxSubtopics
	}
	if cfg.MediaBaseURL == "" {
		cfg.MediaBaseURL = defaults.MediaBaseURL
	}

	ctx, cancel := context.WithCancel(context.Background())

	return &Service{
		registry:   reg,
		runner:     runner,
		state:      state,
		cfg:        cfg,
		logger:     logger.With("component", "orchestrator"),
		ctx:        ctx,
		cancelFunc: cancel,
	}, nil
}

// Submit creates a job for the topic and schedules its pipeline without
// blocking. The returned job ID can be polled for status immediately; the
// job starts in processing status. Returns domain.ErrEmptyTopic for blank
// topics.
func (s *Service) Submit(ctx context.Context, userID, topic string) (string, error) {
	job, err := domain.NewJob(userID, topic)
	if err != nil {
		return "", err
	}

	if err := s.registry.Create(ctx, job); err != nil {
		return "", fmt.Errorf("failed to register job: %w", err)
	}

	s.wg.Add(1)
	go func() {
		defer s.wg.Done()
		s.run(job.ID, job.Topic, job.UserID)
	}()

	s.logger.Info("job submitted", "job_id", job.ID, "topic", job.Topic)
	return job.ID, nil
}

// Stop cancels all in-flight pipelines and waits for their goroutines to
// unwind.
func (s *Service) Stop() {
	s.cancelFunc()
	s.wg.Wait()
}

// run executes the pipeline for one job and records the terminal state.
// Every stage error is aggregated into a client-facing message; nothing
// escapes to the Submit caller.
func (s *Service) run(jobID, topic, userID string) {
	logger := s.logger.With("job_id", jobID)

	err := s.execute(s.ctx, jobID, topic, userID, logger)
	if err == nil {
		logger.Info("job completed")
		return
	}

	message := faults.Aggregate(err)
	if errors.Is(err, errNoSubtopics) {
		message = noSubtopicsMessage
	}

	logger.Error("job failed", "error", err, "client_message", message)

	if updateErr := s.registry.Update(context.Background(), jobID, func(job *domain.Job) {
		job.Status = domain.JobStatusError
		job.Error = message
	}); updateErr != nil {
		logger.Error("failed to record job failure", "error", updateErr)
	}
}

// execute drives the pipeline stages in order. The job is terminal once
// this returns: nil means completed, any error means the job is marked
// errored by the caller.
func (s *Service) execute(ctx context.Context, jobID, topic, userID string, logger *slog.Logger) error {
	sessionID, err := s.state.CreateSession(ctx, userID)
	if err != nil {
		return fmt.Errorf("failed to create agent session: %w", err)
	}

	// Stage 1: decomposition.
	logger.Info("running topic decomposition", "topic", topic)
	if err := s.runner.RunDecomposition(ctx, sessionID, topic); err != nil {
		return fmt.Errorf("decomposition failed: %w", err)
	}

	// The decomposition agent writes back asynchronously; give it time to
	// settle before reading.
	if err := sleep(ctx, s.cfg.DecompositionSettle); err != nil {
		return err
	}

	state, err := s.state.State(ctx, sessionID)
	if err != nil {
		return fmt.Errorf("failed to read session state: %w", err)
	}

	subtopics, count := extract.Subtopics(state[agent.SubtopicsKey])
	if count == 0 {
		return errNoSubtopics
	}
	if count > s.cfg.MaxSubtopics {
		logger.Warn("decomposition exceeded subtopic bound, truncating",
			"count", count, "max", s.cfg.MaxSubtopics)
		count = s.cfg.MaxSubtopics
	}
	if count < s.cfg.MinSubtopics {
		logger.Warn("decomposition below subtopic bound",
			"count", count, "min", s.cfg.MinSubtopics)
	}
	subtopics = subtopics[:count]

	// Stage 2: initialize one empty slot per subtopic.
	if err := s.registry.Update(ctx, jobID, func(job *domain.Job) {
		job.Subtopics = subtopics
		job.Content = emptySlots(subtopics)
		job.Progress = fmt.Sprintf("Found %d subtopics. Generating content...", count)
	}); err != nil {
		return fmt.Errorf("failed to initialize content slots: %w", err)
	}

	logger.Info("subtopics ready", "count", count)

	if err := sleep(ctx, s.cfg.FanoutSettle); err != nil {
		return err
	}

	// Stage 3: fan-out, with the incremental poller running alongside.
	pollCtx, cancelPoll := context.WithCancel(ctx)
	p := &poller{
		jobID:        jobID,
		sessionID:    sessionID,
		subtopics:    subtopics,
		interval:     s.cfg.PollInterval,
		registry:     s.registry,
		state:        s.state,
		mediaBaseURL: s.cfg.MediaBaseURL,
		logger:       logger.With("component", "poller"),
	}
	pollerDone := make(chan struct{})
	go p.run(pollCtx, pollerDone)

	fanoutErr := s.fanOut(ctx, sessionID, subtopics)

	// The poller must be cancelled and drained before finalization,
	// whatever the fan-out outcome.
	cancelPoll()
	<-pollerDone

	if fanoutErr != nil {
		return fanoutErr
	}

	// Stage 4: authoritative extraction pass.
	state, err = s.state.State(ctx, sessionID)
	if err != nil {
		return fmt.Errorf("failed to read session state for finalization: %w", err)
	}

	content := s.finalContent(state, subtopics)
	if err := s.registry.Update(ctx, jobID, func(job *domain.Job) {
		job.Content = content
		job.Status = domain.JobStatusCompleted
		job.Progress = "Content generation complete!"
	}); err != nil {
		return fmt.Errorf("failed to finalize job: %w", err)
	}

	if err := s.state.DeleteSession(ctx, sessionID); err != nil {
		// The content is already delivered; losing the cleanup only leaks
		// upstream state.
		logger.Warn("failed to delete agent session", "error", err, "session_id", sessionID)
	}

	return nil
}

// fanOut runs one generation task per subtopic concurrently and joins any
// failures into a single error tree.
func (s *Service) fanOut(ctx context.Context, sessionID string, subtopics []string) error {
	errs := make([]error, len(subtopics))
	var wg sync.WaitGroup

	for i, subtopic := range subtopics {
		wg.Add(1)
		go func(i int, subtopic string) {
			defer wg.Done()
			if err := s.runner.RunGeneration(ctx, sessionID, i+1, subtopic); err != nil {
				errs[i] = fmt.Errorf("subtopic %q: %w", subtopic, err)
			}
		}(i, subtopic)
	}

	wg.Wait()
	return errors.Join(errs...)
}

// finalContent rebuilds the whole content sequence from session state. It
// overwrites rather than merges: after fan-out completion the session state
// is a superset of everything the poller saw.
func (s *Service) finalContent(state map[string]any, subtopics []string) []domain.ContentSlot {
	content := make([]domain.ContentSlot, len(subtopics))
	for i, subtopic := range subtopics {
		index := i + 1
		content[i] = domain.ContentSlot{
			WebContent: stringValue(state[agent.WebContentKey(index)]),
			Flashcards: extract.Flashcards(state[agent.FlashcardsKey(index)]),
			Quiz:       extract.Quiz(state[agent.QuizKey(index)]),
			Podcast: domain.Podcast{
				Title:      subtopic + " Overview",
				Transcript: extract.DialogueTranscript(state[agent.PodcastKey(index)]),
				AudioURL:   podcastMediaURL(s.cfg.MediaBaseURL, index),
			},
			Images: []domain.Image{
				{URL: imageMediaURL(s.cfg.MediaBaseURL, index), Title: subtopic + " Visual"},
			},
		}
	}
	return content
}

// emptySlots builds the initial content sequence, one slot per subtopic
// with the podcast title pre-seeded.
func emptySlots(subtopics []string) []domain.ContentSlot {
	slots := make([]domain.ContentSlot, len(subtopics))
	for i, subtopic := range subtopics {
		slots[i] = domain.ContentSlot{
			Flashcards: []domain.Flashcard{},
			Quiz:       []domain.QuizItem{},
			Podcast:    domain.Podcast{Title: subtopic + " Overview"},
			Images:     []domain.Image{},
		}
	}
	return slots
}

// sleep waits for d or until the context is cancelled.
func sleep(ctx context.Context, d time.Duration) error {
	if d <= 0 {
		return ctx.Err()
	}
	select {
	case <-time.After(d):
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}

// stringValue returns raw as a string, or empty for any other shape.
func stringValue(raw any) string {
	if s, ok := raw.(string); ok {
		return s
	}
	return ""
}
