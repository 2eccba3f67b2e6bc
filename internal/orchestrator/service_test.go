package orchestrator

import (
	"context"
	"errors"
	"log/slog"
	"os"
	"strings"
	"testing"
	"time"

	"github.com/phrazzld/acharya-api/internal/agent"
	"github.com/phrazzld/acharya-api/internal/domain"
	"github.com/phrazzld/acharya-api/internal/registry"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func testLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(os.Stdout, &slog.HandlerOptions{Level: slog.LevelError}))
}

func testConfig() Config {
	return Config{
		DecompositionSettle: time.Millisecond,
		FanoutSettle:        time.Millisecond,
		PollInterval:        5 * time.Millisecond,
		MinSubtopics:        5,
		MaxSubtopics:        10,
		MediaBaseURL:        "http://localhost:8000",
	}
}

// newTestService wires a Service over in-memory collaborators.
func newTestService(t *testing.T, runner *mockRunner) (*Service, *registry.MemoryRegistry, *agent.MemoryStateStore) {
	t.Helper()

	reg := registry.NewMemoryRegistry()
	state := agent.NewMemoryStateStore()

	svc, err := NewService(reg, runner, state, testConfig(), testLogger())
	require.NoError(t, err)
	t.Cleanup(svc.Stop)

	return svc, reg, state
}

// waitForTerminal polls the registry until the job leaves processing status.
func waitForTerminal(t *testing.T, reg registry.JobRegistry, jobID string) *domain.Job {
	t.Helper()

	var job *domain.Job
	require.Eventually(t, func() bool {
		got, err := reg.Get(context.Background(), jobID)
		if err != nil {
			return false
		}
		job = got
		return got.Status != domain.JobStatusProcessing
	}, 5*time.Second, 5*time.Millisecond, "job never reached a terminal status")

	return job
}

func TestNewService(t *testing.T) {
	t.Parallel()

	reg := registry.NewMemoryRegistry()
	state := agent.NewMemoryStateStore()
	runner := &mockRunner{}

	t.Run("fails with nil dependencies", func(t *testing.T) {
		_, err := NewService(nil, runner, state, Config{}, testLogger())
		assert.ErrorIs(t, err, ErrNilRegistry)

		_, err = NewService(reg, nil, state, Config{}, testLogger())
		assert.ErrorIs(t, err, ErrNilRunner)

		_, err = NewService(reg, runner, nil, Config{}, testLogger())
		assert.ErrorIs(t, err, ErrNilStateStore)

		_, err = NewService(reg, runner, state, Config{}, nil)
		assert.ErrorIs(t, err, ErrNilLogger)
	})

	t.Run("applies default config values", func(t *testing.T) {
		svc, err := NewService(reg, runner, state, Config{}, testLogger())
		require.NoError(t, err)
		defer svc.Stop()

		assert.Equal(t, DefaultConfig().PollInterval, svc.cfg.PollInterval)
		assert.Equal(t, DefaultConfig().MaxSubtopics, svc.cfg.MaxSubtopics)
	})
}

func TestSubmitReturnsImmediately(t *testing.T) {
	t.Parallel()

	release := make(chan struct{})
	runner := &mockRunner{
		RunDecompositionFunc: func(ctx context.Context, sessionID, topic string) error {
			select {
			case <-release:
			case <-ctx.Done():
			}
			return ctx.Err()
		},
	}
	svc, reg, _ := newTestService(t, runner)
	defer close(release)

	start := time.Now()
	jobID, err := svc.Submit(context.Background(), "default_user", "Photosynthesis")
	elapsed := time.Since(start)

	require.NoError(t, err)
	assert.Less(t, elapsed, time.Second, "Submit must not wait on the pipeline")

	job, err := reg.Get(context.Background(), jobID)
	require.NoError(t, err)
	assert.Equal(t, domain.JobStatusProcessing, job.Status)
	assert.Equal(t, "Photosynthesis", job.Topic)
}

func TestSubmitRejectsBlankTopic(t *testing.T) {
	t.Parallel()

	svc, _, _ := newTestService(t, &mockRunner{})

	_, err := svc.Submit(context.Background(), "default_user", "   ")
	assert.ErrorIs(t, err, domain.ErrEmptyTopic)
}

func TestPipelineCompletes(t *testing.T) {
	t.Parallel()

	var state *agent.MemoryStateStore
	runner := &mockRunner{
		RunDecompositionFunc: func(ctx context.Context, sessionID, topic string) error {
			return state.SetState(ctx, sessionID, agent.SubtopicsKey, map[string]any{
				"subtopics": subtopicNames(6),
				"count":     6,
			})
		},
		RunGenerationFunc: func(ctx context.Context, sessionID string, index int, subtopic string) error {
			for key, value := range map[string]any{
				agent.WebContentKey(index): "web content for " + subtopic,
				agent.FlashcardsKey(index): map[string]any{
					"flashcards": []any{map[string]any{"question": "Q", "answer": "A"}},
				},
				agent.QuizKey(index): map[string]any{
					"quiz": []any{map[string]any{
						"questions":       []any{"Q1"},
						"options":         []any{[]any{"A", "B"}},
						"correct_answers": []any{"B because"},
					}},
				},
				agent.PodcastKey(index): map[string]any{
					"dialogue": []any{map[string]any{"speaker": "Host", "text": "Hi"}},
				},
				agent.ImageKey(index): "generated",
			} {
				if err := state.SetState(ctx, sessionID, key, value); err != nil {
					return err
				}
			}
			return nil
		},
	}
	svc, reg, st := newTestService(t, runner)
	state = st

	jobID, err := svc.Submit(context.Background(), "default_user", "Photosynthesis")
	require.NoError(t, err)

	job := waitForTerminal(t, reg, jobID)

	assert.Equal(t, domain.JobStatusCompleted, job.Status)
	assert.Equal(t, "Content generation complete!", job.Progress)
	assert.Empty(t, job.Error)
	require.Len(t, job.Subtopics, 6)
	require.Len(t, job.Content, 6)

	for i, slot := range job.Content {
		assert.NotEmpty(t, slot.WebContent, "slot %d web content", i)
		assert.NotEmpty(t, slot.Flashcards, "slot %d flashcards", i)
		assert.NotEmpty(t, slot.Quiz, "slot %d quiz", i)
		assert.Equal(t, job.Subtopics[i]+" Overview", slot.Podcast.Title)
		assert.Equal(t, "Host: Hi\n", slot.Podcast.Transcript)
		assert.Contains(t, slot.Podcast.AudioURL, "/api/podcast/out_")
		require.Len(t, slot.Images, 1)
		assert.Contains(t, slot.Images[0].URL, "/api/images/image_")
		assert.Equal(t, job.Subtopics[i]+" Visual", slot.Images[0].Title)
	}

	// Quiz alignment survived the pipeline.
	assert.Equal(t, 1, job.Content[0].Quiz[0].CorrectIndex)
	assert.Equal(t, "B because", job.Content[0].Quiz[0].Explanation)
}

func TestPipelineTruncatesOversizedDecomposition(t *testing.T) {
	t.Parallel()

	var state *agent.MemoryStateStore
	runner := &mockRunner{
		RunDecompositionFunc: func(ctx context.Context, sessionID, topic string) error {
			return state.SetState(ctx, sessionID, agent.SubtopicsKey, map[string]any{
				"subtopics": subtopicNames(12),
				"count":     12,
			})
		},
	}
	svc, reg, st := newTestService(t, runner)
	state = st

	jobID, err := svc.Submit(context.Background(), "default_user", "Photosynthesis")
	require.NoError(t, err)

	job := waitForTerminal(t, reg, jobID)

	assert.Equal(t, domain.JobStatusCompleted, job.Status)
	assert.Len(t, job.Subtopics, 10)
	assert.Len(t, job.Content, 10)
}

func TestPipelineFailsWhenDecompositionYieldsNothing(t *testing.T) {
	t.Parallel()

	// Decomposition runs but never writes subtopics.
	svc, reg, _ := newTestService(t, &mockRunner{})

	jobID, err := svc.Submit(context.Background(), "default_user", "Photosynthesis")
	require.NoError(t, err)

	job := waitForTerminal(t, reg, jobID)

	assert.Equal(t, domain.JobStatusError, job.Status)
	assert.Equal(t, "Failed to generate subtopics", job.Error)
	assert.Empty(t, job.Content)
}

func TestPipelineAggregatesFanoutFailures(t *testing.T) {
	t.Parallel()

	var state *agent.MemoryStateStore
	runner := &mockRunner{
		RunDecompositionFunc: func(ctx context.Context, sessionID, topic string) error {
			return state.SetState(ctx, sessionID, agent.SubtopicsKey, map[string]any{
				"subtopics": subtopicNames(6),
				"count":     6,
			})
		},
		RunGenerationFunc: func(ctx context.Context, sessionID string, index int, subtopic string) error {
			if index%2 == 0 {
				return errors.New("503: model overloaded")
			}
			return nil
		},
	}
	svc, reg, st := newTestService(t, runner)
	state = st

	jobID, err := svc.Submit(context.Background(), "default_user", "Photosynthesis")
	require.NoError(t, err)

	job := waitForTerminal(t, reg, jobID)

	assert.Equal(t, domain.JobStatusError, job.Status)
	overload := "The generation service is temporarily overloaded. Please try again in a few minutes."
	assert.Equal(t, 1, strings.Count(job.Error, overload),
		"duplicate classified failures must collapse to one message")
}

func TestPipelineRetainsPartialContentOnFanoutFailure(t *testing.T) {
	t.Parallel()

	var state *agent.MemoryStateStore
	runner := &mockRunner{
		RunDecompositionFunc: func(ctx context.Context, sessionID, topic string) error {
			return state.SetState(ctx, sessionID, agent.SubtopicsKey, map[string]any{
				"subtopics": subtopicNames(5),
				"count":     5,
			})
		},
		RunGenerationFunc: func(ctx context.Context, sessionID string, index int, subtopic string) error {
			if index == 1 {
				// Publish one artifact, then linger so the merge loop sees
				// it before the fan-out finishes.
				if err := state.SetState(ctx, sessionID, agent.WebContentKey(index), "partial article"); err != nil {
					return err
				}
				time.Sleep(40 * time.Millisecond)
				return nil
			}
			return errors.New("503: model overloaded")
		},
	}
	svc, reg, st := newTestService(t, runner)
	state = st

	jobID, err := svc.Submit(context.Background(), "default_user", "Photosynthesis")
	require.NoError(t, err)

	job := waitForTerminal(t, reg, jobID)

	assert.Equal(t, domain.JobStatusError, job.Status)
	require.Len(t, job.Content, 5)
	assert.Equal(t, "partial article", job.Content[0].WebContent,
		"content merged before the failure must stay visible")
}

func TestStopCancelsInFlightJobs(t *testing.T) {
	t.Parallel()

	started := make(chan struct{})
	runner := &mockRunner{
		RunDecompositionFunc: func(ctx context.Context, sessionID, topic string) error {
			close(started)
			<-ctx.Done()
			return ctx.Err()
		},
	}
	svc, _, _ := newTestService(t, runner)

	_, err := svc.Submit(context.Background(), "default_user", "Photosynthesis")
	require.NoError(t, err)
	<-started

	done := make(chan struct{})
	go func() {
		svc.Stop()
		close(done)
	}()

	select {
	case <-done:
	case <-time.After(5 * time.Second):
		t.Fatal("Stop did not unwind the pipeline goroutine")
	}
}
