package registry_test

import (
	"context"
	"sync"
	"testing"

	"github.com/phrazzld/acharya-api/internal/domain"
	"github.com/phrazzld/acharya-api/internal/registry"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newJob(t *testing.T) *domain.Job {
	t.Helper()
	job, err := domain.NewJob("default_user", "Photosynthesis")
	require.NoError(t, err)
	return job
}

func TestMemoryRegistryCreateAndGet(t *testing.T) {
	t.Parallel()

	ctx := context.Background()
	reg := registry.NewMemoryRegistry()
	job := newJob(t)

	require.NoError(t, reg.Create(ctx, job))

	t.Run("returns a snapshot", func(t *testing.T) {
		got, err := reg.Get(ctx, job.ID)
		require.NoError(t, err)
		assert.Equal(t, job.Topic, got.Topic)
		assert.Equal(t, domain.JobStatusProcessing, got.Status)

		// Mutating the snapshot must not affect stored state.
		got.Topic = "mutated"
		fresh, err := reg.Get(ctx, job.ID)
		require.NoError(t, err)
		assert.Equal(t, "Photosynthesis", fresh.Topic)
	})

	t.Run("rejects duplicate IDs", func(t *testing.T) {
		assert.ErrorIs(t, reg.Create(ctx, job), registry.ErrJobExists)
	})

	t.Run("rejects invalid jobs", func(t *testing.T) {
		bad := &domain.Job{ID: "", Topic: "x", Status: domain.JobStatusProcessing}
		assert.ErrorIs(t, reg.Create(ctx, bad), domain.ErrEmptyJobID)
	})

	t.Run("unknown ID returns ErrJobNotFound", func(t *testing.T) {
		_, err := reg.Get(ctx, "missing")
		assert.ErrorIs(t, err, registry.ErrJobNotFound)
	})
}

func TestMemoryRegistryUpdate(t *testing.T) {
	t.Parallel()

	ctx := context.Background()
	reg := registry.NewMemoryRegistry()
	job := newJob(t)
	require.NoError(t, reg.Create(ctx, job))

	t.Run("applies the mutation atomically", func(t *testing.T) {
		err := reg.Update(ctx, job.ID, func(j *domain.Job) {
			j.Subtopics = []string{"light_reactions"}
			j.Content = []domain.ContentSlot{{Podcast: domain.Podcast{Title: "light_reactions Overview"}}}
			j.Progress = "Found 1 subtopics. Generating content..."
		})
		require.NoError(t, err)

		got, err := reg.Get(ctx, job.ID)
		require.NoError(t, err)
		assert.Equal(t, []string{"light_reactions"}, got.Subtopics)
		require.Len(t, got.Content, 1)
		assert.Equal(t, "light_reactions Overview", got.Content[0].Podcast.Title)
	})

	t.Run("unknown ID returns ErrJobNotFound", func(t *testing.T) {
		err := reg.Update(ctx, "missing", func(j *domain.Job) {})
		assert.ErrorIs(t, err, registry.ErrJobNotFound)
	})

	t.Run("concurrent fill-once updates never clobber populated fields", func(t *testing.T) {
		var wg sync.WaitGroup
		for i := 0; i < 50; i++ {
			wg.Add(1)
			go func(n int) {
				defer wg.Done()
				_ = reg.Update(ctx, job.ID, func(j *domain.Job) {
					if j.Content[0].WebContent == "" {
						j.Content[0].WebContent = "filled"
					}
				})
			}(i)
		}
		wg.Wait()

		got, err := reg.Get(ctx, job.ID)
		require.NoError(t, err)
		assert.Equal(t, "filled", got.Content[0].WebContent)
	})
}
