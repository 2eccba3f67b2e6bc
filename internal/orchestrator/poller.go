package orchestrator

import (
	"context"
	"log/slog"
	"time"

	"github.com/phrazzld/acharya-api/internal/agent"
	"github.com/phrazzld/acharya-api/internal/domain"
	"github.com/phrazzld/acharya-api/internal/extract"
	"github.com/phrazzld/acharya-api/internal/registry"
)

// poller is the incremental merge loop for one job. Each cycle it reads the
// session state and fills any content fields that have become available
// upstream but are still empty in the registry. Fields are fill-once: a
// populated field is never touched again, so the poller and the driver's
// finalization pass can run in any relative order without conflicting.
type poller struct {
	jobID        string
	sessionID    string
	subtopics    []string
	interval     time.Duration
	registry     registry.JobRegistry
	state        agent.StateStore
	mediaBaseURL string
	logger       *slog.Logger
}

// run loops until ctx is cancelled, closing done on the way out. Cycle
// errors are logged and swallowed; a failed poll never fails the job.
func (p *poller) run(ctx context.Context, done chan<- struct{}) {
	defer close(done)

	ticker := time.NewTicker(p.interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			if err := p.cycle(ctx); err != nil {
				p.logger.Warn("poll cycle failed", "error", err)
			}
		}
	}
}

// cycle performs one read-and-merge pass.
func (p *poller) cycle(ctx context.Context) error {
	state, err := p.state.State(ctx, p.sessionID)
	if err != nil {
		return err
	}

	// The merge runs inside Update so no reader observes a half-merged
	// slot and no concurrent writer interleaves.
	return p.registry.Update(ctx, p.jobID, func(job *domain.Job) {
		p.merge(job, state)
	})
}

// merge fills still-empty slot fields from the session state snapshot.
func (p *poller) merge(job *domain.Job, state map[string]any) {
	for i, subtopic := range p.subtopics {
		if i >= len(job.Content) {
			continue
		}
		index := i + 1
		slot := &job.Content[i]

		if slot.WebContent == "" {
			if text := stringValue(state[agent.WebContentKey(index)]); text != "" {
				slot.WebContent = text
				job.Progress = "Generated web content for: " + subtopic
			}
		}

		if len(slot.Flashcards) == 0 {
			if raw := state[agent.FlashcardsKey(index)]; raw != nil {
				if cards := extract.Flashcards(raw); len(cards) > 0 {
					slot.Flashcards = cards
				}
			}
		}

		if len(slot.Quiz) == 0 {
			if raw := state[agent.QuizKey(index)]; raw != nil {
				if items := extract.Quiz(raw); len(items) > 0 {
					slot.Quiz = items
				}
			}
		}

		if slot.Podcast.Transcript == "" {
			if raw := state[agent.PodcastKey(index)]; raw != nil {
				if transcript := extract.DialogueTranscript(raw); transcript != "" {
					slot.Podcast.Transcript = transcript
					slot.Podcast.AudioURL = podcastMediaURL(p.mediaBaseURL, index)
				}
			}
		}

		if len(slot.Images) == 0 {
			if url := stringValue(state[agent.ImageKey(index)]); url != "" {
				slot.Images = []domain.Image{
					{URL: imageMediaURL(p.mediaBaseURL, index), Title: subtopic + " Visual"},
				}
			}
		}
	}
}
