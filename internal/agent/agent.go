package agent

import (
	"context"
	"errors"
	"fmt"
)

// SubtopicsKey is the state key the decomposition agent writes its result
// under: a wrapper holding the subtopic list and a count.
const SubtopicsKey = "subtopics"

// Common errors returned by agent implementations
var (
	// ErrSessionNotFound is returned when a session ID has no stored state.
	ErrSessionNotFound = errors.New("agent session not found")

	// ErrRunFailed is returned when an agent run fails for any general reason.
	ErrRunFailed = errors.New("agent run failed")

	// ErrInvalidOutput is returned when an agent response cannot be parsed.
	ErrInvalidOutput = errors.New("invalid output from agent")
)

// Runner executes agents against a session. Implementations are expected to
// write results into the session state under the well-known keys below; the
// caller reads them back after a settling interval rather than receiving
// them as return values.
type Runner interface {
	// RunDecomposition runs the topic decomposition agent, which stores its
	// subtopic list under SubtopicsKey.
	RunDecomposition(ctx context.Context, sessionID, topic string) error

	// RunGeneration runs the full content generation fan-out for one
	// subtopic. Index is 1-based and selects the state keys the agents
	// write under.
	RunGeneration(ctx context.Context, sessionID string, index int, subtopic string) error
}

// StateStore provides access to the keyed execution state of agent
// sessions. The orchestration core treats it as an external, append-only
// read surface; only agent runners write to it.
type StateStore interface {
	// CreateSession allocates a new session for the given user and returns
	// its ID.
	CreateSession(ctx context.Context, userID string) (string, error)

	// State returns a snapshot of all keyed values in the session.
	// Returns ErrSessionNotFound for unknown session IDs.
	State(ctx context.Context, sessionID string) (map[string]any, error)

	// SetState stores a value under the given key, replacing any previous
	// value for that key.
	SetState(ctx context.Context, sessionID, key string, value any) error

	// DeleteSession removes the session and all of its state.
	DeleteSession(ctx context.Context, sessionID string) error
}

// State keys for per-subtopic generation results. Indexes are 1-based,
// matching the numbering the generation agents use.

// WebContentKey returns the state key for a subtopic's web page content.
func WebContentKey(index int) string {
	return fmt.Sprintf("webpage_content_%d", index)
}

// FlashcardsKey returns the state key for a subtopic's flashcard set.
func FlashcardsKey(index int) string {
	return fmt.Sprintf("flashcards_%d", index)
}

// QuizKey returns the state key for a subtopic's quiz.
func QuizKey(index int) string {
	return fmt.Sprintf("quiz_%d", index)
}

// PodcastKey returns the state key for a subtopic's podcast dialogue.
func PodcastKey(index int) string {
	return fmt.Sprintf("podcast_content_%d", index)
}

// ImageKey returns the state key for a subtopic's generated image URL.
func ImageKey(index int) string {
	return fmt.Sprintf("image_url_%d", index)
}
