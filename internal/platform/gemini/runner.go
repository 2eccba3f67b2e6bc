package gemini

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"math"
	"math/rand"
	"strings"
	"time"

	"github.com/phrazzld/acharya-api/internal/agent"
	"github.com/phrazzld/acharya-api/internal/config"
	"google.golang.org/genai"
)

// baseRetryDelay is the starting delay for exponential backoff between
// retried API calls.
const baseRetryDelay = 2 * time.Second

// Runner implements the agent.Runner interface using Google's Gemini API.
// It runs the decomposition and generation agents and writes their results
// into the session state under the well-known keys.
type Runner struct {
	// logger is used for structured logging
	logger *slog.Logger

	// config contains LLM-specific configuration
	config config.LLMConfig

	// client is the Gemini API client for making requests
	client *genai.Client

	// state receives the agent results
	state agent.StateStore

	// model is the name of the Gemini model to use
	model string
}

// NewRunner creates a new Runner with the provided dependencies.
//
// Parameters:
//   - ctx: Context for the operation, which can be used for cancellation
//   - logger: A structured logger for operation logging
//   - cfg: LLM configuration containing API key, model name, and retry settings
//   - state: The session state store the agents write their results into
//
// Returns:
//   - A properly initialized Runner or an error if initialization fails
func NewRunner(ctx context.Context, logger *slog.Logger, cfg config.LLMConfig, state agent.StateStore) (*Runner, error) {
	if logger == nil {
		return nil, errors.New("logger cannot be nil")
	}

	if state == nil {
		return nil, errors.New("state store cannot be nil")
	}

	// Validate configuration
	if cfg.GeminiAPIKey == "" {
		return nil, fmt.Errorf("%w: gemini API key cannot be empty", ErrInvalidConfig)
	}

	if cfg.Model == "" {
		return nil, fmt.Errorf("%w: model name cannot be empty", ErrInvalidConfig)
	}

	clientConfig := &genai.ClientConfig{
		APIKey:  cfg.GeminiAPIKey,
		Backend: genai.BackendGeminiAPI,
	}

	client, err := genai.NewClient(ctx, clientConfig)
	if err != nil {
		return nil, fmt.Errorf("%w: failed to create Gemini client: %v", ErrInvalidConfig, err)
	}

	return &Runner{
		logger: logger,
		config: cfg,
		client: client,
		state:  state,
		model:  cfg.Model,
	}, nil
}

// RunDecomposition runs the topic decomposition agent and stores the
// subtopic list under agent.SubtopicsKey.
func (r *Runner) RunDecomposition(ctx context.Context, sessionID, topic string) error {
	if strings.TrimSpace(topic) == "" {
		return ErrEmptyTopic
	}

	r.logger.InfoContext(ctx, "Running topic decomposition",
		"session_id", sessionID,
		"topic", topic)

	text, err := r.callWithRetry(ctx, decompositionPrompt(topic), true)
	if err != nil {
		return fmt.Errorf("decomposition for %q: %w", topic, err)
	}

	schema, err := parseSubtopics(text)
	if err != nil {
		return fmt.Errorf("decomposition for %q: %w", topic, err)
	}

	value := map[string]any{
		"subtopics": schema.Subtopics,
		"count":     len(schema.Subtopics),
	}
	if err := r.state.SetState(ctx, sessionID, agent.SubtopicsKey, value); err != nil {
		return fmt.Errorf("storing subtopics: %w", err)
	}

	r.logger.InfoContext(ctx, "Topic decomposition complete",
		"session_id", sessionID,
		"subtopic_count", len(schema.Subtopics))
	return nil
}

// RunGeneration runs the content generation agents for one subtopic. Each
// artifact is written to the session state as soon as it is produced so the
// incremental merge can pick it up before the others finish.
func (r *Runner) RunGeneration(ctx context.Context, sessionID string, index int, subtopic string) error {
	if strings.TrimSpace(subtopic) == "" {
		return ErrEmptyTopic
	}

	r.logger.InfoContext(ctx, "Running content generation",
		"session_id", sessionID,
		"index", index,
		"subtopic", subtopic)

	webContent, err := r.callWithRetry(ctx, webContentPrompt(subtopic), false)
	if err != nil {
		return fmt.Errorf("web content for %q: %w", subtopic, err)
	}
	if err := r.state.SetState(ctx, sessionID, agent.WebContentKey(index), webContent); err != nil {
		return fmt.Errorf("storing web content for %q: %w", subtopic, err)
	}

	stages := []struct {
		name   string
		prompt string
		key    string
	}{
		{"flashcards", flashcardsPrompt(subtopic), agent.FlashcardsKey(index)},
		{"quiz", quizPrompt(subtopic), agent.QuizKey(index)},
		{"podcast", podcastPrompt(subtopic), agent.PodcastKey(index)},
	}

	for _, stage := range stages {
		text, err := r.callWithRetry(ctx, stage.prompt, true)
		if err != nil {
			return fmt.Errorf("%s for %q: %w", stage.name, subtopic, err)
		}

		value, err := decodeJSON(text)
		if err != nil {
			return fmt.Errorf("%s for %q: %w", stage.name, subtopic, err)
		}

		if err := r.state.SetState(ctx, sessionID, stage.key, value); err != nil {
			return fmt.Errorf("storing %s for %q: %w", stage.name, subtopic, err)
		}
	}

	r.logger.InfoContext(ctx, "Content generation complete",
		"session_id", sessionID,
		"index", index,
		"subtopic", subtopic)
	return nil
}

// callWithRetry makes a call to the Gemini API with exponential backoff
// retry logic.
//
// It attempts the call up to config.MaxRetries additional times, backing off
// exponentially with jitter between retries for transient errors. Permanent
// errors (like content being blocked by safety filters) are returned
// immediately without retrying.
func (r *Runner) callWithRetry(ctx context.Context, prompt string, jsonOutput bool) (string, error) {
	maxRetries := r.config.MaxRetries
	if maxRetries < 0 {
		r.logger.WarnContext(ctx, "Invalid max retries value, using default", "max_retries", 3)
		maxRetries = 3
	}

	rng := rand.New(rand.NewSource(time.Now().UnixNano()))

	genConfig := &genai.GenerateContentConfig{}
	if jsonOutput {
		genConfig.ResponseMIMEType = "application/json"
	}

	for attempt := 0; ; attempt++ {
		attemptNum := attempt + 1 // For logging (1-based)
		r.logger.DebugContext(ctx, "Making Gemini API call",
			"attempt", attemptNum,
			"max_attempts", maxRetries+1)

		text, err := r.generateOnce(ctx, prompt, genConfig)
		if err == nil {
			return text, nil
		}

		r.logger.ErrorContext(ctx, "Gemini API call failed",
			"attempt", attemptNum,
			"error", err)

		// Permanent errors are not retried.
		if errors.Is(err, ErrContentBlocked) || errors.Is(err, ErrInvalidResponse) {
			return "", err
		}

		if attempt >= maxRetries {
			return "", fmt.Errorf("%w: exceeded maximum retry attempts (%d): %v",
				ErrTransientFailure, maxRetries, err)
		}

		// delay = baseDelay * (2^attempt) * (0.5 + rand(0, 0.5))
		backoff := float64(baseRetryDelay) * math.Pow(2, float64(attempt))
		jitterFactor := 0.5 + rng.Float64()*0.5
		delay := time.Duration(backoff * jitterFactor)

		r.logger.InfoContext(ctx, "Retrying after delay",
			"attempt", attemptNum,
			"delay", delay)

		select {
		case <-time.After(delay):
		case <-ctx.Done():
			return "", fmt.Errorf("%w: %v", ErrTransientFailure, ctx.Err())
		}
	}
}

// generateOnce performs a single GenerateContent call and extracts its text.
func (r *Runner) generateOnce(ctx context.Context, prompt string, genConfig *genai.GenerateContentConfig) (string, error) {
	resp, err := r.client.Models.GenerateContent(ctx, r.model, genai.Text(prompt), genConfig)
	if err != nil {
		return "", err
	}

	if resp == nil || len(resp.Candidates) == 0 {
		return "", fmt.Errorf("%w: no content generated", ErrInvalidResponse)
	}

	candidate := resp.Candidates[0]
	if candidate.FinishReason == genai.FinishReasonSafety {
		return "", ErrContentBlocked
	}
	if candidate.Content == nil {
		return "", fmt.Errorf("%w: empty content in response", ErrInvalidResponse)
	}

	text := resp.Text()
	if strings.TrimSpace(text) == "" {
		return "", fmt.Errorf("%w: empty text in response", ErrInvalidResponse)
	}

	return text, nil
}

// parseSubtopics decodes and validates a decomposition response.
func parseSubtopics(text string) (*subtopicsSchema, error) {
	var schema subtopicsSchema
	if err := json.Unmarshal([]byte(stripCodeFence(text)), &schema); err != nil {
		return nil, fmt.Errorf("%w: failed to parse JSON response: %v", ErrInvalidResponse, err)
	}

	subtopics := make([]string, 0, len(schema.Subtopics))
	for _, s := range schema.Subtopics {
		if trimmed := strings.TrimSpace(s); trimmed != "" {
			subtopics = append(subtopics, trimmed)
		}
	}
	if len(subtopics) == 0 {
		return nil, fmt.Errorf("%w: no subtopics in response", ErrInvalidResponse)
	}

	schema.Subtopics = subtopics
	schema.Count = len(subtopics)
	return &schema, nil
}

// decodeJSON decodes a JSON response body into a loosely typed value,
// tolerating markdown code fences around the payload.
func decodeJSON(text string) (any, error) {
	var value any
	if err := json.Unmarshal([]byte(stripCodeFence(text)), &value); err != nil {
		return nil, fmt.Errorf("%w: failed to parse JSON response: %v", ErrInvalidResponse, err)
	}
	return value, nil
}

// stripCodeFence removes a surrounding markdown code fence, with or without
// a language tag, that the model sometimes wraps JSON output in.
func stripCodeFence(text string) string {
	trimmed := strings.TrimSpace(text)
	if !strings.HasPrefix(trimmed, "```") {
		return trimmed
	}

	trimmed = strings.TrimPrefix(trimmed, "```")
	if idx := strings.Index(trimmed, "\n"); idx >= 0 {
		trimmed = trimmed[idx+1:]
	}
	trimmed = strings.TrimSuffix(strings.TrimSpace(trimmed), "```")
	return strings.TrimSpace(trimmed)
}
