package gemini

import "errors"

// Error definitions for the gemini package.
var (
	// ErrInvalidConfig is returned when the runner configuration is unusable.
	ErrInvalidConfig = errors.New("invalid gemini configuration")

	// ErrInvalidResponse is returned when the API response cannot be used.
	ErrInvalidResponse = errors.New("invalid response from gemini API")

	// ErrContentBlocked is returned when safety filters block the output.
	ErrContentBlocked = errors.New("content blocked by safety filters")

	// ErrTransientFailure is returned when all retries are exhausted on a
	// retryable error.
	ErrTransientFailure = errors.New("transient gemini API failure")

	// ErrEmptyTopic is returned when a topic or subtopic is empty.
	ErrEmptyTopic = errors.New("topic cannot be empty")
)
