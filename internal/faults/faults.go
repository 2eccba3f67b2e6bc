package faults

import (
	"strings"
)

// Bounds on the aggregated output. Excerpt lengths keep raw upstream error
// text from flooding the client; maxMessages caps how many distinct
// failures are reported.
const (
	invalidExcerptLen = 200
	genericExcerptLen = 300
	maxMessages       = 3

	separator = " | "
)

// unknownErrorMessage is returned when aggregation finds no leaf failures.
const unknownErrorMessage = "An unknown error occurred. Please try again."

// Aggregate collapses a possibly-joined error tree into one deduplicated,
// classified, user-facing message. Leaves are visited depth-first in
// first-encountered order; at most maxMessages distinct messages are joined.
func Aggregate(err error) string {
	var leaves []error
	flatten(err, &leaves)

	var messages []string
	seen := make(map[string]struct{})
	for _, leaf := range leaves {
		msg := classify(leaf.Error())
		if _, dup := seen[msg]; dup {
			continue
		}
		seen[msg] = struct{}{}
		messages = append(messages, msg)
	}

	switch {
	case len(messages) == 0:
		return unknownErrorMessage
	case len(messages) == 1:
		return messages[0]
	default:
		if len(messages) > maxMessages {
			messages = messages[:maxMessages]
		}
		return strings.Join(messages, separator)
	}
}

// flatten walks an error tree depth-first, appending leaf failures in
// first-encountered order. Multi-errors (errors.Join and friends) expose
// their children through Unwrap() []error; everything else is a leaf.
func flatten(err error, leaves *[]error) {
	if err == nil {
		return
	}

	if group, ok := err.(interface{ Unwrap() []error }); ok {
		for _, child := range group.Unwrap() {
			flatten(child, leaves)
		}
		return
	}

	*leaves = append(*leaves, err)
}

// classify maps a leaf failure's text to a user-facing message by checking
// known upstream-service signatures in priority order.
func classify(text string) string {
	lower := strings.ToLower(text)

	switch {
	case strings.Contains(text, "503") || strings.Contains(lower, "overloaded"):
		return "The generation service is temporarily overloaded. Please try again in a few minutes."
	case strings.Contains(text, "429") || strings.Contains(lower, "rate limit"):
		return "API rate limit exceeded. Please wait a moment and try again."
	case strings.Contains(text, "401") || strings.Contains(lower, "unauthorized"):
		return "API authentication failed. Please check your API key."
	case strings.Contains(text, "400") || strings.Contains(lower, "invalid"):
		return "Invalid request: " + excerpt(text, invalidExcerptLen)
	case strings.Contains(lower, "timeout"):
		return "Request timed out. Please try again."
	case strings.Contains(lower, "connection"):
		return "Connection error. Please check your network connection."
	default:
		return excerpt(text, genericExcerptLen)
	}
}

// excerpt bounds text to at most n characters, never splitting a rune.
func excerpt(text string, n int) string {
	runes := []rune(text)
	if len(runes) > n {
		return string(runes[:n])
	}
	return text
}
