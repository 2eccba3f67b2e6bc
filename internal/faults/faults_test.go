package faults_test

import (
	"errors"
	"fmt"
	"strings"
	"testing"
	"unicode/utf8"

	"github.com/phrazzld/acharya-api/internal/faults"
	"github.com/stretchr/testify/assert"
)

func TestAggregateClassification(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name string
		err  error
		want string
	}{
		{
			name: "overload by status code",
			err:  errors.New("rpc error: code 503 backend unavailable"),
			want: "The generation service is temporarily overloaded. Please try again in a few minutes.",
		},
		{
			name: "overload by signature",
			err:  errors.New("the model is currently Overloaded"),
			want: "The generation service is temporarily overloaded. Please try again in a few minutes.",
		},
		{
			name: "rate limit",
			err:  errors.New("429: rate limit exceeded for quota group"),
			want: "API rate limit exceeded. Please wait a moment and try again.",
		},
		{
			name: "unauthorized",
			err:  errors.New("401 Unauthorized: API key not valid"),
			want: "API authentication failed. Please check your API key.",
		},
		{
			name: "timeout",
			err:  errors.New("context deadline exceeded: request timeout"),
			want: "Request timed out. Please try again.",
		},
		{
			name: "connection failure",
			err:  errors.New("dial tcp: connection refused"),
			want: "Connection error. Please check your network connection.",
		},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			assert.Equal(t, tc.want, faults.Aggregate(tc.err))
		})
	}
}

func TestAggregateBadRequestIncludesExcerpt(t *testing.T) {
	t.Parallel()

	long := "400 bad request: " + strings.Repeat("x", 500)
	got := faults.Aggregate(errors.New(long))

	assert.True(t, strings.HasPrefix(got, "Invalid request: 400 bad request: "))
	assert.LessOrEqual(t, len(got), len("Invalid request: ")+200)
}

func TestAggregateUnclassifiedIsTruncated(t *testing.T) {
	t.Parallel()

	long := strings.Repeat("y", 500)
	got := faults.Aggregate(errors.New(long))

	assert.Len(t, got, 300)
}

func TestAggregateTruncatesOnRuneBoundaries(t *testing.T) {
	t.Parallel()

	long := strings.Repeat("é", 500)
	got := faults.Aggregate(errors.New(long))

	assert.True(t, utf8.ValidString(got))
	assert.Equal(t, 300, utf8.RuneCountInString(got))
}

func TestAggregateNestedTree(t *testing.T) {
	t.Parallel()

	t.Run("deduplicates classified messages across the tree", func(t *testing.T) {
		inner := errors.Join(
			errors.New("503 overloaded on subtopic 2"),
			errors.New("dial tcp: connection reset"),
		)
		tree := errors.Join(
			errors.New("503 overloaded on subtopic 1"),
			inner,
		)

		got := faults.Aggregate(tree)

		overload := "The generation service is temporarily overloaded. Please try again in a few minutes."
		assert.Equal(t, 1, strings.Count(got, overload))
		assert.Contains(t, got, "Connection error.")
	})

	t.Run("caps output at three distinct messages", func(t *testing.T) {
		var errs []error
		for i := 0; i < 5; i++ {
			errs = append(errs, fmt.Errorf("distinct failure %d", i))
		}

		got := faults.Aggregate(errors.Join(errs...))

		parts := strings.Split(got, " | ")
		assert.Len(t, parts, 3)
		assert.Equal(t, "distinct failure 0", parts[0])
		assert.Equal(t, "distinct failure 2", parts[2])
	})

	t.Run("keeps first-encountered order depth-first", func(t *testing.T) {
		tree := errors.Join(
			errors.Join(errors.New("first"), errors.New("second")),
			errors.New("third"),
		)

		got := faults.Aggregate(tree)

		assert.Equal(t, "first | second | third", got)
	})
}

func TestAggregateNoLeaves(t *testing.T) {
	t.Parallel()

	assert.Equal(t, "An unknown error occurred. Please try again.", faults.Aggregate(nil))
	assert.Equal(t, "An unknown error occurred. Please try again.", faults.Aggregate(errors.Join()))
}
