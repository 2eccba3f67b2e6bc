package extract_test

import (
	"testing"

	"github.com/phrazzld/acharya-api/internal/domain"
	"github.com/phrazzld/acharya-api/internal/extract"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestFlashcards(t *testing.T) {
	t.Parallel()

	t.Run("unwraps wrapper object", func(t *testing.T) {
		raw := map[string]any{
			"flashcards": []any{
				map[string]any{"question": "What is chlorophyll?", "answer": "A green pigment"},
				map[string]any{"question": "Where does the Calvin cycle run?", "answer": "The stroma"},
			},
		}

		cards := extract.Flashcards(raw)

		require.Len(t, cards, 2)
		assert.Equal(t, "What is chlorophyll?", cards[0].Question)
		assert.Equal(t, "The stroma", cards[1].Answer)
	})

	t.Run("parses JSON string payload", func(t *testing.T) {
		raw := `{"flashcards":[{"question":"Q1","answer":"A1"}]}`

		cards := extract.Flashcards(raw)

		require.Len(t, cards, 1)
		assert.Equal(t, "Q1", cards[0].Question)
	})

	t.Run("accepts bare list", func(t *testing.T) {
		raw := []any{map[string]any{"question": "Q1", "answer": "A1"}}

		cards := extract.Flashcards(raw)

		require.Len(t, cards, 1)
		assert.Equal(t, "A1", cards[0].Answer)
	})

	t.Run("is idempotent on its own output", func(t *testing.T) {
		canonical := []domain.Flashcard{{Question: "Q1", Answer: "A1"}, {Question: "Q2", Answer: "A2"}}

		assert.Equal(t, canonical, extract.Flashcards(canonical))
	})

	t.Run("returns empty on malformed input", func(t *testing.T) {
		assert.Empty(t, extract.Flashcards(nil))
		assert.Empty(t, extract.Flashcards("not json"))
		assert.Empty(t, extract.Flashcards(42))
		assert.Empty(t, extract.Flashcards(map[string]any{"unrelated": true}))
	})
}

func TestQuiz(t *testing.T) {
	t.Parallel()

	t.Run("transforms parallel sequences into per-question items", func(t *testing.T) {
		raw := map[string]any{
			"quiz": []any{
				map[string]any{
					"questions":       []any{"Q1"},
					"options":         []any{[]any{"A", "B"}},
					"correct_answers": []any{"B is correct because..."},
				},
			},
		}

		items := extract.Quiz(raw)

		require.Len(t, items, 1)
		assert.Equal(t, "Q1", items[0].Question)
		assert.Equal(t, []string{"A", "B"}, items[0].Options)
		assert.Equal(t, 1, items[0].CorrectIndex)
		assert.Equal(t, "B is correct because...", items[0].Explanation)
	})

	t.Run("matches the answer case-insensitively", func(t *testing.T) {
		raw := map[string]any{
			"quiz": []any{
				map[string]any{
					"questions":       []any{"Q1"},
					"options":         []any{[]any{"Mitochondria", "Chloroplast"}},
					"correct_answers": []any{"CHLOROPLAST, since it hosts the light reactions"},
				},
			},
		}

		items := extract.Quiz(raw)

		require.Len(t, items, 1)
		assert.Equal(t, 1, items[0].CorrectIndex)
	})

	t.Run("defaults to index zero when no option matches", func(t *testing.T) {
		raw := map[string]any{
			"quiz": []any{
				map[string]any{
					"questions":       []any{"Q1"},
					"options":         []any{[]any{"A", "B"}},
					"correct_answers": []any{"none of these strings appear"},
				},
			},
		}

		items := extract.Quiz(raw)

		require.Len(t, items, 1)
		assert.Equal(t, 0, items[0].CorrectIndex)
	})

	t.Run("skips questions without an options entry", func(t *testing.T) {
		raw := map[string]any{
			"quiz": []any{
				map[string]any{
					"questions":       []any{"Q1", "Q2"},
					"options":         []any{[]any{"A", "B"}},
					"correct_answers": []any{"A", "B"},
				},
			},
		}

		items := extract.Quiz(raw)

		require.Len(t, items, 1)
		assert.Equal(t, "Q1", items[0].Question)
	})

	t.Run("passes through canonical item lists", func(t *testing.T) {
		canonical := []domain.QuizItem{
			{Question: "Q1", Options: []string{"A", "B"}, CorrectIndex: 1, Explanation: "B"},
		}

		assert.Equal(t, canonical, extract.Quiz(canonical))
	})

	t.Run("decodes canonical items from loose JSON", func(t *testing.T) {
		raw := []any{
			map[string]any{
				"question":     "Q1",
				"options":      []any{"A", "B"},
				"correctIndex": float64(1),
				"explanation":  "B",
			},
		}

		items := extract.Quiz(raw)

		require.Len(t, items, 1)
		assert.Equal(t, 1, items[0].CorrectIndex)
	})

	t.Run("parses JSON string payload", func(t *testing.T) {
		raw := `{"quiz":[{"questions":["Q1"],"options":[["A","B"]],"correct_answers":["A"]}]}`

		items := extract.Quiz(raw)

		require.Len(t, items, 1)
		assert.Equal(t, 0, items[0].CorrectIndex)
	})

	t.Run("returns empty on malformed input", func(t *testing.T) {
		assert.Empty(t, extract.Quiz(nil))
		assert.Empty(t, extract.Quiz("not json"))
		assert.Empty(t, extract.Quiz(3.14))
		assert.Empty(t, extract.Quiz(map[string]any{"unrelated": true}))
	})
}

func TestDialogueTranscript(t *testing.T) {
	t.Parallel()

	t.Run("renders dialogue turns in order", func(t *testing.T) {
		raw := map[string]any{
			"dialogue": []any{
				map[string]any{"speaker": "Host", "text": "Welcome!"},
				map[string]any{"speaker": "Guest", "text": "Thanks for having me."},
			},
		}

		transcript := extract.DialogueTranscript(raw)

		assert.Equal(t, "Host: Welcome!\nGuest: Thanks for having me.\n", transcript)
	})

	t.Run("defaults missing speaker names", func(t *testing.T) {
		raw := map[string]any{
			"dialogue": []any{map[string]any{"text": "Hello"}},
		}

		assert.Equal(t, "Speaker: Hello\n", extract.DialogueTranscript(raw))
	})

	t.Run("passes plain strings through unchanged", func(t *testing.T) {
		assert.Equal(t, "already a transcript", extract.DialogueTranscript("already a transcript"))
	})

	t.Run("returns empty for anything else", func(t *testing.T) {
		assert.Empty(t, extract.DialogueTranscript(nil))
		assert.Empty(t, extract.DialogueTranscript(42))
		assert.Empty(t, extract.DialogueTranscript(map[string]any{"no_dialogue": true}))
	})
}

func TestSubtopics(t *testing.T) {
	t.Parallel()

	t.Run("reads a string list with count", func(t *testing.T) {
		raw := map[string]any{
			"subtopics": []any{"light_reactions", "calvin_cycle", "chlorophyll"},
			"count":     float64(3),
		}

		list, count := extract.Subtopics(raw)

		assert.Equal(t, []string{"light_reactions", "calvin_cycle", "chlorophyll"}, list)
		assert.Equal(t, 3, count)
	})

	t.Run("parses a numbered-list string", func(t *testing.T) {
		raw := map[string]any{
			"subtopics": "1. Light Reactions\n2. Calvin Cycle\n3. Chlorophyll",
		}

		list, count := extract.Subtopics(raw)

		assert.Equal(t, []string{"Light Reactions", "Calvin Cycle", "Chlorophyll"}, list)
		assert.Equal(t, 3, count)
	})

	t.Run("never reports a count beyond the list length", func(t *testing.T) {
		raw := map[string]any{
			"subtopics": []any{"only_one"},
			"count":     float64(7),
		}

		list, count := extract.Subtopics(raw)

		assert.Len(t, list, 1)
		assert.Equal(t, 1, count)
	})

	t.Run("returns empty on missing or malformed payload", func(t *testing.T) {
		list, count := extract.Subtopics(nil)
		assert.Empty(t, list)
		assert.Zero(t, count)

		list, count = extract.Subtopics("not json")
		assert.Empty(t, list)
		assert.Zero(t, count)
	})
}
