package extract

import (
	"encoding/json"
	"fmt"
	"strings"

	"github.com/phrazzld/acharya-api/internal/domain"
)

// Flashcards normalizes a raw flashcard payload into a slice of
// domain.Flashcard. Accepted shapes: a canonical list, a wrapper object
// with a "flashcards" key, or a JSON string of either. Applying Flashcards
// to its own output returns it unchanged.
func Flashcards(raw any) []domain.Flashcard {
	if raw == nil {
		return []domain.Flashcard{}
	}

	switch v := raw.(type) {
	case []domain.Flashcard:
		return v

	case string:
		var decoded any
		if err := json.Unmarshal([]byte(v), &decoded); err != nil {
			return []domain.Flashcard{}
		}
		return Flashcards(decoded)

	case map[string]any:
		list, ok := v["flashcards"]
		if !ok {
			return []domain.Flashcard{}
		}
		return Flashcards(list)

	default:
		var cards []domain.Flashcard
		if err := reencode(raw, &cards); err != nil || cards == nil {
			return []domain.Flashcard{}
		}
		return cards
	}
}

// Quiz normalizes a raw quiz payload into a slice of domain.QuizItem.
//
// Payloads already in the canonical per-question shape pass through
// unchanged. Otherwise the upstream shape is a wrapper object with a "quiz"
// key (or a bare list) of question groups carrying parallel sequences:
//
//	{"questions": [...], "options": [[...], ...], "correct_answers": [...]}
//
// Item i pairs questions[i] with options[i]; questions without a matching
// options entry are skipped. The correct index is the first option whose
// text is a case-insensitive substring of, or prefix match against, the
// free-text correct answer, defaulting to 0. The full free-text answer is
// kept as the explanation.
func Quiz(raw any) []domain.QuizItem {
	if raw == nil {
		return []domain.QuizItem{}
	}

	switch v := raw.(type) {
	case []domain.QuizItem:
		return v

	case string:
		var decoded any
		if err := json.Unmarshal([]byte(v), &decoded); err != nil {
			return []domain.QuizItem{}
		}
		return Quiz(decoded)
	}

	groups, ok := quizGroups(raw)
	if !ok {
		// Not the group shape; it may already be a canonical item list.
		if items, done := canonicalQuizItems(raw); done {
			return items
		}
		return []domain.QuizItem{}
	}

	result := make([]domain.QuizItem, 0, len(groups))
	for _, group := range groups {
		for i, question := range group.Questions {
			if i >= len(group.Options) {
				continue
			}

			options := group.Options[i]
			answer := ""
			if i < len(group.CorrectAnswers) {
				answer = group.CorrectAnswers[i]
			}

			result = append(result, domain.QuizItem{
				Question:     question,
				Options:      options,
				CorrectIndex: matchCorrectIndex(options, answer),
				Explanation:  answer,
			})
		}
	}

	return result
}

// DialogueTranscript renders a raw podcast payload into a flat transcript.
// A structured payload with a "dialogue" sequence of {speaker, text} turns
// is rendered one "speaker: text" line per turn; a plain string passes
// through unchanged; anything else yields an empty string.
func DialogueTranscript(raw any) string {
	switch v := raw.(type) {
	case string:
		return v

	case map[string]any:
		turns, ok := v["dialogue"].([]any)
		if !ok {
			return ""
		}

		var b strings.Builder
		for _, t := range turns {
			turn, ok := t.(map[string]any)
			if !ok {
				continue
			}

			speaker := stringOr(turn["speaker"], "Speaker")
			text := stringOr(turn["text"], "")
			fmt.Fprintf(&b, "%s: %s\n", speaker, text)
		}
		return b.String()

	default:
		return ""
	}
}

// Subtopics normalizes the decomposition output into an ordered subtopic
// list plus the count the decomposition agent reported. The list itself may
// arrive as a string sequence or as a single numbered-list string; the
// whole payload may also be a JSON string. A missing or unusable payload
// yields an empty list.
func Subtopics(raw any) ([]string, int) {
	if raw == nil {
		return nil, 0
	}

	if s, ok := raw.(string); ok {
		var decoded any
		if err := json.Unmarshal([]byte(s), &decoded); err != nil {
			return nil, 0
		}
		return Subtopics(decoded)
	}

	wrapper, ok := raw.(map[string]any)
	if !ok {
		return nil, 0
	}

	list := subtopicList(wrapper["subtopics"])
	count := len(list)
	if n, ok := intValue(wrapper["count"]); ok && n > 0 && n < count {
		count = n
	}

	return list, count
}

// quizGroup mirrors the parallel-sequence shape the quiz agent emits.
type quizGroup struct {
	Questions      []string   `json:"questions"`
	Options        [][]string `json:"options"`
	CorrectAnswers []string   `json:"correct_answers"`
}

// quizGroups extracts question groups from a wrapper object or bare list.
func quizGroups(raw any) ([]quizGroup, bool) {
	payload := raw
	if wrapper, ok := raw.(map[string]any); ok {
		inner, ok := wrapper["quiz"]
		if !ok {
			// A single group object may also appear unwrapped.
			if _, hasQuestions := wrapper["questions"]; hasQuestions {
				payload = []any{raw}
			} else {
				return nil, false
			}
		} else {
			payload = inner
		}
	}

	list, ok := payload.([]any)
	if !ok || len(list) == 0 {
		return nil, false
	}

	first, ok := list[0].(map[string]any)
	if !ok {
		return nil, false
	}
	if _, hasQuestions := first["questions"]; !hasQuestions {
		return nil, false
	}

	var groups []quizGroup
	if err := reencode(list, &groups); err != nil {
		return nil, false
	}
	return groups, true
}

// canonicalQuizItems accepts a list already in the per-question shape.
func canonicalQuizItems(raw any) ([]domain.QuizItem, bool) {
	list, ok := raw.([]any)
	if !ok || len(list) == 0 {
		return nil, false
	}

	first, ok := list[0].(map[string]any)
	if !ok {
		return nil, false
	}
	if _, hasQuestion := first["question"]; !hasQuestion {
		return nil, false
	}

	var items []domain.QuizItem
	if err := reencode(list, &items); err != nil {
		return nil, false
	}
	return items, true
}

// matchCorrectIndex scans options in order for the first one whose text
// appears in (or prefixes) the free-text correct answer.
func matchCorrectIndex(options []string, answer string) int {
	lowerAnswer := strings.ToLower(answer)
	for i, opt := range options {
		lowerOpt := strings.ToLower(opt)
		if strings.Contains(lowerAnswer, lowerOpt) || strings.HasPrefix(lowerAnswer, lowerOpt) {
			return i
		}
	}
	return 0
}

// subtopicList accepts either a sequence of strings or one numbered-list
// string ("1. First\n2. Second\n...").
func subtopicList(raw any) []string {
	switch v := raw.(type) {
	case []string:
		return v

	case []any:
		list := make([]string, 0, len(v))
		for _, item := range v {
			if s, ok := item.(string); ok && strings.TrimSpace(s) != "" {
				list = append(list, strings.TrimSpace(s))
			}
		}
		return list

	case string:
		var list []string
		for _, line := range strings.Split(v, "\n") {
			line = strings.TrimSpace(line)
			if line == "" {
				continue
			}
			// Strip a leading "N." or "N)" ordinal if present.
			if dot := strings.IndexAny(line, ".)"); dot > 0 && isDigits(line[:dot]) {
				line = strings.TrimSpace(line[dot+1:])
			}
			if line != "" {
				list = append(list, line)
			}
		}
		return list

	default:
		return nil
	}
}

func isDigits(s string) bool {
	for _, r := range s {
		if r < '0' || r > '9' {
			return false
		}
	}
	return len(s) > 0
}

func intValue(raw any) (int, bool) {
	switch v := raw.(type) {
	case int:
		return v, true
	case float64:
		return int(v), true
	case json.Number:
		n, err := v.Int64()
		return int(n), err == nil
	default:
		return 0, false
	}
}

func stringOr(raw any, fallback string) string {
	if s, ok := raw.(string); ok {
		return s
	}
	return fallback
}

// reencode converts between loosely typed JSON values and typed structs by
// round-tripping through encoding/json.
func reencode(src, dst any) error {
	b, err := json.Marshal(src)
	if err != nil {
		return err
	}
	return json.Unmarshal(b, dst)
}
