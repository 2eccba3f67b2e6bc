package gemini

import "fmt"

// decompositionPrompt asks the model to split a topic into teachable
// subtopics, returned as a JSON object.
func decompositionPrompt(topic string) string {
	return fmt.Sprintf(`You are a curriculum planner. Break the topic %q into between 5 and 10 subtopics that together cover it for a motivated beginner. Order them from foundational to advanced.

Respond with a JSON object of this exact shape:
{"subtopics": ["first subtopic", "second subtopic"], "count": 2}`, topic)
}

// webContentPrompt asks for a self-contained explainer article in plain text.
func webContentPrompt(subtopic string) string {
	return fmt.Sprintf(`Write a clear, self-contained explainer article about %q for a motivated beginner. Use short paragraphs and concrete examples. Respond with the article text only, no preamble.`, subtopic)
}

// flashcardsPrompt asks for study flashcards as a JSON object.
func flashcardsPrompt(subtopic string) string {
	return fmt.Sprintf(`Create 5 study flashcards about %q. Each card has a question and a concise answer.

Respond with a JSON object of this exact shape:
{"flashcards": [{"question": "...", "answer": "..."}]}`, subtopic)
}

// quizPrompt asks for a multiple-choice quiz. Questions, option lists, and
// free-text correct answers are parallel arrays aligned by index; each
// correct answer restates the correct option so it can be matched back.
func quizPrompt(subtopic string) string {
	return fmt.Sprintf(`Create a 5-question multiple-choice quiz about %q. Each question has 4 options. Each correct answer must begin with the exact text of the correct option, followed by a short explanation.

Respond with a JSON object of this exact shape:
{"questions": ["..."], "options": [["a", "b", "c", "d"]], "correct_answers": ["b is correct because ..."]}`, subtopic)
}

// podcastPrompt asks for a two-host podcast dialogue as a JSON object.
func podcastPrompt(subtopic string) string {
	return fmt.Sprintf(`Write a short, engaging podcast dialogue between two hosts, Alex and Sam, explaining %q to listeners. Around 10 turns, conversational tone.

Respond with a JSON object of this exact shape:
{"dialogue": [{"speaker": "Alex", "text": "..."}, {"speaker": "Sam", "text": "..."}]}`, subtopic)
}
