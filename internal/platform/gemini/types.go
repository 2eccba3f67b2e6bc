// Package gemini provides implementations of the agent.Runner interface using Google's Gemini API.
package gemini

// subtopicsSchema represents the expected structure of the decomposition
// response from the Gemini API.
type subtopicsSchema struct {
	// Subtopics is the ordered list of subtopic names for the topic.
	Subtopics []string `json:"subtopics"`

	// Count is the number of subtopics; recomputed locally, the model's
	// value is not trusted.
	Count int `json:"count"`
}
