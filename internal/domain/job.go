package domain

import (
	"errors"
	"strings"
	"time"

	"github.com/google/uuid"
)

// JobStatus represents the lifecycle state of a generation job
type JobStatus string

// Possible job status values
const (
	JobStatusProcessing JobStatus = "processing"
	JobStatusCompleted  JobStatus = "completed"
	JobStatusError      JobStatus = "error"
)

// Common validation errors for Job
var (
	ErrEmptyJobID       = errors.New("job ID cannot be empty")
	ErrEmptyTopic       = errors.New("topic cannot be empty")
	ErrInvalidJobStatus = errors.New("invalid job status")
)

// Flashcard is a single question/answer pair generated for a subtopic.
type Flashcard struct {
	Question string `json:"question"`
	Answer   string `json:"answer"`
}

// QuizItem is a single multiple-choice question. CorrectIndex points into
// Options; Explanation carries the full free-text correct answer.
type QuizItem struct {
	Question     string   `json:"question"`
	Options      []string `json:"options"`
	CorrectIndex int      `json:"correctIndex"`
	Explanation  string   `json:"explanation"`
}

// Podcast holds the generated dialogue for a subtopic and a URL to the
// rendered audio file, if one exists.
type Podcast struct {
	Title      string `json:"title"`
	Transcript string `json:"transcript"`
	AudioURL   string `json:"audioUrl"`
}

// Image is a reference to a generated visual for a subtopic.
type Image struct {
	URL   string `json:"url"`
	Title string `json:"title"`
}

// ContentSlot holds all generated content for one subtopic. Fields start
// empty and are filled exactly once by the incremental merge; the final
// extraction pass may overwrite the whole slot.
type ContentSlot struct {
	WebContent string      `json:"webContent"`
	Flashcards []Flashcard `json:"flashcards"`
	Quiz       []QuizItem  `json:"quiz"`
	Podcast    Podcast     `json:"podcast"`
	Images     []Image     `json:"images"`
}

// Job represents one end-to-end content-generation request for a topic.
// Content is index-aligned with Subtopics once decomposition completes.
type Job struct {
	ID        string        `json:"session_id"`
	UserID    string        `json:"user_id"`
	Topic     string        `json:"topic"`
	Status    JobStatus     `json:"status"`
	Subtopics []string      `json:"subtopics"`
	Content   []ContentSlot `json:"content"`
	Progress  string        `json:"progress"`
	Error     string        `json:"error,omitempty"`
	CreatedAt time.Time     `json:"created_at"`
	UpdatedAt time.Time     `json:"updated_at"`
}

// NewJob creates a new Job for the given topic in processing status.
// It generates a new UUID for the job ID and sets the creation timestamps.
// Returns an error if validation fails.
func NewJob(userID, topic string) (*Job, error) {
	job := &Job{
		ID:        uuid.New().String(),
		UserID:    userID,
		Topic:     strings.TrimSpace(topic),
		Status:    JobStatusProcessing,
		Subtopics: []string{},
		Content:   []ContentSlot{},
		Progress:  "Generating subtopics...",
		CreatedAt: time.Now().UTC(),
		UpdatedAt: time.Now().UTC(),
	}

	if err := job.Validate(); err != nil {
		return nil, err
	}

	return job, nil
}

// Validate checks if the Job has valid data.
// Returns an error if any field fails validation.
func (j *Job) Validate() error {
	if j.ID == "" {
		return ErrEmptyJobID
	}

	if strings.TrimSpace(j.Topic) == "" {
		return ErrEmptyTopic
	}

	if !isValidJobStatus(j.Status) {
		return ErrInvalidJobStatus
	}

	return nil
}

// Clone returns a deep copy of the job. The registry hands out clones so
// that readers never alias the slices the driver and poller mutate.
func (j *Job) Clone() *Job {
	dup := *j

	dup.Subtopics = make([]string, len(j.Subtopics))
	copy(dup.Subtopics, j.Subtopics)

	dup.Content = make([]ContentSlot, len(j.Content))
	for i, slot := range j.Content {
		dup.Content[i] = slot.Clone()
	}

	return &dup
}

// Clone returns a deep copy of the content slot.
func (s ContentSlot) Clone() ContentSlot {
	dup := s

	if s.Flashcards != nil {
		dup.Flashcards = make([]Flashcard, len(s.Flashcards))
		copy(dup.Flashcards, s.Flashcards)
	}

	if s.Quiz != nil {
		dup.Quiz = make([]QuizItem, len(s.Quiz))
		for i, item := range s.Quiz {
			dup.Quiz[i] = item
			dup.Quiz[i].Options = make([]string, len(item.Options))
			copy(dup.Quiz[i].Options, item.Options)
		}
	}

	if s.Images != nil {
		dup.Images = make([]Image, len(s.Images))
		copy(dup.Images, s.Images)
	}

	return dup
}

// isValidJobStatus checks if the given status is a valid JobStatus.
func isValidJobStatus(status JobStatus) bool {
	switch status {
	case JobStatusProcessing, JobStatusCompleted, JobStatusError:
		return true
	default:
		return false
	}
}
