package api

import (
	"github.com/phrazzld/acharya-api/internal/domain"
)

// GenerateRequest represents the request body for starting content generation
type GenerateRequest struct {
	Topic  string `json:"topic"  validate:"required,min=1"`
	UserID string `json:"user_id"`
}

// GenerateResponse acknowledges an accepted generation job
type GenerateResponse struct {
	SessionID string `json:"session_id"`
	Status    string `json:"status"`
	Message   string `json:"message"`
}

// StatusResponse is the full job snapshot returned by the status endpoint.
// Content uses the domain types directly; their JSON tags are the wire
// contract.
type StatusResponse struct {
	SessionID string               `json:"session_id"`
	Status    string               `json:"status"`
	Topic     string               `json:"topic"`
	Subtopics []string             `json:"subtopics"`
	Content   []domain.ContentSlot `json:"content"`
	Error     string               `json:"error,omitempty"`
}

// ProgressResponse is the lightweight polling shape for UI progress updates
type ProgressResponse struct {
	Status         string `json:"status"`
	Progress       string `json:"progress"`
	SubtopicsCount int    `json:"subtopics_count"`
}

// jobToStatusResponse converts a domain.Job to a StatusResponse
func jobToStatusResponse(job *domain.Job) StatusResponse {
	return StatusResponse{
		SessionID: job.ID,
		Status:    string(job.Status),
		Topic:     job.Topic,
		Subtopics: job.Subtopics,
		Content:   job.Content,
		Error:     job.Error,
	}
}
