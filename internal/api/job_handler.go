package api

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"strings"

	"github.com/go-chi/chi/v5"

	"github.com/phrazzld/acharya-api/internal/api/shared"
	"github.com/phrazzld/acharya-api/internal/domain"
	"github.com/phrazzld/acharya-api/internal/registry"
)

// defaultUserID is used when a request omits the user identifier.
const defaultUserID = "default_user"

// GenerationService starts generation jobs. Implemented by the orchestrator.
type GenerationService interface {
	// Submit creates a job for the topic and schedules its pipeline without
	// blocking. Returns the new job ID.
	Submit(ctx context.Context, userID, topic string) (string, error)
}

// JobReader provides read access to job state. Implemented by the registry.
type JobReader interface {
	Get(ctx context.Context, id string) (*domain.Job, error)
}

// JobHandler handles job submission and status polling requests
type JobHandler struct {
	service GenerationService
	jobs    JobReader
	logger  *slog.Logger
}

// NewJobHandler creates a new JobHandler
func NewJobHandler(service GenerationService, jobs JobReader, logger *slog.Logger) *JobHandler {
	return &JobHandler{
		service: service,
		jobs:    jobs,
		logger:  logger.With("component", "job_handler"),
	}
}

// Generate handles POST /api/generate requests. It registers the job and
// responds before the pipeline runs; clients poll the status endpoint with
// the returned session ID.
func (h *JobHandler) Generate(w http.ResponseWriter, r *http.Request) {
	var req GenerateRequest
	if err := shared.DecodeJSON(r, &req); err != nil {
		shared.RespondWithError(w, r, http.StatusBadRequest, "Invalid request format")
		return
	}

	if err := shared.ValidateRequest(req); err != nil || strings.TrimSpace(req.Topic) == "" {
		shared.RespondWithError(w, r, http.StatusBadRequest, "Topic cannot be empty")
		return
	}

	userID := req.UserID
	if userID == "" {
		userID = defaultUserID
	}

	jobID, err := h.service.Submit(r.Context(), userID, req.Topic)
	if err != nil {
		if errors.Is(err, domain.ErrEmptyTopic) {
			shared.RespondWithError(w, r, http.StatusBadRequest, "Topic cannot be empty")
			return
		}
		shared.RespondWithErrorAndLog(w, r, http.StatusInternalServerError,
			"Failed to start content generation", err)
		return
	}

	response := GenerateResponse{
		SessionID: jobID,
		Status:    string(domain.JobStatusProcessing),
		Message:   fmt.Sprintf("Content generation started for topic: %s", strings.TrimSpace(req.Topic)),
	}

	// 202 Accepted: processing happens asynchronously.
	shared.RespondWithJSON(w, r, http.StatusAccepted, response)
}

// Status handles GET /api/status/{sessionID} requests. Clients poll this
// until the status is completed or error.
func (h *JobHandler) Status(w http.ResponseWriter, r *http.Request) {
	sessionID := chi.URLParam(r, "sessionID")

	job, err := h.jobs.Get(r.Context(), sessionID)
	if err != nil {
		if errors.Is(err, registry.ErrJobNotFound) {
			shared.RespondWithError(w, r, http.StatusNotFound, "Session not found")
			return
		}
		shared.RespondWithErrorAndLog(w, r, http.StatusInternalServerError,
			"Failed to load session", err)
		return
	}

	shared.RespondWithJSON(w, r, http.StatusOK, jobToStatusResponse(job))
}

// Progress handles GET /api/progress/{sessionID} requests, the lightweight
// polling surface for UI progress updates.
func (h *JobHandler) Progress(w http.ResponseWriter, r *http.Request) {
	sessionID := chi.URLParam(r, "sessionID")

	job, err := h.jobs.Get(r.Context(), sessionID)
	if err != nil {
		if errors.Is(err, registry.ErrJobNotFound) {
			shared.RespondWithError(w, r, http.StatusNotFound, "Session not found")
			return
		}
		shared.RespondWithErrorAndLog(w, r, http.StatusInternalServerError,
			"Failed to load session", err)
		return
	}

	shared.RespondWithJSON(w, r, http.StatusOK, ProgressResponse{
		Status:         string(job.Status),
		Progress:       job.Progress,
		SubtopicsCount: len(job.Subtopics),
	})
}
