package api

import (
	"log/slog"
	"net/http"
	"os"
	"path/filepath"

	"github.com/go-chi/chi/v5"

	"github.com/phrazzld/acharya-api/internal/api/shared"
)

// MediaHandler serves the binary artifacts the generation agents write to
// disk: podcast audio (out_<i>.wav) and images (image_<i>.jpg).
type MediaHandler struct {
	podcastDir string
	imageDir   string
	logger     *slog.Logger
}

// NewMediaHandler creates a new MediaHandler serving from the given directories.
func NewMediaHandler(podcastDir, imageDir string, logger *slog.Logger) *MediaHandler {
	return &MediaHandler{
		podcastDir: podcastDir,
		imageDir:   imageDir,
		logger:     logger.With("component", "media_handler"),
	}
}

// Podcast handles GET /api/podcast/{filename} requests.
func (h *MediaHandler) Podcast(w http.ResponseWriter, r *http.Request) {
	h.serveFile(w, r, h.podcastDir, "audio/wav", "Podcast not found")
}

// Image handles GET /api/images/{filename} requests.
func (h *MediaHandler) Image(w http.ResponseWriter, r *http.Request) {
	h.serveFile(w, r, h.imageDir, "image/jpeg", "Image not found")
}

func (h *MediaHandler) serveFile(w http.ResponseWriter, r *http.Request, dir, contentType, notFoundMsg string) {
	// filepath.Base strips any path components, so requests cannot escape
	// the media directory.
	filename := filepath.Base(chi.URLParam(r, "filename"))
	if filename == "." || filename == string(filepath.Separator) {
		shared.RespondWithError(w, r, http.StatusNotFound, notFoundMsg)
		return
	}

	path := filepath.Join(dir, filename)
	info, err := os.Stat(path)
	if err != nil || info.IsDir() {
		shared.RespondWithError(w, r, http.StatusNotFound, notFoundMsg)
		return
	}

	w.Header().Set("Content-Type", contentType)
	http.ServeFile(w, r, path)
}
