package orchestrator

import (
	"fmt"
	"strings"
)

// Generated media artifacts are written to disk by the audio and image
// agents under index-derived filenames; these helpers build the API URLs
// that serve them.

func podcastMediaURL(baseURL string, index int) string {
	return fmt.Sprintf("%s/api/podcast/out_%d.wav", strings.TrimRight(baseURL, "/"), index)
}

func imageMediaURL(baseURL string, index int) string {
	return fmt.Sprintf("%s/api/images/image_%d.jpg", strings.TrimRight(baseURL, "/"), index)
}
