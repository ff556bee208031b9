package handlers

import (
	"net/http"
	"os"
	"path/filepath"

	"dataset-builder/internal/contextutil"
	"dataset-builder/internal/viewer"
)

// ViewerHandler serves the generated viewer page, read fresh from
// disk on every request so a regeneration is picked up immediately.
type ViewerHandler struct {
	outputDir string
}

// NewViewerHandler serves the page out of outputDir.
func NewViewerHandler(outputDir string) *ViewerHandler {
	return &ViewerHandler{outputDir: outputDir}
}

const missingPage = `<!DOCTYPE html>
<html><head><title>Dataset Viewer</title></head>
<body><h1>Viewer page not found</h1>
<p>The viewer page has not been generated yet. Restart the server or
run a scan to regenerate it.</p></body></html>`

func (h *ViewerHandler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	logger := contextutil.Logger(ctx)

	raw, err := os.ReadFile(filepath.Join(h.outputDir, viewer.PageName))
	if err != nil {
		logger.WarnContext(ctx, "viewer page missing", "error", err)
		w.Header().Set("Content-Type", "text/html; charset=utf-8")
		w.WriteHeader(http.StatusNotFound)
		_, _ = w.Write([]byte(missingPage))
		return
	}

	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	w.Header().Set("Cache-Control", "no-store")
	if _, err := w.Write(raw); err != nil && !isClientDisconnect(err) {
		logger.ErrorContext(ctx, "failed to write viewer page", "error", err)
	}
}
