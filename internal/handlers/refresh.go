package handlers

//go:generate go run go.uber.org/mock/mockgen@latest -destination=mocks/mock_rescanner.go -package=mocks dataset-builder/internal/handlers Rescanner

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"

	"dataset-builder/internal/contextutil"
	"dataset-builder/internal/dataset"
	"dataset-builder/internal/store"
)

// Rescanner re-runs the image directory scan. Implemented by
// scanner.Scanner; mocked in tests.
type Rescanner interface {
	Scan(ctx context.Context) (int, error)
}

// PageGenerator regenerates the static viewer page from a dataset.
type PageGenerator func(d *dataset.Dataset) error

// RefreshHandler saves an optional client payload, rescans the image
// directory and regenerates the viewer page, all before responding.
type RefreshHandler struct {
	store    *store.Store
	scanner  Rescanner
	generate PageGenerator
}

// NewRefreshHandler creates a RefreshHandler.
func NewRefreshHandler(st *store.Store, sc Rescanner, generate PageGenerator) *RefreshHandler {
	return &RefreshHandler{store: st, scanner: sc, generate: generate}
}

func (h *RefreshHandler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	logger := contextutil.Logger(ctx)

	// The body is an optional dataset to save before rescanning, so
	// in-flight edits survive the refresh.
	body, err := io.ReadAll(r.Body)
	if err != nil {
		if isClientDisconnect(err) {
			logger.InfoContext(ctx, "client disconnected during refresh", "error", err)
			return
		}
		writeError(w, http.StatusBadRequest, "could not read request body")
		return
	}
	if len(body) > 0 {
		var d dataset.Dataset
		if err := json.Unmarshal(body, &d); err != nil {
			logger.WarnContext(ctx, "invalid refresh payload", "error", err)
			writeError(w, http.StatusBadRequest, "invalid dataset JSON: "+err.Error())
			return
		}
		h.store.Replace(&d)
		if err := h.store.Save(); err != nil {
			logger.ErrorContext(ctx, "failed to persist dataset before rescan", "error", err)
			writeError(w, http.StatusInternalServerError, err.Error())
			return
		}
	}

	seen, err := h.scanner.Scan(ctx)
	if err != nil {
		logger.ErrorContext(ctx, "rescan failed", "error", err)
		writeError(w, http.StatusInternalServerError, "rescan failed: "+err.Error())
		return
	}

	snap := h.store.Snapshot()
	if err := h.generate(snap); err != nil {
		logger.ErrorContext(ctx, "failed to regenerate viewer page", "error", err)
		writeError(w, http.StatusInternalServerError, "page regeneration failed: "+err.Error())
		return
	}

	logger.InfoContext(ctx, "refresh complete", "images", seen, "items", len(snap.Items))
	writeJSON(w, http.StatusOK, ItemsResponse{
		Status:      "success",
		Items:       snap.Items,
		LastUpdated: snap.LastUpdated,
		Message:     fmt.Sprintf("Scanned %d images. Dataset now contains %d items.", seen, len(snap.Items)),
	})
}
