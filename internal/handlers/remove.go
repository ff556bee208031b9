package handlers

import (
	"encoding/json"
	"errors"
	"net/http"
	"os"
	"path/filepath"

	"dataset-builder/internal/contextutil"
	"dataset-builder/internal/store"
)

// RemoveHandler deletes one item and, best effort, its copied image
// file. The store stays free of image I/O; the handler owns it.
type RemoveHandler struct {
	store     *store.Store
	outputDir string
}

// NewRemoveHandler creates a handler deleting images under outputDir.
func NewRemoveHandler(st *store.Store, outputDir string) *RemoveHandler {
	return &RemoveHandler{store: st, outputDir: outputDir}
}

// RemoveRequest identifies the item to delete.
type RemoveRequest struct {
	ItemID string `json:"item_id"`
}

func (h *RemoveHandler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	logger := contextutil.Logger(ctx)

	var req RemoveRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		logger.WarnContext(ctx, "invalid remove payload", "error", err)
		writeError(w, http.StatusBadRequest, "invalid JSON: "+err.Error())
		return
	}
	if req.ItemID == "" {
		writeError(w, http.StatusBadRequest, "item_id is required")
		return
	}

	imagePath, err := h.store.RemoveItem(req.ItemID)
	if errors.Is(err, store.ErrNotFound) {
		writeError(w, http.StatusNotFound, "unknown item id: "+req.ItemID)
		return
	}

	// Image deletion failures are logged, not fatal: the dataset
	// mutation already happened and must be reported as such.
	if imagePath != "" {
		abs := filepath.Join(h.outputDir, filepath.FromSlash(imagePath))
		if err := os.Remove(abs); err != nil && !os.IsNotExist(err) {
			logger.WarnContext(ctx, "could not delete image file", "path", abs, "error", err)
		}
	}

	h.store.Touch()
	if err := h.store.Save(); err != nil {
		logger.ErrorContext(ctx, "failed to persist dataset after remove", "error", err)
		writeError(w, http.StatusInternalServerError, err.Error())
		return
	}

	logger.InfoContext(ctx, "item removed", "id", req.ItemID)
	snap := h.store.Snapshot()
	writeJSON(w, http.StatusOK, ItemsResponse{
		Status:      "success",
		Items:       snap.Items,
		LastUpdated: snap.LastUpdated,
	})
}
