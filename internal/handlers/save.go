package handlers

import (
	"encoding/json"
	"net/http"

	"dataset-builder/internal/contextutil"
	"dataset-builder/internal/dataset"
	"dataset-builder/internal/store"
)

// SaveHandler replaces the whole dataset with the client's copy and
// persists it. This backs the viewer's "Save Changes" button.
type SaveHandler struct {
	store *store.Store
}

// NewSaveHandler creates a handler writing through the given store.
func NewSaveHandler(st *store.Store) *SaveHandler {
	return &SaveHandler{store: st}
}

// SaveResponse acknowledges a successful save.
type SaveResponse struct {
	Status string `json:"status"`
}

func (h *SaveHandler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	logger := contextutil.Logger(ctx)

	var d dataset.Dataset
	if err := json.NewDecoder(r.Body).Decode(&d); err != nil {
		if isClientDisconnect(err) {
			logger.InfoContext(ctx, "client disconnected during save", "error", err)
			return
		}
		logger.WarnContext(ctx, "invalid save payload", "error", err)
		writeError(w, http.StatusBadRequest, "invalid dataset JSON: "+err.Error())
		return
	}

	h.store.Replace(&d)
	if err := h.store.Save(); err != nil {
		logger.ErrorContext(ctx, "failed to persist dataset", "error", err)
		writeError(w, http.StatusInternalServerError, err.Error())
		return
	}

	logger.InfoContext(ctx, "dataset saved", "items", h.store.Len())
	writeJSON(w, http.StatusOK, SaveResponse{Status: "success"})
}
