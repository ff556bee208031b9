package handlers

import (
	"encoding/json"
	"net/http"

	"dataset-builder/internal/contextutil"
	"dataset-builder/internal/dataset"
	"dataset-builder/internal/store"
)

// ItemsFilterHandler evaluates the filter engine server-side, giving
// the client the same view the generated page computes locally.
type ItemsFilterHandler struct {
	store *store.Store
}

// NewItemsFilterHandler creates an ItemsFilterHandler.
func NewItemsFilterHandler(st *store.Store) *ItemsFilterHandler {
	return &ItemsFilterHandler{store: st}
}

// FilterRequest selects a subset of items.
type FilterRequest struct {
	Search  string           `json:"search"`
	Filters []dataset.Filter `json:"filters"`
}

func (h *ItemsFilterHandler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	logger := contextutil.Logger(ctx)

	var req FilterRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		logger.WarnContext(ctx, "invalid filter payload", "error", err)
		writeError(w, http.StatusBadRequest, "invalid JSON: "+err.Error())
		return
	}
	if err := dataset.ValidateFilters(req.Filters); err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}

	snap := h.store.Snapshot()
	matched := dataset.Match(snap.Items, req.Search, req.Filters)
	writeJSON(w, http.StatusOK, ItemsResponse{
		Status:      "success",
		Items:       matched,
		LastUpdated: snap.LastUpdated,
	})
}
