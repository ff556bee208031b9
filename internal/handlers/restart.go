package handlers

import (
	"encoding/json"
	"io"
	"net/http"

	"dataset-builder/internal/contextutil"
	"dataset-builder/internal/dataset"
	"dataset-builder/internal/store"
)

// RestartCoordinator schedules a full server teardown and rebind. The
// implementation must write the restart sentinel durably before
// returning and must delay the actual listener shutdown, so the
// handler's success response reaches the client first. A handler can
// never shut the listener down synchronously: it is itself the stack
// frame the listener is serving.
type RestartCoordinator interface {
	RequestRestart() error
}

// RestartHandler persists the submitted dataset and schedules the
// server restart.
type RestartHandler struct {
	store       *store.Store
	coordinator RestartCoordinator
}

// NewRestartHandler creates a RestartHandler.
func NewRestartHandler(st *store.Store, c RestartCoordinator) *RestartHandler {
	return &RestartHandler{store: st, coordinator: c}
}

// RestartResponse acknowledges the restart before it begins.
type RestartResponse struct {
	Status  string `json:"status"`
	Message string `json:"message"`
}

func (h *RestartHandler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	logger := contextutil.Logger(ctx)

	// Save pending edits first. A malformed payload is logged and the
	// restart proceeds anyway; losing the restart over a bad body
	// would strand the client mid-recovery.
	body, err := io.ReadAll(r.Body)
	if err != nil && !isClientDisconnect(err) {
		logger.WarnContext(ctx, "could not read restart payload", "error", err)
	}
	if len(body) > 0 {
		var d dataset.Dataset
		if err := json.Unmarshal(body, &d); err != nil {
			logger.WarnContext(ctx, "could not save dataset during restart", "error", err)
		} else {
			h.store.Replace(&d)
			if err := h.store.Save(); err != nil {
				logger.WarnContext(ctx, "could not persist dataset during restart", "error", err)
			}
		}
	}

	if err := h.coordinator.RequestRestart(); err != nil {
		logger.ErrorContext(ctx, "could not schedule restart", "error", err)
		writeError(w, http.StatusInternalServerError, "restart failed: "+err.Error())
		return
	}

	logger.InfoContext(ctx, "restart scheduled")
	writeJSON(w, http.StatusOK, RestartResponse{
		Status:  "success",
		Message: "Server restarting...",
	})
}
