package handlers

import (
	"bytes"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/yuin/goldmark"
	"github.com/yuin/goldmark/extension"

	"dataset-builder/internal/contextutil"
	"dataset-builder/internal/store"
)

// NotesPreviewHandler renders an item's notes field as HTML, so
// annotators who keep markdown in their notes get a readable preview.
type NotesPreviewHandler struct {
	store    *store.Store
	markdown goldmark.Markdown
}

// NewNotesPreviewHandler creates a NotesPreviewHandler.
func NewNotesPreviewHandler(st *store.Store) *NotesPreviewHandler {
	return &NotesPreviewHandler{
		store: st,
		markdown: goldmark.New(
			goldmark.WithExtensions(
				extension.GFM,
				extension.Strikethrough,
				extension.Linkify,
			),
		),
	}
}

func (h *NotesPreviewHandler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	logger := contextutil.Logger(ctx)

	id := chi.URLParam(r, "id")
	snap := h.store.Snapshot()
	i := snap.FindItem(id)
	if i < 0 {
		writeError(w, http.StatusNotFound, "unknown item id: "+id)
		return
	}

	var buf bytes.Buffer
	if err := h.markdown.Convert([]byte(snap.Items[i].Notes), &buf); err != nil {
		logger.ErrorContext(ctx, "failed to render notes", "id", id, "error", err)
		writeError(w, http.StatusInternalServerError, "could not render notes")
		return
	}

	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	if _, err := w.Write(buf.Bytes()); err != nil && !isClientDisconnect(err) {
		logger.ErrorContext(ctx, "failed to write notes preview", "error", err)
	}
}
