package server

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	chimiddleware "github.com/go-chi/chi/v5/middleware"

	"dataset-builder/internal/handlers"
	"dataset-builder/internal/viewer"
)

// routes builds the handler tree for one listener incarnation.
func (s *Server) routes() http.Handler {
	r := chi.NewRouter()

	r.Use(chimiddleware.Recoverer)
	r.Use(requestLogger)
	r.Use(livenessProbe)

	r.Method(http.MethodGet, "/"+viewer.PageName, handlers.NewViewerHandler(s.outputDir))
	r.Method(http.MethodPost, "/save", handlers.NewSaveHandler(s.store))
	r.Method(http.MethodPost, "/remove", handlers.NewRemoveHandler(s.store, s.outputDir))
	r.Method(http.MethodPost, "/refresh", handlers.NewRefreshHandler(s.store, s.scanner, s.generatePage))
	r.Method(http.MethodPost, "/restart", handlers.NewRestartHandler(s.store, s.coordinator))
	r.Method(http.MethodPost, "/items/filter", handlers.NewItemsFilterHandler(s.store))
	r.Method(http.MethodGet, "/items/{id}/notes_preview", handlers.NewNotesPreviewHandler(s.store))

	// Everything else under GET is static content from the output
	// directory (copied images, exports).
	r.Handle("/*", http.FileServer(http.Dir(s.outputDir)))

	return r
}
