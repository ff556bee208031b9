package handlers

import (
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"dataset-builder/internal/viewer"
)

func TestViewerHandler(t *testing.T) {
	outputDir := t.TempDir()
	page := "<html><body>generated page</body></html>"
	if err := os.WriteFile(filepath.Join(outputDir, viewer.PageName), []byte(page), 0o644); err != nil {
		t.Fatal(err)
	}

	handler := NewViewerHandler(outputDir)
	req := httptest.NewRequest(http.MethodGet, "/"+viewer.PageName, nil)
	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, req)

	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d", rec.Code)
	}
	if rec.Body.String() != page {
		t.Error("handler must serve the page bytes as written")
	}
	if got := rec.Header().Get("Cache-Control"); got != "no-store" {
		t.Errorf("Cache-Control = %q, want no-store", got)
	}

	// A regenerated page is picked up on the next request.
	updated := "<html><body>updated</body></html>"
	if err := os.WriteFile(filepath.Join(outputDir, viewer.PageName), []byte(updated), 0o644); err != nil {
		t.Fatal(err)
	}
	rec = httptest.NewRecorder()
	handler.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/"+viewer.PageName, nil))
	if rec.Body.String() != updated {
		t.Error("handler served a stale page")
	}
}

func TestViewerHandler_MissingPage(t *testing.T) {
	handler := NewViewerHandler(t.TempDir())
	req := httptest.NewRequest(http.MethodGet, "/"+viewer.PageName, nil)
	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, req)

	if rec.Code != http.StatusNotFound {
		t.Errorf("status = %d, want 404", rec.Code)
	}
	if !strings.Contains(rec.Body.String(), "not") {
		t.Error("missing page should render a fallback error page")
	}
}

func TestNotesPreviewHandler_UnknownItem(t *testing.T) {
	st := newTestStore(t)
	handler := NewNotesPreviewHandler(st)

	req := httptest.NewRequest(http.MethodGet, "/items/nope/notes_preview", nil)
	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, req)

	if rec.Code != http.StatusNotFound {
		t.Errorf("status = %d, want 404", rec.Code)
	}
}
