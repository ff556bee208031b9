package handlers

import (
	"bytes"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"path/filepath"
	"testing"

	"dataset-builder/internal/dataset"
	"dataset-builder/internal/store"
)

func newTestStore(t *testing.T) *store.Store {
	t.Helper()
	return store.Open(filepath.Join(t.TempDir(), "dataset_data.json"))
}

func TestSaveHandler(t *testing.T) {
	st := newTestStore(t)
	handler := NewSaveHandler(st)

	payload := dataset.Dataset{
		Items: []dataset.Item{
			{ID: "a", Image: "images/a.jpg", AttributeValues: map[string]string{"species": "cat"}},
		},
		Attributes: []dataset.Attribute{{Name: "species"}},
	}
	body, _ := json.Marshal(payload)

	req := httptest.NewRequest(http.MethodPost, "/save", bytes.NewReader(body))
	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, req)

	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d, want 200, body: %s", rec.Code, rec.Body.String())
	}

	var resp SaveResponse
	if err := json.Unmarshal(rec.Body.Bytes(), &resp); err != nil {
		t.Fatalf("invalid response JSON: %v", err)
	}
	if resp.Status != "success" {
		t.Errorf("status = %q, want success", resp.Status)
	}

	// The store was replaced, normalized, and persisted.
	snap := st.Snapshot()
	if len(snap.Items) != 1 || snap.Items[0].ID != "a" {
		t.Fatalf("store not replaced: %+v", snap.Items)
	}
	if snap.Attributes[0].Name != dataset.IDAttributeName {
		t.Error("saved dataset was not normalized")
	}
	reloaded := store.Open(st.Path())
	if reloaded.Len() != 1 {
		t.Error("dataset was not persisted to disk before the response")
	}
}

func TestSaveHandler_InvalidJSON(t *testing.T) {
	st := newTestStore(t)
	st.UpsertItem(dataset.Item{ID: "keep"})
	handler := NewSaveHandler(st)

	req := httptest.NewRequest(http.MethodPost, "/save", bytes.NewReader([]byte("{broken")))
	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, req)

	if rec.Code != http.StatusBadRequest {
		t.Errorf("status = %d, want 400", rec.Code)
	}
	var resp ErrorResponse
	if err := json.Unmarshal(rec.Body.Bytes(), &resp); err != nil {
		t.Fatalf("error body is not JSON: %v", err)
	}
	if resp.Status != "error" || resp.Message == "" {
		t.Errorf("error body = %+v", resp)
	}
	if !st.HasItem("keep") {
		t.Error("malformed payload must not affect the in-memory store")
	}
}
