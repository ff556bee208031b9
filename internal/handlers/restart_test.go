package handlers

import (
	"bytes"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"path/filepath"
	"testing"

	"dataset-builder/internal/dataset"
	"dataset-builder/internal/store"
)

type fakeCoordinator struct {
	requested bool
	err       error
}

func (f *fakeCoordinator) RequestRestart() error {
	f.requested = true
	return f.err
}

func TestRestartHandler(t *testing.T) {
	st := store.Open(filepath.Join(t.TempDir(), "dataset_data.json"))
	coord := &fakeCoordinator{}
	handler := NewRestartHandler(st, coord)

	payload, _ := json.Marshal(dataset.Dataset{
		Items: []dataset.Item{{ID: "a", Notes: "in-flight edit"}},
	})
	req := httptest.NewRequest(http.MethodPost, "/restart", bytes.NewReader(payload))
	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, req)

	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d, body: %s", rec.Code, rec.Body.String())
	}
	if !coord.requested {
		t.Error("restart was not scheduled")
	}

	var resp RestartResponse
	if err := json.Unmarshal(rec.Body.Bytes(), &resp); err != nil {
		t.Fatalf("invalid response JSON: %v", err)
	}
	if resp.Status != "success" {
		t.Errorf("status = %q", resp.Status)
	}

	// The payload was persisted before the restart was scheduled.
	reloaded := store.Open(st.Path())
	if !reloaded.HasItem("a") {
		t.Error("in-flight edits must be saved before restart")
	}
}

func TestRestartHandler_BadPayloadStillRestarts(t *testing.T) {
	st := store.Open(filepath.Join(t.TempDir(), "dataset_data.json"))
	coord := &fakeCoordinator{}
	handler := NewRestartHandler(st, coord)

	req := httptest.NewRequest(http.MethodPost, "/restart", bytes.NewReader([]byte("{broken")))
	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, req)

	if rec.Code != http.StatusOK {
		t.Errorf("status = %d, want 200: a bad body must not strand the restart", rec.Code)
	}
	if !coord.requested {
		t.Error("restart was not scheduled")
	}
}

func TestRestartHandler_CoordinatorFailure(t *testing.T) {
	st := store.Open(filepath.Join(t.TempDir(), "dataset_data.json"))
	coord := &fakeCoordinator{err: errors.New("sentinel write failed")}
	handler := NewRestartHandler(st, coord)

	req := httptest.NewRequest(http.MethodPost, "/restart", bytes.NewReader(nil))
	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, req)

	if rec.Code != http.StatusInternalServerError {
		t.Errorf("status = %d, want 500", rec.Code)
	}
}
