package server

import (
	"bytes"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"path/filepath"
	"testing"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/griddock/stationscope/internal/processor"
	"github.com/griddock/stationscope/internal/store"
)

const n2Sample = `Name,Status,Address,Controller Type
VAV-101,{ok},1,VND
VAV-102,{down},2,VND
`

func newTestServer(t *testing.T) *Server {
	t.Helper()
	st, err := store.New(filepath.Join(t.TempDir(), "audit.db"))
	if err != nil {
		t.Fatalf("store.New: %v", err)
	}
	t.Cleanup(func() { st.Close() })
	return New("127.0.0.1:0", processor.New(zap.NewNop()), st, zap.NewNop())
}

func postProcess(t *testing.T, s *Server, body any) *httptest.ResponseRecorder {
	t.Helper()
	raw, err := json.Marshal(body)
	if err != nil {
		t.Fatal(err)
	}
	req := httptest.NewRequest(http.MethodPost, "/api/v1/audit/process", bytes.NewReader(raw))
	w := httptest.NewRecorder()
	s.Handler().ServeHTTP(w, req)
	return w
}

func TestHandleProcess(t *testing.T) {
	s := newTestServer(t)

	w := postProcess(t, s, processRequest{Files: []processor.InputFile{
		{Name: "Store1_N2xport.csv", Content: n2Sample},
	}})
	if w.Code != http.StatusCreated {
		t.Fatalf("status = %d, body %s", w.Code, w.Body)
	}

	var result processor.BatchResult
	if err := json.NewDecoder(w.Body).Decode(&result); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if result.Metadata.ProcessedFiles != 1 {
		t.Errorf("ProcessedFiles = %d, want 1", result.Metadata.ProcessedFiles)
	}
	if result.RunID == uuid.Nil {
		t.Fatal("RunID not assigned")
	}

	// The run must be retrievable afterwards.
	req := httptest.NewRequest(http.MethodGet, "/api/v1/audit/runs/"+result.RunID.String(), nil)
	rec := httptest.NewRecorder()
	s.Handler().ServeHTTP(rec, req)
	if rec.Code != http.StatusOK {
		t.Fatalf("get run status = %d, body %s", rec.Code, rec.Body)
	}
	var stored processor.BatchResult
	if err := json.NewDecoder(rec.Body).Decode(&stored); err != nil {
		t.Fatalf("decode stored: %v", err)
	}
	if stored.RunID != result.RunID {
		t.Errorf("stored RunID = %s, want %s", stored.RunID, result.RunID)
	}
}

func TestHandleProcessEmptyBatch(t *testing.T) {
	s := newTestServer(t)

	w := postProcess(t, s, processRequest{})
	if w.Code != http.StatusBadRequest {
		t.Fatalf("status = %d, want 400", w.Code)
	}
	var p Problem
	if err := json.NewDecoder(w.Body).Decode(&p); err != nil {
		t.Fatalf("decode problem: %v", err)
	}
	if p.Type != ProblemTypeBadRequest {
		t.Errorf("problem type = %q", p.Type)
	}
}

func TestHandleProcessInvalidJSON(t *testing.T) {
	s := newTestServer(t)

	req := httptest.NewRequest(http.MethodPost, "/api/v1/audit/process",
		bytes.NewReader([]byte("{not json")))
	w := httptest.NewRecorder()
	s.Handler().ServeHTTP(w, req)
	if w.Code != http.StatusBadRequest {
		t.Fatalf("status = %d, want 400", w.Code)
	}
}

func TestHandleGetRunNotFound(t *testing.T) {
	s := newTestServer(t)

	req := httptest.NewRequest(http.MethodGet, "/api/v1/audit/runs/"+uuid.NewString(), nil)
	w := httptest.NewRecorder()
	s.Handler().ServeHTTP(w, req)
	if w.Code != http.StatusNotFound {
		t.Fatalf("status = %d, want 404", w.Code)
	}
}

func TestHandleGetRunInvalidID(t *testing.T) {
	s := newTestServer(t)

	req := httptest.NewRequest(http.MethodGet, "/api/v1/audit/runs/not-a-uuid", nil)
	w := httptest.NewRecorder()
	s.Handler().ServeHTTP(w, req)
	if w.Code != http.StatusBadRequest {
		t.Fatalf("status = %d, want 400", w.Code)
	}
}

func TestHandleListRuns(t *testing.T) {
	s := newTestServer(t)

	if w := postProcess(t, s, processRequest{Files: []processor.InputFile{
		{Name: "Store1_N2xport.csv", Content: n2Sample},
	}}); w.Code != http.StatusCreated {
		t.Fatalf("process status = %d", w.Code)
	}

	req := httptest.NewRequest(http.MethodGet, "/api/v1/audit/runs", nil)
	w := httptest.NewRecorder()
	s.Handler().ServeHTTP(w, req)
	if w.Code != http.StatusOK {
		t.Fatalf("status = %d, body %s", w.Code, w.Body)
	}
	var runs []store.RunSummary
	if err := json.NewDecoder(w.Body).Decode(&runs); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if len(runs) != 1 {
		t.Errorf("got %d runs, want 1", len(runs))
	}
}

func TestHandleHealth(t *testing.T) {
	s := newTestServer(t)

	req := httptest.NewRequest(http.MethodGet, "/api/v1/health", nil)
	w := httptest.NewRecorder()
	s.Handler().ServeHTTP(w, req)
	if w.Code != http.StatusOK {
		t.Fatalf("status = %d", w.Code)
	}
	var body map[string]interface{}
	if err := json.NewDecoder(w.Body).Decode(&body); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if body["status"] != "ok" || body["service"] != "stationscope" {
		t.Errorf("body = %v", body)
	}
}
