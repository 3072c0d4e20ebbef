package server

import (
	"encoding/json"
	"errors"
	"net/http"
	"strconv"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/griddock/stationscope/internal/processor"
	"github.com/griddock/stationscope/internal/store"
)

// processRequest is the body of POST /api/v1/audit/process.
type processRequest struct {
	Files []processor.InputFile `json:"files"`
}

// handleProcess runs one audit batch and persists the result.
func (s *Server) handleProcess(w http.ResponseWriter, r *http.Request) {
	r.Body = http.MaxBytesReader(w, r.Body, maxBatchBytes)

	var req processRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		var tooLarge *http.MaxBytesError
		if errors.As(err, &tooLarge) {
			PayloadTooLarge(w, "batch exceeds the upload size limit", r.URL.Path)
			return
		}
		BadRequest(w, "invalid request body: "+err.Error(), r.URL.Path)
		return
	}
	if len(req.Files) == 0 {
		BadRequest(w, "no files in batch", r.URL.Path)
		return
	}
	for _, f := range req.Files {
		if f.Name == "" {
			BadRequest(w, "file without a name in batch", r.URL.Path)
			return
		}
	}

	result, err := s.processor.ProcessFiles(r.Context(), req.Files)
	if err != nil {
		InternalError(w, err.Error(), r.URL.Path)
		return
	}

	if s.store != nil {
		if err := s.store.SaveBatch(r.Context(), result); err != nil {
			// The caller still gets the result; persistence is best effort.
			s.logger.Error("save batch failed",
				zap.String("run_id", result.RunID.String()),
				zap.Error(err))
		}
	}

	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusCreated)
	json.NewEncoder(w).Encode(result)
}

// handleGetRun returns a previously stored batch result.
func (s *Server) handleGetRun(w http.ResponseWriter, r *http.Request) {
	id, err := uuid.Parse(r.PathValue("id"))
	if err != nil {
		BadRequest(w, "invalid run id", r.URL.Path)
		return
	}

	result, err := s.store.GetRun(r.Context(), id)
	if errors.Is(err, store.ErrRunNotFound) {
		NotFound(w, "audit run "+id.String()+" not found", r.URL.Path)
		return
	}
	if err != nil {
		InternalError(w, err.Error(), r.URL.Path)
		return
	}

	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(result)
}

// handleListRuns returns recent run summaries, newest first.
func (s *Server) handleListRuns(w http.ResponseWriter, r *http.Request) {
	limit := 50
	if q := r.URL.Query().Get("limit"); q != "" {
		n, err := strconv.Atoi(q)
		if err != nil || n <= 0 {
			BadRequest(w, "limit must be a positive integer", r.URL.Path)
			return
		}
		limit = n
	}

	runs, err := s.store.ListRuns(r.Context(), limit)
	if err != nil {
		InternalError(w, err.Error(), r.URL.Path)
		return
	}
	if runs == nil {
		runs = []store.RunSummary{}
	}

	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(runs)
}
