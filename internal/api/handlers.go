package api

import (
	"encoding/json"
	"net/http"
	"strings"

	"github.com/kestrelvm/kestrelasm/internal/assembler"
)

// SubmitRequest is the body of POST /api/v1/jobs.
type SubmitRequest struct {
	Source   string `json:"source"`
	Filename string `json:"filename"`
	PDC      bool   `json:"pdc"`
	RawASM   bool   `json:"rawAsm"`
}

// SubmitResponse is returned immediately after a job is queued.
type SubmitResponse struct {
	ID string `json:"id"`
}

// JobResponse reports a job's current state.
type JobResponse struct {
	ID     string `json:"id"`
	Status string `json:"status"`
	Error  string `json:"error,omitempty"`
}

func (s *Server) handleJobs(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		http.Error(w, "method not allowed", http.StatusMethodNotAllowed)
		return
	}
	var req SubmitRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}
	if req.Filename == "" {
		req.Filename = "source.asm"
	}
	opts := assembler.Options{
		PICDefault: !req.PDC,
		WrapASM:    !req.RawASM,
	}
	id := s.jobs.Submit(req.Source, req.Filename, opts)
	writeJSON(w, http.StatusAccepted, SubmitResponse{ID: id})
}

// handleJobRoute dispatches /api/v1/jobs/{id} and /api/v1/jobs/{id}/output.
func (s *Server) handleJobRoute(w http.ResponseWriter, r *http.Request) {
	rest := strings.TrimPrefix(r.URL.Path, "/api/v1/jobs/")
	if rest == "" {
		http.NotFound(w, r)
		return
	}
	parts := strings.SplitN(rest, "/", 2)
	id := parts[0]

	if len(parts) == 2 && parts[1] == "output" {
		s.handleJobOutput(w, r, id)
		return
	}

	job, ok := s.jobs.Get(id)
	if !ok {
		writeError(w, http.StatusNotFound, "job not found")
		return
	}
	writeJSON(w, http.StatusOK, JobResponse{ID: job.ID, Status: string(job.Status), Error: job.Error})
}

func (s *Server) handleJobOutput(w http.ResponseWriter, r *http.Request, id string) {
	dcl := r.URL.Query().Get("format") == "dcl"
	data, ok := s.jobs.Output(id, dcl)
	if !ok {
		writeError(w, http.StatusNotFound, "job not found or not finished")
		return
	}
	if dcl {
		w.Header().Set("Content-Type", "text/plain; charset=utf-8")
	} else {
		w.Header().Set("Content-Type", "application/octet-stream")
	}
	_, _ = w.Write(data)
}

func writeJSON(w http.ResponseWriter, status int, v interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

func writeError(w http.ResponseWriter, status int, message string) {
	writeJSON(w, status, map[string]string{"error": message})
}
