package api

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"
)

func newTestServer() *Server {
	return &Server{
		jobs:        NewJobManager(NewBroadcaster()),
		broadcaster: nil,
		mux:         http.NewServeMux(),
	}
}

func TestHandleJobsSubmitAndPoll(t *testing.T) {
	s := newTestServer()
	s.jobs.broadcaster = NewBroadcaster()
	s.registerRoutes()

	body := `{"source":"nop\n","filename":"a.asm","rawAsm":true}`
	req := httptest.NewRequest(http.MethodPost, "/api/v1/jobs", strings.NewReader(body))
	rec := httptest.NewRecorder()
	s.mux.ServeHTTP(rec, req)

	if rec.Code != http.StatusAccepted {
		t.Fatalf("submit status = %d, want %d; body=%s", rec.Code, http.StatusAccepted, rec.Body.String())
	}
	var sub SubmitResponse
	if err := json.Unmarshal(rec.Body.Bytes(), &sub); err != nil {
		t.Fatalf("failed to decode submit response: %v", err)
	}
	if sub.ID == "" {
		t.Fatal("expected a non-empty job id")
	}

	var jr JobResponse
	deadline := time.Now().Add(time.Second)
	for time.Now().Before(deadline) {
		req := httptest.NewRequest(http.MethodGet, "/api/v1/jobs/"+sub.ID, nil)
		rec := httptest.NewRecorder()
		s.mux.ServeHTTP(rec, req)
		if rec.Code != http.StatusOK {
			t.Fatalf("poll status = %d, want %d", rec.Code, http.StatusOK)
		}
		_ = json.Unmarshal(rec.Body.Bytes(), &jr)
		if jr.Status == string(StatusDone) || jr.Status == string(StatusFailed) {
			break
		}
		time.Sleep(5 * time.Millisecond)
	}
	if jr.Status != string(StatusDone) {
		t.Fatalf("job status = %q, want %q", jr.Status, StatusDone)
	}
}

func TestHandleJobsRejectsNonPost(t *testing.T) {
	s := newTestServer()
	s.registerRoutes()

	req := httptest.NewRequest(http.MethodGet, "/api/v1/jobs", nil)
	rec := httptest.NewRecorder()
	s.mux.ServeHTTP(rec, req)
	if rec.Code != http.StatusMethodNotAllowed {
		t.Fatalf("GET /api/v1/jobs status = %d, want %d", rec.Code, http.StatusMethodNotAllowed)
	}
}

func TestHandleJobRouteNotFound(t *testing.T) {
	s := newTestServer()
	s.registerRoutes()

	req := httptest.NewRequest(http.MethodGet, "/api/v1/jobs/does-not-exist", nil)
	rec := httptest.NewRecorder()
	s.mux.ServeHTTP(rec, req)
	if rec.Code != http.StatusNotFound {
		t.Fatalf("status = %d, want %d", rec.Code, http.StatusNotFound)
	}
}

func TestIsAllowedOriginLocalhostOnly(t *testing.T) {
	cases := map[string]bool{
		"":                        true,
		"http://localhost:3000":   true,
		"https://127.0.0.1:8080":  true,
		"https://evil.example.com": false,
	}
	for origin, want := range cases {
		if got := isAllowedOrigin(origin); got != want {
			t.Fatalf("isAllowedOrigin(%q) = %v, want %v", origin, got, want)
		}
	}
}

func TestHandleHealth(t *testing.T) {
	s := newTestServer()
	s.registerRoutes()

	req := httptest.NewRequest(http.MethodGet, "/health", nil)
	rec := httptest.NewRecorder()
	s.mux.ServeHTTP(rec, req)
	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d, want %d", rec.Code, http.StatusOK)
	}
}
