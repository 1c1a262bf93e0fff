// Package webdrivertest provides an in-process WebDriver endpoint that serves
// deterministic page timings.
package webdrivertest

import (
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"testing"
)

// NavigationStart is the navigationStart every fake page load reports.
const NavigationStart int64 = 1_700_000_000_000

// UserAgent is the user agent every fake page reports.
const UserAgent = "Mozilla/5.0 (X11; Linux x86_64) webdrivertest"

// Server is a fake WebDriver remote end. Session n (1-based) reports a page
// load time of 500 + 100*(n-1) ms.
type Server struct {
	*httptest.Server

	// RejectSession makes session creation fail with "session not created"
	// and this message.
	RejectSession string
	// FailScript makes the timing script fail with a javascript error.
	FailScript bool

	mu        sync.Mutex
	created   int
	deleted   int
	navigated []string
	requested []map[string]any
}

// NewServer starts a Server that is closed when the test ends.
func NewServer(t testing.TB) *Server {
	t.Helper()
	s := &Server{}

	mux := http.NewServeMux()
	mux.HandleFunc("POST /session", s.newSession)
	mux.HandleFunc("POST /session/{id}/timeouts", s.ok)
	mux.HandleFunc("POST /session/{id}/url", s.navigate)
	mux.HandleFunc("POST /session/{id}/execute/sync", s.execute)
	mux.HandleFunc("DELETE /session/{id}", s.deleteSession)

	s.Server = httptest.NewServer(mux)
	t.Cleanup(s.Close)
	return s
}

// Created returns how many sessions were started.
func (s *Server) Created() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.created
}

// Deleted returns how many sessions were ended.
func (s *Server) Deleted() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.deleted
}

// Navigated returns the URLs loaded, in order.
func (s *Server) Navigated() []string {
	s.mu.Lock()
	defer s.mu.Unlock()
	return append([]string(nil), s.navigated...)
}

// Requested returns the alwaysMatch capabilities of every session request.
func (s *Server) Requested() []map[string]any {
	s.mu.Lock()
	defer s.mu.Unlock()
	return append([]map[string]any(nil), s.requested...)
}

func (s *Server) newSession(w http.ResponseWriter, r *http.Request) {
	var body struct {
		Capabilities struct {
			AlwaysMatch map[string]any `json:"alwaysMatch"`
		} `json:"capabilities"`
	}
	if err := json.NewDecoder(r.Body).Decode(&body); err != nil {
		writeError(w, http.StatusBadRequest, "invalid argument", err.Error())
		return
	}

	s.mu.Lock()
	s.requested = append(s.requested, body.Capabilities.AlwaysMatch)
	if s.RejectSession != "" {
		s.mu.Unlock()
		writeError(w, http.StatusInternalServerError, "session not created", s.RejectSession)
		return
	}
	s.created++
	id := fmt.Sprintf("session-%d", s.created)
	s.mu.Unlock()

	name, _ := body.Capabilities.AlwaysMatch["browserName"].(string)
	writeValue(w, map[string]any{
		"sessionId": id,
		"capabilities": map[string]any{
			"browserName":    name,
			"browserVersion": "128.0",
		},
	})
}

func (s *Server) ok(w http.ResponseWriter, _ *http.Request) {
	writeValue(w, nil)
}

func (s *Server) navigate(w http.ResponseWriter, r *http.Request) {
	var body struct {
		URL string `json:"url"`
	}
	if err := json.NewDecoder(r.Body).Decode(&body); err != nil {
		writeError(w, http.StatusBadRequest, "invalid argument", err.Error())
		return
	}
	s.mu.Lock()
	s.navigated = append(s.navigated, body.URL)
	s.mu.Unlock()
	writeValue(w, nil)
}

func (s *Server) execute(w http.ResponseWriter, r *http.Request) {
	var body struct {
		Script string `json:"script"`
	}
	if err := json.NewDecoder(r.Body).Decode(&body); err != nil {
		writeError(w, http.StatusBadRequest, "invalid argument", err.Error())
		return
	}
	if s.FailScript {
		writeError(w, http.StatusInternalServerError, "javascript error", "performance is not defined")
		return
	}
	// The load wait script only asks whether the load event has finished.
	if !strings.Contains(body.Script, "userAgent") {
		writeValue(w, true)
		return
	}

	var n int
	if _, err := fmt.Sscanf(r.PathValue("id"), "session-%d", &n); err != nil {
		writeError(w, http.StatusNotFound, "invalid session id", r.PathValue("id"))
		return
	}
	writeValue(w, Payload(n))
}

func (s *Server) deleteSession(w http.ResponseWriter, _ *http.Request) {
	s.mu.Lock()
	s.deleted++
	s.mu.Unlock()
	writeValue(w, nil)
}

// Payload is the timing script result for session n.
func Payload(n int) map[string]any {
	base := NavigationStart
	off := int64(100 * (n - 1))
	return map[string]any{
		"timing": map[string]int64{
			"navigationStart":            base,
			"fetchStart":                 base + 10,
			"domainLookupStart":          base + 10,
			"domainLookupEnd":            base + 30,
			"connectStart":               base + 30,
			"connectEnd":                 base + 60,
			"requestStart":               base + 60,
			"responseStart":              base + 160,
			"responseEnd":                base + 200,
			"domLoading":                 base + 210,
			"domInteractive":             base + 300 + off,
			"domContentLoadedEventStart": base + 320 + off,
			"domContentLoadedEventEnd":   base + 330 + off,
			"domComplete":                base + 480 + off,
			"loadEventStart":             base + 500 + off,
			"loadEventEnd":               base + 510 + off,
		},
		"marks": []map[string]any{
			{"name": "logo", "startTime": 250.0, "duration": 0.0},
		},
		"measures": []map[string]any{
			{"name": "hero", "startTime": 100.0, "duration": 120.0},
		},
		"userAgent": UserAgent,
	}
}

func writeValue(w http.ResponseWriter, v any) {
	w.Header().Set("Content-Type", "application/json; charset=utf-8")
	_ = json.NewEncoder(w).Encode(map[string]any{"value": v})
}

func writeError(w http.ResponseWriter, status int, code, message string) {
	w.Header().Set("Content-Type", "application/json; charset=utf-8")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(map[string]any{
		"value": map[string]string{
			"error":      code,
			"message":    message,
			"stacktrace": "",
		},
	})
}
