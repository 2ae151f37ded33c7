package testutil

import (
	"net/http"
	"net/http/httptest"
	"sync"
)

// MockServer wraps httptest.Server and records what it received.
// It is safe for concurrent requests.
type MockServer struct {
	*httptest.Server

	mu       sync.Mutex
	requests []*http.Request
}

// NewMockServer creates a new mock HTTP server
func NewMockServer(handler http.HandlerFunc) *MockServer {
	ms := &MockServer{}

	ms.Server = httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		ms.mu.Lock()
		ms.requests = append(ms.requests, r)
		ms.mu.Unlock()
		handler(w, r)
	}))

	return ms
}

// NewRouteServer serves a fixed JSON body per URL path and 404 for anything else
func NewRouteServer(routes map[string]string) *MockServer {
	return NewMockServer(func(w http.ResponseWriter, r *http.Request) {
		body, ok := routes[r.URL.Path]
		if !ok {
			w.WriteHeader(http.StatusNotFound)
			_, _ = w.Write([]byte(SampleErrorResponse))
			return
		}
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(body))
	})
}

// LastRequest returns the most recent request
func (ms *MockServer) LastRequest() *http.Request {
	ms.mu.Lock()
	defer ms.mu.Unlock()
	if len(ms.requests) == 0 {
		return nil
	}
	return ms.requests[len(ms.requests)-1]
}

// Requests returns a copy of the request history
func (ms *MockServer) Requests() []*http.Request {
	ms.mu.Lock()
	defer ms.mu.Unlock()
	return append([]*http.Request(nil), ms.requests...)
}

// RequestCount returns the number of requests received
func (ms *MockServer) RequestCount() int {
	ms.mu.Lock()
	defer ms.mu.Unlock()
	return len(ms.requests)
}

// CountPath returns how many requests hit path
func (ms *MockServer) CountPath(path string) int {
	ms.mu.Lock()
	defer ms.mu.Unlock()
	n := 0
	for _, r := range ms.requests {
		if r.URL.Path == path {
			n++
		}
	}
	return n
}

// Reset clears the request history
func (ms *MockServer) Reset() {
	ms.mu.Lock()
	ms.requests = nil
	ms.mu.Unlock()
}
