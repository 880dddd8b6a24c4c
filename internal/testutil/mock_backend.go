// Package testutil provides testing utilities for the couchers client.
package testutil

import (
	"bytes"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"sync"
	"time"

	"github.com/go-chi/chi/v5"

	"github.com/thevivek0408/couchsurfing-sub002/pkg/rpc"
)

// MockResponse defines the reply of a mock backend method.
type MockResponse struct {
	StatusCode int
	Body       string
	Delay      time.Duration
}

// MockBackend is a configurable fake of the RPC backend. Methods are
// registered by full name, e.g. "org.couchers.api.core.API/GetUser".
type MockBackend struct {
	server   *httptest.Server
	mu       sync.RWMutex
	handlers map[string]http.HandlerFunc
	calls    map[string][][]byte

	// Tracking
	RequestCount      int
	LastRequestHeader http.Header
}

// NewMockBackend starts a mock backend.
func NewMockBackend() *MockBackend {
	mock := &MockBackend{
		handlers: make(map[string]http.HandlerFunc),
		calls:    make(map[string][][]byte),
	}

	r := chi.NewRouter()
	r.Post("/{service}/{method}", mock.dispatch)
	mock.server = httptest.NewServer(r)
	return mock
}

func (m *MockBackend) dispatch(w http.ResponseWriter, r *http.Request) {
	name := chi.URLParam(r, "service") + "/" + chi.URLParam(r, "method")
	body, _ := io.ReadAll(r.Body)

	m.mu.Lock()
	m.RequestCount++
	m.LastRequestHeader = r.Header.Clone()
	m.calls[name] = append(m.calls[name], body)
	handler, exists := m.handlers[name]
	m.mu.Unlock()

	if !exists {
		writeJSON(w, http.StatusNotImplemented, map[string]string{
			"code":    rpc.CodeUnimplemented.String(),
			"message": "unknown method " + name,
		})
		return
	}
	// Handlers read the body again.
	r.Body = io.NopCloser(bytes.NewReader(body))
	handler(w, r)
}

// URL returns the mock server URL.
func (m *MockBackend) URL() string {
	return m.server.URL
}

// Close shuts down the mock server.
func (m *MockBackend) Close() {
	m.server.Close()
}

// Reset clears all tracking state. Handlers stay registered.
func (m *MockBackend) Reset() {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.RequestCount = 0
	m.LastRequestHeader = nil
	m.calls = make(map[string][][]byte)
}

// SetHandler sets a custom handler for a method.
func (m *MockBackend) SetHandler(method string, handler http.HandlerFunc) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.handlers[method] = handler
}

// SetResponse configures a fixed reply for a method.
func (m *MockBackend) SetResponse(method string, resp MockResponse) {
	m.SetHandler(method, func(w http.ResponseWriter, r *http.Request) {
		if resp.Delay > 0 {
			select {
			case <-time.After(resp.Delay):
			case <-r.Context().Done():
				return
			}
		}
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(resp.StatusCode)
		if resp.Body != "" {
			w.Write([]byte(resp.Body))
		}
	})
}

// SetJSON replies to method with v encoded as JSON.
func (m *MockBackend) SetJSON(method string, v any) {
	m.SetHandler(method, func(w http.ResponseWriter, r *http.Request) {
		writeJSON(w, http.StatusOK, v)
	})
}

// SetError replies to method with a backend status error.
func (m *MockBackend) SetError(method string, code rpc.Code, message string) {
	m.SetResponse(method, NewErrorResponse(code, message))
}

// CallCount returns how often method was called.
func (m *MockBackend) CallCount(method string) int {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return len(m.calls[method])
}

// Requests returns the request bodies received for method, oldest first.
func (m *MockBackend) Requests(method string) [][]byte {
	m.mu.RLock()
	defer m.mu.RUnlock()
	out := make([][]byte, len(m.calls[method]))
	copy(out, m.calls[method])
	return out
}

// GetRequestCount returns the number of requests made to the server.
func (m *MockBackend) GetRequestCount() int {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.RequestCount
}

// NewErrorResponse creates an error reply carrying code and message.
func NewErrorResponse(code rpc.Code, message string) MockResponse {
	body, _ := json.Marshal(map[string]string{"code": code.String(), "message": message})
	return MockResponse{
		StatusCode: httpStatus(code),
		Body:       string(body),
	}
}

// NewJSONResponse creates a 200 OK reply with the given JSON body.
func NewJSONResponse(body string) MockResponse {
	return MockResponse{StatusCode: http.StatusOK, Body: body}
}

// NewUpstreamErrorResponse mimics a proxy failing before the backend answered.
func NewUpstreamErrorResponse() MockResponse {
	return MockResponse{
		StatusCode: http.StatusServiceUnavailable,
		Body:       "upstream connect error or disconnect/reset before headers. reset reason: connection failure",
	}
}

func httpStatus(code rpc.Code) int {
	switch code {
	case rpc.CodeInvalidArgument, rpc.CodeFailedPrecondition, rpc.CodeOutOfRange:
		return http.StatusBadRequest
	case rpc.CodeUnauthenticated:
		return http.StatusUnauthorized
	case rpc.CodePermissionDenied:
		return http.StatusForbidden
	case rpc.CodeNotFound:
		return http.StatusNotFound
	case rpc.CodeAlreadyExists, rpc.CodeAborted:
		return http.StatusConflict
	case rpc.CodeResourceExhausted:
		return http.StatusTooManyRequests
	case rpc.CodeUnavailable:
		return http.StatusServiceUnavailable
	case rpc.CodeDeadlineExceeded:
		return http.StatusGatewayTimeout
	default:
		return http.StatusInternalServerError
	}
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(v)
}
