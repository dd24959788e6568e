package testsupport

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"net/url"
	"sync"
	"testing"
)

// APIKey is the key the fake server accepts.
const APIKey = "test-key"

// TautulliServer fakes the Tautulli v2 API for tests. Commands are registered
// per test; unregistered commands fail the test. Every request is recorded so
// tests can assert on pagination parameters.
type TautulliServer struct {
	Server *httptest.Server

	t *testing.T

	mu       sync.Mutex
	handlers map[string]func(query url.Values) (any, error)
	requests []url.Values
}

// NewTautulliServer starts a fake API server that shuts down with the test.
func NewTautulliServer(t *testing.T) *TautulliServer {
	t.Helper()
	ts := &TautulliServer{
		t:        t,
		handlers: map[string]func(url.Values) (any, error){},
	}
	ts.Server = httptest.NewServer(http.HandlerFunc(ts.serve))
	t.Cleanup(ts.Server.Close)
	return ts
}

// URL returns the fake server's base URL.
func (ts *TautulliServer) URL() string { return ts.Server.URL }

// Handle registers a responder for an API command. The returned value becomes
// response.data; a returned error becomes a result=error payload.
func (ts *TautulliServer) Handle(cmd string, fn func(query url.Values) (any, error)) {
	ts.mu.Lock()
	defer ts.mu.Unlock()
	ts.handlers[cmd] = fn
}

// HandleData registers a responder with a fixed data payload.
func (ts *TautulliServer) HandleData(cmd string, data any) {
	ts.Handle(cmd, func(url.Values) (any, error) { return data, nil })
}

// Requests returns a copy of the recorded request query values, in order.
func (ts *TautulliServer) Requests(cmd string) []url.Values {
	ts.mu.Lock()
	defer ts.mu.Unlock()
	var out []url.Values
	for _, q := range ts.requests {
		if q.Get("cmd") == cmd {
			out = append(out, q)
		}
	}
	return out
}

func (ts *TautulliServer) serve(w http.ResponseWriter, r *http.Request) {
	query := r.URL.Query()
	cmd := query.Get("cmd")

	ts.mu.Lock()
	ts.requests = append(ts.requests, query)
	handler, ok := ts.handlers[cmd]
	ts.mu.Unlock()

	if query.Get("apikey") != APIKey {
		writeEnvelope(w, "error", "Invalid apikey", nil)
		return
	}
	if !ok {
		ts.t.Errorf("unexpected Tautulli command %q", cmd)
		writeEnvelope(w, "error", "unknown command", nil)
		return
	}

	data, err := handler(query)
	if err != nil {
		writeEnvelope(w, "error", err.Error(), nil)
		return
	}
	writeEnvelope(w, "success", "", data)
}

func writeEnvelope(w http.ResponseWriter, result, message string, data any) {
	payload := map[string]any{
		"response": map[string]any{
			"result": result,
			"data":   data,
		},
	}
	if message != "" {
		payload["response"].(map[string]any)["message"] = message
	}
	w.Header().Set("Content-Type", "application/json")
	_ = json.NewEncoder(w).Encode(payload)
}
