package moku

import (
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"testing"
)

// recordedRequest captures what the stub device saw.
type recordedRequest struct {
	Method    string
	Path      string
	ClientKey string
	Body      string
}

// stubDevice serves canned envelopes keyed by request path.
type stubDevice struct {
	mu        sync.Mutex
	requests  []recordedRequest
	responses map[string]string
	status    map[string]int
	headers   map[string]map[string]string
}

func newStubDevice(t *testing.T, responses map[string]string) (*stubDevice, *httptest.Server) {
	t.Helper()
	dev := &stubDevice{
		responses: responses,
		status:    map[string]int{},
		headers:   map[string]map[string]string{},
	}
	srv := httptest.NewServer(http.HandlerFunc(dev.serve))
	t.Cleanup(srv.Close)
	return dev, srv
}

func (d *stubDevice) serve(w http.ResponseWriter, r *http.Request) {
	raw, _ := io.ReadAll(r.Body)

	d.mu.Lock()
	d.requests = append(d.requests, recordedRequest{
		Method:    r.Method,
		Path:      r.URL.Path,
		ClientKey: r.Header.Get(ClientKeyHeader),
		Body:      string(raw),
	})
	body, ok := d.responses[r.URL.Path]
	status := d.status[r.URL.Path]
	headers := d.headers[r.URL.Path]
	d.mu.Unlock()

	if !ok {
		http.NotFound(w, r)
		return
	}
	for k, v := range headers {
		w.Header().Set(k, v)
	}
	if status == 0 {
		status = http.StatusOK
	}
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_, _ = w.Write([]byte(body))
}

func (d *stubDevice) calls() []recordedRequest {
	d.mu.Lock()
	defer d.mu.Unlock()
	out := make([]recordedRequest, len(d.requests))
	copy(out, d.requests)
	return out
}

func hostOf(srv *httptest.Server) string {
	return strings.TrimPrefix(srv.URL, "http://")
}
