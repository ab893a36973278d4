package runs

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/kilianp07/wrsn/core/events"
	"github.com/kilianp07/wrsn/core/runstatus"
)

func newStore() *runstatus.MemoryStore {
	store := runstatus.NewMemoryStore()
	store.Apply(events.DispatchEvent{Run: "r1", Policy: "threshold", Cluster: 3})
	store.Apply(events.DispatchEvent{Run: "r2", Policy: "round_robin"})
	store.Apply(events.TerminationEvent{Run: "r2", Reason: "budget"})
	return store
}

func TestHandlerList(t *testing.T) {
	h := NewHandler(newStore(), "")
	rr := httptest.NewRecorder()
	h.ServeHTTP(rr, httptest.NewRequest("GET", "/api/runs?state=running", nil))
	if rr.Code != http.StatusOK {
		t.Fatalf("status %d", rr.Code)
	}
	var out []runstatus.Status
	if err := json.Unmarshal(rr.Body.Bytes(), &out); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if len(out) != 1 || out[0].RunID != "r1" {
		t.Fatalf("unexpected filter result %#v", out)
	}
}

func TestHandlerGet(t *testing.T) {
	h := NewHandler(newStore(), "")
	rr := httptest.NewRecorder()
	h.ServeHTTP(rr, httptest.NewRequest("GET", "/api/runs/r2", nil))
	if rr.Code != http.StatusOK {
		t.Fatalf("status %d", rr.Code)
	}
	var out runstatus.Status
	if err := json.Unmarshal(rr.Body.Bytes(), &out); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if out.State != runstatus.StateTerminated || out.Reason != "budget" {
		t.Fatalf("unexpected status %#v", out)
	}

	rr = httptest.NewRecorder()
	h.ServeHTTP(rr, httptest.NewRequest("GET", "/api/runs/nope", nil))
	if rr.Code != http.StatusNotFound {
		t.Fatalf("expected 404, got %d", rr.Code)
	}
}

func TestHandlerMethodNotAllowed(t *testing.T) {
	h := NewHandler(newStore(), "")
	rr := httptest.NewRecorder()
	h.ServeHTTP(rr, httptest.NewRequest("POST", "/api/runs", nil))
	if rr.Code != http.StatusMethodNotAllowed {
		t.Fatalf("expected 405, got %d", rr.Code)
	}
}

func TestHandlerToken(t *testing.T) {
	h := NewHandler(newStore(), "secret")
	rr := httptest.NewRecorder()
	h.ServeHTTP(rr, httptest.NewRequest("GET", "/api/runs", nil))
	if rr.Code != http.StatusUnauthorized {
		t.Fatalf("expected 401, got %d", rr.Code)
	}

	req := httptest.NewRequest("GET", "/api/runs", nil)
	req.Header.Set("Authorization", "Bearer secret")
	rr = httptest.NewRecorder()
	h.ServeHTTP(rr, req)
	if rr.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", rr.Code)
	}
}
