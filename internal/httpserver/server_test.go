package httpserver

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/tinytelemetry/homeroom/internal/cache"
	"github.com/tinytelemetry/homeroom/internal/tui"

	"github.com/gin-gonic/gin"
)

func init() {
	gin.SetMode(gin.TestMode)
}

type fakeDashboard struct {
	snap     tui.Snapshot
	selected []int
}

func (d *fakeDashboard) Snapshot() tui.Snapshot { return d.snap }
func (d *fakeDashboard) Select(i int)           { d.selected = append(d.selected, i) }

type fakeStats []cache.Stats

func (f fakeStats) Stats() []cache.Stats { return f }

var testNow = time.Date(2026, 10, 16, 9, 0, 0, 0, time.UTC)

func newTestServer(t *testing.T, stats fakeStats) (*fakeDashboard, http.Handler) {
	t.Helper()
	dash := &fakeDashboard{snap: tui.Snapshot{
		Screens: []tui.ScreenInfo{
			{Index: 0, ID: "clock", Title: "Clock"},
			{Index: 1, ID: "items", Title: "Items"},
		},
		Active: 1,
		State:  tui.Running,
	}}
	srv := NewServer("", dash, stats, nil)
	srv.now = func() time.Time { return testNow }
	srv.startTime = testNow.Add(-90 * time.Second)
	return dash, srv.Handler()
}

func do(t *testing.T, h http.Handler, method, path string) (*httptest.ResponseRecorder, map[string]any) {
	t.Helper()
	req := httptest.NewRequest(method, path, nil)
	w := httptest.NewRecorder()
	h.ServeHTTP(w, req)

	var body map[string]any
	if w.Body.Len() > 0 {
		if err := json.Unmarshal(w.Body.Bytes(), &body); err != nil {
			t.Fatalf("unmarshal %s %s: %v", method, path, err)
		}
	}
	return w, body
}

func TestHealthEndpoint(t *testing.T) {
	_, h := newTestServer(t, nil)

	w, body := do(t, h, http.MethodGet, "/api/health")
	if w.Code != http.StatusOK {
		t.Fatalf("health status = %d, want %d", w.Code, http.StatusOK)
	}
	if body["status"] != "ok" || body["active"] != "items" || body["state"] != "running" {
		t.Errorf("health body = %v", body)
	}
	if body["uptime"] != "1m30s" {
		t.Errorf("uptime = %v, want 1m30s", body["uptime"])
	}
}

func TestHealthEndpoint_WrongMethod(t *testing.T) {
	_, h := newTestServer(t, nil)

	w, _ := do(t, h, http.MethodDelete, "/api/health")
	if w.Code != http.StatusMethodNotAllowed && w.Code != http.StatusNotFound {
		t.Errorf("health DELETE status = %d, want 405 or 404", w.Code)
	}
}

func TestScreensEndpoint(t *testing.T) {
	_, h := newTestServer(t, nil)

	w, body := do(t, h, http.MethodGet, "/api/screens")
	if w.Code != http.StatusOK {
		t.Fatalf("screens status = %d", w.Code)
	}
	screens, ok := body["screens"].([]any)
	if !ok || len(screens) != 2 {
		t.Fatalf("screens = %v", body["screens"])
	}
	if first := screens[0].(map[string]any); first["id"] != "clock" {
		t.Errorf("first screen = %v", first)
	}
	if body["active"] != float64(1) {
		t.Errorf("active = %v, want 1", body["active"])
	}
}

func TestSelectEndpoint(t *testing.T) {
	dash, h := newTestServer(t, nil)

	w, body := do(t, h, http.MethodPost, "/api/screens/0")
	if w.Code != http.StatusAccepted {
		t.Fatalf("select status = %d, body %v", w.Code, body)
	}
	if len(dash.selected) != 1 || dash.selected[0] != 0 {
		t.Fatalf("selected = %v, want [0]", dash.selected)
	}

	for _, path := range []string{"/api/screens/2", "/api/screens/-1", "/api/screens/two"} {
		w, body := do(t, h, http.MethodPost, path)
		if w.Code != http.StatusBadRequest {
			t.Errorf("POST %s status = %d, want 400", path, w.Code)
		}
		if _, ok := body["error"]; !ok {
			t.Errorf("POST %s: missing error field", path)
		}
	}
	if len(dash.selected) != 1 {
		t.Fatalf("invalid selects were forwarded: %v", dash.selected)
	}
}

func TestSelectEndpoint_ShuttingDown(t *testing.T) {
	dash, h := newTestServer(t, nil)
	dash.snap.State = tui.Terminating

	w, _ := do(t, h, http.MethodPost, "/api/screens/0")
	if w.Code != http.StatusServiceUnavailable || len(dash.selected) != 0 {
		t.Fatalf("status = %d, selected = %v", w.Code, dash.selected)
	}
}

func TestCacheEndpoint(t *testing.T) {
	_, h := newTestServer(t, fakeStats{
		{Key: "homework", Fetches: 3, Failures: 3, Consecutive: 3, LastError: "notion: 502", RetryAt: testNow.Add(20 * time.Second)},
		{Key: "supplies", HasValue: true, FetchedAt: testNow.Add(-2 * time.Minute), Fetches: 1, LastLatency: 250 * time.Millisecond},
	})

	w, body := do(t, h, http.MethodGet, "/api/cache")
	if w.Code != http.StatusOK {
		t.Fatalf("cache status = %d", w.Code)
	}
	keys := body["keys"].([]any)
	if len(keys) != 2 {
		t.Fatalf("keys = %v", keys)
	}

	hw := keys[0].(map[string]any)
	if hw["last_error"] != "notion: 502" || hw["consecutive_failures"] != float64(3) {
		t.Errorf("homework = %v", hw)
	}
	if _, ok := hw["retry_at"]; !ok {
		t.Error("pending retry not reported")
	}
	if _, ok := hw["fetched_at"]; ok {
		t.Error("fetched_at reported for a key with no value")
	}

	sup := keys[1].(map[string]any)
	if sup["age"] != "2 minutes ago" || sup["last_latency_ms"] != float64(250) {
		t.Errorf("supplies = %v", sup)
	}
}
