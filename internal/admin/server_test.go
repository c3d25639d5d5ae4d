package admin

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/evilmidget38/KittehIRCBot/internal/irc"
	"github.com/evilmidget38/KittehIRCBot/internal/observability"
	"github.com/evilmidget38/KittehIRCBot/internal/testutil/testlog"
)

func newTestServer() *Server {
	return New(Config{
		Name: "kitteh",
		Addr: ":0",
		Status: func() irc.BotStatus {
			return irc.BotStatus{
				Connected:    true,
				HighQueued:   1,
				LowQueued:    4,
				MessageDelay: "1.2s",
			}
		},
	})
}

func TestHealthRoute(t *testing.T) {
	testlog.Start(t)
	s := newTestServer()

	req := httptest.NewRequest(http.MethodGet, "/health", nil)
	rr := httptest.NewRecorder()
	s.Handler().ServeHTTP(rr, req)

	if rr.Code != http.StatusOK {
		t.Fatalf("expected status 200, got %d body=%s", rr.Code, rr.Body.String())
	}
	var body map[string]any
	if err := json.Unmarshal(rr.Body.Bytes(), &body); err != nil {
		t.Fatalf("decode body: %v", err)
	}
	if body["status"] != "ok" || body["service"] != "kitteh" {
		t.Fatalf("unexpected response body: %#v", body)
	}
}

func TestStatusRouteReportsSnapshot(t *testing.T) {
	testlog.Start(t)
	s := newTestServer()

	req := httptest.NewRequest(http.MethodGet, "/status", nil)
	rr := httptest.NewRecorder()
	s.Handler().ServeHTTP(rr, req)

	if rr.Code != http.StatusOK {
		t.Fatalf("expected status 200, got %d body=%s", rr.Code, rr.Body.String())
	}
	var status irc.BotStatus
	if err := json.Unmarshal(rr.Body.Bytes(), &status); err != nil {
		t.Fatalf("decode body: %v", err)
	}
	if !status.Connected || status.HighQueued != 1 || status.LowQueued != 4 {
		t.Fatalf("unexpected status snapshot: %+v", status)
	}
	if status.MessageDelay != "1.2s" {
		t.Fatalf("unexpected delay: %q", status.MessageDelay)
	}
}

func TestStatusRouteWithoutSupplier(t *testing.T) {
	testlog.Start(t)
	s := New(Config{Name: "kitteh", Addr: ":0"})

	req := httptest.NewRequest(http.MethodGet, "/status", nil)
	rr := httptest.NewRecorder()
	s.Handler().ServeHTTP(rr, req)

	if rr.Code != http.StatusServiceUnavailable {
		t.Fatalf("expected status 503, got %d", rr.Code)
	}
}

func TestMetricsRouteExposesDispatchCounters(t *testing.T) {
	testlog.Start(t)
	s := newTestServer()
	observability.RecordLineSent("kitteh", "high")

	req := httptest.NewRequest(http.MethodGet, "/metrics", nil)
	rr := httptest.NewRecorder()
	s.Handler().ServeHTTP(rr, req)

	if rr.Code != http.StatusOK {
		t.Fatalf("expected status 200, got %d", rr.Code)
	}
	if !strings.Contains(rr.Body.String(), "kittehbot_output_lines_total") {
		t.Fatalf("metrics output missing dispatch counter")
	}
}
