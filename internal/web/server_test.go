package web

import (
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/sweeney/pedal-relay/internal/logic"
	"github.com/sweeney/pedal-relay/internal/status"
)

func newTestServer(t *testing.T) (*httptest.Server, *status.Tracker) {
	t.Helper()
	start := time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC)
	cfg := status.Config{
		TickMs:         1,
		MomentaryDelay: 400,
		LatchingTime:   3,
		HeartbeatMs:    900000,
		Broker:         "tcp://192.168.1.200:1883",
		HTTPPort:       ":80",
	}
	tr := status.NewTracker(start, cfg)
	srv := New(":0", tr)
	ts := httptest.NewServer(srv.httpServer.Handler)
	t.Cleanup(ts.Close)
	return ts, tr
}

func TestJSONEndpoint(t *testing.T) {
	ts, tr := newTestServer(t)
	tr.Update(logic.StateOn, logic.ModeLatched, false, false, 5000, logic.EventCounts{PedalOn: 5, PedalOff: 4})
	tr.SetMQTTConnected(true)

	resp, err := http.Get(ts.URL + "/index.json")
	if err != nil {
		t.Fatalf("GET /index.json: %v", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != 200 {
		t.Errorf("status: got %d, want 200", resp.StatusCode)
	}
	if ct := resp.Header.Get("Content-Type"); ct != "application/json" {
		t.Errorf("Content-Type: got %q, want application/json", ct)
	}

	var sj StatusJSON
	if err := json.NewDecoder(resp.Body).Decode(&sj); err != nil {
		t.Fatalf("decode JSON: %v", err)
	}

	if sj.Status.Pedal != "ON" {
		t.Errorf("pedal: got %q, want ON", sj.Status.Pedal)
	}
	if sj.Status.Mode != "LATCHED" {
		t.Errorf("mode: got %q, want LATCHED", sj.Status.Mode)
	}
	if !sj.Status.MQTT.Connected {
		t.Error("expected MQTT connected")
	}
	if sj.Status.Counts.PedalOn != 5 || sj.Status.Counts.PedalOff != 4 {
		t.Errorf("counts: got %+v", sj.Status.Counts)
	}
}

func TestIndexPage(t *testing.T) {
	ts, tr := newTestServer(t)
	tr.Update(logic.StateOn, logic.ModeMomentary, true, false, 450, logic.EventCounts{PedalOn: 1, MomentaryHolds: 1})

	resp, err := http.Get(ts.URL + "/")
	if err != nil {
		t.Fatalf("GET /: %v", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != 200 {
		t.Errorf("status: got %d, want 200", resp.StatusCode)
	}
	if ct := resp.Header.Get("Content-Type"); !strings.HasPrefix(ct, "text/html") {
		t.Errorf("Content-Type: got %q, want text/html", ct)
	}

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		t.Fatalf("read body: %v", err)
	}
	html := string(body)

	for _, want := range []string{"Pedal Relay", "MOMENTARY", "pressed", "tcp://192.168.1.200:1883"} {
		if !strings.Contains(html, want) {
			t.Errorf("page missing %q", want)
		}
	}
	// No websocket broker configured: the live script must be absent.
	if strings.Contains(html, "mqtt.connect") {
		t.Error("live script rendered without ws broker config")
	}
}

func TestIndexPageLiveScript(t *testing.T) {
	start := time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC)
	tr := status.NewTracker(start, status.Config{WSBroker: "ws://192.168.1.200:9001"})
	srv := New(":0", tr)
	ts := httptest.NewServer(srv.httpServer.Handler)
	t.Cleanup(ts.Close)

	resp, err := http.Get(ts.URL + "/")
	if err != nil {
		t.Fatalf("GET /: %v", err)
	}
	defer resp.Body.Close()

	body, _ := io.ReadAll(resp.Body)
	if !strings.Contains(string(body), "ws://192.168.1.200:9001") {
		t.Error("live script missing ws broker URL")
	}
}

func TestNotFound(t *testing.T) {
	ts, _ := newTestServer(t)

	resp, err := http.Get(ts.URL + "/nope")
	if err != nil {
		t.Fatalf("GET /nope: %v", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != 404 {
		t.Errorf("status: got %d, want 404", resp.StatusCode)
	}
}
