package web

import (
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/sweeney/stabilizer/internal/logic"
	"github.com/sweeney/stabilizer/internal/status"
	"github.com/zoobzio/clockz"
)

func newTestServer(t *testing.T) (*httptest.Server, *status.Tracker) {
	t.Helper()
	cfg := status.Config{
		PollMs:      100,
		DebounceMs:  250,
		HeartbeatMs: 900000,
		Broker:      "tcp://192.168.1.200:1883",
		Topic:       "sensors/stabilizer",
		HTTPAddr:    ":80",
		Chip:        "gpiochip0",
		Channels:    "ch=26,hw=16",
	}
	tr := status.NewTracker(clockz.NewFakeClock(), cfg)
	srv := New(":0", tr)
	ts := httptest.NewServer(srv.Handler())
	t.Cleanup(ts.Close)
	return ts, tr
}

func getStatus(t *testing.T, url string) status.StatusJSON {
	t.Helper()
	resp, err := http.Get(url + "/index.json")
	if err != nil {
		t.Fatalf("GET /index.json: %v", err)
	}
	defer resp.Body.Close()

	var sj status.StatusJSON
	if err := json.NewDecoder(resp.Body).Decode(&sj); err != nil {
		t.Fatalf("decode JSON: %v", err)
	}
	return sj
}

func twoChannels(ch, hw logic.State) []logic.ChannelState {
	return []logic.ChannelState{{Name: "ch", State: ch}, {Name: "hw", State: hw}}
}

func TestJSONEndpoint(t *testing.T) {
	ts, tr := newTestServer(t)
	tr.Update(twoChannels(logic.StateOn, logic.StateOff), true, logic.EventCounts{"ch": {On: 5, Off: 2}})
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

	var sj status.StatusJSON
	if err := json.NewDecoder(resp.Body).Decode(&sj); err != nil {
		t.Fatalf("decode JSON: %v", err)
	}

	if sj.Status.Channels["ch"] != "ON" {
		t.Errorf("ch: got %q, want ON", sj.Status.Channels["ch"])
	}
	if sj.Status.Channels["hw"] != "OFF" {
		t.Errorf("hw: got %q, want OFF", sj.Status.Channels["hw"])
	}
	if !sj.Status.Ready {
		t.Error("expected Ready=true")
	}
	if !sj.Status.MQTT.Connected {
		t.Error("expected MQTT.Connected=true")
	}
	if sj.Status.MQTT.Broker != "tcp://192.168.1.200:1883" {
		t.Errorf("MQTT.Broker: got %q, want tcp://192.168.1.200:1883", sj.Status.MQTT.Broker)
	}
	if sj.Status.Counts["ch"].On != 5 {
		t.Errorf("ch on count: got %d, want 5", sj.Status.Counts["ch"].On)
	}
	if sj.Status.Counts["ch"].Off != 2 {
		t.Errorf("ch off count: got %d, want 2", sj.Status.Counts["ch"].Off)
	}
	if sj.Status.Config.PollMs != 100 {
		t.Errorf("Config.PollMs: got %d, want 100", sj.Status.Config.PollMs)
	}
	if sj.Status.Config.Chip != "gpiochip0" {
		t.Errorf("Config.Chip: got %q", sj.Status.Config.Chip)
	}
}

func TestJSONUnknownStateBeforeBaseline(t *testing.T) {
	ts, tr := newTestServer(t)
	tr.Update(twoChannels("", ""), false, nil)

	sj := getStatus(t, ts.URL)

	if sj.Status.Channels["ch"] != "UNKNOWN" {
		t.Errorf("ch before baseline: got %q, want UNKNOWN", sj.Status.Channels["ch"])
	}
	if sj.Status.Channels["hw"] != "UNKNOWN" {
		t.Errorf("hw before baseline: got %q, want UNKNOWN", sj.Status.Channels["hw"])
	}
	if sj.Status.Ready {
		t.Error("expected Ready=false before baseline")
	}
}

func TestHTMLEndpointRoot(t *testing.T) {
	ts, tr := newTestServer(t)
	tr.Update(twoChannels(logic.StateOn, ""), false, logic.EventCounts{"ch": {On: 7}})
	tr.AddReadError()

	resp, err := http.Get(ts.URL + "/")
	if err != nil {
		t.Fatalf("GET /: %v", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != 200 {
		t.Errorf("status: got %d, want 200", resp.StatusCode)
	}
	ct := resp.Header.Get("Content-Type")
	if !strings.HasPrefix(ct, "text/html") {
		t.Errorf("Content-Type: got %q, want text/html", ct)
	}

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		t.Fatalf("read body: %v", err)
	}
	page := string(body)
	for _, want := range []string{
		`id="ch-state" class="on">ON<`,
		`id="hw-state" class="unknown">UNKNOWN<`,
		`<th>ch ON</th><td>7</td>`,
		`<th>hw OFF</th><td>0</td>`,
		`<th>Read errors</th><td>1</td>`,
		`ch=26,hw=16`,
	} {
		if !strings.Contains(page, want) {
			t.Errorf("page missing %q", want)
		}
	}
}

func TestHTMLEndpointIndexHTML(t *testing.T) {
	ts, _ := newTestServer(t)

	resp, err := http.Get(ts.URL + "/index.html")
	if err != nil {
		t.Fatalf("GET /index.html: %v", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != 200 {
		t.Errorf("status: got %d, want 200", resp.StatusCode)
	}
}

func TestNotFoundForUnknownPath(t *testing.T) {
	ts, _ := newTestServer(t)

	resp, err := http.Get(ts.URL + "/nonexistent")
	if err != nil {
		t.Fatalf("GET /nonexistent: %v", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != 404 {
		t.Errorf("status: got %d, want 404", resp.StatusCode)
	}
}

func TestStateChangesReflectedInResponse(t *testing.T) {
	ts, tr := newTestServer(t)

	// Initially not baselined
	if getStatus(t, ts.URL).Status.Ready {
		t.Error("expected Ready=false initially")
	}

	tr.Update(twoChannels(logic.StateOff, logic.StateOn), true, logic.EventCounts{"hw": {On: 1}})
	tr.SetMQTTConnected(true)

	sj := getStatus(t, ts.URL)
	if !sj.Status.Ready {
		t.Error("expected Ready=true after update")
	}
	if sj.Status.Channels["hw"] != "ON" {
		t.Errorf("hw: got %q, want ON", sj.Status.Channels["hw"])
	}
	if !sj.Status.MQTT.Connected {
		t.Error("expected MQTT connected after update")
	}
}

func TestFormatUptime(t *testing.T) {
	tests := []struct {
		d    time.Duration
		want string
	}{
		{0, "0s"},
		{45 * time.Second, "45s"},
		{2*time.Minute + 5*time.Second, "2m 5s"},
		{3*time.Hour + 4*time.Minute, "3h 4m 0s"},
		{49*time.Hour + 1500*time.Millisecond, "2d 1h 0m 1s"},
	}
	for _, tt := range tests {
		if got := formatUptime(tt.d); got != tt.want {
			t.Errorf("formatUptime(%v) = %q, want %q", tt.d, got, tt.want)
		}
	}
}

func TestJSONEndpointRejectsPost(t *testing.T) {
	ts, _ := newTestServer(t)

	resp, err := http.Post(ts.URL+"/index.json", "application/json", strings.NewReader("{}"))
	if err != nil {
		t.Fatalf("POST /index.json: %v", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusMethodNotAllowed {
		t.Errorf("status: got %d, want 405", resp.StatusCode)
	}
}
