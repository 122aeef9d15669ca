package main

import (
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync/atomic"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/gorilla/websocket"
	"go.uber.org/zap"
)

func newTestViewer(t *testing.T) (*httptest.Server, *ViewerHub, *KeyState, *int32) {
	t.Helper()
	gin.SetMode(gin.TestMode)
	keys := &KeyState{}
	var restarts int32
	metrics := &Metrics{}
	hub := NewViewerHub(keys, func() { atomic.AddInt32(&restarts, 1) },
		WelcomeMsg{PlayerID: "me", Mode: ModeSolo, WorldWidth: 1600, WorldHeight: 1200},
		metrics, zap.NewNop().Sugar())
	srv := httptest.NewServer(NewRouter(hub, metrics, t.TempDir(), zap.NewNop().Sugar()))
	t.Cleanup(srv.Close)
	return srv, hub, keys, &restarts
}

func dialViewer(t *testing.T, srv *httptest.Server) *websocket.Conn {
	t.Helper()
	return dialViewerFrom(t, srv, "")
}

// dialViewerFrom connects a viewer that claims to come from ip.
func dialViewerFrom(t *testing.T, srv *httptest.Server, ip string) *websocket.Conn {
	t.Helper()
	header := http.Header{}
	if ip != "" {
		header.Set("X-Forwarded-For", ip)
	}
	url := "ws" + strings.TrimPrefix(srv.URL, "http") + WebSocketPath
	ws, _, err := websocket.DefaultDialer.Dial(url, header)
	if err != nil {
		t.Fatalf("dial viewer: %v", err)
	}
	return ws
}

func readType(t *testing.T, ws *websocket.Conn) map[string]any {
	t.Helper()
	_ = ws.SetReadDeadline(time.Now().Add(5 * time.Second))
	_, raw, err := ws.ReadMessage()
	if err != nil {
		t.Fatalf("read: %v", err)
	}
	var msg map[string]any
	if err := json.Unmarshal(raw, &msg); err != nil {
		t.Fatalf("decode %s: %v", raw, err)
	}
	return msg
}

func waitFor(t *testing.T, what string, cond func() bool) {
	t.Helper()
	deadline := time.Now().Add(5 * time.Second)
	for !cond() {
		if time.Now().After(deadline) {
			t.Fatalf("timed out waiting for %s", what)
		}
		time.Sleep(5 * time.Millisecond)
	}
}

func TestViewerSession(t *testing.T) {
	srv, hub, keys, restarts := newTestViewer(t)
	ws := dialViewer(t, srv)

	welcome := readType(t, ws)
	if welcome["t"] != ViewMsgWelcome || welcome["i"] != "me" || welcome["m"] != "solo" {
		t.Fatalf("unexpected welcome %v", welcome)
	}

	if err := ws.WriteJSON(ViewerMessage{Type: ViewMsgKey, Key: "d", Down: 1}); err != nil {
		t.Fatalf("write: %v", err)
	}
	waitFor(t, "key press", func() bool { return keys.Sample().Right })

	_ = ws.WriteJSON(ViewerMessage{Type: ViewMsgRestart})
	waitFor(t, "restart", func() bool { return atomic.LoadInt32(restarts) == 1 })

	hub.Render(FrameMsg{Type: ViewMsgFrame, Tick: 7, Snakes: []SnakeView{}, Food: []FoodView{}})
	frame := readType(t, ws)
	if frame["t"] != ViewMsgFrame || frame["n"] != float64(7) {
		t.Fatalf("unexpected frame %v", frame)
	}

	ws.Close()
	waitFor(t, "disconnect", func() bool { return hub.Viewers() == 0 })
	waitFor(t, "keys released", func() bool { return keys.Sample() == (InputState{}) })
}

func TestViewerLeavingKeepsOthersKeys(t *testing.T) {
	srv, hub, keys, _ := newTestViewer(t)
	first := dialViewerFrom(t, srv, "10.0.0.1")
	defer first.Close()
	readType(t, first)
	second := dialViewerFrom(t, srv, "10.0.0.2")
	readType(t, second)

	if err := first.WriteJSON(ViewerMessage{Type: ViewMsgKey, Key: "d", Down: 1}); err != nil {
		t.Fatalf("write: %v", err)
	}
	waitFor(t, "key press", func() bool { return keys.Sample().Right })

	second.Close()
	waitFor(t, "second viewer to leave", func() bool { return hub.Viewers() == 1 })
	if !keys.Sample().Right {
		t.Fatalf("expected held key to survive another viewer leaving")
	}

	first.Close()
	waitFor(t, "last viewer to leave", func() bool { return hub.Viewers() == 0 })
	waitFor(t, "keys released", func() bool { return keys.Sample() == (InputState{}) })
}

func TestViewerReconnectTooFast(t *testing.T) {
	srv, _, _, _ := newTestViewer(t)
	first := dialViewer(t, srv)
	defer first.Close()
	readType(t, first)

	second := dialViewer(t, srv)
	defer second.Close()
	msg := readType(t, second)
	if msg["t"] != ViewMsgError {
		t.Fatalf("expected error for a reconnect storm, got %v", msg)
	}
}

func TestIPRateLimiter(t *testing.T) {
	rl := newIPRateLimiter(2 * time.Second)
	now := time.Now()
	if !rl.allow("1.2.3.4", now) {
		t.Fatalf("expected first attempt allowed")
	}
	if rl.allow("1.2.3.4", now.Add(time.Second)) {
		t.Fatalf("expected second attempt inside cooldown denied")
	}
	if !rl.allow("5.6.7.8", now.Add(time.Second)) {
		t.Fatalf("expected other ip allowed")
	}
	if !rl.allow("1.2.3.4", now.Add(3*time.Second)) {
		t.Fatalf("expected attempt after cooldown allowed")
	}
}

func TestStatusEndpoints(t *testing.T) {
	srv, _, _, _ := newTestViewer(t)

	resp, err := http.Get(srv.URL + "/healthz")
	if err != nil {
		t.Fatalf("healthz: %v", err)
	}
	body, _ := io.ReadAll(resp.Body)
	resp.Body.Close()
	if resp.StatusCode != http.StatusOK || string(body) != "ok" {
		t.Fatalf("unexpected healthz %d %q", resp.StatusCode, body)
	}

	resp, err = http.Get(srv.URL + "/metrics")
	if err != nil {
		t.Fatalf("metrics: %v", err)
	}
	defer resp.Body.Close()
	var out struct {
		Viewers int            `json:"viewers"`
		Metrics map[string]any `json:"metrics"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&out); err != nil {
		t.Fatalf("decode metrics: %v", err)
	}
	if _, ok := out.Metrics["avg_tick_ms"]; !ok {
		t.Fatalf("expected avg_tick_ms in %v", out.Metrics)
	}
}

func TestViewerSetCap(t *testing.T) {
	set := NewViewerSet(2)
	if !set.Join(&Conn{ID: "a"}) || !set.Join(&Conn{ID: "b"}) {
		t.Fatalf("expected two viewers admitted")
	}
	if set.Join(&Conn{ID: "c"}) {
		t.Fatalf("expected third viewer refused")
	}
	set.Leave("a")
	if !set.Join(&Conn{ID: "c"}) || set.Len() != 2 {
		t.Fatalf("expected a free slot after leave, len %d", set.Len())
	}
}
