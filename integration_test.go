package main

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/gorilla/websocket"
)

// ---------- helpers ----------

// startTestHost spins up an httptest.Server serving a host endpoint
func startTestHost(t *testing.T, password string) (*httptest.Server, *HostEndpoint) {
	t.Helper()

	auth, err := NewJoinAuth(nil, "sess-test", password, testSecret)
	if err != nil {
		t.Fatal(err)
	}
	link := NewPeerLink(true)
	clk := &testClock{ms: 10000}
	h := &HostEndpoint{
		SessionID: "sess-test",
		Game:      newTestGame(PeerHost, link, clk, nil),
		Link:      link,
		Auth:      auth,
	}
	srv := httptest.NewServer(SetupRoutes(h))
	h.PublicURL = srv.URL
	t.Cleanup(srv.Close)
	return srv, h
}

func wsURL(srv *httptest.Server, ticket string) string {
	u := "ws" + strings.TrimPrefix(srv.URL, "http") + "/ws"
	if ticket != "" {
		u += "?ticket=" + ticket
	}
	return u
}

func issue(t *testing.T, h *HostEndpoint) string {
	t.Helper()
	ticket, err := h.Auth.IssueTicket()
	if err != nil {
		t.Fatal(err)
	}
	return ticket
}

// dialWS opens a WebSocket connection to the test server
func dialWS(t *testing.T, url string, header http.Header) *websocket.Conn {
	t.Helper()
	conn, _, err := websocket.DefaultDialer.Dial(url, header)
	if err != nil {
		t.Fatalf("dial WS: %v", err)
	}
	t.Cleanup(func() { conn.Close() })
	return conn
}

// readEnvelope reads one JSON text message from the WebSocket
func readEnvelope(t *testing.T, conn *websocket.Conn) InEnvelope {
	t.Helper()
	conn.SetReadDeadline(time.Now().Add(2 * time.Second))
	for {
		msgType, raw, err := conn.ReadMessage()
		if err != nil {
			t.Fatalf("read WS: %v", err)
		}
		if msgType != websocket.TextMessage {
			continue
		}
		var env InEnvelope
		if err := json.Unmarshal(raw, &env); err != nil {
			t.Fatalf("unmarshal: %v", err)
		}
		return env
	}
}

// waitFor polls cond until it holds or the deadline passes
func waitFor(t *testing.T, what string, cond func() bool) {
	t.Helper()
	deadline := time.Now().Add(2 * time.Second)
	for time.Now().Before(deadline) {
		if cond() {
			return
		}
		time.Sleep(10 * time.Millisecond)
	}
	t.Fatalf("timed out waiting for %s", what)
}

func dialStatus(t *testing.T, url string, header http.Header) int {
	t.Helper()
	conn, resp, err := websocket.DefaultDialer.Dial(url, header)
	if err == nil {
		conn.Close()
		t.Fatal("expected the handshake to be refused")
	}
	if resp == nil {
		t.Fatalf("no HTTP response: %v", err)
	}
	return resp.StatusCode
}

// ---------- HTTP routes ----------

func TestHealthEndpoint(t *testing.T) {
	srv, _ := startTestHost(t, "")

	resp, err := http.Get(srv.URL + "/health")
	if err != nil {
		t.Fatal(err)
	}
	defer resp.Body.Close()

	var body struct {
		Status  string `json:"status"`
		Session string `json:"session"`
		Partner bool   `json:"partner"`
		Level   int    `json:"level"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&body); err != nil {
		t.Fatal(err)
	}
	if body.Status != "ok" || body.Session != "sess-test" || body.Partner || body.Level != 1 {
		t.Errorf("unexpected health %+v", body)
	}
}

func TestJoinQRCode(t *testing.T) {
	srv, _ := startTestHost(t, "")

	resp, err := http.Get(srv.URL + "/join.png")
	if err != nil {
		t.Fatal(err)
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK || resp.Header.Get("Content-Type") != "image/png" {
		t.Fatalf("expected a png, got %d %s", resp.StatusCode, resp.Header.Get("Content-Type"))
	}
	var buf bytes.Buffer
	buf.ReadFrom(resp.Body)
	if !bytes.HasPrefix(buf.Bytes(), []byte("\x89PNG")) {
		t.Error("body is not a png")
	}
}

func TestJoinURLCarriesTicket(t *testing.T) {
	srv, h := startTestHost(t, "")
	u, err := h.JoinURL()
	if err != nil {
		t.Fatal(err)
	}
	if !strings.HasPrefix(u, "ws"+strings.TrimPrefix(srv.URL, "http")+"/ws?ticket=") {
		t.Errorf("unexpected join url %q", u)
	}
}

// ---------- join gate ----------

func TestWSRequiresTicket(t *testing.T) {
	srv, _ := startTestHost(t, "")
	if code := dialStatus(t, wsURL(srv, ""), nil); code != http.StatusUnauthorized {
		t.Errorf("expected 401, got %d", code)
	}
	if code := dialStatus(t, wsURL(srv, "garbage"), nil); code != http.StatusUnauthorized {
		t.Errorf("expected 401 for a bad ticket, got %d", code)
	}
}

func TestWSRoomPassword(t *testing.T) {
	srv, h := startTestHost(t, "secret")
	ticket := issue(t, h)

	bad := http.Header{}
	bad.Set(PasswordHeader, "wrong")
	if code := dialStatus(t, wsURL(srv, ticket), bad); code != http.StatusForbidden {
		t.Errorf("expected 403, got %d", code)
	}

	good := http.Header{}
	good.Set(PasswordHeader, "secret")
	conn := dialWS(t, wsURL(srv, ticket), good)
	if env := readEnvelope(t, conn); env.T != MsgWelcome {
		t.Errorf("expected welcome, got %q", env.T)
	}
}

func TestWelcomeAndSinglePartner(t *testing.T) {
	srv, h := startTestHost(t, "")
	ticket := issue(t, h)

	conn := dialWS(t, wsURL(srv, ticket), nil)
	env := readEnvelope(t, conn)
	if env.T != MsgWelcome {
		t.Fatalf("expected welcome, got %q", env.T)
	}
	var msg WelcomeMsg
	if err := json.Unmarshal(env.D, &msg); err != nil {
		t.Fatal(err)
	}
	if msg.Session != "sess-test" || msg.Level != 1 {
		t.Errorf("unexpected welcome %+v", msg)
	}
	if !h.Link.IsConnected() {
		t.Fatal("link should be up after the welcome")
	}

	if code := dialStatus(t, wsURL(srv, ticket), nil); code != http.StatusConflict {
		t.Errorf("second partner should get 409, got %d", code)
	}

	// Partner drops, the seat frees up and the host plays on solo
	conn.Close()
	waitFor(t, "link to drop", func() bool { return !h.Link.IsConnected() })
	h.Game.Advance(TickDuration)
	if h.Game.Role() != SoloRole {
		t.Errorf("host should degrade to solo, got %s", h.Game.Role().Name())
	}
	conn2 := dialWS(t, wsURL(srv, ticket), nil)
	if env := readEnvelope(t, conn2); env.T != MsgWelcome {
		t.Errorf("rejoin should be welcomed, got %q", env.T)
	}
}

// ---------- protocol over the wire ----------

func TestPlayerDamageOverWire(t *testing.T) {
	srv, h := startTestHost(t, "")
	conn := dialWS(t, wsURL(srv, issue(t, h)), nil)
	readEnvelope(t, conn)

	ev := Envelope{T: MsgEvent, E: EvPlayerDamage, Data: PlayerDamagePayload{ID: "d1", Target: PeerHost, Amount: 1}}
	// Sent twice, applied once
	for i := 0; i < 2; i++ {
		if err := conn.WriteJSON(ev); err != nil {
			t.Fatal(err)
		}
	}
	waitFor(t, "damage to land", func() bool { return h.Game.HUD().Health == AvatarMaxHealth-1 })
	time.Sleep(50 * time.Millisecond)
	if hp := h.Game.HUD().Health; hp != AvatarMaxHealth-1 {
		t.Errorf("duplicate event applied, health %d", hp)
	}
}

func TestHostSnapshotReachesClient(t *testing.T) {
	srv, h := startTestHost(t, "")

	client := newTestGame(PeerClient, nil, &testClock{}, nil)
	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
	defer cancel()
	peer, err := DialHost(ctx, srv.URL, issue(t, h), "")
	if err != nil {
		t.Fatal(err)
	}
	peer.SetReceiver(client)
	peer.Start()
	t.Cleanup(peer.Close)

	waitFor(t, "host link", h.Link.IsConnected)
	h.Game.mu.Lock()
	h.Game.world.Local.X = 7
	h.Game.mu.Unlock()
	// One second of host time covers several snapshot ticks
	h.Game.Advance(time.Second)

	waitFor(t, "snapshot", func() bool {
		client.mu.Lock()
		defer client.mu.Unlock()
		return client.world.Remote.Present && client.world.Remote.X == 7
	})
}

func TestDialHostRefused(t *testing.T) {
	srv, _ := startTestHost(t, "")
	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
	defer cancel()
	_, err := DialHost(ctx, srv.URL, "", "")
	if err == nil || !errors.Is(err, websocket.ErrBadHandshake) {
		t.Errorf("expected a refused handshake, got %v", err)
	}
}

func pushState(t *testing.T, conn *websocket.Conn, s PlayerState) {
	t.Helper()
	raw, err := encodeFrame(FramePlayerState, s)
	if err != nil {
		t.Fatal(err)
	}
	if err := conn.WriteMessage(websocket.BinaryMessage, raw); err != nil {
		t.Fatal(err)
	}
}

func remoteX(g *Game) float64 {
	g.mu.Lock()
	defer g.mu.Unlock()
	return g.world.Remote.X
}

func TestRejoinedClientRestartsTicks(t *testing.T) {
	srv, h := startTestHost(t, "")
	ticket := issue(t, h)

	first := dialWS(t, wsURL(srv, ticket), nil)
	readEnvelope(t, first)
	pushState(t, first, PlayerState{X: 5, Z: 5, HP: 3, Tick: 900, Level: 1})
	waitFor(t, "first push", func() bool { return remoteX(h.Game) == 5 })

	first.Close()
	waitFor(t, "link to drop", func() bool { return !h.Link.IsConnected() })

	// A restarted client counts ticks from 1 again
	second := dialWS(t, wsURL(srv, ticket), nil)
	readEnvelope(t, second)
	pushState(t, second, PlayerState{X: -20, Z: 5, HP: 3, Tick: 1, Level: 1})
	waitFor(t, "rejoined push", func() bool { return remoteX(h.Game) == -20 })
}
