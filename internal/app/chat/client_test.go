package chat

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/gorilla/websocket"

	"backbench/internal/configs"
)

func newWSServer(t *testing.T, m *Manager) string {
	t.Helper()
	upgrader := websocket.Upgrader{}

	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		conn, err := upgrader.Upgrade(w, r, nil)
		if err != nil {
			return
		}
		c := NewClient(m, conn)
		if err := m.Connect(c); err != nil {
			conn.Close()
			return
		}
		go c.WritePump()
		c.ReadPump()
	}))
	t.Cleanup(srv.Close)

	return "ws" + strings.TrimPrefix(srv.URL, "http")
}

func dial(t *testing.T, url string) *websocket.Conn {
	t.Helper()
	conn, _, err := websocket.DefaultDialer.Dial(url, nil)
	if err != nil {
		t.Fatalf("dial: %v", err)
	}
	t.Cleanup(func() { conn.Close() })
	return conn
}

func writeFrame(t *testing.T, conn *websocket.Conn, event string, data any) {
	t.Helper()
	b, err := EncodeFrame(event, data)
	if err != nil {
		t.Fatal(err)
	}
	if err := conn.WriteMessage(websocket.TextMessage, b); err != nil {
		t.Fatalf("write: %v", err)
	}
}

func readFrame(t *testing.T, conn *websocket.Conn) Frame {
	t.Helper()
	if err := conn.SetReadDeadline(time.Now().Add(waitTimeout)); err != nil {
		t.Fatal(err)
	}
	_, b, err := conn.ReadMessage()
	if err != nil {
		t.Fatalf("read: %v", err)
	}
	f, err := DecodeFrame(b)
	if err != nil {
		t.Fatalf("decode %s: %v", b, err)
	}
	return f
}

func TestClientRoundTrip(t *testing.T) {
	m := newTestManager(t, newDirectory(t, "alice"), time.Second)
	url := newWSServer(t, m)

	alice := dial(t, url)
	writeFrame(t, alice, EventAuthenticate, "alice@x.com")

	var online []string
	expectEvent(t, readFrame(t, alice), EventUserConnected, &online)
	if len(online) != 1 || online[0] != "alice" {
		t.Fatalf("online = %v", online)
	}

	writeFrame(t, alice, EventChatMessage, "hello")
	var msg ChatMessage
	expectEvent(t, readFrame(t, alice), EventChatMessage, &msg)
	if msg.Username != "alice" || msg.Message != "hello" {
		t.Fatalf("msg = %+v", msg)
	}
}

func TestClientRejectedConnectionIsClosed(t *testing.T) {
	m := newTestManager(t, newDirectory(t), time.Second)
	url := newWSServer(t, m)

	ghost := dial(t, url)
	writeFrame(t, ghost, EventAuthenticate, "ghost@x.com")

	var text string
	expectEvent(t, readFrame(t, ghost), EventAuthFailed, &text)
	if text != "User not found in the database." {
		t.Fatalf("text = %q", text)
	}

	_ = ghost.SetReadDeadline(time.Now().Add(waitTimeout))
	_, _, err := ghost.ReadMessage()
	if !websocket.IsCloseError(err, websocket.CloseNormalClosure) {
		t.Fatalf("expected normal close, got %v", err)
	}
}

func TestClientDisconnectUpdatesOthers(t *testing.T) {
	m := newTestManager(t, newDirectory(t, "alice", "bob"), time.Second)
	url := newWSServer(t, m)

	alice := dial(t, url)
	bob := dial(t, url)

	writeFrame(t, alice, EventAuthenticate, "alice@x.com")
	readFrame(t, alice)
	readFrame(t, bob)

	writeFrame(t, bob, EventAuthenticate, "bob@x.com")
	readFrame(t, alice)
	readFrame(t, bob)

	alice.Close()

	var online []string
	expectEvent(t, readFrame(t, bob), EventUserConnected, &online)
	if len(online) != 1 || online[0] != "bob" {
		t.Fatalf("online = %v", online)
	}
}

func TestClientInvalidFrame(t *testing.T) {
	m := newTestManager(t, newDirectory(t), time.Second)
	url := newWSServer(t, m)

	conn := dial(t, url)
	if err := conn.WriteMessage(websocket.TextMessage, []byte("not json")); err != nil {
		t.Fatal(err)
	}

	var payload ErrorPayload
	expectEvent(t, readFrame(t, conn), EventMessageError, &payload)
	if payload.Code != 1003 {
		t.Fatalf("code = %d, want 1003", payload.Code)
	}
}

func TestClientInboundRateLimit(t *testing.T) {
	m := newTestManager(t, newDirectory(t), time.Second)
	url := newWSServer(t, m)

	conn := dial(t, url)
	for range inboundBurst + 5 {
		writeFrame(t, conn, EventChatMessage, "spam")
	}

	limited := false
	for range inboundBurst + 5 {
		f := readFrame(t, conn)
		if f.Event != EventMessageError {
			continue
		}
		var payload ErrorPayload
		if err := json.Unmarshal(f.Data, &payload); err != nil {
			t.Fatal(err)
		}
		if payload.Code == 1007 {
			limited = true
			break
		}
	}
	if !limited {
		t.Fatal("expected a rate limit error")
	}
}

func TestNewClientAssignsUniqueIDs(t *testing.T) {
	m := NewManager(&configs.AppConfig{AuthTimeout: time.Second}, newDirectory(t))
	defer m.Shutdown()

	a, b := NewClient(m, nil), NewClient(m, nil)
	if a.ID() == "" || a.ID() == b.ID() {
		t.Fatalf("ids %q and %q", a.ID(), b.ID())
	}

	a.Close()
	a.Close()
	if err := a.Send([]byte("x")); err != ErrPeerClosed {
		t.Fatalf("Send after Close err = %v", err)
	}
}
