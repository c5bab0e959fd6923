package comm

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/gorilla/websocket"
	"go.uber.org/zap"
)

// newWSPair dials a loopback websocket and returns the server-side wrapper
// together with the raw client end.
func newWSPair(t *testing.T) (*WSConn, *websocket.Conn) {
	t.Helper()

	upgrader := websocket.Upgrader{}
	ready := make(chan *WSConn, 1)
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		ws, err := upgrader.Upgrade(w, r, nil)
		if err != nil {
			return
		}
		ready <- NewWSConn(ws, zap.NewNop())
	}))
	t.Cleanup(srv.Close)

	url := "ws" + strings.TrimPrefix(srv.URL, "http")
	client, _, err := websocket.DefaultDialer.Dial(url, nil)
	if err != nil {
		t.Fatalf("dial: %v", err)
	}
	t.Cleanup(func() { client.Close() })

	select {
	case conn := <-ready:
		t.Cleanup(func() { conn.Close() })
		return conn, client
	case <-time.After(time.Second):
		t.Fatal("server side never upgraded")
		return nil, nil
	}
}

func TestWSConnSendDelivers(t *testing.T) {
	conn, client := newWSPair(t)

	if err := conn.Send(map[string]interface{}{"a": []int{1}}); err != nil {
		t.Fatalf("send: %v", err)
	}

	client.SetReadDeadline(time.Now().Add(time.Second))
	_, raw, err := client.ReadMessage()
	if err != nil {
		t.Fatalf("read: %v", err)
	}

	var msg map[string]interface{}
	if err := json.Unmarshal(raw, &msg); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if _, ok := msg["a"]; !ok {
		t.Fatalf("expected the action list on the wire, got %v", msg)
	}
}

func TestWSConnCloseStopsSends(t *testing.T) {
	conn, _ := newWSPair(t)

	if err := conn.Close(); err != nil {
		t.Fatalf("close: %v", err)
	}
	if err := conn.Send(map[string]interface{}{"a": []int{1}}); err == nil {
		t.Fatal("expected send on a closed connection to fail")
	}
	// Repeated close stays a no-op.
	if err := conn.Close(); err != nil {
		t.Fatalf("second close: %v", err)
	}
}
