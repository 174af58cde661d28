package connector

import (
	"context"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/gorilla/websocket"
	"github.com/presence-bridge/backend/internal/activity"
	"github.com/presence-bridge/backend/internal/ws"
)

// dialTestWS stands up a throwaway HTTP server that upgrades to WebSocket
// and returns both sides of the connection. The caller must close the
// server and both conns.
func dialTestWS(t *testing.T) (*httptest.Server, *websocket.Conn, *websocket.Conn) {
	t.Helper()

	connCh := make(chan *websocket.Conn, 1)
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		upgrader := websocket.Upgrader{CheckOrigin: func(*http.Request) bool { return true }}
		c, err := upgrader.Upgrade(w, r, nil)
		if err != nil {
			t.Errorf("upgrade: %v", err)
			return
		}
		connCh <- c
	}))

	wsURL := "ws" + strings.TrimPrefix(srv.URL, "http")
	clientConn, _, err := websocket.DefaultDialer.Dial(wsURL, nil)
	if err != nil {
		srv.Close()
		t.Fatalf("dial: %v", err)
	}

	select {
	case serverConn := <-connCh:
		return srv, serverConn, clientConn
	case <-time.After(2 * time.Second):
		srv.Close()
		t.Fatal("timed out waiting for server-side WebSocket connection")
		return nil, nil, nil
	}
}

func waitForClients(t *testing.T, c *Connector, want int) {
	t.Helper()
	deadline := time.Now().Add(2 * time.Second)
	for time.Now().Before(deadline) {
		if c.ClientCount() == want {
			return
		}
		time.Sleep(5 * time.Millisecond)
	}
	t.Fatalf("client count never reached %d (got %d)", want, c.ClientCount())
}

func readTextFrame(t *testing.T, conn *websocket.Conn) string {
	t.Helper()
	conn.SetReadDeadline(time.Now().Add(2 * time.Second))
	_, data, err := conn.ReadMessage()
	if err != nil {
		t.Fatalf("read: %v", err)
	}
	return string(data)
}

func TestAddClient_WelcomeSentBeforeBroadcasts(t *testing.T) {
	srv, serverConn, clientConn := dialTestWS(t)
	defer srv.Close()
	defer clientConn.Close()

	c := newTestConnector()
	c.welcome = `{"evt":"READY"}`
	c.addClient("c1", serverConn)

	pid := uint64(9)
	c.dispatchProcess(activity.ProcessEvent{ID: "555", Name: "Game", PID: &pid})

	if got := readTextFrame(t, clientConn); got != `{"evt":"READY"}` {
		t.Fatalf("first frame = %s, want welcome payload", got)
	}
	if got := readTextFrame(t, clientConn); !strings.Contains(got, `"socketId":"555"`) {
		t.Fatalf("second frame = %s, want populated payload", got)
	}
}

func TestWritePump_ClosesConnOnRemove(t *testing.T) {
	srv, serverConn, clientConn := dialTestWS(t)
	defer srv.Close()
	defer clientConn.Close()

	c := newTestConnector()
	c.addClient("c1", serverConn)
	c.removeClient("c1")

	// writePump exits when the send channel closes and closes the conn;
	// the client read side observes it.
	clientConn.SetReadDeadline(time.Now().Add(2 * time.Second))
	for {
		if _, _, err := clientConn.ReadMessage(); err != nil {
			return
		}
	}
}

func TestRun_DrainsProducersAndTransport(t *testing.T) {
	srv, serverConn, clientConn := dialTestWS(t)
	defer srv.Close()
	defer clientConn.Close()

	events := make(chan ws.Event, 8)
	ipcCh := make(chan activity.Cmd, 8)
	procCh := make(chan activity.ProcessEvent, 8)
	sockCh := make(chan activity.Cmd, 8)

	c := New(`{"evt":"READY"}`, events, ipcCh, procCh, sockCh)
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	c.Run(ctx)

	events <- ws.Event{Kind: ws.Connected, ID: "c1", Conn: serverConn}
	if got := readTextFrame(t, clientConn); got != `{"evt":"READY"}` {
		t.Fatalf("welcome = %s", got)
	}
	waitForClients(t, c, 1)

	pid := uint64(42)
	procCh <- activity.ProcessEvent{ID: "123", Name: "Game", PID: &pid}
	if got := readTextFrame(t, clientConn); !strings.Contains(got, `"application_id":"123"`) {
		t.Fatalf("process broadcast = %s", got)
	}

	sockCh <- activity.Cmd{Cmd: "SUBSCRIBE"}
	if got := readTextFrame(t, clientConn); !strings.Contains(got, `"cmd":"SUBSCRIBE"`) {
		t.Fatalf("socket passthrough = %s", got)
	}

	events <- ws.Event{Kind: ws.Inbound, ID: "c1", Data: []byte("echo me")}
	if got := readTextFrame(t, clientConn); got != "echo me" {
		t.Fatalf("echo = %s", got)
	}

	events <- ws.Event{Kind: ws.Disconnected, ID: "c1"}
	deadline := time.Now().Add(2 * time.Second)
	for time.Now().Before(deadline) {
		if c.ClientCount() == 0 {
			return
		}
		time.Sleep(10 * time.Millisecond)
	}
	t.Fatalf("client not removed after disconnect event; count = %d", c.ClientCount())
}
