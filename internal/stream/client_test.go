package stream

import (
	"context"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/gorilla/websocket"
)

// mockWSServer creates a test WebSocket server.
func mockWSServer(t *testing.T, handler func(*websocket.Conn)) *httptest.Server {
	t.Helper()
	upgrader := websocket.Upgrader{
		CheckOrigin: func(r *http.Request) bool { return true },
	}

	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		conn, err := upgrader.Upgrade(w, r, nil)
		if err != nil {
			t.Logf("upgrade error: %v", err)
			return
		}
		defer conn.Close()
		handler(conn)
	}))

	return server
}

func wsURL(server *httptest.Server) string {
	return "ws" + strings.TrimPrefix(server.URL, "http")
}

func testClientConfig(url string) Config {
	cfg := DefaultConfig()
	cfg.URL = url
	return cfg
}

func TestClient_ConnectAndReceive(t *testing.T) {
	server := mockWSServer(t, func(conn *websocket.Conn) {
		conn.WriteMessage(websocket.TextMessage, []byte(`{"type":"heartbeat"}`))
		// Keep the connection open until the client closes it.
		for {
			if _, _, err := conn.ReadMessage(); err != nil {
				return
			}
		}
	})
	defer server.Close()

	cl := newClient(testClientConfig(wsURL(server)), nil)
	if err := cl.connect(context.Background()); err != nil {
		t.Fatalf("connect failed: %v", err)
	}
	defer cl.close()

	select {
	case data := <-cl.messages:
		if string(data) != `{"type":"heartbeat"}` {
			t.Errorf("received %q", data)
		}
	case <-time.After(2 * time.Second):
		t.Fatal("timed out waiting for message")
	}
}

func TestClient_Send(t *testing.T) {
	var mu sync.Mutex
	var received []byte

	server := mockWSServer(t, func(conn *websocket.Conn) {
		for {
			_, msg, err := conn.ReadMessage()
			if err != nil {
				return
			}
			mu.Lock()
			received = msg
			mu.Unlock()
		}
	})
	defer server.Close()

	cl := newClient(testClientConfig(wsURL(server)), nil)
	if err := cl.connect(context.Background()); err != nil {
		t.Fatalf("connect failed: %v", err)
	}
	defer cl.close()

	if err := cl.send([]byte(`{"type":"ping"}`)); err != nil {
		t.Fatalf("send failed: %v", err)
	}

	deadline := time.Now().Add(2 * time.Second)
	for {
		mu.Lock()
		got := string(received)
		mu.Unlock()
		if got == `{"type":"ping"}` {
			break
		}
		if time.Now().After(deadline) {
			t.Fatalf("server received %q, want ping", got)
		}
		time.Sleep(10 * time.Millisecond)
	}
}

func TestClient_SendAfterClose(t *testing.T) {
	server := mockWSServer(t, func(conn *websocket.Conn) {
		for {
			if _, _, err := conn.ReadMessage(); err != nil {
				return
			}
		}
	})
	defer server.Close()

	cl := newClient(testClientConfig(wsURL(server)), nil)
	if err := cl.connect(context.Background()); err != nil {
		t.Fatalf("connect failed: %v", err)
	}
	cl.close()

	if err := cl.send([]byte("x")); err != ErrNotConnected {
		t.Errorf("send after close = %v, want ErrNotConnected", err)
	}
}

func TestClient_MessagesClosedOnServerDisconnect(t *testing.T) {
	server := mockWSServer(t, func(conn *websocket.Conn) {
		// Close immediately: the client must observe the close signal.
	})
	defer server.Close()

	cl := newClient(testClientConfig(wsURL(server)), nil)
	if err := cl.connect(context.Background()); err != nil {
		t.Fatalf("connect failed: %v", err)
	}

	select {
	case _, ok := <-cl.messages:
		if ok {
			t.Error("expected messages channel to close, got a message")
		}
	case <-time.After(2 * time.Second):
		t.Fatal("messages channel did not close after server disconnect")
	}
}
