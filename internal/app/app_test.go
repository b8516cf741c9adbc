package app

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/gorilla/websocket"
	"github.com/shopspring/decimal"

	"github.com/avertin/pricepulse/internal/config"
	"github.com/avertin/pricepulse/internal/stream"
)

// testGateway serves the REST surface and the price stream from one
// httptest server, the way the real gateway does.
func testGateway(t *testing.T, streamHandler func(*websocket.Conn)) *httptest.Server {
	t.Helper()

	upgrader := websocket.Upgrader{
		CheckOrigin: func(r *http.Request) bool { return true },
	}

	mux := http.NewServeMux()
	mux.HandleFunc("/prices/ws", func(w http.ResponseWriter, r *http.Request) {
		conn, err := upgrader.Upgrade(w, r, nil)
		if err != nil {
			t.Logf("upgrade error: %v", err)
			return
		}
		defer conn.Close()
		streamHandler(conn)
	})
	mux.HandleFunc("/prices/", func(w http.ResponseWriter, r *http.Request) {
		json.NewEncoder(w).Encode(map[string]any{
			"prices": map[string]any{
				"BTC": map[string]any{"price": "68000.5", "currency": "USD", "source": "test"},
			},
			"count":     1,
			"timestamp": time.Now().UTC(),
		})
	})
	mux.HandleFunc("/auth/me", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusUnauthorized)
		json.NewEncoder(w).Encode(map[string]string{"detail": "Not authenticated"})
	})

	server := httptest.NewServer(mux)
	t.Cleanup(server.Close)
	return server
}

func testConfig(t *testing.T, server *httptest.Server) *config.Config {
	t.Helper()
	cfg := config.Default()
	cfg.API.BaseURL = server.URL
	cfg.Stream.URL = "ws" + strings.TrimPrefix(server.URL, "http") + "/prices/ws"
	cfg.Session.TokenFile = filepath.Join(t.TempDir(), "token")
	return cfg
}

func waitFor(t *testing.T, timeout time.Duration, cond func() bool) {
	t.Helper()
	deadline := time.Now().Add(timeout)
	for !cond() {
		if time.Now().After(deadline) {
			t.Fatal("condition not met before timeout")
		}
		time.Sleep(5 * time.Millisecond)
	}
}

func TestApp_BootstrapPopulatesStoreThenConnects(t *testing.T) {
	server := testGateway(t, func(conn *websocket.Conn) {
		for {
			if _, _, err := conn.ReadMessage(); err != nil {
				return
			}
		}
	})

	a := New(testConfig(t, server), nil)
	defer a.Shutdown()

	if err := a.Bootstrap(context.Background()); err != nil {
		t.Fatalf("Bootstrap: %v", err)
	}

	// The snapshot merge happens before Connect returns, so the quote is
	// visible immediately.
	q, ok := a.Store.Get("BTC")
	if !ok {
		t.Fatal("expected BTC quote after bootstrap")
	}
	if want := decimal.RequireFromString("68000.5"); !q.Price.Equal(want) {
		t.Fatalf("price = %s, want %s", q.Price, want)
	}

	if a.Session.Authenticated() {
		t.Fatal("expected anonymous session without a stored token")
	}

	waitFor(t, 2*time.Second, func() bool {
		return a.Stream.State() == stream.StateOpen
	})
}

func TestApp_StreamDeltaOverridesBootstrapQuote(t *testing.T) {
	server := testGateway(t, func(conn *websocket.Conn) {
		conn.WriteMessage(websocket.TextMessage,
			[]byte(`{"symbol":"BTC","price":"69500.0","currency":"USD","source":"test"}`))
		for {
			if _, _, err := conn.ReadMessage(); err != nil {
				return
			}
		}
	})

	a := New(testConfig(t, server), nil)
	defer a.Shutdown()

	if err := a.Bootstrap(context.Background()); err != nil {
		t.Fatalf("Bootstrap: %v", err)
	}

	want := decimal.RequireFromString("69500.0")
	waitFor(t, 2*time.Second, func() bool {
		q, ok := a.Store.Get("BTC")
		return ok && q.Price.Equal(want)
	})
}

func TestApp_BootstrapDegradesWhenGatewayDown(t *testing.T) {
	server := testGateway(t, func(conn *websocket.Conn) {})
	cfg := testConfig(t, server)
	server.Close()

	a := New(cfg, nil)
	defer a.Shutdown()

	if err := a.Bootstrap(context.Background()); err != nil {
		t.Fatalf("Bootstrap should degrade, got %v", err)
	}
	if a.Store.Len() != 0 {
		t.Fatalf("store should be empty, has %d quotes", a.Store.Len())
	}
	if a.Session.Authenticated() {
		t.Fatal("expected anonymous session")
	}
}

func TestApp_ViewReflectsCoreState(t *testing.T) {
	server := testGateway(t, func(conn *websocket.Conn) {
		for {
			if _, _, err := conn.ReadMessage(); err != nil {
				return
			}
		}
	})

	a := New(testConfig(t, server), nil)
	defer a.Shutdown()

	if err := a.Bootstrap(context.Background()); err != nil {
		t.Fatalf("Bootstrap: %v", err)
	}

	view := a.View("crypto")
	if len(view.Rows) != 1 {
		t.Fatalf("rows = %d, want 1", len(view.Rows))
	}
	if view.Rows[0].Symbol != "BTC" {
		t.Fatalf("symbol = %q, want BTC", view.Rows[0].Symbol)
	}
	if view.Authenticated {
		t.Fatal("view should be anonymous")
	}

	if empty := a.View("stocks"); len(empty.Rows) != 0 {
		t.Fatalf("stocks view rows = %d, want 0", len(empty.Rows))
	}
}
