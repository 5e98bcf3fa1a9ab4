package stream

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/gorilla/websocket"
)

// wsServer is a scriptable websocket endpoint. It records received actions
// and answers pings with pongs.
type wsServer struct {
	t        *testing.T
	upgrader websocket.Upgrader

	mu      sync.Mutex
	conn    *websocket.Conn
	actions []clientAction
	auth    string
}

func newWSServer(t *testing.T) (*wsServer, *httptest.Server) {
	t.Helper()
	ws := &wsServer{t: t}
	server := httptest.NewServer(http.HandlerFunc(ws.handle))
	t.Cleanup(server.Close)
	return ws, server
}

func (s *wsServer) handle(w http.ResponseWriter, r *http.Request) {
	s.mu.Lock()
	s.auth = r.Header.Get("Authorization")
	s.mu.Unlock()

	conn, err := s.upgrader.Upgrade(w, r, nil)
	if err != nil {
		s.t.Logf("upgrade failed: %v", err)
		return
	}
	s.mu.Lock()
	s.conn = conn
	s.mu.Unlock()

	for {
		_, data, err := conn.ReadMessage()
		if err != nil {
			return
		}
		var action clientAction
		if err := json.Unmarshal(data, &action); err != nil {
			continue
		}
		s.mu.Lock()
		s.actions = append(s.actions, action)
		s.mu.Unlock()

		if action.Action == "ping" {
			conn.WriteJSON(map[string]string{"type": "pong"})
		}
	}
}

// push sends a server frame to the connected client.
func (s *wsServer) push(v any) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.conn == nil {
		s.t.Fatal("no client connected")
	}
	if err := s.conn.WriteJSON(v); err != nil {
		s.t.Fatalf("push failed: %v", err)
	}
}

func (s *wsServer) received() []clientAction {
	s.mu.Lock()
	defer s.mu.Unlock()
	return append([]clientAction(nil), s.actions...)
}

func (s *wsServer) authHeader() string {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.auth
}

// waitFor polls cond until it holds or the deadline passes.
func waitFor(t *testing.T, timeout time.Duration, cond func() bool) bool {
	t.Helper()
	deadline := time.Now().Add(timeout)
	for time.Now().Before(deadline) {
		if cond() {
			return true
		}
		time.Sleep(5 * time.Millisecond)
	}
	return cond()
}

func wsURL(server *httptest.Server) string {
	return "ws" + strings.TrimPrefix(server.URL, "http")
}

func newTestClient(t *testing.T, server *httptest.Server, cfg Config) *Client {
	t.Helper()
	cfg.URL = wsURL(server)
	c := NewClient(cfg, nil)
	if err := c.Connect(context.Background()); err != nil {
		t.Fatalf("Connect failed: %v", err)
	}
	t.Cleanup(func() { c.Close() })
	return c
}

func TestConnect_SendsBearerHeader(t *testing.T) {
	ws, server := newWSServer(t)
	c := newTestClient(t, server, Config{Token: "tok123"})

	if !c.IsConnected() {
		t.Error("IsConnected = false after Connect")
	}
	if got := ws.authHeader(); got != "Bearer tok123" {
		t.Errorf("Authorization = %q, want %q", got, "Bearer tok123")
	}
}

func TestConnect_AfterClose(t *testing.T) {
	_, server := newWSServer(t)
	c := newTestClient(t, server, Config{})

	if err := c.Close(); err != nil {
		t.Fatalf("Close failed: %v", err)
	}
	if err := c.Connect(context.Background()); err != ErrAlreadyClosed {
		t.Errorf("Connect after Close = %v, want ErrAlreadyClosed", err)
	}
}

func TestSubscribeUnsubscribe(t *testing.T) {
	ws, server := newWSServer(t)
	c := newTestClient(t, server, Config{})

	if err := c.Subscribe(42); err != nil {
		t.Fatalf("Subscribe failed: %v", err)
	}
	if err := c.Unsubscribe(42); err != nil {
		t.Fatalf("Unsubscribe failed: %v", err)
	}

	ok := waitFor(t, time.Second, func() bool { return len(ws.received()) >= 2 })
	if !ok {
		t.Fatalf("server saw %d actions, want 2", len(ws.received()))
	}
	actions := ws.received()
	if actions[0].Action != "subscribe" || actions[0].StockID != 42 {
		t.Errorf("first action = %+v, want subscribe 42", actions[0])
	}
	if actions[1].Action != "unsubscribe" || actions[1].StockID != 42 {
		t.Errorf("second action = %+v, want unsubscribe 42", actions[1])
	}
}

func TestSubscribe_NotConnected(t *testing.T) {
	c := NewClient(Config{URL: "ws://localhost:1/ws"}, nil)
	if err := c.Subscribe(1); err != ErrNotConnected {
		t.Errorf("Subscribe = %v, want ErrNotConnected", err)
	}
}

func TestStockUpdateDelivery(t *testing.T) {
	ws, server := newWSServer(t)
	c := newTestClient(t, server, Config{})

	ws.push(map[string]any{
		"type":     "stock_update",
		"stock_id": 42,
		"data": map[string]any{
			"price":          10.52,
			"change":         0.12,
			"change_percent": 1.15,
			"volume":         183000,
		},
	})

	select {
	case upd := <-c.Updates():
		if upd.StockID != 42 {
			t.Errorf("StockID = %d, want 42", upd.StockID)
		}
		if got := upd.Data.Price.String(); got != "10.52" {
			t.Errorf("Price = %s, want 10.52", got)
		}
		if upd.Data.Volume != 183000 {
			t.Errorf("Volume = %d", upd.Data.Volume)
		}
	case <-time.After(time.Second):
		t.Fatal("no update delivered")
	}
}

func TestUnknownAndMalformedFramesAreIgnored(t *testing.T) {
	ws, server := newWSServer(t)
	c := newTestClient(t, server, Config{})

	ws.push(map[string]string{"type": "surprise"})
	ws.push(map[string]any{"type": "stock_update", "stock_id": 7, "data": "not a quote"})
	ws.push(map[string]any{
		"type":     "stock_update",
		"stock_id": 42,
		"data":     map[string]any{"price": 9.99},
	})

	// Only the well-formed update comes through; the bad frames are skipped
	// without killing the read loop.
	select {
	case upd := <-c.Updates():
		if upd.StockID != 42 {
			t.Errorf("StockID = %d, want 42", upd.StockID)
		}
	case <-time.After(time.Second):
		t.Fatal("read loop did not survive malformed frames")
	}
}

func TestPingLoop(t *testing.T) {
	ws, server := newWSServer(t)
	c := newTestClient(t, server, Config{PingInterval: 20 * time.Millisecond})

	ok := waitFor(t, time.Second, func() bool {
		for _, a := range ws.received() {
			if a.Action == "ping" {
				return true
			}
		}
		return false
	})
	if !ok {
		t.Fatal("no ping reached the server")
	}
	if !c.IsConnected() {
		t.Error("IsConnected = false, pongs should keep the connection healthy")
	}
}

func TestServerDropReportsError(t *testing.T) {
	ws, server := newWSServer(t)
	c := newTestClient(t, server, Config{})

	ws.mu.Lock()
	conn := ws.conn
	ws.mu.Unlock()
	conn.Close()

	select {
	case err := <-c.Errors():
		if err == nil {
			t.Fatal("nil error on Errors channel")
		}
	case <-time.After(time.Second):
		t.Fatal("no error reported after server drop")
	}
	if c.IsConnected() {
		t.Error("IsConnected = true after a fatal read error")
	}
}

func TestClose_Idempotent(t *testing.T) {
	_, server := newWSServer(t)
	c := newTestClient(t, server, Config{})

	if err := c.Close(); err != nil {
		t.Fatalf("Close failed: %v", err)
	}
	if err := c.Close(); err != nil {
		t.Errorf("second Close failed: %v", err)
	}
	if c.IsConnected() {
		t.Error("IsConnected = true after Close")
	}
}
