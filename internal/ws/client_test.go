package ws

import (
	"encoding/json"
	"net/http/httptest"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/gorilla/websocket"

	"github.com/civireport/go-civic-backend/internal/domain"
	"github.com/civireport/go-civic-backend/internal/hub"
)

func newWSServer(t *testing.T, h *hub.Hub) *httptest.Server {
	t.Helper()
	gin.SetMode(gin.TestMode)
	r := gin.New()
	r.GET("/ws", Handler(h))
	srv := httptest.NewServer(r)
	t.Cleanup(srv.Close)
	return srv
}

func dial(t *testing.T, srv *httptest.Server) *websocket.Conn {
	t.Helper()
	url := "ws" + strings.TrimPrefix(srv.URL, "http") + "/ws"
	conn, _, err := websocket.DefaultDialer.Dial(url, nil)
	if err != nil {
		t.Fatalf("dial: %v", err)
	}
	t.Cleanup(func() { conn.Close() })
	return conn
}

func waitForObservers(t *testing.T, h *hub.Hub, want int) {
	t.Helper()
	deadline := time.Now().Add(2 * time.Second)
	for h.Len() != want {
		if time.Now().After(deadline) {
			t.Fatalf("observers = %d, want %d", h.Len(), want)
		}
		time.Sleep(5 * time.Millisecond)
	}
}

func TestHandler_DeliversBroadcastToConnectedClient(t *testing.T) {
	h := hub.New()
	srv := newWSServer(t, h)
	conn := dial(t, srv)

	waitForObservers(t, h, 1)

	view := domain.ProblemView{ID: "p1", Title: "Pothole", Status: domain.StatusOpen, ReporterName: "Alice"}
	h.Broadcast(hub.Event{Type: hub.EventNewProblem, Data: view})

	conn.SetReadDeadline(time.Now().Add(2 * time.Second))
	_, msg, err := conn.ReadMessage()
	if err != nil {
		t.Fatalf("read: %v", err)
	}

	var ev struct {
		Type string             `json:"type"`
		Data domain.ProblemView `json:"data"`
	}
	if err := json.Unmarshal(msg, &ev); err != nil {
		t.Fatalf("unmarshal: %v", err)
	}
	if ev.Type != hub.EventNewProblem || ev.Data.ID != "p1" || ev.Data.ReporterName != "Alice" {
		t.Fatalf("event = %+v", ev)
	}
}

func TestHandler_UnregistersOnDisconnect(t *testing.T) {
	h := hub.New()
	srv := newWSServer(t, h)
	conn := dial(t, srv)

	waitForObservers(t, h, 1)
	conn.Close()
	waitForObservers(t, h, 0)

	// Broadcasting with no observers is a no-op.
	h.Broadcast(hub.Event{Type: hub.EventNewProblem, Data: map[string]string{"id": "p2"}})
}

func TestClient_SendAfterCloseFails(t *testing.T) {
	c := newClient(nil)
	if !c.Alive() {
		t.Fatalf("fresh client should be alive")
	}

	c.close()
	if c.Alive() {
		t.Fatalf("closed client reported alive")
	}
	if err := c.Send([]byte("x")); err == nil {
		t.Fatalf("Send after close should fail")
	}
	c.close() // idempotent
}

func TestClient_SendConcurrentWithCloseDoesNotPanic(t *testing.T) {
	// Send and close race from different goroutines in production: the hub
	// fans out on the request goroutine while the handler closes the client
	// when the peer disconnects. A Send that loses the race must return an
	// error, never hit the closed queue.
	for i := 0; i < 1000; i++ {
		c := newClient(nil)
		var wg sync.WaitGroup
		wg.Add(2)
		go func() {
			defer wg.Done()
			for j := 0; j < 10; j++ {
				c.Send([]byte("x"))
			}
		}()
		go func() {
			defer wg.Done()
			c.close()
		}()
		wg.Wait()

		if err := c.Send([]byte("late")); err == nil {
			t.Fatalf("Send after close should fail")
		}
	}
}

func TestClient_SendDropsWhenBufferFull(t *testing.T) {
	c := newClient(nil)
	for i := 0; i < sendBuffer; i++ {
		if err := c.Send([]byte("x")); err != nil {
			t.Fatalf("enqueue %d: %v", i, err)
		}
	}
	if err := c.Send([]byte("overflow")); err == nil {
		t.Fatalf("expected error when buffer is full")
	}
}
