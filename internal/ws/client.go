// Package ws adapts WebSocket connections to hub observers. Each connected
// client is wrapped in a Client whose buffered send channel decouples
// broadcasts from slow sockets: the hub never blocks on a laggard, it just
// fails that delivery and moves on.
package ws

import (
	"errors"
	"net/http"
	"sync"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/gorilla/websocket"
	"github.com/rs/zerolog/log"

	"github.com/civireport/go-civic-backend/internal/hub"
)

const (
	// writeWait bounds a single write to the peer.
	writeWait = 10 * time.Second
	// pongWait is how long to wait for a pong before declaring the peer dead.
	pongWait = 60 * time.Second
	// pingPeriod must be less than pongWait.
	pingPeriod = (pongWait * 9) / 10
	// sendBuffer is the per-client queue of pending outbound events.
	sendBuffer = 32
)

var errClientGone = errors.New("client closed")

// Client wraps one WebSocket connection as a hub.Observer.
type Client struct {
	conn *websocket.Conn
	send chan []byte

	mu     sync.Mutex
	closed bool
}

// newClient wraps an upgraded connection.
func newClient(conn *websocket.Conn) *Client {
	return &Client{conn: conn, send: make(chan []byte, sendBuffer)}
}

// Send enqueues one serialized event for delivery. It never blocks: when the
// client's buffer is full or the client has closed, the event is dropped and
// an error is returned so the hub can count the failed delivery.
//
// The mutex is held across the channel send so that close cannot close the
// queue between the closed-check and the enqueue. The send itself cannot
// block while the lock is held: it is a non-blocking select.
func (c *Client) Send(msg []byte) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.closed {
		return errClientGone
	}

	select {
	case c.send <- msg:
		return nil
	default:
		return errors.New("send buffer full")
	}
}

// Alive reports whether the client can still accept deliveries.
func (c *Client) Alive() bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	return !c.closed
}

// close marks the client dead and releases the write pump. Safe to call
// more than once.
func (c *Client) close() {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.closed {
		return
	}
	c.closed = true
	close(c.send)
}

// writePump drains the send queue onto the socket and keeps the connection
// alive with periodic pings. It exits when the queue closes or a write fails.
func (c *Client) writePump() {
	ticker := time.NewTicker(pingPeriod)
	defer func() {
		ticker.Stop()
		c.conn.Close()
	}()

	for {
		select {
		case msg, ok := <-c.send:
			c.conn.SetWriteDeadline(time.Now().Add(writeWait))
			if !ok {
				c.conn.WriteMessage(websocket.CloseMessage, []byte{})
				return
			}
			if err := c.conn.WriteMessage(websocket.TextMessage, msg); err != nil {
				return
			}
		case <-ticker.C:
			c.conn.SetWriteDeadline(time.Now().Add(writeWait))
			if err := c.conn.WriteMessage(websocket.PingMessage, nil); err != nil {
				return
			}
		}
	}
}

// readPump consumes (and discards) inbound frames so that close frames and
// pongs are processed. It returns when the peer goes away.
func (c *Client) readPump() {
	defer c.conn.Close()
	c.conn.SetReadLimit(512)
	c.conn.SetReadDeadline(time.Now().Add(pongWait))
	c.conn.SetPongHandler(func(string) error {
		c.conn.SetReadDeadline(time.Now().Add(pongWait))
		return nil
	})
	for {
		if _, _, err := c.conn.ReadMessage(); err != nil {
			return
		}
	}
}

// upgrader performs the HTTP -> WebSocket upgrade. Origin checking is left to
// the CORS layer in front of the API; the event stream is public read-only.
var upgrader = websocket.Upgrader{
	ReadBufferSize:  1024,
	WriteBufferSize: 1024,
	CheckOrigin:     func(*http.Request) bool { return true },
}

// Handler returns the gin handler for GET /ws. It upgrades the connection,
// registers the client on the hub, and unregisters it when the peer leaves.
func Handler(h *hub.Hub) gin.HandlerFunc {
	return func(c *gin.Context) {
		conn, err := upgrader.Upgrade(c.Writer, c.Request, nil)
		if err != nil {
			// Upgrade has already written the error response.
			log.Debug().Err(err).Msg("websocket upgrade failed")
			return
		}

		client := newClient(conn)
		h.Register(client)
		log.Debug().Str("remote", conn.RemoteAddr().String()).Msg("observer connected")

		go client.writePump()
		client.readPump()

		h.Unregister(client)
		client.close()
		log.Debug().Str("remote", conn.RemoteAddr().String()).Msg("observer disconnected")
	}
}
