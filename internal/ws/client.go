// Package ws is the transport adapter: it upgrades connections, frames the
// JSON protocol, runs the heartbeat and hands inbound events to the game
// coordinator.
package ws

import (
	"encoding/json"
	"sync"
	"time"

	"github.com/gorilla/websocket"
	"go.uber.org/zap"
	"golang.org/x/time/rate"

	"github.com/LuizAugustoFH-77/Trivion/internal/protocol"
)

// writeWait bounds a single frame write.
const writeWait = 10 * time.Second

// Inbound frame rate cap per connection.
const (
	inboundRate  = rate.Limit(20)
	inboundBurst = 40
)

var pingFrame = func() []byte {
	b, _ := json.Marshal(protocol.NewFrame(protocol.TagPingHeartbeat, nil, 0))
	return b
}()

// Client is one websocket connection plus its session binding. Outbound
// frames go through the bounded send queue drained by writePump; closing
// that queue flushes what is left and then closes the socket.
type Client struct {
	conn    *websocket.Conn
	send    chan []byte
	h       *Handler
	log     *zap.Logger
	limiter *rate.Limiter

	mu        sync.Mutex
	memberID  string
	roomCode  string
	preselect string // room code parsed from the /ws URL
	closed    bool
}

func newClient(h *Handler, conn *websocket.Conn, queueSize int, log *zap.Logger) *Client {
	return &Client{
		conn:    conn,
		send:    make(chan []byte, queueSize),
		h:       h,
		log:     log,
		limiter: rate.NewLimiter(inboundRate, inboundBurst),
	}
}

func (c *Client) bind(roomCode, memberID string) {
	c.mu.Lock()
	c.roomCode = roomCode
	c.memberID = memberID
	c.mu.Unlock()
}

func (c *Client) binding() (roomCode, memberID string) {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.roomCode, c.memberID
}

func (c *Client) clearBinding() {
	c.mu.Lock()
	c.roomCode = ""
	c.memberID = ""
	c.mu.Unlock()
}

// Send implements bus.Subscriber: a non-blocking enqueue.
func (c *Client) Send(frame []byte) bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.closed {
		return false
	}
	select {
	case c.send <- frame:
		return true
	default:
		return false
	}
}

// Dropped implements bus.Subscriber: the bus let go of this connection, so
// flush the queue and close.
func (c *Client) Dropped(reason string) {
	c.log.Debug("connection dropped by bus", zap.String("reason", reason))
	c.closeSend()
}

// RoomGone implements bus.Subscriber: the room is gone but the connection
// may join another one.
func (c *Client) RoomGone() {
	c.clearBinding()
}

// closeSend closes the send queue exactly once; writePump takes it from
// there.
func (c *Client) closeSend() {
	c.mu.Lock()
	if !c.closed {
		c.closed = true
		close(c.send)
	}
	c.mu.Unlock()
}

// sendFrame marshals and enqueues a frame directly on this connection,
// outside any room. Used for listings, command rejections and reconnect
// results.
func (c *Client) sendFrame(tag protocol.Tag, payload any) {
	data, err := json.Marshal(protocol.NewFrame(tag, payload, 0))
	if err != nil {
		c.log.Error("marshal frame", zap.String("tag", string(tag)), zap.Error(err))
		return
	}
	if !c.Send(data) {
		c.closeSend()
	}
}

func (c *Client) sendError(message string) {
	c.sendFrame(protocol.TagError, protocol.ErrorPayload{Message: message})
}

// writePump drains the send queue and emits the heartbeat ping. It owns
// the connection's write side and closes the socket on the way out.
func (c *Client) writePump(pingInterval time.Duration) {
	ticker := time.NewTicker(pingInterval)
	defer func() {
		ticker.Stop()
		c.conn.Close()
	}()
	for {
		select {
		case frame, ok := <-c.send:
			c.conn.SetWriteDeadline(time.Now().Add(writeWait))
			if !ok {
				c.conn.WriteMessage(websocket.CloseMessage, []byte{})
				return
			}
			if err := c.conn.WriteMessage(websocket.TextMessage, frame); err != nil {
				return
			}
		case <-ticker.C:
			c.conn.SetWriteDeadline(time.Now().Add(writeWait))
			if err := c.conn.WriteMessage(websocket.TextMessage, pingFrame); err != nil {
				return
			}
		}
	}
}

// readPump reads frames until the connection dies. Every inbound frame
// refreshes the liveness deadline; pong_heartbeat is the guaranteed
// periodic one.
func (c *Client) readPump(limit int64, timeout time.Duration) {
	c.conn.SetReadLimit(limit)
	c.conn.SetReadDeadline(time.Now().Add(timeout))
	for {
		_, data, err := c.conn.ReadMessage()
		if err != nil {
			return
		}
		c.conn.SetReadDeadline(time.Now().Add(timeout))
		c.h.dispatch(c, data)
	}
}
