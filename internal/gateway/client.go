package gateway

import (
	"bidding-room/internal/biddingerrors"
	"bidding-room/internal/protocol"
	"bidding-room/utils"
	"context"
	"encoding/json"
	"io"
	"net"
	"sync"
	"time"

	"github.com/gobwas/ws"
	"github.com/gobwas/ws/wsutil"
)

const (
	maxMessageSize = 64 * 1024
	sendBuffer     = 256
)

// ClientAdapter is one websocket connection: a read pump feeding the router
// and a write pump draining the send buffer
type ClientAdapter struct {
	id     string
	userID string
	conn   net.Conn
	router *Router
	send   chan []byte

	closeOnce sync.Once
	done      chan struct{}

	writeWait  time.Duration
	pongWait   time.Duration
	pingPeriod time.Duration
}

func NewClient(conn net.Conn, router *Router, userID string) *ClientAdapter {
	return &ClientAdapter{
		id:         utils.GenerateID(),
		userID:     userID,
		conn:       conn,
		router:     router,
		send:       make(chan []byte, sendBuffer),
		done:       make(chan struct{}),
		writeWait:  5 * time.Second,
		pongWait:   60 * time.Second,
		pingPeriod: 50 * time.Second,
	}
}

func (c *ClientAdapter) Start() {
	go c.writePump()
	go c.readPump()
}

func (c *ClientAdapter) ID() string { return c.id }

// UserID is the authenticated bidder, empty for anonymous watchers
func (c *ClientAdapter) UserID() string { return c.userID }

// Close stops the write pump, which closes the connection
func (c *ClientAdapter) Close() {
	c.closeOnce.Do(func() { close(c.done) })
}

func (c *ClientAdapter) SendJSON(v interface{}) {
	b, err := json.Marshal(v)
	if err != nil {
		utils.Error("encode websocket message", map[string]any{"connection_id": c.id, "error": err.Error()})
		return
	}
	c.SendBytes(b)
}

// SendBytes queues b, dropping it when the buffer is full or the client is gone
func (c *ClientAdapter) SendBytes(b []byte) {
	select {
	case <-c.done:
		return
	default:
	}

	select {
	case c.send <- b:
	default:
		utils.Warn("send buffer full, message dropped", map[string]any{"connection_id": c.id})
	}
}

func (c *ClientAdapter) readPump() {
	defer func() {
		c.router.Disconnect(context.Background(), c)
		c.Close()
	}()

	_ = c.conn.SetReadDeadline(time.Now().Add(c.pongWait))

	for {
		header, err := ws.ReadHeader(c.conn)
		if err != nil {
			return
		}

		if header.Length > int64(maxMessageSize) {
			utils.Warn("websocket message too big", map[string]any{"connection_id": c.id, "size": header.Length})
			return
		}

		if !header.Fin {
			utils.Warn("fragmented websocket message not supported", map[string]any{"connection_id": c.id})
			return
		}

		payload := make([]byte, header.Length)
		if _, err := io.ReadFull(c.conn, payload); err != nil {
			return
		}

		if header.Masked {
			ws.Cipher(payload, header.Mask, 0)
		}
		_ = c.conn.SetReadDeadline(time.Now().Add(c.pongWait))

		switch header.OpCode {
		case ws.OpClose:
			return
		case ws.OpText:
			var req protocol.Request
			if err := json.Unmarshal(payload, &req); err != nil {
				c.SendJSON(protocol.RoomError("", "", biddingerrors.Reject(biddingerrors.CodeInvalidInput, "invalid JSON", nil)))
				continue
			}
			c.router.Handle(context.Background(), c, req)
		}
	}
}

func (c *ClientAdapter) writePump() {
	ticker := time.NewTicker(c.pingPeriod)
	defer func() {
		ticker.Stop()
		_ = c.conn.Close()
	}()

	for {
		select {
		case msg := <-c.send:
			_ = c.conn.SetWriteDeadline(time.Now().Add(c.writeWait))
			if err := wsutil.WriteServerText(c.conn, msg); err != nil {
				return
			}

		case <-ticker.C:
			_ = c.conn.SetWriteDeadline(time.Now().Add(c.writeWait))
			if err := wsutil.WriteServerMessage(c.conn, ws.OpPing, nil); err != nil {
				return
			}

		case <-c.done:
			_ = c.conn.SetWriteDeadline(time.Now().Add(c.writeWait))
			_, _ = c.conn.Write(ws.CompiledClose)
			return
		}
	}
}
