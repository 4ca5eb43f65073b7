package transport

import (
	"context"
	"encoding/json"
	"time"

	"github.com/mistcall/strangerchat/internal/logging"
	"github.com/mistcall/strangerchat/internal/metrics"
	"github.com/mistcall/strangerchat/internal/types"
	"github.com/gorilla/websocket"
	"go.uber.org/zap"
)

const (
	writeWait      = 10 * time.Second
	pongWait       = 60 * time.Second
	pingPeriod     = (pongWait * 9) / 10
	maxMessageSize = 1 << 20 // 1 MiB, generous for file-attachment metadata payloads
	sendBufferSize = 256
)

// Client is a single connection's read/write pump pair, grounded on the
// teacher's Client (session/client.go) but speaking JSON envelopes over
// gorilla/websocket directly instead of a protobuf wsConnection
// abstraction — there is no test double to swap in here since the
// transport tests dial a real in-process server.
type Client struct {
	id   types.ConnID
	conn *websocket.Conn
	send chan []byte
	hub  *Hub
}

// readPump reads inbound envelopes and dispatches them to the Hub, and
// runs the WebSocket-level pong handler that keeps the heartbeat honest.
// Exits, and triggers disconnect cleanup, on any read error.
func (c *Client) readPump() {
	defer func() {
		c.hub.removeClient(c.id)
		c.conn.Close()
		metrics.DecSession()
	}()

	c.conn.SetReadLimit(maxMessageSize)
	c.conn.SetReadDeadline(time.Now().Add(pongWait))
	c.conn.SetPongHandler(func(string) error {
		c.conn.SetReadDeadline(time.Now().Add(pongWait))
		return nil
	})

	for {
		_, data, err := c.conn.ReadMessage()
		if err != nil {
			break
		}

		var env Envelope
		if err := json.Unmarshal(data, &env); err != nil {
			logging.Warn(context.Background(), "failed to unmarshal inbound envelope",
				zap.String("conn_id", string(c.id)), zap.Error(err))
			continue
		}

		c.hub.dispatch(c.id, env.Event, env.Payload)
	}
}

// writePump drains the client's send channel to the socket and sends
// periodic WebSocket ping control frames so a dead peer is detected within
// pongWait even if it never sends anything itself.
func (c *Client) writePump() {
	ticker := time.NewTicker(pingPeriod)
	defer func() {
		ticker.Stop()
		c.conn.Close()
	}()

	for {
		select {
		case message, ok := <-c.send:
			c.conn.SetWriteDeadline(time.Now().Add(writeWait))
			if !ok {
				c.conn.WriteMessage(websocket.CloseMessage, []byte{})
				return
			}
			if err := c.conn.WriteMessage(websocket.TextMessage, message); err != nil {
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

// enqueue writes a pre-encoded envelope to the client's send buffer
// without blocking; a full buffer means a slow or dead peer and the
// message is dropped rather than stalling the caller (spec §5: no emit
// may block the core; best-effort delivery), mirroring the non-blocking
// select the teacher uses in room.go's broadcastToClientMap.
func (c *Client) enqueue(data []byte) {
	select {
	case c.send <- data:
	default:
		logging.Warn(context.Background(), "client send buffer full, dropping message",
			zap.String("conn_id", string(c.id)))
	}
}
