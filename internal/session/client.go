// internal/session/client.go
//
// One websocket connection attached to a session: a read pump for inbound
// commands and a write pump for queued events plus keepalive pings.

package session

import (
	"encoding/json"
	"errors"
	"time"

	"github.com/gorilla/websocket"

	"github.com/robalobadob/memory/internal/events"
)

const (
	writeWait      = 10 * time.Second
	pongWait       = 60 * time.Second
	pingPeriod     = (pongWait * 9) / 10
	maxMessageSize = 4096
)

// Client is one websocket connection subscribed to a session.
type Client struct {
	sess *Session
	conn *websocket.Conn
	sub  *subscriber
}

// ErrClosed is returned by Attach when the session was already closed.
var ErrClosed = errors.New("session closed")

// Attach subscribes conn to the session's events and starts its pumps.
// The client first receives a snapshot of the current board.
func (s *Session) Attach(conn *websocket.Conn) (*Client, error) {
	sub := s.hub.subscribe()
	if sub == nil {
		return nil, ErrClosed
	}
	c := &Client{sess: s, conn: conn, sub: sub}
	// subscribed before the snapshot is taken, so any event queued ahead of
	// it is already reflected in it
	s.hub.sendTo(sub, events.Event{Type: events.SnapshotSent, Data: s.Snapshot()})
	go c.writePump()
	go c.readPump()
	return c, nil
}

// readPump accepts inbound commands until the connection closes.
func (c *Client) readPump() {
	defer func() {
		c.sess.hub.unsubscribe(c.sub)
		c.conn.Close()
	}()
	c.conn.SetReadLimit(maxMessageSize)
	c.conn.SetReadDeadline(time.Now().Add(pongWait))
	c.conn.SetPongHandler(func(string) error {
		c.conn.SetReadDeadline(time.Now().Add(pongWait))
		return nil
	})

	for {
		_, message, err := c.conn.ReadMessage()
		if err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseNormalClosure) {
				c.sess.hub.log.Debug().Err(err).Msg("ws read error")
			}
			return
		}
		var env events.Envelope
		if err := json.Unmarshal(message, &env); err != nil {
			c.reject("malformed message")
			continue
		}
		c.handle(env)
	}
}

func (c *Client) handle(env events.Envelope) {
	switch env.Type {
	case events.CommandNewGame:
		c.sess.Restart()
	case events.CommandSelect:
		var p events.Position
		if err := json.Unmarshal(env.Payload, &p); err != nil {
			c.reject("select needs a position")
			return
		}
		if err := c.sess.Select(p.Position); err != nil {
			c.reject(err.Error())
		}
	default:
		c.reject("unknown command " + string(env.Type))
	}
}

func (c *Client) reject(reason string) {
	c.sess.hub.sendTo(c.sub, events.Event{Type: events.CommandRejected, Data: events.Rejected{Reason: reason}})
}

// writePump drains the subscriber queue onto the socket and keeps it alive with pings.
func (c *Client) writePump() {
	ticker := time.NewTicker(pingPeriod)
	defer func() {
		ticker.Stop()
		c.conn.Close()
	}()

	for {
		select {
		case message, ok := <-c.sub.send:
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
