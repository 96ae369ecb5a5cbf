package ws

import (
	"sync"
	"time"

	"github.com/gorilla/websocket"

	"cardtable/internal/logger"
)

const (
	writeWait    = 10 * time.Second
	pongWait     = 30 * time.Second
	pingPeriod   = 25 * time.Second
	maxFrameSize = 4096
	sendBuffer   = 64
)

// Client runs the read and write pumps for one websocket connection and
// feeds inbound frames to its room.
type Client struct {
	name string
	conn *websocket.Conn
	room *Room
	send chan []byte

	closeOnce sync.Once
}

func NewClient(name string, conn *websocket.Conn, room *Room) *Client {
	return &Client{
		name: name,
		conn: conn,
		room: room,
		send: make(chan []byte, sendBuffer),
	}
}

// Run registers with the room and pumps messages until the connection drops.
// It blocks until the read side finishes.
func (c *Client) Run() {
	go c.writePump()

	sess := c.room.Join(c, c.name)
	if sess == nil {
		c.close()
		return
	}

	c.readPump(sess)
}

func (c *Client) readPump(sess *session) {
	defer func() {
		c.room.Leave(sess)
		c.close()
	}()

	c.conn.SetReadLimit(maxFrameSize)
	_ = c.conn.SetReadDeadline(time.Now().Add(pongWait))
	c.conn.SetPongHandler(func(string) error {
		return c.conn.SetReadDeadline(time.Now().Add(pongWait))
	})

	for {
		_, msg, err := c.conn.ReadMessage()
		if err != nil {
			logger.Debug("read pump closed", "player", c.name, "error", err)
			return
		}
		c.room.Receive(sess, msg)
	}
}

func (c *Client) writePump() {
	ticker := time.NewTicker(pingPeriod)
	defer func() {
		ticker.Stop()
		c.close()
	}()

	for {
		select {
		case msg, ok := <-c.send:
			_ = c.conn.SetWriteDeadline(time.Now().Add(writeWait))
			if !ok {
				_ = c.conn.WriteMessage(websocket.CloseMessage, []byte{})
				return
			}
			if err := c.conn.WriteMessage(websocket.TextMessage, msg); err != nil {
				return
			}
		case <-ticker.C:
			_ = c.conn.SetWriteDeadline(time.Now().Add(writeWait))
			if err := c.conn.WriteMessage(websocket.PingMessage, nil); err != nil {
				return
			}
		}
	}
}

// enqueue hands a frame to the write pump. A full buffer counts as a dead
// connection so the room can prune the session.
func (c *Client) enqueue(data []byte) bool {
	select {
	case c.send <- data:
		return true
	default:
		return false
	}
}

func (c *Client) close() {
	c.closeOnce.Do(func() {
		_ = c.conn.Close()
	})
}
