package engine

import (
	"errors"
	"sync"
	"time"

	"github.com/gorilla/websocket"
	"go.uber.org/zap"
)

const (
	// Time allowed to write a message to the peer.
	writeWait = 10 * time.Second

	// Time allowed to read the next pong message from the peer.
	pongWait = 60 * time.Second

	// Send pings to peer with this period. Must be less than pongWait.
	pingPeriod = (pongWait * 9) / 10

	// Maximum message size allowed from peer.
	maxMessageSize = 512

	// Messages queued for a peer before it counts as too slow.
	sendBuffer = 32
)

var (
	ErrConnClosed   = errors.New("connection closed")
	ErrSlowConsumer = errors.New("connection is not keeping up")
)

// Conn is a connection to a player in the real world
type Conn interface {
	Send(data []byte) error
	Close() error
}

// WSConn is a Conn over a gorilla websocket. Writes go through a single
// pump goroutine, which also keeps the connection alive with pings.
type WSConn struct {
	ws   *websocket.Conn
	send chan []byte
	done chan struct{}
	once sync.Once
	log  *zap.Logger
}

func NewWSConn(ws *websocket.Conn, log *zap.Logger) *WSConn {
	if log == nil {
		log = zap.NewNop()
	}
	c := &WSConn{
		ws:   ws,
		send: make(chan []byte, sendBuffer),
		done: make(chan struct{}),
		log:  log,
	}
	go c.writePump()
	return c
}

// Send queues data for the peer without blocking
func (c *WSConn) Send(data []byte) error {
	select {
	case <-c.done:
		return ErrConnClosed
	default:
	}

	select {
	case c.send <- data:
		return nil
	case <-c.done:
		return ErrConnClosed
	default:
		return ErrSlowConsumer
	}
}

// Close stops the write pump, which flushes whatever is already queued,
// says goodbye to the peer and closes the socket. It is safe to call more
// than once.
func (c *WSConn) Close() error {
	c.once.Do(func() {
		close(c.done)
	})
	return nil
}

// Done is closed once the connection has been closed
func (c *WSConn) Done() <-chan struct{} {
	return c.done
}

// ReadPump hands every frame from the peer to onMessage until the peer goes
// away or the connection is closed. It blocks, so run it on the goroutine
// that owns the connection.
func (c *WSConn) ReadPump(onMessage func([]byte)) {
	defer c.Close()

	c.ws.SetReadLimit(maxMessageSize)
	c.ws.SetReadDeadline(time.Now().Add(pongWait))
	c.ws.SetPongHandler(func(string) error {
		c.ws.SetReadDeadline(time.Now().Add(pongWait))
		return nil
	})

	for {
		_, msg, err := c.ws.ReadMessage()
		if err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseNormalClosure) {
				c.log.Debug("websocket read failed", zap.Error(err))
			}
			return
		}
		onMessage(msg)
	}
}

func (c *WSConn) writePump() {
	ticker := time.NewTicker(pingPeriod)

	defer func() {
		ticker.Stop()
		c.ws.Close()
	}()

	for {
		select {
		case msg := <-c.send:
			if err := c.write(msg); err != nil {
				c.Close()
				return
			}

		case <-ticker.C:
			c.ws.SetWriteDeadline(time.Now().Add(writeWait))
			if err := c.ws.WriteMessage(websocket.PingMessage, nil); err != nil {
				c.Close()
				return
			}

		case <-c.done:
			c.flush()
			c.ws.SetWriteDeadline(time.Now().Add(writeWait))
			c.ws.WriteMessage(websocket.CloseMessage,
				websocket.FormatCloseMessage(websocket.CloseNormalClosure, ""))
			return
		}
	}
}

func (c *WSConn) write(msg []byte) error {
	c.ws.SetWriteDeadline(time.Now().Add(writeWait))

	w, err := c.ws.NextWriter(websocket.TextMessage)
	if err != nil {
		return err
	}
	w.Write(msg)
	return w.Close()
}

// flush writes out messages queued before Close
func (c *WSConn) flush() {
	for {
		select {
		case msg := <-c.send:
			if err := c.write(msg); err != nil {
				return
			}
		default:
			return
		}
	}
}
