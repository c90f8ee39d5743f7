package sockets

import (
	"context"
	"crypto/tls"
	"errors"
	"io"
	"sync"
	"time"

	"github.com/gorilla/websocket"
)

// Connection is a minimal event-driven websocket client. Incoming frames are
// delivered to the OnMessage callback one at a time, in receive order, from
// the connection's single read goroutine.
type Connection interface {
	Dial(ctx context.Context, url string, header map[string][]string) error
	Send(msg Msg) error
	IsConnected() bool
	io.Closer
}

type Conn struct {
	mu               sync.Mutex
	ws               *websocket.Conn
	sslSkipVerify    bool
	closed           bool
	pingIntervalSecs int
	pingMsg          []byte
	onError          func(err error)
	onMessage        func([]byte, Connection)
	onConnected      func(Connection)
}

func New(opts ...func(*Conn)) Connection {
	c := &Conn{closed: true}
	for _, o := range opts {
		o(c)
	}
	return c
}

// Msg is a single outbound text frame.
type Msg struct {
	Body []byte
}

func (c *Conn) Close() error {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.close()
	return nil
}

func (c *Conn) close() {
	if c.ws != nil {
		_ = c.ws.Close()
	}
	c.closed = true
}

func (c *Conn) IsConnected() bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	return !c.closed
}

func (c *Conn) Send(msg Msg) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.closed {
		return errors.New("closed connection")
	}
	if err := c.ws.WriteMessage(websocket.TextMessage, msg.Body); err != nil {
		c.close()
		if c.onError != nil {
			c.onError(err)
		}
		return err
	}
	return nil
}

func (c *Conn) Dial(ctx context.Context, url string, header map[string][]string) error {
	dialer := &websocket.Dialer{
		HandshakeTimeout: 15 * time.Second,
		TLSClientConfig: &tls.Config{
			InsecureSkipVerify: c.sslSkipVerify,
		},
	}
	conn, res, err := dialer.DialContext(ctx, url, header)
	if err != nil {
		return err
	}
	if res != nil && res.Body != nil {
		_ = res.Body.Close()
	}

	c.mu.Lock()
	c.ws = conn
	c.closed = false
	c.mu.Unlock()

	if c.onConnected != nil {
		go c.onConnected(c)
	}
	go c.readLoop(conn)
	c.setupPing(conn)
	return nil
}

func (c *Conn) readLoop(ws *websocket.Conn) {
	for {
		_, msg, err := ws.ReadMessage()
		if err != nil {
			c.mu.Lock()
			c.closed = true
			c.mu.Unlock()
			if c.onError != nil {
				c.onError(err)
			}
			return
		}
		if c.onMessage != nil {
			// Synchronous on purpose: handlers rely on frames arriving in
			// the order the peer sent them.
			c.onMessage(msg, c)
		}
	}
}

func (c *Conn) setupPing(ws *websocket.Conn) {
	if c.pingIntervalSecs <= 0 || len(c.pingMsg) == 0 {
		return
	}
	ticker := time.NewTicker(time.Second * time.Duration(c.pingIntervalSecs))
	go func() {
		defer ticker.Stop()
		for range ticker.C {
			if !c.IsConnected() {
				return
			}
			if err := c.Send(Msg{Body: c.pingMsg}); err != nil {
				return
			}
		}
	}()
}
