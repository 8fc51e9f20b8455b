package transport

import (
	"context"
	"fmt"
	"net/http"
	"sync"
	"time"

	"github.com/eleven-am/asr-stream/internal/shared"
	"github.com/gorilla/websocket"
)

const (
	writeWait      = 10 * time.Second
	maxMessageSize = 16 * 1024 * 1024
	recvBuffer     = 64
)

// wsConn pumps inbound messages through a channel so that a Recv timeout
// leaves the underlying WebSocket healthy. A read deadline on the socket
// itself would poison it for all later reads.
type wsConn struct {
	ws      *websocket.Conn
	recv    chan []byte
	readErr error
	errOnce sync.Once
	done    chan struct{}

	mu     sync.Mutex
	closed bool
}

// Dial opens a WebSocket connection to the recognition service. A non-empty
// token is sent as a bearer credential on the upgrade request.
func Dial(ctx context.Context, url, token string) (Conn, error) {
	header := http.Header{}
	if token != "" {
		header.Set("Authorization", "Bearer "+token)
	}

	ws, resp, err := websocket.DefaultDialer.DialContext(ctx, url, header)
	if err != nil {
		if resp != nil {
			return nil, fmt.Errorf("dial %s: %w (status %s)", url, err, resp.Status)
		}
		return nil, fmt.Errorf("dial %s: %w", url, err)
	}
	return NewConn(ws), nil
}

// NewConn wraps an already-established WebSocket connection.
func NewConn(ws *websocket.Conn) Conn {
	ws.SetReadLimit(maxMessageSize)
	c := &wsConn{
		ws:   ws,
		recv: make(chan []byte, recvBuffer),
		done: make(chan struct{}),
	}
	go c.readPump()
	return c
}

func (c *wsConn) readPump() {
	defer close(c.recv)
	for {
		_, data, err := c.ws.ReadMessage()
		if err != nil {
			c.errOnce.Do(func() { c.readErr = err })
			return
		}
		select {
		case c.recv <- data:
		case <-c.done:
			return
		}
	}
}

func (c *wsConn) Send(data []byte) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.closed {
		return shared.ErrSessionClosed
	}

	_ = c.ws.SetWriteDeadline(time.Now().Add(writeWait))
	return c.ws.WriteMessage(websocket.BinaryMessage, data)
}

func (c *wsConn) Recv(ctx context.Context, timeout time.Duration) ([]byte, error) {
	timer := time.NewTimer(timeout)
	defer timer.Stop()

	select {
	case data, ok := <-c.recv:
		if !ok {
			if c.readErr != nil {
				return nil, c.readErr
			}
			return nil, shared.ErrSessionClosed
		}
		return data, nil
	case <-timer.C:
		return nil, shared.ErrRecvTimeout
	case <-ctx.Done():
		return nil, ctx.Err()
	}
}

func (c *wsConn) Close() error {
	c.mu.Lock()
	if c.closed {
		c.mu.Unlock()
		return nil
	}
	c.closed = true
	close(c.done)
	c.mu.Unlock()

	_ = c.ws.SetWriteDeadline(time.Now().Add(writeWait))
	_ = c.ws.WriteMessage(
		websocket.CloseMessage,
		websocket.FormatCloseMessage(websocket.CloseNormalClosure, ""),
	)
	return c.ws.Close()
}
