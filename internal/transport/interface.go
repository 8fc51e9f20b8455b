package transport

import (
	"context"
	"time"
)

// Conn is a reliable, ordered, message-framed connection to the recognition
// service. A session controller owns exactly one Conn for its lifetime and
// must release it on every exit path.
type Conn interface {
	// Send writes one binary message.
	Send(data []byte) error

	// Recv waits up to timeout for the next message. It returns
	// shared.ErrRecvTimeout when the deadline passes without one; the
	// connection remains usable afterwards.
	Recv(ctx context.Context, timeout time.Duration) ([]byte, error)

	Close() error
}
