package shared

import "errors"

var (
	// ErrMalformedFrame is returned when a decoder is handed fewer than the
	// four bytes a frame header occupies. It is fatal for that decode call
	// only; the connection stays usable.
	ErrMalformedFrame = errors.New("malformed frame: need at least 4 bytes")

	// ErrRecvTimeout is returned by a transport receive that hit its
	// deadline without a message arriving.
	ErrRecvTimeout = errors.New("receive timed out")

	// ErrHandshakeTimeout aborts a session when the server never answers
	// the configuration frame.
	ErrHandshakeTimeout = errors.New("handshake timed out waiting for config response")

	// ErrDrainIncomplete is reported when draining exhausted its attempt
	// budget without observing a last-package response. The session still
	// closes; callers may treat it as advisory.
	ErrDrainIncomplete = errors.New("drain finished without last-package response")

	// ErrSessionClosed is returned by operations on a session that already
	// transitioned to its terminal state.
	ErrSessionClosed = errors.New("session closed")
)
