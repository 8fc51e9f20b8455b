package wire

import (
	"encoding/binary"

	"github.com/eleven-am/asr-stream/internal/shared"
)

// Frame is the decoded form of an inbound message. Optional fields are
// populated only when the wire bytes actually carried them.
type Frame struct {
	Type          MessageType
	HasSequence   bool
	Sequence      int32
	IsLastPackage bool

	// AckedSequence is the sequence number a ServerAck acknowledges.
	AckedSequence *int32

	// ErrorCode is set only for ServerErrorResponse frames.
	ErrorCode *uint32

	// Payload is the decoded body: a structured value when serialization
	// and compression succeed, best-effort text otherwise, raw bytes as a
	// last resort.
	Payload any
}

// DecodeFrame parses an inbound byte sequence. It is total over inputs of
// four or more bytes: unexpected content degrades to coarser structure
// instead of failing. Not-enough-bytes at any step means "take everything
// that remains as payload", never an error. Only a buffer shorter than the
// header is rejected.
func DecodeFrame(data []byte) (Frame, error) {
	header, err := DecodeHeader(data)
	if err != nil {
		return Frame{}, err
	}

	frame := Frame{
		Type:          header.Type,
		IsLastPackage: header.IsLastPackage(),
	}

	remaining := data
	if start := header.PayloadStart(); start < len(data) {
		remaining = data[start:]
	} else {
		remaining = nil
	}

	if header.HasSequence() && len(remaining) >= 4 {
		frame.HasSequence = true
		frame.Sequence = int32(binary.BigEndian.Uint32(remaining[:4]))
		remaining = remaining[4:]
	}

	var body []byte
	switch header.Type {
	case FullServerResponse:
		if len(remaining) >= 4 {
			size := binary.BigEndian.Uint32(remaining[:4])
			body = clamp(remaining[4:], int(size))
		} else {
			body = remaining
		}

	case ServerAck:
		if len(remaining) >= 4 {
			acked := int32(binary.BigEndian.Uint32(remaining[:4]))
			frame.AckedSequence = &acked
			if len(remaining) >= 8 {
				size := binary.BigEndian.Uint32(remaining[4:8])
				body = clamp(remaining[8:], int(size))
			} else {
				body = remaining[4:]
			}
		}

	case ServerErrorResponse:
		if len(remaining) >= 8 {
			code := binary.BigEndian.Uint32(remaining[:4])
			frame.ErrorCode = &code
			size := binary.BigEndian.Uint32(remaining[4:8])
			body = clamp(remaining[8:], int(size))
		} else {
			body = remaining
		}

	default:
		// Unknown or client-originated types carry no framing we can
		// trust; hand back whatever follows the header verbatim.
		body = remaining
	}

	frame.Payload = DecodePayload(body, header.Serialization, header.Compression)
	return frame, nil
}

// DecodeClientFrame parses a client request on the service side. Unlike
// DecodeFrame it is strict: client frames are length-prefixed, and a frame
// whose declared fields do not fit is rejected rather than degraded.
func DecodeClientFrame(data []byte) (Frame, error) {
	header, err := DecodeHeader(data)
	if err != nil {
		return Frame{}, err
	}

	frame := Frame{
		Type:          header.Type,
		IsLastPackage: header.IsLastPackage(),
	}

	offset := header.PayloadStart()
	if header.HasSequence() {
		if offset+4 > len(data) {
			return Frame{}, shared.ErrMalformedFrame
		}
		frame.HasSequence = true
		frame.Sequence = int32(binary.BigEndian.Uint32(data[offset:]))
		offset += 4
	}

	if offset+4 > len(data) {
		return Frame{}, shared.ErrMalformedFrame
	}
	size := int(binary.BigEndian.Uint32(data[offset:]))
	offset += 4
	if size < 0 || offset+size > len(data) {
		return Frame{}, shared.ErrMalformedFrame
	}

	frame.Payload = DecodePayload(data[offset:offset+size], header.Serialization, header.Compression)
	return frame, nil
}

// clamp takes at most size bytes from data, tolerating advertised lengths
// that exceed what actually arrived.
func clamp(data []byte, size int) []byte {
	if size < 0 || size > len(data) {
		return data
	}
	return data[:size]
}
