package wire

import "encoding/binary"

// EncodeFrame assembles a complete outbound frame: header, optional signed
// big-endian sequence, 4-byte big-endian payload length, payload bytes. The
// sequence is written only when the flag nibble says one is present. Pure
// function; the caller sends the result as a single transport message.
func EncodeFrame(t MessageType, flags SequenceFlag, seq int32, payload any, s Serialization, c Compression) ([]byte, error) {
	body, err := EncodePayload(payload, s, c)
	if err != nil {
		return nil, err
	}

	frame := make([]byte, 0, HeaderSize+8+len(body))
	frame = append(frame, EncodeHeader(t, flags, s, c, 0)...)
	if byte(flags)&flagBitHasSequence != 0 {
		frame = binary.BigEndian.AppendUint32(frame, uint32(seq))
	}
	frame = binary.BigEndian.AppendUint32(frame, uint32(len(body)))
	return append(frame, body...), nil
}

// EncodeServerResponse builds a FullServerResponse frame. Server responses
// carry an unsigned payload length after the optional sequence.
func EncodeServerResponse(flags SequenceFlag, seq int32, payload any, s Serialization, c Compression) ([]byte, error) {
	return EncodeFrame(FullServerResponse, flags, seq, payload, s, c)
}

// EncodeServerAck builds a ServerAck frame acknowledging ackSeq. The acked
// sequence lives in the payload area, after which an optional
// length-prefixed body may follow.
func EncodeServerAck(ackSeq int32, payload any, s Serialization, c Compression) ([]byte, error) {
	body, err := EncodePayload(payload, s, c)
	if err != nil {
		return nil, err
	}

	frame := make([]byte, 0, HeaderSize+8+len(body))
	frame = append(frame, EncodeHeader(ServerAck, FlagNone, s, c, 0)...)
	frame = binary.BigEndian.AppendUint32(frame, uint32(ackSeq))
	if len(body) > 0 {
		frame = binary.BigEndian.AppendUint32(frame, uint32(len(body)))
		frame = append(frame, body...)
	}
	return frame, nil
}

// EncodeServerError builds a ServerErrorResponse frame: unsigned error code,
// unsigned payload length, payload bytes.
func EncodeServerError(code uint32, payload any, s Serialization, c Compression, last bool) ([]byte, error) {
	body, err := EncodePayload(payload, s, c)
	if err != nil {
		return nil, err
	}

	flags := FlagNone
	if last {
		flags = FlagNegativeLast
	}

	frame := make([]byte, 0, HeaderSize+8+len(body))
	frame = append(frame, EncodeHeader(ServerErrorResponse, flags, s, c, 0)...)
	frame = binary.BigEndian.AppendUint32(frame, code)
	frame = binary.BigEndian.AppendUint32(frame, uint32(len(body)))
	return append(frame, body...), nil
}
