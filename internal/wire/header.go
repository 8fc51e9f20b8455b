package wire

import "github.com/eleven-am/asr-stream/internal/shared"

// Binary frame layout (all multi-byte integers big-endian):
//
//	byte0: version(4b) | header size in 4-byte words(4b)
//	byte1: message type(4b) | type flags(4b)
//	byte2: serialization(4b) | compression(4b)
//	byte3: reserved
//	[sequence: 4 bytes signed]   present iff flag bit 0 is set
//	[payload length: 4 bytes]
//	payload bytes
const (
	ProtocolVersion = 0x01

	// headerSizeUnits is the header length in 4-byte words. Extension
	// fields are not supported, so it is always 1.
	headerSizeUnits = 0x01

	HeaderSize = headerSizeUnits * 4
)

type MessageType byte

const (
	FullClientRequest   MessageType = 0b0001
	AudioOnlyRequest    MessageType = 0b0010
	FullServerResponse  MessageType = 0b1001
	ServerAck           MessageType = 0b1011
	ServerErrorResponse MessageType = 0b1111
)

func (t MessageType) String() string {
	switch t {
	case FullClientRequest:
		return "full_client_request"
	case AudioOnlyRequest:
		return "audio_only_request"
	case FullServerResponse:
		return "full_server_response"
	case ServerAck:
		return "server_ack"
	case ServerErrorResponse:
		return "server_error_response"
	default:
		return "unknown"
	}
}

// SequenceFlag is the 4-bit flags nibble of byte 1. Bit 0 means a sequence
// field follows the header, bit 1 means the sender considers the stream
// complete. The two bits are independent; decode exposes them as separate
// booleans rather than a single code.
type SequenceFlag byte

const (
	FlagNone                 SequenceFlag = 0b0000
	FlagPositive             SequenceFlag = 0b0001
	FlagNegativeLast         SequenceFlag = 0b0010
	FlagNegativeWithSequence SequenceFlag = 0b0011
)

const (
	flagBitHasSequence = 0x01
	flagBitLastPackage = 0x02
)

type Serialization byte

const (
	SerializationNone Serialization = 0b0000
	SerializationJSON Serialization = 0b0001
)

type Compression byte

const (
	CompressionNone Compression = 0b0000
	CompressionGzip Compression = 0b0001
)

// Header is the unpacked 4-byte control header.
type Header struct {
	Version       byte
	SizeUnits     byte
	Type          MessageType
	Flags         SequenceFlag
	Serialization Serialization
	Compression   Compression
	Reserved      byte
}

func (h Header) HasSequence() bool {
	return byte(h.Flags)&flagBitHasSequence != 0
}

func (h Header) IsLastPackage() bool {
	return byte(h.Flags)&flagBitLastPackage != 0
}

// PayloadStart is the byte offset at which the post-header fields begin.
func (h Header) PayloadStart() int {
	return int(h.SizeUnits) * 4
}

// EncodeHeader packs the control header into its 4-byte wire form.
func EncodeHeader(t MessageType, flags SequenceFlag, s Serialization, c Compression, reserved byte) []byte {
	return []byte{
		ProtocolVersion<<4 | headerSizeUnits,
		byte(t)<<4 | byte(flags)&0x0f,
		byte(s)<<4 | byte(c)&0x0f,
		reserved,
	}
}

// DecodeHeader unpacks the first four bytes of a frame. Every 4-bit field
// pattern is legal to decode; the only failure mode is a short buffer.
func DecodeHeader(data []byte) (Header, error) {
	if len(data) < HeaderSize {
		return Header{}, shared.ErrMalformedFrame
	}
	return Header{
		Version:       data[0] >> 4,
		SizeUnits:     data[0] & 0x0f,
		Type:          MessageType(data[1] >> 4),
		Flags:         SequenceFlag(data[1] & 0x0f),
		Serialization: Serialization(data[2] >> 4),
		Compression:   Compression(data[2] & 0x0f),
		Reserved:      data[3],
	}, nil
}
