package wire

import (
	"testing"

	"github.com/eleven-am/asr-stream/internal/shared"
)

func TestEncodeDecodeHeader_RoundTrip(t *testing.T) {
	types := []MessageType{
		FullClientRequest, AudioOnlyRequest,
		FullServerResponse, ServerAck, ServerErrorResponse,
	}
	flags := []SequenceFlag{
		FlagNone, FlagPositive, FlagNegativeLast, FlagNegativeWithSequence,
	}
	serializations := []Serialization{SerializationNone, SerializationJSON}
	compressions := []Compression{CompressionNone, CompressionGzip}

	for _, mt := range types {
		for _, flag := range flags {
			for _, s := range serializations {
				for _, c := range compressions {
					encoded := EncodeHeader(mt, flag, s, c, 0)
					if len(encoded) != HeaderSize {
						t.Fatalf("header size: expected %d, got %d", HeaderSize, len(encoded))
					}

					header, err := DecodeHeader(encoded)
					if err != nil {
						t.Fatalf("decode error: %v", err)
					}
					if header.Type != mt {
						t.Errorf("type: expected %v, got %v", mt, header.Type)
					}
					if header.Flags != flag {
						t.Errorf("flags: expected %v, got %v", flag, header.Flags)
					}
					if header.Serialization != s {
						t.Errorf("serialization: expected %v, got %v", s, header.Serialization)
					}
					if header.Compression != c {
						t.Errorf("compression: expected %v, got %v", c, header.Compression)
					}
				}
			}
		}
	}
}

func TestEncodeHeader_VersionAndSize(t *testing.T) {
	encoded := EncodeHeader(FullClientRequest, FlagPositive, SerializationJSON, CompressionGzip, 0)
	if encoded[0] != 0x11 {
		t.Errorf("byte 0: expected 0x11 (version 1, size 1), got 0x%02x", encoded[0])
	}
	if encoded[1] != 0x11 {
		t.Errorf("byte 1: expected 0x11, got 0x%02x", encoded[1])
	}
	if encoded[2] != 0x11 {
		t.Errorf("byte 2: expected 0x11, got 0x%02x", encoded[2])
	}
	if encoded[3] != 0x00 {
		t.Errorf("byte 3: expected 0x00, got 0x%02x", encoded[3])
	}
}

func TestEncodeHeader_ReservedRoundTrips(t *testing.T) {
	encoded := EncodeHeader(ServerAck, FlagNone, SerializationNone, CompressionNone, 0xAB)
	header, err := DecodeHeader(encoded)
	if err != nil {
		t.Fatalf("decode error: %v", err)
	}
	if header.Reserved != 0xAB {
		t.Errorf("reserved: expected 0xAB, got 0x%02x", header.Reserved)
	}
}

func TestDecodeHeader_TooShort(t *testing.T) {
	for _, size := range []int{0, 1, 2, 3} {
		_, err := DecodeHeader(make([]byte, size))
		if err != shared.ErrMalformedFrame {
			t.Errorf("size %d: expected ErrMalformedFrame, got %v", size, err)
		}
	}
}

func TestDecodeHeader_UnknownTypeIsLegal(t *testing.T) {
	// Every 4-bit pattern decodes; unknown types are not an error.
	encoded := []byte{0x11, 0x70, 0x00, 0x00}
	header, err := DecodeHeader(encoded)
	if err != nil {
		t.Fatalf("decode error: %v", err)
	}
	if header.Type != MessageType(0x07) {
		t.Errorf("type: expected 0x07, got 0x%02x", byte(header.Type))
	}
	if header.Type.String() != "unknown" {
		t.Errorf("type string: expected unknown, got %s", header.Type.String())
	}
}

func TestHeader_FlagBits(t *testing.T) {
	tests := []struct {
		flags       SequenceFlag
		hasSequence bool
		lastPackage bool
	}{
		{FlagNone, false, false},
		{FlagPositive, true, false},
		{FlagNegativeLast, false, true},
		{FlagNegativeWithSequence, true, true},
	}

	for _, tt := range tests {
		header, err := DecodeHeader(EncodeHeader(FullServerResponse, tt.flags, SerializationNone, CompressionNone, 0))
		if err != nil {
			t.Fatalf("decode error: %v", err)
		}
		if header.HasSequence() != tt.hasSequence {
			t.Errorf("flags %04b: HasSequence expected %v, got %v", tt.flags, tt.hasSequence, header.HasSequence())
		}
		if header.IsLastPackage() != tt.lastPackage {
			t.Errorf("flags %04b: IsLastPackage expected %v, got %v", tt.flags, tt.lastPackage, header.IsLastPackage())
		}
	}
}

func TestHeader_PayloadStart(t *testing.T) {
	header, err := DecodeHeader([]byte{0x12, 0x91, 0x11, 0x00})
	if err != nil {
		t.Fatalf("decode error: %v", err)
	}
	if header.PayloadStart() != 8 {
		t.Errorf("payload start: expected 8 for size units 2, got %d", header.PayloadStart())
	}
}
