package wire

import (
	"bytes"
	"reflect"
	"testing"
)

func TestPayload_RoundTripJSON(t *testing.T) {
	value := map[string]any{
		"msg":   "rate limited",
		"count": float64(3),
		"inner": map[string]any{"ok": true},
	}

	for _, c := range []Compression{CompressionNone, CompressionGzip} {
		encoded, err := EncodePayload(value, SerializationJSON, c)
		if err != nil {
			t.Fatalf("compression %v: encode error: %v", c, err)
		}

		decoded := DecodePayload(encoded, SerializationJSON, c)
		if !reflect.DeepEqual(decoded, value) {
			t.Errorf("compression %v: expected %v, got %v", c, value, decoded)
		}
	}
}

func TestPayload_RoundTripRawBytes(t *testing.T) {
	// Not valid UTF-8, so decode must hand the bytes back verbatim.
	raw := []byte{0xff, 0xfe, 0x01, 0x02, 0x80}

	for _, c := range []Compression{CompressionNone, CompressionGzip} {
		encoded, err := EncodePayload(raw, SerializationNone, c)
		if err != nil {
			t.Fatalf("compression %v: encode error: %v", c, err)
		}

		decoded := DecodePayload(encoded, SerializationNone, c)
		got, ok := decoded.([]byte)
		if !ok {
			t.Fatalf("compression %v: expected []byte, got %T", c, decoded)
		}
		if !bytes.Equal(got, raw) {
			t.Errorf("compression %v: expected %v, got %v", c, raw, got)
		}
	}
}

func TestPayload_TextWithoutSerialization(t *testing.T) {
	encoded, err := EncodePayload("hello", SerializationNone, CompressionGzip)
	if err != nil {
		t.Fatalf("encode error: %v", err)
	}

	decoded := DecodePayload(encoded, SerializationNone, CompressionGzip)
	if decoded != "hello" {
		t.Errorf("expected hello, got %v", decoded)
	}
}

func TestPayload_GzipEffective(t *testing.T) {
	value := bytes.Repeat([]byte("abcdefgh"), 512)
	encoded, err := EncodePayload(value, SerializationNone, CompressionGzip)
	if err != nil {
		t.Fatalf("encode error: %v", err)
	}
	if len(encoded) >= len(value) {
		t.Errorf("gzip did not shrink payload: %d -> %d", len(value), len(encoded))
	}
}

func TestDecodePayload_CorruptGzipKeepsBytes(t *testing.T) {
	corrupt := []byte("definitely not a gzip stream")
	decoded := DecodePayload(corrupt, SerializationNone, CompressionGzip)
	if decoded != string(corrupt) {
		t.Errorf("expected raw bytes back as text, got %v", decoded)
	}
}

func TestDecodePayload_BadJSONFallsBackToText(t *testing.T) {
	decoded := DecodePayload([]byte("{not json"), SerializationJSON, CompressionNone)
	if decoded != "{not json" {
		t.Errorf("expected text fallback, got %v", decoded)
	}
}

func TestDecodePayload_BadJSONAndBadUTF8FallsBackToBytes(t *testing.T) {
	raw := []byte{0xff, '{', 0xfe}
	decoded := DecodePayload(raw, SerializationJSON, CompressionNone)
	got, ok := decoded.([]byte)
	if !ok {
		t.Fatalf("expected []byte, got %T", decoded)
	}
	if !bytes.Equal(got, raw) {
		t.Errorf("expected %v, got %v", raw, got)
	}
}

func TestDecodePayload_Empty(t *testing.T) {
	decoded := DecodePayload(nil, SerializationNone, CompressionNone)
	if decoded != "" {
		t.Errorf("expected empty string, got %v", decoded)
	}
}

func TestEncodePayload_UnsupportedValue(t *testing.T) {
	if _, err := EncodePayload(struct{ X int }{1}, SerializationNone, CompressionNone); err == nil {
		t.Error("expected error encoding struct without serialization")
	}
}
