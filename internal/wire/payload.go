package wire

import (
	"bytes"
	"compress/gzip"
	"fmt"
	"io"
	"log/slog"
	"unicode/utf8"

	"github.com/bytedance/sonic"
)

// EncodePayload serializes value and then compresses the result according
// to the header fields that will accompany it. A []byte value with
// SerializationNone passes through untouched, which is how raw PCM audio
// travels.
func EncodePayload(value any, s Serialization, c Compression) ([]byte, error) {
	var body []byte
	switch s {
	case SerializationJSON:
		data, err := sonic.Marshal(value)
		if err != nil {
			return nil, fmt.Errorf("marshal payload: %w", err)
		}
		body = data
	default:
		switch v := value.(type) {
		case []byte:
			body = v
		case string:
			body = []byte(v)
		case nil:
			body = nil
		default:
			return nil, fmt.Errorf("cannot encode %T without serialization", value)
		}
	}

	if c == CompressionGzip {
		var buf bytes.Buffer
		zw := gzip.NewWriter(&buf)
		if _, err := zw.Write(body); err != nil {
			return nil, fmt.Errorf("gzip payload: %w", err)
		}
		if err := zw.Close(); err != nil {
			return nil, fmt.Errorf("gzip payload: %w", err)
		}
		body = buf.Bytes()
	}

	return body, nil
}

// DecodePayload reverses EncodePayload and never fails. Each stage degrades
// on error instead of aborting the frame: a broken gzip stream keeps the
// bytes as received, a broken JSON document falls back to UTF-8 text, and
// non-text bytes come back verbatim. Callers always get some value.
func DecodePayload(data []byte, s Serialization, c Compression) any {
	if c == CompressionGzip {
		if decompressed, err := gunzip(data); err != nil {
			slog.Warn("payload decompression failed, keeping raw bytes",
				"error", err, "size", len(data))
		} else {
			data = decompressed
		}
	}

	if s == SerializationJSON {
		var value any
		if err := sonic.Unmarshal(data, &value); err == nil {
			return value
		}
		slog.Warn("payload deserialization failed, falling back to text",
			"size", len(data))
	}

	if utf8.Valid(data) {
		return string(data)
	}
	return data
}

func gunzip(data []byte) ([]byte, error) {
	zr, err := gzip.NewReader(bytes.NewReader(data))
	if err != nil {
		return nil, err
	}
	defer zr.Close()
	return io.ReadAll(zr)
}
