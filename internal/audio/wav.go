package audio

import (
	"encoding/binary"
	"fmt"
)

// DecodeWAV extracts raw PCM bytes and their format from a RIFF/WAVE file.
// Only uncompressed PCM is supported. The data chunk is located by walking
// the chunk list, so files with extra metadata chunks decode correctly.
func DecodeWAV(data []byte) ([]byte, Format, error) {
	if len(data) < 12 {
		return nil, Format{}, fmt.Errorf("wav: file too short (%d bytes)", len(data))
	}
	if string(data[0:4]) != "RIFF" || string(data[8:12]) != "WAVE" {
		return nil, Format{}, fmt.Errorf("wav: not a RIFF/WAVE file")
	}

	var format Format
	var pcm []byte
	haveFmt := false

	offset := 12
	for offset+8 <= len(data) {
		chunkID := string(data[offset : offset+4])
		chunkSize := int(binary.LittleEndian.Uint32(data[offset+4 : offset+8]))
		chunkStart := offset + 8
		chunkEnd := chunkStart + chunkSize
		if chunkEnd > len(data) {
			chunkEnd = len(data)
		}

		switch chunkID {
		case "fmt ":
			if chunkEnd-chunkStart < 16 {
				return nil, Format{}, fmt.Errorf("wav: fmt chunk too short")
			}
			audioFormat := binary.LittleEndian.Uint16(data[chunkStart:])
			if audioFormat != 1 {
				return nil, Format{}, fmt.Errorf("wav: unsupported audio format %d (only PCM)", audioFormat)
			}
			format = Format{
				Channels:   int(binary.LittleEndian.Uint16(data[chunkStart+2:])),
				SampleRate: int(binary.LittleEndian.Uint32(data[chunkStart+4:])),
				Bits:       int(binary.LittleEndian.Uint16(data[chunkStart+14:])),
				Codec:      "raw",
			}
			haveFmt = true

		case "data":
			pcm = data[chunkStart:chunkEnd]
		}

		// Chunks are word-aligned.
		offset = chunkStart + chunkSize + chunkSize%2
	}

	if !haveFmt {
		return nil, Format{}, fmt.Errorf("wav: missing fmt chunk")
	}
	if pcm == nil {
		return nil, Format{}, fmt.Errorf("wav: missing data chunk")
	}
	return pcm, format, nil
}
