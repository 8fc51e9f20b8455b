package audio

import "time"

// Format describes raw PCM audio as the recognition service expects it.
type Format struct {
	SampleRate int
	Bits       int
	Channels   int
	Codec      string
}

// DefaultFormat is 16 kHz mono PCM-16, the format the ASR models consume.
func DefaultFormat() Format {
	return Format{SampleRate: 16000, Bits: 16, Channels: 1, Codec: "raw"}
}

// BytesPerFrame is the size of one sample frame across all channels.
func (f Format) BytesPerFrame() int {
	return f.Channels * f.Bits / 8
}

// SegmentBytes is the number of bytes covering d of audio in this format.
func (f Format) SegmentBytes(d time.Duration) int {
	frames := int(int64(f.SampleRate) * d.Milliseconds() / 1000)
	return frames * f.BytesPerFrame()
}

// Duration is the play time of n bytes of audio in this format.
func (f Format) Duration(n int) time.Duration {
	bytesPerSecond := f.SampleRate * f.BytesPerFrame()
	if bytesPerSecond == 0 {
		return 0
	}
	return time.Duration(int64(n) * int64(time.Second) / int64(bytesPerSecond))
}

// Split cuts pcm into consecutive segments of segmentBytes bytes. The final
// segment keeps whatever remains and is never padded.
func Split(pcm []byte, segmentBytes int) [][]byte {
	if segmentBytes <= 0 || len(pcm) == 0 {
		return nil
	}

	segments := make([][]byte, 0, (len(pcm)+segmentBytes-1)/segmentBytes)
	for start := 0; start < len(pcm); start += segmentBytes {
		end := start + segmentBytes
		if end > len(pcm) {
			end = len(pcm)
		}
		segments = append(segments, pcm[start:end])
	}
	return segments
}
