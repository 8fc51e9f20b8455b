package audio

import (
	"math"
	"time"
)

// Tone synthesizes a sine wave as little-endian PCM-16 bytes in the given
// format. Useful for exercising a recognition session without a recording.
func Tone(freq float64, d time.Duration, f Format) []byte {
	numSamples := int(int64(f.SampleRate) * d.Milliseconds() / 1000)
	samples := make([]float32, numSamples*f.Channels)

	for i := 0; i < numSamples; i++ {
		v := float32(0.5 * math.Sin(2*math.Pi*freq*float64(i)/float64(f.SampleRate)))
		for ch := 0; ch < f.Channels; ch++ {
			samples[i*f.Channels+ch] = v
		}
	}

	return Int16ToPCMBytes(Float32ToInt16(samples))
}
