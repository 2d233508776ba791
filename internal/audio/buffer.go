package audio

import (
	"errors"
	"math"
	"time"
)

// Capture format shared between the recorder and the transcription engine.
// Whisper expects 16 kHz mono 16-bit PCM; changing one side without the
// other produces garbage transcripts.
const (
	SampleRate     = 16000
	Channels       = 1
	BytesPerSample = 2
)

var ErrEmptyBuffer = errors.New("audio buffer holds no samples")

// Buffer is a finalized recording: an ordered sequence of PCM samples at a
// fixed rate. It is immutable once built; the capture goroutine hands it
// over by value and never touches the backing slice again.
type Buffer struct {
	samples    []int16
	sampleRate int
	channels   int
}

func NewBuffer(samples []int16, sampleRate, channels int) *Buffer {
	if sampleRate <= 0 {
		sampleRate = SampleRate
	}
	if channels <= 0 {
		channels = Channels
	}
	return &Buffer{samples: samples, sampleRate: sampleRate, channels: channels}
}

// FromPCM16 builds a buffer from raw little-endian 16-bit PCM bytes as read
// off a capture pipe. A trailing odd byte is dropped.
func FromPCM16(raw []byte, sampleRate, channels int) *Buffer {
	samples := make([]int16, 0, len(raw)/BytesPerSample)
	for i := 0; i+BytesPerSample <= len(raw); i += BytesPerSample {
		samples = append(samples, int16(uint16(raw[i])|uint16(raw[i+1])<<8))
	}
	return NewBuffer(samples, sampleRate, channels)
}

func (b *Buffer) SampleRate() int { return b.sampleRate }
func (b *Buffer) Channels() int   { return b.channels }
func (b *Buffer) Samples() int    { return len(b.samples) }

func (b *Buffer) Duration() time.Duration {
	if len(b.samples) == 0 {
		return 0
	}
	frames := len(b.samples) / b.channels
	return time.Duration(frames) * time.Second / time.Duration(b.sampleRate)
}

// LevelMetrics summarizes signal strength in dBFS.
type LevelMetrics struct {
	RMSdBFS  float64
	PeakdBFS float64
	Samples  int
}

func (b *Buffer) Levels() LevelMetrics {
	if len(b.samples) == 0 {
		return LevelMetrics{RMSdBFS: math.Inf(-1), PeakdBFS: math.Inf(-1)}
	}

	var peak float64
	var sumSquares float64
	for _, s := range b.samples {
		v := float64(s) / 32768.0
		abs := math.Abs(v)
		if abs > peak {
			peak = abs
		}
		sumSquares += v * v
	}

	rms := math.Sqrt(sumSquares / float64(len(b.samples)))
	return LevelMetrics{
		RMSdBFS:  amplitudeToDBFS(rms),
		PeakdBFS: amplitudeToDBFS(peak),
		Samples:  len(b.samples),
	}
}

// IsSilent reports whether the buffer carries no usable speech signal. The
// peak gate sits slightly above the RMS threshold so a single keyboard click
// in an otherwise silent recording still counts as silence.
func (b *Buffer) IsSilent(thresholdDBFS float64) bool {
	if len(b.samples) == 0 {
		return true
	}

	metrics := b.Levels()
	if math.IsInf(metrics.RMSdBFS, -1) && math.IsInf(metrics.PeakdBFS, -1) {
		return true
	}

	peakGate := thresholdDBFS + 6
	return metrics.RMSdBFS <= thresholdDBFS && metrics.PeakdBFS <= peakGate
}

func amplitudeToDBFS(amplitude float64) float64 {
	if amplitude <= 0 {
		return math.Inf(-1)
	}
	return 20.0 * math.Log10(amplitude)
}
