package audio

import (
	"bytes"
	"encoding/binary"
	"math"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
)

func TestFromPCM16DecodesLittleEndian(t *testing.T) {
	t.Parallel()

	raw := []byte{0x01, 0x00, 0xFF, 0xFF, 0x00, 0x80}
	buf := FromPCM16(raw, SampleRate, Channels)
	require.Equal(t, 3, buf.Samples())
	require.Equal(t, SampleRate, buf.SampleRate())
}

func TestFromPCM16DropsTrailingOddByte(t *testing.T) {
	t.Parallel()

	buf := FromPCM16([]byte{0x01, 0x00, 0x02}, SampleRate, Channels)
	require.Equal(t, 1, buf.Samples())
}

func TestDuration(t *testing.T) {
	t.Parallel()

	buf := NewBuffer(make([]int16, SampleRate/2), SampleRate, Channels)
	require.Equal(t, 500*time.Millisecond, buf.Duration())

	require.Equal(t, time.Duration(0), NewBuffer(nil, SampleRate, Channels).Duration())
}

func TestIsSilentOnZeroSamples(t *testing.T) {
	t.Parallel()

	buf := NewBuffer(make([]int16, SampleRate), SampleRate, Channels)
	require.True(t, buf.IsSilent(-65))

	metrics := buf.Levels()
	require.True(t, math.IsInf(metrics.RMSdBFS, -1))
	require.True(t, math.IsInf(metrics.PeakdBFS, -1))
}

func TestIsSilentRejectsSpeechLikeSignal(t *testing.T) {
	t.Parallel()

	samples := make([]int16, SampleRate)
	for i := range samples {
		samples[i] = int16(0.25 * 32767 * math.Sin(2*math.Pi*440*float64(i)/float64(SampleRate)))
	}

	buf := NewBuffer(samples, SampleRate, Channels)
	require.False(t, buf.IsSilent(-65))

	metrics := buf.Levels()
	require.Greater(t, metrics.PeakdBFS, -20.0)
	require.Greater(t, metrics.RMSdBFS, -20.0)
}

func TestEncodeWAVProducesValidHeader(t *testing.T) {
	t.Parallel()

	samples := []int16{0, 100, -100, 32767}
	var out bytes.Buffer
	require.NoError(t, EncodeWAV(&out, NewBuffer(samples, SampleRate, Channels)))

	data := out.Bytes()
	require.Equal(t, "RIFF", string(data[0:4]))
	require.Equal(t, "WAVE", string(data[8:12]))
	require.Equal(t, "fmt ", string(data[12:16]))
	require.Equal(t, "data", string(data[36:40]))

	require.EqualValues(t, SampleRate, binary.LittleEndian.Uint32(data[24:28]))
	require.EqualValues(t, len(samples)*BytesPerSample, binary.LittleEndian.Uint32(data[40:44]))
	require.Len(t, data, 44+len(samples)*BytesPerSample)

	// round-trip the data chunk
	round := FromPCM16(data[44:], SampleRate, Channels)
	require.Equal(t, len(samples), round.Samples())
}

func TestEncodeWAVRejectsEmptyBuffer(t *testing.T) {
	t.Parallel()

	var out bytes.Buffer
	err := EncodeWAV(&out, NewBuffer(nil, SampleRate, Channels))
	require.ErrorIs(t, err, ErrEmptyBuffer)
}

func TestDecodeWAVRecoversSamples(t *testing.T) {
	t.Parallel()

	samples := []int16{0, 100, -100, 32767, -32768}
	var out bytes.Buffer
	require.NoError(t, EncodeWAV(&out, NewBuffer(samples, SampleRate, Channels)))

	decoded, err := DecodeWAV(&out)
	require.NoError(t, err)
	require.Equal(t, len(samples), decoded.Samples())
	require.Equal(t, SampleRate, decoded.SampleRate())
	require.Equal(t, Channels, decoded.Channels())
}

func TestDecodeWAVSkipsUnknownChunks(t *testing.T) {
	t.Parallel()

	var out bytes.Buffer
	require.NoError(t, EncodeWAV(&out, NewBuffer([]int16{1, 2, 3}, SampleRate, Channels)))
	encoded := out.Bytes()

	// Splice a LIST chunk between the header and the fmt chunk.
	junk := []byte("LIST\x04\x00\x00\x00INFO")
	spliced := append(append(append([]byte{}, encoded[:12]...), junk...), encoded[12:]...)
	binary.LittleEndian.PutUint32(spliced[4:8], uint32(len(spliced)-8))

	decoded, err := DecodeWAV(bytes.NewReader(spliced))
	require.NoError(t, err)
	require.Equal(t, 3, decoded.Samples())
}

func TestDecodeWAVRejectsNonRiff(t *testing.T) {
	t.Parallel()

	_, err := DecodeWAV(bytes.NewReader([]byte("ID3\x03nope, not a wav")))
	require.Error(t, err)
}
