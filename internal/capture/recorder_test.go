package capture

import (
	"context"
	"errors"
	"io"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/fmueller/voxkey/internal/audio"
)

// fakeStream feeds canned PCM chunks and drains to EOF once interrupted.
type fakeStream struct {
	mu          sync.Mutex
	chunks      [][]byte
	interrupted bool
	readErr     error
	waitErr     error
}

func (s *fakeStream) Read(p []byte) (int, error) {
	for {
		s.mu.Lock()
		if len(s.chunks) > 0 {
			n := copy(p, s.chunks[0])
			s.chunks = s.chunks[1:]
			s.mu.Unlock()
			return n, nil
		}
		if s.readErr != nil {
			err := s.readErr
			s.mu.Unlock()
			return 0, err
		}
		if s.interrupted {
			s.mu.Unlock()
			return 0, io.EOF
		}
		s.mu.Unlock()
		time.Sleep(time.Millisecond)
	}
}

func (s *fakeStream) Interrupt() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.interrupted = true
	return nil
}

func (s *fakeStream) Wait() error { return s.waitErr }

type fakeBackend struct {
	stream  Stream
	openErr error
	opens   int
}

func (b *fakeBackend) Name() string    { return "fake" }
func (b *fakeBackend) Available() bool { return true }
func (b *fakeBackend) Open(context.Context, StreamConfig) (Stream, error) {
	b.opens++
	if b.openErr != nil {
		return nil, b.openErr
	}
	return b.stream, nil
}
func (b *fakeBackend) ListDevices(context.Context) (string, error) { return "", nil }

func pcmChunk(samples int) []byte {
	out := make([]byte, samples*audio.BytesPerSample)
	for i := 0; i < samples; i++ {
		out[i*2] = 0x10
		out[i*2+1] = 0x01
	}
	return out
}

func TestRecorderStartStopCollectsSamples(t *testing.T) {
	t.Parallel()

	stream := &fakeStream{chunks: [][]byte{pcmChunk(160), pcmChunk(160)}}
	rec := NewRecorder(&fakeBackend{stream: stream}, "", nil)

	require.NoError(t, rec.Start(context.Background()))
	time.Sleep(20 * time.Millisecond)

	buf, err := rec.Stop()
	require.NoError(t, err)
	require.Equal(t, 320, buf.Samples())
	require.Equal(t, audio.SampleRate, buf.SampleRate())
}

func TestRecorderStopWithoutStart(t *testing.T) {
	t.Parallel()

	rec := NewRecorder(&fakeBackend{stream: &fakeStream{}}, "", nil)
	_, err := rec.Stop()
	require.ErrorIs(t, err, ErrNotRecording)
}

func TestRecorderStartTwiceIsBusy(t *testing.T) {
	t.Parallel()

	backend := &fakeBackend{stream: &fakeStream{}}
	rec := NewRecorder(backend, "", nil)

	require.NoError(t, rec.Start(context.Background()))
	err := rec.Start(context.Background())
	require.ErrorIs(t, err, ErrDeviceBusy)
	require.Equal(t, 1, backend.opens)

	rec.Abort()
}

func TestRecorderStartMapsOpenFailure(t *testing.T) {
	t.Parallel()

	rec := NewRecorder(&fakeBackend{openErr: errors.New("no such device")}, "", nil)
	err := rec.Start(context.Background())
	require.ErrorIs(t, err, ErrDeviceUnavailable)
}

func TestRecorderStopSurfacesReadFailure(t *testing.T) {
	t.Parallel()

	stream := &fakeStream{readErr: errors.New("stream torn down")}
	rec := NewRecorder(&fakeBackend{stream: stream}, "", nil)

	require.NoError(t, rec.Start(context.Background()))
	_, err := rec.Stop()
	require.Error(t, err)
}

func TestRecorderAbortIsIdempotent(t *testing.T) {
	t.Parallel()

	rec := NewRecorder(&fakeBackend{stream: &fakeStream{}}, "", nil)
	rec.Abort()

	require.NoError(t, rec.Start(context.Background()))
	rec.Abort()
	rec.Abort()

	_, err := rec.Stop()
	require.ErrorIs(t, err, ErrNotRecording)
}

func TestRecorderCanStartAgainAfterStop(t *testing.T) {
	t.Parallel()

	backend := &fakeBackend{stream: &fakeStream{chunks: [][]byte{pcmChunk(16)}}}
	rec := NewRecorder(backend, "", nil)

	require.NoError(t, rec.Start(context.Background()))
	_, err := rec.Stop()
	require.NoError(t, err)

	backend.stream = &fakeStream{chunks: [][]byte{pcmChunk(16)}}
	require.NoError(t, rec.Start(context.Background()))
	buf, err := rec.Stop()
	require.NoError(t, err)
	require.Equal(t, 16, buf.Samples())
}
