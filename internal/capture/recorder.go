package capture

import (
	"context"
	"errors"
	"fmt"
	"io"
	"sync"

	"go.uber.org/zap"

	"github.com/fmueller/voxkey/internal/audio"
	"github.com/fmueller/voxkey/internal/logging"
)

var (
	ErrDeviceUnavailable = errors.New("capture device unavailable")
	ErrDeviceBusy        = errors.New("capture device already in use")
	ErrNotRecording      = errors.New("no recording in progress")
)

// Recorder owns the microphone for one recording at a time. Start spawns a
// capture goroutine that is the sole writer of the frame buffer; Stop joins
// it before reading, so the buffer never sees concurrent access.
type Recorder struct {
	backend Backend
	device  string
	logger  *zap.Logger

	mu  sync.Mutex
	run *captureRun
}

type captureRun struct {
	stream  Stream
	done    chan struct{}
	raw     []byte
	readErr error
}

func NewRecorder(backend Backend, device string, logger *zap.Logger) *Recorder {
	return &Recorder{backend: backend, device: device, logger: logging.OrNop(logger)}
}

// Start opens the capture stream and begins accumulating frames. It fails
// fast with ErrDeviceBusy if a recording is already running.
func (r *Recorder) Start(ctx context.Context) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if r.run != nil {
		return ErrDeviceBusy
	}

	stream, err := r.backend.Open(ctx, StreamConfig{
		SampleRate: audio.SampleRate,
		Channels:   audio.Channels,
		Device:     r.device,
	})
	if err != nil {
		return fmt.Errorf("%w: %w", ErrDeviceUnavailable, err)
	}

	run := &captureRun{stream: stream, done: make(chan struct{})}
	go run.consume()

	r.logger.Debug("capture started", zap.String("backend", r.backend.Name()))
	r.run = run
	return nil
}

// Stop halts capture and returns the finalized buffer. Calling Stop without
// a prior Start is a programming error and fails with ErrNotRecording.
func (r *Recorder) Stop() (*audio.Buffer, error) {
	r.mu.Lock()
	run := r.run
	r.run = nil
	r.mu.Unlock()

	if run == nil {
		return nil, ErrNotRecording
	}

	_ = run.stream.Interrupt()
	<-run.done

	if run.readErr != nil {
		return nil, fmt.Errorf("read capture stream: %w", run.readErr)
	}

	buf := audio.FromPCM16(run.raw, audio.SampleRate, audio.Channels)
	r.logger.Debug("capture stopped",
		zap.Int("samples", buf.Samples()),
		zap.Duration("duration", buf.Duration()))
	return buf, nil
}

// Abort stops any in-flight capture and discards its frames. Safe to call
// when idle; used on the shutdown path.
func (r *Recorder) Abort() {
	r.mu.Lock()
	run := r.run
	r.run = nil
	r.mu.Unlock()

	if run == nil {
		return
	}

	_ = run.stream.Interrupt()
	<-run.done
	r.logger.Debug("capture aborted", zap.Int("discarded_bytes", len(run.raw)))
}

// consume is the capture goroutine: it alone appends frames until the
// stream drains to EOF after an interrupt, then reaps the process.
func (run *captureRun) consume() {
	defer close(run.done)

	chunk := make([]byte, 8192)
	for {
		n, err := run.stream.Read(chunk)
		if n > 0 {
			run.raw = append(run.raw, chunk[:n]...)
		}
		if err != nil {
			if !errors.Is(err, io.EOF) {
				run.readErr = err
			}
			break
		}
	}

	if err := run.stream.Wait(); err != nil && run.readErr == nil && len(run.raw) == 0 {
		run.readErr = err
	}
}
