package capture

import (
	"context"
	"errors"
	"fmt"
	"io"
	"runtime"
)

var ErrNoBackendAvailable = errors.New("no capture backend available")

// StreamConfig describes the PCM stream a backend must produce: raw
// little-endian 16-bit samples on its Read side, no container framing.
type StreamConfig struct {
	SampleRate int
	Channels   int
	Device     string
}

// Stream is a live microphone stream. Interrupt asks the underlying process
// to stop; the reader then drains to EOF and calls Wait to reap it.
type Stream interface {
	io.Reader
	Interrupt() error
	Wait() error
}

type Backend interface {
	Name() string
	Available() bool
	Open(ctx context.Context, cfg StreamConfig) (Stream, error)
	ListDevices(ctx context.Context) (string, error)
}

func DefaultBackends(goos string) []Backend {
	switch goos {
	case "linux":
		return []Backend{newPipeWireBackend(), newALSABackend(), newFFMPEGBackend("pulse", "default")}
	case "darwin":
		return []Backend{newFFMPEGBackend("avfoundation", ":0")}
	default:
		return nil
	}
}

// SelectBackend picks the preferred backend when named, otherwise the first
// available one in priority order.
func SelectBackend(backends []Backend, preferred string) (Backend, error) {
	if len(backends) == 0 {
		return nil, errors.New("no backends configured")
	}

	if preferred != "" && preferred != "auto" {
		for _, backend := range backends {
			if backend.Name() == preferred {
				if !backend.Available() {
					return nil, fmt.Errorf("requested backend %q is not available", preferred)
				}
				return backend, nil
			}
		}
		return nil, fmt.Errorf("unknown backend %q", preferred)
	}

	for _, backend := range backends {
		if backend.Available() {
			return backend, nil
		}
	}

	return nil, ErrNoBackendAvailable
}

func NewBackend(preferred string) (Backend, error) {
	backends := DefaultBackends(runtime.GOOS)
	if len(backends) == 0 {
		return nil, fmt.Errorf("unsupported OS: %s", runtime.GOOS)
	}
	return SelectBackend(backends, preferred)
}
