package capture

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/require"
)

type stubBackend struct {
	name      string
	available bool
}

func (s stubBackend) Name() string                                 { return s.name }
func (s stubBackend) Available() bool                              { return s.available }
func (s stubBackend) Open(context.Context, StreamConfig) (Stream, error) { return nil, nil }
func (s stubBackend) ListDevices(context.Context) (string, error)  { return "", nil }

func TestSelectBackendUsesPriorityOrder(t *testing.T) {
	t.Parallel()

	backend, err := SelectBackend([]Backend{
		stubBackend{name: "pw-record", available: false},
		stubBackend{name: "arecord", available: true},
		stubBackend{name: "ffmpeg", available: true},
	}, "auto")
	require.NoError(t, err)
	require.Equal(t, "arecord", backend.Name())
}

func TestSelectBackendUsesPreferredWhenAvailable(t *testing.T) {
	t.Parallel()

	backend, err := SelectBackend([]Backend{
		stubBackend{name: "pw-record", available: true},
		stubBackend{name: "arecord", available: true},
	}, "arecord")
	require.NoError(t, err)
	require.Equal(t, "arecord", backend.Name())
}

func TestSelectBackendRejectsUnavailablePreferred(t *testing.T) {
	t.Parallel()

	_, err := SelectBackend([]Backend{
		stubBackend{name: "pw-record", available: false},
	}, "pw-record")
	require.Error(t, err)
}

func TestSelectBackendRejectsUnknownPreferred(t *testing.T) {
	t.Parallel()

	_, err := SelectBackend([]Backend{
		stubBackend{name: "arecord", available: true},
	}, "jackd")
	require.Error(t, err)
}

func TestSelectBackendNoneAvailable(t *testing.T) {
	t.Parallel()

	_, err := SelectBackend([]Backend{
		stubBackend{name: "pw-record", available: false},
		stubBackend{name: "arecord", available: false},
	}, "auto")
	require.True(t, errors.Is(err, ErrNoBackendAvailable))
}

func TestDefaultBackendsLinuxOrder(t *testing.T) {
	t.Parallel()

	backends := DefaultBackends("linux")
	require.Len(t, backends, 3)
	require.Equal(t, "pw-record", backends[0].Name())
	require.Equal(t, "arecord", backends[1].Name())
	require.Equal(t, "ffmpeg", backends[2].Name())
}

func TestDefaultBackendsUnsupportedOS(t *testing.T) {
	t.Parallel()

	require.Nil(t, DefaultBackends("windows"))
}
