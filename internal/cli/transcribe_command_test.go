package cli

import (
	"bytes"
	"context"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/fmueller/voxkey/internal/audio"
)

func TestTranscribeCommandSkipsCopyForBlankTranscript(t *testing.T) {
	t.Parallel()

	out := new(bytes.Buffer)
	copyCalls := 0

	app := &appState{
		transcribeFn: func(_ context.Context, _ string) (string, error) {
			return "[BLANK_AUDIO]", nil
		},
		copyFn: func(_ context.Context, _ string) error {
			copyCalls++
			return nil
		},
	}

	cmd := newTranscribeCmd(app)
	cmd.SetOut(out)
	cmd.SetErr(out)
	cmd.SetArgs([]string{"--copy", "/tmp/audio.wav"})

	err := cmd.Execute()
	require.NoError(t, err)
	require.Equal(t, 0, copyCalls)
	require.Equal(t, "[BLANK_AUDIO]\n", out.String())
}

func TestTranscribeCommandCopiesBlankWhenCopyEmptyEnabled(t *testing.T) {
	t.Parallel()

	out := new(bytes.Buffer)
	copyCalls := 0

	app := &appState{
		copyEmpty: true,
		transcribeFn: func(_ context.Context, _ string) (string, error) {
			return "[BLANK_AUDIO]", nil
		},
		copyFn: func(_ context.Context, _ string) error {
			copyCalls++
			return nil
		},
	}

	cmd := newTranscribeCmd(app)
	cmd.SetOut(out)
	cmd.SetErr(out)
	cmd.SetArgs([]string{"--copy", "/tmp/audio.wav"})

	err := cmd.Execute()
	require.NoError(t, err)
	require.Equal(t, 1, copyCalls)
	require.Equal(t, "[BLANK_AUDIO]\n", out.String())
}

func TestTranscribeAudioSilenceGateShortCircuits(t *testing.T) {
	t.Parallel()

	wavPath := filepath.Join(t.TempDir(), "silent.wav")
	silent := audio.NewBuffer(make([]int16, audio.SampleRate), audio.SampleRate, audio.Channels)
	require.NoError(t, audio.WriteWAVFile(wavPath, silent))

	app := &appState{silenceGate: true, silenceDBFS: -55}

	transcript, err := app.transcribeAudio(context.Background(), wavPath)
	require.NoError(t, err)
	require.Equal(t, blankAudioToken, transcript)
}

func TestTranscribeAudioMissingFile(t *testing.T) {
	t.Parallel()

	app := &appState{}
	_, err := app.transcribeAudio(context.Background(), filepath.Join(t.TempDir(), "nope.wav"))
	require.Error(t, err)
	require.Contains(t, err.Error(), "audio file not found")
}
