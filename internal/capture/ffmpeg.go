package capture

import (
	"context"
	"errors"
	"strconv"
	"strings"
)

type ffmpegBackend struct {
	format       string
	defaultInput string
}

func newFFMPEGBackend(format, defaultInput string) Backend {
	return &ffmpegBackend{format: format, defaultInput: defaultInput}
}

func (b *ffmpegBackend) Name() string {
	return "ffmpeg"
}

func (b *ffmpegBackend) Available() bool {
	return commandAvailable("ffmpeg")
}

func (b *ffmpegBackend) Open(ctx context.Context, cfg StreamConfig) (Stream, error) {
	input := cfg.Device
	if input == "" {
		input = b.defaultInput
	}

	args := []string{
		"-nostdin", "-hide_banner", "-loglevel", "error",
		"-f", b.format, "-i", input,
		"-ac", strconv.Itoa(cfg.Channels),
		"-ar", strconv.Itoa(cfg.SampleRate),
		"-f", "s16le",
		"pipe:1",
	}

	return startExecStream(ctx, "ffmpeg", args...)
}

func (b *ffmpegBackend) ListDevices(ctx context.Context) (string, error) {
	var sections []string

	if commandAvailable("pactl") {
		if out, err := commandOutput(ctx, "pactl", "list", "short", "sources"); err == nil {
			sections = append(sections, "PulseAudio/PipeWire sources:\n"+out)
		}
	}

	if commandAvailable("arecord") {
		if out, err := commandOutput(ctx, "arecord", "-L"); err == nil {
			sections = append(sections, "ALSA devices:\n"+out)
		}
	}

	if len(sections) == 0 {
		return "", errors.New("no device listing command available")
	}

	return strings.Join(sections, "\n\n"), nil
}
