package capture

import (
	"context"
	"strconv"
)

type pipeWireBackend struct{}

func newPipeWireBackend() Backend {
	return &pipeWireBackend{}
}

func (b *pipeWireBackend) Name() string {
	return "pw-record"
}

func (b *pipeWireBackend) Available() bool {
	return commandAvailable("pw-record")
}

func (b *pipeWireBackend) Open(ctx context.Context, cfg StreamConfig) (Stream, error) {
	args := []string{
		"--rate", strconv.Itoa(cfg.SampleRate),
		"--channels", strconv.Itoa(cfg.Channels),
		"--format", "s16",
	}
	if cfg.Device != "" {
		args = append(args, "--target", cfg.Device)
	}
	args = append(args, "-")

	return startExecStream(ctx, "pw-record", args...)
}

func (b *pipeWireBackend) ListDevices(ctx context.Context) (string, error) {
	if commandAvailable("pactl") {
		return commandOutput(ctx, "pactl", "list", "short", "sources")
	}
	return commandOutput(ctx, "pw-cli", "list-objects", "Node")
}
