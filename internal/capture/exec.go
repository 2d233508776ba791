package capture

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"os/exec"
	"strings"
	"sync"
)

// execStream adapts a capture process writing raw PCM to stdout.
type execStream struct {
	cmd *exec.Cmd
	out io.ReadCloser

	interruptOnce sync.Once
	waitOnce      sync.Once
	waitErr       error
}

func startExecStream(ctx context.Context, name string, args ...string) (*execStream, error) {
	cmd := exec.CommandContext(ctx, name, args...)
	cmd.Stderr = io.Discard

	out, err := cmd.StdoutPipe()
	if err != nil {
		return nil, fmt.Errorf("open %s stdout: %w", name, err)
	}

	if err := cmd.Start(); err != nil {
		return nil, fmt.Errorf("start %s: %w", name, err)
	}

	return &execStream{cmd: cmd, out: out}, nil
}

func (s *execStream) Read(p []byte) (int, error) {
	return s.out.Read(p)
}

func (s *execStream) Interrupt() error {
	var err error
	s.interruptOnce.Do(func() {
		if signalErr := s.cmd.Process.Signal(os.Interrupt); signalErr != nil {
			err = s.cmd.Process.Kill()
		}
	})
	return err
}

// Wait reaps the process after the reader drained stdout. An exit caused by
// our own stop signal is not an error.
func (s *execStream) Wait() error {
	s.waitOnce.Do(func() {
		s.waitErr = s.cmd.Wait()
		if s.waitErr != nil && signalExit(s.waitErr) {
			s.waitErr = nil
		}
	})
	return s.waitErr
}

func signalExit(err error) bool {
	var exitErr *exec.ExitError
	if !errors.As(err, &exitErr) {
		return false
	}
	return exitErr.ExitCode() == -1
}

func commandAvailable(name string) bool {
	_, err := exec.LookPath(name)
	return err == nil
}

func commandOutput(ctx context.Context, name string, args ...string) (string, error) {
	cmd := exec.CommandContext(ctx, name, args...)
	out, err := cmd.CombinedOutput()
	trimmed := strings.TrimSpace(string(out))
	if err != nil {
		if trimmed != "" {
			return "", fmt.Errorf("%s %s failed: %w (%s)", name, strings.Join(args, " "), err, trimmed)
		}
		return "", fmt.Errorf("%s %s failed: %w", name, strings.Join(args, " "), err)
	}
	return trimmed, nil
}
