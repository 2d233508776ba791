// Package notify sends best-effort desktop notifications for session
// status changes. Failures are swallowed: a missing notifier must never
// affect the recording flow.
package notify

import (
	"context"
	"fmt"
	"io"
	"os/exec"
	"runtime"
	"time"
)

const sendTimeout = 2 * time.Second

type Notifier struct {
	enabled bool
	sendFn  func(ctx context.Context, title, body string) error
}

func New(enabled bool) *Notifier {
	return &Notifier{enabled: enabled, sendFn: send}
}

func (n *Notifier) Send(ctx context.Context, title, body string) {
	if n == nil || !n.enabled {
		return
	}
	_ = n.sendFn(ctx, title, body)
}

func send(ctx context.Context, title, body string) error {
	sendCtx, cancel := context.WithTimeout(ctx, sendTimeout)
	defer cancel()

	var cmd *exec.Cmd
	switch runtime.GOOS {
	case "darwin":
		script := fmt.Sprintf("display notification %q with title %q", body, title)
		cmd = exec.CommandContext(sendCtx, "osascript", "-e", script)
	default:
		if _, err := exec.LookPath("notify-send"); err != nil {
			return err
		}
		cmd = exec.CommandContext(sendCtx, "notify-send", "--app-name", "voxkey", title, body)
	}

	cmd.Stdout = io.Discard
	cmd.Stderr = io.Discard
	return cmd.Run()
}
