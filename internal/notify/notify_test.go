package notify

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestSendSkippedWhenDisabled(t *testing.T) {
	t.Parallel()

	n := New(false)
	called := false
	n.sendFn = func(context.Context, string, string) error {
		called = true
		return nil
	}

	n.Send(context.Background(), "title", "body")
	require.False(t, called)
}

func TestSendSwallowsFailure(t *testing.T) {
	t.Parallel()

	n := New(true)
	n.sendFn = func(context.Context, string, string) error {
		return errors.New("no notifier on this desktop")
	}

	// Must not panic or propagate.
	n.Send(context.Background(), "title", "body")
}

func TestSendOnNilNotifier(t *testing.T) {
	t.Parallel()

	var n *Notifier
	n.Send(context.Background(), "title", "body")
}
