// Package hotkey turns global key activity into push-to-talk down/up events.
// Sources only post events on a channel and never perform blocking work;
// the session orchestrator owns everything that can take time.
package hotkey

import (
	"context"
	"errors"
	"time"
)

var (
	ErrPermissionDenied  = errors.New("no permission to read input events")
	ErrNoSourceAvailable = errors.New("no hotkey source available")
)

type EventType int

const (
	EventDown EventType = iota
	EventUp
)

func (t EventType) String() string {
	if t == EventDown {
		return "down"
	}
	return "up"
}

type Event struct {
	Type EventType
	Time time.Time
}

// Source produces hotkey events. Implementations must never block on the
// events channel: if the consumer lags, events are dropped, not queued.
type Source interface {
	Start(ctx context.Context) error
	Events() <-chan Event
	Close() error
}
