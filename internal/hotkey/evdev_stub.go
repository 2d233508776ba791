//go:build !linux

package hotkey

import (
	"context"

	"go.uber.org/zap"
)

// EvdevSource is linux-only; on other platforms the TTY source is used.
type EvdevSource struct {
	events chan Event
}

func NewEvdevSource(Chord, *zap.Logger) *EvdevSource {
	return &EvdevSource{events: make(chan Event)}
}

func CanReadInputDevices() bool {
	return false
}

func (s *EvdevSource) Events() <-chan Event {
	return s.events
}

func (s *EvdevSource) Start(context.Context) error {
	return ErrNoSourceAvailable
}

func (s *EvdevSource) Close() error {
	return nil
}
