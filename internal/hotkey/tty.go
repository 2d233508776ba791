package hotkey

import (
	"context"
	"fmt"
	"os"
	"sync"
	"time"

	"go.uber.org/zap"
	"golang.org/x/term"

	"github.com/fmueller/voxkey/internal/logging"
)

// TTYSource is the fallback hotkey source for sessions without input-device
// access: the terminal is put into raw mode and the bound key toggles the
// push-to-talk state, since terminals cannot report key releases. Ctrl-C or
// q ends the source.
type TTYSource struct {
	in     *os.File
	key    byte
	logger *zap.Logger
	events chan Event

	mu      sync.Mutex
	restore func()
	held    bool
	closed  bool
}

func NewTTYSource(key byte, logger *zap.Logger) *TTYSource {
	if key == 0 {
		key = ' '
	}
	return &TTYSource{
		in:     os.Stdin,
		key:    key,
		logger: logging.OrNop(logger),
		events: make(chan Event, 1),
	}
}

func (s *TTYSource) Events() <-chan Event {
	return s.events
}

func (s *TTYSource) Start(ctx context.Context) error {
	fd := int(s.in.Fd())
	if !term.IsTerminal(fd) {
		return fmt.Errorf("%w: stdin is not a terminal", ErrNoSourceAvailable)
	}

	oldState, err := term.MakeRaw(fd)
	if err != nil {
		return fmt.Errorf("enter raw terminal mode: %w", err)
	}

	s.mu.Lock()
	s.restore = func() { _ = term.Restore(fd, oldState) }
	s.mu.Unlock()

	fmt.Fprintf(os.Stderr, "Press %s to start/stop recording, q to quit.\r\n", keyLabel(s.key))

	go s.readLoop(ctx)
	return nil
}

func (s *TTYSource) Close() error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.restore != nil {
		s.restore()
		s.restore = nil
	}
	if !s.closed {
		s.closed = true
		close(s.events)
	}
	return nil
}

func (s *TTYSource) readLoop(ctx context.Context) {
	buf := make([]byte, 1)
	for {
		if ctx.Err() != nil {
			_ = s.Close()
			return
		}

		n, err := s.in.Read(buf)
		if err != nil {
			_ = s.Close()
			return
		}
		if n == 0 {
			continue
		}

		switch buf[0] {
		case s.key:
			s.toggle()
		case 'q', 0x03: // q or Ctrl-C
			s.logger.Debug("tty hotkey source quitting")
			_ = s.Close()
			return
		}
	}
}

func (s *TTYSource) toggle() {
	s.mu.Lock()
	if s.closed {
		s.mu.Unlock()
		return
	}
	s.held = !s.held
	eventType := EventUp
	if s.held {
		eventType = EventDown
	}

	// Non-blocking post under the lock so Close cannot close the channel
	// between the closed check and the send.
	select {
	case s.events <- Event{Type: eventType, Time: time.Now()}:
	default:
	}
	s.mu.Unlock()
}

func keyLabel(key byte) string {
	if key == ' ' {
		return "space"
	}
	return string(rune(key))
}
