//go:build linux

package hotkey

import (
	"context"
	"encoding/binary"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"sync"
	"time"

	"go.uber.org/zap"

	"github.com/fmueller/voxkey/internal/logging"
)

const (
	evKey = 0x01

	keyValueRelease = 0
	keyValuePress   = 1
	keyValueRepeat  = 2
)

// inputEvent mirrors struct input_event for 64-bit kernels.
type inputEvent struct {
	Sec   int64
	Usec  int64
	Type  uint16
	Code  uint16
	Value int32
}

const inputEventSize = 24

// keyNames maps linux input-event key codes to normalized chord key names.
// Left/right modifier variants collapse to one name.
var keyNames = map[uint16]string{
	1: "esc", 14: "backspace", 15: "tab", 28: "enter", 57: "space",
	29: "ctrl", 97: "ctrl",
	42: "shift", 54: "shift",
	56: "alt", 100: "alt",
	125: "super", 126: "super",
	102: "home", 107: "end", 104: "pageup", 109: "pagedown",
	110: "insert", 111: "delete",
	103: "up", 108: "down", 105: "left", 106: "right",
	2: "1", 3: "2", 4: "3", 5: "4", 6: "5", 7: "6", 8: "7", 9: "8", 10: "9", 11: "0",
	16: "q", 17: "w", 18: "e", 19: "r", 20: "t", 21: "y", 22: "u", 23: "i", 24: "o", 25: "p",
	30: "a", 31: "s", 32: "d", 33: "f", 34: "g", 35: "h", 36: "j", 37: "k", 38: "l",
	44: "z", 45: "x", 46: "c", 47: "v", 48: "b", 49: "n", 50: "m",
	59: "f1", 60: "f2", 61: "f3", 62: "f4", 63: "f5", 64: "f6",
	65: "f7", 66: "f8", 67: "f9", 68: "f10", 87: "f11", 88: "f12",
}

// EvdevSource reads raw key events from /dev/input. It requires read
// access to the event devices (typically membership in the input group).
type EvdevSource struct {
	chord   Chord
	logger  *zap.Logger
	tracker *chordTracker

	// Single-slot channel: the listener posts without ever blocking and
	// drops the event if the orchestrator has not consumed the last one.
	events chan Event

	mu      sync.Mutex
	devices []*os.File
	cancel  context.CancelFunc
	wg      sync.WaitGroup
}

func NewEvdevSource(chord Chord, logger *zap.Logger) *EvdevSource {
	return &EvdevSource{
		chord:   chord,
		logger:  logging.OrNop(logger),
		tracker: newChordTracker(chord),
		events:  make(chan Event, 1),
	}
}

// CanReadInputDevices is the permission gate for global hotkeys: it
// reports whether this process can open at least one input event device.
func CanReadInputDevices() bool {
	paths, err := filepath.Glob("/dev/input/event*")
	if err != nil {
		return false
	}

	for _, path := range paths {
		f, err := os.Open(path)
		if err == nil {
			_ = f.Close()
			return true
		}
	}

	return false
}

func (s *EvdevSource) Events() <-chan Event {
	return s.events
}

func (s *EvdevSource) Start(ctx context.Context) error {
	paths, err := filepath.Glob("/dev/input/event*")
	if err != nil {
		return fmt.Errorf("list input devices: %w", err)
	}

	var devices []*os.File
	for _, path := range paths {
		f, openErr := os.Open(path)
		if openErr != nil {
			continue
		}
		devices = append(devices, f)
	}

	if len(devices) == 0 {
		return fmt.Errorf("%w: cannot open any /dev/input/event* device (add your user to the input group)", ErrPermissionDenied)
	}

	runCtx, cancel := context.WithCancel(ctx)

	s.mu.Lock()
	s.devices = devices
	s.cancel = cancel
	s.mu.Unlock()

	for _, device := range devices {
		s.wg.Add(1)
		go s.readDevice(runCtx, device)
	}

	s.logger.Debug("hotkey listener started",
		zap.String("chord", s.chord.String()),
		zap.Int("devices", len(devices)))
	return nil
}

func (s *EvdevSource) Close() error {
	s.mu.Lock()
	cancel := s.cancel
	devices := s.devices
	s.cancel = nil
	s.devices = nil
	s.mu.Unlock()

	if cancel != nil {
		cancel()
	}
	for _, device := range devices {
		_ = device.Close()
	}
	s.wg.Wait()
	return nil
}

func (s *EvdevSource) readDevice(ctx context.Context, device *os.File) {
	defer s.wg.Done()

	raw := make([]byte, inputEventSize)
	for {
		if ctx.Err() != nil {
			return
		}

		if _, err := io.ReadFull(device, raw); err != nil {
			// Device closed or unplugged; the other readers keep going.
			return
		}

		ev := decodeInputEvent(raw)
		if ev.Type != evKey {
			continue
		}

		name, known := keyNames[ev.Code]
		if !known {
			continue
		}

		switch ev.Value {
		case keyValuePress:
			if s.tracker.press(name) {
				s.post(Event{Type: EventDown, Time: time.Now()})
			}
		case keyValueRelease:
			if s.tracker.release(name) {
				s.post(Event{Type: EventUp, Time: time.Now()})
			}
		case keyValueRepeat:
			// Repeats keep the chord held; no edge to report.
		}
	}
}

// post never blocks: liveness of the listener outranks event delivery.
func (s *EvdevSource) post(ev Event) {
	select {
	case s.events <- ev:
	default:
		s.logger.Debug("hotkey event dropped", zap.Stringer("type", ev.Type))
	}
}

func decodeInputEvent(raw []byte) inputEvent {
	return inputEvent{
		Sec:   int64(binary.LittleEndian.Uint64(raw[0:8])),
		Usec:  int64(binary.LittleEndian.Uint64(raw[8:16])),
		Type:  binary.LittleEndian.Uint16(raw[16:18]),
		Code:  binary.LittleEndian.Uint16(raw[18:20]),
		Value: int32(binary.LittleEndian.Uint32(raw[20:24])),
	}
}
