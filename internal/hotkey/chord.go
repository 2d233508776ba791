package hotkey

import (
	"fmt"
	"sort"
	"strings"
	"sync"
)

// DefaultChord is the push-to-talk binding used when none is configured.
const DefaultChord = "ctrl+alt+r"

// Chord is a parsed key combination. Keys are normalized names: modifier
// variants collapse ("leftctrl" and "rightctrl" are both "ctrl").
type Chord struct {
	keys map[string]struct{}
}

// ParseChord parses a binding like "ctrl+alt+r" or "super+space".
func ParseChord(binding string) (Chord, error) {
	parts := strings.Split(strings.ToLower(strings.TrimSpace(binding)), "+")
	keys := make(map[string]struct{}, len(parts))

	for _, part := range parts {
		name, err := normalizeKeyName(strings.TrimSpace(part))
		if err != nil {
			return Chord{}, fmt.Errorf("parse hotkey %q: %w", binding, err)
		}
		keys[name] = struct{}{}
	}

	if len(keys) == 0 {
		return Chord{}, fmt.Errorf("parse hotkey %q: empty binding", binding)
	}

	return Chord{keys: keys}, nil
}

func (c Chord) String() string {
	names := make([]string, 0, len(c.keys))
	for name := range c.keys {
		names = append(names, name)
	}
	sort.Strings(names)
	return strings.Join(names, "+")
}

func (c Chord) contains(key string) bool {
	_, ok := c.keys[key]
	return ok
}

func normalizeKeyName(part string) (string, error) {
	switch part {
	case "":
		return "", fmt.Errorf("empty key")
	case "ctrl", "control":
		return "ctrl", nil
	case "alt":
		return "alt", nil
	case "shift":
		return "shift", nil
	case "super", "meta", "win", "cmd":
		return "super", nil
	}

	if len(part) == 1 {
		r := rune(part[0])
		if (r >= 'a' && r <= 'z') || (r >= '0' && r <= '9') {
			return part, nil
		}
		return "", fmt.Errorf("unsupported key %q", part)
	}

	if _, ok := namedKeys[part]; ok {
		return part, nil
	}

	return "", fmt.Errorf("unknown key %q", part)
}

var namedKeys = map[string]struct{}{
	"space": {}, "tab": {}, "enter": {}, "esc": {}, "backspace": {},
	"insert": {}, "delete": {}, "home": {}, "end": {}, "pageup": {}, "pagedown": {},
	"up": {}, "down": {}, "left": {}, "right": {},
	"f1": {}, "f2": {}, "f3": {}, "f4": {}, "f5": {}, "f6": {},
	"f7": {}, "f8": {}, "f9": {}, "f10": {}, "f11": {}, "f12": {},
}

// chordTracker watches the stream of raw key presses and releases and
// reports the chord's edge transitions. Key repeats keep the chord held
// without firing a second down.
type chordTracker struct {
	chord Chord

	mu      sync.Mutex
	pressed map[string]struct{}
	active  bool
}

func newChordTracker(chord Chord) *chordTracker {
	return &chordTracker{chord: chord, pressed: make(map[string]struct{})}
}

// press records a key press and reports whether the chord just activated.
func (t *chordTracker) press(key string) bool {
	t.mu.Lock()
	defer t.mu.Unlock()

	t.pressed[key] = struct{}{}
	if t.active {
		return false
	}

	for name := range t.chord.keys {
		if _, down := t.pressed[name]; !down {
			return false
		}
	}

	t.active = true
	return true
}

// release records a key release and reports whether the chord just released.
func (t *chordTracker) release(key string) bool {
	t.mu.Lock()
	defer t.mu.Unlock()

	delete(t.pressed, key)
	if !t.active || !t.chord.contains(key) {
		return false
	}

	t.active = false
	return true
}
