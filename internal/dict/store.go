package dict

import (
	"errors"
	"io/fs"
	"os"
	"sync"
	"time"

	"go.uber.org/zap"
)

// Store holds the current dictionary snapshot and reloads it from disk when
// the file changes. Reload happens only when a snapshot is requested, so a
// running session never observes a config swap mid-flight.
type Store struct {
	path   string
	logger *zap.Logger

	mu      sync.Mutex
	current *Config
	modTime time.Time
	loaded  bool
}

func NewStore(path string, logger *zap.Logger) *Store {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Store{path: path, logger: logger}
}

func (s *Store) Path() string {
	return s.path
}

// Snapshot returns the active dictionary, reloading first if the file on
// disk changed since the last load. The returned config is immutable and
// safe for concurrent reads.
func (s *Store) Snapshot() *Config {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.needsReloadLocked() {
		s.reloadLocked()
	}

	if s.current == nil {
		s.current = Empty()
	}
	return s.current
}

// Reload forces a fresh load regardless of file modification time. A parse
// failure leaves an empty dictionary in place and returns the error.
func (s *Store) Reload() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.reloadLocked()
}

func (s *Store) needsReloadLocked() bool {
	if !s.loaded {
		return true
	}

	info, err := os.Stat(s.path)
	if err != nil {
		// File removed since last load: fall back to empty.
		return !errors.Is(err, fs.ErrNotExist) || !s.modTime.IsZero()
	}

	return !info.ModTime().Equal(s.modTime)
}

func (s *Store) reloadLocked() error {
	cfg, err := Load(s.path)
	s.current = cfg
	s.loaded = true
	s.modTime = time.Time{}
	if info, statErr := os.Stat(s.path); statErr == nil {
		s.modTime = info.ModTime()
	}

	if err != nil {
		s.logger.Warn("dictionary load failed; using empty dictionary",
			zap.String("path", s.path), zap.Error(err))
		return err
	}

	if !cfg.IsEmpty() {
		s.logger.Debug("dictionary loaded",
			zap.String("path", s.path),
			zap.Int("hotwords", len(cfg.hotwords)),
			zap.Int("replacements", len(cfg.rules)))
	}
	return nil
}
