package cli

import (
	"os"
	"path/filepath"
	"strings"
	"time"

	"go.uber.org/zap"

	"github.com/fmueller/voxkey/internal/platform"
)

const staleRecordingAge = 24 * time.Hour

// cleanupStaleRecordings removes leftover engine scratch files and old
// recordings from previous runs that crashed before cleaning up.
func cleanupStaleRecordings(logger *zap.Logger, now time.Time) {
	removed := 0
	removed += removeStaleFiles(os.TempDir(), "voxkey-", now, logger)

	if recordingDir, err := platform.ResolveRecordingDir(); err == nil {
		removed += removeStaleFiles(recordingDir, "", now, logger)
	}

	if removed > 0 {
		logger.Info("removed stale recording files", zap.Int("count", removed))
	}
}

func removeStaleFiles(dir, prefix string, now time.Time, logger *zap.Logger) int {
	entries, err := os.ReadDir(dir)
	if err != nil {
		return 0
	}

	removed := 0
	for _, entry := range entries {
		if entry.IsDir() {
			continue
		}
		name := entry.Name()
		if prefix != "" && !strings.HasPrefix(name, prefix) {
			continue
		}
		switch strings.ToLower(filepath.Ext(name)) {
		case ".wav", ".txt", ".json":
		default:
			continue
		}

		info, err := entry.Info()
		if err != nil {
			continue
		}
		if now.Sub(info.ModTime()) < staleRecordingAge {
			continue
		}

		path := filepath.Join(dir, name)
		if err := os.Remove(path); err != nil {
			logger.Debug("failed to remove stale file", zap.String("path", path), zap.Error(err))
			continue
		}
		removed++
	}

	return removed
}
