package logging

import (
	"log/slog"
	"os"
	"path/filepath"
	"time"
)

// PruneResult lists what PruneLogs removed.
type PruneResult struct {
	Removed []string
}

// PruneLogs removes files in dir whose names match pattern and whose
// modification time is older than retentionDays. keep is never removed. A
// retentionDays of zero or less disables pruning.
func PruneLogs(logger *slog.Logger, dir, pattern string, retentionDays int, keep ...string) PruneResult {
	var result PruneResult
	if retentionDays <= 0 || dir == "" {
		return result
	}
	cutoff := time.Now().AddDate(0, 0, -retentionDays)

	kept := make(map[string]struct{}, len(keep))
	for _, path := range keep {
		kept[filepath.Clean(path)] = struct{}{}
	}

	matches, err := filepath.Glob(filepath.Join(dir, pattern))
	if err != nil {
		return result
	}
	for _, path := range matches {
		if _, skip := kept[filepath.Clean(path)]; skip {
			continue
		}
		info, err := os.Lstat(path)
		if err != nil || !info.Mode().IsRegular() || !info.ModTime().Before(cutoff) {
			continue
		}
		if err := os.Remove(path); err != nil {
			WarnWithContext(logger, "log retention remove failed; file remains", "log_retention_failed",
				String("path", path),
				Error(err),
				String(FieldErrorHint, "check file permissions and log_dir ownership"),
				String(FieldImpact, "old log file remains on disk"),
			)
			continue
		}
		result.Removed = append(result.Removed, path)
		if logger != nil {
			logger.Debug("log pruned", String("path", path), String(FieldEventType, "log_pruned"))
		}
	}
	return result
}
