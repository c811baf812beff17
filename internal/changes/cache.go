package changes

import (
	"os"
	"strings"

	"github.com/natefinch/atomic"
)

// CachedCommit reads the last imported commit hash. The second return is
// false when no prior run has been recorded.
func (d *Detector) CachedCommit() (string, bool) {
	data, err := os.ReadFile(d.cfg.CacheFile)
	if err != nil {
		return "", false
	}
	commit := strings.TrimSpace(string(data))
	if commit == "" {
		return "", false
	}
	return commit, true
}

// UpdateCache records commit as the last imported one. Empty commits are
// ignored so a failed HEAD read can never clobber a valid cache.
func (d *Detector) UpdateCache(commit string) error {
	if commit == "" {
		return nil
	}
	return atomic.WriteFile(d.cfg.CacheFile, strings.NewReader(commit))
}
