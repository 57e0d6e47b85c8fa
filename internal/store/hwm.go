// Package store persists the high-water mark: the largest block token total
// ever observed, cached locally to raise the effective display limit.
package store

import (
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"
)

// HighWaterPath returns the platform-appropriate cache file location.
func HighWaterPath() string {
	if xdg := os.Getenv("XDG_CACHE_HOME"); xdg != "" {
		return filepath.Join(xdg, "ccpulse", "highwater")
	}
	home, _ := os.UserHomeDir()
	return filepath.Join(home, ".cache", "ccpulse", "highwater")
}

// LoadHighWater reads the stored value. A missing file reads as 0 without
// error; a malformed file also reads as 0, since the cache is best-effort
// and the next save repairs it.
func LoadHighWater(path string) (int64, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return 0, nil
		}
		return 0, err
	}
	n, err := strconv.ParseInt(strings.TrimSpace(string(data)), 10, 64)
	if err != nil {
		return 0, nil
	}
	return n, nil
}

// SaveHighWater overwrites the stored value.
func SaveHighWater(path string, value int64) error {
	if err := os.MkdirAll(filepath.Dir(path), 0o750); err != nil {
		return fmt.Errorf("creating cache dir: %w", err)
	}
	return os.WriteFile(path, []byte(strconv.FormatInt(value, 10)+"\n"), 0o600)
}

// Advance raises the stored value to candidate if it is higher, returning
// the effective (possibly raised) value. Save errors are returned but the
// value is still advanced in memory; losing a write is acceptable here.
func Advance(path string, stored, candidate int64) (int64, error) {
	if candidate <= stored {
		return stored, nil
	}
	return candidate, SaveHighWater(path, candidate)
}
