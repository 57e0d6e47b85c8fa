package config

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"time"
)

// Preferences holds the monitor's tunable thresholds and limits, persisted
// as a JSON object. Fields absent from the file keep their defaults.
type Preferences struct {
	// TokenLimit is the displayed per-window quota. The effective limit may
	// be raised above it by the high-water mark.
	TokenLimit int64 `json:"tokenLimit"`

	// ContextTokenLimit is the context-window ceiling for the context gauge.
	ContextTokenLimit int64 `json:"contextTokenLimit"`

	RefreshIntervalMs int     `json:"refreshIntervalMs"`
	WindowHours       float64 `json:"windowHours"`

	// Burn-rate indicator thresholds, in non-cache tokens per minute.
	BurnWarnTokensPerMin float64 `json:"burnWarnTokensPerMin"`
	BurnCritTokensPerMin float64 `json:"burnCritTokensPerMin"`

	// Warn/critical percentage thresholds (0-100) per gauge.
	TimeWarnPct    float64 `json:"timeWarnPct"`
	TimeCritPct    float64 `json:"timeCritPct"`
	UsageWarnPct   float64 `json:"usageWarnPct"`
	UsageCritPct   float64 `json:"usageCritPct"`
	ContextWarnPct float64 `json:"contextWarnPct"`
	ContextCritPct float64 `json:"contextCritPct"`

	Debug bool `json:"debug"`
}

// DefaultPreferences returns the documented defaults.
func DefaultPreferences() Preferences {
	return Preferences{
		TokenLimit:           220_000,
		ContextTokenLimit:    200_000,
		RefreshIntervalMs:    1000,
		WindowHours:          5,
		BurnWarnTokensPerMin: 300,
		BurnCritTokensPerMin: 1000,
		TimeWarnPct:          75,
		TimeCritPct:          90,
		UsageWarnPct:         75,
		UsageCritPct:         90,
		ContextWarnPct:       70,
		ContextCritPct:       90,
	}
}

// Window returns the preferences' window duration.
func (p Preferences) Window() time.Duration {
	if p.WindowHours <= 0 {
		return 5 * time.Hour
	}
	return time.Duration(p.WindowHours * float64(time.Hour))
}

// RefreshInterval returns the refresh delay between monitor cycles.
func (p Preferences) RefreshInterval() time.Duration {
	if p.RefreshIntervalMs < 100 {
		return time.Second
	}
	return time.Duration(p.RefreshIntervalMs) * time.Millisecond
}

// PrefsPath returns the full path to the preferences file.
func PrefsPath() string {
	return filepath.Join(ConfigDir(), "prefs.json")
}

// legacyPrefsPath is the pre-XDG location, migrated on first load.
func legacyPrefsPath() string {
	home, _ := os.UserHomeDir()
	return filepath.Join(home, ".ccpulse.json")
}

// LoadPreferences reads the preferences file, creating it with defaults on
// first run. A file at the legacy path is migrated to the current one.
// A corrupt file falls back to defaults with the error reported; the
// monitor must still start.
func LoadPreferences() (Preferences, error) {
	prefs := DefaultPreferences()

	path := PrefsPath()
	data, err := os.ReadFile(path)
	if os.IsNotExist(err) {
		if legacy, lerr := os.ReadFile(legacyPrefsPath()); lerr == nil {
			data, err = legacy, nil
			if werr := writePrefsFile(path, legacy); werr == nil {
				_ = os.Remove(legacyPrefsPath())
			}
		}
	}
	if err != nil {
		if os.IsNotExist(err) {
			return prefs, SavePreferences(prefs)
		}
		return prefs, fmt.Errorf("reading preferences: %w", err)
	}

	if err := json.Unmarshal(data, &prefs); err != nil {
		return DefaultPreferences(), fmt.Errorf("parsing preferences: %w", err)
	}
	return prefs, nil
}

// SavePreferences writes the preferences to disk.
func SavePreferences(p Preferences) error {
	data, err := json.MarshalIndent(p, "", "  ")
	if err != nil {
		return err
	}
	return writePrefsFile(PrefsPath(), append(data, '\n'))
}

func writePrefsFile(path string, data []byte) error {
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return fmt.Errorf("creating config dir: %w", err)
	}
	if err := os.WriteFile(path, data, 0o600); err != nil {
		return fmt.Errorf("writing preferences: %w", err)
	}
	return nil
}
