package config

import (
	"encoding/json"
	"fmt"
	"os"

	"github.com/winpacman/core/internal/errs"
	"github.com/winpacman/core/internal/logging"
	"github.com/winpacman/core/internal/model"
)

// SyncInterval is one of the three freshness policies spec.md §4.8 names.
type SyncInterval string

const (
	IntervalDaily    SyncInterval = "daily"
	IntervalWeekly   SyncInterval = "weekly"
	IntervalOnDemand SyncInterval = "on_demand"
)

// WindowState is persisted by the GUI, not the core, but the shape lives
// here because config.json is a single recognized-options document and
// the core must round-trip keys it does not itself interpret.
type WindowState struct {
	Width     int  `json:"width"`
	Height    int  `json:"height"`
	X         int  `json:"x"`
	Y         int  `json:"y"`
	Maximized bool `json:"maximized"`
}

// Settings is the typed configuration record recognized by winpacman,
// replacing the dot-notation get/set map spec.md §9 flags as a design
// smell in the original source.
type Settings struct {
	UI struct {
		WindowState WindowState `json:"window_state"`
	} `json:"ui"`

	Sync struct {
		Intervals  map[model.Manager]SyncInterval `json:"intervals"`
		MaxAgeDays map[model.Manager]int           `json:"max_age_days"`
	} `json:"sync"`

	VerboseOutput bool `json:"verbose_output"`

	// PopularKeywords seeds the NPM and Cargo "popular set" bulk fetch
	// (spec.md §9 Open Question (c)): externalized rather than hardcoded.
	PopularKeywords map[model.Manager][]string `json:"popular_keywords"`
}

// recognizedTopLevelKeys gates SetRaw: unknown top-level keys on write
// are rejected per spec.md §4.8/§9.
var recognizedTopLevelKeys = map[string]bool{
	"ui":               true,
	"sync":             true,
	"verbose_output":   true,
	"popular_keywords": true,
}

// Default returns built-in settings, used when config.json is absent —
// mirroring the teacher's GetDefaultConfig two-tier loading shape.
func Default() *Settings {
	s := &Settings{}
	s.Sync.Intervals = map[model.Manager]SyncInterval{
		model.ManagerWinget:     IntervalDaily,
		model.ManagerChocolatey: IntervalWeekly,
		model.ManagerScoop:      IntervalOnDemand,
		model.ManagerNPM:        IntervalOnDemand,
		model.ManagerCargo:      IntervalOnDemand,
	}
	s.Sync.MaxAgeDays = map[model.Manager]int{
		model.ManagerWinget:     1,
		model.ManagerChocolatey: 7,
	}
	s.PopularKeywords = map[model.Manager][]string{
		model.ManagerNPM:   {"cli", "react", "webpack", "testing", "lint", "typescript", "server", "utility"},
		model.ManagerCargo: {"cli", "async", "web", "parser", "serialization", "testing", "embedded", "crypto"},
	}
	return s
}

// Load reads config.json from paths.ConfigFile(), falling back to
// Default() when absent, exactly as the teacher's LoadConfig falls back
// through CSP registry settings before giving up.
func Load(paths Paths) (*Settings, error) {
	log := logging.Component("config")

	data, err := os.ReadFile(paths.ConfigFile())
	if os.IsNotExist(err) {
		log.Info("config file does not exist, using defaults", "path", paths.ConfigFile())
		return Default(), nil
	}
	if err != nil {
		log.Warn("config file unreadable, falling back to defaults", "error", err)
		return Default(), errs.Wrap(errs.KindConfigInvalid, "reading config file", err)
	}

	s := Default()
	if err := json.Unmarshal(data, s); err != nil {
		log.Warn("config file is malformed, falling back to defaults", "error", err)
		return Default(), errs.Wrap(errs.KindConfigInvalid, "parsing config file", err)
	}
	return s, nil
}

// Save writes settings to config.json, creating the config directory if
// needed.
func Save(paths Paths, s *Settings) error {
	if err := os.MkdirAll(paths.ConfigDir, 0o755); err != nil {
		return fmt.Errorf("creating config directory: %w", err)
	}
	data, err := json.MarshalIndent(s, "", "  ")
	if err != nil {
		return fmt.Errorf("serializing config: %w", err)
	}
	if err := os.WriteFile(paths.ConfigFile(), data, 0o644); err != nil {
		return fmt.Errorf("writing config file: %w", err)
	}
	return nil
}

// SetRaw validates a raw JSON document against the recognized top-level
// keys before merging it onto s. Unknown top-level keys are rejected
// with ConfigInvalid, per spec.md §4.8/§9 ("unknown keys on write are
// rejected").
func SetRaw(s *Settings, raw map[string]json.RawMessage) error {
	for key := range raw {
		if !recognizedTopLevelKeys[key] {
			return errs.New(errs.KindConfigInvalid, fmt.Sprintf("unrecognized setting %q", key))
		}
	}
	merged, err := json.Marshal(raw)
	if err != nil {
		return errs.Wrap(errs.KindConfigInvalid, "re-encoding settings patch", err)
	}
	if err := json.Unmarshal(merged, s); err != nil {
		return errs.Wrap(errs.KindConfigInvalid, "applying settings patch", err)
	}
	return nil
}

// MaxAge returns the configured freshness budget for a provider, falling
// back to the interval-implied default when no explicit day count is set.
func (s *Settings) MaxAge(m model.Manager) (days int, onDemandOnly bool) {
	if d, ok := s.Sync.MaxAgeDays[m]; ok {
		return d, false
	}
	switch s.Sync.Intervals[m] {
	case IntervalDaily:
		return 1, false
	case IntervalWeekly:
		return 7, false
	default:
		return 0, true
	}
}
