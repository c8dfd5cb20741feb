// Package settings holds the user's shortcut bindings and default save
// location, persisted as YAML.
package settings

import (
	"errors"
	"fmt"
	"log"
	"os"
	"path/filepath"
	"strings"

	"gopkg.in/yaml.v3"

	"screen-pds/src/action"
)

const (
	ModControl = "CONTROL"
	ModShift   = "SHIFT"
	ModAlt     = "ALT"
)

var (
	ErrDuplicateShortcut = errors.New("the shortcuts must be different")
	ErrUnknownKey        = errors.New("unknown shortcut key")
)

// Modifiers lists the accepted modifier names in picker order.
var Modifiers = []string{ModControl, ModShift, ModAlt}

// Keys lists the accepted key names (A..Z) in picker order.
var Keys = func() []string {
	keys := make([]string, 0, 26)
	for c := 'A'; c <= 'Z'; c++ {
		keys = append(keys, string(c))
	}
	return keys
}()

// Shortcut is one modifier+key binding.
type Shortcut struct {
	Modifier string `yaml:"modifier"`
	Key      string `yaml:"key"`
}

// Combo renders the shortcut as a hotkey combo string, e.g. "Ctrl+N".
func (s Shortcut) Combo() string {
	mod := "Ctrl"
	switch strings.ToUpper(s.Modifier) {
	case ModShift:
		mod = "Shift"
	case ModAlt:
		mod = "Alt"
	}
	return mod + "+" + strings.ToUpper(s.Key)
}

func (s Shortcut) String() string {
	return s.Modifier + " + " + s.Key
}

// Settings is the persisted user configuration.
type Settings struct {
	New             Shortcut `yaml:"new"`
	Save            Shortcut `yaml:"save"`
	Undo            Shortcut `yaml:"undo"`
	Redo            Shortcut `yaml:"redo"`
	Cancel          Shortcut `yaml:"cancel"`
	DefaultLocation string   `yaml:"default_location"`
}

// Default returns the built-in configuration.
func Default() Settings {
	return Settings{
		New:             Shortcut{Modifier: ModControl, Key: "N"},
		Save:            Shortcut{Modifier: ModControl, Key: "S"},
		Undo:            Shortcut{Modifier: ModControl, Key: "Z"},
		Redo:            Shortcut{Modifier: ModControl, Key: "Y"},
		Cancel:          Shortcut{Modifier: ModControl, Key: "E"},
		DefaultLocation: DefaultLocation(),
	}
}

// DefaultLocation is where exports go until the user picks a folder.
func DefaultLocation() string {
	home, err := os.UserHomeDir()
	if err != nil || home == "" {
		return filepath.Join(".", "screen-pds")
	}
	return filepath.Join(home, "Pictures", "screen-pds")
}

// Shortcuts returns the bindings keyed by the action they post.
func (s Settings) Shortcuts() map[action.Action]Shortcut {
	return map[action.Action]Shortcut{
		action.New:    s.New,
		action.Save:   s.Save,
		action.Undo:   s.Undo,
		action.Redo:   s.Redo,
		action.Cancel: s.Cancel,
	}
}

// Set replaces the binding for a.
func (s *Settings) Set(a action.Action, sc Shortcut) {
	switch a {
	case action.New:
		s.New = sc
	case action.Save:
		s.Save = sc
	case action.Undo:
		s.Undo = sc
	case action.Redo:
		s.Redo = sc
	case action.Cancel:
		s.Cancel = sc
	}
}

// Validate rejects unknown modifiers/keys and any two actions sharing a binding.
func (s Settings) Validate() error {
	seen := make(map[Shortcut]action.Action)
	for _, a := range action.All {
		sc := normalize(s.Shortcuts()[a])
		if !contains(Modifiers, sc.Modifier) || !contains(Keys, sc.Key) {
			return fmt.Errorf("%w: %s for %s", ErrUnknownKey, sc, a)
		}
		if prev, ok := seen[sc]; ok {
			return fmt.Errorf("%w: %s and %s both use %s", ErrDuplicateShortcut, prev, a, sc)
		}
		seen[sc] = a
	}
	return nil
}

func normalize(sc Shortcut) Shortcut {
	return Shortcut{
		Modifier: strings.ToUpper(strings.TrimSpace(sc.Modifier)),
		Key:      strings.ToUpper(strings.TrimSpace(sc.Key)),
	}
}

func contains(list []string, v string) bool {
	for _, item := range list {
		if item == v {
			return true
		}
	}
	return false
}

// Load reads settings from path. A missing file yields defaults. A malformed
// file also yields defaults, together with the parse error so the caller can
// log it.
func Load(path string) (Settings, error) {
	settings := Default()
	raw, err := os.ReadFile(path)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return settings, nil
		}
		return settings, fmt.Errorf("read settings file: %w", err)
	}

	var fileData Settings
	if err := yaml.Unmarshal(raw, &fileData); err != nil {
		return settings, fmt.Errorf("parse settings yaml: %w", err)
	}
	merge(&settings, fileData)
	if err := settings.Validate(); err != nil {
		return Default(), fmt.Errorf("invalid settings: %w", err)
	}
	return settings, nil
}

func merge(dst *Settings, src Settings) {
	for _, a := range action.All {
		sc := normalize(src.Shortcuts()[a])
		if sc.Modifier != "" && sc.Key != "" {
			dst.Set(a, sc)
		}
	}
	if loc := strings.TrimSpace(src.DefaultLocation); loc != "" {
		dst.DefaultLocation = loc
	}
}

// Save validates and writes settings to path.
func Save(path string, settings Settings) error {
	if err := settings.Validate(); err != nil {
		return err
	}
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return fmt.Errorf("create config directory: %w", err)
	}
	serialized, err := yaml.Marshal(settings)
	if err != nil {
		return fmt.Errorf("marshal settings yaml: %w", err)
	}
	if err := os.WriteFile(path, serialized, 0o644); err != nil {
		return fmt.Errorf("write settings file: %w", err)
	}
	return nil
}

// Store reads settings on demand from a fixed path.
type Store struct {
	Path string
}

// Snapshot loads the current settings, logging and falling back to defaults
// on any error.
func (s Store) Snapshot() Settings {
	settings, err := Load(s.Path)
	if err != nil {
		log.Printf("Settings: %v; using defaults", err)
	}
	return settings
}

// Save writes settings to the store's path.
func (s Store) Save(settings Settings) error {
	return Save(s.Path, settings)
}
