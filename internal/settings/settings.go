// Package settings holds the display and reading preferences.
package settings

import (
	"log/slog"
	"os"
	"path/filepath"
	"sync"

	"github.com/BurntSushi/toml"
	"github.com/kirsle/configdir"
	"github.com/pkg/errors"
)

// FileName is the settings file inside the config directory.
const FileName = "settings.toml"

// Font size bounds offered by the settings screens. The store itself does
// not clamp.
const (
	MinFontSize = 16
	MaxFontSize = 32
)

// Settings holds the user preferences saved to settings.toml.
type Settings struct {
	FontSize      int    `toml:"font_size"`
	DarkMode      bool   `toml:"dark_mode"`
	AutoAdvance   bool   `toml:"auto_advance"`
	SelectedVoice string `toml:"selected_voice"`
	// Rate is in words per minute.
	Rate int `toml:"rate"`
	// Pitch ranges 0-99 with 50 as the engine default.
	Pitch int `toml:"pitch"`
}

// Defaults returns the settings used before anything was saved.
func Defaults() Settings {
	return Settings{
		FontSize:    18,
		DarkMode:    false,
		AutoAdvance: false,
		Rate:        175,
		Pitch:       50,
	}
}

// Store holds the process-wide settings. When path is set every change is
// written to it.
type Store struct {
	mu       sync.RWMutex
	settings Settings
	path     string
	logger   *slog.Logger
}

// NewStore returns a store holding Defaults. An empty path keeps settings in
// memory only.
func NewStore(path string, logger *slog.Logger) *Store {
	return &Store{
		settings: Defaults(),
		path:     path,
		logger:   logger,
	}
}

// DefaultPath returns settings.toml inside dir, or inside the user config
// directory for hark when dir is empty.
func DefaultPath(dir string) string {
	if dir == "" {
		dir = configdir.LocalConfig("hark")
	}
	return filepath.Join(dir, FileName)
}

// Path returns the settings file, empty for memory-only stores.
func (s *Store) Path() string {
	return s.path
}

// Load reads the settings file over the defaults. A missing file is not an
// error.
func (s *Store) Load() error {
	if s.path == "" {
		return nil
	}

	loaded := Defaults()
	if _, err := toml.DecodeFile(s.path, &loaded); err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return nil
		}
		return errors.Wrapf(err, "could not read settings from %s", s.path)
	}

	s.mu.Lock()
	s.settings = loaded
	s.mu.Unlock()
	return nil
}

// Snapshot returns a copy of the current settings.
func (s *Store) Snapshot() Settings {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.settings
}

// SetFontSize sets the paragraph font size in points.
func (s *Store) SetFontSize(size int) error {
	return s.update(func(st *Settings) { st.FontSize = size })
}

// SetDarkMode switches between the dark and light theme.
func (s *Store) SetDarkMode(dark bool) error {
	return s.update(func(st *Settings) { st.DarkMode = dark })
}

// SetAutoAdvance controls whether playback moves on to the next paragraph.
func (s *Store) SetAutoAdvance(auto bool) error {
	return s.update(func(st *Settings) { st.AutoAdvance = auto })
}

// SetSelectedVoice selects a voice by engine id. Empty means pick a voice
// from the text language.
func (s *Store) SetSelectedVoice(voice string) error {
	return s.update(func(st *Settings) { st.SelectedVoice = voice })
}

// SetRate sets the speaking rate in words per minute.
func (s *Store) SetRate(wpm int) error {
	return s.update(func(st *Settings) { st.Rate = wpm })
}

// SetPitch sets the voice pitch.
func (s *Store) SetPitch(pitch int) error {
	return s.update(func(st *Settings) { st.Pitch = pitch })
}

// update applies fn and saves. The in-memory change stays even if the save
// fails.
func (s *Store) update(fn func(*Settings)) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	fn(&s.settings)
	if s.path == "" {
		return nil
	}
	if err := s.saveLocked(); err != nil {
		s.logger.Error("could not save settings", "path", s.path, "error", err)
		return err
	}
	return nil
}

func (s *Store) saveLocked() error {
	if err := configdir.MakePath(filepath.Dir(s.path)); err != nil {
		return errors.WithStack(err)
	}

	file, err := os.OpenFile(s.path+"-new", os.O_CREATE|os.O_TRUNC|os.O_WRONLY, 0o644)
	if err != nil {
		return errors.WithStack(err)
	}

	defer func() {
		if err := os.Remove(file.Name()); err != nil && !errors.Is(err, os.ErrNotExist) {
			s.logger.Error("could not remove temporary settings file", "error", errors.WithStack(err))
		}
	}()

	if err := toml.NewEncoder(file).Encode(s.settings); err != nil {
		file.Close()
		return errors.WithStack(err)
	}
	if err := file.Close(); err != nil {
		return errors.WithStack(err)
	}

	if err := os.Rename(file.Name(), s.path); err != nil {
		return errors.Wrap(err, "could not overwrite settings")
	}
	return nil
}
