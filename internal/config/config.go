// Package config reads hark's configuration from HARK_* environment
// variables.
package config

import (
	"fmt"
	"os"
	"path/filepath"
	"slices"

	"github.com/caarlos0/env/v11"
	"github.com/kirsle/configdir"
	"github.com/pkg/errors"
)

// AppName names the state and config directories.
const AppName = "hark"

// Config is read from HARK_* environment variables.
type Config struct {
	// StateDir holds the library and the log file.
	StateDir string `env:"STATE_DIR,expand"`
	// ConfigDir holds settings.toml.
	ConfigDir string  `env:"CONFIG_DIR,expand"`
	Storage   Storage `envPrefix:"STORAGE_"`
	Speech    Speech  `envPrefix:"SPEECH_"`
	Logger    Logger  `envPrefix:"LOG_"`
}

// Storage selects the persistence backend, "file", "sqlite" or "memory".
type Storage struct {
	Backend string `env:"BACKEND" envDefault:"file"`
	// DSN is the SQLite database path, <state dir>/hark.db when empty.
	DSN string `env:"DSN,expand"`
}

// Speech selects the speech engine and the engine binaries.
type Speech struct {
	Engine     string `env:"ENGINE" envDefault:"auto"`
	ESpeakPath string `env:"ESPEAK_PATH" envDefault:"espeak-ng"`
	SayPath    string `env:"SAY_PATH" envDefault:"say"`
	SilentWPM  int    `env:"SILENT_WPM" envDefault:"300"`
}

// Logger configures the slog handler.
type Logger struct {
	Level  string `env:"LEVEL" envDefault:"info"`
	Format string `env:"FORMAT" envDefault:"text"`
	// File is the log destination, "-" for stderr.
	File string `env:"FILE,expand"`
}

// Load parses the environment, fills in directory defaults and validates the
// result.
func Load() (*Config, error) {
	conf, err := env.ParseAsWithOptions[Config](env.Options{
		Prefix: "HARK_",
	})
	if err != nil {
		return nil, errors.WithStack(err)
	}

	conf.applyDefaults()

	if err := conf.Validate(); err != nil {
		return nil, err
	}

	return &conf, nil
}

func (c *Config) applyDefaults() {
	if c.StateDir == "" {
		c.StateDir = DefaultStateDir()
	}
	if c.ConfigDir == "" {
		c.ConfigDir = configdir.LocalConfig(AppName)
	}
	if c.Storage.DSN == "" {
		c.Storage.DSN = filepath.Join(c.StateDir, AppName+".db")
	}
	if c.Logger.File == "" {
		c.Logger.File = filepath.Join(c.StateDir, AppName+".log")
	}
}

// DefaultStateDir returns $XDG_STATE_HOME/hark, or ~/.local/state/hark.
func DefaultStateDir() string {
	if dir := os.Getenv("XDG_STATE_HOME"); dir != "" {
		return filepath.Join(dir, AppName)
	}
	home, _ := os.UserHomeDir()
	return filepath.Join(home, ".local", "state", AppName)
}

// Validate checks that enumerated values are known.
func (c *Config) Validate() error {
	if !slices.Contains([]string{"file", "sqlite", "memory"}, c.Storage.Backend) {
		return fmt.Errorf("HARK_STORAGE_BACKEND must be one of: file, sqlite, memory (got %q)", c.Storage.Backend)
	}

	if !slices.Contains([]string{"auto", "espeak", "say", "silent"}, c.Speech.Engine) {
		return fmt.Errorf("HARK_SPEECH_ENGINE must be one of: auto, espeak, say, silent (got %q)", c.Speech.Engine)
	}

	if c.Speech.SilentWPM < 1 {
		return errors.New("HARK_SPEECH_SILENT_WPM must be at least 1")
	}

	if !slices.Contains([]string{"debug", "info", "warn", "error"}, c.Logger.Level) {
		return errors.New("HARK_LOG_LEVEL must be one of: debug, info, warn, error")
	}

	if !slices.Contains([]string{"text", "json"}, c.Logger.Format) {
		return errors.New("HARK_LOG_FORMAT must be one of: text, json")
	}

	return nil
}
