package settings

import (
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"testing"
)

func discardLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func TestDefaults(t *testing.T) {
	s := NewStore("", discardLogger()).Snapshot()

	if s.FontSize < MinFontSize || s.FontSize > MaxFontSize {
		t.Errorf("default FontSize %d outside [%d, %d]", s.FontSize, MinFontSize, MaxFontSize)
	}
	if s.DarkMode {
		t.Error("DarkMode should default to false")
	}
	if s.AutoAdvance {
		t.Error("AutoAdvance should default to false")
	}
	if s.SelectedVoice != "" {
		t.Errorf("SelectedVoice = %q, want empty", s.SelectedVoice)
	}
}

func TestSettersChangeOneField(t *testing.T) {
	tests := []struct {
		name  string
		apply func(*Store) error
		want  func(Settings) Settings
	}{
		{"font size", func(s *Store) error { return s.SetFontSize(24) }, func(d Settings) Settings { d.FontSize = 24; return d }},
		{"dark mode", func(s *Store) error { return s.SetDarkMode(true) }, func(d Settings) Settings { d.DarkMode = true; return d }},
		{"auto advance", func(s *Store) error { return s.SetAutoAdvance(true) }, func(d Settings) Settings { d.AutoAdvance = true; return d }},
		{"voice", func(s *Store) error { return s.SetSelectedVoice("en-gb") }, func(d Settings) Settings { d.SelectedVoice = "en-gb"; return d }},
		{"rate", func(s *Store) error { return s.SetRate(220) }, func(d Settings) Settings { d.Rate = 220; return d }},
		{"pitch", func(s *Store) error { return s.SetPitch(70) }, func(d Settings) Settings { d.Pitch = 70; return d }},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			s := NewStore("", discardLogger())
			if err := tt.apply(s); err != nil {
				t.Fatalf("setter failed: %v", err)
			}
			if got, want := s.Snapshot(), tt.want(Defaults()); got != want {
				t.Errorf("Snapshot = %+v, want %+v", got, want)
			}
		})
	}
}

func TestFontSizeNotClamped(t *testing.T) {
	s := NewStore("", discardLogger())
	s.SetFontSize(100)
	if got := s.Snapshot().FontSize; got != 100 {
		t.Errorf("FontSize = %d, want 100", got)
	}
}

func TestPersistence(t *testing.T) {
	path := filepath.Join(t.TempDir(), "nested", FileName)

	s := NewStore(path, discardLogger())
	if err := s.Load(); err != nil {
		t.Fatalf("Load with no file failed: %v", err)
	}
	s.SetDarkMode(true)
	s.SetFontSize(28)
	s.SetSelectedVoice("de")

	if _, err := os.Stat(path + "-new"); !os.IsNotExist(err) {
		t.Error("temporary settings file left behind")
	}

	reloaded := NewStore(path, discardLogger())
	if err := reloaded.Load(); err != nil {
		t.Fatalf("Load failed: %v", err)
	}
	got := reloaded.Snapshot()
	if !got.DarkMode || got.FontSize != 28 || got.SelectedVoice != "de" {
		t.Errorf("reloaded settings = %+v", got)
	}
}

func TestLoadPartialFileKeepsDefaults(t *testing.T) {
	path := filepath.Join(t.TempDir(), FileName)
	os.WriteFile(path, []byte("dark_mode = true\n"), 0o644)

	s := NewStore(path, discardLogger())
	if err := s.Load(); err != nil {
		t.Fatalf("Load failed: %v", err)
	}
	got := s.Snapshot()
	if !got.DarkMode {
		t.Error("DarkMode not read from file")
	}
	if got.Rate != Defaults().Rate || got.AutoAdvance {
		t.Errorf("missing keys should keep defaults, got %+v", got)
	}
}

func TestLoadInvalidFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), FileName)
	os.WriteFile(path, []byte("font_size = \"big\"\n"), 0o644)

	s := NewStore(path, discardLogger())
	if err := s.Load(); err == nil {
		t.Fatal("Load of invalid file should fail")
	}
	if got := s.Snapshot(); got != Defaults() {
		t.Errorf("settings changed after failed load: %+v", got)
	}
}

func TestDefaultPath(t *testing.T) {
	dir := t.TempDir()
	if got := DefaultPath(dir); got != filepath.Join(dir, FileName) {
		t.Errorf("DefaultPath(%q) = %q", dir, got)
	}
	if got := DefaultPath(""); !strings.HasSuffix(got, filepath.Join("hark", FileName)) {
		t.Errorf("DefaultPath(\"\") = %q, want .../hark/%s", got, FileName)
	}
}
