package app

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"slices"
	"testing"

	"github.com/metcalfc/hark/internal/config"
	"github.com/metcalfc/hark/internal/playback"
	"github.com/metcalfc/hark/internal/speech"
	"github.com/metcalfc/hark/internal/storage"
)

func discardLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func newTestApp(t *testing.T, st storage.Storage) *App {
	t.Helper()

	engines := speech.NewRegistry()
	engines.Register(speech.NewSilent(60000))

	a, err := New(Options{
		Storage:      st,
		Engines:      engines,
		SettingsPath: filepath.Join(t.TempDir(), "settings.toml"),
		Logger:       discardLogger(),
	})
	if err != nil {
		t.Fatalf("New failed: %v", err)
	}
	t.Cleanup(func() { a.Close() })
	return a
}

func TestPasteText(t *testing.T) {
	a := newTestApp(t, storage.NewMemory())

	doc, err := a.PasteText("  Notes ", "A\n\nB\n\n\nC")
	if err != nil {
		t.Fatalf("PasteText failed: %v", err)
	}
	if doc.Name != "Notes" {
		t.Errorf("Name = %q, want Notes", doc.Name)
	}
	if !slices.Equal(doc.Content, []string{"A", "B", "C"}) {
		t.Errorf("Content = %v, want [A B C]", doc.Content)
	}
	if a.Documents.Len() != 1 {
		t.Errorf("Len = %d, want 1", a.Documents.Len())
	}
}

func TestPasteTextValidation(t *testing.T) {
	a := newTestApp(t, storage.NewMemory())

	if _, err := a.PasteText(" ", "text"); !errors.Is(err, ErrEmptyName) {
		t.Errorf("PasteText(blank name) = %v, want ErrEmptyName", err)
	}
	if _, err := a.PasteText("name", "\n \n"); !errors.Is(err, ErrEmptyText) {
		t.Errorf("PasteText(blank text) = %v, want ErrEmptyText", err)
	}
	if a.Documents.Len() != 0 {
		t.Errorf("Len = %d after rejected pastes, want 0", a.Documents.Len())
	}
}

func TestImportFile(t *testing.T) {
	a := newTestApp(t, storage.NewMemory())

	path := filepath.Join(t.TempDir(), "guide.md")
	os.WriteFile(path, []byte("# Intro\n\nHello there.\n\n## Details\n\nMore words.\n"), 0o644)

	doc, err := a.ImportFile(path)
	if err != nil {
		t.Fatalf("ImportFile failed: %v", err)
	}
	if doc.Name != "guide.md" {
		t.Errorf("Name = %q, want guide.md", doc.Name)
	}
	if doc.Len() != 4 {
		t.Errorf("Len = %d, want 4: %v", doc.Len(), doc.Content)
	}
	if len(doc.Sections) != 2 || doc.Sections[1].Title != "Details" || doc.Sections[1].Paragraph != 2 || doc.Sections[1].Level != 1 {
		t.Errorf("Sections = %+v", doc.Sections)
	}
	if doc.Checksum == "" {
		t.Error("Checksum not recorded")
	}
}

func TestImportFileErrors(t *testing.T) {
	a := newTestApp(t, storage.NewMemory())
	dir := t.TempDir()

	if _, err := a.ImportFile(filepath.Join(dir, "missing.txt")); err == nil {
		t.Error("ImportFile(missing) should fail")
	}

	blank := filepath.Join(dir, "blank.txt")
	os.WriteFile(blank, []byte("\n\n   \n"), 0o644)
	if _, err := a.ImportFile(blank); !errors.Is(err, ErrEmptyText) {
		t.Errorf("ImportFile(blank) = %v, want ErrEmptyText", err)
	}
	if a.Documents.Len() != 0 {
		t.Errorf("Len = %d after failed imports", a.Documents.Len())
	}
}

func TestOpenFileReusesDocument(t *testing.T) {
	a := newTestApp(t, storage.NewMemory())

	path := filepath.Join(t.TempDir(), "story.txt")
	os.WriteFile(path, []byte("Once.\n\nUpon a time."), 0o644)

	first, err := a.OpenFile(path)
	if err != nil {
		t.Fatalf("OpenFile failed: %v", err)
	}
	a.Documents.SetCurrentParagraph(first.ID, 1)

	second, err := a.OpenFile(path)
	if err != nil {
		t.Fatalf("OpenFile failed: %v", err)
	}
	if second.ID != first.ID {
		t.Errorf("second open created %s, want existing %s", second.ID, first.ID)
	}
	if second.CurrentParagraph != 1 {
		t.Errorf("reopened at paragraph %d, want 1", second.CurrentParagraph)
	}
	if a.Documents.Len() != 1 {
		t.Errorf("Len = %d, want 1", a.Documents.Len())
	}
}

func TestOpenAndCloseReader(t *testing.T) {
	a := newTestApp(t, storage.NewMemory())
	doc, _ := a.PasteText("doc", "one two three four five")

	if _, ok := a.Open("missing"); ok {
		t.Error("Open(missing) reported a document")
	}

	got, ok := a.Open(doc.ID)
	if !ok || got.ID != doc.ID {
		t.Fatalf("Open(%s) = %v, %v", doc.ID, got.ID, ok)
	}

	// 60000 wpm keeps the paragraph short but still in flight here.
	if err := a.Player.Play(doc.ID); err != nil {
		t.Fatalf("Play failed: %v", err)
	}
	a.CloseReader()
	a.Player.Wait()

	if st := a.Player.Status(); st.State != playback.Idle {
		t.Errorf("state after CloseReader = %v, want idle", st.State)
	}
	if _, ok := a.Documents.Current(); ok {
		t.Error("current document should be cleared")
	}
}

func TestStartLoadsPersistedState(t *testing.T) {
	ctx := context.Background()
	dir := t.TempDir()

	st, err := storage.NewFile(dir)
	if err != nil {
		t.Fatalf("NewFile failed: %v", err)
	}
	engines := speech.NewRegistry()
	engines.Register(speech.NewSilent(0))
	settingsPath := filepath.Join(dir, "settings.toml")

	first, _ := New(Options{Storage: st, Engines: engines, SettingsPath: settingsPath, Logger: discardLogger()})
	doc, _ := first.PasteText("doc", "A\n\nB")
	first.Documents.ToggleBookmark(doc.ID, 1)
	first.Settings.SetDarkMode(true)
	if err := first.Close(); err != nil {
		t.Fatalf("Close failed: %v", err)
	}

	st2, _ := storage.NewFile(dir)
	second, _ := New(Options{Storage: st2, Engines: engines, SettingsPath: settingsPath, Logger: discardLogger()})
	defer second.Close()
	second.Start(ctx)

	got, ok := second.Documents.Get(doc.ID)
	if !ok || !got.IsBookmarked(1) {
		t.Errorf("reloaded document = %+v, %v", got, ok)
	}
	if !second.Settings.Snapshot().DarkMode {
		t.Error("settings not reloaded")
	}
}

func TestNewWithoutEngine(t *testing.T) {
	_, err := New(Options{Storage: storage.NewMemory(), Engines: speech.NewRegistry(), Logger: discardLogger()})
	if !errors.Is(err, speech.ErrEngineNotFound) {
		t.Errorf("New with empty registry = %v, want ErrEngineNotFound", err)
	}
}

func TestFromConfig(t *testing.T) {
	dir := t.TempDir()
	cfg := &config.Config{
		StateDir:  dir,
		ConfigDir: filepath.Join(dir, "conf"),
		Storage:   config.Storage{Backend: "sqlite", DSN: filepath.Join(dir, "hark.db")},
		Speech:    config.Speech{Engine: "silent", ESpeakPath: "espeak-ng", SayPath: "say", SilentWPM: 300},
		Logger:    config.Logger{Level: "info", Format: "text", File: "-"},
	}

	a, err := FromConfig(cfg, discardLogger())
	if err != nil {
		t.Fatalf("FromConfig failed: %v", err)
	}
	defer a.Close()

	if a.Engine().Name() != speech.EngineSilent {
		t.Errorf("engine = %s, want silent", a.Engine().Name())
	}
	if got := a.Settings.Path(); got != filepath.Join(dir, "conf", "settings.toml") {
		t.Errorf("settings path = %q", got)
	}

	a.Start(context.Background())
	if _, err := a.PasteText("doc", "text"); err != nil {
		t.Errorf("PasteText failed: %v", err)
	}
}
