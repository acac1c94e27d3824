// Package app wires the document store, settings, speech engine and
// playback controller into one application object shared by the TUI, the
// GUI and the command line.
package app

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"

	"github.com/metcalfc/hark/internal/config"
	"github.com/metcalfc/hark/internal/document"
	"github.com/metcalfc/hark/internal/playback"
	"github.com/metcalfc/hark/internal/reader"
	"github.com/metcalfc/hark/internal/settings"
	"github.com/metcalfc/hark/internal/speech"
	"github.com/metcalfc/hark/internal/storage"
)

var (
	// ErrEmptyName is returned when pasting text without a name.
	ErrEmptyName = errors.New("document name is empty")
	// ErrEmptyText is returned when pasting or importing text without paragraphs.
	ErrEmptyText = errors.New("document text is empty")
)

// Options configures New.
type Options struct {
	Storage storage.Storage
	Engines *speech.Registry
	// SettingsPath is the settings file, empty for memory-only settings.
	SettingsPath string
	Logger       *slog.Logger
}

// App wires the document store, the settings store and the playback
// controller to a speech engine and a storage backend.
type App struct {
	Documents *document.Store
	Settings  *settings.Store
	Player    *playback.Controller

	engines *speech.Registry
	engine  speech.Engine
	storage storage.Storage
	logger  *slog.Logger
}

// New builds an App from opts. Call Close when done.
func New(opts Options) (*App, error) {
	engine, err := opts.Engines.Default()
	if err != nil {
		return nil, err
	}

	docs := document.NewStore(opts.Storage, opts.Logger)
	prefs := settings.NewStore(opts.SettingsPath, opts.Logger)

	return &App{
		Documents: docs,
		Settings:  prefs,
		Player:    playback.New(engine, docs, prefs, opts.Logger),
		engines:   opts.Engines,
		engine:    engine,
		storage:   opts.Storage,
		logger:    opts.Logger,
	}, nil
}

// FromConfig opens storage and discovers speech engines as cfg describes.
func FromConfig(cfg *config.Config, logger *slog.Logger) (*App, error) {
	st, err := storage.Open(cfg.Storage.Backend, cfg.StateDir, cfg.Storage.DSN)
	if err != nil {
		return nil, fmt.Errorf("failed to open storage: %w", err)
	}

	engines, err := speech.Discover(speech.DiscoverOptions{
		Engine:     cfg.Speech.Engine,
		ESpeakPath: cfg.Speech.ESpeakPath,
		SayPath:    cfg.Speech.SayPath,
		SilentWPM:  cfg.Speech.SilentWPM,
	}, logger)
	if err != nil {
		st.Close()
		return nil, err
	}

	a, err := New(Options{
		Storage:      st,
		Engines:      engines,
		SettingsPath: settings.DefaultPath(cfg.ConfigDir),
		Logger:       logger,
	})
	if err != nil {
		st.Close()
		return nil, err
	}
	return a, nil
}

// Start loads the library and settings. Failures are logged and the app
// continues with what it has.
func (a *App) Start(ctx context.Context) {
	if err := a.Documents.Load(ctx); err != nil {
		a.logger.Error("failed to load documents", "error", err)
	}
	if err := a.Settings.Load(); err != nil {
		a.logger.Error("failed to load settings", "error", err)
	}
}

// Engine returns the speech engine in use.
func (a *App) Engine() speech.Engine {
	return a.engine
}

// Engines returns the names of every available speech engine.
func (a *App) Engines() []string {
	return a.engines.List()
}

// Voices lists the voices of the engine in use.
func (a *App) Voices(ctx context.Context) ([]speech.Voice, error) {
	return a.engine.Voices(ctx)
}

// PasteText adds a document from text typed or pasted by the user.
func (a *App) PasteText(name, text string) (document.Document, error) {
	if strings.TrimSpace(name) == "" {
		return document.Document{}, ErrEmptyName
	}
	imp, err := reader.FromText(name, text)
	if err != nil {
		if errors.Is(err, reader.ErrNoText) {
			return document.Document{}, ErrEmptyText
		}
		return document.Document{}, err
	}
	return a.add(imp)
}

// ImportFile adds a document read from a text, Markdown or EPUB file.
func (a *App) ImportFile(path string) (document.Document, error) {
	imp, err := reader.Open(path)
	if err != nil {
		a.logger.Error("failed to import file", "path", path, "error", err)
		if errors.Is(err, reader.ErrNoText) {
			return document.Document{}, fmt.Errorf("%w: %s", ErrEmptyText, path)
		}
		return document.Document{}, err
	}
	return a.add(imp)
}

// OpenFile returns the document previously imported from the same content,
// importing the file when it is new.
func (a *App) OpenFile(path string) (document.Document, error) {
	if sum, err := reader.Checksum(path); err == nil {
		if doc, ok := a.Documents.FindByChecksum(sum); ok {
			a.logger.Info("reopening imported document", "path", path, "id", doc.ID)
			return doc, nil
		}
	}
	return a.ImportFile(path)
}

func (a *App) add(imp *reader.Import) (document.Document, error) {
	sections := make([]document.Section, 0, len(imp.TOC))
	for _, e := range imp.TOC {
		sections = append(sections, document.Section{Title: e.Title, Paragraph: e.Paragraph, Level: e.Level})
	}

	return a.Documents.Add(imp.Name, imp.Paragraphs,
		document.WithChecksum(imp.Checksum),
		document.WithSections(sections),
	)
}

// Open makes document id the current one. Playback of any other document
// stops.
func (a *App) Open(id string) (document.Document, bool) {
	if st := a.Player.Status(); st.State == playback.Speaking && st.DocumentID != id {
		a.Player.Stop()
	}
	return a.Documents.SetCurrent(strings.TrimSpace(id))
}

// CloseReader stops speech and clears the current document, as when the
// user leaves the reader.
func (a *App) CloseReader() {
	a.Player.Stop()
	a.Documents.ClearCurrent()
}

// Close stops playback, flushes pending writes and closes storage.
func (a *App) Close() error {
	a.Player.Close()

	var errs []error
	if err := a.Documents.Close(); err != nil {
		errs = append(errs, err)
	}
	if err := a.storage.Close(); err != nil {
		errs = append(errs, err)
	}
	return errors.Join(errs...)
}
