// Package tui is the terminal interface: a library of documents, forms to
// paste or import text, the reader and the settings screen.
package tui

import (
	"github.com/charmbracelet/bubbles/help"
	"github.com/charmbracelet/bubbles/spinner"
	tea "github.com/charmbracelet/bubbletea"

	"github.com/metcalfc/hark/internal/app"
	"github.com/metcalfc/hark/internal/playback"
)

type screen int

const (
	screenLibrary screen = iota
	screenPaste
	screenImport
	screenReader
	screenSettings
)

// playbackMsg reports a change in the playback controller.
type playbackMsg playback.Status

// Model is the root bubbletea model. Each screen keeps its own state and
// the root routes messages to the active one.
type Model struct {
	app    *app.App
	screen screen
	// back is the screen settings returns to.
	back screen

	library  libraryModel
	paste    pasteModel
	importer importModel
	reader   readerModel
	settings settingsModel

	help   help.Model
	width  int
	height int
}

// New builds the model. A non-empty startID opens that document directly.
func New(a *app.App, startID string) Model {
	m := Model{
		app:      a,
		screen:   screenLibrary,
		library:  newLibraryModel(a),
		paste:    newPasteModel(),
		importer: newImportModel(),
		reader:   newReaderModel(),
		settings: newSettingsModel(),
		help:     help.New(),
		width:    80,
		height:   24,
	}

	if startID != "" {
		if doc, ok := a.Open(startID); ok {
			m.screen = screenReader
			m.reader = m.reader.open(doc, a)
		} else {
			m.library.err = "No document with id " + startID
		}
	}
	return m
}

func (m Model) Init() tea.Cmd {
	return m.reader.spinner.Tick
}

func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height
		m.help.Width = msg.Width
		m.library = m.library.resize(msg.Width, msg.Height)
		m.paste = m.paste.resize(msg.Width, msg.Height)
		m.reader = m.reader.resize(msg.Width, msg.Height, m.app)
		var cmd tea.Cmd
		m.importer, cmd = m.importer.update(msg)
		return m, cmd

	case tea.KeyMsg:
		if msg.String() == "ctrl+c" {
			return m, tea.Quit
		}

	case spinner.TickMsg:
		var cmd tea.Cmd
		m.reader.spinner, cmd = m.reader.spinner.Update(msg)
		return m, cmd

	case navigateMsg:
		return m.navigate(msg)
	}

	switch m.screen {
	case screenPaste:
		return m.updatePaste(msg)
	case screenImport:
		return m.updateImport(msg)
	case screenReader:
		return m.updateReader(msg)
	case screenSettings:
		return m.updateSettings(msg)
	default:
		return m.updateLibrary(msg)
	}
}

// navigateMsg switches screens. docID is used by screenReader.
type navigateMsg struct {
	to    screen
	docID string
}

func navigate(to screen, docID string) tea.Cmd {
	return func() tea.Msg { return navigateMsg{to: to, docID: docID} }
}

func (m Model) navigate(msg navigateMsg) (tea.Model, tea.Cmd) {
	from := m.screen

	if from == screenReader && msg.to != screenReader && msg.to != screenSettings {
		m.app.CloseReader()
	}

	switch msg.to {
	case screenLibrary:
		m.library = m.library.refresh(m.app)
	case screenPaste:
		m.paste = newPasteModel().resize(m.width, m.height)
		m.screen = msg.to
		cmd := m.paste.focus()
		return m, cmd
	case screenImport:
		m.importer = newImportModel()
		m.screen = msg.to
		return m, tea.Batch(m.importer.picker.Init(), resizeCmd(m.width, m.height))
	case screenReader:
		if msg.docID != "" {
			doc, ok := m.app.Open(msg.docID)
			if !ok {
				m.library.err = "Document not found"
				m.screen = screenLibrary
				return m, nil
			}
			m.reader = m.reader.open(doc, m.app).resize(m.width, m.height, m.app)
		} else {
			m.reader = m.reader.sync(m.app)
		}
	case screenSettings:
		m.back = from
		m.settings = m.settings.open()
		m.screen = msg.to
		return m, loadVoices(m.app)
	}

	m.screen = msg.to
	return m, nil
}

func resizeCmd(w, h int) tea.Cmd {
	return func() tea.Msg { return tea.WindowSizeMsg{Width: w, Height: h} }
}

func (m Model) View() string {
	t := newTheme(m.app.Settings.Snapshot())

	var body string
	switch m.screen {
	case screenPaste:
		body = m.paste.view(t, m.help)
	case screenImport:
		body = m.importer.view(t, m.help)
	case screenReader:
		body = m.reader.view(t, m.help, m.app)
	case screenSettings:
		body = m.settings.view(t, m.help, m.app)
	default:
		body = m.library.view(t, m.help)
	}

	return t.screen.Width(m.width).Height(m.height).Render(body)
}

// Run starts the terminal interface and blocks until the user quits.
func Run(a *app.App, startID string) error {
	p := tea.NewProgram(New(a, startID), tea.WithAltScreen())

	// Send blocks until the event loop receives, and the controller may
	// notify from inside Update.
	a.Player.OnChange(func(s playback.Status) {
		go p.Send(playbackMsg(s))
	})

	_, err := p.Run()
	return err
}
