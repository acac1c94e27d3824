package tui

import (
	"os"
	"strings"

	"github.com/charmbracelet/bubbles/filepicker"
	"github.com/charmbracelet/bubbles/help"
	"github.com/charmbracelet/bubbles/key"
	tea "github.com/charmbracelet/bubbletea"

	"github.com/metcalfc/hark/internal/app"
	"github.com/metcalfc/hark/internal/reader"
)

// importedMsg carries the result of importing a file.
type importedMsg struct {
	id  string
	err error
}

type importModel struct {
	picker  filepicker.Model
	loading bool
	err     string
}

func newImportModel() importModel {
	fp := filepicker.New()
	fp.AutoHeight = true
	if dir, err := os.Getwd(); err == nil {
		fp.CurrentDirectory = dir
	}
	return importModel{picker: fp}
}

func (m importModel) update(msg tea.Msg) (importModel, tea.Cmd) {
	var cmd tea.Cmd
	m.picker, cmd = m.picker.Update(msg)
	return m, cmd
}

func importFile(a *app.App, path string) tea.Cmd {
	return func() tea.Msg {
		doc, err := a.ImportFile(path)
		return importedMsg{id: doc.ID, err: err}
	}
}

func (m Model) updateImport(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.KeyMsg:
		if key.Matches(msg, formKeyMap.Cancel) {
			return m, navigate(screenLibrary, "")
		}
	case importedMsg:
		m.importer.loading = false
		if msg.err != nil {
			m.importer.err = capitalize(msg.err.Error())
			return m, nil
		}
		return m, navigate(screenReader, msg.id)
	}

	var cmd tea.Cmd
	m.importer, cmd = m.importer.update(msg)

	if ok, path := m.importer.picker.DidSelectFile(msg); ok && !m.importer.loading {
		m.importer.loading = true
		m.importer.err = ""
		return m, tea.Batch(cmd, importFile(m.app, path))
	}
	return m, cmd
}

func (m importModel) view(t theme, h help.Model) string {
	var sb strings.Builder

	sb.WriteString(t.title.Render("Import a file"))
	sb.WriteString("\n")
	sb.WriteString(t.status.Render("Text, " + strings.Join(reader.SupportedFormats(), ", ") + ": " + m.picker.CurrentDirectory))
	sb.WriteString("\n\n")
	if m.loading {
		sb.WriteString(t.status.Render("Importing..."))
	} else {
		sb.WriteString(m.picker.View())
	}
	sb.WriteString("\n")
	if m.err != "" {
		sb.WriteString(t.errorLine.Render(m.err))
		sb.WriteString("\n")
	}
	sb.WriteString(t.status.Render(h.View(formKeyMap)))
	return sb.String()
}
