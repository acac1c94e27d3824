package tui

import (
	"strings"

	"github.com/charmbracelet/bubbles/help"
	"github.com/charmbracelet/bubbles/key"
	"github.com/charmbracelet/bubbles/textarea"
	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"
)

type pasteModel struct {
	name     textinput.Model
	text     textarea.Model
	focusIdx int
	err      string
}

func newPasteModel() pasteModel {
	name := textinput.New()
	name.Placeholder = "Document name"
	name.CharLimit = 120
	name.Width = 40

	text := textarea.New()
	text.Placeholder = "Paste or type text. Separate paragraphs with a blank line."
	text.CharLimit = 0
	text.ShowLineNumbers = false
	text.SetWidth(60)
	text.SetHeight(10)

	return pasteModel{name: name, text: text}
}

func (m pasteModel) resize(w, h int) pasteModel {
	m.name.Width = max(w-6, 10)
	m.text.SetWidth(max(w-4, 10))
	m.text.SetHeight(max(h-10, 3))
	return m
}

func (m *pasteModel) focus() tea.Cmd {
	if m.focusIdx == 0 {
		m.text.Blur()
		return m.name.Focus()
	}
	m.name.Blur()
	return m.text.Focus()
}

func (m Model) updatePaste(msg tea.Msg) (tea.Model, tea.Cmd) {
	if msg, ok := msg.(tea.KeyMsg); ok {
		switch {
		case key.Matches(msg, formKeyMap.Cancel):
			return m, navigate(screenLibrary, "")
		case key.Matches(msg, formKeyMap.Next):
			m.paste.focusIdx = 1 - m.paste.focusIdx
			cmd := m.paste.focus()
			return m, cmd
		case key.Matches(msg, formKeyMap.Submit):
			doc, err := m.app.PasteText(m.paste.name.Value(), m.paste.text.Value())
			if err != nil {
				m.paste.err = capitalize(err.Error())
				return m, nil
			}
			return m, navigate(screenReader, doc.ID)
		case msg.Type == tea.KeyEnter && m.paste.focusIdx == 0:
			m.paste.focusIdx = 1
			cmd := m.paste.focus()
			return m, cmd
		}
	}

	var cmd tea.Cmd
	if m.paste.focusIdx == 0 {
		m.paste.name, cmd = m.paste.name.Update(msg)
	} else {
		m.paste.text, cmd = m.paste.text.Update(msg)
	}
	return m, cmd
}

func (m pasteModel) view(t theme, h help.Model) string {
	var sb strings.Builder

	sb.WriteString(t.title.Render("Paste text"))
	sb.WriteString("\n\n")
	sb.WriteString(m.name.View())
	sb.WriteString("\n\n")
	sb.WriteString(m.text.View())
	sb.WriteString("\n")
	if m.err != "" {
		sb.WriteString(t.errorLine.Render(m.err))
		sb.WriteString("\n")
	}
	sb.WriteString(t.status.Render(h.View(formKeyMap)))
	return sb.String()
}

func capitalize(s string) string {
	if s == "" {
		return s
	}
	return strings.ToUpper(s[:1]) + s[1:]
}
