package tui

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/bubbles/help"
	"github.com/charmbracelet/bubbles/key"
	"github.com/charmbracelet/bubbles/list"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/dustin/go-humanize"

	"github.com/metcalfc/hark/internal/app"
	"github.com/metcalfc/hark/internal/document"
)

// docItem implements list.Item for the library list.
type docItem struct {
	doc document.Document
}

func (i docItem) Title() string { return i.doc.Name }

func (i docItem) Description() string {
	words := 0
	for _, p := range i.doc.Content {
		words += len(strings.Fields(p))
	}

	parts := []string{
		fmt.Sprintf("%d/%d", i.doc.CurrentParagraph+1, i.doc.Len()),
		humanize.Comma(int64(words)) + " words",
	}
	if n := len(i.doc.Bookmarks); n > 0 {
		parts = append(parts, fmt.Sprintf("%d %s", n, plural(n, "bookmark")))
	}
	if created := i.doc.CreatedAt(); !created.IsZero() {
		parts = append(parts, "added "+humanize.Time(created))
	}
	return strings.Join(parts, " · ")
}

func (i docItem) FilterValue() string { return i.doc.Name }

func plural(n int, word string) string {
	if n == 1 {
		return word
	}
	return word + "s"
}

type libraryModel struct {
	list list.Model
	err  string
}

func newLibraryModel(a *app.App) libraryModel {
	l := list.New(nil, list.NewDefaultDelegate(), 0, 0)
	l.Title = "Library"
	l.SetShowHelp(false)
	l.SetFilteringEnabled(true)
	l.SetStatusBarItemName("document", "documents")

	return libraryModel{list: l}.refresh(a)
}

func (m libraryModel) refresh(a *app.App) libraryModel {
	docs := a.Documents.List()
	items := make([]list.Item, len(docs))
	for i, d := range docs {
		items[i] = docItem{doc: d}
	}

	idx := m.list.Index()
	m.list.SetItems(items)
	if idx < len(items) {
		m.list.Select(idx)
	}
	return m
}

func (m libraryModel) resize(w, h int) libraryModel {
	m.list.SetSize(w, max(h-3, 1))
	return m
}

func (m libraryModel) selected() (document.Document, bool) {
	item, ok := m.list.SelectedItem().(docItem)
	if !ok {
		return document.Document{}, false
	}
	return item.doc, true
}

func (m Model) updateLibrary(msg tea.Msg) (tea.Model, tea.Cmd) {
	if msg, ok := msg.(tea.KeyMsg); ok && m.library.list.FilterState() != list.Filtering {
		m.library.err = ""
		switch {
		case key.Matches(msg, libraryKeyMap.Quit):
			return m, tea.Quit
		case key.Matches(msg, libraryKeyMap.Open):
			if doc, ok := m.library.selected(); ok {
				return m, navigate(screenReader, doc.ID)
			}
			return m, nil
		case key.Matches(msg, libraryKeyMap.Paste):
			return m, navigate(screenPaste, "")
		case key.Matches(msg, libraryKeyMap.Import):
			return m, navigate(screenImport, "")
		case key.Matches(msg, libraryKeyMap.Settings):
			return m, navigate(screenSettings, "")
		}
	}

	var cmd tea.Cmd
	m.library.list, cmd = m.library.list.Update(msg)
	return m, cmd
}

func (m libraryModel) view(t theme, h help.Model) string {
	var sb strings.Builder

	if len(m.list.Items()) == 0 {
		sb.WriteString(t.title.Render("Library"))
		sb.WriteString("\n\n")
		sb.WriteString(t.status.Render("No documents yet. Paste text with p or import a file with i."))
		sb.WriteString("\n")
	} else {
		sb.WriteString(m.list.View())
		sb.WriteString("\n")
	}

	if m.err != "" {
		sb.WriteString(t.errorLine.Render(m.err))
		sb.WriteString("\n")
	}
	sb.WriteString(t.status.Render(h.View(libraryKeyMap)))
	return sb.String()
}
