package tui

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/bubbles/help"
	"github.com/charmbracelet/bubbles/key"
	"github.com/charmbracelet/bubbles/list"
	"github.com/charmbracelet/bubbles/spinner"
	"github.com/charmbracelet/bubbles/viewport"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/metcalfc/hark/internal/app"
	"github.com/metcalfc/hark/internal/document"
	"github.com/metcalfc/hark/internal/reader"
)

// paraItem implements list.Item for the paragraph list.
type paraItem struct {
	index      int
	text       string
	bookmarked bool
	section    string
}

func (i paraItem) Title() string {
	mark := "  "
	if i.bookmarked {
		mark = "★ "
	}
	return fmt.Sprintf("%s%d. %s", mark, i.index+1, reader.Preview(i.text, 8))
}

func (i paraItem) Description() string { return i.section }
func (i paraItem) FilterValue() string { return i.text }

type readerModel struct {
	docID    string
	viewport viewport.Model
	spinner  spinner.Model
	list     list.Model
	showList bool
	width    int
	height   int
	err      string
}

func newReaderModel() readerModel {
	s := spinner.New()
	s.Spinner = spinner.Dot

	l := list.New(nil, list.NewDefaultDelegate(), 0, 0)
	l.Title = "Paragraphs"
	l.SetShowHelp(false)

	return readerModel{
		viewport: viewport.New(80, 18),
		spinner:  s,
		list:     l,
		width:    80,
		height:   24,
	}
}

func (m readerModel) open(doc document.Document, a *app.App) readerModel {
	m.docID = doc.ID
	m.showList = false
	m.err = ""
	return m.sync(a)
}

func (m readerModel) resize(w, h int, a *app.App) readerModel {
	m.width = w
	m.height = h
	m.viewport.Width = w
	m.viewport.Height = max(h-7, 3)
	m.list.SetSize(w, max(h-2, 3))
	return m.sync(a)
}

// sync re-reads the document and renders the current paragraph into the
// viewport.
func (m readerModel) sync(a *app.App) readerModel {
	doc, ok := a.Documents.Get(m.docID)
	if !ok {
		m.viewport.SetContent("")
		return m
	}

	width := paragraphWidth(m.width, a.Settings.Snapshot().FontSize)
	m.viewport.SetContent(lipgloss.NewStyle().Width(width).Render(doc.Paragraph()))
	m.viewport.GotoTop()
	return m
}

func (m readerModel) paragraphItems(doc document.Document) []list.Item {
	items := make([]list.Item, doc.Len())
	for i, p := range doc.Content {
		item := paraItem{index: i, text: p, bookmarked: doc.IsBookmarked(i)}
		if s, ok := doc.SectionAt(i); ok && s.Paragraph == i {
			item.section = strings.Repeat("  ", s.Level) + s.Title
		}
		items[i] = item
	}
	return items
}

func (m Model) updateReader(msg tea.Msg) (tea.Model, tea.Cmd) {
	a := m.app
	r := &m.reader

	switch msg := msg.(type) {
	case playbackMsg:
		if msg.DocumentID == r.docID {
			*r = r.sync(a)
		}
		return m, nil

	case tea.KeyMsg:
		if r.showList {
			return m.updateParagraphList(msg)
		}

		r.err = ""
		doc, ok := a.Documents.Get(r.docID)
		if !ok {
			return m, navigate(screenLibrary, "")
		}

		var err error
		switch {
		case key.Matches(msg, readerKeyMap.Back):
			return m, navigate(screenLibrary, "")
		case key.Matches(msg, readerKeyMap.Settings):
			return m, navigate(screenSettings, "")
		case key.Matches(msg, readerKeyMap.Play):
			err = a.Player.Toggle(doc.ID)
		case key.Matches(msg, readerKeyMap.Stop):
			a.Player.Stop()
		case key.Matches(msg, readerKeyMap.Previous):
			err = a.Player.Previous(doc.ID)
		case key.Matches(msg, readerKeyMap.Next):
			err = a.Player.Next(doc.ID)
		case key.Matches(msg, readerKeyMap.Bookmark):
			_, err = a.Documents.ToggleBookmark(doc.ID, doc.CurrentParagraph)
		case key.Matches(msg, readerKeyMap.List):
			r.list.SetItems(r.paragraphItems(doc))
			r.list.Select(doc.CurrentParagraph)
			r.showList = true
			return m, nil
		default:
			var cmd tea.Cmd
			r.viewport, cmd = r.viewport.Update(msg)
			return m, cmd
		}

		if err != nil {
			r.err = capitalize(err.Error())
		}
		*r = r.sync(a)
		return m, nil
	}

	var cmd tea.Cmd
	r.viewport, cmd = r.viewport.Update(msg)
	return m, cmd
}

func (m Model) updateParagraphList(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	r := &m.reader

	if r.list.FilterState() != list.Filtering {
		switch msg.String() {
		case "esc", "q", "p", "tab":
			r.showList = false
			return m, nil
		case "enter":
			if item, ok := r.list.SelectedItem().(paraItem); ok {
				if err := m.app.Player.JumpTo(r.docID, item.index); err != nil {
					r.err = capitalize(err.Error())
				}
			}
			r.showList = false
			*r = r.sync(m.app)
			return m, nil
		}
	}

	var cmd tea.Cmd
	r.list, cmd = r.list.Update(msg)
	return m, cmd
}

func (m readerModel) view(t theme, h help.Model, a *app.App) string {
	doc, ok := a.Documents.Get(m.docID)
	if !ok {
		return ""
	}
	if m.showList {
		return m.list.View()
	}

	var sb strings.Builder

	title := t.title.Render(doc.Name)
	if doc.IsBookmarked(doc.CurrentParagraph) {
		title += t.bookmark.Render(" ★")
	}
	sb.WriteString(title)
	if s, ok := doc.SectionAt(doc.CurrentParagraph); ok {
		sb.WriteString(t.status.Render("· " + s.Title))
	}
	sb.WriteString("\n")

	sb.WriteString(t.paragraph.Render(m.viewport.View()))
	sb.WriteString("\n")

	progress := t.progress.Render(fmt.Sprintf("%d of %d", doc.CurrentParagraph+1, doc.Len()))
	if a.Player.Speaking(doc.ID) {
		progress += "  " + t.speaking.Render(m.spinner.View()+" speaking")
	}
	sb.WriteString(t.status.Render(progress))
	sb.WriteString("\n")

	if m.err != "" {
		sb.WriteString(t.errorLine.Render(m.err))
		sb.WriteString("\n")
	}
	sb.WriteString(t.status.Render(h.View(readerKeyMap)))
	return sb.String()
}
