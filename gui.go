//go:build gui

package main

import (
	"context"
	"fmt"
	"image/color"
	"os"
	"time"

	"fyne.io/fyne/v2"
	fyneapp "fyne.io/fyne/v2/app"
	"fyne.io/fyne/v2/container"
	"fyne.io/fyne/v2/dialog"
	"fyne.io/fyne/v2/theme"
	"fyne.io/fyne/v2/widget"
	"github.com/dustin/go-humanize"

	"github.com/metcalfc/hark/internal/app"
	"github.com/metcalfc/hark/internal/document"
	"github.com/metcalfc/hark/internal/playback"
	"github.com/metcalfc/hark/internal/reader"
	"github.com/metcalfc/hark/internal/settings"
	"github.com/metcalfc/hark/internal/speech"
)

func main() {
	os.Exit(run("hark", runGUI))
}

// paragraphSize is the theme size of the reading text.
const paragraphSize fyne.ThemeSizeName = "harkParagraph"

// readerTheme follows the dark mode and font size settings.
type readerTheme struct {
	prefs *settings.Store
}

func (t readerTheme) variant() fyne.ThemeVariant {
	if t.prefs.Snapshot().DarkMode {
		return theme.VariantDark
	}
	return theme.VariantLight
}

func (t readerTheme) Color(n fyne.ThemeColorName, _ fyne.ThemeVariant) color.Color {
	return theme.DefaultTheme().Color(n, t.variant())
}

func (t readerTheme) Font(s fyne.TextStyle) fyne.Resource {
	return theme.DefaultTheme().Font(s)
}

func (t readerTheme) Icon(n fyne.ThemeIconName) fyne.Resource {
	return theme.DefaultTheme().Icon(n)
}

func (t readerTheme) Size(n fyne.ThemeSizeName) float32 {
	if n == paragraphSize {
		return float32(t.prefs.Snapshot().FontSize)
	}
	return theme.DefaultTheme().Size(n)
}

type gui struct {
	app     *app.App
	fyneApp fyne.App
	win     fyne.Window
	theme   readerTheme

	docs        []document.Document
	library     *widget.List
	libraryView fyne.CanvasObject

	docID      string
	title      *widget.Label
	section    *widget.Label
	paragraph  *widget.RichText
	progress   *widget.Label
	playBtn    *widget.Button
	markBtn    *widget.Button
	readerView fyne.CanvasObject
}

func runGUI(a *app.App, startID string) error {
	fa := fyneapp.NewWithID("io.github.metcalfc.hark")
	g := &gui{
		app:     a,
		fyneApp: fa,
		win:     fa.NewWindow("hark"),
		theme:   readerTheme{prefs: a.Settings},
	}
	fa.Settings().SetTheme(g.theme)

	g.libraryView = g.buildLibrary()
	g.readerView = g.buildReader()

	a.Player.OnChange(func(playback.Status) {
		fyne.Do(g.refreshReader)
	})

	g.win.Canvas().SetOnTypedKey(g.typedKey)
	g.win.SetOnClosed(a.CloseReader)
	g.win.Resize(fyne.NewSize(800, 600))
	g.showLibrary()

	if startID != "" {
		if !g.open(startID) {
			dialog.ShowError(fmt.Errorf("no document with id %s", startID), g.win)
		}
	}

	g.win.ShowAndRun()
	return nil
}

func (g *gui) buildLibrary() fyne.CanvasObject {
	g.library = widget.NewList(
		func() int { return len(g.docs) },
		func() fyne.CanvasObject {
			name := widget.NewLabel("Name")
			name.TextStyle.Bold = true
			return container.NewVBox(name, widget.NewLabel("Details"))
		},
		func(id widget.ListItemID, obj fyne.CanvasObject) {
			d := g.docs[id]
			vbox := obj.(*fyne.Container)
			vbox.Objects[0].(*widget.Label).SetText(d.Name)
			vbox.Objects[1].(*widget.Label).SetText(fmt.Sprintf("%d of %d · %d bookmarks · added %s",
				d.CurrentParagraph+1, d.Len(), len(d.Bookmarks), humanize.Time(d.CreatedAt())))
		},
	)
	g.library.OnSelected = func(id widget.ListItemID) {
		g.library.UnselectAll()
		if id < len(g.docs) {
			g.open(g.docs[id].ID)
		}
	}

	toolbar := widget.NewToolbar(
		widget.NewToolbarAction(theme.DocumentCreateIcon(), g.showPaste),
		widget.NewToolbarAction(theme.FolderOpenIcon(), g.showImport),
		widget.NewToolbarSpacer(),
		widget.NewToolbarAction(theme.SettingsIcon(), g.showSettings),
	)

	return container.NewBorder(toolbar, nil, nil, nil, g.library)
}

func (g *gui) buildReader() fyne.CanvasObject {
	g.title = widget.NewLabel("")
	g.title.TextStyle.Bold = true
	g.title.Truncation = fyne.TextTruncateEllipsis
	g.section = widget.NewLabel("")

	g.paragraph = widget.NewRichText()
	g.paragraph.Wrapping = fyne.TextWrapWord

	g.progress = widget.NewLabel("")
	g.progress.Alignment = fyne.TextAlignCenter

	g.playBtn = widget.NewButtonWithIcon("", theme.MediaPlayIcon(), func() {
		g.report(g.app.Player.Toggle(g.docID))
	})
	g.playBtn.Importance = widget.HighImportance
	g.markBtn = widget.NewButtonWithIcon("", theme.ContentAddIcon(), g.toggleBookmark)

	prev := widget.NewButtonWithIcon("", theme.MediaSkipPreviousIcon(), func() {
		g.report(g.app.Player.Previous(g.docID))
	})
	next := widget.NewButtonWithIcon("", theme.MediaSkipNextIcon(), func() {
		g.report(g.app.Player.Next(g.docID))
	})
	stop := widget.NewButtonWithIcon("", theme.MediaStopIcon(), g.app.Player.Stop)

	header := container.NewBorder(nil, nil,
		widget.NewButtonWithIcon("", theme.NavigateBackIcon(), g.showLibrary),
		container.NewHBox(
			widget.NewButtonWithIcon("", theme.ListIcon(), g.showParagraphs),
			widget.NewButtonWithIcon("", theme.SettingsIcon(), g.showSettings),
		),
		container.NewVBox(g.title, g.section),
	)
	controls := container.NewVBox(
		g.progress,
		container.NewCenter(container.NewHBox(prev, g.playBtn, stop, next, g.markBtn)),
	)

	return container.NewBorder(header, controls, nil, nil,
		container.NewVScroll(container.NewPadded(g.paragraph)))
}

func (g *gui) showLibrary() {
	if g.docID != "" {
		g.app.CloseReader()
		g.docID = ""
	}
	g.docs = g.app.Documents.List()
	g.library.Refresh()
	g.win.SetContent(g.libraryView)
}

func (g *gui) open(id string) bool {
	doc, ok := g.app.Open(id)
	if !ok {
		return false
	}
	g.docID = doc.ID
	g.win.SetContent(g.readerView)
	g.refreshReader()
	return true
}

// refreshReader redraws the reader from the store and the player.
func (g *gui) refreshReader() {
	doc, ok := g.app.Documents.Get(g.docID)
	if !ok {
		return
	}

	g.title.SetText(doc.Name)
	g.section.SetText("")
	if s, ok := doc.SectionAt(doc.CurrentParagraph); ok {
		g.section.SetText(s.Title)
	}

	style := widget.RichTextStyleParagraph
	style.SizeName = paragraphSize
	g.paragraph.Segments = []widget.RichTextSegment{
		&widget.TextSegment{Text: doc.Paragraph(), Style: style},
	}
	g.paragraph.Refresh()

	g.progress.SetText(fmt.Sprintf("%d of %d", doc.CurrentParagraph+1, doc.Len()))

	if g.app.Player.Speaking(doc.ID) {
		g.playBtn.SetIcon(theme.MediaPauseIcon())
	} else {
		g.playBtn.SetIcon(theme.MediaPlayIcon())
	}
	if doc.IsBookmarked(doc.CurrentParagraph) {
		g.markBtn.SetIcon(theme.ConfirmIcon())
	} else {
		g.markBtn.SetIcon(theme.ContentAddIcon())
	}
}

func (g *gui) toggleBookmark() {
	doc, ok := g.app.Documents.Get(g.docID)
	if !ok {
		return
	}
	_, err := g.app.Documents.ToggleBookmark(doc.ID, doc.CurrentParagraph)
	g.report(err)
}

// report shows err, if any, and redraws.
func (g *gui) report(err error) {
	if err != nil {
		dialog.ShowError(err, g.win)
	}
	g.refreshReader()
}

func (g *gui) typedKey(ev *fyne.KeyEvent) {
	if g.docID == "" {
		return
	}
	switch ev.Name {
	case fyne.KeySpace:
		g.report(g.app.Player.Toggle(g.docID))
	case fyne.KeyLeft:
		g.report(g.app.Player.Previous(g.docID))
	case fyne.KeyRight:
		g.report(g.app.Player.Next(g.docID))
	case fyne.KeyB:
		g.toggleBookmark()
	case fyne.KeyEscape:
		g.showLibrary()
	}
}

func (g *gui) showParagraphs() {
	doc, ok := g.app.Documents.Get(g.docID)
	if !ok {
		return
	}

	var d dialog.Dialog
	list := widget.NewList(
		func() int { return doc.Len() },
		func() fyne.CanvasObject { return widget.NewLabel("Paragraph") },
		func(id widget.ListItemID, obj fyne.CanvasObject) {
			mark := "   "
			if doc.IsBookmarked(id) {
				mark = "★ "
			}
			obj.(*widget.Label).SetText(fmt.Sprintf("%s%d. %s", mark, id+1, reader.Preview(doc.Content[id], 10)))
		},
	)
	list.OnSelected = func(id widget.ListItemID) {
		g.report(g.app.Player.JumpTo(doc.ID, id))
		d.Hide()
	}

	d = dialog.NewCustom("Paragraphs", "Close", list, g.win)
	d.Resize(fyne.NewSize(560, 440))
	d.Show()
	list.ScrollTo(doc.CurrentParagraph)
}

func (g *gui) showPaste() {
	name := widget.NewEntry()
	name.SetPlaceHolder("Document name")
	text := widget.NewMultiLineEntry()
	text.SetPlaceHolder("Paste or type text. Separate paragraphs with a blank line.")
	text.Wrapping = fyne.TextWrapWord
	text.SetMinRowsVisible(10)

	items := []*widget.FormItem{
		widget.NewFormItem("Name", name),
		widget.NewFormItem("Text", text),
	}
	d := dialog.NewForm("Paste text", "Add", "Cancel", items, func(ok bool) {
		if !ok {
			return
		}
		doc, err := g.app.PasteText(name.Text, text.Text)
		if err != nil {
			dialog.ShowError(err, g.win)
			return
		}
		g.open(doc.ID)
	}, g.win)
	d.Resize(fyne.NewSize(600, 420))
	d.Show()
}

func (g *gui) showImport() {
	d := dialog.NewFileOpen(func(r fyne.URIReadCloser, err error) {
		if err != nil {
			dialog.ShowError(err, g.win)
			return
		}
		if r == nil {
			return
		}
		path := r.URI().Path()
		r.Close()

		doc, err := g.app.OpenFile(path)
		if err != nil {
			dialog.ShowError(err, g.win)
			return
		}
		g.open(doc.ID)
	}, g.win)
	d.Resize(fyne.NewSize(700, 500))
	d.Show()
}

func (g *gui) showSettings() {
	prefs := g.app.Settings
	cur := prefs.Snapshot()

	// Setting changes take effect in the theme on the next redraw.
	apply := func(err error) {
		if err != nil {
			dialog.ShowError(err, g.win)
		}
		g.fyneApp.Settings().SetTheme(g.theme)
		g.refreshReader()
	}

	dark := widget.NewCheck("Dark mode", nil)
	dark.SetChecked(cur.DarkMode)
	dark.OnChanged = func(on bool) { apply(prefs.SetDarkMode(on)) }

	auto := widget.NewCheck("Advance to the next paragraph", nil)
	auto.SetChecked(cur.AutoAdvance)
	auto.OnChanged = func(on bool) { apply(prefs.SetAutoAdvance(on)) }

	fontLabel := widget.NewLabel(fmt.Sprintf("%d", cur.FontSize))
	font := widget.NewSlider(settings.MinFontSize, settings.MaxFontSize)
	font.Step = 2
	font.SetValue(float64(cur.FontSize))
	font.OnChanged = func(v float64) { fontLabel.SetText(fmt.Sprintf("%.0f", v)) }
	font.OnChangeEnded = func(v float64) { apply(prefs.SetFontSize(int(v))) }

	rateLabel := widget.NewLabel(fmt.Sprintf("%d wpm", cur.Rate))
	rate := widget.NewSlider(80, 450)
	rate.Step = 5
	rate.SetValue(float64(cur.Rate))
	rate.OnChanged = func(v float64) { rateLabel.SetText(fmt.Sprintf("%.0f wpm", v)) }
	rate.OnChangeEnded = func(v float64) { apply(prefs.SetRate(int(v))) }

	pitch := widget.NewSlider(0, 99)
	pitch.SetValue(float64(cur.Pitch))
	pitch.OnChangeEnded = func(v float64) { apply(prefs.SetPitch(int(v))) }

	voice := g.voiceSelect(cur.SelectedVoice, func(id string) { apply(prefs.SetSelectedVoice(id)) })

	form := widget.NewForm(
		widget.NewFormItem("", dark),
		widget.NewFormItem("Font size", container.NewBorder(nil, nil, nil, fontLabel, font)),
		widget.NewFormItem("", auto),
		widget.NewFormItem("Voice", voice),
		widget.NewFormItem("Rate", container.NewBorder(nil, nil, nil, rateLabel, rate)),
		widget.NewFormItem("Pitch", pitch),
		widget.NewFormItem("Engine", widget.NewLabel(g.app.Engine().Name())),
	)

	d := dialog.NewCustom("Settings", "Close", form, g.win)
	d.Resize(fyne.NewSize(520, 420))
	d.Show()
}

const automaticVoice = "Automatic (by language)"

// voiceSelect fills its options once the engine has listed its voices.
func (g *gui) voiceSelect(selected string, onChange func(id string)) *widget.Select {
	var voices []speech.Voice
	sel := widget.NewSelect([]string{automaticVoice}, nil)
	sel.SetSelected(automaticVoice)

	go func() {
		ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		list, err := g.app.Voices(ctx)
		if err != nil {
			return
		}

		fyne.Do(func() {
			voices = list
			options := []string{automaticVoice}
			for _, v := range voices {
				options = append(options, voiceLabel(v))
				if v.ID == selected {
					sel.SetSelected(voiceLabel(v))
				}
			}
			sel.SetOptions(options)

			sel.OnChanged = func(label string) {
				id := ""
				for _, v := range voices {
					if voiceLabel(v) == label {
						id = v.ID
					}
				}
				onChange(id)
			}
		})
	}()

	return sel
}

func voiceLabel(v speech.Voice) string {
	if v.Language == "" {
		return v.Name
	}
	return v.Name + " (" + v.Language + ")"
}
