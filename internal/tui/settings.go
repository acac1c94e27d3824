package tui

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/charmbracelet/bubbles/help"
	"github.com/charmbracelet/bubbles/key"
	tea "github.com/charmbracelet/bubbletea"

	"github.com/metcalfc/hark/internal/app"
	"github.com/metcalfc/hark/internal/settings"
	"github.com/metcalfc/hark/internal/speech"
)

type settingRow int

const (
	rowDarkMode settingRow = iota
	rowFontSize
	rowAutoAdvance
	rowVoice
	rowRate
	rowPitch
	rowCount
)

const (
	fontStep  = 2
	rateStep  = 25
	minRate   = 80
	maxRate   = 450
	pitchStep = 5
	maxPitch  = 99
)

type voicesMsg struct {
	voices []speech.Voice
	err    error
}

func loadVoices(a *app.App) tea.Cmd {
	return func() tea.Msg {
		ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		voices, err := a.Voices(ctx)
		return voicesMsg{voices: voices, err: err}
	}
}

type settingsModel struct {
	cursor settingRow
	voices []speech.Voice
	err    string
}

func newSettingsModel() settingsModel {
	return settingsModel{}
}

func (m settingsModel) open() settingsModel {
	m.cursor = rowDarkMode
	m.err = ""
	return m
}

func (m Model) updateSettings(msg tea.Msg) (tea.Model, tea.Cmd) {
	s := &m.settings

	switch msg := msg.(type) {
	case voicesMsg:
		if msg.err != nil {
			s.err = "Could not list voices: " + msg.err.Error()
			return m, nil
		}
		s.voices = msg.voices
		return m, nil

	case tea.KeyMsg:
		switch {
		case key.Matches(msg, settingsKeyMap.Back):
			return m, navigate(m.back, "")
		case key.Matches(msg, settingsKeyMap.Up):
			s.cursor = (s.cursor + rowCount - 1) % rowCount
		case key.Matches(msg, settingsKeyMap.Down):
			s.cursor = (s.cursor + 1) % rowCount
		case key.Matches(msg, settingsKeyMap.Decrease):
			s.adjust(m.app.Settings, -1)
		case key.Matches(msg, settingsKeyMap.Increase), key.Matches(msg, settingsKeyMap.Toggle):
			s.adjust(m.app.Settings, 1)
		}
		// The paragraph wrap width depends on the font size.
		m.reader = m.reader.sync(m.app)
	}

	return m, nil
}

// adjust changes the setting under the cursor one step in dir. Save errors
// are logged by the store and shown on the screen.
func (m *settingsModel) adjust(store *settings.Store, dir int) {
	cur := store.Snapshot()

	var err error
	switch m.cursor {
	case rowDarkMode:
		err = store.SetDarkMode(!cur.DarkMode)
	case rowAutoAdvance:
		err = store.SetAutoAdvance(!cur.AutoAdvance)
	case rowFontSize:
		err = store.SetFontSize(clamp(cur.FontSize+dir*fontStep, settings.MinFontSize, settings.MaxFontSize))
	case rowRate:
		err = store.SetRate(clamp(cur.Rate+dir*rateStep, minRate, maxRate))
	case rowPitch:
		err = store.SetPitch(clamp(cur.Pitch+dir*pitchStep, 0, maxPitch))
	case rowVoice:
		err = store.SetSelectedVoice(m.cycleVoice(cur.SelectedVoice, dir))
	}

	m.err = ""
	if err != nil {
		m.err = "Could not save settings: " + err.Error()
	}
}

// cycleVoice steps through automatic selection ("") followed by every
// voice.
func (m *settingsModel) cycleVoice(current string, dir int) string {
	ids := []string{""}
	for _, v := range m.voices {
		ids = append(ids, v.ID)
	}

	idx := 0
	for i, id := range ids {
		if id == current {
			idx = i
			break
		}
	}
	return ids[(idx+dir+len(ids))%len(ids)]
}

func clamp(v, lo, hi int) int {
	return min(max(v, lo), hi)
}

func onOff(b bool) string {
	if b {
		return "on"
	}
	return "off"
}

func (m settingsModel) voiceLabel(id string) string {
	if id == "" {
		return "automatic (by language)"
	}
	for _, v := range m.voices {
		if v.ID == id {
			label := v.Name
			if v.Language != "" {
				label += " (" + v.Language + ")"
			}
			return label
		}
	}
	return id
}

func (m settingsModel) view(t theme, h help.Model, a *app.App) string {
	cur := a.Settings.Snapshot()

	rows := []struct {
		label string
		value string
	}{
		rowDarkMode:    {"Dark mode", onOff(cur.DarkMode)},
		rowFontSize:    {"Font size", fmt.Sprintf("%d", cur.FontSize)},
		rowAutoAdvance: {"Auto-advance", onOff(cur.AutoAdvance)},
		rowVoice:       {"Voice", m.voiceLabel(cur.SelectedVoice)},
		rowRate:        {"Rate", fmt.Sprintf("%d wpm", cur.Rate)},
		rowPitch:       {"Pitch", fmt.Sprintf("%d", cur.Pitch)},
	}

	var sb strings.Builder
	sb.WriteString(t.title.Render("Settings"))
	sb.WriteString("\n\n")

	for i, r := range rows {
		line := t.label.Render(r.label) + r.value
		if settingRow(i) == m.cursor {
			sb.WriteString(t.selected.Render("> " + line))
		} else {
			sb.WriteString(t.screen.Render("  " + line))
		}
		sb.WriteString("\n")
	}

	sb.WriteString("\n")
	sb.WriteString(t.status.Render(fmt.Sprintf("Engine: %s (%d voices)", a.Engine().Name(), len(m.voices))))
	sb.WriteString("\n")
	if m.err != "" {
		sb.WriteString(t.errorLine.Render(m.err))
		sb.WriteString("\n")
	}
	sb.WriteString(t.status.Render(h.View(settingsKeyMap)))
	return sb.String()
}
