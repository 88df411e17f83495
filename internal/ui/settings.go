package ui

import (
	"strconv"
	"strings"

	"github.com/charmbracelet/bubbles/key"
	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"

	"github.com/five82/mnemo/internal/prefs"
)

type settingRow int

const (
	settingTheme settingRow = iota
	settingGallerySize
	settingZoomMode
	settingAnimations
	settingBackendURL
	settingCount
)

var settingLabels = map[settingRow]string{
	settingTheme:       "Theme",
	settingGallerySize: "Gallery size",
	settingZoomMode:    "Zoom mode",
	settingAnimations:  "Animations",
	settingBackendURL:  "Backend URL",
}

type settingsState struct {
	cursor  settingRow
	editing bool
	url     textinput.Model
}

func newSettingsState() settingsState {
	url := textinput.New()
	url.Placeholder = "http://127.0.0.1:8000"
	url.Prompt = ""
	url.CharLimit = 512
	return settingsState{url: url}
}

func (m Model) handleSettingsKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	if m.settings.editing {
		switch {
		case key.Matches(msg, m.keys.Confirm):
			m.settings.editing = false
			m.settings.url.Blur()
			m.saveSetting(func(s *prefs.Store) error { return s.SetBaseURL(m.settings.url.Value()) })
			if !m.notice.isErr {
				m.notice = notice{text: "Backend URL saved; the next request uses " + m.baseURL}
				m.triggerRefresh()
			}
			return m, nil
		case key.Matches(msg, m.keys.Escape):
			m.settings.editing = false
			m.settings.url.Blur()
			return m, nil
		}
		var cmd tea.Cmd
		m.settings.url, cmd = m.settings.url.Update(msg)
		return m, cmd
	}

	switch {
	case key.Matches(msg, m.keys.Down):
		if m.settings.cursor < settingCount-1 {
			m.settings.cursor++
		}
	case key.Matches(msg, m.keys.Up):
		if m.settings.cursor > 0 {
			m.settings.cursor--
		}
	case key.Matches(msg, m.keys.Confirm), msg.String() == " ":
		return m.changeSetting()
	}
	return m, nil
}

func (m Model) changeSetting() (tea.Model, tea.Cmd) {
	switch m.settings.cursor {
	case settingTheme:
		m.cycleTheme()
	case settingGallerySize:
		next := prefs.Next(prefs.GallerySizes, m.userPrefs.GallerySize)
		m.saveSetting(func(s *prefs.Store) error { return s.SetGallerySize(next) })
	case settingZoomMode:
		next := prefs.Next(prefs.ZoomModes, m.userPrefs.ZoomMode)
		m.saveSetting(func(s *prefs.Store) error { return s.SetZoomMode(next) })
	case settingAnimations:
		enable := !m.userPrefs.AnimationsEnabled()
		m.saveSetting(func(s *prefs.Store) error { return s.SetAnimations(enable) })
		if enable {
			return m, m.spinner.Tick
		}
	case settingBackendURL:
		m.settings.editing = true
		m.settings.url.SetValue(m.baseURL)
		m.settings.url.CursorEnd()
		return m, m.settings.url.Focus()
	}
	return m, nil
}

// saveSetting persists through the prefs store and reloads, so the model
// shows what is actually on disk.
func (m *Model) saveSetting(write func(*prefs.Store) error) {
	if m.prefs == nil {
		return
	}
	if err := write(m.prefs); err != nil {
		m.notice = notice{text: "Could not save preferences: " + err.Error(), isErr: true}
		return
	}
	m.notice = notice{}
	m.applyPrefs(m.prefs.Load())
}

func (m Model) settingValue(row settingRow) string {
	switch row {
	case settingTheme:
		return m.theme.Name
	case settingGallerySize:
		return m.userPrefs.GallerySize
	case settingZoomMode:
		return m.userPrefs.ZoomMode
	case settingAnimations:
		return strconv.FormatBool(m.userPrefs.AnimationsEnabled())
	case settingBackendURL:
		return m.baseURL
	default:
		return ""
	}
}

func (m Model) renderSettings() string {
	styles := m.theme.Styles()

	var b strings.Builder
	for row := settingTheme; row < settingCount; row++ {
		label := padRight(settingLabels[row], 16)
		value := m.settingValue(row)
		if row == settingBackendURL && m.settings.editing {
			value = m.settings.url.View()
		}
		line := label + value
		if row == m.settings.cursor {
			b.WriteString(styles.Selected.Render(line))
		} else {
			b.WriteString(styles.MutedText.Render(label) + styles.Text.Render(value))
		}
		b.WriteString("\n")
	}

	b.WriteString("\n")
	b.WriteString(styles.FaintText.Render("enter/space to change"))
	if m.prefs != nil {
		b.WriteString("\n")
		b.WriteString(styles.FaintText.Render("saved to " + truncateMiddle(m.prefs.Path(), 60)))
	}
	if m.logPath != "" {
		b.WriteString("\n")
		b.WriteString(styles.FaintText.Render("logs " + truncateMiddle(m.logPath, 60)))
	}
	return b.String()
}
