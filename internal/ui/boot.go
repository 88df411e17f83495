package ui

import (
	"strings"

	"github.com/charmbracelet/lipgloss"

	"github.com/five82/mnemo/internal/boot"
)

const (
	glyphPending = "○"
	glyphDone    = "✓"
	glyphFailed  = "✗"
	glyphActive  = "●"
)

// renderBoot renders the checklist shown until the monitor reaches ready.
func (m Model) renderBoot() string {
	styles := m.theme.Styles()

	var b strings.Builder
	b.WriteString(styles.Logo.Render("mnemo"))
	b.WriteString("\n\n")

	for _, step := range boot.Steps {
		b.WriteString(m.renderStep(step, styles))
		b.WriteString("\n")
	}
	b.WriteString("\n")

	if m.bootState == boot.Error {
		b.WriteString(styles.DangerText.Render("Backend not responding"))
		b.WriteString("\n")
		b.WriteString(styles.MutedText.Render("Restart mnemo once the backend is up."))
		if m.logPath != "" {
			b.WriteString("\n")
			b.WriteString(styles.FaintText.Render("logs " + truncateMiddle(m.logPath, 48)))
		}
	} else {
		b.WriteString(styles.MutedText.Render(titleCase(m.bootState.String()) + "..."))
		if m.baseURL != "" {
			b.WriteString("\n")
			b.WriteString(styles.FaintText.Render("backend " + truncateMiddle(m.baseURL, 48)))
		}
	}

	box := lipgloss.NewStyle().
		Border(lipgloss.RoundedBorder()).
		BorderForeground(lipgloss.Color(m.theme.Focus)).
		Padding(1, 3).
		Render(b.String())

	if m.width <= 0 || m.height <= 0 {
		return box
	}
	return lipgloss.Place(m.width, m.height, lipgloss.Center, lipgloss.Center, box)
}

func (m Model) renderStep(step boot.Step, styles Styles) string {
	switch boot.StatusOf(step, m.bootState) {
	case boot.StepDone:
		return styles.SuccessText.Render(glyphDone) + " " + styles.Text.Render(step.Label)
	case boot.StepFailed:
		return styles.DangerText.Render(glyphFailed) + " " + styles.MutedText.Render(step.Label)
	case boot.StepActive:
		glyph := styles.AccentText.Render(glyphActive)
		if m.userPrefs.AnimationsEnabled() {
			glyph = m.spinner.View()
		}
		return glyph + " " + styles.AccentText.Bold(true).Render(step.Label)
	default:
		return styles.FaintText.Render(glyphPending) + " " + styles.FaintText.Render(step.Label)
	}
}
