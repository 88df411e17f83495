package ui

import (
	"fmt"

	"github.com/charmbracelet/lipgloss"

	"github.com/five82/mnemo/internal/memory"
)

// renderHeader renders the status bar: logo, backend state and library
// counts.
func (m Model) renderHeader() string {
	styles := m.theme.Styles().WithBackground(m.theme.Surface)
	bg := NewBgStyle(m.theme.Surface)
	compact := m.contentWidth() < LayoutCompactWidth

	parts := []string{bg.Render("mnemo", styles.Logo)}

	switch {
	case m.snapshot.IsOffline():
		parts = append(parts, bg.Render("● OFFLINE", styles.DangerText))
	case m.snapshot.LastError != nil:
		parts = append(parts, bg.Render("● DEGRADED", styles.WarningText))
	default:
		parts = append(parts, bg.Render("● READY", styles.SuccessText))
	}

	parts = append(parts,
		bg.Render("Docs:", styles.MutedText)+bg.Space()+
			bg.Render(fmt.Sprintf("%d", len(m.snapshot.Documents)), styles.Text),
		bg.Render("Faces:", styles.MutedText)+bg.Space()+
			bg.Render(fmt.Sprintf("%d", len(m.snapshot.Folders)), styles.Text),
	)

	if !compact {
		if m.baseURL != "" {
			parts = append(parts, bg.Render(truncateMiddle(m.baseURL, 40), styles.FaintText))
		}
		if !m.snapshot.LastUpdated.IsZero() {
			parts = append(parts,
				bg.Render("updated", styles.FaintText)+bg.Space()+
					bg.Render(m.snapshot.LastUpdated.Format("15:04:05"), styles.MutedText))
		}
	}

	return styles.Header.Width(m.contentWidth()).Render(bg.Join(parts, "  "))
}

// renderCommandBar renders the view tabs and the help hint.
func (m Model) renderCommandBar() string {
	styles := m.theme.Styles().WithBackground(m.theme.SurfaceAlt)
	bg := NewBgStyle(m.theme.SurfaceAlt)

	var parts []string
	for i, v := range viewOrder {
		label := fmt.Sprintf("%d %s", i+1, v)
		if v == m.view {
			parts = append(parts, lipgloss.NewStyle().
				Background(lipgloss.Color(m.theme.Selection)).
				Foreground(lipgloss.Color(m.theme.OnSelected)).
				Bold(true).
				Padding(0, 1).
				Render(label))
			continue
		}
		parts = append(parts, bg.Spaces(1)+bg.Render(label, styles.MutedText)+bg.Spaces(1))
	}
	parts = append(parts, bg.Render("? help", styles.FaintText))

	return bg.FillLine(bg.Join(parts, " "), m.contentWidth())
}

// renderNotice renders the one-line result of the last action, or the last
// refresh error while the library is degraded.
func (m Model) renderNotice() string {
	styles := m.theme.Styles()
	switch {
	case m.notice.text != "" && m.notice.isErr:
		return styles.DangerText.Render(truncate(m.notice.text, m.contentWidth()))
	case m.notice.text != "":
		return styles.InfoText.Render(truncate(m.notice.text, m.contentWidth()))
	case m.snapshot.LastError != nil:
		return styles.WarningText.Render(truncate(memory.Notice(m.snapshot.LastError), m.contentWidth()))
	default:
		return ""
	}
}
