package logtail

import (
	"strings"

	"github.com/charmbracelet/lipgloss"
)

var (
	timeStyle      = lipgloss.NewStyle().Foreground(lipgloss.Color("#808080"))
	componentStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("#87AFFF"))
	fieldKeyStyle  = lipgloss.NewStyle().Foreground(lipgloss.Color("#666666"))
	levelStyles    = map[string]lipgloss.Style{
		"debug":   lipgloss.NewStyle().Foreground(lipgloss.Color("#87CEEB")).Bold(true),
		"info":    lipgloss.NewStyle().Foreground(lipgloss.Color("#5FD75F")).Bold(true),
		"warning": lipgloss.NewStyle().Foreground(lipgloss.Color("#FFD700")).Bold(true),
		"error":   lipgloss.NewStyle().Foreground(lipgloss.Color("#FF6B6B")).Bold(true),
		"fatal":   lipgloss.NewStyle().Foreground(lipgloss.Color("#FF6B6B")).Bold(true),
		"panic":   lipgloss.NewStyle().Foreground(lipgloss.Color("#FF6B6B")).Bold(true),
	}
)

// ColorizeLine renders a log line for the terminal. Lines that do not parse
// are returned unchanged.
func ColorizeLine(line string) string {
	e, ok := ParseLine(line)
	if !ok {
		return line
	}
	var parts []string
	if !e.Time.IsZero() {
		parts = append(parts, timeStyle.Render(e.Time.Format("2006-01-02 15:04:05")))
	}
	level := strings.ToUpper(e.Level)
	if style, ok := levelStyles[e.Level]; ok {
		level = style.Render(level)
	}
	parts = append(parts, level)
	if e.Component != "" {
		parts = append(parts, componentStyle.Render("["+e.Component+"]"))
	}
	parts = append(parts, e.Message)
	for _, k := range e.Keys {
		parts = append(parts, fieldKeyStyle.Render(k+"=")+e.Fields[k])
	}
	return strings.Join(parts, " ")
}

// ColorizeLines applies ColorizeLine to every line.
func ColorizeLines(lines []string) []string {
	out := make([]string, len(lines))
	for i, line := range lines {
		out[i] = ColorizeLine(line)
	}
	return out
}
