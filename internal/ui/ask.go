package ui

import (
	"strings"

	"github.com/charmbracelet/bubbles/key"
	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/five82/mnemo/internal/memory"
)

type askState struct {
	input   textinput.Model
	pending bool
	query   string
	answer  *memory.QueryResponse
	cursor  int // selected evidence row
}

func newAskState() askState {
	input := textinput.New()
	input.Placeholder = "Ask your memory anything"
	input.Prompt = "> "
	input.CharLimit = 2000
	return askState{input: input}
}

func (m Model) handleAskKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	if m.ask.input.Focused() {
		switch {
		case key.Matches(msg, m.keys.Confirm):
			query := strings.TrimSpace(m.ask.input.Value())
			if query == "" || m.ask.pending {
				return m, nil
			}
			m.ask.pending = true
			m.ask.query = query
			m.ask.input.Blur()
			cmds := []tea.Cmd{m.askCmd(query)}
			if m.userPrefs.AnimationsEnabled() {
				cmds = append(cmds, m.spinner.Tick)
			}
			return m, tea.Batch(cmds...)
		case key.Matches(msg, m.keys.Escape):
			m.ask.input.Blur()
			return m, nil
		}
		var cmd tea.Cmd
		m.ask.input, cmd = m.ask.input.Update(msg)
		return m, cmd
	}

	var evidence []memory.Evidence
	if m.ask.answer != nil {
		evidence = m.ask.answer.Evidence
	}
	switch {
	case key.Matches(msg, m.keys.Confirm), msg.String() == "/":
		return m, m.ask.input.Focus()
	case key.Matches(msg, m.keys.Down):
		m.ask.cursor = clampIndex(m.ask.cursor+1, len(evidence))
	case key.Matches(msg, m.keys.Up):
		m.ask.cursor = clampIndex(m.ask.cursor-1, len(evidence))
	case key.Matches(msg, m.keys.Share):
		if ev, ok := selectedEvidence(evidence, m.ask.cursor); ok {
			return m, m.shareCmd(ev.Filename, evidenceRef(ev))
		}
	case key.Matches(msg, m.keys.Open):
		if ev, ok := selectedEvidence(evidence, m.ask.cursor); ok {
			return m, m.openCmd(ev.Filename, evidenceRef(ev))
		}
	}
	return m, nil
}

func (m Model) handleAnswer(msg answerMsg) Model {
	if msg.query != m.ask.query {
		return m
	}
	m.ask.pending = false
	m.ask.cursor = 0
	if msg.err != nil {
		m.ask.answer = nil
		m.notice = notice{text: memory.Notice(msg.err), isErr: true}
		return m
	}
	answer := msg.answer
	m.ask.answer = &answer
	m.notice = notice{}
	return m
}

func selectedEvidence(evidence []memory.Evidence, cursor int) (memory.Evidence, bool) {
	if len(evidence) == 0 {
		return memory.Evidence{}, false
	}
	return evidence[clampIndex(cursor, len(evidence))], true
}

// evidenceRef prefers the original file over its preview.
func evidenceRef(ev memory.Evidence) string {
	if ev.FileURL != "" {
		return ev.FileURL
	}
	return ev.PreviewURL
}

func (m Model) renderAsk() string {
	styles := m.theme.Styles()
	width := m.contentWidth()

	var b strings.Builder
	b.WriteString(m.ask.input.View())
	b.WriteString("\n\n")

	switch {
	case m.ask.pending:
		glyph := glyphActive
		if m.userPrefs.AnimationsEnabled() {
			glyph = m.spinner.View()
		}
		b.WriteString(glyph + " " + styles.MutedText.Render("Thinking about \""+truncate(m.ask.query, width-20)+"\""))
		return b.String()
	case m.ask.answer == nil:
		b.WriteString(styles.FaintText.Render("enter to ask, esc to browse evidence"))
		return b.String()
	}

	answer := strings.TrimSpace(m.ask.answer.Answer)
	if answer == "" {
		answer = "No answer."
	}
	b.WriteString(lipgloss.NewStyle().Width(width - 2).Render(styles.Text.Render(answer)))

	if len(m.ask.answer.Evidence) == 0 {
		return b.String()
	}
	b.WriteString("\n\n")
	b.WriteString(styles.AccentText.Bold(true).Render("Evidence"))
	for i, ev := range m.ask.answer.Evidence {
		name := padRight(truncateMiddle(displayName(ev.Filename, evidenceRef(ev)), 28), 30)
		chunk := truncate(strings.Join(strings.Fields(ev.Chunk), " "), max(width-34, 10))
		line := name + chunk
		if i == m.ask.cursor && !m.ask.input.Focused() {
			line = styles.Selected.Render(line)
		} else {
			line = styles.MutedText.Render(line)
		}
		b.WriteString("\n" + line)
	}
	return b.String()
}
