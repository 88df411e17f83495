package ui

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/bubbles/key"
	tea "github.com/charmbracelet/bubbletea"

	"github.com/five82/mnemo/internal/memory"
)

type documentsState struct {
	cursor        int
	confirmDelete memory.ID // document awaiting y/n
}

func (m Model) selectedDocument() (memory.Document, bool) {
	docs := m.snapshot.Documents
	if len(docs) == 0 {
		return memory.Document{}, false
	}
	return docs[clampIndex(m.docs.cursor, len(docs))], true
}

func (m Model) handleDocumentsKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	doc, ok := m.selectedDocument()
	if !ok {
		return m, nil
	}

	if m.docs.confirmDelete != "" {
		switch {
		case key.Matches(msg, m.keys.Yes):
			m.docs.confirmDelete = ""
			m.notice = notice{text: "Deleting " + displayName(doc.Filename, doc.FileURL) + "..."}
			return m, m.deleteDocumentCmd(doc)
		case key.Matches(msg, m.keys.No):
			m.docs.confirmDelete = ""
			m.notice = notice{}
		}
		return m, nil
	}

	n := len(m.snapshot.Documents)
	switch {
	case key.Matches(msg, m.keys.Down):
		m.docs.cursor = clampIndex(m.docs.cursor+1, n)
	case key.Matches(msg, m.keys.Up):
		m.docs.cursor = clampIndex(m.docs.cursor-1, n)
	case key.Matches(msg, m.keys.Top):
		m.docs.cursor = 0
	case key.Matches(msg, m.keys.Bottom):
		m.docs.cursor = n - 1
	case key.Matches(msg, m.keys.Delete):
		m.docs.confirmDelete = doc.DocumentID
		m.notice = notice{text: fmt.Sprintf("Delete %s? y/n", displayName(doc.Filename, doc.FileURL)), isErr: true}
	case key.Matches(msg, m.keys.Share):
		m.notice = notice{text: "Sharing " + displayName(doc.Filename, doc.FileURL) + "..."}
		return m, m.shareCmd(doc.Filename, doc.FileURL)
	case key.Matches(msg, m.keys.Open):
		return m, m.openCmd(doc.Filename, doc.FileURL)
	}
	return m, nil
}

// visibleWindow returns the [start, end) slice of total rows that keeps the
// cursor on screen.
func visibleWindow(cursor, total, rows int) (int, int) {
	if rows <= 0 || total <= rows {
		return 0, total
	}
	start := 0
	if cursor >= rows {
		start = cursor - rows + 1
	}
	return start, start + rows
}

func (m Model) renderDocuments() string {
	styles := m.theme.Styles()
	docs := m.snapshot.Documents
	if len(docs) == 0 {
		if !m.snapshot.HasData {
			return styles.MutedText.Render("Loading documents...")
		}
		return styles.MutedText.Render("No documents yet. Add one with `mnemo add` or `mnemo upload`.")
	}

	width := m.contentWidth()
	showCreated := width >= LayoutCreatedWidth
	nameWidth := width - 10
	if showCreated {
		nameWidth -= 14
	}
	nameWidth = max(nameWidth, 12)

	now := m.now()
	start, end := visibleWindow(m.docs.cursor, len(docs), m.contentRows()-1)

	var b strings.Builder
	head := padRight("TYPE", 8) + padRight("NAME", nameWidth)
	if showCreated {
		head += "ADDED"
	}
	b.WriteString(styles.FaintText.Render(head))
	for i := start; i < end; i++ {
		doc := docs[i]
		kind := doc.Type
		if kind == "" {
			kind = "file"
		}
		badge := styles.KindStyle(kind).Width(7).Render(truncate(kind, 5))
		row := padRight(truncateMiddle(displayName(doc.Filename, doc.FileURL), nameWidth-1), nameWidth)
		if showCreated {
			row += humanizeAge(doc.ParsedCreatedAt(), now)
		}
		if i == m.docs.cursor {
			row = styles.Selected.Render(row)
			if doc.DocumentID == m.docs.confirmDelete {
				row = styles.DangerText.Render(padRight(truncateMiddle(displayName(doc.Filename, doc.FileURL), nameWidth-1), nameWidth))
			}
		} else {
			row = styles.Text.Render(row)
		}
		b.WriteString("\n")
		b.WriteString(badge + " " + row)
	}
	return b.String()
}
