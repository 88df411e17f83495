package ui

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/bubbles/key"
	tea "github.com/charmbracelet/bubbletea"

	"github.com/five82/mnemo/internal/memory"
)

type facesState struct {
	cursor  int
	label   string // folder whose faces are listed below the grid
	faces   []memory.Face
	loading bool
}

func (m Model) selectedFolder() (memory.FaceFolder, bool) {
	folders := m.snapshot.Folders
	if len(folders) == 0 {
		return memory.FaceFolder{}, false
	}
	return folders[clampIndex(m.faces.cursor, len(folders))], true
}

func (m Model) galleryColumns() int {
	if cols, ok := galleryColumns[m.userPrefs.GallerySize]; ok {
		return cols
	}
	return galleryColumns["medium"]
}

func (m Model) handleFacesKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	folder, ok := m.selectedFolder()
	if !ok {
		return m, nil
	}
	n := len(m.snapshot.Folders)
	cols := m.galleryColumns()

	switch {
	case key.Matches(msg, m.keys.Down):
		m.faces.cursor = clampIndex(m.faces.cursor+cols, n)
	case key.Matches(msg, m.keys.Up):
		m.faces.cursor = clampIndex(m.faces.cursor-cols, n)
	case msg.String() == "l" || msg.String() == "right":
		m.faces.cursor = clampIndex(m.faces.cursor+1, n)
	case msg.String() == "h" || msg.String() == "left":
		m.faces.cursor = clampIndex(m.faces.cursor-1, n)
	case key.Matches(msg, m.keys.Top):
		m.faces.cursor = 0
	case key.Matches(msg, m.keys.Bottom):
		m.faces.cursor = n - 1
	case key.Matches(msg, m.keys.Confirm):
		m.faces.label = folder.Label
		m.faces.faces = nil
		m.faces.loading = true
		return m, m.labelFacesCmd(folder.Label)
	case key.Matches(msg, m.keys.Escape):
		m.faces.label = ""
		m.faces.faces = nil
		m.faces.loading = false
	case key.Matches(msg, m.keys.Share):
		return m, m.shareCmd(folder.Label+previewExt(folder.PreviewURL), folder.PreviewURL)
	case key.Matches(msg, m.keys.Open):
		return m, m.openCmd(folder.Label, folder.PreviewURL)
	}
	return m, nil
}

func (m Model) handleLabelFaces(msg labelFacesMsg) Model {
	if msg.label != m.faces.label {
		return m
	}
	m.faces.loading = false
	if msg.err != nil {
		m.notice = notice{text: memory.Notice(msg.err), isErr: true}
		return m
	}
	m.faces.faces = msg.faces
	return m
}

func previewExt(url string) string {
	if i := strings.LastIndex(url, "."); i >= 0 && i > strings.LastIndex(url, "/") {
		ext := url[i:]
		if q := strings.IndexAny(ext, "?#"); q >= 0 {
			ext = ext[:q]
		}
		return ext
	}
	return ".jpg"
}

func (m Model) renderFaces() string {
	styles := m.theme.Styles()
	folders := m.snapshot.Folders
	if len(folders) == 0 {
		if !m.snapshot.HasData {
			return styles.MutedText.Render("Loading faces...")
		}
		return styles.MutedText.Render("No labeled faces yet. Upload a photo with `mnemo faces upload`.")
	}

	cols := m.galleryColumns()
	cellWidth := max(m.contentWidth()/cols-2, 10)

	var b strings.Builder
	for i, folder := range folders {
		if i > 0 && i%cols == 0 {
			b.WriteString("\n")
		}
		cell := padRight(truncate(fmt.Sprintf("%s (%d)", folder.Label, folder.Count), cellWidth), cellWidth)
		if i == m.faces.cursor {
			cell = styles.Selected.Render(cell)
		} else {
			cell = styles.Text.Render(cell)
		}
		b.WriteString(styles.KindStyle("face").Render(" ") + cell + " ")
	}

	if m.faces.label != "" {
		b.WriteString("\n\n")
		b.WriteString(styles.AccentText.Bold(true).Render(m.faces.label))
		switch {
		case m.faces.loading:
			b.WriteString("\n" + styles.MutedText.Render("Loading faces..."))
		case len(m.faces.faces) == 0:
			b.WriteString("\n" + styles.MutedText.Render("No faces under this label."))
		default:
			for _, f := range m.faces.faces {
				line := fmt.Sprintf("face %s  cluster %s", f.FaceID, f.ClusterID)
				if f.Score > 0 {
					line += fmt.Sprintf("  score %.2f", f.Score)
				}
				if m.userPrefs.ZoomMode == "cover" && f.ImageURL != "" {
					line += "  " + truncateMiddle(m.api.ResolveURL(f.ImageURL), 48)
				}
				b.WriteString("\n" + styles.MutedText.Render(line))
			}
		}
	}
	return b.String()
}
