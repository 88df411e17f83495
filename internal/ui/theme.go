package ui

import (
	"strings"

	"github.com/charmbracelet/lipgloss"
)

// Theme is a named palette. Colors are hex strings.
type Theme struct {
	Name string

	Background string
	Surface    string // header and panels
	SurfaceAlt string // command bar
	Selection  string
	OnSelected string // text on Selection
	Focus      string // focused borders

	Text    string
	Muted   string
	Faint   string
	Accent  string
	Success string
	Warning string
	Danger  string
	Info    string

	// KindColors tints badges by document type or face state.
	KindColors map[string]string
}

// Styles are the lipgloss styles derived from a Theme.
type Styles struct {
	Background lipgloss.Style
	Surface    lipgloss.Style
	SurfaceAlt lipgloss.Style

	Text        lipgloss.Style
	MutedText   lipgloss.Style
	FaintText   lipgloss.Style
	AccentText  lipgloss.Style
	SuccessText lipgloss.Style
	WarningText lipgloss.Style
	DangerText  lipgloss.Style
	InfoText    lipgloss.Style

	Header   lipgloss.Style
	Logo     lipgloss.Style
	Selected lipgloss.Style

	kindColors map[string]string
	background string
	muted      string
}

func fg(color string) lipgloss.Style {
	return lipgloss.NewStyle().Foreground(lipgloss.Color(color))
}

// Styles builds the style set for t.
func (t Theme) Styles() Styles {
	surface := lipgloss.Color(t.Surface)
	return Styles{
		Background: lipgloss.NewStyle().Background(lipgloss.Color(t.Background)),
		Surface:    fg(t.Text).Background(surface),
		SurfaceAlt: fg(t.Text).Background(lipgloss.Color(t.SurfaceAlt)),

		Text:        fg(t.Text),
		MutedText:   fg(t.Muted),
		FaintText:   fg(t.Faint),
		AccentText:  fg(t.Accent),
		SuccessText: fg(t.Success).Bold(true),
		WarningText: fg(t.Warning),
		DangerText:  fg(t.Danger).Bold(true),
		InfoText:    fg(t.Info),

		Header:   fg(t.Text).Background(surface).Padding(0, 1),
		Logo:     fg(t.Warning).Bold(true),
		Selected: fg(t.OnSelected).Background(lipgloss.Color(t.Selection)),

		kindColors: t.KindColors,
		background: t.Background,
		muted:      t.Muted,
	}
}

// KindStyle returns a badge style for a document type such as "pdf" or
// "image". Unknown kinds use the muted color.
func (s Styles) KindStyle(kind string) lipgloss.Style {
	color := s.kindColors[kindKey(kind)]
	if color == "" {
		color = s.muted
	}
	return fg(s.background).Background(lipgloss.Color(color)).Padding(0, 1)
}

// WithBackground paints every style onto bgColor so text drawn inside a
// filled region does not punch holes through it.
func (s Styles) WithBackground(bgColor string) Styles {
	bg := lipgloss.Color(bgColor)
	out := s
	for _, st := range []*lipgloss.Style{
		&out.Background, &out.Surface, &out.SurfaceAlt,
		&out.Text, &out.MutedText, &out.FaintText, &out.AccentText,
		&out.SuccessText, &out.WarningText, &out.DangerText, &out.InfoText,
		&out.Header, &out.Logo, &out.Selected,
	} {
		*st = st.Background(bg)
	}
	return out
}

var themeOrder = []string{"Nightfox", "Kanagawa", "Slate"}

var themes = map[string]Theme{
	// https://github.com/EdenEast/nightfox.nvim
	"Nightfox": {
		Name:       "Nightfox",
		Background: "#131a24",
		Surface:    "#192330",
		SurfaceAlt: "#212e3f",
		Selection:  "#2b3b51",
		OnSelected: "#cdcecf",
		Focus:      "#719cd6",
		Text:       "#cdcecf",
		Muted:      "#738091",
		Faint:      "#71839b",
		Accent:     "#719cd6",
		Success:    "#81b29a",
		Warning:    "#dbc074",
		Danger:     "#c94f6d",
		Info:       "#63cdcf",
		KindColors: kinds("#cdcecf", "#c94f6d", "#63cdcf", "#719cd6", "#81b29a", "#9d79d6", "#f4a261", "#dbc074", "#738091"),
	},
	// https://github.com/rebelot/kanagawa.nvim
	"Kanagawa": {
		Name:       "Kanagawa",
		Background: "#16161D",
		Surface:    "#1F1F28",
		SurfaceAlt: "#2A2A37",
		Selection:  "#2D4F67",
		OnSelected: "#DCD7BA",
		Focus:      "#7E9CD8",
		Text:       "#DCD7BA",
		Muted:      "#C8C093",
		Faint:      "#727169",
		Accent:     "#7E9CD8",
		Success:    "#98BB6C",
		Warning:    "#E6C384",
		Danger:     "#E46876",
		Info:       "#7FB4CA",
		KindColors: kinds("#DCD7BA", "#E46876", "#7FB4CA", "#7E9CD8", "#98BB6C", "#957FB8", "#FFA066", "#E6C384", "#727169"),
	},
	// Tailwind slate and sky.
	"Slate": {
		Name:       "Slate",
		Background: "#020617",
		Surface:    "#0f172a",
		SurfaceAlt: "#1e293b",
		Selection:  "#0284c7",
		OnSelected: "#f8fafc",
		Focus:      "#38bdf8",
		Text:       "#f1f5f9",
		Muted:      "#94a3b8",
		Faint:      "#64748b",
		Accent:     "#38bdf8",
		Success:    "#22c55e",
		Warning:    "#f59e0b",
		Danger:     "#ef4444",
		Info:       "#06b6d4",
		KindColors: kinds("#f1f5f9", "#dc2626", "#38bdf8", "#0284c7", "#22c55e", "#06b6d4", "#f59e0b", "#14b8a6", "#64748b"),
	},
}

// kinds maps badge colors in the fixed order text, pdf, image, doc, sheet,
// audio, video, face, unknown.
func kinds(colors ...string) map[string]string {
	keys := []string{"text", "pdf", "image", "doc", "sheet", "audio", "video", "face", "unknown"}
	m := make(map[string]string, len(keys))
	for i, k := range keys {
		m[k] = colors[i]
	}
	return m
}

// GetTheme returns the named theme, or Nightfox.
func GetTheme(name string) Theme {
	if t, ok := themes[name]; ok {
		return t
	}
	return themes[themeOrder[0]]
}

// NextTheme returns the theme after current in the cycle.
func NextTheme(current string) string {
	for i, name := range themeOrder {
		if name == current {
			return themeOrder[(i+1)%len(themeOrder)]
		}
	}
	return themeOrder[0]
}

// ThemeNames returns the theme names in cycle order.
func ThemeNames() []string {
	return themeOrder
}

// kindKey folds backend document types and file extensions onto the palette
// keys.
func kindKey(kind string) string {
	kind = strings.ToLower(strings.TrimPrefix(strings.TrimSpace(kind), "."))
	switch kind {
	case "txt", "md", "markdown", "text", "memory", "note":
		return "text"
	case "pdf":
		return "pdf"
	case "jpg", "jpeg", "png", "webp", "gif", "image":
		return "image"
	case "doc", "docx", "odt", "rtf":
		return "doc"
	case "csv", "xls", "xlsx", "sheet":
		return "sheet"
	case "mp3", "wav", "m4a", "ogg", "audio":
		return "audio"
	case "mp4", "mov", "mkv", "webm", "video":
		return "video"
	case "face":
		return "face"
	default:
		if strings.HasPrefix(kind, "image/") {
			return "image"
		}
		return "unknown"
	}
}
