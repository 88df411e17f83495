package ui

import (
	"context"
	"errors"
	"strings"
	"time"

	"github.com/charmbracelet/bubbles/key"
	"github.com/charmbracelet/bubbles/spinner"
	tea "github.com/charmbracelet/bubbletea"

	"github.com/five82/mnemo/internal/boot"
	"github.com/five82/mnemo/internal/memory"
	"github.com/five82/mnemo/internal/prefs"
	"github.com/five82/mnemo/internal/share"
	"github.com/five82/mnemo/internal/state"
)

// View represents the current active view.
type View int

const (
	ViewDocuments View = iota
	ViewFaces
	ViewAsk
	ViewSettings
)

var viewOrder = []View{ViewDocuments, ViewFaces, ViewAsk, ViewSettings}

func (v View) String() string {
	switch v {
	case ViewDocuments:
		return "Documents"
	case ViewFaces:
		return "Faces"
	case ViewAsk:
		return "Ask"
	case ViewSettings:
		return "Settings"
	default:
		return ""
	}
}

// Sharer sends a backend file out of the application.
type Sharer interface {
	Share(ctx context.Context, filename, fileURL string) share.Outcome
}

// Options configures the UI.
type Options struct {
	Context      context.Context
	API          memory.API
	Monitor      *boot.Monitor // nil starts directly in the ready state
	Store        *state.Store
	Prefs        *prefs.Store
	Sharer       Sharer
	Open         func(ctx context.Context, url string) error
	Refresh      func() // asks the library refresher for an immediate pass
	PrefsUpdates <-chan prefs.Prefs
	LogPath      string
	PollTick     time.Duration
}

type notice struct {
	text  string
	isErr bool
}

// Model is the root application state for Bubble Tea.
type Model struct {
	ctx      context.Context
	api      memory.API
	store    *state.Store
	prefs    *prefs.Store
	sharer   Sharer
	open     func(context.Context, string) error
	refresh  func()
	bootCh   <-chan boot.State
	prefsCh  <-chan prefs.Prefs
	logPath  string
	pollTick time.Duration
	keys     keyMap
	now      func() time.Time

	theme     Theme
	userPrefs prefs.Prefs
	baseURL   string
	bootState boot.State
	spinner   spinner.Model

	view     View
	width    int
	height   int
	showHelp bool
	notice   notice

	snapshot state.Snapshot

	docs     documentsState
	faces    facesState
	ask      askState
	settings settingsState
}

// New creates the root model. It subscribes to the boot monitor right away
// so no transition is missed before the program starts.
func New(opts Options) Model {
	ctx := opts.Context
	if ctx == nil {
		ctx = context.Background()
	}
	pollTick := opts.PollTick
	if pollTick <= 0 {
		pollTick = DefaultUIInterval
	}

	m := Model{
		ctx:       ctx,
		api:       opts.API,
		store:     opts.Store,
		prefs:     opts.Prefs,
		sharer:    opts.Sharer,
		open:      opts.Open,
		refresh:   opts.Refresh,
		prefsCh:   opts.PrefsUpdates,
		logPath:   opts.LogPath,
		pollTick:  pollTick,
		keys:      DefaultKeyMap(),
		now:       time.Now,
		bootState: boot.Ready,
		spinner:   spinner.New(spinner.WithSpinner(spinner.Dot)),
		ask:       newAskState(),
		settings:  newSettingsState(),
	}
	if opts.Monitor != nil {
		m.bootCh, _ = opts.Monitor.Subscribe()
		m.bootState = opts.Monitor.State()
	}
	m.applyPrefs(m.loadPrefs())
	return m
}

func (m Model) loadPrefs() prefs.Prefs {
	if m.prefs == nil {
		return prefs.Defaults()
	}
	return m.prefs.Load()
}

func (m *Model) applyPrefs(p prefs.Prefs) {
	m.userPrefs = p
	m.theme = GetTheme(p.Theme)
	m.spinner.Style = m.theme.Styles().AccentText
	if m.prefs != nil {
		m.baseURL = m.prefs.BaseURL()
	}
}

// Init implements tea.Model.
func (m Model) Init() tea.Cmd {
	cmds := []tea.Cmd{tickCmd(m.pollTick)}
	if m.bootCh != nil {
		cmds = append(cmds, waitForBoot(m.bootCh))
	}
	if m.prefsCh != nil {
		cmds = append(cmds, waitForPrefs(m.prefsCh))
	}
	if m.userPrefs.AnimationsEnabled() {
		cmds = append(cmds, m.spinner.Tick)
	}
	if m.bootState == boot.Ready && m.store != nil {
		cmds = append(cmds, fetchSnapshotCmd(m.store))
	}
	return tea.Batch(cmds...)
}

// Update implements tea.Model.
func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.KeyMsg:
		return m.handleKey(msg)

	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height
		m.ask.input.Width = max(m.width-12, 10)
		m.settings.url.Width = max(m.width-24, 10)
		return m, nil

	case bootStateMsg:
		m.bootState = boot.State(msg)
		var cmds []tea.Cmd
		if !m.bootState.Terminal() {
			cmds = append(cmds, waitForBoot(m.bootCh))
		}
		if m.bootState == boot.Ready && m.store != nil {
			cmds = append(cmds, fetchSnapshotCmd(m.store))
		}
		return m, tea.Batch(cmds...)

	case prefsMsg:
		m.applyPrefs(prefs.Prefs(msg))
		return m, waitForPrefs(m.prefsCh)

	case spinner.TickMsg:
		if !m.animating() {
			return m, nil
		}
		var cmd tea.Cmd
		m.spinner, cmd = m.spinner.Update(msg)
		return m, cmd

	case tickMsg:
		cmds := []tea.Cmd{tickCmd(m.pollTick)}
		if m.bootState == boot.Ready && m.store != nil {
			cmds = append(cmds, fetchSnapshotCmd(m.store))
		}
		return m, tea.Batch(cmds...)

	case snapshotMsg:
		m.snapshot = state.Snapshot(msg)
		m.docs.cursor = clampIndex(m.docs.cursor, len(m.snapshot.Documents))
		m.faces.cursor = clampIndex(m.faces.cursor, len(m.snapshot.Folders))
		return m, nil

	case actionMsg:
		return m.handleAction(msg)

	case answerMsg:
		return m.handleAnswer(msg), nil

	case labelFacesMsg:
		return m.handleLabelFaces(msg), nil
	}

	return m, nil
}

// View implements tea.Model.
func (m Model) View() string {
	if m.showHelp {
		return m.renderHelp()
	}
	if m.bootState != boot.Ready {
		return m.renderBoot()
	}
	return m.renderMain()
}

// animating reports whether the spinner has something to show.
func (m Model) animating() bool {
	if !m.userPrefs.AnimationsEnabled() {
		return false
	}
	return !m.bootState.Terminal() || m.ask.pending
}

// inputFocused reports whether keystrokes belong to a text input.
func (m Model) inputFocused() bool {
	switch m.view {
	case ViewAsk:
		return m.ask.input.Focused()
	case ViewSettings:
		return m.settings.editing
	}
	return false
}

func (m Model) handleKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	if msg.String() == "ctrl+c" {
		return m, tea.Quit
	}
	if m.showHelp {
		m.showHelp = false
		return m, nil
	}

	// Nothing reaches the backend until boot is ready.
	if m.bootState != boot.Ready {
		switch {
		case key.Matches(msg, m.keys.Quit):
			return m, tea.Quit
		case key.Matches(msg, m.keys.Help):
			m.showHelp = true
		case key.Matches(msg, m.keys.CycleTheme):
			m.cycleTheme()
		}
		return m, nil
	}

	if m.inputFocused() {
		if key.Matches(msg, m.keys.Tab) || key.Matches(msg, m.keys.ShiftTab) {
			m.blurInputs()
			return m.switchView(m.adjacentView(key.Matches(msg, m.keys.Tab)))
		}
		switch m.view {
		case ViewAsk:
			return m.handleAskKey(msg)
		case ViewSettings:
			return m.handleSettingsKey(msg)
		}
	}

	switch {
	case key.Matches(msg, m.keys.Quit):
		return m, tea.Quit
	case key.Matches(msg, m.keys.Help):
		m.showHelp = true
		return m, nil
	case key.Matches(msg, m.keys.CycleTheme):
		m.cycleTheme()
		return m, nil
	case key.Matches(msg, m.keys.Tab):
		return m.switchView(m.adjacentView(true))
	case key.Matches(msg, m.keys.ShiftTab):
		return m.switchView(m.adjacentView(false))
	case key.Matches(msg, m.keys.ViewDocuments):
		return m.switchView(ViewDocuments)
	case key.Matches(msg, m.keys.ViewFaces):
		return m.switchView(ViewFaces)
	case key.Matches(msg, m.keys.ViewAsk):
		return m.switchView(ViewAsk)
	case key.Matches(msg, m.keys.ViewSettings):
		return m.switchView(ViewSettings)
	case key.Matches(msg, m.keys.Refresh):
		m.triggerRefresh()
		m.notice = notice{text: "Refreshing library..."}
		return m, nil
	}

	switch m.view {
	case ViewDocuments:
		return m.handleDocumentsKey(msg)
	case ViewFaces:
		return m.handleFacesKey(msg)
	case ViewAsk:
		return m.handleAskKey(msg)
	case ViewSettings:
		return m.handleSettingsKey(msg)
	}
	return m, nil
}

func (m Model) adjacentView(forward bool) View {
	step := 1
	if !forward {
		step = len(viewOrder) - 1
	}
	return viewOrder[(int(m.view)+step)%len(viewOrder)]
}

func (m Model) switchView(v View) (tea.Model, tea.Cmd) {
	m.view = v
	m.docs.confirmDelete = ""
	if v == ViewAsk {
		return m, m.ask.input.Focus()
	}
	return m, nil
}

func (m *Model) blurInputs() {
	m.ask.input.Blur()
	m.settings.editing = false
	m.settings.url.Blur()
}

func (m *Model) cycleTheme() {
	next := NextTheme(m.theme.Name)
	m.theme = GetTheme(next)
	m.spinner.Style = m.theme.Styles().AccentText
	m.userPrefs.Theme = next
	if m.prefs != nil {
		if err := m.prefs.SetTheme(next); err != nil {
			m.notice = notice{text: "Could not save theme: " + err.Error(), isErr: true}
		}
	}
}

func (m Model) triggerRefresh() {
	if m.refresh != nil {
		m.refresh()
	}
}

func (m Model) handleAction(msg actionMsg) (tea.Model, tea.Cmd) {
	m.notice = notice{text: msg.notice, isErr: msg.isErr}
	if msg.removedDoc != "" && m.store != nil {
		m.store.RemoveDocument(msg.removedDoc)
	}
	if msg.refresh {
		m.triggerRefresh()
	}
	if m.store != nil {
		return m, fetchSnapshotCmd(m.store)
	}
	return m, nil
}

// renderMain renders the post-boot layout.
func (m Model) renderMain() string {
	var b strings.Builder
	b.WriteString(m.renderHeader())
	b.WriteString("\n")
	b.WriteString(m.renderCommandBar())
	b.WriteString("\n")
	b.WriteString(m.renderNotice())
	b.WriteString("\n")
	b.WriteString(m.renderContent())
	return b.String()
}

func (m Model) renderContent() string {
	switch m.view {
	case ViewDocuments:
		return m.renderDocuments()
	case ViewFaces:
		return m.renderFaces()
	case ViewAsk:
		return m.renderAsk()
	case ViewSettings:
		return m.renderSettings()
	default:
		return ""
	}
}

func (m Model) contentWidth() int {
	if m.width <= 0 {
		return 80
	}
	return m.width
}

func (m Model) contentRows() int {
	if m.height <= 0 {
		return 20
	}
	return max(m.height-chromeHeight, 3)
}

// Run starts the Bubble Tea program and blocks until the user quits or
// the context is cancelled.
func Run(opts Options) error {
	ctx := opts.Context
	if ctx == nil {
		ctx = context.Background()
	}
	p := tea.NewProgram(New(opts), tea.WithAltScreen(), tea.WithContext(ctx))
	_, err := p.Run()
	if errors.Is(err, tea.ErrProgramKilled) && ctx.Err() != nil {
		return nil
	}
	return err
}
